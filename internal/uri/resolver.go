package uri

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/remixhub/registry/internal/adapter"
	"github.com/remixhub/registry/internal/logger"
)

// ErrNoGateways is returned when no IPFS gateway is configured
var ErrNoGateways = errors.New("no IPFS gateways configured")

// Config holds configuration for the URI resolver
type Config struct {
	// IPFSGateways is the list of IPFS gateways to try, in preference order
	IPFSGateways []string
}

// Resolver defines the interface for resolving IPFS references to gateway URLs
//
//go:generate mockgen -source=resolver.go -destination=../mocks/uri_resolver.go -package=mocks -mock_names=Resolver=MockURIResolver
type Resolver interface {
	// Resolve resolves ipfs://<cid>, a bare cid or a gateway URL to a reachable gateway URL.
	// It makes a HEAD request to every configured gateway and returns the first that answers 200.
	// Other http(s) URLs are returned as-is.
	Resolve(ctx context.Context, uri string) (string, error)

	// GatewayURL returns the URL of cid on the preferred gateway without checking reachability
	GatewayURL(cid string) string
}

type resolver struct {
	httpClient adapter.HTTPClient
	config     *Config
}

func NewResolver(httpClient adapter.HTTPClient, config *Config) Resolver {
	gateways := make([]string, 0, len(config.IPFSGateways))
	for _, gw := range config.IPFSGateways {
		if gw = strings.TrimRight(strings.TrimSpace(gw), "/"); gw != "" {
			gateways = append(gateways, gw)
		}
	}

	return &resolver{
		httpClient: httpClient,
		config:     &Config{IPFSGateways: gateways},
	}
}

// CIDFromURI extracts the cid path from ipfs://<cid> or .../ipfs/<cid> references
func CIDFromURI(uri string) (string, bool) {
	if cid, ok := strings.CutPrefix(uri, "ipfs://"); ok {
		return strings.TrimPrefix(cid, "ipfs/"), cid != ""
	}
	if _, cid, ok := strings.Cut(uri, "/ipfs/"); ok && cid != "" {
		return cid, true
	}
	return "", false
}

func (r *resolver) Resolve(ctx context.Context, uri string) (string, error) {
	if cid, ok := CIDFromURI(uri); ok {
		return r.resolveIPFS(ctx, cid)
	}

	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return uri, nil
	}

	// bare cid
	return r.resolveIPFS(ctx, uri)
}

func (r *resolver) GatewayURL(cid string) string {
	gateway := "https://ipfs.io"
	if len(r.config.IPFSGateways) > 0 {
		gateway = r.config.IPFSGateways[0]
	}
	return fmt.Sprintf("%s/ipfs/%s", gateway, cid)
}

// resolveIPFS finds a working IPFS gateway for the given CID
func (r *resolver) resolveIPFS(ctx context.Context, cid string) (string, error) {
	if len(r.config.IPFSGateways) == 0 {
		return "", ErrNoGateways
	}

	logger.DebugCtx(ctx, "Resolving IPFS CID", zap.String("cid", cid), zap.Int("gateways", len(r.config.IPFSGateways)))

	type result struct {
		url string
		err error
	}

	resultCh := make(chan result, len(r.config.IPFSGateways))
	var wg sync.WaitGroup

	for _, gateway := range r.config.IPFSGateways {
		wg.Add(1)
		go func(gw string) {
			defer wg.Done()

			url := fmt.Sprintf("%s/ipfs/%s", gw, cid)
			resp, err := r.httpClient.Head(ctx, url)
			if err != nil {
				resultCh <- result{err: err}
				return
			}
			if err := resp.Body.Close(); err != nil {
				logger.WarnCtx(ctx, "failed to close response body", zap.Error(err), zap.String("url", url))
			}

			if resp.StatusCode == http.StatusOK {
				resultCh <- result{url: url}
			} else {
				resultCh <- result{err: fmt.Errorf("gateway returned status %d", resp.StatusCode)}
			}
		}(gateway)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// Return the first successful result
	for res := range resultCh {
		if res.err == nil {
			logger.DebugCtx(ctx, "Found working IPFS gateway", zap.String("url", res.url))
			return res.url, nil
		}
	}

	return "", fmt.Errorf("no working IPFS gateway found for CID: %s", cid)
}
