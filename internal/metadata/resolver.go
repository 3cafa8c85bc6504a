package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/remixhub/registry/internal/adapter"
	"github.com/remixhub/registry/internal/domain"
	"github.com/remixhub/registry/internal/logger"
	"github.com/remixhub/registry/internal/ratelimit"
	"github.com/remixhub/registry/internal/uri"
)

// ErrNotDesignMetadata is returned when the fetched document is not a design metadata document
var ErrNotDesignMetadata = errors.New("document is not design metadata")

// Resolver defines the interface for resolving the metadata document pinned under a cid
//
//go:generate mockgen -source=resolver.go -destination=../mocks/metadata_resolver.go -package=mocks -mock_names=Resolver=MockMetadataResolver
type Resolver interface {
	Resolve(ctx context.Context, cid string) (*domain.DesignMetadata, error)
}

type resolver struct {
	httpClient     adapter.HTTPClient
	uriResolver    uri.Resolver
	rateLimitProxy ratelimit.Proxy
}

// NewResolver creates a metadata resolver. rateLimitProxy may be nil.
func NewResolver(httpClient adapter.HTTPClient, uriResolver uri.Resolver, rateLimitProxy ratelimit.Proxy) Resolver {
	return &resolver{
		httpClient:     httpClient,
		uriResolver:    uriResolver,
		rateLimitProxy: rateLimitProxy,
	}
}

func (r *resolver) Resolve(ctx context.Context, cid string) (*domain.DesignMetadata, error) {
	cid = strings.TrimSpace(cid)
	if cid == "" {
		return nil, domain.ErrInvalidCID
	}

	url, err := r.uriResolver.Resolve(ctx, "ipfs://"+cid)
	if err != nil {
		// gateways may refuse HEAD while still serving GET
		url = r.uriResolver.GatewayURL(cid)
		logger.DebugCtx(ctx, "Falling back to preferred gateway", zap.String("cid", cid), zap.Error(err))
	}

	body, err := ratelimit.Request(ctx, r.rateLimitProxy, ratelimit.PROVIDER_IPFS_GATEWAY, func(ctx context.Context) ([]byte, error) {
		return r.httpClient.GetBytes(ctx, url)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata %s: %w", cid, err)
	}

	var metadata domain.DesignMetadata
	if err := json.Unmarshal(body, &metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata %s: %w", cid, err)
	}

	if metadata.Type != "" && metadata.Type != domain.DESIGN_METADATA_TYPE {
		return nil, fmt.Errorf("%w: type %q", ErrNotDesignMetadata, metadata.Type)
	}

	return &metadata, nil
}
