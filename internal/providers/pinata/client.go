package pinata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/remixhub/registry/internal/adapter"
	"github.com/remixhub/registry/internal/logger"
	"github.com/remixhub/registry/internal/ratelimit"
)

const (
	// DefaultAPIURL is the Pinata API base URL
	DefaultAPIURL = "https://api.pinata.cloud"

	pinFileEndpoint = "/pinning/pinFileToIPFS"
)

var (
	// ErrEmptyFile is returned when pinning a zero-length file
	ErrEmptyFile = errors.New("file is empty")
	// ErrFileTooLarge is returned when a file exceeds the configured size limit
	ErrFileTooLarge = errors.New("file exceeds maximum size")
)

// Config holds the Pinata client configuration
type Config struct {
	APIURL string
	JWT    string
	// MaxSize is the largest accepted file in bytes, 0 disables the check
	MaxSize int64
}

// PinResult is the pinned content identifier and its size
type PinResult struct {
	CID         string
	Size        int64
	ContentType string
}

// Pinner pins files and JSON documents to IPFS
//
//go:generate mockgen -source=client.go -destination=../../mocks/pinner.go -package=mocks -mock_names=Pinner=MockPinner
type Pinner interface {
	// PinFile pins raw file content under the given file name
	PinFile(ctx context.Context, fileName string, content []byte) (*PinResult, error)
	// PinJSON pins the canonical JSON encoding of doc
	PinJSON(ctx context.Context, name string, doc interface{}) (*PinResult, error)
}

type pinFileResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

type pinataMetadata struct {
	Name string `json:"name"`
}

type client struct {
	cfg            Config
	httpClient     adapter.HTTPClient
	jcs            adapter.JCS
	rateLimitProxy ratelimit.Proxy
}

// NewClient creates a new Pinata client. rateLimitProxy may be nil.
func NewClient(cfg Config, httpClient adapter.HTTPClient, jcs adapter.JCS, rateLimitProxy ratelimit.Proxy) Pinner {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	return &client{
		cfg:            cfg,
		httpClient:     httpClient,
		jcs:            jcs,
		rateLimitProxy: rateLimitProxy,
	}
}

func (c *client) PinFile(ctx context.Context, fileName string, content []byte) (*PinResult, error) {
	if len(content) == 0 {
		return nil, ErrEmptyFile
	}
	if c.cfg.MaxSize > 0 && int64(len(content)) > c.cfg.MaxSize {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, len(content), c.cfg.MaxSize)
	}

	contentType := mimetype.Detect(content).String()
	return c.pin(ctx, fileName, contentType, content)
}

func (c *client) PinJSON(ctx context.Context, name string, doc interface{}) (*PinResult, error) {
	canonical, err := c.jcs.Canonicalize(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize document: %w", err)
	}

	// pinned as a file so the stored bytes are exactly the canonical encoding
	return c.pin(ctx, name, "application/json", canonical)
}

func (c *client) pin(ctx context.Context, fileName string, contentType string, content []byte) (*PinResult, error) {
	body, formContentType, err := buildPinForm(fileName, contentType, content)
	if err != nil {
		return nil, err
	}

	respBody, err := ratelimit.Request(ctx, c.rateLimitProxy, ratelimit.PROVIDER_PINATA, func(ctx context.Context) ([]byte, error) {
		return c.httpClient.Post(ctx, c.cfg.APIURL+pinFileEndpoint, map[string]string{
			"Authorization": "Bearer " + c.cfg.JWT,
			"Content-Type":  formContentType,
		}, body)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to pin %s: %w", fileName, err)
	}

	var resp pinFileResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode pin response: %w", err)
	}
	if resp.IpfsHash == "" {
		return nil, fmt.Errorf("pin response has no IpfsHash")
	}

	logger.InfoCtx(ctx, "Pinned to IPFS",
		zap.String("cid", resp.IpfsHash),
		zap.String("fileName", fileName),
		zap.String("contentType", contentType),
		zap.Int64("size", resp.PinSize))

	return &PinResult{CID: resp.IpfsHash, Size: resp.PinSize, ContentType: contentType}, nil
}

// buildPinForm encodes the multipart form accepted by pinFileToIPFS
func buildPinForm(fileName string, contentType string, content []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(fileName)))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", fmt.Errorf("failed to write file part: %w", err)
	}

	meta, err := json.Marshal(pinataMetadata{Name: fmt.Sprintf("%s-%s", fileName, uuid.NewString())})
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal pin metadata: %w", err)
	}
	if err := w.WriteField("pinataMetadata", string(meta)); err != nil {
		return nil, "", fmt.Errorf("failed to write pin metadata: %w", err)
	}
	if err := w.WriteField("pinataOptions", `{"cidVersion":0}`); err != nil {
		return nil, "", fmt.Errorf("failed to write pin options: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
