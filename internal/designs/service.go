package designs

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/remixhub/registry/internal/domain"
	"github.com/remixhub/registry/internal/logger"
	"github.com/remixhub/registry/internal/metadata"
	"github.com/remixhub/registry/internal/providers/story"
	"github.com/remixhub/registry/internal/registration"
	"github.com/remixhub/registry/internal/types"
)

const (
	DefaultLimit           = 20
	MaxLimit               = 100
	DefaultMetadataWorkers = 8
)

// Config holds the listing configuration
type Config struct {
	// LookupChunkSize is the number of cid hashes sent per batch lookup
	LookupChunkSize int
	// MetadataWorkers bounds concurrent metadata fetches
	MetadataWorkers int
}

// ListRequest selects a page of designs, optionally owned by one address
type ListRequest struct {
	Owner  *string
	Limit  int
	Offset int
}

// Design is an original registered on the RemixHub contract joined with its cached registration
type Design struct {
	IPID        string                 `json:"ipId"`
	Owner       string                 `json:"owner"`
	CIDHash     string                 `json:"cidHash"`
	PresetID    uint16                 `json:"presetId"`
	CID         *string                `json:"cid"`
	Title       *string                `json:"title"`
	TxHash      string                 `json:"txHash"`
	BlockNumber uint64                 `json:"blockNumber"`
	Metadata    *domain.DesignMetadata `json:"metadata"`
}

// ListResult is a page of designs, newest first
type ListResult struct {
	Designs []Design `json:"designs"`
	Total   int      `json:"total"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
}

// Service lists designs from ledger events
//
//go:generate mockgen -source=service.go -destination=../mocks/designs.go -package=mocks -mock_names=Service=MockDesignsService
type Service interface {
	List(ctx context.Context, req ListRequest) (*ListResult, error)
}

type service struct {
	cfg           Config
	ledger        story.Client
	registrations registration.Service
	metadata      metadata.Resolver
}

func NewService(cfg Config, ledger story.Client, registrations registration.Service, metadata metadata.Resolver) Service {
	if cfg.LookupChunkSize < 1 {
		cfg.LookupChunkSize = registration.DefaultMaxBatchSize
	}
	if cfg.MetadataWorkers < 1 {
		cfg.MetadataWorkers = DefaultMetadataWorkers
	}

	return &service{
		cfg:           cfg,
		ledger:        ledger,
		registrations: registrations,
		metadata:      metadata,
	}
}

func (s *service) List(ctx context.Context, req ListRequest) (*ListResult, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	owner := types.TrimmedPtr(req.Owner)
	if owner != nil && !domain.IsValidIPID(*owner) {
		return nil, registration.NewValidationError("owner", "must be a 0x-prefixed 20-byte hex address")
	}

	originals, err := s.ledger.ScanOriginals(ctx, story.ScanFilter{Owner: owner})
	if err != nil {
		return nil, registration.NewUpstreamError(registration.ServiceLedger, err)
	}

	sort.SliceStable(originals, func(i, j int) bool {
		return originals[i].BlockNumber > originals[j].BlockNumber
	})

	result := &ListResult{
		Designs: []Design{},
		Total:   len(originals),
		Limit:   limit,
		Offset:  offset,
	}
	if offset >= len(originals) {
		return result, nil
	}
	page := originals[offset:min(offset+limit, len(originals))]

	hashes := make([]string, 0, len(page))
	for _, o := range page {
		hashes = append(hashes, domain.NormalizeHash(o.CIDHash))
	}

	entries := make(map[string]*domain.LookupEntry, len(hashes))
	for _, chunk := range types.Chunk(hashes, s.cfg.LookupChunkSize) {
		found, err := s.registrations.BatchLookup(ctx, chunk)
		if err != nil {
			return nil, err
		}
		for k, v := range found {
			entries[k] = v
		}
	}

	for _, o := range page {
		design := Design{
			IPID:        o.IPID,
			Owner:       o.Owner,
			CIDHash:     o.CIDHash,
			PresetID:    o.PresetID,
			TxHash:      o.TxHash,
			BlockNumber: o.BlockNumber,
		}
		if entry := entries[domain.NormalizeHash(o.CIDHash)]; entry != nil {
			design.CID = types.StringPtr(entry.CID)
			design.Title = entry.Title
		}
		result.Designs = append(result.Designs, design)
	}

	s.attachMetadata(ctx, result.Designs)

	return result, nil
}

// attachMetadata fetches the metadata document of every design with a known cid.
// Fetch failures leave Metadata nil.
func (s *service) attachMetadata(ctx context.Context, designs []Design) {
	pool := pond.NewPool(s.cfg.MetadataWorkers, pond.WithContext(ctx))

	var mu sync.Mutex
	for i := range designs {
		if designs[i].CID == nil {
			continue
		}
		cid := *designs[i].CID
		pool.Submit(func() {
			md, err := s.metadata.Resolve(ctx, cid)
			if err != nil {
				logger.WarnCtx(ctx, "Failed to fetch design metadata", zap.String("cid", cid), zap.Error(err))
				return
			}

			mu.Lock()
			defer mu.Unlock()
			designs[i].Metadata = md
			if designs[i].Title == nil && strings.TrimSpace(md.Title) != "" {
				designs[i].Title = types.StringPtr(md.Title)
			}
		})
	}

	pool.StopAndWait()
}
