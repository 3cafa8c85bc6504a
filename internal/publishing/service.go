package publishing

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/remixhub/registry/internal/adapter"
	"github.com/remixhub/registry/internal/domain"
	"github.com/remixhub/registry/internal/logger"
	"github.com/remixhub/registry/internal/metrics"
	"github.com/remixhub/registry/internal/providers/pinata"
	"github.com/remixhub/registry/internal/providers/story"
	"github.com/remixhub/registry/internal/registration"
	"github.com/remixhub/registry/internal/types"
)

const (
	flowPin     = "pin"
	flowPublish = "publish"
	flowRemix   = "remix"

	metadataFileName = "metadata.json"
)

// Config holds the publishing flow configuration
type Config struct {
	// PresetID is recorded with each original anchored on the RemixHub contract
	PresetID uint16
}

// PinRequest is an upload of a design file and its descriptive fields
type PinRequest struct {
	Title      string
	FigmaURL   *string
	PreviewURL *string
	FileName   string
	// File is optional; without it only the metadata document is pinned
	File []byte
}

// PinResult is the pinned metadata document
type PinResult struct {
	CID      string                `json:"cid"`
	CIDHash  string                `json:"cidHash"`
	Metadata domain.DesignMetadata `json:"metadata"`
	Warnings []string              `json:"warnings,omitempty"`
}

// PublishRequest registers a pinned metadata document as an original IP asset
type PublishRequest struct {
	CID   string
	Title *string
}

// PublishResult is the outcome of a publish. Warnings list cache writes that failed after the ledger write.
type PublishResult struct {
	CID          string   `json:"cid"`
	CIDHash      string   `json:"cidHash"`
	IPID         string   `json:"ipId"`
	TxHash       string   `json:"txHash"`
	AnchorTxHash *string  `json:"anchorTxHash"`
	Warnings     []string `json:"warnings,omitempty"`
}

// RemixRequest registers remixCID as a derivative of originalCID
type RemixRequest struct {
	OriginalCID string
	RemixCID    string
	Title       *string
}

// RemixResult is the outcome of a remix
type RemixResult struct {
	CID        string   `json:"cid"`
	CIDHash    string   `json:"cidHash"`
	IPID       string   `json:"ipId"`
	TxHash     string   `json:"txHash"`
	ParentCID  string   `json:"parentCid"`
	ParentIPID string   `json:"parentIpId"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Service runs the two-phase ledger then cache flows
//
//go:generate mockgen -source=service.go -destination=../mocks/publishing.go -package=mocks -mock_names=Service=MockPublishingService
type Service interface {
	// Pin pins the design file and its metadata document and pre-anchors the metadata cid
	Pin(ctx context.Context, req PinRequest) (*PinResult, error)
	// Publish registers a pinned document on the ledger and anchors the result
	Publish(ctx context.Context, req PublishRequest) (*PublishResult, error)
	// Remix resolves the parent, registers the derivative on the ledger and anchors the child
	Remix(ctx context.Context, req RemixRequest) (*RemixResult, error)
}

type service struct {
	cfg           Config
	registrations registration.Service
	ledger        story.Client
	pinner        pinata.Pinner
	clock         adapter.Clock
}

func NewService(cfg Config, registrations registration.Service, ledger story.Client, pinner pinata.Pinner, clock adapter.Clock) Service {
	if cfg.PresetID == 0 {
		cfg.PresetID = domain.DEFAULT_PRESET_ID
	}

	return &service{
		cfg:           cfg,
		registrations: registrations,
		ledger:        ledger,
		pinner:        pinner,
		clock:         clock,
	}
}

func (s *service) Pin(ctx context.Context, req PinRequest) (*PinResult, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, registration.NewValidationError("title", "is required")
	}

	metadata := domain.DesignMetadata{
		Title:     title,
		Type:      domain.DESIGN_METADATA_TYPE,
		FigmaURL:  types.TrimmedPtr(req.FigmaURL),
		Preview:   types.TrimmedPtr(req.PreviewURL),
		CreatedAt: s.clock.Now().UnixMilli(),
	}

	if len(req.File) > 0 {
		fileName := strings.TrimSpace(req.FileName)
		if fileName == "" {
			fileName = "design.fig"
		}

		pinned, err := s.pinner.PinFile(ctx, fileName, req.File)
		if err != nil {
			if errors.Is(err, pinata.ErrFileTooLarge) || errors.Is(err, pinata.ErrEmptyFile) {
				return nil, registration.NewValidationError("file", err.Error())
			}
			return nil, registration.NewUpstreamError(registration.ServicePinning, err)
		}

		metadata.FigFile = types.StringPtr("ipfs://" + pinned.CID)
		metadata.FigFileName = &fileName
	}

	pinned, err := s.pinner.PinJSON(ctx, metadataFileName, metadata)
	if err != nil {
		return nil, registration.NewUpstreamError(registration.ServicePinning, err)
	}

	result := &PinResult{
		CID:      pinned.CID,
		CIDHash:  domain.CIDHash(pinned.CID),
		Metadata: metadata,
	}

	snapshot, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}

	// pre-anchor so the cache knows the cid before the ledger does
	_, err = s.registrations.Anchor(ctx, registration.AnchorRequest{
		CID:      pinned.CID,
		Title:    &title,
		Metadata: snapshot,
	})
	if err != nil {
		result.Warnings = append(result.Warnings, s.warn(ctx, flowPin, pinned.CID, "pre-anchor", err))
	}

	return result, nil
}

func (s *service) Publish(ctx context.Context, req PublishRequest) (*PublishResult, error) {
	cid := strings.TrimSpace(req.CID)
	if cid == "" {
		return nil, registration.NewValidationError("cid", "is required")
	}
	if !domain.IsValidCID(cid) {
		return nil, registration.NewValidationError("cid", "is not a valid CID")
	}
	title := types.TrimmedPtr(req.Title)
	cidHash := domain.CIDHash(cid)

	var warnings []string

	if _, err := s.registrations.Anchor(ctx, registration.AnchorRequest{CID: cid, Title: title}); err != nil {
		warnings = append(warnings, s.warn(ctx, flowPublish, cid, "pre-anchor", err))
	}

	reg, err := s.ledger.RegisterIP(ctx, cid)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("cid", cid), zap.String("flow", flowPublish))
		return nil, registration.NewUpstreamError(registration.ServiceLedger, err)
	}

	anchorTxHash := reg.TxHash
	if s.ledger.RemixHubEnabled() {
		txHash, err := s.ledger.AnchorOriginal(ctx, reg.IPID, cidHash, s.cfg.PresetID)
		if err != nil {
			warnings = append(warnings, s.warn(ctx, flowPublish, cid, "remix hub anchor", err))
		} else {
			anchorTxHash = txHash
		}
	}

	_, err = s.registrations.Anchor(ctx, registration.AnchorRequest{
		CID:          cid,
		IPID:         &reg.IPID,
		TxHash:       &reg.TxHash,
		AnchorTxHash: &anchorTxHash,
		Title:        title,
		EventType:    domain.RegistrationEventPublished,
	})
	if err != nil {
		warnings = append(warnings, s.warn(ctx, flowPublish, cid, "anchor", err))
	}

	logger.InfoCtx(ctx, "Design published",
		zap.String("cid", cid),
		zap.String("ipId", reg.IPID),
		zap.String("txHash", reg.TxHash),
		zap.Int("warnings", len(warnings)))

	return &PublishResult{
		CID:          cid,
		CIDHash:      cidHash,
		IPID:         reg.IPID,
		TxHash:       reg.TxHash,
		AnchorTxHash: &anchorTxHash,
		Warnings:     warnings,
	}, nil
}

func (s *service) Remix(ctx context.Context, req RemixRequest) (*RemixResult, error) {
	originalCID := strings.TrimSpace(req.OriginalCID)
	remixCID := strings.TrimSpace(req.RemixCID)
	if originalCID == "" {
		return nil, registration.NewValidationError("originalCid", "is required")
	}
	if remixCID == "" {
		return nil, registration.NewValidationError("remixCid", "is required")
	}
	if !domain.IsValidCID(remixCID) {
		return nil, registration.NewValidationError("remixCid", "is not a valid CID")
	}

	parentIPID, err := s.registrations.ResolveParent(ctx, originalCID)
	if err != nil {
		return nil, err
	}

	reg, err := s.ledger.RegisterDerivative(ctx, parentIPID, remixCID)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("cid", remixCID), zap.String("parentIpId", parentIPID), zap.String("flow", flowRemix))
		return nil, registration.NewUpstreamError(registration.ServiceLedger, err)
	}

	var warnings []string
	_, err = s.registrations.Anchor(ctx, registration.AnchorRequest{
		CID:          remixCID,
		IPID:         &reg.IPID,
		TxHash:       &reg.TxHash,
		AnchorTxHash: &reg.TxHash,
		Title:        types.TrimmedPtr(req.Title),
		EventType:    domain.RegistrationEventRemixed,
		ParentIPID:   &parentIPID,
	})
	if err != nil {
		warnings = append(warnings, s.warn(ctx, flowRemix, remixCID, "anchor", err))
	}

	logger.InfoCtx(ctx, "Remix registered",
		zap.String("cid", remixCID),
		zap.String("ipId", reg.IPID),
		zap.String("parentIpId", parentIPID),
		zap.String("txHash", reg.TxHash))

	return &RemixResult{
		CID:        remixCID,
		CIDHash:    domain.CIDHash(remixCID),
		IPID:       reg.IPID,
		TxHash:     reg.TxHash,
		ParentCID:  originalCID,
		ParentIPID: parentIPID,
		Warnings:   warnings,
	}, nil
}

// warn records a cache write failure that happened after the ledger accepted the registration
func (s *service) warn(ctx context.Context, flow string, cid string, stage string, err error) string {
	warning := &registration.PersistenceWarning{CID: cid, Stage: stage, Err: err}
	metrics.PersistenceWarningsTotal.WithLabelValues(flow).Inc()
	logger.WarnCtx(ctx, "Registration cache write failed",
		zap.String("flow", flow),
		zap.String("stage", stage),
		zap.String("cid", cid),
		zap.Error(err))
	return warning.Error()
}
