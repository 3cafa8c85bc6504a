package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/remixhub/registry/internal/adapter"
	"github.com/remixhub/registry/internal/domain"
	"github.com/remixhub/registry/internal/logger"
	"github.com/remixhub/registry/internal/messaging"
	"github.com/remixhub/registry/internal/metrics"
	"github.com/remixhub/registry/internal/store"
	"github.com/remixhub/registry/internal/store/schema"
	"github.com/remixhub/registry/internal/types"
)

const (
	DefaultMaxAttempts  = 5
	DefaultInterval     = 2 * time.Second
	DefaultMaxBatchSize = 200
)

var (
	errParentMissing     = errors.New("parent registration not found")
	errParentUnconfirmed = errors.New("parent registration has no ip id")
)

// Config holds the registration service configuration
type Config struct {
	// MaxAttempts is the total number of cache reads the parent resolver makes before giving up
	MaxAttempts int
	// Interval is the fixed delay between parent resolver attempts
	Interval time.Duration
	// MaxBatchSize caps the number of entries accepted by BatchLookup, duplicates included
	MaxBatchSize int
	// VerifyOnChain cross-checks resolved parents against the ledger registry
	VerifyOnChain bool
}

// AnchorRequest carries the fields of an anchor write. Nil or blank optional fields leave stored values untouched.
type AnchorRequest struct {
	CID          string
	IPID         *string
	CIDHash      *string
	TxHash       *string
	AnchorTxHash *string
	Title        *string
	Metadata     []byte
	// EventType overrides the event published when the write carries an ip id
	EventType  domain.RegistrationEventType
	ParentIPID *string
}

// ChainVerifier checks whether an ip id is registered on the ledger
//
//go:generate mockgen -source=service.go -destination=../mocks/registration.go -package=mocks -mock_names=ChainVerifier=MockChainVerifier,Service=MockRegistrationService
type ChainVerifier interface {
	IsRegistered(ctx context.Context, ipID string) (bool, error)
}

// Service is the content-hash to ip id reconciliation cache
type Service interface {
	// Anchor merges the supplied fields into the registration for req.CID
	Anchor(ctx context.Context, req AnchorRequest) (*domain.Registration, error)
	// GetByCID returns the registration for cid or nil
	GetByCID(ctx context.Context, cid string) (*domain.Registration, error)
	// ResolveParent returns the ip id of parentCID, waiting for a racing publish to land
	ResolveParent(ctx context.Context, parentCID string) (string, error)
	// BatchLookup maps every requested cid hash to its registration or nil
	BatchLookup(ctx context.Context, cidHashes []string) (map[string]*domain.LookupEntry, error)
}

type service struct {
	cfg       Config
	store     store.Store
	clock     adapter.Clock
	verifier  ChainVerifier
	publisher messaging.Publisher
}

// NewService creates a registration service. verifier may be nil when on-chain verification is disabled.
func NewService(cfg Config, st store.Store, clock adapter.Clock, verifier ChainVerifier, publisher messaging.Publisher) Service {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MaxBatchSize < 1 {
		cfg.MaxBatchSize = DefaultMaxBatchSize
	}
	if publisher == nil {
		publisher = messaging.NewNoopPublisher()
	}

	return &service{
		cfg:       cfg,
		store:     st,
		clock:     clock,
		verifier:  verifier,
		publisher: publisher,
	}
}

func (s *service) Anchor(ctx context.Context, req AnchorRequest) (*domain.Registration, error) {
	cid := strings.TrimSpace(req.CID)
	if cid == "" {
		return nil, NewValidationError("cid", "is required")
	}

	computed := domain.CIDHash(cid)
	input := store.UpsertRegistrationInput{
		CID:          cid,
		CIDHash:      computed,
		IPID:         types.TrimmedPtr(req.IPID),
		TxHash:       types.TrimmedPtr(req.TxHash),
		AnchorTxHash: types.TrimmedPtr(req.AnchorTxHash),
		Title:        types.TrimmedPtr(req.Title),
		Metadata:     req.Metadata,
		Now:          s.clock.Now(),
	}

	if supplied := types.TrimmedPtr(req.CIDHash); supplied != nil {
		input.CIDHash = domain.NormalizeHash(*supplied)
		input.CIDHashSupplied = true
		if input.CIDHash != computed {
			logger.WarnCtx(ctx, "Supplied cid hash does not match computed hash",
				zap.String("cid", cid),
				zap.String("supplied", input.CIDHash),
				zap.String("computed", computed))
		}
	}

	reg, err := s.store.UpsertRegistration(ctx, input)
	if err != nil {
		metrics.AnchorWritesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, NewUpstreamError(ServiceRegistrationCache, err)
	}
	metrics.AnchorWritesTotal.WithLabelValues(metrics.OutcomeOK).Inc()

	logger.DebugCtx(ctx, "Anchored registration",
		zap.String("cid", reg.CID),
		zap.Stringp("ipId", reg.IPID),
		zap.Stringp("anchorTxHash", reg.AnchorTxHash))

	result := toDomainRegistration(reg)
	if input.IPID != nil && result.Anchored() {
		s.publishEvent(ctx, req, result)
	}

	return result, nil
}

// publishEvent emits a registration event; broker failures never fail the anchor
func (s *service) publishEvent(ctx context.Context, req AnchorRequest, reg *domain.Registration) {
	eventType := req.EventType
	if eventType == "" {
		eventType = domain.RegistrationEventAnchored
	}

	txHash := reg.AnchorTransactionHash
	if txHash == nil {
		txHash = reg.TransactionHash
	}

	event := &domain.RegistrationEvent{
		ID:         ulid.Make().String(),
		Type:       eventType,
		CID:        reg.CID,
		CIDHash:    reg.CIDHash,
		IPID:       *reg.IPID,
		TxHash:     txHash,
		ParentIPID: req.ParentIPID,
		OccurredAt: s.clock.Now(),
	}

	if err := s.publisher.PublishRegistrationEvent(ctx, event); err != nil {
		logger.WarnCtx(ctx, "Failed to publish registration event",
			zap.Error(err),
			zap.String("cid", reg.CID),
			zap.String("type", string(eventType)))
	}
}

func (s *service) GetByCID(ctx context.Context, cid string) (*domain.Registration, error) {
	cid = strings.TrimSpace(cid)
	if cid == "" {
		return nil, NewValidationError("cid", "is required")
	}

	reg, err := s.store.GetRegistrationByCID(ctx, cid)
	if err != nil {
		return nil, NewUpstreamError(ServiceRegistrationCache, err)
	}
	if reg == nil {
		return nil, nil
	}

	return toDomainRegistration(reg), nil
}

func (s *service) ResolveParent(ctx context.Context, parentCID string) (string, error) {
	parentCID = strings.TrimSpace(parentCID)
	if parentCID == "" {
		return "", NewValidationError("originalCid", "is required")
	}

	attempts := 0
	sawRow := false
	operation := func() error {
		attempts++
		metrics.ParentResolutionAttempts.Inc()

		reg, err := s.store.GetRegistrationByCID(ctx, parentCID)
		if err != nil {
			return backoff.Permanent(NewUpstreamError(ServiceRegistrationCache, err))
		}
		if reg == nil {
			return errParentMissing
		}
		sawRow = true
		if types.StringNilOrEmpty(reg.IPID) {
			return errParentUnconfirmed
		}
		return nil
	}

	notify := func(err error, next time.Duration) {
		logger.DebugCtx(ctx, "Parent not anchored yet, retrying",
			zap.String("cid", parentCID),
			zap.Int("attempt", attempts),
			zap.Duration("next", next),
			zap.Error(err))
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.cfg.Interval), uint64(s.cfg.MaxAttempts-1)), //nolint:gosec // G115: MaxAttempts >= 1
		ctx,
	)

	err := backoff.RetryNotifyWithTimer(operation, policy, notify, adapter.NewClockTimer(s.clock))
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			metrics.ParentResolutionsTotal.WithLabelValues(metrics.OutcomeError).Inc()
			return "", err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			metrics.ParentResolutionsTotal.WithLabelValues(metrics.OutcomeError).Inc()
			return "", fmt.Errorf("parent resolution interrupted: %w", ctxErr)
		}

		reason := ReasonNeverPublished
		if sawRow {
			reason = ReasonNotConfirmed
		}
		metrics.ParentResolutionsTotal.WithLabelValues(string(reason)).Inc()
		logger.InfoCtx(ctx, "Parent not anchored after retries",
			zap.String("cid", parentCID),
			zap.Int("attempts", attempts),
			zap.String("reason", string(reason)))
		return "", &ParentNotAnchoredError{CID: parentCID, Reason: reason, Attempts: attempts}
	}

	// Final read is unconditional; concurrent anchors may have refined the row
	reg, err := s.store.GetRegistrationByCID(ctx, parentCID)
	if err != nil {
		metrics.ParentResolutionsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return "", NewUpstreamError(ServiceRegistrationCache, err)
	}
	if reg == nil || types.StringNilOrEmpty(reg.IPID) {
		metrics.ParentResolutionsTotal.WithLabelValues(string(ReasonNotConfirmed)).Inc()
		return "", &ParentNotAnchoredError{CID: parentCID, Reason: ReasonNotConfirmed, Attempts: attempts}
	}
	ipID := *reg.IPID

	if s.cfg.VerifyOnChain && s.verifier != nil {
		registered, err := s.verifier.IsRegistered(ctx, ipID)
		if err != nil {
			metrics.ParentResolutionsTotal.WithLabelValues(metrics.OutcomeError).Inc()
			return "", NewUpstreamError(ServiceLedger, err)
		}
		if !registered {
			metrics.ParentResolutionsTotal.WithLabelValues(string(ReasonChainMismatch)).Inc()
			logger.WarnCtx(ctx, "Cached parent ip id is not registered on chain",
				zap.String("cid", parentCID),
				zap.String("ipId", ipID))
			return "", &ParentNotAnchoredError{CID: parentCID, Reason: ReasonChainMismatch, Attempts: attempts}
		}
	}

	metrics.ParentResolutionsTotal.WithLabelValues("resolved").Inc()
	return ipID, nil
}

func (s *service) BatchLookup(ctx context.Context, cidHashes []string) (map[string]*domain.LookupEntry, error) {
	if len(cidHashes) == 0 {
		return nil, NewValidationError("cidHashes", "must not be empty")
	}
	if len(cidHashes) > s.cfg.MaxBatchSize {
		return nil, NewValidationError("cidHashes", fmt.Sprintf("must contain at most %d entries, got %d", s.cfg.MaxBatchSize, len(cidHashes)))
	}

	keys := make([]string, 0, len(cidHashes))
	seen := make(map[string]struct{}, len(cidHashes))
	for _, h := range cidHashes {
		key := domain.NormalizeHash(h)
		if key == "" {
			return nil, NewValidationError("cidHashes", "must not contain empty values")
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	metrics.BatchLookupKeys.Observe(float64(len(keys)))

	regs, err := s.store.GetRegistrationsByCIDHashes(ctx, keys)
	if err != nil {
		return nil, NewUpstreamError(ServiceRegistrationCache, err)
	}

	result := make(map[string]*domain.LookupEntry, len(keys))
	for _, key := range keys {
		result[key] = nil
	}
	// Rows arrive oldest update first, so the most recently updated row wins a shared hash
	for i := range regs {
		key := domain.NormalizeHash(regs[i].CIDHash)
		if _, ok := result[key]; !ok {
			continue
		}
		result[key] = &domain.LookupEntry{
			CID:    regs[i].CID,
			IPID:   regs[i].IPID,
			TxHash: regs[i].TxHash,
			Title:  regs[i].Title,
		}
	}

	return result, nil
}

func toDomainRegistration(reg *schema.Registration) *domain.Registration {
	return &domain.Registration{
		CID:                   reg.CID,
		CIDHash:               reg.CIDHash,
		IPID:                  reg.IPID,
		TransactionHash:       reg.TxHash,
		AnchorTransactionHash: reg.AnchorTxHash,
		AnchorConfirmedAt:     reg.AnchorConfirmedAt,
		Title:                 reg.Title,
		CreatedAt:             reg.CreatedAt,
		UpdatedAt:             reg.UpdatedAt,
	}
}
