package sweeper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/remixhub/registry/internal/adapter"
	"github.com/remixhub/registry/internal/domain"
	"github.com/remixhub/registry/internal/logger"
	"github.com/remixhub/registry/internal/metrics"
	"github.com/remixhub/registry/internal/providers/story"
	"github.com/remixhub/registry/internal/registration"
	"github.com/remixhub/registry/internal/store"
	"github.com/remixhub/registry/internal/store/schema"
	"github.com/remixhub/registry/internal/types"
)

const (
	// ANCHOR_REPAIR_CURSOR names the block cursor of the anchor repair sweeper
	ANCHOR_REPAIR_CURSOR = "anchor_repair"

	lookupChunkSize = 200

	// defaultMaxAge applies when MaxAge is unset or not above MinAge
	defaultMaxAge = 7 * 24 * time.Hour
)

// AnchorRepairSweeperConfig holds configuration for the anchor repair sweeper
type AnchorRepairSweeperConfig struct {
	Interval           time.Duration // Time to sleep between sweep cycles
	BatchSize          int           // Stale rows inspected per cycle
	MinAge             time.Duration // Rows younger than this may still be mid-flow
	MaxAge             time.Duration // Rows older than this no longer trigger scans from the start block
	FullRescanInterval time.Duration // Minimum time between scans from the start block
	WorkerPoolSize     int           // Concurrent anchor writes
}

// anchorRepairSweeper re-anchors cache rows whose ledger registration landed but whose final cache write did not
type anchorRepairSweeper struct {
	config        *AnchorRepairSweeperConfig
	store         store.Store
	cursors       store.CursorStore
	ledger        story.Client
	registrations registration.Service
	clock         adapter.Clock
	lastFullScan  time.Time
	running       atomic.Bool
	stopChan      chan struct{}
	stoppedCh     chan struct{}
}

// NewAnchorRepairSweeper creates a new anchor repair sweeper
func NewAnchorRepairSweeper(
	config *AnchorRepairSweeperConfig,
	st store.Store,
	cursors store.CursorStore,
	ledger story.Client,
	registrations registration.Service,
	clock adapter.Clock,
) Sweeper {
	if config.WorkerPoolSize < 1 {
		config.WorkerPoolSize = 1
	}
	if config.BatchSize < 1 {
		config.BatchSize = 100
	}
	if config.MaxAge <= config.MinAge {
		config.MaxAge = defaultMaxAge
	}

	return &anchorRepairSweeper{
		config:        config,
		store:         st,
		cursors:       cursors,
		ledger:        ledger,
		registrations: registrations,
		clock:         clock,
		stopChan:      make(chan struct{}),
		stoppedCh:     make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *anchorRepairSweeper) Name() string {
	return "anchor-repair-sweeper"
}

// Start runs sweep cycles until the context is canceled or Stop is called
func (s *anchorRepairSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting anchor repair sweeper",
		zap.Duration("interval", s.config.Interval),
		zap.Int("batch_size", s.config.BatchSize),
		zap.Duration("min_age", s.config.MinAge),
		zap.Duration("max_age", s.config.MaxAge),
	)

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Anchor repair sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
			return nil
		case <-s.stopChan:
			logger.InfoCtx(ctx, "Anchor repair sweeper stop requested")
			return nil
		default:
			if _, err := s.RunCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.ErrorCtx(ctx, err)
			}
			if !s.sleep(ctx, s.config.Interval) {
				return nil
			}
		}
	}
}

// Stop gracefully stops the sweeper with timeout support
func (s *anchorRepairSweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	logger.InfoCtx(ctx, "Stopping anchor repair sweeper")
	close(s.stopChan)

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Anchor repair sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Anchor repair sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// RunCycle scans new RemixHub events once and re-anchors every matching row that is still missing its ip id or anchor tx.
// Stale rows between MinAge and MaxAge old make the scan start from the first block, at most once per FullRescanInterval.
// It returns the number of repaired rows.
func (s *anchorRepairSweeper) RunCycle(ctx context.Context) (int, error) {
	startTime := s.clock.Now()

	stale, err := s.store.ListUnanchoredRegistrations(ctx, startTime.Add(-s.config.MaxAge), startTime.Add(-s.config.MinAge), s.config.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list unanchored registrations: %w", err)
	}

	latest, err := s.ledger.LatestBlock(ctx)
	if err != nil {
		return 0, err
	}

	cursor, err := s.cursors.GetBlockCursor(ctx, ANCHOR_REPAIR_CURSOR)
	if err != nil {
		return 0, err
	}

	// block 0 means the configured start block
	var from uint64
	if cursor > 0 {
		from = cursor + 1
	}
	if len(stale) > 0 && (s.lastFullScan.IsZero() || s.clock.Since(s.lastFullScan) >= s.config.FullRescanInterval) {
		from = 0
		s.lastFullScan = startTime
	}

	var events []domain.OriginalRegistered
	if from == 0 || from <= latest {
		events, err = s.ledger.ScanOriginals(ctx, story.ScanFilter{FromBlock: from, ToBlock: latest})
		if err != nil {
			return 0, err
		}
	}

	repaired, err := s.repair(ctx, events)
	if err != nil {
		return repaired, err
	}

	if err := s.cursors.SetBlockCursor(ctx, ANCHOR_REPAIR_CURSOR, latest); err != nil {
		return repaired, err
	}

	logger.InfoCtx(ctx, "Anchor repair cycle completed",
		zap.Duration("duration", s.clock.Since(startTime)),
		zap.Int("stale", len(stale)),
		zap.Int("events", len(events)),
		zap.Int("repaired", repaired),
		zap.Uint64("from_block", from),
		zap.Uint64("to_block", latest),
	)

	return repaired, nil
}

// repair anchors each not yet anchored row whose cid hash appears in events
func (s *anchorRepairSweeper) repair(ctx context.Context, events []domain.OriginalRegistered) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	// the most recent event wins a shared hash
	byHash := make(map[string]domain.OriginalRegistered, len(events))
	for _, e := range events {
		key := domain.NormalizeHash(e.CIDHash)
		if prev, ok := byHash[key]; !ok || e.BlockNumber >= prev.BlockNumber {
			byHash[key] = e
		}
	}

	hashes := make([]string, 0, len(byHash))
	for h := range byHash {
		hashes = append(hashes, h)
	}

	var candidates []schema.Registration
	for _, chunk := range types.Chunk(hashes, lookupChunkSize) {
		regs, err := s.store.GetRegistrationsByCIDHashes(ctx, chunk)
		if err != nil {
			return 0, fmt.Errorf("failed to look up registrations: %w", err)
		}
		for _, r := range regs {
			if types.StringNilOrEmpty(r.IPID) || types.StringNilOrEmpty(r.AnchorTxHash) {
				candidates = append(candidates, r)
			}
		}
	}

	if len(candidates) == 0 {
		return 0, nil
	}

	pool := pond.NewPool(
		s.config.WorkerPoolSize,
		pond.WithQueueSize(len(candidates)),
		pond.WithContext(ctx),
	)

	var repaired atomic.Int32
	for _, reg := range candidates {
		event := byHash[domain.NormalizeHash(reg.CIDHash)]
		pool.Submit(func() {
			ipID := event.IPID
			if !types.StringNilOrEmpty(reg.IPID) {
				// the cached ip id is never replaced
				ipID = *reg.IPID
				if !strings.EqualFold(ipID, event.IPID) {
					logger.WarnCtx(ctx, "Cached ip id disagrees with ledger event, keeping cached value",
						zap.String("cid", reg.CID),
						zap.String("cached", ipID),
						zap.String("ledger", event.IPID))
				}
			}
			txHash := event.TxHash

			_, err := s.registrations.Anchor(ctx, registration.AnchorRequest{
				CID:          reg.CID,
				IPID:         &ipID,
				AnchorTxHash: &txHash,
				EventType:    domain.RegistrationEventRepaired,
			})
			if err != nil {
				logger.ErrorCtx(ctx, err, zap.String("cid", reg.CID))
				return
			}

			repaired.Add(1)
			metrics.AnchorRepairsTotal.Inc()
			logger.InfoCtx(ctx, "Re-anchored registration from ledger event",
				zap.String("cid", reg.CID),
				zap.String("ipId", ipID),
				zap.String("anchorTxHash", txHash),
				zap.Uint64("block", event.BlockNumber))
		})
	}
	pool.StopAndWait()

	return int(repaired.Load()), nil
}

// sleep sleeps for the given duration but can be interrupted by context cancellation
// Returns true if sleep completed normally, false if interrupted
func (s *anchorRepairSweeper) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-s.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-s.stopChan:
		return false
	}
}
