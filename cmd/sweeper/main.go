package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/remixhub/registry/internal/adapter"
	"github.com/remixhub/registry/internal/config"
	"github.com/remixhub/registry/internal/logger"
	"github.com/remixhub/registry/internal/messaging"
	"github.com/remixhub/registry/internal/providers/jetstream"
	"github.com/remixhub/registry/internal/providers/story"
	"github.com/remixhub/registry/internal/registration"
	"github.com/remixhub/registry/internal/store"
	"github.com/remixhub/registry/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	once       = flag.Bool("once", false, "Run a single repair cycle and exit")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadSweeperConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		Environment:     cfg.Environment,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "sweeper",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting anchor repair sweeper")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	if cfg.Database.AutoMigrate {
		if err := store.Migrate(db); err != nil {
			logger.FatalCtx(ctx, "Failed to apply migrations", zap.Error(err))
		}
	}

	dataStore := store.NewPGStore(db)
	cursorStore := store.NewCursorStore(db)

	// Initialize clock adapter
	clock := adapter.NewClock()

	// Connect to the ledger. The sweeper only reads, so no private key is passed.
	ethClient, err := adapter.NewEthClientDialer().Dial(ctx, cfg.Story.RPCURL)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to dial ledger RPC", zap.Error(err))
	}
	ledger, err := story.NewClient(story.Config{
		ChainID:                cfg.Story.ChainID,
		IPAssetRegistryAddress: cfg.Story.IPAssetRegistryAddress,
		RemixHubAddress:        cfg.Story.RemixHubAddress,
		StartBlock:             cfg.Story.StartBlock,
		LogBlockRange:          cfg.Story.LogBlockRange,
	}, ethClient, clock)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create ledger client", zap.Error(err))
	}
	defer ledger.Close()

	if !ledger.RemixHubEnabled() {
		logger.FatalCtx(ctx, "RemixHub contract address is required for anchor repair")
	}

	// Registration events
	publisher := newPublisher(ctx, cfg.NATS)
	defer publisher.Close()

	registrations := registration.NewService(registration.Config{}, dataStore, clock, nil, publisher)

	repairConfig := &sweeper.AnchorRepairSweeperConfig{
		Interval:           cfg.AnchorRepair.Interval,
		BatchSize:          cfg.AnchorRepair.BatchSize,
		MinAge:             cfg.AnchorRepair.MinAge,
		MaxAge:             cfg.AnchorRepair.MaxAge,
		FullRescanInterval: cfg.AnchorRepair.FullRescanInterval,
		WorkerPoolSize:     cfg.AnchorRepair.Worker.WorkerPoolSize,
	}
	repairSweeper := sweeper.NewAnchorRepairSweeper(repairConfig, dataStore, cursorStore, ledger, registrations, clock)

	logger.InfoCtx(ctx, "Initialized anchor repair sweeper",
		zap.Duration("interval", cfg.AnchorRepair.Interval),
		zap.Int("batch_size", cfg.AnchorRepair.BatchSize),
		zap.Duration("min_age", cfg.AnchorRepair.MinAge),
		zap.Int("worker_pool_size", cfg.AnchorRepair.Worker.WorkerPoolSize),
	)

	if *once {
		repaired, err := repairSweeper.RunCycle(ctx)
		if err != nil {
			logger.FatalCtx(ctx, "Anchor repair cycle failed", zap.Error(err))
		}
		logger.InfoCtx(ctx, "Anchor repair cycle completed", zap.Int("repaired", repaired))
		return
	}

	// Start the sweeper in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := repairSweeper.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	// Cancel context to stop the sweeper
	cancel()

	// Give the sweeper time to finish the current cycle
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := repairSweeper.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}

	logger.InfoCtx(shutdownCtx, "Sweeper stopped")
}

func newPublisher(ctx context.Context, c config.NATSConfig) messaging.Publisher {
	if c.URL == "" {
		return messaging.NewNoopPublisher()
	}

	publisher, err := jetstream.NewPublisher(ctx, jetstream.Config{
		URL:            c.URL,
		StreamName:     c.StreamName,
		SubjectPrefix:  c.SubjectPrefix,
		MaxReconnects:  c.MaxReconnects,
		ReconnectWait:  c.ReconnectWait,
		ConnectionName: c.ConnectionName,
	}, adapter.NewNatsJetStream())
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("component", "nats"))
		return messaging.NewNoopPublisher()
	}
	return publisher
}
