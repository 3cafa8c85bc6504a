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
	"github.com/remixhub/registry/internal/api/middleware"
	"github.com/remixhub/registry/internal/api/rest"
	"github.com/remixhub/registry/internal/api/server"
	"github.com/remixhub/registry/internal/config"
	"github.com/remixhub/registry/internal/designs"
	"github.com/remixhub/registry/internal/logger"
	"github.com/remixhub/registry/internal/messaging"
	"github.com/remixhub/registry/internal/metadata"
	"github.com/remixhub/registry/internal/providers/jetstream"
	"github.com/remixhub/registry/internal/providers/pinata"
	"github.com/remixhub/registry/internal/providers/story"
	"github.com/remixhub/registry/internal/publishing"
	"github.com/remixhub/registry/internal/ratelimit"
	"github.com/remixhub/registry/internal/registration"
	"github.com/remixhub/registry/internal/store"
	"github.com/remixhub/registry/internal/uri"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		Environment:     cfg.Environment,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "api-server",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting RemixHub registry API")

	// Connect to database. The handle is created once here and injected everywhere.
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
		logger.InfoCtx(ctx, "Database migrations applied")
	}

	dataStore := store.NewPGStore(db)

	// Initialize adapters
	clock := adapter.NewClock()
	jcs := adapter.NewJCS()
	gatewayClient := adapter.NewHTTPClient(30 * time.Second)
	pinataHTTPClient := adapter.NewHTTPClient(cfg.Pinata.Timeout)

	// Connect to the ledger
	ethClient, err := adapter.NewEthClientDialer().Dial(ctx, cfg.Story.RPCURL)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to dial ledger RPC", zap.Error(err))
	}
	ledger, err := story.NewClient(storyConfig(cfg.Story), ethClient, clock)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create ledger client", zap.Error(err))
	}
	defer ledger.Close()
	logger.InfoCtx(ctx, "Connected to ledger",
		zap.Int64("chain_id", cfg.Story.ChainID),
		zap.Bool("remix_hub_enabled", ledger.RemixHubEnabled()),
	)

	// Outgoing request limits shared across replicas
	rateLimitProxy := newRateLimitProxy(ctx, cfg.RateLimit, clock)
	if rateLimitProxy != nil {
		defer func() {
			if err := rateLimitProxy.Close(); err != nil {
				logger.Warn("Failed to close rate limit proxy", zap.Error(err))
			}
		}()
	}

	// Registration events
	publisher := newPublisher(ctx, cfg.NATS)
	defer publisher.Close()

	// Core services
	var verifier registration.ChainVerifier
	if cfg.Resolver.VerifyOnChain {
		verifier = ledger
	}
	registrations := registration.NewService(registration.Config{
		MaxAttempts:   cfg.Resolver.MaxAttempts,
		Interval:      cfg.Resolver.Interval,
		MaxBatchSize:  cfg.Lookup.MaxBatchSize,
		VerifyOnChain: cfg.Resolver.VerifyOnChain,
	}, dataStore, clock, verifier, publisher)

	pinner := pinata.NewClient(pinata.Config{
		APIURL:  cfg.Pinata.APIURL,
		JWT:     cfg.Pinata.JWT,
		MaxSize: cfg.Pinata.MaxSize,
	}, pinataHTTPClient, jcs, rateLimitProxy)

	publishingService := publishing.NewService(publishing.Config{}, registrations, ledger, pinner, clock)

	uriResolver := uri.NewResolver(gatewayClient, &uri.Config{IPFSGateways: cfg.URI.IPFSGateways})
	metadataResolver := metadata.NewResolver(gatewayClient, uriResolver, rateLimitProxy)
	designsService := designs.NewService(designs.Config{
		LookupChunkSize: cfg.Lookup.MaxBatchSize,
		MetadataWorkers: cfg.Worker.WorkerPoolSize,
	}, ledger, registrations, metadataResolver)

	// Create server config
	serverConfig := server.Config{
		Debug:          cfg.Debug,
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(cfg.Server.IdleTimeout) * time.Second,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadSize:  cfg.Pinata.MaxSize,
		Auth: middleware.AuthConfig{
			JWTPublicKey: cfg.Auth.JWTPublicKey,
			APIKeys:      cfg.Auth.APIKeys,
		},
	}

	srv := server.New(serverConfig, rest.Services{
		Publishing:    publishingService,
		Designs:       designsService,
		Registrations: registrations,
		Verifier:      ledger,
		Database:      dataStore,
	})

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err, zap.String("component", "server"))
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}

	logger.Info("API server stopped")
}

func storyConfig(c config.StoryConfig) story.Config {
	return story.Config{
		ChainID:                           c.ChainID,
		PrivateKey:                        c.PrivateKey,
		SPGNFTContract:                    c.SPGNFTContract,
		LicenseAttachmentWorkflowsAddress: c.LicenseAttachmentWorkflowsAddress,
		DerivativeWorkflowsAddress:        c.DerivativeWorkflowsAddress,
		IPAssetRegistryAddress:            c.IPAssetRegistryAddress,
		LicenseRegistryAddress:            c.LicenseRegistryAddress,
		LicenseTemplateAddress:            c.LicenseTemplateAddress,
		RoyaltyPolicyAddress:              c.RoyaltyPolicyAddress,
		RemixHubAddress:                   c.RemixHubAddress,
		Currency:                          c.Currency,
		CommercialRevShare:                c.CommercialRevShare,
		DefaultMintingFee:                 c.DefaultMintingFee,
		StartBlock:                        c.StartBlock,
		LogBlockRange:                     c.LogBlockRange,
		ConfirmationTimeout:               c.ConfirmationTimeout,
		ReceiptPollInterval:               c.ReceiptPollInterval,
	}
}

// newPublisher connects to NATS JetStream, falling back to a no-op publisher when
// NATS is not configured or unreachable. Events are advisory.
func newPublisher(ctx context.Context, c config.NATSConfig) messaging.Publisher {
	if c.URL == "" {
		logger.WarnCtx(ctx, "NATS not configured, registration events are disabled")
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

	logger.InfoCtx(ctx, "Connected to NATS", zap.String("stream", c.StreamName))
	return publisher
}

// newRateLimitProxy returns nil when Redis is not configured, which leaves outgoing
// provider calls unthrottled.
func newRateLimitProxy(ctx context.Context, c config.RateLimiterConfig, clock adapter.Clock) ratelimit.Proxy {
	if c.RedisURL == "" {
		logger.WarnCtx(ctx, "Rate limiter not configured, provider calls are unthrottled")
		return nil
	}

	redisClient, err := adapter.NewRedisClient(c.RedisURL, c.RedisPassword)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("component", "rate_limit"))
		return nil
	}

	proxy, err := ratelimit.NewProxy(c, redisClient, clock)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("component", "rate_limit"))
		_ = redisClient.Close()
		return nil
	}
	return proxy
}
