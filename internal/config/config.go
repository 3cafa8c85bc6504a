package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/remixhub/registry/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug       bool   `mapstructure:"debug"`
	SentryDSN   string `mapstructure:"sentry_dsn"`
	Environment string `mapstructure:"environment"`
}

// URIConfig holds URI resolver configuration
type URIConfig struct {
	IPFSGateways []string `mapstructure:"ipfs_gateways"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // e.g. "5m", "1h"
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // e.g. "10m", "30m"
	AutoMigrate     bool          `mapstructure:"auto_migrate"`       // Apply embedded migrations on startup
}

// NATSConfig holds NATS JetStream configuration. An empty URL disables event publishing.
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	SubjectPrefix  string        `mapstructure:"subject_prefix"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// StoryConfig holds Story protocol ledger configuration
type StoryConfig struct {
	RPCURL                            string        `mapstructure:"rpc_url"`
	ChainID                           int64         `mapstructure:"chain_id"`
	PrivateKey                        string        `mapstructure:"private_key"`
	SPGNFTContract                    string        `mapstructure:"spg_nft_contract"`
	LicenseAttachmentWorkflowsAddress string        `mapstructure:"license_attachment_workflows_address"`
	DerivativeWorkflowsAddress        string        `mapstructure:"derivative_workflows_address"`
	IPAssetRegistryAddress            string        `mapstructure:"ip_asset_registry_address"`
	LicenseRegistryAddress            string        `mapstructure:"license_registry_address"`
	LicenseTemplateAddress            string        `mapstructure:"license_template_address"`
	RoyaltyPolicyAddress              string        `mapstructure:"royalty_policy_address"`
	RemixHubAddress                   string        `mapstructure:"remix_hub_address"`
	Currency                          string        `mapstructure:"currency"`
	CommercialRevShare                uint32        `mapstructure:"commercial_rev_share"` // percent
	DefaultMintingFee                 string        `mapstructure:"default_minting_fee"`  // wei
	StartBlock                        uint64        `mapstructure:"start_block"`
	LogBlockRange                     uint64        `mapstructure:"log_block_range"`
	ConfirmationTimeout               time.Duration `mapstructure:"confirmation_timeout"`
	ReceiptPollInterval               time.Duration `mapstructure:"receipt_poll_interval"`
}

// PinataConfig holds Pinata pinning service configuration
type PinataConfig struct {
	APIURL  string        `mapstructure:"api_url"`
	JWT     string        `mapstructure:"jwt"`
	Timeout time.Duration `mapstructure:"timeout"`
	MaxSize int64         `mapstructure:"max_size"` // bytes
}

// ResolverConfig holds the parent resolver retry policy
type ResolverConfig struct {
	MaxAttempts   int           `mapstructure:"max_attempts"`
	Interval      time.Duration `mapstructure:"interval"`
	VerifyOnChain bool          `mapstructure:"verify_on_chain"`
}

// LookupConfig holds batch lookup limits
type LookupConfig struct {
	MaxBatchSize int `mapstructure:"max_batch_size"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
	// AllowedOrigins restricts CORS; empty allows all origins
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig holds authentication configuration for write endpoints
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// WorkerConfig holds worker pool configuration
type WorkerConfig struct {
	WorkerPoolSize  int `mapstructure:"pool_size"`
	WorkerQueueSize int `mapstructure:"queue_size"`
}

// RateLimitConfig holds the limit for one outgoing provider
type RateLimitConfig struct {
	RequestsPerSecond int           `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxQueueTime      time.Duration `mapstructure:"max_queue_time"`
}

// RateLimiterConfig holds the distributed rate limiter configuration for outgoing calls.
// An empty RedisURL disables rate limiting.
type RateLimiterConfig struct {
	RedisURL                string                     `mapstructure:"redis_url"`
	RedisPassword           string                     `mapstructure:"redis_password"`
	RedisKeyPrefix          string                     `mapstructure:"redis_key_prefix"`
	MaxWorkers              int                        `mapstructure:"max_workers"`
	MaxQueueSize            int                        `mapstructure:"max_queue_size"`
	EnableLocalFallback     bool                       `mapstructure:"enable_local_fallback"`
	LocalFallbackMultiplier float64                    `mapstructure:"local_fallback_multiplier"`
	HealthCheckInterval     time.Duration              `mapstructure:"health_check_interval"`
	Providers               map[string]RateLimitConfig `mapstructure:"providers"`
}

// APIConfig holds configuration for the API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig      `mapstructure:"server"`
	Database   DatabaseConfig    `mapstructure:"database"`
	Auth       AuthConfig        `mapstructure:"auth"`
	Story      StoryConfig       `mapstructure:"story"`
	Pinata     PinataConfig      `mapstructure:"pinata"`
	URI        URIConfig         `mapstructure:"uri"`
	Resolver   ResolverConfig    `mapstructure:"resolver"`
	Lookup     LookupConfig      `mapstructure:"lookup"`
	NATS       NATSConfig        `mapstructure:"nats"`
	Worker     WorkerConfig      `mapstructure:"worker"`
	RateLimit  RateLimiterConfig `mapstructure:"rate_limit"`
}

// AnchorRepairConfig holds configuration for the anchor repair sweeper
type AnchorRepairConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	BatchSize int           `mapstructure:"batch_size"`
	MinAge    time.Duration `mapstructure:"min_age"`
	// MaxAge stops pins that were never published from forcing full rescans forever
	MaxAge time.Duration `mapstructure:"max_age"`
	// FullRescanInterval bounds how often stale rows trigger a scan from the start block
	FullRescanInterval time.Duration `mapstructure:"full_rescan_interval"`
	Worker             WorkerConfig  `mapstructure:"worker"`
}

// SweeperConfig holds configuration for the sweeper program
type SweeperConfig struct {
	BaseConfig   `mapstructure:",squash"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Story        StoryConfig        `mapstructure:"story"`
	NATS         NATSConfig         `mapstructure:"nats"`
	AnchorRepair AnchorRepairConfig `mapstructure:"anchor_repair"`
}

// LoadAPIConfig loads configuration for the API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 120)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("pinata.api_url", "https://api.pinata.cloud")
	v.SetDefault("pinata.timeout", "60s")
	v.SetDefault("pinata.max_size", 100*1024*1024) // 100MB
	v.SetDefault("uri.ipfs_gateways", []string{"https://gateway.pinata.cloud", domain.DEFAULT_IPFS_GATEWAY})
	v.SetDefault("resolver.max_attempts", 5)
	v.SetDefault("resolver.interval", "2s")
	v.SetDefault("resolver.verify_on_chain", false)
	v.SetDefault("lookup.max_batch_size", 200)
	v.SetDefault("worker.pool_size", 10)
	v.SetDefault("worker.queue_size", 256)
	v.SetDefault("rate_limit.redis_key_prefix", "remixhub:limiter:")
	v.SetDefault("rate_limit.enable_local_fallback", true)
	v.SetDefault("rate_limit.local_fallback_multiplier", 0.5)
	v.SetDefault("rate_limit.health_check_interval", "10s")
	v.SetDefault("rate_limit.providers.pinata.requests_per_second", 3)
	v.SetDefault("rate_limit.providers.pinata.burst", 5)
	v.SetDefault("rate_limit.providers.pinata.max_queue_time", "1m")
	v.SetDefault("rate_limit.providers.ipfs_gateway.requests_per_second", 10)
	v.SetDefault("rate_limit.providers.ipfs_gateway.burst", 20)
	v.SetDefault("rate_limit.providers.ipfs_gateway.max_queue_time", "30s")
	setDatabaseDefaults(v)
	setStoryDefaults(v)
	setNATSDefaults(v, "remixhub-api")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg APIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Resolver.MaxAttempts < 1 {
		return nil, errors.New("resolver.max_attempts must be at least 1")
	}
	if cfg.Lookup.MaxBatchSize < 1 {
		return nil, errors.New("lookup.max_batch_size must be at least 1")
	}

	return &cfg, nil
}

// LoadSweeperConfig loads configuration for the sweeper program
func LoadSweeperConfig(configFile string, envPath string) (*SweeperConfig, error) {
	v := configureViper("sweeper", configFile, envPath)

	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("anchor_repair.interval", "5m")
	v.SetDefault("anchor_repair.batch_size", 100)
	v.SetDefault("anchor_repair.min_age", "2m")
	v.SetDefault("anchor_repair.max_age", "168h")
	v.SetDefault("anchor_repair.full_rescan_interval", "1h")
	v.SetDefault("anchor_repair.worker.pool_size", 10)
	v.SetDefault("anchor_repair.worker.queue_size", 100)
	setDatabaseDefaults(v)
	setStoryDefaults(v)
	setNATSDefaults(v, "remixhub-sweeper")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg SweeperConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	if cfg.Database.Host == "" {
		return nil, errors.New("database.host is required")
	}
	if cfg.Database.DBName == "" {
		return nil, errors.New("database.dbname is required")
	}
	if cfg.Story.RPCURL == "" {
		return nil, errors.New("story.rpc_url is required")
	}
	if cfg.Story.RemixHubAddress == "" {
		return nil, errors.New("story.remix_hub_address is required")
	}

	return &cfg, nil
}

func setDatabaseDefaults(v *viper.Viper) {
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("database.auto_migrate", true)
}

// setStoryDefaults points the ledger client at the Aeneid testnet deployment
func setStoryDefaults(v *viper.Viper) {
	v.SetDefault("story.rpc_url", "https://aeneid.storyrpc.io")
	v.SetDefault("story.chain_id", domain.STORY_AENEID_CHAIN_ID)
	v.SetDefault("story.spg_nft_contract", "0xc32A8a0FF3beDDDa58393d022aF433e78739FAbc")
	v.SetDefault("story.license_attachment_workflows_address", "0xcC2E862bCee5B6036Db0de6E06Ae87e524a79fd8")
	v.SetDefault("story.derivative_workflows_address", "0x9e2d496f72C547C2C535B167e06ED8729B374a4f")
	v.SetDefault("story.ip_asset_registry_address", "0x77319B4031e6eF1250907aa00018B8B1c67a244b")
	v.SetDefault("story.license_registry_address", "0x529a750E02d8E2f15649c13D69a465286a780e24")
	v.SetDefault("story.license_template_address", "0x2E896b0b2Fdb7457499B56AAaA4AE55BCB4Cd316")
	v.SetDefault("story.royalty_policy_address", "0xBe54FB168b3c982b7AaE60dB6CF75Bd8447b390E")
	v.SetDefault("story.currency", "0x1514000000000000000000000000000000000000")
	v.SetDefault("story.commercial_rev_share", 10)
	v.SetDefault("story.default_minting_fee", "0")
	v.SetDefault("story.log_block_range", 10000)
	v.SetDefault("story.confirmation_timeout", "2m")
	v.SetDefault("story.receipt_poll_interval", "2s")
}

func setNATSDefaults(v *viper.Viper, connectionName string) {
	v.SetDefault("nats.stream_name", "REMIXHUB_REGISTRATIONS")
	v.SetDefault("nats.subject_prefix", "registrations")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.connection_name", connectionName)
}

// readConfig reads the config file, tolerating its absence so env vars alone can configure a service
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search order: current directory, service directory (cmd/api/), config directory
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("REMIXHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		"environment",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		"database.auto_migrate",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.subject_prefix",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		// Story
		"story.rpc_url",
		"story.chain_id",
		"story.private_key",
		"story.spg_nft_contract",
		"story.license_attachment_workflows_address",
		"story.derivative_workflows_address",
		"story.ip_asset_registry_address",
		"story.license_registry_address",
		"story.license_template_address",
		"story.royalty_policy_address",
		"story.remix_hub_address",
		"story.currency",
		"story.commercial_rev_share",
		"story.default_minting_fee",
		"story.start_block",
		"story.log_block_range",
		"story.confirmation_timeout",
		"story.receipt_poll_interval",
		// Pinata
		"pinata.api_url",
		"pinata.jwt",
		"pinata.timeout",
		"pinata.max_size",
		// Resolver / lookup
		"resolver.max_attempts",
		"resolver.interval",
		"resolver.verify_on_chain",
		"lookup.max_batch_size",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.allowed_origins",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		// URI
		"uri.ipfs_gateways",
		// Rate limiter
		"rate_limit.redis_url",
		"rate_limit.redis_password",
		"rate_limit.redis_key_prefix",
		"rate_limit.max_workers",
		"rate_limit.max_queue_size",
		"rate_limit.enable_local_fallback",
		"rate_limit.local_fallback_multiplier",
		"rate_limit.health_check_interval",
		// Worker
		"worker.pool_size",
		"worker.queue_size",
		// Anchor repair sweeper
		"anchor_repair.interval",
		"anchor_repair.batch_size",
		"anchor_repair.min_age",
		"anchor_repair.max_age",
		"anchor_repair.full_rescan_interval",
		"anchor_repair.worker.pool_size",
		"anchor_repair.worker.queue_size",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		_ = godotenv.Overload(filepath.Join(envPath, envFile)) // later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
