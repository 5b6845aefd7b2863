package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Upstream  UpstreamConfig
	Sync      SyncConfig
	Map       MapConfig
	RateLimit RateLimitConfig
	Telemetry TelemetryConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           string        `env:"SERVER_PORT" envDefault:"8080"`
	Env            string        `env:"SERVER_ENV" envDefault:"development"`
	ReadTimeout    time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout   time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"60s"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string `env:"DB_HOST" envDefault:"localhost"`
	Port      string `env:"DB_PORT" envDefault:"8000"`
	Namespace string `env:"DB_NAMESPACE" envDefault:"eternum"`
	Database  string `env:"DB_DATABASE" envDefault:"wasd"`
	User      string `env:"DB_USER" envDefault:"root"`
	Password  string `env:"DB_PASSWORD" envDefault:"root"`
}

// UpstreamConfig holds the third-party endpoints the API reads from.
// The SQL and GraphQL endpoints are optional at startup; routes that need
// them report a configuration error when they are unset.
type UpstreamConfig struct {
	GameDataSQL           string        `env:"GAME_DATA_SQL"`
	SeasonPassesSQL       string        `env:"SEASON_PASSES_SQL"`
	SeasonPassesGQL       string        `env:"SEASON_PASSES_GQL"`
	SeasonPassesContract  string        `env:"SEASON_PASSES_CONTRACT_ADDRESS"`
	RealmMetadataContract string        `env:"REALM_METADATA_CONTRACT_ADDRESS" envDefault:"0x7ae27a31bb6526e3de9cf02f081f6ce0615ac12a6d7b85ee58b8ad7947a2809"`
	RealmContract         string        `env:"REALM_CONTRACT_ADDRESS" envDefault:"0x060e8836acbebb535dfcd237ff01f20be503aae407b67bb6e3b5869afae97156"`
	CartridgeAPIURL       string        `env:"CARTRIDGE_API_URL" envDefault:"https://api.cartridge.gg/query"`
	StarknetRPCURLs       []string      `env:"STARKNET_RPC_URLS" envSeparator:"," envDefault:"https://starknet-mainnet.public.blastapi.io,https://free-rpc.nethermind.io/mainnet-juno,https://api.zan.top/public/starknet-mainnet"`
	RequestTimeout        time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"30s"`
	UserAgent             string        `env:"UPSTREAM_USER_AGENT" envDefault:"EternumWASD-BackendFetcher/1.0"`
}

// SyncConfig controls the realm and owner refresh jobs
type SyncConfig struct {
	RealmsEnabled  bool          `env:"SYNC_REALMS_ENABLED" envDefault:"false"`
	RealmsInterval time.Duration `env:"SYNC_REALMS_INTERVAL" envDefault:"6h"`
	OwnersEnabled  bool          `env:"SYNC_OWNERS_ENABLED" envDefault:"false"`
	OwnersInterval time.Duration `env:"SYNC_OWNERS_INTERVAL" envDefault:"12h"`
	RPCConcurrency int           `env:"SYNC_RPC_CONCURRENCY" envDefault:"8"`
	RPCStagger     time.Duration `env:"SYNC_RPC_STAGGER" envDefault:"50ms"`
	RPCTimeout     time.Duration `env:"SYNC_RPC_TIMEOUT" envDefault:"10s"`
	TokenLimit     int           `env:"SYNC_TOKEN_LIMIT" envDefault:"8000"`
}

// MapConfig locates the hex-grid asset files
type MapConfig struct {
	AssetDir string `env:"MAP_ASSET_DIR" envDefault:"./assets/map"`
	Watch    bool   `env:"MAP_WATCH" envDefault:"false"`
}

// RateLimitConfig is the per-client request budget
type RateLimitConfig struct {
	Enabled bool    `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	PerSec  float64 `env:"RATE_LIMIT_PER_SEC" envDefault:"10"`
	Burst   int     `env:"RATE_LIMIT_BURST" envDefault:"30"`
}

// TelemetryConfig enables OTLP trace export when Endpoint is set
type TelemetryConfig struct {
	Endpoint    string `env:"OTEL_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"eternum-wasd-api"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}

	if c.Database.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.Database.Port == "" {
		errs = append(errs, errors.New("DB_PORT is required"))
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}

	for name, raw := range map[string]string{
		"GAME_DATA_SQL":     c.Upstream.GameDataSQL,
		"SEASON_PASSES_SQL": c.Upstream.SeasonPassesSQL,
		"SEASON_PASSES_GQL": c.Upstream.SeasonPassesGQL,
		"CARTRIDGE_API_URL": c.Upstream.CartridgeAPIURL,
	} {
		if raw == "" {
			continue
		}
		if err := checkURL(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if c.Upstream.CartridgeAPIURL == "" {
		errs = append(errs, errors.New("CARTRIDGE_API_URL is required"))
	}
	if len(c.Upstream.StarknetRPCURLs) == 0 {
		errs = append(errs, errors.New("STARKNET_RPC_URLS must have at least one endpoint"))
	}
	for _, raw := range c.Upstream.StarknetRPCURLs {
		if err := checkURL(raw); err != nil {
			errs = append(errs, fmt.Errorf("STARKNET_RPC_URLS: %w", err))
		}
	}
	if c.Upstream.RequestTimeout <= 0 {
		errs = append(errs, errors.New("UPSTREAM_TIMEOUT must be positive"))
	}

	if c.Sync.RealmsEnabled && c.Sync.RealmsInterval <= 0 {
		errs = append(errs, errors.New("SYNC_REALMS_INTERVAL must be positive when SYNC_REALMS_ENABLED is true"))
	}
	if c.Sync.OwnersEnabled && c.Sync.OwnersInterval <= 0 {
		errs = append(errs, errors.New("SYNC_OWNERS_INTERVAL must be positive when SYNC_OWNERS_ENABLED is true"))
	}
	if c.Sync.RPCConcurrency < 1 {
		errs = append(errs, errors.New("SYNC_RPC_CONCURRENCY must be at least 1"))
	}
	if c.Sync.RPCStagger < 0 {
		errs = append(errs, errors.New("SYNC_RPC_STAGGER must not be negative"))
	}
	if c.Sync.TokenLimit <= 0 {
		errs = append(errs, errors.New("SYNC_TOKEN_LIMIT must be positive"))
	}

	if c.Map.AssetDir == "" {
		errs = append(errs, errors.New("MAP_ASSET_DIR is required"))
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.PerSec <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_PER_SEC must be positive"))
		}
		if c.RateLimit.Burst < 1 {
			errs = append(errs, errors.New("RATE_LIMIT_BURST must be at least 1"))
		}
	}

	if c.Telemetry.Endpoint != "" {
		if err := checkURL(c.Telemetry.Endpoint); err != nil {
			errs = append(errs, fmt.Errorf("OTEL_ENDPOINT: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}
	return nil
}
