package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/iho/axiompay/internal/domain"
	"github.com/iho/axiompay/internal/usecase"
)

// Config holds all application configuration.
type Config struct {
	// Ledger
	PlatformAccountID  string `env:"PLATFORM_ACCOUNT_ID"`
	PlatformPrivateKey string `env:"PLATFORM_PRIVATE_KEY"`
	BusinessAccountID  string `env:"BUSINESS_ACCOUNT_ID"`
	LedgerNetwork      string `env:"LEDGER_NETWORK"    envDefault:"testnet"`
	ExplorerBaseURL    string `env:"EXPLORER_BASE_URL" envDefault:"https://hashscan.io"`
	ProductName        string `env:"PRODUCT_NAME"      envDefault:"Axiom Pay"`

	// Submission
	SubmitMaxRetries      int           `env:"SUBMIT_MAX_RETRIES"      envDefault:"3"`
	SubmitInitialInterval time.Duration `env:"SUBMIT_INITIAL_INTERVAL" envDefault:"250ms"`
	SubmitMaxInterval     time.Duration `env:"SUBMIT_MAX_INTERVAL"     envDefault:"2s"`
	SubmitMaxElapsed      time.Duration `env:"SUBMIT_MAX_ELAPSED"      envDefault:"15s"`
	SubmitMaxInFlight     int           `env:"SUBMIT_MAX_IN_FLIGHT"    envDefault:"16"`

	// HTTP Server
	HTTPPort            string        `env:"HTTP_PORT"             envDefault:"3001"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"60s"`
	HTTPIdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"60s"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	CORSAllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS"  envDefault:"*" envSeparator:","`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Redis (optional - leave empty to disable idempotency keys)
	RedisURL       string        `env:"REDIS_URL"       envDefault:""`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	// Events (optional - leave brokers empty to log events instead)
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC"   envDefault:"subscription.scheduled"`

	// Rate limiting
	RateLimitEnabled bool    `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     float64 `env:"RATE_LIMIT_RPS"     envDefault:"5"`
	RateLimitBurst   int     `env:"RATE_LIMIT_BURST"   envDefault:"10"`
}

// Load reads an optional .env file, then configuration from environment
// variables. Variables already set in the environment win over .env values.
// Any failure wraps domain.ErrConfiguration.
func Load() (*Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is Load with explicit dotenv paths. Missing files are skipped.
func LoadFiles(paths ...string) (*Config, error) {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: read %s: %w", domain.ErrConfiguration, p, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required ledger credentials and bounds.
func (c *Config) Validate() error {
	if _, err := c.OperatorIdentity(); err != nil {
		return err
	}

	if c.ProductName == "" || len(c.ProductName) > usecase.MaxProductNameBytes {
		return fmt.Errorf("%w: PRODUCT_NAME must be 1-%d bytes", domain.ErrConfiguration, usecase.MaxProductNameBytes)
	}
	if c.SubmitMaxRetries < 0 {
		return fmt.Errorf("%w: SUBMIT_MAX_RETRIES must not be negative", domain.ErrConfiguration)
	}
	if c.SubmitMaxInFlight <= 0 {
		return fmt.Errorf("%w: SUBMIT_MAX_IN_FLIGHT must be positive", domain.ErrConfiguration)
	}
	if c.RateLimitEnabled && (c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0) {
		return fmt.Errorf("%w: RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive", domain.ErrConfiguration)
	}

	return nil
}

// OperatorIdentity builds the immutable ledger identity. The returned value
// is shared by reference with every component that talks to the ledger.
func (c *Config) OperatorIdentity() (*domain.OperatorIdentity, error) {
	if c.PlatformAccountID == "" {
		return nil, fmt.Errorf("%w: PLATFORM_ACCOUNT_ID is required", domain.ErrConfiguration)
	}
	if c.PlatformPrivateKey == "" {
		return nil, fmt.Errorf("%w: PLATFORM_PRIVATE_KEY is required", domain.ErrConfiguration)
	}
	if c.BusinessAccountID == "" {
		return nil, fmt.Errorf("%w: BUSINESS_ACCOUNT_ID is required", domain.ErrConfiguration)
	}

	operator, err := domain.ParseAccountRef(c.PlatformAccountID)
	if err != nil {
		return nil, fmt.Errorf("%w: PLATFORM_ACCOUNT_ID: %w", domain.ErrConfiguration, err)
	}

	business, err := domain.ParseAccountRef(c.BusinessAccountID)
	if err != nil {
		return nil, fmt.Errorf("%w: BUSINESS_ACCOUNT_ID: %w", domain.ErrConfiguration, err)
	}

	network, err := domain.ParseNetwork(c.LedgerNetwork)
	if err != nil {
		return nil, err
	}

	id := &domain.OperatorIdentity{
		AccountID:       operator,
		PrivateKey:      domain.NewSecret(c.PlatformPrivateKey),
		BusinessAccount: business,
		Network:         network,
	}

	return id, id.Validate()
}

// Explorer returns the public explorer settings.
func (c *Config) Explorer() domain.Explorer {
	network, _ := domain.ParseNetwork(c.LedgerNetwork)
	return domain.Explorer{BaseURL: c.ExplorerBaseURL, Network: network}
}
