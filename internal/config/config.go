package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Ledger source kinds
const (
	SourceGraphQL  = "graphql"
	SourcePostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port        string   `envconfig:"PORT" default:"8080"`
	Env         string   `envconfig:"ENV" default:"development"`
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`

	// Ledger source
	LedgerSource string        `envconfig:"LEDGER_SOURCE" default:"graphql"`
	GraphQL      GraphQLConfig `envconfig:"GRAPHQL"`
	DatabaseURL  string        `envconfig:"DATABASE_URL"`

	// Statement exports
	S3              S3Config      `envconfig:"S3"`
	StatementURLTTL time.Duration `envconfig:"STATEMENT_URL_TTL" default:"15m"`
	GotenbergURL    string        `envconfig:"GOTENBERG_URL"`

	// Events
	Kafka KafkaConfig `envconfig:"KAFKA"`

	RateLimit RateLimitConfig `envconfig:"RATE_LIMIT"`
}

// GraphQLConfig holds the upstream ledger API settings
type GraphQLConfig struct {
	Endpoint string        `envconfig:"ENDPOINT"`
	Token    string        `envconfig:"TOKEN"`
	Timeout  time.Duration `envconfig:"TIMEOUT" default:"15s"`
	PageSize int           `envconfig:"PAGE_SIZE" default:"200"`
	MaxPages int           `envconfig:"MAX_PAGES" default:"50"`
}

// S3Config holds AWS S3 configuration. Archiving is disabled when Bucket is empty.
type S3Config struct {
	Region          string `envconfig:"REGION" default:"ap-south-1"`
	Bucket          string `envconfig:"BUCKET"`
	AccessKeyID     string `envconfig:"ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"SECRET_ACCESS_KEY"`
	Endpoint        string `envconfig:"ENDPOINT"` // Optional: for MinIO/LocalStack local dev
}

// KafkaConfig holds broker settings. Publishing is disabled when Brokers is empty.
type KafkaConfig struct {
	Brokers []string `envconfig:"BROKERS"`
	Topic   string   `envconfig:"TOPIC" default:"ledger.statement_archived"`
}

// RateLimitConfig holds per-IP request limits
type RateLimitConfig struct {
	PerMinute int `envconfig:"PER_MINUTE" default:"120"`
	Burst     int `envconfig:"BURST" default:"20"`
}

// Load reads configuration from the environment, after loading .env if present
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	cfg.LedgerSource = strings.ToLower(strings.TrimSpace(cfg.LedgerSource))

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	switch c.LedgerSource {
	case SourceGraphQL:
		if c.GraphQL.Endpoint == "" {
			return fmt.Errorf("GRAPHQL_ENDPOINT is required when LEDGER_SOURCE=graphql")
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when LEDGER_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("LEDGER_SOURCE must be %q or %q, got %q", SourceGraphQL, SourcePostgres, c.LedgerSource)
	}
	if c.GraphQL.PageSize <= 0 {
		return fmt.Errorf("GRAPHQL_PAGE_SIZE must be positive")
	}
	if c.RateLimit.PerMinute <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE and RATE_LIMIT_BURST must be positive")
	}
	return nil
}
