package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"sola/pkg/errors"
)

type Config struct {
	App           AppConfig
	Server        ServerConfig
	Postgres      PostgresConfig
	ClickHouse    ClickHouseConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Solana        SolanaConfig
	AI            AIConfig
	MarketData    MarketDataConfig
	Auth          AuthConfig
	Usage         UsageConfig
	Alerts        AlertsConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"sola"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type ServerConfig struct {
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Database string `envconfig:"POSTGRES_DB" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"25"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type ClickHouseConfig struct {
	Host     string `envconfig:"CLICKHOUSE_HOST" required:"true"`
	Port     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	User     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password string `envconfig:"CLICKHOUSE_PASSWORD"`
	Database string `envconfig:"CLICKHOUSE_DB" default:"sola"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" required:"true"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS" required:"true"`
	GroupID string   `envconfig:"KAFKA_GROUP_ID" default:"sola"`
}

// SolanaConfig configures the JSON-RPC client used for balance lookups.
// RPCURL has no default: falling back to a public mainnet endpoint silently
// is how rate limit incidents happen.
type SolanaConfig struct {
	RPCURL         string        `envconfig:"SOLANA_RPC_URL" required:"true"`
	RequestTimeout time.Duration `envconfig:"SOLANA_RPC_TIMEOUT" default:"10s"`
	RateLimit      float64       `envconfig:"SOLANA_RPC_RATE_LIMIT" default:"10"`
	RateBurst      int           `envconfig:"SOLANA_RPC_RATE_BURST" default:"20"`
	SolaMint       string        `envconfig:"SOLA_TOKEN_MINT" required:"true"`
}

type AIConfig struct {
	OpenAIKey       string `envconfig:"OPENAI_API_KEY"`
	GeminiKey       string `envconfig:"GEMINI_API_KEY"`
	DefaultProvider string `envconfig:"DEFAULT_AI_PROVIDER" default:"openai"`
	DefaultModel    string `envconfig:"DEFAULT_AI_MODEL" default:"gpt-4o"`
}

type MarketDataConfig struct {
	// Central API keys for token and NFT data providers (not user-specific)
	BaseURL        string        `envconfig:"MARKET_DATA_BASE_URL" default:"https://public-api.birdeye.so"`
	APIKey         string        `envconfig:"MARKET_DATA_API_KEY"`
	NFTBaseURL     string        `envconfig:"NFT_DATA_BASE_URL" default:"https://api-mainnet.magiceden.dev/v2"`
	RequestTimeout time.Duration `envconfig:"MARKET_DATA_TIMEOUT" default:"10s"`
}

type AuthConfig struct {
	JWTSecret   string        `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer   string        `envconfig:"JWT_ISSUER" default:"sola"`
	JWTDuration time.Duration `envconfig:"JWT_DURATION" default:"24h"`
}

type UsageConfig struct {
	WindowHours   int           `envconfig:"USAGE_WINDOW_HOURS" default:"6"`
	BalanceTTL    time.Duration `envconfig:"BALANCE_CACHE_TTL" default:"5m"`
	FlushInterval time.Duration `envconfig:"USAGE_FLUSH_INTERVAL" default:"5s"`
	FlushBatch    int           `envconfig:"USAGE_FLUSH_BATCH" default:"500"`
}

func (c UsageConfig) Window() time.Duration {
	return time.Duration(c.WindowHours) * time.Hour
}

type AlertsConfig struct {
	TelegramBotToken string `envconfig:"ALERTS_TELEGRAM_BOT_TOKEN"`
	AdminChatID      int64  `envconfig:"ALERTS_ADMIN_CHAT_ID"`
}

func (c AlertsConfig) Enabled() bool {
	return c.TelegramBotToken != "" && c.AdminChatID != 0
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	Provider    string `envconfig:"ERROR_TRACKING_PROVIDER" default:"sentry"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
