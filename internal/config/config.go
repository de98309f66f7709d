package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/lalithlochan/officebell/internal/webhook"
)

type Config struct {
	Port     int
	LogLevel string
	Env      string

	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis config
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	PrefsCacheTTL time.Duration

	// Per-user orchestrators idle this long are dropped.
	OrchestratorIdleTTL time.Duration

	AWSRegion string

	// SNS topic for ephemeral push toasts. Empty disables the push sink.
	SNSRegion   string
	SNSTopicARN string

	// SQS queue for live-set snapshots. Empty disables the observer.
	SQSRegion   string
	SQSQueueURL string

	// AWSEndpoint points every AWS client at LocalStack when set.
	AWSEndpoint string

	// Assistant webhook
	AssistantWebhookURL   string
	AssistantWebhookToken string
	AssistantTimeout      time.Duration
	AssistantMaxRetries   int
	AssistantRetryDelay   time.Duration

	RateLimitPerMinute     int
	SinkBreakerMaxFailures int
}

// Load reads configuration from environment variables with sensible
// defaults. A .env file in the working directory is applied first; values
// already present in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:     8080,
		LogLevel: "info",
		Env:      "development",

		DBHost:    "localhost",
		DBPort:    5432,
		DBUser:    "officebell",
		DBName:    "officebell",
		DBSSLMode: "disable",

		RedisHost: "localhost",
		RedisPort: 6379,

		PrefsCacheTTL:       10 * time.Minute,
		OrchestratorIdleTTL: 30 * time.Minute,

		AWSRegion: "us-east-1",

		AssistantTimeout:    webhook.DefaultTimeout,
		AssistantMaxRetries: webhook.DefaultMaxRetryAttempts,
		AssistantRetryDelay: webhook.DefaultRetryDelay,

		RateLimitPerMinute:     120,
		SinkBreakerMaxFailures: 5,
	}

	var err error

	if cfg.Port, err = intEnv("PORT", cfg.Port); err != nil {
		return nil, err
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if env := os.Getenv("ENV"); env != "" {
		cfg.Env = env
	}

	// Database config
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.DBHost = host
	}
	if cfg.DBPort, err = intEnv("DB_PORT", cfg.DBPort); err != nil {
		return nil, err
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.DBUser = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.DBPassword = password
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		cfg.DBName = dbname
	}
	if sslmode := os.Getenv("DB_SSLMODE"); sslmode != "" {
		cfg.DBSSLMode = sslmode
	}

	// Redis config
	if host := os.Getenv("REDIS_HOST"); host != "" {
		cfg.RedisHost = host
	}
	if cfg.RedisPort, err = intEnv("REDIS_PORT", cfg.RedisPort); err != nil {
		return nil, err
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.RedisPassword = password
	}
	if cfg.RedisDB, err = intEnv("REDIS_DB", cfg.RedisDB); err != nil {
		return nil, err
	}
	ttl, err := intEnv("PREFS_CACHE_TTL_SECONDS", int(cfg.PrefsCacheTTL/time.Second))
	if err != nil {
		return nil, err
	}
	cfg.PrefsCacheTTL = time.Duration(ttl) * time.Second
	if ttl, err = intEnv("ORCHESTRATOR_IDLE_TTL_SECONDS", int(cfg.OrchestratorIdleTTL/time.Second)); err != nil {
		return nil, err
	}
	cfg.OrchestratorIdleTTL = time.Duration(ttl) * time.Second

	// AWS
	if region := os.Getenv("AWS_REGION"); region != "" {
		cfg.AWSRegion = region
	}
	cfg.AWSEndpoint = os.Getenv("AWS_ENDPOINT_URL")

	if region := os.Getenv("SNS_REGION"); region != "" {
		cfg.SNSRegion = region
	} else {
		cfg.SNSRegion = cfg.AWSRegion
	}
	cfg.SNSTopicARN = os.Getenv("SNS_TOPIC_ARN")

	if region := os.Getenv("SQS_REGION"); region != "" {
		cfg.SQSRegion = region
	} else {
		cfg.SQSRegion = cfg.AWSRegion
	}
	cfg.SQSQueueURL = os.Getenv("SQS_QUEUE_URL")

	// Assistant webhook
	cfg.AssistantWebhookURL = os.Getenv("ASSISTANT_WEBHOOK_URL")
	cfg.AssistantWebhookToken = os.Getenv("ASSISTANT_WEBHOOK_TOKEN")

	ms, err := intEnv("ASSISTANT_TIMEOUT_MS", int(cfg.AssistantTimeout/time.Millisecond))
	if err != nil {
		return nil, err
	}
	cfg.AssistantTimeout = time.Duration(ms) * time.Millisecond

	if cfg.AssistantMaxRetries, err = intEnv("ASSISTANT_MAX_RETRIES", cfg.AssistantMaxRetries); err != nil {
		return nil, err
	}

	ms, err = intEnv("ASSISTANT_RETRY_DELAY_MS", int(cfg.AssistantRetryDelay/time.Millisecond))
	if err != nil {
		return nil, err
	}
	cfg.AssistantRetryDelay = time.Duration(ms) * time.Millisecond

	if cfg.RateLimitPerMinute, err = intEnv("RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMinute); err != nil {
		return nil, err
	}
	if cfg.SinkBreakerMaxFailures, err = intEnv("SINK_BREAKER_MAX_FAILURES", cfg.SinkBreakerMaxFailures); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Webhook returns the per-call configuration for the assistant webhook.
func (c *Config) Webhook() webhook.Config {
	return webhook.Config{
		Endpoint:         c.AssistantWebhookURL,
		Timeout:          c.AssistantTimeout,
		MaxRetryAttempts: c.AssistantMaxRetries,
		RetryDelay:       c.AssistantRetryDelay,
		AuthToken:        c.AssistantWebhookToken,
	}
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
