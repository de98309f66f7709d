package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lalithlochan/officebell/internal/api"
	"github.com/lalithlochan/officebell/internal/circuitbreaker"
	"github.com/lalithlochan/officebell/internal/config"
	"github.com/lalithlochan/officebell/internal/db"
	"github.com/lalithlochan/officebell/internal/notify"
	"github.com/lalithlochan/officebell/internal/observ"
	"github.com/lalithlochan/officebell/internal/prefs"
	"github.com/lalithlochan/officebell/internal/redis"
	"github.com/lalithlochan/officebell/internal/sink"
	"github.com/lalithlochan/officebell/internal/sns"
	"github.com/lalithlochan/officebell/internal/sqs"
	"github.com/lalithlochan/officebell/internal/webhook"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting officebell gateway",
		zap.String("env", cfg.Env),
		zap.Int("port", cfg.Port),
	)

	ctx := context.Background()
	var health []api.HealthCheck

	// Preferences live in Postgres.
	database, err := db.New(ctx, db.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	health = append(health, func(r *http.Request) (string, interface{}, bool) {
		database.ReportStats()
		if err := database.Health(r.Context()); err != nil {
			return "database", err.Error(), false
		}
		return "database", "ok", true
	})

	var store prefs.Store = db.NewPreferencesRepository(database, logger)

	// Redis fronts the store and backs de-duplication and rate limiting.
	// Without it the gateway still works, uncached and unlimited.
	redisClient, err := redis.New(ctx, redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		logger.Warn("redis unavailable, caching, idempotency and rate limiting disabled",
			zap.Error(err),
			zap.String("host", cfg.RedisHost),
		)
	}

	var dedup api.ShowDeduper
	var rateLimiter *redis.RateLimiter
	if redisClient != nil {
		defer redisClient.Close()
		store = redis.NewPreferenceCache(redisClient, store, cfg.PrefsCacheTTL, logger)
		dedup = redis.NewShowDeduper(redisClient, logger)
		rateLimiter = redis.NewRateLimiter(redisClient, logger, redis.RateLimitConfig{
			Limit:  cfg.RateLimitPerMinute,
			Window: time.Minute,
		})
		health = append(health, func(r *http.Request) (string, interface{}, bool) {
			if err := redisClient.Ping(r.Context()); err != nil {
				return "redis", err.Error(), false
			}
			return "redis", "ok", true
		})
	}

	// Ephemeral toasts always reach the log; SNS push is added when a topic
	// is configured, behind a breaker, and then decides delivery.
	ephemeral := sink.NewMultiSink().AddTap("log", sink.NewLogSink(logger))
	if cfg.SNSTopicARN != "" {
		publisher, err := sns.NewPublisher(ctx, sns.Config{
			Region:   cfg.SNSRegion,
			TopicARN: cfg.SNSTopicARN,
			Endpoint: cfg.AWSEndpoint,
		}, logger)
		if err != nil {
			logger.Warn("sns publisher unavailable, push toasts disabled", zap.Error(err))
		} else {
			breaker := circuitbreaker.New(circuitbreaker.Config{
				Name:        "sns",
				MaxFailures: cfg.SinkBreakerMaxFailures,
			}, logger)
			ephemeral.Add("sns", circuitbreaker.NewProtectedSink(publisher, breaker, logger))
			health = append(health, breakerCheck(breaker))
		}
	}

	observers := []notify.SnapshotObserver{sink.NewLogSink(logger)}
	if cfg.SQSQueueURL != "" {
		producer, err := sqs.NewProducer(ctx, sqs.Config{
			Region:   cfg.SQSRegion,
			QueueURL: cfg.SQSQueueURL,
			Endpoint: cfg.AWSEndpoint,
		}, logger)
		if err != nil {
			logger.Warn("sqs producer unavailable, live-set snapshots will not be published", zap.Error(err))
		} else {
			breaker := circuitbreaker.New(circuitbreaker.Config{
				Name:        "sqs",
				MaxFailures: cfg.SinkBreakerMaxFailures,
			}, logger)
			observers = append(observers, circuitbreaker.NewProtectedObserver(producer, breaker))
			health = append(health, breakerCheck(breaker))
		}
	}

	registry := api.NewRegistry(api.RegistryOptions{
		Store:     store,
		Ephemeral: ephemeral,
		Observers: observers,
		Haptics:   sink.NewLogHaptics(logger),
		IdleTTL:   cfg.OrchestratorIdleTTL,
		Logger:    logger,
	})
	defer registry.Close()

	evictCtx, stopEviction := context.WithCancel(ctx)
	defer stopEviction()
	go registry.RunEviction(evictCtx, time.Minute)

	handlerOpts := api.HandlerOptions{Dedup: dedup, Webhook: cfg.Webhook()}
	if cfg.AssistantWebhookURL != "" {
		handlerOpts.Assistant = webhook.NewClient(logger, &http.Client{})
		logger.Info("assistant webhook enabled",
			zap.String("url", webhook.RedactURL(cfg.AssistantWebhookURL)),
			zap.Duration("timeout", cfg.AssistantTimeout),
			zap.Int("max_attempts", cfg.AssistantMaxRetries),
		)
	}

	handler := api.NewHandler(logger, registry, store, handlerOpts)
	router := api.NewRouter(handler, logger, api.RouterOptions{
		Limiter: rateLimiter,
		Health:  health,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			srv.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		logger.Info("server stopped gracefully")
	}

	return nil
}

func breakerCheck(cb *circuitbreaker.CircuitBreaker) api.HealthCheck {
	return func(*http.Request) (string, interface{}, bool) {
		return "breaker_" + cb.Name(), cb.Stats(), true
	}
}
