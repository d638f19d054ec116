package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/DanisonEdiel/auth-login-signup-service/internal/core/port"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/infra/config"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/infra/database"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/infra/email"
	kafkainfra "github.com/DanisonEdiel/auth-login-signup-service/internal/infra/kafka"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/infra/logger"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/infra/metrics"
	redisinfra "github.com/DanisonEdiel/auth-login-signup-service/internal/infra/redis"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/infra/security"
	postgresrepo "github.com/DanisonEdiel/auth-login-signup-service/internal/repository/postgres"
	redisrepo "github.com/DanisonEdiel/auth-login-signup-service/internal/repository/redis"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/transport/http/middleware"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/transport/http/routes"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/usecase"
)

type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	hasher, err := security.NewArgon2Hasher(security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	})
	if err != nil {
		return nil, fmt.Errorf("init password hasher: %w", err)
	}

	codec, err := security.NewTokenCodec(cfg.JWT.Secret, cfg.JWT.Algorithm, cfg.JWT.Issuer)
	if err != nil {
		return nil, fmt.Errorf("init token codec: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitTTL := cfg.Redis.RateLimitTTL
	if rateLimitTTL <= 0 {
		rateLimitTTL = rateLimitWindow * 2
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: cfg.Redis.RateLimitPrefix,
		TTL:       rateLimitTTL,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	var producer *kafkainfra.Producer
	var eventPublisher port.EventPublisher
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka disabled, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	var notifier port.NotificationSink
	if cfg.Email.PostmarkServerToken != "" && cfg.Email.PostmarkAccountToken != "" {
		notifier, err = email.NewPostmarkNotifier(cfg.Email)
		if err != nil {
			_ = redisClient.Close()
			return nil, fmt.Errorf("init postmark notifier: %w", err)
		}
	} else {
		log.Info("postmark not configured, logging login notifications")
		notifier = email.NewLoggingNotifier(log)
	}

	loginMetrics, err := metrics.NewLoginMetrics(metrics.LoginMetricsOptions{})
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init login metrics: %w", err)
	}
	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	accounts := postgresrepo.NewAccountRepository(pool)

	authService, err := usecase.NewAuthService(
		accounts,
		hasher,
		codec,
		cfg.JWT.AccessTokenTTL,
		log,
		usecase.WithMetrics(loginMetrics),
		usecase.WithNotifier(notifier),
		usecase.WithEventPublisher(eventPublisher),
		usecase.WithDefaultRoles(cfg.JWT.DefaultRoles),
		usecase.WithPasswordValidator(security.PolicyValidator(cfg.Password.MinLength, cfg.Password.MinScore)),
	)
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init auth service: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     httpMetrics,
		Auth:        authService,
		Database:    pool,
		Cache:       redisClient,
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			_ = a.producer.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting auth API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
