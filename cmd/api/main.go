package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/onehope/resources-api/internal/application/auth"
	"github.com/onehope/resources-api/internal/config"
	"github.com/onehope/resources-api/internal/identity"
	"github.com/onehope/resources-api/internal/infrastructure/dynamo"
	"github.com/onehope/resources-api/internal/infrastructure/mailer"
	s3infra "github.com/onehope/resources-api/internal/infrastructure/s3"
	"github.com/onehope/resources-api/internal/otp"
	"github.com/onehope/resources-api/internal/session"
	transporthttp "github.com/onehope/resources-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded .env file")
	}

	cfg := config.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if !cfg.IsProduction() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	sessions, err := session.NewManager(cfg.SessionSecret, cfg.SessionTTL, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("session manager init failed")
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables, logger)

	// One-time-code store: Redis when configured, otherwise in-process.
	var codes otp.Store
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		codes = otp.NewRedisStore(redis.NewClient(opts), cfg.OTPTTL, cfg.OTPMaxAttempts)
		logger.Info().Msg("using redis one-time-code store")
	} else {
		mem := otp.NewMemoryStore(cfg.OTPTTL, cfg.OTPMaxAttempts, nil)
		defer mem.Close()
		codes = mem
		logger.Info().Msg("using in-process one-time-code store")
	}

	deps := &transporthttp.Deps{
		UserRepo:     dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		DownloadRepo: dynamo.NewDownloadLogRepo(dynamoClient, cfg.DynamoTables.DownloadLog),
		SavedRepo:    dynamo.NewSavedResourceRepo(dynamoClient, cfg.DynamoTables.SavedResources),
		Codes:        codes,
		Sessions:     sessions,
		Mailer:       mailer.New(cfg),
		Logger:       logger,
	}

	// Object storage is optional: without a bucket every presign answers 503.
	if p := s3infra.NewPresigner(cfg); p != nil {
		deps.Presigner = p
	} else {
		logger.Warn().Msg("object storage not configured; presigned URLs disabled")
	}

	// Delegated identity provider is optional too.
	var tokenVerifier auth.TokenVerifier
	if cfg.AuthProviderURL != "" {
		tokenVerifier = identity.NewTokenVerifier(cfg.AuthProviderURL, cfg.AuthProviderAPIKey, cfg.AuthProviderTimeout)
		logger.Info().Str("provider", cfg.AuthProviderURL).Msg("delegated identity provider enabled")
	}
	deps.TokenVerifier = tokenVerifier

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.AppPort).Str("env", cfg.AppEnv).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("forced shutdown")
	}
	logger.Info().Msg("server stopped")
}
