package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/jiwar-sa/analytics-service/internal/application/analytics"
	"github.com/jiwar-sa/analytics-service/internal/config"
	rediscache "github.com/jiwar-sa/analytics-service/internal/infrastructure/caching/redis"
	rabbitpub "github.com/jiwar-sa/analytics-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/jiwar-sa/analytics-service/internal/infrastructure/storage"
	"github.com/jiwar-sa/analytics-service/internal/logger"
	"github.com/jiwar-sa/analytics-service/internal/transport/http/handlers"
	"github.com/jiwar-sa/analytics-service/internal/transport/http/router"
)

// sysClock implements analytics.Clock using system time
type sysClock struct{}

func (sysClock) Now() time.Time { return time.Now().UTC() }

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Blob store: absent credentials degrade rather than crash. Ingestion
	// answers 503 and retrieval an empty set.
	var store analytics.BlobStore
	if cfg.StorageConfigured() {
		s3store, err := storage.NewS3Store(cfg, logger.Logger)
		if err != nil {
			zlog.Fatal().Err(err).Msg("s3 store init failed")
		}
		if err := s3store.EnsureBucket(ctx); err != nil {
			zlog.Error().Err(err).Msg("failed to ensure bucket exists")
		}
		store = s3store
	} else {
		zlog.Warn().Msg("S3 credentials empty: analytics will not be stored")
	}

	var cache analytics.Cache
	var redisClient *rediscache.Client
	if cfg.RedisURL != "" {
		c, err := rediscache.New(cfg.RedisURL)
		if err != nil {
			zlog.Fatal().Err(err).Msg("redis init failed")
		}
		redisClient = c
		cache = c
		defer redisClient.Close()
	} else {
		zlog.Warn().Msg("REDIS_URL empty: retrieval responses will not be cached")
	}

	var pub analytics.LeadPublisher = analytics.NoopPublisher{}
	var rabbit *rabbitpub.Publisher
	if cfg.RabbitURL != "" {
		p, err := rabbitpub.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			zlog.Fatal().Err(err).Msg("rabbit publisher init failed")
		}
		rabbit = p
		pub = p
		defer rabbit.Close()
		zlog.Info().Str("exchange", cfg.RabbitExchange).Msg("rabbit publisher ready")
	} else {
		zlog.Warn().Msg("RABBIT_URL empty: lead notifications will not be published")
	}

	svc := analytics.New(store, cache, pub, sysClock{}, analytics.Options{
		SessionPrefix:    cfg.SessionPrefix,
		LegacyPrefix:     cfg.LegacyPrefix,
		MaxBlobs:         cfg.MaxBlobs,
		FetchBatchSize:   cfg.FetchBatchSize,
		FetchTimeout:     cfg.FetchTimeout,
		RetrievalBudget:  cfg.RetrievalBudget,
		CacheTTL:         cfg.LogsCacheTTL,
		ConfirmationCode: cfg.CleanupConfirmationCode,
		RetentionWindow:  cfg.RetentionWindow,
	})

	httpHandler := router.New(
		handlers.NewTrackHandler(svc),
		handlers.NewLogsHandler(svc),
		handlers.NewCleanupHandler(svc),
		handlers.NewHealthHandler(),
		cfg,
	)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpHandler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("server crashed")
		}
	}()

	zlog.Info().Str("addr", cfg.HTTPAddr).Msg("listening")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info().Msg("shutting down analytics-service")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
