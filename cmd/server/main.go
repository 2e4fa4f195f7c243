package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/marketwatch/backend/config"
	httpDelivery "github.com/marketwatch/backend/internal/delivery/http"
	"github.com/marketwatch/backend/internal/domain"
	"github.com/marketwatch/backend/internal/infrastructure/cache"
	"github.com/marketwatch/backend/internal/infrastructure/catalog"
	"github.com/marketwatch/backend/internal/infrastructure/notify"
	"github.com/marketwatch/backend/internal/infrastructure/provider"
	"github.com/marketwatch/backend/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	logger := zlog.Logger

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.Matching.EnableDebugLogging {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	logger.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Float64("threshold", cfg.Matching.Threshold).
		Msg("starting marketwatch backend")

	db, err := catalog.Open(cfg.Database.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	catalogStore := catalog.NewPostgresCatalog(db)
	watchRepo := catalog.NewWatchRepo(db)

	// Providers are injected explicitly here; nothing self-registers.
	var providers []domain.Provider
	if cfg.Providers.MockEnabled {
		providers = append(providers, provider.NewMockProvider())
	}
	for _, endpoint := range cfg.Providers.Endpoints {
		providers = append(providers, provider.NewHTTPProvider(endpoint.Name, endpoint.BaseURL, endpoint.APIKey, logger))
	}
	logger.Info().Int("providers", len(providers)).Msg("marketplace providers registered")

	memoryCache := cache.NewMemoryCache()

	aggregationService := usecase.NewAggregationService(
		providers,
		catalogStore,
		memoryCache,
		logger,
		usecase.AggregationConfig{
			ProviderTimeout: cfg.Providers.Timeout,
			CacheTTL:        cfg.Cache.TTL,
			MatchThreshold:  cfg.Matching.Threshold,
			Weights: domain.SimilarityWeights{
				Brand:          cfg.Matching.Weights.Brand,
				ModelCode:      cfg.Matching.Weights.ModelCode,
				SpecOverlap:    cfg.Matching.Weights.SpecOverlap,
				PriceProximity: cfg.Matching.Weights.PriceProximity,
			},
			EnableDebugLogging: cfg.Matching.EnableDebugLogging,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Watch.Enabled {
		var notifier domain.Notifier
		smtpNotifier := notify.NewSMTPNotifier(notify.SMTPConfig{
			Host: cfg.SMTP.Host,
			Port: cfg.SMTP.Port,
			User: cfg.SMTP.User,
			Pass: cfg.SMTP.Pass,
			To:   cfg.SMTP.To,
		}, logger)
		if smtpNotifier.Configured() {
			notifier = smtpNotifier
		} else {
			logger.Warn().Msg("SMTP not configured, price alerts go to the log")
			notifier = notify.NewLogNotifier(logger)
		}

		watchService := usecase.NewWatchService(
			watchRepo,
			catalogStore,
			providers,
			notifier,
			logger,
			usecase.WatchConfig{
				ScanInterval:    cfg.Watch.ScanInterval,
				ProviderTimeout: cfg.Providers.Timeout,
			},
		)
		go watchService.Run(ctx)
		logger.Info().Dur("interval", cfg.Watch.ScanInterval).Msg("watch scanning enabled")
	}

	handler := httpDelivery.NewHandler(aggregationService, catalogStore, watchRepo)
	router := httpDelivery.SetupRouter(cfg, handler)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
