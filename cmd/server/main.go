package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/finledger/portfolio-tracker/internal/api"
	"github.com/finledger/portfolio-tracker/internal/binance"
	"github.com/finledger/portfolio-tracker/internal/config"
	"github.com/finledger/portfolio-tracker/internal/database"
	"github.com/finledger/portfolio-tracker/internal/pricecache"
	"github.com/finledger/portfolio-tracker/internal/repository"
	"github.com/finledger/portfolio-tracker/internal/secrets"
	"github.com/finledger/portfolio-tracker/internal/service"
	"github.com/finledger/portfolio-tracker/internal/trading212"
)

const cacheTTL = 15 * time.Minute

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Open database connection and run migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	logger.Info().Str("path", cfg.Database.Path).Msg("connected to database")

	// Credential encryption. Without a key, credentials cannot be stored and
	// syncs rely on environment fallbacks.
	var codec *secrets.Codec
	if cfg.Secrets.FernetKey != "" {
		if codec, err = secrets.NewCodec(cfg.Secrets.FernetKey); err != nil {
			logger.Fatal().Err(err).Msg("invalid fernet key")
		}
	} else {
		logger.Warn().Msg("no fernet key configured; credential storage disabled")
	}

	// Create repositories
	portfolioRepo := repository.NewPortfolioRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	realizedPnLRepo := repository.NewRealizedPnLRepository(db)
	credentialRepo := repository.NewCredentialRepository(db)

	locker := service.NewPortfolioLocker()

	// Create services
	systemService := service.NewSystemService(db)
	credentialService := service.NewCredentialService(credentialRepo, codec, cfg)
	portfolioService := service.NewPortfolioService(
		portfolioRepo,
		ledgerRepo,
		realizedPnLRepo,
		locker,
		logger,
	)
	trading212Service := service.NewTrading212Service(
		ledgerRepo,
		realizedPnLRepo,
		credentialService,
		func(apiKey, apiKeyID string) trading212.Client {
			return trading212.NewHTTPClient(cfg.Trading212.BaseURL, apiKey, apiKeyID, cfg.Sync.HTTPTimeout)
		},
		pricecache.New[map[string]string](cacheTTL),
		locker,
		logger,
	)
	binanceService := service.NewBinanceService(
		ledgerRepo,
		credentialService,
		func(apiKey, secretKey string) binance.Client {
			return binance.NewHTTPClient(cfg.Binance.BaseURL, apiKey, secretKey, cfg.Sync.HTTPTimeout)
		},
		pricecache.New[map[string]bool](cacheTTL),
		locker,
		logger,
	)
	syncService := service.NewSyncService(trading212Service, binanceService, credentialRepo, logger)
	importService := service.NewImportService(ledgerRepo, locker, logger)

	// Scheduled syncs
	scheduler := cron.New()
	if cfg.Sync.Schedule != "" {
		_, err := scheduler.AddFunc(cfg.Sync.Schedule, func() {
			syncService.SyncAll(context.Background())
		})
		if err != nil {
			logger.Fatal().Err(err).Str("schedule", cfg.Sync.Schedule).Msg("invalid sync schedule")
		}
		scheduler.Start()
		logger.Info().Str("schedule", cfg.Sync.Schedule).Msg("scheduled sync enabled")
	}

	// Create router
	router := api.NewRouter(api.Services{
		System:     systemService,
		Portfolio:  portfolioService,
		Trading212: trading212Service,
		Binance:    binanceService,
		Sync:       syncService,
		Import:     importService,
		Credential: credentialService,
	}, cfg, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	scheduler.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}
