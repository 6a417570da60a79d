// Package api wires the HTTP surface: routing, middleware and handlers.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/finledger/portfolio-tracker/internal/api/handlers"
	custommiddleware "github.com/finledger/portfolio-tracker/internal/api/middleware"
	"github.com/finledger/portfolio-tracker/internal/config"
	"github.com/finledger/portfolio-tracker/internal/service"
)

// Services bundles everything the router exposes.
type Services struct {
	System     *service.SystemService
	Portfolio  *service.PortfolioService
	Trading212 *service.Trading212Service
	Binance    *service.BinanceService
	Sync       *service.SyncService
	Import     *service.ImportService
	Credential *service.CredentialService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svcs Services, cfg *config.Config, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(logger))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svcs.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(svcs.Portfolio)
			r.Get("/", portfolioHandler.Portfolios)
			r.Post("/", portfolioHandler.CreatePortfolio)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)

				r.Get("/", portfolioHandler.Portfolio)
				r.Get("/transactions", portfolioHandler.Transactions)
				r.Post("/transactions", portfolioHandler.AddTransaction)
				r.Post("/summary", portfolioHandler.Summary)
				r.Get("/realized-pnl", portfolioHandler.RealizedPnL)

				syncHandler := handlers.NewSyncHandler(svcs.Trading212, svcs.Binance, svcs.Sync)
				r.Post("/sync", syncHandler.SyncAll)
				r.Post("/sync/trading212", syncHandler.SyncTrading212)
				r.Post("/sync/trading212/pnl", syncHandler.SyncTrading212PnL)
				r.Post("/sync/binance", syncHandler.SyncBinance)
				r.Get("/connection/{source}/test", syncHandler.TestConnection)
				r.Get("/instruments", syncHandler.Instruments)

				importHandler := handlers.NewImportHandler(svcs.Import)
				r.Post("/import/statement", importHandler.ImportStatement)
				r.Post("/import/csv", importHandler.ImportCSV)
				r.Post("/import/csv/mapped", importHandler.ImportMappedCSV)

				credentialHandler := handlers.NewCredentialHandler(svcs.Credential)
				r.Put("/credentials/{source}", credentialHandler.StoreCredential)
			})
		})
	})

	return r
}
