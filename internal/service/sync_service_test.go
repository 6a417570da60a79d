package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/finledger/portfolio-tracker/internal/binance"
	"github.com/finledger/portfolio-tracker/internal/config"
	"github.com/finledger/portfolio-tracker/internal/model"
	"github.com/finledger/portfolio-tracker/internal/pricecache"
	"github.com/finledger/portfolio-tracker/internal/repository"
	"github.com/finledger/portfolio-tracker/internal/service"
	"github.com/finledger/portfolio-tracker/internal/testutil"
	"github.com/finledger/portfolio-tracker/internal/trading212"
)

func TestSyncService_SyncPortfolio(t *testing.T) {
	t.Run("sources without credentials are skipped silently", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)

		// Broker credentials come from the environment fallback; the exchange
		// has none, so only the broker result should appear.
		cfg := &config.Config{}
		cfg.Trading212.APIKey = "test-key"

		credentialRepo := repository.NewCredentialRepository(db)
		credentials := service.NewCredentialService(credentialRepo, nil, cfg)
		ledgerRepo := repository.NewLedgerRepository(db)
		locker := service.NewPortfolioLocker()

		brokerClient := &testutil.FakeTrading212Client{
			Pages: map[string]trading212.OrdersPage{
				"": {
					Items: []trading212.OrderItem{
						filledOrder(1, "AAPL_US_EQ", "BUY", 10, 187.32, "2024-03-15T10:30:00Z"),
					},
				},
			},
		}

		trading212Service := service.NewTrading212Service(
			ledgerRepo,
			repository.NewRealizedPnLRepository(db),
			credentials,
			func(apiKey, apiKeyID string) trading212.Client { return brokerClient },
			pricecache.New[map[string]string](time.Minute),
			locker,
			zerolog.Nop(),
		)
		binanceService := service.NewBinanceService(
			ledgerRepo,
			credentials,
			func(apiKey, secretKey string) binance.Client { return &testutil.FakeBinanceClient{} },
			pricecache.New[map[string]bool](time.Minute),
			locker,
			zerolog.Nop(),
		)

		svc := service.NewSyncService(trading212Service, binanceService, credentialRepo, zerolog.Nop())

		results, err := svc.SyncPortfolio(context.Background(), portfolio.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if len(results) != 1 {
			t.Fatalf("Expected only the broker result, got %+v", results)
		}
		broker, ok := results[model.SourceTrading212]
		if !ok {
			t.Fatal("Expected a broker result")
		}
		if broker.Imported != 1 {
			t.Errorf("Expected 1 imported, got %+v", broker)
		}
	})
}
