package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/finledger/portfolio-tracker/internal/config"
	"github.com/finledger/portfolio-tracker/internal/pricecache"
	"github.com/finledger/portfolio-tracker/internal/repository"
	"github.com/finledger/portfolio-tracker/internal/service"
	"github.com/finledger/portfolio-tracker/internal/testutil"
	"github.com/finledger/portfolio-tracker/internal/trading212"
)

func newTrading212Service(t *testing.T, db *sql.DB, client trading212.Client) *service.Trading212Service {
	t.Helper()

	cfg := &config.Config{}
	cfg.Trading212.APIKey = "test-key"

	credentials := service.NewCredentialService(repository.NewCredentialRepository(db), nil, cfg)

	return service.NewTrading212Service(
		repository.NewLedgerRepository(db),
		repository.NewRealizedPnLRepository(db),
		credentials,
		func(apiKey, apiKeyID string) trading212.Client { return client },
		pricecache.New[map[string]string](time.Minute),
		service.NewPortfolioLocker(),
		zerolog.Nop(),
	)
}

func filledOrder(id int64, ticker, side string, quantity, price float64, at string) trading212.OrderItem {
	return trading212.OrderItem{
		Order: trading212.Order{
			ID:             id,
			Ticker:         ticker,
			Side:           side,
			Status:         "FILLED",
			FilledQuantity: quantity,
			CreatedAt:      at,
		},
		Fill: trading212.Fill{
			Price:    price,
			FilledAt: at,
		},
	}
}

func TestTrading212Service_SyncTransactions(t *testing.T) {
	t.Run("walks every page and imports filled orders", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)

		client := &testutil.FakeTrading212Client{
			Pages: map[string]trading212.OrdersPage{
				"": {
					Items: []trading212.OrderItem{
						filledOrder(1, "AAPL_US_EQ", "BUY", 10, 187.32, "2024-03-15T10:30:00Z"),
					},
					NextPagePath: "/page2",
				},
				"/page2": {
					Items: []trading212.OrderItem{
						filledOrder(2, "TSLA_US_EQ", "SELL", 3, 201.88, "2024-03-16T09:00:00Z"),
					},
				},
			},
		}
		svc := newTrading212Service(t, db, client)

		result, err := svc.SyncTransactions(context.Background(), portfolio.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if !result.Success {
			t.Errorf("Expected success, got %+v", result)
		}
		if result.Imported != 2 {
			t.Errorf("Expected 2 imported, got %d", result.Imported)
		}

		transactions, err := repository.NewLedgerRepository(db).ListByPortfolio(portfolio.ID)
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if len(transactions) != 2 {
			t.Fatalf("Expected 2 transactions, got %d", len(transactions))
		}
		if transactions[0].Symbol != "AAPL" {
			t.Errorf("Expected suffix-stripped symbol AAPL, got %s", transactions[0].Symbol)
		}
	})

	t.Run("rerunning the sync skips everything", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)

		client := &testutil.FakeTrading212Client{
			Pages: map[string]trading212.OrdersPage{
				"": {
					Items: []trading212.OrderItem{
						filledOrder(1, "AAPL_US_EQ", "BUY", 10, 187.32, "2024-03-15T10:30:00Z"),
					},
				},
			},
		}
		svc := newTrading212Service(t, db, client)

		if _, err := svc.SyncTransactions(context.Background(), portfolio.ID); err != nil {
			t.Fatalf("First sync failed: %v", err)
		}

		result, err := svc.SyncTransactions(context.Background(), portfolio.ID)
		if err != nil {
			t.Fatalf("Second sync failed: %v", err)
		}

		if result.Imported != 0 {
			t.Errorf("Expected 0 imported on rerun, got %d", result.Imported)
		}
		if result.Skipped != 1 {
			t.Errorf("Expected 1 skipped on rerun, got %d", result.Skipped)
		}
	})

	t.Run("non-filled orders are ignored", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)

		pending := filledOrder(1, "AAPL_US_EQ", "BUY", 10, 187.32, "2024-03-15T10:30:00Z")
		pending.Order.Status = "CANCELLED"

		client := &testutil.FakeTrading212Client{
			Pages: map[string]trading212.OrdersPage{
				"": {Items: []trading212.OrderItem{pending}},
			},
		}
		svc := newTrading212Service(t, db, client)

		result, err := svc.SyncTransactions(context.Background(), portfolio.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if result.Imported != 0 || result.Skipped != 0 {
			t.Errorf("Expected nothing touched, got %+v", result)
		}
	})

	t.Run("transport failure aborts the run with success false", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)

		client := &testutil.FakeTrading212Client{Err: errors.New("connection refused")}
		svc := newTrading212Service(t, db, client)

		result, err := svc.SyncTransactions(context.Background(), portfolio.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if result.Success {
			t.Error("Expected success false")
		}
		if result.Error == "" {
			t.Error("Expected a top-level error message")
		}
	})

	t.Run("cancelled context stops before the next page", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)

		client := &testutil.FakeTrading212Client{}
		svc := newTrading212Service(t, db, client)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := svc.SyncTransactions(ctx, portfolio.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if client.PageCalls != 0 {
			t.Errorf("Expected no page fetches after cancellation, got %d", client.PageCalls)
		}
		if result.Note == "" {
			t.Error("Expected a cancellation note")
		}
	})
}

func TestTrading212Service_SyncRealizedPnL(t *testing.T) {
	t.Run("imports once per broker order id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)

		item := filledOrder(42, "AAPL_US_EQ", "SELL", 5, 190, "2024-03-15T10:30:00Z")
		item.Fill.WalletImpact.RealisedProfitLoss = 12.5

		client := &testutil.FakeTrading212Client{
			Pages: map[string]trading212.OrdersPage{
				"": {Items: []trading212.OrderItem{item}},
			},
		}
		svc := newTrading212Service(t, db, client)

		first, err := svc.SyncRealizedPnL(context.Background(), portfolio.ID)
		if err != nil {
			t.Fatalf("First sync failed: %v", err)
		}
		if first.Imported != 1 {
			t.Errorf("Expected 1 imported, got %d", first.Imported)
		}

		second, err := svc.SyncRealizedPnL(context.Background(), portfolio.ID)
		if err != nil {
			t.Fatalf("Second sync failed: %v", err)
		}
		if second.Imported != 0 || second.Skipped != 1 {
			t.Errorf("Expected rerun to skip, got %+v", second)
		}

		sums, err := repository.NewRealizedPnLRepository(db).SumBySymbol(portfolio.ID)
		if err != nil {
			t.Fatalf("Failed to sum: %v", err)
		}
		if sums["AAPL"].String() != "12.5" {
			t.Errorf("Expected AAPL sum 12.5, got %s", sums["AAPL"])
		}
	})
}

func TestTrading212Service_InstrumentNames(t *testing.T) {
	t.Run("caches the instrument listing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)

		client := &testutil.FakeTrading212Client{
			InstrumentList: []trading212.Instrument{
				{Ticker: "AAPL_US_EQ", Name: "Apple Inc"},
			},
		}
		svc := newTrading212Service(t, db, client)

		names, err := svc.InstrumentNames(context.Background(), portfolio.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if names["AAPL_US_EQ"] != "Apple Inc" {
			t.Errorf("Expected Apple Inc, got %s", names["AAPL_US_EQ"])
		}

		// A second call is served from the cache even if the client now fails.
		client.Err = errors.New("connection refused")
		if _, err := svc.InstrumentNames(context.Background(), portfolio.ID); err != nil {
			t.Errorf("Expected cached result, got error: %v", err)
		}
	})
}
