package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/finledger/portfolio-tracker/internal/binance"
	"github.com/finledger/portfolio-tracker/internal/config"
	"github.com/finledger/portfolio-tracker/internal/pricecache"
	"github.com/finledger/portfolio-tracker/internal/repository"
	"github.com/finledger/portfolio-tracker/internal/service"
	"github.com/finledger/portfolio-tracker/internal/testutil"
)

func newBinanceService(t *testing.T, db *sql.DB, client binance.Client) *service.BinanceService {
	t.Helper()

	cfg := &config.Config{}
	cfg.Binance.APIKey = "test-key"
	cfg.Binance.SecretKey = "test-secret"

	credentials := service.NewCredentialService(repository.NewCredentialRepository(db), nil, cfg)

	return service.NewBinanceService(
		repository.NewLedgerRepository(db),
		credentials,
		func(apiKey, secretKey string) binance.Client { return client },
		pricecache.New[map[string]bool](time.Minute),
		service.NewPortfolioLocker(),
		zerolog.Nop(),
	)
}

func TestBinanceService_SyncTrades(t *testing.T) {
	t.Run("discovers pairs from balances and imports trades", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)

		client := &testutil.FakeBinanceClient{
			AccountData: binance.Account{
				Balances: []binance.Balance{
					{Asset: "ETH", Free: "1.5", Locked: "0"},
					{Asset: "DOGE", Free: "0", Locked: "0"},
					{Asset: "USDT", Free: "250", Locked: "0"},
				},
			},
			Symbols: []string{"ETHUSDT", "ETHBTC", "DOGEUSDT"},
			Trades: map[string][]binance.Trade{
				"ETHUSDT": {
					{Symbol: "ETHUSDT", ID: 1, Price: "3150.10", Qty: "0.5", Commission: "0.001", Time: 1710496200000, IsBuyer: true},
				},
			},
		}
		svc := newBinanceService(t, db, client)

		result, err := svc.SyncTrades(context.Background(), portfolio.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if !result.Success {
			t.Errorf("Expected success, got %+v", result)
		}
		if result.Imported != 1 {
			t.Errorf("Expected 1 imported, got %d", result.Imported)
		}

		transactions, err := repository.NewLedgerRepository(db).ListByPortfolio(portfolio.ID)
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if len(transactions) != 1 {
			t.Fatalf("Expected 1 transaction, got %d", len(transactions))
		}

		got := transactions[0]
		if got.Symbol != "ETH" {
			t.Errorf("Expected base asset ETH, got %s", got.Symbol)
		}
		if got.Type != "buy" {
			t.Errorf("Expected buy, got %s", got.Type)
		}
		if got.Fee.String() != "0.001" {
			t.Errorf("Expected fee 0.001, got %s", got.Fee)
		}
	})

	t.Run("rerunning the sync skips imported trades", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)

		client := &testutil.FakeBinanceClient{
			AccountData: binance.Account{
				Balances: []binance.Balance{{Asset: "ETH", Free: "1", Locked: "0"}},
			},
			Symbols: []string{"ETHUSDT"},
			Trades: map[string][]binance.Trade{
				"ETHUSDT": {
					{Symbol: "ETHUSDT", ID: 1, Price: "3150.10", Qty: "0.5", Time: 1710496200000, IsBuyer: true},
				},
			},
		}
		svc := newBinanceService(t, db, client)

		if _, err := svc.SyncTrades(context.Background(), portfolio.ID); err != nil {
			t.Fatalf("First sync failed: %v", err)
		}

		result, err := svc.SyncTrades(context.Background(), portfolio.ID)
		if err != nil {
			t.Fatalf("Second sync failed: %v", err)
		}
		if result.Imported != 0 || result.Skipped != 1 {
			t.Errorf("Expected rerun to skip, got %+v", result)
		}
	})

	t.Run("account failure aborts the run with success false", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)

		client := &testutil.FakeBinanceClient{Err: errors.New("connection refused")}
		svc := newBinanceService(t, db, client)

		result, err := svc.SyncTrades(context.Background(), portfolio.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if result.Success {
			t.Error("Expected success false")
		}
	})
}

func TestBaseAsset(t *testing.T) {
	cases := []struct {
		pair string
		want string
	}{
		{"ETHUSDT", "ETH"},
		{"ETHBTC", "ETH"},
		{"ADAEUR", "ADA"},
		{"SOLBUSD", "SOL"},
		{"XRPUSDC", "XRP"},
		{"WEIRDPAIR", "WEI"},
		{"ABC", "ABC"},
	}

	for _, tc := range cases {
		if got := service.BaseAsset(tc.pair); got != tc.want {
			t.Errorf("BaseAsset(%q) = %q, want %q", tc.pair, got, tc.want)
		}
	}
}
