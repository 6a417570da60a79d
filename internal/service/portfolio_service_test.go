package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finledger/portfolio-tracker/internal/apperrors"
	"github.com/finledger/portfolio-tracker/internal/model"
	"github.com/finledger/portfolio-tracker/internal/testutil"
)

func TestPortfolioService_CreatePortfolio(t *testing.T) {
	t.Run("creates a portfolio with a generated id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		portfolio, err := svc.CreatePortfolio(context.Background(), "Long-term", "Retirement account")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if portfolio.ID == "" {
			t.Error("Expected a generated ID")
		}

		portfolios, err := svc.GetPortfolios()
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if len(portfolios) != 1 || portfolios[0].Name != "Long-term" {
			t.Errorf("Expected the created portfolio, got %+v", portfolios)
		}
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		if _, err := svc.CreatePortfolio(context.Background(), "   ", ""); !errors.Is(err, apperrors.ErrMissingRequiredField) {
			t.Errorf("Expected ErrMissingRequiredField, got %v", err)
		}
	})
}

func TestPortfolioService_AddTransaction(t *testing.T) {
	manualTx := func() model.Transaction {
		return model.Transaction{
			Symbol:   "AAPL",
			Type:     model.Buy,
			Quantity: decimal.NewFromInt(10),
			Price:    decimal.NewFromInt(100),
			Fee:      decimal.Zero,
			Date:     time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		}
	}

	t.Run("appends a valid manual entry", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		portfolio := testutil.NewPortfolio().Build(t, db)

		created, err := svc.AddTransaction(context.Background(), portfolio.ID, manualTx())
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if created.ID == "" || created.PortfolioID != portfolio.ID {
			t.Errorf("Expected populated IDs, got %+v", created)
		}
	})

	t.Run("manual entries pass through the duplicate gate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		portfolio := testutil.NewPortfolio().Build(t, db)

		if _, err := svc.AddTransaction(context.Background(), portfolio.ID, manualTx()); err != nil {
			t.Fatalf("First insert failed: %v", err)
		}

		if _, err := svc.AddTransaction(context.Background(), portfolio.ID, manualTx()); !errors.Is(err, apperrors.ErrDuplicateEntry) {
			t.Errorf("Expected ErrDuplicateEntry, got %v", err)
		}
	})

	t.Run("rejects a non-positive quantity", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		portfolio := testutil.NewPortfolio().Build(t, db)

		tx := manualTx()
		tx.Quantity = decimal.Zero

		if _, err := svc.AddTransaction(context.Background(), portfolio.ID, tx); !errors.Is(err, apperrors.ErrNegativeAmount) {
			t.Errorf("Expected ErrNegativeAmount, got %v", err)
		}
	})

	t.Run("rejects an unknown portfolio", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		if _, err := svc.AddTransaction(context.Background(), testutil.MakeID(), manualTx()); !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})
}

func TestPortfolioService_GetSummary(t *testing.T) {
	t.Run("summary reflects the full transaction history", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		portfolio := testutil.NewPortfolio().Build(t, db)

		testutil.NewTransaction(portfolio.ID).
			WithQuantity("10").WithPrice("10").
			WithDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).
			Build(t, db)
		testutil.NewTransaction(portfolio.ID).
			WithQuantity("5").WithPrice("20").
			WithDate(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)).
			Build(t, db)
		testutil.NewTransaction(portfolio.ID).
			Sell().
			WithQuantity("12").WithPrice("15").
			WithDate(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)).
			Build(t, db)

		summary, err := svc.GetSummary(portfolio.ID, map[string]decimal.Decimal{
			"AAPL": decimal.NewFromInt(25),
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if !summary.TotalRealizedPnL.Equal(decimal.NewFromInt(40)) {
			t.Errorf("Expected total realized 40, got %s", summary.TotalRealizedPnL)
		}
		if !summary.Holdings["AAPL"].Quantity.Equal(decimal.NewFromInt(3)) {
			t.Errorf("Expected quantity 3, got %s", summary.Holdings["AAPL"].Quantity)
		}
	})

	t.Run("oversells surface as warnings", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		portfolio := testutil.NewPortfolio().Build(t, db)

		testutil.NewTransaction(portfolio.ID).
			Sell().
			WithQuantity("4").WithPrice("50").
			Build(t, db)

		summary, err := svc.GetSummary(portfolio.ID, nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(summary.Warnings) != 1 {
			t.Errorf("Expected 1 warning, got %+v", summary.Warnings)
		}
	})
}
