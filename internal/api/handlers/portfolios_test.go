package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/finledger/portfolio-tracker/internal/model"
	"github.com/finledger/portfolio-tracker/internal/testutil"
)

func setupPortfolioHandler(t *testing.T) (*PortfolioHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ps := testutil.NewTestPortfolioService(t, db)
	return NewPortfolioHandler(ps), db
}

func TestPortfolioHandler_CreatePortfolio(t *testing.T) {
	t.Run("creates a portfolio from a valid body", func(t *testing.T) {
		handler, _ := setupPortfolioHandler(t)

		body := `{"name": "Long-term", "description": "Retirement account"}`
		req := httptest.NewRequest(http.MethodPost, "/api/portfolio/", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreatePortfolio(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var created model.Portfolio
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&created)
		if created.ID == "" || created.Name != "Long-term" {
			t.Errorf("Expected a created portfolio, got %+v", created)
		}
	})

	t.Run("rejects a missing name", func(t *testing.T) {
		handler, _ := setupPortfolioHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/portfolio/", strings.NewReader(`{}`))
		w := httptest.NewRecorder()

		handler.CreatePortfolio(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		handler, _ := setupPortfolioHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/portfolio/", strings.NewReader("not json"))
		w := httptest.NewRecorder()

		handler.CreatePortfolio(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPortfolioHandler_Portfolio(t *testing.T) {
	t.Run("returns a single portfolio", func(t *testing.T) {
		handler, db := setupPortfolioHandler(t)
		portfolio := testutil.NewPortfolio().Build(t, db)

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/portfolio/"+portfolio.ID,
			map[string]string{"uuid": portfolio.ID},
		)
		w := httptest.NewRecorder()

		handler.Portfolio(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var got model.Portfolio
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&got)
		if got.ID != portfolio.ID {
			t.Errorf("Expected portfolio %s, got %s", portfolio.ID, got.ID)
		}
	})

	t.Run("returns 404 for an unknown portfolio", func(t *testing.T) {
		handler, _ := setupPortfolioHandler(t)
		unknown := testutil.MakeID()

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/portfolio/"+unknown,
			map[string]string{"uuid": unknown},
		)
		w := httptest.NewRecorder()

		handler.Portfolio(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPortfolioHandler_Transactions(t *testing.T) {
	t.Run("returns the ledger in chronological order", func(t *testing.T) {
		handler, db := setupPortfolioHandler(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewTransaction(portfolio.ID).Build(t, db)

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/portfolio/"+portfolio.ID+"/transactions",
			map[string]string{"uuid": portfolio.ID},
		)
		w := httptest.NewRecorder()

		handler.Transactions(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var transactions []model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&transactions)
		if len(transactions) != 1 {
			t.Errorf("Expected 1 transaction, got %d", len(transactions))
		}
	})

	t.Run("returns 404 for an unknown portfolio", func(t *testing.T) {
		handler, _ := setupPortfolioHandler(t)
		unknown := testutil.MakeID()

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/portfolio/"+unknown+"/transactions",
			map[string]string{"uuid": unknown},
		)
		w := httptest.NewRecorder()

		handler.Transactions(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPortfolioHandler_AddTransaction(t *testing.T) {
	t.Run("appends a manual transaction", func(t *testing.T) {
		handler, db := setupPortfolioHandler(t)
		portfolio := testutil.NewPortfolio().Build(t, db)

		body := `{"symbol": "AAPL", "type": "buy", "quantity": "10", "price": "187.32", "date": "2024-03-15T10:30:00Z"}`
		req := testutil.NewRequestWithBodyAndURLParams(
			http.MethodPost,
			"/api/portfolio/"+portfolio.ID+"/transactions",
			strings.NewReader(body),
			map[string]string{"uuid": portfolio.ID},
		)
		w := httptest.NewRecorder()

		handler.AddTransaction(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("a duplicate manual entry returns 409", func(t *testing.T) {
		handler, db := setupPortfolioHandler(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewTransaction(portfolio.ID).
			WithSymbol("AAPL").
			WithQuantity("10").
			WithPrice("187.32").
			WithDate(time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)).
			Build(t, db)

		body := `{"symbol": "AAPL", "type": "buy", "quantity": "10", "price": "187.32", "date": "2024-03-15T10:30:00Z"}`
		req := testutil.NewRequestWithBodyAndURLParams(
			http.MethodPost,
			"/api/portfolio/"+portfolio.ID+"/transactions",
			strings.NewReader(body),
			map[string]string{"uuid": portfolio.ID},
		)
		w := httptest.NewRecorder()

		handler.AddTransaction(w, req)

		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("a bad decimal returns 400", func(t *testing.T) {
		handler, db := setupPortfolioHandler(t)
		portfolio := testutil.NewPortfolio().Build(t, db)

		body := `{"symbol": "AAPL", "type": "buy", "quantity": "ten", "price": "187.32", "date": "2024-03-15T10:30:00Z"}`
		req := testutil.NewRequestWithBodyAndURLParams(
			http.MethodPost,
			"/api/portfolio/"+portfolio.ID+"/transactions",
			strings.NewReader(body),
			map[string]string{"uuid": portfolio.ID},
		)
		w := httptest.NewRecorder()

		handler.AddTransaction(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPortfolioHandler_Summary(t *testing.T) {
	t.Run("computes a summary with caller prices", func(t *testing.T) {
		handler, db := setupPortfolioHandler(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewTransaction(portfolio.ID).
			WithQuantity("10").WithPrice("100").
			Build(t, db)

		body := `{"prices": {"AAPL": "120"}}`
		req := testutil.NewRequestWithBodyAndURLParams(
			http.MethodPost,
			"/api/portfolio/"+portfolio.ID+"/summary",
			strings.NewReader(body),
			map[string]string{"uuid": portfolio.ID},
		)
		w := httptest.NewRecorder()

		handler.Summary(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var summary struct {
			TotalValue         string `json:"totalValue"`
			TotalUnrealizedPnL string `json:"totalUnrealizedPnl"`
		}
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&summary)
		if summary.TotalValue != "1200" {
			t.Errorf("Expected total value 1200, got %s", summary.TotalValue)
		}
		if summary.TotalUnrealizedPnL != "200" {
			t.Errorf("Expected unrealized 200, got %s", summary.TotalUnrealizedPnL)
		}
	})

	t.Run("an invalid price returns 400", func(t *testing.T) {
		handler, db := setupPortfolioHandler(t)
		portfolio := testutil.NewPortfolio().Build(t, db)

		body := `{"prices": {"AAPL": "not-a-number"}}`
		req := testutil.NewRequestWithBodyAndURLParams(
			http.MethodPost,
			"/api/portfolio/"+portfolio.ID+"/summary",
			strings.NewReader(body),
			map[string]string{"uuid": portfolio.ID},
		)
		w := httptest.NewRecorder()

		handler.Summary(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}
