package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/finledger/portfolio-tracker/internal/api/request"
	"github.com/finledger/portfolio-tracker/internal/model"
	"github.com/finledger/portfolio-tracker/internal/service"
)

// PortfolioHandler handles portfolio-related HTTP requests
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// Portfolios lists every portfolio
func (h *PortfolioHandler) Portfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.portfolioService.GetPortfolios()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, portfolios)
}

// CreatePortfolio registers a new portfolio
func (h *PortfolioHandler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	portfolio, err := h.portfolioService.CreatePortfolio(r.Context(), req.Name, req.Description)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, portfolio)
}

// Portfolio retrieves a single portfolio
func (h *PortfolioHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	portfolio, err := h.portfolioService.GetPortfolio(portfolioID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, portfolio)
}

// Transactions lists a portfolio's ledger in chronological order
func (h *PortfolioHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	transactions, err := h.portfolioService.GetTransactions(portfolioID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, transactions)
}

// AddTransaction appends one manually entered transaction
func (h *PortfolioHandler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	var req request.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	tx, err := transactionFromRequest(req)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	created, err := h.portfolioService.AddTransaction(r.Context(), portfolioID, tx)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// Summary recomputes the portfolio valuation using the caller's prices
func (h *PortfolioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	var req request.SummaryRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}

	prices := make(map[string]decimal.Decimal, len(req.Prices))
	for symbol, raw := range req.Prices {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{
				"error":  "invalid price",
				"detail": symbol + ": " + raw,
			})
			return
		}
		prices[symbol] = price
	}

	summary, err := h.portfolioService.GetSummary(portfolioID, prices)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// RealizedPnL returns the broker-reported realized P&L aggregated per symbol
func (h *PortfolioHandler) RealizedPnL(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	sums, err := h.portfolioService.GetRealizedPnLBySymbol(portfolioID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sums)
}

func transactionFromRequest(req request.CreateTransactionRequest) (model.Transaction, error) {
	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		return model.Transaction{}, err
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return model.Transaction{}, err
	}
	fee := decimal.Zero
	if req.Fee != "" {
		if fee, err = decimal.NewFromString(req.Fee); err != nil {
			return model.Transaction{}, err
		}
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return model.Transaction{}, err
	}

	return model.Transaction{
		Symbol:   req.Symbol,
		Type:     model.TransactionType(req.Type),
		Quantity: quantity,
		Price:    price,
		Fee:      fee,
		Date:     date.UTC(),
	}, nil
}
