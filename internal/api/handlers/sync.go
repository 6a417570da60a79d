package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finledger/portfolio-tracker/internal/apperrors"
	"github.com/finledger/portfolio-tracker/internal/model"
	"github.com/finledger/portfolio-tracker/internal/service"
)

// SyncHandler handles HTTP requests that trigger source syncs. It is the HTTP
// layer adapter; pagination, deduplication and locking live in the services.
type SyncHandler struct {
	trading212Service *service.Trading212Service
	binanceService    *service.BinanceService
	syncService       *service.SyncService
}

// NewSyncHandler creates a new SyncHandler with the provided service dependencies.
func NewSyncHandler(
	trading212Service *service.Trading212Service,
	binanceService *service.BinanceService,
	syncService *service.SyncService,
) *SyncHandler {
	return &SyncHandler{
		trading212Service: trading212Service,
		binanceService:    binanceService,
		syncService:       syncService,
	}
}

// SyncTrading212 imports the portfolio's full broker order history
func (h *SyncHandler) SyncTrading212(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	result, err := h.trading212Service.SyncTransactions(r.Context(), portfolioID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// SyncTrading212PnL imports the broker's own realized P&L records
func (h *SyncHandler) SyncTrading212PnL(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	result, err := h.trading212Service.SyncRealizedPnL(r.Context(), portfolioID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// SyncBinance imports the portfolio's exchange trade history
func (h *SyncHandler) SyncBinance(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	result, err := h.binanceService.SyncTrades(r.Context(), portfolioID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// SyncAll runs every source the portfolio has credentials for
func (h *SyncHandler) SyncAll(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	results, err := h.syncService.SyncPortfolio(r.Context(), portfolioID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, results)
}

// TestConnection verifies the portfolio's credentials for one source
func (h *SyncHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")
	source := chi.URLParam(r, "source")

	var err error
	switch source {
	case model.SourceTrading212:
		err = h.trading212Service.TestConnection(r.Context(), portfolioID)
	case model.SourceBinance:
		err = h.binanceService.TestConnection(r.Context(), portfolioID)
	default:
		respondServiceError(w, apperrors.ErrUnknownSource)
		return
	}

	if err != nil {
		respondJSON(w, statusForError(err), map[string]interface{}{
			"connected": false,
			"error":     err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"connected": true})
}

// Instruments returns the broker's ticker-to-name mapping
func (h *SyncHandler) Instruments(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	names, err := h.trading212Service.InstrumentNames(r.Context(), portfolioID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, names)
}
