package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finledger/portfolio-tracker/internal/api/request"
	"github.com/finledger/portfolio-tracker/internal/model"
	"github.com/finledger/portfolio-tracker/internal/service"
)

// CredentialHandler handles per-portfolio API credential storage. Stored
// secrets are encrypted at rest and never echoed back.
type CredentialHandler struct {
	credentialService *service.CredentialService
}

// NewCredentialHandler creates a new CredentialHandler with the provided service dependency.
func NewCredentialHandler(credentialService *service.CredentialService) *CredentialHandler {
	return &CredentialHandler{
		credentialService: credentialService,
	}
}

// StoreCredential creates or replaces the portfolio's credential for a source
func (h *CredentialHandler) StoreCredential(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")
	source := chi.URLParam(r, "source")

	var req request.StoreCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	credential := model.SourceCredential{
		PortfolioID: portfolioID,
		Source:      source,
		APIKey:      req.APIKey,
		APIKeyID:    req.APIKeyID,
		APISecret:   req.APISecret,
	}
	if err := h.credentialService.StoreCredential(r.Context(), credential); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
