package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/finledger/portfolio-tracker/internal/apperrors"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error().Err(err).Msg("failed to encode JSON response")
		}
	}
}

// respondServiceError maps service-layer errors onto HTTP status codes and
// writes the standard error envelope.
func respondServiceError(w http.ResponseWriter, err error) {
	errorResponse := map[string]string{
		"error": err.Error(),
	}
	respondJSON(w, statusForError(err), errorResponse)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrPortfolioNotFound),
		errors.Is(err, apperrors.ErrTransactionNotFound),
		errors.Is(err, apperrors.ErrRealizedPnLNotFound),
		errors.Is(err, apperrors.ErrCredentialNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicateEntry):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrInvalidUUID),
		errors.Is(err, apperrors.ErrEmptyID),
		errors.Is(err, apperrors.ErrNegativeAmount),
		errors.Is(err, apperrors.ErrUnknownSource),
		errors.Is(err, apperrors.ErrMissingRequiredField),
		errors.Is(err, apperrors.ErrInvalidCSVHeaders),
		errors.Is(err, apperrors.ErrInvalidStatementFile):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
