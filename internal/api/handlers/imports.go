package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finledger/portfolio-tracker/internal/model"
	"github.com/finledger/portfolio-tracker/internal/service"
)

// maxUploadBytes bounds uploaded document size.
const maxUploadBytes = 32 << 20

// ImportHandler handles document upload endpoints: PDF statements and CSV
// exports, both the broker's fixed schema and caller-mapped files.
type ImportHandler struct {
	importService *service.ImportService
}

// NewImportHandler creates a new ImportHandler with the provided service dependency.
func NewImportHandler(importService *service.ImportService) *ImportHandler {
	return &ImportHandler{
		importService: importService,
	}
}

// ImportStatement imports transactions from an uploaded PDF monthly statement.
// Expects a multipart form with a "file" field.
func (h *ImportHandler) ImportStatement(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	result, err := h.importService.ImportPDF(r.Context(), portfolioID, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ImportCSV imports transactions from the broker's fixed-schema CSV export.
// Expects a multipart form with a "file" field.
func (h *ImportHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	result, err := h.importService.ImportCSV(r.Context(), portfolioID, bytes.NewReader(data))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ImportMappedCSV imports transactions from an arbitrary CSV. Expects a
// multipart form with a "file" field and a "mapping" field holding the JSON
// column mapping.
func (h *ImportHandler) ImportMappedCSV(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	var mapping model.CSVMapping
	if err := json.Unmarshal([]byte(r.FormValue("mapping")), &mapping); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid column mapping"})
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file upload"})
		return
	}
	defer file.Close()

	result, err := h.importService.ImportMappedCSV(r.Context(), portfolioID, file, mapping)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// readUpload reads the "file" multipart field fully into memory. PDF parsing
// needs random access, so streaming is not an option there.
func (h *ImportHandler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return nil, false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file upload"})
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read upload"})
		return nil, false
	}
	return data, true
}
