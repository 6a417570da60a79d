package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finledger/portfolio-tracker/internal/apperrors"
	"github.com/finledger/portfolio-tracker/internal/model"
	"github.com/finledger/portfolio-tracker/internal/pdftext"
	"github.com/finledger/portfolio-tracker/internal/repository"
	"github.com/finledger/portfolio-tracker/internal/statement"
)

// fixedCSVColumns is the header set of the broker's own CSV export.
var fixedCSVColumns = []string{"Action", "Ticker", "No. of shares", "Price / share", "Time"}

// fixedCSVDateLayouts are tried in order; records whose date matches neither
// import with the current time.
var fixedCSVDateLayouts = []string{"2006-01-02 15:04:05", "02/01/2006 15:04:05"}

const mappedCSVNote = "mapped imports are not pre-checked for duplicates; rows rejected by the ledger's uniqueness constraint were counted as skipped"

// ImportService turns uploaded documents into ledger transactions: PDF
// monthly statements, the broker's fixed-schema CSV export, and arbitrary
// CSVs described by a caller-supplied column mapping.
type ImportService struct {
	ledgerRepo *repository.LedgerRepository
	locker     *PortfolioLocker
	logger     zerolog.Logger
}

// NewImportService creates a new ImportService with the provided dependencies.
func NewImportService(ledgerRepo *repository.LedgerRepository, locker *PortfolioLocker, logger zerolog.Logger) *ImportService {
	return &ImportService{ledgerRepo: ledgerRepo, locker: locker, logger: logger}
}

// ImportPDF extracts page text from an uploaded statement and imports the
// parsed records.
func (s *ImportService) ImportPDF(ctx context.Context, portfolioID string, r io.ReaderAt, size int64) (model.SyncResult, error) {
	pages, err := pdftext.ExtractPages(r, size)
	if err != nil {
		return model.SyncResult{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidStatementFile, err)
	}
	return s.ImportStatement(ctx, portfolioID, pages), nil
}

// ImportStatement runs the statement state machine over page texts and
// appends the parsed records.
func (s *ImportService) ImportStatement(ctx context.Context, portfolioID string, pages []string) model.SyncResult {
	unlock := s.locker.Lock(portfolioID)
	defer unlock()

	result := model.NewSyncResult()

	var parser statement.Parser
	records, parseErrors := parser.ParsePages(pages)
	for _, msg := range parseErrors {
		result.AddError("%s", msg)
	}

	for _, rec := range records {
		s.appendCandidate(ctx, portfolioID, model.Transaction{
			Symbol:   rec.Symbol,
			Type:     rec.Side,
			Quantity: rec.Quantity,
			Price:    rec.Price,
			Fee:      decimal.Zero,
			Date:     rec.Date,
		}, true, &result)
	}

	s.logger.Info().
		Str("portfolio", portfolioID).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("statement import finished")

	return result
}

// ImportCSV imports the broker's fixed-schema CSV export. Rows whose Action
// is not a buy or sell (dividends, deposits, interest) and rows with an empty
// ticker are counted as skipped.
func (s *ImportService) ImportCSV(ctx context.Context, portfolioID string, r io.Reader) (model.SyncResult, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return model.SyncResult{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidCSVHeaders, err)
	}
	columns, err := columnIndex(header, fixedCSVColumns)
	if err != nil {
		return model.SyncResult{}, err
	}

	unlock := s.locker.Lock(portfolioID)
	defer unlock()

	result := model.NewSyncResult()
	lineNo := 1

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		lineNo++
		if err != nil {
			result.AddError("row %d: %v", lineNo, err)
			continue
		}

		side, ok := fixedCSVSide(row[columns["Action"]])
		if !ok {
			result.Skipped++
			continue
		}

		symbol := strings.TrimSpace(row[columns["Ticker"]])
		if symbol == "" {
			result.Skipped++
			continue
		}

		quantity, err := decimal.NewFromString(row[columns["No. of shares"]])
		if err != nil {
			result.AddError("row %d: invalid quantity %q", lineNo, row[columns["No. of shares"]])
			continue
		}
		price, err := decimal.NewFromString(row[columns["Price / share"]])
		if err != nil {
			result.AddError("row %d: invalid price %q", lineNo, row[columns["Price / share"]])
			continue
		}

		s.appendCandidate(ctx, portfolioID, model.Transaction{
			Symbol:   symbol,
			Type:     side,
			Quantity: quantity,
			Price:    price,
			Fee:      decimal.Zero,
			Date:     parseFixedCSVDate(row[columns["Time"]]),
		}, true, &result)
	}

	s.logger.Info().
		Str("portfolio", portfolioID).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("csv import finished")

	return result, nil
}

// ImportMappedCSV imports an arbitrary CSV using a caller-declared column
// mapping. Unlike the other import paths it performs no lookup before
// insertion; the ledger's uniqueness constraint is the only duplicate gate,
// and the result carries a note saying so.
func (s *ImportService) ImportMappedCSV(ctx context.Context, portfolioID string, r io.Reader, mapping model.CSVMapping) (model.SyncResult, error) {
	if err := validateMapping(mapping); err != nil {
		return model.SyncResult{}, err
	}

	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return model.SyncResult{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidCSVHeaders, err)
	}
	required := []string{mapping.Symbol, mapping.Type, mapping.Quantity, mapping.Price, mapping.Date}
	if mapping.Fee != "" {
		required = append(required, mapping.Fee)
	}
	columns, err := columnIndex(header, required)
	if err != nil {
		return model.SyncResult{}, err
	}

	unlock := s.locker.Lock(portfolioID)
	defer unlock()

	result := model.NewSyncResult()
	result.Note = mappedCSVNote
	lineNo := 1

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		lineNo++
		if err != nil {
			result.AddError("row %d: %v", lineNo, err)
			continue
		}

		side, ok := mappedSide(row[columns[mapping.Type]])
		if !ok {
			result.Skipped++
			continue
		}

		symbol := strings.TrimSpace(row[columns[mapping.Symbol]])
		if symbol == "" {
			result.Skipped++
			continue
		}

		quantity, err := decimal.NewFromString(row[columns[mapping.Quantity]])
		if err != nil {
			result.AddError("row %d: invalid quantity %q", lineNo, row[columns[mapping.Quantity]])
			continue
		}
		price, err := decimal.NewFromString(row[columns[mapping.Price]])
		if err != nil {
			result.AddError("row %d: invalid price %q", lineNo, row[columns[mapping.Price]])
			continue
		}
		fee := decimal.Zero
		if mapping.Fee != "" && row[columns[mapping.Fee]] != "" {
			if fee, err = decimal.NewFromString(row[columns[mapping.Fee]]); err != nil {
				result.AddError("row %d: invalid fee %q", lineNo, row[columns[mapping.Fee]])
				continue
			}
		}
		date, err := time.Parse(mapping.DateLayout, row[columns[mapping.Date]])
		if err != nil {
			result.AddError("row %d: invalid date %q", lineNo, row[columns[mapping.Date]])
			continue
		}

		s.appendCandidate(ctx, portfolioID, model.Transaction{
			Symbol:   symbol,
			Type:     side,
			Quantity: quantity,
			Price:    price,
			Fee:      fee,
			Date:     date.UTC(),
		}, false, &result)
	}

	s.logger.Info().
		Str("portfolio", portfolioID).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("mapped csv import finished")

	return result, nil
}

// appendCandidate inserts one candidate transaction and folds the outcome
// into the result. With lookupFirst the candidate is checked against the
// ledger before insertion; either way a uniqueness rejection counts as a
// skip, never an error.
func (s *ImportService) appendCandidate(ctx context.Context, portfolioID string, candidate model.Transaction, lookupFirst bool, result *model.SyncResult) {
	if lookupFirst {
		existing, err := s.ledgerRepo.FindDuplicate(portfolioID, candidate.Symbol, candidate.Quantity, candidate.Price, candidate.Date)
		if err != nil {
			result.AddError("%s %s: %v", candidate.Symbol, candidate.Date.Format(time.RFC3339), err)
			return
		}
		if existing != nil {
			result.Skipped++
			return
		}
	}

	candidate.ID = uuid.New().String()
	candidate.PortfolioID = portfolioID

	if err := s.ledgerRepo.AppendTransaction(ctx, &candidate); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEntry) {
			result.Skipped++
			return
		}
		result.AddError("%s %s: %v", candidate.Symbol, candidate.Date.Format(time.RFC3339), err)
		return
	}
	result.Imported++
}

// columnIndex maps the wanted column names to their positions in the header.
func columnIndex(header, wanted []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.TrimSpace(name)] = i
	}

	columns := make(map[string]int, len(wanted))
	for _, name := range wanted {
		pos, ok := positions[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing column %q", apperrors.ErrInvalidCSVHeaders, name)
		}
		columns[name] = pos
	}
	return columns, nil
}

func validateMapping(mapping model.CSVMapping) error {
	for _, field := range []string{mapping.Symbol, mapping.Type, mapping.Quantity, mapping.Price, mapping.Date, mapping.DateLayout} {
		if field == "" {
			return fmt.Errorf("%w: incomplete csv mapping", apperrors.ErrMissingRequiredField)
		}
	}
	return nil
}

func fixedCSVSide(action string) (model.TransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "market buy", "limit buy", "stop buy", "buy":
		return model.Buy, true
	case "market sell", "limit sell", "stop sell", "sell":
		return model.Sell, true
	}
	return "", false
}

func mappedSide(raw string) (model.TransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "buy", "kauf":
		return model.Buy, true
	case "sell", "verkauf":
		return model.Sell, true
	}
	return "", false
}

func parseFixedCSVDate(raw string) time.Time {
	for _, layout := range fixedCSVDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}
	return time.Now().UTC()
}
