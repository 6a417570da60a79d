package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finledger/portfolio-tracker/internal/apperrors"
	"github.com/finledger/portfolio-tracker/internal/model"
)

// LedgerRepository provides append-only data access for the ledger_transaction
// table. Transactions are never updated or deleted; duplicate detection runs
// against the composite key (portfolio, symbol, quantity, price, date), which
// is also enforced by a UNIQUE constraint so concurrent writers cannot race
// past the application-level pre-check.
type LedgerRepository struct {
	db *sql.DB
}

// NewLedgerRepository creates a new LedgerRepository with the provided database connection.
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// AppendTransaction inserts a transaction unconditionally. Callers are
// expected to have deduplicated first via FindDuplicate; if a concurrent
// writer won the race anyway, the UNIQUE constraint fires and the error maps
// to apperrors.ErrDuplicateEntry.
func (s *LedgerRepository) AppendTransaction(ctx context.Context, t *model.Transaction) error {
	query := `
		INSERT INTO ledger_transaction (id, portfolio_id, symbol, type, quantity, price, fee, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		t.ID,
		t.PortfolioID,
		t.Symbol,
		string(t.Type),
		t.Quantity.String(),
		t.Price.String(),
		t.Fee.String(),
		t.Date.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s %s %s@%s", apperrors.ErrDuplicateEntry,
				t.Symbol, t.Type, t.Quantity.String(), t.Price.String())
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// FindDuplicate performs the exact-match idempotency check on the composite
// key. Fee is deliberately excluded: two fills differing only in fee are
// still considered the same fill. Dates are stored and compared at full
// sub-second precision, so exchange trades milliseconds apart stay distinct.
// Returns nil when no duplicate exists.
func (s *LedgerRepository) FindDuplicate(portfolioID, symbol string, quantity, price decimal.Decimal, date time.Time) (*model.Transaction, error) {
	query := `
		SELECT id, portfolio_id, symbol, type, quantity, price, fee, date, created_at
		FROM ledger_transaction
		WHERE portfolio_id = ? AND symbol = ? AND quantity = ? AND price = ? AND date = ?
	`
	row := s.db.QueryRow(query,
		portfolioID,
		symbol,
		quantity.String(),
		price.String(),
		date.UTC().Format(time.RFC3339Nano),
	)

	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByPortfolio retrieves the full ordered transaction history of a
// portfolio: ascending by timestamp, ties broken by insertion order. This
// ordering is a correctness precondition for the FIFO engine.
func (s *LedgerRepository) ListByPortfolio(portfolioID string) ([]model.Transaction, error) {
	query := `
		SELECT id, portfolio_id, symbol, type, quantity, price, fee, date, created_at
		FROM ledger_transaction
		WHERE portfolio_id = ?
		ORDER BY date ASC, created_at ASC, rowid ASC
	`
	rows, err := s.db.Query(query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger_transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger_transaction table: %w", err)
	}

	return transactions, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (model.Transaction, error) {
	var t model.Transaction
	var typeStr, quantityStr, priceStr, feeStr, dateStr, createdAtStr string

	err := row.Scan(
		&t.ID,
		&t.PortfolioID,
		&t.Symbol,
		&typeStr,
		&quantityStr,
		&priceStr,
		&feeStr,
		&dateStr,
		&createdAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, err
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan ledger_transaction table results: %w", err)
	}

	t.Type = model.TransactionType(typeStr)

	if t.Quantity, err = ParseDecimal(quantityStr); err != nil {
		return model.Transaction{}, err
	}
	if t.Price, err = ParseDecimal(priceStr); err != nil {
		return model.Transaction{}, err
	}
	if t.Fee, err = ParseDecimal(feeStr); err != nil {
		return model.Transaction{}, err
	}
	if t.Date, err = ParseTime(dateStr); err != nil {
		return model.Transaction{}, err
	}
	if t.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.Transaction{}, err
	}

	return t, nil
}
