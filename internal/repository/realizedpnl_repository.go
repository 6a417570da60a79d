package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finledger/portfolio-tracker/internal/model"
)

// RealizedPnLRepository provides data access for the broker-reported realized
// P&L ledger. The broker order id is the sole deduplication key for this
// entity, independent of the transaction composite key, because the two
// entities represent different facts.
type RealizedPnLRepository struct {
	db *sql.DB
}

// NewRealizedPnLRepository creates a new RealizedPnLRepository with the provided database connection.
func NewRealizedPnLRepository(db *sql.DB) *RealizedPnLRepository {
	return &RealizedPnLRepository{db: db}
}

// AppendRealizedPnL inserts a realized P&L record. Callers dedupe on order id
// via FindByOrderID first.
func (s *RealizedPnLRepository) AppendRealizedPnL(ctx context.Context, r *model.RealizedPnL) error {
	query := `
		INSERT INTO realized_pnl (id, portfolio_id, symbol, order_id, realized_pnl, order_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	var orderDate any
	if !r.OrderDate.IsZero() {
		orderDate = r.OrderDate.UTC().Format(time.RFC3339)
	}

	_, err := s.db.ExecContext(ctx, query,
		r.ID,
		r.PortfolioID,
		r.Symbol,
		r.OrderID,
		r.RealizedPnL.String(),
		orderDate,
	)
	if err != nil {
		return fmt.Errorf("failed to insert realized pnl record: %w", err)
	}
	return nil
}

// FindByOrderID looks up a realized P&L record by the broker's order id.
// Returns nil when no record exists.
func (s *RealizedPnLRepository) FindByOrderID(orderID string) (*model.RealizedPnL, error) {
	query := `
		SELECT id, portfolio_id, symbol, order_id, realized_pnl, order_date, created_at
		FROM realized_pnl
		WHERE order_id = ?
	`
	var r model.RealizedPnL
	var pnlStr, createdAtStr string
	var orderDateStr sql.NullString

	err := s.db.QueryRow(query, orderID).Scan(
		&r.ID,
		&r.PortfolioID,
		&r.Symbol,
		&r.OrderID,
		&pnlStr,
		&orderDateStr,
		&createdAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan realized_pnl table results: %w", err)
	}

	if r.RealizedPnL, err = ParseDecimal(pnlStr); err != nil {
		return nil, err
	}
	if orderDateStr.Valid {
		if r.OrderDate, err = ParseTime(orderDateStr.String); err != nil {
			return nil, err
		}
	}
	if r.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return nil, err
	}

	return &r, nil
}

// SumBySymbol returns the broker-reported realized P&L of a portfolio,
// grouped and summed per symbol. Summation happens in decimal arithmetic
// rather than SQL so stored string amounts are added exactly.
func (s *RealizedPnLRepository) SumBySymbol(portfolioID string) (map[string]decimal.Decimal, error) {
	query := `
		SELECT symbol, realized_pnl
		FROM realized_pnl
		WHERE portfolio_id = ?
	`
	rows, err := s.db.Query(query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query realized_pnl table: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var symbol, pnlStr string
		if err := rows.Scan(&symbol, &pnlStr); err != nil {
			return nil, fmt.Errorf("failed to scan realized_pnl table results: %w", err)
		}
		pnl, err := ParseDecimal(pnlStr)
		if err != nil {
			return nil, err
		}
		totals[symbol] = totals[symbol].Add(pnl)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating realized_pnl table: %w", err)
	}

	return totals, nil
}
