package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finledger/portfolio-tracker/internal/model"
)

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults
//	portfolio := testutil.NewPortfolio().Build(t, db)
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio().
//	    WithName("Custom Portfolio").
//	    Build(t, db)
type PortfolioBuilder struct {
	ID          string
	Name        string
	Description string
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:          MakeID(),
		Name:        MakePortfolioName("Test Portfolio"),
		Description: "Test description",
	}
}

// WithID sets a custom ID.
func (b *PortfolioBuilder) WithID(id string) *PortfolioBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// Build inserts the portfolio into the database and returns the model.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	_, err := db.Exec(
		"INSERT INTO portfolio (id, name, description) VALUES (?, ?, ?)",
		b.ID, b.Name, b.Description,
	)
	if err != nil {
		t.Fatalf("Failed to insert test portfolio: %v", err)
	}

	return model.Portfolio{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
	}
}

// TransactionBuilder provides a fluent interface for creating test ledger
// transactions.
//
// Example usage:
//
//	tx := testutil.NewTransaction(portfolio.ID).
//	    WithSymbol("AAPL").
//	    Sell().
//	    WithQuantity("12").
//	    WithPrice("15").
//	    Build(t, db)
type TransactionBuilder struct {
	ID          string
	PortfolioID string
	Symbol      string
	Type        model.TransactionType
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	Fee         decimal.Decimal
	Date        time.Time
}

// NewTransaction creates a TransactionBuilder with sensible defaults.
func NewTransaction(portfolioID string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:          MakeID(),
		PortfolioID: portfolioID,
		Symbol:      "AAPL",
		Type:        model.Buy,
		Quantity:    decimal.NewFromInt(10),
		Price:       decimal.NewFromInt(100),
		Fee:         decimal.Zero,
		Date:        time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

// WithSymbol sets a custom symbol.
func (b *TransactionBuilder) WithSymbol(symbol string) *TransactionBuilder {
	b.Symbol = symbol
	return b
}

// Sell marks the transaction as a sale.
func (b *TransactionBuilder) Sell() *TransactionBuilder {
	b.Type = model.Sell
	return b
}

// WithQuantity sets the quantity from a decimal string.
func (b *TransactionBuilder) WithQuantity(quantity string) *TransactionBuilder {
	b.Quantity = decimal.RequireFromString(quantity)
	return b
}

// WithPrice sets the price from a decimal string.
func (b *TransactionBuilder) WithPrice(price string) *TransactionBuilder {
	b.Price = decimal.RequireFromString(price)
	return b
}

// WithFee sets the fee from a decimal string.
func (b *TransactionBuilder) WithFee(fee string) *TransactionBuilder {
	b.Fee = decimal.RequireFromString(fee)
	return b
}

// WithDate sets the transaction timestamp.
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	b.Date = date
	return b
}

// Build inserts the transaction into the database and returns the model.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO ledger_transaction (id, portfolio_id, symbol, type, quantity, price, fee, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.PortfolioID, b.Symbol, string(b.Type),
		b.Quantity.String(), b.Price.String(), b.Fee.String(),
		b.Date.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		t.Fatalf("Failed to insert test transaction: %v", err)
	}

	return model.Transaction{
		ID:          b.ID,
		PortfolioID: b.PortfolioID,
		Symbol:      b.Symbol,
		Type:        b.Type,
		Quantity:    b.Quantity,
		Price:       b.Price,
		Fee:         b.Fee,
		Date:        b.Date.UTC(),
	}
}
