package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType identifies the side of a fill.
type TransactionType string

// Allowed transaction sides.
const (
	Buy  TransactionType = "buy"
	Sell TransactionType = "sell"
)

// Transaction represents a single executed buy or sell fill in the ledger.
// Transactions are immutable facts: once appended they are never updated,
// only read. Amounts use decimal arithmetic and are persisted as normalized
// decimal strings so that duplicate detection compares exact values rather
// than float approximations.
type Transaction struct {
	ID          string          `json:"id"`
	PortfolioID string          `json:"portfolioId"`
	Symbol      string          `json:"symbol"`
	Type        TransactionType `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Fee         decimal.Decimal `json:"fee"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt,omitempty"`
}
