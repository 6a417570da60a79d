package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RealizedPnL is one broker-reported closed-position event. It records the
// broker's own profit/loss computation for an order, not a fill, and is
// therefore kept separate from Transaction. The broker order id is the sole
// deduplication key for this entity.
type RealizedPnL struct {
	ID          string          `json:"id"`
	PortfolioID string          `json:"portfolioId"`
	Symbol      string          `json:"symbol"`
	OrderID     string          `json:"orderId"`
	RealizedPnL decimal.Decimal `json:"realizedPnl"`
	OrderDate   time.Time       `json:"orderDate,omitempty"`
	CreatedAt   time.Time       `json:"createdAt,omitempty"`
}
