// Package pnl derives holdings, realized P&L and unrealized P&L from a
// portfolio's full ordered transaction history. Everything here is a pure
// function of its inputs: no state is persisted and results are recomputed on
// every request, which trades recomputation cost for the absence of
// stale-state bugs.
package pnl

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finledger/portfolio-tracker/internal/model"
)

// Holding is the running position of one symbol. AvgCost is total cost over
// quantity when quantity is positive, zero otherwise.
type Holding struct {
	Quantity  decimal.Decimal `json:"quantity"`
	TotalCost decimal.Decimal `json:"totalCost"`
	Fees      decimal.Decimal `json:"fees"`
	AvgCost   decimal.Decimal `json:"avgCost"`
}

// Lot is one open purchase awaiting FIFO matching against future sales.
type Lot struct {
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

// Warning flags a sale that exceeded the open lots available for its symbol.
// The engine consumes what it can and stops without error, matching the
// documented oversell behavior, but surfaces the event so a missing prior buy
// is not silently absorbed.
type Warning struct {
	Symbol    string          `json:"symbol"`
	Date      time.Time       `json:"date"`
	Requested decimal.Decimal `json:"requested"`
	Unfilled  decimal.Decimal `json:"unfilled"`
}

// Summary is the portfolio valuation contract exposed to consumers.
type Summary struct {
	Holdings           map[string]Holding         `json:"holdings"`
	RealizedPnL        map[string]decimal.Decimal `json:"realizedPnl"`
	UnrealizedPnL      map[string]decimal.Decimal `json:"unrealizedPnl"`
	TotalValue         decimal.Decimal            `json:"totalValue"`
	TotalCost          decimal.Decimal            `json:"totalCost"`
	TotalRealizedPnL   decimal.Decimal            `json:"totalRealizedPnl"`
	TotalUnrealizedPnL decimal.Decimal            `json:"totalUnrealizedPnl"`
	Warnings           []Warning                  `json:"warnings,omitempty"`
}

// ComputeHoldings runs a single forward pass over the history. A buy raises
// quantity and total cost and accumulates its fee; a sell lowers quantity
// only. Reducing cost basis on sales belongs to the FIFO engine, not here:
// this function answers "what is the position now", not "what was the gain".
func ComputeHoldings(transactions []model.Transaction) map[string]Holding {
	holdings := make(map[string]Holding)

	for _, tx := range transactions {
		h := holdings[tx.Symbol]

		if tx.Type == model.Buy {
			h.Quantity = h.Quantity.Add(tx.Quantity)
			h.TotalCost = h.TotalCost.Add(tx.Quantity.Mul(tx.Price))
			h.Fees = h.Fees.Add(tx.Fee)
		} else {
			h.Quantity = h.Quantity.Sub(tx.Quantity)
		}

		holdings[tx.Symbol] = h
	}

	for symbol, h := range holdings {
		if h.Quantity.IsPositive() {
			h.AvgCost = h.TotalCost.Div(h.Quantity)
		} else {
			h.AvgCost = decimal.Zero
		}
		holdings[symbol] = h
	}

	return holdings
}

// ComputeRealizedFIFO computes the realized P&L per symbol by consuming open
// buy lots oldest-first. Transactions must be ordered ascending by timestamp
// with ties broken by insertion order; this is a correctness precondition,
// guaranteed by the ledger's ListByPortfolio ordering.
//
// A sell exceeding the open lots consumes everything available and stops; the
// unfilled remainder is reported as a Warning rather than an error.
func ComputeRealizedFIFO(transactions []model.Transaction) (map[string]decimal.Decimal, []Warning) {
	queues := make(map[string][]Lot)
	realized := make(map[string]decimal.Decimal)
	var warnings []Warning

	for _, tx := range transactions {
		if _, ok := realized[tx.Symbol]; !ok {
			realized[tx.Symbol] = decimal.Zero
		}

		if tx.Type == model.Buy {
			queues[tx.Symbol] = append(queues[tx.Symbol], Lot{Quantity: tx.Quantity, Price: tx.Price})
			continue
		}

		remaining := tx.Quantity
		queue := queues[tx.Symbol]

		for remaining.IsPositive() && len(queue) > 0 {
			oldest := queue[0]

			if oldest.Quantity.LessThanOrEqual(remaining) {
				// Consume the whole lot.
				realized[tx.Symbol] = realized[tx.Symbol].Add(tx.Price.Sub(oldest.Price).Mul(oldest.Quantity))
				remaining = remaining.Sub(oldest.Quantity)
				queue = queue[1:]
			} else {
				// Partial consumption; reduce the front lot in place.
				realized[tx.Symbol] = realized[tx.Symbol].Add(tx.Price.Sub(oldest.Price).Mul(remaining))
				queue[0].Quantity = oldest.Quantity.Sub(remaining)
				remaining = decimal.Zero
			}
		}

		queues[tx.Symbol] = queue

		if remaining.IsPositive() {
			warnings = append(warnings, Warning{
				Symbol:    tx.Symbol,
				Date:      tx.Date,
				Requested: tx.Quantity,
				Unfilled:  remaining,
			})
		}
	}

	return realized, warnings
}

// ComputeUnrealized returns, per symbol with a positive position and a known
// current price, the paper gain: quantity times current price minus cost basis.
func ComputeUnrealized(holdings map[string]Holding, currentPrices map[string]decimal.Decimal) map[string]decimal.Decimal {
	unrealized := make(map[string]decimal.Decimal)

	for symbol, h := range holdings {
		price, ok := currentPrices[symbol]
		if !ok || !h.Quantity.IsPositive() {
			continue
		}
		unrealized[symbol] = h.Quantity.Mul(price).Sub(h.TotalCost)
	}

	return unrealized
}

// Summarize aggregates holdings, realized and unrealized P&L into the
// portfolio valuation contract. Value and cost totals sum only symbols with a
// positive position; P&L totals sum over all symbols.
func Summarize(transactions []model.Transaction, currentPrices map[string]decimal.Decimal) Summary {
	holdings := ComputeHoldings(transactions)
	realized, warnings := ComputeRealizedFIFO(transactions)
	unrealized := ComputeUnrealized(holdings, currentPrices)

	summary := Summary{
		Holdings:      holdings,
		RealizedPnL:   realized,
		UnrealizedPnL: unrealized,
		Warnings:      warnings,
	}

	for symbol, h := range holdings {
		if !h.Quantity.IsPositive() {
			continue
		}
		summary.TotalCost = summary.TotalCost.Add(h.TotalCost)
		if price, ok := currentPrices[symbol]; ok {
			summary.TotalValue = summary.TotalValue.Add(h.Quantity.Mul(price))
		}
	}
	for _, pnl := range realized {
		summary.TotalRealizedPnL = summary.TotalRealizedPnL.Add(pnl)
	}
	for _, pnl := range unrealized {
		summary.TotalUnrealizedPnL = summary.TotalUnrealizedPnL.Add(pnl)
	}

	return summary
}
