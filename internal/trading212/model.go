package trading212

// OrdersPage is one page of the order-history endpoint. NextPagePath is a
// server-supplied relative path; an empty value means the last page.
type OrdersPage struct {
	Items        []OrderItem `json:"items"`
	NextPagePath string      `json:"nextPagePath"`
}

// OrderItem pairs an order with its fill, when one exists.
type OrderItem struct {
	Order Order `json:"order"`
	Fill  Fill  `json:"fill"`
}

// Order is the broker's view of a placed order.
type Order struct {
	ID             int64   `json:"id"`
	Ticker         string  `json:"ticker"`
	Side           string  `json:"side"`
	Status         string  `json:"status"`
	FilledQuantity float64 `json:"filledQuantity"`
	LimitPrice     float64 `json:"limitPrice"`
	CreatedAt      string  `json:"createdAt"`
}

// Fill is the execution record attached to a filled order.
type Fill struct {
	Price        float64      `json:"price"`
	FilledAt     string       `json:"filledAt"`
	WalletImpact WalletImpact `json:"walletImpact"`
}

// WalletImpact carries the broker's own realized P&L figure for the fill.
type WalletImpact struct {
	RealisedProfitLoss float64 `json:"realisedProfitLoss"`
}

// AccountCash is the account snapshot used as the connection test.
type AccountCash struct {
	Free     float64 `json:"free"`
	Total    float64 `json:"total"`
	Invested float64 `json:"invested"`
	Result   float64 `json:"result"`
}

// Instrument is one entry of the instrument metadata endpoint.
type Instrument struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}
