package binance

// Account is the signed account snapshot.
type Account struct {
	AccountType string    `json:"accountType"`
	CanTrade    bool      `json:"canTrade"`
	Balances    []Balance `json:"balances"`
}

// Balance is one asset balance. Amounts arrive as decimal strings.
type Balance struct {
	Asset  string `json:"asset"`
	Free   string `json:"free"`
	Locked string `json:"locked"`
}

// ExchangeInfo lists the exchange's tradable symbols.
type ExchangeInfo struct {
	Symbols []SymbolInfo `json:"symbols"`
}

// SymbolInfo is one tradable pair.
type SymbolInfo struct {
	Symbol string `json:"symbol"`
}

// Trade is one executed trade from the myTrades endpoint. Quantity, price and
// commission are decimal strings; Time is epoch milliseconds.
type Trade struct {
	Symbol          string `json:"symbol"`
	ID              int64  `json:"id"`
	Price           string `json:"price"`
	Qty             string `json:"qty"`
	Commission      string `json:"commission"`
	CommissionAsset string `json:"commissionAsset"`
	Time            int64  `json:"time"`
	IsBuyer         bool   `json:"isBuyer"`
}
