package request

// CreateTransactionRequest represents the request body for a manually entered
// transaction. Quantity, price and fee are decimal strings; date is RFC 3339.
type CreateTransactionRequest struct {
	Symbol   string `json:"symbol"`
	Type     string `json:"type"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
	Fee      string `json:"fee,omitempty"`
	Date     string `json:"date"`
}
