package request

// CreatePortfolioRequest represents the request body for creating a portfolio
type CreatePortfolioRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SummaryRequest carries the caller-supplied current prices used for the
// valuation. Keys are symbols; values are decimal strings. Symbols without a
// price are valued at cost only.
type SummaryRequest struct {
	Prices map[string]string `json:"prices"`
}
