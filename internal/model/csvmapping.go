package model

// CSVMapping declares which columns of a caller-supplied CSV hold each
// transaction field, plus the Go reference layout its dates use. Fee is
// optional; an empty name means no fee column.
type CSVMapping struct {
	Symbol     string `json:"symbol"`
	Type       string `json:"type"`
	Quantity   string `json:"quantity"`
	Price      string `json:"price"`
	Fee        string `json:"fee,omitempty"`
	Date       string `json:"date"`
	DateLayout string `json:"dateLayout"`
}
