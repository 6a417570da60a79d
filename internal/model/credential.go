package model

import "time"

// Credential sources.
const (
	SourceTrading212 = "trading212"
	SourceBinance    = "binance"
)

// SourceCredential stores per-portfolio API credentials for an external
// source. Key material is fernet-encrypted at rest; the APIKey/APISecret
// fields hold plaintext only while in memory.
type SourceCredential struct {
	ID          string    `json:"id"`
	PortfolioID string    `json:"portfolioId"`
	Source      string    `json:"source"`
	APIKey      string    `json:"-"`
	APIKeyID    string    `json:"-"`
	APISecret   string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}
