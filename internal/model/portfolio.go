package model

import "time"

// Portfolio groups the transactions of a single account.
// User identity is out of scope; a portfolio is only a grouping key for the ledger.
type Portfolio struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}
