package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/finledger/portfolio-tracker/internal/model"
)

// CredentialRepository stores per-portfolio API credentials for external
// sources. Values are written already encrypted; this layer never sees
// plaintext key material.
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository creates a new CredentialRepository with the provided database connection.
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// UpsertCredential inserts or replaces the credential for (portfolio, source).
func (s *CredentialRepository) UpsertCredential(ctx context.Context, c *model.SourceCredential) error {
	query := `
		INSERT INTO source_credential (id, portfolio_id, source, api_key, api_key_id, api_secret, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(portfolio_id, source) DO UPDATE SET
			api_key = excluded.api_key,
			api_key_id = excluded.api_key_id,
			api_secret = excluded.api_secret,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		c.ID,
		c.PortfolioID,
		c.Source,
		c.APIKey,
		nullIfEmpty(c.APIKeyID),
		nullIfEmpty(c.APISecret),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert credential: %w", err)
	}
	return nil
}

// GetCredential retrieves the stored credential for (portfolio, source).
// Returns nil when none is stored.
func (s *CredentialRepository) GetCredential(portfolioID, source string) (*model.SourceCredential, error) {
	query := `
		SELECT id, portfolio_id, source, api_key, api_key_id, api_secret
		FROM source_credential
		WHERE portfolio_id = ? AND source = ?
	`
	var c model.SourceCredential
	var keyID, secret sql.NullString

	err := s.db.QueryRow(query, portfolioID, source).Scan(
		&c.ID,
		&c.PortfolioID,
		&c.Source,
		&c.APIKey,
		&keyID,
		&secret,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan source_credential table results: %w", err)
	}

	if keyID.Valid {
		c.APIKeyID = keyID.String
	}
	if secret.Valid {
		c.APISecret = secret.String
	}

	return &c, nil
}

// ListPortfoliosWithCredentials returns the distinct portfolio ids that have
// at least one stored source credential. Used by the scheduled sync.
func (s *CredentialRepository) ListPortfoliosWithCredentials() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT portfolio_id FROM source_credential ORDER BY portfolio_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query source_credential table: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan source_credential table results: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source_credential table: %w", err)
	}

	return ids, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
