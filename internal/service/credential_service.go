package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finledger/portfolio-tracker/internal/apperrors"
	"github.com/finledger/portfolio-tracker/internal/config"
	"github.com/finledger/portfolio-tracker/internal/model"
	"github.com/finledger/portfolio-tracker/internal/repository"
	"github.com/finledger/portfolio-tracker/internal/secrets"
	"github.com/finledger/portfolio-tracker/internal/validation"
)

// CredentialService handles storage and resolution of per-portfolio source
// credentials. Stored values are fernet-encrypted; environment-configured
// keys act as the fallback when a portfolio has nothing stored.
type CredentialService struct {
	credentialRepo *repository.CredentialRepository
	codec          *secrets.Codec
	cfg            *config.Config
}

// NewCredentialService creates a new CredentialService with the provided dependencies.
// codec may be nil when no fernet key is configured; storing credentials then fails,
// while environment fallbacks keep working.
func NewCredentialService(
	credentialRepo *repository.CredentialRepository, codec *secrets.Codec, cfg *config.Config,
) *CredentialService {
	return &CredentialService{
		credentialRepo: credentialRepo,
		codec:          codec,
		cfg:            cfg,
	}
}

// StoreCredential encrypts and upserts a credential for (portfolio, source).
func (s *CredentialService) StoreCredential(ctx context.Context, c model.SourceCredential) error {
	if err := validation.ValidateSource(c.Source); err != nil {
		return err
	}
	if s.codec == nil {
		return fmt.Errorf("%w: fernet key not configured", apperrors.ErrFailedToStoreCredential)
	}

	encrypted := model.SourceCredential{
		ID:          uuid.New().String(),
		PortfolioID: c.PortfolioID,
		Source:      c.Source,
		UpdatedAt:   time.Now().UTC(),
	}

	var err error
	if encrypted.APIKey, err = s.codec.Encrypt(c.APIKey); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrFailedToStoreCredential, err)
	}
	if c.APIKeyID != "" {
		if encrypted.APIKeyID, err = s.codec.Encrypt(c.APIKeyID); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrFailedToStoreCredential, err)
		}
	}
	if c.APISecret != "" {
		if encrypted.APISecret, err = s.codec.Encrypt(c.APISecret); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrFailedToStoreCredential, err)
		}
	}

	if err := s.credentialRepo.UpsertCredential(ctx, &encrypted); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrFailedToStoreCredential, err)
	}
	return nil
}

// Trading212Credentials resolves the broker API key pair for a portfolio:
// stored credential first, environment fallback second.
func (s *CredentialService) Trading212Credentials(portfolioID string) (apiKey, apiKeyID string, err error) {
	stored, err := s.resolve(portfolioID, model.SourceTrading212)
	if err != nil {
		return "", "", err
	}
	if stored != nil {
		return stored.APIKey, stored.APIKeyID, nil
	}
	if s.cfg.Trading212.APIKey != "" {
		return s.cfg.Trading212.APIKey, s.cfg.Trading212.APIKeyID, nil
	}
	return "", "", fmt.Errorf("%w: trading212 for portfolio %s", apperrors.ErrCredentialNotFound, portfolioID)
}

// BinanceCredentials resolves the exchange API key pair for a portfolio:
// stored credential first, environment fallback second.
func (s *CredentialService) BinanceCredentials(portfolioID string) (apiKey, secretKey string, err error) {
	stored, err := s.resolve(portfolioID, model.SourceBinance)
	if err != nil {
		return "", "", err
	}
	if stored != nil {
		return stored.APIKey, stored.APISecret, nil
	}
	if s.cfg.Binance.APIKey != "" {
		return s.cfg.Binance.APIKey, s.cfg.Binance.SecretKey, nil
	}
	return "", "", fmt.Errorf("%w: binance for portfolio %s", apperrors.ErrCredentialNotFound, portfolioID)
}

// resolve loads and decrypts a stored credential, or returns nil when none exists.
func (s *CredentialService) resolve(portfolioID, source string) (*model.SourceCredential, error) {
	stored, err := s.credentialRepo.GetCredential(portfolioID, source)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, nil
	}
	if s.codec == nil {
		return nil, fmt.Errorf("stored credential exists but fernet key is not configured")
	}

	plain := *stored
	if plain.APIKey, err = s.codec.Decrypt(stored.APIKey); err != nil {
		return nil, err
	}
	if stored.APIKeyID != "" {
		if plain.APIKeyID, err = s.codec.Decrypt(stored.APIKeyID); err != nil {
			return nil, err
		}
	}
	if stored.APISecret != "" {
		if plain.APISecret, err = s.codec.Decrypt(stored.APISecret); err != nil {
			return nil, err
		}
	}

	return &plain, nil
}
