package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finledger/portfolio-tracker/internal/apperrors"
	"github.com/finledger/portfolio-tracker/internal/model"
	"github.com/finledger/portfolio-tracker/internal/pnl"
	"github.com/finledger/portfolio-tracker/internal/repository"
)

// PortfolioService covers portfolio lifecycle, manual ledger entries and the
// derived valuation views. Holdings and P&L are never stored: every request
// recomputes them from the full ordered history.
type PortfolioService struct {
	portfolioRepo   *repository.PortfolioRepository
	ledgerRepo      *repository.LedgerRepository
	realizedPnLRepo *repository.RealizedPnLRepository
	locker          *PortfolioLocker
	logger          zerolog.Logger
}

// NewPortfolioService creates a new PortfolioService with the provided dependencies.
func NewPortfolioService(
	portfolioRepo *repository.PortfolioRepository,
	ledgerRepo *repository.LedgerRepository,
	realizedPnLRepo *repository.RealizedPnLRepository,
	locker *PortfolioLocker,
	logger zerolog.Logger,
) *PortfolioService {
	return &PortfolioService{
		portfolioRepo:   portfolioRepo,
		ledgerRepo:      ledgerRepo,
		realizedPnLRepo: realizedPnLRepo,
		locker:          locker,
		logger:          logger,
	}
}

// CreatePortfolio registers a new, empty portfolio.
func (s *PortfolioService) CreatePortfolio(ctx context.Context, name, description string) (model.Portfolio, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Portfolio{}, fmt.Errorf("%w: name", apperrors.ErrMissingRequiredField)
	}

	p := model.Portfolio{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(description),
	}
	if err := s.portfolioRepo.InsertPortfolio(ctx, &p); err != nil {
		s.logger.Error().Err(err).Msg("failed to create portfolio")
		return model.Portfolio{}, apperrors.ErrFailedToCreatePortfolio
	}

	s.logger.Info().Str("portfolio", p.ID).Str("name", p.Name).Msg("portfolio created")
	return p, nil
}

// GetPortfolios lists every portfolio in creation order.
func (s *PortfolioService) GetPortfolios() ([]model.Portfolio, error) {
	portfolios, err := s.portfolioRepo.GetPortfolios()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to retrieve portfolios")
		return nil, apperrors.ErrFailedToRetrievePortfolios
	}
	return portfolios, nil
}

// GetPortfolio fetches one portfolio by ID.
func (s *PortfolioService) GetPortfolio(portfolioID string) (model.Portfolio, error) {
	return s.portfolioRepo.GetPortfolio(portfolioID)
}

// GetTransactions lists a portfolio's ledger in chronological order.
func (s *PortfolioService) GetTransactions(portfolioID string) ([]model.Transaction, error) {
	if _, err := s.portfolioRepo.GetPortfolio(portfolioID); err != nil {
		return nil, err
	}
	transactions, err := s.ledgerRepo.ListByPortfolio(portfolioID)
	if err != nil {
		s.logger.Error().Err(err).Str("portfolio", portfolioID).Msg("failed to retrieve transactions")
		return nil, apperrors.ErrFailedToRetrieveTransactions
	}
	return transactions, nil
}

// AddTransaction appends one manually entered fill. Manual entries pass
// through the same duplicate gate as synced ones.
func (s *PortfolioService) AddTransaction(ctx context.Context, portfolioID string, t model.Transaction) (model.Transaction, error) {
	if _, err := s.portfolioRepo.GetPortfolio(portfolioID); err != nil {
		return model.Transaction{}, err
	}
	if err := validateTransaction(t); err != nil {
		return model.Transaction{}, err
	}

	unlock := s.locker.Lock(portfolioID)
	defer unlock()

	existing, err := s.ledgerRepo.FindDuplicate(portfolioID, t.Symbol, t.Quantity, t.Price, t.Date)
	if err != nil {
		s.logger.Error().Err(err).Str("portfolio", portfolioID).Msg("failed to check for duplicate")
		return model.Transaction{}, apperrors.ErrFailedToCreateTransaction
	}
	if existing != nil {
		return model.Transaction{}, apperrors.ErrDuplicateEntry
	}

	t.ID = uuid.New().String()
	t.PortfolioID = portfolioID

	if err := s.ledgerRepo.AppendTransaction(ctx, &t); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEntry) {
			return model.Transaction{}, apperrors.ErrDuplicateEntry
		}
		s.logger.Error().Err(err).Str("portfolio", portfolioID).Msg("failed to create transaction")
		return model.Transaction{}, apperrors.ErrFailedToCreateTransaction
	}

	return t, nil
}

// GetSummary recomputes the portfolio valuation from the full history.
// Callers supply current prices; symbols without a price contribute no
// unrealized P&L or market value.
func (s *PortfolioService) GetSummary(portfolioID string, currentPrices map[string]decimal.Decimal) (pnl.Summary, error) {
	if _, err := s.portfolioRepo.GetPortfolio(portfolioID); err != nil {
		return pnl.Summary{}, err
	}
	transactions, err := s.ledgerRepo.ListByPortfolio(portfolioID)
	if err != nil {
		s.logger.Error().Err(err).Str("portfolio", portfolioID).Msg("failed to compute summary")
		return pnl.Summary{}, apperrors.ErrFailedToComputeSummary
	}
	return pnl.Summarize(transactions, currentPrices), nil
}

// GetRealizedPnLBySymbol aggregates the broker-reported realized P&L records
// per symbol. This is the broker's own figure, independent of the FIFO
// engine's derivation.
func (s *PortfolioService) GetRealizedPnLBySymbol(portfolioID string) (map[string]decimal.Decimal, error) {
	if _, err := s.portfolioRepo.GetPortfolio(portfolioID); err != nil {
		return nil, err
	}
	sums, err := s.realizedPnLRepo.SumBySymbol(portfolioID)
	if err != nil {
		s.logger.Error().Err(err).Str("portfolio", portfolioID).Msg("failed to retrieve realized pnl")
		return nil, apperrors.ErrFailedToRetrieveRealizedPnL
	}
	return sums, nil
}

func validateTransaction(t model.Transaction) error {
	if strings.TrimSpace(t.Symbol) == "" {
		return fmt.Errorf("%w: symbol", apperrors.ErrMissingRequiredField)
	}
	if t.Type != model.Buy && t.Type != model.Sell {
		return fmt.Errorf("%w: type must be buy or sell", apperrors.ErrMissingRequiredField)
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity", apperrors.ErrNegativeAmount)
	}
	if t.Price.IsNegative() || t.Fee.IsNegative() {
		return apperrors.ErrNegativeAmount
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: date", apperrors.ErrMissingRequiredField)
	}
	return nil
}
