package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/finledger/portfolio-tracker/internal/apperrors"
	"github.com/finledger/portfolio-tracker/internal/model"
	"github.com/finledger/portfolio-tracker/internal/repository"
)

// SyncService orchestrates source syncs across portfolios. Different sources
// for the same portfolio run concurrently; the per-portfolio write lock held
// inside each source sync keeps their ledger writes serialized.
type SyncService struct {
	trading212     *Trading212Service
	binance        *BinanceService
	credentialRepo *repository.CredentialRepository
	logger         zerolog.Logger
}

// NewSyncService creates a new SyncService with the provided dependencies.
func NewSyncService(
	trading212 *Trading212Service,
	binance *BinanceService,
	credentialRepo *repository.CredentialRepository,
	logger zerolog.Logger,
) *SyncService {
	return &SyncService{
		trading212:     trading212,
		binance:        binance,
		credentialRepo: credentialRepo,
		logger:         logger,
	}
}

// SyncPortfolio runs every source the portfolio has credentials for. Sources
// without credentials are silently skipped; results are keyed by source name.
func (s *SyncService) SyncPortfolio(ctx context.Context, portfolioID string) (map[string]model.SyncResult, error) {
	var (
		g, gctx = errgroup.WithContext(ctx)
		results = make(map[string]model.SyncResult, 2)
		resCh   = make(chan sourceResult, 2)
	)

	g.Go(func() error {
		result, err := s.trading212.SyncTransactions(gctx, portfolioID)
		if errors.Is(err, apperrors.ErrCredentialNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		resCh <- sourceResult{source: model.SourceTrading212, result: result}
		return nil
	})

	g.Go(func() error {
		result, err := s.binance.SyncTrades(gctx, portfolioID)
		if errors.Is(err, apperrors.ErrCredentialNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		resCh <- sourceResult{source: model.SourceBinance, result: result}
		return nil
	})

	err := g.Wait()
	close(resCh)
	for r := range resCh {
		results[r.source] = r.result
	}
	if err != nil {
		return results, err
	}
	return results, nil
}

// SyncAll syncs every portfolio that has stored credentials. Intended for the
// scheduler; per-portfolio failures are logged and do not stop the sweep.
func (s *SyncService) SyncAll(ctx context.Context) {
	portfolioIDs, err := s.credentialRepo.ListPortfoliosWithCredentials()
	if err != nil {
		s.logger.Error().Err(err).Msg("scheduled sync: failed to list portfolios")
		return
	}

	for _, portfolioID := range portfolioIDs {
		if ctx.Err() != nil {
			return
		}
		results, err := s.SyncPortfolio(ctx, portfolioID)
		if err != nil {
			s.logger.Error().Err(err).Str("portfolio", portfolioID).Msg("scheduled sync failed")
			continue
		}
		for source, result := range results {
			s.logger.Info().
				Str("portfolio", portfolioID).
				Str("source", source).
				Bool("success", result.Success).
				Int("imported", result.Imported).
				Int("skipped", result.Skipped).
				Msg("scheduled sync finished")
		}
	}
}

type sourceResult struct {
	source string
	result model.SyncResult
}
