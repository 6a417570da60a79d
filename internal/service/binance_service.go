package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finledger/portfolio-tracker/internal/binance"
	"github.com/finledger/portfolio-tracker/internal/model"
	"github.com/finledger/portfolio-tracker/internal/pricecache"
	"github.com/finledger/portfolio-tracker/internal/repository"
)

// quoteAssets are the quote currencies considered when deriving candidate
// trading pairs from held assets.
var quoteAssets = []string{"USDT", "BTC", "EUR", "BUSD", "USDC"}

const tradesPerPair = 1000

// BinanceClientFactory builds an exchange client for a resolved credential
// pair. Injected so tests can substitute a fake client.
type BinanceClientFactory func(apiKey, secretKey string) binance.Client

// BinanceService syncs executed exchange trades into the ledger. Trading
// pairs are discovered from the account's non-zero balances intersected with
// the exchange's tradable symbols, so only pairs the account can actually
// have traded are queried.
type BinanceService struct {
	ledgerRepo  *repository.LedgerRepository
	credentials *CredentialService
	newClient   BinanceClientFactory
	pairCache   *pricecache.Cache[map[string]bool]
	locker      *PortfolioLocker
	logger      zerolog.Logger
}

// NewBinanceService creates a new BinanceService with the provided dependencies.
func NewBinanceService(
	ledgerRepo *repository.LedgerRepository,
	credentials *CredentialService,
	newClient BinanceClientFactory,
	pairCache *pricecache.Cache[map[string]bool],
	locker *PortfolioLocker,
	logger zerolog.Logger,
) *BinanceService {
	return &BinanceService{
		ledgerRepo:  ledgerRepo,
		credentials: credentials,
		newClient:   newClient,
		pairCache:   pairCache,
		locker:      locker,
		logger:      logger,
	}
}

// TestConnection verifies the portfolio's exchange credentials against the
// signed account endpoint.
func (s *BinanceService) TestConnection(ctx context.Context, portfolioID string) error {
	client, err := s.client(portfolioID)
	if err != nil {
		return err
	}
	_, err = client.Account(ctx)
	return err
}

// SyncTrades imports the account's trade history for every discovered pair.
// Pairs are queried sequentially; cancellation takes effect between pairs.
func (s *BinanceService) SyncTrades(ctx context.Context, portfolioID string) (model.SyncResult, error) {
	client, err := s.client(portfolioID)
	if err != nil {
		return model.SyncResult{}, err
	}

	unlock := s.locker.Lock(portfolioID)
	defer unlock()

	result := model.NewSyncResult()

	account, err := client.Account(ctx)
	if err != nil {
		result.Fail(err)
		s.logger.Error().Err(err).Str("portfolio", portfolioID).Msg("binance trade sync aborted")
		return result, nil
	}

	tradable, err := s.tradableSymbols(ctx, client)
	if err != nil {
		result.Fail(err)
		s.logger.Error().Err(err).Str("portfolio", portfolioID).Msg("binance trade sync aborted")
		return result, nil
	}

	pairs := candidatePairs(account, tradable)

	for _, pair := range pairs {
		if ctx.Err() != nil {
			result.Note = "sync cancelled; already-imported transactions are durable and the next run resumes"
			break
		}

		trades, err := client.MyTrades(ctx, pair, tradesPerPair)
		if err != nil {
			// One pair failing does not abort the others.
			result.AddError("pair %s: %v", pair, err)
			continue
		}
		for _, trade := range trades {
			s.importTrade(ctx, portfolioID, trade, &result)
		}
	}

	s.logger.Info().
		Str("portfolio", portfolioID).
		Int("pairs", len(pairs)).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("binance trade sync finished")

	return result, nil
}

func (s *BinanceService) importTrade(ctx context.Context, portfolioID string, trade binance.Trade, result *model.SyncResult) {
	quantity, err := decimal.NewFromString(trade.Qty)
	if err != nil {
		result.AddError("trade %d: bad quantity %q", trade.ID, trade.Qty)
		return
	}
	price, err := decimal.NewFromString(trade.Price)
	if err != nil {
		result.AddError("trade %d: bad price %q", trade.ID, trade.Price)
		return
	}
	fee := decimal.Zero
	if trade.Commission != "" {
		if fee, err = decimal.NewFromString(trade.Commission); err != nil {
			result.AddError("trade %d: bad commission %q", trade.ID, trade.Commission)
			return
		}
	}

	symbol := BaseAsset(trade.Symbol)
	side := model.Sell
	if trade.IsBuyer {
		side = model.Buy
	}
	date := time.UnixMilli(trade.Time).UTC()

	existing, err := s.ledgerRepo.FindDuplicate(portfolioID, symbol, quantity, price, date)
	if err != nil {
		result.AddError("trade %d: %v", trade.ID, err)
		return
	}
	if existing != nil {
		result.Skipped++
		return
	}

	tx := &model.Transaction{
		ID:          uuid.New().String(),
		PortfolioID: portfolioID,
		Symbol:      symbol,
		Type:        side,
		Quantity:    quantity,
		Price:       price,
		Fee:         fee,
		Date:        date,
	}
	if err := s.ledgerRepo.AppendTransaction(ctx, tx); err != nil {
		result.AddError("trade %d: %v", trade.ID, err)
		return
	}
	result.Imported++
}

// tradableSymbols returns the exchange's symbol set, cached so repeated syncs
// within the cache window skip the exchange-info call.
func (s *BinanceService) tradableSymbols(ctx context.Context, client binance.Client) (map[string]bool, error) {
	key := s.pairCache.At(model.SourceBinance, "symbols")
	if symbols, ok := s.pairCache.Get(key); ok {
		return symbols, nil
	}

	listed, err := client.ExchangeSymbols(ctx)
	if err != nil {
		return nil, err
	}
	symbols := make(map[string]bool, len(listed))
	for _, symbol := range listed {
		symbols[symbol] = true
	}

	s.pairCache.Put(key, symbols)
	return symbols, nil
}

// candidatePairs crosses the account's non-zero balances with the quote
// assets and keeps the combinations the exchange actually lists. Order
// follows the balance listing so runs are deterministic.
func candidatePairs(account binance.Account, tradable map[string]bool) []string {
	var pairs []string
	for _, balance := range account.Balances {
		free, err1 := decimal.NewFromString(balance.Free)
		locked, err2 := decimal.NewFromString(balance.Locked)
		if err1 != nil || err2 != nil {
			continue
		}
		if !free.Add(locked).IsPositive() {
			continue
		}
		for _, quote := range quoteAssets {
			if balance.Asset == quote {
				continue
			}
			pair := balance.Asset + quote
			if tradable[pair] {
				pairs = append(pairs, pair)
			}
		}
	}
	return pairs
}

// BaseAsset strips a known quote suffix from a pair symbol, falling back to
// the first three characters when no quote matches.
func BaseAsset(pair string) string {
	for _, quote := range quoteAssets {
		if len(pair) > len(quote) && strings.HasSuffix(pair, quote) {
			return strings.TrimSuffix(pair, quote)
		}
	}
	if len(pair) > 3 {
		return pair[:3]
	}
	return pair
}

func (s *BinanceService) client(portfolioID string) (binance.Client, error) {
	apiKey, secretKey, err := s.credentials.BinanceCredentials(portfolioID)
	if err != nil {
		return nil, err
	}
	return s.newClient(apiKey, secretKey), nil
}
