package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finledger/portfolio-tracker/internal/model"
	"github.com/finledger/portfolio-tracker/internal/pricecache"
	"github.com/finledger/portfolio-tracker/internal/repository"
	"github.com/finledger/portfolio-tracker/internal/trading212"
)

// Trading212ClientFactory builds a broker client for a resolved credential
// pair. Injected so tests can substitute a fake client.
type Trading212ClientFactory func(apiKey, apiKeyID string) trading212.Client

// Trading212Service syncs broker order history into the ledger and the
// broker-reported realized P&L ledger. Both sync paths are idempotent:
// transactions dedupe on the composite fill key, realized P&L records on the
// broker's order id — two independent mechanisms because the two entities
// represent different facts.
type Trading212Service struct {
	ledgerRepo      *repository.LedgerRepository
	realizedPnLRepo *repository.RealizedPnLRepository
	credentials     *CredentialService
	newClient       Trading212ClientFactory
	instrumentCache *pricecache.Cache[map[string]string]
	locker          *PortfolioLocker
	logger          zerolog.Logger
}

// NewTrading212Service creates a new Trading212Service with the provided dependencies.
func NewTrading212Service(
	ledgerRepo *repository.LedgerRepository,
	realizedPnLRepo *repository.RealizedPnLRepository,
	credentials *CredentialService,
	newClient Trading212ClientFactory,
	instrumentCache *pricecache.Cache[map[string]string],
	locker *PortfolioLocker,
	logger zerolog.Logger,
) *Trading212Service {
	return &Trading212Service{
		ledgerRepo:      ledgerRepo,
		realizedPnLRepo: realizedPnLRepo,
		credentials:     credentials,
		newClient:       newClient,
		instrumentCache: instrumentCache,
		locker:          locker,
		logger:          logger,
	}
}

// TestConnection verifies the portfolio's broker credentials against the
// account cash endpoint.
func (s *Trading212Service) TestConnection(ctx context.Context, portfolioID string) error {
	client, err := s.client(portfolioID)
	if err != nil {
		return err
	}
	_, err = client.AccountCash(ctx)
	return err
}

// SyncTransactions walks the full paginated order history and appends every
// filled, non-duplicate order to the ledger. Pagination is strictly
// sequential: each page's continuation path comes from the previous response.
// Cancellation is cooperative and takes effect before the next page fetch;
// already-inserted rows are durable and the dedup gate makes the next run
// resume cleanly.
func (s *Trading212Service) SyncTransactions(ctx context.Context, portfolioID string) (model.SyncResult, error) {
	client, err := s.client(portfolioID)
	if err != nil {
		return model.SyncResult{}, err
	}

	unlock := s.locker.Lock(portfolioID)
	defer unlock()

	result := model.NewSyncResult()
	path := ""

	for {
		if ctx.Err() != nil {
			result.Note = "sync cancelled; already-imported transactions are durable and the next run resumes"
			break
		}

		page, err := client.OrdersPage(ctx, path)
		if err != nil {
			// Transport or auth failure aborts the whole run; rows appended
			// from earlier pages remain committed.
			result.Fail(err)
			s.logger.Error().Err(err).Str("portfolio", portfolioID).Msg("trading212 order sync aborted")
			return result, nil
		}

		if len(page.Items) == 0 {
			break
		}

		for _, item := range page.Items {
			s.importOrder(ctx, portfolioID, item, &result)
		}

		if page.NextPagePath == "" {
			break
		}
		path = page.NextPagePath
	}

	s.logger.Info().
		Str("portfolio", portfolioID).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("trading212 order sync finished")

	return result, nil
}

// importOrder converts one order-history item into a ledger candidate and
// appends it unless the dedup gate finds it. Per-record failures are recorded
// and do not stop the run.
func (s *Trading212Service) importOrder(ctx context.Context, portfolioID string, item trading212.OrderItem, result *model.SyncResult) {
	order := item.Order

	// Only terminal fills become ledger facts.
	if order.Status != "FILLED" {
		return
	}
	if order.Ticker == "" {
		return
	}

	symbol := trading212.NormalizeTicker(order.Ticker)

	var side model.TransactionType
	switch order.Side {
	case "BUY":
		side = model.Buy
	case "SELL":
		side = model.Sell
	default:
		return
	}

	quantity := decimal.NewFromFloat(order.FilledQuantity)
	price := fillPrice(item)
	date := fillTimestamp(item)

	existing, err := s.ledgerRepo.FindDuplicate(portfolioID, symbol, quantity, price, date)
	if err != nil {
		result.AddError("order %d: %v", order.ID, err)
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
		Fee:         decimal.Zero,
		Date:        date,
	}
	if err := s.ledgerRepo.AppendTransaction(ctx, tx); err != nil {
		result.AddError("order %d: %v", order.ID, err)
		return
	}
	result.Imported++
}

// SyncRealizedPnL walks the same order history but collects the broker's own
// realized P&L figures, keyed and deduplicated by the broker order id.
func (s *Trading212Service) SyncRealizedPnL(ctx context.Context, portfolioID string) (model.SyncResult, error) {
	client, err := s.client(portfolioID)
	if err != nil {
		return model.SyncResult{}, err
	}

	unlock := s.locker.Lock(portfolioID)
	defer unlock()

	result := model.NewSyncResult()
	path := ""

	for {
		if ctx.Err() != nil {
			result.Note = "sync cancelled; already-imported records are durable and the next run resumes"
			break
		}

		page, err := client.OrdersPage(ctx, path)
		if err != nil {
			result.Fail(err)
			s.logger.Error().Err(err).Str("portfolio", portfolioID).Msg("trading212 realized pnl sync aborted")
			return result, nil
		}

		if len(page.Items) == 0 {
			break
		}

		for _, item := range page.Items {
			s.importRealizedPnL(ctx, portfolioID, item, &result)
		}

		if page.NextPagePath == "" {
			break
		}
		path = page.NextPagePath
	}

	s.logger.Info().
		Str("portfolio", portfolioID).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Msg("trading212 realized pnl sync finished")

	return result, nil
}

func (s *Trading212Service) importRealizedPnL(ctx context.Context, portfolioID string, item trading212.OrderItem, result *model.SyncResult) {
	order := item.Order
	if order.ID == 0 {
		return
	}
	orderID := strconv.FormatInt(order.ID, 10)

	existing, err := s.realizedPnLRepo.FindByOrderID(orderID)
	if err != nil {
		result.AddError("order %s: %v", orderID, err)
		return
	}
	if existing != nil {
		result.Skipped++
		return
	}

	var orderDate time.Time
	if order.CreatedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, order.CreatedAt); err == nil {
			orderDate = parsed.UTC()
		}
	}

	record := &model.RealizedPnL{
		ID:          uuid.New().String(),
		PortfolioID: portfolioID,
		Symbol:      trading212.NormalizeTicker(order.Ticker),
		OrderID:     orderID,
		RealizedPnL: decimal.NewFromFloat(item.Fill.WalletImpact.RealisedProfitLoss),
		OrderDate:   orderDate,
	}
	if err := s.realizedPnLRepo.AppendRealizedPnL(ctx, record); err != nil {
		result.AddError("order %s: %v", orderID, err)
		return
	}
	result.Imported++
}

// InstrumentNames returns the broker's ticker-to-display-name mapping,
// cached in the injected pricecache so repeated dashboard loads do not
// refetch the full instrument listing.
func (s *Trading212Service) InstrumentNames(ctx context.Context, portfolioID string) (map[string]string, error) {
	key := s.instrumentCache.At(model.SourceTrading212, "instruments")
	if names, ok := s.instrumentCache.Get(key); ok {
		return names, nil
	}

	client, err := s.client(portfolioID)
	if err != nil {
		return nil, err
	}
	instruments, err := client.Instruments(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(instruments))
	for _, inst := range instruments {
		name := inst.Name
		if name == "" {
			name = inst.Ticker
		}
		names[inst.Ticker] = name
	}

	s.instrumentCache.Put(key, names)
	return names, nil
}

func (s *Trading212Service) client(portfolioID string) (trading212.Client, error) {
	apiKey, apiKeyID, err := s.credentials.Trading212Credentials(portfolioID)
	if err != nil {
		return nil, err
	}
	return s.newClient(apiKey, apiKeyID), nil
}

// fillPrice takes the execution price, falling back to the limit price,
// falling back to zero.
func fillPrice(item trading212.OrderItem) decimal.Decimal {
	if item.Fill.Price != 0 {
		return decimal.NewFromFloat(item.Fill.Price)
	}
	if item.Order.LimitPrice != 0 {
		return decimal.NewFromFloat(item.Order.LimitPrice)
	}
	return decimal.Zero
}

// fillTimestamp takes the fill time, falling back to the order creation time,
// falling back to now.
func fillTimestamp(item trading212.OrderItem) time.Time {
	for _, raw := range []string{item.Fill.FilledAt, item.Order.CreatedAt} {
		if raw == "" {
			continue
		}
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			return parsed.UTC()
		}
	}
	return time.Now().UTC()
}
