package testutil

import (
	"context"
	"strings"

	"github.com/finledger/portfolio-tracker/internal/binance"
	"github.com/finledger/portfolio-tracker/internal/trading212"
)

// FakeTrading212Client is a canned-response broker client. Pages are keyed by
// request path; the empty key is the first page. Err, when set, is returned
// by every call.
type FakeTrading212Client struct {
	Pages          map[string]trading212.OrdersPage
	InstrumentList []trading212.Instrument
	Err            error
	PageCalls      int
}

// AccountCash returns an empty snapshot or the configured error.
func (f *FakeTrading212Client) AccountCash(ctx context.Context) (trading212.AccountCash, error) {
	if f.Err != nil {
		return trading212.AccountCash{}, f.Err
	}
	return trading212.AccountCash{}, nil
}

// OrdersPage returns the canned page for the path.
func (f *FakeTrading212Client) OrdersPage(ctx context.Context, path string) (trading212.OrdersPage, error) {
	f.PageCalls++
	if f.Err != nil {
		return trading212.OrdersPage{}, f.Err
	}
	// Continuation paths may carry the full query string; match on prefix so
	// canned pages can use short keys.
	for key, page := range f.Pages {
		if key == path || (key != "" && strings.HasPrefix(path, key)) {
			return page, nil
		}
	}
	return trading212.OrdersPage{}, nil
}

// Instruments returns the canned instrument list.
func (f *FakeTrading212Client) Instruments(ctx context.Context) ([]trading212.Instrument, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.InstrumentList, nil
}

// FakeBinanceClient is a canned-response exchange client. Trades are keyed by
// pair symbol.
type FakeBinanceClient struct {
	AccountData binance.Account
	Symbols     []string
	Trades      map[string][]binance.Trade
	Err         error
}

// Account returns the canned account snapshot.
func (f *FakeBinanceClient) Account(ctx context.Context) (binance.Account, error) {
	if f.Err != nil {
		return binance.Account{}, f.Err
	}
	return f.AccountData, nil
}

// ExchangeSymbols returns the canned symbol list.
func (f *FakeBinanceClient) ExchangeSymbols(ctx context.Context) ([]string, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Symbols, nil
}

// MyTrades returns the canned trades for the pair.
func (f *FakeBinanceClient) MyTrades(ctx context.Context, symbol string, limit int) ([]binance.Trade, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Trades[symbol], nil
}
