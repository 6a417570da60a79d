// Package binance implements the signed-request HTTP client for the exchange
// account and trade-history endpoints. Signed endpoints carry a server
// timestamp parameter and an HMAC-SHA256 signature over the sorted query
// string.
package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client defines the exchange operations the sync services consume.
// This interface enables dependency injection and testing with fake implementations.
type Client interface {
	Account(ctx context.Context) (Account, error)
	ExchangeSymbols(ctx context.Context) ([]string, error)
	MyTrades(ctx context.Context, symbol string, limit int) ([]Trade, error)
}

// HTTPClient is the real exchange client.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	secretKey  string
	now        func() time.Time
}

// NewHTTPClient creates an exchange client with the given API key pair.
func NewHTTPClient(baseURL, apiKey, secretKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		secretKey:  secretKey,
		now:        time.Now,
	}
}

// Account fetches the signed account snapshot, including asset balances.
func (c *HTTPClient) Account(ctx context.Context) (Account, error) {
	var account Account
	if err := c.getSigned(ctx, "/api/v3/account", url.Values{}, &account); err != nil {
		return Account{}, err
	}
	return account, nil
}

// ExchangeSymbols fetches the exchange's tradable pair symbols. The endpoint
// is public and unsigned.
func (c *HTTPClient) ExchangeSymbols(ctx context.Context) ([]string, error) {
	var info ExchangeInfo
	if err := c.get(ctx, c.baseURL+"/api/v3/exchangeInfo", &info); err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		symbols = append(symbols, s.Symbol)
	}
	return symbols, nil
}

// MyTrades fetches the trade history for one pair symbol.
func (c *HTTPClient) MyTrades(ctx context.Context, symbol string, limit int) ([]Trade, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("limit", strconv.Itoa(limit))

	var trades []Trade
	if err := c.getSigned(ctx, "/api/v3/myTrades", params, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

// Sign computes the HMAC-SHA256 signature over a query string.
func Sign(secretKey, query string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

// getSigned adds the timestamp parameter, signs the sorted query string and
// performs the request with the API key header.
func (c *HTTPClient) getSigned(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))

	// url.Values.Encode sorts by key, which is the canonical form the
	// signature is computed over.
	query := params.Encode()
	query += "&signature=" + Sign(c.secretKey, query)

	return c.get(ctx, c.baseURL+path+"?"+query, out)
}

func (c *HTTPClient) get(ctx context.Context, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("X-MBX-APIKEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("binance status %d: %s", resp.StatusCode, string(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode binance response: %w", err)
	}

	return nil
}
