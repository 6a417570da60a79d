// Package trading212 implements the HTTP client for the broker order-history
// and account endpoints. Pagination is cursor-style: each page carries a
// server-supplied relative path for the next page.
package trading212

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// firstOrdersPath is the entry point of the paginated order-history endpoint.
// The page size is fixed; subsequent pages come from NextPagePath.
const firstOrdersPath = "/api/v0/equity/history/orders?limit=50"

// NormalizeTicker strips the broker's market-qualifier suffixes from a ticker
// to obtain the canonical symbol (AAPL_US_EQ -> AAPL).
func NormalizeTicker(ticker string) string {
	ticker = strings.ReplaceAll(ticker, "_US_EQ", "")
	return strings.ReplaceAll(ticker, "_EQ", "")
}

// Client defines the broker operations the sync services consume.
// This interface enables dependency injection and testing with fake implementations.
type Client interface {
	AccountCash(ctx context.Context) (AccountCash, error)
	OrdersPage(ctx context.Context, path string) (OrdersPage, error)
	Instruments(ctx context.Context) ([]Instrument, error)
}

// HTTPClient is the real broker client.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	authHeader string
}

// NewHTTPClient creates a broker client. When apiKeyID is set, requests use
// Basic auth over (apiKeyID, apiKey); otherwise apiKey is sent as the raw
// Authorization header value.
func NewHTTPClient(baseURL, apiKey, apiKeyID string, timeout time.Duration) *HTTPClient {
	authHeader := apiKey
	if apiKeyID != "" && apiKey != "" {
		creds := fmt.Sprintf("%s:%s", apiKeyID, apiKey)
		authHeader = "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
	}
	return &HTTPClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		authHeader: authHeader,
	}
}

// AccountCash fetches the account cash snapshot. Used as the connection test.
func (c *HTTPClient) AccountCash(ctx context.Context) (AccountCash, error) {
	var cash AccountCash
	if err := c.get(ctx, "/api/v0/equity/account/cash", &cash); err != nil {
		return AccountCash{}, err
	}
	return cash, nil
}

// OrdersPage fetches one page of order history. An empty path requests the
// first page; otherwise path is the NextPagePath of the previous page.
func (c *HTTPClient) OrdersPage(ctx context.Context, path string) (OrdersPage, error) {
	if path == "" {
		path = firstOrdersPath
	}
	var page OrdersPage
	if err := c.get(ctx, path, &page); err != nil {
		return OrdersPage{}, err
	}
	return page, nil
}

// Instruments fetches the instrument metadata listing (ticker, display name).
func (c *HTTPClient) Instruments(ctx context.Context) ([]Instrument, error) {
	var instruments []Instrument
	if err := c.get(ctx, "/api/v0/equity/metadata/instruments", &instruments); err != nil {
		return nil, err
	}
	return instruments, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")

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
		return fmt.Errorf("trading212 status %d: %s", resp.StatusCode, string(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode trading212 response: %w", err)
	}

	return nil
}
