// Package yahoofinance fetches a market quote and one month of close history
// for subjects with a listed security, using the public chart API.
package yahoofinance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/supply-risk-monitor/internal/domain"
)

// Client calls the Yahoo Finance chart endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Yahoo Finance client.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://query1.finance.yahoo.com/v8/finance/chart",
		logger:  logger,
	}
}

// Fetch returns the latest close and one month of daily closes for a symbol.
func (c *Client) Fetch(ctx context.Context, symbol string) (*domain.MarketQuote, error) {
	u := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(symbol))
	params := url.Values{
		"range":    {"1mo"},
		"interval": {"1d"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	// The chart API rejects requests without a browser-ish user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chart request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("yahoo chart API error: status %d: %s", resp.StatusCode, body)
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart result for %s", symbol)
	}
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data for %s", symbol)
	}

	closes := compactCloses(result.Indicators.Quote[0].Close)
	if len(closes) == 0 {
		return nil, fmt.Errorf("empty close history for %s", symbol)
	}

	asOf := time.Time{}
	if n := len(result.Timestamp); n > 0 {
		asOf = time.Unix(result.Timestamp[n-1], 0).UTC()
	}

	return &domain.MarketQuote{
		Symbol:       result.Meta.Symbol,
		Currency:     result.Meta.Currency,
		Close:        closes[len(closes)-1],
		CloseHistory: closes,
		AsOf:         asOf,
	}, nil
}

// compactCloses drops the nulls the chart API interleaves on non-trading days.
func compactCloses(raw []*float64) []float64 {
	closes := make([]float64, 0, len(raw))
	for _, v := range raw {
		if v != nil {
			closes = append(closes, *v)
		}
	}
	return closes
}

// Yahoo Finance chart API response types.

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Currency string `json:"currency"`
		Symbol   string `json:"symbol"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}
