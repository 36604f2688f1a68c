// Package worldbank fetches trade and economic indicator series from the
// World Bank API for a subject's country.
package worldbank

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

// indicatorSeries maps World Bank series codes to the indicator names the
// scoring engine keys on.
var indicatorSeries = map[string]string{
	"NE.TRD.GNFS.ZS": domain.IndicatorTradeGDP,
	"NV.IND.MANF.ZS": domain.IndicatorManufacturingGDP,
	"LP.LPI.OVRL.XQ": domain.IndicatorLogisticsIndex,
}

// Client calls the World Bank country indicator API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a World Bank indicator client.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.worldbank.org/v2",
		logger:  logger,
	}
}

// Fetch returns the most recent non-empty value for each indicator series.
// Series with no published value are simply omitted from the map; the map is
// empty only when every series fails or is unpublished.
func (c *Client) Fetch(ctx context.Context, countryCode string) (domain.EconomicIndicators, error) {
	indicators := make(domain.EconomicIndicators, len(indicatorSeries))

	var lastErr error
	for code, name := range indicatorSeries {
		value, ok, err := c.fetchSeries(ctx, countryCode, code)
		if err != nil {
			c.logger.Warn("indicator series failed", "series", code, "country", countryCode, "error", err)
			lastErr = err
			continue
		}
		if ok {
			indicators[name] = value
		}
	}

	if len(indicators) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return indicators, nil
}

// fetchSeries fetches the most recent non-empty value (mrnev=1) of one
// series. The second return is false when the series has no value.
func (c *Client) fetchSeries(ctx context.Context, countryCode, seriesCode string) (float64, bool, error) {
	u := fmt.Sprintf("%s/country/%s/indicator/%s", c.baseURL, url.PathEscape(countryCode), url.PathEscape(seriesCode))
	params := url.Values{
		"format":   {"json"},
		"per_page": {"1"},
		"mrnev":    {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+params.Encode(), nil)
	if err != nil {
		return 0, false, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("indicator request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, false, fmt.Errorf("world bank API error: status %d: %s", resp.StatusCode, body)
	}

	// The API returns a two-element array: [metadata, observations].
	var payload []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, false, fmt.Errorf("decode response: %w", err)
	}
	if len(payload) < 2 {
		return 0, false, nil
	}

	var observations []observation
	if err := json.Unmarshal(payload[1], &observations); err != nil {
		return 0, false, fmt.Errorf("decode observations: %w", err)
	}
	if len(observations) == 0 || observations[0].Value == nil {
		return 0, false, nil
	}
	return *observations[0].Value, true, nil
}

// World Bank API response types.

type observation struct {
	Value *float64 `json:"value"`
	Date  string   `json:"date"`
}
