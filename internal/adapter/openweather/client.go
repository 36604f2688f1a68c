// Package openweather fetches current conditions, alerts, and the short-range
// forecast from the OpenWeatherMap One Call API and maps them to the
// normalized weather snapshot the scoring engine consumes.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/supply-risk-monitor/internal/domain"
)

// Temperature bounds beyond which current conditions count as extreme,
// matching the upstream collector's classification.
const (
	extremeHighTempC = 35.0
	extremeLowTempC  = 0.0
)

// severeForecastDays is how far into the forecast a severe entry still
// flips the current condition to extreme_weather.
const severeForecastDays = 3

// forecastDays caps the short-range forecast carried into the snapshot.
const forecastDays = 5

// Client calls the OpenWeatherMap One Call endpoint.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an OpenWeatherMap client.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.openweathermap.org/data/3.0/onecall",
		logger:  logger,
	}
}

// Fetch returns the weather snapshot for a coordinate pair.
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (*domain.WeatherSnapshot, error) {
	params := url.Values{
		"lat":     {fmt.Sprintf("%.4f", lat)},
		"lon":     {fmt.Sprintf("%.4f", lon)},
		"appid":   {c.apiKey},
		"units":   {"metric"},
		"exclude": {"minutely,hourly"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openweathermap API error: status %d: %s", resp.StatusCode, body)
	}

	var owm response
	if err := json.NewDecoder(resp.Body).Decode(&owm); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return mapResponse(owm), nil
}

// mapResponse reduces the One Call payload to the normalized snapshot,
// deriving the categorical condition from alerts, near-term forecast
// severity, and temperature extremes.
func mapResponse(owm response) *domain.WeatherSnapshot {
	snap := &domain.WeatherSnapshot{
		Temperature: owm.Current.Temp,
		Condition:   domain.ConditionNormal,
	}
	if len(owm.Current.Weather) > 0 {
		snap.Description = owm.Current.Weather[0].Description
	}

	for _, a := range owm.Alerts {
		snap.Alerts = append(snap.Alerts, domain.WeatherAlert{
			Event:       a.Event,
			Description: a.Description,
			Start:       time.Unix(a.Start, 0).UTC(),
			End:         time.Unix(a.End, 0).UTC(),
		})
	}

	daily := owm.Daily
	if len(daily) > forecastDays {
		daily = daily[:forecastDays]
	}
	for _, d := range daily {
		main := ""
		if len(d.Weather) > 0 {
			main = strings.ToLower(d.Weather[0].Main)
		}
		snap.Forecast = append(snap.Forecast, domain.ForecastDay{
			Date:      time.Unix(d.Dt, 0).UTC(),
			Condition: main,
		})
	}

	switch {
	case len(snap.Alerts) > 0:
		snap.Condition = domain.ConditionExtremeWeather
	case hasSevereForecast(snap.Forecast):
		snap.Condition = domain.ConditionExtremeWeather
	case snap.Temperature > extremeHighTempC || snap.Temperature < extremeLowTempC:
		snap.Condition = domain.ConditionExtremeWeather
	}

	return snap
}

// hasSevereForecast reports whether a severe category appears within the
// first severeForecastDays entries.
func hasSevereForecast(forecast []domain.ForecastDay) bool {
	days := forecast
	if len(days) > severeForecastDays {
		days = days[:severeForecastDays]
	}
	for _, d := range days {
		switch d.Condition {
		case "thunderstorm", "tornado", "hurricane":
			return true
		}
	}
	return false
}

// OpenWeatherMap API response types.

type response struct {
	Current struct {
		Temp    float64        `json:"temp"`
		Weather []weatherEntry `json:"weather"`
	} `json:"current"`
	Daily  []dailyEntry `json:"daily"`
	Alerts []alertEntry `json:"alerts"`
}

type weatherEntry struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type dailyEntry struct {
	Dt      int64          `json:"dt"`
	Weather []weatherEntry `json:"weather"`
}

type alertEntry struct {
	Event       string `json:"event"`
	Description string `json:"description"`
	Start       int64  `json:"start"`
	End         int64  `json:"end"`
}
