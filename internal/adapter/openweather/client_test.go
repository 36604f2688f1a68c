package openweather

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/supply-risk-monitor/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-key", 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.baseURL = srv.URL
	return c
}

func TestFetch(t *testing.T) {
	t.Run("maps a calm payload", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
			assert.Equal(t, "metric", r.URL.Query().Get("units"))
			assert.Equal(t, "24.7736", r.URL.Query().Get("lat"))

			w.Write([]byte(`{
				"current": {"temp": 22.5, "weather": [{"main": "Clouds", "description": "scattered clouds"}]},
				"daily": [
					{"dt": 1750000000, "weather": [{"main": "Clear"}]},
					{"dt": 1750086400, "weather": [{"main": "Rain"}]}
				]
			}`))
		})

		snap, err := c.Fetch(context.Background(), 24.7736, 120.9436)
		require.NoError(t, err)

		assert.Equal(t, 22.5, snap.Temperature)
		assert.Equal(t, domain.ConditionNormal, snap.Condition)
		assert.Equal(t, "scattered clouds", snap.Description)
		assert.Empty(t, snap.Alerts)
		require.Len(t, snap.Forecast, 2)
		assert.Equal(t, "clear", snap.Forecast[0].Condition)
		assert.Equal(t, "rain", snap.Forecast[1].Condition)
	})

	t.Run("alerts flip the condition to extreme", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{
				"current": {"temp": 20},
				"alerts": [{"event": "Typhoon Warning", "description": "landfall expected", "start": 1750000000, "end": 1750086400}]
			}`))
		})

		snap, err := c.Fetch(context.Background(), 24.7, 120.9)
		require.NoError(t, err)

		assert.Equal(t, domain.ConditionExtremeWeather, snap.Condition)
		require.Len(t, snap.Alerts, 1)
		assert.Equal(t, "Typhoon Warning", snap.Alerts[0].Event)
		assert.Equal(t, time.Unix(1750000000, 0).UTC(), snap.Alerts[0].Start)
	})

	t.Run("near-term severe forecast flips the condition", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{
				"current": {"temp": 20},
				"daily": [
					{"dt": 1750000000, "weather": [{"main": "Clear"}]},
					{"dt": 1750086400, "weather": [{"main": "Thunderstorm"}]}
				]
			}`))
		})

		snap, err := c.Fetch(context.Background(), 24.7, 120.9)
		require.NoError(t, err)
		assert.Equal(t, domain.ConditionExtremeWeather, snap.Condition)
	})

	t.Run("severe entry beyond the near-term window does not flip", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{
				"current": {"temp": 20},
				"daily": [
					{"dt": 1, "weather": [{"main": "Clear"}]},
					{"dt": 2, "weather": [{"main": "Clear"}]},
					{"dt": 3, "weather": [{"main": "Clear"}]},
					{"dt": 4, "weather": [{"main": "Thunderstorm"}]}
				]
			}`))
		})

		snap, err := c.Fetch(context.Background(), 24.7, 120.9)
		require.NoError(t, err)
		assert.Equal(t, domain.ConditionNormal, snap.Condition)
	})

	t.Run("temperature extremes flip the condition", func(t *testing.T) {
		for _, temp := range []string{"36.1", "-0.5"} {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"current": {"temp": ` + temp + `}}`))
			})

			snap, err := c.Fetch(context.Background(), 24.7, 120.9)
			require.NoError(t, err)
			assert.Equal(t, domain.ConditionExtremeWeather, snap.Condition, "temp %s", temp)
		}
	})

	t.Run("forecast is capped at five days", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{
				"current": {"temp": 20},
				"daily": [
					{"dt": 1}, {"dt": 2}, {"dt": 3}, {"dt": 4}, {"dt": 5}, {"dt": 6}, {"dt": 7}
				]
			}`))
		})

		snap, err := c.Fetch(context.Background(), 24.7, 120.9)
		require.NoError(t, err)
		assert.Len(t, snap.Forecast, 5)
	})

	t.Run("non-200 status errors", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"cod":401,"message":"Invalid API key"}`, http.StatusUnauthorized)
		})

		_, err := c.Fetch(context.Background(), 24.7, 120.9)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
	})

	t.Run("malformed body errors", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"current": `))
		})

		_, err := c.Fetch(context.Background(), 24.7, 120.9)
		assert.Error(t, err)
	})
}
