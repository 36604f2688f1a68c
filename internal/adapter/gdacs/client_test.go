package gdacs

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
)

const gdacsRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <item>
      <title>Green earthquake alert (Magnitude 5.2M)</title>
      <description>Earthquake in Taiwan region</description>
      <pubDate>Sun, 15 Jun 2025 08:30:00 +0000</pubDate>
    </item>
    <item>
      <title>Orange tropical cyclone alert</title>
      <description>Hurricane approaching</description>
      <pubDate>not a date</pubDate>
    </item>
  </channel>
</rss>`

const eonetJSON = `{
  "events": [
    {
      "title": "Wildfire - Northern California",
      "description": "Active wildfire",
      "geometry": [{"date": "2025-06-14T10:00:00Z"}]
    },
    {
      "title": "Severe Storms - Midwest",
      "geometry": []
    }
  ]
}`

func newTestClient(t *testing.T, gdacsHandler, eonetHandler http.HandlerFunc) *Client {
	t.Helper()
	gdacsSrv := httptest.NewServer(gdacsHandler)
	t.Cleanup(gdacsSrv.Close)
	eonetSrv := httptest.NewServer(eonetHandler)
	t.Cleanup(eonetSrv.Close)

	c := NewClient(5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.gdacsURL = gdacsSrv.URL
	c.eonetURL = eonetSrv.URL
	return c
}

func serve(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}
}

func fail(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}
}

func TestFetch(t *testing.T) {
	t.Run("merges both feeds", func(t *testing.T) {
		c := newTestClient(t, serve(gdacsRSS), serve(eonetJSON))

		events, err := c.Fetch(context.Background())
		require.NoError(t, err)
		require.Len(t, events, 4)

		assert.Equal(t, sourceGDACS, events[0].Source)
		assert.Equal(t, "Green earthquake alert (Magnitude 5.2M)", events[0].Title)
		assert.Equal(t, time.Date(2025, 6, 15, 8, 30, 0, 0, time.UTC), events[0].Date)

		// Unparseable pubDate yields the zero time.
		assert.True(t, events[1].Date.IsZero())

		assert.Equal(t, sourceEONET, events[2].Source)
		assert.Equal(t, time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC), events[2].Date)

		// Event without geometry keeps the zero time.
		assert.True(t, events[3].Date.IsZero())
	})

	t.Run("one feed failing keeps the other's events", func(t *testing.T) {
		c := newTestClient(t, fail(http.StatusInternalServerError), serve(eonetJSON))

		events, err := c.Fetch(context.Background())
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, sourceEONET, events[0].Source)
	})

	t.Run("both feeds failing errors", func(t *testing.T) {
		c := newTestClient(t, fail(http.StatusBadGateway), fail(http.StatusBadGateway))

		_, err := c.Fetch(context.Background())
		assert.Error(t, err)
	})

	t.Run("malformed rss counts as a feed failure", func(t *testing.T) {
		c := newTestClient(t, serve("<rss><channel><item>"), serve(eonetJSON))

		events, err := c.Fetch(context.Background())
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})
}

func TestParsePubDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{"rfc1123z", "Sun, 15 Jun 2025 08:30:00 +0000", time.Date(2025, 6, 15, 8, 30, 0, 0, time.UTC)},
		{"rfc1123", "Sun, 15 Jun 2025 08:30:00 UTC", time.Date(2025, 6, 15, 8, 30, 0, 0, time.UTC)},
		{"rfc3339", "2025-06-15T08:30:00Z", time.Date(2025, 6, 15, 8, 30, 0, 0, time.UTC)},
		{"garbage", "yesterday-ish", time.Time{}},
		{"empty", "", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePubDate(tt.input)
			assert.True(t, got.Equal(tt.expected), "got %v, want %v", got, tt.expected)
		})
	}
}
