// Package gdacs collects geophysical disaster events from the GDACS RSS feed
// and the NASA EONET v3 API, merging both into one normalized event list.
package gdacs

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/supply-risk-monitor/internal/domain"
)

// Source names stamped on collected events.
const (
	sourceGDACS = "GDACS"
	sourceEONET = "NASA EONET"
)

// Client fetches disaster events from both upstream feeds.
type Client struct {
	httpClient *http.Client
	gdacsURL   string
	eonetURL   string
	logger     *slog.Logger
}

// NewClient creates a disaster event client.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		gdacsURL: "https://www.gdacs.org/xml/rss.xml",
		eonetURL: "https://eonet.gsfc.nasa.gov/api/v3/events",
		logger:   logger,
	}
}

// Fetch returns events from both feeds. One feed failing does not discard
// the other's events; the error is returned only when both fail so the
// caller can substitute the default payload.
func (c *Client) Fetch(ctx context.Context) ([]domain.DisasterEvent, error) {
	var events []domain.DisasterEvent

	gdacsEvents, gdacsErr := c.fetchGDACS(ctx)
	if gdacsErr != nil {
		c.logger.Warn("gdacs feed failed", "error", gdacsErr)
	}
	events = append(events, gdacsEvents...)

	eonetEvents, eonetErr := c.fetchEONET(ctx)
	if eonetErr != nil {
		c.logger.Warn("eonet feed failed", "error", eonetErr)
	}
	events = append(events, eonetEvents...)

	if gdacsErr != nil && eonetErr != nil {
		return nil, errors.Join(gdacsErr, eonetErr)
	}
	return events, nil
}

func (c *Client) fetchGDACS(ctx context.Context) ([]domain.DisasterEvent, error) {
	body, err := c.get(ctx, c.gdacsURL)
	if err != nil {
		return nil, err
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parse gdacs rss: %w", err)
	}

	events := make([]domain.DisasterEvent, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		events = append(events, domain.DisasterEvent{
			Source:      sourceGDACS,
			Title:       item.Title,
			Description: item.Description,
			Date:        parsePubDate(item.PubDate),
		})
	}
	return events, nil
}

func (c *Client) fetchEONET(ctx context.Context) ([]domain.DisasterEvent, error) {
	body, err := c.get(ctx, c.eonetURL)
	if err != nil {
		return nil, err
	}

	var resp eonetResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse eonet response: %w", err)
	}

	events := make([]domain.DisasterEvent, 0, len(resp.Events))
	for _, ev := range resp.Events {
		date := time.Time{}
		if len(ev.Geometry) > 0 {
			date = ev.Geometry[0].Date
		}
		events = append(events, domain.DisasterEvent{
			Source:      sourceEONET,
			Title:       ev.Title,
			Description: ev.Description,
			Date:        date,
		})
	}
	return events, nil
}

func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("disaster feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("disaster feed error: status %d: %s", resp.StatusCode, body)
	}

	return io.ReadAll(resp.Body)
}

// parsePubDate handles the RFC1123 variants GDACS emits. Unparseable dates
// yield the zero time, which the scoring engine treats as outside the
// recency window.
func parsePubDate(s string) time.Time {
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// GDACS RSS feed types.

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

// NASA EONET v3 response types.

type eonetResponse struct {
	Events []eonetEvent `json:"events"`
}

type eonetEvent struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Geometry    []struct {
		Date time.Time `json:"date"`
	} `json:"geometry"`
}
