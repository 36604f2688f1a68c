// Package newsapi fetches supply-chain news for a subject from the NewsAPI
// "everything" endpoint.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/supply-risk-monitor/internal/domain"
)

// lookbackDays bounds the query window for supply-chain news.
const lookbackDays = 7

// Client calls the NewsAPI everything endpoint.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewClient creates a NewsAPI client. A nil clock selects the real clock.
func NewClient(apiKey string, timeout time.Duration, clock clockwork.Clock, logger *slog.Logger) *Client {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://newsapi.org/v2/everything",
		clock:   clock,
		logger:  logger,
	}
}

// Fetch returns recent supply-chain news mentioning the subject, sorted by
// relevancy upstream.
func (c *Client) Fetch(ctx context.Context, subjectName string) ([]domain.NewsItem, error) {
	from := c.clock.Now().AddDate(0, 0, -lookbackDays).Format("2006-01-02")
	params := url.Values{
		"q":        {fmt.Sprintf("supply chain OR logistics OR manufacturing %s", subjectName)},
		"from":     {from},
		"language": {"en"},
		"sortBy":   {"relevancy"},
		"apiKey":   {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("newsapi error: status %d: %s", resp.StatusCode, body)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	items := make([]domain.NewsItem, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		items = append(items, domain.NewsItem{
			Source:      a.Source.Name,
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		})
	}
	return items, nil
}

// NewsAPI response types.

type response struct {
	Articles []article `json:"articles"`
}

type article struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}
