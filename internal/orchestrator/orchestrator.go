// Package orchestrator runs the concurrent multi-source collection for one
// cycle: every upstream domain is fetched once per subject, all fetches run
// in parallel, and a failed fetch yields the domain's default payload
// instead of failing the bundle.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/supply-risk-monitor/internal/domain"
	"github.com/couchcryptid/supply-risk-monitor/internal/observability"
)

// ErrNoSubjects is returned when Collect is called with an empty registry.
// An empty cycle must fail loudly rather than produce a misleadingly empty
// result set.
var ErrNoSubjects = errors.New("no subjects to collect")

// WeatherSource fetches the weather snapshot for a coordinate pair.
type WeatherSource interface {
	Fetch(ctx context.Context, lat, lon float64) (*domain.WeatherSnapshot, error)
}

// DisasterSource fetches global disaster events.
type DisasterSource interface {
	Fetch(ctx context.Context) ([]domain.DisasterEvent, error)
}

// TradeSource fetches economic indicators for a country.
type TradeSource interface {
	Fetch(ctx context.Context, countryCode string) (domain.EconomicIndicators, error)
}

// NewsSource fetches recent news mentioning a subject.
type NewsSource interface {
	Fetch(ctx context.Context, subjectName string) ([]domain.NewsItem, error)
}

// MarketSource fetches a market quote for a listed security.
type MarketSource interface {
	Fetch(ctx context.Context, symbol string) (*domain.MarketQuote, error)
}

// Sources bundles the per-domain collectors the orchestrator fans out to.
type Sources struct {
	Weather   WeatherSource
	Disasters DisasterSource
	Trade     TradeSource
	News      NewsSource
	Market    MarketSource
}

// Orchestrator fans collection out across subjects and domains.
type Orchestrator struct {
	sources       Sources
	fetchTimeout  time.Duration
	maxConcurrent int
	clock         clockwork.Clock
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// New creates an Orchestrator. maxConcurrent bounds how many subjects are
// collected at once; within a subject all domains always run in parallel.
// A nil clock selects the real clock.
func New(sources Sources, fetchTimeout time.Duration, maxConcurrent int, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Orchestrator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Orchestrator{
		sources:       sources,
		fetchTimeout:  fetchTimeout,
		maxConcurrent: maxConcurrent,
		clock:         clock,
		logger:        logger,
		metrics:       metrics,
	}
}

// Collect assembles one DataBundle per subject. The only join points are
// "all domains done" per subject and "all subjects done" for the cycle; no
// ordering exists between subjects or between domains within a subject.
func (o *Orchestrator) Collect(ctx context.Context, subjects []domain.Subject) (map[string]domain.DataBundle, error) {
	if len(subjects) == 0 {
		return nil, ErrNoSubjects
	}

	bundles := make(map[string]domain.DataBundle, len(subjects))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxConcurrent)

	for _, subject := range subjects {
		g.Go(func() error {
			bundle := o.collectSubject(ctx, subject)
			mu.Lock()
			bundles[subject.ID] = bundle
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return bundles, nil
}

// collectSubject issues all applicable domain fetches for one subject in
// parallel and joins them into a bundle. Single attempt per fetch; failures
// substitute defaults at this boundary and stay visible in logs and the
// fetches_total counter.
func (o *Orchestrator) collectSubject(ctx context.Context, subject domain.Subject) domain.DataBundle {
	bundle := domain.DataBundle{SubjectID: subject.ID}

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		bundle.Weather = fetch(ctx, o, "weather", domain.DefaultWeather(), func(ctx context.Context) (*domain.WeatherSnapshot, error) {
			return o.sources.Weather.Fetch(ctx, subject.Lat, subject.Lon)
		})
	}()
	go func() {
		defer wg.Done()
		bundle.Disasters = fetch(ctx, o, "disasters", nil, func(ctx context.Context) ([]domain.DisasterEvent, error) {
			return o.sources.Disasters.Fetch(ctx)
		})
	}()
	go func() {
		defer wg.Done()
		bundle.Indicators = fetch(ctx, o, "trade", nil, func(ctx context.Context) (domain.EconomicIndicators, error) {
			return o.sources.Trade.Fetch(ctx, subject.CountryCode)
		})
	}()
	go func() {
		defer wg.Done()
		bundle.News = fetch(ctx, o, "news", nil, func(ctx context.Context) ([]domain.NewsItem, error) {
			return o.sources.News.Fetch(ctx, subject.Name)
		})
	}()

	if subject.Ticker != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bundle.Quote = fetch(ctx, o, "market", nil, func(ctx context.Context) (*domain.MarketQuote, error) {
				return o.sources.Market.Fetch(ctx, subject.Ticker)
			})
		}()
	}

	wg.Wait()
	bundle.CollectedAt = o.clock.Now().UTC()
	return bundle
}

// fetch runs one domain fetch under the per-fetch timeout and converts any
// error into the domain's default payload.
func fetch[T any](ctx context.Context, o *Orchestrator, name string, def T, fn func(ctx context.Context) (T, error)) T {
	fetchCtx, cancel := context.WithTimeout(ctx, o.fetchTimeout)
	defer cancel()

	start := time.Now()
	value, err := fn(fetchCtx)
	o.metrics.FetchDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		o.logger.Warn("fetch failed, substituting default payload", "domain", name, "error", err)
		o.metrics.Fetches.WithLabelValues(name, "defaulted").Inc()
		return def
	}
	o.metrics.Fetches.WithLabelValues(name, "ok").Inc()
	return value
}
