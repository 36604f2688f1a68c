// Package risk implements the deterministic scoring engine. Score and
// Recommend are pure given a frozen clock: no I/O, no mutation of the input
// bundle, identical output for identical input. Every sub-calculation is
// total over its domain: absent or malformed fields substitute the
// documented defaults instead of failing.
package risk

import (
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/supply-risk-monitor/internal/domain"
)

// Scorer maps a DataBundle to a RiskScoreSet using fixed calibration tables.
// The clock exists only for the disaster recency window; freeze it in tests
// for fully deterministic output.
type Scorer struct {
	weights Weights
	clock   clockwork.Clock
}

// NewScorer creates a Scorer. A nil clock selects the real clock.
func NewScorer(w Weights, clock clockwork.Clock) *Scorer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scorer{weights: w, clock: clock}
}

// Weights returns the calibration tables the scorer was built with.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score computes all category scores, the weighted composite, and the label.
// It always returns a complete RiskScoreSet; there is no error path.
func (s *Scorer) Score(b domain.DataBundle) domain.RiskScoreSet {
	w := s.weights

	// Weather and disasters form a single environmental hazard axis. Taking
	// the max instead of summing avoids double-counting correlated hazards:
	// a hurricane shows up in both feeds.
	environmental := max(s.weatherRisk(b.Weather), s.disasterRisk(b.Disasters))

	scores := domain.RiskScoreSet{
		Weather:       clamp01(environmental),
		Political:     clamp01(s.politicalRisk(b.News, b.Indicators)),
		Economic:      clamp01(s.tradeRisk(b.Indicators)),
		Supply:        clamp01(s.supplyRisk(b.Supply)),
		Demand:        clamp01(s.demandRisk(b.Demand)),
		NewsSentiment: clamp01(s.newsRisk(b.News)),
	}

	composite := scores.Weather*w.Composite.Weather +
		scores.Political*w.Composite.Political +
		scores.Economic*w.Composite.Economic +
		scores.Supply*w.Composite.Supply +
		scores.Demand*w.Composite.Demand

	scores.Overall = clamp01(composite * w.CompositeUplift)
	scores.Category = s.categorize(scores.Overall)
	return scores
}

// categorize maps an overall score to its label using the fixed bounds.
func (s *Scorer) categorize(overall float64) string {
	switch {
	case overall < s.weights.LowBound:
		return domain.RiskLow
	case overall < s.weights.HighBound:
		return domain.RiskMedium
	default:
		return domain.RiskHigh
	}
}

// weatherRisk is the max of the alert floor, the condition lookup, and the
// worst forecast day.
func (s *Scorer) weatherRisk(snap *domain.WeatherSnapshot) float64 {
	w := s.weights
	risk := w.BaseWeatherRisk
	if snap == nil {
		return risk
	}

	if len(snap.Alerts) > 0 {
		risk = max(risk, w.AlertFloor)
	}

	if c, ok := w.ConditionRisk[snap.Condition]; ok {
		risk = max(risk, c)
	}

	for _, day := range snap.Forecast {
		if f, ok := w.ForecastConditions[strings.ToLower(day.Condition)]; ok {
			risk = max(risk, f)
		}
	}
	return risk
}

// disasterRisk inspects events within the recency window. Per event the
// first matching severity keyword wins; across events the maximum wins.
func (s *Scorer) disasterRisk(events []domain.DisasterEvent) float64 {
	if len(events) == 0 {
		return 0
	}

	cutoff := s.clock.Now().Add(-time.Duration(s.weights.DisasterRecencyDays) * 24 * time.Hour)
	risk := 0.0
	for _, ev := range events {
		if ev.Date.Before(cutoff) {
			continue
		}
		title := strings.ToLower(ev.Title)
		for _, kw := range s.weights.DisasterSeverity {
			if strings.Contains(title, kw.Keyword) {
				risk = max(risk, kw.Weight)
				break
			}
		}
	}
	return risk
}

// newsRisk scans the most recent items. Title matches contribute full
// keyword weight, description matches a reduced one.
func (s *Scorer) newsRisk(items []domain.NewsItem) float64 {
	if len(items) == 0 {
		return 0
	}

	recent := items
	if len(recent) > s.weights.NewsRecentCount {
		recent = recent[:s.weights.NewsRecentCount]
	}

	risk := 0.0
	for _, item := range recent {
		title := strings.ToLower(item.Title)
		desc := strings.ToLower(item.Description)
		for kw, weight := range s.weights.NewsKeywords {
			if strings.Contains(title, kw) {
				risk = max(risk, weight)
			} else if strings.Contains(desc, kw) {
				risk = max(risk, weight*s.weights.NewsDescriptionFactor)
			}
		}
	}
	return risk
}

// tradeRisk combines the three normalized indicator sub-scores. A nil map
// scores the moderate default: absence of trade data is itself risk signal,
// not safety.
func (s *Scorer) tradeRisk(ind domain.EconomicIndicators) float64 {
	w := s.weights
	if len(ind) == 0 {
		return w.MissingTradeRisk
	}

	trade := indicatorOr(ind, domain.IndicatorTradeGDP, w.TradeDefaults.TradePercentGDP)
	manufacturing := indicatorOr(ind, domain.IndicatorManufacturingGDP, w.TradeDefaults.ManufacturingPercentGDP)
	logistics := indicatorOr(ind, domain.IndicatorLogisticsIndex, w.TradeDefaults.LogisticsIndex)

	risk := (1-trade/100)*w.TradeShare +
		(1-manufacturing/100)*w.ManufacturingShare +
		(1-logistics/w.LogisticsScale)*w.LogisticsShare
	return min(risk, 1.0)
}

// politicalRisk is the max of scaled trade risk and political keyword
// matches over all news items.
func (s *Scorer) politicalRisk(items []domain.NewsItem, ind domain.EconomicIndicators) float64 {
	risk := s.tradeRisk(ind) * s.weights.PoliticalTradeFactor

	for _, item := range items {
		title := strings.ToLower(item.Title)
		desc := strings.ToLower(item.Description)
		for kw, weight := range s.weights.PoliticalKeywords {
			if strings.Contains(title, kw) || strings.Contains(desc, kw) {
				risk = max(risk, weight)
			}
		}
	}
	return risk
}

// supplyRisk weights inventory depletion, lead time, and unreliability.
func (s *Scorer) supplyRisk(st *domain.SupplyState) float64 {
	w := s.weights
	if st == nil {
		st = &domain.SupplyState{
			InventoryLevel:      w.SupplyDefaults.InventoryLevel,
			LeadTimeDays:        w.SupplyDefaults.LeadTimeDays,
			SupplierReliability: w.SupplyDefaults.SupplierReliability,
		}
	}

	return (1-st.InventoryLevel/100)*w.InventoryShare +
		min(st.LeadTimeDays/w.LeadTimeNormDays, 1.0)*w.LeadTimeShare +
		(1-st.SupplierReliability)*w.ReliabilityShare
}

// demandRisk weights forecast inaccuracy and volatility.
func (s *Scorer) demandRisk(st *domain.DemandState) float64 {
	w := s.weights
	if st == nil {
		st = &domain.DemandState{
			ForecastAccuracy: w.DemandDefaults.ForecastAccuracy,
			DemandVolatility: w.DemandDefaults.DemandVolatility,
		}
	}

	return (1-st.ForecastAccuracy)*w.AccuracyShare + st.DemandVolatility*w.VolatilityShare
}

// indicatorOr returns the indicator value or the neutral default when absent.
func indicatorOr(ind domain.EconomicIndicators, key string, def float64) float64 {
	if v, ok := ind[key]; ok {
		return v
	}
	return def
}

// clamp01 bounds a score to [0,1]. A value outside the range is a
// calibration or programming defect; clamping keeps the contract intact
// rather than propagating a broken score.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
