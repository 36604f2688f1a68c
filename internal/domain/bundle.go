package domain

import "time"

// Weather conditions as normalized by the weather collector.
const (
	ConditionNormal         = "normal"
	ConditionExtremeWeather = "extreme_weather"
	ConditionStormWarning   = "storm_warning"
	ConditionFloodRisk      = "flood_risk"
)

// Indicator names used as EconomicIndicators keys.
const (
	IndicatorTradeGDP         = "trade_percent_gdp"
	IndicatorManufacturingGDP = "manufacturing_percent_gdp"
	IndicatorLogisticsIndex   = "logistics_performance_index"
)

// WeatherAlert is an active severe-weather advisory for a subject's site.
type WeatherAlert struct {
	Event       string    `json:"event"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start,omitempty"`
	End         time.Time `json:"end,omitempty"`
}

// ForecastDay is one entry of the short-range forecast, reduced to the
// categorical condition the scoring engine consumes.
type ForecastDay struct {
	Date      time.Time `json:"date"`
	Condition string    `json:"condition"` // upstream "main" category, lowercased
}

// WeatherSnapshot is the normalized weather payload for one subject.
type WeatherSnapshot struct {
	Temperature float64        `json:"temperature"`
	Condition   string         `json:"condition"`
	Description string         `json:"description,omitempty"`
	Alerts      []WeatherAlert `json:"alerts,omitempty"`
	Forecast    []ForecastDay  `json:"forecast,omitempty"`
}

// DisasterEvent is a geophysical event reported by GDACS or NASA EONET.
// Upstream provides no severity; the scoring engine infers it from the title.
type DisasterEvent struct {
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
}

// NewsItem is a single news article relevant to a subject. Sentiment is not
// persisted; the scoring engine derives it on read.
type NewsItem struct {
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// EconomicIndicators maps indicator names to their most recent value.
// A missing key means the upstream had no value for that indicator.
type EconomicIndicators map[string]float64

// MarketQuote holds market data for a subject with a listed security.
type MarketQuote struct {
	Symbol       string    `json:"symbol"`
	Currency     string    `json:"currency,omitempty"`
	Close        float64   `json:"close"`
	CloseHistory []float64 `json:"close_history,omitempty"`
	AsOf         time.Time `json:"as_of"`
}

// SupplyState describes a subject's supply-side posture. No collector
// populates it today; it is an extension point the scoring engine already
// prices with documented defaults when absent.
type SupplyState struct {
	InventoryLevel      float64 `json:"inventory_level"`      // percent, 0-100
	LeadTimeDays        float64 `json:"lead_time_days"`       // calendar days
	SupplierReliability float64 `json:"supplier_reliability"` // fraction, 0-1
}

// DemandState describes demand-side posture. Like SupplyState it is an
// extension point defaulted by the engine when absent.
type DemandState struct {
	ForecastAccuracy float64 `json:"forecast_accuracy"` // fraction, 0-1
	DemandVolatility float64 `json:"demand_volatility"` // fraction, 0-1
}

// DataBundle is the aggregated evidence for one subject in one collection
// cycle. Every field is independently optional; a nil field means the
// upstream fetch failed or returned nothing. Bundles are immutable after
// assembly and owned exclusively by the scoring call they feed.
type DataBundle struct {
	SubjectID   string             `json:"subject_id"`
	Weather     *WeatherSnapshot   `json:"weather,omitempty"`
	Disasters   []DisasterEvent    `json:"disasters,omitempty"`
	Indicators  EconomicIndicators `json:"indicators,omitempty"`
	News        []NewsItem         `json:"news,omitempty"`
	Quote       *MarketQuote       `json:"quote,omitempty"`
	Supply      *SupplyState       `json:"supply,omitempty"`
	Demand      *DemandState       `json:"demand,omitempty"`
	CollectedAt time.Time          `json:"collected_at"`
}

// DefaultWeather is the payload substituted when the weather fetch fails:
// a normal-condition snapshot with no alerts and no forecast.
func DefaultWeather() *WeatherSnapshot {
	return &WeatherSnapshot{Condition: ConditionNormal}
}
