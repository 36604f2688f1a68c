package risk

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// KeywordWeight pairs a matched substring with the risk it contributes.
// Disaster severity inference is order-sensitive (first match wins per
// event), so the table is a slice rather than a map.
type KeywordWeight struct {
	Keyword string  `yaml:"keyword"`
	Weight  float64 `yaml:"weight"`
}

// CompositeWeights are the per-category contributions to the overall score.
// News sentiment is deliberately absent: it informs recommendations, not the
// headline score.
type CompositeWeights struct {
	Weather   float64 `yaml:"weather"`
	Political float64 `yaml:"political"`
	Economic  float64 `yaml:"economic"`
	Supply    float64 `yaml:"supply"`
	Demand    float64 `yaml:"demand"`
}

// Thresholds are the per-category triggers for recommendation generation.
type Thresholds struct {
	Weather       float64 `yaml:"weather"`
	Political     float64 `yaml:"political"`
	Economic      float64 `yaml:"economic"`
	Supply        float64 `yaml:"supply"`
	Demand        float64 `yaml:"demand"`
	NewsSentiment float64 `yaml:"news_sentiment"`
}

// TradeDefaults are the neutral values substituted for missing indicators.
type TradeDefaults struct {
	TradePercentGDP         float64 `yaml:"trade_percent_gdp"`
	ManufacturingPercentGDP float64 `yaml:"manufacturing_percent_gdp"`
	LogisticsIndex          float64 `yaml:"logistics_index"`
}

// SupplyDefaults are substituted when the supply sub-record is absent.
type SupplyDefaults struct {
	InventoryLevel      float64 `yaml:"inventory_level"`
	LeadTimeDays        float64 `yaml:"lead_time_days"`
	SupplierReliability float64 `yaml:"supplier_reliability"`
}

// DemandDefaults are substituted when the demand sub-record is absent.
type DemandDefaults struct {
	ForecastAccuracy float64 `yaml:"forecast_accuracy"`
	DemandVolatility float64 `yaml:"demand_volatility"`
}

// Weights collects every calibration constant of the scoring engine. All
// values are externally overridable so the tables can be tuned without a
// code change; DefaultWeights returns the hand-tuned production values.
type Weights struct {
	Composite       CompositeWeights `yaml:"composite"`
	CompositeUplift float64          `yaml:"composite_uplift"`

	// Label boundaries: overall < LowBound is Low, < HighBound is Medium,
	// otherwise High.
	LowBound  float64 `yaml:"low_bound"`
	HighBound float64 `yaml:"high_bound"`

	Thresholds Thresholds `yaml:"thresholds"`

	// Weather path.
	BaseWeatherRisk    float64            `yaml:"base_weather_risk"`
	AlertFloor         float64            `yaml:"alert_floor"`
	ConditionRisk      map[string]float64 `yaml:"condition_risk"`
	ForecastConditions map[string]float64 `yaml:"forecast_conditions"`

	// Disaster path.
	DisasterSeverity    []KeywordWeight `yaml:"disaster_severity"`
	DisasterRecencyDays int             `yaml:"disaster_recency_days"`

	// News sentiment.
	NewsKeywords          map[string]float64 `yaml:"news_keywords"`
	NewsDescriptionFactor float64            `yaml:"news_description_factor"`
	NewsRecentCount       int                `yaml:"news_recent_count"`

	// Political.
	PoliticalKeywords    map[string]float64 `yaml:"political_keywords"`
	PoliticalTradeFactor float64            `yaml:"political_trade_factor"`

	// Trade / economic.
	MissingTradeRisk   float64       `yaml:"missing_trade_risk"`
	TradeShare         float64       `yaml:"trade_share"`
	ManufacturingShare float64       `yaml:"manufacturing_share"`
	LogisticsShare     float64       `yaml:"logistics_share"`
	LogisticsScale     float64       `yaml:"logistics_scale"`
	TradeDefaults      TradeDefaults `yaml:"trade_defaults"`

	// Supply.
	InventoryShare   float64        `yaml:"inventory_share"`
	LeadTimeShare    float64        `yaml:"lead_time_share"`
	ReliabilityShare float64        `yaml:"reliability_share"`
	LeadTimeNormDays float64        `yaml:"lead_time_norm_days"`
	SupplyDefaults   SupplyDefaults `yaml:"supply_defaults"`

	// Demand.
	AccuracyShare   float64        `yaml:"accuracy_share"`
	VolatilityShare float64        `yaml:"volatility_share"`
	DemandDefaults  DemandDefaults `yaml:"demand_defaults"`
}

// DefaultWeights returns the hand-tuned calibration tables.
func DefaultWeights() Weights {
	return Weights{
		Composite: CompositeWeights{
			Weather:   0.2,
			Political: 0.15,
			Economic:  0.25,
			Supply:    0.25,
			Demand:    0.15,
		},
		CompositeUplift: 1.2,

		LowBound:  0.3,
		HighBound: 0.6,

		Thresholds: Thresholds{
			Weather:       0.7,
			Political:     0.6,
			Economic:      0.6,
			Supply:        0.5,
			Demand:        0.5,
			NewsSentiment: 0.7,
		},

		BaseWeatherRisk: 0.1,
		AlertFloor:      0.8,
		ConditionRisk: map[string]float64{
			"extreme_weather": 1.0,
			"storm_warning":   0.7,
			"flood_risk":      0.8,
			"normal":          0.1,
		},
		ForecastConditions: map[string]float64{
			"thunderstorm": 0.9,
			"tornado":      0.9,
			"hurricane":    0.9,
			"rain":         0.6,
			"snow":         0.6,
			"storm":        0.6,
		},

		DisasterSeverity: []KeywordWeight{
			{Keyword: "earthquake", Weight: 1.0},
			{Keyword: "tsunami", Weight: 1.0},
			{Keyword: "hurricane", Weight: 0.9},
			{Keyword: "flood", Weight: 0.8},
			{Keyword: "storm", Weight: 0.7},
			{Keyword: "drought", Weight: 0.6},
			{Keyword: "wildfire", Weight: 0.8},
		},
		DisasterRecencyDays: 7,

		NewsKeywords: map[string]float64{
			"disruption":    0.8,
			"shortage":      0.7,
			"delay":         0.6,
			"crisis":        0.8,
			"strike":        0.7,
			"shutdown":      0.8,
			"bankruptcy":    0.9,
			"recall":        0.7,
			"accident":      0.6,
			"investigation": 0.5,
		},
		NewsDescriptionFactor: 0.7,
		NewsRecentCount:       10,

		PoliticalKeywords: map[string]float64{
			"tariff":        0.7,
			"sanction":      0.9,
			"trade war":     0.8,
			"regulation":    0.6,
			"policy change": 0.5,
			"restriction":   0.7,
			"compliance":    0.6,
		},
		PoliticalTradeFactor: 0.5,

		MissingTradeRisk:   0.5,
		TradeShare:         0.3,
		ManufacturingShare: 0.3,
		LogisticsShare:     0.4,
		LogisticsScale:     5.0,
		TradeDefaults: TradeDefaults{
			TradePercentGDP:         50,
			ManufacturingPercentGDP: 50,
			LogisticsIndex:          2.5,
		},

		InventoryShare:   0.4,
		LeadTimeShare:    0.3,
		ReliabilityShare: 0.3,
		LeadTimeNormDays: 60,
		SupplyDefaults: SupplyDefaults{
			InventoryLevel:      50,
			LeadTimeDays:        30,
			SupplierReliability: 0.5,
		},

		AccuracyShare:   0.6,
		VolatilityShare: 0.4,
		DemandDefaults: DemandDefaults{
			ForecastAccuracy: 0.7,
			DemandVolatility: 0.3,
		},
	}
}

// LoadWeights reads a calibration YAML file layered over the defaults.
// Fields absent from the file keep their default values.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()
	if path == "" {
		return w, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, fmt.Errorf("read risk tables: %w", err)
	}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return Weights{}, fmt.Errorf("parse risk tables: %w", err)
	}
	if err := w.Validate(); err != nil {
		return Weights{}, fmt.Errorf("risk tables: %w", err)
	}
	return w, nil
}

// Validate rejects calibration values that would break the [0,1] score
// contract before the engine ever runs.
func (w Weights) Validate() error {
	if w.CompositeUplift <= 0 {
		return fmt.Errorf("composite_uplift must be positive, got %g", w.CompositeUplift)
	}
	if w.LowBound <= 0 || w.HighBound <= w.LowBound {
		return fmt.Errorf("label bounds must satisfy 0 < low < high, got %g/%g", w.LowBound, w.HighBound)
	}
	if w.DisasterRecencyDays <= 0 {
		return fmt.Errorf("disaster_recency_days must be positive, got %d", w.DisasterRecencyDays)
	}
	if w.NewsRecentCount <= 0 {
		return fmt.Errorf("news_recent_count must be positive, got %d", w.NewsRecentCount)
	}
	if w.LeadTimeNormDays <= 0 || w.LogisticsScale <= 0 {
		return fmt.Errorf("normalization scales must be positive")
	}
	return nil
}
