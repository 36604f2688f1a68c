package risk

import "github.com/couchcryptid/supply-risk-monitor/internal/domain"

// Advisory strings appended per triggered category. Evaluation order is
// fixed (weather, political, economic, supply, demand, news sentiment)
// regardless of score magnitude.
const (
	adviceWeatherAlert = "Urgent: Active weather alerts in the area. Consider immediate " +
		"alternative transportation routes and backup suppliers."
	adviceWeather = "Consider alternative transportation routes and backup suppliers " +
		"due to adverse weather conditions."
	advicePolitical = "High political risk detected. Diversify supplier base across " +
		"different regions and monitor trade policies."
	adviceLogistics = "Poor logistics performance index detected. Review and optimize " +
		"supply chain network."
	adviceEconomic = "Review and adjust pricing strategies and contract terms due to " +
		"economic risks."
	adviceSupply = "Increase safety stock levels and identify backup suppliers to " +
		"mitigate supply risks."
	adviceDemand = "Improve demand forecasting accuracy and implement buffer stock " +
		"strategies."
	adviceNews = "Critical news events detected. Review and update contingency plans."
)

// Recommend builds the ordered advisory list by testing each category
// against its threshold. Several categories can trigger at once; the bundle
// is consulted only to pick message variants, never to change scores.
func (s *Scorer) Recommend(scores domain.RiskScoreSet, b domain.DataBundle) []string {
	t := s.weights.Thresholds
	recs := []string{}

	if scores.Weather > t.Weather {
		if b.Weather != nil && len(b.Weather.Alerts) > 0 {
			recs = append(recs, adviceWeatherAlert)
		} else {
			recs = append(recs, adviceWeather)
		}
	}

	if scores.Political > t.Political {
		recs = append(recs, advicePolitical)
	}

	if scores.Economic > t.Economic {
		if logistics, ok := b.Indicators[domain.IndicatorLogisticsIndex]; ok && logistics < s.weights.TradeDefaults.LogisticsIndex {
			recs = append(recs, adviceLogistics)
		}
		recs = append(recs, adviceEconomic)
	}

	if scores.Supply > t.Supply {
		recs = append(recs, adviceSupply)
	}

	if scores.Demand > t.Demand {
		recs = append(recs, adviceDemand)
	}

	if scores.NewsSentiment > t.NewsSentiment {
		recs = append(recs, adviceNews)
	}

	return recs
}
