package inference

import "math"

// FeatureOrder is the column order the flare model was trained with. Scoring
// a vector in any other order yields a plausible but wrong probability.
var FeatureOrder = [...]string{
	"duration_h",
	"quality_pct",
	"cycle_day",
	"processed_sugar",
	"caffeine_evening",
	"pain_today",
}

const FeatureCount = len(FeatureOrder)

type Features struct {
	DurationH       float64 `json:"duration_h"`
	QualityPct      float64 `json:"quality_pct"`
	CycleDay        int     `json:"cycle_day"`
	PainToday       int     `json:"pain_today"`
	ProcessedSugar  int     `json:"processed_sugar"`
	CaffeineEvening int     `json:"caffeine_evening"`
}

// Vector lays the features out in FeatureOrder.
func (features Features) Vector() []float64 {
	return []float64{
		features.DurationH,
		features.QualityPct,
		float64(features.CycleDay),
		float64(features.ProcessedSugar),
		float64(features.CaffeineEvening),
		float64(features.PainToday),
	}
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
