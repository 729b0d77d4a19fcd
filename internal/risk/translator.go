// Package risk translates forecast percentages into operational risk
// levels and cost figures.
package risk

// Level buckets a forecast relative to the historical average.
type Level string

const (
	LevelHigh     Level = "High"
	LevelModerate Level = "Moderate"
	LevelLow      Level = "Low"
)

// Classify buckets a predicted percentage against the historical mean:
// above the mean is High, above half the mean is Moderate, else Low.
func Classify(predicted, historicalMean float64) Level {
	switch {
	case predicted > historicalMean:
		return LevelHigh
	case predicted > historicalMean/2:
		return LevelModerate
	default:
		return LevelLow
	}
}

// Translator converts percentages into money using configured rates.
type Translator struct {
	// UnitCost is the operational cost attributed to one percentage
	// point of cancellations.
	UnitCost float64

	// RecoveryFraction is the share of that cost considered recoverable
	// through preventive maintenance.
	RecoveryFraction float64
}

// EstimatedCost returns the operational cost of a predicted percentage.
// The mapping is purely linear; bucketing or flooring of raw model
// output is left to callers.
func (t Translator) EstimatedCost(predictedPercent float64) float64 {
	return predictedPercent * t.UnitCost
}

// PotentialSavings returns the recoverable share of the estimated cost.
func (t Translator) PotentialSavings(predictedPercent float64) float64 {
	return t.EstimatedCost(predictedPercent) * t.RecoveryFraction
}

// Assessment is the full risk view for one forecast value.
type Assessment struct {
	Predicted        float64 `json:"predicted"`
	HistoricalMean   float64 `json:"historical_mean"`
	Level            Level   `json:"level"`
	EstimatedCost    float64 `json:"estimated_cost"`
	PotentialSavings float64 `json:"potential_savings"`
	Recommendation   string  `json:"recommendation"`
}

// Assess combines classification and cost translation.
func (t Translator) Assess(predicted, historicalMean float64) Assessment {
	level := Classify(predicted, historicalMean)
	return Assessment{
		Predicted:        predicted,
		HistoricalMean:   historicalMean,
		Level:            level,
		EstimatedCost:    t.EstimatedCost(predicted),
		PotentialSavings: t.PotentialSavings(predicted),
		Recommendation:   recommendation(level),
	}
}

func recommendation(level Level) string {
	switch level {
	case LevelHigh:
		return "Schedule preventive maintenance and review fleet allocation for this period."
	case LevelModerate:
		return "Monitor closely and keep spare capacity available."
	default:
		return "No action needed beyond routine maintenance."
	}
}

func (l Level) String() string { return string(l) }
