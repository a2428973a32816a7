package stress

// Canned per-factor descriptions, bucketed by the same tier partition as the
// total score.

type factorBucket int

const (
	bucketLow factorBucket = iota
	bucketMedium
	bucketHigh
	bucketCritical
)

var factorDescriptions = map[Dimension][4]string{
	DimSleep: {
		"Healthy sleep pattern",
		"Sleep slightly affected",
		"Moderate sleep problems",
		"Severe sleep disruption",
	},
	DimActivity: {
		"Optimal activity level",
		"Regular physical activity",
		"Insufficient physical activity",
		"Largely sedentary",
	},
	DimMood: {
		"Positive mood",
		"Stable mood",
		"Mood under strain",
		"Severely affected mood",
	},
	DimConsistency: {
		"Very consistent routines",
		"Moderately consistent routines",
		"Irregular routines",
		"No established routines",
	},
	DimHistorical: {
		"History of low stress",
		"History of moderate stress",
		"History of high stress",
		"History of critical stress",
	},
}

func (c ModelConfig) FactorDescription(dim Dimension, score int) string {
	descs, ok := factorDescriptions[dim]
	if !ok {
		return "Factor under analysis"
	}
	return descs[c.bucketFor(score)]
}

func (c ModelConfig) bucketFor(score int) factorBucket {
	switch {
	case score <= c.Tiers.LowMax:
		return bucketLow
	case score <= c.Tiers.MediumMax:
		return bucketMedium
	case score <= c.Tiers.HighMax:
		return bucketHigh
	default:
		return bucketCritical
	}
}
