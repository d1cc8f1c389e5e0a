package analysis

import "github.com/SunXiangyuNico/OSS-Guardian/pkg/models"

// Weighted score contributions per severity bucket.
const (
	weightCritical = 30
	weightHigh     = 15
	weightMedium   = 5
	weightLow      = 1
)

// Risk level boundaries on the 0-100 score.
const (
	criticalBoundary = 80
	highBoundary     = 50
	mediumBoundary   = 20
)

// AssessRisk turns a severity breakdown into a capped score and level.
func AssessRisk(breakdown models.SeverityBreakdown, threatCount int) models.RiskAssessment {
	score := breakdown.Critical*weightCritical +
		breakdown.High*weightHigh +
		breakdown.Medium*weightMedium +
		breakdown.Low*weightLow
	if score > 100 {
		score = 100
	}

	return models.RiskAssessment{
		Score:       score,
		Level:       riskLevel(score),
		Breakdown:   breakdown,
		ThreatCount: threatCount,
	}
}

func riskLevel(score int) models.Severity {
	switch {
	case score >= criticalBoundary:
		return models.SeverityCritical
	case score >= highBoundary:
		return models.SeverityHigh
	case score >= mediumBoundary:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}
