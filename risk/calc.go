package risk

import "math"

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// PlannedRisk is the currency lost by size contracts if a stop of
// stopPoints is hit.
func PlannedRisk(size int, stopPoints, pointValue float64) float64 {
	return float64(size) * stopPoints * pointValue
}

func RR(entry, stop, takeProfit float64) float64 {
	risk := abs(entry - stop)
	reward := abs(takeProfit - entry)
	if risk == 0 {
		return 0
	}
	return reward / risk
}

// RiskPct is risk as a percentage of the account.
func RiskPct(risk, accountSize float64) float64 {
	if accountSize <= 0 {
		return math.Inf(1)
	}
	return risk / accountSize * 100
}
