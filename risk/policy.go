package risk

import "github.com/rustyeddy/sessionmap/market"

// Policy is the account-level sizing policy. Every predicted setup is sized
// against the same Policy.
type Policy struct {
	AccountSize float64 // e.g. 50000
	RiskPercent float64 // percent of AccountSize per trade, e.g. 2

	// Stop ceiling; MaxStopCurrency == MaxStopPoints * PointValue
	MaxStopCurrency float64 // 150
	MaxStopPoints   float64 // 75

	PointValue float64 // currency per point per contract, 2 for MNQ

	// Trade constraints, 0 disables
	MinRR float64
}

// DefaultPolicy sizes MNQ on a 50k account at 2% with a 75 point ceiling.
func DefaultPolicy() Policy {
	return Policy{
		AccountSize:     50000,
		RiskPercent:     2,
		MaxStopCurrency: 150,
		MaxStopPoints:   75,
		PointValue:      2,
	}
}

// MaxRisk is the currency budget for a single trade.
func (p Policy) MaxRisk() float64 {
	return p.AccountSize * p.RiskPercent / 100
}

// Setup is a trade idea before sizing.
type Setup struct {
	Entry         float64
	TechnicalStop float64
	TakeProfit    float64
	Direction     market.Direction
}
