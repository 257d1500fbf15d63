package risk

import "fmt"

const (
	CodeRiskOverBudget = "RISK_OVER_BUDGET"
	CodeRRTooLow       = "RR_TOO_LOW"
)

type Violation struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

type Decision struct {
	Allowed    bool        `json:"allowed"`
	Violations []Violation `json:"violations,omitempty"`

	PlannedRisk    float64 `json:"plannedRisk"`
	PlannedRiskPct float64 `json:"plannedRiskPct"`
	PlannedRR      float64 `json:"plannedRr"`
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Evaluate reports whether a sized setup stays inside the policy. Sizing
// never refuses a trade; this is where the one contract floor shows up.
func Evaluate(p Policy, s Sizing) Decision {
	d := Decision{Allowed: true}

	d.PlannedRisk = s.RiskAmount
	d.PlannedRiskPct = RiskPct(s.RiskAmount, p.AccountSize)
	d.PlannedRR = RR(s.Entry, s.StopLoss, s.TakeProfit)

	if budget := p.MaxRisk(); s.RiskAmount > budget {
		d.add(CodeRiskOverBudget,
			fmt.Sprintf("risk %.2f (%d contracts) exceeds budget %.2f (%.2f%%)",
				s.RiskAmount, s.PositionSize, budget, p.RiskPercent))
	}
	if p.MinRR > 0 && d.PlannedRR < p.MinRR {
		d.add(CodeRRTooLow,
			fmt.Sprintf("RR %.2f below minimum %.2f", d.PlannedRR, p.MinRR))
	}
	return d
}
