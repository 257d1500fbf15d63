package market

import (
	"strings"
)

// StrategyTag names one of the trading methodologies a setup can agree with.
type StrategyTag string

const (
	ICT           StrategyTag = "ICT"
	SMC           StrategyTag = "SMC"
	SessionBased  StrategyTag = "SESSION"
	SupplyDemand  StrategyTag = "SUPPLY_DEMAND"
	MarketProfile StrategyTag = "MARKET_PROFILE"
)

// StrategyTags is the closed set of tags in leaderboard order.
var StrategyTags = []StrategyTag{ICT, SMC, SessionBased, SupplyDemand, MarketProfile}

var strategyDisplay = map[StrategyTag]string{
	ICT:           "ICT (Order Blocks & FVG)",
	SMC:           "Smart Money Concepts",
	SessionBased:  "Session-Based Trading",
	SupplyDemand:  "Supply & Demand Zones",
	MarketProfile: "Market Profile / Volume",
}

func (s StrategyTag) DisplayName() string {
	if d, ok := strategyDisplay[s]; ok {
		return d
	}
	return string(s)
}

// ParseStrategyTag accepts "supply demand", "Supply-Demand", "SUPPLY_DEMAND".
func ParseStrategyTag(s string) (StrategyTag, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.Join(strings.FieldsFunc(norm, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '&'
	}), "_")
	for _, t := range StrategyTags {
		if string(t) == norm {
			return t, true
		}
	}
	return "", false
}

// ParseStrategyTags keeps the recognised tags in order, dropping duplicates
// and anything outside the closed set.
func ParseStrategyTags(in []string) []StrategyTag {
	out := make([]StrategyTag, 0, len(in))
	seen := map[StrategyTag]bool{}
	for _, s := range in {
		t, ok := ParseStrategyTag(s)
		if !ok || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
