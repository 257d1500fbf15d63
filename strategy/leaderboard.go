// Package strategy ranks the trading methodologies against the recorded
// history and picks the highest-confluence predicted setups.
package strategy

import (
	"math"
	"sort"

	"github.com/rustyeddy/sessionmap/backtest"
	"github.com/rustyeddy/sessionmap/market"
	"github.com/rustyeddy/sessionmap/stats"
)

// StrategyPerformance is one leaderboard row.
type StrategyPerformance struct {
	Strategy      market.StrategyTag `json:"strategy"`
	DisplayName   string             `json:"displayName"`
	TotalTrades   int                `json:"totalTrades"`
	WinningTrades int                `json:"winningTrades"`
	LosingTrades  int                `json:"losingTrades"`
	WinRate       float64            `json:"winRate"` // percent
	NetPnL        float64            `json:"netPnl"`
	AvgWin        float64            `json:"avgWin"`
	AvgLoss       float64            `json:"avgLoss"`
	ProfitFactor  float64            `json:"profitFactor"`
	BestDay       string             `json:"bestDay"`
	BestSession   string             `json:"bestSession"`
}

// Leaderboard scores every strategy tag against days, best NetPnL first.
//
// The recorded reactions only carry session level information, so every
// reaction is credited to SESSION and the other tags stay at zero. A reaction
// counts as a win only when it held and recorded an outcome. Gross profit and
// loss are estimated from the mean trade, so ProfitFactor carries the sign of
// NetPnL.
func Leaderboard(days []market.DailyData, p backtest.Params) []StrategyPerformance {
	rows := make([]StrategyPerformance, len(market.StrategyTags))
	for i, tag := range market.StrategyTags {
		rows[i] = StrategyPerformance{
			Strategy:    tag,
			DisplayName: tag.DisplayName(),
			BestDay:     stats.NotAvailable,
			BestSession: stats.NotAvailable,
		}
	}

	session := &rows[indexOf(market.SessionBased)]
	for _, d := range days {
		for _, r := range d.Reactions {
			pnl := p.StopLossAmount
			if r.Reacted && r.Outcome != "" {
				pnl = r.Move * p.PointValue
			}
			session.TotalTrades++
			if pnl > 0 {
				session.WinningTrades++
			} else {
				session.LosingTrades++
			}
			session.NetPnL += pnl
		}
	}
	if len(days) > 0 {
		h := stats.AnalyzeHistoricalPatterns(days)
		session.BestDay = h.BestDay
		session.BestSession = h.BestSession
	}

	for i := range rows {
		finalize(&rows[i])
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].NetPnL > rows[j].NetPnL
	})
	return rows
}

func finalize(s *StrategyPerformance) {
	if s.TotalTrades == 0 {
		return
	}
	total := float64(s.TotalTrades)
	s.WinRate = float64(s.WinningTrades) / total * 100

	if s.WinningTrades > 0 {
		s.AvgWin = s.NetPnL / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AvgLoss = math.Abs(s.NetPnL) / float64(s.LosingTrades)
	}

	mean := s.NetPnL / total
	grossProfit := float64(s.WinningTrades) * mean
	grossLoss := math.Abs(float64(s.LosingTrades) * mean)
	if grossLoss > 0 {
		s.ProfitFactor = grossProfit / grossLoss
	}
}

func indexOf(tag market.StrategyTag) int {
	for i, t := range market.StrategyTags {
		if t == tag {
			return i
		}
	}
	return -1
}
