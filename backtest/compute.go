// Package backtest replays recorded level reactions as synthetic trades and
// reports the resulting performance.
package backtest

import (
	"sort"
	"time"

	"github.com/rustyeddy/sessionmap/market"
)

const dateLayout = "2006-01-02"

// DirectionStopped labels a trade synthesized from a reaction that did not
// hold, or one that carried no outcome.
const DirectionStopped = "SL"

// Params fixes the trade synthesis rule.
type Params struct {
	PointValue     float64 `json:"pointValue"`     // currency per point
	StopLossAmount float64 `json:"stopLossAmount"` // P/L of a failed reaction, negative
}

// DefaultParams is 2 per point and a fixed -150 stop.
func DefaultParams() Params {
	return Params{PointValue: 2, StopLossAmount: -150}
}

// Trade is one reaction replayed as a trade.
type Trade struct {
	Date          string  `json:"date"`
	Level         string  `json:"level"`
	Direction     string  `json:"direction"`
	PnL           float64 `json:"pnl"`
	CumulativePnL float64 `json:"cumulativePnl"`
}

// Performance summarises a replay.
type Performance struct {
	Trades          []Trade `json:"trades"`
	TotalTrades     int     `json:"totalTrades"`
	Wins            int     `json:"wins"`
	Losses          int     `json:"losses"`
	NetPnL          float64 `json:"netPnl"`
	GrossProfit     float64 `json:"grossProfit"`
	GrossLoss       float64 `json:"grossLoss"`
	WinRate         float64 `json:"winRate"` // percent
	ProfitFactor    float64 `json:"profitFactor"`
	MaxDrawdown     float64 `json:"maxDrawdown"`
	AvgWin          float64 `json:"avgWin"`
	AvgLoss         float64 `json:"avgLoss"`
	RewardRiskRatio float64 `json:"rewardRiskRatio"`
}

// EquityCurve returns the cumulative P/L after each trade.
func (p Performance) EquityCurve() []float64 {
	out := make([]float64, len(p.Trades))
	for i, t := range p.Trades {
		out[i] = t.CumulativePnL
	}
	return out
}

// Compute replays every reaction of every day in date order. A reaction that
// held earns Move*PointValue; any other reaction loses StopLossAmount.
func Compute(days []market.DailyData, p Params) Performance {
	perf := Performance{Trades: []Trade{}}

	var cum, peak float64
	for _, d := range SortByDate(days) {
		for _, r := range d.Reactions {
			pnl := p.StopLossAmount
			if r.Reacted {
				pnl = r.Move * p.PointValue
			}
			dir := r.Outcome
			if dir == "" {
				dir = DirectionStopped
			}
			cum += pnl
			perf.Trades = append(perf.Trades, Trade{
				Date:          d.Date,
				Level:         r.LevelName,
				Direction:     dir,
				PnL:           pnl,
				CumulativePnL: cum,
			})

			if pnl > 0 {
				perf.Wins++
				perf.GrossProfit += pnl
			} else {
				perf.Losses++
				perf.GrossLoss += -pnl
			}

			if cum > peak {
				peak = cum
			}
			if dd := peak - cum; dd > perf.MaxDrawdown {
				perf.MaxDrawdown = dd
			}
		}
	}

	perf.TotalTrades = len(perf.Trades)
	perf.NetPnL = cum
	if perf.TotalTrades == 0 {
		return perf
	}

	perf.WinRate = float64(perf.Wins) / float64(perf.TotalTrades) * 100
	if perf.GrossLoss > 0 {
		perf.ProfitFactor = perf.GrossProfit / perf.GrossLoss
	}
	if perf.Wins > 0 {
		perf.AvgWin = perf.GrossProfit / float64(perf.Wins)
	}
	if perf.Losses > 0 {
		perf.AvgLoss = perf.GrossLoss / float64(perf.Losses)
	}
	if perf.Wins > 0 && perf.Losses > 0 && perf.AvgLoss > 0 {
		perf.RewardRiskRatio = perf.AvgWin / perf.AvgLoss
	}
	return perf
}

// parseDate accepts an ISO date or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, bool) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// SortByDate returns a copy of days in ascending date order. Days whose date
// does not parse keep their relative order after every dated day.
func SortByDate(days []market.DailyData) []market.DailyData {
	type keyed struct {
		day market.DailyData
		at  time.Time
		ok  bool
	}
	ks := make([]keyed, len(days))
	for i, d := range days {
		at, ok := parseDate(d.Date)
		ks[i] = keyed{day: d, at: at, ok: ok}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		if a.ok != b.ok {
			return a.ok
		}
		return a.ok && a.at.Before(b.at)
	})

	out := make([]market.DailyData, len(ks))
	for i, k := range ks {
		out[i] = k.day
	}
	return out
}
