package backtest

import (
	"bytes"
	"testing"

	"github.com/rustyeddy/sessionmap/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func react(level string, reacted bool, move float64, outcome string) market.Reaction {
	return market.Reaction{LevelName: level, Reacted: reacted, Move: move, Outcome: outcome}
}

func TestCompute_Empty(t *testing.T) {
	t.Parallel()

	perf := Compute(nil, DefaultParams())

	assert.NotNil(t, perf.Trades)
	assert.Zero(t, perf.TotalTrades)
	assert.Zero(t, perf.NetPnL)
	assert.Zero(t, perf.WinRate)
	assert.Zero(t, perf.ProfitFactor)
	assert.Zero(t, perf.MaxDrawdown)
	assert.Zero(t, perf.RewardRiskRatio)
	assert.Empty(t, perf.EquityCurve())
}

func TestCompute(t *testing.T) {
	t.Parallel()

	days := []market.DailyData{
		{Date: "2025-11-11", Reactions: []market.Reaction{
			react("London Low", false, 0, ""),
			react("New York High", true, 50, "SHORT"),
		}},
		{Date: "2025-11-10", Reactions: []market.Reaction{
			react("Asia Low", true, 250, "LONG"),
		}},
	}

	perf := Compute(days, DefaultParams())

	require.Len(t, perf.Trades, 3)
	assert.Equal(t, "2025-11-10", perf.Trades[0].Date)
	assert.Equal(t, "LONG", perf.Trades[0].Direction)
	assert.Equal(t, 500.0, perf.Trades[0].PnL)
	assert.Equal(t, DirectionStopped, perf.Trades[1].Direction)
	assert.Equal(t, -150.0, perf.Trades[1].PnL)
	assert.Equal(t, "London Low", perf.Trades[1].Level)
	assert.Equal(t, []float64{500, 350, 450}, perf.EquityCurve())

	assert.Equal(t, 3, perf.TotalTrades)
	assert.Equal(t, 2, perf.Wins)
	assert.Equal(t, 1, perf.Losses)
	assert.Equal(t, 450.0, perf.NetPnL)
	assert.InDelta(t, 66.666, perf.WinRate, 0.01)
	assert.Equal(t, 600.0, perf.GrossProfit)
	assert.Equal(t, 150.0, perf.GrossLoss)
	assert.Equal(t, 4.0, perf.ProfitFactor)
	assert.Equal(t, 150.0, perf.MaxDrawdown)
	assert.Equal(t, 300.0, perf.AvgWin)
	assert.Equal(t, 150.0, perf.AvgLoss)
	assert.Equal(t, 2.0, perf.RewardRiskRatio)
}

func TestCompute_ReactedWithNegativeMoveIsLoss(t *testing.T) {
	t.Parallel()

	perf := Compute([]market.DailyData{{Date: "2025-01-02", Reactions: []market.Reaction{
		react("Asia High", true, -20, "SHORT"),
		react("Asia Low", true, 0, "LONG"),
	}}}, DefaultParams())

	assert.Equal(t, 0, perf.Wins)
	assert.Equal(t, 2, perf.Losses)
	assert.Equal(t, -40.0, perf.NetPnL)
	assert.Zero(t, perf.ProfitFactor)
	assert.Zero(t, perf.RewardRiskRatio)
	assert.Equal(t, 40.0, perf.MaxDrawdown)
}

func TestCompute_DrawdownFromZeroPeak(t *testing.T) {
	t.Parallel()

	perf := Compute([]market.DailyData{{Date: "2025-01-02", Reactions: []market.Reaction{
		react("Asia High", false, 0, ""),
		react("Asia Low", false, 0, ""),
	}}}, DefaultParams())

	assert.Equal(t, 300.0, perf.MaxDrawdown)
	assert.Zero(t, perf.ProfitFactor)
	assert.Zero(t, perf.AvgWin)
}

func TestCompute_NonDecreasingCurveHasNoDrawdown(t *testing.T) {
	t.Parallel()

	perf := Compute([]market.DailyData{
		{Date: "2025-01-02", Reactions: []market.Reaction{react("Asia Low", true, 10, "LONG")}},
		{Date: "2025-01-03", Reactions: []market.Reaction{react("Asia Low", true, 0.5, "LONG"), react("London High", true, 30, "SHORT")}},
	}, DefaultParams())

	assert.Zero(t, perf.MaxDrawdown)
	assert.Zero(t, perf.ProfitFactor)
	assert.Zero(t, perf.RewardRiskRatio)
}

func TestCompute_Invariants(t *testing.T) {
	t.Parallel()

	var days []market.DailyData
	for i := 0; i < 30; i++ {
		days = append(days, market.DailyData{
			Date: []string{"2025-02-03", "bad", "2025-01-15", ""}[i%4],
			Reactions: []market.Reaction{
				react("Asia Low", i%3 != 0, float64(i*7%40-10), ""),
				react("London High", i%2 == 0, float64(i), "LONG"),
			},
		})
	}

	perf := Compute(days, Params{PointValue: 5, StopLossAmount: -100})

	curve := perf.EquityCurve()
	require.NotEmpty(t, curve)
	assert.InDelta(t, perf.NetPnL, curve[len(curve)-1], 1e-9)
	assert.GreaterOrEqual(t, perf.MaxDrawdown, 0.0)
	assert.Equal(t, perf.TotalTrades, perf.Wins+perf.Losses)
	assert.InDelta(t, perf.NetPnL, perf.GrossProfit-perf.GrossLoss, 1e-6)
}

func TestSortByDate(t *testing.T) {
	t.Parallel()

	in := []market.DailyData{
		{Date: "someday", DayOfWeek: "a"},
		{Date: "2025-11-12"},
		{Date: "", DayOfWeek: "b"},
		{Date: "2025-11-10"},
		{Date: "2025-11-10", DayOfWeek: "dup"},
	}

	out := SortByDate(in)

	got := make([]string, len(out))
	for i, d := range out {
		got[i] = d.Date + d.DayOfWeek
	}
	assert.Equal(t, []string{"2025-11-10", "2025-11-10dup", "2025-11-12", "somedaya", "b"}, got)
	assert.Equal(t, "someday", in[0].Date, "input untouched")
}

func TestSortByDate_Timestamps(t *testing.T) {
	t.Parallel()

	out := SortByDate([]market.DailyData{
		{Date: "2025-11-12"},
		{Date: "2025-11-11T14:30:00-05:00"},
		{Date: "Nov 10"},
		{Date: "2025-11-10"},
	})

	got := make([]string, len(out))
	for i, d := range out {
		got[i] = d.Date
	}
	assert.Equal(t, []string{"2025-11-10", "2025-11-11T14:30:00-05:00", "2025-11-12", "Nov 10"}, got)
}

func TestRunAndPrintReport(t *testing.T) {
	t.Parallel()

	days := []market.DailyData{
		{Date: "bad"},
		{Date: "2025-11-12", Reactions: []market.Reaction{react("Asia Low", true, 100, "LONG")}},
		{Date: "2025-11-10", Reactions: []market.Reaction{react("Asia Low", false, 0, "")}},
	}

	r := Run("week46.json", "MNQ", days, DefaultParams())
	assert.Len(t, r.RunID, 26)
	assert.Equal(t, "2025-11-10", r.Start)
	assert.Equal(t, "2025-11-12", r.End)
	assert.Equal(t, 50.0, r.Performance.NetPnL)

	r.Notes = []string{"thin sample"}
	var buf bytes.Buffer
	PrintReport(&buf, r)

	out := buf.String()
	assert.Contains(t, out, "Run ID:        "+r.RunID)
	assert.Contains(t, out, "Instrument:    MNQ")
	assert.Contains(t, out, "Start:         2025-11-10")
	assert.Contains(t, out, "Trades:        2")
	assert.Contains(t, out, "Net P/L:       50.00")
	assert.Contains(t, out, "Profit Factor: 1.33")
	assert.Contains(t, out, "Max Drawdown:  150.00")
	assert.Contains(t, out, "- thin sample")
}
