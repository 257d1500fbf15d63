package forecast

import (
	"testing"
	"time"

	"github.com/rustyeddy/sessionmap/backtest"
	"github.com/rustyeddy/sessionmap/market"
	"github.com/rustyeddy/sessionmap/pkg/id"
	"github.com/rustyeddy/sessionmap/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawSetup(name string, score, prob float64, dir string) market.RawSetup {
	return market.RawSetup{
		Date:              "2025-11-17",
		DayOfWeek:         "Monday",
		SetupName:         name,
		Strategies:        []string{"ICT", "session", "Supply Demand", "ELLIOTT"},
		ConfluenceScore:   score,
		EntryPrice:        20150,
		TechnicalStopLoss: 20050,
		TakeProfit:        20450,
		Direction:         dir,
		Probability:       prob,
	}
}

func history(n int) []market.DailyData {
	days := make([]market.DailyData, n)
	for i := range days {
		days[i] = market.DailyData{
			Date:      time.Date(2025, 11, 3+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			DayOfWeek: time.Date(2025, 11, 3+i, 0, 0, 0, 0, time.UTC).Weekday().String(),
			Reactions: []market.Reaction{{LevelName: "London Low", Reacted: true, Move: 40, Outcome: "LONG"}},
		}
	}
	return days
}

func TestCheckHistory(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, CheckHistory(history(4), DefaultMinHistory), ErrInsufficientHistory)
	assert.ErrorIs(t, CheckHistory(nil, DefaultMinHistory), ErrInsufficientHistory)
	assert.NoError(t, CheckHistory(history(5), DefaultMinHistory))
}

func TestBuild(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 11, 14, 18, 0, 0, 0, time.UTC)
	doc := market.ForecastDocument{
		WeeklyPredictions: []market.RawSetup{
			rawSetup("a", 5, 70, "LONG"),
			rawSetup("b", 4, 80, "short"),
			rawSetup("c", 3, 60, "LONG"),
			rawSetup("d", 2.6, 90, "LONG"),
			rawSetup("e", 2, 99, "LONG"),
			rawSetup("f", 1, 99, "LONG"),
			rawSetup("g", 5, 99, "FLAT"),
		},
		NextDayPrediction: &market.RawNextDay{
			Date:       "2025-11-17",
			DayOfWeek:  "Monday",
			MarketBias: "BULLISH",
			KeyLevels:  market.KeyLevels{Resistance: []float64{20500}, Support: []float64{20100}},
			TopSetups: []market.RawSetup{
				{SetupName: "n1", EntryPrice: 20200, TechnicalStopLoss: 20180, TakeProfit: 20260, Direction: "LONG", Date: "ignored"},
				{SetupName: "n2", EntryPrice: 20200, TechnicalStopLoss: 20200, TakeProfit: 20260, Direction: "LONG"},
			},
		},
	}

	res := Build(doc, history(5), risk.DefaultPolicy(), backtest.DefaultParams(), now)

	ts, err := id.Time(res.RunID)
	require.NoError(t, err)
	assert.True(t, now.Equal(ts))
	assert.Equal(t, now, res.GeneratedAt)
	assert.Equal(t, 50000.0, res.AccountSize)
	assert.Equal(t, 2.0, res.RiskPercentage)
	assert.Equal(t, 150.0, res.MaxStopLoss)

	require.Len(t, res.WeeklyPredictions, 6)
	a := res.WeeklyPredictions[0]
	assert.Equal(t, []market.StrategyTag{market.ICT, market.SessionBased, market.SupplyDemand}, a.Strategies)
	assert.Equal(t, market.Long, a.Direction)
	assert.Equal(t, 20075.0, a.StopLoss)
	assert.Equal(t, 75.0, a.StopLossPoints)
	assert.Equal(t, 6, a.PositionSize)
	assert.Equal(t, 900.0, a.RiskAmount)
	assert.Equal(t, 4.0, a.RiskRewardRatio)
	assert.Equal(t, 3600.0, a.PotentialProfit)

	b := res.WeeklyPredictions[1]
	assert.Equal(t, market.Short, b.Direction)
	assert.Equal(t, 20225.0, b.StopLoss)
	assert.Equal(t, 2.6, res.WeeklyPredictions[3].ConfluenceScore)

	var top []string
	for _, s := range res.TopConfluenceSetups {
		top = append(top, s.SetupName)
	}
	assert.Equal(t, []string{"a", "b", "c"}, top)

	require.NotNil(t, res.NextDayPrediction)
	nd := res.NextDayPrediction
	assert.Equal(t, "BULLISH", nd.MarketBias)
	assert.Equal(t, []float64{20500}, nd.KeyLevels.Resistance)
	require.Len(t, nd.TopSetups, 1)
	assert.Equal(t, "2025-11-17", nd.TopSetups[0].Date)
	assert.Equal(t, "Monday", nd.TopSetups[0].DayOfWeek)
	assert.Equal(t, 20.0, nd.TopSetups[0].StopLossPoints)
	assert.Equal(t, 25, nd.TopSetups[0].PositionSize)

	require.Len(t, res.Rejected, 2)
	assert.Equal(t, "g", res.Rejected[0].Setup.SetupName)
	assert.Contains(t, res.Rejected[0].Reason, "FLAT")
	assert.Equal(t, "n2", res.Rejected[1].Setup.SetupName)
	assert.Contains(t, res.Rejected[1].Reason, "stop distance")

	assert.Equal(t, market.SessionBased, res.StrategyLeaderboard[0].Strategy)
	assert.Equal(t, 5, res.StrategyLeaderboard[0].TotalTrades)
}

func TestBuild_NoNextDay(t *testing.T) {
	t.Parallel()

	res := Build(market.ForecastDocument{WeeklyPredictions: []market.RawSetup{}}, nil,
		risk.DefaultPolicy(), backtest.DefaultParams(), time.Now())

	assert.Nil(t, res.NextDayPrediction)
	assert.NotNil(t, res.WeeklyPredictions)
	assert.Empty(t, res.TopConfluenceSetups)
	assert.Empty(t, res.Rejected)
	assert.Len(t, res.StrategyLeaderboard, len(market.StrategyTags))
}

func TestBuilder_CustomSelection(t *testing.T) {
	t.Parallel()

	b := Builder{Policy: risk.DefaultPolicy(), Backtest: backtest.DefaultParams(), MinConfluence: 4, TopSetups: 1}
	res := b.Build(market.ForecastDocument{WeeklyPredictions: []market.RawSetup{
		rawSetup("a", 4, 50, "LONG"),
		rawSetup("b", 5, 10, "LONG"),
		rawSetup("c", 3, 99, "LONG"),
	}}, nil, time.Now())

	require.Len(t, res.TopConfluenceSetups, 1)
	assert.Equal(t, "b", res.TopConfluenceSetups[0].SetupName)
}

func TestBuild_FractionalConfluenceBelowMinimum(t *testing.T) {
	t.Parallel()

	res := Build(market.ForecastDocument{WeeklyPredictions: []market.RawSetup{
		rawSetup("half", 2.5, 90, "LONG"),
	}}, nil, risk.DefaultPolicy(), backtest.DefaultParams(), time.Now())

	require.Len(t, res.WeeklyPredictions, 1)
	assert.Equal(t, 2.5, res.WeeklyPredictions[0].ConfluenceScore)
	assert.Empty(t, res.TopConfluenceSetups)
	for _, s := range res.TopConfluenceSetups {
		assert.GreaterOrEqual(t, s.ConfluenceScore, 3.0)
	}
}
