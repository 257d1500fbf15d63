package journal

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rustyeddy/sessionmap/forecast"
	"github.com/rustyeddy/sessionmap/market"
)

// WriteForecastText writes a plain text forecast report.
func WriteForecastText(w io.Writer, r forecast.Result) error {
	ew := &errWriter{w: w}

	ew.printf("SESSIONMAP STRATEGY FORECAST\n")
	ew.printf("Run ID:     %s\n", r.RunID)
	ew.printf("Generated:  %s\n", r.GeneratedAt.Format(time.RFC3339))
	ew.printf("Account:    %.2f, risking %.2f%% per trade, max stop %.2f\n",
		r.AccountSize, r.RiskPercentage, r.MaxStopLoss)

	ew.printf("\nSTRATEGY LEADERBOARD:\n")
	for i, s := range r.StrategyLeaderboard {
		ew.printf("%d. %-26s trades %3d  win %5.1f%%  net %9.2f  pf %5.2f  best %s / %s\n",
			i+1, s.DisplayName, s.TotalTrades, s.WinRate, s.NetPnL, s.ProfitFactor, s.BestDay, s.BestSession)
	}

	ew.printf("\nTOP CONFLUENCE SETUPS:\n")
	if len(r.TopConfluenceSetups) == 0 {
		ew.printf("  none\n")
	}
	for i, s := range r.TopConfluenceSetups {
		ew.printf("%d. %s\n", i+1, setupLine(s))
	}

	ew.printf("\nWEEKLY PREDICTIONS:\n")
	for _, s := range r.WeeklyPredictions {
		ew.printf("\n%s (%s): %s\n", s.DayOfWeek, s.Date, setupLine(s))
		ew.printf("  Reasoning: %s\n", s.Reasoning)
	}

	if nd := r.NextDayPrediction; nd != nil {
		ew.printf("\nNEXT DAY: %s (%s), bias %s\n", nd.DayOfWeek, nd.Date, nd.MarketBias)
		ew.printf("  Resistance: %s\n", joinFloats(nd.KeyLevels.Resistance))
		ew.printf("  Support:    %s\n", joinFloats(nd.KeyLevels.Support))
		ew.printf("  %s\n", nd.Recommendation)
		for _, s := range nd.TopSetups {
			ew.printf("  - %s\n", setupLine(s))
		}
	}

	if len(r.Rejected) > 0 {
		ew.printf("\nREJECTED:\n")
		for _, rj := range r.Rejected {
			ew.printf("  - %s: %s\n", rj.Setup.SetupName, rj.Reason)
		}
	}
	return ew.err
}

// WriteWeeklyForecastText writes the pattern-based weekly outlook.
func WriteWeeklyForecastText(w io.Writer, wf market.WeeklyForecast) error {
	ew := &errWriter{w: w}

	ew.printf("SESSIONMAP WEEKLY FORECAST\n")
	ew.printf("Generated:        %s\n", wf.GeneratedAt.Format(time.RFC3339))
	ew.printf("Historical days:  %d\n", wf.HistoricalDays)

	ew.printf("\nTOP TRADES FOR THE WEEK:\n")
	if len(wf.TopTrades) == 0 {
		ew.printf("  none\n")
	}
	for i, t := range wf.TopTrades {
		ew.printf("%d. %s: %s (%s%% probability, %s pts)\n", i+1, t.Day, t.Setup, f(t.Probability), f(t.ExpectedMove))
	}

	ew.printf("\nDAILY PREDICTIONS:\n")
	for _, d := range wf.DailyPredictions {
		ew.printf("\n%s (%s):\n", d.Day, d.Date)
		for _, s := range d.TopSetups {
			ew.printf("  %s %s: %s%% (%s, %s pts)\n", s.Session, s.Level, f(s.Probability), s.Direction, f(s.ExpectedMove))
			ew.printf("  Reasoning: %s\n", s.Reasoning)
		}
	}

	ew.printf("\nWEEKLY RECOMMENDATION:\n%s\n", wf.WeeklyRecommendation)
	return ew.err
}

func setupLine(s forecast.PredictedTradeSetup) string {
	return fmt.Sprintf("%s %s @ %.2f stop %.2f (%.2f pts) target %.2f, %dx, risk %.2f, reward %.2f, RR %.2f, %g/5 confluence, %.0f%%",
		s.SetupName, s.Direction, s.EntryPrice, s.StopLoss, s.StopLossPoints, s.TakeProfit,
		s.PositionSize, s.RiskAmount, s.PotentialProfit, s.RiskRewardRatio, s.ConfluenceScore, s.Probability)
}

func joinFloats(xs []float64) string {
	if len(xs) == 0 {
		return "-"
	}
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = f(x)
	}
	return strings.Join(parts, ", ")
}

// errWriter keeps the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
