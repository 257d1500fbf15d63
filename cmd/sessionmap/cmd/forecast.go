package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rustyeddy/sessionmap/forecast"
	"github.com/rustyeddy/sessionmap/journal"
	"github.com/rustyeddy/sessionmap/logger"
	"github.com/rustyeddy/sessionmap/market"
	"github.com/rustyeddy/sessionmap/model"
	"github.com/rustyeddy/sessionmap/stats"
	"github.com/spf13/cobra"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Rank strategies and size the forecast setups",
	Long: `Forecast scores every strategy against the recorded history, sizes each
predicted setup with the configured risk policy and picks the top confluence
setups.

The forecast document comes from a file (--forecast) or from the model (--live).
With --weekly the document is the pattern-based weekly outlook instead: which
session levels should react on each day of the coming week. It is reported
as is, without sizing.

Example:
  sessionmap forecast -i week45.json -i week46.json --forecast week47.json
  sessionmap forecast -i week46.json --live --out forecast.txt
  sessionmap forecast -i week46.json --live --weekly`,
	RunE: runForecast,
}

var (
	fcInputs   []string
	fcCharts   []string
	fcWeek     string
	fcEvents   []string
	fcDocument string
	fcLive     bool
	fcWeekly   bool
	fcOut      string
	fcOrg      string
	fcJSON     bool
)

func init() {
	rootCmd.AddCommand(forecastCmd)

	forecastCmd.Flags().StringArrayVarP(&fcInputs, "input", "i", nil, "analysis JSON document (repeatable)")
	forecastCmd.Flags().StringArrayVar(&fcCharts, "chart", nil, "chart image to analyze with the model (repeatable)")
	forecastCmd.Flags().StringVar(&fcWeek, "week", "", "week label attached to every analysis")
	forecastCmd.Flags().StringArrayVar(&fcEvents, "event", nil, "market event DATE=TYPE:REASON[:VOLATILITY] (repeatable)")
	forecastCmd.Flags().StringVar(&fcDocument, "forecast", "", "forecast JSON document")
	forecastCmd.Flags().BoolVar(&fcLive, "live", false, "ask the model for the forecast")
	forecastCmd.Flags().BoolVar(&fcWeekly, "weekly", false, "produce the pattern-based weekly outlook")
	forecastCmd.Flags().StringVar(&fcOut, "out", "", "also write the text report to this file")
	forecastCmd.Flags().StringVar(&fcOrg, "org", "", "write the top confluence setups as Org-mode entries")
	forecastCmd.Flags().BoolVar(&fcJSON, "json", false, "print the result as JSON")
	forecastCmd.MarkFlagsMutuallyExclusive("forecast", "live")
	forecastCmd.MarkFlagsOneRequired("forecast", "live")
	forecastCmd.MarkFlagsMutuallyExclusive("weekly", "org")
}

func runForecast(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	meta, err := parseHostMeta(fcWeek, fcEvents)
	if err != nil {
		return err
	}
	analyses, err := readAnalyses(ctx, fcInputs, fcCharts, meta)
	if err != nil {
		return err
	}
	_, h, err := record(ctx, analyses)
	if err != nil {
		return err
	}
	defer h.Close()

	days, err := h.Days(ctx)
	if err != nil {
		return err
	}
	if err := forecast.CheckHistory(days, cfg.History.MinForecastDays); err != nil {
		return err
	}
	patterns := stats.AnalyzeHistoricalPatterns(days)
	logger.Info().
		Int("days", patterns.TotalDays).
		Str("best_day", patterns.BestDay).
		Str("best_session", patterns.BestSession).
		Msg("history analyzed")

	now := time.Now()
	req := model.ForecastRequest{Patterns: patterns, Recent: days, Now: now}
	if fcWeekly {
		return runWeekly(cmd, req)
	}

	var doc market.ForecastDocument
	if fcLive {
		an, err := newAnalyzer()
		if err != nil {
			return err
		}
		doc, err = an.Forecast(ctx, req)
		if err != nil {
			return err
		}
	} else {
		b, err := os.ReadFile(fcDocument)
		if err != nil {
			return fmt.Errorf("read forecast: %w", err)
		}
		doc, err = market.DecodeForecast(b)
		if err != nil {
			return fmt.Errorf("%s: %w", fcDocument, err)
		}
	}

	res := cfg.ForecastBuilder().Build(doc, days, now)
	for _, rj := range res.Rejected {
		logger.Warn().Str("setup", rj.Setup.SetupName).Str("reason", rj.Reason).Msg("setup rejected")
	}
	logger.Info().
		Str("run_id", res.RunID).
		Int("setups", len(res.WeeklyPredictions)).
		Int("top", len(res.TopConfluenceSetups)).
		Msg("forecast built")

	if fcOut != "" {
		if err := writeFile(fcOut, func(w io.Writer) error { return journal.WriteForecastText(w, res) }); err != nil {
			return fmt.Errorf("forecast report: %w", err)
		}
	}
	if fcOrg != "" {
		if err := writeFile(fcOrg, func(w io.Writer) error {
			_, err := io.WriteString(w, journal.FormatSetupsOrg(res.TopConfluenceSetups))
			return err
		}); err != nil {
			return fmt.Errorf("org: %w", err)
		}
	}

	if fcJSON {
		return printJSON(cmd.OutOrStdout(), res)
	}
	return journal.WriteForecastText(cmd.OutOrStdout(), res)
}

func runWeekly(cmd *cobra.Command, req model.ForecastRequest) error {
	var wf market.WeeklyForecast
	if fcLive {
		an, err := newAnalyzer()
		if err != nil {
			return err
		}
		if wf, err = an.WeeklyForecast(cmd.Context(), req); err != nil {
			return err
		}
	} else {
		b, err := os.ReadFile(fcDocument)
		if err != nil {
			return fmt.Errorf("read forecast: %w", err)
		}
		if wf, err = market.DecodeWeeklyForecast(b); err != nil {
			return fmt.Errorf("%s: %w", fcDocument, err)
		}
		wf.GeneratedAt = req.Now
		wf.HistoricalDays = req.Patterns.TotalDays
	}
	logger.Info().
		Int("days", len(wf.DailyPredictions)).
		Int("top_trades", len(wf.TopTrades)).
		Msg("weekly forecast built")

	if fcOut != "" {
		if err := writeFile(fcOut, func(w io.Writer) error { return journal.WriteWeeklyForecastText(w, wf) }); err != nil {
			return fmt.Errorf("weekly report: %w", err)
		}
	}
	if fcJSON {
		return printJSON(cmd.OutOrStdout(), wf)
	}
	return journal.WriteWeeklyForecastText(cmd.OutOrStdout(), wf)
}
