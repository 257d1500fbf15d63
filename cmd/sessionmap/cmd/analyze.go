package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/rustyeddy/sessionmap/backtest"
	"github.com/rustyeddy/sessionmap/journal"
	"github.com/rustyeddy/sessionmap/logger"
	"github.com/rustyeddy/sessionmap/market"
	"github.com/rustyeddy/sessionmap/stats"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Aggregate session level reactions and backtest them",
	Long: `Analyze decodes chart analyses, folds them into per-level statistics and
replays every reaction as a trade.

Example:
  sessionmap analyze -i week45.json -i week46.json --trades-csv trades.csv
  sessionmap analyze --chart monday.png --org backtest.org`,
	RunE: runAnalyze,
}

var (
	anInputs    []string
	anCharts    []string
	anWeek      string
	anEvents    []string
	anStatsCSV  string
	anReportCSV string
	anTradesCSV string
	anOrg       string
	anJSON      bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringArrayVarP(&anInputs, "input", "i", nil, "analysis JSON document (repeatable)")
	analyzeCmd.Flags().StringArrayVar(&anCharts, "chart", nil, "chart image to analyze with the model (repeatable)")
	analyzeCmd.Flags().StringVar(&anWeek, "week", "", "week label attached to every analysis")
	analyzeCmd.Flags().StringArrayVar(&anEvents, "event", nil, "market event DATE=TYPE:REASON[:VOLATILITY] (repeatable)")
	analyzeCmd.Flags().StringVar(&anStatsCSV, "stats-csv", "", "write session statistics CSV")
	analyzeCmd.Flags().StringVar(&anReportCSV, "report-csv", "", "write per-day level report CSV")
	analyzeCmd.Flags().StringVar(&anTradesCSV, "trades-csv", "", "write backtest trades CSV")
	analyzeCmd.Flags().StringVar(&anOrg, "org", "", "write backtest Org-mode entry")
	analyzeCmd.Flags().BoolVar(&anJSON, "json", false, "print results as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if len(anInputs) == 0 && len(anCharts) == 0 {
		return fmt.Errorf("need at least one --input or --chart")
	}
	ctx := cmd.Context()

	meta, err := parseHostMeta(anWeek, anEvents)
	if err != nil {
		return err
	}
	analyses, err := readAnalyses(ctx, anInputs, anCharts, meta)
	if err != nil {
		return err
	}
	res, h, err := record(ctx, analyses)
	if err != nil {
		return err
	}
	defer h.Close()

	// The backtest covers every aggregated day; only the stored history is capped.
	report := backtest.Run(datasetName(anInputs, anCharts), cfg.Instrument.Symbol, res.DailyData, cfg.BacktestParams())
	report.OrgPath = anOrg
	logger.Info().
		Str("run_id", report.RunID).
		Int("days", res.TotalDays).
		Int("trades", report.Performance.TotalTrades).
		Float64("net_pnl", report.Performance.NetPnL).
		Msg("backtest complete")

	if err := exportAnalysis(res, res.DailyData, report); err != nil {
		return err
	}

	hist, err := summarize(ctx, h)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if anJSON {
		return printJSON(out, struct {
			Results  stats.AggregatedResults `json:"results"`
			Backtest backtest.Report         `json:"backtest"`
			History  historySummary          `json:"history"`
			Sources  []source                `json:"sources"`
		}{res, report, hist, sources(analyses)})
	}
	printSources(out, sources(analyses))
	printSessionStats(out, res)
	backtest.PrintReport(out, report)
	printHistory(out, hist)
	return nil
}

func exportAnalysis(res stats.AggregatedResults, days []market.DailyData, r backtest.Report) error {
	if anStatsCSV != "" {
		if err := writeFile(anStatsCSV, func(w io.Writer) error { return journal.WriteSessionStatsCSV(w, res) }); err != nil {
			return fmt.Errorf("stats csv: %w", err)
		}
	}
	if anReportCSV != "" {
		if err := writeFile(anReportCSV, func(w io.Writer) error { return journal.WriteLevelReportCSV(w, days, r.Params) }); err != nil {
			return fmt.Errorf("report csv: %w", err)
		}
	}
	if anTradesCSV != "" {
		if err := writeFile(anTradesCSV, func(w io.Writer) error { return journal.WriteTradesCSV(w, r.Performance) }); err != nil {
			return fmt.Errorf("trades csv: %w", err)
		}
	}
	if anOrg != "" {
		if err := journal.WriteBacktestOrg(anOrg, r); err != nil {
			return fmt.Errorf("org: %w", err)
		}
	}
	return nil
}

func printSessionStats(w io.Writer, res stats.AggregatedResults) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Session Levels")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Days:          %d\n", res.TotalDays)
	fmt.Fprintf(w, "Reactions:     %d (%d held, %s%%)\n", res.TotalReactions, res.SuccessfulReactions, res.OverallSuccessRate)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-16s %6s %6s %7s %8s  %s\n", "Level", "Tested", "Held", "Prob%", "AvgMove", "Confidence")
	fmt.Fprintln(w, "--------------------------------------------------")
	for _, l := range market.Levels() {
		st := res.SessionStats.Get(l)
		fmt.Fprintf(w, "%-16s %6d %6d %7s %8s  %s\n", l, st.Tested, st.Successful, st.Probability, st.AvgMove, st.Confidence)
	}
	fmt.Fprintln(w)
}

// source is where one analysis came from.
type source struct {
	FileName   string `json:"fileName"`
	WeekNumber string `json:"weekNumber,omitempty"`
	UploadDate string `json:"uploadDate"`
	Days       int    `json:"days"`
}

func sources(analyses []market.Analysis) []source {
	out := make([]source, len(analyses))
	for i, a := range analyses {
		out[i] = source{FileName: a.FileName, WeekNumber: a.WeekNumber, UploadDate: a.UploadDate, Days: len(a.Days)}
	}
	return out
}

func printSources(w io.Writer, srcs []source) {
	for _, s := range srcs {
		week := s.WeekNumber
		if week == "" {
			week = "-"
		}
		fmt.Fprintf(w, "Source:        %s (week %s, %d days, loaded %s)\n", s.FileName, week, s.Days, s.UploadDate)
	}
}

// historySummary describes the retained window a later forecast will use.
type historySummary struct {
	Days    int                  `json:"days"`
	MaxDays int                  `json:"maxDays"`
	Levels  []journal.LevelCount `json:"levels"`
}

func summarize(ctx context.Context, h *journal.SQLiteHistory) (historySummary, error) {
	n, err := h.Len(ctx)
	if err != nil {
		return historySummary{}, fmt.Errorf("history: %w", err)
	}
	levels, err := h.LevelCounts(ctx)
	if err != nil {
		return historySummary{}, fmt.Errorf("history: %w", err)
	}
	return historySummary{Days: n, MaxDays: h.MaxDays(), Levels: levels}, nil
}

func printHistory(w io.Writer, hs historySummary) {
	fmt.Fprintln(w, "History")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Retained:      %d of %d days\n", hs.Days, hs.MaxDays)
	for _, lc := range hs.Levels {
		fmt.Fprintf(w, "%-16s %6d tested %6d held\n", lc.Level, lc.Tested, lc.Successful)
	}
	fmt.Fprintln(w)
}
