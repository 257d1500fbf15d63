package backtest

import (
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/sessionmap/market"
	"github.com/rustyeddy/sessionmap/pkg/id"
)

// Report is one backtest run with the metadata needed to file it.
type Report struct {
	RunID      string    `json:"runId"`
	Created    time.Time `json:"created"`
	Dataset    string    `json:"dataset"`
	Instrument string    `json:"instrument"`

	// first and last dated day of the replay, empty when none parse
	Start string `json:"start"`
	End   string `json:"end"`

	Params      Params      `json:"params"`
	Performance Performance `json:"performance"`

	OrgPath string   `json:"orgPath,omitempty"`
	Notes   []string `json:"notes,omitempty"`
}

// Run computes the performance of days and wraps it in a fresh Report.
func Run(dataset, instrument string, days []market.DailyData, p Params) Report {
	r := Report{
		RunID:       id.New(),
		Created:     time.Now().UTC(),
		Dataset:     dataset,
		Instrument:  instrument,
		Params:      p,
		Performance: Compute(days, p),
	}
	for _, d := range SortByDate(days) {
		if _, ok := parseDate(d.Date); !ok {
			break
		}
		if r.Start == "" {
			r.Start = d.Date
		}
		r.End = d.Date
	}
	return r
}

func PrintReport(w io.Writer, r Report) {
	perf := r.Performance

	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Run ID:        %s\n", r.RunID)
	fmt.Fprintf(w, "Created:       %s\n", r.Created.Format(time.RFC3339))
	if r.Instrument != "" {
		fmt.Fprintf(w, "Instrument:    %s\n", r.Instrument)
	}
	if r.Dataset != "" {
		fmt.Fprintf(w, "Dataset:       %s\n", r.Dataset)
	}

	if r.Start != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Period")
		fmt.Fprintln(w, "--------------------------------------------------")
		fmt.Fprintf(w, "Start:         %s\n", r.Start)
		fmt.Fprintf(w, "End:           %s\n", r.End)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Rule")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Point Value:   %.2f\n", r.Params.PointValue)
	fmt.Fprintf(w, "Stop Loss:     %.2f\n", r.Params.StopLossAmount)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d\n", perf.TotalTrades)
	fmt.Fprintf(w, "Wins:          %d\n", perf.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", perf.Losses)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", perf.WinRate)
	fmt.Fprintf(w, "Avg Win:       %.2f\n", perf.AvgWin)
	fmt.Fprintf(w, "Avg Loss:      %.2f\n", perf.AvgLoss)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Net P/L:       %.2f\n", perf.NetPnL)
	fmt.Fprintf(w, "Gross Profit:  %.2f\n", perf.GrossProfit)
	fmt.Fprintf(w, "Gross Loss:    %.2f\n", perf.GrossLoss)

	if perf.ProfitFactor > 0 {
		fmt.Fprintf(w, "Profit Factor: %.2f\n", perf.ProfitFactor)
	}
	if perf.RewardRiskRatio > 0 {
		fmt.Fprintf(w, "Reward/Risk:   %.2f\n", perf.RewardRiskRatio)
	}
	fmt.Fprintf(w, "Max Drawdown:  %.2f\n", perf.MaxDrawdown)

	if r.OrgPath != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Org Report:    %s\n", r.OrgPath)
	}

	if len(r.Notes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Observations")
		fmt.Fprintln(w, "--------------------------------------------------")
		for _, note := range r.Notes {
			fmt.Fprintf(w, "- %s\n", note)
		}
	}

	fmt.Fprintln(w)
}
