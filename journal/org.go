package journal

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/rustyeddy/sessionmap/backtest"
	"github.com/rustyeddy/sessionmap/forecast"
	"github.com/rustyeddy/sessionmap/pkg/id"
)

var orgFuncs = template.FuncMap{
	"created": created,
	"money": func(x float64) string { return fmt.Sprintf("%.2f", x) },
}

var backtestOrg = template.Must(template.New("backtest").Funcs(orgFuncs).Parse(BacktestOrgTemplate))

// created is when r was run. Reports loaded without a timestamp fall back to
// the time stamped in the run id.
func created(r backtest.Report) time.Time {
	if !r.Created.IsZero() {
		return r.Created
	}
	if t, err := id.Time(r.RunID); err == nil {
		return t
	}
	return time.Now()
}

// FormatBacktestOrg renders a backtest report as an Org-mode entry.
func FormatBacktestOrg(r backtest.Report) (string, error) {
	var buf bytes.Buffer
	if err := backtestOrg.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("journal: render backtest org: %w", err)
	}
	return buf.String(), nil
}

// WriteBacktestOrg renders r to path.
func WriteBacktestOrg(path string, r backtest.Report) error {
	s, err := FormatBacktestOrg(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s), 0o644)
}

const BacktestOrgTemplate = `
* BACKTEST: Session levels {{if .Instrument}}{{.Instrument}}{{else}}(instrument?){{end}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:INSTRUMENT:  {{.Instrument}}
:DATASET:     {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:START_DATE:  {{if .Start}}{{.Start}}{{else}}(start?){{end}}
:END_DATE:    {{if .End}}{{.End}}{{else}}(end?){{end}}
:NET_PL:      {{money .Performance.NetPnL}}
:MAX_DD:      {{money .Performance.MaxDrawdown}}
:TRADES:      {{.Performance.TotalTrades}}
:WINS:        {{.Performance.Wins}}
:LOSSES:      {{.Performance.Losses}}
:WIN_RATE:    {{printf "%.2f" .Performance.WinRate}}
:PROFIT_FAC:  {{if ne .Performance.ProfitFactor 0.0}}{{printf "%.2f" .Performance.ProfitFactor}}{{else}}(profit-factor?){{end}}
:CREATED:     [{{(created .).Format "2006-01-02 Mon 15:04"}}]
:END:

** Trade Rule
| Parameter      | Value |
|----------------+-------|
| Point value    | {{money .Params.PointValue}} |
| Stop loss      | {{money .Params.StopLossAmount}} |

** Performance Summary
- Net P/L:          *{{money .Performance.NetPnL}}*
- Max Drawdown:     *{{money .Performance.MaxDrawdown}}*
- Win Rate:         *{{printf "%.2f" .Performance.WinRate}}%*
- Profit Factor:    *{{if ne .Performance.ProfitFactor 0.0}}{{printf "%.2f" .Performance.ProfitFactor}}{{else}}(profit-factor?){{end}}*
- Avg Win / Loss:   *{{money .Performance.AvgWin}} / {{money .Performance.AvgLoss}}*
- Reward/Risk:      *{{printf "%.2f" .Performance.RewardRiskRatio}}*

** Trade Distribution
| Outcome | Count |
|---------+-------|
| Wins    | {{.Performance.Wins}} |
| Losses  | {{.Performance.Losses}} |
| Total   | {{.Performance.TotalTrades}} |

{{- if .Notes }}
** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`

// FormatSetupOrg renders a sized setup as an Org-mode entry with the sizing
// in its PROPERTIES drawer.
func FormatSetupOrg(s forecast.PredictedTradeSetup) string {
	tags := make([]string, len(s.Strategies))
	for i, t := range s.Strategies {
		tags[i] = string(t)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "** Setup: %s (%s %s)\n", s.SetupName, s.DayOfWeek, s.Date)
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":DIRECTION: %s\n", s.Direction)
	fmt.Fprintf(&b, ":STRATEGIES: %s\n", strings.Join(tags, " "))
	fmt.Fprintf(&b, ":CONFLUENCE: %g\n", s.ConfluenceScore)
	fmt.Fprintf(&b, ":PROBABILITY: %.0f\n", s.Probability)
	fmt.Fprintf(&b, ":ENTRY: %.2f\n", s.EntryPrice)
	fmt.Fprintf(&b, ":STOP: %.2f\n", s.StopLoss)
	fmt.Fprintf(&b, ":STOP_POINTS: %.2f\n", s.StopLossPoints)
	fmt.Fprintf(&b, ":TARGET: %.2f\n", s.TakeProfit)
	fmt.Fprintf(&b, ":RR: %.2f\n", s.RiskRewardRatio)
	fmt.Fprintf(&b, ":CONTRACTS: %d\n", s.PositionSize)
	fmt.Fprintf(&b, ":RISK: %.2f\n", s.RiskAmount)
	fmt.Fprintf(&b, ":POTENTIAL: %.2f\n", s.PotentialProfit)
	b.WriteString(":END:\n\n")
	fmt.Fprintf(&b, "*** Reasoning\n- %s\n\n", s.Reasoning)
	fmt.Fprintf(&b, "*** Technical\n- %s\n\n", s.TechnicalDetails)
	b.WriteString("*** Review\n- \n")
	return b.String()
}

// FormatSetupsOrg renders setups separated by blank lines.
func FormatSetupsOrg(setups []forecast.PredictedTradeSetup) string {
	var b strings.Builder
	for i, s := range setups {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatSetupOrg(s))
	}
	return b.String()
}
