package journal

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/rustyeddy/sessionmap/backtest"
	"github.com/rustyeddy/sessionmap/market"
	"github.com/rustyeddy/sessionmap/stats"
)

// WriteSessionStatsCSV writes one row per canonical level.
func WriteSessionStatsCSV(w io.Writer, res stats.AggregatedResults) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"session", "level", "tested", "successful", "probability", "avg_move", "confidence"}); err != nil {
		return err
	}
	for _, l := range market.Levels() {
		st := res.SessionStats.Get(l)
		if err := cw.Write([]string{
			l.Session(),
			side(l),
			strconv.Itoa(st.Tested),
			strconv.Itoa(st.Successful),
			st.Probability,
			st.AvgMove,
			string(st.Confidence),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLevelReportCSV writes, for every day, one row per canonical level that
// was tested. A level tested twice in a day reports the last test. The P/L
// column follows the leaderboard rule: a win needs a reaction and an outcome.
func WriteLevelReportCSV(w io.Writer, days []market.DailyData, p backtest.Params) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "day", "level", "entry_price", "reacted", "direction", "points_moved", "pnl"}); err != nil {
		return err
	}
	for _, d := range days {
		var last [market.NumLevels]*market.Reaction
		for i := range d.Reactions {
			if l, ok := d.Reactions[i].Level(); ok {
				last[l] = &d.Reactions[i]
			}
		}
		for _, l := range market.Levels() {
			r := last[l]
			if r == nil {
				continue
			}
			pnl := p.StopLossAmount
			if r.Reacted && r.Outcome != "" {
				pnl = r.Move * p.PointValue
			}
			dir := r.Outcome
			if dir == "" {
				dir = backtest.DirectionStopped
			}
			reacted := "No"
			if r.Reacted {
				reacted = "Yes"
			}
			if err := cw.Write([]string{
				d.Date,
				d.DayOfWeek,
				l.String(),
				f(r.TestedLevel),
				reacted,
				dir,
				f(r.Move),
				f(pnl),
			}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTradesCSV writes the synthesized trades of a backtest.
func WriteTradesCSV(w io.Writer, perf backtest.Performance) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "level", "direction", "pnl", "cumulative_pnl"}); err != nil {
		return err
	}
	for _, t := range perf.Trades {
		if err := cw.Write([]string{t.Date, t.Level, t.Direction, f(t.PnL), f(t.CumulativePnL)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// side is "High" or "Low".
func side(l market.Level) string {
	name := l.String()
	return name[strings.LastIndexByte(name, ' ')+1:]
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
