// Package stats folds per-day chart analyses into session level statistics
// and day-of-week / session patterns.
package stats

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/rustyeddy/sessionmap/market"
)

type Confidence string

const (
	ConfidenceLow      Confidence = "LOW"
	ConfidenceModerate Confidence = "MODERATE"
	ConfidenceHigh     Confidence = "HIGH"
)

// ConfidenceFor buckets a sample size.
func ConfidenceFor(tested int) Confidence {
	switch {
	case tested >= 10:
		return ConfidenceHigh
	case tested >= 5:
		return ConfidenceModerate
	default:
		return ConfidenceLow
	}
}

// SessionStat summarises every test of one canonical level.
type SessionStat struct {
	Tested      int        `json:"tested"`
	Successful  int        `json:"successful"`
	Moves       []float64  `json:"moves"`
	Probability string     `json:"probability"` // percent, one decimal
	AvgMove     string     `json:"avgMove"`     // points, one decimal
	Confidence  Confidence `json:"confidence"`
}

// SessionStats holds exactly one SessionStat per canonical level.
type SessionStats [market.NumLevels]SessionStat

func (s SessionStats) Get(l market.Level) SessionStat {
	return s[l]
}

// MarshalJSON writes an object keyed by level key in canonical order.
func (s SessionStats) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, l := range market.Levels() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(l.Key())
		v, err := json.Marshal(s[l])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// AggregatedResults is the output of Aggregate.
type AggregatedResults struct {
	SessionStats        SessionStats       `json:"sessionStats"`
	DailyData           []market.DailyData `json:"dailyData"`
	AllReactions        []market.Reaction  `json:"allReactions"`
	TotalDays           int                `json:"totalDays"`
	TotalReactions      int                `json:"totalReactions"`
	SuccessfulReactions int                `json:"successfulReactions"`
	OverallSuccessRate  string             `json:"overallSuccessRate"`
}

// Aggregate folds every day of every analysis into fresh statistics. Reactions
// whose level name matches no canonical level are kept in AllReactions but do
// not touch any SessionStat.
func Aggregate(analyses []market.Analysis) AggregatedResults {
	res := AggregatedResults{
		DailyData:    []market.DailyData{},
		AllReactions: []market.Reaction{},
	}
	for i := range res.SessionStats {
		res.SessionStats[i].Moves = []float64{}
	}

	for _, a := range analyses {
		for _, day := range a.Days {
			res.DailyData = append(res.DailyData, cloneDay(day))
			for _, r := range day.Reactions {
				res.AllReactions = append(res.AllReactions, r)
				if r.Reacted {
					res.SuccessfulReactions++
				}

				l, ok := r.Level()
				if !ok {
					continue
				}
				st := &res.SessionStats[l]
				st.Tested++
				if r.Reacted {
					st.Successful++
					st.Moves = append(st.Moves, r.Move)
				}
			}
		}
	}

	for i := range res.SessionStats {
		st := &res.SessionStats[i]
		st.Probability = Percent(st.Successful, st.Tested)
		st.AvgMove = Mean(st.Moves)
		st.Confidence = ConfidenceFor(st.Tested)
	}

	res.TotalDays = len(res.DailyData)
	res.TotalReactions = len(res.AllReactions)
	res.OverallSuccessRate = Percent(res.SuccessfulReactions, res.TotalReactions)
	return res
}

// Percent renders 100*num/den with one decimal, or "0" when den is zero.
func Percent(num, den int) string {
	if den == 0 {
		return "0"
	}
	return fixed1(float64(num) / float64(den) * 100)
}

// Mean renders the left-to-right mean with one decimal, or "0" when empty.
func Mean(xs []float64) string {
	if len(xs) == 0 {
		return "0"
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return fixed1(sum / float64(len(xs)))
}

func fixed1(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func cloneDay(d market.DailyData) market.DailyData {
	out := d
	out.Sessions = append([]market.Session{}, d.Sessions...)
	out.Reactions = append([]market.Reaction{}, d.Reactions...)
	if d.MarketEvent != nil {
		ev := *d.MarketEvent
		out.MarketEvent = &ev
	}
	return out
}
