package stats

import (
	"strconv"

	"github.com/rustyeddy/sessionmap/market"
)

// NotAvailable marks a best-day / best-session slot with no qualifying data.
const NotAvailable = "N/A"

// DayPattern counts reactions for one weekday.
type DayPattern struct {
	Day         string `json:"day"`
	Count       int    `json:"count"`
	Reactions   int    `json:"reactions"`
	Successful  int    `json:"successful"`
	SuccessRate string `json:"successRate"`
}

// SessionPattern collects the reactions attributed to one session.
type SessionPattern struct {
	Session   string            `json:"session"`
	Reactions []market.Reaction `json:"reactions"`
}

// SuccessRate is the unrounded percentage of reacting levels, 0 when empty.
func (s SessionPattern) SuccessRate() float64 {
	if len(s.Reactions) == 0 {
		return 0
	}
	ok := 0
	for _, r := range s.Reactions {
		if r.Reacted {
			ok++
		}
	}
	return float64(ok) / float64(len(s.Reactions)) * 100
}

// HistoricalPatterns is the summary handed to the forecast collaborator.
type HistoricalPatterns struct {
	ByDay       []DayPattern     `json:"byDay"`     // first-seen weekday order
	BySession   []SessionPattern `json:"bySession"` // Asia, London, NewYork
	BestDay     string           `json:"bestDay"`
	BestSession string           `json:"bestSession"`
	TotalDays   int              `json:"totalDays"`
}

// Day looks up the pattern for a weekday.
func (h HistoricalPatterns) Day(name string) (DayPattern, bool) {
	for _, d := range h.ByDay {
		if d.Day == name {
			return d, true
		}
	}
	return DayPattern{}, false
}

// AnalyzeHistoricalPatterns groups the history by weekday and by session and
// picks the best of each. Ties go to the bucket seen first.
func AnalyzeHistoricalPatterns(days []market.DailyData) HistoricalPatterns {
	h := HistoricalPatterns{
		ByDay:       []DayPattern{},
		BySession:   make([]SessionPattern, len(market.SessionNames)),
		BestDay:     NotAvailable,
		BestSession: NotAvailable,
		TotalDays:   len(days),
	}
	sessionIdx := map[string]int{}
	for i, name := range market.SessionNames {
		h.BySession[i] = SessionPattern{Session: name, Reactions: []market.Reaction{}}
		sessionIdx[name] = i
	}

	dayIdx := map[string]int{}
	for _, d := range days {
		i, seen := dayIdx[d.DayOfWeek]
		if !seen {
			i = len(h.ByDay)
			dayIdx[d.DayOfWeek] = i
			h.ByDay = append(h.ByDay, DayPattern{Day: d.DayOfWeek})
		}
		bucket := &h.ByDay[i]
		bucket.Count++

		for _, r := range d.Reactions {
			if name, ok := r.SessionName(); ok {
				s := &h.BySession[sessionIdx[name]]
				s.Reactions = append(s.Reactions, r)
			}
			bucket.Reactions++
			if r.Reacted {
				bucket.Successful++
			}
		}
	}

	// Days compare on the rounded rate they are reported with.
	bestRate := 0.0
	for i := range h.ByDay {
		b := &h.ByDay[i]
		b.SuccessRate = Percent(b.Successful, b.Reactions)
		rate, _ := strconv.ParseFloat(b.SuccessRate, 64)
		if rate > bestRate {
			bestRate = rate
			h.BestDay = b.Day
		}
	}

	bestRate = 0
	for _, s := range h.BySession {
		if rate := s.SuccessRate(); rate > bestRate {
			bestRate = rate
			h.BestSession = s.Session
		}
	}
	return h
}
