package market

import "strings"

// Session is the observed range of one trading session on one day.
type Session struct {
	Name string  `json:"name"`
	High float64 `json:"high"`
	Low  float64 `json:"low"`
}

// Reaction records whether price reacted to a named session level.
type Reaction struct {
	TestedLevel  float64 `json:"testedLevel"`
	LevelName    string  `json:"levelName"`
	Reacted      bool    `json:"reacted"`
	ReactionType string  `json:"reactionType"`
	Move         float64 `json:"move"` // signed points
	Outcome      string  `json:"outcome"`
}

// Level resolves the free-text LevelName against the canonical levels.
func (r Reaction) Level() (Level, bool) {
	return ParseLevel(r.LevelName)
}

// SessionName returns the session named by the first word of LevelName.
// "New York High" has no session here: its first word is "New".
func (r Reaction) SessionName() (string, bool) {
	fields := strings.Fields(r.LevelName)
	if len(fields) == 0 {
		return "", false
	}
	return ParseSession(fields[0])
}

// MarketEvent annotates a day with a news or macro event.
type MarketEvent struct {
	Type       string  `json:"type"`
	Reason     string  `json:"reason"`
	Volatility float64 `json:"volatility"`
}

// DailyData is one trading day as extracted from a chart.
type DailyData struct {
	Date        string       `json:"date"` // 2006-01-02
	DayOfWeek   string       `json:"dayOfWeek"`
	Sessions    []Session    `json:"sessions"`
	Reactions   []Reaction   `json:"reactions"`
	MarketEvent *MarketEvent `json:"marketEvent,omitempty"`
}

// Session looks up a session of the day by name.
func (d DailyData) Session(name string) (Session, bool) {
	for _, s := range d.Sessions {
		if s.Name == name {
			return s, true
		}
	}
	return Session{}, false
}

// Analysis is the document the chart collaborator returns for one image.
// WeekNumber, UploadDate and FileName are attached by the host afterwards.
type Analysis struct {
	Days       []DailyData `json:"days"`
	WeekHigh   float64     `json:"weekHigh"`
	WeekLow    float64     `json:"weekLow"`
	Volatility string      `json:"volatility"`

	WeekNumber string `json:"weekNumber,omitempty"`
	UploadDate string `json:"uploadDate,omitempty"`
	FileName   string `json:"fileName,omitempty"`
}
