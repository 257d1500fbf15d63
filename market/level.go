package market

import (
	"fmt"
	"strings"
	"unicode"
)

// Session names as the chart analysis reports them.
const (
	SessionAsia    = "Asia"
	SessionLondon  = "London"
	SessionNewYork = "NewYork"
)

// SessionNames lists the trading sessions in chronological order.
var SessionNames = []string{SessionAsia, SessionLondon, SessionNewYork}

// Level is one of the six canonical session levels a reaction can test.
type Level int

const (
	AsiaHigh Level = iota
	AsiaLow
	LondonHigh
	LondonLow
	NewYorkHigh
	NewYorkLow

	NumLevels
)

var levelNames = [NumLevels]string{
	"Asia High", "Asia Low",
	"London High", "London Low",
	"New York High", "New York Low",
}

var levelKeys = [NumLevels]string{
	"asiaHigh", "asiaLow",
	"londonHigh", "londonLow",
	"newYorkHigh", "newYorkLow",
}

var levelSessions = [NumLevels]string{
	SessionAsia, SessionAsia,
	SessionLondon, SessionLondon,
	SessionNewYork, SessionNewYork,
}

// Levels returns every canonical level in display order.
func Levels() []Level {
	out := make([]Level, NumLevels)
	for i := range out {
		out[i] = Level(i)
	}
	return out
}

func (l Level) Valid() bool { return l >= 0 && l < NumLevels }

// String returns the display name, e.g. "London Low".
func (l Level) String() string {
	if !l.Valid() {
		return "Unknown"
	}
	return levelNames[l]
}

// Key returns the camelCase key used in reports, e.g. "londonLow".
func (l Level) Key() string {
	if !l.Valid() {
		return ""
	}
	return levelKeys[l]
}

// MarshalText writes the level as its key.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("market: invalid level %d", int(l))
	}
	return []byte(l.Key()), nil
}

// Session returns the session the level belongs to.
func (l Level) Session() string {
	if !l.Valid() {
		return ""
	}
	return levelSessions[l]
}

// ParseLevel matches free text against the canonical levels ignoring case and
// whitespace, so "asia low", "AsiaLow" and "ASIA  LOW" all map to AsiaLow.
func ParseLevel(name string) (Level, bool) {
	n := squash(name)
	if n == "" {
		return 0, false
	}
	for i, canon := range levelNames {
		if squash(canon) == n {
			return Level(i), true
		}
	}
	return 0, false
}

// ParseSession matches a session name ignoring case and whitespace.
func ParseSession(name string) (string, bool) {
	n := squash(name)
	if n == "" {
		return "", false
	}
	for _, s := range SessionNames {
		if squash(s) == n {
			return s, true
		}
	}
	return "", false
}

func squash(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
