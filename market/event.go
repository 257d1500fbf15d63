package market

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidEvent = errors.New("market: invalid event")

// ParseMarketEvent reads "DATE=TYPE:REASON[:VOLATILITY]", e.g.
// "2025-11-04=ELECTION:U.S. Election Day:3". Volatility defaults to 0.
func ParseMarketEvent(s string) (string, MarketEvent, error) {
	date, rest, ok := strings.Cut(s, "=")
	date = strings.TrimSpace(date)
	if !ok || date == "" {
		return "", MarketEvent{}, fmt.Errorf("%w: %q needs DATE=TYPE:REASON", ErrInvalidEvent, s)
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", MarketEvent{}, fmt.Errorf("%w: date %q", ErrInvalidEvent, date)
	}

	parts := strings.SplitN(rest, ":", 3)
	if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" {
		return "", MarketEvent{}, fmt.Errorf("%w: %q needs DATE=TYPE:REASON", ErrInvalidEvent, s)
	}
	ev := MarketEvent{
		Type:   strings.ToUpper(strings.TrimSpace(parts[0])),
		Reason: strings.TrimSpace(parts[1]),
	}
	if len(parts) == 3 {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return "", MarketEvent{}, fmt.Errorf("%w: volatility %q", ErrInvalidEvent, parts[2])
		}
		ev.Volatility = v
	}
	return date, ev, nil
}

// Annotate attaches the host metadata to a. An empty week leaves WeekNumber
// alone. Days whose date has an event get their own copy of it.
func (a *Analysis) Annotate(week, fileName string, uploaded time.Time, events map[string]MarketEvent) {
	if week != "" {
		a.WeekNumber = week
	}
	if fileName != "" {
		a.FileName = fileName
	}
	a.UploadDate = uploaded.UTC().Format(time.RFC3339)
	for i := range a.Days {
		if ev, ok := events[a.Days[i].Date]; ok {
			a.Days[i].MarketEvent = &ev
		}
	}
}
