package market

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedDocument is returned when a collaborator document is not a JSON
// object at all. Anything less severe degrades to empty values instead.
var ErrMalformedDocument = errors.New("market: malformed document")

// DecodeAnalysis turns a chart-analysis response into an Analysis. List fields
// that are missing or not arrays become empty, and records of the wrong shape
// are dropped, so callers never have to re-check the structure.
func DecodeAnalysis(data []byte) (Analysis, error) {
	fields, err := topLevel(data)
	if err != nil {
		return Analysis{}, err
	}

	a := Analysis{Days: []DailyData{}}
	scalar(fields["weekHigh"], &a.WeekHigh)
	scalar(fields["weekLow"], &a.WeekLow)
	scalar(fields["volatility"], &a.Volatility)
	scalar(fields["weekNumber"], &a.WeekNumber)
	scalar(fields["uploadDate"], &a.UploadDate)
	scalar(fields["fileName"], &a.FileName)

	for _, raw := range list(fields["days"]) {
		if d, ok := decodeDay(raw); ok {
			a.Days = append(a.Days, d)
		}
	}
	return a, nil
}

// DecodeForecast turns a strategy-forecast response into a ForecastDocument.
func DecodeForecast(data []byte) (ForecastDocument, error) {
	fields, err := topLevel(data)
	if err != nil {
		return ForecastDocument{}, err
	}

	doc := ForecastDocument{WeeklyPredictions: decodeSetups(fields["weeklyPredictions"])}
	if nd, ok := decodeNextDay(fields["nextDayPrediction"]); ok {
		doc.NextDayPrediction = &nd
	}
	return doc, nil
}

// StripFence removes a markdown code fence some models wrap around JSON.
func StripFence(data []byte) []byte {
	s := bytes.TrimSpace(data)
	s = bytes.TrimPrefix(s, []byte("```json"))
	s = bytes.TrimPrefix(s, []byte("```"))
	s = bytes.TrimSuffix(s, []byte("```"))
	return bytes.TrimSpace(s)
}

func topLevel(data []byte) (map[string]json.RawMessage, error) {
	body := StripFence(data)
	if !isObject(body) {
		return nil, fmt.Errorf("%w: top level is not a JSON object", ErrMalformedDocument)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return fields, nil
}

type wireDay struct {
	Date        string          `json:"date"`
	DayOfWeek   string          `json:"dayOfWeek"`
	Sessions    json.RawMessage `json:"sessions"`
	Reactions   json.RawMessage `json:"reactions"`
	MarketEvent json.RawMessage `json:"marketEvent"`
}

func decodeDay(raw json.RawMessage) (DailyData, bool) {
	var w wireDay
	if !object(raw, &w) {
		return DailyData{}, false
	}

	d := DailyData{
		Date:      w.Date,
		DayOfWeek: w.DayOfWeek,
		Sessions:  []Session{},
		Reactions: []Reaction{},
	}
	for _, r := range list(w.Sessions) {
		var s Session
		if object(r, &s) {
			d.Sessions = append(d.Sessions, s)
		}
	}
	for _, r := range list(w.Reactions) {
		var re Reaction
		if object(r, &re) {
			d.Reactions = append(d.Reactions, re)
		}
	}
	var ev MarketEvent
	if object(w.MarketEvent, &ev) {
		d.MarketEvent = &ev
	}
	return d, true
}

type wireSetup struct {
	RawSetup
	Strategies json.RawMessage `json:"strategies"`
}

func decodeSetups(raw json.RawMessage) []RawSetup {
	out := []RawSetup{}
	for _, r := range list(raw) {
		var w wireSetup
		if !object(r, &w) {
			continue
		}
		s := w.RawSetup
		s.Strategies = stringList(w.Strategies)
		out = append(out, s)
	}
	return out
}

type wireNextDay struct {
	Date           string          `json:"date"`
	DayOfWeek      string          `json:"dayOfWeek"`
	MarketBias     string          `json:"marketBias"`
	KeyLevels      json.RawMessage `json:"keyLevels"`
	Recommendation string          `json:"recommendation"`
	TopSetups      json.RawMessage `json:"topSetups"`
}

type wireKeyLevels struct {
	Resistance json.RawMessage `json:"resistance"`
	Support    json.RawMessage `json:"support"`
}

func decodeNextDay(raw json.RawMessage) (RawNextDay, bool) {
	var w wireNextDay
	if !object(raw, &w) {
		return RawNextDay{}, false
	}
	nd := RawNextDay{
		Date:           w.Date,
		DayOfWeek:      w.DayOfWeek,
		MarketBias:     w.MarketBias,
		Recommendation: w.Recommendation,
		TopSetups:      decodeSetups(w.TopSetups),
		KeyLevels:      KeyLevels{Resistance: []float64{}, Support: []float64{}},
	}
	var kl wireKeyLevels
	if object(w.KeyLevels, &kl) {
		nd.KeyLevels.Resistance = numberList(kl.Resistance)
		nd.KeyLevels.Support = numberList(kl.Support)
	}
	return nd, true
}

// list returns the elements of a JSON array, or nothing for any other value.
func list(raw json.RawMessage) []json.RawMessage {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 || b[0] != '[' {
		return nil
	}
	var out []json.RawMessage
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}
	return out
}

func object(raw json.RawMessage, v any) bool {
	b := bytes.TrimSpace(raw)
	if !isObject(b) {
		return false
	}
	return json.Unmarshal(b, v) == nil
}

// scalar decodes raw into v, leaving v untouched when the types disagree.
func scalar[T any](raw json.RawMessage, v *T) {
	if len(raw) == 0 {
		return
	}
	var tmp T
	if json.Unmarshal(raw, &tmp) == nil {
		*v = tmp
	}
}

func stringList(raw json.RawMessage) []string {
	out := []string{}
	for _, r := range list(raw) {
		var s string
		if json.Unmarshal(r, &s) == nil {
			out = append(out, s)
		}
	}
	return out
}

func numberList(raw json.RawMessage) []float64 {
	out := []float64{}
	for _, r := range list(raw) {
		var f float64
		if json.Unmarshal(r, &f) == nil {
			out = append(out, f)
		}
	}
	return out
}

func isObject(b []byte) bool {
	return len(b) > 0 && b[0] == '{'
}
