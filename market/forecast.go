package market

import "strings"

type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// ParseDirection accepts LONG/SHORT in any case.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(strings.ToUpper(strings.TrimSpace(s))) {
	case Long:
		return Long, true
	case Short:
		return Short, true
	}
	return "", false
}

// RawSetup is a predicted trade exactly as the forecast collaborator sent it.
// Nothing derived from the risk policy lives here.
type RawSetup struct {
	Date              string   `json:"date"`
	DayOfWeek         string   `json:"dayOfWeek"`
	SetupName         string   `json:"setupName"`
	Strategies        []string `json:"strategies"`
	ConfluenceScore   float64  `json:"confluenceScore"`
	EntryPrice        float64  `json:"entryPrice"`
	TechnicalStopLoss float64  `json:"technicalStopLoss"`
	TakeProfit        float64  `json:"takeProfit"`
	Direction         string   `json:"direction"`
	Probability       float64  `json:"probability"`
	Reasoning         string   `json:"reasoning"`
	TechnicalDetails  string   `json:"technicalDetails"`
}

type KeyLevels struct {
	Resistance []float64 `json:"resistance"`
	Support    []float64 `json:"support"`
}

// RawNextDay is the collaborator's prediction for the next session day.
type RawNextDay struct {
	Date           string     `json:"date"`
	DayOfWeek      string     `json:"dayOfWeek"`
	MarketBias     string     `json:"marketBias"`
	KeyLevels      KeyLevels  `json:"keyLevels"`
	Recommendation string     `json:"recommendation"`
	TopSetups      []RawSetup `json:"topSetups"`
}

// ForecastDocument is the strategy forecast returned by the collaborator.
type ForecastDocument struct {
	WeeklyPredictions []RawSetup  `json:"weeklyPredictions"`
	NextDayPrediction *RawNextDay `json:"nextDayPrediction"`
}
