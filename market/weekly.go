package market

import (
	"encoding/json"
	"time"
)

// LevelSetup is one session level the collaborator expects to react on a day.
type LevelSetup struct {
	Session      string  `json:"session"`
	Level        string  `json:"level"`
	Probability  float64 `json:"probability"`
	ExpectedMove float64 `json:"expectedMove"`
	Direction    string  `json:"direction"`
	Reasoning    string  `json:"reasoning"`
}

type DailyPrediction struct {
	Day       string       `json:"day"`
	Date      string       `json:"date"`
	TopSetups []LevelSetup `json:"topSetups"`
}

type TopTrade struct {
	Day          string  `json:"day"`
	Setup        string  `json:"setup"`
	Probability  float64 `json:"probability"`
	ExpectedMove float64 `json:"expectedMove"`
}

// WeeklyForecast is the pattern-based outlook for the coming week. It carries
// no prices to size, only which session levels are likely to hold.
// GeneratedAt and HistoricalDays are stamped by the caller, not the model.
type WeeklyForecast struct {
	DailyPredictions     []DailyPrediction `json:"dailyPredictions"`
	WeeklyRecommendation string            `json:"weeklyRecommendation"`
	TopTrades            []TopTrade        `json:"topTrades"`
	GeneratedAt          time.Time         `json:"generatedAt"`
	HistoricalDays       int               `json:"historicalDays"`
}

type wireDailyPrediction struct {
	Day       string          `json:"day"`
	Date      string          `json:"date"`
	TopSetups json.RawMessage `json:"topSetups"`
}

// DecodeWeeklyForecast turns a weekly-forecast response into a WeeklyForecast.
// Records of the wrong shape are dropped like in DecodeAnalysis.
func DecodeWeeklyForecast(data []byte) (WeeklyForecast, error) {
	fields, err := topLevel(data)
	if err != nil {
		return WeeklyForecast{}, err
	}

	wf := WeeklyForecast{DailyPredictions: []DailyPrediction{}, TopTrades: []TopTrade{}}
	scalar(fields["weeklyRecommendation"], &wf.WeeklyRecommendation)
	scalar(fields["generatedAt"], &wf.GeneratedAt)
	scalar(fields["historicalDays"], &wf.HistoricalDays)

	for _, raw := range list(fields["dailyPredictions"]) {
		var w wireDailyPrediction
		if !object(raw, &w) {
			continue
		}
		dp := DailyPrediction{Day: w.Day, Date: w.Date, TopSetups: []LevelSetup{}}
		for _, r := range list(w.TopSetups) {
			var s LevelSetup
			if object(r, &s) {
				dp.TopSetups = append(dp.TopSetups, s)
			}
		}
		wf.DailyPredictions = append(wf.DailyPredictions, dp)
	}
	for _, raw := range list(fields["topTrades"]) {
		var t TopTrade
		if object(raw, &t) {
			wf.TopTrades = append(wf.TopTrades, t)
		}
	}
	return wf, nil
}
