// Package forecast sizes the setups of a strategy forecast against the risk
// policy and assembles the ranked result.
package forecast

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/sessionmap/backtest"
	"github.com/rustyeddy/sessionmap/market"
	"github.com/rustyeddy/sessionmap/pkg/id"
	"github.com/rustyeddy/sessionmap/risk"
	"github.com/rustyeddy/sessionmap/strategy"
)

// DefaultMinHistory is the fewest recorded days a forecast is built from.
const DefaultMinHistory = 5

var ErrInsufficientHistory = errors.New("forecast: not enough history")

// CheckHistory fails when fewer than min days are available.
func CheckHistory(days []market.DailyData, min int) error {
	if len(days) < min {
		return fmt.Errorf("%w: have %d days, need at least %d", ErrInsufficientHistory, len(days), min)
	}
	return nil
}

// PredictedTradeSetup is a forecast setup with its policy-derived sizing.
type PredictedTradeSetup struct {
	Date             string               `json:"date"`
	DayOfWeek        string               `json:"dayOfWeek"`
	SetupName        string               `json:"setupName"`
	Strategies       []market.StrategyTag `json:"strategies"`
	ConfluenceScore  float64              `json:"confluenceScore"`
	EntryPrice       float64              `json:"entryPrice"`
	Direction        market.Direction     `json:"direction"`
	Probability      float64              `json:"probability"`
	Reasoning        string               `json:"reasoning"`
	TechnicalDetails string               `json:"technicalDetails"`

	StopLoss         float64 `json:"stopLoss"`
	StopLossPoints   float64 `json:"stopLossPoints"`
	TakeProfit       float64 `json:"takeProfit"`
	TakeProfitPoints float64 `json:"takeProfitPoints"`
	RiskRewardRatio  float64 `json:"riskRewardRatio"`
	PositionSize     int     `json:"positionSize"`
	RiskAmount       float64 `json:"riskAmount"`
	PotentialProfit  float64 `json:"potentialProfit"`
}

func (s PredictedTradeSetup) Rank() (float64, float64) {
	return s.ConfluenceScore, s.Probability
}

type NextDayPrediction struct {
	Date           string                `json:"date"`
	DayOfWeek      string                `json:"dayOfWeek"`
	MarketBias     string                `json:"marketBias"`
	KeyLevels      market.KeyLevels      `json:"keyLevels"`
	Recommendation string                `json:"recommendation"`
	TopSetups      []PredictedTradeSetup `json:"topSetups"`
}

// Rejection is a raw setup that could not be sized.
type Rejection struct {
	Setup  market.RawSetup `json:"setup"`
	Reason string          `json:"reason"`
}

// Result is the assembled strategy forecast.
type Result struct {
	RunID               string                         `json:"runId"`
	StrategyLeaderboard []strategy.StrategyPerformance `json:"strategyLeaderboard"`
	WeeklyPredictions   []PredictedTradeSetup          `json:"weeklyPredictions"`
	NextDayPrediction   *NextDayPrediction             `json:"nextDayPrediction"`
	TopConfluenceSetups []PredictedTradeSetup          `json:"topConfluenceSetups"`
	Rejected            []Rejection                    `json:"rejected"`
	GeneratedAt         time.Time                      `json:"generatedAt"`
	AccountSize         float64                        `json:"accountSize"`
	RiskPercentage      float64                        `json:"riskPercentage"`
	MaxStopLoss         float64                        `json:"maxStopLoss"`
}

// Builder carries everything Build needs besides the documents.
type Builder struct {
	Policy        risk.Policy
	Backtest      backtest.Params
	MinConfluence int
	TopSetups     int
}

// Build sizes doc with the default confluence selection.
func Build(doc market.ForecastDocument, history []market.DailyData, p risk.Policy, bt backtest.Params, now time.Time) Result {
	b := Builder{
		Policy:        p,
		Backtest:      bt,
		MinConfluence: strategy.DefaultMinConfluence,
		TopSetups:     strategy.DefaultTopSetups,
	}
	return b.Build(doc, history, now)
}

// Build sizes every weekly and next-day setup with the same policy, scores
// the strategies against history and selects the top confluence setups from
// the weekly predictions.
func (b Builder) Build(doc market.ForecastDocument, history []market.DailyData, now time.Time) Result {
	res := Result{
		RunID:               id.NewAt(now),
		StrategyLeaderboard: strategy.Leaderboard(history, b.Backtest),
		WeeklyPredictions:   []PredictedTradeSetup{},
		Rejected:            []Rejection{},
		GeneratedAt:         now.UTC(),
		AccountSize:         b.Policy.AccountSize,
		RiskPercentage:      b.Policy.RiskPercent,
		MaxStopLoss:         b.Policy.MaxStopCurrency,
	}

	for _, raw := range doc.WeeklyPredictions {
		if s, ok := b.size(raw, &res.Rejected); ok {
			res.WeeklyPredictions = append(res.WeeklyPredictions, s)
		}
	}

	if nd := doc.NextDayPrediction; nd != nil {
		next := &NextDayPrediction{
			Date:           nd.Date,
			DayOfWeek:      nd.DayOfWeek,
			MarketBias:     nd.MarketBias,
			KeyLevels:      nd.KeyLevels,
			Recommendation: nd.Recommendation,
			TopSetups:      []PredictedTradeSetup{},
		}
		for _, raw := range nd.TopSetups {
			raw.Date, raw.DayOfWeek = nd.Date, nd.DayOfWeek
			if s, ok := b.size(raw, &res.Rejected); ok {
				next.TopSetups = append(next.TopSetups, s)
			}
		}
		res.NextDayPrediction = next
	}

	res.TopConfluenceSetups = strategy.SelectConfluence(res.WeeklyPredictions, b.MinConfluence, b.TopSetups)
	return res
}

func (b Builder) size(raw market.RawSetup, rejected *[]Rejection) (PredictedTradeSetup, bool) {
	dir, ok := market.ParseDirection(raw.Direction)
	if !ok {
		*rejected = append(*rejected, Rejection{Setup: raw, Reason: fmt.Sprintf("unknown direction %q", raw.Direction)})
		return PredictedTradeSetup{}, false
	}

	sz, err := risk.SizeSetup(b.Policy, risk.Setup{
		Entry:         raw.EntryPrice,
		TechnicalStop: raw.TechnicalStopLoss,
		TakeProfit:    raw.TakeProfit,
		Direction:     dir,
	})
	if err != nil {
		*rejected = append(*rejected, Rejection{Setup: raw, Reason: err.Error()})
		return PredictedTradeSetup{}, false
	}

	return PredictedTradeSetup{
		Date:             raw.Date,
		DayOfWeek:        raw.DayOfWeek,
		SetupName:        raw.SetupName,
		Strategies:       market.ParseStrategyTags(raw.Strategies),
		ConfluenceScore:  raw.ConfluenceScore,
		EntryPrice:       raw.EntryPrice,
		Direction:        dir,
		Probability:      raw.Probability,
		Reasoning:        raw.Reasoning,
		TechnicalDetails: raw.TechnicalDetails,

		StopLoss:         sz.StopLoss,
		StopLossPoints:   sz.StopLossPoints,
		TakeProfit:       sz.TakeProfit,
		TakeProfitPoints: sz.TakeProfitPoints,
		RiskRewardRatio:  sz.RiskRewardRatio,
		PositionSize:     sz.PositionSize,
		RiskAmount:       sz.RiskAmount,
		PotentialProfit:  sz.PotentialProfit,
	}, true
}
