// Package model talks to the multimodal model that reads chart images and
// writes strategy forecasts. Its output is decoded by package market; the
// model never supplies sizing.
package model

import (
	"context"
	"time"

	"github.com/rustyeddy/sessionmap/market"
	"github.com/rustyeddy/sessionmap/stats"
)

// Analyzer is the external collaborator.
type Analyzer interface {
	AnalyzeChart(ctx context.Context, c Chart) (market.Analysis, error)
	Forecast(ctx context.Context, req ForecastRequest) (market.ForecastDocument, error)
	WeeklyForecast(ctx context.Context, req ForecastRequest) (market.WeeklyForecast, error)
}

// ForecastRequest is what the model sees when asked for a forecast.
type ForecastRequest struct {
	Patterns stats.HistoricalPatterns
	Recent   []market.DailyData // oldest first; only the tail is sent
	Now      time.Time
}
