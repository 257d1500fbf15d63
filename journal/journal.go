// Package journal keeps the rolling history of processed days and writes the
// CSV, Org and text exports.
package journal

import (
	"context"

	"github.com/rustyeddy/sessionmap/market"
)

// DefaultMaxDays is how many processed days History keeps.
const DefaultMaxDays = 100

// History is the rolling window of processed days, oldest first.
type History interface {
	// Append adds days in order and drops the oldest beyond the cap.
	Append(ctx context.Context, days ...market.DailyData) error
	Days(ctx context.Context) ([]market.DailyData, error)
	Len(ctx context.Context) (int, error)
	Close() error
}
