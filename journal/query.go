package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rustyeddy/sessionmap/market"
)

// Days returns the retained days in insertion order.
func (h *SQLiteHistory) Days(ctx context.Context) ([]market.DailyData, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT seq, payload FROM days ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []market.DailyData{}
	for rows.Next() {
		var (
			seq     int64
			payload string
			d       market.DailyData
		)
		if err := rows.Scan(&seq, &payload); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &d); err != nil {
			return nil, fmt.Errorf("journal: day %d: %w", seq, err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (h *SQLiteHistory) Len(ctx context.Context) (int, error) {
	var n int
	err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM days`).Scan(&n)
	return n, err
}

// LevelCount is how often a canonical level was tested and held across the
// retained history.
type LevelCount struct {
	Level      market.Level `json:"level"`
	Tested     int          `json:"tested"`
	Successful int          `json:"successful"`
}

// LevelCounts tallies the retained reactions per canonical level, in level
// order. Unmatched level names are not counted.
func (h *SQLiteHistory) LevelCounts(ctx context.Context) ([]LevelCount, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT level_key, COUNT(*), SUM(reacted)
		FROM reactions
		WHERE level_key IS NOT NULL
		GROUP BY level_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byKey := map[string]LevelCount{}
	for rows.Next() {
		var (
			key string
			lc  LevelCount
		)
		if err := rows.Scan(&key, &lc.Tested, &lc.Successful); err != nil {
			return nil, err
		}
		byKey[key] = lc
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]LevelCount, 0, market.NumLevels)
	for _, l := range market.Levels() {
		lc := byKey[l.Key()]
		lc.Level = l
		out = append(out, lc)
	}
	return out, nil
}
