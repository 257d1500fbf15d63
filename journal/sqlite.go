package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/sessionmap/market"
)

// SQLiteHistory is a History held in a private in-memory SQLite database.
// Nothing outlives Close.
type SQLiteHistory struct {
	db      *sql.DB
	maxDays int
}

var _ History = (*SQLiteHistory)(nil)

// NewHistory opens an empty history capped at maxDays (DefaultMaxDays when
// maxDays <= 0).
func NewHistory(maxDays int) (*SQLiteHistory, error) {
	if maxDays <= 0 {
		maxDays = DefaultMaxDays
	}

	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// every connection to :memory: is a new database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: create schema: %w", err)
	}
	return &SQLiteHistory{db: db, maxDays: maxDays}, nil
}

func (h *SQLiteHistory) MaxDays() int { return h.maxDays }

func (h *SQLiteHistory) Append(ctx context.Context, days ...market.DailyData) error {
	if len(days) == 0 {
		return nil
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, d := range days {
		payload, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("journal: encode day %s: %w", d.Date, err)
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO days (date, day_of_week, payload, added)
			VALUES (?, ?, ?, ?)`,
			d.Date, d.DayOfWeek, string(payload), now,
		)
		if err != nil {
			return err
		}
		seq, err := res.LastInsertId()
		if err != nil {
			return err
		}

		for _, r := range d.Reactions {
			var key sql.NullString
			if l, ok := r.Level(); ok {
				key = sql.NullString{String: l.Key(), Valid: true}
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO reactions (day_seq, level_name, level_key, reacted, move, outcome)
				VALUES (?, ?, ?, ?, ?, ?)`,
				seq, r.LevelName, key, r.Reacted, r.Move, r.Outcome,
			); err != nil {
				return err
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM days
		WHERE seq NOT IN (SELECT seq FROM days ORDER BY seq DESC LIMIT ?)`,
		h.maxDays,
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (h *SQLiteHistory) Close() error {
	return h.db.Close()
}
