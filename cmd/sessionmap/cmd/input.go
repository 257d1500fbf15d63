package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rustyeddy/sessionmap/journal"
	"github.com/rustyeddy/sessionmap/logger"
	"github.com/rustyeddy/sessionmap/market"
	"github.com/rustyeddy/sessionmap/model"
	"github.com/rustyeddy/sessionmap/stats"
)

// newAnalyzer builds the configured model client.
func newAnalyzer() (model.Analyzer, error) {
	gc, err := cfg.GeminiConfig()
	if err != nil {
		return nil, err
	}
	g, err := model.NewGemini(gc)
	if err != nil {
		return nil, err
	}
	return model.Observe(g), nil
}

// hostMeta is what the user knows about the charts that the model does not.
type hostMeta struct {
	week   string
	events map[string]market.MarketEvent
}

func parseHostMeta(week string, events []string) (hostMeta, error) {
	m := hostMeta{week: week, events: map[string]market.MarketEvent{}}
	for _, s := range events {
		date, ev, err := market.ParseMarketEvent(s)
		if err != nil {
			return hostMeta{}, err
		}
		m.events[date] = ev
	}
	return m, nil
}

// readAnalyses decodes analysis documents and, when charts are given, asks
// the model for one more analysis per chart. Every analysis is annotated
// with meta.
func readAnalyses(ctx context.Context, inputs, charts []string, meta hostMeta) ([]market.Analysis, error) {
	var out []market.Analysis
	for _, path := range inputs {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read analysis: %w", err)
		}
		a, err := market.DecodeAnalysis(b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		a.Annotate(meta.week, filepath.Base(path), time.Now(), meta.events)
		logger.Debug().Str("file", path).Str("week", a.WeekNumber).Int("days", len(a.Days)).Msg("decoded analysis")
		out = append(out, a)
	}

	if len(charts) == 0 {
		return out, nil
	}
	an, err := newAnalyzer()
	if err != nil {
		return nil, err
	}
	for _, path := range charts {
		c, err := model.LoadChart(path)
		if err != nil {
			return nil, err
		}
		a, err := an.AnalyzeChart(ctx, c)
		if err != nil {
			return nil, err
		}
		a.Annotate(meta.week, c.Name, time.Now(), meta.events)
		out = append(out, a)
	}
	return out, nil
}

// record aggregates analyses and pushes the days through the rolling history.
// The caller closes the history.
func record(ctx context.Context, analyses []market.Analysis) (stats.AggregatedResults, *journal.SQLiteHistory, error) {
	res := stats.Aggregate(analyses)

	h, err := journal.NewHistory(cfg.History.MaxDays)
	if err != nil {
		return res, nil, err
	}
	if err := h.Append(ctx, res.DailyData...); err != nil {
		h.Close()
		return res, nil, err
	}
	return res, h, nil
}

func datasetName(inputs, charts []string) string {
	names := make([]string, 0, len(inputs)+len(charts))
	for _, p := range append(append([]string{}, inputs...), charts...) {
		names = append(names, filepath.Base(p))
	}
	return strings.Join(names, ",")
}

// writeFile creates path and hands it to fn.
func writeFile(path string, fn func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info().Str("file", path).Msg("wrote export")
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
