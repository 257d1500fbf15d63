package cmd

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Commands share package level flag variables, so tests are not parallel and
// every run starts from the flag defaults.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append([]string{"--log-level", "ERROR"}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// writeWeek writes one analysis with days consecutive days from 2025-01-01.
// Each day has a held London Low and a failed New York High.
func writeWeek(t *testing.T, dir string, days int) string {
	t.Helper()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var parts []string
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		parts = append(parts, fmt.Sprintf(`{
			"date": %q, "dayOfWeek": %q,
			"reactions": [
				{"testedLevel": 25100, "levelName": "London Low", "reacted": true, "move": 50, "outcome": "LONG"},
				{"testedLevel": 25400, "levelName": "New York High", "reacted": false, "move": 0}
			]}`, d.Format("2006-01-02"), d.Weekday()))
	}
	path := filepath.Join(dir, "week.json")
	body := "```json\n{\"days\": [" + strings.Join(parts, ",") + "]}\n```"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sessionmap version "+version)
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessionmap.yaml")

	out, err := run(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created default configuration")

	out, err = run(t, "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")
	assert.Contains(t, out, "Instrument: MNQ")
}

func TestSize(t *testing.T) {
	out, err := run(t, "size", "--entry", "20150", "--stop", "20050", "--target", "20450", "--direction", "long")
	require.NoError(t, err)
	assert.Contains(t, out, "Stop:       20075.00 (75.00 pts")
	assert.Contains(t, out, "Contracts:  6")
	assert.Contains(t, out, "within policy")
}

func TestAnalyze(t *testing.T) {
	dir := t.TempDir()
	week := writeWeek(t, dir, 3)
	trades := filepath.Join(dir, "trades.csv")
	org := filepath.Join(dir, "backtest.org")

	out, err := run(t, "analyze", "-i", week, "--trades-csv", trades, "--org", org)
	require.NoError(t, err)
	assert.Contains(t, out, "Days:          3")
	assert.Contains(t, out, "Trades:        6")
	assert.Contains(t, out, "Net P/L:       -150.00")

	f, err := os.Open(trades)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 7)

	b, err := os.ReadFile(org)
	require.NoError(t, err)
	assert.Contains(t, string(b), ":DATASET:     week.json")
}

func TestForecast(t *testing.T) {
	dir := t.TempDir()
	week := writeWeek(t, dir, 5)
	doc := filepath.Join(dir, "forecast.json")
	require.NoError(t, os.WriteFile(doc, []byte(`{"weeklyPredictions": [{
		"date": "2025-11-17", "dayOfWeek": "Monday", "setupName": "London Low Bounce",
		"strategies": ["ICT", "SESSION", "SMC"], "confluenceScore": 3,
		"entryPrice": 20150, "technicalStopLoss": 20050, "takeProfit": 20450,
		"direction": "LONG", "probability": 80
	}]}`), 0644))

	out, err := run(t, "forecast", "-i", week, "--forecast", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "STRATEGY LEADERBOARD")
	assert.Contains(t, out, "1. London Low Bounce LONG @ 20150.00 stop 20075.00")
}

func TestAnalyze_BacktestsPastHistoryCap(t *testing.T) {
	dir := t.TempDir()
	week := writeWeek(t, dir, 120)
	report := filepath.Join(dir, "levels.csv")

	out, err := run(t, "analyze", "-i", week, "--report-csv", report, "--json")
	require.NoError(t, err)

	var got struct {
		Results struct {
			TotalDays int `json:"totalDays"`
		} `json:"results"`
		Backtest struct {
			Start       string `json:"start"`
			Performance struct {
				TotalTrades int     `json:"totalTrades"`
				NetPnL      float64 `json:"netPnl"`
			} `json:"performance"`
		} `json:"backtest"`
		History struct {
			Days    int `json:"days"`
			MaxDays int `json:"maxDays"`
			Levels  []struct {
				Level  string `json:"level"`
				Tested int    `json:"tested"`
			} `json:"levels"`
		} `json:"history"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, 120, got.Results.TotalDays)
	assert.Equal(t, 240, got.Backtest.Performance.TotalTrades)
	assert.InDelta(t, -6000, got.Backtest.Performance.NetPnL, 1e-9)
	assert.Equal(t, "2025-01-01", got.Backtest.Start)
	assert.Equal(t, 100, got.History.Days)
	assert.Equal(t, 100, got.History.MaxDays)
	tested := map[string]int{}
	for _, l := range got.History.Levels {
		tested[l.Level] = l.Tested
	}
	assert.Equal(t, 100, tested["londonLow"])
	assert.Equal(t, 100, tested["newYorkHigh"])
	assert.Equal(t, 0, tested["asiaHigh"])

	b, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(b), "2025-01-01", "the level report starts at the first aggregated day")
	assert.Contains(t, string(b), "2025-04-30")
}

func TestAnalyze_HostMetadata(t *testing.T) {
	dir := t.TempDir()
	week := writeWeek(t, dir, 2)

	out, err := run(t, "analyze", "-i", week, "--json", "--week", "W01",
		"--event", "2025-01-02=fomc:rate decision:2.5")
	require.NoError(t, err)

	var got struct {
		Results struct {
			DailyData []struct {
				Date        string `json:"date"`
				MarketEvent *struct {
					Type       string  `json:"type"`
					Reason     string  `json:"reason"`
					Volatility float64 `json:"volatility"`
				} `json:"marketEvent"`
			} `json:"dailyData"`
		} `json:"results"`
		Sources []struct {
			FileName   string `json:"fileName"`
			WeekNumber string `json:"weekNumber"`
			UploadDate string `json:"uploadDate"`
		} `json:"sources"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	require.Len(t, got.Sources, 1)
	assert.Equal(t, "week.json", got.Sources[0].FileName)
	assert.Equal(t, "W01", got.Sources[0].WeekNumber)
	_, err = time.Parse(time.RFC3339, got.Sources[0].UploadDate)
	assert.NoError(t, err)

	require.Len(t, got.Results.DailyData, 2)
	assert.Nil(t, got.Results.DailyData[0].MarketEvent)
	ev := got.Results.DailyData[1].MarketEvent
	require.NotNil(t, ev)
	assert.Equal(t, "FOMC", ev.Type)
	assert.Equal(t, "rate decision", ev.Reason)
	assert.Equal(t, 2.5, ev.Volatility)

	_, err = run(t, "analyze", "-i", week, "--event", "tuesday=FOMC:x")
	assert.Error(t, err)
}

func TestForecast_Weekly(t *testing.T) {
	dir := t.TempDir()
	week := writeWeek(t, dir, 5)
	doc := filepath.Join(dir, "weekly.json")
	require.NoError(t, os.WriteFile(doc, []byte(`{
		"dailyPredictions": [{"day": "Monday", "date": "2025-01-06", "topSetups": [
			{"session": "London", "level": "Low", "probability": 82, "expectedMove": 350,
			 "direction": "LONG", "reasoning": "London lows hold"}]}],
		"weeklyRecommendation": "Focus on London lows",
		"topTrades": [{"day": "Monday", "setup": "London Low Bounce", "probability": 82, "expectedMove": 350}]
	}`), 0644))
	txt := filepath.Join(dir, "weekly.txt")

	out, err := run(t, "forecast", "-i", week, "--forecast", doc, "--weekly", "--out", txt)
	require.NoError(t, err)
	assert.Contains(t, out, "SESSIONMAP WEEKLY FORECAST")
	assert.Contains(t, out, "Historical days:  5")
	assert.Contains(t, out, "1. Monday: London Low Bounce (82% probability, 350 pts)")
	assert.Contains(t, out, "London Low: 82% (LONG, 350 pts)")

	b, err := os.ReadFile(txt)
	require.NoError(t, err)
	assert.Equal(t, out, string(b))

	_, err = run(t, "forecast", "-i", week, "--forecast", doc, "--weekly", "--org", filepath.Join(dir, "x.org"))
	assert.Error(t, err)
}
