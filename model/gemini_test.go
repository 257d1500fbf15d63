package model

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rustyeddy/sessionmap/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// geminiServer answers generateContent with text as the single part.
func geminiServer(t *testing.T, status int, text string, seen *generateRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "k3y", r.Header.Get("x-goog-api-key"))
		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.WriteHeader(status)
		if status >= 300 {
			_, _ = w.Write([]byte(`{"error": {"message": "quota"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content":      map[string]any{"parts": []any{map[string]any{"text": text}}},
				"finishReason": "STOP",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestGemini(t *testing.T, url string) *Gemini {
	t.Helper()
	g, err := NewGemini(GeminiConfig{APIKey: "k3y", Model: "gemini-test", Endpoint: url + "/v1beta", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return g
}

func TestNewGemini_MissingKey(t *testing.T) {
	t.Parallel()

	_, err := NewGemini(GeminiConfig{APIKey: " "})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	var me *Error
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "init", me.Op)
}

func TestGemini_AnalyzeChart(t *testing.T) {
	t.Parallel()

	var seen generateRequest
	srv := geminiServer(t, http.StatusOK, "```json\n"+`{"days": [{"date": "2025-11-10", "dayOfWeek": "Monday",
		"reactions": [{"levelName": "Asia Low", "reacted": true, "move": 120, "outcome": "LONG"}]}],
		"weekHigh": 25400, "weekLow": 25100, "volatility": "HIGH"}`+"\n```", &seen)

	g := newTestGemini(t, srv.URL)
	a, err := g.AnalyzeChart(context.Background(), Chart{Name: "week46.png", MIMEType: "image/png", Data: "aGVsbG8="})
	require.NoError(t, err)

	require.Len(t, a.Days, 1)
	assert.Equal(t, 120.0, a.Days[0].Reactions[0].Move)
	assert.Equal(t, "HIGH", a.Volatility)
	assert.Equal(t, "week46.png", a.FileName)

	require.Len(t, seen.Contents, 1)
	require.Len(t, seen.Contents[0].Parts, 2)
	require.NotNil(t, seen.Contents[0].Parts[0].InlineData)
	assert.Equal(t, "image/png", seen.Contents[0].Parts[0].InlineData.MimeType)
	assert.Equal(t, "aGVsbG8=", seen.Contents[0].Parts[0].InlineData.Data)
	assert.Contains(t, seen.Contents[0].Parts[1].Text, "Asia High, Asia Low")
	assert.Equal(t, "application/json", seen.GenerationConfig.ResponseMimeType)
}

func TestGemini_AnalyzeChart_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		text   string
		chart  Chart
		kind   error
		msg    string
	}{
		{"http error", http.StatusTooManyRequests, "", Chart{Data: "eA=="}, ErrRequest, "HTTP 429"},
		{"not an object", http.StatusOK, "[1, 2]", Chart{Data: "eA=="}, ErrInvalidResponse, "invalid analysis format"},
		{"prose", http.StatusOK, "I cannot read this chart", Chart{Data: "eA=="}, ErrInvalidResponse, "invalid analysis format"},
		{"empty text", http.StatusOK, "  ", Chart{Data: "eA=="}, ErrInvalidResponse, "no text"},
		{"no image", http.StatusOK, "{}", Chart{}, ErrInvalidImage, "invalid image data"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := geminiServer(t, tt.status, tt.text, nil)
			_, err := newTestGemini(t, srv.URL).AnalyzeChart(context.Background(), tt.chart)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			var me *Error
			require.True(t, errors.As(err, &me))
			assert.Contains(t, me.Msg, tt.msg)
		})
	}
}

func TestGemini_Forecast(t *testing.T) {
	t.Parallel()

	var seen generateRequest
	srv := geminiServer(t, http.StatusOK, `{"weeklyPredictions": [
		{"setupName": "London Low Bounce", "strategies": ["ICT"], "confluenceScore": 1,
		 "entryPrice": 20150, "technicalStopLoss": 20050, "takeProfit": 20450, "direction": "LONG"}
	], "nextDayPrediction": null}`, &seen)

	doc, err := newTestGemini(t, srv.URL).Forecast(context.Background(), ForecastRequest{
		Now: time.Date(2025, 11, 12, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, doc.WeeklyPredictions, 1)
	assert.Nil(t, doc.NextDayPrediction)
	assert.Contains(t, seen.Contents[0].Parts[0].Text, "Monday 2025-11-17")
}

func TestGemini_Forecast_InvalidFormat(t *testing.T) {
	t.Parallel()

	srv := geminiServer(t, http.StatusOK, "not json", nil)
	_, err := newTestGemini(t, srv.URL).Forecast(context.Background(), ForecastRequest{})
	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.Contains(t, err.Error(), "invalid strategy forecast format")
}

func TestGemini_WeeklyForecast(t *testing.T) {
	t.Parallel()

	var seen generateRequest
	srv := geminiServer(t, http.StatusOK, `{"dailyPredictions": [
		{"day": "Monday", "date": "2025-11-17", "topSetups": [
			{"session": "London", "level": "Low", "probability": 82, "expectedMove": 350, "direction": "LONG"}]}
	], "weeklyRecommendation": "London lows", "topTrades": [], "historicalDays": 400}`, &seen)

	now := time.Date(2025, 11, 12, 10, 0, 0, 0, time.UTC)
	wf, err := newTestGemini(t, srv.URL).WeeklyForecast(context.Background(), ForecastRequest{
		Patterns: stats.HistoricalPatterns{TotalDays: 14},
		Now:      now,
	})
	require.NoError(t, err)
	require.Len(t, wf.DailyPredictions, 1)
	assert.Equal(t, "London lows", wf.WeeklyRecommendation)
	assert.Equal(t, now, wf.GeneratedAt)
	assert.Equal(t, 14, wf.HistoricalDays)
	assert.Contains(t, seen.Contents[0].Parts[0].Text, "Days analyzed: 14")
}

func TestGemini_WeeklyForecast_InvalidFormat(t *testing.T) {
	t.Parallel()

	srv := geminiServer(t, http.StatusOK, "[1, 2]", nil)
	_, err := newTestGemini(t, srv.URL).WeeklyForecast(context.Background(), ForecastRequest{})
	assert.ErrorIs(t, err, ErrInvalidResponse)

	var me *Error
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "weekly", me.Op)
	assert.Contains(t, me.Msg, "invalid forecast format")
}

func TestGemini_ContextCanceled(t *testing.T) {
	t.Parallel()

	srv := geminiServer(t, http.StatusOK, "{}", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestGemini(t, srv.URL).AnalyzeChart(ctx, Chart{Data: "eA=="})
	assert.ErrorIs(t, err, ErrRequest)
	assert.ErrorIs(t, err, context.Canceled)
}
