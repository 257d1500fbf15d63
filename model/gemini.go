package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rustyeddy/sessionmap/market"
)

const (
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel    = "gemini-2.5-flash"
)

// GeminiConfig configures the Gemini generateContent client.
type GeminiConfig struct {
	APIKey   string
	Model    string
	Endpoint string // base URL up to and including the API version
	Timeout  time.Duration

	HTTPClient *http.Client
}

// Gemini implements Analyzer over the Gemini REST API. It does not retry.
type Gemini struct {
	cfg    GeminiConfig
	client *http.Client
}

var _ Analyzer = (*Gemini)(nil)

func NewGemini(cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, newError("init", ErrMissingAPIKey, "no API key configured", nil)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultGeminiEndpoint
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Gemini{cfg: cfg, client: client}, nil
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

// AnalyzeChart sends the chart image with the extraction prompt.
func (g *Gemini) AnalyzeChart(ctx context.Context, c Chart) (market.Analysis, error) {
	const op = "analyze"
	if c.Data == "" {
		return market.Analysis{}, newError(op, ErrInvalidImage, "invalid image data provided", nil)
	}

	text, err := g.generate(ctx, op, []part{
		{InlineData: &inlineData{MimeType: c.MIMEType, Data: c.Data}},
		{Text: chartPrompt},
	})
	if err != nil {
		return market.Analysis{}, err
	}

	a, err := market.DecodeAnalysis([]byte(text))
	if err != nil {
		return market.Analysis{}, newError(op, ErrInvalidResponse, "the model returned an invalid analysis format", err)
	}
	a.FileName = c.Name
	return a, nil
}

// Forecast asks for weekly and next-day setups.
func (g *Gemini) Forecast(ctx context.Context, req ForecastRequest) (market.ForecastDocument, error) {
	const op = "forecast"
	prompt, err := ForecastPrompt(req)
	if err != nil {
		return market.ForecastDocument{}, newError(op, ErrRequest, "could not build the forecast prompt", err)
	}

	text, err := g.generate(ctx, op, []part{{Text: prompt}})
	if err != nil {
		return market.ForecastDocument{}, err
	}

	doc, err := market.DecodeForecast([]byte(text))
	if err != nil {
		return market.ForecastDocument{}, newError(op, ErrInvalidResponse, "the model returned an invalid strategy forecast format", err)
	}
	return doc, nil
}

// WeeklyForecast asks for the pattern-based outlook and stamps it with the
// request time and the history size.
func (g *Gemini) WeeklyForecast(ctx context.Context, req ForecastRequest) (market.WeeklyForecast, error) {
	const op = "weekly"
	prompt, err := WeeklyPrompt(req)
	if err != nil {
		return market.WeeklyForecast{}, newError(op, ErrRequest, "could not build the weekly prompt", err)
	}

	text, err := g.generate(ctx, op, []part{{Text: prompt}})
	if err != nil {
		return market.WeeklyForecast{}, err
	}

	wf, err := market.DecodeWeeklyForecast([]byte(text))
	if err != nil {
		return market.WeeklyForecast{}, newError(op, ErrInvalidResponse, "the model returned an invalid forecast format", err)
	}
	wf.GeneratedAt = req.Now
	if wf.GeneratedAt.IsZero() {
		wf.GeneratedAt = time.Now()
	}
	wf.HistoricalDays = req.Patterns.TotalDays
	return wf, nil
}

func (g *Gemini) generate(ctx context.Context, op string, parts []part) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Role: "user", Parts: parts}},
		GenerationConfig: generationConfig{ResponseMimeType: "application/json"},
	})
	if err != nil {
		return "", newError(op, ErrRequest, "could not encode request", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(g.cfg.Endpoint, "/"), g.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", newError(op, ErrRequest, "could not build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", newError(op, ErrRequest, "the model could not be reached", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newError(op, ErrRequest, "could not read the model response", err)
	}
	if resp.StatusCode >= 300 {
		return "", newError(op, ErrRequest,
			fmt.Sprintf("the model returned HTTP %d", resp.StatusCode),
			fmt.Errorf("%s", bytes.TrimSpace(respBytes)))
	}

	var gr generateResponse
	if err := json.Unmarshal(respBytes, &gr); err != nil {
		return "", newError(op, ErrInvalidResponse, "the model response was not JSON", err)
	}
	if len(gr.Candidates) == 0 {
		return "", newError(op, ErrInvalidResponse, "the model returned no candidates", nil)
	}

	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", newError(op, ErrInvalidResponse,
			fmt.Sprintf("the model returned no text (finish reason %q)", gr.Candidates[0].FinishReason), nil)
	}
	return text, nil
}
