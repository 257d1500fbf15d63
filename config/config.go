package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/rustyeddy/sessionmap/backtest"
	"github.com/rustyeddy/sessionmap/forecast"
	"github.com/rustyeddy/sessionmap/journal"
	"github.com/rustyeddy/sessionmap/market"
	"github.com/rustyeddy/sessionmap/model"
	"github.com/rustyeddy/sessionmap/risk"
	"github.com/rustyeddy/sessionmap/strategy"
	"gopkg.in/yaml.v3"
)

// Config represents the complete engine configuration
type Config struct {
	Account    AccountConfig    `json:"account" yaml:"account"`
	Instrument InstrumentConfig `json:"instrument" yaml:"instrument"`
	Risk       RiskConfig       `json:"risk" yaml:"risk"`
	Backtest   BacktestConfig   `json:"backtest" yaml:"backtest"`
	History    HistoryConfig    `json:"history" yaml:"history"`
	Forecast   ForecastConfig   `json:"forecast" yaml:"forecast"`
	Model      ModelConfig      `json:"model" yaml:"model"`
	Log        LogConfig        `json:"log" yaml:"log"`
	Trace      TraceConfig      `json:"trace" yaml:"trace"`
}

// AccountConfig contains the account the setups are sized against
type AccountConfig struct {
	Size     float64 `json:"size" yaml:"size"`
	Currency string  `json:"currency" yaml:"currency"`
}

// InstrumentConfig names the traded contract
type InstrumentConfig struct {
	Symbol     string  `json:"symbol" yaml:"symbol"`
	PointValue float64 `json:"point_value" yaml:"point_value"`
}

// RiskConfig contains the sizing policy
type RiskConfig struct {
	RiskPercent    float64 `json:"risk_percent" yaml:"risk_percent"` // 2 means 2%
	MaxStopDollars float64 `json:"max_stop_dollars" yaml:"max_stop_dollars"`
	MaxStopPoints  float64 `json:"max_stop_points" yaml:"max_stop_points"`
	MinRR          float64 `json:"min_rr,omitempty" yaml:"min_rr,omitempty"`
}

// BacktestConfig contains the trade synthesis rule
type BacktestConfig struct {
	StopLossAmount float64 `json:"stop_loss_amount" yaml:"stop_loss_amount"`
}

// HistoryConfig bounds the rolling history
type HistoryConfig struct {
	MaxDays         int `json:"max_days" yaml:"max_days"`
	MinForecastDays int `json:"min_forecast_days" yaml:"min_forecast_days"`
}

// ForecastConfig controls the confluence selection
type ForecastConfig struct {
	MinConfluence int `json:"min_confluence" yaml:"min_confluence"`
	TopSetups     int `json:"top_setups" yaml:"top_setups"`
}

// ModelConfig contains the chart and forecast model parameters
type ModelConfig struct {
	Provider  string `json:"provider" yaml:"provider"`
	Model     string `json:"model" yaml:"model"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	APIKeyEnv string `json:"api_key_env" yaml:"api_key_env"`
	Timeout   string `json:"timeout" yaml:"timeout"` // e.g. "90s"
}

// ParseTimeout converts the timeout string to time.Duration
func (m ModelConfig) ParseTimeout() (time.Duration, error) {
	if m.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(m.Timeout)
}

// APIKey reads the key from the environment variable named by APIKeyEnv.
func (m ModelConfig) APIKey() string {
	if m.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(m.APIKeyEnv)
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

type TraceConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on extension)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Unset keys keep their defaults
	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.Size <= 0 {
		return fmt.Errorf("account.size must be positive")
	}
	if c.Instrument.Symbol == "" {
		return fmt.Errorf("instrument.symbol is required")
	}
	meta, ok := market.Instruments[c.Instrument.Symbol]
	if !ok {
		return fmt.Errorf("unknown instrument: %s", c.Instrument.Symbol)
	}
	if c.Instrument.PointValue <= 0 {
		return fmt.Errorf("instrument.point_value must be positive")
	}
	if c.Instrument.PointValue != meta.PointValue {
		return fmt.Errorf("instrument.point_value %v does not match %s (%v)",
			c.Instrument.PointValue, meta.Name, meta.PointValue)
	}
	if c.Risk.RiskPercent <= 0 || c.Risk.RiskPercent > 100 {
		return fmt.Errorf("risk.risk_percent must be between 0 and 100")
	}
	if c.Risk.MaxStopPoints <= 0 {
		return fmt.Errorf("risk.max_stop_points must be positive")
	}
	if math.Abs(c.Risk.MaxStopDollars-c.Risk.MaxStopPoints*c.Instrument.PointValue) > 1e-9 {
		return fmt.Errorf("risk.max_stop_dollars must equal max_stop_points * point_value")
	}
	if c.Risk.MinRR < 0 {
		return fmt.Errorf("risk.min_rr must not be negative")
	}
	if c.Backtest.StopLossAmount >= 0 {
		return fmt.Errorf("backtest.stop_loss_amount must be negative")
	}
	if c.History.MaxDays <= 0 {
		return fmt.Errorf("history.max_days must be positive")
	}
	if c.History.MinForecastDays < 0 || c.History.MinForecastDays > c.History.MaxDays {
		return fmt.Errorf("history.min_forecast_days must be between 0 and max_days")
	}
	if c.Forecast.MinConfluence < 0 {
		return fmt.Errorf("forecast.min_confluence must not be negative")
	}
	if c.Forecast.TopSetups <= 0 {
		return fmt.Errorf("forecast.top_setups must be positive")
	}
	if c.Model.Provider != "gemini" {
		return fmt.Errorf("model.provider must be 'gemini'")
	}
	if _, err := c.Model.ParseTimeout(); err != nil {
		return fmt.Errorf("model.timeout: %w", err)
	}
	return nil
}

// Policy projects the account and risk sections into a sizing policy.
func (c *Config) Policy() risk.Policy {
	return risk.Policy{
		AccountSize:     c.Account.Size,
		RiskPercent:     c.Risk.RiskPercent,
		MaxStopCurrency: c.Risk.MaxStopDollars,
		MaxStopPoints:   c.Risk.MaxStopPoints,
		PointValue:      c.Instrument.PointValue,
		MinRR:           c.Risk.MinRR,
	}
}

func (c *Config) BacktestParams() backtest.Params {
	return backtest.Params{
		PointValue:     c.Instrument.PointValue,
		StopLossAmount: c.Backtest.StopLossAmount,
	}
}

// ForecastBuilder sizes forecasts with this configuration.
func (c *Config) ForecastBuilder() forecast.Builder {
	return forecast.Builder{
		Policy:        c.Policy(),
		Backtest:      c.BacktestParams(),
		MinConfluence: c.Forecast.MinConfluence,
		TopSetups:     c.Forecast.TopSetups,
	}
}

// GeminiConfig builds the model client configuration. The key comes from
// the environment.
func (c *Config) GeminiConfig() (model.GeminiConfig, error) {
	timeout, err := c.Model.ParseTimeout()
	if err != nil {
		return model.GeminiConfig{}, err
	}
	return model.GeminiConfig{
		APIKey:   c.Model.APIKey(),
		Model:    c.Model.Model,
		Endpoint: c.Model.Endpoint,
		Timeout:  timeout,
	}, nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	p := risk.DefaultPolicy()
	bt := backtest.DefaultParams()
	return &Config{
		Account: AccountConfig{
			Size:     p.AccountSize,
			Currency: "USD",
		},
		Instrument: InstrumentConfig{
			Symbol:     "MNQ",
			PointValue: p.PointValue,
		},
		Risk: RiskConfig{
			RiskPercent:    p.RiskPercent,
			MaxStopDollars: p.MaxStopCurrency,
			MaxStopPoints:  p.MaxStopPoints,
		},
		Backtest: BacktestConfig{
			StopLossAmount: bt.StopLossAmount,
		},
		History: HistoryConfig{
			MaxDays:         journal.DefaultMaxDays,
			MinForecastDays: forecast.DefaultMinHistory,
		},
		Forecast: ForecastConfig{
			MinConfluence: strategy.DefaultMinConfluence,
			TopSetups:     strategy.DefaultTopSetups,
		},
		Model: ModelConfig{
			Provider:  "gemini",
			Model:     model.DefaultGeminiModel,
			APIKeyEnv: "GEMINI_API_KEY",
			Timeout:   "90s",
		},
		Log: LogConfig{
			Level:  "INFO",
			Pretty: true,
		},
	}
}
