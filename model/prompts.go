package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/rustyeddy/sessionmap/market"
)

// recentDays is how much raw price action goes into a forecast prompt.
const recentDays = 5

const chartPrompt = `You are an institutional analyst reading a 1-hour NQ futures chart.

Session boxes on the chart:
- PINK = Asia
- BLUE = London
- ORANGE = New York

For every visible trading day extract:
1. The high and low of each session (exact prices).
2. Every test of a session high or low: the tested price, the level name
   (one of Asia High, Asia Low, London High, London Low, New York High,
   New York Low), whether price reacted, the reaction type, the move in
   points and the trade direction it implied (LONG or SHORT).
3. Any news event that moved the market.

Respond ONLY with a JSON object of this shape:

{
  "days": [
    {
      "date": "2025-11-10",
      "dayOfWeek": "Monday",
      "sessions": [
        {"name": "Asia", "high": 25200, "low": 25100},
        {"name": "London", "high": 25350, "low": 25180},
        {"name": "NewYork", "high": 25400, "low": 25250}
      ],
      "reactions": [
        {"testedLevel": 25100, "levelName": "Asia Low", "reacted": true,
         "reactionType": "bounce", "move": 250, "outcome": "LONG"}
      ]
    }
  ],
  "weekHigh": 25400,
  "weekLow": 25100,
  "volatility": "NORMAL"
}

No markdown, no explanations.`

var forecastTmpl = template.Must(template.New("forecast").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return t.Format("2006-01-02") },
}).Parse(`You are a quantitative strategist trading NQ futures. Using the history
below, propose high probability setups and score how many of these
strategies agree with each one:

1. ICT: order blocks, fair value gaps, liquidity sweeps
2. SMC: break of structure, change of character
3. SESSION: Asia / London / New York high and low reactions
4. SUPPLY_DEMAND: fresh and tested zones
5. MARKET_PROFILE: value area, point of control

HISTORY:
- Days analyzed: {{.Patterns.TotalDays}}
- Best day: {{.Patterns.BestDay}}
- Best session: {{.Patterns.BestSession}}
- Success by weekday: {{.ByDay}}

RECENT PRICE ACTION:
{{- range .Recent}}
{{.}}
{{- end}}

PREDICT:
1. Next week, Monday {{date .NextMonday}} through Friday.
2. Tomorrow, {{date .Tomorrow}} ({{.Tomorrow.Weekday}}).

For each setup give the strategies that align, a confluence score (1-5),
the entry price, a technical stop loss taken from structure, a take profit,
the direction (LONG or SHORT), a probability in percent, the reasoning and
the technical details. Do not size positions.

Respond ONLY with a JSON object of this shape:

{
  "weeklyPredictions": [
    {"date": "{{date .NextMonday}}", "dayOfWeek": "Monday",
     "setupName": "London Low Bounce + Bullish Order Block",
     "strategies": ["ICT", "SESSION", "SUPPLY_DEMAND"], "confluenceScore": 3,
     "entryPrice": 20150, "technicalStopLoss": 20050, "takeProfit": 20450,
     "direction": "LONG", "probability": 85,
     "reasoning": "...", "technicalDetails": "..."}
  ],
  "nextDayPrediction": {
    "date": "{{date .Tomorrow}}", "dayOfWeek": "{{.Tomorrow.Weekday}}",
    "marketBias": "BULLISH",
    "keyLevels": {"resistance": [20500, 20600], "support": [20100, 20000]},
    "recommendation": "...",
    "topSetups": [
      {"setupName": "Asia Low Sweep + OB Entry", "strategies": ["ICT", "SESSION"],
       "confluenceScore": 2, "entryPrice": 20120, "technicalStopLoss": 20050,
       "takeProfit": 20350, "direction": "LONG", "probability": 78,
       "reasoning": "...", "technicalDetails": "..."}
    ]
  }
}

No markdown, no explanations.`))

var weeklyTmpl = template.Must(template.New("weekly").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return t.Format("2006-01-02") },
}).Parse(`You are a quantitative trading strategist. Using the history below,
predict which session levels are most likely to react next week.

HISTORY:
- Days analyzed: {{.Patterns.TotalDays}}
- Best day: {{.Patterns.BestDay}}
- Best session: {{.Patterns.BestSession}}
- Success by weekday: {{.ByDay}}

For Monday {{date .NextMonday}} through Friday give:
1. The highest probability setups (which session levels are likely to react).
2. The expected move in points.
3. A trading recommendation.

Respond ONLY with a JSON object of this shape:

{
  "dailyPredictions": [
    {"day": "Monday", "date": "{{date .NextMonday}}", "topSetups": [
      {"session": "London", "level": "Low", "probability": 82, "expectedMove": 350,
       "direction": "LONG", "reasoning": "London lows hold 82% of Mondays"}
    ]}
  ],
  "weeklyRecommendation": "Focus on London session lows",
  "topTrades": [
    {"day": "Monday", "setup": "London Low Bounce", "probability": 82, "expectedMove": 350}
  ]
}

No markdown, no explanations.`))

// WeeklyPrompt renders the pattern-only weekly prompt for req. Recent price
// action is not sent.
func WeeklyPrompt(req ForecastRequest) (string, error) {
	byDay, err := json.Marshal(req.Patterns.ByDay)
	if err != nil {
		return "", err
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	var buf bytes.Buffer
	err = weeklyTmpl.Execute(&buf, struct {
		ForecastRequest
		ByDay      string
		NextMonday time.Time
	}{
		ForecastRequest: req,
		ByDay:           string(byDay),
		NextMonday:      nextMonday(now),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ForecastPrompt renders the forecast prompt for req.
func ForecastPrompt(req ForecastRequest) (string, error) {
	byDay, err := json.Marshal(req.Patterns.ByDay)
	if err != nil {
		return "", err
	}

	recent := req.Recent
	if len(recent) > recentDays {
		recent = recent[len(recent)-recentDays:]
	}
	lines := make([]string, len(recent))
	for i, d := range recent {
		lines[i] = priceAction(d)
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	var buf bytes.Buffer
	err = forecastTmpl.Execute(&buf, struct {
		ForecastRequest
		ByDay      string
		Recent     []string
		NextMonday time.Time
		Tomorrow   time.Time
	}{
		ForecastRequest: req,
		ByDay:           string(byDay),
		Recent:          lines,
		NextMonday:      nextMonday(now),
		Tomorrow:        now.AddDate(0, 0, 1),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// nextMonday is the first Monday strictly after t.
func nextMonday(t time.Time) time.Time {
	days := (int(time.Monday) - int(t.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return t.AddDate(0, 0, days)
}

func priceAction(d market.DailyData) string {
	parts := make([]string, 0, len(market.SessionNames))
	for _, name := range market.SessionNames {
		r := "n/a"
		if s, ok := d.Session(name); ok {
			r = fmt.Sprintf("%g-%g", s.High, s.Low)
		}
		parts = append(parts, name+" "+r)
	}
	return fmt.Sprintf("%s %s: %s", d.DayOfWeek, d.Date, strings.Join(parts, ", "))
}
