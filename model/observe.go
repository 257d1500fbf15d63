package model

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/rustyeddy/sessionmap/logger"
	"github.com/rustyeddy/sessionmap/market"
	"github.com/rustyeddy/sessionmap/trace"
)

// observed wraps an Analyzer with logging and tracing.
type observed struct {
	next Analyzer
}

var _ Analyzer = (*observed)(nil)

// Observe wraps a with a span and a log line per call.
func Observe(a Analyzer) Analyzer {
	return &observed{next: a}
}

func (o *observed) AnalyzeChart(ctx context.Context, c Chart) (market.Analysis, error) {
	ctx, span := trace.StartSpan(ctx, "model.AnalyzeChart")
	defer span.End()
	span.SetAttributes(
		attribute.String("chart.name", c.Name),
		attribute.String("chart.mime", c.MIMEType),
	)

	withTrace(ctx, logger.Debug()).Str("chart", c.Name).Msg("analyzing chart")
	start := time.Now()

	a, err := o.next.AnalyzeChart(ctx, c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		withTrace(ctx, logger.Error()).Err(err).Str("chart", c.Name).Dur("took", time.Since(start)).Msg("chart analysis failed")
		return market.Analysis{}, err
	}

	span.SetAttributes(attribute.Int("analysis.days", len(a.Days)))
	withTrace(ctx, logger.Info()).
		Str("chart", c.Name).
		Int("days", len(a.Days)).
		Dur("took", time.Since(start)).
		Msg("chart analyzed")
	return a, nil
}

func (o *observed) Forecast(ctx context.Context, req ForecastRequest) (market.ForecastDocument, error) {
	ctx, span := trace.StartSpan(ctx, "model.Forecast")
	defer span.End()
	span.SetAttributes(attribute.Int("history.days", req.Patterns.TotalDays))

	withTrace(ctx, logger.Debug()).Int("history_days", req.Patterns.TotalDays).Msg("requesting forecast")
	start := time.Now()

	doc, err := o.next.Forecast(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		withTrace(ctx, logger.Error()).Err(err).Dur("took", time.Since(start)).Msg("forecast failed")
		return market.ForecastDocument{}, err
	}

	next := 0
	if doc.NextDayPrediction != nil {
		next = len(doc.NextDayPrediction.TopSetups)
	}
	span.SetAttributes(
		attribute.Int("forecast.weekly", len(doc.WeeklyPredictions)),
		attribute.Int("forecast.next_day", next),
	)
	withTrace(ctx, logger.Info()).
		Int("weekly", len(doc.WeeklyPredictions)).
		Int("next_day", next).
		Dur("took", time.Since(start)).
		Msg("forecast received")
	return doc, nil
}

func (o *observed) WeeklyForecast(ctx context.Context, req ForecastRequest) (market.WeeklyForecast, error) {
	ctx, span := trace.StartSpan(ctx, "model.WeeklyForecast")
	defer span.End()
	span.SetAttributes(attribute.Int("history.days", req.Patterns.TotalDays))

	withTrace(ctx, logger.Debug()).Int("history_days", req.Patterns.TotalDays).Msg("requesting weekly forecast")
	start := time.Now()

	wf, err := o.next.WeeklyForecast(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		withTrace(ctx, logger.Error()).Err(err).Dur("took", time.Since(start)).Msg("weekly forecast failed")
		return market.WeeklyForecast{}, err
	}

	span.SetAttributes(
		attribute.Int("forecast.days", len(wf.DailyPredictions)),
		attribute.Int("forecast.top_trades", len(wf.TopTrades)),
	)
	withTrace(ctx, logger.Info()).
		Int("days", len(wf.DailyPredictions)).
		Int("top_trades", len(wf.TopTrades)).
		Dur("took", time.Since(start)).
		Msg("weekly forecast received")
	return wf, nil
}

// withTrace tags e with the ids of the span in ctx, when tracing is on.
func withTrace(ctx context.Context, e *zerolog.Event) *zerolog.Event {
	if traceID, spanID, ok := trace.Fields(ctx); ok {
		e = e.Str("trace_id", traceID).Str("span_id", spanID)
	}
	return e
}
