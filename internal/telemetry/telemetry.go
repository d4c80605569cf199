// Package telemetry emits OpenTelemetry spans and metrics for sessions, turns
// and handoffs. Instruments are obtained from the global providers, so nothing
// is exported until the application installs a TracerProvider or
// MeterProvider.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/hupe1980/agentcrew"

// StartSessionSpan starts the root span of a session.
func StartSessionSpan(ctx context.Context, sessionID, policy string) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, "session",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.String("session.policy", policy),
		),
	)
}

// StartTurnSpan starts a span for one agent turn or human input request.
func StartTurnSpan(ctx context.Context, agent string, index int) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, "turn",
		trace.WithAttributes(
			attribute.String("turn.agent", agent),
			attribute.Int("turn.index", index),
		),
	)
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Metrics holds the metric instruments. A nil *Metrics records nothing.
type Metrics struct {
	SessionsStarted   metric.Int64Counter
	SessionsCompleted metric.Int64Counter
	SessionsFailed    metric.Int64Counter
	Turns             metric.Int64Counter
	TurnDuration      metric.Float64Histogram
	Handoffs          metric.Int64Counter
}

// NewMetrics creates all metric instruments from meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.SessionsStarted, err = meter.Int64Counter("agentcrew.sessions.started",
		metric.WithDescription("Number of sessions started"))
	if err != nil {
		return nil, err
	}

	m.SessionsCompleted, err = meter.Int64Counter("agentcrew.sessions.completed",
		metric.WithDescription("Number of sessions resolved with an output"))
	if err != nil {
		return nil, err
	}

	m.SessionsFailed, err = meter.Int64Counter("agentcrew.sessions.failed",
		metric.WithDescription("Number of sessions resolved with an error"))
	if err != nil {
		return nil, err
	}

	m.Turns, err = meter.Int64Counter("agentcrew.turns",
		metric.WithDescription("Number of agent turns"))
	if err != nil {
		return nil, err
	}

	m.TurnDuration, err = meter.Float64Histogram("agentcrew.turn.duration_seconds",
		metric.WithDescription("Agent turn duration in seconds"))
	if err != nil {
		return nil, err
	}

	m.Handoffs, err = meter.Int64Counter("agentcrew.handoffs",
		metric.WithDescription("Number of transfer directives by outcome"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the instruments of the global MeterProvider, or nil if
// they could not be created.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics, _ = NewMetrics(otel.Meter(instrumentationName))
	})
	return defaultMetrics
}

// SessionStarted counts a started session.
func (m *Metrics) SessionStarted(ctx context.Context, policy string) {
	if m == nil {
		return
	}
	m.SessionsStarted.Add(ctx, 1, metric.WithAttributes(attribute.String("policy", policy)))
}

// SessionFinished counts a resolved session by outcome.
func (m *Metrics) SessionFinished(ctx context.Context, policy string, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("policy", policy))
	if err != nil {
		m.SessionsFailed.Add(ctx, 1, attrs)
		return
	}
	m.SessionsCompleted.Add(ctx, 1, attrs)
}

// TurnFinished counts an agent turn and records its duration.
func (m *Metrics) TurnFinished(ctx context.Context, agent string, dur time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("agent", agent),
		attribute.Bool("success", err == nil),
	)
	m.Turns.Add(ctx, 1, attrs)
	m.TurnDuration.Record(ctx, dur.Seconds(), attrs)
}

// Handoff counts a transfer directive.
func (m *Metrics) Handoff(ctx context.Context, source, target string, accepted bool) {
	if m == nil {
		return
	}
	m.Handoffs.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("target", target),
		attribute.Bool("accepted", accepted),
	))
}
