// Package telemetry defines the metric instruments of the battle host.
// Instruments come from the global OTel meter provider, which is a no-op
// unless the binary installs an SDK provider.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/vovakirdan/skirmish/internal/telemetry"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics groups the host's instruments. A nil *Metrics records nothing.
type Metrics struct {
	accepted metric.Int64Counter
	rejected metric.Int64Counter
	turns    metric.Int64Counter
	finished metric.Int64Counter
	active   metric.Int64ObservableGauge
}

// New creates the instruments on the global meter.
func New() (*Metrics, error) {
	m := meter()
	mt := &Metrics{}

	var err error
	mt.accepted, err = m.Int64Counter(
		"battle.intents.accepted",
		metric.WithDescription("Intents committed by the host"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating accepted counter: %w", err)
	}

	mt.rejected, err = m.Int64Counter(
		"battle.intents.rejected",
		metric.WithDescription("Intents refused by the host"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rejected counter: %w", err)
	}

	mt.turns, err = m.Int64Counter(
		"battle.turns.changed",
		metric.WithDescription("Turn handovers, including timer expiry"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating turns counter: %w", err)
	}

	mt.finished, err = m.Int64Counter(
		"battle.matches.finished",
		metric.WithDescription("Matches that reached an end"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating finished counter: %w", err)
	}

	mt.active, err = m.Int64ObservableGauge(
		"battle.matches.active",
		metric.WithDescription("Matches currently hosted"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating active gauge: %w", err)
	}

	return mt, nil
}

// ObserveActive registers count as the source of the active-matches gauge.
func (mt *Metrics) ObserveActive(count func() int) error {
	if mt == nil {
		return nil
	}
	_, err := meter().RegisterCallback(
		func(_ context.Context, o metric.Observer) error {
			o.ObserveInt64(mt.active, int64(count()))
			return nil
		},
		mt.active,
	)
	if err != nil {
		return fmt.Errorf("registering active callback: %w", err)
	}
	return nil
}

// IntentAccepted counts a committed intent of kind.
func (mt *Metrics) IntentAccepted(ctx context.Context, kind string) {
	if mt == nil {
		return
	}
	mt.accepted.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// IntentRejected counts a refused intent by kind and rejection class.
func (mt *Metrics) IntentRejected(ctx context.Context, kind, class string) {
	if mt == nil {
		return
	}
	mt.rejected.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("class", class),
	))
}

// TurnChanged counts one handover; expired marks timer-driven ones.
func (mt *Metrics) TurnChanged(ctx context.Context, expired bool) {
	if mt == nil {
		return
	}
	mt.turns.Add(ctx, 1, metric.WithAttributes(attribute.Bool("expired", expired)))
}

// MatchFinished counts a finished match by result and end reason.
func (mt *Metrics) MatchFinished(ctx context.Context, result, reason string) {
	if mt == nil {
		return
	}
	mt.finished.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
		attribute.String("reason", reason),
	))
}
