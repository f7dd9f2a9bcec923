package telemetry

import (
	"context"
	"testing"
)

func TestNewOnNoopProvider(t *testing.T) {
	mt, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	mt.IntentAccepted(ctx, "move")
	mt.IntentRejected(ctx, "attack", "infeasible")
	mt.TurnChanged(ctx, true)
	mt.MatchFinished(ctx, "draw", "completed")
	if err := mt.ObserveActive(func() int { return 2 }); err != nil {
		t.Errorf("ObserveActive: %v", err)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var mt *Metrics
	ctx := context.Background()
	mt.IntentAccepted(ctx, "move")
	mt.IntentRejected(ctx, "move", "unauthorized")
	mt.TurnChanged(ctx, false)
	mt.MatchFinished(ctx, "player1_wins", "disconnect")
	if err := mt.ObserveActive(func() int { return 0 }); err != nil {
		t.Errorf("ObserveActive on nil: %v", err)
	}
}
