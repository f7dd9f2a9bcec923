package battle

import (
	"testing"

	"github.com/vovakirdan/skirmish/internal/core"
)

func TestRegistryIDsNeverReused(t *testing.T) {
	r := NewRegistry()
	a, _ := r.Spawn(core.Player1, core.V(0, 0), soldier)
	b, _ := r.Spawn(core.Player2, core.V(1, 0), soldier)
	if a.ID == b.ID {
		t.Fatalf("duplicate IDs: %d", a.ID)
	}

	r.Remove(b.ID)
	c, _ := r.Spawn(core.Player2, core.V(2, 0), soldier)
	if c.ID == b.ID {
		t.Errorf("ID %d was reused after removal", b.ID)
	}
	if _, ok := r.Get(b.ID); ok {
		t.Error("removed unit must be absent")
	}
}

func TestRegistryRejectsNeutralOwner(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Spawn(core.SideNone, core.V(0, 0), soldier); err == nil {
		t.Error("expected error spawning a neutral unit")
	}
}

func TestRegistryQueries(t *testing.T) {
	r := NewRegistry()
	r.Spawn(core.Player1, core.V(0, 0), soldier)
	r.Spawn(core.Player1, core.V(5, 0), soldier)
	r.Spawn(core.Player2, core.V(2, 1), soldier)

	if got := r.Count(core.Player1); got != 2 {
		t.Errorf("Count(player1) = %d, expected 2", got)
	}
	if got := len(r.BySide(core.Player2)); got != 1 {
		t.Errorf("BySide(player2) = %d units, expected 1", got)
	}

	ids := r.UnitsOverlapping(core.V(0.5, 0), 1)
	if len(ids) != 1 || ids[0] != 1 {
		t.Errorf("UnitsOverlapping = %v, expected [1]", ids)
	}

	ids = r.UnitsAlongSegment(core.V(0, 1), core.V(5, 1), 0.5)
	if len(ids) != 1 || ids[0] != 3 {
		t.Errorf("UnitsAlongSegment = %v, expected [3]", ids)
	}
}

func TestNewRegistryFromContinuesIDs(t *testing.T) {
	r := NewRegistryFrom([]Unit{
		{ID: 4, Owner: core.Player1},
		{ID: 9, Owner: core.Player2},
	})
	u, err := r.Spawn(core.Player1, core.V(0, 0), soldier)
	if err != nil {
		t.Fatalf("Spawn() error: %v", err)
	}
	if u.ID != 10 {
		t.Errorf("next ID = %d, expected 10", u.ID)
	}
}

func TestParseUnitKind(t *testing.T) {
	tests := []struct {
		in       string
		expected UnitKind
		wantErr  bool
	}{
		{"melee", KindMelee, false},
		{"ranged", KindRanged, false},
		{"", KindMelee, false},
		{"cavalry", KindMelee, true},
	}
	for _, tc := range tests {
		got, err := ParseUnitKind(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseUnitKind(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if got != tc.expected {
			t.Errorf("ParseUnitKind(%q) = %v, expected %v", tc.in, got, tc.expected)
		}
	}
}
