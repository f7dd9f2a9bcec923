package core

import (
	"math"
	"testing"
)

func TestBoxIntersects(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Box
		expected bool
	}{
		{
			name:     "overlapping boxes",
			a:        Box{0, 0, 10, 10},
			b:        Box{5, 5, 15, 15},
			expected: true,
		},
		{
			name:     "non-overlapping horizontal",
			a:        Box{0, 0, 10, 10},
			b:        Box{15, 0, 25, 10},
			expected: false,
		},
		{
			name:     "adjacent (shared edge)",
			a:        Box{0, 0, 10, 10},
			b:        Box{10, 0, 20, 10},
			expected: false,
		},
		{
			name:     "contained box",
			a:        Box{0, 0, 20, 20},
			b:        Box{5, 5, 10, 10},
			expected: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Intersects(tc.b); got != tc.expected {
				t.Errorf("Intersects() = %v, expected %v", got, tc.expected)
			}
			if got := tc.b.Intersects(tc.a); got != tc.expected {
				t.Errorf("Intersects() (reversed) = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestSegmentHitsBox(t *testing.T) {
	wall := Box{MinX: 1.5, MinZ: -1, MaxX: 2.5, MaxZ: 1}

	tests := []struct {
		name     string
		a, b     Vec
		expected bool
	}{
		{"through the wall", V(0, 0), V(4, 0), true},
		{"stops short", V(0, 0), V(1, 0), false},
		{"passes above", V(0, 3), V(4, 3), false},
		{"vertical through", V(2, -5), V(2, 5), true},
		{"diagonal miss", V(0, 2), V(1, 5), false},
		{"zero length inside", V(2, 0), V(2, 0), true},
		{"zero length outside", V(0, 0), V(0, 0), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SegmentHitsBox(tc.a, tc.b, wall); got != tc.expected {
				t.Errorf("SegmentHitsBox(%v, %v) = %v, expected %v", tc.a, tc.b, got, tc.expected)
			}
		})
	}
}

func TestDistToSegment(t *testing.T) {
	tests := []struct {
		p, a, b  Vec
		expected float64
	}{
		{V(2, 1), V(0, 0), V(4, 0), 1},   // perpendicular foot inside
		{V(-3, 4), V(0, 0), V(4, 0), 5},  // clamped to a
		{V(5, 0), V(0, 0), V(4, 0), 1},   // clamped to b
		{V(3, 4), V(0, 0), V(0, 0), 5},   // degenerate segment
	}

	for _, tc := range tests {
		got := DistToSegment(tc.p, tc.a, tc.b)
		if math.Abs(got-tc.expected) > 1e-9 {
			t.Errorf("DistToSegment(%v, %v, %v) = %f, expected %f", tc.p, tc.a, tc.b, got, tc.expected)
		}
	}
}

func TestVecSnapAndDistances(t *testing.T) {
	if got := V(2.6, -1.4).Snap(1); got != V(3, -1) {
		t.Errorf("Snap() = %v, expected (3,-1)", got)
	}
	if d := V(0, 0).Dist(V(3, 4)); d != 5 {
		t.Errorf("Dist() = %f, expected 5", d)
	}
	if m := V(0, 0).Manhattan(V(3, -4)); m != 7 {
		t.Errorf("Manhattan() = %f, expected 7", m)
	}
	if n := V(0, 0).Normalized(); n != V(0, 0) {
		t.Errorf("Normalized() of zero = %v, expected zero", n)
	}
}

func TestSideOpponent(t *testing.T) {
	if Player1.Opponent() != Player2 || Player2.Opponent() != Player1 {
		t.Error("Opponent() should flip active sides")
	}
	if SideNone.Opponent() != SideNone {
		t.Error("Opponent() of none should be none")
	}
	if SideNone.Valid() {
		t.Error("SideNone should not be valid")
	}
}

func TestClampF(t *testing.T) {
	tests := []struct {
		val, min, max, expected float64
	}{
		{5.5, 0.0, 10.0, 5.5},
		{-5.5, 0.0, 10.0, 0.0},
		{15.5, 0.0, 10.0, 10.0},
	}

	for _, tc := range tests {
		if got := ClampF(tc.val, tc.min, tc.max); got != tc.expected {
			t.Errorf("ClampF(%f, %f, %f) = %f, expected %f", tc.val, tc.min, tc.max, got, tc.expected)
		}
	}
}

func TestVecFinite(t *testing.T) {
	tests := []struct {
		v        Vec
		expected bool
	}{
		{V(0, 0), true},
		{V(-3.5, 1e300), true},
		{V(math.NaN(), 0), false},
		{V(0, math.NaN()), false},
		{V(math.Inf(1), 0), false},
		{V(0, math.Inf(-1)), false},
	}
	for _, tc := range tests {
		if got := tc.v.Finite(); got != tc.expected {
			t.Errorf("%v.Finite() = %v, expected %v", tc.v, got, tc.expected)
		}
	}
}
