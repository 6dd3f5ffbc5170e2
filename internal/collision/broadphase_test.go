package collision

import (
	"testing"

	"github.com/jakecoffman/cp"
)

func TestOverlap(t *testing.T) {
	cases := []struct {
		name string
		a, b Circle
		want bool
	}{
		{
			"separated",
			Circle{Pos: cp.Vector{X: 0, Y: 0}, Radius: 5},
			Circle{Pos: cp.Vector{X: 20, Y: 0}, Radius: 5},
			false,
		},
		{
			"touching",
			Circle{Pos: cp.Vector{X: 0, Y: 0}, Radius: 5},
			Circle{Pos: cp.Vector{X: 10, Y: 0}, Radius: 5},
			true,
		},
		{
			"intersecting",
			Circle{Pos: cp.Vector{X: 0, Y: 0}, Radius: 8},
			Circle{Pos: cp.Vector{X: 5, Y: 5}, Radius: 8},
			true,
		},
		{
			"contained",
			Circle{Pos: cp.Vector{X: 0, Y: 0}, Radius: 40},
			Circle{Pos: cp.Vector{X: 1, Y: 1}, Radius: 2},
			true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlap(tc.a, tc.b); got != tc.want {
				t.Fatalf("Overlap = %v, want %v", got, tc.want)
			}
			if got := Overlap(tc.b, tc.a); got != tc.want {
				t.Fatalf("Overlap not symmetric: %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScanPairsStableOrder(t *testing.T) {
	ships := []Circle{
		{Pos: cp.Vector{X: 0, Y: 0}, Radius: 10},
		{Pos: cp.Vector{X: 100, Y: 0}, Radius: 10},
	}
	rocks := []Circle{
		{Pos: cp.Vector{X: 5, Y: 0}, Radius: 10},
		{Pos: cp.Vector{X: 500, Y: 500}, Radius: 10},
		{Pos: cp.Vector{X: 95, Y: 0}, Radius: 10},
	}

	pairs := ScanPairs(ships, rocks)
	want := []Pair{{A: 0, B: 0}, {A: 1, B: 2}}
	if len(pairs) != len(want) {
		t.Fatalf("expected %d pairs, got %d: %v", len(want), len(pairs), pairs)
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Fatalf("pair %d = %+v, want %+v", i, pairs[i], want[i])
		}
	}
}

func TestScanPairsEmptyInputs(t *testing.T) {
	if pairs := ScanPairs(nil, nil); len(pairs) != 0 {
		t.Fatalf("expected no pairs for empty inputs, got %v", pairs)
	}
	if pairs := ScanPairs([]Circle{{Radius: 1}}, nil); len(pairs) != 0 {
		t.Fatalf("expected no pairs without targets, got %v", pairs)
	}
}

func TestFirstHit(t *testing.T) {
	probe := Circle{Pos: cp.Vector{X: 0, Y: 0}, Radius: 5}
	targets := []Circle{
		{Pos: cp.Vector{X: 100, Y: 100}, Radius: 5},
		{Pos: cp.Vector{X: 3, Y: 0}, Radius: 5},
		{Pos: cp.Vector{X: 4, Y: 0}, Radius: 5},
	}
	if got := FirstHit(probe, targets); got != 1 {
		t.Fatalf("expected first overlapping index 1, got %d", got)
	}
	if got := FirstHit(probe, targets[:1]); got != -1 {
		t.Fatalf("expected -1 for no overlap, got %d", got)
	}
}
