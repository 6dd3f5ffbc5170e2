// Package collision implements the circle broad-phase used for
// ship-vs-asteroid and projectile-vs-asteroid tests. It only detects
// overlaps; consequences are decided by the engine.
package collision

import "github.com/jakecoffman/cp"

// Circle is the broad-phase proxy for any entity.
type Circle struct {
	Pos    cp.Vector
	Radius float64
}

// Overlap reports whether two circles touch or intersect.
func Overlap(a, b Circle) bool {
	reach := a.Radius + b.Radius
	return a.Pos.DistanceSq(b.Pos) <= reach*reach
}

// Pair records an overlap by index into the two scanned slices.
type Pair struct {
	A int
	B int
}

// ScanPairs tests every a×b combination in index order and returns the
// overlapping pairs. Iteration order is stable so a replay with a fixed seed
// resolves collisions identically.
func ScanPairs(as, bs []Circle) []Pair {
	var pairs []Pair
	for i, a := range as {
		for j, b := range bs {
			if Overlap(a, b) {
				pairs = append(pairs, Pair{A: i, B: j})
			}
		}
	}
	return pairs
}

// FirstHit returns the lowest-index circle in targets that overlaps probe,
// or -1 when none does.
func FirstHit(probe Circle, targets []Circle) int {
	for i, target := range targets {
		if Overlap(probe, target) {
			return i
		}
	}
	return -1
}
