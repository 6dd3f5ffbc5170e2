// Package pilot implements the reactive steering controller for autonomous
// craft. The control law is a pure function over frozen positions; applying
// the result to a body is a separate step so the law can be tested without
// the integrator.
package pilot

import (
	"fmt"

	"github.com/jakecoffman/cp"
)

// minAvoidDistance floors the repulsion denominator so a threat sitting on
// top of the ship does not produce an unbounded steering vector.
const minAvoidDistance = 0.5

// Weights tunes the control law. Validated once at engine construction.
type Weights struct {
	Seek            float64 `json:"seek" yaml:"seek"`
	Avoid           float64 `json:"avoid" yaml:"avoid"`
	TurnRate        float64 `json:"turnRate" yaml:"turn_rate"`
	DangerRadius    float64 `json:"dangerRadius" yaml:"danger_radius"`
	ArriveTolerance float64 `json:"arriveTolerance" yaml:"arrive_tolerance"`
}

// DefaultWeights returns the stock tuning.
func DefaultWeights() Weights {
	return Weights{
		Seek:            1,
		Avoid:           120,
		TurnRate:        4,
		DangerRadius:    90,
		ArriveTolerance: 24,
	}
}

// Validate rejects tunings that make the controller inert or unstable.
func (w Weights) Validate() error {
	if w.TurnRate <= 0 {
		return fmt.Errorf("pilot: turn rate must be positive, got %f", w.TurnRate)
	}
	if w.DangerRadius < 0 {
		return fmt.Errorf("pilot: danger radius must be non-negative, got %f", w.DangerRadius)
	}
	if w.Seek < 0 || w.Avoid < 0 {
		return fmt.Errorf("pilot: seek and avoid weights must be non-negative")
	}
	if w.ArriveTolerance < 0 {
		return fmt.Errorf("pilot: arrive tolerance must be non-negative, got %f", w.ArriveTolerance)
	}
	return nil
}

// Threat is a hazard position with its collision radius.
type Threat struct {
	Pos    cp.Vector
	Radius float64
}

// ComputeSteering returns the weighted sum of the seek and avoid terms: a
// unit vector toward the waypoint scaled by the seek weight, plus one
// repulsion per threat inside the danger radius, inversely proportional to
// distance and scaled by the avoid weight. An empty threat list contributes
// nothing; the function never fails.
func ComputeSteering(pos, waypoint cp.Vector, threats []Threat, w Weights) cp.Vector {
	steering := cp.Vector{}

	toWaypoint := waypoint.Sub(pos)
	if toWaypoint.LengthSq() > 0 {
		steering = steering.Add(toWaypoint.Normalize().Mult(w.Seek))
	}

	for _, threat := range threats {
		away := pos.Sub(threat.Pos)
		dist := away.Length()
		if dist >= w.DangerRadius {
			continue
		}
		if dist < minAvoidDistance {
			dist = minAvoidDistance
			if away.LengthSq() == 0 {
				// Dead-center overlap has no direction; push along +x
				// so the repulsion is still deterministic.
				away = cp.Vector{X: 1}
			}
		}
		steering = steering.Add(away.Normalize().Mult(w.Avoid / dist))
	}
	return steering
}
