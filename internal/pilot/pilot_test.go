package pilot

import (
	"math"
	"math/rand"
	"testing"

	"github.com/jakecoffman/cp"

	"rockfall/engine/internal/kinetics"
)

var testBounds = kinetics.Bounds{Width: 800, Height: 600}

func TestComputeSteeringSeekOnly(t *testing.T) {
	w := DefaultWeights()
	w.Avoid = 0

	steering := ComputeSteering(cp.Vector{X: 80, Y: 72}, cp.Vector{X: 100, Y: 72}, nil, w)
	if steering.X <= 0 {
		t.Fatalf("expected positive x steering toward waypoint, got %+v", steering)
	}
	if math.Abs(steering.Y) >= 0.1 {
		t.Fatalf("expected negligible y steering, got %+v", steering)
	}
}

func TestComputeSteeringAvoidDominates(t *testing.T) {
	w := DefaultWeights()
	w.Seek = 1
	w.Avoid = 1000
	w.DangerRadius = 50

	ship := cp.Vector{X: 100, Y: 100}
	waypoint := cp.Vector{X: 300, Y: 100}
	threats := []Threat{{Pos: cp.Vector{X: 110, Y: 100}, Radius: 5}}

	steering := ComputeSteering(ship, waypoint, threats, w)
	if steering.X >= 0 {
		t.Fatalf("expected repulsion to dominate seek, got %+v", steering)
	}
}

func TestComputeSteeringEmptyThreats(t *testing.T) {
	w := DefaultWeights()
	ship := cp.Vector{X: 10, Y: 10}
	waypoint := cp.Vector{X: 50, Y: 10}

	with := ComputeSteering(ship, waypoint, []Threat{}, w)
	without := ComputeSteering(ship, waypoint, nil, w)
	if !with.Equal(without) {
		t.Fatalf("empty threat list must contribute nothing: %+v vs %+v", with, without)
	}
}

func TestComputeSteeringIgnoresDistantThreats(t *testing.T) {
	w := DefaultWeights()
	w.DangerRadius = 50

	ship := cp.Vector{X: 0, Y: 0}
	waypoint := cp.Vector{X: 100, Y: 0}
	far := []Threat{{Pos: cp.Vector{X: 0, Y: 400}, Radius: 10}}

	with := ComputeSteering(ship, waypoint, far, w)
	without := ComputeSteering(ship, waypoint, nil, w)
	if !with.Equal(without) {
		t.Fatalf("threats beyond the danger radius must contribute nothing")
	}
}

func TestComputeSteeringRepulsionScalesWithDistance(t *testing.T) {
	w := DefaultWeights()
	w.Seek = 0
	w.DangerRadius = 100

	ship := cp.Vector{X: 0, Y: 0}
	near := ComputeSteering(ship, ship, []Threat{{Pos: cp.Vector{X: 10, Y: 0}}}, w)
	far := ComputeSteering(ship, ship, []Threat{{Pos: cp.Vector{X: 50, Y: 0}}}, w)
	if near.Length() <= far.Length() {
		t.Fatalf("repulsion must grow as distance shrinks: near=%f far=%f", near.Length(), far.Length())
	}
}

func TestWeightsValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Weights)
		wantErr bool
	}{
		{"default", func(*Weights) {}, false},
		{"zero turn rate", func(w *Weights) { w.TurnRate = 0 }, true},
		{"negative danger radius", func(w *Weights) { w.DangerRadius = -1 }, true},
		{"negative seek", func(w *Weights) { w.Seek = -1 }, true},
		{"negative tolerance", func(w *Weights) { w.ArriveTolerance = -1 }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := DefaultWeights()
			tc.mutate(&w)
			err := w.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSteerWaypointArrival(t *testing.T) {
	p, err := New(DefaultWeights())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rng := rand.New(rand.NewSource(1))

	p.Steer(rng, cp.Vector{X: 400, Y: 300}, nil, testBounds, 0)
	waypoint, ok := p.Waypoint()
	if !ok {
		t.Fatalf("expected a waypoint after first steer")
	}

	// Standing on the waypoint forces a re-pick and counts the arrival.
	p.Steer(rng, waypoint, nil, testBounds, 0.1)
	if got := p.Telemetry().WaypointsReached; got != 1 {
		t.Fatalf("expected 1 waypoint reached, got %d", got)
	}
	next, _ := p.Waypoint()
	if next.Equal(waypoint) {
		t.Fatalf("expected a fresh waypoint after arrival")
	}
}

func TestSteerAvoidanceTelemetryCooldown(t *testing.T) {
	p, err := New(DefaultWeights())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rng := rand.New(rand.NewSource(2))
	threats := []Threat{{Pos: cp.Vector{X: 410, Y: 300}, Radius: 10}}

	// A threat loitering in range across many ticks counts once per window.
	for i := 0; i < 10; i++ {
		p.Steer(rng, cp.Vector{X: 400, Y: 300}, threats, testBounds, float64(i)*0.05)
	}
	if got := p.Telemetry().AvoidanceManeuvers; got != 1 {
		t.Fatalf("expected 1 avoidance maneuver inside the cooldown window, got %d", got)
	}

	p.Steer(rng, cp.Vector{X: 400, Y: 300}, threats, testBounds, avoidTelemetrySeconds+1)
	if got := p.Telemetry().AvoidanceManeuvers; got != 2 {
		t.Fatalf("expected a second maneuver after the window elapsed, got %d", got)
	}
}

func TestSteerMinThreatDistanceMonotone(t *testing.T) {
	p, err := New(DefaultWeights())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rng := rand.New(rand.NewSource(3))
	ship := cp.Vector{X: 400, Y: 300}

	if got := p.Telemetry().MinThreatDistance; !math.IsInf(got, 1) {
		t.Fatalf("expected +Inf before any threat, got %f", got)
	}

	p.Steer(rng, ship, []Threat{{Pos: cp.Vector{X: 460, Y: 300}}}, testBounds, 0)
	if got := p.Telemetry().MinThreatDistance; math.Abs(got-60) > 1e-9 {
		t.Fatalf("expected min distance 60, got %f", got)
	}

	p.Steer(rng, ship, []Threat{{Pos: cp.Vector{X: 420, Y: 300}}}, testBounds, 1)
	if got := p.Telemetry().MinThreatDistance; math.Abs(got-20) > 1e-9 {
		t.Fatalf("expected min distance 20, got %f", got)
	}

	// A farther threat must not move the minimum back up.
	p.Steer(rng, ship, []Threat{{Pos: cp.Vector{X: 700, Y: 300}}}, testBounds, 2)
	if got := p.Telemetry().MinThreatDistance; math.Abs(got-20) > 1e-9 {
		t.Fatalf("min distance regressed to %f", got)
	}
}

func TestApplySteeringCapsTurnRate(t *testing.T) {
	w := DefaultWeights()
	w.TurnRate = 1

	body := kinetics.Body{ThrustPower: 100, MaxSpeed: 200, Bounds: testBounds}
	body.SetHeading(0)

	// Steering straight up demands a pi/2 turn; one tick only allows
	// turnRate*dt of it.
	ApplySteering(cp.Vector{X: 0, Y: 1}, &body, w, 0.1)
	if math.Abs(body.Heading-0.1) > 1e-9 {
		t.Fatalf("expected heading capped at 0.1, got %f", body.Heading)
	}
	if body.Speed() == 0 {
		t.Fatalf("expected thrust while steering is non-zero")
	}
}

func TestApplySteeringZeroVectorCoasts(t *testing.T) {
	body := kinetics.Body{ThrustPower: 100, MaxSpeed: 200, Bounds: testBounds}
	body.SetHeading(1.2)
	body.Vel = cp.Vector{X: 10, Y: 0}

	ApplySteering(cp.Vector{}, &body, DefaultWeights(), 0.1)
	if body.Heading != 1.2 {
		t.Fatalf("expected heading unchanged, got %f", body.Heading)
	}
	if body.Vel.X != 10 || body.Vel.Y != 0 {
		t.Fatalf("expected velocity unchanged, got %+v", body.Vel)
	}
}

func TestApplySteeringTurnsShortestWay(t *testing.T) {
	w := DefaultWeights()
	w.TurnRate = 0.5

	body := kinetics.Body{ThrustPower: 100, MaxSpeed: 200, Bounds: testBounds}
	body.SetHeading(0.1)

	// Target just below the wrap seam: the short way is negative.
	target := kinetics.Tau - 0.1
	ApplySteering(cp.ForAngle(target), &body, w, 0.1)
	if diff := kinetics.AngleDiff(0.1, body.Heading); diff >= 0 {
		t.Fatalf("expected a negative rotation across the seam, got diff %f", diff)
	}
}
