package pilot

import (
	"math"
	"math/rand"

	"github.com/jakecoffman/cp"

	"rockfall/engine/internal/kinetics"
)

// avoidTelemetrySeconds throttles the avoidance-maneuver counter: a threat
// loitering inside the danger radius across many ticks counts once per
// window, not once per tick.
const avoidTelemetrySeconds = 1.0

// waypointMargin keeps generated waypoints away from the field edges so a
// seeking ship does not straddle the wrap seam while arriving.
const waypointMargin = 0.1

// Telemetry is the pilot's survival bookkeeping.
type Telemetry struct {
	AvoidanceManeuvers int     `json:"avoidanceManeuvers"`
	WaypointsReached   int     `json:"waypointsReached"`
	MinThreatDistance  float64 `json:"minThreatDistance"`
}

// Pilot holds the per-agent controller state: the current waypoint, the
// avoidance telemetry cooldown, and the survival counters.
type Pilot struct {
	weights Weights

	waypoint    cp.Vector
	hasWaypoint bool

	avoidReadyAt float64
	telemetry    Telemetry
}

// New constructs a pilot with validated weights. The minimum threat distance
// starts at +Inf and only ever decreases.
func New(weights Weights) (*Pilot, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Pilot{
		weights:   weights,
		telemetry: Telemetry{MinThreatDistance: math.Inf(1)},
	}, nil
}

// Weights returns the current tuning.
func (p *Pilot) Weights() Weights {
	return p.weights
}

// SetWeights hot-applies new tuning; invalid tunings are rejected.
func (p *Pilot) SetWeights(weights Weights) error {
	if err := weights.Validate(); err != nil {
		return err
	}
	p.weights = weights
	return nil
}

// Waypoint returns the current goal point.
func (p *Pilot) Waypoint() (cp.Vector, bool) {
	return p.waypoint, p.hasWaypoint
}

// Telemetry returns a copy of the survival counters.
func (p *Pilot) Telemetry() Telemetry {
	return p.telemetry
}

// Steer advances waypoint management and telemetry, then evaluates the
// control law against positions frozen at the previous tick's end. now is
// simulation time in seconds.
func (p *Pilot) Steer(rng *rand.Rand, pos cp.Vector, threats []Threat, bounds kinetics.Bounds, now float64) cp.Vector {
	if !p.hasWaypoint {
		p.waypoint = p.pickWaypoint(rng, bounds)
		p.hasWaypoint = true
	} else if pos.Distance(p.waypoint) <= p.weights.ArriveTolerance {
		p.telemetry.WaypointsReached++
		p.waypoint = p.pickWaypoint(rng, bounds)
	}

	p.observeThreats(threats, pos, now)
	return ComputeSteering(pos, p.waypoint, threats, p.weights)
}

func (p *Pilot) observeThreats(threats []Threat, pos cp.Vector, now float64) {
	nearest := math.Inf(1)
	for _, threat := range threats {
		if dist := pos.Distance(threat.Pos); dist < nearest {
			nearest = dist
		}
	}
	if nearest < p.telemetry.MinThreatDistance {
		p.telemetry.MinThreatDistance = nearest
	}
	if nearest < p.weights.DangerRadius && now >= p.avoidReadyAt {
		p.telemetry.AvoidanceManeuvers++
		p.avoidReadyAt = now + avoidTelemetrySeconds
	}
}

func (p *Pilot) pickWaypoint(rng *rand.Rand, bounds kinetics.Bounds) cp.Vector {
	marginX := bounds.Width * waypointMargin
	marginY := bounds.Height * waypointMargin
	return cp.Vector{
		X: marginX + rng.Float64()*(bounds.Width-2*marginX),
		Y: marginY + rng.Float64()*(bounds.Height-2*marginY),
	}
}

// ApplySteering turns the body toward the steering vector's angle at a
// bounded rate (turn rate × dt caps the per-tick heading delta) and thrusts
// forward while the vector is non-zero. A zero steering vector coasts: no
// rotation, no thrust.
func ApplySteering(steering cp.Vector, body *kinetics.Body, weights Weights, dt float64) {
	if steering.LengthSq() == 0 {
		return
	}

	target := kinetics.WrapAngle(steering.ToAngle())
	delta := kinetics.AngleDiff(body.Heading, target)
	maxDelta := weights.TurnRate * dt
	if delta > maxDelta {
		delta = maxDelta
	} else if delta < -maxDelta {
		delta = -maxDelta
	}
	body.Rotate(delta)
	body.ApplyThrust(1, dt)
}
