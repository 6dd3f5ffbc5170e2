package kinetics

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Tau is a full turn in radians. Headings are always kept in [0, Tau).
const Tau = 2 * math.Pi

// restSpeedSq is the squared speed below which a damped body is snapped to a
// full stop instead of drifting forever on residual velocity.
const restSpeedSq = 0.01

// Bounds describes the toroidal play field. A body exiting one edge re-enters
// from the opposite edge at the same orthogonal coordinate.
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Body carries the rigid-body state shared by ships, asteroids, and
// projectiles: position and velocity in world units, heading and angular
// velocity in radians, plus the tuning constants used by integration.
type Body struct {
	Pos         cp.Vector
	Vel         cp.Vector
	Heading     float64
	AngularVel  float64
	Mass        float64
	ThrustPower float64
	Drag        float64
	MaxSpeed    float64
	Bounds      Bounds
}

// WrapAngle normalizes an angle into [0, Tau).
func WrapAngle(angle float64) float64 {
	angle = math.Mod(angle, Tau)
	if angle < 0 {
		angle += Tau
	}
	return angle
}

// AngleDiff returns the signed shortest rotation from one angle to another,
// in (-pi, pi].
func AngleDiff(from, to float64) float64 {
	diff := math.Mod(to-from, Tau)
	if diff > math.Pi {
		diff -= Tau
	}
	if diff <= -math.Pi {
		diff += Tau
	}
	return diff
}

func wrapCoord(value, limit float64) float64 {
	if limit <= 0 {
		return value
	}
	value = math.Mod(value, limit)
	if value < 0 {
		value += limit
	}
	return value
}

// ApplyThrust accelerates the body along its current heading, scaled by the
// body's thrust power. The resulting speed is clamped to MaxSpeed.
func (b *Body) ApplyThrust(magnitude, dt float64) {
	if magnitude == 0 || dt <= 0 {
		return
	}
	accel := cp.ForAngle(b.Heading).Mult(magnitude * b.ThrustPower * dt)
	b.Vel = b.Vel.Add(accel)
	if b.MaxSpeed > 0 {
		b.Vel = b.Vel.Clamp(b.MaxSpeed)
	}
}

// SetHeading replaces the heading, wrapped into [0, Tau).
func (b *Body) SetHeading(angle float64) {
	b.Heading = WrapAngle(angle)
}

// Rotate adjusts the heading by delta radians, wrapped into [0, Tau).
func (b *Body) Rotate(delta float64) {
	b.Heading = WrapAngle(b.Heading + delta)
}

// Speed reports the current velocity magnitude.
func (b *Body) Speed() float64 {
	return b.Vel.Length()
}

// Update integrates one simulation step: position advances by velocity, each
// axis wraps independently into the toroidal bounds, and heading advances by
// angular velocity. Drag is a fixed multiplicative decay applied once per
// call, not scaled by dt, so the felt damping depends on the tick rate;
// changing the tick rate retunes the handling. Pure math, never fails.
func (b *Body) Update(dt float64) {
	b.Pos = b.Pos.Add(b.Vel.Mult(dt))
	b.Pos.X = wrapCoord(b.Pos.X, b.Bounds.Width)
	b.Pos.Y = wrapCoord(b.Pos.Y, b.Bounds.Height)

	b.Heading = WrapAngle(b.Heading + b.AngularVel*dt)

	if b.Drag > 0 && b.Drag < 1 {
		b.Vel = b.Vel.Mult(b.Drag)
		b.AngularVel *= b.Drag
	}
	if b.Vel.LengthSq() < restSpeedSq {
		b.Vel = cp.Vector{}
	}
}
