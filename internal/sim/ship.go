package sim

import (
	"math"

	"github.com/jakecoffman/cp"

	"rockfall/engine/internal/kinetics"
	"rockfall/engine/internal/pilot"
)

// shipState is one craft plus its per-tick intents. Intents are written by
// command application and consumed exactly once by the following step.
type shipState struct {
	id         string
	body       kinetics.Body
	radius     float64
	autonomous bool
	pilot      *pilot.Pilot

	thrustIntent float64
	rotateIntent float64
	fireIntent   bool
}

func (e *Engine) newShipState(id string, autonomous bool) (*shipState, error) {
	state := &shipState{
		id:         id,
		radius:     e.cfg.Ship.Radius,
		autonomous: autonomous,
		body: kinetics.Body{
			Pos:         e.spawnPosition(len(e.ships)),
			Heading:     kinetics.Tau * 3 / 4,
			Mass:        1,
			ThrustPower: e.cfg.Ship.ThrustPower,
			Drag:        e.cfg.Ship.Drag,
			MaxSpeed:    e.cfg.Ship.MaxSpeed,
			Bounds:      e.cfg.Bounds(),
		},
	}
	if autonomous {
		p, err := pilot.New(e.cfg.Steering)
		if err != nil {
			return nil, err
		}
		state.pilot = p
	}
	return state, nil
}

// spawnPosition rings additional ships around the field center so simultaneous
// spawns never start in overlap.
func (e *Engine) spawnPosition(ordinal int) cp.Vector {
	center := cp.Vector{X: e.cfg.Width / 2, Y: e.cfg.Height / 2}
	if ordinal == 0 {
		return center
	}
	offset := e.cfg.Ship.Radius * 4
	angle := kinetics.Tau * float64(ordinal) / 8
	return center.Add(cp.ForAngle(angle).Mult(offset * math.Ceil(float64(ordinal)/8)))
}

// cpForHeading offsets along an angle, used to place muzzle positions just
// outside the hull so a shot never collides with its own ship.
func cpForHeading(heading, distance float64) cp.Vector {
	return cp.ForAngle(heading).Mult(distance)
}

func (s *shipState) clearIntents() {
	s.thrustIntent = 0
	s.rotateIntent = 0
	s.fireIntent = false
}
