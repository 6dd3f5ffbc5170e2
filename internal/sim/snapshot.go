package sim

import (
	"math"

	"rockfall/engine/internal/pilot"
	"rockfall/engine/internal/projectile"
)

// ShipView mirrors one craft for read-only collaborators.
type ShipView struct {
	ID                string           `json:"id"`
	X                 float64          `json:"x"`
	Y                 float64          `json:"y"`
	Heading           float64          `json:"heading"`
	VelX              float64          `json:"velX"`
	VelY              float64          `json:"velY"`
	Radius            float64          `json:"radius"`
	Autonomous        bool             `json:"autonomous,omitempty"`
	CooldownRemaining float64          `json:"cooldownRemaining"`
	Pilot             *pilot.Telemetry `json:"pilot,omitempty"`
}

// AsteroidView mirrors one destructible body.
type AsteroidView struct {
	ID      uint64  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
	Radius  float64 `json:"radius"`
	Tier    int     `json:"tier"`
	Health  float64 `json:"health"`
	Points  int     `json:"points"`
}

// ProjectileView mirrors one in-flight projectile.
type ProjectileView struct {
	ID      int     `json:"id"`
	OwnerID string  `json:"ownerId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
	Radius  float64 `json:"radius"`
}

// Snapshot captures the state exposed to non-simulation callers. It is a
// value copy taken after a Step completes; rendering reads it without
// touching live state.
type Snapshot struct {
	Tick        uint64           `json:"tick"`
	Time        float64          `json:"time"`
	Wave        int              `json:"wave"`
	Ships       []ShipView       `json:"ships,omitempty"`
	Asteroids   []AsteroidView   `json:"asteroids,omitempty"`
	Projectiles []ProjectileView `json:"projectiles,omitempty"`
	PoolFree    int              `json:"poolFree"`
	PoolSize    int              `json:"poolSize"`
}

// Snapshot copies the live world in stable entity order.
func (e *Engine) Snapshot() Snapshot {
	snapshot := Snapshot{
		Tick:     e.tick,
		Time:     e.now,
		Wave:     e.wave,
		PoolFree: e.projectiles.PoolFree(),
		PoolSize: e.projectiles.Capacity(),
	}

	for _, ship := range e.ships {
		view := ShipView{
			ID:                ship.id,
			X:                 ship.body.Pos.X,
			Y:                 ship.body.Pos.Y,
			Heading:           ship.body.Heading,
			VelX:              ship.body.Vel.X,
			VelY:              ship.body.Vel.Y,
			Radius:            ship.radius,
			Autonomous:        ship.autonomous,
			CooldownRemaining: e.projectiles.CooldownRemaining(ship.id, e.now),
		}
		if ship.pilot != nil {
			telemetry := ship.pilot.Telemetry()
			if math.IsInf(telemetry.MinThreatDistance, 1) {
				// No threat observed yet; -1 keeps the view JSON-encodable.
				telemetry.MinThreatDistance = -1
			}
			view.Pilot = &telemetry
		}
		snapshot.Ships = append(snapshot.Ships, view)
	}

	for _, asteroid := range e.asteroids {
		snapshot.Asteroids = append(snapshot.Asteroids, AsteroidView{
			ID:      asteroid.ID,
			X:       asteroid.Body.Pos.X,
			Y:       asteroid.Body.Pos.Y,
			Heading: asteroid.Body.Heading,
			Radius:  asteroid.Radius,
			Tier:    int(asteroid.Tier),
			Health:  asteroid.Health,
			Points:  asteroid.Points,
		})
	}

	e.projectiles.ForEachActive(func(p *projectile.Projectile) bool {
		snapshot.Projectiles = append(snapshot.Projectiles, ProjectileView{
			ID:      int(p.Handle()),
			OwnerID: p.OwnerID,
			X:       p.Body.Pos.X,
			Y:       p.Body.Pos.Y,
			Heading: p.Body.Heading,
			Radius:  p.Radius,
		})
		return true
	})

	return snapshot
}
