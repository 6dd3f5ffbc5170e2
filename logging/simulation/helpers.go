package simulation

import (
	"context"

	"rockfall/engine/logging"
)

const (
	// EventWaveStarted is emitted when a new asteroid wave spawns.
	EventWaveStarted logging.EventType = "simulation.wave_started"
	// EventAsteroidDestroyed is emitted when a projectile removes a body.
	EventAsteroidDestroyed logging.EventType = "simulation.asteroid_destroyed"
	// EventShipHit is emitted when a ship overlaps an asteroid.
	EventShipHit logging.EventType = "simulation.ship_hit"
	// EventPoolExhausted is emitted when a fire request finds no free slot.
	EventPoolExhausted logging.EventType = "simulation.pool_exhausted"
)

// WaveStartedPayload captures the difficulty of a freshly spawned wave.
type WaveStartedPayload struct {
	Wave            int     `json:"wave"`
	AsteroidCount   int     `json:"asteroidCount"`
	SpeedMultiplier float64 `json:"speedMultiplier"`
}

// WaveStarted publishes an info event for a new wave.
func WaveStarted(ctx context.Context, pub logging.Publisher, tick uint64, payload WaveStartedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventWaveStarted,
		Tick:     tick,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySimulation,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Payload:  payload,
	})
}

// AsteroidDestroyedPayload captures the scoring outcome of a fracture.
type AsteroidDestroyedPayload struct {
	Tier      int  `json:"tier"`
	Points    int  `json:"points"`
	Fragments int  `json:"fragments"`
	Terminal  bool `json:"terminal"`
}

// AsteroidDestroyed publishes a gameplay event for the scoring collaborator.
func AsteroidDestroyed(ctx context.Context, pub logging.Publisher, tick uint64, asteroidID, ownerID string, payload AsteroidDestroyedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAsteroidDestroyed,
		Tick:     tick,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Actor:    logging.EntityRef{ID: ownerID, Kind: logging.EntityKindShip},
		Targets:  []logging.EntityRef{{ID: asteroidID, Kind: logging.EntityKindAsteroid}},
		Payload:  payload,
	})
}

// ShipHit publishes a gameplay event when a ship overlaps an asteroid. The
// consequence (life loss, respawn) is decided outside the engine.
func ShipHit(ctx context.Context, pub logging.Publisher, tick uint64, shipID, asteroidID string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventShipHit,
		Tick:     tick,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryGameplay,
		Actor:    logging.EntityRef{ID: shipID, Kind: logging.EntityKindShip},
		Targets:  []logging.EntityRef{{ID: asteroidID, Kind: logging.EntityKindAsteroid}},
	})
}

// PoolExhausted publishes a debug event when a shot is skipped for lack of a
// free slot. Routine under sustained fire; never more than debug severity.
func PoolExhausted(ctx context.Context, pub logging.Publisher, tick uint64, ownerID string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPoolExhausted,
		Tick:     tick,
		Severity: logging.SeverityDebug,
		Category: logging.CategorySimulation,
		Actor:    logging.EntityRef{ID: ownerID, Kind: logging.EntityKindShip},
	})
}
