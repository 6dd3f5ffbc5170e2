// Package sim orchestrates the simulation core: it owns the world state,
// applies staged commands, and advances everything in a fixed per-tick
// order. The engine is single-threaded; hosts confine every call to one
// goroutine and stage input through the command buffer.
package sim

import (
	"context"
	"errors"
	"fmt"

	"rockfall/engine/internal/collision"
	"rockfall/engine/internal/fracture"
	"rockfall/engine/internal/pilot"
	"rockfall/engine/internal/projectile"
	logsim "rockfall/engine/logging/simulation"
)

var (
	// ErrUnknownShip indicates an operation on a ship id with no backing
	// entity. Recoverable; the caller logs and continues.
	ErrUnknownShip = errors.New("sim: unknown ship")
	// ErrDuplicateShip indicates a spawn reusing a live id.
	ErrDuplicateShip = errors.New("sim: duplicate ship id")
)

const (
	commandBufferCapacity = 256

	ticksMetricKey           = "engine_ticks_total"
	asteroidsActiveMetricKey = "engine_asteroids_active"
	projectilesLiveMetricKey = "engine_projectiles_active"
	shotsFiredMetricKey      = "engine_shots_fired_total"
	shotsBlockedMetricKey    = "engine_shots_blocked_total"
	asteroidsSplitMetricKey  = "engine_asteroids_destroyed_total"
	shipHitsMetricKey        = "engine_ship_hits_total"
	unknownShipMetricKey     = "engine_unknown_ship_total"
)

// Engine is the orchestrator at the root of the simulation core.
type Engine struct {
	cfg  Config
	deps Deps
	dt   float64

	buffer *CommandBuffer

	tick uint64
	now  float64
	wave int

	ships     []*shipState
	shipIndex map[string]*shipState
	asteroids []*fracture.Asteroid

	projectiles *projectile.System
	fractures   *fracture.System

	nextAsteroidID uint64
	events         []Event
}

// NewEngine validates the config, builds the subsystems, and seeds the first
// wave. Configuration errors are fatal here; nothing after construction
// returns them.
func NewEngine(cfg Config, deps Deps) (*Engine, error) {
	cfg = cfg.Normalized()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fractures, err := fracture.NewSystem(cfg.Tiers, cfg.Fracture)
	if err != nil {
		return nil, err
	}
	projectiles, err := projectile.NewSystem(cfg.Projectiles, cfg.Bounds())
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:         cfg,
		deps:        deps.withDefaults(cfg.Seed),
		dt:          1 / float64(cfg.TickRate),
		shipIndex:   make(map[string]*shipState),
		projectiles: projectiles,
		fractures:   fractures,
	}
	e.buffer = NewCommandBuffer(commandBufferCapacity, e.deps.Metrics)
	e.startWave(1)
	return e, nil
}

// Config returns the validated configuration the engine runs with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Tick reports the number of completed steps.
func (e *Engine) Tick() uint64 {
	return e.tick
}

// Now reports elapsed simulation time in seconds.
func (e *Engine) Now() float64 {
	return e.now
}

// Wave reports the current 1-based wave number.
func (e *Engine) Wave() int {
	return e.wave
}

// Apply stages commands for processing at the head of the next Step. Staging
// never blocks; overflow drops the command and counts it.
func (e *Engine) Apply(commands []Command) error {
	for _, cmd := range commands {
		if !e.buffer.Push(cmd) {
			e.deps.Logger.Printf("command buffer full, dropping %s for %s", cmd.Type, cmd.ActorID)
		}
	}
	return nil
}

// SpawnShip adds a craft. Autonomous ships receive a steering pilot seeded
// from the engine RNG.
func (e *Engine) SpawnShip(id string, autonomous bool) error {
	if id == "" {
		return fmt.Errorf("sim: ship id must not be empty")
	}
	if _, exists := e.shipIndex[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateShip, id)
	}
	state, err := e.newShipState(id, autonomous)
	if err != nil {
		return err
	}
	e.ships = append(e.ships, state)
	e.shipIndex[id] = state
	return nil
}

// DespawnShip removes a craft. Removing an unknown id fails with
// ErrUnknownShip; callers log and continue.
func (e *Engine) DespawnShip(id string) error {
	state, exists := e.shipIndex[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownShip, id)
	}
	delete(e.shipIndex, id)
	for i, ship := range e.ships {
		if ship == state {
			e.ships = append(e.ships[:i], e.ships[i+1:]...)
			break
		}
	}
	return nil
}

// SetTuning hot-applies steering weights and wave progression without
// rebuilding the engine. Invalid tunings are rejected atomically.
func (e *Engine) SetTuning(weights pilot.Weights, waves fracture.WaveConfig) error {
	if err := weights.Validate(); err != nil {
		return err
	}
	if err := waves.Validate(); err != nil {
		return err
	}
	e.cfg.Steering = weights
	e.cfg.Waves = waves
	for _, ship := range e.ships {
		if ship.pilot != nil {
			if err := ship.pilot.SetWeights(weights); err != nil {
				return err
			}
		}
	}
	return nil
}

// Step advances the world one fixed tick:
//
//  1. steering for autonomous craft, read from positions frozen at the end
//     of the previous tick
//  2. physics integration for every kinetic body
//  3. expired projectiles swept back to the pool
//  4. collision detection and resolution (fracture, recycling)
//  5. events and telemetry emitted
//
// The order is a hard invariant; steering must never observe mid-tick
// positions. Step tolerates zero entities and pool exhaustion.
func (e *Engine) Step() {
	e.now += e.dt

	e.applyCommands(e.buffer.Drain())

	// Threats are collected once before any body moves so every pilot
	// steers against the previous tick's world.
	threats := e.collectThreats()
	for _, ship := range e.ships {
		if ship.autonomous {
			steering := ship.pilot.Steer(e.deps.RNG, ship.body.Pos, threats, e.cfg.Bounds(), e.now)
			pilot.ApplySteering(steering, &ship.body, e.cfg.Steering, e.dt)
			continue
		}
		if ship.rotateIntent != 0 {
			ship.body.Rotate(ship.rotateIntent * e.cfg.Ship.TurnRate * e.dt)
		}
		if ship.thrustIntent > 0 {
			ship.body.ApplyThrust(ship.thrustIntent, e.dt)
		}
	}
	e.fireIntents()

	for _, ship := range e.ships {
		ship.body.Update(e.dt)
		ship.clearIntents()
	}
	for _, asteroid := range e.asteroids {
		asteroid.Body.Update(e.dt)
	}

	e.projectiles.Update(e.dt, e.now)

	e.resolveCollisions()

	if len(e.asteroids) == 0 {
		e.startWave(e.wave + 1)
	}

	e.tick++
	e.deps.Metrics.Add(ticksMetricKey, 1)
	e.deps.Metrics.Store(asteroidsActiveMetricKey, uint64(len(e.asteroids)))
	e.deps.Metrics.Store(projectilesLiveMetricKey, uint64(e.projectiles.ActiveCount()))
}

func (e *Engine) applyCommands(commands []Command) {
	for _, cmd := range commands {
		switch cmd.Type {
		case CommandSpawnShip:
			autonomous := cmd.Spawn != nil && cmd.Spawn.Autonomous
			if err := e.SpawnShip(cmd.ActorID, autonomous); err != nil {
				e.deps.Logger.Printf("spawn %s rejected: %v", cmd.ActorID, err)
			}
			continue
		case CommandDespawnShip:
			if err := e.DespawnShip(cmd.ActorID); err != nil {
				e.deps.Logger.Printf("despawn %s rejected: %v", cmd.ActorID, err)
				e.deps.Metrics.Add(unknownShipMetricKey, 1)
			}
			continue
		}

		ship, exists := e.shipIndex[cmd.ActorID]
		if !exists {
			e.deps.Logger.Printf("command %s for unknown ship %s", cmd.Type, cmd.ActorID)
			e.deps.Metrics.Add(unknownShipMetricKey, 1)
			continue
		}
		switch cmd.Type {
		case CommandFire:
			ship.fireIntent = true
		case CommandThrust:
			if cmd.Thrust != nil {
				ship.thrustIntent = clamp(cmd.Thrust.Magnitude, 0, 1)
			}
		case CommandRotate:
			if cmd.Rotate != nil {
				ship.rotateIntent = clamp(cmd.Rotate.Direction, -1, 1)
			}
		}
	}
}

func (e *Engine) fireIntents() {
	for _, ship := range e.ships {
		if !ship.fireIntent {
			continue
		}
		muzzle := ship.body.Pos.Add(cpForHeading(ship.body.Heading, ship.radius))
		_, err := e.projectiles.Fire(ship.id, muzzle, ship.body.Heading, e.now, e.cfg.Ship.ProjectileDamage, e.cfg.Ship.ProjectileSpeed)
		switch {
		case err == nil:
			e.deps.Metrics.Add(shotsFiredMetricKey, 1)
		case errors.Is(err, projectile.ErrPoolExhausted):
			e.deps.Metrics.Add(shotsBlockedMetricKey, 1)
			logsim.PoolExhausted(context.Background(), e.deps.Publisher, e.tick, ship.id)
		case errors.Is(err, projectile.ErrCooldownActive):
			e.deps.Metrics.Add(shotsBlockedMetricKey, 1)
		default:
			e.deps.Logger.Printf("fire for %s failed: %v", ship.id, err)
		}
	}
}

func (e *Engine) collectThreats() []pilot.Threat {
	if len(e.asteroids) == 0 {
		return nil
	}
	threats := make([]pilot.Threat, 0, len(e.asteroids))
	for _, asteroid := range e.asteroids {
		threats = append(threats, pilot.Threat{Pos: asteroid.Body.Pos, Radius: asteroid.Radius})
	}
	return threats
}

// resolveCollisions runs the broad-phase in stable entity order and applies
// the consequences: projectile hits decrement health and fracture destroyed
// bodies, ship overlaps only emit events. Fragments spawned this tick are
// appended after the scan so they cannot be struck by the same volley.
func (e *Engine) resolveCollisions() {
	var handles []projectile.Handle
	e.projectiles.ForEachActive(func(p *projectile.Projectile) bool {
		handles = append(handles, p.Handle())
		return true
	})

	var spawned []*fracture.Asteroid
	for _, handle := range handles {
		p, ok := e.projectiles.Get(handle)
		if !ok {
			continue
		}
		shot := collision.Circle{Pos: p.Body.Pos, Radius: p.Radius}
		hit := collision.FirstHit(shot, e.asteroidCircles())
		if hit < 0 {
			continue
		}

		// Release recycles the slot and clears its fields; the attribution,
		// damage, and impact heading must be captured first.
		ownerID := p.OwnerID
		damage := p.Damage
		impact := p.Body.Heading
		if err := e.projectiles.Release(handle); err != nil {
			e.deps.Logger.Printf("release projectile %d: %v", handle, err)
			continue
		}

		asteroid := e.asteroids[hit]
		asteroid.Health -= damage
		if asteroid.Health > 0 {
			continue
		}

		fragments := e.fractures.Fracture(e.deps.RNG, *asteroid, &impact)
		e.asteroids = append(e.asteroids[:hit], e.asteroids[hit+1:]...)
		for i := range fragments {
			fragment := fragments[i]
			fragment.ID = e.nextID()
			spawned = append(spawned, &fragment)
		}

		e.deps.Metrics.Add(asteroidsSplitMetricKey, 1)
		e.emit(Event{
			Type:       EventAsteroidDestroyed,
			ShipID:     ownerID,
			AsteroidID: asteroid.ID,
			Tier:       int(asteroid.Tier),
			Points:     asteroid.Points,
			Fragments:  len(fragments),
		})
		logsim.AsteroidDestroyed(context.Background(), e.deps.Publisher, e.tick, formatAsteroidID(asteroid.ID), ownerID, logsim.AsteroidDestroyedPayload{
			Tier:      int(asteroid.Tier),
			Points:    asteroid.Points,
			Fragments: len(fragments),
			Terminal:  len(fragments) == 0,
		})
	}
	e.asteroids = append(e.asteroids, spawned...)

	shipCircles := make([]collision.Circle, len(e.ships))
	for i, ship := range e.ships {
		shipCircles[i] = collision.Circle{Pos: ship.body.Pos, Radius: ship.radius}
	}
	for _, pair := range collision.ScanPairs(shipCircles, e.asteroidCircles()) {
		ship := e.ships[pair.A]
		asteroid := e.asteroids[pair.B]
		e.deps.Metrics.Add(shipHitsMetricKey, 1)
		e.emit(Event{
			Type:       EventShipHit,
			ShipID:     ship.id,
			AsteroidID: asteroid.ID,
			Tier:       int(asteroid.Tier),
		})
		logsim.ShipHit(context.Background(), e.deps.Publisher, e.tick, ship.id, formatAsteroidID(asteroid.ID))
	}
}

// asteroidCircles rebuilds the broad-phase proxies; callers that remove
// asteroids between scans must call it again.
func (e *Engine) asteroidCircles() []collision.Circle {
	circles := make([]collision.Circle, len(e.asteroids))
	for i, asteroid := range e.asteroids {
		circles[i] = collision.Circle{Pos: asteroid.Body.Pos, Radius: asteroid.Radius}
	}
	return circles
}

func (e *Engine) startWave(wave int) {
	e.wave = wave
	safe := e.waveSafeZone()
	asteroids := e.fractures.SpawnWave(e.deps.RNG, e.cfg.Waves, wave, safe, e.cfg.Bounds())
	for i := range asteroids {
		asteroid := asteroids[i]
		asteroid.ID = e.nextID()
		e.asteroids = append(e.asteroids, &asteroid)
	}

	spec := e.fractures.WaveDifficulty(e.cfg.Waves, wave)
	e.emit(Event{Type: EventWaveStarted, Wave: wave})
	logsim.WaveStarted(context.Background(), e.deps.Publisher, e.tick, logsim.WaveStartedPayload{
		Wave:            wave,
		AsteroidCount:   spec.AsteroidCount,
		SpeedMultiplier: spec.SpeedMultiplier,
	})
}

// waveSafeZone keeps new waves away from the first live ship, or the field
// center before anyone spawns.
func (e *Engine) waveSafeZone() *fracture.SafeZone {
	zone := &fracture.SafeZone{Radius: minFloat(e.cfg.Width, e.cfg.Height) * 0.2}
	if len(e.ships) > 0 {
		zone.Center = e.ships[0].body.Pos
		return zone
	}
	zone.Center.X = e.cfg.Width / 2
	zone.Center.Y = e.cfg.Height / 2
	return zone
}

func (e *Engine) nextID() uint64 {
	e.nextAsteroidID++
	return e.nextAsteroidID
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func formatAsteroidID(id uint64) string {
	return fmt.Sprintf("asteroid-%d", id)
}
