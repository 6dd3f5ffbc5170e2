// Package projectile owns the pooled projectile lifecycle: a fixed set of
// slots preallocated at construction, per-owner fire cooldowns, lifetime
// expiry, and recycling. Every slot is in exactly one of {pool, active}.
package projectile

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"

	"rockfall/engine/internal/kinetics"
)

var (
	// ErrPoolExhausted indicates every slot is already in flight. Routine;
	// the caller skips the shot.
	ErrPoolExhausted = errors.New("projectile: pool exhausted")
	// ErrCooldownActive indicates the owner fired too recently. Routine;
	// the caller skips the shot.
	ErrCooldownActive = errors.New("projectile: cooldown active")
	// ErrUnknownProjectile indicates a handle with no active projectile
	// behind it, e.g. a double release after a collision.
	ErrUnknownProjectile = errors.New("projectile: unknown handle")
)

// Handle identifies a pooled slot. Handles are stable for the lifetime of the
// system; whether the slot is live is tracked by the system itself.
type Handle int

// Projectile is one pooled slot. The embedded body is exclusively owned by
// the slot and reconfigured on every fire.
type Projectile struct {
	Body      kinetics.Body
	OwnerID   string
	Damage    float64
	SpawnedAt float64
	Radius    float64

	handle Handle
	active bool
}

// Handle returns the slot's stable identifier.
func (p *Projectile) Handle() Handle {
	return p.handle
}

// Active reports whether the slot is currently in flight.
func (p *Projectile) Active() bool {
	return p.active
}

// Config sizes the pool and tunes the shared projectile parameters.
type Config struct {
	PoolSize int     `json:"poolSize" yaml:"pool_size"`
	Cooldown float64 `json:"cooldown" yaml:"cooldown"`
	Lifetime float64 `json:"lifetime" yaml:"lifetime"`
	Radius   float64 `json:"radius" yaml:"radius"`
}

// Validate rejects configurations that indicate a setup error.
func (c Config) Validate() error {
	if c.PoolSize <= 0 {
		return fmt.Errorf("projectile: pool size must be positive, got %d", c.PoolSize)
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("projectile: cooldown must be non-negative, got %f", c.Cooldown)
	}
	if c.Lifetime <= 0 {
		return fmt.Errorf("projectile: lifetime must be positive, got %f", c.Lifetime)
	}
	return nil
}

// System manages the fixed pool. Not safe for concurrent mutation; the
// engine confines all calls to the tick goroutine.
type System struct {
	cfg    Config
	bounds kinetics.Bounds

	slots     []Projectile
	pool      []Handle
	active    []Handle
	lastFired map[string]float64
}

// NewSystem preallocates cfg.PoolSize reusable slots. Cooldown and lifetime
// are simulation-time seconds, not wall-clock limits.
func NewSystem(cfg Config, bounds kinetics.Bounds) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &System{
		cfg:       cfg,
		bounds:    bounds,
		slots:     make([]Projectile, cfg.PoolSize),
		pool:      make([]Handle, 0, cfg.PoolSize),
		active:    make([]Handle, 0, cfg.PoolSize),
		lastFired: make(map[string]float64),
	}
	for i := range s.slots {
		s.slots[i].handle = Handle(i)
		s.pool = append(s.pool, Handle(i))
	}
	return s, nil
}

// Capacity reports the fixed slot count.
func (s *System) Capacity() int {
	return len(s.slots)
}

// PoolFree reports how many slots are waiting in the pool.
func (s *System) PoolFree() int {
	return len(s.pool)
}

// ActiveCount reports how many projectiles are in flight.
func (s *System) ActiveCount() int {
	return len(s.active)
}

// CanFire reports whether the owner could fire at the given simulation time:
// a slot is free and the owner's cooldown has elapsed.
func (s *System) CanFire(ownerID string, now float64) bool {
	if len(s.pool) == 0 {
		return false
	}
	last, fired := s.lastFired[ownerID]
	if !fired {
		return true
	}
	return now-last >= s.cfg.Cooldown
}

// CooldownRemaining reports the seconds until the owner may fire again. It is
// never negative, reaches exactly zero at lastFire + cooldown, and stays zero
// until the next shot.
func (s *System) CooldownRemaining(ownerID string, now float64) float64 {
	last, fired := s.lastFired[ownerID]
	if !fired {
		return 0
	}
	remaining := last + s.cfg.Cooldown - now
	if remaining <= 0 {
		return 0
	}
	return remaining
}

// Fire pops a pooled slot and launches it from origin along angle. It fails
// with ErrPoolExhausted or ErrCooldownActive without mutating any state;
// both are expected outcomes, not faults.
func (s *System) Fire(ownerID string, origin cp.Vector, angle, now, damage, speed float64) (Handle, error) {
	if len(s.pool) == 0 {
		return 0, ErrPoolExhausted
	}
	if last, fired := s.lastFired[ownerID]; fired && now-last < s.cfg.Cooldown {
		return 0, ErrCooldownActive
	}

	handle := s.pool[len(s.pool)-1]
	s.pool = s.pool[:len(s.pool)-1]

	slot := &s.slots[handle]
	slot.Body = kinetics.Body{
		Pos:     origin,
		Vel:     cp.ForAngle(angle).Mult(speed),
		Heading: kinetics.WrapAngle(angle),
		Mass:    1,
		Bounds:  s.bounds,
	}
	slot.OwnerID = ownerID
	slot.Damage = damage
	slot.SpawnedAt = now
	slot.Radius = s.cfg.Radius
	slot.active = true

	s.lastFired[ownerID] = now
	s.active = append(s.active, handle)
	return handle, nil
}

// Update advances physics for every active projectile and recycles the ones
// whose lifetime has elapsed. Recycled handles are returned in flight order.
func (s *System) Update(dt, now float64) []Handle {
	var expired []Handle
	kept := s.active[:0]
	for _, handle := range s.active {
		slot := &s.slots[handle]
		slot.Body.Update(dt)
		if now-slot.SpawnedAt > s.cfg.Lifetime {
			expired = append(expired, handle)
			continue
		}
		kept = append(kept, handle)
	}
	s.active = kept
	for _, handle := range expired {
		s.recycle(handle)
	}
	return expired
}

// Release returns an active projectile to the pool, typically after a
// collision. Releasing a pooled or out-of-range handle fails with
// ErrUnknownProjectile; the caller logs and continues.
func (s *System) Release(handle Handle) error {
	if int(handle) < 0 || int(handle) >= len(s.slots) {
		return ErrUnknownProjectile
	}
	if !s.slots[handle].active {
		return ErrUnknownProjectile
	}
	for i, h := range s.active {
		if h == handle {
			s.active = append(s.active[:i], s.active[i+1:]...)
			break
		}
	}
	s.recycle(handle)
	return nil
}

func (s *System) recycle(handle Handle) {
	slot := &s.slots[handle]
	slot.active = false
	slot.OwnerID = ""
	s.pool = append(s.pool, handle)
}

// Get returns the projectile behind an active handle.
func (s *System) Get(handle Handle) (*Projectile, bool) {
	if int(handle) < 0 || int(handle) >= len(s.slots) {
		return nil, false
	}
	slot := &s.slots[handle]
	if !slot.active {
		return nil, false
	}
	return slot, true
}

// ForEachActive visits active projectiles in launch order. The iteration
// order is stable so collision replays are deterministic for a fixed seed.
func (s *System) ForEachActive(visit func(*Projectile) bool) {
	for _, handle := range s.active {
		if !visit(&s.slots[handle]) {
			return
		}
	}
}
