package sim

// EventType enumerates the outcomes handed to the scoring collaborator.
type EventType string

const (
	// EventAsteroidDestroyed carries the destroyed body's point value.
	EventAsteroidDestroyed EventType = "AsteroidDestroyed"
	// EventShipHit signals a ship-asteroid overlap; the consequence (life
	// loss, respawn) is decided outside the engine.
	EventShipHit EventType = "ShipHit"
	// EventWaveStarted signals a fresh wave entering the field.
	EventWaveStarted EventType = "WaveStarted"
)

// Event is one per-tick outcome, drained by the host after each Step.
type Event struct {
	Type       EventType `json:"type"`
	Tick       uint64    `json:"tick"`
	ShipID     string    `json:"shipId,omitempty"`
	AsteroidID uint64    `json:"asteroidId,omitempty"`
	Tier       int       `json:"tier,omitempty"`
	Points     int       `json:"points,omitempty"`
	Fragments  int       `json:"fragments,omitempty"`
	Wave       int       `json:"wave,omitempty"`
}

// DrainEvents returns the events accumulated since the previous drain and
// clears the queue. Order matches resolution order within each tick.
func (e *Engine) DrainEvents() []Event {
	if len(e.events) == 0 {
		return nil
	}
	drained := e.events
	e.events = nil
	return drained
}

func (e *Engine) emit(event Event) {
	event.Tick = e.tick
	e.events = append(e.events, event)
}
