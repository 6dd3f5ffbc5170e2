package sim

// CommandType enumerates the supported simulation commands.
type CommandType string

const (
	CommandFire        CommandType = "Fire"
	CommandThrust      CommandType = "Thrust"
	CommandRotate      CommandType = "Rotate"
	CommandSpawnShip   CommandType = "SpawnShip"
	CommandDespawnShip CommandType = "DespawnShip"
)

// ThrustCommand carries the desired forward throttle for one tick.
type ThrustCommand struct {
	Magnitude float64 `json:"magnitude"`
}

// RotateCommand carries the desired turn direction for one tick. Direction
// is clamped to [-1, 1] and scaled by the ship's turn rate.
type RotateCommand struct {
	Direction float64 `json:"direction"`
}

// SpawnShipCommand adds a craft to the arena.
type SpawnShipCommand struct {
	Autonomous bool `json:"autonomous"`
}

// Command represents an intent captured for processing on the next tick.
type Command struct {
	ActorID string            `json:"actorId"`
	Type    CommandType       `json:"type"`
	Thrust  *ThrustCommand    `json:"thrust,omitempty"`
	Rotate  *RotateCommand    `json:"rotate,omitempty"`
	Spawn   *SpawnShipCommand `json:"spawn,omitempty"`
}
