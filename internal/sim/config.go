package sim

import (
	"fmt"
	"strings"

	"rockfall/engine/internal/fracture"
	"rockfall/engine/internal/kinetics"
	"rockfall/engine/internal/pilot"
	"rockfall/engine/internal/projectile"
)

const (
	DefaultSeed   = "rockfall"
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
)

// ShipConfig tunes the craft shared by players and autonomous pilots.
type ShipConfig struct {
	Radius           float64 `json:"radius" yaml:"radius"`
	ThrustPower      float64 `json:"thrustPower" yaml:"thrust_power"`
	Drag             float64 `json:"drag" yaml:"drag"`
	MaxSpeed         float64 `json:"maxSpeed" yaml:"max_speed"`
	TurnRate         float64 `json:"turnRate" yaml:"turn_rate"`
	ProjectileSpeed  float64 `json:"projectileSpeed" yaml:"projectile_speed"`
	ProjectileDamage float64 `json:"projectileDamage" yaml:"projectile_damage"`
}

// Config aggregates every tunable the engine validates at construction.
type Config struct {
	Seed     string  `json:"seed" yaml:"seed"`
	Width    float64 `json:"width" yaml:"width"`
	Height   float64 `json:"height" yaml:"height"`
	TickRate int     `json:"tickRate" yaml:"tick_rate"`

	Ship        ShipConfig          `json:"ship" yaml:"ship"`
	Projectiles projectile.Config   `json:"projectiles" yaml:"projectiles"`
	Fracture    fracture.Config     `json:"fracture" yaml:"fracture"`
	Tiers       fracture.Table      `json:"tiers" yaml:"tiers"`
	Steering    pilot.Weights       `json:"steering" yaml:"steering"`
	Waves       fracture.WaveConfig `json:"waves" yaml:"waves"`
}

// DefaultConfig returns the stock arena.
func DefaultConfig() Config {
	return Config{
		Seed:     DefaultSeed,
		Width:    DefaultWidth,
		Height:   DefaultHeight,
		TickRate: 60,
		Ship: ShipConfig{
			Radius:           14,
			ThrustPower:      220,
			Drag:             0.985,
			MaxSpeed:         240,
			TurnRate:         3.5,
			ProjectileSpeed:  420,
			ProjectileDamage: 1,
		},
		Projectiles: projectile.Config{
			PoolSize: 32,
			Cooldown: 0.25,
			Lifetime: 1.6,
			Radius:   2,
		},
		Fracture: fracture.DefaultConfig(),
		Tiers:    fracture.DefaultTable(),
		Steering: pilot.DefaultWeights(),
		Waves:    fracture.DefaultWaveConfig(),
	}
}

// Normalized trims the seed and falls back to defaults for blank fields.
func (c Config) Normalized() Config {
	normalized := c
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = DefaultSeed
	}
	if normalized.Tiers == nil {
		normalized.Tiers = fracture.DefaultTable()
	}
	return normalized
}

// Validate rejects setups that indicate a configuration error. Runtime
// conditions never reach this path; only construction fails.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("sim: world bounds must be positive, got %fx%f", c.Width, c.Height)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("sim: tick rate must be positive, got %d", c.TickRate)
	}
	if c.Ship.Radius <= 0 {
		return fmt.Errorf("sim: ship radius must be positive, got %f", c.Ship.Radius)
	}
	if c.Ship.ThrustPower <= 0 || c.Ship.MaxSpeed <= 0 {
		return fmt.Errorf("sim: ship thrust and max speed must be positive")
	}
	if c.Ship.TurnRate <= 0 {
		return fmt.Errorf("sim: ship turn rate must be positive, got %f", c.Ship.TurnRate)
	}
	if c.Ship.Drag < 0 || c.Ship.Drag >= 1 {
		return fmt.Errorf("sim: ship drag must lie in [0, 1), got %f", c.Ship.Drag)
	}
	if c.Ship.ProjectileSpeed <= 0 {
		return fmt.Errorf("sim: projectile speed must be positive, got %f", c.Ship.ProjectileSpeed)
	}
	if c.Ship.ProjectileDamage <= 0 {
		return fmt.Errorf("sim: projectile damage must be positive, got %f", c.Ship.ProjectileDamage)
	}
	if err := c.Projectiles.Validate(); err != nil {
		return err
	}
	if err := c.Tiers.Validate(); err != nil {
		return err
	}
	if err := c.Steering.Validate(); err != nil {
		return err
	}
	if err := c.Waves.Validate(); err != nil {
		return err
	}
	return nil
}

// Bounds returns the toroidal field described by the config.
func (c Config) Bounds() kinetics.Bounds {
	return kinetics.Bounds{Width: c.Width, Height: c.Height}
}
