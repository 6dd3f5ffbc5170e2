package fracture

import (
	"fmt"
	"math/rand"

	"github.com/jakecoffman/cp"

	"rockfall/engine/internal/kinetics"
)

// placementAttempts bounds safe-zone retries before falling back to an edge
// position.
const placementAttempts = 16

// SafeZone is a circular exclusion region, typically centered on the player.
type SafeZone struct {
	Center cp.Vector
	Radius float64
}

// WaveConfig tunes the deterministic difficulty progression.
type WaveConfig struct {
	BaseCount   int     `json:"baseCount" yaml:"base_count"`
	MaxCount    int     `json:"maxCount" yaml:"max_count"`
	SpeedGrowth float64 `json:"speedGrowth" yaml:"speed_growth"`
	BaseSpeed   float64 `json:"baseSpeed" yaml:"base_speed"`
}

// DefaultWaveConfig returns the stock wave progression.
func DefaultWaveConfig() WaveConfig {
	return WaveConfig{
		BaseCount:   4,
		MaxCount:    12,
		SpeedGrowth: 0.1,
		BaseSpeed:   40,
	}
}

// Validate rejects progressions that cannot spawn a playable wave.
func (c WaveConfig) Validate() error {
	if c.BaseCount <= 0 {
		return fmt.Errorf("fracture: wave base count must be positive, got %d", c.BaseCount)
	}
	if c.MaxCount < c.BaseCount {
		return fmt.Errorf("fracture: wave max count %d below base count %d", c.MaxCount, c.BaseCount)
	}
	if c.BaseSpeed <= 0 {
		return fmt.Errorf("fracture: wave base speed must be positive, got %f", c.BaseSpeed)
	}
	if c.SpeedGrowth < 0 {
		return fmt.Errorf("fracture: wave speed growth must be non-negative, got %f", c.SpeedGrowth)
	}
	return nil
}

// WaveSpec is the resolved difficulty for one wave.
type WaveSpec struct {
	AsteroidCount   int
	SpeedMultiplier float64
	// TierWeights bias the size distribution. Indexed by tier in the
	// system's table; weights shift toward smaller tiers as waves rise.
	TierWeights map[Tier]float64
}

// WaveDifficulty computes the deterministic progression for a 1-based wave
// number: the count grows by one per wave up to the cap, speed rises
// linearly, and the size weighting drifts from large toward small.
func (s *System) WaveDifficulty(cfg WaveConfig, wave int) WaveSpec {
	if wave < 1 {
		wave = 1
	}
	count := cfg.BaseCount + (wave - 1)
	if count > cfg.MaxCount {
		count = cfg.MaxCount
	}

	// Large bodies start at 70% of spawns and give up 5% per wave to the
	// smaller tiers, bottoming out at 20%.
	largeShare := 0.7 - 0.05*float64(wave-1)
	if largeShare < 0.2 {
		largeShare = 0.2
	}

	tiers := s.table.Tiers()
	weights := make(map[Tier]float64, len(tiers))
	largest := tiers[len(tiers)-1]
	if len(tiers) == 1 {
		weights[largest] = 1
	} else {
		rest := (1 - largeShare) / float64(len(tiers)-1)
		for _, tier := range tiers {
			if tier == largest {
				weights[tier] = largeShare
			} else {
				weights[tier] = rest
			}
		}
	}

	return WaveSpec{
		AsteroidCount:   count,
		SpeedMultiplier: 1 + cfg.SpeedGrowth*float64(wave-1),
		TierWeights:     weights,
	}
}

// SpawnWave creates the asteroids for a wave. Placement retries outside the
// optional safe zone up to a bound, then falls back to a position on the
// field's edge. Tier selection and trajectories come from the supplied rng
// so a fixed seed reproduces the wave exactly.
func (s *System) SpawnWave(rng *rand.Rand, cfg WaveConfig, wave int, safe *SafeZone, bounds kinetics.Bounds) []Asteroid {
	spec := s.WaveDifficulty(cfg, wave)
	tiers := s.table.Tiers()

	asteroids := make([]Asteroid, 0, spec.AsteroidCount)
	for i := 0; i < spec.AsteroidCount; i++ {
		tier := s.pickTier(rng, tiers, spec.TierWeights)
		pos := s.pickPosition(rng, safe, bounds)

		angle := rng.Float64() * kinetics.Tau
		speed := cfg.BaseSpeed * spec.SpeedMultiplier * (0.5 + rng.Float64())
		asteroids = append(asteroids, s.NewAsteroid(tier, pos, cp.ForAngle(angle).Mult(speed), bounds))
	}
	return asteroids
}

func (s *System) pickTier(rng *rand.Rand, tiers []Tier, weights map[Tier]float64) Tier {
	total := 0.0
	for _, tier := range tiers {
		total += weights[tier]
	}
	if total <= 0 {
		return tiers[len(tiers)-1]
	}
	roll := rng.Float64() * total
	for _, tier := range tiers {
		roll -= weights[tier]
		if roll < 0 {
			return tier
		}
	}
	return tiers[len(tiers)-1]
}

func (s *System) pickPosition(rng *rand.Rand, safe *SafeZone, bounds kinetics.Bounds) cp.Vector {
	for attempt := 0; attempt < placementAttempts; attempt++ {
		pos := cp.Vector{
			X: rng.Float64() * bounds.Width,
			Y: rng.Float64() * bounds.Height,
		}
		if safe == nil || pos.Distance(safe.Center) >= safe.Radius {
			return pos
		}
	}
	// Retries exhausted: drop the body on an edge, which by construction
	// is the farthest ring from a centered safe zone.
	edge := cp.Vector{X: 0, Y: rng.Float64() * bounds.Height}
	if rng.Float64() < 0.5 {
		edge = cp.Vector{X: rng.Float64() * bounds.Width, Y: 0}
	}
	return edge
}
