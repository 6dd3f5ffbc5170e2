package fracture

import (
	"math"
	"math/rand"
	"testing"

	"github.com/jakecoffman/cp"

	"rockfall/engine/internal/kinetics"
)

var testBounds = kinetics.Bounds{Width: 800, Height: 600}

func newTestSystem(t *testing.T) *System {
	t.Helper()
	s, err := NewSystem(DefaultTable(), DefaultConfig())
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}
	return s
}

func TestTableValidate(t *testing.T) {
	cases := []struct {
		name  string
		table Table
	}{
		{"empty", Table{}},
		{"zero radius", Table{TierSmall: {Radius: 0, Health: 1}}},
		{"zero health", Table{TierSmall: {Radius: 10, Health: 0}}},
		{"negative points", Table{TierSmall: {Radius: 10, Health: 1, Points: -5}}},
		{"missing child tier", Table{
			TierMedium: {Radius: 20, Health: 1, ChildCount: 2, ChildTier: TierSmall},
		}},
		{"no terminal tier", Table{
			TierMedium: {Radius: 20, Health: 1, ChildCount: 2, ChildTier: TierSmall},
			TierSmall:  {Radius: 10, Health: 1, ChildCount: 2, ChildTier: TierMedium},
		}},
		{"child does not shrink", Table{
			TierMedium: {Radius: 20, Health: 1, ChildCount: 2, ChildTier: TierSmall},
			TierSmall:  {Radius: 30, Health: 1},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.table.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}

	if err := DefaultTable().Validate(); err != nil {
		t.Fatalf("default table should validate: %v", err)
	}
}

func TestFractureCascade(t *testing.T) {
	s := newTestSystem(t)
	rng := rand.New(rand.NewSource(7))

	parent := s.NewAsteroid(TierLarge, cp.Vector{X: 400, Y: 300}, cp.Vector{X: 20, Y: 0}, testBounds)
	impact := 0.0

	mediums := s.Fracture(rng, parent, &impact)
	if len(mediums) != 2 {
		t.Fatalf("expected 2 medium fragments, got %d", len(mediums))
	}

	var smalls []Asteroid
	for _, medium := range mediums {
		if medium.Tier != TierMedium {
			t.Fatalf("expected tier %d child, got %d", TierMedium, medium.Tier)
		}
		smalls = append(smalls, s.Fracture(rng, medium, &impact)...)
	}
	if len(smalls) != 4 {
		t.Fatalf("expected exactly 4 small fragments from one large body, got %d", len(smalls))
	}
	for _, small := range smalls {
		if small.Tier != TierSmall {
			t.Fatalf("expected terminal tier %d, got %d", TierSmall, small.Tier)
		}
		if children := s.Fracture(rng, small, &impact); len(children) != 0 {
			t.Fatalf("terminal tier must not fracture, got %d children", len(children))
		}
	}
}

func TestFractureChildPlacementAndVelocity(t *testing.T) {
	s := newTestSystem(t)
	rng := rand.New(rand.NewSource(11))

	parent := s.NewAsteroid(TierMedium, cp.Vector{X: 100, Y: 100}, cp.Vector{X: 60, Y: 0}, testBounds)
	impact := math.Pi / 4
	children := s.Fracture(rng, parent, &impact)
	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(children))
	}

	cfg := DefaultConfig()
	if children[0].Body.Pos.Equal(children[1].Body.Pos) {
		t.Fatalf("children must not spawn in exact overlap")
	}
	for i, child := range children {
		if dist := child.Body.Pos.Distance(parent.Body.Pos); dist > cfg.SpawnJitter+1e-9 {
			t.Fatalf("child %d jitter %.4f exceeds %.4f", i, dist, cfg.SpawnJitter)
		}
		scatter := child.Body.Vel.Sub(parent.Body.Vel.Mult(cfg.InheritFactor))
		if speed := scatter.Length(); speed < cfg.ScatterSpeedMin-1e-9 || speed > cfg.ScatterSpeedMax+1e-9 {
			t.Fatalf("child %d scatter speed %.4f outside [%.1f, %.1f]", i, speed, cfg.ScatterSpeedMin, cfg.ScatterSpeedMax)
		}
		diff := kinetics.AngleDiff(impact, scatter.ToAngle())
		if math.Abs(diff) > cfg.ScatterCone+1e-9 {
			t.Fatalf("child %d scatter angle off cone center by %.4f, cone %.4f", i, diff, cfg.ScatterCone)
		}
	}
}

func TestFractureDeterministicForFixedSeed(t *testing.T) {
	s := newTestSystem(t)
	impact := 1.0

	run := func() []Asteroid {
		rng := rand.New(rand.NewSource(42))
		parent := s.NewAsteroid(TierLarge, cp.Vector{X: 10, Y: 20}, cp.Vector{X: 5, Y: 5}, testBounds)
		return s.Fracture(rng, parent, &impact)
	}

	first, second := run(), run()
	if len(first) != len(second) {
		t.Fatalf("fragment counts diverged: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Body.Pos.Equal(second[i].Body.Pos) || !first[i].Body.Vel.Equal(second[i].Body.Vel) {
			t.Fatalf("fragment %d diverged between identical seeds", i)
		}
	}
}

func TestWaveDifficultyProgression(t *testing.T) {
	s := newTestSystem(t)
	cfg := DefaultWaveConfig()

	prevCount := 0
	prevSpeed := 0.0
	prevLarge := 2.0
	for wave := 1; wave <= 15; wave++ {
		spec := s.WaveDifficulty(cfg, wave)
		if spec.AsteroidCount < prevCount {
			t.Fatalf("wave %d count regressed: %d < %d", wave, spec.AsteroidCount, prevCount)
		}
		if spec.AsteroidCount > cfg.MaxCount {
			t.Fatalf("wave %d count %d exceeds cap %d", wave, spec.AsteroidCount, cfg.MaxCount)
		}
		if spec.SpeedMultiplier < prevSpeed {
			t.Fatalf("wave %d speed multiplier regressed: %f < %f", wave, spec.SpeedMultiplier, prevSpeed)
		}
		large := spec.TierWeights[TierLarge]
		if large > prevLarge+1e-9 {
			t.Fatalf("wave %d large-tier weight grew: %f > %f", wave, large, prevLarge)
		}
		prevCount, prevSpeed, prevLarge = spec.AsteroidCount, spec.SpeedMultiplier, large
	}

	late := s.WaveDifficulty(cfg, 100)
	if late.AsteroidCount != cfg.MaxCount {
		t.Fatalf("expected late waves capped at %d, got %d", cfg.MaxCount, late.AsteroidCount)
	}
	if late.TierWeights[TierLarge] > 0.2+1e-9 {
		t.Fatalf("expected large-tier weight floored at 0.2, got %f", late.TierWeights[TierLarge])
	}
}

func TestSpawnWaveRespectsSafeZone(t *testing.T) {
	s := newTestSystem(t)
	rng := rand.New(rand.NewSource(3))
	safe := &SafeZone{Center: cp.Vector{X: 400, Y: 300}, Radius: 120}

	asteroids := s.SpawnWave(rng, DefaultWaveConfig(), 1, safe, testBounds)
	if len(asteroids) == 0 {
		t.Fatalf("expected a non-empty wave")
	}
	for i, a := range asteroids {
		if a.Body.Pos.Distance(safe.Center) < safe.Radius {
			t.Fatalf("asteroid %d spawned inside the safe zone at %+v", i, a.Body.Pos)
		}
		if a.Health <= 0 || a.Radius <= 0 {
			t.Fatalf("asteroid %d missing tier stats: %+v", i, a)
		}
	}
}

func TestSpawnWaveEdgeFallback(t *testing.T) {
	s := newTestSystem(t)
	rng := rand.New(rand.NewSource(5))

	// A safe zone covering the entire field forces the edge fallback.
	safe := &SafeZone{Center: cp.Vector{X: 400, Y: 300}, Radius: 5000}
	asteroids := s.SpawnWave(rng, DefaultWaveConfig(), 1, safe, testBounds)
	for i, a := range asteroids {
		if a.Body.Pos.X != 0 && a.Body.Pos.Y != 0 {
			t.Fatalf("asteroid %d expected on an edge, got %+v", i, a.Body.Pos)
		}
	}
}

func TestSpawnWaveDeterministicForFixedSeed(t *testing.T) {
	s := newTestSystem(t)

	run := func() []Asteroid {
		rng := rand.New(rand.NewSource(99))
		return s.SpawnWave(rng, DefaultWaveConfig(), 3, nil, testBounds)
	}
	first, second := run(), run()
	if len(first) != len(second) {
		t.Fatalf("wave sizes diverged: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Tier != second[i].Tier || !first[i].Body.Pos.Equal(second[i].Body.Pos) {
			t.Fatalf("wave member %d diverged between identical seeds", i)
		}
	}
}
