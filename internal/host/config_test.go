package host

import (
	"os"
	"path/filepath"
	"testing"

	"rockfall/engine/logging"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadWithoutPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != DefaultListen {
		t.Fatalf("expected default listen %q, got %q", DefaultListen, cfg.Listen)
	}
	if cfg.SnapshotEvery != DefaultSnapshotEvery {
		t.Fatalf("expected default cadence %d, got %d", DefaultSnapshotEvery, cfg.SnapshotEvery)
	}
	if cfg.Sim.TickRate != 60 {
		t.Fatalf("expected the stock engine config nested, got tick rate %d", cfg.Sim.TickRate)
	}
}

func TestLoadReadsYAML(t *testing.T) {
	path := writeFile(t, "server.yaml", `
listen: ":9999"
snapshot_every: 4
log_severity: debug
sim:
  seed: yaml-run
  width: 1024
  height: 768
  ship:
    radius: 14
    thrust_power: 220
    drag: 0.985
    max_speed: 240
    turn_rate: 3.5
    projectile_speed: 420
    projectile_damage: 1
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":9999" || cfg.SnapshotEvery != 4 {
		t.Fatalf("yaml fields not applied: %+v", cfg)
	}
	if cfg.Sim.Seed != "yaml-run" || cfg.Sim.Width != 1024 || cfg.Sim.Height != 768 {
		t.Fatalf("nested engine fields not applied: %+v", cfg.Sim)
	}
	severity, err := cfg.Severity()
	if err != nil {
		t.Fatalf("Severity: %v", err)
	}
	if severity != logging.SeverityDebug {
		t.Fatalf("expected debug severity, got %v", severity)
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := writeFile(t, "server.yaml", `
listen: ":9999"
sim:
  seed: yaml-run
`)
	t.Setenv("ROCKFALL_LISTEN", ":7777")
	t.Setenv("ROCKFALL_SEED", "env-run")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":7777" {
		t.Fatalf("expected env listen, got %q", cfg.Listen)
	}
	if cfg.Sim.Seed != "env-run" {
		t.Fatalf("expected env seed, got %q", cfg.Sim.Seed)
	}
}

func TestLoadRejectsBrokenConfig(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"unparsable", "listen: [\n"},
		{"blank listen", `listen: " "`},
		{"bad cadence", "snapshot_every: -1"},
		{"bad severity", "log_severity: shouting"},
		{"bad engine field", "sim:\n  tick_rate: -5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, "server.yaml", tc.content)
			if _, err := Load(path); err == nil {
				t.Fatalf("expected Load to fail")
			}
		})
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected a read error")
	}
}

func TestLoadTuning(t *testing.T) {
	path := writeFile(t, "tuning.yaml", `
steering:
  seek: 2
  avoid: 150
  turn_rate: 4
  danger_radius: 80
  arrive_tolerance: 20
waves:
  base_count: 5
  max_count: 15
  speed_growth: 0.2
  base_speed: 50
`)
	tuning, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("LoadTuning: %v", err)
	}
	if tuning.Steering.Seek != 2 || tuning.Steering.Avoid != 150 {
		t.Fatalf("steering not applied: %+v", tuning.Steering)
	}
	if tuning.Waves.BaseCount != 5 || tuning.Waves.MaxCount != 15 {
		t.Fatalf("waves not applied: %+v", tuning.Waves)
	}
}

func TestLoadTuningPartialFileKeepsDefaults(t *testing.T) {
	path := writeFile(t, "tuning.yaml", `
steering:
  seek: 3
  avoid: 120
  turn_rate: 4
  danger_radius: 90
  arrive_tolerance: 24
`)
	tuning, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("LoadTuning: %v", err)
	}
	if tuning.Steering.Seek != 3 {
		t.Fatalf("expected seek 3, got %f", tuning.Steering.Seek)
	}
	if tuning.Waves != DefaultTuning().Waves {
		t.Fatalf("expected stock waves preserved, got %+v", tuning.Waves)
	}
}

func TestLoadTuningRejectsInvalidWeights(t *testing.T) {
	path := writeFile(t, "tuning.yaml", `
steering:
  seek: 1
  avoid: 120
  turn_rate: 0
  danger_radius: 90
  arrive_tolerance: 24
`)
	if _, err := LoadTuning(path); err == nil {
		t.Fatalf("expected invalid tuning rejected")
	}
}
