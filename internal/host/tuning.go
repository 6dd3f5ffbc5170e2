package host

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"rockfall/engine/internal/fracture"
	"rockfall/engine/internal/pilot"
)

// Tuning holds the knobs the server reloads without a restart: steering
// weights for the autonomous pilots and the wave difficulty curve.
type Tuning struct {
	Steering pilot.Weights       `yaml:"steering"`
	Waves    fracture.WaveConfig `yaml:"waves"`
}

// DefaultTuning mirrors the engine's stock values.
func DefaultTuning() Tuning {
	return Tuning{
		Steering: pilot.DefaultWeights(),
		Waves:    fracture.DefaultWaveConfig(),
	}
}

// LoadTuning reads and validates a tuning file. Fields absent from the
// file keep their stock values, so a file tweaking only one weight stays
// valid.
func LoadTuning(path string) (Tuning, error) {
	tuning := DefaultTuning()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("host: read tuning %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &tuning); err != nil {
		return Tuning{}, fmt.Errorf("host: parse tuning %s: %w", path, err)
	}
	if err := tuning.Steering.Validate(); err != nil {
		return Tuning{}, fmt.Errorf("host: tuning %s: %w", path, err)
	}
	if err := tuning.Waves.Validate(); err != nil {
		return Tuning{}, fmt.Errorf("host: tuning %s: %w", path, err)
	}
	return tuning, nil
}
