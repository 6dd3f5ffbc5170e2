package sim

import (
	"math/rand"

	"rockfall/engine/internal/telemetry"
	"rockfall/engine/logging"
)

// Deps carries shared infrastructure dependencies required by the engine.
// Missing fields are replaced with no-op implementations at construction so
// callers only wire what they observe.
type Deps struct {
	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	Publisher logging.Publisher
	RNG       *rand.Rand
}

func (d Deps) withDefaults(seed string) Deps {
	filled := d
	if filled.Logger == nil {
		filled.Logger = telemetry.NopLogger()
	}
	if filled.Metrics == nil {
		filled.Metrics = telemetry.NopMetrics()
	}
	if filled.Publisher == nil {
		filled.Publisher = logging.NopPublisher()
	}
	if filled.RNG == nil {
		filled.RNG = NewDeterministicRNG(seed, "engine")
	}
	return filled
}
