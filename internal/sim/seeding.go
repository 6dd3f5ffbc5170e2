package sim

import (
	"hash/fnv"
	"math/rand"
)

// DeterministicSeedValue hashes a root seed plus a subsystem label into a
// stable numeric seed. Distinct labels decorrelate subsystems that share one
// root seed without losing replayability.
func DeterministicSeedValue(rootSeed, label string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(rootSeed))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

// NewDeterministicRNG builds the seeded generator threaded through the
// engine. The engine never reads an ambient global source.
func NewDeterministicRNG(rootSeed, label string) *rand.Rand {
	return rand.New(rand.NewSource(DeterministicSeedValue(rootSeed, label)))
}
