package logging

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Metrics is a keyed counter/gauge registry shared across the engine and
// host. The zero value is ready to use.
type Metrics struct {
	mu      sync.RWMutex
	entries map[string]*atomic.Uint64
}

func (m *Metrics) entry(key string) *atomic.Uint64 {
	m.mu.RLock()
	value, ok := m.entries[key]
	m.mu.RUnlock()
	if ok {
		return value
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string]*atomic.Uint64)
	}
	if value, ok = m.entries[key]; !ok {
		value = &atomic.Uint64{}
		m.entries[key] = value
	}
	return value
}

// TelemetryAdd increments a counter.
func (m *Metrics) TelemetryAdd(key string, delta uint64) {
	if m == nil {
		return
	}
	m.entry(key).Add(delta)
}

// TelemetryStore overwrites a gauge.
func (m *Metrics) TelemetryStore(key string, value uint64) {
	if m == nil {
		return
	}
	m.entry(key).Store(value)
}

// TelemetryValue reads a single key, zero when absent.
func (m *Metrics) TelemetryValue(key string) uint64 {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if value, ok := m.entries[key]; ok {
		return value.Load()
	}
	return 0
}

// TelemetrySnapshot copies every key in sorted order for stable reporting.
func (m *Metrics) TelemetrySnapshot() map[string]uint64 {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot := make(map[string]uint64, len(m.entries))
	for key, value := range m.entries {
		snapshot[key] = value.Load()
	}
	return snapshot
}

// TelemetryKeys lists the known keys in sorted order.
func (m *Metrics) TelemetryKeys() []string {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.entries))
	for key := range m.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
