// Package fracture drives the cascading destruction of asteroids: a static
// size-tier table, the split logic invoked on projectile impacts, and the
// wave spawner used between rounds. The package owns no entity storage; it
// returns fragments as values and the engine decides where they live.
package fracture

import (
	"fmt"
	"sort"
)

// Tier is a discrete size class. Higher tiers are bigger, slower, and split
// into children of the next tier down.
type Tier int

const (
	TierSmall  Tier = 1
	TierMedium Tier = 2
	TierLarge  Tier = 3
)

// TierSpec describes one size class. A terminal tier has ChildCount zero and
// its bodies simply vanish when destroyed.
type TierSpec struct {
	Radius     float64 `json:"radius" yaml:"radius"`
	Health     int     `json:"health" yaml:"health"`
	Points     int     `json:"points" yaml:"points"`
	ChildCount int     `json:"childCount" yaml:"child_count"`
	ChildTier  Tier    `json:"childTier" yaml:"child_tier"`
}

// Table maps each tier to its spec.
type Table map[Tier]TierSpec

// DefaultTable mirrors the classic three-class progression: large rocks are
// worth the least and split twice before vanishing.
func DefaultTable() Table {
	return Table{
		TierLarge:  {Radius: 40, Health: 3, Points: 20, ChildCount: 2, ChildTier: TierMedium},
		TierMedium: {Radius: 20, Health: 2, Points: 50, ChildCount: 2, ChildTier: TierSmall},
		TierSmall:  {Radius: 10, Health: 1, Points: 100, ChildCount: 0},
	}
}

// Tiers returns the table's tiers in ascending order. Deterministic code
// paths must never range over the map directly.
func (t Table) Tiers() []Tier {
	tiers := make([]Tier, 0, len(t))
	for tier := range t {
		tiers = append(tiers, tier)
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i] < tiers[j] })
	return tiers
}

// Largest returns the biggest tier in the table.
func (t Table) Largest() Tier {
	tiers := t.Tiers()
	if len(tiers) == 0 {
		return 0
	}
	return tiers[len(tiers)-1]
}

// Validate rejects malformed tables: empty tables, non-positive radii or
// health, negative point values, children pointing at missing tiers, and
// tables without a reachable terminal tier.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("fracture: tier table is empty")
	}
	terminal := false
	for _, tier := range t.Tiers() {
		spec := t[tier]
		if spec.Radius <= 0 {
			return fmt.Errorf("fracture: tier %d radius must be positive, got %f", tier, spec.Radius)
		}
		if spec.Health <= 0 {
			return fmt.Errorf("fracture: tier %d health must be positive, got %d", tier, spec.Health)
		}
		if spec.Points < 0 {
			return fmt.Errorf("fracture: tier %d points must be non-negative, got %d", tier, spec.Points)
		}
		if spec.ChildCount < 0 {
			return fmt.Errorf("fracture: tier %d child count must be non-negative, got %d", tier, spec.ChildCount)
		}
		if spec.ChildCount == 0 {
			terminal = true
			continue
		}
		child, ok := t[spec.ChildTier]
		if !ok {
			return fmt.Errorf("fracture: tier %d references missing child tier %d", tier, spec.ChildTier)
		}
		if spec.ChildTier >= tier {
			return fmt.Errorf("fracture: tier %d child tier %d does not shrink", tier, spec.ChildTier)
		}
		if child.Radius >= spec.Radius {
			return fmt.Errorf("fracture: tier %d child radius %f is not smaller than %f", tier, child.Radius, spec.Radius)
		}
	}
	if !terminal {
		return fmt.Errorf("fracture: table has no terminal tier")
	}
	return nil
}
