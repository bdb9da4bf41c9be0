// Package econ provides exact-arithmetic inventories, utility functions, and
// the bid/ask quote model agents use to value trades.
package econ

import "fmt"

// Scale is the number of minor units per whole unit of a good. Inventories
// are stored as integer minor units so arithmetic and equality are exact;
// floats are never used for quantities or trade deltas.
const Scale int64 = 100

// Inventory holds an agent's holdings of goods A and B in integer minor
// units. A and B must never go negative outside of a Trade/Harvest effect
// application, which itself never leaves them negative.
type Inventory struct {
	A int64
	B int64
}

// Valid reports whether the inventory satisfies the non-negativity
// invariant required at every quiescent point between phase effects.
func (inv Inventory) Valid() bool {
	return inv.A >= 0 && inv.B >= 0
}

// WithDelta returns a new Inventory with dA, dB (in minor units) applied,
// and an error if the result would violate non-negativity. Callers in the
// effect-dispatch path treat this error as a contract violation: effects are
// only emitted when the deltas are known to be affordable.
func (inv Inventory) WithDelta(dA, dB int64) (Inventory, error) {
	next := Inventory{A: inv.A + dA, B: inv.B + dB}
	if !next.Valid() {
		return Inventory{}, fmt.Errorf("inventory delta (%d,%d) on (%d,%d) would go negative", dA, dB, inv.A, inv.B)
	}
	return next, nil
}

// Float converts to (a, b) floating point whole units, used only for utility
// evaluation and surplus comparisons — never for storage or deltas.
func (inv Inventory) Float() (a, b float64) {
	return float64(inv.A) / float64(Scale), float64(inv.B) / float64(Scale)
}

// FromWhole builds an Inventory from whole-unit quantities (used by scenario
// endowment parsing).
func FromWhole(a, b int64) Inventory {
	return Inventory{A: a * Scale, B: b * Scale}
}

// RoundToQuantity converts a floating-point quantity of B (e.g. a candidate
// price times dA) to integer minor units using round-half-up, the single
// rounding rule the bargaining protocols are required to share so that price
// candidate evaluation is reproducible across ports.
func RoundToQuantity(x float64) int64 {
	scaled := x * float64(Scale)
	if scaled >= 0 {
		return int64(scaled + 0.5)
	}
	return -int64(-scaled + 0.5)
}
