// Package systems implements the seven tick phases, each a small type with
// a Run(ctx *TickContext) error method, invoked in fixed order by
// internal/engine. A phase is the only code allowed to mutate the piece of
// world state it owns, and always by applying an Effect.
package systems

import (
	"math/rand/v2"

	"github.com/cmfunderburk/vmt/internal/protocol"
	"github.com/cmfunderburk/vmt/internal/world"
)

// Params are the global, scenario-supplied parameters every phase consults.
// Per-agent fields (vision radius, move budget, ...) live on world.Agent
// instead, since the specification allows them to vary per agent.
type Params struct {
	Spread                 float64
	Eps                    float64
	ForageRate             int64 // minor units harvested per unpaired agent per tick
	TradeCooldownTicks     world.Tick
	ResourceRegenCooldown  world.Tick
	ResourceGrowthRate     int64
	EnforceSingleHarvester bool
	EnableResourceClaiming bool
	LogPreferences         bool
}

// TelemetrySink is the subset of internal/telemetry.Sink the systems
// package needs. Defining it here rather than importing internal/telemetry
// keeps systems free of a dependency it doesn't otherwise need; any
// telemetry.Sink implementation satisfies it structurally.
type TelemetrySink interface {
	TickState(tick world.Tick, mode world.Mode)
	AgentSnapshot(tick world.Tick, a *world.Agent)
	ResourceSnapshot(tick world.Tick, pos world.Position, r *world.Resource)
	TradeEvent(tick world.Tick, pos world.Position, buyer, seller world.AgentID, dA, dB int64, price float64, direction, pairType string, buyerSurplus, sellerSurplus float64)
	PairingEvent(tick world.Tick, a, b world.AgentID, kind, reason string, surplusA float64, surplusB *float64)
	PreferenceLog(tick world.Tick, agent world.AgentID, prefs []protocol.Preference)
}

// TickContext bundles everything a phase needs for one tick: the mutable
// world state, the resolved protocol instances, the shared RNG, global
// params, and the telemetry sink. The engine builds a fresh one for every
// tick, so its Diagnostics slice starts empty each tick.
type TickContext struct {
	State *world.State

	Search     protocol.Search
	Matching   protocol.Matching
	Bargaining protocol.Bargaining

	RNG    *rand.Rand
	Params Params
	Sink   TelemetrySink

	// processedPairs is reset at the start of each Trade phase run; it
	// prevents a pair from being considered twice when both of its
	// members are visited in id order.
	processedPairs map[pairKey]bool

	// Diagnostics accumulates errors the phases observed this tick. The
	// engine returns any ContractViolation among them as soon as the phase
	// that recorded it finishes, and logs the rest at the end of the tick.
	Diagnostics []error
}

type pairKey struct{ lo, hi world.AgentID }

func makePairKey(a, b world.AgentID) pairKey {
	if a < b {
		return pairKey{lo: a, hi: b}
	}
	return pairKey{lo: b, hi: a}
}
