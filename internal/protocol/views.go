// Package protocol defines the three pluggable strategy interfaces — search,
// matching, and bargaining — and the read-only views the engine builds for
// them. Protocols never mutate world state directly; they return effects for
// the owning system to apply.
package protocol

import (
	"math/rand/v2"

	"github.com/cmfunderburk/vmt/internal/econ"
	"github.com/cmfunderburk/vmt/internal/world"
)

// AgentSummary is the read-only subset of an Agent a protocol is allowed to
// reason about — no protocol ever gets a mutable *world.Agent except
// bargaining, which is deliberately passed full agent references per the
// no-params-smuggling rule.
type AgentSummary struct {
	ID                  world.AgentID
	Pos                 world.Position
	Inventory           econ.Inventory
	Utility             econ.Utility
	Quote               econ.Quote
	PairedWithID        *world.AgentID
	IsForagingCommitted bool
	ForageTargetPos     *world.Position
	Cooldowns           map[world.AgentID]world.Tick
	VisionRadius        int
	InteractionRadius   int
}

// SummarizeAgent builds a read-only AgentSummary from a live agent.
func SummarizeAgent(a *world.Agent) AgentSummary {
	return AgentSummary{
		ID:                  a.ID,
		Pos:                 a.Pos,
		Inventory:           a.Inv,
		Utility:             a.Utility,
		Quote:               a.Quote,
		PairedWithID:        a.PairedWithID,
		IsForagingCommitted: a.IsForagingCommitted,
		ForageTargetPos:     a.ForageTargetPos,
		Cooldowns:           a.Cooldowns,
		VisionRadius:        a.VisionRadius,
		InteractionRadius:   a.InteractionRadius,
	}
}

// WorldView is the agent-scoped view presented to search protocols. It is
// built once per agent from that agent's frozen perception cache — nothing
// outside the cache is reachable through it.
type WorldView struct {
	Self      AgentSummary
	Neighbors []world.NeighborView
	Resources []world.ResourceView
	Tick      world.Tick
	Mode      world.Mode
	RNG       *rand.Rand
}

// ProtocolContext is the simulation-scoped view presented to matching and
// bargaining protocols: every agent's essential fields and current
// pairings.
type ProtocolContext struct {
	Agents map[world.AgentID]AgentSummary
	Order  []world.AgentID // ascending id order
	Tick   world.Tick
	Mode   world.Mode
	RNG    *rand.Rand
}

// BuildProtocolContext snapshots every agent in state into a ProtocolContext.
func BuildProtocolContext(s *world.State, rng *rand.Rand) ProtocolContext {
	agents := make(map[world.AgentID]AgentSummary, len(s.Order))
	for _, id := range s.Order {
		agents[id] = SummarizeAgent(s.Agent(id))
	}
	return ProtocolContext{Agents: agents, Order: s.Order, Tick: s.Tick, Mode: s.Mode(), RNG: rng}
}

// TargetKind distinguishes an agent target (trade) from a position target
// (forage).
type TargetKind int

const (
	TargetAgent TargetKind = iota
	TargetPosition
)

// Target is a search protocol's candidate: either another agent or a
// resource position, never both.
type Target struct {
	Kind  TargetKind
	Agent world.AgentID
	Pos   world.Position
}

// Preference is one ranked candidate returned by BuildPreferences, carrying
// enough metadata for the matching protocol to re-derive the evaluator's
// reasoning without recomputing it.
type Preference struct {
	Target Target
	Score  float64
	Meta   map[string]any
}
