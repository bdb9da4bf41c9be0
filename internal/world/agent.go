package world

import (
	"github.com/cmfunderburk/vmt/internal/econ"
)

// NeighborView is the frozen, per-tick snapshot of one visible neighbor,
// captured by Perception (Phase 1). Stale neighbor quotes are intentional —
// they model a one-tick information delay, not a bug.
type NeighborView struct {
	ID           AgentID
	Pos          Position
	Quote        econ.Quote
	PairedWithID *AgentID
}

// ResourceView is the frozen, per-tick snapshot of a visible resource cell.
type ResourceView struct {
	Pos         Position
	Type        ResourceType
	Amount      int64
	ClaimedBy   *AgentID
}

// PerceptionView is the single source of truth for an agent's decisions this
// tick: everything it could see when Phase 1 ran. No other state may be
// consulted by search protocols.
type PerceptionView struct {
	Neighbors []NeighborView
	Resources []ResourceView
}

// Agent is a participant in the simulation: it holds an inventory, occupies
// a cell, and carries the per-tick scratch fields the seven phases use to
// coordinate targeting, pairing, and foraging commitments.
type Agent struct {
	ID      AgentID
	Pos     Position
	Inv     econ.Inventory
	Utility econ.Utility
	Quote   econ.Quote

	VisionRadius      int
	InteractionRadius int
	MoveBudgetPerTick int

	PairedWithID *AgentID

	TargetPos     *Position
	TargetAgentID *AgentID

	IsForagingCommitted bool
	ForageTargetPos     *Position

	// Cooldowns maps a would-be partner's id to the tick at which a new pair
	// with them becomes eligible again.
	Cooldowns map[AgentID]Tick

	InventoryChanged bool

	PerceptionCache PerceptionView

	// TradesCompleted is a telemetry/diagnostic counter, not part of any
	// invariant.
	TradesCompleted int

	// protocolState is scratch storage for multi-tick protocols, keyed by
	// protocol name then by an arbitrary string key, written only via the
	// InternalStateUpdate effect.
	protocolState map[string]map[string]any
}

// NewAgent constructs an Agent with default (unpaired, untargeted, no
// cooldowns) per-tick scratch state and an initial quote computed from its
// starting inventory.
func NewAgent(id AgentID, pos Position, inv econ.Inventory, u econ.Utility, spread float64, vision, interaction, moveBudget int) *Agent {
	return &Agent{
		ID:                id,
		Pos:               pos,
		Inv:               inv,
		Utility:           u,
		Quote:             econ.ComputeQuote(u, inv, spread),
		VisionRadius:      vision,
		InteractionRadius: interaction,
		MoveBudgetPerTick: moveBudget,
		Cooldowns:         make(map[AgentID]Tick),
		protocolState:     make(map[string]map[string]any),
	}
}

// IsPaired reports whether the agent currently has a partner.
func (a *Agent) IsPaired() bool {
	return a.PairedWithID != nil
}

// InCooldownWith reports whether pairing with other is currently blocked.
func (a *Agent) InCooldownWith(other AgentID, now Tick) bool {
	until, ok := a.Cooldowns[other]
	return ok && now < until
}

// ClearCooldowns drops all cooldowns (called on successful foraging; a
// successful pairing drops only the two partners' mutual entries).
func (a *Agent) ClearCooldowns() {
	for k := range a.Cooldowns {
		delete(a.Cooldowns, k)
	}
}

// SetProtocolState stores protocol-scoped scratch state, the only legal
// mutation path for multi-tick protocol bookkeeping (applied only via the
// InternalStateUpdate effect).
func (a *Agent) SetProtocolState(protocol, key string, value any) {
	m, ok := a.protocolState[protocol]
	if !ok {
		m = make(map[string]any)
		a.protocolState[protocol] = m
	}
	m[key] = value
}

// GetProtocolState retrieves protocol-scoped scratch state.
func (a *Agent) GetProtocolState(protocol, key string) (any, bool) {
	m, ok := a.protocolState[protocol]
	if !ok {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}
