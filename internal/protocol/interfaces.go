package protocol

import (
	"github.com/cmfunderburk/vmt/internal/effectpkg"
	"github.com/cmfunderburk/vmt/internal/world"
)

// Search ranks an agent's visible candidates (trade partners and/or
// resources) and decides where it should head this tick.
type Search interface {
	Name() string
	BuildPreferences(view WorldView) []Preference
	SelectTarget(view WorldView, prefs []Preference) []effectpkg.Effect
}

// Matching forms bilateral pairs from every agent's preferences.
type Matching interface {
	Name() string
	Match(ctx ProtocolContext, preferences map[world.AgentID][]Preference) []effectpkg.Effect
}

// Bargaining negotiates a trade (or dissolves the pairing) between an
// already-paired pair. Agents are passed as read-only references to their
// full state, never copied into a params map.
type Bargaining interface {
	Name() string
	Bargain(ctx ProtocolContext, a, b *world.Agent) []effectpkg.Effect
}

// TradeEvaluation is the trade-potential evaluator's verdict: fast,
// heuristic, quote-overlap-only. Its only consumer is matching.
type TradeEvaluation struct {
	Feasible         bool
	EstimatedSurplus float64
	// PreferredDirection is "a_gives_A" or "b_gives_A".
	PreferredDirection string
	Confidence         float64
}

// TradeEvaluator is the heuristic used by matching. It must never evaluate
// full utility — quote overlap only.
type TradeEvaluator interface {
	Evaluate(a, b AgentSummary) TradeEvaluation
}

// DiscoveredTrade is a concrete, utility-verified candidate trade.
type DiscoveredTrade struct {
	DAa, DBa int64 // a's inventory deltas
	DAb, DBb int64 // b's inventory deltas; DAa+DAb=0, DBa+DBb=0
	DeltaUa  float64
	DeltaUb  float64
	Price    float64
	PairType string
	// Direction is "a_gives_A" or "b_gives_A", the same convention
	// TradeEvaluation.PreferredDirection uses.
	Direction string
}

// TradeDiscoverer is the full-utility search used by bargaining. It must
// never be called by matching — that decoupling is the point of having two
// separate interfaces instead of one.
type TradeDiscoverer interface {
	Discover(a, b *world.Agent, eps float64) (DiscoveredTrade, bool)
}
