// Package effectpkg defines the closed set of state-change records that
// cross protocol boundaries. Every mutation a protocol wants to make to the
// world is expressed as an Effect and applied by the host system that owns
// the affected state — protocols never mutate world state directly.
package effectpkg

import "fmt"

// Kind tags which payload field of an Effect is populated. Dispatch is an
// exhaustive switch over Kind in each owning system; an unrecognized Kind is
// a contract violation, never silently ignored.
type Kind int

const (
	KindSetTarget Kind = iota
	KindClaimResource
	KindReleaseClaim
	KindPair
	KindUnpair
	KindTrade
	KindMove
	KindHarvest
	KindRefreshQuotes
	KindSetCooldown
	KindInternalStateUpdate
)

func (k Kind) String() string {
	switch k {
	case KindSetTarget:
		return "SetTarget"
	case KindClaimResource:
		return "ClaimResource"
	case KindReleaseClaim:
		return "ReleaseClaim"
	case KindPair:
		return "Pair"
	case KindUnpair:
		return "Unpair"
	case KindTrade:
		return "Trade"
	case KindMove:
		return "Move"
	case KindHarvest:
		return "Harvest"
	case KindRefreshQuotes:
		return "RefreshQuotes"
	case KindSetCooldown:
		return "SetCooldown"
	case KindInternalStateUpdate:
		return "InternalStateUpdate"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// AgentID identifies an agent. Position identifies a grid cell. Both are
// defined in internal/world; effectpkg takes them as type parameters via
// plain ints/structs to avoid an import cycle, re-exported as aliases by
// internal/world at the call sites that build effects.
type AgentID int

type Pos struct {
	X, Y int
}

// Effect is a tagged union: exactly one of the payload pointer fields is
// non-nil, matching Kind. Build effects only with the constructors below —
// never with a literal — so that invariant can't be violated.
type Effect struct {
	Kind Kind

	SetTarget           *SetTargetPayload
	ClaimResource       *ClaimResourcePayload
	ReleaseClaim        *ReleaseClaimPayload
	Pair                *PairPayload
	Unpair              *UnpairPayload
	Trade               *TradePayload
	Move                *MovePayload
	Harvest             *HarvestPayload
	RefreshQuotes       *RefreshQuotesPayload
	SetCooldown         *SetCooldownPayload
	InternalStateUpdate *InternalStateUpdatePayload
}

type SetTargetPayload struct {
	Agent         AgentID
	TargetAgent   *AgentID
	TargetPos     *Pos
}

type ClaimResourcePayload struct {
	Agent AgentID
	Pos   Pos
}

type ReleaseClaimPayload struct {
	Pos Pos
}

type PairPayload struct {
	A, B   AgentID
	Reason string
}

type UnpairPayload struct {
	A, B   AgentID
	Reason string
}

type TradePayload struct {
	Buyer, Seller AgentID
	PairType      string
	Direction     string // "a_gives_A" or "b_gives_A", the pre-resolution orientation
	DA, DB        int64  // minor units; DA/DB are from the buyer's perspective (buyer gains DA, pays DB)
	Price         float64
	BuyerSurplus  float64
	SellerSurplus float64
}

type MovePayload struct {
	Agent  AgentID
	DX, DY int
}

type HarvestPayload struct {
	Agent  AgentID
	Pos    Pos
	Amount int64
}

type RefreshQuotesPayload struct {
	Agent AgentID
}

type SetCooldownPayload struct {
	A, B  AgentID
	Until int64
}

type InternalStateUpdatePayload struct {
	Protocol string
	Agent    AgentID
	Key      string
	Value    any
}

func NewSetTargetAgent(agent, target AgentID) Effect {
	return Effect{Kind: KindSetTarget, SetTarget: &SetTargetPayload{Agent: agent, TargetAgent: &target}}
}

func NewSetTargetPos(agent AgentID, pos Pos) Effect {
	return Effect{Kind: KindSetTarget, SetTarget: &SetTargetPayload{Agent: agent, TargetPos: &pos}}
}

func NewClaimResource(agent AgentID, pos Pos) Effect {
	return Effect{Kind: KindClaimResource, ClaimResource: &ClaimResourcePayload{Agent: agent, Pos: pos}}
}

func NewReleaseClaim(pos Pos) Effect {
	return Effect{Kind: KindReleaseClaim, ReleaseClaim: &ReleaseClaimPayload{Pos: pos}}
}

func NewPair(a, b AgentID, reason string) Effect {
	return Effect{Kind: KindPair, Pair: &PairPayload{A: a, B: b, Reason: reason}}
}

func NewUnpair(a, b AgentID, reason string) Effect {
	return Effect{Kind: KindUnpair, Unpair: &UnpairPayload{A: a, B: b, Reason: reason}}
}

func NewTrade(p TradePayload) Effect {
	return Effect{Kind: KindTrade, Trade: &p}
}

func NewMove(agent AgentID, dx, dy int) Effect {
	return Effect{Kind: KindMove, Move: &MovePayload{Agent: agent, DX: dx, DY: dy}}
}

func NewHarvest(agent AgentID, pos Pos, amount int64) Effect {
	return Effect{Kind: KindHarvest, Harvest: &HarvestPayload{Agent: agent, Pos: pos, Amount: amount}}
}

func NewRefreshQuotes(agent AgentID) Effect {
	return Effect{Kind: KindRefreshQuotes, RefreshQuotes: &RefreshQuotesPayload{Agent: agent}}
}

func NewSetCooldown(a, b AgentID, until int64) Effect {
	return Effect{Kind: KindSetCooldown, SetCooldown: &SetCooldownPayload{A: a, B: b, Until: until}}
}

func NewInternalStateUpdate(protocol string, agent AgentID, key string, value any) Effect {
	return Effect{Kind: KindInternalStateUpdate, InternalStateUpdate: &InternalStateUpdatePayload{
		Protocol: protocol, Agent: agent, Key: key, Value: value,
	}}
}
