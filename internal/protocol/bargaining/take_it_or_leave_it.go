package bargaining

import (
	"math"

	"github.com/cmfunderburk/vmt/internal/effectpkg"
	"github.com/cmfunderburk/vmt/internal/protocol"
	"github.com/cmfunderburk/vmt/internal/protocol/tradecore"
	"github.com/cmfunderburk/vmt/internal/world"
)

// ProposerSelector decides which side of a pair gets proposer_power in
// TakeItOrLeaveIt.
type ProposerSelector int

const (
	ProposerRandom ProposerSelector = iota
	ProposerBuyerPreferred
	ProposerSellerPreferred
)

// TakeItOrLeaveIt finds the maximum-total-surplus feasible trade and
// prefers whichever discovered alternative best allocates surplus at
// proposer_power:(1-proposer_power) in favor of the selected proposer.
type TakeItOrLeaveIt struct {
	Eps           float64
	ProposerPower float64
	Proposer      ProposerSelector
}

// NewTakeItOrLeaveIt builds a TakeItOrLeaveIt from scenario params.
func NewTakeItOrLeaveIt(params map[string]any) (protocol.Bargaining, error) {
	var sel ProposerSelector
	switch protocol.GetString(params, "proposer_selector", "random") {
	case "buyer_preferred":
		sel = ProposerBuyerPreferred
	case "seller_preferred":
		sel = ProposerSellerPreferred
	default:
		sel = ProposerRandom
	}
	return TakeItOrLeaveIt{
		Eps:           protocol.GetFloat(params, "eps", 1e-9),
		ProposerPower: protocol.GetFloat(params, "proposer_power", 0.5),
		Proposer:      sel,
	}, nil
}

func (p TakeItOrLeaveIt) Name() string { return "take_it_or_leave_it" }

func (p TakeItOrLeaveIt) Bargain(ctx protocol.ProtocolContext, a, b *world.Agent) []effectpkg.Effect {
	all := tradecore.DiscoverAll(a, b, p.Eps)
	if len(all) == 0 {
		return unpairFailed(a, b)
	}

	proposerIsBuyer := p.proposerIsBuyer(ctx, a, b)
	best, ok := selectByProposerPower(a, b, all, proposerIsBuyer, p.ProposerPower, p.Eps)
	if !ok {
		return unpairFailed(a, b)
	}
	return []effectpkg.Effect{tradeEffect(a, b, best)}
}

// selectByProposerPower implements the two-step rule: first narrow to the
// feasible trade(s) attaining maximum total surplus, then among only those
// pick whichever allocates surplus closest to proposerPower:(1-proposerPower)
// in favor of the proposer. A trade outside the surplus-maximizing set is
// never chosen, however well it matches the target ratio.
func selectByProposerPower(a, b *world.Agent, all []protocol.DiscoveredTrade, proposerIsBuyer bool, proposerPower, eps float64) (protocol.DiscoveredTrade, bool) {
	maxTotal := math.Inf(-1)
	for _, t := range all {
		if total := t.DeltaUa + t.DeltaUb; total > maxTotal {
			maxTotal = total
		}
	}

	var best protocol.DiscoveredTrade
	bestDiff := math.Inf(1)
	found := false
	for _, t := range all {
		if t.DeltaUa+t.DeltaUb < maxTotal-eps {
			continue // not part of the surplus-maximizing set
		}
		r := resolveBuyerSeller(a, b, t)
		total := r.buyerSurplus + r.sellerSurplus
		if total <= 0 {
			continue
		}
		var proposerShare float64
		if proposerIsBuyer {
			proposerShare = r.buyerSurplus / total
		} else {
			proposerShare = r.sellerSurplus / total
		}
		diff := math.Abs(proposerShare - proposerPower)
		if diff < bestDiff {
			best, bestDiff, found = t, diff, true
		}
	}
	return best, found
}

func (p TakeItOrLeaveIt) proposerIsBuyer(ctx protocol.ProtocolContext, a, b *world.Agent) bool {
	switch p.Proposer {
	case ProposerBuyerPreferred:
		return true
	case ProposerSellerPreferred:
		return false
	default:
		if ctx.RNG == nil {
			return true
		}
		return ctx.RNG.IntN(2) == 0
	}
}
