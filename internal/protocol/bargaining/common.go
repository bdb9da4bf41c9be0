// Package bargaining holds Bargaining protocol implementations. All of them
// build on the shared trade-discovery primitive in
// internal/protocol/tradecore — per the decoupling contract, none of them
// may reuse the matching package's quote-overlap evaluator to decide
// whether to trade.
package bargaining

import (
	"github.com/cmfunderburk/vmt/internal/effectpkg"
	"github.com/cmfunderburk/vmt/internal/protocol"
	"github.com/cmfunderburk/vmt/internal/world"
)

// resolvedTrade is a DiscoveredTrade reframed from "a's deltas / b's deltas"
// to "buyer gains A, pays B" — the orientation effectpkg.TradePayload uses.
type resolvedTrade struct {
	buyer, seller               world.AgentID
	da, db                      int64
	buyerSurplus, sellerSurplus float64
}

func resolveBuyerSeller(a, b *world.Agent, t protocol.DiscoveredTrade) resolvedTrade {
	if t.DAa > 0 {
		return resolvedTrade{
			buyer: a.ID, seller: b.ID,
			da: t.DAa, db: -t.DBa,
			buyerSurplus: t.DeltaUa, sellerSurplus: t.DeltaUb,
		}
	}
	return resolvedTrade{
		buyer: b.ID, seller: a.ID,
		da: t.DAb, db: -t.DBb,
		buyerSurplus: t.DeltaUb, sellerSurplus: t.DeltaUa,
	}
}

func tradeEffect(a, b *world.Agent, t protocol.DiscoveredTrade) effectpkg.Effect {
	r := resolveBuyerSeller(a, b, t)
	return effectpkg.NewTrade(effectpkg.TradePayload{
		Buyer: r.buyer, Seller: r.seller,
		PairType:      t.PairType,
		Direction:     t.Direction,
		DA:            r.da,
		DB:            r.db,
		Price:         t.Price,
		BuyerSurplus:  r.buyerSurplus,
		SellerSurplus: r.sellerSurplus,
	})
}

func unpairFailed(a, b *world.Agent) []effectpkg.Effect {
	return []effectpkg.Effect{effectpkg.NewUnpair(a.ID, b.ID, "trade_failed")}
}
