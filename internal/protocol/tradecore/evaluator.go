// Package tradecore holds the two trade primitives every bargaining and
// search protocol shares: the cheap quote-overlap evaluator used by search
// and matching, and the full-utility trade-discovery search used only by
// bargaining. Keeping them in one package that neither matching nor
// bargaining implementations reach past is what keeps the decoupling
// between the two honest.
package tradecore

import (
	"github.com/cmfunderburk/vmt/internal/econ"
	"github.com/cmfunderburk/vmt/internal/protocol"
)

// QuoteOverlapEvaluator is the default TradeEvaluator: bid/ask overlap only,
// no utility computation. Used by search's surplus ranking and by the
// default matching protocol.
type QuoteOverlapEvaluator struct{}

// Evaluate checks both trade directions and reports the better one.
func (QuoteOverlapEvaluator) Evaluate(a, b protocol.AgentSummary) protocol.TradeEvaluation {
	// Direction "b gives A": a buys A from b.
	aBuysOverlap, aBuysFeasible := econ.Overlap(a.Quote.BidAinB, b.Quote.AskAinB)
	// Direction "a gives A": b buys A from a.
	bBuysOverlap, bBuysFeasible := econ.Overlap(b.Quote.BidAinB, a.Quote.AskAinB)

	switch {
	case aBuysFeasible && (!bBuysFeasible || aBuysOverlap >= bBuysOverlap):
		return protocol.TradeEvaluation{
			Feasible:           true,
			EstimatedSurplus:   aBuysOverlap,
			PreferredDirection: "b_gives_A",
			Confidence:         1,
		}
	case bBuysFeasible:
		return protocol.TradeEvaluation{
			Feasible:           true,
			EstimatedSurplus:   bBuysOverlap,
			PreferredDirection: "a_gives_A",
			Confidence:         1,
		}
	default:
		return protocol.TradeEvaluation{Feasible: false}
	}
}
