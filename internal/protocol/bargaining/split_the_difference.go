package bargaining

import (
	"math"

	"github.com/cmfunderburk/vmt/internal/effectpkg"
	"github.com/cmfunderburk/vmt/internal/protocol"
	"github.com/cmfunderburk/vmt/internal/protocol/tradecore"
	"github.com/cmfunderburk/vmt/internal/world"
)

// SplitTheDifference enumerates every feasible trade the shared discovery
// search finds and picks the one splitting surplus most evenly, tie-broken
// by total surplus, then price, then quantity of A.
type SplitTheDifference struct {
	Eps float64
}

// NewSplitTheDifference builds a SplitTheDifference from scenario params.
func NewSplitTheDifference(params map[string]any) (protocol.Bargaining, error) {
	return SplitTheDifference{Eps: protocol.GetFloat(params, "eps", 1e-9)}, nil
}

func (s SplitTheDifference) Name() string { return "split_the_difference" }

func (s SplitTheDifference) Bargain(ctx protocol.ProtocolContext, a, b *world.Agent) []effectpkg.Effect {
	all := tradecore.DiscoverAll(a, b, s.Eps)
	if len(all) == 0 {
		return unpairFailed(a, b)
	}

	best := all[0]
	bestGap := math.Abs(best.DeltaUa - best.DeltaUb)
	bestTotal := best.DeltaUa + best.DeltaUb
	bestDA := absInt64(best.DAa)

	for _, t := range all[1:] {
		gap := math.Abs(t.DeltaUa - t.DeltaUb)
		total := t.DeltaUa + t.DeltaUb
		da := absInt64(t.DAa)
		switch {
		case gap < bestGap:
			best, bestGap, bestTotal, bestDA = t, gap, total, da
		case gap == bestGap && total > bestTotal:
			best, bestGap, bestTotal, bestDA = t, gap, total, da
		case gap == bestGap && total == bestTotal && t.Price < best.Price:
			best, bestGap, bestTotal, bestDA = t, gap, total, da
		case gap == bestGap && total == bestTotal && t.Price == best.Price && da < bestDA:
			best, bestGap, bestTotal, bestDA = t, gap, total, da
		}
	}
	return []effectpkg.Effect{tradeEffect(a, b, best)}
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
