package tradecore

import (
	"github.com/cmfunderburk/vmt/internal/econ"
	"github.com/cmfunderburk/vmt/internal/protocol"
	"github.com/cmfunderburk/vmt/internal/world"
)

// PriceCandidates returns the fixed, deterministic set of candidate prices
// in [ask, bid] that every bargaining variant must evaluate in this exact
// order: the two endpoints, the midpoint, and the quarter- and
// three-quarter-points, deduplicated. This set is a public contract — it
// must not change once a scenario depends on it for reproducibility.
func PriceCandidates(ask, bid float64) []float64 {
	mid := (ask + bid) / 2
	q1 := ask + 0.25*(bid-ask)
	q3 := ask + 0.75*(bid-ask)
	raw := [5]float64{ask, bid, mid, q1, q3}

	out := make([]float64, 0, 5)
	seen := make(map[float64]bool, 5)
	for _, p := range raw {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// direction holds the giver/receiver roles for one of the two barter
// directions tried by trade discovery.
type direction struct {
	giver, receiver *world.Agent
}

func directions(a, b *world.Agent) [2]direction {
	return [2]direction{{giver: a, receiver: b}, {giver: b, receiver: a}}
}

// discover runs the compensating-block search: for each direction, for each
// candidate integer quantity of A, for each deterministic price candidate,
// test feasibility and mutual benefit. If firstOnly, it returns as soon as
// one feasible trade is found (bargaining's default); otherwise it
// collects every feasible trade it finds (used by split-the-difference).
func discover(a, b *world.Agent, eps float64, firstOnly bool) []protocol.DiscoveredTrade {
	var found []protocol.DiscoveredTrade

	for _, dir := range directions(a, b) {
		ask := dir.giver.Quote.AskAinB
		bid := dir.receiver.Quote.BidAinB
		if ask > bid {
			continue
		}
		maxDA := dir.giver.Inv.A / econ.Scale
		for units := int64(1); units <= maxDA; units++ {
			dA := units * econ.Scale
			for _, p := range PriceCandidates(ask, bid) {
				dB := econ.RoundToQuantity(p * float64(units))
				if dB <= 0 || dir.receiver.Inv.B < dB || dir.giver.Inv.A < dA {
					continue
				}
				giverNew, err1 := dir.giver.Inv.WithDelta(-dA, dB)
				receiverNew, err2 := dir.receiver.Inv.WithDelta(dA, -dB)
				if err1 != nil || err2 != nil {
					continue
				}
				deltaGiver := dir.giver.Utility.U(giverNew) - dir.giver.Utility.U(dir.giver.Inv)
				deltaReceiver := dir.receiver.Utility.U(receiverNew) - dir.receiver.Utility.U(dir.receiver.Inv)
				if deltaGiver <= eps || deltaReceiver <= eps {
					continue
				}

				t := buildTrade(a, b, dir, dA, dB, p, deltaGiver, deltaReceiver)
				found = append(found, t)
				if firstOnly {
					return found
				}
			}
		}
	}
	return found
}

func buildTrade(a, b *world.Agent, dir direction, dA, dB int64, price, deltaGiver, deltaReceiver float64) protocol.DiscoveredTrade {
	t := protocol.DiscoveredTrade{Price: price, PairType: "A<->B"}
	if dir.giver.ID == a.ID {
		// a gives A, receives B; b receives A, gives B.
		t.Direction = "a_gives_A"
		t.DAa, t.DBa = -dA, dB
		t.DAb, t.DBb = dA, -dB
		t.DeltaUa, t.DeltaUb = deltaGiver, deltaReceiver
	} else {
		t.Direction = "b_gives_A"
		t.DAa, t.DBa = dA, -dB
		t.DAb, t.DBb = -dA, dB
		t.DeltaUa, t.DeltaUb = deltaReceiver, deltaGiver
	}
	return t
}

// DefaultDiscoverer implements the compensating-block search, returning the
// first feasible trade it finds.
type DefaultDiscoverer struct{}

func (DefaultDiscoverer) Discover(a, b *world.Agent, eps float64) (protocol.DiscoveredTrade, bool) {
	found := discover(a, b, eps, true)
	if len(found) == 0 {
		return protocol.DiscoveredTrade{}, false
	}
	return found[0], true
}

// DiscoverAll returns every feasible trade across both directions, in
// direction/quantity/price-candidate order. Used by bargaining variants
// that select among alternatives rather than taking the first.
func DiscoverAll(a, b *world.Agent, eps float64) []protocol.DiscoveredTrade {
	return discover(a, b, eps, false)
}
