// Package search holds Search protocol implementations.
package search

import (
	"math"
	"sort"

	"github.com/cmfunderburk/vmt/internal/econ"
	"github.com/cmfunderburk/vmt/internal/effectpkg"
	"github.com/cmfunderburk/vmt/internal/protocol"
	"github.com/cmfunderburk/vmt/internal/protocol/tradecore"
	"github.com/cmfunderburk/vmt/internal/world"
)

// DistanceDiscounted is the default search protocol: candidates are scored
// by raw surplus/utility-gain discounted by beta^distance, then ranked.
type DistanceDiscounted struct {
	Beta                float64
	ForageRate          int64
	EnableResourceClaim bool
	Evaluator           protocol.TradeEvaluator
}

// NewDistanceDiscounted builds a DistanceDiscounted from scenario params.
func NewDistanceDiscounted(params map[string]any) (protocol.Search, error) {
	return DistanceDiscounted{
		Beta:                protocol.GetFloat(params, "beta", 0.95),
		ForageRate:          protocol.GetInt64(params, "forage_rate", 1) * econ.Scale,
		EnableResourceClaim: protocol.GetBool(params, "enable_resource_claiming", false),
		Evaluator:           tradecore.QuoteOverlapEvaluator{},
	}, nil
}

func (d DistanceDiscounted) Name() string { return "distance_discounted" }

func (d DistanceDiscounted) BuildPreferences(view protocol.WorldView) []protocol.Preference {
	var prefs []protocol.Preference

	if view.Mode == world.ModeTrade || view.Mode == world.ModeBoth {
		prefs = append(prefs, d.tradeCandidates(view)...)
	}
	if view.Mode == world.ModeForage || view.Mode == world.ModeBoth {
		prefs = append(prefs, d.forageCandidates(view)...)
	}

	sort.SliceStable(prefs, func(i, j int) bool {
		if prefs[i].Score != prefs[j].Score {
			return prefs[i].Score > prefs[j].Score
		}
		a, b := prefs[i].Target, prefs[j].Target
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Kind == protocol.TargetAgent {
			return a.Agent < b.Agent
		}
		if a.Pos.Y != b.Pos.Y {
			return a.Pos.Y < b.Pos.Y
		}
		return a.Pos.X < b.Pos.X
	})
	return prefs
}

func (d DistanceDiscounted) tradeCandidates(view protocol.WorldView) []protocol.Preference {
	var out []protocol.Preference
	for _, n := range view.Neighbors {
		if until, ok := view.Self.Cooldowns[n.ID]; ok && view.Tick < until {
			continue
		}
		eval := d.Evaluator.Evaluate(view.Self, protocol.AgentSummary{ID: n.ID, Quote: n.Quote})
		if !eval.Feasible {
			continue
		}
		dist := world.Dist(view.Self.Pos, n.Pos)
		score := eval.EstimatedSurplus * math.Pow(d.Beta, float64(dist))
		out = append(out, protocol.Preference{
			Target: protocol.Target{Kind: protocol.TargetAgent, Agent: n.ID},
			Score:  score,
			Meta:   map[string]any{"direction": eval.PreferredDirection},
		})
	}
	return out
}

func (d DistanceDiscounted) forageCandidates(view protocol.WorldView) []protocol.Preference {
	var out []protocol.Preference
	for _, r := range view.Resources {
		if r.Amount <= 0 {
			continue
		}
		if r.ClaimedBy != nil && *r.ClaimedBy != view.Self.ID {
			continue
		}
		harvest := d.ForageRate
		if harvest > r.Amount {
			harvest = r.Amount
		}
		newInv := view.Self.Inventory
		if r.Type == world.ResourceA {
			newInv.A += harvest
		} else {
			newInv.B += harvest
		}
		delta := view.Self.Utility.U(newInv) - view.Self.Utility.U(view.Self.Inventory)
		if delta <= 0 {
			continue
		}
		dist := world.Dist(view.Self.Pos, r.Pos)
		score := delta * math.Pow(d.Beta, float64(dist))
		out = append(out, protocol.Preference{
			Target: protocol.Target{Kind: protocol.TargetPosition, Pos: r.Pos},
			Score:  score,
		})
	}
	return out
}

func (d DistanceDiscounted) SelectTarget(view protocol.WorldView, prefs []protocol.Preference) []effectpkg.Effect {
	if len(prefs) == 0 {
		return nil
	}
	top := prefs[0]
	switch top.Target.Kind {
	case protocol.TargetAgent:
		return []effectpkg.Effect{effectpkg.NewSetTargetAgent(view.Self.ID, top.Target.Agent)}
	case protocol.TargetPosition:
		effects := []effectpkg.Effect{effectpkg.NewSetTargetPos(view.Self.ID, top.Target.Pos)}
		if d.EnableResourceClaim {
			effects = append(effects, effectpkg.NewClaimResource(view.Self.ID, top.Target.Pos))
		}
		return effects
	default:
		return nil
	}
}
