// Package matching holds Matching protocol implementations.
package matching

import (
	"math"
	"sort"

	"github.com/cmfunderburk/vmt/internal/effectpkg"
	"github.com/cmfunderburk/vmt/internal/protocol"
	"github.com/cmfunderburk/vmt/internal/protocol/tradecore"
	"github.com/cmfunderburk/vmt/internal/world"
)

// ThreePass is the default matching protocol. Despite the name it is a
// single sorted greedy sweep over all candidate pairs; "three-pass" is a
// historical name carried over from the reference implementation.
type ThreePass struct {
	Beta      float64
	Evaluator protocol.TradeEvaluator
}

// NewThreePass builds a ThreePass from scenario params.
func NewThreePass(params map[string]any) (protocol.Matching, error) {
	return ThreePass{
		Beta:      protocol.GetFloat(params, "beta", 0.95),
		Evaluator: tradecore.QuoteOverlapEvaluator{},
	}, nil
}

func (t ThreePass) Name() string { return "three_pass" }

type candidatePair struct {
	i, j            world.AgentID
	discounted      float64
	surplusPositive bool
}

func (t ThreePass) Match(ctx protocol.ProtocolContext, preferences map[world.AgentID][]protocol.Preference) []effectpkg.Effect {
	var eligible []world.AgentID
	for _, id := range ctx.Order {
		a := ctx.Agents[id]
		if a.PairedWithID != nil {
			continue
		}
		if hasAgentCandidate(preferences[id]) {
			eligible = append(eligible, id)
		}
	}

	var pairs []candidatePair
	for idx, i := range eligible {
		ai := ctx.Agents[i]
		for _, j := range eligible[idx+1:] {
			aj := ctx.Agents[j]
			eval := t.Evaluator.Evaluate(ai, aj)
			if !eval.Feasible {
				continue
			}
			dist := world.Dist(ai.Pos, aj.Pos)
			pairs = append(pairs, candidatePair{
				i: i, j: j,
				discounted:      eval.EstimatedSurplus * math.Pow(t.Beta, float64(dist)),
				surplusPositive: eval.EstimatedSurplus > 0,
			})
		}
	}

	sort.SliceStable(pairs, func(a, b int) bool {
		if pairs[a].discounted != pairs[b].discounted {
			return pairs[a].discounted > pairs[b].discounted
		}
		if pairs[a].surplusPositive != pairs[b].surplusPositive {
			return pairs[a].surplusPositive
		}
		if pairs[a].i != pairs[b].i {
			return pairs[a].i < pairs[b].i
		}
		return pairs[a].j < pairs[b].j
	})

	paired := make(map[world.AgentID]bool, len(eligible))
	var effects []effectpkg.Effect
	for _, c := range pairs {
		if paired[c.i] || paired[c.j] {
			continue
		}
		paired[c.i] = true
		paired[c.j] = true
		effects = append(effects, effectpkg.NewPair(c.i, c.j, "three_pass_match"))
	}
	return effects
}

func hasAgentCandidate(prefs []protocol.Preference) bool {
	for _, p := range prefs {
		if p.Target.Kind == protocol.TargetAgent {
			return true
		}
	}
	return false
}
