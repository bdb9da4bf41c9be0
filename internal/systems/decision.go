package systems

import (
	"math/rand/v2"

	"github.com/cmfunderburk/vmt/internal/effectpkg"
	"github.com/cmfunderburk/vmt/internal/protocol"
	"github.com/cmfunderburk/vmt/internal/world"
)

// Decision is Phase 2: stale-claim sweep, per-agent search, then global
// matching — in that fixed order, since matching consumes the preferences
// search just produced.
type Decision struct{}

func (Decision) Run(ctx *TickContext) error {
	staleClaimSweep(ctx.State)
	prefs := searchSubPhase(ctx)
	matchingSubPhase(ctx, prefs)
	return nil
}

// staleClaimSweep drops a claim if its claimant is gone, has reached the
// claimed position, or is no longer committed to it. Claims held by an
// agent still foraging-committed to that exact position survive.
func staleClaimSweep(s *world.State) {
	for _, pos := range s.Claims.Positions() {
		owner, ok := s.Claims.OwnerAt(pos)
		if !ok {
			continue
		}
		a := s.Agent(owner)
		if a == nil || a.Pos == pos {
			s.Claims.Release(pos)
			continue
		}
		if !a.IsForagingCommitted || a.ForageTargetPos == nil || *a.ForageTargetPos != pos {
			s.Claims.Release(pos)
		}
	}
}

func searchSubPhase(ctx *TickContext) map[world.AgentID][]protocol.Preference {
	s := ctx.State
	prefs := make(map[world.AgentID][]protocol.Preference, len(s.Order))

	for _, id := range s.Order {
		a := s.Agent(id)

		if a.PairedWithID != nil {
			repairOrTargetPartner(ctx, a)
			continue
		}

		if a.IsForagingCommitted && a.ForageTargetPos != nil {
			pos := *a.ForageTargetPos
			cell := s.Grid.Cell(pos)
			if cell.Resource != nil && cell.Resource.Amount > 0 {
				a.TargetPos = a.ForageTargetPos
				continue
			}
			a.IsForagingCommitted = false
			a.ForageTargetPos = nil
			s.Claims.Release(pos)
		}

		view := buildWorldView(s, a, ctx.RNG)
		agentPrefs := ctx.Search.BuildPreferences(view)
		prefs[id] = agentPrefs
		if ctx.Params.LogPreferences && ctx.Sink != nil {
			ctx.Sink.PreferenceLog(s.Tick, id, agentPrefs)
		}

		effects := ctx.Search.SelectTarget(view, agentPrefs)
		for _, e := range effects {
			if err := Apply(s, e); err != nil {
				ctx.Diagnostics = append(ctx.Diagnostics, err)
			}
		}
	}
	return prefs
}

func repairOrTargetPartner(ctx *TickContext, a *world.Agent) {
	s := ctx.State
	partner := s.Agent(*a.PairedWithID)
	if partner != nil && partner.PairedWithID != nil && *partner.PairedWithID == a.ID {
		pid := partner.ID
		a.TargetAgentID = &pid
		a.TargetPos = nil
		return
	}
	broken := *a.PairedWithID
	a.PairedWithID = nil
	if partner != nil && partner.PairedWithID != nil && *partner.PairedWithID == a.ID {
		partner.PairedWithID = nil
	}
	if ctx.Sink != nil {
		ctx.Sink.PairingEvent(s.Tick, a.ID, broken, "unpair", "asymmetric_pairing_repaired", 0, nil)
	}
}

func matchingSubPhase(ctx *TickContext, prefs map[world.AgentID][]protocol.Preference) {
	s := ctx.State
	pctx := protocol.BuildProtocolContext(s, ctx.RNG)

	for _, e := range ctx.Matching.Match(pctx, prefs) {
		if e.Kind != effectpkg.KindPair {
			if err := Apply(s, e); err != nil {
				ctx.Diagnostics = append(ctx.Diagnostics, err)
			}
			continue
		}
		a, b := s.Agent(e.Pair.A), s.Agent(e.Pair.B)
		wasUnpaired := a != nil && b != nil && a.PairedWithID == nil && b.PairedWithID == nil
		if err := Apply(s, e); err != nil {
			ctx.Diagnostics = append(ctx.Diagnostics, err)
			continue
		}
		if wasUnpaired && a.PairedWithID != nil && ctx.Sink != nil {
			ctx.Sink.PairingEvent(s.Tick, e.Pair.A, e.Pair.B, "pair", e.Pair.Reason, 0, nil)
		}
	}
}

func buildWorldView(s *world.State, a *world.Agent, rng *rand.Rand) protocol.WorldView {
	return protocol.WorldView{
		Self:      protocol.SummarizeAgent(a),
		Neighbors: a.PerceptionCache.Neighbors,
		Resources: a.PerceptionCache.Resources,
		Tick:      s.Tick,
		Mode:      s.Mode(),
		RNG:       rng,
	}
}
