package systems

import (
	"github.com/cmfunderburk/vmt/internal/effectpkg"
	"github.com/cmfunderburk/vmt/internal/world"
)

// Movement is Phase 3: deterministic Manhattan pathing toward each agent's
// current target, with a tie-break rule that resolves the diagonal
// deadlock two mutually-targeting agents would otherwise oscillate in
// forever.
type Movement struct{}

func (Movement) Run(ctx *TickContext) error {
	s := ctx.State
	for _, id := range s.Order {
		a := s.Agent(id)
		target, targetingAgent := resolveTarget(s, a)
		if target == nil {
			continue
		}

		if targetingAgent {
			partnerID := partnerIDOf(a)
			partner := s.Agent(*partnerID)
			if partner != nil {
				if world.Dist(a.Pos, partner.Pos) <= a.InteractionRadius {
					continue
				}
				if isDiagonalDeadlock(a, partner) && a.ID < partner.ID {
					continue
				}
			}
		}

		step(ctx, a, *target)
	}
	return nil
}

func partnerIDOf(a *world.Agent) *world.AgentID {
	if a.PairedWithID != nil {
		return a.PairedWithID
	}
	return a.TargetAgentID
}

// resolveTarget returns the position an agent is currently heading for, and
// whether that position tracks another agent (as opposed to a fixed
// resource position).
func resolveTarget(s *world.State, a *world.Agent) (*world.Position, bool) {
	if id := partnerIDOf(a); id != nil {
		other := s.Agent(*id)
		if other == nil {
			return nil, false
		}
		p := other.Pos
		return &p, true
	}
	if a.TargetPos != nil {
		return a.TargetPos, false
	}
	return nil, false
}

func isDiagonalDeadlock(a, b *world.Agent) bool {
	dx := b.Pos.X - a.Pos.X
	dy := b.Pos.Y - a.Pos.Y
	if absInt(dx) != 1 || absInt(dy) != 1 {
		return false
	}
	aTargetsB := partnerIDOf(a) != nil && *partnerIDOf(a) == b.ID
	bTargetsA := partnerIDOf(b) != nil && *partnerIDOf(b) == a.ID
	return aTargetsB && bTargetsA
}

// step advances a toward target by up to a.MoveBudgetPerTick Manhattan
// substeps, reducing the larger axis offset first and preferring x on a
// tie, so the path taken is fully deterministic. Each substep is dispatched
// as its own Move effect rather than mutating a.Pos directly, the same way
// Forage routes every harvest through Apply.
func step(ctx *TickContext, a *world.Agent, target world.Position) {
	s := ctx.State
	for i := 0; i < a.MoveBudgetPerTick && a.Pos != target; i++ {
		dx := target.X - a.Pos.X
		dy := target.Y - a.Pos.Y
		var stepDX, stepDY int
		if absInt(dx) >= absInt(dy) && dx != 0 {
			stepDX = sign(dx)
		} else if dy != 0 {
			stepDY = sign(dy)
		} else {
			break
		}
		if err := Apply(s, effectpkg.NewMove(a.ID, stepDX, stepDY)); err != nil {
			ctx.Diagnostics = append(ctx.Diagnostics, err)
			break
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
