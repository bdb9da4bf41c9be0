package systems

import (
	"fmt"

	"github.com/cmfunderburk/vmt/internal/diagnostics"
	"github.com/cmfunderburk/vmt/internal/effectpkg"
	"github.com/cmfunderburk/vmt/internal/world"
)

// Apply is the single exhaustive dispatch point for every Effect kind.
// Every phase that produces effects routes them through here instead of
// mutating world.State itself, so the dispatch table stays the one place
// that knows how each Effect kind changes state.
func Apply(s *world.State, e effectpkg.Effect) error {
	switch e.Kind {
	case effectpkg.KindSetTarget:
		return applySetTarget(s, e.SetTarget)
	case effectpkg.KindClaimResource:
		return applyClaimResource(s, e.ClaimResource)
	case effectpkg.KindReleaseClaim:
		s.Claims.Release(e.ReleaseClaim.Pos)
		return nil
	case effectpkg.KindPair:
		return applyPair(s, e.Pair)
	case effectpkg.KindUnpair:
		return applyUnpair(s, e.Unpair)
	case effectpkg.KindTrade:
		return applyTrade(s, e.Trade)
	case effectpkg.KindMove:
		return applyMove(s, e.Move)
	case effectpkg.KindHarvest:
		return applyHarvest(s, e.Harvest)
	case effectpkg.KindRefreshQuotes:
		return nil // quotes are refreshed directly by Housekeeping
	case effectpkg.KindSetCooldown:
		return applySetCooldown(s, e.SetCooldown)
	case effectpkg.KindInternalStateUpdate:
		return applyInternalStateUpdate(s, e.InternalStateUpdate)
	default:
		return diagnostics.New(diagnostics.ContractViolation, s.Tick, "", nil, fmt.Errorf("unhandled effect kind %s", e.Kind))
	}
}

func applySetTarget(s *world.State, p *effectpkg.SetTargetPayload) error {
	a := s.Agent(p.Agent)
	if a == nil {
		return fmt.Errorf("set_target: unknown agent %d", p.Agent)
	}
	switch {
	case p.TargetAgent != nil:
		a.TargetAgentID = p.TargetAgent
		a.TargetPos = nil
	case p.TargetPos != nil:
		a.TargetPos = p.TargetPos
		a.TargetAgentID = nil
	}
	return nil
}

func applyClaimResource(s *world.State, p *effectpkg.ClaimResourcePayload) error {
	a := s.Agent(p.Agent)
	if a == nil {
		return fmt.Errorf("claim_resource: unknown agent %d", p.Agent)
	}
	if _, taken := s.Claims.OwnerAt(p.Pos); taken {
		return nil // already claimed; the decision system's preference ranking already filtered this, so a race here is a no-op
	}
	s.Claims.Claim(p.Pos, p.Agent)
	a.IsForagingCommitted = true
	pos := p.Pos
	a.ForageTargetPos = &pos
	return nil
}

func applyPair(s *world.State, p *effectpkg.PairPayload) error {
	a, b := s.Agent(p.A), s.Agent(p.B)
	if a == nil || b == nil {
		return fmt.Errorf("pair: unknown agent in (%d,%d)", p.A, p.B)
	}
	if a.PairedWithID != nil || b.PairedWithID != nil {
		return nil // second Pair for an already-paired agent is rejected, not an error
	}
	idA, idB := a.ID, b.ID
	a.PairedWithID = &idB
	b.PairedWithID = &idA
	delete(a.Cooldowns, b.ID)
	delete(b.Cooldowns, a.ID)
	return nil
}

func applyUnpair(s *world.State, p *effectpkg.UnpairPayload) error {
	a, b := s.Agent(p.A), s.Agent(p.B)
	if a != nil && a.PairedWithID != nil && *a.PairedWithID == p.B {
		a.PairedWithID = nil
	}
	if b != nil && b.PairedWithID != nil && *b.PairedWithID == p.A {
		b.PairedWithID = nil
	}
	return nil
}

func applyTrade(s *world.State, t *effectpkg.TradePayload) error {
	buyer, seller := s.Agent(t.Buyer), s.Agent(t.Seller)
	if buyer == nil || seller == nil {
		return fmt.Errorf("trade: unknown agent in (%d,%d)", t.Buyer, t.Seller)
	}
	buyerNew, err := buyer.Inv.WithDelta(t.DA, -t.DB)
	if err != nil {
		return fmt.Errorf("trade: buyer %d cannot afford dB=%d: %w", buyer.ID, t.DB, err)
	}
	sellerNew, err := seller.Inv.WithDelta(-t.DA, t.DB)
	if err != nil {
		return fmt.Errorf("trade: seller %d cannot supply dA=%d: %w", seller.ID, t.DA, err)
	}
	buyer.Inv, seller.Inv = buyerNew, sellerNew
	buyer.InventoryChanged, seller.InventoryChanged = true, true
	buyer.TradesCompleted++
	seller.TradesCompleted++
	return nil
}

func applyMove(s *world.State, m *effectpkg.MovePayload) error {
	a := s.Agent(m.Agent)
	if a == nil {
		return fmt.Errorf("move: unknown agent %d", m.Agent)
	}
	next := world.Position{X: a.Pos.X + m.DX, Y: a.Pos.Y + m.DY}
	if !s.Grid.InBounds(next) {
		return fmt.Errorf("move: agent %d would leave the grid at %v", a.ID, next)
	}
	a.Pos = next
	s.Index.Update(a.ID, next)
	return nil
}

func applyHarvest(s *world.State, h *effectpkg.HarvestPayload) error {
	a := s.Agent(h.Agent)
	if a == nil {
		return fmt.Errorf("harvest: unknown agent %d", h.Agent)
	}
	cell := s.Grid.Cell(h.Pos)
	if cell.Resource == nil {
		return nil
	}
	rtype := cell.Resource.Type
	got := s.Grid.Harvest(h.Pos, h.Amount, s.Tick)
	if got <= 0 {
		return nil
	}
	if rtype == world.ResourceA {
		a.Inv.A += got
	} else {
		a.Inv.B += got
	}
	a.InventoryChanged = true
	return nil
}

func applySetCooldown(s *world.State, c *effectpkg.SetCooldownPayload) error {
	a := s.Agent(c.A)
	if a == nil {
		return fmt.Errorf("set_cooldown: unknown agent %d", c.A)
	}
	a.Cooldowns[c.B] = c.Until
	return nil
}

func applyInternalStateUpdate(s *world.State, u *effectpkg.InternalStateUpdatePayload) error {
	a := s.Agent(u.Agent)
	if a == nil {
		return fmt.Errorf("internal_state_update: unknown agent %d", u.Agent)
	}
	a.SetProtocolState(u.Protocol, u.Key, u.Value)
	return nil
}
