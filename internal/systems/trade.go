package systems

import (
	"github.com/cmfunderburk/vmt/internal/diagnostics"
	"github.com/cmfunderburk/vmt/internal/econ"
	"github.com/cmfunderburk/vmt/internal/effectpkg"
	"github.com/cmfunderburk/vmt/internal/protocol"
	"github.com/cmfunderburk/vmt/internal/world"
)

// Trade is Phase 4: for each still-paired pair within interaction radius,
// invoke the bargaining protocol and apply whatever it returns — a Trade
// (pair stays together), an Unpair with cooldown (pair dissolves), or
// nothing (still negotiating).
type Trade struct{}

func (Trade) Run(ctx *TickContext) error {
	s := ctx.State
	ctx.processedPairs = make(map[pairKey]bool)
	pctx := protocol.BuildProtocolContext(s, ctx.RNG)

	for _, id := range s.Order {
		a := s.Agent(id)
		if a.PairedWithID == nil {
			continue
		}
		key := makePairKey(a.ID, *a.PairedWithID)
		if ctx.processedPairs[key] {
			continue
		}
		ctx.processedPairs[key] = true

		b := s.Agent(*a.PairedWithID)
		if b == nil {
			continue
		}
		if world.Dist(a.Pos, b.Pos) > a.InteractionRadius {
			continue
		}

		for _, e := range ctx.Bargaining.Bargain(pctx, a, b) {
			ctx.applyTradeEffect(a, b, e)
		}
	}
	return nil
}

func (ctx *TickContext) applyTradeEffect(a, b *world.Agent, e effectpkg.Effect) {
	s := ctx.State
	switch e.Kind {
	case effectpkg.KindTrade:
		if err := Apply(s, e); err != nil {
			ctx.Diagnostics = append(ctx.Diagnostics, diagnostics.New(
				diagnostics.ContractViolation, s.Tick, ctx.Bargaining.Name(), []int{int(a.ID), int(b.ID)}, err))
			return
		}
		if ctx.Sink != nil {
			t := e.Trade
			displayPrice := econ.RoundToTick(t.Price, econ.TelemetryPriceTick)
			ctx.Sink.TradeEvent(s.Tick, a.Pos, t.Buyer, t.Seller, t.DA, t.DB, displayPrice, t.Direction, t.PairType, t.BuyerSurplus, t.SellerSurplus)
		}
	case effectpkg.KindUnpair:
		until := s.Tick + ctx.Params.TradeCooldownTicks
		_ = Apply(s, e)
		_ = Apply(s, effectpkg.NewSetCooldown(a.ID, b.ID, until))
		_ = Apply(s, effectpkg.NewSetCooldown(b.ID, a.ID, until))
		if ctx.Sink != nil {
			ctx.Sink.PairingEvent(s.Tick, a.ID, b.ID, "unpair", e.Unpair.Reason, 0, nil)
		}
	default:
		if err := Apply(s, e); err != nil {
			ctx.Diagnostics = append(ctx.Diagnostics, err)
		}
	}
}
