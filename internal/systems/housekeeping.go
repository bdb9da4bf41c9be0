package systems

import (
	"github.com/cmfunderburk/vmt/internal/econ"
	"github.com/cmfunderburk/vmt/internal/world"
)

// Housekeeping is Phase 7: the only phase allowed to rewrite quotes. It
// refreshes quotes for any agent whose inventory changed this tick, repairs
// any pairing asymmetry that slipped through the other phases, and emits
// the tick's telemetry snapshots.
type Housekeeping struct{}

func (Housekeeping) Run(ctx *TickContext) error {
	s := ctx.State

	for _, id := range s.Order {
		a := s.Agent(id)
		if a.InventoryChanged {
			a.Quote = econ.ComputeQuote(a.Utility, a.Inv, ctx.Params.Spread)
			a.InventoryChanged = false
		}
	}

	s.RepairPairing(func(a, b world.AgentID, reason string) {
		if ctx.Sink != nil {
			ctx.Sink.PairingEvent(s.Tick, a, b, "unpair", reason, 0, nil)
		}
	})

	if ctx.Sink != nil {
		ctx.Sink.TickState(s.Tick, s.Mode())
		for _, id := range s.Order {
			ctx.Sink.AgentSnapshot(s.Tick, s.Agent(id))
		}
		s.Grid.ForEachResource(func(pos world.Position, r *world.Resource) {
			ctx.Sink.ResourceSnapshot(s.Tick, pos, r)
		})
	}
	return nil
}
