package systems

// Regeneration is Phase 6: advance the grid's active set (harvested cells
// awaiting regrowth). It never scans the whole grid — that's the point of
// the active set.
type Regeneration struct{}

func (Regeneration) Run(ctx *TickContext) error {
	ctx.State.Grid.RegenerateActiveSet(ctx.State.Tick, ctx.Params.ResourceRegenCooldown, ctx.Params.ResourceGrowthRate)
	return nil
}
