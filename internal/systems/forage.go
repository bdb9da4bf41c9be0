package systems

import (
	"github.com/cmfunderburk/vmt/internal/effectpkg"
	"github.com/cmfunderburk/vmt/internal/world"
)

// Forage is Phase 5: every unpaired agent standing on a nonempty resource
// cell harvests. Productive foraging resets trade frustration — it clears
// all of the agent's cooldowns, not just the one it most recently hit.
type Forage struct{}

func (Forage) Run(ctx *TickContext) error {
	s := ctx.State
	harvestedThisTick := make(map[world.Position]bool)

	for _, id := range s.Order {
		a := s.Agent(id)
		if a.PairedWithID != nil {
			continue
		}
		cell := s.Grid.Cell(a.Pos)
		if cell.Resource == nil || cell.Resource.Amount <= 0 {
			continue
		}
		if ctx.Params.EnforceSingleHarvester && harvestedThisTick[a.Pos] {
			continue
		}

		amount := ctx.Params.ForageRate
		if amount > cell.Resource.Amount {
			amount = cell.Resource.Amount
		}
		if err := Apply(s, effectpkg.NewHarvest(a.ID, a.Pos, amount)); err != nil {
			ctx.Diagnostics = append(ctx.Diagnostics, err)
			continue
		}
		harvestedThisTick[a.Pos] = true

		a.IsForagingCommitted = false
		a.ForageTargetPos = nil
		a.ClearCooldowns()
	}
	return nil
}
