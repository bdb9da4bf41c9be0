package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmfunderburk/vmt/internal/econ"
	"github.com/cmfunderburk/vmt/internal/world"
)

func TestRegenerationAdvancesActiveSet(t *testing.T) {
	s := world.NewState(world.NewGrid(3, 3), 4, nil)
	pos := world.Position{X: 1, Y: 1}
	s.Grid.PlaceResource(pos, world.ResourceA, 10*econ.Scale)
	s.Grid.Harvest(pos, 4*econ.Scale, 0)
	s.Tick = 5

	ctx := &TickContext{State: s, Params: Params{ResourceRegenCooldown: 5, ResourceGrowthRate: 2 * econ.Scale}}
	require.NoError(t, Regeneration{}.Run(ctx))

	assert.Equal(t, int64(8*econ.Scale), s.Grid.Cell(pos).Resource.Amount)
}
