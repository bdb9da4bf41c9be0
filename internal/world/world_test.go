package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmfunderburk/vmt/internal/econ"
)

func TestGridHarvestAndRegenerate(t *testing.T) {
	g := NewGrid(3, 3)
	pos := Position{X: 1, Y: 1}
	g.PlaceResource(pos, ResourceA, 10)

	got := g.Harvest(pos, 4, 0)
	assert.Equal(t, int64(4), got)
	assert.Contains(t, g.HarvestedCells, pos)
	assert.Equal(t, int64(6), g.Cell(pos).Resource.Amount)

	g.RegenerateActiveSet(3, 5, 2) // not yet at cooldown
	assert.Equal(t, int64(6), g.Cell(pos).Resource.Amount)

	g.RegenerateActiveSet(5, 5, 2) // cooldown elapsed
	assert.Equal(t, int64(8), g.Cell(pos).Resource.Amount)
	assert.Contains(t, g.HarvestedCells, pos)

	g.RegenerateActiveSet(10, 5, 100) // overshoots, clamps to original
	assert.Equal(t, int64(10), g.Cell(pos).Resource.Amount)
	assert.NotContains(t, g.HarvestedCells, pos)
}

func TestSpatialIndexQueryRadius(t *testing.T) {
	idx := NewSpatialIndex(4)
	idx.Add(1, Position{X: 0, Y: 0})
	idx.Add(2, Position{X: 3, Y: 0})
	idx.Add(3, Position{X: 10, Y: 10})

	got := idx.QueryRadius(Position{X: 0, Y: 0}, 3)
	assert.Equal(t, []AgentID{1, 2}, got)

	idx.Update(3, Position{X: 1, Y: 0})
	got = idx.QueryRadius(Position{X: 0, Y: 0}, 3)
	assert.Equal(t, []AgentID{1, 2, 3}, got)
}

func TestClaimMap(t *testing.T) {
	c := NewClaimMap()
	p := Position{X: 2, Y: 2}
	_, ok := c.OwnerAt(p)
	assert.False(t, ok)

	c.Claim(p, 7)
	owner, ok := c.OwnerAt(p)
	require.True(t, ok)
	assert.Equal(t, AgentID(7), owner)

	c.Release(p)
	_, ok = c.OwnerAt(p)
	assert.False(t, ok)
}

func TestRepairPairingFixesAsymmetry(t *testing.T) {
	s := NewState(NewGrid(5, 5), 4, nil)
	u := econ.Linear{WeightA: 1, WeightB: 1}
	a := NewAgent(1, Position{}, econ.FromWhole(5, 5), u, 0.1, 8, 1, 1)
	b := NewAgent(2, Position{}, econ.FromWhole(5, 5), u, 0.1, 8, 1, 1)
	s.AddAgent(a)
	s.AddAgent(b)

	idB := AgentID(2)
	a.PairedWithID = &idB // b does not point back: asymmetric

	var repaired []string
	s.RepairPairing(func(x, y AgentID, reason string) { repaired = append(repaired, reason) })

	assert.Nil(t, a.PairedWithID)
	assert.Len(t, repaired, 1)
}

func TestModeScheduleDefaultsToBoth(t *testing.T) {
	var s ModeSchedule
	assert.Equal(t, ModeBoth, s.ModeAt(5))

	s = ModeSchedule{{Start: 0, End: 10, Mode: ModeForage}}
	assert.Equal(t, ModeForage, s.ModeAt(3))
	assert.Equal(t, ModeBoth, s.ModeAt(20))
}
