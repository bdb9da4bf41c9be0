package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmfunderburk/vmt/internal/econ"
	"github.com/cmfunderburk/vmt/internal/protocol"
	"github.com/cmfunderburk/vmt/internal/world"
)

func TestDistanceDiscountedPrefersCloserResource(t *testing.T) {
	proto, err := NewDistanceDiscounted(nil)
	require.NoError(t, err)
	dd := proto.(DistanceDiscounted)

	self := protocol.AgentSummary{
		ID:        1,
		Pos:       world.Position{X: 0, Y: 0},
		Inventory: econ.FromWhole(5, 5),
		Utility:   econ.Linear{WeightA: 1, WeightB: 1},
		Cooldowns: map[world.AgentID]world.Tick{},
	}
	near := world.ResourceView{Pos: world.Position{X: 1, Y: 0}, Type: world.ResourceA, Amount: econ.FromWhole(1, 0).A}
	far := world.ResourceView{Pos: world.Position{X: 5, Y: 0}, Type: world.ResourceA, Amount: econ.FromWhole(1, 0).A}

	view := protocol.WorldView{Self: self, Resources: []world.ResourceView{far, near}, Mode: world.ModeForage}
	prefs := dd.BuildPreferences(view)
	require.Len(t, prefs, 2)
	assert.Equal(t, near.Pos, prefs[0].Target.Pos)
}

func TestDistanceDiscountedSelectTargetAgent(t *testing.T) {
	dd := DistanceDiscounted{Beta: 0.95}
	effects := dd.SelectTarget(protocol.WorldView{Self: protocol.AgentSummary{ID: 1}}, []protocol.Preference{
		{Target: protocol.Target{Kind: protocol.TargetAgent, Agent: 2}, Score: 1},
	})
	require.Len(t, effects, 1)
	assert.Equal(t, world.AgentID(2), *effects[0].SetTarget.TargetAgent)
}
