package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmfunderburk/vmt/internal/scenario"
	"github.com/cmfunderburk/vmt/internal/world"
)

func twoAgentEdgeworth() *scenario.Document {
	return &scenario.Document{
		GridWidth:  5,
		GridHeight: 5,
		TickBound:  200,
		Modes:      []scenario.ModeIntervalDoc{{Start: 0, End: 200, Mode: "trade"}},
		Agents: []scenario.AgentDef{
			{
				Count:          1,
				UtilityVariant: "cobb_douglas",
				UtilityParams:  map[string]any{"alpha": 0.5},
				EndowmentA:     10,
				EndowmentB:     0,
				SpawnRegion:    scenario.SpawnRegion{MinX: 0, MinY: 0, MaxX: 0, MaxY: 0},
			},
			{
				Count:          1,
				UtilityVariant: "cobb_douglas",
				UtilityParams:  map[string]any{"alpha": 0.5},
				EndowmentA:     0,
				EndowmentB:     10,
				SpawnRegion:    scenario.SpawnRegion{MinX: 4, MinY: 4, MaxX: 4, MaxY: 4},
			},
		},
		Params: scenario.GlobalParams{
			Beta:              0.95,
			VisionRadius:      8,
			InteractionRadius: 1,
			MoveBudgetPerTick: 1,
			Spread:            0.05,
			Epsilon:           1e-6,
		},
		SearchProtocol:     scenario.ProtocolSelector{Name: "distance_discounted"},
		MatchingProtocol:   scenario.ProtocolSelector{Name: "three_pass"},
		BargainingProtocol: scenario.ProtocolSelector{Name: "compensating_block"},
	}
}

func TestNewRejectsUnknownProtocol(t *testing.T) {
	doc := twoAgentEdgeworth()
	doc.SearchProtocol.Name = "nonexistent"
	_, err := New(doc, 42, nil)
	require.Error(t, err)
}

func TestStepAdvancesTickAndConservesGoods(t *testing.T) {
	doc := twoAgentEdgeworth()
	sim, err := New(doc, 42, nil)
	require.NoError(t, err)

	totalA, totalB := int64(0), int64(0)
	for _, id := range sim.CurrentState().Order {
		a := sim.CurrentState().Agent(id)
		totalA += a.Inv.A
		totalB += a.Inv.B
	}

	for i := 0; i < 50; i++ {
		require.NoError(t, sim.Step())
	}
	assert.Equal(t, world.Tick(50), sim.Tick())

	gotA, gotB := int64(0), int64(0)
	for _, id := range sim.CurrentState().Order {
		a := sim.CurrentState().Agent(id)
		gotA += a.Inv.A
		gotB += a.Inv.B
	}
	assert.Equal(t, totalA, gotA, "total A conserved across trades")
	assert.Equal(t, totalB, gotB, "total B conserved across trades")
}

func TestStopRejectsFurtherSteps(t *testing.T) {
	sim, err := New(twoAgentEdgeworth(), 42, nil)
	require.NoError(t, err)
	sim.Stop()
	assert.ErrorIs(t, sim.Step(), ErrStopped)
	assert.True(t, sim.Done())
}

func TestInventoriesStayNonNegative(t *testing.T) {
	sim, err := New(twoAgentEdgeworth(), 11, nil)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		require.NoError(t, sim.Step())
		for _, id := range sim.CurrentState().Order {
			a := sim.CurrentState().Agent(id)
			assert.GreaterOrEqual(t, a.Inv.A, int64(0), "agent %d A went negative at tick %d", id, i)
			assert.GreaterOrEqual(t, a.Inv.B, int64(0), "agent %d B went negative at tick %d", id, i)
		}
	}
}

func TestPairingIsAlwaysSymmetric(t *testing.T) {
	sim, err := New(twoAgentEdgeworth(), 23, nil)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		require.NoError(t, sim.Step())
		for _, id := range sim.CurrentState().Order {
			a := sim.CurrentState().Agent(id)
			if a.PairedWithID == nil {
				continue
			}
			partner := sim.CurrentState().Agent(*a.PairedWithID)
			require.NotNil(t, partner, "agent %d paired with a nonexistent agent", id)
			require.NotNil(t, partner.PairedWithID, "agent %d's partner has no reciprocal pairing", id)
			assert.Equal(t, id, *partner.PairedWithID, "pairing between %d and %d is not symmetric", id, *a.PairedWithID)
		}
	}
}

func TestQuotesNeverCrossBidBelowAsk(t *testing.T) {
	sim, err := New(twoAgentEdgeworth(), 31, nil)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		require.NoError(t, sim.Step())
		for _, id := range sim.CurrentState().Order {
			a := sim.CurrentState().Agent(id)
			assert.GreaterOrEqual(t, a.Quote.BidAinB, a.Quote.AskAinB,
				"agent %d quoted bid below ask at tick %d", id, i)
		}
	}
}

func TestDeterminismAcrossRunsWithSameSeed(t *testing.T) {
	docA, docB := twoAgentEdgeworth(), twoAgentEdgeworth()
	simA, err := New(docA, 7, nil)
	require.NoError(t, err)
	simB, err := New(docB, 7, nil)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		require.NoError(t, simA.Step())
		require.NoError(t, simB.Step())
	}

	for _, id := range simA.CurrentState().Order {
		aa, ab := simA.CurrentState().Agent(id), simB.CurrentState().Agent(id)
		assert.Equal(t, aa.Inv, ab.Inv)
		assert.Equal(t, aa.Pos, ab.Pos)
	}
}
