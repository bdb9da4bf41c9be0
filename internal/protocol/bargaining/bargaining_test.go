package bargaining

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmfunderburk/vmt/internal/econ"
	"github.com/cmfunderburk/vmt/internal/protocol"
	"github.com/cmfunderburk/vmt/internal/world"
)

func mirroredAgents() (*world.Agent, *world.Agent) {
	a := world.NewAgent(1, world.Position{}, econ.FromWhole(10, 0), econ.CobbDouglas{Alpha: 0.5}, 0.1, 8, 1, 1)
	b := world.NewAgent(2, world.Position{}, econ.FromWhole(0, 10), econ.CobbDouglas{Alpha: 0.5}, 0.1, 8, 1, 1)
	a.Quote = econ.ComputeQuote(a.Utility, a.Inv, 0.1)
	b.Quote = econ.ComputeQuote(b.Utility, b.Inv, 0.1)
	return a, b
}

func TestCompensatingBlockTradesOrUnpairs(t *testing.T) {
	b, err := NewCompensatingBlock(nil)
	require.NoError(t, err)
	a1, a2 := mirroredAgents()

	effects := b.Bargain(protocol.ProtocolContext{}, a1, a2)
	require.Len(t, effects, 1)
	assert.True(t, effects[0].Trade != nil || effects[0].Unpair != nil)
}

func TestCompensatingBlockUnpairsWhenNoMutualGain(t *testing.T) {
	b, err := NewCompensatingBlock(nil)
	require.NoError(t, err)
	a := world.NewAgent(1, world.Position{}, econ.FromWhole(5, 5), econ.Linear{WeightA: 1, WeightB: 1}, 0.1, 8, 1, 1)
	other := world.NewAgent(2, world.Position{}, econ.FromWhole(5, 5), econ.Linear{WeightA: 1, WeightB: 1}, 0.1, 8, 1, 1)
	// Identical linear preferences and endowments: no mutually beneficial trade exists.
	a.Quote = econ.ComputeQuote(a.Utility, a.Inv, 0.1)
	other.Quote = econ.ComputeQuote(other.Utility, other.Inv, 0.1)

	effects := b.Bargain(protocol.ProtocolContext{}, a, other)
	require.Len(t, effects, 1)
	require.NotNil(t, effects[0].Unpair)
	assert.Equal(t, "trade_failed", effects[0].Unpair.Reason)
}

func TestSplitTheDifferenceReturnsOneEffect(t *testing.T) {
	s, err := NewSplitTheDifference(nil)
	require.NoError(t, err)
	a, b := mirroredAgents()
	effects := s.Bargain(protocol.ProtocolContext{}, a, b)
	require.Len(t, effects, 1)
}

func TestTakeItOrLeaveItSellerPreferred(t *testing.T) {
	p, err := NewTakeItOrLeaveIt(map[string]any{"proposer_selector": "seller_preferred", "proposer_power": 0.9})
	require.NoError(t, err)
	a, b := mirroredAgents()
	effects := p.Bargain(protocol.ProtocolContext{}, a, b)
	require.Len(t, effects, 1)
}

func TestSelectByProposerPowerPrefersMaxSurplusOverRatioFit(t *testing.T) {
	a, b := mirroredAgents()

	highSurplusPoorRatio := protocol.DiscoveredTrade{
		DAa: 1, DBa: -1, DeltaUa: 5, DeltaUb: 5, // total 10, seller share 0.5
	}
	lowSurplusPerfectRatio := protocol.DiscoveredTrade{
		DAa: 1, DBa: -1, DeltaUa: 0.05, DeltaUb: 0.45, // total 0.5, seller share 0.9
	}
	all := []protocol.DiscoveredTrade{lowSurplusPerfectRatio, highSurplusPoorRatio}

	best, ok := selectByProposerPower(a, b, all, false, 0.9, 1e-9)
	require.True(t, ok)
	assert.Equal(t, highSurplusPoorRatio, best,
		"must restrict to the maximum-total-surplus trade before matching the proposer-power ratio")
}
