package tradecore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmfunderburk/vmt/internal/econ"
	"github.com/cmfunderburk/vmt/internal/protocol"
	"github.com/cmfunderburk/vmt/internal/world"
)

func TestPriceCandidatesDedup(t *testing.T) {
	got := PriceCandidates(1, 1)
	assert.Equal(t, []float64{1}, got)

	got = PriceCandidates(1, 2)
	assert.Equal(t, []float64{1, 2, 1.5, 1.25, 1.75}, got)
}

func mirroredAgents() (*world.Agent, *world.Agent) {
	a := world.NewAgent(1, world.Position{}, econ.FromWhole(10, 0), econ.CobbDouglas{Alpha: 0.5}, 0.1, 8, 1, 1)
	b := world.NewAgent(2, world.Position{}, econ.FromWhole(0, 10), econ.CobbDouglas{Alpha: 0.5}, 0.1, 8, 1, 1)
	a.Quote = econ.ComputeQuote(a.Utility, a.Inv, 0.1)
	b.Quote = econ.ComputeQuote(b.Utility, b.Inv, 0.1)
	return a, b
}

func TestDefaultDiscovererFindsMutuallyBeneficialTrade(t *testing.T) {
	a, b := mirroredAgents()
	disc := DefaultDiscoverer{}
	trade, ok := disc.Discover(a, b, 1e-9)
	require.True(t, ok)
	assert.Greater(t, trade.DeltaUa, 0.0)
	assert.Greater(t, trade.DeltaUb, 0.0)
	assert.Equal(t, trade.DAa, -trade.DAb)
	assert.Equal(t, trade.DBa, -trade.DBb)
}

func TestQuoteOverlapEvaluatorFeasible(t *testing.T) {
	a, b := mirroredAgents()
	eval := QuoteOverlapEvaluator{}
	res := eval.Evaluate(protocol.AgentSummary{ID: a.ID, Quote: a.Quote}, protocol.AgentSummary{ID: b.ID, Quote: b.Quote})
	assert.True(t, res.Feasible)
}

func TestQuoteOverlapEvaluatorInfeasibleWhenNoOverlap(t *testing.T) {
	a := protocol.AgentSummary{Quote: econ.Quote{BidAinB: 1, AskAinB: 0.9}}
	b := protocol.AgentSummary{Quote: econ.Quote{BidAinB: 0.1, AskAinB: 2}}
	eval := QuoteOverlapEvaluator{}
	res := eval.Evaluate(a, b)
	assert.False(t, res.Feasible)
}
