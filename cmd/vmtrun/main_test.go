package main

import (
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmfunderburk/vmt/internal/engine"
	"github.com/cmfunderburk/vmt/internal/scenario"
)

func tinyScenario() *scenario.Document {
	return &scenario.Document{
		GridWidth:  3,
		GridHeight: 3,
		TickBound:  5,
		Modes:      []scenario.ModeIntervalDoc{{Start: 0, End: 5, Mode: "both"}},
		Agents: []scenario.AgentDef{
			{
				Count: 1, UtilityVariant: "cobb_douglas",
				UtilityParams: map[string]any{"alpha": 0.5},
				EndowmentA:    5, EndowmentB: 5,
				SpawnRegion: scenario.SpawnRegion{MinX: 0, MinY: 0, MaxX: 0, MaxY: 0},
			},
		},
		Params: scenario.GlobalParams{
			Spread: 0.05, Epsilon: 1e-6,
			VisionRadius: 2, InteractionRadius: 1, MoveBudgetPerTick: 1,
		},
		SearchProtocol:     scenario.ProtocolSelector{Name: "distance_discounted"},
		MatchingProtocol:   scenario.ProtocolSelector{Name: "three_pass"},
		BargainingProtocol: scenario.ProtocolSelector{Name: "compensating_block"},
	}
}

func TestLoopStopsAtTickBound(t *testing.T) {
	silent := log.New(io.Discard, "", 0)
	sim, err := engine.NewWithLogger(tinyScenario(), 1, nil, silent)
	require.NoError(t, err)

	r := &runner{sim: sim, logger: silent, stop: make(chan struct{})}
	code := r.loop(1000)
	assert.Equal(t, exitOK, code)
	assert.True(t, sim.Done())
}

func TestLoopRespectsSafetyCap(t *testing.T) {
	silent := log.New(io.Discard, "", 0)
	sim, err := engine.NewWithLogger(tinyScenario(), 1, nil, silent)
	require.NoError(t, err)

	r := &runner{sim: sim, logger: silent, stop: make(chan struct{})}
	code := r.loop(2)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, int64(2), sim.Tick())
}

func TestLoopStopsOnSignal(t *testing.T) {
	silent := log.New(io.Discard, "", 0)
	sim, err := engine.NewWithLogger(tinyScenario(), 1, nil, silent)
	require.NoError(t, err)

	r := &runner{sim: sim, logger: silent, stop: make(chan struct{})}
	close(r.stop)
	code := r.loop(1000)
	assert.Equal(t, exitOK, code)
	assert.True(t, sim.Done())
}
