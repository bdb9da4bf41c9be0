package telemetry

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmfunderburk/vmt/internal/econ"
	"github.com/cmfunderburk/vmt/internal/protocol"
	"github.com/cmfunderburk/vmt/internal/world"
)

func readEvents(t *testing.T, path string) []event {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		out = append(out, e)
	}
	require.NoError(t, scanner.Err())
	return out
}

func TestNewJSONLSinkCreatesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	s, err := NewJSONLSink(path, nil)
	require.NoError(t, err)
	defer s.Close()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestWriteThenFlushPersistsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	s, err := NewJSONLSink(path, nil)
	require.NoError(t, err)
	defer s.Close()

	s.TickState(3, world.ModeTrade)
	s.AgentSnapshot(3, &world.Agent{
		ID: 1, Pos: world.Position{X: 2, Y: 4},
		Utility: econ.Linear{WeightA: 1, WeightB: 1},
		Quote:   econ.Quote{BidAinB: 0.8, AskAinB: 1.1},
	})
	s.TradeEvent(3, world.Position{X: 2, Y: 4}, 1, 2, 5, -3, 1.2, "a_gives_A", "a_for_b", 0.4, 0.6)
	s.PreferenceLog(3, 1, []protocol.Preference{{Score: 0.9}})

	require.NoError(t, s.Flush())

	events := readEvents(t, path)
	require.Len(t, events, 4)
	assert.Equal(t, "tick_state", events[0].Kind)
	assert.Equal(t, "agent_snapshot", events[1].Kind)
	assert.Equal(t, "linear", events[1].UtilityType)
	assert.Equal(t, 0.8, events[1].QuoteBid)
	assert.Equal(t, "trade", events[2].Kind)
	assert.Equal(t, world.AgentID(1), events[2].Buyer)
	assert.Equal(t, "a_gives_A", events[2].Direction)
}

func TestFlushWithoutWritesIsANoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	s, err := NewJSONLSink(path, nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Flush())
	assert.Empty(t, readEvents(t, path))
}

func TestCloseAfterFlushKeepsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	s, err := NewJSONLSink(path, nil)
	require.NoError(t, err)

	s.TickState(0, world.ModeBoth)
	require.NoError(t, s.Flush())
	require.NoError(t, s.Close())

	events := readEvents(t, path)
	require.Len(t, events, 1)
}
