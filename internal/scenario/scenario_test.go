package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
grid_width: 5
grid_height: 5
tick_bound: 100
agents:
  - count: 2
    utility_variant: cobb_douglas
    utility_params: {alpha: 0.5}
    endowment_a: 10
    endowment_b: 0
`

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.95, doc.Params.Beta)
	assert.Equal(t, "distance_discounted", doc.SearchProtocol.Name)
	assert.Equal(t, "three_pass", doc.MatchingProtocol.Name)
	assert.Equal(t, "compensating_block", doc.BargainingProtocol.Name)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML+"\nbogus_field: 1\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsEmptyGrid(t *testing.T) {
	d := &Document{GridWidth: 0, GridHeight: 5, TickBound: 1, Agents: []AgentDef{{}}}
	assert.Error(t, d.Validate())
}

func TestValidateRejectsInvertedModeInterval(t *testing.T) {
	d := &Document{
		GridWidth: 1, GridHeight: 1, TickBound: 1,
		Agents: []AgentDef{{}},
		Modes:  []ModeIntervalDoc{{Start: 5, End: 5, Mode: "both"}},
	}
	assert.Error(t, d.Validate())
}

func TestProtocolSelectorDecodesBareString(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	doc := minimalYAML + "\nsearch_protocol: custom_search\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom_search", d.SearchProtocol.Name)
}

func TestProtocolSelectorDecodesNameParams(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	doc := minimalYAML + "\nbargaining_protocol:\n  name: take_it_or_leave_it\n  params:\n    proposer_power: 0.7\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "take_it_or_leave_it", d.BargainingProtocol.Name)
	assert.Equal(t, 0.7, d.BargainingProtocol.Params["proposer_power"])
}
