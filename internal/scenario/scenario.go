// Package scenario defines the data contract for a simulation's input
// document: grid dimensions, the mode schedule, agent and resource
// definitions, global parameters, and protocol selectors. Loading and
// interpreting scenario authoring conveniences (named spawn regions,
// templated clusters) belongs to the external scenario loader; this
// package only decodes the structural document and validates it.
package scenario

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProtocolSelector names a protocol and, optionally, its construction
// params. It decodes from either a bare string or a {name, params} map.
type ProtocolSelector struct {
	Name   string
	Params map[string]any
}

func (p *ProtocolSelector) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&p.Name)
	}
	var aux struct {
		Name   string         `yaml:"name"`
		Params map[string]any `yaml:"params"`
	}
	if err := value.Decode(&aux); err != nil {
		return err
	}
	p.Name, p.Params = aux.Name, aux.Params
	return nil
}

// ModeIntervalDoc is one half-open [start, end) interval of the schedule.
type ModeIntervalDoc struct {
	Start int64  `yaml:"start"`
	End   int64  `yaml:"end"`
	Mode  string `yaml:"mode"`
}

// SpawnRegion is a rectangular area agents or resources may spawn within.
// Interpreting spawn_region into literal positions is the engine's job
// (internal/engine/build.go), not this package's.
type SpawnRegion struct {
	MinX int `yaml:"min_x"`
	MinY int `yaml:"min_y"`
	MaxX int `yaml:"max_x"`
	MaxY int `yaml:"max_y"`
}

// AgentDef describes one agent (or, with Count > 1, a homogeneous batch).
type AgentDef struct {
	Count          int            `yaml:"count"`
	UtilityVariant string         `yaml:"utility_variant"`
	UtilityParams  map[string]any `yaml:"utility_params"`
	EndowmentA     int64          `yaml:"endowment_a"`
	EndowmentB     int64          `yaml:"endowment_b"`
	SpawnRegion    SpawnRegion    `yaml:"spawn_region"`
}

// ResourceClusterDef describes a batch of resource cells.
type ResourceClusterDef struct {
	Type             string      `yaml:"type"`
	Count            int         `yaml:"count"`
	SpawnRegion      SpawnRegion `yaml:"spawn_region"`
	RegenerationRate int64       `yaml:"regeneration_rate"`
	OriginalAmount   int64       `yaml:"original_amount"`
}

// GlobalParams holds every scenario-wide tunable in §6 of the parameter
// table: discount factor, forage rate, radii, spread, epsilon, cooldowns,
// regeneration knobs, and the two debug/telemetry toggles.
type GlobalParams struct {
	Beta                   float64 `yaml:"beta"`
	ForageRate             int64   `yaml:"forage_rate"`
	VisionRadius           int     `yaml:"vision_radius"`
	InteractionRadius      int     `yaml:"interaction_radius"`
	MoveBudgetPerTick      int     `yaml:"move_budget_per_tick"`
	Spread                 float64 `yaml:"spread"`
	Epsilon                float64 `yaml:"epsilon"`
	TradeCooldownTicks     int64   `yaml:"trade_cooldown_ticks"`
	ResourceRegenCooldown  int64   `yaml:"resource_regen_cooldown"`
	ResourceGrowthRate     int64   `yaml:"resource_growth_rate"`
	EnforceSingleHarvester bool    `yaml:"enforce_single_harvester"`
	EnableResourceClaiming bool    `yaml:"enable_resource_claiming"`
	LogPreferences         bool    `yaml:"log_preferences"`
	DebugImmutability      bool    `yaml:"debug_immutability"`
}

// Document is the root scenario document.
type Document struct {
	GridWidth  int               `yaml:"grid_width"`
	GridHeight int               `yaml:"grid_height"`
	TickBound  int64             `yaml:"tick_bound"`
	Modes      []ModeIntervalDoc `yaml:"mode_schedule"`

	Agents    []AgentDef           `yaml:"agents"`
	Resources []ResourceClusterDef `yaml:"resources"`

	Params GlobalParams `yaml:"params"`

	SearchProtocol     ProtocolSelector `yaml:"search_protocol"`
	MatchingProtocol   ProtocolSelector `yaml:"matching_protocol"`
	BargainingProtocol ProtocolSelector `yaml:"bargaining_protocol"`
}

// Load reads and structurally decodes a scenario document from path,
// rejecting unknown fields so a typo in a scenario file fails loudly
// instead of silently falling back to a zero value. Environment variable
// references (${VAR}) are expanded before parsing, matching the engine's
// operational config loader.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	expanded := os.ExpandEnv(string(raw))

	var doc Document
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("scenario: parse %s: %w", path, err)
	}
	if err := doc.applyDefaults().Validate(); err != nil {
		return nil, fmt.Errorf("scenario: %s: %w", path, err)
	}
	return &doc, nil
}

func (d *Document) applyDefaults() *Document {
	if d.Params.Beta == 0 {
		d.Params.Beta = 0.95
	}
	if d.Params.Spread == 0 {
		d.Params.Spread = 0.05
	}
	if d.Params.Epsilon == 0 {
		d.Params.Epsilon = 1e-6
	}
	if d.Params.ForageRate == 0 {
		d.Params.ForageRate = 1
	}
	if d.SearchProtocol.Name == "" {
		d.SearchProtocol.Name = "distance_discounted"
	}
	if d.MatchingProtocol.Name == "" {
		d.MatchingProtocol.Name = "three_pass"
	}
	if d.BargainingProtocol.Name == "" {
		d.BargainingProtocol.Name = "compensating_block"
	}
	return d
}

// Validate checks the document's structural invariants: positive grid
// dimensions, a well-formed mode schedule, and at least one agent.
func (d *Document) Validate() error {
	if d.GridWidth <= 0 || d.GridHeight <= 0 {
		return fmt.Errorf("grid dimensions must be positive, got %dx%d", d.GridWidth, d.GridHeight)
	}
	if d.TickBound <= 0 {
		return fmt.Errorf("tick_bound must be positive, got %d", d.TickBound)
	}
	if len(d.Agents) == 0 {
		return fmt.Errorf("scenario must define at least one agent")
	}
	for _, m := range d.Modes {
		if m.End <= m.Start {
			return fmt.Errorf("mode interval [%d,%d) is empty or inverted", m.Start, m.End)
		}
		switch m.Mode {
		case "trade", "forage", "both":
		default:
			return fmt.Errorf("unknown mode %q", m.Mode)
		}
	}
	return nil
}
