package engine

import (
	"fmt"

	"github.com/cmfunderburk/vmt/internal/econ"
	"github.com/cmfunderburk/vmt/internal/protocol"
	"github.com/cmfunderburk/vmt/internal/scenario"
	"github.com/cmfunderburk/vmt/internal/systems"
	"github.com/cmfunderburk/vmt/internal/world"
)

// buildParams translates the scenario's global parameter table into the
// systems.Params every phase consults, scaling the two quantities expressed
// in whole units (forage_rate, resource_growth_rate) into econ's minor
// units.
func buildParams(p scenario.GlobalParams) systems.Params {
	return systems.Params{
		Spread:                 p.Spread,
		Eps:                    p.Epsilon,
		ForageRate:             p.ForageRate * econ.Scale,
		TradeCooldownTicks:     p.TradeCooldownTicks,
		ResourceRegenCooldown:  p.ResourceRegenCooldown,
		ResourceGrowthRate:     p.ResourceGrowthRate * econ.Scale,
		EnforceSingleHarvester: p.EnforceSingleHarvester,
		EnableResourceClaiming: p.EnableResourceClaiming,
		LogPreferences:         p.LogPreferences,
	}
}

// buildState does the minimal structural interpretation a scenario document
// needs to become a world.State: resolving spawn regions into concrete
// cells and utility_variant strings into econ.Utility values. Elaborate
// scenario-authoring conveniences stop here by design.
func buildState(doc *scenario.Document) (*world.State, error) {
	grid := world.NewGrid(doc.GridWidth, doc.GridHeight)

	for _, rc := range doc.Resources {
		rtype, err := parseResourceType(rc.Type)
		if err != nil {
			return nil, err
		}
		for _, pos := range resolvePositions(rc.SpawnRegion, doc.GridWidth, doc.GridHeight, rc.Count) {
			grid.PlaceResource(pos, rtype, rc.OriginalAmount*econ.Scale)
		}
	}

	modes, err := buildModeSchedule(doc.Modes)
	if err != nil {
		return nil, err
	}

	bucketSize := max(doc.Params.VisionRadius, doc.Params.InteractionRadius, 1)
	state := world.NewState(grid, bucketSize, modes)

	var nextID world.AgentID = 1
	for _, ad := range doc.Agents {
		u, err := buildUtility(ad.UtilityVariant, ad.UtilityParams)
		if err != nil {
			return nil, err
		}
		inv := econ.FromWhole(ad.EndowmentA, ad.EndowmentB)
		for _, pos := range resolvePositions(ad.SpawnRegion, doc.GridWidth, doc.GridHeight, ad.Count) {
			a := world.NewAgent(nextID, pos, inv, u, doc.Params.Spread,
				doc.Params.VisionRadius, doc.Params.InteractionRadius, doc.Params.MoveBudgetPerTick)
			state.AddAgent(a)
			nextID++
		}
	}

	return state, nil
}

// buildUtility maps a scenario utility_variant name and its loosely-typed
// params map onto one of econ's seven concrete Utility implementations.
func buildUtility(variant string, params map[string]any) (econ.Utility, error) {
	switch variant {
	case "cobb_douglas":
		return econ.CobbDouglas{Alpha: protocol.GetFloat(params, "alpha", 0.5)}, nil
	case "ces":
		return econ.CES{
			Alpha: protocol.GetFloat(params, "alpha", 0.5),
			Rho:   protocol.GetFloat(params, "rho", 0.5),
		}, nil
	case "leontief":
		return econ.Leontief{
			RatioA: protocol.GetFloat(params, "ratio_a", 1),
			RatioB: protocol.GetFloat(params, "ratio_b", 1),
		}, nil
	case "linear":
		return econ.Linear{
			WeightA: protocol.GetFloat(params, "weight_a", 1),
			WeightB: protocol.GetFloat(params, "weight_b", 1),
		}, nil
	case "quadratic":
		return econ.Quadratic{
			WeightA: protocol.GetFloat(params, "weight_a", 1),
			WeightB: protocol.GetFloat(params, "weight_b", 1),
			QuadAA:  protocol.GetFloat(params, "quad_aa", 0.01),
			QuadBB:  protocol.GetFloat(params, "quad_bb", 0.01),
			Cross:   protocol.GetFloat(params, "cross", 0),
		}, nil
	case "translog":
		return econ.Translog{
			B0:  protocol.GetFloat(params, "b0", 0),
			BA:  protocol.GetFloat(params, "ba", 0.5),
			BB:  protocol.GetFloat(params, "bb", 0.5),
			BAA: protocol.GetFloat(params, "baa", 0),
			BBB: protocol.GetFloat(params, "bbb", 0),
			BAB: protocol.GetFloat(params, "bab", 0),
		}, nil
	case "stone_geary":
		return econ.StoneGeary{
			Alpha:  protocol.GetFloat(params, "alpha", 0.5),
			GammaA: protocol.GetFloat(params, "gamma_a", 0),
			GammaB: protocol.GetFloat(params, "gamma_b", 0),
		}, nil
	default:
		return nil, fmt.Errorf("engine: unknown utility_variant %q", variant)
	}
}

func parseResourceType(s string) (world.ResourceType, error) {
	switch s {
	case "", "a", "A":
		return world.ResourceA, nil
	case "b", "B":
		return world.ResourceB, nil
	default:
		return 0, fmt.Errorf("engine: unknown resource type %q", s)
	}
}

func buildModeSchedule(docModes []scenario.ModeIntervalDoc) (world.ModeSchedule, error) {
	schedule := make(world.ModeSchedule, 0, len(docModes))
	for _, m := range docModes {
		mode, err := parseMode(m.Mode)
		if err != nil {
			return nil, err
		}
		schedule = append(schedule, world.ModeInterval{Start: m.Start, End: m.End, Mode: mode})
	}
	return schedule, nil
}

func parseMode(s string) (world.Mode, error) {
	switch s {
	case "trade":
		return world.ModeTrade, nil
	case "forage":
		return world.ModeForage, nil
	case "both":
		return world.ModeBoth, nil
	default:
		return 0, fmt.Errorf("engine: unknown mode %q", s)
	}
}

// resolvePositions expands a spawn region into count concrete grid cells,
// filling the region row-major and cycling back to its start if count
// exceeds the region's area. A region with no extent (the zero value)
// resolves to the single cell (0,0), clamped onto the grid.
func resolvePositions(region scenario.SpawnRegion, gridW, gridH, count int) []world.Position {
	minX, maxX := clampCoord(region.MinX, gridW), clampCoord(region.MaxX, gridW)
	minY, maxY := clampCoord(region.MinY, gridH), clampCoord(region.MaxY, gridH)
	if maxX < minX {
		maxX = minX
	}
	if maxY < minY {
		maxY = minY
	}

	var cells []world.Position
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			cells = append(cells, world.Position{X: x, Y: y})
		}
	}

	out := make([]world.Position, count)
	for i := 0; i < count; i++ {
		out[i] = cells[i%len(cells)]
	}
	return out
}

func clampCoord(v, size int) int {
	if v < 0 {
		return 0
	}
	if v > size-1 {
		return size - 1
	}
	return v
}
