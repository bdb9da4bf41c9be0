// Package world holds the canonical mutable simulation state: agents, the
// grid, the spatial index, resource claims, the mode schedule, and the
// tick. The RNG is owned by the engine's Simulation, not by this package.
// Only effect dispatch (in internal/systems)
// or the phase that owns a given piece of state may mutate it.
package world

import (
	"github.com/cmfunderburk/vmt/internal/effectpkg"
)

// AgentID and Position are re-exported from effectpkg so that effect
// payloads and world state share identical identifiers without an import
// cycle (effectpkg has no dependency on world).
type AgentID = effectpkg.AgentID
type Position = effectpkg.Pos

// Dist returns the Manhattan distance between two positions.
func Dist(a, b Position) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Tick is a monotonic non-negative tick counter.
type Tick = int64

// Mode selects which systems run this tick.
type Mode int

const (
	ModeTrade Mode = iota
	ModeForage
	ModeBoth
)

func (m Mode) String() string {
	switch m {
	case ModeTrade:
		return "trade"
	case ModeForage:
		return "forage"
	case ModeBoth:
		return "both"
	default:
		return "unknown"
	}
}

// ModeSchedule is a sequence of half-open [Start, End) tick intervals each
// carrying a Mode, supplied by the scenario document.
type ModeSchedule []ModeInterval

type ModeInterval struct {
	Start, End Tick
	Mode       Mode
}

// ModeAt returns the mode in effect at the given tick, defaulting to
// ModeBoth if the schedule does not cover it (a permissive default so a
// scenario author who forgets to extend the schedule doesn't silently halt
// all activity).
func (s ModeSchedule) ModeAt(tick Tick) Mode {
	for _, iv := range s {
		if tick >= iv.Start && tick < iv.End {
			return iv.Mode
		}
	}
	return ModeBoth
}

// ResourceType enumerates the two goods a resource cell can yield.
type ResourceType int

const (
	ResourceA ResourceType = iota
	ResourceB
)
