package world

import "sort"

// State is the canonical mutable simulation state for one simulation run:
// every agent, the grid, the spatial index over agent positions, the
// resource claim map, the active mode schedule, and the current tick. Only
// the phase that owns a given piece of state (see internal/systems) may
// mutate it, and always through an effect.
type State struct {
	Agents map[AgentID]*Agent
	Order  []AgentID // ascending id order, fixed at construction

	Grid   *Grid
	Index  *SpatialIndex
	Claims *ClaimMap

	Modes ModeSchedule
	Tick  Tick
}

// NewState constructs an empty State over the given grid, with a spatial
// index bucketed at bucketSize.
func NewState(grid *Grid, bucketSize int, modes ModeSchedule) *State {
	return &State{
		Agents: make(map[AgentID]*Agent),
		Grid:   grid,
		Index:  NewSpatialIndex(bucketSize),
		Claims: NewClaimMap(),
		Modes:  modes,
	}
}

// AddAgent registers a new agent, indexing it spatially, and keeps Order
// sorted ascending by id so every phase that iterates "in id order" gets a
// single shared, deterministic source for that order.
func (s *State) AddAgent(a *Agent) {
	s.Agents[a.ID] = a
	s.Index.Add(a.ID, a.Pos)
	i := sort.Search(len(s.Order), func(i int) bool { return s.Order[i] >= a.ID })
	s.Order = append(s.Order, 0)
	copy(s.Order[i+1:], s.Order[i:])
	s.Order[i] = a.ID
}

// Agent returns the agent with the given id, or nil if absent.
func (s *State) Agent(id AgentID) *Agent {
	return s.Agents[id]
}

// Mode returns the mode scheduled for the current tick.
func (s *State) Mode() Mode {
	return s.Modes.ModeAt(s.Tick)
}

// RepairPairing walks every agent in id order and unpairs any agent whose
// partner either does not exist or does not point back, logging each repair
// through report. Called once per tick, at the end of Housekeeping (Phase
// 7), after every other phase has had a chance to leave pairings
// inconsistent only transiently.
func (s *State) RepairPairing(report func(a, b AgentID, reason string)) {
	for _, id := range s.Order {
		a := s.Agents[id]
		if a.PairedWithID == nil {
			continue
		}
		partner, ok := s.Agents[*a.PairedWithID]
		if !ok || partner.PairedWithID == nil || *partner.PairedWithID != a.ID {
			broken := *a.PairedWithID
			a.PairedWithID = nil
			if ok && partner.PairedWithID != nil && *partner.PairedWithID == a.ID {
				partner.PairedWithID = nil
			}
			if report != nil {
				report(a.ID, broken, "asymmetric_pairing_repaired")
			}
		}
	}
}
