package world

// Resource describes the harvestable content of a cell. A cell with no
// resource has a nil *Resource.
type Resource struct {
	Type           ResourceType
	Amount         int64
	OriginalAmount int64
	LastHarvested  *Tick
}

// Full reports whether the resource has regenerated to its original amount.
func (r *Resource) Full() bool {
	return r.Amount >= r.OriginalAmount
}

// Cell is one grid position and its optional resource.
type Cell struct {
	Pos      Position
	Resource *Resource
}

// Grid is a W×H array of cells plus the active set of cells with a
// depleted-and-tracked-for-regeneration resource. The active set exists so
// Regeneration (Phase 6) never has to scan the whole grid.
type Grid struct {
	W, H  int
	cells [][]Cell

	// HarvestedCells is the active set: positions whose resource has been
	// harvested at least once and has not yet fully regenerated.
	HarvestedCells map[Position]struct{}
}

// NewGrid constructs an empty W×H grid with no resources placed.
func NewGrid(w, h int) *Grid {
	cells := make([][]Cell, h)
	for y := 0; y < h; y++ {
		cells[y] = make([]Cell, w)
		for x := 0; x < w; x++ {
			cells[y][x] = Cell{Pos: Position{X: x, Y: y}}
		}
	}
	return &Grid{W: w, H: h, cells: cells, HarvestedCells: make(map[Position]struct{})}
}

// InBounds reports whether pos lies on the grid.
func (g *Grid) InBounds(pos Position) bool {
	return pos.X >= 0 && pos.X < g.W && pos.Y >= 0 && pos.Y < g.H
}

// Cell returns a pointer to the cell at pos. Callers must check InBounds
// first; an out-of-range pos panics, matching the grid's role as an
// internal invariant rather than an input-validated boundary.
func (g *Grid) Cell(pos Position) *Cell {
	return &g.cells[pos.Y][pos.X]
}

// PlaceResource installs a resource at pos, replacing any existing one.
func (g *Grid) PlaceResource(pos Position, rtype ResourceType, amount int64) {
	g.Cell(pos).Resource = &Resource{Type: rtype, Amount: amount, OriginalAmount: amount}
}

// Harvest removes up to amount units from the resource at pos, returning the
// quantity actually removed, marks the cell as harvested this tick, and adds
// it to the active set. Returns 0 if pos has no resource or it is already
// empty.
func (g *Grid) Harvest(pos Position, amount int64, tick Tick) int64 {
	c := g.Cell(pos)
	if c.Resource == nil || c.Resource.Amount <= 0 {
		return 0
	}
	take := amount
	if take > c.Resource.Amount {
		take = c.Resource.Amount
	}
	c.Resource.Amount -= take
	t := tick
	c.Resource.LastHarvested = &t
	g.HarvestedCells[pos] = struct{}{}
	return take
}

// ForEachResource calls fn for every cell that currently holds a resource,
// in row-major order.
func (g *Grid) ForEachResource(fn func(pos Position, r *Resource)) {
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			if r := g.cells[y][x].Resource; r != nil {
				fn(Position{X: x, Y: y}, r)
			}
		}
	}
}

// RegenerateActiveSet advances every cell in the active set by growthRate
// once regenCooldown ticks have elapsed since its last harvest, dropping
// cells that have fully regenerated (or were never actually harvested) out
// of the set. A growthRate of 0 leaves the set stuck on purpose — the
// caller configured regeneration off.
func (g *Grid) RegenerateActiveSet(tick Tick, regenCooldown Tick, growthRate int64) {
	for pos := range g.HarvestedCells {
		c := g.Cell(pos)
		r := c.Resource
		if r == nil || r.LastHarvested == nil || r.Full() {
			delete(g.HarvestedCells, pos)
			continue
		}
		if tick-*r.LastHarvested >= regenCooldown {
			r.Amount += growthRate
			if r.Amount > r.OriginalAmount {
				r.Amount = r.OriginalAmount
			}
			if r.Full() {
				delete(g.HarvestedCells, pos)
			}
		}
	}
}
