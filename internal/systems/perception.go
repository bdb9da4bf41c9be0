package systems

import (
	"github.com/cmfunderburk/vmt/internal/world"
)

// Perception is Phase 1: for each agent, build a frozen local view from the
// spatial index and store it on the agent as PerceptionCache. Nothing
// outside PerceptionCache may be consulted by search protocols afterward.
type Perception struct{}

func (Perception) Run(ctx *TickContext) error {
	s := ctx.State
	for _, id := range s.Order {
		a := s.Agent(id)
		neighborIDs := s.Index.QueryRadius(a.Pos, a.VisionRadius)

		neighbors := make([]world.NeighborView, 0, len(neighborIDs))
		for _, nid := range neighborIDs {
			if nid == id {
				continue
			}
			n := s.Agent(nid)
			neighbors = append(neighbors, world.NeighborView{
				ID:           n.ID,
				Pos:          n.Pos,
				Quote:        n.Quote,
				PairedWithID: n.PairedWithID,
			})
		}

		resources := visibleResources(s.Grid, s.Claims, a.Pos, a.VisionRadius)

		a.PerceptionCache = world.PerceptionView{Neighbors: neighbors, Resources: resources}
	}
	return nil
}

func visibleResources(grid *world.Grid, claims *world.ClaimMap, center world.Position, radius int) []world.ResourceView {
	var out []world.ResourceView
	minX, maxX := center.X-radius, center.X+radius
	minY, maxY := center.Y-radius, center.Y+radius
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX >= grid.W {
		maxX = grid.W - 1
	}
	if maxY >= grid.H {
		maxY = grid.H - 1
	}
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			pos := world.Position{X: x, Y: y}
			if world.Dist(center, pos) > radius {
				continue
			}
			c := grid.Cell(pos)
			if c.Resource == nil || c.Resource.Amount <= 0 {
				continue
			}
			var claimedBy *world.AgentID
			if owner, ok := claims.OwnerAt(pos); ok {
				claimedBy = &owner
			}
			out = append(out, world.ResourceView{
				Pos:       pos,
				Type:      c.Resource.Type,
				Amount:    c.Resource.Amount,
				ClaimedBy: claimedBy,
			})
		}
	}
	return out
}
