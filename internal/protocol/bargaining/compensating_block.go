package bargaining

import (
	"github.com/cmfunderburk/vmt/internal/effectpkg"
	"github.com/cmfunderburk/vmt/internal/protocol"
	"github.com/cmfunderburk/vmt/internal/protocol/tradecore"
	"github.com/cmfunderburk/vmt/internal/world"
)

// CompensatingBlock is the default bargaining protocol: the first
// mutually-beneficial integer-quantity trade found by the shared discovery
// search, evaluated direction-then-quantity-then-price in a fixed order.
type CompensatingBlock struct {
	Eps        float64
	Discoverer protocol.TradeDiscoverer
}

// NewCompensatingBlock builds a CompensatingBlock from scenario params.
func NewCompensatingBlock(params map[string]any) (protocol.Bargaining, error) {
	return CompensatingBlock{
		Eps:        protocol.GetFloat(params, "eps", 1e-9),
		Discoverer: tradecore.DefaultDiscoverer{},
	}, nil
}

func (c CompensatingBlock) Name() string { return "compensating_block" }

func (c CompensatingBlock) Bargain(ctx protocol.ProtocolContext, a, b *world.Agent) []effectpkg.Effect {
	t, ok := c.Discoverer.Discover(a, b, c.Eps)
	if !ok {
		return unpairFailed(a, b)
	}
	return []effectpkg.Effect{tradeEffect(a, b, t)}
}
