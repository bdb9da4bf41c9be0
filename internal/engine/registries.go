package engine

import (
	"fmt"

	"github.com/cmfunderburk/vmt/internal/protocol"
	"github.com/cmfunderburk/vmt/internal/protocol/bargaining"
	"github.com/cmfunderburk/vmt/internal/protocol/matching"
	"github.com/cmfunderburk/vmt/internal/protocol/search"
	"github.com/cmfunderburk/vmt/internal/scenario"
)

// newSearchRegistry populates the search protocol registry. Adding a new
// search algorithm means registering it here; nothing else in the engine
// needs to change.
func newSearchRegistry() *protocol.Registry[protocol.Search] {
	r := protocol.NewRegistry[protocol.Search]()
	r.Register("distance_discounted", search.NewDistanceDiscounted)
	return r
}

func newMatchingRegistry() *protocol.Registry[protocol.Matching] {
	r := protocol.NewRegistry[protocol.Matching]()
	r.Register("three_pass", matching.NewThreePass)
	return r
}

func newBargainingRegistry() *protocol.Registry[protocol.Bargaining] {
	r := protocol.NewRegistry[protocol.Bargaining]()
	r.Register("compensating_block", bargaining.NewCompensatingBlock)
	r.Register("split_the_difference", bargaining.NewSplitTheDifference)
	r.Register("take_it_or_leave_it", bargaining.NewTakeItOrLeaveIt)
	return r
}

// resolveProtocols looks up the three scenario-selected protocols by name.
// A name absent from its registry is a startup-fatal contract violation,
// never a silent fallback to a default.
func resolveProtocols(doc *scenario.Document) (protocol.Search, protocol.Matching, protocol.Bargaining, error) {
	s, err := newSearchRegistry().New(doc.SearchProtocol.Name, doc.SearchProtocol.Params)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("engine: search_protocol: %w", err)
	}
	m, err := newMatchingRegistry().New(doc.MatchingProtocol.Name, doc.MatchingProtocol.Params)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("engine: matching_protocol: %w", err)
	}
	b, err := newBargainingRegistry().New(doc.BargainingProtocol.Name, doc.BargainingProtocol.Params)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("engine: bargaining_protocol: %w", err)
	}
	return s, m, b, nil
}
