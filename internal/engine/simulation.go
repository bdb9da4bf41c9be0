// Package engine wires the scenario document, the protocol registries, and
// the seven internal/systems phases into a runnable Simulation: the single
// type the headless CLI surface (cmd/vmtrun, cmd/vmtsweep) drives.
package engine

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"os"

	"github.com/google/uuid"

	"github.com/cmfunderburk/vmt/internal/diagnostics"
	"github.com/cmfunderburk/vmt/internal/protocol"
	"github.com/cmfunderburk/vmt/internal/scenario"
	"github.com/cmfunderburk/vmt/internal/systems"
	"github.com/cmfunderburk/vmt/internal/telemetry"
	"github.com/cmfunderburk/vmt/internal/world"
)

// ErrStopped is returned by Step once Stop has been called.
var ErrStopped = errors.New("engine: simulation stopped")

// phase is the common shape of every internal/systems phase.
type phase interface {
	Run(ctx *systems.TickContext) error
}

// Simulation owns everything one run needs: world state, the resolved
// protocol instances, the seeded RNG, global parameters, and the telemetry
// sink. It runs exactly the four headless operations the specification's
// CLI surface requires: New, Step, CurrentState, Stop.
type Simulation struct {
	RunID string

	state  *world.State
	phases []phase

	search     protocol.Search
	matching   protocol.Matching
	bargaining protocol.Bargaining

	rng    *rand.Rand
	params systems.Params
	sink   telemetry.Sink
	logger *log.Logger

	tickBound int64
	stopped   bool
}

// New constructs a Simulation from a parsed scenario document and a seed.
// An unknown protocol name in the document is a startup-fatal contract
// violation, matching the registry's own contract.
func New(doc *scenario.Document, seed uint64, sink telemetry.Sink) (*Simulation, error) {
	return NewWithLogger(doc, seed, sink, log.New(os.Stderr, "[engine] ", log.LstdFlags))
}

// NewWithLogger is New with an explicit logger, used by tests and by
// cmd/vmtsweep to prefix each concurrent run's diagnostics distinctly.
func NewWithLogger(doc *scenario.Document, seed uint64, sink telemetry.Sink, logger *log.Logger) (*Simulation, error) {
	state, err := buildState(doc)
	if err != nil {
		return nil, fmt.Errorf("engine: building world state: %w", err)
	}

	s, m, b, err := resolveProtocols(doc)
	if err != nil {
		return nil, err
	}

	return &Simulation{
		RunID:      uuid.NewString(),
		state:      state,
		phases:     []phase{systems.Perception{}, systems.Decision{}, systems.Movement{}, systems.Trade{}, systems.Forage{}, systems.Regeneration{}, systems.Housekeeping{}},
		search:     s,
		matching:   m,
		bargaining: b,
		rng:        newRNG(seed),
		params:     buildParams(doc.Params),
		sink:       sink,
		logger:     logger,
		tickBound:  doc.TickBound,
	}, nil
}

// Step advances the simulation by exactly one tick, running the seven
// phases in fixed order; the tick's mode skips Trade in forage mode and
// Forage in trade mode. A contract violation observed by any phase
// propagates immediately and the tick is considered not to have completed;
// every other diagnostic kind is logged and absorbed.
func (s *Simulation) Step() error {
	if s.stopped {
		return ErrStopped
	}

	ctx := &systems.TickContext{
		State:      s.state,
		Search:     s.search,
		Matching:   s.matching,
		Bargaining: s.bargaining,
		RNG:        s.rng,
		Params:     s.params,
		Sink:       s.sink,
	}

	mode := s.state.Mode()
	for _, p := range s.phases {
		switch p.(type) {
		case systems.Trade:
			if mode == world.ModeForage {
				continue
			}
		case systems.Forage:
			if mode == world.ModeTrade {
				continue
			}
		}
		if err := p.Run(ctx); err != nil {
			var cv *diagnostics.Error
			if errors.As(err, &cv) {
				return cv
			}
			return diagnostics.New(diagnostics.ContractViolation, s.state.Tick, "", nil, err)
		}
		for _, d := range ctx.Diagnostics {
			var de *diagnostics.Error
			if errors.As(d, &de) && de.Fatal() {
				return de
			}
		}
	}

	for _, d := range ctx.Diagnostics {
		var de *diagnostics.Error
		if errors.As(d, &de) && de.Fatal() {
			return de
		}
		s.logger.Printf("tick %d: %v", s.state.Tick, d)
	}

	if s.sink != nil {
		if err := s.sink.Flush(); err != nil {
			s.logger.Printf("tick %d: telemetry flush: %v", s.state.Tick, err)
		}
	}

	s.state.Tick++
	return nil
}

// CurrentState returns the live, mutable world state. Callers outside
// internal/systems must treat it as read-only — nothing enforces that at
// the type level, matching the engine's internal trust boundary elsewhere.
func (s *Simulation) CurrentState() *world.State {
	return s.state
}

// Stop marks the simulation as finished; subsequent Step calls return
// ErrStopped.
func (s *Simulation) Stop() {
	s.stopped = true
}

// Done reports whether the simulation has reached its scenario-declared
// tick bound or been explicitly stopped.
func (s *Simulation) Done() bool {
	return s.stopped || s.state.Tick >= s.tickBound
}

// Tick returns the current tick counter.
func (s *Simulation) Tick() world.Tick {
	return s.state.Tick
}
