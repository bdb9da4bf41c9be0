// Package telemetry implements the egress path every running Simulation
// writes to: a newline-delimited JSON event log, guarded by a circuit
// breaker so a stalled or failing disk degrades the sink instead of the
// simulation loop.
package telemetry

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/cmfunderburk/vmt/internal/protocol"
	"github.com/cmfunderburk/vmt/internal/world"
)

// Sink is the full telemetry surface a Simulation writes to: the same
// method set internal/systems.TelemetrySink declares, plus Flush, which a
// Simulation calls once per tick, at the end of Step, rather than after
// every event.
type Sink interface {
	TickState(tick world.Tick, mode world.Mode)
	AgentSnapshot(tick world.Tick, a *world.Agent)
	ResourceSnapshot(tick world.Tick, pos world.Position, r *world.Resource)
	TradeEvent(tick world.Tick, pos world.Position, buyer, seller world.AgentID, dA, dB int64, price float64, direction, pairType string, buyerSurplus, sellerSurplus float64)
	PairingEvent(tick world.Tick, a, b world.AgentID, kind, reason string, surplusA float64, surplusB *float64)
	PreferenceLog(tick world.Tick, agent world.AgentID, prefs []protocol.Preference)
	Flush() error
	Close() error
}

// event is the on-disk envelope every record shares. Kind-specific payload
// fields are flattened into the same struct rather than nested, so a reader
// can jq a single field path regardless of event kind.
type event struct {
	Kind string     `json:"kind"`
	Tick world.Tick `json:"tick"`

	Mode string `json:"mode,omitempty"`

	Agent       *world.AgentID  `json:"agent,omitempty"`
	Agent2      *world.AgentID  `json:"agent2,omitempty"`
	Pos         *world.Position `json:"pos,omitempty"`
	TargetPos   *world.Position `json:"target_pos,omitempty"`
	TargetAgent *world.AgentID  `json:"target_agent_id,omitempty"`

	A int64 `json:"a,omitempty"`
	B int64 `json:"b,omitempty"`

	Utility     float64 `json:"utility,omitempty"`
	UtilityType string  `json:"utility_type,omitempty"`
	QuoteBid    float64 `json:"quote_bid,omitempty"`
	QuoteAsk    float64 `json:"quote_ask,omitempty"`

	RType             string      `json:"resource_type,omitempty"`
	OriginalAmount    int64       `json:"original_amount,omitempty"`
	LastHarvestedTick *world.Tick `json:"last_harvested_tick,omitempty"`

	Buyer     world.AgentID `json:"buyer,omitempty"`
	Seller    world.AgentID `json:"seller,omitempty"`
	DA        int64         `json:"da,omitempty"`
	DB        int64         `json:"db,omitempty"`
	Price     float64       `json:"price,omitempty"`
	Direction string        `json:"direction,omitempty"`

	PairType      string  `json:"pair_type,omitempty"`
	BuyerSurplus  float64 `json:"buyer_surplus,omitempty"`
	SellerSurplus float64 `json:"seller_surplus,omitempty"`

	PairKind  string   `json:"pair_kind,omitempty"`
	Reason    string   `json:"reason,omitempty"`
	SurplusA  float64  `json:"surplus_a,omitempty"`
	SurplusB  *float64 `json:"surplus_b,omitempty"`

	Preferences []protocol.Preference `json:"preferences,omitempty"`
}

// JSONLSink is the concrete Sink: a buffered append-only writer over a
// single file, with an initial atomic create borrowed from the storage
// package's tempfile-then-rename idiom so a crash mid-startup never leaves
// a partially-permissioned log behind; the log starts out empty.
type JSONLSink struct {
	mu     sync.Mutex
	file   *os.File
	w      *bufio.Writer
	path   string
	logger *logrus.Logger
	cb     *gobreaker.CircuitBreaker
}

// NewJSONLSink creates (or truncates) the event log at path and returns a
// Sink ready to accept events. logger may be nil, in which case a default
// logrus.Logger is used.
func NewJSONLSink(path string, logger *logrus.Logger) (*JSONLSink, error) {
	if logger == nil {
		logger = logrus.New()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("telemetry: creating log directory: %w", err)
	}

	if err := createEmptyAtomic(path); err != nil {
		return nil, fmt.Errorf("telemetry: initializing log file: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("telemetry: opening log file: %w", err)
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "telemetry-flush",
		MaxRequests: 1,
		Interval:    0,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name, "from": from.String(), "to": to.String(),
			}).Warn("telemetry sink circuit breaker state change")
		},
	})

	return &JSONLSink{
		file:   f,
		w:      bufio.NewWriter(f),
		path:   path,
		logger: logger,
		cb:     cb,
	}, nil
}

// createEmptyAtomic establishes path as an empty, 0600 file via the
// same tempfile-in-same-dir-then-rename sequence the storage package uses
// for its whole-file saves, adapted here to a one-time initialization
// rather than a per-write overwrite.
func createEmptyAtomic(path string) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".telemetry-*")
	if err != nil {
		return err
	}
	tmpName := f.Name()
	defer func() {
		_ = f.Close()
		_ = os.Remove(tmpName)
	}()

	if err := f.Chmod(0o600); err != nil {
		return fmt.Errorf("setting temp file permissions: %w", err)
	}
	if err := f.Sync(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		var linkErr *os.LinkError
		if errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
			return copyAcrossDevices(tmpName, path)
		}
		return fmt.Errorf("renaming temp file into place: %w", err)
	}
	tmpName = ""
	return nil
}

func copyAcrossDevices(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o600)
}

func (s *JSONLSink) write(e event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := json.Marshal(e)
	if err != nil {
		s.logger.WithError(err).Error("telemetry: marshaling event")
		return
	}
	line = append(line, '\n')
	if _, err := s.w.Write(line); err != nil {
		s.logger.WithError(err).Error("telemetry: buffering event")
	}
}

func (s *JSONLSink) TickState(tick world.Tick, mode world.Mode) {
	s.write(event{Kind: "tick_state", Tick: tick, Mode: mode.String()})
}

func (s *JSONLSink) AgentSnapshot(tick world.Tick, a *world.Agent) {
	pos := a.Pos
	id := a.ID
	s.write(event{
		Kind: "agent_snapshot", Tick: tick,
		Agent: &id, Pos: &pos,
		A: a.Inv.A, B: a.Inv.B,
		Utility: a.Utility.U(a.Inv), UtilityType: a.Utility.Name(),
		QuoteBid: a.Quote.BidAinB, QuoteAsk: a.Quote.AskAinB,
		TargetPos: a.TargetPos, TargetAgent: a.TargetAgentID,
	})
}

func (s *JSONLSink) ResourceSnapshot(tick world.Tick, pos world.Position, r *world.Resource) {
	rtype := "a"
	if r.Type == world.ResourceB {
		rtype = "b"
	}
	p := pos
	s.write(event{
		Kind: "resource_snapshot", Tick: tick,
		Pos: &p, RType: rtype, A: r.Amount,
		OriginalAmount: r.OriginalAmount, LastHarvestedTick: r.LastHarvested,
	})
}

func (s *JSONLSink) TradeEvent(tick world.Tick, pos world.Position, buyer, seller world.AgentID, dA, dB int64, price float64, direction, pairType string, buyerSurplus, sellerSurplus float64) {
	p := pos
	s.write(event{
		Kind: "trade", Tick: tick, Pos: &p,
		Buyer: buyer, Seller: seller,
		DA: dA, DB: dB, Price: price, Direction: direction,
		PairType: pairType, BuyerSurplus: buyerSurplus, SellerSurplus: sellerSurplus,
	})
}

func (s *JSONLSink) PairingEvent(tick world.Tick, a, b world.AgentID, kind, reason string, surplusA float64, surplusB *float64) {
	s.write(event{
		Kind: "pairing", Tick: tick,
		Agent: &a, Agent2: &b,
		PairKind: kind, Reason: reason,
		SurplusA: surplusA, SurplusB: surplusB,
	})
}

func (s *JSONLSink) PreferenceLog(tick world.Tick, agent world.AgentID, prefs []protocol.Preference) {
	id := agent
	s.write(event{
		Kind: "preference_log", Tick: tick,
		Agent: &id, Preferences: prefs,
	})
}

// Flush drains the buffered writer and fsyncs the underlying file,
// through the circuit breaker: three consecutive flush failures trip the
// breaker, and further Flush calls fail fast for Timeout before the next
// disk attempt.
func (s *JSONLSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.cb.Execute(func() (interface{}, error) {
		if err := s.w.Flush(); err != nil {
			return nil, err
		}
		return nil, s.file.Sync()
	})
	if err != nil {
		return fmt.Errorf("telemetry: flush: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file. It does not go through the
// circuit breaker: a shutdown-time flush failure is reported, not retried.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.w.Flush(); err != nil {
		_ = s.file.Close()
		return fmt.Errorf("telemetry: final flush: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		_ = s.file.Close()
		return fmt.Errorf("telemetry: final sync: %w", err)
	}
	return s.file.Close()
}
