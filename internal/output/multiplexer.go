package output

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leandrodaf/midirouter/sdk/contracts"
	"go.uber.org/multierr"
)

// ErrSinkNotConfigured is recorded when a set names a sink that is not registered.
var ErrSinkNotConfigured = errors.New("sink not configured")

// SinkError is the failure of one sink during a dispatch.
type SinkError struct {
	Sink  contracts.SinkID
	Frame [3]byte
	Err   error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("sink %s: write % X: %v", e.Sink, e.Frame[:], e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// DeliveryError aggregates the sink failures of one dispatch. Sinks not listed
// accepted the frame.
type DeliveryError struct {
	Attempted int
	errs      error
}

// Failures returns the per-sink failures in delivery order.
func (e *DeliveryError) Failures() []*SinkError {
	all := multierr.Errors(e.errs)
	out := make([]*SinkError, 0, len(all))
	for _, err := range all {
		var se *SinkError
		if errors.As(err, &se) {
			out = append(out, se)
		}
	}
	return out
}

// Failed reports whether id is among the failed sinks.
func (e *DeliveryError) Failed(id contracts.SinkID) bool {
	for _, f := range e.Failures() {
		if f.Sink == id {
			return true
		}
	}
	return false
}

func (e *DeliveryError) Error() string {
	failures := e.Failures()
	names := make([]string, len(failures))
	for i, f := range failures {
		names[i] = f.Sink.String()
	}
	return fmt.Sprintf("delivery failed on %d of %d sinks (%s): %v",
		len(failures), e.Attempted, strings.Join(names, ", "), e.errs)
}

func (e *DeliveryError) Unwrap() []error {
	return multierr.Errors(e.errs)
}

// Multiplexer serializes events and writes them to each targeted sink. It keeps
// no state between dispatches.
type Multiplexer struct {
	registry *Registry
	logger   contracts.Logger
}

// NewMultiplexer creates a multiplexer delivering to the sinks in registry.
func NewMultiplexer(registry *Registry, logger contracts.Logger) *Multiplexer {
	return &Multiplexer{registry: registry, logger: logger}
}

// Registry returns the sink registry.
func (m *Multiplexer) Registry() *Registry {
	return m.registry
}

// Dispatch writes ev to every sink in set, in the order USB, DIN, TRS ascending.
// A failing sink does not stop delivery to the others and is not retried. The
// result is nil when every targeted sink accepted the frame, otherwise a
// *DeliveryError.
func (m *Multiplexer) Dispatch(ev contracts.Event, set contracts.SinkSet) error {
	return m.DispatchFrame(ev.Frame(), set)
}

// DispatchFrame writes a pre-serialized frame to every sink in set.
func (m *Multiplexer) DispatchFrame(frame [3]byte, set contracts.SinkSet) error {
	targets := m.registry.resolve(set)

	var errs error
	for _, t := range targets {
		if t.sink == nil {
			errs = multierr.Append(errs, &SinkError{Sink: t.id, Frame: frame, Err: ErrSinkNotConfigured})
			continue
		}
		if err := t.sink.Write(frame); err != nil {
			errs = multierr.Append(errs, &SinkError{Sink: t.id, Frame: frame, Err: err})
		}
	}

	if errs == nil {
		return nil
	}
	derr := &DeliveryError{Attempted: len(targets), errs: errs}
	if m.logger != nil {
		m.logger.Warn("MIDI delivery degraded",
			m.logger.Field().Int("attempted", derr.Attempted),
			m.logger.Field().Int("failed", len(multierr.Errors(errs))),
			m.logger.Field().Error("error", errs))
	}
	return derr
}
