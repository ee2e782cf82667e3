package router

import (
	"context"
	"fmt"
	"time"

	"github.com/leandrodaf/midirouter/internal/decoder"
	"github.com/leandrodaf/midirouter/internal/keymap"
	"github.com/leandrodaf/midirouter/internal/output"
	"github.com/leandrodaf/midirouter/internal/routing"
	"github.com/leandrodaf/midirouter/internal/thru"
	"github.com/leandrodaf/midirouter/sdk/contracts"
	gomidi "gitlab.com/gomidi/midi/v2"
	"go.uber.org/multierr"
)

// Router wires the serial decoder, the scancode translator and the output
// multiplexer together. Feed, OnScancode and OnKey must be called from a single
// control loop; SetThru, ReplaceTable and sink registration may be called from
// anywhere.
type Router struct {
	logger  contracts.Logger
	decoder *decoder.Decoder
	keys    *keymap.Translator
	tables  *routing.Store
	mux     *output.Multiplexer
	gate    *thru.Gate
}

// FeedByte consumes one serial MIDI byte. When it completes a message and thru is
// enabled, the event is sent to every sink.
func (r *Router) FeedByte(b byte) error {
	msg, ok := r.decoder.Feed(b)
	if !ok {
		return nil
	}
	if r.logger.Enabled(contracts.DebugLevel) {
		r.logger.Debug("MIDI in",
			r.logger.Field().Stringer("message", gomidi.Message([]byte{msg.Status, msg.Data1, msg.Data2})))
	}

	ev, forward := r.gate.Forward(msg)
	if !forward {
		return nil
	}
	return r.mux.Dispatch(ev, contracts.AllSinks())
}

// Feed consumes p in order. Delivery failures of every completed message are combined.
func (r *Router) Feed(p []byte) error {
	var errs error
	for _, b := range p {
		errs = multierr.Append(errs, r.FeedByte(b))
	}
	return errs
}

// OnScancode handles a transition pulse of a keyboard scancode.
func (r *Router) OnScancode(code byte) error {
	out, ok := r.keys.OnScancode(code)
	return r.emit(code, out, ok)
}

// OnKey handles an explicit press or release of a keyboard scancode.
func (r *Router) OnKey(code byte, pressed bool) error {
	out, ok := r.keys.OnKey(code, pressed)
	return r.emit(code, out, ok)
}

// HandleScancode routes a notification to OnKey or OnScancode.
func (r *Router) HandleScancode(sc contracts.Scancode) error {
	if sc.Explicit {
		return r.OnKey(sc.Code, sc.Pressed)
	}
	return r.OnScancode(sc.Code)
}

func (r *Router) emit(code byte, out keymap.Output, ok bool) error {
	if !ok {
		r.logger.Debug("Scancode produced no event", r.logger.Field().Uint8("hid", code))
		return nil
	}
	r.logger.Debug("Scancode mapped",
		r.logger.Field().Uint8("hid", code),
		r.logger.Field().Stringer("event", out.Event),
		r.logger.Field().Stringer("sink", out.Sink))
	return r.mux.Dispatch(out.Event, contracts.SinksOf(out.Sink))
}

// Dispatch sends ev to set.
func (r *Router) Dispatch(ev contracts.Event, set contracts.SinkSet) error {
	return r.mux.Dispatch(ev, set)
}

// SetThru enables or disables forwarding of decoded serial input.
func (r *Router) SetThru(enabled bool) {
	if prev := r.gate.Set(enabled); prev != enabled {
		r.logger.Info("MIDI thru changed", r.logger.Field().Bool("enabled", enabled))
	}
}

// Thru reports whether decoded serial input is forwarded.
func (r *Router) Thru() bool {
	return r.gate.Enabled()
}

// ReplaceTable installs t as the active routing table. Lookups in flight see
// either the old or the new table.
func (r *Router) ReplaceTable(t contracts.RoutingTable) {
	r.tables.Replace(t)
}

// Table returns the active routing table.
func (r *Router) Table() contracts.RoutingTable {
	return r.tables.Load()
}

// OnTableChange registers fn to run after each table replacement.
func (r *Router) OnTableChange(fn func(contracts.RoutingTable)) {
	r.tables.Subscribe(fn)
}

// RegisterSink attaches s as the write primitive of id.
func (r *Router) RegisterSink(id contracts.SinkID, s contracts.Sink) error {
	return r.mux.Registry().Register(id, s)
}

// UnregisterSink detaches the sink at id.
func (r *Router) UnregisterSink(id contracts.SinkID) {
	r.mux.Registry().Unregister(id)
}

// SetTRSPorts changes the number of addressable TRS ports.
func (r *Router) SetTRSPorts(n int) error {
	return r.mux.Registry().SetTRSPorts(n)
}

// Sinks returns the currently configured sinks.
func (r *Router) Sinks() contracts.SinkSet {
	return r.mux.Registry().Configured()
}

// Inputs are the event streams a control loop drains. Nil channels are ignored.
type Inputs struct {
	Bytes <-chan []byte             // Raw serial MIDI bytes.
	Keys  <-chan contracts.Scancode // Keyboard transitions.
	Calls <-chan func(*Router)      // Work that must run on the control loop.
}

// Run drains in until ctx is done or every channel is closed. Delivery failures
// are logged, never fatal. Run is the single control loop the router expects.
func (r *Router) Run(ctx context.Context, in Inputs) error {
	r.logger.Info("Router control loop started")
	defer r.logger.Info("Router control loop stopped")

	bytes, keys, calls := in.Bytes, in.Keys, in.Calls
	for bytes != nil || keys != nil || calls != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-bytes:
			if !ok {
				bytes = nil
				continue
			}
			if err := r.Feed(chunk); err != nil {
				r.logger.Warn("Thru delivery failed", r.logger.Field().Error("error", err))
			}
		case sc, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			if err := r.HandleScancode(sc); err != nil {
				r.logger.Warn("Key delivery failed",
					r.logger.Field().Uint8("hid", sc.Code),
					r.logger.Field().Error("error", err))
			}
		case fn, ok := <-calls:
			if !ok {
				calls = nil
				continue
			}
			fn(r)
		}
	}
	return nil
}

// NoteOnAll sends a Note On on channel 1 to every sink.
func (r *Router) NoteOnAll(note, velocity byte) error {
	return r.Dispatch(contracts.NewEvent(contracts.NoteOn, 1, note, velocity), contracts.AllSinks())
}

// NoteOffAll sends a Note Off on channel 1 to every sink.
func (r *Router) NoteOffAll(note byte) error {
	return r.Dispatch(contracts.NewEvent(contracts.NoteOff, 1, note, 0), contracts.AllSinks())
}

// ControlChangeAll sends a Control Change to every sink.
func (r *Router) ControlChangeAll(controller, value, channel byte) error {
	return r.Dispatch(contracts.NewEvent(contracts.ControlChange, channel, controller, value), contracts.AllSinks())
}

// ProgramChangeAll sends a Program Change to every sink.
func (r *Router) ProgramChangeAll(program, channel byte) error {
	return r.Dispatch(contracts.NewEvent(contracts.ProgramChange, channel, program, 0), contracts.AllSinks())
}

var testChord = []byte{60, 64, 67}

// PlayTestChord sounds a C major chord on every sink for hold, then releases it.
// The release is sent even when ctx ends early.
func (r *Router) PlayTestChord(ctx context.Context, hold time.Duration) error {
	r.logger.Info("Sending test chord", r.logger.Field().Duration("hold", hold))

	var errs error
	for _, n := range testChord {
		errs = multierr.Append(errs, r.NoteOnAll(n, 100))
	}

	timer := time.NewTimer(hold)
	defer timer.Stop()
	var waitErr error
	select {
	case <-ctx.Done():
		waitErr = ctx.Err()
	case <-timer.C:
	}

	for _, n := range testChord {
		errs = multierr.Append(errs, r.NoteOffAll(n))
	}
	if errs != nil {
		return fmt.Errorf("test chord: %w", errs)
	}
	return waitErr
}
