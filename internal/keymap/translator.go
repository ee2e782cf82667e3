// Package keymap turns keyboard scancode transitions into MIDI events using the
// active routing table.
package keymap

import (
	"time"

	"github.com/leandrodaf/midirouter/internal/routing"
	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// DefaultDebounce is the minimum interval between accepted transitions of one key.
const DefaultDebounce = 5 * time.Millisecond

// Velocities used for note and control edges.
const (
	PressVelocity   = 127
	ReleaseVelocity = 0
)

// KeyState is the tracked state of one scancode.
type KeyState struct {
	Pressed bool      // Pressed is the inferred physical state.
	Last    time.Time // Last is when the last transition was accepted; zero if never.
}

// Output is an event together with the sink its rule selected.
type Output struct {
	Event contracts.Event
	Sink  contracts.SinkID
}

// Tables supplies the active routing table on every lookup.
type Tables interface {
	Load() contracts.RoutingTable
}

// Translator owns the per-scancode key state. It is not safe for concurrent use.
type Translator struct {
	tables   Tables
	fallback contracts.RoutingTable
	debounce time.Duration
	now      contracts.Clock
	keys     [256]KeyState
}

// NewTranslator creates a translator reading tables and debouncing with window d
// against now. A nil now uses time.Now.
func NewTranslator(tables Tables, d time.Duration, now contracts.Clock) *Translator {
	if now == nil {
		now = time.Now
	}
	return &Translator{
		tables:   tables,
		fallback: routing.DefaultTable(),
		debounce: d,
		now:      now,
	}
}

// OnScancode handles one transition pulse of code. The edge polarity is inferred
// by toggling the stored state, so the source must report every physical
// transition exactly once.
func (t *Translator) OnScancode(code byte) (Output, bool) {
	return t.transition(code, !t.keys[code].Pressed)
}

// OnKey handles an explicit press or release of code. An edge that matches the
// stored state is a duplicate and is dropped.
func (t *Translator) OnKey(code byte, pressed bool) (Output, bool) {
	if t.keys[code].Pressed == pressed {
		return Output{}, false
	}
	return t.transition(code, pressed)
}

// Key returns the tracked state for code.
func (t *Translator) Key(code byte) KeyState {
	return t.keys[code]
}

// Reset releases every key and forgets debounce history.
func (t *Translator) Reset() {
	t.keys = [256]KeyState{}
}

func (t *Translator) transition(code byte, pressed bool) (Output, bool) {
	now := t.now()
	ks := &t.keys[code]
	if !ks.Last.IsZero() && now.Sub(ks.Last) < t.debounce {
		return Output{}, false
	}
	ks.Pressed = pressed
	ks.Last = now

	rule, ok := routing.Resolve(t.tables.Load(), t.fallback, code)
	if !ok {
		return Output{}, false
	}
	return Output{Event: Synthesize(rule, pressed), Sink: rule.Sink}, true
}

// Synthesize builds the event a rule emits on a press or release edge.
func Synthesize(rule contracts.Rule, pressed bool) contracts.Event {
	velocity := byte(ReleaseVelocity)
	if pressed {
		velocity = PressVelocity
	}

	kind := contracts.ControlChange
	if rule.Kind == contracts.RuleNote {
		kind = contracts.NoteOff
		if pressed {
			kind = contracts.NoteOn
		}
	}
	return contracts.NewEvent(kind, rule.Channel, rule.Value, velocity)
}
