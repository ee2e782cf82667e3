// Package thru decides whether events decoded from the serial input are
// forwarded to the outputs.
package thru

import (
	"sync/atomic"

	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// Gate is the thru switch. It is safe to toggle from any goroutine; the change
// applies to the next decoded event.
type Gate struct {
	enabled atomic.Bool
}

// NewGate returns a gate in the given state.
func NewGate(enabled bool) *Gate {
	g := &Gate{}
	g.enabled.Store(enabled)
	return g
}

// Set enables or disables forwarding and reports the previous state.
func (g *Gate) Set(enabled bool) bool {
	return g.enabled.Swap(enabled)
}

// Enabled reports whether forwarding is on.
func (g *Gate) Enabled() bool {
	return g.enabled.Load()
}

// Forward returns the event to send for a decoded message, or false when the
// gate is closed. NoteOn with velocity 0 is forwarded as NoteOff.
func (g *Gate) Forward(m contracts.Message) (contracts.Event, bool) {
	if !g.Enabled() {
		return contracts.Event{}, false
	}
	return Normalize(contracts.EventFromMessage(m)), true
}

// Normalize rewrites NoteOn with velocity 0 as NoteOff on the same channel.
func Normalize(ev contracts.Event) contracts.Event {
	if ev.Kind == contracts.NoteOn && ev.Data2 == 0 {
		ev.Kind = contracts.NoteOff
	}
	return ev
}
