// Package decoder reassembles MIDI channel messages from a serial byte stream,
// honouring running status.
package decoder

import "github.com/leandrodaf/midirouter/sdk/contracts"

// State is the assembly state of a Decoder.
type State uint8

const (
	// Idle means no status byte has been seen yet; data bytes are discarded.
	Idle State = iota
	// AwaitingData1 means the next data byte starts a new message.
	AwaitingData1
	// AwaitingData2 means one data byte is buffered and the next one completes the message.
	AwaitingData2
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case AwaitingData1:
		return "AwaitingData1"
	case AwaitingData2:
		return "AwaitingData2"
	}
	return "State(?)"
}

// Action is what a transition does with the byte it consumed.
type Action uint8

const (
	// Discard drops the byte.
	Discard Action = iota
	// Latch stores a status byte, dropping any partial message.
	Latch
	// Buffer keeps the byte as the first data byte.
	Buffer
	// EmitOne completes a one-data-byte message.
	EmitOne
	// EmitTwo completes a two-data-byte message with the buffered byte.
	EmitTwo
)

// Transition returns the next state and the action for byte b, given the current
// state and running status. It has no side effects.
func Transition(state State, running, b byte) (State, Action) {
	if b&0x80 != 0 {
		return AwaitingData1, Latch
	}
	if state == Idle || running == 0 {
		return Idle, Discard
	}
	if contracts.KindOf(running).DataLen() == 1 {
		return AwaitingData1, EmitOne
	}
	if state == AwaitingData2 {
		return AwaitingData1, EmitTwo
	}
	return AwaitingData2, Buffer
}

// Decoder holds the per-stream running-status state. It is not safe for
// concurrent use; one Decoder belongs to one input stream.
type Decoder struct {
	running byte
	pending byte
	state   State
}

// New returns a decoder in the Idle state.
func New() *Decoder {
	return &Decoder{}
}

// Feed consumes one byte and returns a message when one is complete.
func (d *Decoder) Feed(b byte) (contracts.Message, bool) {
	next, action := Transition(d.state, d.running, b)
	d.state = next

	switch action {
	case Latch:
		d.running = b
		d.pending = 0
	case Buffer:
		d.pending = b
	case EmitOne:
		return contracts.Message{Status: d.running, Data1: b}, true
	case EmitTwo:
		msg := contracts.Message{Status: d.running, Data1: d.pending, Data2: b}
		d.pending = 0
		return msg, true
	}
	return contracts.Message{}, false
}

// FeedAll feeds every byte of p in order and returns the completed messages.
func (d *Decoder) FeedAll(p []byte) []contracts.Message {
	var out []contracts.Message
	for _, b := range p {
		if msg, ok := d.Feed(b); ok {
			out = append(out, msg)
		}
	}
	return out
}

// State returns the current assembly state.
func (d *Decoder) State() State {
	return d.state
}

// RunningStatus returns the latched status byte, or 0 when none.
func (d *Decoder) RunningStatus() byte {
	return d.running
}

// Reset returns the decoder to Idle, forgetting running status.
func (d *Decoder) Reset() {
	*d = Decoder{}
}
