package contracts

import "fmt"

// Kind is the top nibble of a channel-voice status byte.
// Values outside the named constants are carried verbatim.
type Kind byte

const (
	// NoteOff is the MIDI command for a Note Off event (0x80).
	NoteOff Kind = 0x80
	// NoteOn is the MIDI command for a Note On event (0x90).
	NoteOn Kind = 0x90
	// PolyPressure is polyphonic key pressure (0xA0).
	PolyPressure Kind = 0xA0
	// ControlChange is the MIDI command for a Control Change event (0xB0).
	ControlChange Kind = 0xB0
	// ProgramChange is the MIDI command for a Program Change event (0xC0).
	ProgramChange Kind = 0xC0
	// ChannelPressure is the MIDI command for a Channel Pressure event (0xD0).
	ChannelPressure Kind = 0xD0
	// PitchBend is the MIDI command for a Pitch Bend event (0xE0).
	PitchBend Kind = 0xE0
	// System covers every 0xF0..0xFF status.
	System Kind = 0xF0
)

// KindOf returns the kind encoded in the top nibble of status.
func KindOf(status byte) Kind {
	return Kind(status & 0xF0)
}

// DataLen reports how many data bytes follow a status of this kind.
func (k Kind) DataLen() int {
	switch k {
	case ProgramChange, ChannelPressure:
		return 1
	default:
		return 2
	}
}

func (k Kind) String() string {
	switch k {
	case NoteOff:
		return "NoteOff"
	case NoteOn:
		return "NoteOn"
	case PolyPressure:
		return "PolyPressure"
	case ControlChange:
		return "ControlChange"
	case ProgramChange:
		return "ProgramChange"
	case ChannelPressure:
		return "ChannelPressure"
	case PitchBend:
		return "PitchBend"
	case System:
		return "System"
	}
	return fmt.Sprintf("Other(0x%02X)", byte(k))
}

// Message is a raw decoded message as assembled from the wire.
type Message struct {
	Status byte // Status byte in effect (possibly a running status).
	Data1  byte // First data byte.
	Data2  byte // Second data byte, zero for one-byte message types.
}

// Event is a MIDI event produced and consumed by the routing engine.
type Event struct {
	Kind    Kind // Kind specifies the type of MIDI event (e.g., Note On, Note Off).
	Channel byte // Channel is the MIDI channel, 1-16.
	Data1   byte // Data1 is the note, controller or program number (0-127).
	Data2   byte // Data2 is velocity or controller value (0-127); zero for one-byte kinds.
}

// EventFromMessage converts a decoded wire message into an Event.
func EventFromMessage(m Message) Event {
	ev := Event{
		Kind:    KindOf(m.Status),
		Channel: (m.Status & 0x0F) + 1,
		Data1:   m.Data1 & 0x7F,
		Data2:   m.Data2 & 0x7F,
	}
	if ev.Kind.DataLen() == 1 {
		ev.Data2 = 0
	}
	return ev
}

// NewEvent builds an event, clamping channel into 1-16 and data into 0-127.
func NewEvent(kind Kind, channel, data1, data2 byte) Event {
	if channel < 1 {
		channel = 1
	} else if channel > 16 {
		channel = 16
	}
	ev := Event{Kind: kind, Channel: channel, Data1: data1 & 0x7F, Data2: data2 & 0x7F}
	if kind.DataLen() == 1 {
		ev.Data2 = 0
	}
	return ev
}

// Status reconstructs the wire status byte.
func (e Event) Status() byte {
	return byte(e.Kind)&0xF0 | ((e.Channel - 1) & 0x0F)
}

// Frame serializes the event into the 3-byte frame handed to sinks.
func (e Event) Frame() [3]byte {
	return [3]byte{e.Status(), e.Data1, e.Data2}
}

func (e Event) String() string {
	return fmt.Sprintf("%s ch%d %d %d", e.Kind, e.Channel, e.Data1, e.Data2)
}
