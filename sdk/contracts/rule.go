package contracts

// RuleKind selects what a routing rule emits.
type RuleKind uint8

const (
	// RuleNote emits NoteOn on press and NoteOff on release.
	RuleNote RuleKind = iota + 1
	// RuleControlChange emits a Control Change on every edge.
	RuleControlChange
)

func (k RuleKind) String() string {
	switch k {
	case RuleNote:
		return "note"
	case RuleControlChange:
		return "cc"
	}
	return "unknown"
}

// Rule maps a HID scancode to an output event specification.
type Rule struct {
	Kind    RuleKind // Kind of event to emit.
	Value   byte     // Note or controller number (0-127); 0 means unmapped.
	Sink    SinkID   // Destination sink.
	Channel byte     // MIDI channel, 1-16.
}

// Mapped reports whether the rule produces output.
func (r Rule) Mapped() bool {
	return r.Value != 0
}
