package contracts

import (
	"fmt"
	"math/bits"
)

// MaxTRSPorts is the largest TRS port count a SinkSet can address.
const MaxTRSPorts = 62

// SinkID identifies a MIDI output destination.
// USB and DIN are fixed; TRS ports follow as TRS(0), TRS(1), ...
type SinkID uint8

const (
	// USB is the USB MIDI endpoint.
	USB SinkID = 0
	// DIN is the serial DIN output.
	DIN SinkID = 1

	trsBase SinkID = 2
)

// TRS returns the sink id of the TRS port with the given index. It panics if
// index is outside [0, MaxTRSPorts).
func TRS(index int) SinkID {
	if index < 0 || index >= MaxTRSPorts {
		panic(fmt.Sprintf("contracts: TRS index %d out of range [0, %d)", index, MaxTRSPorts))
	}
	return trsBase + SinkID(index)
}

// IsTRS reports whether the id names a TRS port.
func (s SinkID) IsTRS() bool {
	return s >= trsBase
}

// TRSIndex returns the TRS port index, or -1 for USB/DIN.
func (s SinkID) TRSIndex() int {
	if !s.IsTRS() {
		return -1
	}
	return int(s - trsBase)
}

// Valid reports whether the id is addressable with trsPorts configured TRS ports.
func (s SinkID) Valid(trsPorts int) bool {
	return !s.IsTRS() || s.TRSIndex() < trsPorts
}

func (s SinkID) String() string {
	switch s {
	case USB:
		return "USB"
	case DIN:
		return "DIN"
	}
	if i := s.TRSIndex(); i < 26 {
		return fmt.Sprintf("TRS-%c", 'A'+i)
	}
	return fmt.Sprintf("TRS-%d", s.TRSIndex())
}

// SinkSet is a set of sinks, or the All value that expands to every configured sink
// at dispatch time.
type SinkSet struct {
	mask uint64
	all  bool
}

// AllSinks returns the set that resolves to every configured sink.
func AllSinks() SinkSet {
	return SinkSet{all: true}
}

// SinksOf returns a set holding exactly the given sinks.
func SinksOf(ids ...SinkID) SinkSet {
	var s SinkSet
	for _, id := range ids {
		s = s.With(id)
	}
	return s
}

// With returns a copy of the set including id.
func (s SinkSet) With(id SinkID) SinkSet {
	if id < 64 {
		s.mask |= 1 << id
	}
	return s
}

// IsAll reports whether the set is the All value.
func (s SinkSet) IsAll() bool {
	return s.all
}

// Contains reports whether id is an explicit member. All contains nothing until resolved.
func (s SinkSet) Contains(id SinkID) bool {
	return id < 64 && s.mask&(1<<id) != 0
}

// Empty reports whether the set targets nothing.
func (s SinkSet) Empty() bool {
	return !s.all && s.mask == 0
}

// IDs lists the explicit members in delivery order: USB, DIN, then TRS ascending.
func (s SinkSet) IDs() []SinkID {
	ids := make([]SinkID, 0, bits.OnesCount64(s.mask))
	for m := s.mask; m != 0; m &= m - 1 {
		ids = append(ids, SinkID(bits.TrailingZeros64(m)))
	}
	return ids
}

func (s SinkSet) String() string {
	if s.all {
		return "All"
	}
	return fmt.Sprint(s.IDs())
}

// Sink is the write primitive of one output. Write must return within a bounded
// time, reporting an error if the frame could not be accepted.
type Sink interface {
	Write(frame [3]byte) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(frame [3]byte) error

// Write calls f(frame).
func (f SinkFunc) Write(frame [3]byte) error {
	return f(frame)
}
