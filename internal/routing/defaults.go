package routing

import "github.com/leandrodaf/midirouter/sdk/contracts"

// defaultNotes is the built-in bottom-row keyboard layout, C4 to E5.
var defaultNotes = []struct {
	hid  byte
	note byte
}{
	{0x1D, 60}, // Z
	{0x1B, 62}, // X
	{0x06, 64}, // C
	{0x19, 65}, // V
	{0x05, 67}, // B
	{0x11, 69}, // N
	{0x10, 71}, // M
	{0x36, 72}, // ,
	{0x37, 74}, // .
	{0x38, 76}, // /
}

var defaultTable = func() *Table {
	rules := make(map[byte]contracts.Rule, len(defaultNotes))
	for _, m := range defaultNotes {
		rules[m.hid] = contracts.Rule{Kind: contracts.RuleNote, Value: m.note, Sink: contracts.USB, Channel: 1}
	}
	return NewTable(rules)
}()

// DefaultTable returns the built-in fallback table. Every entry is a note on
// USB channel 1.
func DefaultTable() *Table {
	return defaultTable
}

// StarterTable returns the table written out when no configuration exists yet:
// the first three default keys.
func StarterTable() *Table {
	rules := make(map[byte]contracts.Rule, 3)
	for _, m := range defaultNotes[:3] {
		rules[m.hid] = contracts.Rule{Kind: contracts.RuleNote, Value: m.note, Sink: contracts.USB, Channel: 1}
	}
	return NewTable(rules)
}
