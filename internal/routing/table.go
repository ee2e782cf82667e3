// Package routing holds the HID scancode routing tables and the atomic store the
// scancode translator reads them from.
package routing

import (
	"fmt"
	"sort"

	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// Table is an immutable scancode to rule mapping.
type Table struct {
	rules map[byte]contracts.Rule
}

// NewTable copies rules into a new table.
func NewTable(rules map[byte]contracts.Rule) *Table {
	t := &Table{rules: make(map[byte]contracts.Rule, len(rules))}
	for code, r := range rules {
		t.rules[code] = r
	}
	return t
}

// Lookup returns the rule for code.
func (t *Table) Lookup(code byte) (contracts.Rule, bool) {
	if t == nil {
		return contracts.Rule{}, false
	}
	r, ok := t.rules[code]
	return r, ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

// Codes returns the mapped scancodes in ascending order.
func (t *Table) Codes() []byte {
	if t == nil {
		return nil
	}
	codes := make([]byte, 0, len(t.rules))
	for c := range t.rules {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Summary renders one line per entry, ordered by scancode.
func (t *Table) Summary() []string {
	codes := t.Codes()
	lines := make([]string, 0, len(codes))
	for _, c := range codes {
		r := t.rules[c]
		lines = append(lines, fmt.Sprintf("HID 0x%02X → %s %d (Port %s, Ch %d)",
			c, r.Kind, r.Value, portName(r.Sink), r.Channel))
	}
	return lines
}

// Resolve finds the rule for code in active, falling back to fallback. An active
// entry whose value is 0 counts as a miss. The boolean is false when neither table
// yields a mapped rule.
func Resolve(active, fallback contracts.RoutingTable, code byte) (contracts.Rule, bool) {
	if active != nil {
		if r, ok := active.Lookup(code); ok && r.Mapped() {
			return r, true
		}
	}
	if fallback != nil {
		if r, ok := fallback.Lookup(code); ok && r.Mapped() {
			return r, true
		}
	}
	return contracts.Rule{}, false
}
