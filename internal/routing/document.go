package routing

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/leandrodaf/midirouter/sdk/contracts"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Errors reported while parsing a routing document.
var (
	ErrInvalidScancode = errors.New("invalid scancode key")
	ErrInvalidType     = errors.New("invalid rule type")
	ErrInvalidPort     = errors.New("invalid port")
	ErrInvalidValue    = errors.New("value out of range")
	ErrInvalidChannel  = errors.New("channel out of range")
)

// entry is the on-disk shape of one rule.
type entry struct {
	Type    string `yaml:"type" json:"type"`
	Value   int    `yaml:"value" json:"value"`
	Port    string `yaml:"port" json:"port"`
	Channel int    `yaml:"channel" json:"channel"`
}

// Parse decodes a YAML or JSON routing document keyed by hex scancode ("0x1D").
// trsPorts bounds the accepted TRS port letters. Every invalid entry is reported.
func Parse(data []byte, trsPorts int) (*Table, error) {
	var doc map[string]entry
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode routing document: %w", err)
	}

	rules := make(map[byte]contracts.Rule, len(doc))
	var errs error
	for key, e := range doc {
		code, err := parseScancode(key)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		rule, err := e.rule(trsPorts)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		rules[code] = rule
	}
	if errs != nil {
		return nil, errs
	}
	return NewTable(rules), nil
}

// LoadFile reads and parses a routing document from path.
func LoadFile(path string, trsPorts int) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routing document: %w", err)
	}
	return Parse(data, trsPorts)
}

// Marshal encodes t as a YAML routing document that Parse accepts.
func Marshal(t *Table) ([]byte, error) {
	doc := make(map[string]entry, t.Len())
	for _, code := range t.Codes() {
		r := t.rules[code]
		doc[fmt.Sprintf("0x%02X", code)] = entry{
			Type:    r.Kind.String(),
			Value:   int(r.Value),
			Port:    portName(r.Sink),
			Channel: int(r.Channel),
		}
	}
	return yaml.Marshal(doc)
}

func parseScancode(key string) (byte, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(key), "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScancode, key)
	}
	return byte(v), nil
}

func (e entry) rule(trsPorts int) (contracts.Rule, error) {
	var r contracts.Rule
	kind, err := ParseRuleKind(e.Type)
	if err != nil {
		return r, err
	}
	sink, err := ParsePort(e.Port, trsPorts)
	if err != nil {
		return r, err
	}
	if e.Value < 0 || e.Value > 127 {
		return r, fmt.Errorf("%w: %d", ErrInvalidValue, e.Value)
	}
	channel := e.Channel
	if channel == 0 {
		channel = 1
	}
	if channel < 1 || channel > 16 {
		return r, fmt.Errorf("%w: %d", ErrInvalidChannel, e.Channel)
	}
	return contracts.Rule{Kind: kind, Value: byte(e.Value), Sink: sink, Channel: byte(channel)}, nil
}

// ParseRuleKind maps "note" or "cc" to a RuleKind.
func ParseRuleKind(s string) (contracts.RuleKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "note", "":
		return contracts.RuleNote, nil
	case "cc":
		return contracts.RuleControlChange, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidType, s)
}

// ParsePort maps "USB", "DIN" or a TRS port letter ("A" is TRS 0) to a SinkID.
func ParsePort(s string, trsPorts int) (contracts.SinkID, error) {
	p := strings.ToUpper(strings.TrimSpace(s))
	switch p {
	case "USB", "":
		return contracts.USB, nil
	case "DIN":
		return contracts.DIN, nil
	}
	if len(p) == 1 && p[0] >= 'A' && p[0] <= 'Z' {
		if idx := int(p[0] - 'A'); idx < trsPorts {
			return contracts.TRS(idx), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPort, s)
}

func portName(id contracts.SinkID) string {
	if id.IsTRS() && id.TRSIndex() < 26 {
		return string(rune('A' + id.TRSIndex()))
	}
	return id.String()
}
