package routing_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/leandrodaf/midirouter/internal/routing"
	"github.com/leandrodaf/midirouter/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

const jsonDoc = `{
  "0x1D": {"type": "note", "value": 48, "port": "DIN", "channel": 2},
  "0x04": {"type": "cc", "value": 64, "port": "C", "channel": 16}
}`

func TestParseJSON(t *testing.T) {
	table, err := routing.Parse([]byte(jsonDoc), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	r, ok := table.Lookup(0x1D)
	require.True(t, ok)
	assert.Equal(t, contracts.Rule{Kind: contracts.RuleNote, Value: 48, Sink: contracts.DIN, Channel: 2}, r)

	r, ok = table.Lookup(0x04)
	require.True(t, ok)
	assert.Equal(t, contracts.Rule{Kind: contracts.RuleControlChange, Value: 64, Sink: contracts.TRS(2), Channel: 16}, r)
}

func TestParseYAMLDefaults(t *testing.T) {
	doc := "\"0x10\":\n  value: 71\n"
	table, err := routing.Parse([]byte(doc), 10)
	require.NoError(t, err)

	r, ok := table.Lookup(0x10)
	require.True(t, ok)
	assert.Equal(t, contracts.Rule{Kind: contracts.RuleNote, Value: 71, Sink: contracts.USB, Channel: 1}, r)
}

func TestParseReportsEveryBadEntry(t *testing.T) {
	doc := `{
  "zz":   {"type": "note", "value": 1},
  "0x01": {"type": "pitch", "value": 1},
  "0x02": {"value": 200},
  "0x03": {"value": 1, "channel": 17},
  "0x05": {"value": 1, "port": "K"}
}`
	_, err := routing.Parse([]byte(doc), 10)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 5)
	assert.True(t, errors.Is(err, routing.ErrInvalidScancode))
	assert.True(t, errors.Is(err, routing.ErrInvalidType))
	assert.True(t, errors.Is(err, routing.ErrInvalidValue))
	assert.True(t, errors.Is(err, routing.ErrInvalidChannel))
	assert.True(t, errors.Is(err, routing.ErrInvalidPort))
}

func TestParseMalformed(t *testing.T) {
	_, err := routing.Parse([]byte("{not json"), 10)
	assert.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	table, err := routing.Parse([]byte(jsonDoc), 10)
	require.NoError(t, err)

	data, err := routing.Marshal(table)
	require.NoError(t, err)

	again, err := routing.Parse(data, 10)
	require.NoError(t, err)
	assert.Equal(t, table.Summary(), again.Summary())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keymap.json")
	require.NoError(t, os.WriteFile(path, []byte(jsonDoc), 0o644))

	table, err := routing.LoadFile(path, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	_, err = routing.LoadFile(filepath.Join(t.TempDir(), "missing.json"), 10)
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	table, err := routing.Parse([]byte(jsonDoc), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"HID 0x04 → cc 64 (Port C, Ch 16)",
		"HID 0x1D → note 48 (Port DIN, Ch 2)",
	}, table.Summary())
}

func TestResolve(t *testing.T) {
	active := routing.NewTable(map[byte]contracts.Rule{
		0x1D: {Kind: contracts.RuleControlChange, Value: 7, Sink: contracts.DIN, Channel: 3},
		0x1B: {Kind: contracts.RuleNote, Value: 0, Sink: contracts.DIN, Channel: 3},
	})
	fallback := routing.DefaultTable()

	r, ok := routing.Resolve(active, fallback, 0x1D)
	require.True(t, ok)
	assert.Equal(t, byte(7), r.Value)

	// present only in the default table
	r, ok = routing.Resolve(active, fallback, 0x06)
	require.True(t, ok)
	assert.Equal(t, contracts.Rule{Kind: contracts.RuleNote, Value: 64, Sink: contracts.USB, Channel: 1}, r)

	// zero value in the active table falls through
	r, ok = routing.Resolve(active, fallback, 0x1B)
	require.True(t, ok)
	assert.Equal(t, byte(62), r.Value)

	_, ok = routing.Resolve(active, fallback, 0xFF)
	assert.False(t, ok)

	_, ok = routing.Resolve(nil, nil, 0x1D)
	assert.False(t, ok)
}

func TestDefaultTables(t *testing.T) {
	assert.Equal(t, 10, routing.DefaultTable().Len())
	assert.Equal(t, []byte{0x06, 0x1B, 0x1D}, routing.StarterTable().Codes())
}

func TestStoreReplace(t *testing.T) {
	store := routing.NewStore(nil)
	assert.Equal(t, routing.DefaultTable(), store.Load())

	var notified []contracts.RoutingTable
	store.Subscribe(func(t contracts.RoutingTable) { notified = append(notified, t) })

	next := routing.StarterTable()
	store.Replace(next)
	assert.Same(t, next, store.Load())
	require.Len(t, notified, 1)
	assert.Same(t, next, notified[0])

	store.Replace(nil)
	assert.Equal(t, routing.DefaultTable(), store.Load())
}

func TestStoreNilTablePointer(t *testing.T) {
	var missing *routing.Table
	store := routing.NewStore(missing)
	assert.Same(t, routing.DefaultTable(), store.Load())

	store.Replace(routing.StarterTable())
	store.Replace(missing)
	assert.Same(t, routing.DefaultTable(), store.Load())
}

func TestStoreConcurrentSwap(t *testing.T) {
	a := routing.DefaultTable()
	b := routing.StarterTable()
	store := routing.NewStore(a)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			if i%2 == 0 {
				store.Replace(b)
			} else {
				store.Replace(a)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			got := store.Load()
			assert.True(t, got == contracts.RoutingTable(a) || got == contracts.RoutingTable(b))
		}
	}()
	wg.Wait()
}
