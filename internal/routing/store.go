package routing

import (
	"sync"
	"sync/atomic"

	"github.com/leandrodaf/midirouter/sdk/contracts"
)

type snapshot struct {
	table contracts.RoutingTable
}

// Store holds the active routing table. Replace swaps the whole snapshot
// atomically, so a concurrent Load sees either the old or the new table.
type Store struct {
	current atomic.Pointer[snapshot]

	mu          sync.Mutex
	subscribers []func(contracts.RoutingTable)
}

// NewStore returns a store holding initial. A nil initial holds the default table.
func NewStore(initial contracts.RoutingTable) *Store {
	s := &Store{}
	s.current.Store(&snapshot{table: orDefault(initial)})
	return s
}

// orDefault maps a nil table, including a nil *Table held in the interface, to
// the default table.
func orDefault(t contracts.RoutingTable) contracts.RoutingTable {
	if t == nil {
		return DefaultTable()
	}
	if tt, ok := t.(*Table); ok && tt == nil {
		return DefaultTable()
	}
	return t
}

// Load returns the active table.
func (s *Store) Load() contracts.RoutingTable {
	return s.current.Load().table
}

// Replace installs t as the active table and notifies subscribers. A nil t
// installs the default table.
func (s *Store) Replace(t contracts.RoutingTable) {
	t = orDefault(t)
	s.current.Store(&snapshot{table: t})

	s.mu.Lock()
	subs := append([]func(contracts.RoutingTable){}, s.subscribers...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(t)
	}
}

// Subscribe registers fn to be called after every Replace.
func (s *Store) Subscribe(fn func(contracts.RoutingTable)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}
