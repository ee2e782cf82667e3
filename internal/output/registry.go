// Package output fans serialized MIDI events out to the configured sinks.
package output

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// Registry errors.
var (
	ErrSinkOutOfRange = errors.New("sink id outside configured ports")
	ErrNilSink        = errors.New("nil sink")
	ErrTooManyPorts   = errors.New("too many TRS ports")
)

// Registry is the list of configured sinks. It may be changed while the router
// runs; every dispatch resolves against the list in place at that moment.
type Registry struct {
	mu       sync.RWMutex
	trsPorts int
	sinks    map[contracts.SinkID]contracts.Sink
}

// NewRegistry creates an empty registry addressing trsPorts TRS ports.
func NewRegistry(trsPorts int) (*Registry, error) {
	if trsPorts < 0 || trsPorts > contracts.MaxTRSPorts {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrTooManyPorts, trsPorts, contracts.MaxTRSPorts)
	}
	return &Registry{trsPorts: trsPorts, sinks: make(map[contracts.SinkID]contracts.Sink)}, nil
}

// Register attaches s to id, replacing any previous sink.
func (r *Registry) Register(id contracts.SinkID, s contracts.Sink) error {
	if s == nil {
		return fmt.Errorf("%w: %s", ErrNilSink, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !id.Valid(r.trsPorts) {
		return fmt.Errorf("%w: %s", ErrSinkOutOfRange, id)
	}
	r.sinks[id] = s
	return nil
}

// Unregister detaches the sink at id.
func (r *Registry) Unregister(id contracts.SinkID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sinks, id)
}

// SetTRSPorts changes the TRS port count, dropping sinks beyond the new count.
func (r *Registry) SetTRSPorts(n int) error {
	if n < 0 || n > contracts.MaxTRSPorts {
		return fmt.Errorf("%w: %d (max %d)", ErrTooManyPorts, n, contracts.MaxTRSPorts)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trsPorts = n
	for id := range r.sinks {
		if !id.Valid(n) {
			delete(r.sinks, id)
		}
	}
	return nil
}

// TRSPorts returns the configured TRS port count.
func (r *Registry) TRSPorts() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.trsPorts
}

// Configured returns the set of ids with a registered sink.
func (r *Registry) Configured() contracts.SinkSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var set contracts.SinkSet
	for id := range r.sinks {
		set = set.With(id)
	}
	return set
}

type target struct {
	id   contracts.SinkID
	sink contracts.Sink
}

// resolve expands set against the current list, in delivery order. Explicit
// members with no registered sink are returned with a nil sink.
func (r *Registry) resolve(set contracts.SinkSet) []target {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []contracts.SinkID
	if set.IsAll() {
		ids = make([]contracts.SinkID, 0, 2+r.trsPorts)
		for id := contracts.SinkID(0); id < contracts.TRS(r.trsPorts); id++ {
			if _, ok := r.sinks[id]; ok {
				ids = append(ids, id)
			}
		}
	} else {
		ids = set.IDs()
	}

	targets := make([]target, len(ids))
	for i, id := range ids {
		targets[i] = target{id: id, sink: r.sinks[id]}
	}
	return targets
}
