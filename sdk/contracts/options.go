package contracts

import "time"

// Clock returns the current time. The scancode translator debounces against it.
type Clock func() time.Time

// SinkBinding attaches a write primitive to a sink id.
type SinkBinding struct {
	ID   SinkID
	Sink Sink
}

// RouterOptions defines the configuration options for the routing engine.
type RouterOptions struct {
	Logger   Logger        // Logger for logging events and errors.
	LogLevel LogLevel      // Level of logging to use.
	TRSPorts int           // Number of TRS output ports; 10 by default.
	Debounce time.Duration // Minimum interval between accepted transitions of one scancode.
	Thru     *bool         // Initial thru state; enabled when nil.
	Clock    Clock         // Time source for debounce; time.Now when nil.
	Sinks    []SinkBinding // Sinks registered at construction.
	Table    RoutingTable  // Initial routing table; the built-in default when nil.
}

// RoutingTable is a read-only HID scancode to rule mapping.
type RoutingTable interface {
	Lookup(code byte) (Rule, bool)
}

// Option is a function that modifies RouterOptions.
type Option func(*RouterOptions)

// WithLogger sets the logger for the router.
func WithLogger(l Logger) Option {
	return func(opts *RouterOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the router.
func WithLogLevel(level LogLevel) Option {
	return func(opts *RouterOptions) {
		opts.LogLevel = level
	}
}

// WithTRSPorts sets the number of TRS output ports.
func WithTRSPorts(n int) Option {
	return func(opts *RouterOptions) {
		opts.TRSPorts = n
	}
}

// WithDebounce sets the scancode debounce window.
func WithDebounce(d time.Duration) Option {
	return func(opts *RouterOptions) {
		opts.Debounce = d
	}
}

// WithThru sets the initial thru state.
func WithThru(enabled bool) Option {
	return func(opts *RouterOptions) {
		opts.Thru = &enabled
	}
}

// WithClock sets the time source used for debounce.
func WithClock(c Clock) Option {
	return func(opts *RouterOptions) {
		opts.Clock = c
	}
}

// WithSink registers a sink under id.
func WithSink(id SinkID, s Sink) Option {
	return func(opts *RouterOptions) {
		opts.Sinks = append(opts.Sinks, SinkBinding{ID: id, Sink: s})
	}
}

// WithTable sets the initial routing table.
func WithTable(t RoutingTable) Option {
	return func(opts *RouterOptions) {
		opts.Table = t
	}
}
