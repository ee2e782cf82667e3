package router

import (
	"github.com/leandrodaf/midirouter/internal/decoder"
	"github.com/leandrodaf/midirouter/internal/keymap"
	"github.com/leandrodaf/midirouter/internal/output"
	"github.com/leandrodaf/midirouter/internal/routing"
	"github.com/leandrodaf/midirouter/internal/thru"
	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// NewRouter creates a routing engine with the specified options.
// It applies default options and registers any sinks passed with WithSink.
//
// opts ...contracts.Option: A variadic list of option functions to customize the router configuration.
//
// Returns:
//   - *Router: the routing engine.
//   - error: an error if an option is invalid or a sink cannot be registered.
func NewRouter(opts ...contracts.Option) (*Router, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	registry, err := output.NewRegistry(options.TRSPorts)
	if err != nil {
		return nil, err
	}
	for _, b := range options.Sinks {
		if err := registry.Register(b.ID, b.Sink); err != nil {
			return nil, err
		}
	}

	tables := routing.NewStore(options.Table)
	r := &Router{
		logger:  options.Logger,
		decoder: decoder.New(),
		keys:    keymap.NewTranslator(tables, options.Debounce, options.Clock),
		tables:  tables,
		mux:     output.NewMultiplexer(registry, options.Logger.Named("output")),
		gate:    thru.NewGate(*options.Thru),
	}

	options.Logger.Info("MIDI router created",
		options.Logger.Field().Int("trsPorts", options.TRSPorts),
		options.Logger.Field().Duration("debounce", options.Debounce),
		options.Logger.Field().Bool("thru", *options.Thru),
		options.Logger.Field().Int("sinks", len(options.Sinks)))
	return r, nil
}
