package router

import (
	"errors"
	"fmt"
	"time"

	"github.com/leandrodaf/midirouter/internal/keymap"
	"github.com/leandrodaf/midirouter/internal/logger"
	"github.com/leandrodaf/midirouter/internal/routing"
	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// DefaultTRSPorts is the TRS port count of the reference hardware.
const DefaultTRSPorts = 10

// ErrInvalidOption is returned when an option value is out of range.
var ErrInvalidOption = errors.New("invalid router option")

// applyDefaultOptions sets default values for RouterOptions if not explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify RouterOptions.
//
// Returns:
//   - contracts.RouterOptions: the finalized options with defaults applied.
//   - error: ErrInvalidOption if a provided value is out of range.
func applyDefaultOptions(opts ...contracts.Option) (contracts.RouterOptions, error) {
	options := &contracts.RouterOptions{TRSPorts: -1, Debounce: -1}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel
	}
	if options.TRSPorts == -1 {
		options.TRSPorts = DefaultTRSPorts
	}
	if options.TRSPorts < 0 || options.TRSPorts > contracts.MaxTRSPorts {
		return *options, fmt.Errorf("%w: TRS ports %d", ErrInvalidOption, options.TRSPorts)
	}
	if options.Debounce == -1 {
		options.Debounce = keymap.DefaultDebounce
	}
	if options.Debounce < 0 {
		return *options, fmt.Errorf("%w: debounce %s", ErrInvalidOption, options.Debounce)
	}
	if options.Thru == nil {
		enabled := true
		options.Thru = &enabled
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}
	if options.Table == nil {
		options.Table = routing.DefaultTable()
	}

	options.Logger.SetLevel(options.LogLevel)
	return *options, nil
}
