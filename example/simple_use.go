package main

import (
	"fmt"
	"time"

	"github.com/leandrodaf/midirouter/internal/logger"
	"github.com/leandrodaf/midirouter/sdk/contracts"
	"github.com/leandrodaf/midirouter/sdk/router"
)

// printSink writes frames to stdout instead of a MIDI port.
func printSink(id contracts.SinkID) contracts.Sink {
	return contracts.SinkFunc(func(frame [3]byte) error {
		fmt.Printf("%-6s % X\n", id, frame)
		return nil
	})
}

func main() {
	log := logger.NewDevelopmentLogger()

	r, err := router.NewRouter(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithTRSPorts(2),
		contracts.WithSink(contracts.USB, printSink(contracts.USB)),
		contracts.WithSink(contracts.DIN, printSink(contracts.DIN)),
		contracts.WithSink(contracts.TRS(0), printSink(contracts.TRS(0))),
		contracts.WithSink(contracts.TRS(1), printSink(contracts.TRS(1))),
	)
	if err != nil {
		log.Error("Failed to initialize router", log.Field().Error("error", err))
		return
	}

	// Note On C4 followed by a running-status Note On D4.
	if err := r.Feed([]byte{0x90, 0x3C, 0x7F, 0x3E, 0x7F}); err != nil {
		log.Error("Thru delivery failed", log.Field().Error("error", err))
	}

	// HID 0x1D pressed then released, 10ms apart.
	for _, pressed := range []bool{true, false} {
		if err := r.OnKey(0x1D, pressed); err != nil {
			log.Error("Key delivery failed", log.Field().Error("error", err))
		}
		time.Sleep(10 * time.Millisecond)
	}
}
