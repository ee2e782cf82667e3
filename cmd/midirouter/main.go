// Command midirouter runs the routing engine on a host computer: one MIDI input
// port stands in for the serial line, output ports stand in for the USB, DIN
// and TRS sinks, and stdin acts as the keyboard and console.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/leandrodaf/midirouter/internal/logger"
	"github.com/leandrodaf/midirouter/internal/midi/gomididrv"
	"github.com/leandrodaf/midirouter/internal/midi/mididarwin"
	"github.com/leandrodaf/midirouter/internal/midi/midiwindows"
	"github.com/leandrodaf/midirouter/internal/routing"
	"github.com/leandrodaf/midirouter/sdk/contracts"
	"github.com/leandrodaf/midirouter/sdk/router"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

type config struct {
	source   string
	input    string
	usb      string
	din      string
	trs      []string
	keymap   string
	thru     bool
	debounce time.Duration
	logLevel contracts.LogLevel
	list     bool
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := logger.NewDevelopmentLogger()
	log.SetLevel(cfg.logLevel)

	if err := run(cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("MIDI router error", log.Field().Error("error", err))
	}
}

func parseFlags(args []string) (config, error) {
	fs := flag.NewFlagSet("midirouter", flag.ContinueOnError)
	var cfg config
	var trs, level string
	fs.StringVar(&cfg.source, "source", "rtmidi", "input backend: rtmidi, coremidi or winmm")
	fs.StringVar(&cfg.input, "in", "", "input port name (substring match)")
	fs.StringVar(&cfg.usb, "usb", "", "output port used as the USB sink")
	fs.StringVar(&cfg.din, "din", "", "output port used as the DIN sink")
	fs.StringVar(&trs, "trs", "", "comma-separated output ports used as TRS-A, TRS-B, ...")
	fs.StringVar(&cfg.keymap, "keymap", "", "routing document (YAML or JSON)")
	fs.BoolVar(&cfg.thru, "thru", true, "forward decoded input to all sinks")
	fs.DurationVar(&cfg.debounce, "debounce", 5*time.Millisecond, "minimum interval between transitions of one key")
	fs.StringVar(&level, "log-level", "info", "debug, info, warn or error")
	fs.BoolVar(&cfg.list, "list", false, "list MIDI ports and exit")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if trs != "" {
		cfg.trs = strings.Split(trs, ",")
	}
	if len(cfg.trs) > contracts.MaxTRSPorts {
		return cfg, fmt.Errorf("at most %d TRS ports", contracts.MaxTRSPorts)
	}
	l, ok := contracts.ParseLogLevel(level)
	if !ok {
		return cfg, fmt.Errorf("unknown log level %q", level)
	}
	cfg.logLevel = l
	if cfg.debounce < 0 {
		return cfg, fmt.Errorf("debounce must not be negative")
	}
	return cfg, nil
}

func run(cfg config, log contracts.Logger) error {
	drv, err := rtmididrv.New()
	if err != nil {
		return fmt.Errorf("create MIDI driver: %w", err)
	}
	defer drv.Close()

	outs, err := drv.Outs()
	if err != nil {
		return fmt.Errorf("list output ports: %w", err)
	}
	ins, err := drv.Ins()
	if err != nil {
		return fmt.Errorf("list input ports: %w", err)
	}
	if cfg.list {
		printPorts(ins, outs)
		return nil
	}

	trsPorts := len(cfg.trs)
	table := routing.StarterTable()
	if cfg.keymap != "" {
		if table, err = routing.LoadFile(cfg.keymap, trsPorts); err != nil {
			return err
		}
	}

	opts := []contracts.Option{
		contracts.WithLogger(log),
		contracts.WithLogLevel(cfg.logLevel),
		contracts.WithTRSPorts(trsPorts),
		contracts.WithThru(cfg.thru),
		contracts.WithDebounce(cfg.debounce),
		contracts.WithTable(table),
	}
	bindings := map[contracts.SinkID]string{contracts.USB: cfg.usb, contracts.DIN: cfg.din}
	for i, name := range cfg.trs {
		bindings[contracts.TRS(i)] = strings.TrimSpace(name)
	}
	for id, name := range bindings {
		if name == "" {
			continue
		}
		out, err := gomididrv.FindOut(outs, name)
		if err != nil {
			return fmt.Errorf("%s sink: %w", id, err)
		}
		sink, err := gomididrv.NewSink(out)
		if err != nil {
			return fmt.Errorf("%s sink: %w", id, err)
		}
		defer sink.Close()
		log.Info("Sink bound", log.Field().Stringer("sink", id), log.Field().String("port", sink.String()))
		opts = append(opts, contracts.WithSink(id, sink))
	}

	r, err := router.NewRouter(opts...)
	if err != nil {
		return err
	}

	chunks := make(chan []byte, 256)
	if cfg.input != "" {
		src, err := newSource(cfg.source, ins, log)
		if err != nil {
			return err
		}
		if err := gomididrv.Select(src, cfg.input); err != nil {
			return err
		}
		src.StartCapture(chunks)
		defer src.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	keys := make(chan contracts.Scancode, 64)
	calls := make(chan func(*router.Router), 8)
	con := &console{out: os.Stdout, trsPorts: trsPorts, keys: keys, calls: calls}
	go func() {
		con.run(ctx, os.Stdin)
		stop()
	}()

	return r.Run(ctx, router.Inputs{Bytes: chunks, Keys: keys, Calls: calls})
}

func newSource(kind string, ins []drivers.In, log contracts.Logger) (contracts.ByteSource, error) {
	switch kind {
	case "rtmidi":
		return gomididrv.NewSource(ins, log.Named("rtmidi")), nil
	case "coremidi":
		return mididarwin.NewSource("midirouter", log.Named("coremidi"))
	case "winmm":
		return midiwindows.NewSource("midirouter", log.Named("winmm"))
	}
	return nil, fmt.Errorf("unknown source %q", kind)
}

func printPorts(ins []drivers.In, outs []drivers.Out) {
	fmt.Println("Inputs:")
	for _, in := range ins {
		fmt.Printf("  %d: %s\n", in.Number(), in.String())
	}
	fmt.Println("Outputs:")
	for _, out := range outs {
		fmt.Printf("  %d: %s\n", out.Number(), out.String())
	}
}
