package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/leandrodaf/midirouter/internal/routing"
	"github.com/leandrodaf/midirouter/sdk/contracts"
	"github.com/leandrodaf/midirouter/sdk/router"
)

var errUnknownCommand = errors.New("unknown command")

const testChordHold = 500 * time.Millisecond

// console reads line commands and turns them into scancodes and control-loop calls.
type console struct {
	out      io.Writer
	trsPorts int
	keys     chan<- contracts.Scancode
	calls    chan<- func(*router.Router)
}

// run reads commands from in until EOF, "quit", or ctx ends.
func (c *console) run(ctx context.Context, in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		quit, err := c.handle(ctx, scanner.Text())
		if err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
		if quit {
			return
		}
	}
}

func (c *console) handle(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit":
		return true, nil
	case "thru":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return false, fmt.Errorf("usage: thru on|off")
		}
		enabled := args[0] == "on"
		c.call(ctx, func(r *router.Router) {
			r.SetThru(enabled)
			fmt.Fprintf(c.out, "thru %s\n", args[0])
		})
	case "config":
		c.call(ctx, func(r *router.Router) {
			t, ok := r.Table().(*routing.Table)
			if !ok {
				fmt.Fprintln(c.out, "active table has no summary")
				return
			}
			fmt.Fprintln(c.out, "Config summary:")
			for _, l := range t.Summary() {
				fmt.Fprintf(c.out, "  %s\n", l)
			}
		})
	case "test":
		c.call(ctx, func(r *router.Router) {
			if err := r.PlayTestChord(ctx, testChordHold); err != nil {
				fmt.Fprintf(c.out, "test: %v\n", err)
			}
		})
	case "load":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: load <file>")
		}
		t, err := routing.LoadFile(args[0], c.trsPorts)
		if err != nil {
			return false, err
		}
		c.call(ctx, func(r *router.Router) {
			r.ReplaceTable(t)
			fmt.Fprintf(c.out, "loaded %d mappings\n", t.Len())
		})
	case "key", "press", "release":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: %s <hex scancode>", cmd)
		}
		code, err := parseHex(args[0])
		if err != nil {
			return false, err
		}
		sc := contracts.Scancode{Code: code}
		if cmd != "key" {
			sc.Explicit, sc.Pressed = true, cmd == "press"
		}
		select {
		case c.keys <- sc:
		case <-ctx.Done():
		}
	default:
		return false, fmt.Errorf("%w: %q", errUnknownCommand, cmd)
	}
	return false, nil
}

func (c *console) call(ctx context.Context, fn func(*router.Router)) {
	select {
	case c.calls <- fn:
	case <-ctx.Done():
	}
}

func parseHex(s string) (byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid scancode %q", s)
	}
	return byte(v), nil
}
