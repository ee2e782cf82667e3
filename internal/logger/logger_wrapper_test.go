package logger

import (
	"errors"
	"testing"
	"time"

	"github.com/leandrodaf/midirouter/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFieldsReachZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := Wrap(zap.New(core))

	log.Info("MIDI router created",
		log.Field().Int("trsPorts", 10),
		log.Field().Bool("thru", true),
		log.Field().Uint8("hid", 0x1D),
		log.Field().Duration("debounce", 5*time.Millisecond),
		log.Field().Error("error", errors.New("boom")))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "MIDI router created", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, int64(10), ctx["trsPorts"])
	assert.Equal(t, true, ctx["thru"])
	assert.Equal(t, uint8(0x1D), ctx["hid"])
	assert.Equal(t, 5*time.Millisecond, ctx["debounce"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestSetLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := Wrap(zap.New(core))

	log.SetLevel(contracts.WarnLevel)
	assert.False(t, log.Enabled(contracts.InfoLevel))
	assert.True(t, log.Enabled(contracts.ErrorLevel))

	log.Info("dropped")
	log.Debug("dropped")
	log.Warn("kept")
	log.Error("kept")
	assert.Equal(t, 2, logs.Len())

	log.SetLevel(contracts.DebugLevel)
	log.Named("output").Debug("kept")
	require.Equal(t, 3, logs.Len())
	assert.Equal(t, "output", logs.All()[2].LoggerName)
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	log.Info("nothing", log.Field().String("k", "v"))
	assert.False(t, log.Enabled(contracts.DebugLevel))
}
