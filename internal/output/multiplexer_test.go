package output_test

import (
	"errors"
	"testing"

	"github.com/leandrodaf/midirouter/internal/logger"
	"github.com/leandrodaf/midirouter/internal/output"
	"github.com/leandrodaf/midirouter/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBusy = errors.New("fifo full")

type write struct {
	sink  contracts.SinkID
	frame [3]byte
}

// recorder logs every write in the order the multiplexer issued them.
type recorder struct {
	writes []write
	fail   map[contracts.SinkID]bool
}

func (r *recorder) sink(id contracts.SinkID) contracts.Sink {
	return contracts.SinkFunc(func(frame [3]byte) error {
		r.writes = append(r.writes, write{id, frame})
		if r.fail[id] {
			return errBusy
		}
		return nil
	})
}

func newMux(t *testing.T, trs int) (*output.Multiplexer, *recorder) {
	t.Helper()
	reg, err := output.NewRegistry(trs)
	require.NoError(t, err)
	rec := &recorder{fail: map[contracts.SinkID]bool{}}
	require.NoError(t, reg.Register(contracts.USB, rec.sink(contracts.USB)))
	require.NoError(t, reg.Register(contracts.DIN, rec.sink(contracts.DIN)))
	for i := 0; i < trs; i++ {
		require.NoError(t, reg.Register(contracts.TRS(i), rec.sink(contracts.TRS(i))))
	}
	return output.NewMultiplexer(reg, logger.NewNopLogger()), rec
}

func TestDispatchAll(t *testing.T) {
	mux, rec := newMux(t, 10)
	ev := contracts.NewEvent(contracts.NoteOn, 1, 60, 100)

	require.NoError(t, mux.Dispatch(ev, contracts.AllSinks()))
	require.Len(t, rec.writes, 12)

	want := []contracts.SinkID{contracts.USB, contracts.DIN}
	for i := 0; i < 10; i++ {
		want = append(want, contracts.TRS(i))
	}
	for i, w := range rec.writes {
		assert.Equal(t, want[i], w.sink)
		assert.Equal(t, [3]byte{0x90, 60, 100}, w.frame)
	}
}

func TestDispatchSubset(t *testing.T) {
	mux, rec := newMux(t, 10)
	ev := contracts.NewEvent(contracts.ControlChange, 3, 7, 99)

	require.NoError(t, mux.Dispatch(ev, contracts.SinksOf(contracts.TRS(4), contracts.DIN)))
	assert.Equal(t, []write{
		{contracts.DIN, [3]byte{0xB2, 7, 99}},
		{contracts.TRS(4), [3]byte{0xB2, 7, 99}},
	}, rec.writes)
}

func TestDispatchEmptySet(t *testing.T) {
	mux, rec := newMux(t, 2)
	assert.NoError(t, mux.Dispatch(contracts.NewEvent(contracts.NoteOn, 1, 1, 1), contracts.SinksOf()))
	assert.Empty(t, rec.writes)
}

func TestDispatchContinuesPastFailures(t *testing.T) {
	mux, rec := newMux(t, 3)
	rec.fail[contracts.DIN] = true
	rec.fail[contracts.TRS(1)] = true

	err := mux.Dispatch(contracts.NewEvent(contracts.NoteOff, 1, 60, 0), contracts.AllSinks())
	require.Error(t, err)
	assert.Len(t, rec.writes, 5, "every sink is attempted exactly once")

	var derr *output.DeliveryError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, 5, derr.Attempted)
	failures := derr.Failures()
	require.Len(t, failures, 2)
	assert.Equal(t, contracts.DIN, failures[0].Sink)
	assert.Equal(t, contracts.TRS(1), failures[1].Sink)
	assert.True(t, derr.Failed(contracts.DIN))
	assert.False(t, derr.Failed(contracts.USB))
	assert.True(t, errors.Is(err, errBusy))
	assert.Contains(t, err.Error(), "2 of 5 sinks")
}

func TestDispatchUnconfiguredSink(t *testing.T) {
	mux, rec := newMux(t, 2)
	mux.Registry().Unregister(contracts.DIN)

	err := mux.Dispatch(contracts.NewEvent(contracts.NoteOn, 1, 60, 1), contracts.SinksOf(contracts.USB, contracts.DIN))
	require.Error(t, err)
	assert.True(t, errors.Is(err, output.ErrSinkNotConfigured))
	assert.Len(t, rec.writes, 1)

	// All skips unregistered sinks instead of failing on them
	rec.writes = nil
	require.NoError(t, mux.Dispatch(contracts.NewEvent(contracts.NoteOn, 1, 60, 1), contracts.AllSinks()))
	assert.Len(t, rec.writes, 3)
}

func TestAllResolvesAtDispatchTime(t *testing.T) {
	mux, rec := newMux(t, 10)
	ev := contracts.NewEvent(contracts.NoteOn, 1, 60, 1)

	require.NoError(t, mux.Registry().SetTRSPorts(4))
	require.NoError(t, mux.Dispatch(ev, contracts.AllSinks()))
	assert.Len(t, rec.writes, 6)

	rec.writes = nil
	require.NoError(t, mux.Registry().SetTRSPorts(5))
	require.NoError(t, mux.Registry().Register(contracts.TRS(4), rec.sink(contracts.TRS(4))))
	require.NoError(t, mux.Dispatch(ev, contracts.AllSinks()))
	assert.Len(t, rec.writes, 7)
}

func TestDispatchIsRepeatable(t *testing.T) {
	mux, rec := newMux(t, 1)
	frame := [3]byte{0x93, 0x40, 0x10}

	require.NoError(t, mux.DispatchFrame(frame, contracts.AllSinks()))
	first := append([]write(nil), rec.writes...)
	rec.writes = nil
	require.NoError(t, mux.DispatchFrame(frame, contracts.AllSinks()))
	assert.Equal(t, first, rec.writes)
}

func TestRegistryValidation(t *testing.T) {
	_, err := output.NewRegistry(contracts.MaxTRSPorts + 1)
	assert.ErrorIs(t, err, output.ErrTooManyPorts)

	reg, err := output.NewRegistry(2)
	require.NoError(t, err)
	assert.ErrorIs(t, reg.Register(contracts.TRS(2), contracts.SinkFunc(func([3]byte) error { return nil })), output.ErrSinkOutOfRange)
	assert.ErrorIs(t, reg.Register(contracts.USB, nil), output.ErrNilSink)
	assert.Equal(t, 2, reg.TRSPorts())
	assert.True(t, reg.Configured().Empty())
}
