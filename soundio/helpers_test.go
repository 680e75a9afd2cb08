package soundio

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const callbackTimeout = 2 * time.Second

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newDummyContext returns a flushed context on the dummy backend. It is
// closed when the test ends.
func newDummyContext(t *testing.T, opts ...Option) *Context {
	t.Helper()

	ctx := NewContext("soundio-test", append([]Option{WithLogger(quietLogger())}, opts...)...)
	require.NoError(t, ctx.ConnectBackend(BackendDummy))
	t.Cleanup(func() { ctx.Close() })
	ctx.FlushEvents()
	return ctx
}

func dummyOutput(t *testing.T, ctx *Context) *Device {
	t.Helper()

	dev, err := ctx.DefaultOutputDevice()
	require.NoError(t, err)
	t.Cleanup(dev.Release)
	return dev
}

func dummyInput(t *testing.T, ctx *Context) *Device {
	t.Helper()

	dev, err := ctx.DefaultInputDevice()
	require.NoError(t, err)
	t.Cleanup(dev.Release)
	return dev
}

// notify sends without blocking; callbacks must never block.
func notify[T any](ch chan<- T, v T) {
	select {
	case ch <- v:
	default:
	}
}

func receive[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(callbackTimeout):
		t.Fatalf("timed out waiting for %s", what)
		panic("unreachable")
	}
}
