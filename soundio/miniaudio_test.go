//go:build cgo && !libsoundio

package soundio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedEvents records what the miniaudio data callback reports and runs
// onDispatch in place of the user's callback.
type recordedEvents struct {
	onDispatch func(frameCountMin, frameCountMax int)
	dispatches int
	underflows int
	overflows  int
	errs       []error
}

func (e *recordedEvents) dispatch(frameCountMin, frameCountMax int) {
	e.dispatches++
	if e.onDispatch != nil {
		e.onDispatch(frameCountMin, frameCountMax)
	}
}

func (e *recordedEvents) underflow()     { e.underflows++ }
func (e *recordedEvents) overflow()      { e.overflows++ }
func (e *recordedEvents) fail(err error) { e.errs = append(e.errs, err) }

func stereoS16Params() *streamParams {
	return &streamParams{
		format:     FormatS16NE,
		sampleRate: 48000,
		layout:     BuiltinLayout(LayoutStereo),
	}
}

func newMaOutStream() (*maOutStream, *recordedEvents) {
	ev := &recordedEvents{}
	s := &maOutStream{ev: ev}
	s.init(stereoS16Params())
	return s, ev
}

func newMaInStream() (*maInStream, *recordedEvents) {
	ev := &recordedEvents{}
	s := &maInStream{ev: ev}
	s.init(stereoS16Params())
	return s, ev
}

// garbage returns frames stereo s16 frames of non-silence.
func garbage(frames int) []byte {
	return bytes.Repeat([]byte{0xff}, frames*4)
}

// writeFrames writes frames frames of sample value v into the stream's
// current window.
func writeFrames(t *testing.T, s *maOutStream, frames int, v byte) int {
	t.Helper()

	areas := make([]ChannelArea, 2)
	n, err := s.beginWrite(areas, frames)
	require.NoError(t, err)
	for ch, area := range areas {
		for f := 0; f < n; f++ {
			area.Data[f*area.Step] = v + byte(ch)
			area.Data[f*area.Step+1] = 0
		}
	}
	require.NoError(t, s.endWrite())
	return n
}

func TestMaOutStreamShortWriteIsZeroFilled(t *testing.T) {
	s, ev := newMaOutStream()
	ev.onDispatch = func(frameCountMin, frameCountMax int) {
		assert.Equal(t, 8, frameCountMin)
		assert.Equal(t, 8, frameCountMax)
		assert.Equal(t, 3, writeFrames(t, s, 3, 1))
	}

	out := garbage(8)
	s.data(out, nil, 8)

	assert.Equal(t, []byte{1, 0, 2, 0, 1, 0, 2, 0, 1, 0, 2, 0}, out[:12])
	assert.Equal(t, make([]byte, 20), out[12:], "frames nobody wrote are silence")
	assert.Equal(t, 1, ev.underflows)
	assert.Nil(t, s.buf, "window dropped after the callback")
}

func TestMaOutStreamGrantIsCappedToBuffer(t *testing.T) {
	s, ev := newMaOutStream()
	ev.onDispatch = func(int, int) {
		assert.Equal(t, 5, writeFrames(t, s, 5, 1))
		assert.Equal(t, 3, writeFrames(t, s, 100, 3), "only what is left of the buffer")
	}

	out := garbage(8)
	s.data(out, nil, 8)

	assert.Equal(t, []byte{1, 0, 2, 0}, out[:4])
	assert.Equal(t, []byte{3, 0, 4, 0}, out[28:])
	assert.Zero(t, ev.underflows)
}

func TestMaOutStreamNoBeginWrite(t *testing.T) {
	s, ev := newMaOutStream()

	out := garbage(4)
	s.data(out, nil, 4)

	assert.Equal(t, 1, ev.dispatches)
	assert.Equal(t, make([]byte, 16), out)
	assert.Equal(t, 1, ev.underflows)
}

func TestMaOutStreamPaused(t *testing.T) {
	s, ev := newMaOutStream()
	require.NoError(t, s.pause(true))

	out := garbage(4)
	s.data(out, nil, 4)

	assert.Zero(t, ev.dispatches, "callback not run while paused")
	assert.Equal(t, make([]byte, 16), out)
	assert.Zero(t, ev.underflows)

	require.NoError(t, s.pause(false))
	s.data(garbage(4), nil, 4)
	assert.Equal(t, 1, ev.dispatches)
}

func TestMaStreamWindowRejectsEmptyRequest(t *testing.T) {
	s, ev := newMaOutStream()
	ev.onDispatch = func(int, int) {
		_, err := s.beginWrite(make([]ChannelArea, 2), 0)
		assert.ErrorIs(t, err, ErrInvalid)
	}
	s.data(garbage(2), nil, 2)
	assert.Equal(t, 1, ev.dispatches)
}

func TestMaInStreamReadsWholeBuffer(t *testing.T) {
	s, ev := newMaInStream()

	in := []byte{1, 0, 2, 0, 3, 0, 4, 0}
	var left []byte
	ev.onDispatch = func(frameCountMin, frameCountMax int) {
		assert.Equal(t, 2, frameCountMax)
		areas := make([]ChannelArea, 2)
		n, err := s.beginRead(areas, frameCountMax)
		require.NoError(t, err)
		for f := 0; f < n; f++ {
			left = append(left, areas[0].Data[f*areas[0].Step])
		}
		require.NoError(t, s.endRead())
	}
	s.data(nil, in, 2)

	assert.Equal(t, []byte{1, 3}, left)
	assert.Zero(t, ev.overflows)
}

func TestMaInStreamUnreadFramesOverflow(t *testing.T) {
	s, ev := newMaInStream()

	s.data(nil, garbage(4), 4)
	assert.Equal(t, 1, ev.overflows)

	require.NoError(t, s.pause(true))
	s.data(nil, garbage(4), 4)
	assert.Equal(t, 1, ev.dispatches, "paused input drops the buffer")
	assert.Equal(t, 1, ev.overflows)
}
