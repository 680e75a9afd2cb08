package soundio

import (
	"fmt"
	"unsafe"
)

// ChannelArea is the memory of one channel inside the current window. Sample
// n of the channel starts at Data[n*Step]. Channels may be interleaved or
// planar, so Step must always be used rather than the sample size.
type ChannelArea struct {
	Data []byte
	Step int
}

// Sample is the set of Go types SetSample and SampleAt accept. The size of
// the type must equal Format().BytesPerSample() of the stream. Values are
// stored in native byte order; foreign endian formats need swapping by the
// caller.
type Sample interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~float32 | ~float64
}

// Cursor is implemented by OutStreamWriter and InStreamReader.
type Cursor interface {
	cursor() *cursor
}

type cursorState int

const (
	cursorIdle   cursorState = iota // callback running, no window yet
	cursorActive                    // window begun, commit pending
	cursorDone                      // begin attempted, or callback over
)

// cursor is the part shared by OutStreamWriter and InStreamReader. One cursor
// lives for the whole stream and is reset at every callback.
type cursor struct {
	state         cursorState
	frameCountMin int
	frameCountMax int
	frameCount    int

	format         Format
	bytesPerSample int
	// areas has one entry per channel, filled by the driver on begin.
	areas []ChannelArea
}

func newCursor(format Format, channelCount int) cursor {
	return cursor{
		state:          cursorDone,
		format:         format,
		bytesPerSample: format.BytesPerSample(),
		areas:          make([]ChannelArea, channelCount),
	}
}

func (c *cursor) reset(frameCountMin, frameCountMax int) {
	c.state = cursorIdle
	c.frameCountMin = frameCountMin
	c.frameCountMax = frameCountMax
	c.frameCount = 0
	for i := range c.areas {
		c.areas[i] = ChannelArea{}
	}
}

// checkBegin enforces the once-per-callback rule and the frame count bounds.
func (c *cursor) checkBegin(op string, frameCount int) {
	switch c.state {
	case cursorActive, cursorDone:
		panic("soundio: " + op + " called twice or outside the stream callback")
	}
	if frameCount < c.frameCountMin || frameCount > c.frameCountMax {
		panic(fmt.Sprintf("soundio: %s(%d) outside [%d, %d]", op, frameCount, c.frameCountMin, c.frameCountMax))
	}
}

func (c *cursor) area(channel int) ChannelArea {
	c.checkActive()
	if channel < 0 || channel >= len(c.areas) {
		panic(fmt.Sprintf("soundio: channel %d out of range [0, %d)", channel, len(c.areas)))
	}
	return c.areas[channel]
}

func (c *cursor) checkActive() {
	if c.state != cursorActive {
		panic("soundio: sample access without an active window")
	}
}

// sample returns the bytes of one sample, or nil for a hole in the input.
func (c *cursor) sample(channel, frame, size int) []byte {
	a := c.area(channel)
	if frame < 0 || frame >= c.frameCount {
		panic(fmt.Sprintf("soundio: frame %d out of range [0, %d)", frame, c.frameCount))
	}
	if size != c.bytesPerSample {
		panic(fmt.Sprintf("soundio: %d byte sample type used with %s", size, c.format))
	}
	if a.Data == nil {
		return nil
	}
	off := frame * a.Step
	return a.Data[off : off+size : off+size]
}

// SetSample stores value at (channel, frame) of the current window. It
// panics if no window is active, if channel or frame is out of range, or if
// the size of T does not match the stream format.
func SetSample[T Sample](w *OutStreamWriter, channel, frame int, value T) {
	b := w.c.sample(channel, frame, int(unsafe.Sizeof(value)))
	*(*T)(unsafe.Pointer(&b[0])) = value
}

// SampleAt loads the sample at (channel, frame) of the current window. It
// panics under the same conditions as SetSample. Reading a hole in the input
// returns zero.
func SampleAt[T Sample](c Cursor, channel, frame int) T {
	var zero T
	b := c.cursor().sample(channel, frame, int(unsafe.Sizeof(zero)))
	if b == nil {
		return zero
	}
	return *(*T)(unsafe.Pointer(&b[0]))
}
