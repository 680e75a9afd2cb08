package soundio

import "fmt"

// InStreamHandler consumes audio from an input stream. ReadCallback runs on
// the engine's realtime thread; see InStreamReader for the protocol.
type InStreamHandler interface {
	ReadCallback(r *InStreamReader)
}

// OverflowHandler may be implemented by an InStreamHandler to learn about
// dropped input.
type OverflowHandler interface {
	OverflowCallback()
}

// InStreamFuncs adapts plain functions to an InStreamHandler. Overflow and
// Error are optional.
type InStreamFuncs struct {
	Read     func(r *InStreamReader)
	Overflow func()
	Error    func(err error)
}

func (f InStreamFuncs) ReadCallback(r *InStreamReader) {
	f.Read(r)
}

// InStream is an open input stream.
type InStream struct {
	stream

	drv        inStreamDriver
	read       func(*InStreamReader)
	onOverflow func()

	reader InStreamReader
}

// OpenInStream opens an input stream on the device. The arguments are hints
// with the same defaults as OpenOutStream.
func (d *Device) OpenInStream(sampleRate int, format Format, layout ChannelLayout, softwareLatency float64, h InStreamHandler) (*InStream, error) {
	d.checkUsable()
	if d.info.aim != AimInput {
		return nil, ErrInvalid
	}

	s := &InStream{}
	var onErr func(error)
	switch h := h.(type) {
	case nil:
	case InStreamFuncs:
		s.read, s.onOverflow, onErr = h.Read, h.Overflow, h.Error
	case *InStreamFuncs:
		s.read, s.onOverflow, onErr = h.Read, h.Overflow, h.Error
	default:
		s.read = h.ReadCallback
		if oh, ok := h.(OverflowHandler); ok {
			s.onOverflow = oh.OverflowCallback
		}
		if eh, ok := h.(ErrorHandler); ok {
			onErr = eh.ErrorCallback
		}
	}
	if s.read == nil {
		return nil, fmt.Errorf("soundio: nil read callback: %w", ErrInvalid)
	}
	if s.onOverflow == nil {
		s.onOverflow = func() {}
	}

	p, err := d.streamParams(sampleRate, format, layout, softwareLatency)
	if err != nil {
		return nil, err
	}
	conn := d.connection()
	if conn == nil {
		return nil, ErrBackendDisconnected
	}

	drv, err := conn.openInStream(d.info, &p, s)
	if err != nil {
		return nil, err
	}
	if p.layoutErr != nil {
		drv.close()
		return nil, &LayoutError{Layout: p.layout, Err: p.layoutErr}
	}

	s.drv = drv
	s.init(d, "in", &p, onErr)
	s.reader = InStreamReader{s: s, c: newCursor(p.format, p.channelCount())}
	s.logger.Debug("soundio instream opened",
		"format", s.format, "rate", s.sampleRate, "layout", s.layout.String(), "latency", s.softwareLatency)
	return s, nil
}

func (s *InStream) Start() error {
	return s.start(s.drv.start)
}

// Pause behaves like OutStream.Pause.
func (s *InStream) Pause(pause bool) error {
	return s.pause(pause, s.drv.pause)
}

// Latency returns the time in seconds since the frame about to be read was
// captured.
func (s *InStream) Latency() (float64, error) {
	if s.closed.Load() {
		return 0, ErrInvalid
	}
	return s.drv.latency()
}

// Close behaves like OutStream.Close.
func (s *InStream) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.drv.close()
	s.release()
	s.logger.Debug("soundio instream closed")
	return nil
}

func (s *InStream) dispatch(frameCountMin, frameCountMax int) {
	s.reader.c.reset(frameCountMin, frameCountMax)
	defer s.commit()
	defer s.recoverCallback("read callback")
	s.read(&s.reader)
}

func (s *InStream) commit() {
	c := &s.reader.c
	active := c.state == cursorActive
	c.state = cursorDone
	if !active {
		return
	}
	if err := s.drv.endRead(); err != nil {
		s.fail(err)
	}
}

func (s *InStream) overflow() {
	defer s.recoverCallback("overflow callback")
	s.onOverflow()
}

// InStreamReader is the window into the input buffer handed to the read
// callback. The rules of OutStreamWriter apply.
type InStreamReader struct {
	s *InStream
	c cursor
}

func (r *InStreamReader) cursor() *cursor {
	return &r.c
}

// FrameCountMin is the least number of frames the callback must read.
func (r *InStreamReader) FrameCountMin() int {
	return r.c.frameCountMin
}

// FrameCountMax is the number of frames available.
func (r *InStreamReader) FrameCountMax() int {
	return r.c.frameCountMax
}

// BeginRead opens a window of frameCount frames. It panics under the same
// conditions as BeginWrite.
func (r *InStreamReader) BeginRead(frameCount int) error {
	r.c.checkBegin("BeginRead", frameCount)
	r.c.state = cursorDone
	if r.s.failed.Load() {
		return ErrStreaming
	}
	granted, err := r.s.drv.beginRead(r.c.areas, frameCount)
	if err != nil {
		e := asError(err)
		if e == ErrStreaming {
			r.s.failed.Store(true)
		}
		return e
	}
	r.c.frameCount = granted
	r.c.state = cursorActive
	return nil
}

func (r *InStreamReader) FrameCount() int {
	return r.c.frameCount
}

// Hole reports whether the current window is a gap in the input, e.g. after
// an overflow. Its samples read as zero.
func (r *InStreamReader) Hole() bool {
	r.c.checkActive()
	return len(r.c.areas) > 0 && r.c.areas[0].Data == nil
}

func (r *InStreamReader) Area(channel int) ChannelArea {
	return r.c.area(channel)
}

func (r *InStreamReader) ChannelCount() int {
	return len(r.c.areas)
}

func (r *InStreamReader) Format() Format {
	return r.c.format
}

func (r *InStreamReader) SampleRate() int {
	return r.s.sampleRate
}

func (r *InStreamReader) SoftwareLatency() float64 {
	return r.s.softwareLatency
}

func (r *InStreamReader) Latency() (float64, error) {
	return r.s.drv.latency()
}
