package soundio

import "fmt"

// OutStreamHandler supplies audio to an output stream. WriteCallback runs on
// the engine's realtime thread every period; see OutStreamWriter for the
// protocol.
type OutStreamHandler interface {
	WriteCallback(w *OutStreamWriter)
}

// UnderflowHandler may be implemented by an OutStreamHandler to learn about
// buffer underruns. It runs on the realtime thread.
type UnderflowHandler interface {
	UnderflowCallback()
}

// OutStreamFuncs adapts plain functions to an OutStreamHandler. Underflow and
// Error are optional.
type OutStreamFuncs struct {
	Write     func(w *OutStreamWriter)
	Underflow func()
	Error     func(err error)
}

func (f OutStreamFuncs) WriteCallback(w *OutStreamWriter) {
	f.Write(w)
}

// OutStream is an open output stream.
type OutStream struct {
	stream

	drv         outStreamDriver
	write       func(*OutStreamWriter)
	onUnderflow func()

	// reused by every callback
	writer OutStreamWriter
}

// OpenOutStream opens an output stream on the device. The arguments are
// hints: zero values pick the device defaults (Float32NE or the first
// supported format, stereo or the first supported layout, the rate nearest
// 48000, the backend's preferred latency) and the backend may substitute
// supported values. Query the stream for what was negotiated.
//
// When the stream opened but the layout could not be applied, the stream is
// closed again and a *LayoutError is returned.
func (d *Device) OpenOutStream(sampleRate int, format Format, layout ChannelLayout, softwareLatency float64, h OutStreamHandler) (*OutStream, error) {
	d.checkUsable()
	if d.info.aim != AimOutput {
		return nil, ErrInvalid
	}

	s := &OutStream{}
	var onErr func(error)
	switch h := h.(type) {
	case nil:
	case OutStreamFuncs:
		s.write, s.onUnderflow, onErr = h.Write, h.Underflow, h.Error
	case *OutStreamFuncs:
		s.write, s.onUnderflow, onErr = h.Write, h.Underflow, h.Error
	default:
		s.write = h.WriteCallback
		if uh, ok := h.(UnderflowHandler); ok {
			s.onUnderflow = uh.UnderflowCallback
		}
		if eh, ok := h.(ErrorHandler); ok {
			onErr = eh.ErrorCallback
		}
	}
	if s.write == nil {
		return nil, fmt.Errorf("soundio: nil write callback: %w", ErrInvalid)
	}
	if s.onUnderflow == nil {
		s.onUnderflow = func() {}
	}

	p, err := d.streamParams(sampleRate, format, layout, softwareLatency)
	if err != nil {
		return nil, err
	}
	conn := d.connection()
	if conn == nil {
		return nil, ErrBackendDisconnected
	}

	drv, err := conn.openOutStream(d.info, &p, s)
	if err != nil {
		return nil, err
	}
	if p.layoutErr != nil {
		drv.close()
		return nil, &LayoutError{Layout: p.layout, Err: p.layoutErr}
	}

	s.drv = drv
	s.init(d, "out", &p, onErr)
	s.writer = OutStreamWriter{s: s, c: newCursor(p.format, p.channelCount())}
	s.logger.Debug("soundio outstream opened",
		"format", s.format, "rate", s.sampleRate, "layout", s.layout.String(), "latency", s.softwareLatency)
	return s, nil
}

// Start begins the callback cadence. Depending on the backend the write
// callback may run before Start returns. Returns ErrInvalid after Close or
// when already started.
func (s *OutStream) Start() error {
	return s.start(s.drv.start)
}

// Pause pauses or resumes the stream. It is a no-op when the stream is
// already in the requested state. Backends that cannot pause return
// ErrIncompatibleDevice or ErrIncompatibleBackend. Pause may be called from
// the write callback; it does not wait for the running callback.
func (s *OutStream) Pause(pause bool) error {
	return s.pause(pause, s.drv.pause)
}

// ClearBuffer drops audio that was written but not yet played. Like Pause it
// may be called from the write callback.
func (s *OutStream) ClearBuffer() error {
	if s.closed.Load() {
		return ErrInvalid
	}
	return s.drv.clearBuffer()
}

// Latency returns the time in seconds until a frame written now is heard.
func (s *OutStream) Latency() (float64, error) {
	if s.closed.Load() {
		return 0, ErrInvalid
	}
	return s.drv.latency()
}

// Close stops the stream. When it returns no callback is running and none
// will run again. It must not be called from the stream's own callbacks.
// Calling Close again is a no-op.
func (s *OutStream) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.drv.close()
	s.release()
	s.logger.Debug("soundio outstream closed")
	return nil
}

// dispatch is the write trampoline. The window is committed on every way out
// of the callback, including a panic.
func (s *OutStream) dispatch(frameCountMin, frameCountMax int) {
	s.writer.c.reset(frameCountMin, frameCountMax)
	defer s.commit()
	defer s.recoverCallback("write callback")
	s.write(&s.writer)
}

func (s *OutStream) commit() {
	c := &s.writer.c
	active := c.state == cursorActive
	c.state = cursorDone
	if !active {
		return
	}
	if err := s.drv.endWrite(); err != nil {
		s.fail(err)
	}
}

func (s *OutStream) underflow() {
	defer s.recoverCallback("underflow callback")
	s.onUnderflow()
}

// OutStreamWriter is the window into the output buffer handed to the write
// callback. Within one callback BeginWrite may be called at most once; the
// window is committed when the callback returns. The writer must not be
// kept after the callback returns.
type OutStreamWriter struct {
	s *OutStream
	c cursor
}

func (w *OutStreamWriter) cursor() *cursor {
	return &w.c
}

// FrameCountMin is the least number of frames the callback must write.
func (w *OutStreamWriter) FrameCountMin() int {
	return w.c.frameCountMin
}

// FrameCountMax is the most frames the callback may write.
func (w *OutStreamWriter) FrameCountMax() int {
	return w.c.frameCountMax
}

// BeginWrite opens a window of frameCount frames. It panics when called twice
// in one callback or when frameCount is outside [FrameCountMin,
// FrameCountMax]. The backend may grant fewer frames than requested; use
// FrameCount afterwards. The error is always one of the Error values;
// ErrStreaming means the stream must be reopened, others leave it usable.
func (w *OutStreamWriter) BeginWrite(frameCount int) error {
	w.c.checkBegin("BeginWrite", frameCount)
	w.c.state = cursorDone
	if w.s.failed.Load() {
		return ErrStreaming
	}
	granted, err := w.s.drv.beginWrite(w.c.areas, frameCount)
	if err != nil {
		e := asError(err)
		if e == ErrStreaming {
			w.s.failed.Store(true)
		}
		return e
	}
	w.c.frameCount = granted
	w.c.state = cursorActive
	return nil
}

// FrameCount is the number of frames granted by BeginWrite.
func (w *OutStreamWriter) FrameCount() int {
	return w.c.frameCount
}

// Area returns the memory of one channel in the current window.
func (w *OutStreamWriter) Area(channel int) ChannelArea {
	return w.c.area(channel)
}

func (w *OutStreamWriter) ChannelCount() int {
	return len(w.c.areas)
}

func (w *OutStreamWriter) Format() Format {
	return w.c.format
}

func (w *OutStreamWriter) SampleRate() int {
	return w.s.sampleRate
}

func (w *OutStreamWriter) SoftwareLatency() float64 {
	return w.s.softwareLatency
}

// Latency is OutStream.Latency, callable from the callback.
func (w *OutStreamWriter) Latency() (float64, error) {
	return w.s.drv.latency()
}
