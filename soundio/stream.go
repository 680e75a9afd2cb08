package soundio

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// ErrorHandler receives unrecoverable stream errors, including a failed
// commit of the callback's window. After it runs the stream only returns
// ErrStreaming from BeginWrite or BeginRead and should be closed.
type ErrorHandler interface {
	ErrorCallback(err error)
}

// stream is the state shared by OutStream and InStream.
type stream struct {
	dev    *Device
	logger *slog.Logger
	onErr  func(error)

	name            string
	format          Format
	sampleRate      int
	layout          ChannelLayout
	softwareLatency float64

	started atomic.Bool
	paused  atomic.Bool
	closed  atomic.Bool
	failed  atomic.Bool
}

// streamParams applies the device defaults to a request and rejects what no
// backend could open. The backend may still adjust the result.
func (d *Device) streamParams(sampleRate int, format Format, layout ChannelLayout, softwareLatency float64) (streamParams, error) {
	if d.info.probeErr != nil {
		return streamParams{}, d.info.probeErr
	}

	if format == FormatInvalid {
		format = FormatFloat32NE
		if !d.SupportsFormat(format) && len(d.info.formats) > 0 {
			format = d.info.formats[0]
		}
	}
	if format.BytesPerSample() == 0 {
		return streamParams{}, ErrInvalid
	}

	if layout.ChannelCount() == 0 {
		layout = BuiltinLayout(LayoutStereo)
		if !d.SupportsLayout(layout) && len(d.layouts) > 0 {
			layout = d.layouts[0].clone()
		}
	} else {
		layout = layout.clone()
	}
	if n := layout.ChannelCount(); n < 1 || n > MaxChannels {
		return streamParams{}, ErrInvalid
	}

	if sampleRate == 0 {
		sampleRate = 48000
	}
	if !d.SupportsSampleRate(sampleRate) {
		sampleRate = d.NearestSampleRate(sampleRate)
	}
	if sampleRate <= 0 {
		return streamParams{}, ErrInvalid
	}

	if softwareLatency < 0 {
		return streamParams{}, ErrInvalid
	}

	return streamParams{
		name:            d.ctx.appName,
		format:          format,
		sampleRate:      sampleRate,
		layout:          layout,
		softwareLatency: softwareLatency,
	}, nil
}

func (s *stream) init(dev *Device, kind string, p *streamParams, onErr func(error)) {
	s.dev = dev
	s.name = p.name
	s.format = p.format
	s.sampleRate = p.sampleRate
	s.layout = p.layout
	s.softwareLatency = p.softwareLatency
	s.logger = dev.ctx.logger.With("stream", kind, "device", dev.info.name)
	s.onErr = onErr
	if s.onErr == nil {
		s.onErr = func(err error) {
			s.logger.Error("soundio stream error", "err", err)
		}
	}
	s.paused.Store(true)
	dev.openStreams.Add(1)
	dev.ctx.openStreams.Add(1)
}

func (s *stream) release() {
	s.dev.openStreams.Add(-1)
	s.dev.ctx.openStreams.Add(-1)
}

// fail marks the stream unusable and reports err.
func (s *stream) fail(err error) {
	s.failed.Store(true)
	s.onErr(err)
}

// recoverCallback turns a panic in user code into a stream failure. It must
// be deferred directly.
func (s *stream) recoverCallback(callback string) {
	if r := recover(); r != nil {
		s.logger.Error("soundio panic in "+callback, "panic", fmt.Sprint(r))
		s.fail(ErrStreaming)
	}
}

func (s *stream) start(drvStart func() error) error {
	if s.closed.Load() {
		return ErrInvalid
	}
	if !s.started.CompareAndSwap(false, true) {
		return ErrInvalid
	}
	s.paused.Store(false)
	if err := drvStart(); err != nil {
		s.started.Store(false)
		s.paused.Store(true)
		return err
	}
	return nil
}

func (s *stream) pause(pause bool, drvPause func(bool) error) error {
	if s.closed.Load() {
		return ErrInvalid
	}
	if s.paused.Load() == pause {
		return nil
	}
	if !s.started.Load() {
		return ErrInvalid
	}
	if err := drvPause(pause); err != nil {
		return err
	}
	s.paused.Store(pause)
	return nil
}

// Device returns the device the stream was opened on.
func (s *stream) Device() *Device {
	return s.dev
}

// Name is the stream name shown by backends that support it.
func (s *stream) Name() string {
	return s.name
}

// Format returns the negotiated sample format.
func (s *stream) Format() Format {
	return s.format
}

// SampleRate returns the negotiated sample rate.
func (s *stream) SampleRate() int {
	return s.sampleRate
}

// Layout returns the negotiated channel layout.
func (s *stream) Layout() ChannelLayout {
	return s.layout.clone()
}

func (s *stream) ChannelCount() int {
	return s.layout.ChannelCount()
}

// SoftwareLatency returns the negotiated software latency in seconds.
func (s *stream) SoftwareLatency() float64 {
	return s.softwareLatency
}

func (s *stream) BytesPerFrame() int {
	return s.format.BytesPerFrame(s.layout.ChannelCount())
}

func (s *stream) BytesPerSample() int {
	return s.format.BytesPerSample()
}

// Paused reports whether the stream is not running, either because it was
// never started or because it was paused.
func (s *stream) Paused() bool {
	return s.paused.Load()
}
