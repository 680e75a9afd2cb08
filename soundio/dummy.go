package soundio

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/smallnest/ringbuffer"
)

// The dummy backend simulates one output and one input device in pure Go. A
// goroutine per stream plays the role of the sound card: it drains (or fills)
// a ring buffer at the stream's sample rate and asks the callback for more.

const (
	dummyLatencyMin     = 0.01
	dummyLatencyMax     = 4.0
	dummyLatencyDefault = 0.1
	dummyRateDefault    = 48000
)

func init() {
	registerDriver(dummyDriver{})
}

type dummyDriver struct{}

func (dummyDriver) backend() Backend {
	return BackendDummy
}

func (dummyDriver) connect(appName string, hub *eventHub) (backendConn, error) {
	hub.seed(dummyDevices())
	return &dummyConn{hub: hub}, nil
}

func dummyDevices() *devicesInfo {
	return &devicesInfo{
		outputs:       []*deviceInfo{dummyDevice("dummy-out", "Dummy Output Device", AimOutput)},
		inputs:        []*deviceInfo{dummyDevice("dummy-in", "Dummy Input Device", AimInput)},
		defaultInput:  0,
		defaultOutput: 0,
	}
}

func dummyDevice(id, name string, aim DeviceAim) *deviceInfo {
	return &deviceInfo{
		id:                id,
		name:              name,
		aim:               aim,
		layouts:           BuiltinLayouts(),
		currentLayout:     BuiltinLayout(LayoutStereo),
		formats:           allFormats(),
		currentFormat:     FormatFloat32NE,
		sampleRates:       []SampleRateRange{{Min: MinSampleRate, Max: MaxSampleRate}},
		sampleRateCurrent: dummyRateDefault,
		latencyMin:        dummyLatencyMin,
		latencyMax:        dummyLatencyMax,
		latencyCurrent:    dummyLatencyDefault,
	}
}

type dummyConn struct {
	hub *eventHub
}

func (c *dummyConn) flushEvents() {
	c.hub.flush()
}

func (c *dummyConn) waitEvents() {
	c.hub.wait()
}

func (c *dummyConn) wakeup() {
	c.hub.wakeup()
}

func (c *dummyConn) forceDeviceScan() {
	c.hub.publish(dummyDevices())
}

func (c *dummyConn) disconnect() {}

func (c *dummyConn) openOutStream(dev *deviceInfo, p *streamParams, ev outStreamEvents) (outStreamDriver, error) {
	s := &dummyOutStream{ev: ev}
	s.init(p)
	return s, nil
}

func (c *dummyConn) openInStream(dev *deviceInfo, p *streamParams, ev inStreamEvents) (inStreamDriver, error) {
	s := &dummyInStream{ev: ev}
	s.init(p)
	return s, nil
}

// dummyStream is the simulated hardware shared by both directions.
type dummyStream struct {
	rate           int
	bytesPerFrame  int
	bytesPerSample int
	capacity       int // frames
	period         time.Duration

	ring    *ringbuffer.RingBuffer
	staging []byte
	pending int // frames in the current window

	paused  atomic.Bool
	clear   atomic.Bool
	running atomic.Bool

	startOnce sync.Once
	closeOnce sync.Once
	quit      chan struct{}
	done      chan struct{}
}

// init negotiates p and sizes the buffers.
func (s *dummyStream) init(p *streamParams) {
	if p.softwareLatency == 0 {
		p.softwareLatency = dummyLatencyDefault
	}
	p.softwareLatency = min(max(p.softwareLatency, dummyLatencyMin), dummyLatencyMax)

	if layout := p.layout.clone(); !layout.DetectBuiltin() {
		p.layoutErr = ErrIncompatibleDevice
	}

	s.rate = p.sampleRate
	s.bytesPerFrame = p.bytesPerFrame()
	s.bytesPerSample = p.format.BytesPerSample()
	s.capacity = int(math.Ceil(p.softwareLatency * float64(p.sampleRate)))
	s.period = time.Duration(p.softwareLatency / 2 * float64(time.Second))

	s.ring = ringbuffer.New(s.capacity * s.bytesPerFrame)
	s.staging = make([]byte, s.capacity*s.bytesPerFrame)
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
}

func (s *dummyStream) fillFrames() int {
	return s.ring.Length() / s.bytesPerFrame
}

func (s *dummyStream) freeFrames() int {
	return s.ring.Free() / s.bytesPerFrame
}

// window exposes the first n frames of staging as interleaved areas.
func (s *dummyStream) window(areas []ChannelArea, n int) {
	end := n * s.bytesPerFrame
	for ch := range areas {
		areas[ch] = ChannelArea{
			Data: s.staging[min(ch*s.bytesPerSample, end):end],
			Step: s.bytesPerFrame,
		}
	}
	s.pending = n
}

func (s *dummyStream) startLoop(tick func(frames int)) error {
	s.startOnce.Do(func() {
		s.running.Store(true)
		go s.loop(tick)
	})
	return nil
}

// loop runs the clock. tick gets the number of frames the simulated card
// moved since the previous tick; the first tick happens right away with 0.
func (s *dummyStream) loop(tick func(frames int)) {
	defer close(s.done)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	begin := time.Now()
	var played int64

	tick(0)
	for {
		select {
		case <-s.quit:
			return
		case now := <-ticker.C:
			due := int64(now.Sub(begin).Seconds() * float64(s.rate))
			frames := int(due - played)
			played = due
			if s.paused.Load() {
				continue
			}
			if s.clear.Swap(false) {
				s.ring.Reset()
			}
			tick(frames)
		}
	}
}

func (s *dummyStream) pause(pause bool) error {
	s.paused.Store(pause)
	return nil
}

func (s *dummyStream) latency() (float64, error) {
	return float64(s.fillFrames()) / float64(s.rate), nil
}

func (s *dummyStream) close() {
	s.closeOnce.Do(func() {
		close(s.quit)
		if s.running.Load() {
			<-s.done
		}
	})
}

type dummyOutStream struct {
	dummyStream
	ev outStreamEvents
}

func (s *dummyOutStream) start() error {
	return s.startLoop(s.tick)
}

// tick plays frames out of the ring, then asks for as much as fits.
func (s *dummyOutStream) tick(frames int) {
	if frames > 0 {
		fill := s.fillFrames()
		n := min(frames, fill)
		if n > 0 {
			s.ring.Read(s.staging[:n*s.bytesPerFrame])
		}
		if frames > fill {
			s.ev.underflow()
		}
	}
	if free := s.freeFrames(); free > 0 {
		s.ev.dispatch(0, free)
	}
}

func (s *dummyOutStream) clearBuffer() error {
	s.clear.Store(true)
	return nil
}

func (s *dummyOutStream) beginWrite(areas []ChannelArea, frameCount int) (int, error) {
	if frameCount <= 0 {
		return 0, ErrInvalid
	}
	n := min(frameCount, s.freeFrames())
	s.window(areas, n)
	return n, nil
}

func (s *dummyOutStream) endWrite() error {
	n := s.pending * s.bytesPerFrame
	s.pending = 0
	if n == 0 {
		return nil
	}
	if _, err := s.ring.Write(s.staging[:n]); err != nil {
		return ErrStreaming
	}
	return nil
}

type dummyInStream struct {
	dummyStream
	ev      inStreamEvents
	silence []byte
}

func (s *dummyInStream) start() error {
	if s.silence == nil {
		s.silence = make([]byte, s.capacity*s.bytesPerFrame)
	}
	return s.startLoop(s.tick)
}

// tick records frames of silence, then hands everything buffered to the
// callback.
func (s *dummyInStream) tick(frames int) {
	if frames > 0 {
		free := s.freeFrames()
		n := min(frames, free)
		if n > 0 {
			s.ring.Write(s.silence[:n*s.bytesPerFrame])
		}
		if frames > free {
			s.ev.overflow()
		}
	}
	if fill := s.fillFrames(); fill > 0 {
		s.ev.dispatch(0, fill)
	}
}

func (s *dummyInStream) beginRead(areas []ChannelArea, frameCount int) (int, error) {
	n := min(frameCount, s.fillFrames())
	if n > 0 {
		if _, err := s.ring.Read(s.staging[:n*s.bytesPerFrame]); err != nil {
			return 0, ErrStreaming
		}
	}
	s.window(areas, n)
	return n, nil
}

func (s *dummyInStream) endRead() error {
	s.pending = 0
	return nil
}
