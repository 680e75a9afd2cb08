//go:build cgo && !libsoundio

package soundio

import (
	"runtime"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

// The OS backends are provided by miniaudio. Each backend gets its own
// driver so Connect can walk them in priority order.

var miniaudioBackends = map[Backend]malgo.Backend{
	BackendJack:       malgo.BackendJack,
	BackendPulseAudio: malgo.BackendPulseaudio,
	BackendAlsa:       malgo.BackendAlsa,
	BackendCoreAudio:  malgo.BackendCoreaudio,
	BackendWasapi:     malgo.BackendWasapi,
}

func init() {
	var backends []Backend
	switch runtime.GOOS {
	case "linux", "freebsd":
		backends = []Backend{BackendJack, BackendPulseAudio, BackendAlsa}
	case "darwin":
		backends = []Backend{BackendCoreAudio}
	case "windows":
		backends = []Backend{BackendWasapi}
	}
	for _, b := range backends {
		registerDriver(maDriver{b: b})
	}
}

// Formats miniaudio converts to and from in shared mode.
var maFormats = []Format{FormatU8, FormatS16NE, FormatS32NE, FormatFloat32NE}

// miniaudio resamples, so any rate in this range can be opened.
var maSampleRates = []SampleRateRange{{Min: MinSampleRate, Max: 384000}}

const (
	maLatencyMin     = 0.005
	maLatencyMax     = 2.0
	maLatencyDefault = 0.03 // three periods of 10ms
)

func maFormat(f Format) (malgo.FormatType, bool) {
	switch f {
	case FormatU8:
		return malgo.FormatU8, true
	case FormatS16NE:
		return malgo.FormatS16, true
	case FormatS32NE:
		return malgo.FormatS32, true
	case FormatFloat32NE:
		return malgo.FormatF32, true
	}
	return 0, false
}

func fromMaFormat(f malgo.FormatType) (Format, bool) {
	switch f {
	case malgo.FormatU8:
		return FormatU8, true
	case malgo.FormatS16:
		return FormatS16NE, true
	case malgo.FormatS32:
		return FormatS32NE, true
	case malgo.FormatF32:
		return FormatFloat32NE, true
	}
	return FormatInvalid, false
}

func maDeviceType(aim DeviceAim) malgo.DeviceType {
	if aim == AimInput {
		return malgo.Capture
	}
	return malgo.Playback
}

type maDriver struct {
	b Backend
}

func (d maDriver) backend() Backend {
	return d.b
}

func (d maDriver) connect(appName string, hub *eventHub) (backendConn, error) {
	logger := packageLogger().With("backend", d.b)
	ctx, err := malgo.InitContext([]malgo.Backend{miniaudioBackends[d.b]}, malgo.ContextConfig{}, func(message string) {
		logger.Debug("miniaudio", "msg", message)
	})
	if err != nil {
		logger.Debug("miniaudio context init failed", "app", appName, "err", err)
		return nil, ErrInitAudioBackend
	}

	c := &maConn{b: d.b, ctx: ctx, hub: hub}
	info, err := c.scan()
	if err != nil {
		c.disconnect()
		logger.Debug("miniaudio device scan failed", "err", err)
		return nil, ErrInitAudioBackend
	}
	hub.seed(info)
	return c, nil
}

type maConn struct {
	b   Backend
	ctx *malgo.AllocatedContext
	hub *eventHub
}

func (c *maConn) scan() (*devicesInfo, error) {
	info := &devicesInfo{defaultInput: -1, defaultOutput: -1}
	for _, aim := range []DeviceAim{AimOutput, AimInput} {
		found, err := c.ctx.Devices(maDeviceType(aim))
		if err != nil {
			return nil, err
		}
		list := make([]*deviceInfo, 0, len(found))
		for i := range found {
			if found[i].IsDefault != 0 {
				if aim == AimInput {
					info.defaultInput = len(list)
				} else {
					info.defaultOutput = len(list)
				}
			}
			list = append(list, c.probe(aim, &found[i]))
		}
		if aim == AimInput {
			info.inputs = list
		} else {
			info.outputs = list
		}
	}
	return info, nil
}

// probe fills in what the device natively supports on top of what
// miniaudio can convert.
func (c *maConn) probe(aim DeviceAim, d *malgo.DeviceInfo) *deviceInfo {
	id := d.ID
	di := &deviceInfo{
		id:                string(id[:]),
		name:              d.Name(),
		aim:               aim,
		formats:           append([]Format(nil), maFormats...),
		currentFormat:     FormatFloat32NE,
		sampleRates:       append([]SampleRateRange(nil), maSampleRates...),
		sampleRateCurrent: 48000,
		latencyMin:        maLatencyMin,
		latencyMax:        maLatencyMax,
		latencyCurrent:    maLatencyDefault,
		handle:            id,
	}

	full, err := c.ctx.DeviceInfo(maDeviceType(aim), id, malgo.Shared)
	if err != nil {
		di.probeErr = ErrOpeningDevice
		return di
	}

	channels := map[int]bool{}
	for i := 0; i < int(full.FormatCount) && i < len(full.Formats); i++ {
		nf := full.Formats[i]
		if nf.Channels > 0 {
			channels[int(nf.Channels)] = true
		}
		if i == 0 {
			if f, ok := fromMaFormat(nf.Format); ok {
				di.currentFormat = f
			}
			if nf.SampleRate > 0 {
				di.sampleRateCurrent = int(nf.SampleRate)
			}
		}
	}
	if len(channels) == 0 {
		channels[1], channels[2] = true, true
	}
	for n := MaxChannels; n > 0; n-- {
		if !channels[n] {
			continue
		}
		if l, ok := DefaultLayout(n); ok {
			di.layouts = append(di.layouts, l)
		}
	}
	if len(di.layouts) == 0 {
		di.layouts = []ChannelLayout{BuiltinLayout(LayoutStereo)}
	}
	di.currentLayout = di.layouts[0].clone()
	return di
}

func (c *maConn) flushEvents() {
	c.hub.flush()
}

func (c *maConn) waitEvents() {
	c.hub.wait()
}

func (c *maConn) wakeup() {
	c.hub.wakeup()
}

func (c *maConn) forceDeviceScan() {
	info, err := c.scan()
	if err != nil {
		packageLogger().Warn("miniaudio device scan failed", "backend", c.b, "err", err)
		return
	}
	c.hub.publish(info)
}

func (c *maConn) disconnect() {
	if err := c.ctx.Uninit(); err != nil {
		packageLogger().Warn("miniaudio context uninit failed", "backend", c.b, "err", err)
	}
	c.ctx.Free()
}

// deviceConfig negotiates p against miniaudio. miniaudio only applies its
// default channel map, so layouts other than the default for their channel
// count are refused.
func (c *maConn) deviceConfig(dev *deviceInfo, p *streamParams) malgo.DeviceConfig {
	cfg := malgo.DefaultDeviceConfig(maDeviceType(dev.aim))

	format, ok := maFormat(p.format)
	if !ok {
		p.format = FormatFloat32NE
		format = malgo.FormatF32
	}
	if def, ok := DefaultLayout(p.channelCount()); !ok || !def.Equal(p.layout) {
		p.layoutErr = ErrIncompatibleDevice
	}
	if p.softwareLatency == 0 {
		p.softwareLatency = maLatencyDefault
	}
	p.softwareLatency = min(max(p.softwareLatency, maLatencyMin), maLatencyMax)

	id, _ := dev.handle.(malgo.DeviceID)
	if dev.aim == AimInput {
		cfg.Capture.Format = format
		cfg.Capture.Channels = uint32(p.channelCount())
		cfg.Capture.DeviceID = id.Pointer()
	} else {
		cfg.Playback.Format = format
		cfg.Playback.Channels = uint32(p.channelCount())
		cfg.Playback.DeviceID = id.Pointer()
	}
	cfg.SampleRate = uint32(p.sampleRate)
	cfg.PeriodSizeInMilliseconds = max(uint32(p.softwareLatency*1000/3), 1)
	cfg.Periods = 3
	cfg.Alsa.NoMMap = 1
	return cfg
}

func (c *maConn) openOutStream(dev *deviceInfo, p *streamParams, ev outStreamEvents) (outStreamDriver, error) {
	cfg := c.deviceConfig(dev, p)
	s := &maOutStream{ev: ev}
	s.init(p)
	device, err := malgo.InitDevice(c.ctx.Context, cfg, malgo.DeviceCallbacks{
		Data: s.data,
		Stop: s.stopped,
	})
	if err != nil {
		packageLogger().Debug("miniaudio device init failed", "backend", c.b, "device", dev.name, "err", err)
		return nil, ErrOpeningDevice
	}
	s.device = device
	p.sampleRate = int(device.SampleRate())
	return s, nil
}

func (c *maConn) openInStream(dev *deviceInfo, p *streamParams, ev inStreamEvents) (inStreamDriver, error) {
	cfg := c.deviceConfig(dev, p)
	s := &maInStream{ev: ev}
	s.init(p)
	device, err := malgo.InitDevice(c.ctx.Context, cfg, malgo.DeviceCallbacks{
		Data: s.data,
		Stop: s.stopped,
	})
	if err != nil {
		packageLogger().Debug("miniaudio device init failed", "backend", c.b, "device", dev.name, "err", err)
		return nil, ErrOpeningDevice
	}
	s.device = device
	p.sampleRate = int(device.SampleRate())
	return s, nil
}

// maStream is the part shared by both directions. Pausing only mutes the
// callback so it is safe from inside the callback itself.
type maStream struct {
	device          *malgo.Device
	bytesPerFrame   int
	bytesPerSample  int
	softwareLatency float64

	// the miniaudio buffer of the running callback
	buf     []byte
	granted int
	done    int

	paused  atomic.Bool
	closing atomic.Bool
}

func (s *maStream) init(p *streamParams) {
	s.bytesPerFrame = p.bytesPerFrame()
	s.bytesPerSample = p.format.BytesPerSample()
	s.softwareLatency = p.softwareLatency
}

func (s *maStream) start() error {
	if err := s.device.Start(); err != nil {
		return ErrStreaming
	}
	return nil
}

func (s *maStream) pause(pause bool) error {
	s.paused.Store(pause)
	return nil
}

func (s *maStream) latency() (float64, error) {
	return s.softwareLatency, nil
}

func (s *maStream) close() {
	if s.closing.Swap(true) {
		return
	}
	s.device.Uninit()
}

func (s *maStream) window(areas []ChannelArea, frameCount int) (int, error) {
	if frameCount <= 0 {
		return 0, ErrInvalid
	}
	n := min(frameCount, len(s.buf)/s.bytesPerFrame-s.done)
	start := s.done * s.bytesPerFrame
	end := start + n*s.bytesPerFrame
	for ch := range areas {
		areas[ch] = ChannelArea{
			Data: s.buf[min(start+ch*s.bytesPerSample, end):end],
			Step: s.bytesPerFrame,
		}
	}
	s.granted = n
	return n, nil
}

type maOutStream struct {
	maStream
	ev outStreamEvents
}

func (s *maOutStream) data(out, _ []byte, frameCount uint32) {
	if s.paused.Load() {
		clear(out)
		return
	}
	s.buf, s.done = out, 0
	n := int(frameCount)
	s.ev.dispatch(n, n)
	if s.done < n {
		clear(out[s.done*s.bytesPerFrame:])
		s.ev.underflow()
	}
	s.buf = nil
}

func (s *maOutStream) stopped() {
	if !s.closing.Load() {
		s.ev.fail(ErrStreaming)
	}
}

func (s *maOutStream) clearBuffer() error {
	return ErrIncompatibleBackend
}

func (s *maOutStream) beginWrite(areas []ChannelArea, frameCount int) (int, error) {
	return s.window(areas, frameCount)
}

func (s *maOutStream) endWrite() error {
	s.done += s.granted
	s.granted = 0
	return nil
}

type maInStream struct {
	maStream
	ev inStreamEvents
}

func (s *maInStream) data(_, in []byte, frameCount uint32) {
	if s.paused.Load() {
		return
	}
	s.buf, s.done = in, 0
	n := int(frameCount)
	s.ev.dispatch(n, n)
	if s.done < n {
		s.ev.overflow()
	}
	s.buf = nil
}

func (s *maInStream) stopped() {
	if !s.closing.Load() {
		s.ev.fail(ErrStreaming)
	}
}

func (s *maInStream) beginRead(areas []ChannelArea, frameCount int) (int, error) {
	return s.window(areas, frameCount)
}

func (s *maInStream) endRead() error {
	s.done += s.granted
	s.granted = 0
	return nil
}
