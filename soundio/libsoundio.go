//go:build cgo && libsoundio

package soundio

/*
#cgo pkg-config: libsoundio
#include <soundio/soundio.h>
#include <stdlib.h>
*/
import "C"
import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// The native binding. It replaces the miniaudio backends and the Go error
// table; the Go dummy backend stays available next to it.

func init() {
	for _, b := range []Backend{BackendJack, BackendPulseAudio, BackendAlsa, BackendCoreAudio, BackendWasapi} {
		if C.soundio_have_backend(C.enum_SoundIoBackend(b)) {
			registerDriver(sioDriver{b: b})
		}
	}
}

func engineStrError(code int) string {
	return C.GoString(C.soundio_strerror(C.int(code)))
}

func engineVersion() string {
	return "libsoundio " + C.GoString(C.soundio_version_string())
}

type sioDriver struct {
	b Backend
}

func (d sioDriver) backend() Backend {
	return d.b
}

func (d sioDriver) connect(appName string, hub *eventHub) (backendConn, error) {
	sio := C.soundio_create()
	if sio == nil {
		return nil, ErrNoMem
	}
	c := &sioConn{sio: sio, hub: hub, appName: C.CString(appName)}
	sio.app_name = c.appName
	c.id, c.idPtr = registerConn(c)
	installContextCallbacks(sio, c.idPtr)

	if code := C.soundio_connect_backend(sio, C.enum_SoundIoBackend(d.b)); code != 0 {
		c.destroy()
		return nil, errorFromCode(int(code))
	}
	return c, nil
}

// sioConn owns one struct SoundIo. Each snapshot keeps its own device
// references; they are dropped once the snapshot is replaced and no Device
// built from it is alive, or at disconnect.
type sioConn struct {
	sio     *C.struct_SoundIo
	hub     *eventHub
	appName *C.char
	id      int
	idPtr   *C.long

	// set by the devices change callback during a flush
	devicesChanged atomic.Bool

	mu    sync.Mutex // guards snaps; WaitEvents may run on another goroutine
	snaps map[*snapshotRefs]struct{}
}

func (c *sioConn) flushEvents() {
	C.soundio_flush_events(c.sio)
	c.publishIfChanged()
	c.hub.flush()
}

func (c *sioConn) waitEvents() {
	c.flushEvents()
	C.soundio_wait_events(c.sio)
	c.publishIfChanged()
}

func (c *sioConn) wakeup() {
	C.soundio_wakeup(c.sio)
}

func (c *sioConn) forceDeviceScan() {
	C.soundio_force_device_scan(c.sio)
}

func (c *sioConn) disconnect() {
	C.soundio_disconnect(c.sio)
	c.destroy()
}

func (c *sioConn) destroy() {
	c.mu.Lock()
	snaps := make([]*snapshotRefs, 0, len(c.snaps))
	for r := range c.snaps {
		snaps = append(snaps, r)
	}
	c.mu.Unlock()
	// release takes c.mu
	for _, r := range snaps {
		r.releaseNow()
	}
	C.soundio_destroy(c.sio)
	unregisterConn(c.id, c.idPtr)
	C.free(unsafe.Pointer(c.appName))
}

func (c *sioConn) publishIfChanged() {
	if !c.devicesChanged.Swap(false) {
		return
	}
	c.hub.seed(c.snapshot())
}

func (c *sioConn) snapshot() *devicesInfo {
	var held []*C.struct_SoundIoDevice
	info := &devicesInfo{
		defaultInput:  int(C.soundio_default_input_device_index(c.sio)),
		defaultOutput: int(C.soundio_default_output_device_index(c.sio)),
	}
	for i := 0; i < int(C.soundio_input_device_count(c.sio)); i++ {
		if d := C.soundio_get_input_device(c.sio, C.int(i)); d != nil {
			held = append(held, d)
			info.inputs = append(info.inputs, convertDevice(d, AimInput))
		}
	}
	for i := 0; i < int(C.soundio_output_device_count(c.sio)); i++ {
		if d := C.soundio_get_output_device(c.sio, C.int(i)); d != nil {
			held = append(held, d)
			info.outputs = append(info.outputs, convertDevice(d, AimOutput))
		}
	}

	var refs *snapshotRefs
	refs = newSnapshotRefs(func() {
		c.mu.Lock()
		delete(c.snaps, refs)
		c.mu.Unlock()
		for _, d := range held {
			C.soundio_device_unref(d)
		}
	})
	c.mu.Lock()
	if c.snaps == nil {
		c.snaps = make(map[*snapshotRefs]struct{})
	}
	c.snaps[refs] = struct{}{}
	c.mu.Unlock()

	info.attach(refs)
	return info
}

func convertDevice(d *C.struct_SoundIoDevice, aim DeviceAim) *deviceInfo {
	di := &deviceInfo{
		id:                C.GoString(d.id),
		name:              C.GoString(d.name),
		aim:               aim,
		raw:               bool(d.is_raw),
		currentLayout:     convertLayout(&d.current_layout),
		currentFormat:     Format(d.current_format),
		sampleRateCurrent: int(d.sample_rate_current),
		latencyMin:        float64(d.software_latency_min),
		latencyMax:        float64(d.software_latency_max),
		latencyCurrent:    float64(d.software_latency_current),
		handle:            d,
	}
	if d.probe_error != 0 {
		di.probeErr = errorFromCode(int(d.probe_error))
	}
	for _, l := range unsafe.Slice(d.layouts, int(d.layout_count)) {
		di.layouts = append(di.layouts, convertLayout(&l))
	}
	for _, f := range unsafe.Slice(d.formats, int(d.format_count)) {
		di.formats = append(di.formats, Format(f))
	}
	for _, r := range unsafe.Slice(d.sample_rates, int(d.sample_rate_count)) {
		di.sampleRates = append(di.sampleRates, SampleRateRange{Min: int(r.min), Max: int(r.max)})
	}
	return di
}

func convertLayout(l *C.struct_SoundIoChannelLayout) ChannelLayout {
	layout := ChannelLayout{Channels: make([]ChannelID, int(l.channel_count))}
	if l.name != nil {
		layout.Name = C.GoString(l.name)
	}
	for i := range layout.Channels {
		layout.Channels[i] = ChannelID(l.channels[i])
	}
	return layout
}

func toCLayout(l ChannelLayout) C.struct_SoundIoChannelLayout {
	var cl C.struct_SoundIoChannelLayout
	cl.channel_count = C.int(len(l.Channels))
	for i, ch := range l.Channels {
		cl.channels[i] = C.enum_SoundIoChannelId(ch)
	}
	return cl
}

// fillAreas exposes the native areas. A nil areas pointer is a hole.
func fillAreas(areas []ChannelArea, native *C.struct_SoundIoChannelArea, frameCount, bytesPerSample int) {
	if native == nil {
		for i := range areas {
			areas[i] = ChannelArea{}
		}
		return
	}
	for i, a := range unsafe.Slice(native, len(areas)) {
		step := int(a.step)
		size := 0
		if frameCount > 0 {
			size = (frameCount-1)*step + bytesPerSample
		}
		areas[i] = ChannelArea{
			Data: unsafe.Slice((*byte)(unsafe.Pointer(a.ptr)), size),
			Step: step,
		}
	}
}

// negotiated copies back what libsoundio settled on during open.
func negotiated(p *streamParams, format C.enum_SoundIoFormat, rate C.int, layout *C.struct_SoundIoChannelLayout, latency C.double, layoutErr C.int) {
	p.format = Format(format)
	p.sampleRate = int(rate)
	p.layout = convertLayout(layout)
	p.layout.DetectBuiltin()
	p.softwareLatency = float64(latency)
	if layoutErr != 0 {
		p.layoutErr = errorFromCode(int(layoutErr))
	}
}

func (c *sioConn) openOutStream(dev *deviceInfo, p *streamParams, ev outStreamEvents) (outStreamDriver, error) {
	d, ok := dev.handle.(*C.struct_SoundIoDevice)
	if !ok {
		return nil, ErrInvalid
	}
	out := C.soundio_outstream_create(d)
	if out == nil {
		return nil, ErrNoMem
	}
	s := &sioOutStream{out: out, name: C.CString(p.name), bytesPerSample: p.format.BytesPerSample()}
	out.name = s.name
	out.format = C.enum_SoundIoFormat(p.format)
	out.sample_rate = C.int(p.sampleRate)
	out.layout = toCLayout(p.layout)
	out.software_latency = C.double(p.softwareLatency)
	s.id, s.idPtr = registerStream(ev)
	installOutStreamCallbacks(out, s.idPtr)

	if code := C.soundio_outstream_open(out); code != 0 {
		s.close()
		return nil, errorFromCode(int(code))
	}
	negotiated(p, out.format, out.sample_rate, &out.layout, out.software_latency, out.layout_error)
	s.bytesPerSample = p.format.BytesPerSample()
	return s, nil
}

func (c *sioConn) openInStream(dev *deviceInfo, p *streamParams, ev inStreamEvents) (inStreamDriver, error) {
	d, ok := dev.handle.(*C.struct_SoundIoDevice)
	if !ok {
		return nil, ErrInvalid
	}
	in := C.soundio_instream_create(d)
	if in == nil {
		return nil, ErrNoMem
	}
	s := &sioInStream{in: in, name: C.CString(p.name), bytesPerSample: p.format.BytesPerSample()}
	in.name = s.name
	in.format = C.enum_SoundIoFormat(p.format)
	in.sample_rate = C.int(p.sampleRate)
	in.layout = toCLayout(p.layout)
	in.software_latency = C.double(p.softwareLatency)
	s.id, s.idPtr = registerStream(ev)
	installInStreamCallbacks(in, s.idPtr)

	if code := C.soundio_instream_open(in); code != 0 {
		s.close()
		return nil, errorFromCode(int(code))
	}
	negotiated(p, in.format, in.sample_rate, &in.layout, in.software_latency, in.layout_error)
	s.bytesPerSample = p.format.BytesPerSample()
	return s, nil
}

type sioOutStream struct {
	out            *C.struct_SoundIoOutStream
	name           *C.char
	id             int
	idPtr          *C.long
	bytesPerSample int
}

func (s *sioOutStream) start() error {
	return ErrorFromCode(int(C.soundio_outstream_start(s.out)))
}

func (s *sioOutStream) pause(pause bool) error {
	return ErrorFromCode(int(C.soundio_outstream_pause(s.out, C.bool(pause))))
}

func (s *sioOutStream) clearBuffer() error {
	return ErrorFromCode(int(C.soundio_outstream_clear_buffer(s.out)))
}

func (s *sioOutStream) latency() (float64, error) {
	var l C.double
	if code := C.soundio_outstream_get_latency(s.out, &l); code != 0 {
		return 0, errorFromCode(int(code))
	}
	return float64(l), nil
}

func (s *sioOutStream) beginWrite(areas []ChannelArea, frameCount int) (int, error) {
	var native *C.struct_SoundIoChannelArea
	n := C.int(frameCount)
	if code := C.soundio_outstream_begin_write(s.out, &native, &n); code != 0 {
		return 0, errorFromCode(int(code))
	}
	fillAreas(areas, native, int(n), s.bytesPerSample)
	return int(n), nil
}

func (s *sioOutStream) endWrite() error {
	return ErrorFromCode(int(C.soundio_outstream_end_write(s.out)))
}

// close returns after libsoundio guarantees no further callback.
func (s *sioOutStream) close() {
	if s.out == nil {
		return
	}
	C.soundio_outstream_destroy(s.out)
	s.out = nil
	unregisterStream(s.id, s.idPtr)
	C.free(unsafe.Pointer(s.name))
}

type sioInStream struct {
	in             *C.struct_SoundIoInStream
	name           *C.char
	id             int
	idPtr          *C.long
	bytesPerSample int
}

func (s *sioInStream) start() error {
	return ErrorFromCode(int(C.soundio_instream_start(s.in)))
}

func (s *sioInStream) pause(pause bool) error {
	return ErrorFromCode(int(C.soundio_instream_pause(s.in, C.bool(pause))))
}

func (s *sioInStream) latency() (float64, error) {
	var l C.double
	if code := C.soundio_instream_get_latency(s.in, &l); code != 0 {
		return 0, errorFromCode(int(code))
	}
	return float64(l), nil
}

func (s *sioInStream) beginRead(areas []ChannelArea, frameCount int) (int, error) {
	var native *C.struct_SoundIoChannelArea
	n := C.int(frameCount)
	if code := C.soundio_instream_begin_read(s.in, &native, &n); code != 0 {
		return 0, errorFromCode(int(code))
	}
	fillAreas(areas, native, int(n), s.bytesPerSample)
	return int(n), nil
}

func (s *sioInStream) endRead() error {
	return ErrorFromCode(int(C.soundio_instream_end_read(s.in)))
}

func (s *sioInStream) close() {
	if s.in == nil {
		return
	}
	C.soundio_instream_destroy(s.in)
	s.in = nil
	unregisterStream(s.id, s.idPtr)
	C.free(unsafe.Pointer(s.name))
}
