package soundio

import (
	"fmt"
	"slices"
	"sync/atomic"
)

// DeviceAim tells whether a device captures or plays audio.
type DeviceAim int

const (
	AimInput DeviceAim = iota
	AimOutput
)

func (a DeviceAim) String() string {
	switch a {
	case AimInput:
		return "input"
	case AimOutput:
		return "output"
	default:
		return "(invalid aim)"
	}
}

// Sample rate limits of the engine.
const (
	MinSampleRate = 8000
	MaxSampleRate = 5644800
)

// SampleRateRange is an inclusive range of supported sample rates.
type SampleRateRange struct {
	Min int
	Max int
}

func (r SampleRateRange) Contains(rate int) bool {
	return rate >= r.Min && rate <= r.Max
}

// Device describes one audio endpoint. Its metadata is a snapshot taken by
// the backend scan; it does not change when the device list does.
//
// A Device must be released before its Context is closed.
type Device struct {
	ctx     *Context
	info    *deviceInfo
	backend Backend
	session uint64

	// own copy so SortChannelLayouts does not touch the shared snapshot
	layouts []ChannelLayout

	openStreams atomic.Int64
	released    atomic.Bool
}

func newDevice(ctx *Context, info *deviceInfo, session uint64) *Device {
	d := &Device{
		ctx:     ctx,
		info:    info,
		backend: ctx.CurrentBackend(),
		session: session,
		layouts: make([]ChannelLayout, len(info.layouts)),
	}
	for i, l := range info.layouts {
		d.layouts[i] = l.clone()
	}
	ctx.liveDevices.Add(1)
	info.refs.retain()
	return d
}

// Release drops the reference to the device. The backend's handle for it is
// freed once the device list it came from has been replaced and no other
// Device still uses it. It is safe to call more than once. It panics if
// streams opened on the device are still open.
func (d *Device) Release() {
	if n := d.openStreams.Load(); n > 0 {
		panic(fmt.Sprintf("soundio: device %q released with %d open streams", d.info.name, n))
	}
	if d.released.CompareAndSwap(false, true) {
		d.ctx.liveDevices.Add(-1)
		d.info.refs.drop()
	}
}

// ID is the backend's opaque identifier. It is not guaranteed to be valid
// UTF-8.
func (d *Device) ID() string {
	return d.info.id
}

func (d *Device) Name() string {
	return d.info.name
}

func (d *Device) Aim() DeviceAim {
	return d.info.aim
}

// IsRaw reports whether the device is opened for exclusive hardware access,
// bypassing the system mixer.
func (d *Device) IsRaw() bool {
	return d.info.raw
}

// Layouts returns the supported channel layouts.
func (d *Device) Layouts() []ChannelLayout {
	layouts := make([]ChannelLayout, len(d.layouts))
	for i, l := range d.layouts {
		layouts[i] = l.clone()
	}
	return layouts
}

// CurrentLayout is only meaningful for raw devices.
func (d *Device) CurrentLayout() ChannelLayout {
	return d.info.currentLayout.clone()
}

func (d *Device) Formats() []Format {
	return slices.Clone(d.info.formats)
}

func (d *Device) CurrentFormat() Format {
	return d.info.currentFormat
}

func (d *Device) SampleRates() []SampleRateRange {
	return slices.Clone(d.info.sampleRates)
}

func (d *Device) SampleRateCurrent() int {
	return d.info.sampleRateCurrent
}

func (d *Device) SoftwareLatencyMin() float64 {
	return d.info.latencyMin
}

func (d *Device) SoftwareLatencyMax() float64 {
	return d.info.latencyMax
}

func (d *Device) SoftwareLatencyCurrent() float64 {
	return d.info.latencyCurrent
}

// ProbeError is the error hit while scanning the device, if any.
func (d *Device) ProbeError() error {
	return d.info.probeErr
}

// Backend returns the backend that produced the device.
func (d *Device) Backend() Backend {
	return d.backend
}

// Equal reports whether both refer to the same endpoint.
func (d *Device) Equal(other *Device) bool {
	return d.info.id == other.info.id && d.info.aim == other.info.aim && d.info.raw == other.info.raw
}

func (d *Device) String() string {
	raw := ""
	if d.info.raw {
		raw = " (raw)"
	}
	return fmt.Sprintf("%s%s [%s]", d.info.name, raw, d.info.id)
}

func (d *Device) SupportsFormat(f Format) bool {
	return slices.Contains(d.info.formats, f)
}

func (d *Device) SupportsLayout(l ChannelLayout) bool {
	return slices.ContainsFunc(d.layouts, l.Equal)
}

func (d *Device) SupportsSampleRate(rate int) bool {
	return slices.ContainsFunc(d.info.sampleRates, func(r SampleRateRange) bool {
		return r.Contains(rate)
	})
}

// NearestSampleRate returns rate if it is supported. Otherwise it prefers
// the closest supported rate above rate, falling back to the closest one
// below. It returns 0 when the device lists no rates.
func (d *Device) NearestSampleRate(rate int) int {
	best, bestDelta := -1, -1
	for _, r := range d.info.sampleRates {
		candidate := min(max(rate, r.Min), r.Max)
		if candidate == rate {
			return rate
		}
		delta := abs(candidate - rate)
		bestTooSmall := best < rate
		candidateTooSmall := candidate < rate
		if best == -1 ||
			(bestTooSmall && !candidateTooSmall) ||
			((bestTooSmall || !candidateTooSmall) && delta < bestDelta) {
			best, bestDelta = candidate, delta
		}
	}
	if best == -1 {
		return 0
	}
	return best
}

// SortChannelLayouts orders the device's layouts by descending channel
// count. Only this Device's copy is reordered.
func (d *Device) SortChannelLayouts() {
	SortLayouts(d.layouts)
}

func (d *Device) checkUsable() {
	if d.released.Load() {
		panic("soundio: use of a released device")
	}
}

// connection returns the backend connection the device belongs to, or nil if
// that connection is gone.
func (d *Device) connection() backendConn {
	conn, session := d.ctx.connection()
	if conn == nil || session != d.session {
		return nil
	}
	return conn
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
