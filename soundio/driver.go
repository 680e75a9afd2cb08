package soundio

// The engine boundary. Every backend implementation (the pure Go dummy
// engine, the miniaudio engines and the native libsoundio binding) satisfies
// these interfaces and registers itself from an init function.

// driver is a backend that can be connected to.
type driver interface {
	backend() Backend
	// connect establishes the connection and seeds hub with the first device
	// snapshot. The snapshot becomes visible on the next flush.
	connect(appName string, hub *eventHub) (backendConn, error)
}

// backendConn is a live connection to one backend.
type backendConn interface {
	flushEvents()
	waitEvents()
	// wakeup must be safe to call from any goroutine.
	wakeup()
	forceDeviceScan()
	disconnect()
	openOutStream(dev *deviceInfo, p *streamParams, ev outStreamEvents) (outStreamDriver, error)
	openInStream(dev *deviceInfo, p *streamParams, ev inStreamEvents) (inStreamDriver, error)
}

// outStreamEvents is how an engine calls back into an output stream. The
// engine never calls these concurrently for one stream.
type outStreamEvents interface {
	dispatch(frameCountMin, frameCountMax int)
	underflow()
	fail(err error)
}

type inStreamEvents interface {
	dispatch(frameCountMin, frameCountMax int)
	overflow()
	fail(err error)
}

type outStreamDriver interface {
	start() error
	pause(pause bool) error
	clearBuffer() error
	latency() (float64, error)
	// beginWrite fills areas, one per channel, and returns the granted
	// frame count.
	beginWrite(areas []ChannelArea, frameCount int) (int, error)
	endWrite() error
	// close returns once no further event can be delivered.
	close()
}

type inStreamDriver interface {
	start() error
	pause(pause bool) error
	latency() (float64, error)
	// beginRead fills areas and returns the granted frame count. A hole in
	// the input is reported by areas with nil Data.
	beginRead(areas []ChannelArea, frameCount int) (int, error)
	endRead() error
	close()
}

// deviceInfo is one entry of a backend's device snapshot. Snapshots are
// immutable once published.
type deviceInfo struct {
	id   string
	name string
	aim  DeviceAim
	raw  bool

	layouts       []ChannelLayout
	currentLayout ChannelLayout

	formats       []Format
	currentFormat Format

	sampleRates       []SampleRateRange
	sampleRateCurrent int

	latencyMin     float64
	latencyMax     float64
	latencyCurrent float64

	probeErr error

	// handle is private to the backend that produced the snapshot.
	handle any
	// refs is shared by every entry of the snapshot, nil when the backend
	// holds no references.
	refs *snapshotRefs
}

type devicesInfo struct {
	inputs        []*deviceInfo
	outputs       []*deviceInfo
	defaultInput  int // -1 when there is none
	defaultOutput int

	refs *snapshotRefs
}

func (di *devicesInfo) list(aim DeviceAim) []*deviceInfo {
	if aim == AimInput {
		return di.inputs
	}
	return di.outputs
}

func (di *devicesInfo) defaultIndex(aim DeviceAim) int {
	if aim == AimInput {
		return di.defaultInput
	}
	return di.defaultOutput
}

// streamParams carries the requested configuration into a driver. The driver
// overwrites the fields with what it actually negotiated.
type streamParams struct {
	name            string
	format          Format
	sampleRate      int
	layout          ChannelLayout
	softwareLatency float64

	// layoutErr is set when the stream opened but the layout could not be
	// applied.
	layoutErr error
}

func (p *streamParams) channelCount() int {
	return p.layout.ChannelCount()
}

func (p *streamParams) bytesPerFrame() int {
	return p.format.BytesPerFrame(p.layout.ChannelCount())
}
