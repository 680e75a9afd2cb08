// Package soundio provides realtime audio input and output over a
// libsoundio-shaped engine: device enumeration, stream lifecycle and a
// begin/commit buffer protocol for the realtime read and write callbacks.
//
// # Quick Start
//
//	ctx := soundio.NewContext("my-app")
//	defer ctx.Close()
//
//	if err := ctx.Connect(); err != nil {
//	    log.Fatal(err)
//	}
//	ctx.FlushEvents()
//
//	dev, err := ctx.DefaultOutputDevice()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Release()
//
//	stream, err := dev.OpenOutStream(48000, soundio.FormatFloat32NE,
//	    soundio.BuiltinLayout(soundio.LayoutStereo), 0,
//	    soundio.OutStreamFuncs{Write: func(w *soundio.OutStreamWriter) {
//	        if err := w.BeginWrite(w.FrameCountMax()); err != nil {
//	            return
//	        }
//	        for frame := 0; frame < w.FrameCount(); frame++ {
//	            for ch := 0; ch < w.ChannelCount(); ch++ {
//	                soundio.SetSample(w, ch, frame, float32(0))
//	            }
//	        }
//	    }})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer stream.Close()
//	stream.Start()
//
// # Backends
//
// Every binary carries the Dummy backend, a pure Go engine that simulates one
// output and one input device. With cgo enabled the JACK, PulseAudio, ALSA,
// CoreAudio and WASAPI backends are provided by miniaudio. Building with the
// libsoundio tag replaces them with a binding to the native libsoundio
// library (pkg-config: libsoundio).
//
// # Ownership
//
// Devices and streams must not outlive their parent. A Context panics if it is
// closed while devices are unreleased or streams are open, a Device panics if
// it is released while its streams are open.
//
// # Thread Safety
//
// Wakeup and WaitEvents may be called from any goroutine. All other Context
// methods, and the Device and stream methods, are meant for one control
// goroutine.
//
// # Realtime Callbacks
//
// Write and read callbacks run on the engine's realtime thread. The writer
// and reader passed to them are pre-allocated per stream, so the begin, sample
// and commit path does not allocate. Callbacks must not block, allocate or do
// I/O. The window opened by BeginWrite or BeginRead is committed when the
// callback returns, including when it panics.
package soundio

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
)

const defaultAppName = "SoundIo"

// Version returns the version string of the engine in use.
func Version() string {
	return engineVersion()
}

// Context is a handle to the audio subsystem. It owns one backend connection
// and the device snapshot of that connection.
type Context struct {
	appName string
	logger  *slog.Logger
	hub     *eventHub

	// mu guards conn, backend and session; Wakeup and WaitEvents read conn
	// from other goroutines.
	mu      sync.Mutex
	conn    backendConn
	backend Backend
	session uint64

	liveDevices atomic.Int64
	openStreams atomic.Int64
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger used by the context and its streams.
func WithLogger(l *slog.Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDevicesChangeHandler is called from FlushEvents and WaitEvents when
// the device list changed. The default logs at debug level.
func WithDevicesChangeHandler(fn func()) Option {
	return func(c *Context) {
		c.hub.onDevicesChange = fn
	}
}

// WithBackendDisconnectHandler is called from FlushEvents and WaitEvents when
// the backend went away. The default logs a warning.
func WithBackendDisconnectHandler(fn func(error)) Option {
	return func(c *Context) {
		c.hub.onBackendDisconnect = fn
	}
}

// WithEventsSignalHandler is called, possibly from another goroutine,
// whenever WaitEvents would wake up.
func WithEventsSignalHandler(fn func()) Option {
	return func(c *Context) {
		c.hub.onEventsSignal = fn
	}
}

// NewContext creates an unconnected Context.
func NewContext(appName string, opts ...Option) *Context {
	c := &Context{
		logger: packageLogger(),
		hub:    newEventHub(),
	}
	c.SetAppName(appName)
	c.hub.onDevicesChange = func() {
		c.logger.Debug("soundio devices changed", "backend", c.CurrentBackend())
	}
	c.hub.onBackendDisconnect = func(err error) {
		c.logger.Warn("soundio backend disconnected", "backend", c.CurrentBackend(), "err", err)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetAppName sets the name backends show for this application. Colons are
// removed since some backends use them as separators. It takes effect on the
// next connect.
func (c *Context) SetAppName(name string) {
	name = strings.ReplaceAll(name, ":", "")
	if name == "" {
		name = defaultAppName
	}
	c.appName = name
}

func (c *Context) AppName() string {
	return c.appName
}

// AvailableBackends returns the backends compiled into this binary, in the
// order Connect tries them.
func (c *Context) AvailableBackends() []Backend {
	return availableBackends()
}

// Connect tries each available backend in priority order and stays on the
// first one that connects. If all fail the last error is returned.
func (c *Context) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return ErrInvalid
	}

	var err error = ErrBackendUnavailable
	for _, b := range availableBackends() {
		if err = c.connectLocked(b); err == nil {
			return nil
		}
		c.logger.Debug("soundio backend connect failed", "backend", b, "err", err)
	}
	return err
}

// ConnectBackend connects to one specific backend.
func (c *Context) ConnectBackend(b Backend) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return ErrInvalid
	}
	return c.connectLocked(b)
}

func (c *Context) connectLocked(b Backend) error {
	d, ok := lookupDriver(b)
	if !ok {
		return ErrBackendUnavailable
	}
	conn, err := d.connect(c.appName, c.hub)
	if err != nil {
		return err
	}
	c.conn = conn
	c.backend = b
	c.session++
	c.logger.Info("soundio connected", "backend", b, "app", c.appName)
	return nil
}

// Disconnect tears down the backend connection. Devices obtained from it
// keep their metadata but can no longer open streams. It panics if streams
// are still open and does nothing when not connected.
func (c *Context) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return
	}
	if n := c.openStreams.Load(); n > 0 {
		panic(fmt.Sprintf("soundio: Disconnect with %d open streams", n))
	}
	c.conn.disconnect()
	c.conn = nil
	c.logger.Info("soundio disconnected", "backend", c.backend)
	c.backend = BackendNone
	c.hub.reset()
}

// Close disconnects. It panics if devices are unreleased or streams are
// open.
func (c *Context) Close() error {
	if n := c.openStreams.Load(); n > 0 {
		panic(fmt.Sprintf("soundio: Context closed with %d open streams", n))
	}
	if n := c.liveDevices.Load(); n > 0 {
		panic(fmt.Sprintf("soundio: Context closed with %d unreleased devices", n))
	}
	c.Disconnect()
	return nil
}

// CurrentBackend returns BackendNone when not connected.
func (c *Context) CurrentBackend() Backend {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backend
}

func (c *Context) connection() (backendConn, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn, c.session
}

func (c *Context) mustConnection(op string) backendConn {
	conn, _ := c.connection()
	if conn == nil {
		panic("soundio: " + op + " on a disconnected Context")
	}
	return conn
}

// FlushEvents makes the latest device list visible and runs the devices
// changed and backend disconnected handlers. It must be called before any
// device enumeration and is cheap enough to call often.
func (c *Context) FlushEvents() {
	c.mustConnection("FlushEvents").flushEvents()
}

// WaitEvents flushes and then blocks until an event arrives or Wakeup is
// called. It may return spuriously.
func (c *Context) WaitEvents() {
	c.mustConnection("WaitEvents").waitEvents()
}

// Wakeup makes a blocked WaitEvents return. Safe from any goroutine.
func (c *Context) Wakeup() {
	if conn, _ := c.connection(); conn != nil {
		conn.wakeup()
		return
	}
	c.hub.wakeup()
}

// ForceDeviceScan asks the backend to rescan devices. The result shows up
// after a later flush. It must not be called from a stream callback.
func (c *Context) ForceDeviceScan() {
	c.mustConnection("ForceDeviceScan").forceDeviceScan()
}

func (c *Context) snapshot() *devicesInfo {
	info, ok := c.hub.snapshot()
	if !ok {
		panic("soundio: device enumeration before FlushEvents")
	}
	return info
}

func (c *Context) InputDeviceCount() int {
	return len(c.snapshot().inputs)
}

func (c *Context) OutputDeviceCount() int {
	return len(c.snapshot().outputs)
}

// InputDevice returns ErrOpeningDevice for an out of range index or for a
// device whose probe failed. The returned Device must be released.
func (c *Context) InputDevice(index int) (*Device, error) {
	return c.device(AimInput, index)
}

// OutputDevice is the output counterpart of InputDevice.
func (c *Context) OutputDevice(index int) (*Device, error) {
	return c.device(AimOutput, index)
}

func (c *Context) device(aim DeviceAim, index int) (*Device, error) {
	list := c.snapshot().list(aim)
	if index < 0 || index >= len(list) {
		return nil, ErrOpeningDevice
	}
	info := list[index]
	if info.probeErr != nil {
		return nil, ErrOpeningDevice
	}
	_, session := c.connection()
	return newDevice(c, info, session), nil
}

func (c *Context) DefaultInputDeviceIndex() (int, bool) {
	return c.defaultIndex(AimInput)
}

func (c *Context) DefaultOutputDeviceIndex() (int, bool) {
	return c.defaultIndex(AimOutput)
}

func (c *Context) defaultIndex(aim DeviceAim) (int, bool) {
	info := c.snapshot()
	i := info.defaultIndex(aim)
	if i < 0 || i >= len(info.list(aim)) {
		return -1, false
	}
	return i, true
}

// DefaultInputDevice returns ErrNoSuchDevice when the backend has no
// default input.
func (c *Context) DefaultInputDevice() (*Device, error) {
	i, ok := c.DefaultInputDeviceIndex()
	if !ok {
		return nil, ErrNoSuchDevice
	}
	return c.InputDevice(i)
}

func (c *Context) DefaultOutputDevice() (*Device, error) {
	i, ok := c.DefaultOutputDeviceIndex()
	if !ok {
		return nil, ErrNoSuchDevice
	}
	return c.OutputDevice(i)
}

// InputDevices returns every input device whose probe succeeded. Probe
// failures are joined into the returned error.
func (c *Context) InputDevices() ([]*Device, error) {
	return c.devices(AimInput)
}

func (c *Context) OutputDevices() ([]*Device, error) {
	return c.devices(AimOutput)
}

func (c *Context) devices(aim DeviceAim) ([]*Device, error) {
	list := c.snapshot().list(aim)
	_, session := c.connection()

	var errs []error
	devices := make([]*Device, 0, len(list))
	for _, info := range list {
		if info.probeErr != nil {
			errs = append(errs, fmt.Errorf("%s %q: %w", aim, info.name, info.probeErr))
			continue
		}
		devices = append(devices, newDevice(c, info, session))
	}
	return devices, errors.Join(errs...)
}

// FindDevice returns the device of the given aim whose ID is id, or the
// default device when id is empty. It returns ErrNoSuchDevice when nothing
// matches.
func (c *Context) FindDevice(aim DeviceAim, id string) (*Device, error) {
	if id == "" {
		if aim == AimInput {
			return c.DefaultInputDevice()
		}
		return c.DefaultOutputDevice()
	}
	for i, info := range c.snapshot().list(aim) {
		if info.id == id {
			return c.device(aim, i)
		}
	}
	return nil, ErrNoSuchDevice
}
