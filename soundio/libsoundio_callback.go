//go:build cgo && libsoundio

package soundio

/*
#cgo pkg-config: libsoundio
#include <soundio/soundio.h>
#include <stdlib.h>

// Forward declarations of the Go side of the trampolines
extern void goDevicesChange(long connId);
extern void goBackendDisconnect(long connId, int err);
extern void goEventsSignal(long connId);
extern void goWriteCallback(long streamId, int frameCountMin, int frameCountMax);
extern void goUnderflowCallback(long streamId);
extern void goOutStreamError(long streamId, int err);
extern void goReadCallback(long streamId, int frameCountMin, int frameCountMax);
extern void goOverflowCallback(long streamId);
extern void goInStreamError(long streamId, int err);

// userdata always points to a malloc'd long holding a registry id
static void onDevicesChange(struct SoundIo *soundio) {
    goDevicesChange(*(long*)soundio->userdata);
}

static void onBackendDisconnect(struct SoundIo *soundio, int err) {
    goBackendDisconnect(*(long*)soundio->userdata, err);
}

static void onEventsSignal(struct SoundIo *soundio) {
    goEventsSignal(*(long*)soundio->userdata);
}

static void writeCallback(struct SoundIoOutStream *os, int frameCountMin, int frameCountMax) {
    goWriteCallback(*(long*)os->userdata, frameCountMin, frameCountMax);
}

static void underflowCallback(struct SoundIoOutStream *os) {
    goUnderflowCallback(*(long*)os->userdata);
}

static void outStreamErrorCallback(struct SoundIoOutStream *os, int err) {
    goOutStreamError(*(long*)os->userdata, err);
}

static void readCallback(struct SoundIoInStream *is, int frameCountMin, int frameCountMax) {
    goReadCallback(*(long*)is->userdata, frameCountMin, frameCountMax);
}

static void overflowCallback(struct SoundIoInStream *is) {
    goOverflowCallback(*(long*)is->userdata);
}

static void inStreamErrorCallback(struct SoundIoInStream *is, int err) {
    goInStreamError(*(long*)is->userdata, err);
}

static void installContextCallbacks(struct SoundIo *soundio, long *id) {
    soundio->userdata = id;
    soundio->on_devices_change = onDevicesChange;
    soundio->on_backend_disconnect = onBackendDisconnect;
    soundio->on_events_signal = onEventsSignal;
}

static void installOutStreamCallbacks(struct SoundIoOutStream *os, long *id) {
    os->userdata = id;
    os->write_callback = writeCallback;
    os->underflow_callback = underflowCallback;
    os->error_callback = outStreamErrorCallback;
}

static void installInStreamCallbacks(struct SoundIoInStream *is, long *id) {
    is->userdata = id;
    is->read_callback = readCallback;
    is->overflow_callback = overflowCallback;
    is->error_callback = inStreamErrorCallback;
}
*/
import "C"
import (
	"fmt"
	"sync"
	"unsafe"
)

// Registries map the ids handed to C as userdata back to Go values. Using
// integer ids instead of pointers avoids passing Go pointers to C.
var (
	registryMu     sync.RWMutex
	connRegistry   = make(map[int]*sioConn)
	streamRegistry = make(map[int]any)
	nextRegistryID = 1
)

// newRegistryID allocates an id and the C memory that carries it as
// userdata. The C memory avoids unsafe.Pointer(uintptr(id)), which fails
// checkptr under -race.
func newRegistryID() (int, *C.long) {
	id := nextRegistryID
	nextRegistryID++
	ptr := (*C.long)(C.malloc(C.size_t(unsafe.Sizeof(C.long(0)))))
	*ptr = C.long(id)
	return id, ptr
}

func registerConn(c *sioConn) (int, *C.long) {
	registryMu.Lock()
	defer registryMu.Unlock()
	id, ptr := newRegistryID()
	connRegistry[id] = c
	return id, ptr
}

func unregisterConn(id int, ptr *C.long) {
	registryMu.Lock()
	delete(connRegistry, id)
	registryMu.Unlock()
	C.free(unsafe.Pointer(ptr))
}

func lookupConn(id C.long) (*sioConn, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := connRegistry[int(id)]
	return c, ok
}

func registerStream(ev any) (int, *C.long) {
	registryMu.Lock()
	defer registryMu.Unlock()
	id, ptr := newRegistryID()
	streamRegistry[id] = ev
	return id, ptr
}

func unregisterStream(id int, ptr *C.long) {
	registryMu.Lock()
	delete(streamRegistry, id)
	registryMu.Unlock()
	C.free(unsafe.Pointer(ptr))
}

func lookupStream(id C.long) (any, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ev, ok := streamRegistry[int(id)]
	return ev, ok
}

func installContextCallbacks(sio *C.struct_SoundIo, id *C.long) {
	C.installContextCallbacks(sio, id)
}

func installOutStreamCallbacks(out *C.struct_SoundIoOutStream, id *C.long) {
	C.installOutStreamCallbacks(out, id)
}

func installInStreamCallbacks(in *C.struct_SoundIoInStream, id *C.long) {
	C.installInStreamCallbacks(in, id)
}

// A panic must not unwind into C. Anything that escapes the stream's own
// recovery is logged and dropped.
func recoverBridge(where string, id C.long) {
	if r := recover(); r != nil {
		packageLogger().Error("soundio: panic in "+where, "id", int(id), "panic", fmt.Sprint(r))
	}
}

//export goDevicesChange
func goDevicesChange(connID C.long) {
	defer recoverBridge("devices change", connID)
	if c, ok := lookupConn(connID); ok {
		c.devicesChanged.Store(true)
	}
}

//export goBackendDisconnect
func goBackendDisconnect(connID C.long, err C.int) {
	defer recoverBridge("backend disconnect", connID)
	if c, ok := lookupConn(connID); ok {
		c.hub.disconnected(errorFromCode(int(err)))
	}
}

//export goEventsSignal
func goEventsSignal(connID C.long) {
	defer recoverBridge("events signal", connID)
	if c, ok := lookupConn(connID); ok {
		c.hub.signal()
	}
}

//export goWriteCallback
func goWriteCallback(streamID C.long, frameCountMin, frameCountMax C.int) {
	defer recoverBridge("write callback", streamID)
	if ev, ok := lookupStream(streamID); ok {
		ev.(outStreamEvents).dispatch(int(frameCountMin), int(frameCountMax))
	}
}

//export goUnderflowCallback
func goUnderflowCallback(streamID C.long) {
	defer recoverBridge("underflow callback", streamID)
	if ev, ok := lookupStream(streamID); ok {
		ev.(outStreamEvents).underflow()
	}
}

//export goOutStreamError
func goOutStreamError(streamID C.long, err C.int) {
	defer recoverBridge("outstream error callback", streamID)
	if ev, ok := lookupStream(streamID); ok {
		ev.(outStreamEvents).fail(errorFromCode(int(err)))
	}
}

//export goReadCallback
func goReadCallback(streamID C.long, frameCountMin, frameCountMax C.int) {
	defer recoverBridge("read callback", streamID)
	if ev, ok := lookupStream(streamID); ok {
		ev.(inStreamEvents).dispatch(int(frameCountMin), int(frameCountMax))
	}
}

//export goOverflowCallback
func goOverflowCallback(streamID C.long) {
	defer recoverBridge("overflow callback", streamID)
	if ev, ok := lookupStream(streamID); ok {
		ev.(inStreamEvents).overflow()
	}
}

//export goInStreamError
func goInStreamError(streamID C.long, err C.int) {
	defer recoverBridge("instream error callback", streamID)
	if ev, ok := lookupStream(streamID); ok {
		ev.(inStreamEvents).fail(errorFromCode(int(err)))
	}
}
