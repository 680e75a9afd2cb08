package soundio

import (
	"fmt"
	"strings"
	"sync"
)

// Backend identifies an OS audio subsystem the engine can connect to.
type Backend int

const (
	BackendNone Backend = iota
	BackendJack
	BackendPulseAudio
	BackendAlsa
	BackendCoreAudio
	BackendWasapi
	BackendDummy
)

var backendNames = [...]string{
	BackendNone:       "(none)",
	BackendJack:       "JACK",
	BackendPulseAudio: "PulseAudio",
	BackendAlsa:       "ALSA",
	BackendCoreAudio:  "CoreAudio",
	BackendWasapi:     "WASAPI",
	BackendDummy:      "Dummy",
}

func (b Backend) String() string {
	if b < 0 || int(b) >= len(backendNames) {
		return "(invalid backend)"
	}
	return backendNames[b]
}

// ParseBackend returns the backend whose name matches s, ignoring case.
func ParseBackend(s string) (Backend, error) {
	for b, name := range backendNames {
		if strings.EqualFold(name, s) {
			return Backend(b), nil
		}
	}
	if strings.EqualFold(s, "none") || s == "" {
		return BackendNone, nil
	}
	return BackendNone, fmt.Errorf("unknown backend %q", s)
}

// backendPriority is the order Connect tries backends in.
var backendPriority = []Backend{
	BackendJack,
	BackendPulseAudio,
	BackendAlsa,
	BackendCoreAudio,
	BackendWasapi,
	BackendDummy,
}

var (
	// drivers holds the engine implementations compiled into this binary
	drivers   = make(map[Backend]driver)
	driversMu sync.RWMutex
)

// registerDriver makes a backend available. It is called from init functions
// of the engine implementations.
func registerDriver(d driver) {
	driversMu.Lock()
	defer driversMu.Unlock()

	if _, dup := drivers[d.backend()]; dup {
		panic("soundio: driver registered twice for " + d.backend().String())
	}
	drivers[d.backend()] = d
}

func lookupDriver(b Backend) (driver, bool) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[b]
	return d, ok
}

// availableBackends returns the registered backends in priority order.
func availableBackends() []Backend {
	driversMu.RLock()
	defer driversMu.RUnlock()

	backends := make([]Backend, 0, len(drivers))
	for _, b := range backendPriority {
		if _, ok := drivers[b]; ok {
			backends = append(backends, b)
		}
	}
	return backends
}

// HaveBackend reports whether b was compiled into this binary.
func HaveBackend(b Backend) bool {
	_, ok := lookupDriver(b)
	return ok
}
