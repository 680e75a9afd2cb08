package soundio

import "sync"

// eventHub carries device snapshots and connection events from a backend to
// the Context. Backends publish from any goroutine; the Context only sees a
// new snapshot after a flush.
type eventHub struct {
	mu   sync.Mutex
	cond *sync.Cond

	pending *devicesInfo
	current *devicesInfo
	flushed bool

	disconnectErr error
	gen           uint64

	onDevicesChange     func()
	onBackendDisconnect func(error)
	onEventsSignal      func()
}

func newEventHub() *eventHub {
	h := &eventHub{}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// publish queues a new device snapshot.
func (h *eventHub) publish(info *devicesInfo) {
	h.mu.Lock()
	old := h.replacePending(info)
	h.gen++
	h.cond.Broadcast()
	h.mu.Unlock()
	old.supersede()
	h.signal()
}

// replacePending swaps in a new pending snapshot and returns the one it
// dropped, if that one was never flushed.
func (h *eventHub) replacePending(info *devicesInfo) *devicesInfo {
	old := h.pending
	h.pending = info
	if old == info || old == h.current {
		return nil
	}
	return old
}

// seed queues the first snapshot of a new connection. Unlike publish it does
// not signal, since it runs while the Context is connecting.
func (h *eventHub) seed(info *devicesInfo) {
	h.mu.Lock()
	old := h.replacePending(info)
	h.mu.Unlock()
	old.supersede()
}

// disconnected queues a backend disconnect. Only the first one sticks.
func (h *eventHub) disconnected(err error) {
	h.mu.Lock()
	if h.disconnectErr == nil {
		h.disconnectErr = err
	}
	h.gen++
	h.cond.Broadcast()
	h.mu.Unlock()
	h.signal()
}

func (h *eventHub) wakeup() {
	h.mu.Lock()
	h.gen++
	h.cond.Broadcast()
	h.mu.Unlock()
	h.signal()
}

func (h *eventHub) signal() {
	if fn := h.onEventsSignal; fn != nil {
		fn()
	}
}

// flush makes the pending snapshot current and runs the handlers for what
// changed. Handlers run without the lock held so they may call back into
// the Context. It returns the event generation it observed.
func (h *eventHub) flush() uint64 {
	h.mu.Lock()
	changed := h.pending != nil
	var replaced *devicesInfo
	if changed {
		if h.current != h.pending {
			replaced = h.current
		}
		h.current = h.pending
		h.pending = nil
	}
	h.flushed = true
	disconnectErr := h.disconnectErr
	h.disconnectErr = nil
	gen := h.gen
	h.mu.Unlock()

	replaced.supersede()
	if changed && h.onDevicesChange != nil {
		h.onDevicesChange()
	}
	if disconnectErr != nil && h.onBackendDisconnect != nil {
		h.onBackendDisconnect(disconnectErr)
	}
	return gen
}

// wait flushes and then blocks until something is published or wakeup is
// called. Callers must tolerate spurious returns.
func (h *eventHub) wait() {
	gen := h.flush()

	h.mu.Lock()
	for h.gen == gen {
		h.cond.Wait()
	}
	h.mu.Unlock()
}

// snapshot returns the current device snapshot. ok is false until the first
// flush after connecting.
func (h *eventHub) snapshot() (info *devicesInfo, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.flushed || h.current == nil {
		return nil, false
	}
	return h.current, true
}

// reset drops every snapshot, e.g. on disconnect.
func (h *eventHub) reset() {
	h.mu.Lock()
	pending, current := h.pending, h.current
	h.pending = nil
	h.current = nil
	h.flushed = false
	h.disconnectErr = nil
	h.mu.Unlock()

	if pending != current {
		pending.supersede()
	}
	current.supersede()
}
