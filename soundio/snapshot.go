package soundio

import "sync"

// snapshotRefs holds the backend references behind one device snapshot.
// They are released once the snapshot has been replaced by a newer one and
// no Device built from it is alive, or when the connection goes away.
type snapshotRefs struct {
	mu         sync.Mutex
	live       int
	superseded bool
	released   bool
	release    func()
}

func newSnapshotRefs(release func()) *snapshotRefs {
	return &snapshotRefs{release: release}
}

// retain counts a Device built from the snapshot. A nil receiver is a
// snapshot without backend references.
func (r *snapshotRefs) retain() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.live++
	r.mu.Unlock()
}

// drop undoes retain.
func (r *snapshotRefs) drop() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.live--
	r.finishLocked()
}

// supersede marks the snapshot as no longer current.
func (r *snapshotRefs) supersede() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.superseded = true
	r.finishLocked()
}

// releaseNow releases the references regardless of live Devices. The
// connection calls it when it is destroyed.
func (r *snapshotRefs) releaseNow() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.superseded = true
	r.live = 0
	r.finishLocked()
}

// finishLocked unlocks r and runs release if the snapshot became unused.
func (r *snapshotRefs) finishLocked() {
	run := r.superseded && r.live <= 0 && !r.released
	if run {
		r.released = true
	}
	r.mu.Unlock()
	if run && r.release != nil {
		r.release()
	}
}

// attach makes every device of the snapshot share refs.
func (di *devicesInfo) attach(refs *snapshotRefs) {
	di.refs = refs
	for _, d := range di.inputs {
		d.refs = refs
	}
	for _, d := range di.outputs {
		d.refs = refs
	}
}

// supersede is called by the event hub when di stops being reachable.
func (di *devicesInfo) supersede() {
	if di != nil {
		di.refs.supersede()
	}
}
