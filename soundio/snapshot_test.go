package soundio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countedDevices returns a snapshot whose release bumps *released, standing
// in for a backend that holds a handle per device.
func countedDevices(released *int) *devicesInfo {
	info := dummyDevices()
	for _, d := range info.outputs {
		d.handle = d.id
	}
	info.attach(newSnapshotRefs(func() { *released++ }))
	return info
}

func TestSnapshotRefsReleaseAfterSupersedeAndDrop(t *testing.T) {
	var released int
	r := newSnapshotRefs(func() { released++ })

	r.retain()
	r.retain()
	r.supersede()
	assert.Zero(t, released, "two devices still alive")

	r.drop()
	assert.Zero(t, released)
	r.drop()
	assert.Equal(t, 1, released)

	r.supersede()
	r.releaseNow()
	assert.Equal(t, 1, released, "released only once")
}

func TestSnapshotRefsCurrentSnapshotIsKept(t *testing.T) {
	var released int
	r := newSnapshotRefs(func() { released++ })

	r.retain()
	r.drop()
	assert.Zero(t, released, "not replaced yet")

	r.releaseNow()
	assert.Equal(t, 1, released)
}

func TestSnapshotRefsNil(t *testing.T) {
	var r *snapshotRefs
	assert.NotPanics(t, func() {
		r.retain()
		r.drop()
		r.supersede()
		r.releaseNow()
	})
}

func TestEventHubSupersedesReplacedSnapshots(t *testing.T) {
	h := newEventHub()

	var first, second, third int
	h.seed(countedDevices(&first))
	h.flush()

	// replaced before anyone flushed it
	h.publish(countedDevices(&second))
	h.publish(countedDevices(&third))
	assert.Equal(t, 1, second)
	assert.Zero(t, first)

	h.flush()
	assert.Equal(t, 1, first)
	assert.Zero(t, third)

	h.flush()
	assert.Zero(t, third, "flush without a new snapshot keeps the current one")

	h.reset()
	assert.Equal(t, 1, third)
}

func TestDeviceHoldsSnapshotUntilReleased(t *testing.T) {
	ctx := newDummyContext(t)

	var released int
	ctx.hub.publish(countedDevices(&released))
	ctx.FlushEvents()

	a, err := ctx.OutputDevice(0)
	require.NoError(t, err)
	b, err := ctx.DefaultOutputDevice()
	require.NoError(t, err)

	ctx.hub.publish(dummyDevices())
	ctx.FlushEvents()
	assert.Zero(t, released, "devices from the old list are alive")

	a.Release()
	a.Release()
	assert.Zero(t, released)

	b.Release()
	assert.Equal(t, 1, released)
}

func TestDisconnectReleasesCurrentSnapshot(t *testing.T) {
	ctx := newDummyContext(t)

	var released int
	ctx.hub.publish(countedDevices(&released))
	ctx.FlushEvents()

	dev, err := ctx.OutputDevice(0)
	require.NoError(t, err)
	t.Cleanup(dev.Release)

	ctx.Disconnect()
	assert.Zero(t, released, "a device still uses it")

	dev.Release()
	assert.Equal(t, 1, released)
}
