package soundio

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deviceWithRates(rates ...SampleRateRange) *Device {
	return &Device{info: &deviceInfo{sampleRates: rates}}
}

func TestNearestSampleRate(t *testing.T) {
	discrete := deviceWithRates(
		SampleRateRange{44100, 44100},
		SampleRateRange{48000, 48000},
		SampleRateRange{96000, 96000},
	)
	ranged := deviceWithRates(SampleRateRange{8000, 48000})

	tests := []struct {
		name string
		dev  *Device
		rate int
		want int
	}{
		{"ExactDiscrete", discrete, 48000, 48000},
		{"PrefersAbove", discrete, 44000, 44100},
		{"PrefersAboveOverCloserBelow", discrete, 50000, 96000},
		{"NothingAbove", discrete, 100000, 96000},
		{"InsideRange", ranged, 22050, 22050},
		{"BelowRange", ranged, 4000, 8000},
		{"AboveRange", ranged, 96000, 48000},
		{"NoRates", deviceWithRates(), 48000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dev.NearestSampleRate(tt.rate))
		})
	}
}

func TestNearestSampleRateIsSupported(t *testing.T) {
	dev := deviceWithRates(
		SampleRateRange{11025, 11025},
		SampleRateRange{16000, 24000},
		SampleRateRange{44100, 48000},
		SampleRateRange{192000, 192000},
	)

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		rate := r.Intn(400000)
		got := dev.NearestSampleRate(rate)
		require.True(t, dev.SupportsSampleRate(got), "rate %d gave %d", rate, got)
		if dev.SupportsSampleRate(rate) {
			require.Equal(t, rate, got)
		}
	}
}

func TestDummyDeviceMetadata(t *testing.T) {
	ctx := newDummyContext(t)
	out := dummyOutput(t, ctx)
	in := dummyInput(t, ctx)

	assert.Equal(t, AimOutput, out.Aim())
	assert.Equal(t, AimInput, in.Aim())
	assert.Equal(t, "dummy-out", out.ID())
	assert.False(t, out.IsRaw())
	assert.Equal(t, BackendDummy, out.Backend())
	assert.NoError(t, out.ProbeError())
	assert.Contains(t, out.String(), "dummy-out")

	assert.True(t, out.SupportsFormat(FormatS16LE))
	assert.False(t, out.SupportsFormat(FormatInvalid))
	assert.True(t, out.SupportsLayout(BuiltinLayout(Layout7Point1)))
	assert.False(t, out.SupportsLayout(ChannelLayout{Channels: []ChannelID{ChannelAux0}}))
	assert.True(t, out.SupportsSampleRate(44100))
	assert.False(t, out.SupportsSampleRate(MaxSampleRate+1))
	assert.Equal(t, 48000, out.SampleRateCurrent())
	assert.Equal(t, FormatFloat32NE, out.CurrentFormat())
	assert.Equal(t, "Stereo", out.CurrentLayout().Name)

	assert.Less(t, out.SoftwareLatencyMin(), out.SoftwareLatencyMax())
	assert.InDelta(t, 0.1, out.SoftwareLatencyCurrent(), 1e-9)
}

func TestDeviceEqual(t *testing.T) {
	ctx := newDummyContext(t)
	a := dummyOutput(t, ctx)
	b := dummyOutput(t, ctx)
	in := dummyInput(t, ctx)

	assert.NotSame(t, a, b)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(in))
}

func TestSortChannelLayoutsIsPerDevice(t *testing.T) {
	ctx := newDummyContext(t)
	a := dummyOutput(t, ctx)
	b := dummyOutput(t, ctx)

	a.SortChannelLayouts()

	layouts := a.Layouts()
	for i := 1; i < len(layouts); i++ {
		assert.GreaterOrEqual(t, layouts[i-1].ChannelCount(), layouts[i].ChannelCount())
	}
	assert.Equal(t, 8, layouts[0].ChannelCount())
	assert.Equal(t, "Mono", b.Layouts()[0].Name)
}

func TestDeviceAccessorsReturnCopies(t *testing.T) {
	ctx := newDummyContext(t)
	dev := dummyOutput(t, ctx)

	dev.Layouts()[0].Channels[0] = ChannelAux0
	dev.Formats()[0] = FormatInvalid

	assert.Equal(t, ChannelFrontCenter, dev.Layouts()[0].Channels[0])
	assert.Equal(t, FormatS8, dev.Formats()[0])
}

func TestReleasedDevicePanics(t *testing.T) {
	ctx := newDummyContext(t)
	dev, err := ctx.DefaultOutputDevice()
	require.NoError(t, err)

	dev.Release()
	dev.Release()

	assert.Panics(t, func() {
		dev.OpenOutStream(0, FormatInvalid, ChannelLayout{}, 0, OutStreamFuncs{Write: func(*OutStreamWriter) {}})
	})
}

func TestDeviceAimString(t *testing.T) {
	assert.Equal(t, "input", AimInput.String())
	assert.Equal(t, "output", AimOutput.String())
	assert.Equal(t, "(invalid aim)", DeviceAim(7).String())
}
