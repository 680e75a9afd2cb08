package soundio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinLayouts(t *testing.T) {
	layouts := BuiltinLayouts()
	require.Len(t, layouts, 26)

	for i, l := range layouts {
		assert.NotEmpty(t, l.Name)
		assert.True(t, l.Equal(BuiltinLayout(ChannelLayoutID(i))))

		unnamed := ChannelLayout{Channels: l.Channels}
		require.True(t, unnamed.DetectBuiltin(), l.Name)
		// the first builtin with equal channels wins
		assert.Equal(t, unnamed.Name, layouts[indexOfLayout(layouts, l)].Name)
	}
}

func indexOfLayout(layouts []ChannelLayout, l ChannelLayout) int {
	for i, c := range layouts {
		if c.Equal(l) {
			return i
		}
	}
	return -1
}

func TestBuiltinLayoutIsACopy(t *testing.T) {
	l := BuiltinLayout(LayoutStereo)
	l.Channels[0] = ChannelAux0

	assert.Equal(t, ChannelFrontLeft, BuiltinLayout(LayoutStereo).Channels[0])
}

func TestBuiltinLayoutPanicsOnUnknownID(t *testing.T) {
	assert.Panics(t, func() { BuiltinLayout(-1) })
	assert.Panics(t, func() { BuiltinLayout(LayoutOctagonal + 1) })
}

func TestDefaultLayout(t *testing.T) {
	for n := 1; n <= 8; n++ {
		l, ok := DefaultLayout(n)
		require.True(t, ok, "channels %d", n)
		assert.Equal(t, n, l.ChannelCount())
	}

	_, ok := DefaultLayout(0)
	assert.False(t, ok)
	_, ok = DefaultLayout(9)
	assert.False(t, ok)
}

func TestLayoutEqualIgnoresName(t *testing.T) {
	a := BuiltinLayout(LayoutStereo)
	b := ChannelLayout{Name: "my stereo", Channels: []ChannelID{ChannelFrontLeft, ChannelFrontRight}}
	c := ChannelLayout{Channels: []ChannelID{ChannelFrontRight, ChannelFrontLeft}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestDetectBuiltinFails(t *testing.T) {
	l := ChannelLayout{Channels: []ChannelID{ChannelAux0, ChannelAux1}}

	assert.False(t, l.DetectBuiltin())
	assert.Empty(t, l.Name)
	assert.Equal(t, "AUX0, AUX1", l.String())
}

func TestFindChannel(t *testing.T) {
	l := BuiltinLayout(Layout5Point1)

	assert.Equal(t, 0, l.FindChannel(ChannelFrontLeft))
	assert.Equal(t, 5, l.FindChannel(ChannelLfe))
	assert.Equal(t, -1, l.FindChannel(ChannelBackCenter))
}

func TestChannelIDString(t *testing.T) {
	tests := []struct {
		id   ChannelID
		want string
	}{
		{ChannelFrontLeft, "Front Left"},
		{ChannelLfe, "LFE"},
		{ChannelAux, "AUX"},
		{ChannelAux3, "AUX3"},
		{ChannelAux15, "AUX15"},
		{ChannelInvalid, "(Invalid Channel)"},
		{ChannelAux15 + 1, "(Invalid Channel)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.id.String())
	}
}

func TestBestMatchingLayout(t *testing.T) {
	available := []ChannelLayout{BuiltinLayout(LayoutMono), BuiltinLayout(LayoutStereo)}

	got, ok := BestMatchingLayout([]ChannelLayout{BuiltinLayout(Layout5Point1), BuiltinLayout(LayoutStereo)}, available)
	require.True(t, ok)
	assert.Equal(t, "Stereo", got.Name)

	_, ok = BestMatchingLayout([]ChannelLayout{BuiltinLayout(LayoutQuad)}, available)
	assert.False(t, ok)
}

func TestSortLayouts(t *testing.T) {
	layouts := []ChannelLayout{
		BuiltinLayout(LayoutMono),
		BuiltinLayout(Layout3Point0),
		BuiltinLayout(Layout7Point1),
		BuiltinLayout(Layout3Point0Back),
		BuiltinLayout(LayoutStereo),
	}

	SortLayouts(layouts)

	var names []string
	for _, l := range layouts {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"7.1", "3.0", "3.0 (back)", "Stereo", "Mono"}, names)
}
