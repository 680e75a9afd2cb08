package soundio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSizes(t *testing.T) {
	tests := []struct {
		name           string
		format         Format
		bytesPerSample int
	}{
		{"Invalid", FormatInvalid, 0},
		{"S8", FormatS8, 1},
		{"U8", FormatU8, 1},
		{"S16LE", FormatS16LE, 2},
		{"U16BE", FormatU16BE, 2},
		{"S24LE", FormatS24LE, 4},
		{"U24BE", FormatU24BE, 4},
		{"S32LE", FormatS32LE, 4},
		{"Float32BE", FormatFloat32BE, 4},
		{"Float64LE", FormatFloat64LE, 8},
		{"OutOfRange", Format(99), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.bytesPerSample, tt.format.BytesPerSample())
			assert.Equal(t, tt.bytesPerSample*2, tt.format.BytesPerFrame(2))
			assert.Equal(t, tt.bytesPerSample*2*48000, tt.format.BytesPerSecond(2, 48000))
		})
	}
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "signed 16-bit LE", FormatS16LE.String())
	assert.Equal(t, "float 32-bit BE", FormatFloat32BE.String())
	assert.Equal(t, "(invalid format)", FormatInvalid.String())
	assert.Equal(t, "(invalid format)", Format(-3).String())
}

func TestNativeEndianAliases(t *testing.T) {
	pairs := [][2]Format{
		{FormatS16NE, FormatS16FE},
		{FormatS24NE, FormatS24FE},
		{FormatS32NE, FormatS32FE},
		{FormatFloat32NE, FormatFloat32FE},
		{FormatFloat64NE, FormatFloat64FE},
	}
	for _, p := range pairs {
		assert.NotEqual(t, p[0], p[1])
		assert.Equal(t, p[0].BytesPerSample(), p[1].BytesPerSample())
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"s16le", FormatS16LE, false},
		{"S16LE", FormatS16LE, false},
		{" f32 ", FormatFloat32NE, false},
		{"float64", FormatFloat64NE, false},
		{"u8", FormatU8, false},
		{"unsigned 24-bit BE", FormatU24BE, false},
		{"bogus", FormatInvalid, true},
		{"", FormatInvalid, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllFormats(t *testing.T) {
	formats := allFormats()
	assert.Len(t, formats, 18)
	assert.NotContains(t, formats, FormatInvalid)
	for _, f := range formats {
		assert.Positive(t, f.BytesPerSample(), f.String())
	}
}
