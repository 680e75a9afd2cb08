package soundio

import (
	"fmt"
	"strings"
)

// Format is the encoding of a single sample.
type Format int

const (
	FormatInvalid   Format = iota
	FormatS8               // Signed 8 bit
	FormatU8               // Unsigned 8 bit
	FormatS16LE            // Signed 16 bit Little Endian
	FormatS16BE            // Signed 16 bit Big Endian
	FormatU16LE            // Unsigned 16 bit Little Endian
	FormatU16BE            // Unsigned 16 bit Big Endian
	FormatS24LE            // Signed 24 bit Little Endian using low three bytes in 32-bit word
	FormatS24BE            // Signed 24 bit Big Endian using low three bytes in 32-bit word
	FormatU24LE            // Unsigned 24 bit Little Endian using low three bytes in 32-bit word
	FormatU24BE            // Unsigned 24 bit Big Endian using low three bytes in 32-bit word
	FormatS32LE            // Signed 32 bit Little Endian
	FormatS32BE            // Signed 32 bit Big Endian
	FormatU32LE            // Unsigned 32 bit Little Endian
	FormatU32BE            // Unsigned 32 bit Big Endian
	FormatFloat32LE        // Float 32 bit Little Endian, Range -1.0 to 1.0
	FormatFloat32BE        // Float 32 bit Big Endian, Range -1.0 to 1.0
	FormatFloat64LE        // Float 64 bit Little Endian, Range -1.0 to 1.0
	FormatFloat64BE        // Float 64 bit Big Endian, Range -1.0 to 1.0
)

var formatNames = [...]string{
	FormatInvalid:   "(invalid format)",
	FormatS8:        "signed 8-bit",
	FormatU8:        "unsigned 8-bit",
	FormatS16LE:     "signed 16-bit LE",
	FormatS16BE:     "signed 16-bit BE",
	FormatU16LE:     "unsigned 16-bit LE",
	FormatU16BE:     "unsigned 16-bit BE",
	FormatS24LE:     "signed 24-bit LE",
	FormatS24BE:     "signed 24-bit BE",
	FormatU24LE:     "unsigned 24-bit LE",
	FormatU24BE:     "unsigned 24-bit BE",
	FormatS32LE:     "signed 32-bit LE",
	FormatS32BE:     "signed 32-bit BE",
	FormatU32LE:     "unsigned 32-bit LE",
	FormatU32BE:     "unsigned 32-bit BE",
	FormatFloat32LE: "float 32-bit LE",
	FormatFloat32BE: "float 32-bit BE",
	FormatFloat64LE: "float 64-bit LE",
	FormatFloat64BE: "float 64-bit BE",
}

// short names accepted by ParseFormat, e.g. in config files
var formatShortNames = map[string]Format{
	"s8": FormatS8, "u8": FormatU8,
	"s16le": FormatS16LE, "s16be": FormatS16BE, "u16le": FormatU16LE, "u16be": FormatU16BE,
	"s24le": FormatS24LE, "s24be": FormatS24BE, "u24le": FormatU24LE, "u24be": FormatU24BE,
	"s32le": FormatS32LE, "s32be": FormatS32BE, "u32le": FormatU32LE, "u32be": FormatU32BE,
	"f32le": FormatFloat32LE, "f32be": FormatFloat32BE,
	"f64le": FormatFloat64LE, "f64be": FormatFloat64BE,
	"s16": FormatS16NE, "s24": FormatS24NE, "s32": FormatS32NE,
	"f32": FormatFloat32NE, "float32": FormatFloat32NE,
	"f64": FormatFloat64NE, "float64": FormatFloat64NE,
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return formatNames[FormatInvalid]
	}
	return formatNames[f]
}

// ParseFormat accepts short names ("s16le", "f32", ...) and the names
// returned by Format.String.
func ParseFormat(s string) (Format, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if f, ok := formatShortNames[key]; ok {
		return f, nil
	}
	for f, name := range formatNames {
		if f != int(FormatInvalid) && strings.EqualFold(name, s) {
			return Format(f), nil
		}
	}
	return FormatInvalid, fmt.Errorf("unknown sample format %q", s)
}

// BytesPerSample returns the size of one sample. 24-bit formats occupy a
// 32-bit word. Returns 0 for FormatInvalid.
func (f Format) BytesPerSample() int {
	switch f {
	case FormatS8, FormatU8:
		return 1
	case FormatS16LE, FormatS16BE, FormatU16LE, FormatU16BE:
		return 2
	case FormatS24LE, FormatS24BE, FormatU24LE, FormatU24BE,
		FormatS32LE, FormatS32BE, FormatU32LE, FormatU32BE,
		FormatFloat32LE, FormatFloat32BE:
		return 4
	case FormatFloat64LE, FormatFloat64BE:
		return 8
	default:
		return 0
	}
}

func (f Format) BytesPerFrame(channelCount int) int {
	return f.BytesPerSample() * channelCount
}

func (f Format) BytesPerSecond(channelCount, sampleRate int) int {
	return f.BytesPerSample() * channelCount * sampleRate
}

// allFormats lists every valid format, in enum order.
func allFormats() []Format {
	formats := make([]Format, 0, len(formatNames)-1)
	for f := FormatS8; f <= FormatFloat64BE; f++ {
		formats = append(formats, f)
	}
	return formats
}
