//go:build 386 || amd64 || arm || arm64 || loong64 || mips64le || mipsle || ppc64le || riscv64 || wasm

package soundio

// Native and foreign endian aliases for this architecture.
const (
	FormatS16NE     = FormatS16LE
	FormatU16NE     = FormatU16LE
	FormatS24NE     = FormatS24LE
	FormatU24NE     = FormatU24LE
	FormatS32NE     = FormatS32LE
	FormatU32NE     = FormatU32LE
	FormatFloat32NE = FormatFloat32LE
	FormatFloat64NE = FormatFloat64LE

	FormatS16FE     = FormatS16BE
	FormatU16FE     = FormatU16BE
	FormatS24FE     = FormatS24BE
	FormatU24FE     = FormatU24BE
	FormatS32FE     = FormatS32BE
	FormatU32FE     = FormatU32BE
	FormatFloat32FE = FormatFloat32BE
	FormatFloat64FE = FormatFloat64BE
)
