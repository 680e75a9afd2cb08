//go:build !(386 || amd64 || arm || arm64 || loong64 || mips64le || mipsle || ppc64le || riscv64 || wasm)

package soundio

// Native and foreign endian aliases for this architecture.
const (
	FormatS16NE     = FormatS16BE
	FormatU16NE     = FormatU16BE
	FormatS24NE     = FormatS24BE
	FormatU24NE     = FormatU24BE
	FormatS32NE     = FormatS32BE
	FormatU32NE     = FormatU32BE
	FormatFloat32NE = FormatFloat32BE
	FormatFloat64NE = FormatFloat64BE

	FormatS16FE     = FormatS16LE
	FormatU16FE     = FormatU16LE
	FormatS24FE     = FormatS24LE
	FormatU24FE     = FormatU24LE
	FormatS32FE     = FormatS32LE
	FormatU32FE     = FormatU32LE
	FormatFloat32FE = FormatFloat32LE
	FormatFloat64FE = FormatFloat64LE
)
