//go:build !(cgo && libsoundio)

package soundio

// errorText is the string table of the Go engines, indexed by native code.
var errorText = [...]string{
	codeNone:                    "(no error)",
	int(ErrNoMem):               "out of memory",
	int(ErrInitAudioBackend):    "unable to initialize audio backend",
	int(ErrSystemResources):     "system resource not available",
	int(ErrOpeningDevice):       "unable to open device",
	int(ErrNoSuchDevice):        "no such device",
	int(ErrInvalid):             "invalid value",
	int(ErrBackendUnavailable):  "backend unavailable",
	int(ErrStreaming):           "unrecoverable streaming failure",
	int(ErrIncompatibleDevice):  "incompatible device",
	int(ErrNoSuchClient):        "no such client",
	int(ErrIncompatibleBackend): "incompatible backend",
	int(ErrBackendDisconnected): "backend disconnected",
	int(ErrInterrupted):         "interrupted; try again",
	int(ErrUnderflow):           "buffer underflow",
	int(ErrEncodingString):      "failed to encode string",
}

func engineStrError(code int) string {
	if code < 0 || code >= len(errorText) {
		return "(invalid error)"
	}
	return errorText[code]
}

func engineVersion() string {
	return "go-soundio 1.0.0"
}
