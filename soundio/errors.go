package soundio

import "fmt"

// Error is a failure reported by the audio engine. The set is closed: every
// engine call either succeeds or returns exactly one of these values.
//
// Error values are comparable, so errors.Is works through wrapping:
//
//	if errors.Is(err, soundio.ErrUnderflow) { ... }
type Error int

const (
	// ErrNoMem means the engine ran out of memory.
	ErrNoMem Error = iota + 1
	// ErrInitAudioBackend means the backend does not appear to be active or running.
	ErrInitAudioBackend
	// ErrSystemResources means a system resource other than memory was not available.
	ErrSystemResources
	// ErrOpeningDevice means an attempt to open a device failed.
	ErrOpeningDevice
	ErrNoSuchDevice
	// ErrInvalid means the caller did not comply with the API.
	ErrInvalid
	// ErrBackendUnavailable means the engine was built without support for that backend.
	ErrBackendUnavailable
	// ErrStreaming means an open stream had an error that can only be recovered
	// from by closing the stream and opening it again.
	ErrStreaming
	// ErrIncompatibleDevice means the device cannot support the requested parameters.
	ErrIncompatibleDevice
	// ErrNoSuchClient is returned when JACK reports JackNoSuchClient.
	ErrNoSuchClient
	// ErrIncompatibleBackend means the backend cannot support the requested parameters.
	ErrIncompatibleBackend
	// ErrBackendDisconnected means the backend server shut down or became inactive.
	ErrBackendDisconnected
	ErrInterrupted
	// ErrUnderflow means a buffer underrun occurred.
	ErrUnderflow
	// ErrEncodingString means a string could not be converted to or from UTF-8.
	ErrEncodingString

	// ErrUnknown is the catch-all for native codes this package does not know.
	ErrUnknown Error = -1
)

// Native error codes. These are the values the engine ABI uses on the wire;
// ErrNoMem..ErrEncodingString share their numeric value with the native code.
const (
	codeNone    = 0
	codeFirst   = int(ErrNoMem)
	codeLast    = int(ErrEncodingString)
	codeUnknown = -1
)

// ErrorFromCode converts a native engine code to an error. Zero is success
// and returns nil. Codes outside the known range map to ErrUnknown.
func ErrorFromCode(code int) error {
	if code == codeNone {
		return nil
	}
	return errorFromCode(code)
}

func errorFromCode(code int) Error {
	if code >= codeFirst && code <= codeLast {
		return Error(code)
	}
	return ErrUnknown
}

// Code returns the native engine code for e. ErrUnknown returns -1.
func (e Error) Code() int {
	if int(e) >= codeFirst && int(e) <= codeLast {
		return int(e)
	}
	return codeUnknown
}

// Error returns the engine's description of e.
func (e Error) Error() string {
	return engineStrError(e.Code())
}

// Fatal reports whether a stream that returned e must be closed and reopened.
func (e Error) Fatal() bool {
	switch e {
	case ErrStreaming, ErrBackendDisconnected, ErrNoMem:
		return true
	}
	return false
}

// LayoutError is returned by stream open when the stream itself could be
// opened but the requested channel layout could not be applied.
type LayoutError struct {
	Layout ChannelLayout
	Err    error
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("soundio: channel layout %q: %v", e.Layout.String(), e.Err)
}

func (e *LayoutError) Unwrap() error {
	return e.Err
}

// asError narrows err to an Error. Wrapped values are unwrapped; anything else
// is ErrUnknown.
func asError(err error) Error {
	for err != nil {
		if e, ok := err.(Error); ok {
			return e
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return ErrUnknown
}
