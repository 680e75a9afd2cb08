package soundio

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFromCodeRoundTrip(t *testing.T) {
	for code := codeFirst; code <= codeLast; code++ {
		err := ErrorFromCode(code)
		require.Error(t, err, "code %d", code)

		var e Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, code, e.Code())
		assert.NotEmpty(t, e.Error())
	}
}

func TestErrorFromCodeNone(t *testing.T) {
	assert.NoError(t, ErrorFromCode(0))
}

func TestErrorFromCodeUnknown(t *testing.T) {
	for _, code := range []int{-1, -42, codeLast + 1, 1000} {
		assert.Equal(t, ErrUnknown, ErrorFromCode(code), "code %d", code)
	}
	assert.Equal(t, -1, ErrUnknown.Code())
	assert.NotEmpty(t, ErrUnknown.Error())
}

func TestErrorsIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("open stream: %w", ErrorFromCode(int(ErrStreaming)))

	assert.ErrorIs(t, err, ErrStreaming)
	assert.NotErrorIs(t, err, ErrUnderflow)
	assert.Equal(t, ErrStreaming, asError(err))
	assert.Equal(t, ErrUnknown, asError(errors.New("plain")))
}

func TestErrorFatal(t *testing.T) {
	tests := []struct {
		err   Error
		fatal bool
	}{
		{ErrStreaming, true},
		{ErrBackendDisconnected, true},
		{ErrNoMem, true},
		{ErrUnderflow, false},
		{ErrInvalid, false},
		{ErrIncompatibleDevice, false},
		{ErrUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.fatal, tt.err.Fatal())
		})
	}
}

func TestLayoutError(t *testing.T) {
	var err error = &LayoutError{Layout: BuiltinLayout(Layout5Point1), Err: ErrIncompatibleDevice}

	assert.ErrorIs(t, err, ErrIncompatibleDevice)
	assert.Contains(t, err.Error(), "5.1")

	var le *LayoutError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 6, le.Layout.ChannelCount())
}
