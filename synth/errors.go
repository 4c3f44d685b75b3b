package synth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidToneParameter is returned for a non-positive frequency or duration
	ErrInvalidToneParameter = errors.New("invalid tone parameter")

	// ErrAudioDeviceUnavailable is returned when the output cannot be acquired
	ErrAudioDeviceUnavailable = errors.New("audio device unavailable")
)

// ToneError describes a rejected tone request.
type ToneError struct {
	Param string
	Value float64
}

func (e *ToneError) Error() string {
	return fmt.Sprintf("%s: %s must be positive, got %g", ErrInvalidToneParameter, e.Param, e.Value)
}

func (e *ToneError) Unwrap() error {
	return ErrInvalidToneParameter
}

// DeviceError wraps a backend failure as ErrAudioDeviceUnavailable.
type DeviceError struct {
	Backend string
	Err     error
}

func (e *DeviceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Backend, ErrAudioDeviceUnavailable)
	}
	return fmt.Sprintf("%s: %s: %v", e.Backend, ErrAudioDeviceUnavailable, e.Err)
}

func (e *DeviceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrAudioDeviceUnavailable}
	}
	return []error{ErrAudioDeviceUnavailable, e.Err}
}
