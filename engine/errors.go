package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfiguration   = errors.New("invalid configuration")
	ErrReplayLimitExceeded    = errors.New("replay limit exceeded")
	ErrIncompleteSelection    = errors.New("incomplete selection")
	ErrIllegalStateTransition = errors.New("illegal state transition")
	ErrUnknownPitch           = errors.New("unknown pitch")
)

// StateError reports a command issued in a state that does not allow it.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s not allowed in state %s", ErrIllegalStateTransition, e.Op, e.State)
}

func (e *StateError) Unwrap() error {
	return ErrIllegalStateTransition
}
