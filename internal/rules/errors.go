package rules

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalMove    = errors.New("illegal move")
	ErrMalformedState = errors.New("malformed game state")
)

// IllegalMoveError is returned by ApplyMove; the state it was called on is unchanged
type IllegalMoveError struct {
	Move   Move
	Reason string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %s: %s", e.Move, e.Reason)
}

func (e *IllegalMoveError) Is(target error) bool {
	return target == ErrIllegalMove
}

// MalformedStateError reports external input that breaks a board invariant
type MalformedStateError struct {
	Reason string
}

func (e *MalformedStateError) Error() string {
	return "malformed game state: " + e.Reason
}

func (e *MalformedStateError) Is(target error) bool {
	return target == ErrMalformedState
}

func malformed(format string, args ...any) error {
	return &MalformedStateError{Reason: fmt.Sprintf(format, args...)}
}
