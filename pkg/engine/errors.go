package engine

import (
	"errors"
	"fmt"
)

// Scheduling errors
var (
	// ErrUnknownNote is returned when a note identifier is not in the bank.
	ErrUnknownNote = errors.New("unknown note")

	// ErrNoBankLoaded is returned for play requests before any load succeeded.
	ErrNoBankLoaded = errors.New("no instrument bank loaded")

	// ErrInvalidEvent is returned for negative or non-finite gains and offsets.
	ErrInvalidEvent = errors.New("invalid note event")

	// ErrNoDestination is returned when there is no output to arm playbacks on.
	ErrNoDestination = errors.New("no output destination")
)

// EventError reports the failure of one event within a sequence.
type EventError struct {
	Index int
	Event NoteEvent
	Err   error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("event %d (%s): %v", e.Index, e.Event.ID, e.Err)
}

func (e *EventError) Unwrap() error {
	return e.Err
}
