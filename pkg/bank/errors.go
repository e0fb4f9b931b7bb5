package bank

import (
	"errors"
	"fmt"
)

// Bank-related errors
var (
	// ErrLoadFailure is matched by every error returned from Load.
	ErrLoadFailure = errors.New("instrument bank load failed")

	// ErrInstrumentNotFound is returned when a source has no samples for the instrument.
	ErrInstrumentNotFound = errors.New("instrument not found")

	// ErrUnsupportedFormat is returned for a format a loader or decoder cannot handle.
	ErrUnsupportedFormat = errors.New("unsupported sample format")

	// ErrNoSamples is returned when a source produced an empty bank.
	ErrNoSamples = errors.New("no samples in instrument bank")

	// ErrInvalidNoteName is returned by KeyOf for identifiers that are not note names.
	ErrInvalidNoteName = errors.New("invalid note name")
)

// LoadError describes a failed load attempt.
// errors.Is(err, ErrLoadFailure) holds for every LoadError.
type LoadError struct {
	Instrument string
	Format     Format
	Err        error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%v: %s (%s): %v", ErrLoadFailure, e.Instrument, e.Format, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrLoadFailure, e.Err}
}
