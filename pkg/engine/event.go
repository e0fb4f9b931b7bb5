package engine

import (
	"fmt"
	"math"

	"github.com/zurustar/notebank/pkg/bank"
)

// NoteEvent is a request to sound one sample of the bank.
type NoteEvent struct {
	// ID selects the sample.
	ID bank.NoteID `yaml:"id"`

	// Gain is a linear amplitude multiplier. Values above 1 amplify and are
	// not clamped.
	Gain float64 `yaml:"gain"`

	// TimeOffset is the delay in seconds from the moment of scheduling.
	TimeOffset float64 `yaml:"offset"`
}

// Validate checks that the gain and offset are finite and non-negative.
func (ev NoteEvent) Validate() error {
	if math.IsNaN(ev.Gain) || math.IsInf(ev.Gain, 0) || ev.Gain < 0 {
		return fmt.Errorf("%w: gain %v", ErrInvalidEvent, ev.Gain)
	}
	if math.IsNaN(ev.TimeOffset) || math.IsInf(ev.TimeOffset, 0) || ev.TimeOffset < 0 {
		return fmt.Errorf("%w: time offset %v", ErrInvalidEvent, ev.TimeOffset)
	}
	return nil
}

func (ev NoteEvent) String() string {
	return fmt.Sprintf("%s gain=%.3f offset=%.3fs", ev.ID, ev.Gain, ev.TimeOffset)
}
