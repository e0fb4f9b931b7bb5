// Package engine schedules note events as sample playbacks against an
// audio clock.
//
// Schedule turns one NoteEvent into one Playback armed on a Destination at
// clock.Now() + offset. PlaySequence does the same for an ordered list,
// back to back and without waiting. Session owns the current bank and
// publishes new banks atomically when a Load completes.
package engine

import (
	"errors"
	"fmt"

	"github.com/zurustar/notebank/pkg/bank"
	"github.com/zurustar/notebank/pkg/clock"
)

// Destination is where armed playbacks are rendered.
//
// Arm must return without waiting for the playback to sound. A start time
// that has already passed when the destination processes the playback is
// rendered immediately.
type Destination interface {
	Arm(p *Playback) error
}

// Schedule resolves ev in b and arms a new playback on dst starting at
// c.Now() + ev.TimeOffset. Nothing is armed when an error is returned.
func Schedule(b *bank.Bank, c clock.Clock, dst Destination, ev NoteEvent) (*Playback, error) {
	if b == nil {
		return nil, ErrNoBankLoaded
	}
	if dst == nil {
		return nil, ErrNoDestination
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}

	sample, ok := b.Lookup(ev.ID)
	if !ok {
		return nil, fmt.Errorf("%w: %q not in %s", ErrUnknownNote, ev.ID, b.Instrument())
	}

	p := newPlayback(ev.ID, sample, ev.Gain, c.Now()+ev.TimeOffset)
	if err := dst.Arm(p); err != nil {
		return nil, fmt.Errorf("failed to arm %s: %w", ev.ID, err)
	}
	return p, nil
}

// PlaySequence schedules every event in order with the same bank, clock and
// destination. A failing event is skipped and the rest are still scheduled;
// the failures are returned joined as *EventError values.
func PlaySequence(b *bank.Bank, c clock.Clock, dst Destination, events []NoteEvent) ([]*Playback, error) {
	if b == nil {
		return nil, ErrNoBankLoaded
	}

	armed := make([]*Playback, 0, len(events))
	var errs []error
	for i, ev := range events {
		p, err := Schedule(b, c, dst, ev)
		if err != nil {
			errs = append(errs, &EventError{Index: i, Event: ev, Err: err})
			continue
		}
		armed = append(armed, p)
	}
	return armed, errors.Join(errs...)
}
