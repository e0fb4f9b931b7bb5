package engine

import (
	"sync"

	"github.com/zurustar/notebank/pkg/bank"
)

// Playback is one armed rendering of a sample: the source (Sample), its
// gain stage (Gain) and the clock time it starts at. A Playback is created
// per note event and is never reused; it finishes on its own once the
// destination has rendered the whole sample.
type Playback struct {
	// Note is the identifier the sample was resolved from.
	Note bank.NoteID

	// Sample is borrowed from the bank; it stays valid after the bank is replaced.
	Sample *bank.Sample

	// Gain is applied to every frame of the sample.
	Gain float64

	// Start is the clock time, in seconds, rendering begins at.
	Start float64

	once sync.Once
	done chan struct{}
}

func newPlayback(id bank.NoteID, s *bank.Sample, gain, start float64) *Playback {
	return &Playback{
		Note:   id,
		Sample: s,
		Gain:   gain,
		Start:  start,
		done:   make(chan struct{}),
	}
}

// Done is closed once the destination has rendered the whole sample.
func (p *Playback) Done() <-chan struct{} {
	return p.done
}

// Finish marks the playback as rendered. Destinations call it once the
// last frame has been mixed; extra calls are ignored.
func (p *Playback) Finish() {
	p.once.Do(func() {
		close(p.done)
	})
}

// End returns the clock time the last frame is rendered at.
func (p *Playback) End() float64 {
	return p.Start + p.Sample.Duration().Seconds()
}
