package engine

import (
	"errors"
	"sync"

	"github.com/zurustar/notebank/pkg/bank"
)

// recorder is a Destination that keeps every armed playback.
type recorder struct {
	mu    sync.Mutex
	armed []*Playback
	err   error
}

func (r *recorder) Arm(p *Playback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.armed = append(r.armed, p)
	return nil
}

func (r *recorder) playbacks() []*Playback {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Playback(nil), r.armed...)
}

func silence(frames int) *bank.Sample {
	return bank.NewSample(make([]float32, frames*2), bank.DefaultSampleRate)
}

// triad returns a bank holding C4, E4 and G4.
func triad(instrument string) *bank.Bank {
	return bank.New(instrument, bank.FormatOgg, map[bank.NoteID]*bank.Sample{
		"C4": silence(4410),
		"E4": silence(4410),
		"G4": silence(4410),
	})
}

var errArmFailed = errors.New("arm failed")
