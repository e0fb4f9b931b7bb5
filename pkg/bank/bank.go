// Package bank provides instrument banks: immutable sets of decoded samples
// keyed by note identifier, and the loaders that build them.
package bank

import (
	"sort"
	"time"
)

// NoteID identifies one sample within a bank, e.g. "C4" or "Bb3".
type NoteID string

// Sample is a block of decoded PCM audio.
// Data is interleaved stereo float32 in the range [-1, 1] at SampleRate.
// A Sample is never modified after it has been created.
type Sample struct {
	data []float32
	rate int
}

// NewSample wraps interleaved stereo frames recorded at rate.
// A trailing odd value is dropped.
func NewSample(interleaved []float32, rate int) *Sample {
	if len(interleaved)%2 != 0 {
		interleaved = interleaved[:len(interleaved)-1]
	}
	return &Sample{data: interleaved, rate: rate}
}

// Data returns the interleaved stereo frames. Callers must not modify it.
func (s *Sample) Data() []float32 {
	return s.data
}

// Frames returns the number of stereo frames.
func (s *Sample) Frames() int {
	return len(s.data) / 2
}

// SampleRate returns the rate the sample was decoded at.
func (s *Sample) SampleRate() int {
	return s.rate
}

// Duration returns the playing time of the sample.
func (s *Sample) Duration() time.Duration {
	if s.rate <= 0 {
		return 0
	}
	return time.Duration(s.Frames()) * time.Second / time.Duration(s.rate)
}

// Bank is an immutable mapping from NoteID to Sample for one instrument.
type Bank struct {
	instrument string
	format     Format
	samples    map[NoteID]*Sample
}

// New builds a Bank from samples. The map is copied.
func New(instrument string, format Format, samples map[NoteID]*Sample) *Bank {
	copied := make(map[NoteID]*Sample, len(samples))
	for id, s := range samples {
		if s != nil {
			copied[id] = s
		}
	}
	return &Bank{
		instrument: instrument,
		format:     format,
		samples:    copied,
	}
}

// Lookup returns the sample for id.
func (b *Bank) Lookup(id NoteID) (*Sample, bool) {
	if b == nil {
		return nil, false
	}
	s, ok := b.samples[id]
	return s, ok
}

// Instrument returns the canonical instrument name the bank was loaded for.
func (b *Bank) Instrument() string {
	return b.instrument
}

// Format returns the sample format the bank was decoded from.
func (b *Bank) Format() Format {
	return b.format
}

// Len returns the number of notes in the bank.
func (b *Bank) Len() int {
	if b == nil {
		return 0
	}
	return len(b.samples)
}

// IDs returns the bank's note identifiers ordered by pitch.
// Identifiers that are not note names sort last, alphabetically.
func (b *Bank) IDs() []NoteID {
	ids := make([]NoteID, 0, len(b.samples))
	for id := range b.samples {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ki, erri := KeyOf(ids[i])
		kj, errj := KeyOf(ids[j])
		switch {
		case erri == nil && errj == nil:
			if ki != kj {
				return ki < kj
			}
			return ids[i] < ids[j]
		case erri == nil:
			return true
		case errj == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
	return ids
}
