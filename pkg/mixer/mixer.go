// Package mixer renders armed note playbacks into one stereo stream.
//
// The Mixer is both the engine's Destination and its Clock: time advances
// exactly as fast as frames are rendered, so start times are honored to
// the sample. Output feeds the Mixer to an Ebitengine audio player; Pump
// drives it from a ticker when no audio device pulls it.
package mixer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/zurustar/notebank/pkg/bank"
	"github.com/zurustar/notebank/pkg/engine"
	"github.com/zurustar/notebank/pkg/logger"
)

// Mixer errors
var (
	// ErrSampleRate is returned when a sample was decoded at a different rate.
	ErrSampleRate = errors.New("sample rate mismatch")

	// ErrClosed is returned by Arm after Close.
	ErrClosed = errors.New("mixer closed")
)

// voice is one playback being rendered.
type voice struct {
	p     *engine.Playback
	start int64 // first output frame
	data  []float32
	gain  float32
}

// Mixer sums every armed playback into interleaved stereo frames.
type Mixer struct {
	rate int

	// frames is the number of frames rendered so far.
	frames atomic.Int64

	mu      sync.Mutex
	voices  []*voice
	scratch []float32
	muted   bool
	closed  bool

	log *slog.Logger
}

// New creates a mixer rendering at sampleRate frames per second.
// A non-positive rate selects bank.DefaultSampleRate.
func New(sampleRate int) *Mixer {
	if sampleRate <= 0 {
		sampleRate = bank.DefaultSampleRate
	}
	return &Mixer{
		rate: sampleRate,
		log:  logger.With("mixer"),
	}
}

// SampleRate returns the output rate.
func (m *Mixer) SampleRate() int {
	return m.rate
}

// Now returns the number of seconds rendered so far.
func (m *Mixer) Now() float64 {
	return float64(m.frames.Load()) / float64(m.rate)
}

// Arm adds p to the mix. A start time already in the past renders from the
// next frame.
func (m *Mixer) Arm(p *engine.Playback) error {
	if p == nil || p.Sample == nil {
		return errors.New("nil playback")
	}
	if r := p.Sample.SampleRate(); r != m.rate {
		return fmt.Errorf("%w: %s is %d Hz, output is %d Hz", ErrSampleRate, p.Note, r, m.rate)
	}

	start := int64(math.Round(p.Start * float64(m.rate)))

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if now := m.frames.Load(); start < now {
		start = now
	}
	m.voices = append(m.voices, &voice{
		p:     p,
		start: start,
		data:  p.Sample.Data(),
		gain:  float32(p.Gain),
	})
	return nil
}

// Active returns the number of playbacks that have not finished yet.
func (m *Mixer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// SetMuted silences the output. Time keeps advancing and playbacks still
// finish while muted.
func (m *Mixer) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
}

// IsMuted returns whether the output is silenced.
func (m *Mixer) IsMuted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

// Mix renders len(buf)/2 stereo frames into buf and advances the clock.
// Returns the number of frames rendered.
func (m *Mixer) Mix(buf []float32) int {
	n := len(buf) / 2
	if n == 0 {
		return 0
	}
	buf = buf[:n*2]
	clear(buf)

	m.mu.Lock()
	from := m.frames.Load()
	to := from + int64(n)

	var finished []*engine.Playback
	alive := m.voices[:0]
	for _, v := range m.voices {
		if !m.muted {
			v.render(buf, from, to)
		}
		if v.start+int64(len(v.data)/2) <= to {
			finished = append(finished, v.p)
			continue
		}
		alive = append(alive, v)
	}
	clear(m.voices[len(alive):])
	m.voices = alive
	m.frames.Store(to)
	m.mu.Unlock()

	for _, p := range finished {
		p.Finish()
	}
	return n
}

// render adds the part of v that falls into frames [from, to) to buf.
func (v *voice) render(buf []float32, from, to int64) {
	frames := int64(len(v.data) / 2)
	lo := max(v.start, from)
	hi := min(v.start+frames, to)
	for f := lo; f < hi; f++ {
		src := (f - v.start) * 2
		dst := (f - from) * 2
		buf[dst] += v.data[src] * v.gain
		buf[dst+1] += v.data[src+1] * v.gain
	}
}

// Advance renders and discards the given number of frames.
func (m *Mixer) Advance(frames int) {
	if frames <= 0 {
		return
	}
	m.mu.Lock()
	need := frames * 2
	if cap(m.scratch) < need {
		m.scratch = make([]float32, need)
	}
	buf := m.scratch[:need]
	m.mu.Unlock()

	// scratch is only used by Advance and Read, which are called from a
	// single rendering goroutine.
	m.Mix(buf)
}

// Read implements io.Reader, producing 16-bit little-endian stereo PCM.
func (m *Mixer) Read(p []byte) (int, error) {
	// 16-bit stereo = 4 bytes per frame
	frames := len(p) / 4
	if frames == 0 {
		return 0, nil
	}

	m.mu.Lock()
	need := frames * 2
	if cap(m.scratch) < need {
		m.scratch = make([]float32, need)
	}
	buf := m.scratch[:need]
	m.mu.Unlock()

	m.Mix(buf)
	for i := 0; i < frames; i++ {
		l := int16(clamp(buf[i*2], -1, 1) * 32767)
		r := int16(clamp(buf[i*2+1], -1, 1) * 32767)
		binary.LittleEndian.PutUint16(p[i*4:], uint16(l))
		binary.LittleEndian.PutUint16(p[i*4+2:], uint16(r))
	}
	return frames * 4, nil
}

// Close finishes every pending playback and rejects further Arm calls.
func (m *Mixer) Close() error {
	m.mu.Lock()
	pending := m.voices
	m.voices = nil
	m.closed = true
	m.mu.Unlock()

	if len(pending) > 0 {
		m.log.Debug("Dropping unfinished playbacks", "count", len(pending))
	}
	for _, v := range pending {
		v.p.Finish()
	}
	return nil
}

// clamp restricts a value to the range [min, max].
func clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
