// Package clock provides the time bases that note playback is scheduled against.
//
// Every Clock reports seconds since the start of one engine lifetime and never
// goes backwards. The audio mixer is the clock used for real playback; Wall and
// Manual exist for headless runs and tests.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current audio-engine time in seconds.
// Successive calls within one engine lifetime return non-decreasing values.
type Clock interface {
	Now() float64
}

// Wall is a Clock driven by the process's monotonic wall clock.
type Wall struct {
	start time.Time
}

// NewWall returns a Wall clock that reads zero at the time of the call.
func NewWall() *Wall {
	return &Wall{start: time.Now()}
}

// Now returns the seconds elapsed since NewWall.
func (w *Wall) Now() float64 {
	return time.Since(w.start).Seconds()
}

// Manual is a Clock that only moves when told to.
type Manual struct {
	now float64
	mu  sync.Mutex
}

// NewManual returns a Manual clock reading start.
func NewManual(start float64) *Manual {
	return &Manual{now: start}
}

// Now returns the current reading.
func (m *Manual) Now() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to t. Values earlier than the current reading are ignored.
func (m *Manual) Set(t float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t > m.now {
		m.now = t
	}
}

// Advance moves the clock forward by d seconds. Negative d is ignored.
func (m *Manual) Advance(d float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d > 0 {
		m.now += d
	}
}
