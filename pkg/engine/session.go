package engine

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/zurustar/notebank/pkg/bank"
	"github.com/zurustar/notebank/pkg/clock"
	"github.com/zurustar/notebank/pkg/events"
	"github.com/zurustar/notebank/pkg/logger"
)

// Session ties a loader, a clock and a destination together and holds the
// bank that play requests are resolved against.
type Session struct {
	loader bank.Loader
	clock  clock.Clock
	dst    Destination
	queue  *events.Queue
	log    *slog.Logger

	current atomic.Pointer[bank.Bank]

	// Load generations. published is the generation of the visible bank.
	mu        sync.Mutex
	started   uint64
	published uint64
	wg        sync.WaitGroup
}

// Option is a functional option for configuring a Session.
type Option func(*Session)

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// WithEvents sets the queue outbound notifications are pushed to.
func WithEvents(q *events.Queue) Option {
	return func(s *Session) {
		s.queue = q
	}
}

// WithBank publishes b as the initial bank.
func WithBank(b *bank.Bank) Option {
	return func(s *Session) {
		if b != nil {
			s.current.Store(b)
		}
	}
}

// NewSession creates a session. loader may be nil when banks are only
// provided through WithBank.
func NewSession(loader bank.Loader, c clock.Clock, dst Destination, opts ...Option) *Session {
	s := &Session{
		loader: loader,
		clock:  c,
		dst:    dst,
		log:    logger.With("engine"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bank returns the currently visible bank, or nil before the first
// successful load.
func (s *Session) Bank() *bank.Bank {
	return s.current.Load()
}

// Clock returns the session's clock.
func (s *Session) Clock() clock.Clock {
	return s.clock
}

// Events returns the notification queue, or nil when none was configured.
func (s *Session) Events() *events.Queue {
	return s.queue
}

// Load fetches and decodes the bank for instrument in format on its own
// goroutine. On success the bank replaces the visible one unless a load
// started later has already published. Playbacks armed from the previous
// bank are unaffected.
func (s *Session) Load(instrument string, format bank.Format) *Future {
	f := newFuture()

	s.mu.Lock()
	s.started++
	gen := s.started
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		b, err := s.load(instrument, format)
		if err == nil {
			s.publish(gen, b)
		}
		s.notifyReady(instrument, format, err)
		f.complete(b, err)
	}()
	return f
}

func (s *Session) load(instrument string, format bank.Format) (*bank.Bank, error) {
	s.log.Debug("Loading bank", "instrument", instrument, "format", format)
	b, err := bank.Load(s.loader, instrument, format)
	if err != nil {
		s.log.Error("Bank load failed", "instrument", instrument, "format", format, "error", err)
		return nil, err
	}
	s.log.Info("Bank loaded", "instrument", b.Instrument(), "format", b.Format(), "notes", b.Len())
	return b, nil
}

func (s *Session) publish(gen uint64, b *bank.Bank) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.published {
		s.log.Debug("Discarding superseded bank", "instrument", b.Instrument(), "generation", gen)
		return
	}
	s.published = gen
	s.current.Store(b)
}

// Wait blocks until every load started so far has completed.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Schedule arms one note event against the visible bank.
func (s *Session) Schedule(ev NoteEvent) (*Playback, error) {
	p, err := Schedule(s.Bank(), s.clock, s.dst, ev)
	if err != nil {
		s.log.Warn("Note not scheduled", "note", ev.ID, "error", err)
		s.notifyNoteError(-1, ev, err)
		return nil, err
	}
	s.log.Debug("Note scheduled", "note", ev.ID, "start", p.Start, "gain", p.Gain)
	return p, nil
}

// PlaySequence schedules every event against the same bank snapshot, so a
// load that completes midway does not split the sequence across banks.
func (s *Session) PlaySequence(evs []NoteEvent) ([]*Playback, error) {
	armed, err := PlaySequence(s.Bank(), s.clock, s.dst, evs)
	if err == nil {
		s.log.Debug("Sequence scheduled", "events", len(evs))
		return armed, nil
	}

	var failed []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		failed = joined.Unwrap()
	} else {
		failed = []error{err}
	}
	for _, e := range failed {
		var ee *EventError
		if errors.As(e, &ee) {
			s.notifyNoteError(ee.Index, ee.Event, ee.Err)
		} else {
			s.notifyNoteError(-1, NoteEvent{}, e)
		}
	}
	s.log.Warn("Sequence partially scheduled", "events", len(evs), "armed", len(armed), "failed", len(failed))
	return armed, err
}

// ReportCodecSupport emits one CODEC_SUPPORT notification. The capability is
// probed by the caller.
func (s *Session) ReportCodecSupport(format bank.Format, supported bool) {
	s.log.Info("Codec support", "format", format, "supported", supported)
	s.push(events.NewEventWithParams(events.CodecSupport, map[string]any{
		"Format":    string(format),
		"Supported": supported,
	}))
}

func (s *Session) notifyReady(instrument string, format bank.Format, err error) {
	params := map[string]any{
		"OK":         err == nil,
		"Instrument": instrument,
		"Format":     string(format),
	}
	if err != nil {
		params["Reason"] = err.Error()
	}
	s.push(events.NewEventWithParams(events.BankReady, params))
}

func (s *Session) notifyNoteError(index int, ev NoteEvent, err error) {
	s.push(events.NewEventWithParams(events.NoteError, map[string]any{
		"Note":   string(ev.ID),
		"Index":  index,
		"Reason": err.Error(),
	}))
}

func (s *Session) push(e *events.Event) {
	if s.queue != nil {
		s.queue.Push(e)
	}
}
