package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zurustar/notebank/pkg/bank"
	"github.com/zurustar/notebank/pkg/clock"
	"github.com/zurustar/notebank/pkg/events"
)

func triadLoader() bank.Loader {
	return bank.LoaderFunc(func(instrument string, format bank.Format) (*bank.Bank, error) {
		return triad(instrument), nil
	})
}

func waitFuture(t *testing.T, f *Future) (*bank.Bank, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	b, err := f.Wait(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("load did not complete")
	}
	return b, err
}

func TestSessionPlayBeforeLoad(t *testing.T) {
	q := events.NewQueue()
	s := NewSession(triadLoader(), clock.NewManual(0), &recorder{}, WithEvents(q))

	if _, err := s.Schedule(NoteEvent{ID: "C4", Gain: 1}); !errors.Is(err, ErrNoBankLoaded) {
		t.Errorf("error = %v, want ErrNoBankLoaded", err)
	}
	e, ok := q.Pop()
	if !ok || e.Type != events.NoteError {
		t.Fatalf("expected NOTE_ERROR notification, got %v", e)
	}
}

func TestSessionLoadPublishesBank(t *testing.T) {
	q := events.NewQueue()
	dst := &recorder{}
	s := NewSession(triadLoader(), clock.NewManual(10), dst, WithEvents(q))

	b, err := waitFuture(t, s.Load("Acoustic Grand Piano", bank.FormatOgg))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Bank() != b {
		t.Fatal("loaded bank is not visible")
	}
	if b.Instrument() != "acoustic_grand_piano" {
		t.Errorf("Instrument() = %q", b.Instrument())
	}

	e, ok := q.Pop()
	if !ok || e.Type != events.BankReady || !e.Bool("OK") {
		t.Fatalf("expected BANK_READY ok, got %v", e)
	}

	p, err := s.Schedule(NoteEvent{ID: "C4", Gain: 0.8, TimeOffset: 0.5})
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if p.Start != 10.5 || p.Gain != 0.8 {
		t.Errorf("playback = %v@%v", p.Gain, p.Start)
	}
}

func TestSessionLoadFailure(t *testing.T) {
	q := events.NewQueue()
	fail := bank.LoaderFunc(func(string, bank.Format) (*bank.Bank, error) {
		return nil, errors.New("network down")
	})
	s := NewSession(fail, clock.NewManual(0), &recorder{}, WithEvents(q))

	_, err := waitFuture(t, s.Load("piano", bank.FormatMP3))
	if !errors.Is(err, bank.ErrLoadFailure) {
		t.Fatalf("error = %v, want ErrLoadFailure", err)
	}
	var le *bank.LoadError
	if !errors.As(err, &le) || le.Instrument != "piano" || le.Format != bank.FormatMP3 {
		t.Errorf("LoadError = %+v", le)
	}
	if s.Bank() != nil {
		t.Error("failed load must not publish a bank")
	}

	e, ok := q.Pop()
	if !ok || e.Type != events.BankReady || e.Bool("OK") {
		t.Fatalf("expected BANK_READY failure, got %v", e)
	}
	if reason, _ := e.GetParam("Reason"); reason == "" || reason == nil {
		t.Error("failure notification should carry a reason")
	}
}

func TestSessionNilLoader(t *testing.T) {
	s := NewSession(nil, clock.NewManual(0), &recorder{})
	if _, err := waitFuture(t, s.Load("piano", bank.FormatOgg)); !errors.Is(err, bank.ErrLoadFailure) {
		t.Errorf("error = %v, want ErrLoadFailure", err)
	}
}

func TestSessionReloadKeepsArmedPlaybacks(t *testing.T) {
	s := NewSession(triadLoader(), clock.NewManual(0), &recorder{})

	first, err := waitFuture(t, s.Load("piano", bank.FormatOgg))
	if err != nil {
		t.Fatal(err)
	}
	p, err := s.Schedule(NoteEvent{ID: "E4", Gain: 1})
	if err != nil {
		t.Fatal(err)
	}

	second, err := waitFuture(t, s.Load("piano", bank.FormatOgg))
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("two loads should produce independent banks")
	}
	if s.Bank() != second {
		t.Error("second bank should be visible")
	}

	old, _ := first.Lookup("E4")
	if p.Sample != old || old.Frames() != 4410 {
		t.Error("armed playback lost its sample after reload")
	}
}

func TestSessionLaterLoadWins(t *testing.T) {
	release := make(chan struct{})
	loader := bank.LoaderFunc(func(instrument string, format bank.Format) (*bank.Bank, error) {
		if instrument == "slow" {
			<-release
		}
		return triad(instrument), nil
	})
	s := NewSession(loader, clock.NewManual(0), &recorder{})

	slow := s.Load("slow", bank.FormatOgg)
	if _, err := waitFuture(t, s.Load("fast", bank.FormatOgg)); err != nil {
		t.Fatal(err)
	}
	close(release)
	if _, err := waitFuture(t, slow); err != nil {
		t.Fatal(err)
	}
	s.Wait()

	if got := s.Bank().Instrument(); got != "fast" {
		t.Errorf("visible bank = %q, want fast", got)
	}
}

func TestSessionPlaySequenceNotifiesFailures(t *testing.T) {
	q := events.NewQueue()
	dst := &recorder{}
	s := NewSession(nil, clock.NewManual(1), dst, WithEvents(q), WithBank(triad("piano")))

	armed, err := s.PlaySequence([]NoteEvent{
		{ID: "C4", Gain: 1},
		{ID: "X9", Gain: 1, TimeOffset: 0.25},
		{ID: "G4", Gain: 1, TimeOffset: 0.5},
	})
	if !errors.Is(err, ErrUnknownNote) {
		t.Fatalf("error = %v, want ErrUnknownNote", err)
	}
	if len(armed) != 2 || len(dst.playbacks()) != 2 {
		t.Fatalf("armed %d playbacks, want 2", len(armed))
	}

	e, ok := q.Pop()
	if !ok || e.Type != events.NoteError {
		t.Fatalf("expected NOTE_ERROR, got %v", e)
	}
	if note, _ := e.GetParam("Note"); note != "X9" {
		t.Errorf("Note = %v, want X9", note)
	}
	if idx, _ := e.GetParam("Index"); idx != 1 {
		t.Errorf("Index = %v, want 1", idx)
	}
	if q.Len() != 0 {
		t.Errorf("unexpected extra notifications: %d", q.Len())
	}
}

func TestSessionReportCodecSupport(t *testing.T) {
	q := events.NewQueue()
	s := NewSession(nil, clock.NewWall(), &recorder{}, WithEvents(q))

	s.ReportCodecSupport(bank.FormatOgg, false)
	e, ok := q.Pop()
	if !ok || e.Type != events.CodecSupport {
		t.Fatalf("expected CODEC_SUPPORT, got %v", e)
	}
	if e.Bool("Supported") {
		t.Error("Supported should be false")
	}
	if f, _ := e.GetParam("Format"); f != "ogg" {
		t.Errorf("Format = %v", f)
	}

	// no queue configured
	NewSession(nil, clock.NewWall(), &recorder{}).ReportCodecSupport(bank.FormatOgg, true)
}

func TestFutureResult(t *testing.T) {
	f := newFuture()
	if _, _, ok := f.Result(); ok {
		t.Fatal("Result() should not be ready")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}

	b := triad("piano")
	f.complete(b, nil)
	got, err, ok := f.Result()
	if !ok || err != nil || got != b {
		t.Errorf("Result() = %v, %v, %v", got, err, ok)
	}
}
