package bank

import (
	"errors"
	"testing"
)

func TestLoadWrapsFailures(t *testing.T) {
	boom := errors.New("network down")
	l := LoaderFunc(func(instrument string, format Format) (*Bank, error) {
		if instrument != "acoustic_grand_piano" {
			t.Errorf("loader got non-canonical name %q", instrument)
		}
		return nil, boom
	})

	b, err := Load(l, "Acoustic Grand Piano", FormatOgg)
	if b != nil {
		t.Error("failed load must not return a bank")
	}
	if !errors.Is(err, ErrLoadFailure) {
		t.Errorf("expected ErrLoadFailure, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected cause to be kept, got %v", err)
	}

	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %T", err)
	}
	if le.Instrument != "acoustic_grand_piano" || le.Format != FormatOgg {
		t.Errorf("unexpected LoadError fields: %+v", le)
	}
}

func TestLoadRejectsEmptyBank(t *testing.T) {
	l := LoaderFunc(func(instrument string, format Format) (*Bank, error) {
		return New(instrument, format, nil), nil
	})
	if _, err := Load(l, "marimba", FormatOgg); !errors.Is(err, ErrNoSamples) {
		t.Errorf("expected ErrNoSamples, got %v", err)
	}
}

func TestLoadInvalidInput(t *testing.T) {
	if _, err := Load(nil, "marimba", FormatOgg); !errors.Is(err, ErrLoadFailure) {
		t.Errorf("nil loader: expected ErrLoadFailure, got %v", err)
	}
	l := LoaderFunc(func(string, Format) (*Bank, error) { return nil, nil })
	if _, err := Load(l, "  ", FormatOgg); !errors.Is(err, ErrInstrumentNotFound) {
		t.Errorf("empty name: expected ErrInstrumentNotFound, got %v", err)
	}
}

func TestLoadKeepsExistingLoadError(t *testing.T) {
	inner := &LoadError{Instrument: "x", Format: FormatMP3, Err: ErrNoSamples}
	l := LoaderFunc(func(string, Format) (*Bank, error) { return nil, inner })

	_, err := Load(l, "marimba", FormatOgg)
	if err != inner {
		t.Errorf("expected loader's LoadError to be returned unchanged, got %v", err)
	}
}

func TestChainLoader(t *testing.T) {
	first := errors.New("first")
	want := New("marimba", FormatWAV, map[NoteID]*Sample{"C4": constSample(1, 0)})

	calls := 0
	chain := ChainLoader{
		LoaderFunc(func(string, Format) (*Bank, error) { calls++; return nil, first }),
		LoaderFunc(func(string, Format) (*Bank, error) { calls++; return want, nil }),
		LoaderFunc(func(string, Format) (*Bank, error) { calls++; return nil, errors.New("unreached") }),
	}

	got, err := chain.Load("marimba", FormatOgg)
	if err != nil || got != want {
		t.Fatalf("ChainLoader.Load = %v, %v", got, err)
	}
	if calls != 2 {
		t.Errorf("expected 2 loader calls, got %d", calls)
	}

	second := errors.New("second")
	failing := ChainLoader{
		LoaderFunc(func(string, Format) (*Bank, error) { return nil, first }),
		LoaderFunc(func(string, Format) (*Bank, error) { return nil, second }),
	}
	_, err = failing.Load("marimba", FormatOgg)
	if !errors.Is(err, first) || !errors.Is(err, second) {
		t.Errorf("expected both failures joined, got %v", err)
	}

	if _, err := (ChainLoader{}).Load("marimba", FormatOgg); !errors.Is(err, ErrInstrumentNotFound) {
		t.Errorf("empty chain: expected ErrInstrumentNotFound, got %v", err)
	}
}
