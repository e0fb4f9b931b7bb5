package bank

import (
	"errors"
	"fmt"
)

// Loader builds a complete Bank for an instrument.
// Implementations return either a fully populated bank or an error; they
// never hand out a partially filled bank.
type Loader interface {
	Load(instrument string, format Format) (*Bank, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(instrument string, format Format) (*Bank, error)

// Load calls f.
func (f LoaderFunc) Load(instrument string, format Format) (*Bank, error) {
	return f(instrument, format)
}

// ChainLoader tries each loader in turn and returns the first bank produced.
type ChainLoader []Loader

// Load returns the first successful result, or all failures joined.
func (c ChainLoader) Load(instrument string, format Format) (*Bank, error) {
	if len(c) == 0 {
		return nil, fmt.Errorf("%w: no sample sources configured", ErrInstrumentNotFound)
	}
	var errs []error
	for _, l := range c {
		b, err := l.Load(instrument, format)
		if err == nil {
			return b, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

// Load canonicalizes the instrument name, runs l and checks the result.
// Every failure is returned as a *LoadError.
func Load(l Loader, instrument string, format Format) (*Bank, error) {
	name := CanonicalName(instrument)
	fail := func(err error) error {
		return &LoadError{Instrument: name, Format: format, Err: err}
	}

	if l == nil {
		return nil, fail(errors.New("no loader"))
	}
	if name == "" {
		return nil, fail(fmt.Errorf("%w: empty instrument name", ErrInstrumentNotFound))
	}

	b, err := l.Load(name, format)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			return nil, err
		}
		return nil, fail(err)
	}
	if b.Len() == 0 {
		return nil, fail(ErrNoSamples)
	}
	return b, nil
}
