package engine

import (
	"context"

	"github.com/zurustar/notebank/pkg/bank"
)

// Future is the pending result of a bank load. It completes exactly once.
type Future struct {
	done chan struct{}
	bank *bank.Bank
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) complete(b *bank.Bank, err error) {
	f.bank = b
	f.err = err
	close(f.done)
}

// Done is closed when the load has completed.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the load completes or ctx is cancelled.
// Cancelling ctx does not stop the load itself.
func (f *Future) Wait(ctx context.Context) (*bank.Bank, error) {
	select {
	case <-f.done:
		return f.bank, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the outcome of a completed load. ok is false while the
// load is still running.
func (f *Future) Result() (b *bank.Bank, err error, ok bool) {
	select {
	case <-f.done:
		return f.bank, f.err, true
	default:
		return nil, nil, false
	}
}
