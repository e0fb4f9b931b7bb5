package mixer

import (
	"sync"
	"time"
)

// DefaultPumpInterval is how often a Pump renders when none is configured.
const DefaultPumpInterval = 10 * time.Millisecond

// Pump renders a Mixer at wall-clock speed without an audio device, so
// headless runs keep the same timing and finish playbacks on time.
// The rendered audio is discarded.
type Pump struct {
	mixer    *Mixer
	interval time.Duration

	ticker *time.Ticker
	epoch  time.Time
	base   int64

	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
}

// NewPump creates a pump for m. If interval is 0 or negative,
// DefaultPumpInterval is used.
func NewPump(m *Mixer, interval time.Duration) *Pump {
	if interval <= 0 {
		interval = DefaultPumpInterval
	}
	return &Pump{mixer: m, interval: interval}
}

// Start begins rendering. If the pump is already running, this does nothing.
func (p *Pump) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}

	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.ticker = time.NewTicker(p.interval)
	p.epoch = time.Now()
	p.base = p.mixer.frames.Load()

	go p.run(p.ticker, p.stopCh, p.doneCh)
}

func (p *Pump) run(ticker *time.Ticker, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	for {
		select {
		case <-stopCh:
			return
		case now, ok := <-ticker.C:
			if !ok {
				return
			}
			p.catchUp(now)
		}
	}
}

// catchUp renders every frame due between the epoch and now.
func (p *Pump) catchUp(now time.Time) {
	due := p.base + int64(now.Sub(p.epoch).Seconds()*float64(p.mixer.rate))
	if n := due - p.mixer.frames.Load(); n > 0 {
		p.mixer.Advance(int(n))
	}
}

// Stop stops rendering and waits for the pump goroutine to exit.
// If the pump is not running, this does nothing.
func (p *Pump) Stop() {
	p.mu.Lock()

	if !p.running {
		p.mu.Unlock()
		return
	}

	p.running = false
	close(p.stopCh)
	doneCh := p.doneCh

	p.mu.Unlock()

	// Wait outside the lock to avoid deadlock
	<-doneCh

	p.mu.Lock()
	p.ticker.Stop()
	p.ticker = nil
	p.stopCh = nil
	p.doneCh = nil
	p.mu.Unlock()
}

// IsRunning returns whether the pump is currently running.
func (p *Pump) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
