package mixer

import (
	"fmt"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// DefaultBufferSize is the player buffer used when none is configured.
// Playbacks can start no sooner than one buffer after they are armed.
const DefaultBufferSize = 50 * time.Millisecond

// Output plays a Mixer through the Ebitengine audio context.
type Output struct {
	mixer    *Mixer
	audioCtx *audio.Context
	player   *audio.Player
	mu       sync.Mutex
}

// NewOutput starts streaming m through audioCtx. When audioCtx is nil the
// current context is reused, or a new one is created at the mixer's rate.
func NewOutput(m *Mixer, audioCtx *audio.Context, bufferSize time.Duration) (*Output, error) {
	if audioCtx == nil {
		audioCtx = audio.CurrentContext()
	}
	if audioCtx == nil {
		audioCtx = audio.NewContext(m.SampleRate())
	}
	if r := audioCtx.SampleRate(); r != m.SampleRate() {
		return nil, fmt.Errorf("%w: audio context is %d Hz, mixer is %d Hz", ErrSampleRate, r, m.SampleRate())
	}
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	player, err := audioCtx.NewPlayer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio player: %w", err)
	}
	player.SetBufferSize(bufferSize)
	player.Play()

	m.log.Info("Audio output started", "sample_rate", m.SampleRate(), "buffer", bufferSize)
	return &Output{mixer: m, audioCtx: audioCtx, player: player}, nil
}

// IsPlaying returns whether the device is pulling frames.
func (o *Output) IsPlaying() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.player != nil && o.player.IsPlaying()
}

// Close stops the player. The mixer itself stays usable.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	return err
}

// GetAudioContext returns the audio context used by this output.
func (o *Output) GetAudioContext() *audio.Context {
	return o.audioCtx
}
