package bank

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/sinshu/go-meltysynth/meltysynth"
	"golang.org/x/sync/errgroup"

	"github.com/zurustar/notebank/pkg/fileutil"
	"github.com/zurustar/notebank/pkg/logger"
)

// SF2 rendering defaults.
const (
	DefaultSF2Hold     = 1500 * time.Millisecond
	DefaultSF2Release  = 500 * time.Millisecond
	DefaultSF2Velocity = 100

	// silenceThreshold is the level below which trailing frames are trimmed.
	silenceThreshold = 1.0 / 32768
)

// SF2Loader builds a bank by rendering one sample per key from a SoundFont
// (.sf2) preset with the meltysynth synthesizer.
//
// The preset is chosen by name first (canonicalized preset names in the
// file), then by General MIDI program number. The format argument of Load
// is ignored because the samples are synthesized.
type SF2Loader struct {
	// FS is the file system Path is read from. nil reads from the OS.
	FS fileutil.FileSystem

	// Path is the SoundFont file.
	Path string

	// SampleRate of the rendered samples (0 = DefaultSampleRate).
	SampleRate int

	// Hold is how long each key is held before note-off.
	Hold time.Duration

	// Release is rendered after note-off so the tail is kept.
	Release time.Duration

	// Velocity of the rendered notes (1-127).
	Velocity int

	// LowKey and HighKey bound the rendered keys (0 = LowestKey / HighestKey).
	LowKey, HighKey int

	// Log receives progress messages (nil = default logger).
	Log *slog.Logger

	once    sync.Once
	sf      *meltysynth.SoundFont
	readErr error
}

func (l *SF2Loader) soundFont() (*meltysynth.SoundFont, error) {
	l.once.Do(func() {
		var (
			data []byte
			err  error
		)
		if l.FS != nil {
			data, err = l.FS.ReadFile(l.Path)
		} else {
			data, err = os.ReadFile(l.Path)
		}
		if err != nil {
			l.readErr = fmt.Errorf("%w: SoundFont %s: %v", ErrInstrumentNotFound, l.Path, err)
			return
		}

		sf, err := meltysynth.NewSoundFont(bytes.NewReader(data))
		if err != nil {
			l.readErr = fmt.Errorf("failed to parse SoundFont: %w", err)
			return
		}
		l.sf = sf
	})
	return l.sf, l.readErr
}

// findPreset returns the bank and patch numbers for instrument.
func findPreset(sf *meltysynth.SoundFont, instrument string) (int32, int32, error) {
	name := CanonicalName(instrument)
	for _, p := range sf.Presets {
		if CanonicalName(p.Name) == name {
			return p.BankNumber, p.PatchNumber, nil
		}
	}

	program, ok := ProgramOf(name)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s is neither a preset nor a General MIDI program", ErrInstrumentNotFound, name)
	}
	for _, p := range sf.Presets {
		if p.BankNumber == 0 && p.PatchNumber == int32(program) {
			return 0, int32(program), nil
		}
	}
	return 0, 0, fmt.Errorf("%w: program %d (%s) missing from SoundFont", ErrInstrumentNotFound, program, name)
}

// Load renders every key in range into its own sample.
func (l *SF2Loader) Load(instrument string, _ Format) (*Bank, error) {
	sf, err := l.soundFont()
	if err != nil {
		return nil, err
	}
	presetBank, patch, err := findPreset(sf, instrument)
	if err != nil {
		return nil, err
	}

	log := l.Log
	if log == nil {
		log = logger.GetLogger()
	}
	rate := l.SampleRate
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	lo, hi := l.LowKey, l.HighKey
	if lo <= 0 {
		lo = LowestKey
	}
	if hi <= 0 || hi > 127 {
		hi = HighestKey
	}
	if lo > hi {
		return nil, fmt.Errorf("%w: empty key range %d-%d", ErrNoSamples, lo, hi)
	}

	r := sf2Renderer{
		sf:       sf,
		rate:     rate,
		bank:     presetBank,
		patch:    patch,
		hold:     frames(orDefault(l.Hold, DefaultSF2Hold), rate),
		release:  frames(orDefault(l.Release, DefaultSF2Release), rate),
		velocity: int32(l.Velocity),
	}
	if r.velocity <= 0 || r.velocity > 127 {
		r.velocity = DefaultSF2Velocity
	}

	log.Debug("Rendering SoundFont preset", "path", l.Path, "bank", presetBank, "patch", patch, "keys", hi-lo+1)

	var (
		mu      sync.Mutex
		samples = make(map[NoteID]*Sample, hi-lo+1)
		g       errgroup.Group
	)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for key := lo; key <= hi; key++ {
		g.Go(func() error {
			s, err := r.render(key)
			if err != nil {
				return fmt.Errorf("key %d: %w", key, err)
			}
			mu.Lock()
			samples[NoteName(key)] = s
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return New(CanonicalName(instrument), FormatSF2, samples), nil
}

type sf2Renderer struct {
	sf            *meltysynth.SoundFont
	rate          int
	bank, patch   int32
	hold, release int
	velocity      int32
}

// render plays one key on a fresh synthesizer so keys can render in parallel.
func (r sf2Renderer) render(key int) (*Sample, error) {
	settings := meltysynth.NewSynthesizerSettings(int32(r.rate))
	synth, err := meltysynth.NewSynthesizer(r.sf, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesizer: %w", err)
	}

	// bank select (CC 0) and program change on channel 0
	synth.ProcessMidiMessage(0, 0xB0, 0x00, r.bank)
	synth.ProcessMidiMessage(0, 0xC0, r.patch, 0)

	total := r.hold + r.release
	left := make([]float32, total)
	right := make([]float32, total)

	synth.NoteOn(0, int32(key), r.velocity)
	synth.Render(left[:r.hold], right[:r.hold])
	synth.NoteOff(0, int32(key))
	synth.Render(left[r.hold:], right[r.hold:])

	n := total
	for n > 0 && abs32(left[n-1]) < silenceThreshold && abs32(right[n-1]) < silenceThreshold {
		n--
	}

	data := make([]float32, n*2)
	for i := 0; i < n; i++ {
		data[i*2] = left[i]
		data[i*2+1] = right[i]
	}
	return NewSample(data, r.rate), nil
}

func frames(d time.Duration, rate int) int {
	return int(d.Seconds() * float64(rate))
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
