package bank

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"regexp"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/zurustar/notebank/pkg/fileutil"
	"github.com/zurustar/notebank/pkg/logger"
)

// SoundfontJSPath returns the file name of a MIDI.js soundfont bundle,
// e.g. "acoustic_grand_piano-ogg.js".
func SoundfontJSPath(instrument string, format Format) string {
	return fmt.Sprintf("%s-%s.js", CanonicalName(instrument), format)
}

// soundfontEntry matches `"C4": "data:audio/ogg;base64,...."`.
var soundfontEntry = regexp.MustCompile(`"([A-G][b#]?-?[0-9]+)"\s*:\s*"data:audio/[A-Za-z0-9.+-]+;base64,([A-Za-z0-9+/=\s]*)"`)

// ParseSoundfontJS extracts the base64 payload of every note in a MIDI.js
// soundfont bundle. The bundle is a JavaScript file assigning an object of
// data URIs to MIDI.Soundfont.<instrument>.
func ParseSoundfontJS(src []byte) (map[NoteID][]byte, error) {
	matches := soundfontEntry.FindAllSubmatch(src, -1)
	if len(matches) == 0 {
		return nil, ErrNoSamples
	}

	out := make(map[NoteID][]byte, len(matches))
	for _, m := range matches {
		id := NoteID(m[1])
		payload := stripSpace(m[2])
		data := make([]byte, base64.StdEncoding.DecodedLen(len(payload)))
		n, err := base64.StdEncoding.Decode(data, payload)
		if err != nil {
			return nil, fmt.Errorf("note %s: invalid base64 payload: %w", id, err)
		}
		out[id] = data[:n]
	}
	return out, nil
}

func stripSpace(b []byte) []byte {
	out := b[:0:0]
	for _, c := range b {
		switch c {
		case ' ', '\n', '\r', '\t':
			continue
		}
		out = append(out, c)
	}
	return out
}

// SoundfontJSLoader loads MIDI.js soundfont bundles ("<name>-ogg.js",
// "<name>-mp3.js") from a FileSystem, which may be a local directory, an
// embedded directory or an HTTP base URL.
type SoundfontJSLoader struct {
	// FS is where bundles are read from.
	FS fileutil.FileSystem

	// SampleRate is the rate samples are decoded to (0 = DefaultSampleRate).
	SampleRate int

	// Workers bounds concurrent decodes (0 = GOMAXPROCS).
	Workers int

	// Log receives progress messages (nil = default logger).
	Log *slog.Logger

	// Decode overrides the sample decoder (nil = Decode).
	Decode func(format Format, data []byte, sampleRate int) (*Sample, error)
}

// Load reads and decodes every note of the bundle. Any note failing to
// decode fails the whole load.
func (l *SoundfontJSLoader) Load(instrument string, format Format) (*Bank, error) {
	if format != FormatOgg && format != FormatMP3 {
		return nil, fmt.Errorf("%w: soundfont bundles carry ogg or mp3, not %s", ErrUnsupportedFormat, format)
	}
	if l.FS == nil {
		return nil, fmt.Errorf("%w: no soundfont directory", ErrInstrumentNotFound)
	}
	log := l.Log
	if log == nil {
		log = logger.GetLogger()
	}

	path := SoundfontJSPath(instrument, format)
	src, err := l.FS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInstrumentNotFound, path, err)
	}

	encoded, err := ParseSoundfontJS(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debug("Soundfont bundle read", "path", path, "source", fileutil.Describe(l.FS), "notes", len(encoded))

	decode := l.Decode
	if decode == nil {
		decode = Decode
	}
	workers := l.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		mu      sync.Mutex
		samples = make(map[NoteID]*Sample, len(encoded))
		g       errgroup.Group
	)
	g.SetLimit(workers)
	for id, data := range encoded {
		g.Go(func() error {
			s, err := decode(format, data, l.SampleRate)
			if err != nil {
				return fmt.Errorf("note %s: %w", id, err)
			}
			mu.Lock()
			samples[Normalize(id)] = s
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return New(CanonicalName(instrument), format, samples), nil
}
