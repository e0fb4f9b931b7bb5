package bank

import (
	"fmt"
	"path"
	"strings"

	"github.com/zurustar/notebank/pkg/fileutil"
)

// WAVDirLoader loads "<instrument>/<NoteID>.wav" files, e.g. "marimba/C4.wav".
// Files whose base name is not a note name are ignored.
type WAVDirLoader struct {
	FS         fileutil.FileSystem
	SampleRate int
}

// Load decodes every note file of the instrument directory.
func (l *WAVDirLoader) Load(instrument string, _ Format) (*Bank, error) {
	if l.FS == nil {
		return nil, fmt.Errorf("%w: no sample directory", ErrInstrumentNotFound)
	}
	dir := CanonicalName(instrument)
	entries, err := l.FS.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInstrumentNotFound, dir, err)
	}

	samples := make(map[NoteID]*Sample)
	for _, entry := range entries {
		name := entry.Name()
		ext := path.Ext(name)
		if entry.IsDir() || !strings.EqualFold(ext, ".wav") {
			continue
		}
		id := NoteID(strings.TrimSuffix(name, ext))
		if _, err := KeyOf(id); err != nil {
			continue
		}

		data, err := l.FS.ReadFile(path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("note %s: %w", id, err)
		}
		s, err := Decode(FormatWAV, data, l.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("note %s: %w", id, err)
		}
		samples[Normalize(id)] = s
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSamples, dir)
	}
	return New(dir, FormatWAV, samples), nil
}
