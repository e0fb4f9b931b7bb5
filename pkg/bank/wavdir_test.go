package bank

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zurustar/notebank/pkg/fileutil"
)

func TestWAVDirLoader(t *testing.T) {
	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, "marimba")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	files := map[string][]byte{
		"C4.wav":    makeWAV([][2]int16{{100, 100}, {200, 200}}, DefaultSampleRate),
		"F#4.WAV":   makeWAV([][2]int16{{300, 300}}, DefaultSampleRate),
		"notes.txt": []byte("ignored"),
		"intro.wav": makeWAV([][2]int16{{1, 1}}, DefaultSampleRate),
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			t.Fatal(err)
		}
	}

	l := &WAVDirLoader{FS: fileutil.NewRealFS(tmpDir)}
	b, err := l.Load("Marimba", FormatWAV)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if b.Len() != 2 {
		t.Fatalf("expected 2 notes, got %d (%v)", b.Len(), b.IDs())
	}
	if s, ok := b.Lookup("C4"); !ok || s.Frames() != 2 {
		t.Error("C4 should have 2 frames")
	}
	if _, ok := b.Lookup("Gb4"); !ok {
		t.Error("F#4 should be stored as Gb4")
	}
}

func TestWAVDirLoader_Missing(t *testing.T) {
	l := &WAVDirLoader{FS: fileutil.NewRealFS(t.TempDir())}
	if _, err := l.Load("cello", FormatWAV); !errors.Is(err, ErrInstrumentNotFound) {
		t.Errorf("expected ErrInstrumentNotFound, got %v", err)
	}

	empty := t.TempDir()
	if err := os.MkdirAll(filepath.Join(empty, "cello"), 0755); err != nil {
		t.Fatal(err)
	}
	l = &WAVDirLoader{FS: fileutil.NewRealFS(empty)}
	if _, err := l.Load("cello", FormatWAV); !errors.Is(err, ErrNoSamples) {
		t.Errorf("expected ErrNoSamples, got %v", err)
	}
}
