package bank

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sinshu/go-meltysynth/meltysynth"
)

// findTestSoundFont looks for a SoundFont usable by the rendering tests.
func findTestSoundFont(t *testing.T) string {
	t.Helper()
	if p := os.Getenv("NOTEBANK_TEST_SF2"); p != "" {
		return p
	}
	candidates := []string{
		"../../GeneralUser-GS.sf2",
		"../../soundfonts/GeneralUser-GS.sf2",
		"../../cmd/notebank/soundfonts/GeneralUser-GS.sf2",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			abs, _ := filepath.Abs(p)
			return abs
		}
	}
	return ""
}

func TestFindPreset(t *testing.T) {
	sf := &meltysynth.SoundFont{
		Presets: []*meltysynth.Preset{
			{Name: "Yamaha Grand Piano", BankNumber: 0, PatchNumber: 0},
			{Name: "Marimba", BankNumber: 0, PatchNumber: 12},
			{Name: "Standard", BankNumber: 128, PatchNumber: 0},
		},
	}

	tests := []struct {
		name      string
		bank      int32
		patch     int32
		wantError bool
	}{
		{"yamaha_grand_piano", 0, 0, false},
		{"acoustic_grand_piano", 0, 0, false},
		{"marimba", 0, 12, false},
		{"standard", 128, 0, false},
		{"violin", 0, 0, true},
		{"kazoo", 0, 0, true},
	}
	for _, tt := range tests {
		bank, patch, err := findPreset(sf, tt.name)
		if tt.wantError {
			if !errors.Is(err, ErrInstrumentNotFound) {
				t.Errorf("%s: expected ErrInstrumentNotFound, got %v", tt.name, err)
			}
			continue
		}
		if err != nil || bank != tt.bank || patch != tt.patch {
			t.Errorf("%s: got %d/%d, %v; want %d/%d", tt.name, bank, patch, err, tt.bank, tt.patch)
		}
	}
}

func TestSF2Loader_MissingFile(t *testing.T) {
	l := &SF2Loader{Path: filepath.Join(t.TempDir(), "missing.sf2")}
	_, err := l.Load("acoustic_grand_piano", FormatSF2)
	if !errors.Is(err, ErrInstrumentNotFound) {
		t.Errorf("expected ErrInstrumentNotFound, got %v", err)
	}
}

func TestSF2Loader_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.sf2")
	if err := os.WriteFile(path, []byte("RIFF----sfbk"), 0644); err != nil {
		t.Fatal(err)
	}
	l := &SF2Loader{Path: path}
	if _, err := l.Load("acoustic_grand_piano", FormatSF2); err == nil {
		t.Error("expected parse error for broken SoundFont")
	}
}

func TestSF2Loader_Render(t *testing.T) {
	path := findTestSoundFont(t)
	if path == "" {
		t.Skip("SoundFont file not found, skipping test")
	}

	l := &SF2Loader{
		Path:    path,
		Hold:    200 * time.Millisecond,
		Release: 100 * time.Millisecond,
		LowKey:  60,
		HighKey: 64,
	}
	b, err := l.Load("acoustic_grand_piano", FormatOgg)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if b.Len() != 5 || b.Format() != FormatSF2 {
		t.Fatalf("expected 5 sf2 notes, got %d (%s)", b.Len(), b.Format())
	}
	s, ok := b.Lookup("C4")
	if !ok || s.Frames() == 0 {
		t.Fatal("C4 should have been rendered")
	}
	if s.Duration() > 300*time.Millisecond {
		t.Errorf("rendered sample longer than hold+release: %v", s.Duration())
	}
}
