package bank

import (
	"errors"
	"testing"
)

func TestDecodeWAV(t *testing.T) {
	frames := [][2]int16{{0, 0}, {16384, -16384}, {32767, -32768}}
	s, err := Decode(FormatWAV, makeWAV(frames, DefaultSampleRate), DefaultSampleRate)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if s.Frames() != len(frames) {
		t.Fatalf("Frames() = %d, want %d", s.Frames(), len(frames))
	}
	if s.SampleRate() != DefaultSampleRate {
		t.Errorf("SampleRate() = %d", s.SampleRate())
	}

	d := s.Data()
	if d[2] != 0.5 || d[3] != -0.5 {
		t.Errorf("frame 1 = (%v, %v), want (0.5, -0.5)", d[2], d[3])
	}
	if d[5] != -1 {
		t.Errorf("frame 2 right = %v, want -1", d[5])
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode(FormatSF2, nil, 0); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat for sf2, got %v", err)
	}
	if _, err := Decode(FormatWAV, []byte("not a wav file"), 0); err == nil {
		t.Error("expected error for invalid WAV data")
	}
}

func TestDecodable(t *testing.T) {
	for _, f := range []Format{FormatOgg, FormatMP3, FormatWAV} {
		if !Decodable(f) {
			t.Errorf("%s should be decodable", f)
		}
	}
	if Decodable(FormatSF2) {
		t.Error("sf2 is rendered, not decoded")
	}
}
