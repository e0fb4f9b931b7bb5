package bank

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// DefaultSampleRate is the rate samples are decoded to when none is given.
const DefaultSampleRate = 44100

// Decodable reports whether Decode supports format in this build.
func Decodable(format Format) bool {
	switch format {
	case FormatOgg, FormatMP3, FormatWAV:
		return true
	}
	return false
}

// Decode decodes one encoded audio file into a Sample at sampleRate.
// The decoders resample and convert mono input to stereo.
func Decode(format Format, data []byte, sampleRate int) (*Sample, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	var (
		stream io.Reader
		err    error
	)
	src := bytes.NewReader(data)
	switch format {
	case FormatOgg:
		var s *vorbis.Stream
		s, err = vorbis.DecodeWithSampleRate(sampleRate, src)
		stream = s
	case FormatMP3:
		var s *mp3.Stream
		s, err = mp3.DecodeWithSampleRate(sampleRate, src)
		stream = s
	case FormatWAV:
		var s *wav.Stream
		s, err = wav.DecodeWithSampleRate(sampleRate, src)
		stream = s
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", format, err)
	}

	pcm, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", format, err)
	}
	return samplePCM16(pcm, sampleRate), nil
}

// samplePCM16 converts 16-bit little-endian interleaved stereo PCM to a Sample.
func samplePCM16(pcm []byte, rate int) *Sample {
	out := make([]float32, len(pcm)/2)
	for i := range out {
		v := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		out[i] = float32(v) / 32768
	}
	return NewSample(out, rate)
}
