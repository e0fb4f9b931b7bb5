package bank

import (
	"fmt"
	"strings"
)

// Format is the encoding of the sample data a bank is loaded from.
type Format string

const (
	FormatOgg Format = "ogg"
	FormatMP3 Format = "mp3"
	FormatWAV Format = "wav"
	FormatSF2 Format = "sf2"
)

// ParseFormat parses a format name such as "ogg" or ".MP3".
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	switch f {
	case FormatOgg, FormatMP3, FormatWAV, FormatSF2:
		return f, nil
	case "mpeg":
		return FormatMP3, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatHint is the host's format preference before it is resolved.
type FormatHint int

const (
	// HintPrimary asks for the compressed format the loader prefers.
	HintPrimary FormatHint = iota
	// HintFallback asks for the universally playable format.
	HintFallback
)

func (h FormatHint) String() string {
	switch h {
	case HintPrimary:
		return "primary"
	case HintFallback:
		return "fallback"
	}
	return fmt.Sprintf("FormatHint(%d)", int(h))
}

// ParseFormatHint parses "primary" or "fallback".
func ParseFormatHint(s string) (FormatHint, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primary":
		return HintPrimary, nil
	case "fallback":
		return HintFallback, nil
	}
	return 0, fmt.Errorf("invalid format hint: %q (must be primary or fallback)", s)
}

// ResolveFormat maps a hint to a concrete format: ogg for primary, mp3 for fallback.
func ResolveFormat(hint FormatHint) Format {
	if hint == HintPrimary {
		return FormatOgg
	}
	return FormatMP3
}

// HintFor chooses the hint a host should send given whether the primary
// compressed format can be played.
func HintFor(primarySupported bool) FormatHint {
	if primarySupported {
		return HintPrimary
	}
	return HintFallback
}
