// Package score reads note sequences from files so they can be handed to
// engine.PlaySequence.
//
// Two formats are understood: a small YAML document listing note events,
// and Standard MIDI Files, whose note-on messages become events at their
// absolute time.
package score

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zurustar/notebank/pkg/engine"
)

// ErrUnknownScoreFormat is returned for files that are neither YAML nor SMF.
var ErrUnknownScoreFormat = errors.New("unknown score format")

// ErrInvalidScore is returned when a score cannot be parsed.
var ErrInvalidScore = errors.New("invalid score")

// Score is a parsed note sequence.
type Score struct {
	// Instrument optionally names the bank the score was written for.
	Instrument string

	// Events are ordered by TimeOffset.
	Events []engine.NoteEvent
}

// Duration returns the offset of the last event in seconds.
func (s *Score) Duration() float64 {
	if s == nil || len(s.Events) == 0 {
		return 0
	}
	return s.Events[len(s.Events)-1].TimeOffset
}

// ReadFile parses the score at path, choosing the format by extension.
func ReadFile(path string) (*Score, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open score: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ReadYAML(f)
	case ".mid", ".midi", ".smf":
		return ReadSMF(f, AllChannels)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownScoreFormat, path)
	}
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read score: %w", err)
	}
	return data, nil
}
