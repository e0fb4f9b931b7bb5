package score

import (
	"fmt"
	"io"
	"sort"

	"github.com/zurustar/notebank/pkg/bank"
	"github.com/zurustar/notebank/pkg/engine"
	"gopkg.in/yaml.v3"
)

// yamlScore is the on-disk layout:
//
//	instrument: acoustic_grand_piano
//	events:
//	  - {id: C4, offset: 0}
//	  - {id: E4, gain: 0.5, offset: 0.25}
type yamlScore struct {
	Instrument string      `yaml:"instrument,omitempty"`
	Events     []yamlEvent `yaml:"events"`
}

type yamlEvent struct {
	ID     string   `yaml:"id"`
	Gain   *float64 `yaml:"gain,omitempty"`
	Offset float64  `yaml:"offset"`
}

// ReadYAML parses a YAML score. A missing gain means 1.
func ReadYAML(r io.Reader) (*Score, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}

	var doc yamlScore
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScore, err)
	}

	s := &Score{
		Instrument: doc.Instrument,
		Events:     make([]engine.NoteEvent, 0, len(doc.Events)),
	}
	for i, e := range doc.Events {
		if e.ID == "" {
			return nil, fmt.Errorf("%w: event %d has no id", ErrInvalidScore, i)
		}
		gain := 1.0
		if e.Gain != nil {
			gain = *e.Gain
		}
		s.Events = append(s.Events, engine.NoteEvent{
			ID:         bank.NoteID(e.ID),
			Gain:       gain,
			TimeOffset: e.Offset,
		})
	}
	sort.SliceStable(s.Events, func(i, j int) bool {
		return s.Events[i].TimeOffset < s.Events[j].TimeOffset
	})
	return s, nil
}

// WriteYAML writes s in the layout ReadYAML accepts.
func WriteYAML(w io.Writer, s *Score) error {
	doc := yamlScore{Instrument: s.Instrument}
	for _, ev := range s.Events {
		gain := ev.Gain
		doc.Events = append(doc.Events, yamlEvent{ID: string(ev.ID), Gain: &gain, Offset: ev.TimeOffset})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to write score: %w", err)
	}
	return enc.Close()
}
