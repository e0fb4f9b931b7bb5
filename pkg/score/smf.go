package score

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/zurustar/notebank/pkg/bank"
	"github.com/zurustar/notebank/pkg/engine"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// AllChannels selects note-ons from every MIDI channel.
const AllChannels = -1

// ReadSMF converts the note-on messages of a Standard MIDI File into note
// events. Offsets are the absolute times of the messages, tempo changes
// included. Velocity maps linearly to gain (127 = 1). channel limits the
// result to one MIDI channel unless it is AllChannels.
func ReadSMF(r io.Reader, channel int) (*Score, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}

	var events []engine.NoteEvent
	tr := smf.ReadTracksFrom(bytes.NewReader(data))
	tr.Do(func(te smf.TrackEvent) {
		var ch, key, vel uint8
		if !midi.Message(te.Message).GetNoteStart(&ch, &key, &vel) {
			return
		}
		if channel != AllChannels && int(ch) != channel {
			return
		}
		events = append(events, engine.NoteEvent{
			ID:         bank.NoteName(int(key)),
			Gain:       float64(vel) / 127,
			TimeOffset: float64(te.AbsMicroSeconds) / 1e6,
		})
	})
	if err := tr.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScore, err)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].TimeOffset < events[j].TimeOffset
	})
	return &Score{Events: events}, nil
}
