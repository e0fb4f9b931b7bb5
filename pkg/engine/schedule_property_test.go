package engine

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/zurustar/notebank/pkg/bank"
	"github.com/zurustar/notebank/pkg/clock"
)

var candidateIDs = []bank.NoteID{"C4", "E4", "G4", "X9", "Db5"}

func genNoteIndex() gopter.Gen {
	return gen.IntRange(0, len(candidateIDs)-1)
}

// A valid event arms exactly one playback at Now()+offset; anything else arms nothing.
func TestPropertyScheduleArmsAtMostOne(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	b := triad("piano")

	properties.Property("start equals now plus offset", prop.ForAll(
		func(idx int, now, offset, gain float64) bool {
			id := candidateIDs[idx]
			dst := &recorder{}
			p, err := Schedule(b, clock.NewManual(now), dst, NoteEvent{ID: id, Gain: gain, TimeOffset: offset})
			armed := dst.playbacks()

			_, known := b.Lookup(id)
			valid := known && offset >= 0 && gain >= 0
			if !valid {
				return err != nil && p == nil && len(armed) == 0
			}
			return err == nil && len(armed) == 1 && armed[0] == p &&
				p.Start == now+offset && p.Gain == gain
		},
		genNoteIndex(),
		gen.Float64Range(0, 1e4),
		gen.Float64Range(-1, 10),
		gen.Float64Range(-1, 4),
	))

	properties.TestingRun(t)
}

// PlaySequence schedules in input order and arms one playback per valid event.
func TestPropertyPlaySequenceOrder(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	b := triad("piano")

	properties.Property("armed playbacks follow input order", prop.ForAll(
		func(ids []int, offsets []float64) bool {
			n := int(math.Min(float64(len(ids)), float64(len(offsets))))
			evs := make([]NoteEvent, n)
			for i := 0; i < n; i++ {
				evs[i] = NoteEvent{ID: candidateIDs[ids[i]], Gain: 1, TimeOffset: offsets[i]}
			}

			dst := &recorder{}
			armed, _ := PlaySequence(b, clock.NewManual(5), dst, evs)

			var expect []NoteEvent
			for _, ev := range evs {
				if _, ok := b.Lookup(ev.ID); ok {
					expect = append(expect, ev)
				}
			}
			if len(armed) != len(expect) {
				return false
			}
			for i, ev := range expect {
				if armed[i].Note != ev.ID || armed[i].Start != 5+ev.TimeOffset {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genNoteIndex()),
		gen.SliceOf(gen.Float64Range(0, 2)),
	))

	properties.TestingRun(t)
}
