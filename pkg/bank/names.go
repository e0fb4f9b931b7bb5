package bank

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Piano key range used by soundfont bundles: A0 (21) to C8 (108).
const (
	LowestKey  = 21
	HighestKey = 108
)

var flatNames = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

var pitchClass = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// NoteName returns the soundfont identifier for a MIDI key number.
// Accidentals are written as flats and key 60 is "C4".
func NoteName(key int) NoteID {
	if key < 0 || key > 127 {
		return NoteID(fmt.Sprintf("key%d", key))
	}
	return NoteID(flatNames[key%12] + strconv.Itoa(key/12-1))
}

// KeyOf parses a note identifier such as "C4", "Bb3", "F#2" or "C-1"
// into its MIDI key number.
func KeyOf(id NoteID) (int, error) {
	s := string(id)
	if len(s) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNoteName, s)
	}

	pc, ok := pitchClass[s[0]]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNoteName, s)
	}
	rest := s[1:]
	switch rest[0] {
	case 'b':
		pc--
		rest = rest[1:]
	case '#':
		pc++
		rest = rest[1:]
	}

	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNoteName, s)
	}

	key := (octave+1)*12 + pc
	if key < 0 || key > 127 {
		return 0, fmt.Errorf("%w: %q out of MIDI range", ErrInvalidNoteName, s)
	}
	return key, nil
}

// Normalize rewrites a note identifier into the flat spelling used by
// soundfont bundles ("C#4" -> "Db4"). Unparseable identifiers are returned as is.
func Normalize(id NoteID) NoteID {
	key, err := KeyOf(id)
	if err != nil {
		return id
	}
	return NoteName(key)
}

// CanonicalName folds an instrument name into the snake_case form used for
// soundfont file names: "Acoustic Grand Piano" -> "acoustic_grand_piano".
func CanonicalName(name string) string {
	// a Caser is stateful, so one is made per call
	fields := strings.FieldsFunc(cases.Lower(language.Und).String(name), func(r rune) bool {
		return r == ' ' || r == '_' || r == '-' || r == '\t'
	})
	return strings.Join(fields, "_")
}

// generalMIDI lists the General MIDI level 1 program names in program order.
var generalMIDI = [128]string{
	"acoustic_grand_piano", "bright_acoustic_piano", "electric_grand_piano", "honkytonk_piano",
	"electric_piano_1", "electric_piano_2", "harpsichord", "clavinet",
	"celesta", "glockenspiel", "music_box", "vibraphone",
	"marimba", "xylophone", "tubular_bells", "dulcimer",
	"drawbar_organ", "percussive_organ", "rock_organ", "church_organ",
	"reed_organ", "accordion", "harmonica", "tango_accordion",
	"acoustic_guitar_nylon", "acoustic_guitar_steel", "electric_guitar_jazz", "electric_guitar_clean",
	"electric_guitar_muted", "overdriven_guitar", "distortion_guitar", "guitar_harmonics",
	"acoustic_bass", "electric_bass_finger", "electric_bass_pick", "fretless_bass",
	"slap_bass_1", "slap_bass_2", "synth_bass_1", "synth_bass_2",
	"violin", "viola", "cello", "contrabass",
	"tremolo_strings", "pizzicato_strings", "orchestral_harp", "timpani",
	"string_ensemble_1", "string_ensemble_2", "synth_strings_1", "synth_strings_2",
	"choir_aahs", "voice_oohs", "synth_choir", "orchestra_hit",
	"trumpet", "trombone", "tuba", "muted_trumpet",
	"french_horn", "brass_section", "synth_brass_1", "synth_brass_2",
	"soprano_sax", "alto_sax", "tenor_sax", "baritone_sax",
	"oboe", "english_horn", "bassoon", "clarinet",
	"piccolo", "flute", "recorder", "pan_flute",
	"blown_bottle", "shakuhachi", "whistle", "ocarina",
	"lead_1_square", "lead_2_sawtooth", "lead_3_calliope", "lead_4_chiff",
	"lead_5_charang", "lead_6_voice", "lead_7_fifths", "lead_8_bass__lead",
	"pad_1_new_age", "pad_2_warm", "pad_3_polysynth", "pad_4_choir",
	"pad_5_bowed", "pad_6_metallic", "pad_7_halo", "pad_8_sweep",
	"fx_1_rain", "fx_2_soundtrack", "fx_3_crystal", "fx_4_atmosphere",
	"fx_5_brightness", "fx_6_goblins", "fx_7_echoes", "fx_8_scifi",
	"sitar", "banjo", "shamisen", "koto",
	"kalimba", "bagpipe", "fiddle", "shanai",
	"tinkle_bell", "agogo", "steel_drums", "woodblock",
	"taiko_drum", "melodic_tom", "synth_drum", "reverse_cymbal",
	"guitar_fret_noise", "breath_noise", "seashore", "bird_tweet",
	"telephone_ring", "helicopter", "applause", "gunshot",
}

// ProgramOf returns the General MIDI program number for an instrument name.
func ProgramOf(name string) (int, bool) {
	canonical := CanonicalName(name)
	for i, n := range generalMIDI {
		if n == canonical || CanonicalName(n) == canonical {
			return i, true
		}
	}
	return 0, false
}

// ProgramName returns the canonical General MIDI name of program.
func ProgramName(program int) (string, bool) {
	if program < 0 || program >= len(generalMIDI) {
		return "", false
	}
	return generalMIDI[program], true
}
