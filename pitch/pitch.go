package pitch

import (
	"fmt"
	"math"
	"strings"
)

// Reference tuning (A4) in Hz
const ReferenceA4 = 440.0

// Pitch is one named tone of the fixed octave
type Pitch struct {
	Name        string
	FrequencyHz float64
}

// octave 4, C through B
var all = [12]Pitch{
	{"C", 261.63},
	{"C#", 277.18},
	{"D", 293.66},
	{"D#", 311.13},
	{"E", 329.63},
	{"F", 349.23},
	{"F#", 369.99},
	{"G", 392.00},
	{"G#", 415.30},
	{"A", 440.00},
	{"A#", 466.16},
	{"B", 493.88},
}

// Count is the number of pitches in the set
const Count = len(all)

// All returns the twelve pitches in ascending order.
// The returned array is a copy.
func All() [Count]Pitch {
	return all
}

// At returns the pitch at semitone index 0-11 (C=0)
func At(i int) Pitch {
	return all[((i%Count)+Count)%Count]
}

// Lookup finds a pitch by name. Flats and a trailing octave digit are accepted
// ("Eb", "D#4"); names are case-insensitive.
func Lookup(name string) (Pitch, bool) {
	n := normalize(name)
	for _, p := range all {
		if p.Name == n {
			return p, true
		}
	}
	return Pitch{}, false
}

// MustLookup is Lookup for names known at compile time
func MustLookup(name string) Pitch {
	p, ok := Lookup(name)
	if !ok {
		panic(fmt.Sprintf("unknown pitch %q", name))
	}
	return p
}

// Index returns the semitone index (C=0) or -1
func (p Pitch) Index() int {
	for i, q := range all {
		if q.Name == p.Name {
			return i
		}
	}
	return -1
}

// MIDINote returns the MIDI note number (C4 = 60)
func (p Pitch) MIDINote() uint8 {
	return uint8(60 + p.Index())
}

// IsSharp reports whether this is a black key
func (p Pitch) IsSharp() bool {
	return strings.HasSuffix(p.Name, "#")
}

func (p Pitch) String() string {
	return p.Name
}

// FromMIDINote folds any MIDI note onto the octave
func FromMIDINote(note uint8) Pitch {
	return At(int(note) % Count)
}

// NoteForFrequency returns the nearest MIDI note for a frequency
func NoteForFrequency(hz float64) uint8 {
	n := math.Round(69 + 12*math.Log2(hz/ReferenceA4))
	if n < 0 {
		return 0
	}
	if n > 127 {
		return 127
	}
	return uint8(n)
}

// EqualTempered returns the A440 equal-temperament frequency of a MIDI note
func EqualTempered(note uint8) float64 {
	return ReferenceA4 * math.Pow(2, (float64(note)-69)/12)
}

// Names returns the names of ps in order
func Names(ps []Pitch) []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}

var flats = map[string]string{
	"DB": "C#",
	"EB": "D#",
	"GB": "F#",
	"AB": "G#",
	"BB": "A#",
}

func normalize(name string) string {
	n := strings.ToUpper(strings.TrimSpace(name))
	n = strings.TrimRight(n, "0123456789")
	if sharp, ok := flats[n]; ok {
		return sharp
	}
	return n
}
