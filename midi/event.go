package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-eartrain/pitch"
)

// NoteEvent is sent when a note is played on a keyboard
type NoteEvent struct {
	Note     uint8
	Velocity uint8
	Channel  uint8
}

// Pitch folds the note onto the practice octave
func (e NoteEvent) Pitch() pitch.Pitch {
	return pitch.FromMIDINote(e.Note)
}

// noteOn extracts a key press. NoteOn with velocity 0 is a release.
func noteOn(msg gomidi.Message) (NoteEvent, bool) {
	var channel, note, velocity uint8
	if msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0 {
		return NoteEvent{Note: note, Velocity: velocity, Channel: channel}, true
	}
	return NoteEvent{}, false
}
