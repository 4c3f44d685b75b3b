package tui

import (
	"go-eartrain/pitch"
	"go-eartrain/widgets"
)

// pianoKeys maps the home row and the row above onto one octave, the way
// most software pianos lay out a computer keyboard
var pianoKeys = map[string]string{
	"a": "C",
	"w": "C#",
	"s": "D",
	"e": "D#",
	"d": "E",
	"f": "F",
	"t": "F#",
	"g": "G",
	"y": "G#",
	"h": "A",
	"u": "A#",
	"j": "B",
}

// pitchForKey returns the pitch bound to a key
func pitchForKey(key string) (pitch.Pitch, bool) {
	name, ok := pianoKeys[key]
	if !ok {
		return pitch.Pitch{}, false
	}
	return pitch.Lookup(name)
}

// keyBindings is pianoKeys inverted for the keyboard widget
func keyBindings() map[string]string {
	m := make(map[string]string, len(pianoKeys))
	for k, name := range pianoKeys {
		m[name] = k
	}
	return m
}

var helpSections = []widgets.KeySection{
	{
		Title: "Round",
		Keys: []widgets.KeyBinding{
			{Key: "space", Desc: "start / next round"},
			{Key: "r", Desc: "replay target"},
			{Key: "enter", Desc: "submit answer"},
			{Key: "backspace", Desc: "clear answer"},
			{Key: "p", Desc: "play your answer"},
			{Key: "?", Desc: "hint"},
		},
	},
	{
		Title: "Settings",
		Keys: []widgets.KeyBinding{
			{Key: "1-8", Desc: "notes per round"},
			{Key: "m", Desc: "ordered / unordered"},
			{Key: "c", Desc: "auto / sequential / chord"},
			{Key: "l", Desc: "note labels"},
			{Key: "q", Desc: "quit"},
		},
	},
}
