package midi

import "go-eartrain/pitch"

// PadAction is what a pad does in the practice layout
type PadAction int

const (
	PadNone PadAction = iota
	PadPitch
	PadStart
	PadReplay
	PadSubmit
	PadClear
	PadPreview
	PadHint
)

// Pad is a decoded pad press
type Pad struct {
	Action PadAction
	Pitch  pitch.Pitch
}

// Bottom row holds the naturals, the row above the sharps offset like a piano.
// The scene column on the right holds the game controls, top to bottom.
var (
	whiteRow = map[int]string{0: "C", 1: "D", 2: "E", 3: "F", 4: "G", 5: "A", 6: "B"}
	blackRow = map[int]string{1: "C#", 2: "D#", 4: "F#", 5: "G#", 6: "A#"}
	controls = map[int]PadAction{7: PadStart, 6: PadReplay, 5: PadSubmit, 4: PadClear, 3: PadPreview, 2: PadHint}
)

const sceneCol = 8

// PadAt decodes a grid position
func PadAt(row, col int) Pad {
	switch {
	case col == sceneCol:
		if a, ok := controls[row]; ok {
			return Pad{Action: a}
		}
	case row == 0:
		if name, ok := whiteRow[col]; ok {
			return Pad{Action: PadPitch, Pitch: pitch.MustLookup(name)}
		}
	case row == 1:
		if name, ok := blackRow[col]; ok {
			return Pad{Action: PadPitch, Pitch: pitch.MustLookup(name)}
		}
	}
	return Pad{}
}

// PitchPad returns the grid position of a pitch
func PitchPad(p pitch.Pitch) (row, col int) {
	for c, name := range whiteRow {
		if name == p.Name {
			return 0, c
		}
	}
	for c, name := range blackRow {
		if name == p.Name {
			return 1, c
		}
	}
	return -1, -1
}

// LEDColors are the pad colours of the practice layout
type LEDColors struct {
	White    [3]uint8
	Black    [3]uint8
	Selected [3]uint8
	Control  [3]uint8
}

// LayoutLEDs lights the keys, marking selected pitches, and the control pads
func LayoutLEDs(selected []pitch.Pitch, c LEDColors) []LEDUpdate {
	sel := make(map[string]bool, len(selected))
	for _, p := range selected {
		sel[p.Name] = true
	}

	var updates []LEDUpdate
	for _, p := range pitch.All() {
		row, col := PitchPad(p)
		color := c.White
		if p.IsSharp() {
			color = c.Black
		}
		if sel[p.Name] {
			color = c.Selected
		}
		updates = append(updates, LEDUpdate{Row: row, Col: col, Color: color})
	}
	for row := range controls {
		updates = append(updates, LEDUpdate{Row: row, Col: sceneCol, Color: c.Control})
	}
	return updates
}
