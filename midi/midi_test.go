package midi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-eartrain/pitch"
	"go-eartrain/synth"
)

func TestNoteOn(t *testing.T) {
	ev, ok := noteOn(gomidi.NoteOn(2, 64, 90))
	require.True(t, ok)
	assert.Equal(t, NoteEvent{Note: 64, Velocity: 90, Channel: 2}, ev)
	assert.Equal(t, "E", ev.Pitch().Name)

	_, ok = noteOn(gomidi.NoteOn(0, 60, 0))
	assert.False(t, ok, "velocity 0 is a release")
	_, ok = noteOn(gomidi.NoteOff(0, 60))
	assert.False(t, ok)
	_, ok = noteOn(gomidi.ControlChange(0, 7, 100))
	assert.False(t, ok)
}

func TestNoteEventFoldsOctaves(t *testing.T) {
	assert.Equal(t, "A", NoteEvent{Note: 69}.Pitch().Name)
	assert.Equal(t, "C", NoteEvent{Note: 36}.Pitch().Name)
	assert.Equal(t, "B", NoteEvent{Note: 83}.Pitch().Name)
}

func TestPadEvent(t *testing.T) {
	ev, ok := padEvent(gomidi.NoteOn(0, 11, 127))
	require.True(t, ok)
	assert.Equal(t, PadEvent{Row: 0, Col: 0, Velocity: 127}, ev)

	ev, ok = padEvent(gomidi.NoteOn(0, 89, 40))
	require.True(t, ok)
	assert.Equal(t, 7, ev.Row)
	assert.Equal(t, 8, ev.Col)

	ev, ok = padEvent(gomidi.ControlChange(0, 93, 127))
	require.True(t, ok)
	assert.Equal(t, 8, ev.Row)
	assert.Equal(t, 2, ev.Col)

	_, ok = padEvent(gomidi.NoteOn(0, 5, 127))
	assert.False(t, ok)
	_, ok = padEvent(gomidi.NoteOn(0, 11, 0))
	assert.False(t, ok)
}

func TestGridNoteMapping(t *testing.T) {
	for row := 0; row < 8; row++ {
		for col := 0; col <= 8; col++ {
			r, c := noteToRowCol(rowColToNote(row, col))
			assert.Equal(t, row, r)
			assert.Equal(t, col, c)
		}
	}
	assert.Equal(t, uint8(91), rowColToNote(8, 0))
	assert.Len(t, ClearLEDs(), 80)
}

func TestMapRGBToLaunchpad(t *testing.T) {
	assert.Equal(t, uint8(0), mapRGBToLaunchpad([3]uint8{0, 0, 0}))
	assert.Equal(t, uint8(119), mapRGBToLaunchpad([3]uint8{250, 250, 250}))
	assert.Equal(t, uint8(5), mapRGBToLaunchpad([3]uint8{255, 0, 0}))
	assert.Equal(t, uint8(21), mapRGBToLaunchpad([3]uint8{10, 250, 10}))
}

func TestPadLayout(t *testing.T) {
	for _, p := range pitch.All() {
		row, col := PitchPad(p)
		require.GreaterOrEqual(t, row, 0, p.Name)
		pad := PadAt(row, col)
		assert.Equal(t, PadPitch, pad.Action)
		assert.Equal(t, p, pad.Pitch)
	}

	assert.Equal(t, PadStart, PadAt(7, 8).Action)
	assert.Equal(t, PadSubmit, PadAt(5, 8).Action)
	assert.Equal(t, PadNone, PadAt(0, 7).Action)
	assert.Equal(t, PadNone, PadAt(1, 0).Action)
	assert.Equal(t, PadNone, PadAt(4, 4).Action)
}

func TestLayoutLEDs(t *testing.T) {
	c := LEDColors{
		White:    [3]uint8{200, 200, 200},
		Black:    [3]uint8{0, 0, 200},
		Selected: [3]uint8{0, 255, 0},
		Control:  [3]uint8{255, 100, 0},
	}
	updates := LayoutLEDs([]pitch.Pitch{pitch.MustLookup("E"), pitch.MustLookup("F#")}, c)
	assert.Len(t, updates, pitch.Count+len(controls))

	byPad := map[[2]int][3]uint8{}
	for _, u := range updates {
		byPad[[2]int{u.Row, u.Col}] = u.Color
	}
	row, col := PitchPad(pitch.MustLookup("E"))
	assert.Equal(t, c.Selected, byPad[[2]int{row, col}])
	row, col = PitchPad(pitch.MustLookup("F#"))
	assert.Equal(t, c.Selected, byPad[[2]int{row, col}])
	row, col = PitchPad(pitch.MustLookup("C"))
	assert.Equal(t, c.White, byPad[[2]int{row, col}])
	row, col = PitchPad(pitch.MustLookup("A#"))
	assert.Equal(t, c.Black, byPad[[2]int{row, col}])
	assert.Equal(t, c.Control, byPad[[2]int{7, 8}])
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		keyboards []string
		launchpad bool
		want      ControllerType
	}{
		{"Launchpad X LPX MIDI", nil, true, ControllerLaunchpad},
		{"Launchpad X LPX MIDI", nil, false, ControllerUnknown},
		{"Midi Through Port-0", nil, false, ControllerUnknown},
		{"KeyStep 32", nil, false, ControllerKeyboard},
		{"KeyStep 32", []string{"keystep"}, false, ControllerKeyboard},
		{"Digital Piano", []string{"keystep"}, false, ControllerUnknown},
		{"Digital Piano", []string{""}, false, ControllerUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classify(tt.name, tt.keyboards, tt.launchpad), "%s %v", tt.name, tt.keyboards)
	}
}

type sent struct {
	msgs []gomidi.Message
	err  error
}

func (s *sent) send(msg gomidi.Message) error {
	s.msgs = append(s.msgs, msg)
	return s.err
}

func TestToneOutputNoteOnOff(t *testing.T) {
	rec := &sent{}
	o := NewToneOutput("test", 1, 0)
	o.send = rec.send

	start := time.Now()
	err := o.RenderTone(context.Background(), synth.Tone{FrequencyHz: 440, DurationSeconds: 0.02})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	require.Len(t, rec.msgs, 2)
	var ch, key, vel uint8
	require.True(t, rec.msgs[0].GetNoteOn(&ch, &key, &vel))
	assert.Equal(t, uint8(1), ch)
	assert.Equal(t, uint8(69), key)
	assert.Equal(t, uint8(100), vel)
	require.True(t, rec.msgs[1].GetNoteOff(&ch, &key, &vel))
	assert.Equal(t, uint8(69), key)
}

func TestToneOutputCancelSendsNoteOff(t *testing.T) {
	rec := &sent{}
	o := NewToneOutput("test", 0, 80)
	o.send = rec.send

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := o.RenderTone(ctx, synth.Tone{FrequencyHz: 261.63, DurationSeconds: 5})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.Len(t, rec.msgs, 2)
	var ch, key, vel uint8
	assert.True(t, rec.msgs[1].GetNoteOff(&ch, &key, &vel))
	assert.Equal(t, uint8(60), key)
}

func TestToneOutputSendError(t *testing.T) {
	rec := &sent{err: errors.New("port gone")}
	o := NewToneOutput("test", 0, 0)
	o.send = rec.send

	err := o.RenderTone(context.Background(), synth.Tone{FrequencyHz: 440, DurationSeconds: 0.01})
	assert.ErrorIs(t, err, synth.ErrAudioDeviceUnavailable)
	assert.Nil(t, o.send, "port is reopened on the next tone")
}
