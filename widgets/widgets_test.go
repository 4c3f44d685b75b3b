package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-eartrain/engine"
	"go-eartrain/theme"
)

func testTheme() *theme.Theme {
	return theme.New(theme.DefaultPalette())
}

func TestRenderKeyboard(t *testing.T) {
	out := RenderKeyboard(testTheme(), Keyboard{
		Bindings: map[string]string{"C": "a", "C#": "w", "B": "j"},
		Selected: []string{"E"},
		Labels:   true,
	})
	lines := strings.Split(ansi.Strip(out), "\n")
	require.Len(t, lines, 4)

	assert.Contains(t, lines[0], "w")
	for _, name := range []string{"C#", "D#", "F#", "G#", "A#"} {
		assert.Contains(t, lines[1], name)
	}
	assert.Equal(t, []string{"C", "D", "E", "F", "G", "A", "B"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"a", "j"}, strings.Fields(lines[3]))
	assert.Equal(t, 7*keyWidth, lipgloss.Width(lines[2]))
}

func TestRenderKeyboardSymbols(t *testing.T) {
	th := testTheme()
	out := ansi.Strip(RenderKeyboard(th, Keyboard{}))
	assert.NotContains(t, out, "C#")
	assert.Equal(t, 7, strings.Count(out, string(th.Symbols.WhiteKey)))
	assert.Equal(t, 5, strings.Count(out, string(th.Symbols.BlackKey)))
}

func TestRenderSlots(t *testing.T) {
	th := testTheme()
	assert.Equal(t, "C E · ·", ansi.Strip(RenderSlots(th, []string{"C", "E"}, 4)))
	assert.Equal(t, "", RenderSlots(th, nil, 0))
}

func TestRenderStatus(t *testing.T) {
	out := ansi.Strip(RenderStatus(testTheme(), engine.Snapshot{
		NoteCount:   3,
		Mode:        engine.ModeUnordered,
		Streak:      4,
		ReplaysLeft: 1,
		ReplayMax:   3,
	}))
	assert.Contains(t, out, "notes 3")
	assert.Contains(t, out, "mode unordered")
	assert.Contains(t, out, "streak 4")
	assert.Contains(t, out, "1/3")
}

func TestRenderOutcome(t *testing.T) {
	th := testTheme()
	assert.Contains(t, ansi.Strip(RenderOutcome(th, engine.OutcomeCorrect)), "correct")
	assert.Contains(t, ansi.Strip(RenderOutcome(th, engine.OutcomeIncorrect)), "try again")
	assert.Empty(t, RenderOutcome(th, engine.OutcomeNone))
}

func TestRenderPrompt(t *testing.T) {
	th := testTheme()
	assert.Contains(t, ansi.Strip(RenderPrompt(th, engine.Snapshot{State: engine.StateIdle})), "space")
	full := engine.Snapshot{State: engine.StateAwaitingSelection, TargetLength: 2, Selection: []string{"C", "D"}}
	assert.Contains(t, ansi.Strip(RenderPrompt(th, full)), "submit")
	partial := engine.Snapshot{State: engine.StateAwaitingSelection, TargetLength: 2, Selection: []string{"C"}}
	assert.Contains(t, ansi.Strip(RenderPrompt(th, partial)), "2 note")
}

func TestPadGrid(t *testing.T) {
	var g PadGrid
	g.Set(0, 0, [3]uint8{255, 0, 0})
	g.Set(7, 8, [3]uint8{0, 255, 0})
	g.Set(9, 9, [3]uint8{1, 1, 1})
	assert.Equal(t, [3]uint8{255, 0, 0}, g.Grid[0][0])
	assert.Equal(t, [3]uint8{0, 255, 0}, g.Scene[7])

	lines := strings.Split(ansi.Strip(RenderPadGrid(g)), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, 9, strings.Count(lines[0], "■"))
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{{
		Title: "Round",
		Keys:  []KeyBinding{{Key: "space", Desc: "start"}, {Key: "r", Desc: "replay"}},
	}})
	assert.Equal(t, "Round\n  space        start\n  r            replay", out)
}
