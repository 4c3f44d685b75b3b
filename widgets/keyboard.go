package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-eartrain/pitch"
	"go-eartrain/theme"
)

// keyWidth is the cell width of one natural
const keyWidth = 4

// Keyboard describes what the piano widget shows
type Keyboard struct {
	Bindings map[string]string // pitch name -> computer key
	Selected []string          // pitches in the current answer
	Hint     []string          // pitches to highlight
	Labels   bool              // show note names
}

// RenderKeyboard draws one octave: sharps on the top line, naturals below,
// the bound computer keys underneath each
func RenderKeyboard(th *theme.Theme, kb Keyboard) string {
	selected := set(kb.Selected)
	hinted := set(kb.Hint)

	base := lipgloss.NewStyle().Width(keyWidth).Align(lipgloss.Center)
	style := func(p pitch.Pitch) lipgloss.Style {
		s := base.Foreground(th.FG())
		if p.IsSharp() {
			s = s.Background(th.Surface())
		}
		switch {
		case selected[p.Name]:
			s = s.Foreground(th.BG()).Background(th.Active())
		case hinted[p.Name]:
			s = s.Foreground(th.BG()).Background(th.Warning())
		}
		return s
	}
	label := func(p pitch.Pitch) string {
		sym := th.Symbols.WhiteKey
		if p.IsSharp() {
			sym = th.Symbols.BlackKey
		}
		if !kb.Labels {
			return string(sym)
		}
		return p.Name
	}
	keyStyle := base.Foreground(th.Muted())

	var sharps, naturals, sharpKeys, naturalKeys strings.Builder
	// sharps sit half a key to the right of their natural
	half := strings.Repeat(" ", keyWidth/2)
	sharps.WriteString(half)
	sharpKeys.WriteString(half)

	all := pitch.All()
	for i, p := range all {
		if p.IsSharp() {
			continue
		}
		naturals.WriteString(style(p).Render(label(p)))
		naturalKeys.WriteString(keyStyle.Render(kb.Bindings[p.Name]))

		if p.Name == "B" {
			break
		}
		if next := all[i+1]; next.IsSharp() {
			sharps.WriteString(style(next).Render(label(next)))
			sharpKeys.WriteString(keyStyle.Render(kb.Bindings[next.Name]))
		} else {
			sharps.WriteString(base.Render(""))
			sharpKeys.WriteString(base.Render(""))
		}
	}

	return strings.Join([]string{
		sharpKeys.String(),
		sharps.String(),
		naturals.String(),
		naturalKeys.String(),
	}, "\n")
}

// RenderSlots shows the answer so far: picked names then empty slots
func RenderSlots(th *theme.Theme, selection []string, length int) string {
	picked := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true)
	empty := lipgloss.NewStyle().Foreground(th.Muted())

	parts := make([]string, 0, length)
	for i := 0; i < length; i++ {
		if i < len(selection) {
			parts = append(parts, picked.Render(selection[i]))
		} else {
			parts = append(parts, empty.Render(string(th.Symbols.Slot)))
		}
	}
	return strings.Join(parts, " ")
}

func set(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
