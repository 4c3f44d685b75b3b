package widgets

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"go-eartrain/engine"
	"go-eartrain/theme"
)

// RenderStatus is the one-line game summary
func RenderStatus(th *theme.Theme, s engine.Snapshot) string {
	label := lipgloss.NewStyle().Foreground(th.Muted())
	value := lipgloss.NewStyle().Foreground(th.FG())
	streak := lipgloss.NewStyle().Foreground(th.Success()).Bold(true)

	return fmt.Sprintf("%s %s  %s %s  %s %s  %s %s",
		label.Render("notes"), value.Render(fmt.Sprint(s.NoteCount)),
		label.Render("mode"), value.Render(s.Mode.String()),
		label.Render("streak"), streak.Render(fmt.Sprint(s.Streak)),
		label.Render(string(th.Symbols.Replay)), value.Render(fmt.Sprintf("%d/%d", s.ReplaysLeft, s.ReplayMax)),
	)
}

// RenderOutcome shows the verdict on the last answer
func RenderOutcome(th *theme.Theme, o engine.Outcome) string {
	switch o {
	case engine.OutcomeCorrect:
		return lipgloss.NewStyle().Foreground(th.Good()).Bold(true).
			Render(string(th.Symbols.Correct) + " correct")
	case engine.OutcomeIncorrect:
		return lipgloss.NewStyle().Foreground(th.Warning()).Bold(true).
			Render(string(th.Symbols.Incorrect) + " try again")
	}
	return ""
}

// RenderPrompt says what the player should do next
func RenderPrompt(th *theme.Theme, s engine.Snapshot) string {
	style := lipgloss.NewStyle().Foreground(th.Accent())
	switch s.State {
	case engine.StateIdle:
		return style.Render("press space to start")
	case engine.StatePlaying, engine.StateGenerating:
		return style.Render("listen...")
	case engine.StateAwaitingSelection:
		if s.Complete() {
			return style.Render("enter to submit, backspace to clear")
		}
		return style.Render(fmt.Sprintf("play the %d note(s) you heard", s.TargetLength))
	case engine.StateResolvedCorrect, engine.StateResolvedIncorrect:
		return style.Render("space for the next round")
	}
	return ""
}
