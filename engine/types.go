package engine

import (
	"fmt"
	"strings"
	"time"
)

// Note count bounds for a round
const (
	MinNotes = 1
	MaxNotes = 8
)

// State is the round lifecycle position
type State int

const (
	StateIdle State = iota
	StateGenerating
	StatePlaying
	StateAwaitingSelection
	StateVerifying
	StateResolvedCorrect
	StateResolvedIncorrect
)

var stateNames = [...]string{
	StateIdle:              "idle",
	StateGenerating:        "generating",
	StatePlaying:           "playing",
	StateAwaitingSelection: "awaiting-selection",
	StateVerifying:         "verifying",
	StateResolvedCorrect:   "resolved-correct",
	StateResolvedIncorrect: "resolved-incorrect",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Mode decides whether order matters when judging an answer
type Mode int

const (
	ModeOrdered Mode = iota
	ModeUnordered
)

func (m Mode) String() string {
	if m == ModeUnordered {
		return "unordered"
	}
	return "ordered"
}

// ParseMode accepts "ordered"/"unordered" and the older "single"/"multi"
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ordered", "single":
		return ModeOrdered, nil
	case "unordered", "multi":
		return ModeUnordered, nil
	}
	return ModeOrdered, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfiguration, s)
}

// Presentation is how a target sequence is played
type Presentation int

const (
	// PresentAuto plays ordered rounds note by note and unordered rounds as a chord
	PresentAuto Presentation = iota
	PresentSequential
	PresentChord
)

func (p Presentation) String() string {
	switch p {
	case PresentSequential:
		return "sequential"
	case PresentChord:
		return "chord"
	default:
		return "auto"
	}
}

// ParsePresentation parses "auto", "sequential" or "chord"
func ParsePresentation(s string) (Presentation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return PresentAuto, nil
	case "sequential":
		return PresentSequential, nil
	case "chord":
		return PresentChord, nil
	}
	return PresentAuto, fmt.Errorf("%w: unknown presentation %q", ErrInvalidConfiguration, s)
}

// resolve picks the concrete presentation for a mode
func (p Presentation) resolve(m Mode) Presentation {
	if p != PresentAuto {
		return p
	}
	if m == ModeUnordered {
		return PresentChord
	}
	return PresentSequential
}

// Outcome of the most recent verification
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeCorrect
	OutcomeIncorrect
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeIncorrect:
		return "incorrect"
	default:
		return "none"
	}
}

// Settings configure an engine.
type Settings struct {
	NoteCount    int
	Mode         Mode
	Presentation Presentation
	ReplayMax    int
	// AutoAdvance starts the next round as soon as an answer is correct
	AutoAdvance bool

	NoteDuration time.Duration // each target note
	KeyDuration  time.Duration // feedback tone on key press
	Gap          time.Duration // silence between sequential notes
}

// DefaultSettings returns the defaults: one note, ordered, three replays.
func DefaultSettings() Settings {
	return Settings{
		NoteCount:    1,
		Mode:         ModeOrdered,
		Presentation: PresentAuto,
		ReplayMax:    3,
		AutoAdvance:  true,
		NoteDuration: 500 * time.Millisecond,
		KeyDuration:  500 * time.Millisecond,
		Gap:          300 * time.Millisecond,
	}
}

// Validate checks ranges
func (s Settings) Validate() error {
	if s.NoteCount < MinNotes || s.NoteCount > MaxNotes {
		return fmt.Errorf("%w: note count %d outside %d..%d", ErrInvalidConfiguration, s.NoteCount, MinNotes, MaxNotes)
	}
	if s.Mode != ModeOrdered && s.Mode != ModeUnordered {
		return fmt.Errorf("%w: mode %d", ErrInvalidConfiguration, int(s.Mode))
	}
	if s.Presentation < PresentAuto || s.Presentation > PresentChord {
		return fmt.Errorf("%w: presentation %d", ErrInvalidConfiguration, int(s.Presentation))
	}
	if s.ReplayMax < 0 {
		return fmt.Errorf("%w: replay max %d", ErrInvalidConfiguration, s.ReplayMax)
	}
	if s.NoteDuration <= 0 || s.KeyDuration <= 0 {
		return fmt.Errorf("%w: tone durations must be positive", ErrInvalidConfiguration)
	}
	if s.Gap < 0 {
		return fmt.Errorf("%w: negative gap", ErrInvalidConfiguration)
	}
	return nil
}
