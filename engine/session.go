package engine

import (
	"fmt"
	"math/rand/v2"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"go-eartrain/pitch"
)

// Round is one generated target sequence.
type Round struct {
	ID     string
	Target []pitch.Pitch
	Mode   Mode
}

// newRound draws n pitches uniformly with replacement
func newRound(rng *rand.Rand, n int, mode Mode) (*Round, error) {
	id, err := gonanoid.New(10)
	if err != nil {
		return nil, fmt.Errorf("round id: %w", err)
	}
	target := make([]pitch.Pitch, n)
	for i := range target {
		target[i] = pitch.At(rng.IntN(pitch.Count))
	}
	return &Round{ID: id, Target: target, Mode: mode}, nil
}

// Session holds the state of one practice session
type Session struct {
	ID          string
	State       State
	Round       *Round
	Selection   []pitch.Pitch
	Streak      int
	ReplaysUsed int
	NoteCount   int
	Mode        Mode
	LastOutcome Outcome
}

func (s Session) clone() Session {
	c := s
	if s.Selection != nil {
		c.Selection = append([]pitch.Pitch(nil), s.Selection...)
	}
	return c
}

func (s Session) targetLen() int {
	if s.Round == nil {
		return 0
	}
	return len(s.Round.Target)
}

// Snapshot is a read-only copy of a session handed to views
type Snapshot struct {
	SessionID    string
	RoundID      string
	State        State
	Mode         Mode
	Presentation Presentation
	NoteCount    int
	TargetLength int
	Selection    []string
	Streak       int
	ReplaysLeft  int
	ReplayMax    int
	LastOutcome  Outcome
}

// Complete reports whether the selection has as many notes as the target
func (s Snapshot) Complete() bool {
	return s.TargetLength > 0 && len(s.Selection) == s.TargetLength
}

// Check judges a selection against a target. Ordered compares position by
// position; unordered compares the sets of pitch names, so duplicates in
// either list collapse.
func Check(mode Mode, target, selection []pitch.Pitch) bool {
	if len(target) != len(selection) {
		return false
	}
	if mode == ModeOrdered {
		for i := range target {
			if target[i].Name != selection[i].Name {
				return false
			}
		}
		return true
	}

	want := make(map[string]bool, len(target))
	for _, p := range target {
		want[p.Name] = true
	}
	got := make(map[string]bool, len(selection))
	for _, p := range selection {
		got[p.Name] = true
	}
	if len(want) != len(got) {
		return false
	}
	for name := range want {
		if !got[name] {
			return false
		}
	}
	return true
}
