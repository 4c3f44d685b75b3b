package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"go-eartrain/debug"
	"go-eartrain/pitch"
)

// Player plays one tone and returns once it has finished sounding.
// synth.Synthesizer satisfies it.
type Player interface {
	Play(ctx context.Context, frequencyHz, durationSeconds float64) error
}

// Result is returned by Submit
type Result struct {
	Outcome  Outcome
	Streak   int
	Snapshot Snapshot
}

// Engine runs practice rounds. Commands are serialized: each one runs to
// completion, playback included, before the next starts. Configure is the
// exception: it cancels whatever is playing so it never waits on audio.
type Engine struct {
	player Player
	rng    *rand.Rand

	mu       sync.Mutex
	settings Settings
	session  Session

	playMu     sync.Mutex
	cancelPlay context.CancelFunc
	resetting  atomic.Int32

	subMu sync.Mutex
	subs  []chan Event
}

// New creates an engine in the idle state. A nil rng is seeded from the clock.
func New(player Player, settings Settings, rng *rand.Rand) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>17|1))
	}
	e := &Engine{
		player:   player,
		rng:      rng,
		settings: settings,
		session: Session{
			ID:        uuid.NewString(),
			State:     StateIdle,
			NoteCount: settings.NoteCount,
			Mode:      settings.Mode,
		},
	}
	debug.Log("engine", "session %s created notes=%d mode=%s", e.session.ID, settings.NoteCount, settings.Mode)
	return e, nil
}

// Settings returns the current settings
func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.settings
	s.NoteCount = e.session.NoteCount
	s.Mode = e.session.Mode
	return s
}

// Snapshot returns the current session view
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

func (e *Engine) snapshot() Snapshot {
	s := e.session
	snap := Snapshot{
		SessionID:    s.ID,
		State:        s.State,
		Mode:         s.Mode,
		Presentation: e.settings.Presentation,
		NoteCount:    s.NoteCount,
		TargetLength: s.targetLen(),
		Selection:    pitch.Names(s.Selection),
		Streak:       s.Streak,
		ReplaysLeft:  max(e.settings.ReplayMax-s.ReplaysUsed, 0),
		ReplayMax:    e.settings.ReplayMax,
		LastOutcome:  s.LastOutcome,
	}
	if s.Round != nil {
		snap.RoundID = s.Round.ID
	}
	return snap
}

// Configure sets the note count and mode, ending any round in progress.
// The streak is reset. Playback in flight is cancelled.
func (e *Engine) Configure(noteCount int, mode Mode) (Snapshot, error) {
	// validated without the lock, which a playing command may hold
	if noteCount < MinNotes || noteCount > MaxNotes {
		return Snapshot{}, fmt.Errorf("%w: note count %d outside %d..%d", ErrInvalidConfiguration, noteCount, MinNotes, MaxNotes)
	}
	if mode != ModeOrdered && mode != ModeUnordered {
		return Snapshot{}, fmt.Errorf("%w: mode %d", ErrInvalidConfiguration, int(mode))
	}

	e.resetting.Add(1)
	defer e.resetting.Add(-1)
	e.cancelPending()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.session.NoteCount = noteCount
	e.session.Mode = mode
	e.session.Round = nil
	e.session.Selection = nil
	e.session.Streak = 0
	e.session.ReplaysUsed = 0
	e.session.LastOutcome = OutcomeNone
	e.session.State = StateIdle

	debug.Log("engine", "configured notes=%d mode=%s", noteCount, mode)
	e.emit(EventConfigured, nil)
	return e.snapshot(), nil
}

// SetPresentation changes how targets are played from the next playback on
func (e *Engine) SetPresentation(p Presentation) error {
	if p < PresentAuto || p > PresentChord {
		return fmt.Errorf("%w: presentation %d", ErrInvalidConfiguration, int(p))
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings.Presentation = p
	e.emit(EventStateChanged, nil)
	return nil
}

// SetAutoAdvance controls whether a correct answer starts the next round
func (e *Engine) SetAutoAdvance(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings.AutoAdvance = on
}

// StartRound generates a new target and plays it. Allowed when idle or after
// a round has been resolved.
func (e *Engine) StartRound(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.session.State {
	case StateIdle, StateResolvedCorrect, StateResolvedIncorrect:
	default:
		return e.snapshot(), &StateError{Op: "start round", State: e.session.State}
	}
	return e.startRoundLocked(ctx)
}

func (e *Engine) startRoundLocked(ctx context.Context) (Snapshot, error) {
	prev := e.session.clone()

	e.setState(StateGenerating)
	round, err := newRound(e.rng, e.session.NoteCount, e.session.Mode)
	if err != nil {
		e.rollback(prev, err)
		return e.snapshot(), err
	}
	e.session.Round = round
	e.session.Selection = nil
	e.session.ReplaysUsed = 0

	log := debug.With("engine")
	log.Info().Str("round", round.ID).Int("notes", len(round.Target)).Str("mode", round.Mode.String()).Msg("round started")
	debug.Log("engine", "round %s target=%v", round.ID, pitch.Names(round.Target))

	e.setState(StatePlaying)
	e.emit(EventRoundStarted, nil)
	if err := e.playTarget(ctx); err != nil {
		e.rollback(prev, err)
		return e.snapshot(), err
	}
	e.setState(StateAwaitingSelection)
	return e.snapshot(), nil
}

// Replay plays the current target again, up to ReplayMax times per round.
func (e *Engine) Replay(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.State != StateAwaitingSelection {
		return e.snapshot(), &StateError{Op: "replay", State: e.session.State}
	}
	if e.session.ReplaysUsed >= e.settings.ReplayMax {
		return e.snapshot(), fmt.Errorf("%w: %d of %d used", ErrReplayLimitExceeded, e.session.ReplaysUsed, e.settings.ReplayMax)
	}

	prev := e.session.clone()
	e.session.ReplaysUsed++
	e.setState(StatePlaying)
	if err := e.playTarget(ctx); err != nil {
		e.rollback(prev, err)
		return e.snapshot(), err
	}
	e.setState(StateAwaitingSelection)
	return e.snapshot(), nil
}

// PressKey sounds p as feedback and, while a selection is open and not yet
// full, appends it. Presses at other times only make sound.
func (e *Engine) PressKey(ctx context.Context, p pitch.Pitch) (Snapshot, error) {
	if q, ok := pitch.Lookup(p.Name); !ok || q != p {
		return e.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownPitch, p.Name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.session.clone()
	s := &e.session
	if s.State == StateAwaitingSelection && len(s.Selection) < s.targetLen() {
		s.Selection = append(s.Selection, p)
		e.emit(EventSelectionUpdated, nil)
	}

	if err := e.playFeedback(ctx, p); err != nil {
		e.rollback(prev, err)
		return e.snapshot(), err
	}
	return e.snapshot(), nil
}

// PressKeyName is PressKey by pitch name ("C", "F#", "Bb4", ...)
func (e *Engine) PressKeyName(ctx context.Context, name string) (Snapshot, error) {
	p, ok := pitch.Lookup(name)
	if !ok {
		return e.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownPitch, name)
	}
	return e.PressKey(ctx, p)
}

// ClearSelection empties the selection of the active round
func (e *Engine) ClearSelection() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Round == nil || e.session.State == StateResolvedCorrect || e.session.State == StateIdle {
		return e.snapshot(), &StateError{Op: "clear selection", State: e.session.State}
	}
	e.session.Selection = nil
	e.setState(StateAwaitingSelection)
	e.emit(EventSelectionUpdated, nil)
	return e.snapshot(), nil
}

// Submit judges a full selection. A correct answer extends the streak and,
// with AutoAdvance, starts the next round; the error then reports only that
// round's playback. A wrong answer resets the streak and reopens selection
// on the same target.
func (e *Engine) Submit(ctx context.Context) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := &e.session
	if s.State != StateAwaitingSelection || s.Round == nil {
		return Result{Streak: s.Streak, Snapshot: e.snapshot()}, &StateError{Op: "submit", State: s.State}
	}
	if len(s.Selection) < len(s.Round.Target) {
		return Result{Streak: s.Streak, Snapshot: e.snapshot()},
			fmt.Errorf("%w: %d of %d notes selected", ErrIncompleteSelection, len(s.Selection), len(s.Round.Target))
	}

	e.setState(StateVerifying)
	correct := Check(s.Round.Mode, s.Round.Target, s.Selection)
	s.Selection = nil

	log := debug.With("engine")
	if !correct {
		s.Streak = 0
		s.LastOutcome = OutcomeIncorrect
		e.setState(StateResolvedIncorrect)
		e.emit(EventResolved, nil)
		log.Info().Str("round", s.Round.ID).Msg("incorrect")

		e.setState(StateAwaitingSelection)
		return Result{Outcome: OutcomeIncorrect, Streak: 0, Snapshot: e.snapshot()}, nil
	}

	s.Streak++
	s.LastOutcome = OutcomeCorrect
	e.setState(StateResolvedCorrect)
	e.emit(EventResolved, nil)
	log.Info().Str("round", s.Round.ID).Int("streak", s.Streak).Msg("correct")

	res := Result{Outcome: OutcomeCorrect, Streak: s.Streak, Snapshot: e.snapshot()}
	if !e.settings.AutoAdvance {
		return res, nil
	}
	snap, err := e.startRoundLocked(ctx)
	res.Snapshot = snap
	return res, err
}

// PreviewSelection plays the current selection note by note
func (e *Engine) PreviewSelection(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Round == nil {
		return e.snapshot(), &StateError{Op: "preview", State: e.session.State}
	}
	if len(e.session.Selection) == 0 {
		return e.snapshot(), nil
	}
	sel := append([]pitch.Pitch(nil), e.session.Selection...)
	err := e.play(ctx, sel, PresentSequential, e.settings.NoteDuration)
	if err != nil {
		e.emit(EventPlaybackFailed, err)
	}
	return e.snapshot(), err
}

// Hint returns the distinct pitch names of the target in chromatic order.
// The session is not modified.
func (e *Engine) Hint() ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Round == nil || e.session.State != StateAwaitingSelection {
		return nil, &StateError{Op: "hint", State: e.session.State}
	}
	seen := make(map[int]bool)
	var idx []int
	for _, p := range e.session.Round.Target {
		i := p.Index()
		if !seen[i] {
			seen[i] = true
			idx = append(idx, i)
		}
	}
	sort.Ints(idx)
	names := make([]string, len(idx))
	for i, n := range idx {
		names[i] = pitch.At(n).Name
	}
	return names, nil
}

func (e *Engine) setState(st State) {
	if e.session.State == st {
		return
	}
	debug.Log("engine", "state %s -> %s", e.session.State, st)
	e.session.State = st
	e.emit(EventStateChanged, nil)
}

// rollback restores the session as it was before a failed command
func (e *Engine) rollback(prev Session, err error) {
	l := debug.With("engine")
	l.Warn().Err(err).Str("state", e.session.State.String()).Msg("command failed, restoring session")
	e.session = prev
	e.emit(EventPlaybackFailed, err)
}
