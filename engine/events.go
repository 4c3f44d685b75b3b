package engine

import "go-eartrain/debug"

// EventKind says what changed
type EventKind int

const (
	EventStateChanged EventKind = iota
	EventSelectionUpdated
	EventRoundStarted
	EventResolved
	EventConfigured
	EventPlaybackFailed
)

func (k EventKind) String() string {
	switch k {
	case EventStateChanged:
		return "state-changed"
	case EventSelectionUpdated:
		return "selection-updated"
	case EventRoundStarted:
		return "round-started"
	case EventResolved:
		return "resolved"
	case EventConfigured:
		return "configured"
	case EventPlaybackFailed:
		return "playback-failed"
	}
	return "unknown"
}

// Event carries a snapshot taken right after the change
type Event struct {
	Kind     EventKind
	Snapshot Snapshot
	Err      error
}

const subscriberBuffer = 64

// Subscribe returns a channel of session events. Slow readers miss events
// rather than block the engine; the next event carries the full state anyway.
func (e *Engine) Subscribe() <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	e.subMu.Lock()
	e.subs = append(e.subs, ch)
	e.subMu.Unlock()
	return ch
}

// Close closes all subscriber channels
func (e *Engine) Close() {
	e.cancelPending()
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subs {
		close(ch)
	}
	e.subs = nil
}

// emit must be called with e.mu held
func (e *Engine) emit(kind EventKind, err error) {
	ev := Event{Kind: kind, Snapshot: e.snapshot(), Err: err}
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
			debug.LogEvery(10, "engine", "subscriber full, dropped %s", kind)
		}
	}
}
