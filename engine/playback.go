package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-eartrain/pitch"
)

// playTarget plays the active round the way the current presentation asks
func (e *Engine) playTarget(ctx context.Context) error {
	r := e.session.Round
	how := e.settings.Presentation.resolve(r.Mode)
	return e.play(ctx, r.Target, how, e.settings.NoteDuration)
}

func (e *Engine) playFeedback(ctx context.Context, p pitch.Pitch) error {
	return e.play(ctx, []pitch.Pitch{p}, PresentSequential, e.settings.KeyDuration)
}

func (e *Engine) play(ctx context.Context, ps []pitch.Pitch, how Presentation, dur time.Duration) error {
	ctx, done := e.beginPlayback(ctx)
	defer done()

	if how == PresentChord && len(ps) > 1 {
		return e.playChord(ctx, ps, dur.Seconds())
	}
	for i, p := range ps {
		if i > 0 && e.settings.Gap > 0 {
			if err := wait(ctx, e.settings.Gap); err != nil {
				return err
			}
		}
		if err := e.player.Play(ctx, p.FrequencyHz, dur.Seconds()); err != nil {
			return err
		}
	}
	return nil
}

// playChord starts every tone at once and waits for all of them. The first
// failure stops the rest.
func (e *Engine) playChord(ctx context.Context, ps []pitch.Pitch, seconds float64) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make([]error, len(ps))
	var wg sync.WaitGroup
	for i, p := range ps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := e.player.Play(ctx, p.FrequencyHz, seconds); err != nil {
				errs[i] = err
				cancel()
			}
		}()
	}
	wg.Wait()

	// report the cause, not the cancellations it triggered in siblings
	var first error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if !errors.Is(err, context.Canceled) {
			return err
		}
		if first == nil {
			first = err
		}
	}
	return first
}

// beginPlayback registers a cancel func so Configure can interrupt the
// playback. If a reconfigure is already waiting, the context starts cancelled.
func (e *Engine) beginPlayback(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	e.playMu.Lock()
	e.cancelPlay = cancel
	e.playMu.Unlock()
	if e.resetting.Load() > 0 {
		cancel()
	}

	return ctx, func() {
		e.playMu.Lock()
		e.cancelPlay = nil
		e.playMu.Unlock()
		cancel()
	}
}

func (e *Engine) cancelPending() {
	e.playMu.Lock()
	defer e.playMu.Unlock()
	if e.cancelPlay != nil {
		e.cancelPlay()
	}
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
