package synth

import (
	"context"
	"math"
	"sync"
	"time"

	"go-eartrain/debug"
)

// Device renders tones on some output (speaker, MIDI port, ...).
// RenderTone must release everything it acquired before returning,
// including when ctx is cancelled.
type Device interface {
	RenderTone(ctx context.Context, tone Tone) error
}

// Synthesizer turns (frequency, duration) requests into device renders
// using the current harmonic profile.
type Synthesizer struct {
	device Device

	mu      sync.RWMutex
	profile Profile
}

// New creates a synthesizer playing through device
func New(device Device, profile Profile) *Synthesizer {
	return &Synthesizer{device: device, profile: profile}
}

// Profile returns the harmonic profile in use
func (s *Synthesizer) Profile() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// SetProfile swaps the harmonic profile for subsequent tones
func (s *Synthesizer) SetProfile(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
	return nil
}

// Play renders one tone and returns no earlier than durationSeconds after the
// call, unless ctx is cancelled first.
func (s *Synthesizer) Play(ctx context.Context, frequencyHz, durationSeconds float64) error {
	if err := checkTone(frequencyHz, durationSeconds); err != nil {
		return err
	}
	tone := Tone{
		FrequencyHz:     frequencyHz,
		DurationSeconds: durationSeconds,
		Profile:         s.Profile(),
	}

	start := time.Now()
	debug.Log("synth", "play %.2fHz %.3fs profile=%s", frequencyHz, durationSeconds, tone.Profile.Name)
	if err := s.device.RenderTone(ctx, tone); err != nil {
		return err
	}

	// devices may hand off asynchronously; hold the caller for the full tone
	if rest := tone.Duration() - time.Since(start); rest > 0 {
		return sleep(ctx, rest)
	}
	return nil
}

func checkTone(frequencyHz, durationSeconds float64) error {
	if !(frequencyHz > 0) || math.IsInf(frequencyHz, 0) {
		return &ToneError{Param: "frequencyHz", Value: frequencyHz}
	}
	if !(durationSeconds > 0) || math.IsInf(durationSeconds, 0) {
		return &ToneError{Param: "durationSeconds", Value: durationSeconds}
	}
	return nil
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Silent is a Device that produces no sound; useful headless and in tests
type Silent struct{}

func (Silent) RenderTone(ctx context.Context, tone Tone) error {
	return ctx.Err()
}
