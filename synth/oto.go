package synth

import (
	"context"
	"sync"
	"time"

	"github.com/hajimehoshi/oto/v2"

	"go-eartrain/debug"
)

const (
	otoChannels     = 2
	otoPollInterval = 10 * time.Millisecond
	otoReadyTimeout = 3 * time.Second
)

// OtoDevice plays rendered tones on the system speaker.
//
// The oto context is opened lazily on the first tone and kept for the life of
// the process (oto allows one context per process). If opening fails, every
// call reports ErrAudioDeviceUnavailable and the next call tries again.
type OtoDevice struct {
	sampleRate int
	volume     float64

	mu    sync.Mutex
	ctx   *oto.Context
	ready chan struct{}
}

// NewOtoDevice creates a speaker device. Nothing is opened until the first tone.
func NewOtoDevice(sampleRate int, volume float64) *OtoDevice {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	volume = max(0, min(volume, 1))
	return &OtoDevice{sampleRate: sampleRate, volume: volume}
}

// SampleRate returns the render rate
func (d *OtoDevice) SampleRate() int {
	return d.sampleRate
}

func (d *OtoDevice) open() (*oto.Context, chan struct{}, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx != nil {
		return d.ctx, d.ready, nil
	}
	c, ready, err := oto.NewContext(d.sampleRate, otoChannels, oto.FormatFloat32LE)
	if err != nil {
		debug.Log("audio", "oto context failed: %v", err)
		return nil, nil, &DeviceError{Backend: "oto", Err: err}
	}
	debug.Log("audio", "oto context opened at %d Hz", d.sampleRate)
	d.ctx, d.ready = c, ready
	return c, ready, nil
}

// RenderTone streams the tone and blocks until the player has drained it.
// The player is closed on every return path.
func (d *OtoDevice) RenderTone(ctx context.Context, tone Tone) error {
	c, ready, err := d.open()
	if err != nil {
		return err
	}

	select {
	case <-ready:
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(otoReadyTimeout):
		return &DeviceError{Backend: "oto"}
	}

	player := c.NewPlayer(newSampleReader(tone, d.sampleRate))
	defer player.Close()
	player.SetVolume(d.volume)
	player.Play()

	ticker := time.NewTicker(otoPollInterval)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	if err := player.Err(); err != nil {
		return &DeviceError{Backend: "oto", Err: err}
	}
	return nil
}
