package midi

import (
	"context"
	"fmt"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-eartrain/debug"
	"go-eartrain/pitch"
	"go-eartrain/synth"
)

// ToneOutput plays tones on an external synth through a MIDI output port.
// It is a synth.Device; the harmonic profile is left to the receiving synth.
type ToneOutput struct {
	port     string
	channel  uint8
	velocity uint8

	mu   sync.Mutex
	send func(gomidi.Message) error
}

// NewToneOutput creates an output for the named port. The port is opened on
// the first tone.
func NewToneOutput(port string, channel, velocity uint8) *ToneOutput {
	if velocity == 0 {
		velocity = 100
	}
	return &ToneOutput{port: port, channel: channel & 0x0F, velocity: velocity & 0x7F}
}

// RenderTone holds the note for the tone duration. NoteOff is always sent,
// also when ctx is cancelled.
func (o *ToneOutput) RenderTone(ctx context.Context, tone synth.Tone) error {
	note := pitch.NoteForFrequency(tone.FrequencyHz)
	if err := o.write(gomidi.NoteOn(o.channel, note, o.velocity)); err != nil {
		return err
	}
	defer o.write(gomidi.NoteOff(o.channel, note))

	t := time.NewTimer(tone.Duration())
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (o *ToneOutput) write(msg gomidi.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.send == nil {
		out, err := gomidi.FindOutPort(o.port)
		if err != nil {
			return &synth.DeviceError{Backend: "midi", Err: fmt.Errorf("find output %q: %w", o.port, err)}
		}
		send, err := gomidi.SendTo(out)
		if err != nil {
			return &synth.DeviceError{Backend: "midi", Err: fmt.Errorf("open output %q: %w", o.port, err)}
		}
		debug.Log("midi", "tone output on %q ch=%d", o.port, o.channel)
		o.send = send
	}

	if err := o.send(msg); err != nil {
		// reopen on the next tone; the port may have been unplugged
		o.send = nil
		return &synth.DeviceError{Backend: "midi", Err: err}
	}
	return nil
}
