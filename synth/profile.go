package synth

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Waveform is the oscillator shape used for every partial
type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
)

func (w Waveform) String() string {
	switch w {
	case WaveTriangle:
		return "triangle"
	default:
		return "sine"
	}
}

// Curve selects how a ramp moves between levels
type Curve int

const (
	CurveLinear Curve = iota
	CurveExponential
)

// Floor is the level exponential ramps aim for instead of zero
const Floor = 0.001

// Harmonic is one partial: a frequency multiple and its gain.
type Harmonic struct {
	Ratio float64
	Gain  float64
}

// Envelope is an attack/decay/sustain/release amplitude shape. Attack ramps
// linearly from 0 to 1, decay falls to Sustain, sustain holds until Release
// before the end, and release falls to (near) zero at the end of the tone.
type Envelope struct {
	Attack       time.Duration
	Decay        time.Duration
	Sustain      float64
	Release      time.Duration
	DecayCurve   Curve
	ReleaseCurve Curve
}

// NoiseBurst is a short low-passed noise transient at onset
type NoiseBurst struct {
	Length time.Duration
	Gain   float64
	// one-pole lowpass coefficient (0 = no filtering)
	Smoothing float64
}

// Profile is the harmonic profile of a tone: partial layout, envelope and
// optional onset noise.
type Profile struct {
	Name      string
	Waveform  Waveform
	Harmonics []Harmonic
	Envelope  Envelope
	Noise     *NoiseBurst
}

// Bright layers three overtones over a triangle fundamental with a linear envelope.
func Bright() Profile {
	return Profile{
		Name:     "bright",
		Waveform: WaveTriangle,
		Harmonics: []Harmonic{
			{Ratio: 1, Gain: 1},
			{Ratio: 2, Gain: 0.5},
			{Ratio: 3, Gain: 0.25},
			{Ratio: 4, Gain: 0.125},
		},
		Envelope: Envelope{
			Attack:  20 * time.Millisecond,
			Decay:   100 * time.Millisecond,
			Sustain: 0.7,
			Release: 300 * time.Millisecond,
		},
	}
}

// Soft is a sine stack with exponential decay and a string-like onset.
func Soft() Profile {
	return Profile{
		Name:     "soft",
		Waveform: WaveSine,
		Harmonics: []Harmonic{
			{Ratio: 1, Gain: 0.7},
			{Ratio: 2, Gain: 0.15},
			{Ratio: 3, Gain: 0.10},
			{Ratio: 4, Gain: 0.05},
		},
		Envelope: Envelope{
			Attack:       20 * time.Millisecond,
			Decay:        100 * time.Millisecond,
			Sustain:      0.15,
			Release:      300 * time.Millisecond,
			DecayCurve:   CurveExponential,
			ReleaseCurve: CurveExponential,
		},
		Noise: &NoiseBurst{
			Length:    100 * time.Millisecond,
			Gain:      0.02,
			Smoothing: 0.88,
		},
	}
}

var builtin = map[string]func() Profile{
	"bright": Bright,
	"soft":   Soft,
}

// ProfileNames lists the built-in profiles
func ProfileNames() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ProfileByName returns a built-in profile
func ProfileByName(name string) (Profile, error) {
	fn, ok := builtin[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown harmonic profile %q (have %v)", name, ProfileNames())
	}
	return fn(), nil
}

// Validate checks the profile can be rendered
func (p Profile) Validate() error {
	if len(p.Harmonics) == 0 {
		return fmt.Errorf("profile %q: no harmonics", p.Name)
	}
	for i, h := range p.Harmonics {
		if h.Ratio <= 0 || h.Gain < 0 {
			return fmt.Errorf("profile %q: harmonic %d: ratio must be > 0 and gain >= 0", p.Name, i)
		}
	}
	e := p.Envelope
	if e.Attack < 0 || e.Decay < 0 || e.Release < 0 {
		return fmt.Errorf("profile %q: negative envelope segment", p.Name)
	}
	if e.Sustain < 0 || e.Sustain > 1 {
		return fmt.Errorf("profile %q: sustain %g outside [0,1]", p.Name, e.Sustain)
	}
	if p.Noise != nil && (p.Noise.Smoothing < 0 || p.Noise.Smoothing >= 1) {
		return fmt.Errorf("profile %q: noise smoothing must be in [0,1)", p.Name)
	}
	return nil
}

// segments returns attack, decay and release in seconds, scaled down
// proportionally when they do not fit inside dur.
func (e Envelope) segments(dur float64) (a, d, r float64) {
	a, d, r = e.Attack.Seconds(), e.Decay.Seconds(), e.Release.Seconds()
	if total := a + d + r; total > dur && total > 0 {
		k := dur / total
		a, d, r = a*k, d*k, r*k
	}
	return a, d, r
}

// Level returns the envelope gain at t seconds into a tone of dur seconds.
func (e Envelope) Level(t, dur float64) float64 {
	if t < 0 || t >= dur {
		return 0
	}
	a, d, r := e.segments(dur)
	s := e.Sustain
	releaseStart := dur - r

	switch {
	case t < a:
		return t / a
	case t < a+d:
		x := (t - a) / d
		if e.DecayCurve == CurveExponential {
			return math.Pow(math.Max(s, Floor), x)
		}
		return 1 - (1-s)*x
	case t < releaseStart:
		return s
	default:
		x := (t - releaseStart) / r
		if e.ReleaseCurve == CurveExponential && s > Floor {
			return s * math.Pow(Floor/s, x)
		}
		return s * (1 - x)
	}
}
