package synth

import (
	"io"
	"math"
	"time"
)

// DefaultSampleRate is used when a device does not ask for another rate
const DefaultSampleRate = 44100

// Tone is one fully specified render request.
type Tone struct {
	FrequencyHz     float64
	DurationSeconds float64
	Profile         Profile
}

// Duration returns the tone length as a time.Duration
func (t Tone) Duration() time.Duration {
	return time.Duration(t.DurationSeconds * float64(time.Second))
}

// Render synthesizes a tone as mono samples in [-1, 1]. The output depends only
// on the tone and the sample rate. It buffers the whole tone; devices stream
// through newSampleReader instead.
func Render(tone Tone, sampleRate int) []float64 {
	v := newVoice(tone, sampleRate)
	if v.n == 0 {
		return nil
	}
	out := make([]float64, 0, v.n)
	for {
		x, ok := v.next()
		if !ok {
			return out
		}
		out = append(out, x)
	}
}

type partial struct {
	step float64
	gain float64
}

// voice computes a tone one sample at a time
type voice struct {
	profile  Profile
	dur      float64
	sr       float64
	n        int64
	partials []partial

	noiseN int64
	lp     float64
	seed   uint64

	i int64
}

func newVoice(tone Tone, sampleRate int) *voice {
	sr := float64(sampleRate)
	v := &voice{profile: tone.Profile, dur: tone.DurationSeconds, sr: sr}
	if !(tone.FrequencyHz > 0) || !(tone.DurationSeconds > 0) || sampleRate <= 0 {
		return v
	}
	v.n = sampleCount(tone.DurationSeconds, sr)

	// normalise so the summed partials peak at 1
	nyquist := sr / 2
	var total float64
	for _, h := range tone.Profile.Harmonics {
		if tone.FrequencyHz*h.Ratio < nyquist {
			total += h.Gain
		}
	}
	for _, h := range tone.Profile.Harmonics {
		f := tone.FrequencyHz * h.Ratio
		if f >= nyquist || h.Gain == 0 {
			continue
		}
		v.partials = append(v.partials, partial{step: 2 * math.Pi * f / sr, gain: h.Gain / total})
	}

	if nb := tone.Profile.Noise; nb != nil && nb.Gain > 0 && nb.Length > 0 {
		v.noiseN = min(sampleCount(nb.Length.Seconds(), sr), v.n)
		v.seed = noiseSeed(tone)
	}
	return v
}

func sampleCount(seconds, sr float64) int64 {
	n := seconds * sr
	if n >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(n)
}

// next returns the following sample, or false once the tone is over
func (v *voice) next() (float64, bool) {
	if v.i >= v.n {
		return 0, false
	}
	i := float64(v.i)
	var x float64
	for _, p := range v.partials {
		x += oscillate(v.profile.Waveform, p.step*i) * p.gain
	}
	x *= v.profile.Envelope.Level(i/v.sr, v.dur)
	if v.i < v.noiseN {
		x += v.noise()
	}
	v.i++
	return clamp(x), true
}

// noise is a low-passed burst decaying exponentially to Floor
func (v *voice) noise() float64 {
	nb := v.profile.Noise
	x := float64(v.i) / float64(v.noiseN)
	env := nb.Gain * math.Pow(Floor/nb.Gain, x)
	if nb.Gain <= Floor {
		env = nb.Gain * (1 - x)
	}
	v.lp = v.lp*nb.Smoothing + lcg(&v.seed)*(1-nb.Smoothing)
	return v.lp * env
}

func oscillate(w Waveform, phase float64) float64 {
	if w == WaveTriangle {
		return (2.0 / math.Pi) * math.Asin(math.Sin(phase))
	}
	return math.Sin(phase)
}

func noiseSeed(t Tone) uint64 {
	return math.Float64bits(t.FrequencyHz) ^ math.Float64bits(t.DurationSeconds)<<1
}

// lcg advances the seed and returns a noise sample in [-1,1]
func lcg(seed *uint64) float64 {
	*seed = *seed*6364136223846793005 + 1442695040888963407
	return float64(int64(*seed>>33)-int64(1<<30)) / float64(1<<30)
}

func clamp(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

const frameBytes = 8

// EncodeStereoF32 packs mono samples as interleaved float32 LE stereo frames.
func EncodeStereoF32(samples []float64) []byte {
	buf := make([]byte, len(samples)*frameBytes)
	for i, s := range samples {
		putFrame(buf[i*frameBytes:], s)
	}
	return buf
}

func putFrame(buf []byte, s float64) {
	v := math.Float32bits(float32(s))
	for ch := 0; ch < 2; ch++ {
		o := ch * 4
		buf[o] = byte(v)
		buf[o+1] = byte(v >> 8)
		buf[o+2] = byte(v >> 16)
		buf[o+3] = byte(v >> 24)
	}
}

// sampleReader renders a voice into stereo frames as the player asks for them
type sampleReader struct {
	v     *voice
	frame [frameBytes]byte
	off   int
}

func newSampleReader(tone Tone, sampleRate int) *sampleReader {
	return &sampleReader{v: newVoice(tone, sampleRate), off: frameBytes}
}

func (r *sampleReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if r.off == frameBytes {
			s, ok := r.v.next()
			if !ok {
				break
			}
			putFrame(r.frame[:], s)
			r.off = 0
		}
		c := copy(p[n:], r.frame[r.off:])
		n += c
		r.off += c
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}
