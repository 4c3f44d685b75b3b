package synth

import (
	"context"
	"errors"
	"io"
	"math"
	"sync"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Device that remembers every tone it was asked to render
type recorder struct {
	mu    sync.Mutex
	tones []Tone
	err   error
	block bool
}

func (r *recorder) RenderTone(ctx context.Context, tone Tone) error {
	r.mu.Lock()
	r.tones = append(r.tones, tone)
	r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func TestPlayRejectsInvalidParameters(t *testing.T) {
	s := New(&recorder{}, Bright())

	tests := []struct {
		name  string
		freq  float64
		dur   float64
		param string
	}{
		{"zero frequency", 0, 1.0, "frequencyHz"},
		{"negative frequency", -440, 1.0, "frequencyHz"},
		{"NaN frequency", math.NaN(), 1.0, "frequencyHz"},
		{"zero duration", 440, 0, "durationSeconds"},
		{"negative duration", 440, -0.5, "durationSeconds"},
		{"infinite duration", 440, math.Inf(1), "durationSeconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Play(context.Background(), tt.freq, tt.dur)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidToneParameter))

			var te *ToneError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, tt.param, te.Param)
		})
	}
}

func TestPlayLastsAtLeastDuration(t *testing.T) {
	rec := &recorder{}
	s := New(rec, Soft())

	start := time.Now()
	require.NoError(t, s.Play(context.Background(), 440, 0.05))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	require.Len(t, rec.tones, 1)
	assert.Equal(t, 440.0, rec.tones[0].FrequencyHz)
	assert.Equal(t, "soft", rec.tones[0].Profile.Name)
}

func TestPlayCancelled(t *testing.T) {
	s := New(&recorder{block: true}, Bright())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Play(ctx, 440, 5)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPlayPropagatesDeviceError(t *testing.T) {
	s := New(&recorder{err: &DeviceError{Backend: "test", Err: errors.New("no card")}}, Bright())
	err := s.Play(context.Background(), 440, 0.01)
	assert.ErrorIs(t, err, ErrAudioDeviceUnavailable)
	assert.Contains(t, err.Error(), "no card")
}

func TestSetProfile(t *testing.T) {
	s := New(Silent{}, Bright())
	require.NoError(t, s.SetProfile(Soft()))
	assert.Equal(t, "soft", s.Profile().Name)

	assert.Error(t, s.SetProfile(Profile{Name: "empty"}))
	assert.Equal(t, "soft", s.Profile().Name)
}

func TestProfileByName(t *testing.T) {
	for _, name := range ProfileNames() {
		p, err := ProfileByName(name)
		require.NoError(t, err)
		assert.NoError(t, p.Validate())
		assert.GreaterOrEqual(t, len(p.Harmonics), 3)
	}
	_, err := ProfileByName("kazoo")
	assert.Error(t, err)
}

func TestEnvelopeShape(t *testing.T) {
	for _, p := range []Profile{Bright(), Soft()} {
		for _, dur := range []float64{0.05, 0.5, 0.8, 2} {
			e := p.Envelope
			a, d, r := e.segments(dur)
			segment := func(x float64) int {
				switch {
				case x < a:
					return 0
				case x < a+d:
					return 1
				case x < dur-r:
					return 2
				default:
					return 3
				}
			}
			const step = 0.0005

			assert.Equal(t, 0.0, e.Level(0, dur))
			prev, prevSeg := 0.0, 0
			for x := step; x < dur; x += step {
				lvl := e.Level(x, dur)
				seg := segment(x)
				assert.GreaterOrEqual(t, lvl, 0.0)
				assert.LessOrEqual(t, lvl, 1.0)
				if seg == prevSeg {
					switch seg {
					case 0:
						assert.GreaterOrEqual(t, lvl, prev, "%s attack at %.4f", p.Name, x)
					case 1, 3:
						assert.LessOrEqual(t, lvl, prev+1e-9, "%s falling at %.4f", p.Name, x)
					}
				}
				if seg == 2 {
					assert.InDelta(t, e.Sustain, lvl, 1e-9, "%s sustain at %.4f", p.Name, x)
				}
				prev, prevSeg = lvl, seg
			}
			assert.Less(t, e.Level(dur-step/10, dur), 0.01, "%s ends near zero", p.Name)
			assert.Equal(t, 0.0, e.Level(dur, dur))
		}
	}
}

func TestEnvelopeScalesShortTones(t *testing.T) {
	e := Bright().Envelope
	a, d, r := e.segments(0.21)
	assert.InDelta(t, 0.21, a+d+r, 1e-9)
	assert.InDelta(t, 0.02/0.42*0.21, a, 1e-9)

	a, d, r = e.segments(1)
	assert.InDelta(t, 0.02, a, 1e-9)
	assert.InDelta(t, 0.1, d, 1e-9)
	assert.InDelta(t, 0.3, r, 1e-9)
}

func TestEnvelopePeaksAfterAttack(t *testing.T) {
	e := Bright().Envelope
	assert.InDelta(t, 1.0, e.Level(0.02, 1), 1e-9)
	assert.InDelta(t, 0.5, e.Level(0.01, 1), 1e-9)
	assert.InDelta(t, 0.7, e.Level(0.12, 1), 1e-9)
	assert.InDelta(t, 0.35, e.Level(0.85, 1), 1e-9)
}

func TestRenderDeterministicAndBounded(t *testing.T) {
	for _, p := range []Profile{Bright(), Soft()} {
		tone := Tone{FrequencyHz: 440, DurationSeconds: 0.25, Profile: p}
		a := Render(tone, 8000)
		b := Render(tone, 8000)
		require.Len(t, a, 2000)
		assert.Equal(t, a, b)

		var peak float64
		for _, s := range a {
			peak = math.Max(peak, math.Abs(s))
		}
		assert.LessOrEqual(t, peak, 1.0)
		assert.Greater(t, peak, 0.1, p.Name)
		assert.Less(t, math.Abs(a[0]), 0.01)
	}
}

func TestRenderProfilesDiffer(t *testing.T) {
	bright := Render(Tone{FrequencyHz: 261.63, DurationSeconds: 0.1, Profile: Bright()}, 8000)
	soft := Render(Tone{FrequencyHz: 261.63, DurationSeconds: 0.1, Profile: Soft()}, 8000)
	assert.NotEqual(t, bright, soft)
}

func TestRenderSkipsPartialsAboveNyquist(t *testing.T) {
	// 3x and 4x of 1500 Hz alias at 8 kHz; only 1x and 2x remain
	tone := Tone{FrequencyHz: 1500, DurationSeconds: 0.05, Profile: Bright()}
	out := Render(tone, 8000)
	require.NotEmpty(t, out)
	for _, s := range out {
		assert.LessOrEqual(t, math.Abs(s), 1.0)
	}
}

func TestNoiseBurstOnlyAtOnset(t *testing.T) {
	p := Soft()
	p.Harmonics = []Harmonic{{Ratio: 1, Gain: 0}}
	out := Render(Tone{FrequencyHz: 440, DurationSeconds: 0.3, Profile: p}, 8000)
	require.Len(t, out, 2400)

	var onset, tail float64
	for i, s := range out {
		if i < 800 {
			onset = math.Max(onset, math.Abs(s))
		} else {
			tail = math.Max(tail, math.Abs(s))
		}
	}
	assert.Greater(t, onset, 0.0)
	assert.Equal(t, 0.0, tail)
}

func TestRenderInvalidTone(t *testing.T) {
	assert.Nil(t, Render(Tone{FrequencyHz: 0, DurationSeconds: 1, Profile: Bright()}, 8000))
	assert.Nil(t, Render(Tone{FrequencyHz: 440, DurationSeconds: 0, Profile: Bright()}, 8000))
}

func TestEncodeStereoF32(t *testing.T) {
	buf := EncodeStereoF32([]float64{0.5, -1})
	require.Len(t, buf, 16)
	assert.Equal(t, buf[0:4], buf[4:8])
	bits := uint32(buf[8]) | uint32(buf[9])<<8 | uint32(buf[10])<<16 | uint32(buf[11])<<24
	assert.Equal(t, float32(-1), math.Float32frombits(bits))
}

func TestSampleReaderMatchesRender(t *testing.T) {
	tone := Tone{FrequencyHz: 440, DurationSeconds: 0.05, Profile: Soft()}
	want := EncodeStereoF32(Render(tone, 8000))

	// odd chunk sizes split frames across reads
	r := newSampleReader(tone, 8000)
	got, err := io.ReadAll(iotest.OneByteReader(r))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = r.Read(make([]byte, 3))
	assert.ErrorIs(t, err, io.EOF)
}

func TestSampleReaderStreamsLongTones(t *testing.T) {
	const (
		rate  = 100
		hours = 3
	)
	tone := Tone{FrequencyHz: 20, DurationSeconds: hours * 3600, Profile: Bright()}
	r := newSampleReader(tone, rate)

	buf := make([]byte, 4100)
	var total int
	var peak float64
	for {
		n, err := r.Read(buf)
		total += n
		for i := 0; i+4 <= n; i += 4 {
			bits := uint32(buf[i]) | uint32(buf[i+1])<<8 | uint32(buf[i+2])<<16 | uint32(buf[i+3])<<24
			peak = math.Max(peak, math.Abs(float64(math.Float32frombits(bits))))
		}
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, hours*3600*rate*frameBytes, total)
	assert.LessOrEqual(t, peak, 1.0)
	assert.Greater(t, peak, 0.1)
}

func TestSampleReaderHugeDuration(t *testing.T) {
	r := newSampleReader(Tone{FrequencyHz: 440, DurationSeconds: 1e12, Profile: Bright()}, DefaultSampleRate)
	assert.Equal(t, int64(1e12*DefaultSampleRate), r.v.n)

	buf := make([]byte, 1<<12)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
}

func TestOtoDeviceVolume(t *testing.T) {
	assert.Equal(t, 0.0, NewOtoDevice(0, 0).volume, "zero mutes")
	assert.Equal(t, 0.0, NewOtoDevice(0, -2).volume)
	assert.Equal(t, 0.4, NewOtoDevice(0, 0.4).volume)
	assert.Equal(t, 1.0, NewOtoDevice(0, 3).volume)
	assert.Equal(t, DefaultSampleRate, NewOtoDevice(0, 1).SampleRate())
}

func TestDeviceErrorUnwrap(t *testing.T) {
	base := errors.New("busy")
	err := &DeviceError{Backend: "oto", Err: base}
	assert.ErrorIs(t, err, ErrAudioDeviceUnavailable)
	assert.ErrorIs(t, err, base)
	assert.ErrorIs(t, &DeviceError{Backend: "oto"}, ErrAudioDeviceUnavailable)
}
