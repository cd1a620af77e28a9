package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Cue shapes
const (
	clickDuration   = 18 * time.Millisecond
	clickAttack     = 1 * time.Millisecond
	clickRelease    = 12 * time.Millisecond
	stingerDuration = 450 * time.Millisecond
	stingerAttack   = 5 * time.Millisecond
	stingerRelease  = 300 * time.Millisecond
	droneCycle      = 3 * time.Second
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator generates a fixed-length raw wave
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator creates an oscillator that ends after duration
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			val = -1.0
			if o.phase < 0.5 {
				val = 1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = rand.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies linear attack/release to a stream
type envelope struct {
	streamer     beep.Streamer
	position     int
	attack       int
	release      int
	releaseStart int
	total        int
}

// NewEnvelope shapes s with attack and release over duration
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	start := total - rel
	if start < att {
		start = att
	}
	return &envelope{
		streamer:     s,
		attack:       att,
		release:      rel,
		releaseStart: start,
		total:        total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attack && e.attack > 0 {
			vol = float64(e.position) / float64(e.attack)
		}
		if e.position >= e.releaseStart && e.release > 0 {
			vol = math.Max(0, float64(e.total-e.position)/float64(e.release))
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume wraps s in a linear gain; zero or less is silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// CreateClickSound generates one short typewriter tick
func CreateClickSound(cfg *AudioConfig) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)

	noise := NewOscillator(0, clickDuration, WaveNoise, rate)
	body := NewOscillator(1900, clickDuration, WaveSquare, rate)
	mixed := beep.Mix(newVolume(noise, 0.6), newVolume(body, 0.25))
	shaped := NewEnvelope(mixed, clickDuration, clickAttack, clickRelease, rate)

	return newVolume(shaped, cfg.EffectVolumes[SoundClick]*cfg.MasterVolume)
}

// CreateStingerSound generates the descending hit played on a cutaway
func CreateStingerSound(cfg *AudioConfig) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)
	half := stingerDuration / 2

	high := NewEnvelope(NewOscillator(659.25, half, WaveSaw, rate), half, stingerAttack, half/2, rate)
	low := NewEnvelope(NewOscillator(329.63, half, WaveSaw, rate), half, stingerAttack, stingerRelease/2, rate)
	hit := NewEnvelope(NewOscillator(0, 60*time.Millisecond, WaveNoise, rate), 60*time.Millisecond, 0, 50*time.Millisecond, rate)

	seq := beep.Seq(beep.Mix(high, newVolume(hit, 0.5)), low)
	return newVolume(seq, cfg.EffectVolumes[SoundStinger]*cfg.MasterVolume)
}

// DroneGenerator produces an endless low hum that swells and recedes
type DroneGenerator struct {
	sr      beep.SampleRate
	pos     int
	samples int
}

// NewDroneGenerator creates a drone generator
func NewDroneGenerator(sr beep.SampleRate) *DroneGenerator {
	return &DroneGenerator{
		sr:      sr,
		samples: sr.N(droneCycle),
	}
}

func (g *DroneGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		cyclePos := float64(g.pos%g.samples) / float64(g.samples)

		// Two detuned low sines beating against each other
		amplitude := 0.2 * (0.6 + 0.4*math.Sin(cyclePos*math.Pi*2))
		sample := amplitude * (math.Sin(2*math.Pi*55*t) + 0.5*math.Sin(2*math.Pi*55.7*t)) / 1.5

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *DroneGenerator) Err() error {
	return nil
}
