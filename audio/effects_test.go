package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
)

// drain streams s to completion and returns the sample count and peak
func drain(t *testing.T, s beep.Streamer, limit int) (int, float64) {
	t.Helper()
	buf := make([][2]float64, 512)
	total, peak := 0, 0.0
	for total < limit {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			for _, v := range buf[i] {
				if v > peak {
					peak = v
				}
				if -v > peak {
					peak = -v
				}
			}
		}
		total += n
		if !ok {
			return total, peak
		}
	}
	t.Fatalf("Streamer did not end within %d samples", limit)
	return 0, 0
}

// TestOscillatorWaves verifies each wave stays in range and ends on time
func TestOscillatorWaves(t *testing.T) {
	rate := beep.SampleRate(44100)
	for _, wave := range []WaveType{WaveSine, WaveSquare, WaveSaw, WaveNoise} {
		osc := NewOscillator(440, 100*time.Millisecond, wave, rate)
		n, peak := drain(t, osc, rate.N(time.Second))

		if n != rate.N(100*time.Millisecond) {
			t.Errorf("Wave %d: expected %d samples, got %d", wave, rate.N(100*time.Millisecond), n)
		}
		if peak > 1.0 {
			t.Errorf("Wave %d: sample out of range: %f", wave, peak)
		}
		if osc.Err() != nil {
			t.Errorf("Wave %d: unexpected error %v", wave, osc.Err())
		}
	}
}

// TestEnvelopeShapesEdges verifies attack starts silent and the stream ends at duration
func TestEnvelopeShapesEdges(t *testing.T) {
	rate := beep.SampleRate(44100)
	osc := NewOscillator(0, time.Second, WaveSquare, rate)
	env := NewEnvelope(osc, 50*time.Millisecond, 10*time.Millisecond, 10*time.Millisecond, rate)

	buf := make([][2]float64, 1)
	env.Stream(buf)
	if buf[0][0] != 0 {
		t.Errorf("Expected silent first sample during attack, got %f", buf[0][0])
	}

	n, _ := drain(t, env, rate.N(time.Second))
	if n+1 != rate.N(50*time.Millisecond) {
		t.Errorf("Expected envelope to cut at 50ms, got %d samples", n+1)
	}
}

func TestCueSoundsAreShortAndBounded(t *testing.T) {
	cfg := DefaultAudioConfig()
	rate := beep.SampleRate(cfg.SampleRate)

	clickLen, clickPeak := drain(t, CreateClickSound(cfg), rate.N(time.Second))
	if clickLen > rate.N(clickDuration)+1 {
		t.Errorf("Click too long: %d samples", clickLen)
	}
	if clickPeak > 1.0 {
		t.Errorf("Click clips: %f", clickPeak)
	}

	stingerLen, _ := drain(t, CreateStingerSound(cfg), rate.N(2*time.Second))
	if stingerLen == 0 || stingerLen > rate.N(stingerDuration)+2 {
		t.Errorf("Unexpected stinger length %d", stingerLen)
	}
}

func TestDroneGeneratorLoops(t *testing.T) {
	rate := beep.SampleRate(44100)
	g := NewDroneGenerator(rate)

	buf := make([][2]float64, rate.N(droneCycle)+100)
	n, ok := g.Stream(buf)
	if !ok || n != len(buf) {
		t.Fatalf("Drone should stream indefinitely, got n=%d ok=%v", n, ok)
	}
	for i := range buf {
		if buf[i][0] > 1 || buf[i][0] < -1 {
			t.Fatalf("Drone sample %d out of range: %f", i, buf[i][0])
		}
	}
}
