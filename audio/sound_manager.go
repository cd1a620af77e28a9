package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// SoundManager plays reading cues through the system speaker
// Every method is a no-op until Initialize succeeds, so the reader works without audio
type SoundManager struct {
	mu          sync.Mutex
	cfg         *AudioConfig
	mixer       *beep.Mixer
	droneCtrl   *beep.Ctrl
	muted       bool
	initialized bool
}

// NewSoundManager creates a sound manager; nil cfg uses defaults
func NewSoundManager(cfg *AudioConfig) *SoundManager {
	if cfg == nil {
		cfg = DefaultAudioConfig()
	}
	return &SoundManager{
		cfg:   cfg,
		mixer: &beep.Mixer{},
	}
}

// Initialize sets up the speaker
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized || !sm.cfg.Enabled {
		return nil
	}

	rate := beep.SampleRate(sm.cfg.SampleRate)
	if err := speaker.Init(rate, rate.N(time.Millisecond*50)); err != nil {
		return err
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup stops all sounds
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	if sm.droneCtrl != nil {
		sm.droneCtrl.Paused = true
		sm.droneCtrl = nil
	}
	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	speaker.Clear()
	sm.initialized = false
}

// SetMuted silences or restores cue playback; a running drone stops on mute
func (sm *SoundManager) SetMuted(muted bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.muted = muted
	if muted && sm.droneCtrl != nil {
		sm.pauseDrone()
	}
}

// ToggleMute flips the mute state and returns the new state
func (sm *SoundManager) ToggleMute() bool {
	sm.mu.Lock()
	muted := !sm.muted
	sm.mu.Unlock()
	sm.SetMuted(muted)
	return muted
}

// Muted reports the mute state
func (sm *SoundManager) Muted() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.muted
}

func (sm *SoundManager) playable() bool {
	return sm.initialized && !sm.muted
}

// add hands a streamer to the mixer under the speaker lock
func (sm *SoundManager) add(s beep.Streamer) {
	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()
}

// PlayClick plays one typewriter tick
func (sm *SoundManager) PlayClick() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.playable() {
		return
	}
	sm.add(CreateClickSound(sm.cfg))
}

// PlayStinger plays the cutaway hit
func (sm *SoundManager) PlayStinger() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.playable() {
		return
	}
	sm.add(CreateStingerSound(sm.cfg))
}

// StartDrone starts the fade hum
func (sm *SoundManager) StartDrone() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.playable() {
		return
	}

	// If already playing, don't restart
	if sm.droneCtrl != nil && !sm.droneCtrl.Paused {
		return
	}

	rate := beep.SampleRate(sm.cfg.SampleRate)
	drone := newVolume(NewDroneGenerator(rate), sm.cfg.EffectVolumes[SoundDrone]*sm.cfg.MasterVolume)
	ctrl := &beep.Ctrl{Streamer: drone}
	sm.droneCtrl = ctrl
	sm.add(ctrl)
}

// StopDrone stops the fade hum
func (sm *SoundManager) StopDrone() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.droneCtrl != nil {
		sm.pauseDrone()
	}
}

// pauseDrone detaches the drone; a Ctrl with no streamer drains out of the mixer
func (sm *SoundManager) pauseDrone() {
	if sm.initialized {
		speaker.Lock()
		defer speaker.Unlock()
	}
	sm.droneCtrl.Paused = true
	sm.droneCtrl.Streamer = nil
	sm.droneCtrl = nil
}
