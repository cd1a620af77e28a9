package audio

import (
	"testing"
)

// TestSoundManagerGracefulDegradation verifies cue calls don't panic when not initialized
func TestSoundManagerGracefulDegradation(t *testing.T) {
	sm := NewSoundManager(nil)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Sound operations panicked without initialization: %v", r)
		}
	}()

	sm.PlayClick()
	sm.PlayStinger()
	sm.StartDrone()
	sm.StopDrone()
	sm.ToggleMute()
	sm.Cleanup()
}

// TestSoundManagerDisabled verifies a disabled config never touches the speaker
func TestSoundManagerDisabled(t *testing.T) {
	cfg := DefaultAudioConfig()
	cfg.Enabled = false
	sm := NewSoundManager(cfg)

	if err := sm.Initialize(); err != nil {
		t.Fatalf("Disabled audio should initialize as a no-op, got %v", err)
	}
	if sm.initialized {
		t.Error("Disabled audio must not initialize the speaker")
	}
}

// TestSoundManagerInitialization verifies sound manager can be initialized and cleaned up
func TestSoundManagerInitialization(t *testing.T) {
	sm := NewSoundManager(nil)

	// Speaker initialization may fail in CI/test environments without audio devices
	if err := sm.Initialize(); err != nil {
		t.Logf("Sound initialization failed (expected in test environment): %v", err)
		return
	}

	if err := sm.Initialize(); err != nil {
		t.Errorf("Second initialization should succeed as no-op, got error: %v", err)
	}
	sm.StartDrone()
	sm.StopDrone()
	sm.Cleanup()
}

func TestSoundManagerMute(t *testing.T) {
	sm := NewSoundManager(nil)

	if sm.Muted() {
		t.Fatal("Expected unmuted by default")
	}
	if !sm.ToggleMute() || !sm.Muted() {
		t.Error("Expected toggle to mute")
	}
	if sm.ToggleMute() {
		t.Error("Expected second toggle to unmute")
	}
}
