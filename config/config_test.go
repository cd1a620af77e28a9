package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lixenwraith/vi-novel/engine"
	"github.com/lixenwraith/vi-novel/script"
)

func TestDefaults(t *testing.T) {
	c := Default()

	if c.Pacing.Default != 40*time.Millisecond {
		t.Errorf("Expected default char delay 40ms, got %v", c.Pacing.Default)
	}
	if c.Pacing.Slow != 150*time.Millisecond || c.Pacing.Pause != 400*time.Millisecond {
		t.Errorf("Unexpected slow/pause delays: %v/%v", c.Pacing.Slow, c.Pacing.Pause)
	}
	if !strings.ContainsRune(c.Pacing.PauseRunes, '。') {
		t.Error("Expected CJK full stop among pause runes")
	}
	if c.Input.LongPressHold != 2*time.Second {
		t.Errorf("Expected 2s long press, got %v", c.Input.LongPressHold)
	}
	if !c.Audio.Enabled {
		t.Error("Expected audio enabled by default")
	}
	if c.Web.Addr == "" || c.Log.Dir != "logs" {
		t.Errorf("Unexpected web/log defaults: %q %q", c.Web.Addr, c.Log.Dir)
	}
}

func TestParseOverrides(t *testing.T) {
	data := []byte(`
script:
  path: chapters/one.yaml
  branch: win
pacing:
  default: 20ms
  pause: 1s
effects:
  frame: 50ms
  suppress: [particleReveal]
input:
  keys:
    dialogue:
      j: advance
audio:
  enabled: false
web:
  addr: ":9000"
`)
	c, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if c.Pacing.Default != 20*time.Millisecond || c.Pacing.Pause != time.Second {
		t.Errorf("Pacing overrides not applied: %+v", c.Pacing)
	}
	if c.Pacing.Slow != engine.DefaultSlowDelay {
		t.Errorf("Expected unset slow delay to default, got %v", c.Pacing.Slow)
	}
	if c.Audio.Enabled {
		t.Error("Expected audio disabled")
	}
	if c.Input.Keys["dialogue"]["j"] != "advance" {
		t.Errorf("Key override lost: %v", c.Input.Keys)
	}

	opts := c.EngineOptions()
	if opts.Branch != "win" || opts.EffectFrame != 50*time.Millisecond {
		t.Errorf("Unexpected engine options: %+v", opts)
	}
	if len(opts.Suppress) != 1 || opts.Suppress[0] != script.EffectParticleReveal {
		t.Errorf("Expected particleReveal suppressed, got %v", opts.Suppress)
	}
}

func TestParseRejectsUnknownEffect(t *testing.T) {
	_, err := Parse([]byte("effects:\n  suppress: [explode]\n"))
	if err == nil || !strings.Contains(err.Error(), "explode") {
		t.Errorf("Expected unknown effect error, got %v", err)
	}
}

func TestParseRejectsBadDuration(t *testing.T) {
	if _, err := Parse([]byte("pacing:\n  default: fast\n")); err == nil {
		t.Error("Expected error for unparsable duration")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vi-novel.yaml")
	if err := os.WriteFile(path, []byte("pacing:\n  slow: 300ms\n"), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if c.EnginePacing().Slow != 300*time.Millisecond {
		t.Errorf("Expected slow 300ms, got %v", c.EnginePacing().Slow)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
