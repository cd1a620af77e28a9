// Package config loads vi-novel settings from YAML
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/vi-novel/engine"
	"github.com/lixenwraith/vi-novel/script"
)

// Config holds all vi-novel configuration
type Config struct {
	Script  ScriptConfig  `yaml:"script"`
	Pacing  PacingConfig  `yaml:"pacing"`
	Effects EffectsConfig `yaml:"effects"`
	Input   InputConfig   `yaml:"input"`
	Audio   AudioConfig   `yaml:"audio"`
	Web     WebConfig     `yaml:"web"`
	Log     LogConfig     `yaml:"log"`
}

// ScriptConfig selects the chapter to play
type ScriptConfig struct {
	Path   string `yaml:"path"`
	Branch string `yaml:"branch"`
}

// PacingConfig is the typewriter delay table
type PacingConfig struct {
	Default    time.Duration `yaml:"default"`
	Slow       time.Duration `yaml:"slow"`
	Pause      time.Duration `yaml:"pause"`
	PauseRunes string        `yaml:"pause_runes"`
}

// EffectsConfig controls timed effects
type EffectsConfig struct {
	Frame    time.Duration `yaml:"frame"`
	Suppress []string      `yaml:"suppress"`
}

// InputConfig controls key bindings and long-press detection
type InputConfig struct {
	LongPressHold time.Duration `yaml:"long_press_hold"`
	RepeatWindow  time.Duration `yaml:"repeat_window"`
	// Keys holds per-section overrides: section → key name → action name
	Keys map[string]map[string]string `yaml:"keys"`
}

// AudioConfig controls the sound cues
type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
	// ClickEvery plays one typewriter click per this many revealed characters
	ClickEvery int `yaml:"click_every"`
}

// WebConfig controls the browser host
type WebConfig struct {
	Addr           string        `yaml:"addr"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	PingInterval   time.Duration `yaml:"ping_interval"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// LogConfig controls debug log output
type LogConfig struct {
	Dir     string `yaml:"dir"`
	MaxSize int64  `yaml:"max_size"`
}

// Default returns a config with every field at its default
func Default() *Config {
	c := &Config{Audio: AudioConfig{Enabled: true}}
	c.defaults()
	return c
}

func (c *Config) defaults() {
	if c.Pacing.Default <= 0 {
		c.Pacing.Default = engine.DefaultCharDelay
	}
	if c.Pacing.Slow <= 0 {
		c.Pacing.Slow = engine.DefaultSlowDelay
	}
	if c.Pacing.Pause <= 0 {
		c.Pacing.Pause = engine.DefaultPauseDelay
	}
	if c.Pacing.PauseRunes == "" {
		c.Pacing.PauseRunes = engine.DefaultPauseRunes
	}
	if c.Effects.Frame <= 0 {
		c.Effects.Frame = engine.DefaultEffectFrame
	}
	if c.Input.LongPressHold <= 0 {
		c.Input.LongPressHold = 2 * time.Second
	}
	if c.Input.RepeatWindow <= 0 {
		c.Input.RepeatWindow = 600 * time.Millisecond
	}
	if c.Audio.Volume <= 0 || c.Audio.Volume > 1 {
		c.Audio.Volume = 0.6
	}
	if c.Audio.ClickEvery <= 0 {
		c.Audio.ClickEvery = 2
	}
	if c.Web.Addr == "" {
		c.Web.Addr = "127.0.0.1:8080"
	}
	if c.Web.WriteTimeout <= 0 {
		c.Web.WriteTimeout = 10 * time.Second
	}
	if c.Web.PingInterval <= 0 {
		c.Web.PingInterval = 30 * time.Second
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "logs"
	}
	if c.Log.MaxSize <= 0 {
		c.Log.MaxSize = 10 * 1024 * 1024
	}
}

// Parse decodes YAML config data and fills defaults
// Audio is enabled unless the document disables it
func Parse(data []byte) (*Config, error) {
	c := &Config{Audio: AudioConfig{Enabled: true}}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config parse: %w", err)
	}
	c.defaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile reads a YAML config file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Validate rejects unknown effect kinds in the suppress list
func (c *Config) Validate() error {
	for _, name := range c.Effects.Suppress {
		if !script.EffectKind(name).Valid() {
			return fmt.Errorf("config: effects.suppress: unknown effect kind %q", name)
		}
	}
	return nil
}

// EnginePacing converts the pacing table for the engine
func (c *Config) EnginePacing() engine.Pacing {
	return engine.Pacing{
		Default:    c.Pacing.Default,
		Slow:       c.Pacing.Slow,
		Pause:      c.Pacing.Pause,
		PauseRunes: c.Pacing.PauseRunes,
	}
}

// EngineOptions builds engine options; callbacks and logger are left to the host
func (c *Config) EngineOptions() engine.Options {
	suppress := make([]script.EffectKind, 0, len(c.Effects.Suppress))
	for _, name := range c.Effects.Suppress {
		suppress = append(suppress, script.EffectKind(name))
	}
	return engine.Options{
		Branch:      c.Script.Branch,
		Pacing:      c.EnginePacing(),
		EffectFrame: c.Effects.Frame,
		Suppress:    suppress,
	}
}
