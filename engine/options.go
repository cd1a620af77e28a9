package engine

import (
	"log"
	"strings"
	"time"

	"github.com/lixenwraith/vi-novel/script"
)

// Typewriter pacing defaults
const (
	DefaultCharDelay   = 40 * time.Millisecond
	DefaultSlowDelay   = 150 * time.Millisecond
	DefaultPauseDelay  = 400 * time.Millisecond
	DefaultEffectFrame = 100 * time.Millisecond

	// DefaultPauseRunes holds punctuation followed by a long pause
	DefaultPauseRunes = "，。！？；：、…─—～‧,!?;:"
)

// Pacing is the per-character delay table of the typewriter
type Pacing struct {
	Default time.Duration
	Slow    time.Duration
	Pause   time.Duration
	// PauseRunes lists characters after which Pause applies, regardless of slow spans
	PauseRunes string
}

// DefaultPacing returns the standard delay table
func DefaultPacing() Pacing {
	return Pacing{
		Default:    DefaultCharDelay,
		Slow:       DefaultSlowDelay,
		Pause:      DefaultPauseDelay,
		PauseRunes: DefaultPauseRunes,
	}
}

func (p Pacing) isPause(r rune) bool {
	return strings.ContainsRune(p.PauseRunes, r)
}

// Options configures an Engine
type Options struct {
	// Branch is the entry branch; empty uses the script's start branch
	Branch string
	Pacing Pacing
	// EffectFrame is the interval between effect progress frames
	EffectFrame time.Duration
	// Suppress lists effect kinds the host has already handled; they never block
	Suppress []script.EffectKind

	// OnComplete receives the terminal branch name, exactly once
	OnComplete func(branch string)
	// OnError receives script errors raised from timer callbacks, where no caller can take a return value
	OnError func(error)

	Logger *log.Logger
}

func (o *Options) defaults() {
	if o.Pacing.Default <= 0 {
		o.Pacing.Default = DefaultCharDelay
	}
	if o.Pacing.Slow <= 0 {
		o.Pacing.Slow = DefaultSlowDelay
	}
	if o.Pacing.Pause <= 0 {
		o.Pacing.Pause = DefaultPauseDelay
	}
	if o.Pacing.PauseRunes == "" {
		o.Pacing.PauseRunes = DefaultPauseRunes
	}
	if o.EffectFrame <= 0 {
		o.EffectFrame = DefaultEffectFrame
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
}

func (o *Options) suppressed(k script.EffectKind) bool {
	for _, s := range o.Suppress {
		if s == k {
			return true
		}
	}
	return false
}
