package engine

import (
	"github.com/lixenwraith/vi-novel/markup"
	"github.com/lixenwraith/vi-novel/script"
)

// DialogueFrame describes a dialogue box
type DialogueFrame struct {
	Branch  string
	NodeID  string
	Speaker string
	Variant string

	// Text is the revealed prefix as balanced markup, or the verbatim source once fully shown
	Text     string
	Markup   *markup.Text
	Revealed int
	Typing   bool
}

// ChoiceFrame describes a choice prompt
// Prompt is the last fully displayed line, shown above the options
type ChoiceFrame struct {
	Branch    string
	NodeID    string
	Labels    []string
	Highlight int
	Prompt    *DialogueFrame
}

// EffectFrame reports progress of a timed effect in [0, 1]
type EffectFrame struct {
	Kind     script.EffectKind
	NodeID   string
	Progress float64
	// Standalone is set for Effect nodes, unset for effects attached to a dialogue line
	Standalone bool
	Done       bool
}

// Surface receives render instructions; the engine never reads back from it
type Surface interface {
	RenderDialogue(DialogueFrame)
	RenderChoices(ChoiceFrame)
	RenderEffect(EffectFrame)
}

// MultiSurface fans every instruction out to each member in order
type MultiSurface []Surface

func (ms MultiSurface) RenderDialogue(f DialogueFrame) {
	for _, s := range ms {
		s.RenderDialogue(f)
	}
}

func (ms MultiSurface) RenderChoices(f ChoiceFrame) {
	for _, s := range ms {
		s.RenderChoices(f)
	}
}

func (ms MultiSurface) RenderEffect(f EffectFrame) {
	for _, s := range ms {
		s.RenderEffect(f)
	}
}

// NopSurface discards all instructions
type NopSurface struct{}

func (NopSurface) RenderDialogue(DialogueFrame) {}
func (NopSurface) RenderChoices(ChoiceFrame)    {}
func (NopSurface) RenderEffect(EffectFrame)     {}
