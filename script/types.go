package script

import (
	"time"

	"github.com/lixenwraith/vi-novel/markup"
)

// End is the termination sentinel accepted wherever a next target is expected
const End = "end"

// DefaultStart is the branch a reader enters when the script does not name one
const DefaultStart = "opening"

// EffectKind enumerates timed presentation effects
type EffectKind string

const (
	EffectInsertCutaway  EffectKind = "insertCutaway"
	EffectFadeOut        EffectKind = "fadeOut"
	EffectParticleReveal EffectKind = "particleReveal"
)

// Valid reports whether k is a known effect kind
func (k EffectKind) Valid() bool {
	switch k {
	case EffectInsertCutaway, EffectFadeOut, EffectParticleReveal:
		return true
	}
	return false
}

// Node is one step of a branch: *Dialogue, *Choice or *Effect
type Node interface {
	NodeID() string
	node()
}

// Dialogue is a spoken line revealed by the typewriter
type Dialogue struct {
	ID      string
	Speaker string
	Text    *markup.Text
	Next    string

	// PauseAfter gates advance for this long once typing finishes on its own
	PauseAfter time.Duration
	// Variant is an opaque presentation hint passed to the surface (e.g. "shout-effect")
	Variant string
	// Trigger fires a timed effect when the line is entered
	Trigger *Trigger
}

// Trigger is a declarative timed effect attached to a Dialogue
type Trigger struct {
	Kind     EffectKind
	Duration time.Duration
}

// Choice offers the reader a set of branches
type Choice struct {
	ID      string
	Options []Option
}

// Option is one selectable entry of a Choice
// Target is a branch name or a node id
type Option struct {
	Label  string
	Target string
}

// Effect is a standalone timed presentation step owned by the host
type Effect struct {
	ID       string
	Kind     EffectKind
	Duration time.Duration
	Next     string
}

func (d *Dialogue) NodeID() string { return d.ID }
func (c *Choice) NodeID() string   { return c.ID }
func (e *Effect) NodeID() string   { return e.ID }

func (*Dialogue) node() {}
func (*Choice) node()   {}
func (*Effect) node()   {}

// Branch is a named, ordered sequence of nodes
type Branch struct {
	Name string
	// ForwardOnly marks a branch that retreat must not unwind out of
	ForwardOnly bool
	Nodes       []Node
}

// Position points at a node inside the script
type Position struct {
	Branch string
	Index  int
}

// Target is a resolved next reference
type Target struct {
	End bool
	Pos Position
}

// Line builds a Dialogue from literal markup; it panics if text does not parse
func Line(id, speaker, text, next string) *Dialogue {
	return &Dialogue{ID: id, Speaker: speaker, Text: markup.MustParse(text), Next: next}
}
