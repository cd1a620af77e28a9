// Package engine walks a script graph: typewriter reveal, choices, history and timed effects
// An Engine is not safe for concurrent use; the host calls it and runs scheduler callbacks on one goroutine
package engine

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/vi-novel/script"
)

// ErrClosed is returned by Start after Close
var ErrClosed = errors.New("engine closed")

// Phase is the externally visible state of the engine
type Phase uint8

const (
	PhaseDialogueTyping Phase = iota
	PhaseDialogueIdle
	PhaseChoicePending
	PhaseEffectBlocking
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseDialogueTyping:
		return "dialogue-typing"
	case PhaseDialogueIdle:
		return "dialogue-idle"
	case PhaseChoicePending:
		return "choice-pending"
	case PhaseEffectBlocking:
		return "effect-blocking"
	case PhaseTerminated:
		return "terminated"
	}
	return fmt.Sprintf("phase(%d)", p)
}

// State is a read-only snapshot of the engine
type State struct {
	Branch       string
	Index        int
	NodeID       string
	Phase        Phase
	Displayed    string
	Revealed     int
	Total        int
	Typing       bool
	HistoryDepth int
	Highlight    int
	Effects      []script.EffectKind
	Gated        bool
	Paused       bool
	Terminated   bool
}

// Engine drives a reader through a script
type Engine struct {
	script  *script.Script
	surface Surface
	sched   Scheduler
	opts    Options

	pos     script.Position
	history []script.Position

	displayed string
	revealed  int
	typing    bool
	highlight int
	snapshot  *DialogueFrame

	effects []*effectRun
	gated   bool
	paused  bool

	typeTimer Timer
	gateTimer Timer

	// gen invalidates callbacks scheduled for a node that is no longer current
	gen uint64

	started    bool
	terminated bool
	closed     bool
}

// New creates an engine positioned at the entry branch; call Start to render
func New(s *script.Script, surface Surface, sched Scheduler, opts Options) (*Engine, error) {
	if s == nil {
		return nil, errors.New("engine: nil script")
	}
	if sched == nil {
		return nil, errors.New("engine: nil scheduler")
	}
	if surface == nil {
		surface = NopSurface{}
	}
	opts.defaults()

	branch := opts.Branch
	if branch == "" {
		branch = s.Start()
	}
	if !s.HasBranch(branch) {
		return nil, &script.ScriptError{Branch: branch, Err: fmt.Errorf("%w: entry branch", script.ErrDanglingTarget)}
	}

	return &Engine{
		script:  s,
		surface: surface,
		sched:   sched,
		opts:    opts,
		pos:     script.Position{Branch: branch},
	}, nil
}

// Start enters the first node and renders it
func (e *Engine) Start() error {
	if e.closed {
		return ErrClosed
	}
	if e.started {
		return nil
	}
	e.started = true

	target, err := e.land(e.pos)
	if err != nil {
		return e.fail(err, false)
	}
	if target.End {
		e.terminate()
		return nil
	}
	e.enter(target.Pos)
	return nil
}

// Close cancels every pending timer; no callback takes effect afterwards
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.cancelAll()
}

// SetPaused toggles the host-declared paused state that gates Advance
func (e *Engine) SetPaused(paused bool) {
	e.paused = paused
}

// State returns a snapshot of the engine
func (e *Engine) State() State {
	st := State{
		Branch:       e.pos.Branch,
		Index:        e.pos.Index,
		Phase:        e.phase(),
		Displayed:    e.displayed,
		Revealed:     e.revealed,
		Typing:       e.typing,
		HistoryDepth: len(e.history),
		Highlight:    e.highlight,
		Gated:        e.gated,
		Paused:       e.paused,
		Terminated:   e.terminated,
	}
	if n, ok := e.script.Node(e.pos); ok {
		st.NodeID = n.NodeID()
		if d, ok := n.(*script.Dialogue); ok {
			st.Total = d.Text.Len()
		}
	}
	for _, run := range e.effects {
		st.Effects = append(st.Effects, run.kind)
	}
	return st
}

// History returns the back-navigation stack, oldest first
func (e *Engine) History() []script.Position {
	out := make([]script.Position, len(e.history))
	copy(out, e.history)
	return out
}

func (e *Engine) phase() Phase {
	if e.terminated {
		return PhaseTerminated
	}
	switch e.current().(type) {
	case *script.Effect:
		return PhaseEffectBlocking
	case *script.Choice:
		return PhaseChoicePending
	}
	if e.typing {
		return PhaseDialogueTyping
	}
	return PhaseDialogueIdle
}

func (e *Engine) current() script.Node {
	n, _ := e.script.Node(e.pos)
	return n
}

// inputClosed reports whether input must be ignored
func (e *Engine) inputClosed() bool {
	return !e.started || e.terminated || e.closed
}

// blockedForward reports whether a timed flag holds forward progress
func (e *Engine) blockedForward() bool {
	return len(e.effects) > 0 || e.gated
}

func (e *Engine) terminate() {
	if e.terminated {
		return
	}
	e.terminated = true
	e.typing = false
	e.cancelAll()
	e.opts.Logger.Printf("[ENGINE] complete: branch=%s", e.pos.Branch)
	if e.opts.OnComplete != nil {
		e.opts.OnComplete(e.pos.Branch)
	}
}

func (e *Engine) cancelAll() {
	e.gen++
	e.stopTyping()
	e.stopGate()
	e.cancelEffects()
}

func (e *Engine) stopTyping() {
	if e.typeTimer != nil {
		e.typeTimer.Stop()
		e.typeTimer = nil
	}
}

func (e *Engine) stopGate() {
	if e.gateTimer != nil {
		e.gateTimer.Stop()
		e.gateTimer = nil
	}
	e.gated = false
}

// fail logs a script error and hands it to OnError when no caller can receive it
func (e *Engine) fail(err error, async bool) error {
	e.opts.Logger.Printf("[ENGINE] script error: %v", err)
	if async && e.opts.OnError != nil {
		e.opts.OnError(err)
	}
	return err
}
