package engine

import (
	"fmt"

	"github.com/lixenwraith/vi-novel/script"
)

// Advance is the single forward action
// During typing it reveals the whole line; otherwise it follows the current node's next link
// blocked carries the input collaborator's gate (e.g. a long press in progress)
// A non-nil error is always a *script.ScriptError and leaves the state unchanged
func (e *Engine) Advance(blocked bool) error {
	if e.inputClosed() || blocked {
		return nil
	}
	if e.typing {
		e.skip()
		return nil
	}
	if e.paused || e.blockedForward() {
		return nil
	}

	d, ok := e.current().(*script.Dialogue)
	if !ok {
		// choices need SelectChoice, effect nodes advance on their own
		return nil
	}

	target, err := e.follow(e.pos, d.ID, d.Next)
	if err != nil {
		return e.fail(err, false)
	}
	if target.End {
		e.terminate()
		return nil
	}

	e.history = append(e.history, e.pos)
	e.enter(target.Pos)
	return nil
}

// Retreat restores the previous position
// No-op with empty history, on a forward-only branch, during an effect node, or when blocked
func (e *Engine) Retreat(blocked bool) {
	if e.inputClosed() || blocked {
		return
	}
	if len(e.history) == 0 {
		return
	}
	if e.script.ForwardOnly(e.pos.Branch) {
		return
	}
	if _, ok := e.current().(*script.Effect); ok {
		return
	}

	prev := e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]
	e.restore(prev)
}

// SelectChoice picks option index of the current choice; out of range is a no-op
func (e *Engine) SelectChoice(index int) error {
	if e.inputClosed() {
		return nil
	}
	c, ok := e.current().(*script.Choice)
	if !ok || index < 0 || index >= len(c.Options) {
		return nil
	}

	target, err := e.script.Resolve(e.pos, c.Options[index].Target)
	if err == nil && !target.End {
		target, err = e.land(target.Pos)
	}
	if err != nil {
		return e.fail(err, false)
	}

	// History already holds the line that led into the choice, so retreat skips the choice UI
	// A choice at the very start of the script has no such line and becomes its own entry
	if len(e.history) == 0 {
		e.history = append(e.history, e.pos)
	}

	if target.End {
		e.terminate()
		return nil
	}
	e.enter(target.Pos)
	return nil
}

// Highlight moves the pending selection of the current choice
func (e *Engine) Highlight(index int) {
	if e.inputClosed() {
		return
	}
	c, ok := e.current().(*script.Choice)
	if !ok || index < 0 || index >= len(c.Options) {
		return
	}
	e.highlight = index
	e.render()
}

// Confirm selects the highlighted option
func (e *Engine) Confirm() error {
	return e.SelectChoice(e.highlight)
}

// follow resolves a next link from pos and lands on the node that will actually be shown
func (e *Engine) follow(pos script.Position, nodeID, next string) (script.Target, error) {
	target, err := e.link(pos, nodeID, next)
	if err != nil || target.End {
		return target, err
	}
	return e.land(target.Pos)
}

// link resolves one next link; empty falls through to the following node in the branch
func (e *Engine) link(pos script.Position, nodeID, next string) (script.Target, error) {
	if next != "" {
		return e.script.Resolve(pos, next)
	}
	if pos.Index+1 >= e.script.Len(pos.Branch) {
		return script.Target{}, &script.ScriptError{Branch: pos.Branch, NodeID: nodeID, Err: script.ErrDeadEnd}
	}
	return script.Target{Pos: script.Position{Branch: pos.Branch, Index: pos.Index + 1}}, nil
}

// land walks through suppressed effect nodes starting at pos
// The whole chain is resolved before any state changes, so a broken link leaves the engine where it was
func (e *Engine) land(pos script.Position) (script.Target, error) {
	seen := make(map[script.Position]bool)
	for {
		n, ok := e.script.Node(pos)
		if !ok {
			return script.Target{}, &script.ScriptError{Branch: pos.Branch, Err: script.ErrEmptyBranch}
		}
		fx, ok := n.(*script.Effect)
		if !ok || !e.opts.suppressed(fx.Kind) {
			return script.Target{Pos: pos}, nil
		}
		if seen[pos] {
			return script.Target{}, &script.ScriptError{Branch: pos.Branch, NodeID: fx.ID, Err: fmt.Errorf("%w: effect nodes loop", script.ErrMalformedNode)}
		}
		seen[pos] = true

		target, err := e.link(pos, fx.ID, fx.Next)
		if err != nil || target.End {
			return target, err
		}
		pos = target.Pos
	}
}

// enter moves to pos as a fresh visit: typewriter restarts and triggers fire
// pos must come from land, so it is never a suppressed effect node
func (e *Engine) enter(pos script.Position) {
	n, _ := e.script.Node(pos)

	e.cancelAll()
	e.pos = pos
	e.displayed = ""
	e.revealed = 0
	e.typing = false
	e.highlight = 0

	switch v := n.(type) {
	case *script.Dialogue:
		e.snapshot = nil
		if v.Trigger != nil && !e.opts.suppressed(v.Trigger.Kind) {
			e.runEffect(v.Trigger.Kind, v.ID, v.Trigger.Duration, false, nil)
		}
		e.startTypewriter(v)

	case *script.Choice:
		e.render()

	case *script.Effect:
		e.runEffect(v.Kind, v.ID, v.Duration, true, func() {
			e.finishEffectNode(v)
		})
	}
}

// restore moves to pos as a revisit: the line is shown complete and triggers stay quiet
// All timed flags are cleared regardless of which branch set them
func (e *Engine) restore(pos script.Position) {
	e.cancelAll()
	e.pos = pos
	e.highlight = 0
	e.typing = false

	switch v := e.current().(type) {
	case *script.Dialogue:
		e.displayed = v.Text.Source
		e.revealed = v.Text.Len()
		frame := e.dialogueFrame(v)
		e.snapshot = &frame
	default:
		e.displayed = ""
		e.revealed = 0
		e.snapshot = e.promptFor()
	}
	e.render()
}

// promptFor rebuilds the line shown above a revisited choice from the history top
func (e *Engine) promptFor() *DialogueFrame {
	if len(e.history) == 0 {
		return nil
	}
	top := e.history[len(e.history)-1]
	n, ok := e.script.Node(top)
	if !ok {
		return nil
	}
	d, ok := n.(*script.Dialogue)
	if !ok {
		return nil
	}
	return &DialogueFrame{
		Branch:   top.Branch,
		NodeID:   d.ID,
		Speaker:  d.Speaker,
		Variant:  d.Variant,
		Text:     d.Text.Source,
		Markup:   d.Text,
		Revealed: d.Text.Len(),
	}
}

// finishEffectNode continues past an effect node without recording it in history
// A broken link returns the reader to the last line so input keeps working
func (e *Engine) finishEffectNode(n *script.Effect) {
	target, err := e.follow(e.pos, n.ID, n.Next)
	if err != nil {
		e.fail(err, true)
		e.fallBack()
		return
	}
	if target.End {
		e.terminate()
		return
	}
	e.enter(target.Pos)
}

// fallBack leaves a stranded effect node for the history top
func (e *Engine) fallBack() {
	if len(e.history) == 0 {
		return
	}
	prev := e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]
	e.restore(prev)
}

func (e *Engine) dialogueFrame(d *script.Dialogue) DialogueFrame {
	return DialogueFrame{
		Branch:   e.pos.Branch,
		NodeID:   d.ID,
		Speaker:  d.Speaker,
		Variant:  d.Variant,
		Text:     e.displayed,
		Markup:   d.Text,
		Revealed: e.revealed,
		Typing:   e.typing,
	}
}

// render issues the instruction for the current node
func (e *Engine) render() {
	if e.terminated || e.closed {
		return
	}
	switch v := e.current().(type) {
	case *script.Dialogue:
		e.surface.RenderDialogue(e.dialogueFrame(v))

	case *script.Choice:
		labels := make([]string, len(v.Options))
		for i, o := range v.Options {
			labels[i] = o.Label
		}
		e.surface.RenderChoices(ChoiceFrame{
			Branch:    e.pos.Branch,
			NodeID:    v.ID,
			Labels:    labels,
			Highlight: e.highlight,
			Prompt:    e.snapshot,
		})

	case *script.Effect:
		for _, run := range e.effects {
			e.surface.RenderEffect(run.frame())
		}
	}
}
