package engine

import (
	"time"

	"github.com/lixenwraith/vi-novel/markup"
	"github.com/lixenwraith/vi-novel/script"
)

// startTypewriter begins revealing d from empty, replacing any reveal in flight
func (e *Engine) startTypewriter(d *script.Dialogue) {
	e.stopTyping()
	e.displayed = ""
	e.revealed = 0

	if d.Text.Len() == 0 {
		e.displayed = d.Text.Source
		e.typing = false
		e.finishTyping(d, true)
		e.render()
		return
	}

	e.typing = true
	e.render()
	e.scheduleReveal(d)
}

// charDelay returns the wait before visible character i appears
// A pause after punctuation wins over slow spans
func (e *Engine) charDelay(t *markup.Text, i int) time.Duration {
	p := e.opts.Pacing
	if i > 0 && p.isPause(t.At(i-1).Rune) {
		return p.Pause
	}
	if t.At(i).Slow {
		return p.Slow
	}
	return p.Default
}

func (e *Engine) scheduleReveal(d *script.Dialogue) {
	gen := e.gen
	e.typeTimer = e.sched.After(e.charDelay(d.Text, e.revealed), func() {
		if gen != e.gen || !e.typing {
			return
		}
		e.typeTimer = nil
		e.revealed++

		if e.revealed >= d.Text.Len() {
			// Final frame is the authored source, not the reassembled prefix
			e.displayed = d.Text.Source
			e.typing = false
			e.finishTyping(d, true)
			e.render()
			return
		}

		e.displayed = d.Text.Prefix(e.revealed)
		e.render()
		e.scheduleReveal(d)
	})
}

// skip completes the current line immediately
func (e *Engine) skip() {
	d, ok := e.current().(*script.Dialogue)
	if !ok {
		return
	}
	e.stopTyping()
	e.displayed = d.Text.Source
	e.revealed = d.Text.Len()
	e.typing = false
	e.finishTyping(d, false)
	e.render()
}

// finishTyping records the snapshot shown under a following choice
// and, for a line that finished on its own, holds advance for PauseAfter
func (e *Engine) finishTyping(d *script.Dialogue, natural bool) {
	frame := e.dialogueFrame(d)
	e.snapshot = &frame

	if !natural || d.PauseAfter <= 0 {
		return
	}
	e.stopGate()
	e.gated = true
	gen := e.gen
	e.gateTimer = e.sched.After(d.PauseAfter, func() {
		if gen != e.gen {
			return
		}
		e.gateTimer = nil
		e.gated = false
	})
}
