package engine

import (
	"time"

	"github.com/lixenwraith/vi-novel/script"
)

// effectRun is one active timed effect
// Its presence in Engine.effects is the blocking flag
type effectRun struct {
	kind       script.EffectKind
	nodeID     string
	duration   time.Duration
	elapsed    time.Duration
	standalone bool
	timer      Timer
	onDone     func()
}

func (r *effectRun) frame() EffectFrame {
	progress := 1.0
	if r.duration > 0 {
		progress = float64(r.elapsed) / float64(r.duration)
	}
	if progress > 1 {
		progress = 1
	}
	return EffectFrame{
		Kind:       r.kind,
		NodeID:     r.nodeID,
		Progress:   progress,
		Standalone: r.standalone,
		Done:       r.elapsed >= r.duration,
	}
}

// runEffect is the one path for every timed effect, whichever way its node was reached
// The flag is set now and cleared when duration elapses; onDone then runs once
func (e *Engine) runEffect(kind script.EffectKind, nodeID string, duration time.Duration, standalone bool, onDone func()) {
	run := &effectRun{
		kind:       kind,
		nodeID:     nodeID,
		duration:   duration,
		standalone: standalone,
		onDone:     onDone,
	}
	e.effects = append(e.effects, run)
	e.opts.Logger.Printf("[ENGINE] effect start: kind=%s node=%s duration=%s", kind, nodeID, duration)
	e.surface.RenderEffect(run.frame())
	e.tickEffect(run)
}

func (e *Engine) tickEffect(run *effectRun) {
	step := e.opts.EffectFrame
	if remaining := run.duration - run.elapsed; remaining < step {
		step = remaining
	}
	gen := e.gen
	run.timer = e.sched.After(step, func() {
		if gen != e.gen || !e.hasEffect(run) {
			return
		}
		run.timer = nil
		run.elapsed += step

		if run.elapsed < run.duration {
			e.surface.RenderEffect(run.frame())
			e.tickEffect(run)
			return
		}

		e.removeEffect(run)
		e.surface.RenderEffect(run.frame())
		if run.onDone != nil {
			run.onDone()
			return
		}
		e.render()
	})
}

func (e *Engine) hasEffect(run *effectRun) bool {
	for _, r := range e.effects {
		if r == run {
			return true
		}
	}
	return false
}

func (e *Engine) removeEffect(run *effectRun) {
	for i, r := range e.effects {
		if r == run {
			e.effects = append(e.effects[:i], e.effects[i+1:]...)
			return
		}
	}
}

// cancelEffects stops every effect timer and clears all effect flags
func (e *Engine) cancelEffects() {
	for _, run := range e.effects {
		if run.timer != nil {
			run.timer.Stop()
			run.timer = nil
		}
	}
	e.effects = nil
}
