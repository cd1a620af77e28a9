package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/vi-novel/audio"
	"github.com/lixenwraith/vi-novel/engine"
	"github.com/lixenwraith/vi-novel/input"
	"github.com/lixenwraith/vi-novel/script"
	"github.com/lixenwraith/vi-novel/tui"
)

// reader is the terminal host: it owns the engine and serializes input and timer callbacks
type reader struct {
	screen  tcell.Screen
	surface *tui.Surface
	sound   *audio.SoundManager
	machine *input.Machine
	sched   *engine.LoopScheduler
	engine  *engine.Engine

	paused   bool
	finished string // terminal branch once the chapter completes

	// holdTimer repaints the exit hold between key repeats and clears it after release
	holdTimer engine.Timer
}

// holdFrame is the repaint interval of the exit hold overlay
const holdFrame = 50 * time.Millisecond

func newReader(screen tcell.Screen, s *script.Script, opts engine.Options, machine *input.Machine, sound *audio.SoundManager, clickEvery int) (*reader, error) {
	r := &reader{
		screen:  screen,
		surface: tui.NewSurface(screen, tui.DefaultTheme()),
		sound:   sound,
		machine: machine,
		sched:   engine.NewLoopScheduler(64),
	}

	opts.OnComplete = func(branch string) {
		log.Printf("[READER] chapter complete: %s", branch)
		r.finished = branch
		r.surface.SetStatus(fmt.Sprintf("End of chapter (%s). Press Enter to close.", branch))
	}
	opts.OnError = r.report

	e, err := engine.New(s, audio.NewCueSurface(r.surface, sound, clickEvery), r.sched, opts)
	if err != nil {
		r.sched.Close()
		return nil, err
	}
	r.engine = e
	return r, nil
}

func (r *reader) start() error {
	if err := r.engine.Start(); err != nil {
		return err
	}
	r.syncMode()
	return nil
}

func (r *reader) close() {
	if r.holdTimer != nil {
		r.holdTimer.Stop()
	}
	r.engine.Close()
	r.sched.Close()
	r.sound.StopDrone()
}

func (r *reader) report(err error) {
	log.Printf("[READER] %v", err)
	r.surface.SetStatus("error: " + err.Error())
}

// syncMode keeps the key table in step with the engine phase
func (r *reader) syncMode() {
	if r.engine.State().Phase == engine.PhaseChoicePending {
		r.machine.SetMode(input.ModeChoice)
	} else {
		r.machine.SetMode(input.ModeDialogue)
	}
}

// handleEvent processes one terminal event; false ends the session
func (r *reader) handleEvent(ev tcell.Event) bool {
	in := r.machine.Process(ev)
	r.updateHold(time.Now())
	if in == nil {
		return true
	}
	ok := r.dispatch(in)
	r.syncMode()
	return ok
}

// updateHold shows exit hold progress while Enter is held and keeps repainting until it is released
func (r *reader) updateHold(now time.Time) {
	r.surface.SetHold(r.machine.HoldProgress(now))
	if !r.machine.Holding(now) || r.holdTimer != nil {
		return
	}
	r.holdTimer = r.sched.After(holdFrame, func() {
		r.holdTimer = nil
		r.updateHold(time.Now())
	})
}

// tick runs one scheduler callback on the loop goroutine
func (r *reader) tick(fn func()) {
	fn()
	r.syncMode()
}

func (r *reader) dispatch(in *input.Intent) bool {
	var err error

	switch in.Type {
	case input.IntentQuit, input.IntentExit:
		return false

	case input.IntentResize:
		r.surface.Redraw()

	case input.IntentToggleMute:
		if r.sound.ToggleMute() {
			r.surface.SetStatus("sound off")
		} else {
			r.surface.SetStatus("sound on")
		}

	case input.IntentPause:
		r.paused = !r.paused
		r.engine.SetPaused(r.paused)
		if r.paused {
			r.surface.SetStatus("paused")
		} else {
			r.surface.SetStatus("")
		}

	case input.IntentAdvance:
		if r.finished != "" && !in.Blocked {
			return false
		}
		err = r.engine.Advance(in.Blocked)

	case input.IntentRetreat:
		r.engine.Retreat(in.Blocked)

	case input.IntentHighlightPrev:
		r.engine.Highlight(r.engine.State().Highlight - 1)

	case input.IntentHighlightNext:
		r.engine.Highlight(r.engine.State().Highlight + 1)

	case input.IntentConfirm:
		if in.Blocked {
			return true
		}
		err = r.engine.Confirm()

	case input.IntentSelect:
		err = r.engine.SelectChoice(in.Index)
	}

	if err != nil {
		r.report(err)
	}
	return true
}

// run is the host loop; it returns when the reader quits or the terminal closes
func (r *reader) run(events <-chan tcell.Event) {
	for {
		select {
		case ev, ok := <-events:
			if !ok || !r.handleEvent(ev) {
				return
			}
		case fn := <-r.sched.C():
			r.tick(fn)
		}
	}
}
