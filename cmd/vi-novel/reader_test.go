package main

import (
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/vi-novel/audio"
	"github.com/lixenwraith/vi-novel/engine"
	"github.com/lixenwraith/vi-novel/input"
	"github.com/lixenwraith/vi-novel/script"
)

func newTestReader(t *testing.T) (*reader, tcell.SimulationScreen) {
	t.Helper()

	s, err := script.New("opening",
		script.Branch{Name: "opening", Nodes: []script.Node{
			script.Line("d1", "editor", "Pick one", ""),
			&script.Choice{ID: "c1", Options: []script.Option{{Label: "stay", Target: "stay"}, {Label: "go", Target: "go"}}},
		}},
		script.Branch{Name: "stay", Nodes: []script.Node{script.Line("s1", "me", "ok", script.End)}},
		script.Branch{Name: "go", Nodes: []script.Node{script.Line("g1", "me", "bye", script.End)}},
	)
	if err != nil {
		t.Fatal(err)
	}

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)

	opts := engine.Options{
		Pacing: engine.Pacing{Default: time.Hour, Slow: time.Hour, Pause: time.Hour},
		Logger: log.New(io.Discard, "", 0),
	}
	sound := audio.NewSoundManager(&audio.AudioConfig{Enabled: false})
	r, err := newReader(screen, s, opts, input.NewMachine(2*time.Second, 600*time.Millisecond), sound, 1)
	if err != nil {
		t.Fatalf("newReader failed: %v", err)
	}
	t.Cleanup(r.close)
	if err := r.start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	return r, screen
}

func keyEv(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func runeEv(ch rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, ch, tcell.ModNone)
}

func screenText(s tcell.SimulationScreen) string {
	w, h := s.Size()
	var b strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, _, _, _ := s.GetContent(x, y)
			b.WriteRune(r)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func TestReaderPlaysThroughChoice(t *testing.T) {
	r, screen := newTestReader(t)

	if !strings.Contains(screenText(screen), "editor") {
		t.Error("Expected speaker on screen after start")
	}

	r.handleEvent(keyEv(tcell.KeyRight))
	if st := r.engine.State(); st.Typing || st.Revealed != st.Total {
		t.Fatalf("Expected skip to reveal the line, got %+v", st)
	}
	r.handleEvent(runeEv(' '))
	if r.machine.Mode() != input.ModeChoice {
		t.Fatal("Expected choice mode on the choice node")
	}

	r.handleEvent(keyEv(tcell.KeyRight))
	if h := r.engine.State().Highlight; h != 1 {
		t.Errorf("Expected highlight 1, got %d", h)
	}
	r.handleEvent(runeEv('1'))
	if st := r.engine.State(); st.Branch != "stay" {
		t.Errorf("Expected digit 1 to pick stay, got %s", st.Branch)
	}
	if r.machine.Mode() != input.ModeDialogue {
		t.Error("Expected dialogue mode after choosing")
	}

	r.handleEvent(keyEv(tcell.KeyRight))
	r.handleEvent(keyEv(tcell.KeyRight))
	if r.finished != "stay" {
		t.Fatalf("Expected completion on stay, got %q", r.finished)
	}
	if !strings.Contains(screenText(screen), "End of chapter") {
		t.Error("Expected completion status on screen")
	}
	if r.handleEvent(keyEv(tcell.KeyEnter)) {
		t.Error("Expected Enter after completion to close the reader")
	}
}

func TestReaderQuitAndToggles(t *testing.T) {
	r, _ := newTestReader(t)

	r.handleEvent(tcell.NewEventKey(tcell.KeyCtrlS, 0, tcell.ModCtrl))
	if !r.sound.Muted() {
		t.Error("Expected Ctrl+S to mute")
	}

	r.handleEvent(tcell.NewEventKey(tcell.KeyCtrlP, 0, tcell.ModCtrl))
	if !r.engine.State().Paused {
		t.Error("Expected Ctrl+P to pause the engine")
	}
	r.handleEvent(keyEv(tcell.KeyRight))
	r.handleEvent(keyEv(tcell.KeyRight))
	if r.engine.State().NodeID != "d1" {
		t.Error("Paused reader must not advance past the line")
	}

	if !r.handleEvent(tcell.NewEventResize(100, 30)) {
		t.Error("Resize must not end the session")
	}
	if r.handleEvent(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)) {
		t.Error("Expected Ctrl+C to quit")
	}
}

func TestReaderIgnoresBlockedConfirm(t *testing.T) {
	r, _ := newTestReader(t)
	r.handleEvent(keyEv(tcell.KeyRight))
	r.handleEvent(keyEv(tcell.KeyRight))

	r.dispatch(&input.Intent{Type: input.IntentConfirm, Blocked: true})
	if r.engine.State().Phase != engine.PhaseChoicePending {
		t.Error("Blocked confirm must not select")
	}
	r.dispatch(&input.Intent{Type: input.IntentConfirm})
	if r.engine.State().Branch != "stay" {
		t.Errorf("Expected confirm of default highlight, got %s", r.engine.State().Branch)
	}
}

func TestReaderShowsExitHoldProgress(t *testing.T) {
	r, screen := newTestReader(t)
	r.machine = input.NewMachine(2*time.Second, time.Minute)

	r.handleEvent(keyEv(tcell.KeyEnter))
	if strings.Contains(screenText(screen), "keep holding Enter") {
		t.Fatal("Hold prompt must stay hidden for a short press")
	}

	r.updateHold(time.Now().Add(time.Second))
	if !strings.Contains(screenText(screen), "keep holding Enter") {
		t.Fatal("Expected hold prompt once the reveal delay passed")
	}

	r.handleEvent(keyEv(tcell.KeyLeft))
	if strings.Contains(screenText(screen), "keep holding Enter") {
		t.Error("Another key should clear the hold prompt")
	}
}
