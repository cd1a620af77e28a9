package web

import (
	"context"

	"github.com/microcosm-cc/bluemonday"

	"github.com/lixenwraith/vi-novel/engine"
)

// wsSurface converts render instructions to messages for one connection's writer
type wsSurface struct {
	ctx    context.Context
	out    chan<- serverMessage
	policy *bluemonday.Policy
}

func (w *wsSurface) send(m serverMessage) {
	select {
	case w.out <- m:
	case <-w.ctx.Done():
	}
}

func (w *wsSurface) RenderDialogue(f engine.DialogueFrame) {
	w.send(serverMessage{Type: msgDialogue, Dialogue: toDialogueDTO(f, w.policy)})
}

func (w *wsSurface) RenderChoices(f engine.ChoiceFrame) {
	m := serverMessage{
		Type:      msgChoices,
		Branch:    f.Branch,
		Labels:    f.Labels,
		Highlight: f.Highlight,
	}
	if f.Prompt != nil {
		m.Prompt = toDialogueDTO(*f.Prompt, w.policy)
	}
	w.send(m)
}

func (w *wsSurface) RenderEffect(f engine.EffectFrame) {
	w.send(serverMessage{
		Type:       msgEffect,
		Kind:       string(f.Kind),
		Progress:   f.Progress,
		Standalone: f.Standalone,
		Done:       f.Done,
	})
}
