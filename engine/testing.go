package engine

import "sync"

// RecordingSurface captures every render instruction for inspection in tests
type RecordingSurface struct {
	mu        sync.Mutex
	Dialogues []DialogueFrame
	Choices   []ChoiceFrame
	Effects   []EffectFrame
}

func (r *RecordingSurface) RenderDialogue(f DialogueFrame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Dialogues = append(r.Dialogues, f)
}

func (r *RecordingSurface) RenderChoices(f ChoiceFrame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Choices = append(r.Choices, f)
}

func (r *RecordingSurface) RenderEffect(f EffectFrame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Effects = append(r.Effects, f)
}

// LastDialogue returns the most recent dialogue frame
func (r *RecordingSurface) LastDialogue() (DialogueFrame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Dialogues) == 0 {
		return DialogueFrame{}, false
	}
	return r.Dialogues[len(r.Dialogues)-1], true
}

// LastChoices returns the most recent choice frame
func (r *RecordingSurface) LastChoices() (ChoiceFrame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Choices) == 0 {
		return ChoiceFrame{}, false
	}
	return r.Choices[len(r.Choices)-1], true
}
