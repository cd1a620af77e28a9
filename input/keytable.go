package input

import "github.com/gdamore/tcell/v2"

// KeyTable maps keys to intents for each mode
type KeyTable struct {
	// Keys honored in every mode (Ctrl+*)
	GlobalKeys map[tcell.Key]IntentType

	// Dialogue mode bindings
	DialogueKeys  map[tcell.Key]IntentType
	DialogueRunes map[rune]IntentType

	// Choice mode bindings; digits 1-9 always select directly
	ChoiceKeys  map[tcell.Key]IntentType
	ChoiceRunes map[rune]IntentType
}

// DefaultKeyTable returns the default key bindings
func DefaultKeyTable() *KeyTable {
	return &KeyTable{
		GlobalKeys: map[tcell.Key]IntentType{
			tcell.KeyCtrlC: IntentQuit,
			tcell.KeyCtrlQ: IntentQuit,
			tcell.KeyCtrlS: IntentToggleMute,
			tcell.KeyCtrlP: IntentPause,
		},

		DialogueKeys: map[tcell.Key]IntentType{
			tcell.KeyRight:      IntentAdvance,
			tcell.KeyEnter:      IntentAdvance,
			tcell.KeyLeft:       IntentRetreat,
			tcell.KeyBackspace:  IntentRetreat,
			tcell.KeyBackspace2: IntentRetreat,
		},
		DialogueRunes: map[rune]IntentType{
			' ': IntentAdvance,
			'l': IntentAdvance,
			'h': IntentRetreat,
		},

		ChoiceKeys: map[tcell.Key]IntentType{
			tcell.KeyLeft:  IntentHighlightPrev,
			tcell.KeyUp:    IntentHighlightPrev,
			tcell.KeyRight: IntentHighlightNext,
			tcell.KeyDown:  IntentHighlightNext,
			tcell.KeyTab:   IntentHighlightNext,
			tcell.KeyEnter: IntentConfirm,
		},
		ChoiceRunes: map[rune]IntentType{
			' ': IntentConfirm,
			'h': IntentHighlightPrev,
			'k': IntentHighlightPrev,
			'l': IntentHighlightNext,
			'j': IntentHighlightNext,
		},
	}
}

// Clone returns a deep copy
func (kt *KeyTable) Clone() *KeyTable {
	return &KeyTable{
		GlobalKeys:    cloneKeyMap(kt.GlobalKeys),
		DialogueKeys:  cloneKeyMap(kt.DialogueKeys),
		DialogueRunes: cloneRuneMap(kt.DialogueRunes),
		ChoiceKeys:    cloneKeyMap(kt.ChoiceKeys),
		ChoiceRunes:   cloneRuneMap(kt.ChoiceRunes),
	}
}

func cloneKeyMap(m map[tcell.Key]IntentType) map[tcell.Key]IntentType {
	out := make(map[tcell.Key]IntentType, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneRuneMap(m map[rune]IntentType) map[rune]IntentType {
	out := make(map[rune]IntentType, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
