package input

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Rune aliases for keys that are awkward as bare YAML keys
var runeAliases = map[string]rune{
	"space":     ' ',
	"backslash": '\\',
	"colon":     ':',
}

// Named special keys accepted in keymap sections
var keyNames = map[string]tcell.Key{
	"enter":      tcell.KeyEnter,
	"tab":        tcell.KeyTab,
	"backtab":    tcell.KeyBacktab,
	"backspace":  tcell.KeyBackspace2,
	"backspace1": tcell.KeyBackspace,
	"escape":     tcell.KeyEscape,
	"esc":        tcell.KeyEscape,
	"left":       tcell.KeyLeft,
	"right":      tcell.KeyRight,
	"up":         tcell.KeyUp,
	"down":       tcell.KeyDown,
	"home":       tcell.KeyHome,
	"end":        tcell.KeyEnd,
	"pgup":       tcell.KeyPgUp,
	"pgdn":       tcell.KeyPgDn,
	"delete":     tcell.KeyDelete,
	"ctrl-c":     tcell.KeyCtrlC,
	"ctrl-q":     tcell.KeyCtrlQ,
	"ctrl-s":     tcell.KeyCtrlS,
	"ctrl-p":     tcell.KeyCtrlP,
	"ctrl-n":     tcell.KeyCtrlN,
	"ctrl-b":     tcell.KeyCtrlB,
	"ctrl-f":     tcell.KeyCtrlF,
}

// KeyByName resolves a special key name, case-insensitive
func KeyByName(name string) (tcell.Key, bool) {
	k, ok := keyNames[strings.ToLower(name)]
	return k, ok
}

// LoadKeyConfig builds a sparse override KeyTable from keymap sections
// Sections are "global", "dialogue" and "choice"; values are action names
// Only sections/keys present are populated
func LoadKeyConfig(sections map[string]map[string]string) (*KeyTable, error) {
	kt := &KeyTable{}

	for name, bindings := range sections {
		keys := make(map[tcell.Key]IntentType)
		runes := make(map[rune]IntentType)

		for keyStr, actionName := range bindings {
			intent, err := resolveAction(actionName)
			if err != nil {
				return nil, fmt.Errorf("[%s] key %q: %w", name, keyStr, err)
			}

			if k, ok := KeyByName(keyStr); ok {
				keys[k] = intent
				continue
			}

			r, err := resolveRune(keyStr)
			if err != nil {
				return nil, fmt.Errorf("[%s] key %q: %w", name, keyStr, err)
			}
			runes[r] = intent
		}

		switch name {
		case "global":
			if len(runes) > 0 {
				return nil, fmt.Errorf("[global] only special keys may be bound globally")
			}
			kt.GlobalKeys = keys
		case "dialogue":
			kt.DialogueKeys, kt.DialogueRunes = keys, runes
		case "choice":
			kt.ChoiceKeys, kt.ChoiceRunes = keys, runes
		default:
			return nil, fmt.Errorf("unknown keymap section: %q", name)
		}
	}

	return kt, nil
}

// resolveRune converts a key string to a rune
// Accepts single characters and named aliases
func resolveRune(s string) (rune, error) {
	if r, ok := runeAliases[strings.ToLower(s)]; ok {
		return r, nil
	}

	runes := []rune(s)
	if len(runes) == 1 {
		return runes[0], nil
	}

	return 0, fmt.Errorf("invalid key: %q (expected key name, single character or alias)", s)
}

// resolveAction converts an action name string to an intent
func resolveAction(name string) (IntentType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	t, ok := ActionIntent(name)
	if !ok {
		return IntentNone, fmt.Errorf("unknown action: %q", name)
	}
	return t, nil
}

// MergeKeyTable returns a new KeyTable with base values overridden by non-nil override maps
// Override entries bound to "none" delete the key from the result
func MergeKeyTable(base, override *KeyTable) *KeyTable {
	result := base.Clone()

	mergeKeyMap(result.GlobalKeys, override.GlobalKeys)
	mergeKeyMap(result.DialogueKeys, override.DialogueKeys)
	mergeKeyMap(result.ChoiceKeys, override.ChoiceKeys)

	mergeRuneMap(result.DialogueRunes, override.DialogueRunes)
	mergeRuneMap(result.ChoiceRunes, override.ChoiceRunes)

	return result
}

func mergeRuneMap(base, override map[rune]IntentType) {
	if override == nil {
		return
	}
	for k, v := range override {
		if v == IntentNone {
			delete(base, k)
		} else {
			base[k] = v
		}
	}
}

func mergeKeyMap(base, override map[tcell.Key]IntentType) {
	if override == nil {
		return
	}
	for k, v := range override {
		if v == IntentNone {
			delete(base, k)
		} else {
			base[k] = v
		}
	}
}
