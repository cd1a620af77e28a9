package input

// actionRegistry maps canonical action names to intents
// Used by the keymap config loader to resolve action strings to bindings
var actionRegistry map[string]IntentType

func init() {
	actionRegistry = buildActionRegistry()
}

func buildActionRegistry() map[string]IntentType {
	reg := make(map[string]IntentType, len(intentNames))
	for t, name := range intentNames {
		switch t {
		case IntentResize, IntentSelect, IntentExit:
			// produced by the machine, never bound to a key
			continue
		}
		reg[name] = t
	}
	return reg
}

// ActionIntent returns the intent for a canonical action name
// "none" resolves to IntentNone, which unbinds the key on merge
func ActionIntent(name string) (IntentType, bool) {
	t, ok := actionRegistry[name]
	return t, ok
}
