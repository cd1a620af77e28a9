package input

// IntentType discriminates reader actions
type IntentType uint8

const (
	IntentNone IntentType = iota

	// System-level intents
	IntentQuit       // Ctrl+C, Ctrl+Q
	IntentExit       // Enter held past the long-press threshold
	IntentResize     // Terminal resize event
	IntentToggleMute // Ctrl+S
	IntentPause      // Ctrl+P

	// Dialogue mode
	IntentAdvance // Right, Enter, Space, click
	IntentRetreat // Left, Backspace

	// Choice mode
	IntentHighlightPrev // Left, Up
	IntentHighlightNext // Right, Down
	IntentConfirm       // Enter, Space
	IntentSelect        // 1-9, Index carries the option
)

var intentNames = map[IntentType]string{
	IntentNone:          "none",
	IntentQuit:          "quit",
	IntentExit:          "exit",
	IntentResize:        "resize",
	IntentToggleMute:    "toggle_mute",
	IntentPause:         "pause",
	IntentAdvance:       "advance",
	IntentRetreat:       "retreat",
	IntentHighlightPrev: "highlight_prev",
	IntentHighlightNext: "highlight_next",
	IntentConfirm:       "confirm",
	IntentSelect:        "select",
}

func (t IntentType) String() string {
	if s, ok := intentNames[t]; ok {
		return s
	}
	return "unknown"
}

// Intent represents a parsed reader action
// Pure data struct with no engine dependencies
type Intent struct {
	Type  IntentType
	Index int // Option index for IntentSelect
	// Blocked is set while a long press is being detected; the engine ignores blocked navigation
	Blocked bool
}
