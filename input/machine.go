package input

import (
	"time"

	"github.com/gdamore/tcell/v2"
)

// Machine is the input state machine
// Parses tcell events into reader Intents
type Machine struct {
	mode     InputMode
	keyTable *KeyTable
	hold     *LongPress
	holdKey  tcell.Key

	// Last mouse button state, to act on press edges only
	buttons tcell.ButtonMask
}

// NewMachine creates a machine with default bindings
// Holding Enter for hold produces IntentExit
func NewMachine(hold, repeatWindow time.Duration) *Machine {
	return &Machine{
		mode:     ModeDialogue,
		keyTable: DefaultKeyTable(),
		hold:     NewLongPress(hold, repeatWindow),
		holdKey:  tcell.KeyEnter,
	}
}

// SetKeyTable replaces the active bindings
func (m *Machine) SetKeyTable(kt *KeyTable) {
	m.keyTable = kt
}

// SetMode updates the parser's mode context
func (m *Machine) SetMode(mode InputMode) {
	m.mode = mode
}

// Mode returns the current mode
func (m *Machine) Mode() InputMode {
	return m.mode
}

// HoldProgress reports the exit hold's progress at now; see LongPress.Progress
func (m *Machine) HoldProgress(now time.Time) (float64, bool) {
	return m.hold.Progress(now)
}

// Holding reports whether the exit key is still held at now
func (m *Machine) Holding(now time.Time) bool {
	return m.hold.Holding(now)
}

// Process parses a tcell event and returns an Intent
// Returns nil for events with no binding
func (m *Machine) Process(ev tcell.Event) *Intent {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		return &Intent{Type: IntentResize}
	case *tcell.EventKey:
		return m.processKey(ev)
	case *tcell.EventMouse:
		return m.processMouse(ev)
	}
	return nil
}

func (m *Machine) processKey(ev *tcell.EventKey) *Intent {
	blocked := false
	if ev.Key() == m.holdKey {
		var exit bool
		blocked, exit = m.hold.Press(ev.When())
		if exit {
			return &Intent{Type: IntentExit}
		}
	} else {
		m.hold.Reset()
	}

	if t, ok := m.keyTable.GlobalKeys[ev.Key()]; ok {
		return &Intent{Type: t}
	}

	var t IntentType
	var ok bool
	switch m.mode {
	case ModeChoice:
		if ev.Key() == tcell.KeyRune && ev.Rune() >= '1' && ev.Rune() <= '9' {
			return &Intent{Type: IntentSelect, Index: int(ev.Rune() - '1')}
		}
		t, ok = m.lookup(ev, m.keyTable.ChoiceKeys, m.keyTable.ChoiceRunes)
	default:
		t, ok = m.lookup(ev, m.keyTable.DialogueKeys, m.keyTable.DialogueRunes)
	}
	if !ok {
		return nil
	}
	return &Intent{Type: t, Blocked: blocked}
}

func (m *Machine) lookup(ev *tcell.EventKey, keys map[tcell.Key]IntentType, runes map[rune]IntentType) (IntentType, bool) {
	if ev.Key() == tcell.KeyRune {
		t, ok := runes[ev.Rune()]
		return t, ok
	}
	t, ok := keys[ev.Key()]
	return t, ok
}

func (m *Machine) processMouse(ev *tcell.EventMouse) *Intent {
	prev := m.buttons
	m.buttons = ev.Buttons()
	if m.mode != ModeDialogue || ev.Buttons()&tcell.Button1 == 0 || prev&tcell.Button1 != 0 {
		return nil
	}
	return &Intent{Type: IntentAdvance}
}
