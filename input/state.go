package input

// InputMode mirrors what the engine is waiting for
// Kept in sync by the host from engine.State().Phase
type InputMode uint8

const (
	ModeDialogue InputMode = iota
	ModeChoice
)
