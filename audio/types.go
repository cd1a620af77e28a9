package audio

// SoundType represents the cues played while reading
type SoundType int

const (
	SoundClick   SoundType = iota // Typewriter key per revealed character
	SoundStinger                  // Cutaway insert
	SoundDrone                    // Low hum under a fade
	soundTypeCount
)

func (s SoundType) String() string {
	switch s {
	case SoundClick:
		return "click"
	case SoundStinger:
		return "stinger"
	case SoundDrone:
		return "drone"
	}
	return "unknown"
}

// Player plays the reading cues
// SoundManager is the speaker-backed implementation
type Player interface {
	PlayClick()
	PlayStinger()
	StartDrone()
	StopDrone()
}
