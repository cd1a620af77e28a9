package input

import "time"

// DefaultReveal is how long a hold runs before its progress is shown
const DefaultReveal = 500 * time.Millisecond

// LongPress detects a held key from terminal auto-repeat
// Terminals report no key release, so a hold is a run of presses spaced within RepeatWindow
type LongPress struct {
	Hold         time.Duration
	RepeatWindow time.Duration
	// Reveal delays progress feedback so ordinary presses show nothing
	Reveal time.Duration

	start  time.Time
	last   time.Time
	active bool
	fired  bool
}

// NewLongPress creates a detector that fires after hold
func NewLongPress(hold, repeatWindow time.Duration) *LongPress {
	return &LongPress{Hold: hold, RepeatWindow: repeatWindow, Reveal: DefaultReveal}
}

// Press records a press at now
// blocked is true for every auto-repeat after the first press
// exit is true once, when the hold crosses the threshold
func (lp *LongPress) Press(now time.Time) (blocked, exit bool) {
	if lp.active && now.Sub(lp.last) <= lp.RepeatWindow {
		lp.last = now
		if !lp.fired && now.Sub(lp.start) >= lp.Hold {
			lp.fired = true
			return true, true
		}
		return true, false
	}

	lp.active = true
	lp.fired = false
	lp.start = now
	lp.last = now
	return false, false
}

// Holding reports whether a press run is still live at now
func (lp *LongPress) Holding(now time.Time) bool {
	return lp.active && now.Sub(lp.last) <= lp.RepeatWindow
}

// Progress reports how far a live hold is toward exit, measured from the end of Reveal
// visible is false before Reveal has passed, after the hold fired, or once the run is over
func (lp *LongPress) Progress(now time.Time) (progress float64, visible bool) {
	if !lp.Holding(now) || lp.fired {
		return 0, false
	}
	reveal := lp.Reveal
	if reveal >= lp.Hold {
		reveal = 0
	}
	elapsed := now.Sub(lp.start)
	if elapsed < reveal {
		return 0, false
	}
	progress = float64(elapsed-reveal) / float64(lp.Hold-reveal)
	if progress > 1 {
		progress = 1
	}
	return progress, true
}

// Reset ends any press run
func (lp *LongPress) Reset() {
	lp.active = false
	lp.fired = false
}
