package audio

import (
	"github.com/lixenwraith/vi-novel/engine"
	"github.com/lixenwraith/vi-novel/script"
)

// CueSurface turns render instructions into sound cues and forwards them unchanged
type CueSurface struct {
	next       engine.Surface
	player     Player
	clickEvery int

	lastNode     string
	lastRevealed int
	droneNode    string
}

// NewCueSurface wraps next; clickEvery throttles typewriter ticks to one per that many characters
func NewCueSurface(next engine.Surface, player Player, clickEvery int) *CueSurface {
	if next == nil {
		next = engine.NopSurface{}
	}
	if clickEvery < 1 {
		clickEvery = 1
	}
	return &CueSurface{next: next, player: player, clickEvery: clickEvery}
}

func (c *CueSurface) RenderDialogue(f engine.DialogueFrame) {
	c.leave(f.NodeID)
	if f.NodeID != c.lastNode {
		c.lastNode = f.NodeID
		c.lastRevealed = 0
	}
	// Only reveal steps tick; a skip jumps straight to the end silently
	if f.Revealed == c.lastRevealed+1 && f.Revealed%c.clickEvery == 1%c.clickEvery {
		c.player.PlayClick()
	}
	c.lastRevealed = f.Revealed
	c.next.RenderDialogue(f)
}

func (c *CueSurface) RenderChoices(f engine.ChoiceFrame) {
	c.leave(f.NodeID)
	c.lastNode = f.NodeID
	c.next.RenderChoices(f)
}

func (c *CueSurface) RenderEffect(f engine.EffectFrame) {
	switch {
	case f.Done:
		if f.Kind == script.EffectFadeOut {
			c.stopDrone()
		}
	case f.Progress == 0:
		switch f.Kind {
		case script.EffectInsertCutaway:
			c.player.PlayStinger()
		case script.EffectFadeOut:
			c.player.StartDrone()
			c.droneNode = f.NodeID
		}
	}
	c.next.RenderEffect(f)
}

// leave stops a drone whose fade was cancelled by moving to another node
func (c *CueSurface) leave(nodeID string) {
	if c.droneNode != "" && nodeID != c.droneNode {
		c.stopDrone()
	}
}

func (c *CueSurface) stopDrone() {
	if c.droneNode == "" {
		return
	}
	c.player.StopDrone()
	c.droneNode = ""
}

// Reset silences anything left running
func (c *CueSurface) Reset() {
	c.stopDrone()
	c.lastNode = ""
	c.lastRevealed = 0
}
