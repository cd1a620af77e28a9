package web

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"

	"github.com/lixenwraith/vi-novel/engine"
	"github.com/lixenwraith/vi-novel/markup"
)

// Client message types
const (
	msgAdvance   = "advance"
	msgRetreat   = "retreat"
	msgSelect    = "select"
	msgHighlight = "highlight"
	msgConfirm   = "confirm"
)

// Server message types
const (
	msgDialogue = "dialogue"
	msgChoices  = "choices"
	msgEffect   = "effect"
	msgComplete = "complete"
	msgError    = "error"
)

type clientMessage struct {
	Type    string `json:"type"`
	Index   int    `json:"index"`
	Blocked bool   `json:"blocked"`
}

type dialogueDTO struct {
	Branch   string `json:"branch"`
	NodeID   string `json:"nodeId"`
	Speaker  string `json:"speaker"`
	Variant  string `json:"variant,omitempty"`
	HTML     string `json:"html"`
	Revealed int    `json:"revealed"`
	Total    int    `json:"total"`
	Typing   bool   `json:"typing"`
}

type serverMessage struct {
	Type string `json:"type"`

	Dialogue *dialogueDTO `json:"dialogue,omitempty"`

	Labels    []string     `json:"labels,omitempty"`
	Highlight int          `json:"highlight"`
	Prompt    *dialogueDTO `json:"prompt,omitempty"`

	Kind       string  `json:"kind,omitempty"`
	Progress   float64 `json:"progress"`
	Standalone bool    `json:"standalone,omitempty"`
	Done       bool    `json:"done,omitempty"`

	Branch string `json:"branch,omitempty"`
	Error  string `json:"error,omitempty"`
}

var slowClass = regexp.MustCompile(`^slow$`)

// newPolicy allows only the tags the HTML dialect emits
func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("strong", "br")
	p.AllowAttrs("class").Matching(slowClass).OnElements("span")
	return p
}

// dialogueHTML renders the revealed prefix of f as sanitized HTML
func dialogueHTML(f engine.DialogueFrame, policy *bluemonday.Policy) string {
	text := f.Markup
	if text == nil {
		parsed, err := markup.Parse(f.Text)
		if err != nil {
			return policy.Sanitize(f.Text)
		}
		text = parsed
	}
	return policy.Sanitize(text.Render(f.Revealed, markup.DialectHTML))
}

func toDialogueDTO(f engine.DialogueFrame, policy *bluemonday.Policy) *dialogueDTO {
	total := 0
	if f.Markup != nil {
		total = f.Markup.Len()
	}
	return &dialogueDTO{
		Branch:   f.Branch,
		NodeID:   f.NodeID,
		Speaker:  f.Speaker,
		Variant:  f.Variant,
		HTML:     dialogueHTML(f, policy),
		Revealed: f.Revealed,
		Total:    total,
		Typing:   f.Typing,
	}
}
