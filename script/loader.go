package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/vi-novel/markup"
)

// fileScript is the YAML authoring format
type fileScript struct {
	Start    string       `yaml:"start"`
	Branches []fileBranch `yaml:"branches"`
}

type fileBranch struct {
	Name        string     `yaml:"name"`
	ForwardOnly bool       `yaml:"forward_only"`
	Nodes       []fileNode `yaml:"nodes"`
}

type fileNode struct {
	ID   string `yaml:"id"`
	Type string `yaml:"type"` // dialogue | choice | effect, inferred when empty

	// Dialogue
	Speaker    string        `yaml:"speaker"`
	Text       string        `yaml:"text"`
	PauseAfter time.Duration `yaml:"pause_after"`
	Variant    string        `yaml:"variant"`
	Trigger    *fileTrigger  `yaml:"trigger"`

	// Choice
	Options []fileOption `yaml:"options"`

	// Effect
	Kind     string        `yaml:"kind"`
	Duration time.Duration `yaml:"duration"`

	Next string `yaml:"next"`
}

type fileTrigger struct {
	Kind     string        `yaml:"kind"`
	Duration time.Duration `yaml:"duration"`
}

type fileOption struct {
	Label string `yaml:"label"`
	Next  string `yaml:"next"`
}

// Parse decodes a YAML script and validates it
func Parse(data []byte) (*Script, error) {
	var fs fileScript
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoBranches
		}
		return nil, fmt.Errorf("script: decode: %w", err)
	}

	branches := make([]Branch, 0, len(fs.Branches))
	for _, fb := range fs.Branches {
		b := Branch{Name: fb.Name, ForwardOnly: fb.ForwardOnly, Nodes: make([]Node, 0, len(fb.Nodes))}
		for _, fn := range fb.Nodes {
			n, err := fn.build()
			if err != nil {
				return nil, &ScriptError{Branch: fb.Name, NodeID: fn.ID, Err: err}
			}
			b.Nodes = append(b.Nodes, n)
		}
		branches = append(branches, b)
	}

	s, err := New(fs.Start, branches...)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads and parses a YAML script from r
func Load(r io.Reader) (*Script, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("script: read: %w", err)
	}
	return Parse(data)
}

// LoadFile reads and parses a YAML script file
func LoadFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (fn fileNode) build() (Node, error) {
	kind := fn.Type
	if kind == "" {
		switch {
		case len(fn.Options) > 0:
			kind = "choice"
		case fn.Kind != "":
			kind = "effect"
		default:
			kind = "dialogue"
		}
	}

	switch kind {
	case "dialogue":
		txt, err := markup.Parse(fn.Text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadMarkup, err)
		}
		d := &Dialogue{
			ID:         fn.ID,
			Speaker:    fn.Speaker,
			Text:       txt,
			Next:       fn.Next,
			PauseAfter: fn.PauseAfter,
			Variant:    fn.Variant,
		}
		if fn.Trigger != nil {
			d.Trigger = &Trigger{Kind: EffectKind(fn.Trigger.Kind), Duration: fn.Trigger.Duration}
		}
		return d, nil

	case "choice":
		c := &Choice{ID: fn.ID, Options: make([]Option, 0, len(fn.Options))}
		for _, o := range fn.Options {
			c.Options = append(c.Options, Option{Label: o.Label, Target: o.Next})
		}
		return c, nil

	case "effect", "animation":
		return &Effect{ID: fn.ID, Kind: EffectKind(fn.Kind), Duration: fn.Duration, Next: fn.Next}, nil
	}

	return nil, fmt.Errorf("%w: unknown node type %q", ErrMalformedNode, kind)
}
