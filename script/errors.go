package script

import (
	"errors"
	"fmt"
)

var (
	ErrDanglingTarget = errors.New("target does not resolve")
	ErrEmptyBranch    = errors.New("branch has no nodes")
	ErrDuplicateID    = errors.New("duplicate id")
	ErrBadMarkup      = errors.New("invalid markup")
	ErrMalformedNode  = errors.New("malformed node")
	ErrDeadEnd        = errors.New("node has no next and is last in branch")
	ErrNoBranches     = errors.New("script has no branches")
)

// ScriptError describes an authoring error at a specific node
type ScriptError struct {
	Branch string
	NodeID string
	Target string
	Err    error
}

func (e *ScriptError) Error() string {
	switch {
	case e.NodeID == "" && e.Target == "":
		return fmt.Sprintf("script: branch %q: %v", e.Branch, e.Err)
	case e.Target == "":
		return fmt.Sprintf("script: branch %q node %q: %v", e.Branch, e.NodeID, e.Err)
	default:
		return fmt.Sprintf("script: branch %q node %q: %v: %q", e.Branch, e.NodeID, e.Err, e.Target)
	}
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
