// Package script holds the immutable branch graph a dialogue engine walks
package script

import (
	"errors"
	"fmt"
)

// Script maps branch names to node sequences
// Construct with New or a loader; the value is read-only afterwards
type Script struct {
	start    string
	order    []string
	branches map[string]*Branch
	ids      map[string]Position
}

// New builds a script from branches, checking structure (non-empty branches, unique names and ids)
// Link targets are checked separately by Validate
func New(start string, branches ...Branch) (*Script, error) {
	if len(branches) == 0 {
		return nil, ErrNoBranches
	}
	if start == "" {
		start = DefaultStart
	}

	s := &Script{
		start:    start,
		order:    make([]string, 0, len(branches)),
		branches: make(map[string]*Branch, len(branches)),
		ids:      make(map[string]Position),
	}

	for i := range branches {
		b := branches[i]
		if b.Name == "" || b.Name == End {
			return nil, &ScriptError{Branch: b.Name, Err: fmt.Errorf("%w: reserved or empty branch name", ErrMalformedNode)}
		}
		if _, dup := s.branches[b.Name]; dup {
			return nil, &ScriptError{Branch: b.Name, Err: ErrDuplicateID}
		}
		if len(b.Nodes) == 0 {
			return nil, &ScriptError{Branch: b.Name, Err: ErrEmptyBranch}
		}

		nodes := make([]Node, len(b.Nodes))
		copy(nodes, b.Nodes)
		for idx, n := range nodes {
			if n == nil {
				return nil, &ScriptError{Branch: b.Name, Err: fmt.Errorf("%w: nil node at %d", ErrMalformedNode, idx)}
			}
			id := n.NodeID()
			if id == "" || id == End {
				return nil, &ScriptError{Branch: b.Name, NodeID: id, Err: fmt.Errorf("%w: reserved or empty id at %d", ErrMalformedNode, idx)}
			}
			if _, dup := s.ids[id]; dup {
				return nil, &ScriptError{Branch: b.Name, NodeID: id, Err: ErrDuplicateID}
			}
			s.ids[id] = Position{Branch: b.Name, Index: idx}
		}

		s.branches[b.Name] = &Branch{Name: b.Name, ForwardOnly: b.ForwardOnly, Nodes: nodes}
		s.order = append(s.order, b.Name)
	}

	if _, ok := s.branches[start]; !ok {
		return nil, &ScriptError{Branch: start, Err: fmt.Errorf("%w: start branch", ErrDanglingTarget)}
	}

	return s, nil
}

// Start returns the default entry branch
func (s *Script) Start() string {
	return s.start
}

// Branches returns branch names in declaration order
func (s *Script) Branches() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// HasBranch reports whether a branch exists
func (s *Script) HasBranch(name string) bool {
	_, ok := s.branches[name]
	return ok
}

// ForwardOnly reports whether retreat is forbidden out of a branch
func (s *Script) ForwardOnly(name string) bool {
	if b, ok := s.branches[name]; ok {
		return b.ForwardOnly
	}
	return false
}

// Len returns the node count of a branch, 0 if absent
func (s *Script) Len(branch string) int {
	if b, ok := s.branches[branch]; ok {
		return len(b.Nodes)
	}
	return 0
}

// Node returns the node at pos
func (s *Script) Node(pos Position) (Node, bool) {
	b, ok := s.branches[pos.Branch]
	if !ok || pos.Index < 0 || pos.Index >= len(b.Nodes) {
		return nil, false
	}
	return b.Nodes[pos.Index], true
}

// Locate finds the position of a node id
func (s *Script) Locate(id string) (Position, bool) {
	pos, ok := s.ids[id]
	return pos, ok
}

// Resolve turns a next/choice reference into a target
// Lookup order: End sentinel, node id in the same branch, node id anywhere, branch name
func (s *Script) Resolve(from Position, ref string) (Target, error) {
	if ref == End {
		return Target{End: true}, nil
	}
	if pos, ok := s.ids[ref]; ok {
		// ids are globally unique so a same-branch hit and a global hit coincide
		return Target{Pos: pos}, nil
	}
	if s.HasBranch(ref) {
		return Target{Pos: Position{Branch: ref}}, nil
	}

	nodeID := ""
	if n, ok := s.Node(from); ok {
		nodeID = n.NodeID()
	}
	return Target{}, &ScriptError{Branch: from.Branch, NodeID: nodeID, Target: ref, Err: ErrDanglingTarget}
}

// Validate checks every link in the script and reports all problems joined
func (s *Script) Validate() error {
	var errs []error

	for _, name := range s.order {
		b := s.branches[name]
		for idx, n := range b.Nodes {
			pos := Position{Branch: name, Index: idx}
			last := idx == len(b.Nodes)-1

			switch v := n.(type) {
			case *Dialogue:
				if v.Text == nil {
					errs = append(errs, &ScriptError{Branch: name, NodeID: v.ID, Err: fmt.Errorf("%w: dialogue without text", ErrMalformedNode)})
				}
				if v.Trigger != nil {
					if v.Trigger.Kind != EffectFadeOut && v.Trigger.Kind != EffectParticleReveal {
						errs = append(errs, &ScriptError{Branch: name, NodeID: v.ID, Err: fmt.Errorf("%w: trigger kind %q", ErrMalformedNode, v.Trigger.Kind)})
					}
					if v.Trigger.Duration <= 0 {
						errs = append(errs, &ScriptError{Branch: name, NodeID: v.ID, Err: fmt.Errorf("%w: trigger without duration", ErrMalformedNode)})
					}
				}
				errs = append(errs, s.checkNext(pos, v.ID, v.Next, last)...)

			case *Choice:
				if len(v.Options) == 0 {
					errs = append(errs, &ScriptError{Branch: name, NodeID: v.ID, Err: fmt.Errorf("%w: choice without options", ErrMalformedNode)})
				}
				for _, opt := range v.Options {
					if opt.Target == End {
						continue
					}
					if _, err := s.Resolve(pos, opt.Target); err != nil {
						errs = append(errs, err)
					}
				}

			case *Effect:
				if !v.Kind.Valid() {
					errs = append(errs, &ScriptError{Branch: name, NodeID: v.ID, Err: fmt.Errorf("%w: effect kind %q", ErrMalformedNode, v.Kind)})
				}
				if v.Duration <= 0 {
					errs = append(errs, &ScriptError{Branch: name, NodeID: v.ID, Err: fmt.Errorf("%w: effect without duration", ErrMalformedNode)})
				}
				errs = append(errs, s.checkNext(pos, v.ID, v.Next, last)...)
			}
		}
	}
	errs = append(errs, s.effectLoops()...)

	return errors.Join(errs...)
}

// effectLoops reports chains of effect nodes that lead back into themselves with no line to stop on
func (s *Script) effectLoops() []error {
	const (
		walking = 1
		done    = 2
	)
	var errs []error
	state := make(map[Position]int)

	for _, name := range s.order {
		for idx := range s.branches[name].Nodes {
			var path []Position
			pos := Position{Branch: name, Index: idx}
			for {
				fx, ok := s.branches[pos.Branch].Nodes[pos.Index].(*Effect)
				if !ok || state[pos] == done {
					break
				}
				if state[pos] == walking {
					errs = append(errs, &ScriptError{Branch: pos.Branch, NodeID: fx.ID, Err: fmt.Errorf("%w: effect nodes loop", ErrMalformedNode)})
					break
				}
				state[pos] = walking
				path = append(path, pos)

				next, ok := s.effectNext(pos, fx.Next)
				if !ok {
					break
				}
				pos = next
			}
			for _, p := range path {
				state[p] = done
			}
		}
	}
	return errs
}

// effectNext follows an effect node link; false when it ends or cannot resolve
func (s *Script) effectNext(pos Position, next string) (Position, bool) {
	if next == "" {
		if pos.Index+1 < len(s.branches[pos.Branch].Nodes) {
			return Position{Branch: pos.Branch, Index: pos.Index + 1}, true
		}
		return Position{}, false
	}
	t, err := s.Resolve(pos, next)
	if err != nil || t.End {
		return Position{}, false
	}
	return t.Pos, true
}

func (s *Script) checkNext(pos Position, id, next string, last bool) []error {
	if next == "" {
		if last {
			return []error{&ScriptError{Branch: pos.Branch, NodeID: id, Err: ErrDeadEnd}}
		}
		return nil
	}
	if _, err := s.Resolve(pos, next); err != nil {
		return []error{err}
	}
	return nil
}
