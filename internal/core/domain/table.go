// Package domain contains the target table and the rules for planning and running targets.
package domain

import (
	"iter"
	"strings"

	"go.trai.ch/zerr"
)

const (
	unvisited = iota
	visiting
	visited
)

// Table maps target names to their definitions. It is built once at
// startup and not modified afterwards.
type Table struct {
	// Root is the directory commands run in.
	Root string
	// Fallback is the script run for undeclared targets. Empty disables it.
	Fallback string
	// Variables are defaults exported to every command, in declaration order.
	Variables []Variable

	targets map[InternedString]*Target
	order   []InternedString
}

// NewTable creates a table rooted at root that holds only the builtin targets.
func NewTable(root string) *Table {
	t := &Table{
		Root:    root,
		targets: make(map[InternedString]*Target),
	}
	for _, b := range builtinTargets() {
		t.targets[b.Name] = b
		t.order = append(t.order, b.Name)
	}
	return t
}

// AddTarget adds a target to the table.
// It returns an error if a target with the same name already exists.
func (t *Table) AddTarget(target *Target) error {
	if _, exists := t.targets[target.Name]; exists {
		return zerr.With(
			zerr.Wrap(ErrTargetAlreadyExists, "cannot add target"),
			"target", target.Name.String(),
		)
	}
	t.targets[target.Name] = target
	t.order = append(t.order, target.Name)
	return nil
}

// Lookup returns the target called name.
func (t *Table) Lookup(name string) (*Target, bool) {
	target, ok := t.targets[NewInternedString(name)]
	return target, ok
}

// Len returns the number of targets, builtins included.
func (t *Table) Len() int {
	return len(t.order)
}

// All yields targets in declaration order, builtins first.
func (t *Table) All() iter.Seq[*Target] {
	return func(yield func(*Target) bool) {
		for _, name := range t.order {
			if !yield(t.targets[name]) {
				return
			}
		}
	}
}

// Names returns every target name in declaration order, builtins first.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.order))
	for target := range t.All() {
		names = append(names, target.Name.String())
	}
	return names
}

// VisibleNames returns the names shown in the listing: every target
// exactly once, in declaration order, without internal targets.
func (t *Table) VisibleNames() []string {
	names := make([]string, 0, len(t.order))
	for target := range t.All() {
		if target.Internal {
			continue
		}
		names = append(names, target.Name.String())
	}
	return names
}

// Validate checks that every dependency exists, that no target depends on
// a builtin and that dependencies are acyclic.
func (t *Table) Validate() error {
	for target := range t.All() {
		for _, dep := range target.Dependencies {
			depTarget, exists := t.targets[dep]
			if !exists {
				return zerr.With(zerr.With(
					zerr.Wrap(ErrMissingDependency, "invalid dependency"),
					"target", target.Name.String()),
					"dependency", dep.String())
			}
			if depTarget.Builtin {
				return zerr.With(zerr.With(
					zerr.Wrap(ErrBuiltinDependency, "invalid dependency"),
					"target", target.Name.String()),
					"dependency", dep.String())
			}
		}
	}

	state := make(map[InternedString]int, len(t.order))
	for _, name := range t.order {
		if state[name] != unvisited {
			continue
		}
		if _, err := t.visit(name, state, nil, nil); err != nil {
			return err
		}
	}
	return nil
}

// Plan returns the targets to run for name, dependencies first. Each
// target appears once and the requested target is last.
func (t *Table) Plan(name string) ([]*Target, error) {
	root := NewInternedString(name)
	if _, ok := t.targets[root]; !ok {
		return nil, zerr.With(zerr.Wrap(ErrUnknownTarget, "cannot plan target"), "target", name)
	}

	state := make(map[InternedString]int)
	return t.visit(root, state, nil, nil)
}

func (t *Table) visit(
	name InternedString,
	state map[InternedString]int,
	path []InternedString,
	plan []*Target,
) ([]*Target, error) {
	target, exists := t.targets[name]
	if !exists {
		return nil, zerr.With(zerr.Wrap(ErrMissingDependency, "invalid dependency"), "dependency", name.String())
	}

	state[name] = visiting
	path = append(path, name)

	var err error
	for _, dep := range target.Dependencies {
		switch state[dep] {
		case visiting:
			return nil, buildCycleError(path, dep)
		case unvisited:
			if plan, err = t.visit(dep, state, path, plan); err != nil {
				return nil, err
			}
		}
	}

	state[name] = visited
	return append(plan, target), nil
}

// buildCycleError constructs an error with cycle path metadata.
func buildCycleError(path []InternedString, dep InternedString) error {
	start := 0
	for i, node := range path {
		if node == dep {
			start = i
			break
		}
	}

	parts := make([]string, 0, len(path)-start+1)
	for _, node := range path[start:] {
		parts = append(parts, node.String())
	}
	parts = append(parts, dep.String())

	return zerr.With(zerr.Wrap(ErrCycleDetected, "invalid dependency graph"), "cycle", strings.Join(parts, " -> "))
}
