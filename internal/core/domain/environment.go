package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Environment is the resolved set of variables commands run with.
type Environment map[string]string

// NewEnvironment builds an Environment from KEY=VALUE pairs. Later pairs
// override earlier ones and entries without '=' are skipped.
func NewEnvironment(pairs []string) Environment {
	env := make(Environment, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}
	return env
}

// List returns the environment as sorted KEY=VALUE pairs.
func (e Environment) List() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	list := make([]string, len(keys))
	for i, k := range keys {
		list[i] = k + "=" + e[k]
	}
	return list
}

// RequireAll checks that every variable required by the plan is set and
// non-empty. It reports the first missing one in plan order.
func (e Environment) RequireAll(plan []*Target) error {
	for _, target := range plan {
		for _, name := range target.RequiredEnv {
			if e[name] != "" {
				continue
			}
			return zerr.With(zerr.With(
				zerr.Wrap(ErrMissingEnvironmentVariable, "cannot run target"),
				"variable", name),
				"target", target.Name.String())
		}
	}
	return nil
}
