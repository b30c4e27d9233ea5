// Package config provides the build description loader for pyrun.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"go.trai.ch/pyrun/internal/core/domain"
	"go.trai.ch/pyrun/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the only schema version understood by the loader.
const SupportedVersion = "1"

// defaultsName identifies the embedded table in errors.
const defaultsName = "<defaults>"

//go:embed defaults.yaml
var defaultBuildfile []byte

// Loader implements ports.ConfigLoader for YAML and JSON build descriptions.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load walks up from cwd to the nearest build description and loads it.
// Without one it returns the embedded default table rooted at cwd.
func (l *Loader) Load(cwd string) (*domain.Table, error) {
	if path, ok := findBuildfile(cwd); ok {
		return l.LoadFile(path)
	}
	return l.Defaults(cwd)
}

// LoadFile reads the build description at path.
func (l *Loader) LoadFile(path string) (*domain.Table, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, zerr.With(loadError(domain.ErrFailedToGetRoot, err), "file", path)
	}

	// #nosec G304 -- path is chosen by the user or found by discovery
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, zerr.With(loadError(domain.ErrConfigReadFailed, err), "file", absPath)
	}

	switch strings.ToLower(filepath.Ext(absPath)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}

	return l.parse(data, absPath, filepath.Dir(absPath))
}

// Defaults returns the embedded default table rooted at root.
func (l *Loader) Defaults(root string) (*domain.Table, error) {
	return l.parse(defaultBuildfile, defaultsName, root)
}

func findBuildfile(cwd string) (string, bool) {
	dir := cwd
	for {
		for _, name := range domain.BuildFileNames() {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, true
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func (l *Loader) parse(data []byte, name, baseDir string) (*domain.Table, error) {
	var bf Buildfile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return nil, zerr.With(loadError(domain.ErrConfigParseFailed, err), "file", name)
	}

	table, err := l.buildTable(&bf, baseDir)
	if err != nil {
		return nil, zerr.With(err, "file", name)
	}
	return table, nil
}

func (l *Loader) buildTable(bf *Buildfile, baseDir string) (*domain.Table, error) {
	if bf.Version != "" && bf.Version != SupportedVersion {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedVersion, "invalid config"), "version", bf.Version)
	}

	table := domain.NewTable(resolveRoot(baseDir, bf.Root))
	table.Fallback = strings.TrimSpace(bf.Fallback)

	vars, err := buildVariables(&bf.Variables)
	if err != nil {
		return nil, err
	}
	table.Variables = vars

	pairs, err := mappingPairs(&bf.Targets, "targets")
	if err != nil {
		return nil, err
	}

	for _, p := range pairs {
		if err := validateTargetName(p.key); err != nil {
			return nil, err
		}

		var dto TargetDTO
		if err := p.value.Decode(&dto); err != nil {
			return nil, zerr.With(loadError(domain.ErrConfigParseFailed, err), "target", p.key)
		}

		target, err := buildTarget(p.key, &dto)
		if err != nil {
			return nil, err
		}

		if len(target.Commands) == 0 && len(target.Dependencies) == 0 {
			l.Logger.Warn(fmt.Sprintf("target %q has no commands and no dependencies", p.key))
		}

		if err := table.AddTarget(target); err != nil {
			return nil, err
		}
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}

	return table, nil
}

func buildVariables(node *yaml.Node) ([]domain.Variable, error) {
	pairs, err := mappingPairs(node, "variables")
	if err != nil {
		return nil, err
	}

	vars := make([]domain.Variable, 0, len(pairs))
	for _, p := range pairs {
		if !domain.IsValidVariableName(p.key) {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidVariableName, "invalid config"), "variable", p.key)
		}
		if p.value.Kind != yaml.ScalarNode {
			return nil, zerr.With(zerr.With(
				zerr.Wrap(domain.ErrConfigParseFailed, "variable values must be scalars"),
				"variable", p.key),
				"line", p.value.Line)
		}
		value := p.value.Value
		if p.value.Tag == "!!null" {
			value = ""
		}
		vars = append(vars, domain.Variable{Name: p.key, Value: value})
	}
	return vars, nil
}

func buildTarget(name string, dto *TargetDTO) (*domain.Target, error) {
	commands := make([]domain.Command, 0, len(dto.Commands))
	for i, c := range dto.Commands {
		script := strings.TrimSpace(c.Run)
		if script == "" {
			return nil, zerr.With(zerr.With(
				zerr.Wrap(domain.ErrEmptyCommand, "invalid config"),
				"target", name),
				"index", i)
		}
		commands = append(commands, domain.Command{
			Script:        script,
			IgnoreFailure: c.IgnoreFailure,
			Silent:        c.Silent,
		})
	}

	for _, v := range dto.RequiresEnv {
		if !domain.IsValidVariableName(v) {
			return nil, zerr.With(zerr.With(
				zerr.Wrap(domain.ErrInvalidVariableName, "invalid config"),
				"target", name),
				"variable", v)
		}
	}

	return &domain.Target{
		Name:         domain.NewInternedString(name),
		Description:  strings.TrimSpace(dto.Description),
		Commands:     commands,
		Dependencies: domain.NewInternedStrings(dto.DependsOn),
		RequiredEnv:  dto.RequiresEnv,
		Internal:     dto.Internal || strings.HasPrefix(name, domain.InternalPrefix),
	}, nil
}

// validateTargetName checks if the target name is reserved or contains invalid characters.
func validateTargetName(name string) error {
	if domain.IsReservedTargetName(name) {
		return zerr.With(zerr.Wrap(domain.ErrReservedTargetName, "invalid config"), "target", name)
	}
	if !domain.IsValidTargetName(name) {
		return zerr.With(zerr.Wrap(domain.ErrInvalidTargetName, "invalid config"), "target", name)
	}
	return nil
}

// loadError keeps sentinel matchable with errors.Is and records cause as text.
func loadError(sentinel, cause error) error {
	return zerr.With(zerr.Wrap(sentinel, "cannot load build description"), "reason", cause.Error())
}

func resolveRoot(baseDir, configured string) string {
	if configured == "" {
		return baseDir
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Join(baseDir, configured)
}
