package config

import (
	"strings"

	"go.trai.ch/pyrun/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Buildfile represents the structure of the pyrun.yaml build description.
// Variables and targets are kept as nodes so declaration order survives.
type Buildfile struct {
	Version   string    `yaml:"version"`
	Root      string    `yaml:"root"`
	Fallback  string    `yaml:"fallback"`
	Variables yaml.Node `yaml:"variables"`
	Targets   yaml.Node `yaml:"targets"`
}

// TargetDTO represents a target definition in the configuration.
type TargetDTO struct {
	Description string       `yaml:"description"`
	DependsOn   []string     `yaml:"dependsOn"`
	Commands    []CommandDTO `yaml:"commands"`
	RequiresEnv []string     `yaml:"requiresEnv"`
	Internal    bool         `yaml:"internal"`
}

// CommandDTO is a command entry. It is either a string, optionally
// prefixed with '-' (ignore failure) and '@' (silent), or a mapping.
type CommandDTO struct {
	Run           string `yaml:"run"`
	IgnoreFailure bool   `yaml:"ignoreFailure"`
	Silent        bool   `yaml:"silent"`
}

// UnmarshalYAML accepts both the short string form and the mapping form.
func (c *CommandDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*c = parseCommandLine(node.Value)
		return nil
	}

	type plain CommandDTO
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = CommandDTO(p)
	return nil
}

func parseCommandLine(line string) CommandDTO {
	var c CommandDTO
	for {
		line = strings.TrimLeft(line, " \t")
		switch {
		case strings.HasPrefix(line, "-"):
			c.IgnoreFailure = true
		case strings.HasPrefix(line, "@"):
			c.Silent = true
		default:
			c.Run = line
			return c
		}
		line = line[1:]
	}
}

type pair struct {
	key   string
	value *yaml.Node
}

// mappingPairs returns the entries of a mapping node in document order.
// An absent or null node has no entries.
func mappingPairs(node *yaml.Node, section string) ([]pair, error) {
	if node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null") {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, zerr.With(zerr.With(
			zerr.Wrap(domain.ErrConfigParseFailed, "expected a mapping"),
			"section", section),
			"line", node.Line)
	}

	pairs := make([]pair, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		pairs = append(pairs, pair{key: node.Content[i].Value, value: node.Content[i+1]})
	}
	return pairs, nil
}
