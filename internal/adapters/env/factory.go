// Package env resolves the environment targets run with.
package env

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.trai.ch/pyrun/internal/core/domain"
	"go.trai.ch/zerr"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

// Factory implements ports.EnvironmentFactory.
type Factory struct {
	environ func() []string
}

// NewFactory creates a Factory reading the process environment.
func NewFactory() *Factory {
	return &Factory{environ: os.Environ}
}

// GetEnvironment layers the table variables, the dotenv files of root, the
// process environment and overrides, each overriding the one before.
//
// Variable defaults are expanded as shell words, so a default may refer to
// an earlier default or to any variable of the higher layers. A default
// that a higher layer sets is not expanded.
func (f *Factory) GetEnvironment(
	root string,
	vars []domain.Variable,
	overrides map[string]string,
) (domain.Environment, error) {
	upper, err := readEnvFiles(root)
	if err != nil {
		return nil, err
	}
	for k, v := range domain.NewEnvironment(f.environ()) {
		upper[k] = v
	}
	for k, v := range overrides {
		upper[k] = v
	}

	env := make(domain.Environment, len(vars)+len(upper))
	lookup := func(name string) string {
		if v, ok := upper[name]; ok {
			return v
		}
		return env[name]
	}

	for _, v := range vars {
		if _, ok := upper[v.Name]; ok {
			continue
		}
		value, err := expandValue(v.Value, lookup)
		if err != nil {
			return nil, zerr.With(zerr.With(
				zerr.Wrap(domain.ErrInvalidVariableValue, "cannot resolve variable"),
				"variable", v.Name),
				"reason", err.Error())
		}
		env[v.Name] = value
	}

	for k, v := range upper {
		env[k] = v
	}
	return env, nil
}

func readEnvFiles(root string) (domain.Environment, error) {
	env := make(domain.Environment)
	for _, path := range domain.EnvFilePaths(root) {
		values, err := godotenv.Read(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, zerr.With(zerr.With(
				zerr.Wrap(domain.ErrEnvFileReadFailed, "cannot load environment"),
				"file", path),
				"reason", err.Error())
		}
		for k, v := range values {
			env[k] = v
		}
	}
	return env, nil
}

func expandValue(value string, lookup func(string) string) (string, error) {
	if !strings.ContainsAny(value, "$`\\") {
		return value, nil
	}
	word, err := syntax.NewParser().Document(strings.NewReader(value))
	if err != nil {
		return "", err
	}
	return expand.Document(&expand.Config{Env: expand.FuncEnviron(lookup)}, word)
}
