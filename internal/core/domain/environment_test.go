package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pyrun/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestNewEnvironment(t *testing.T) {
	env := domain.NewEnvironment([]string{"A=1", "B=x=y", "A=2", "NOEQUALS", "=bad", "EMPTY="})

	assert.Equal(t, domain.Environment{"A": "2", "B": "x=y", "EMPTY": ""}, env)
}

func TestEnvironment_List(t *testing.T) {
	env := domain.Environment{"PYTHON": "python3", "DOCS": "docs/_build", "A": ""}

	assert.Equal(t, []string{"A=", "DOCS=docs/_build", "PYTHON=python3"}, env.List())
}

func TestEnvironment_RequireAll(t *testing.T) {
	doc := &domain.Target{Name: domain.NewInternedString("doc")}
	publish := &domain.Target{
		Name:        domain.NewInternedString("doc-publish-jdhp"),
		RequiredEnv: []string{"JDHP_DOCS_URI"},
	}
	plan := []*domain.Target{doc, publish}

	t.Run("Set", func(t *testing.T) {
		env := domain.Environment{"JDHP_DOCS_URI": "host:/srv/docs"}
		require.NoError(t, env.RequireAll(plan))
	})

	for name, env := range map[string]domain.Environment{
		"Unset": {},
		"Empty": {"JDHP_DOCS_URI": ""},
	} {
		t.Run(name, func(t *testing.T) {
			err := env.RequireAll(plan)
			require.ErrorIs(t, err, domain.ErrMissingEnvironmentVariable)

			var zErr *zerr.Error
			require.ErrorAs(t, err, &zErr)
			assert.Equal(t, "JDHP_DOCS_URI", zErr.Metadata()["variable"])
			assert.Equal(t, "doc-publish-jdhp", zErr.Metadata()["target"])
			assert.Equal(t, domain.ExitConfig, domain.ExitCode(err))
		})
	}
}
