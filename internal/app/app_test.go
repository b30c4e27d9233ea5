package app_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pyrun/internal/app"
	"go.trai.ch/pyrun/internal/core/domain"
	"go.trai.ch/pyrun/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type appTestMocks struct {
	loader     *mocks.MockConfigLoader
	executor   *mocks.MockExecutor
	logger     *mocks.MockLogger
	envFactory *mocks.MockEnvironmentFactory
	renderer   *mocks.MockRenderer
}

func setupAppTest(t *testing.T) (*app.App, appTestMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := appTestMocks{
		loader:     mocks.NewMockConfigLoader(ctrl),
		executor:   mocks.NewMockExecutor(ctrl),
		logger:     mocks.NewMockLogger(ctrl),
		envFactory: mocks.NewMockEnvironmentFactory(ctrl),
		renderer:   mocks.NewMockRenderer(ctrl),
	}
	m.logger.EXPECT().Info(gomock.Any()).AnyTimes()

	return app.New(m.loader, m.executor, m.logger, m.envFactory, m.renderer), m
}

func newTarget(name, description string, deps []string, scripts ...string) *domain.Target {
	target := &domain.Target{
		Name:         domain.NewInternedString(name),
		Description:  description,
		Dependencies: domain.NewInternedStrings(deps),
	}
	for _, script := range scripts {
		target.Commands = append(target.Commands, domain.Command{Script: script})
	}
	return target
}

// projectTable builds a small table rooted at root.
func projectTable(t *testing.T, root string) *domain.Table {
	t.Helper()
	table := domain.NewTable(root)
	table.Fallback = `"$PYTHON" setup.py "$@"`
	table.Variables = []domain.Variable{{Name: "PYTHON", Value: "python3"}}

	dist := newTarget("_jdhp-dist", "", nil, `scp dist/* "$JDHP_DL_URI"`)
	dist.Internal = true
	dist.RequiredEnv = []string{"JDHP_DL_URI"}

	publish := newTarget("doc-publish-jdhp", "Publish the documentation", []string{"doc"},
		`rsync -r "$HTML_TMP_DIR/" "$JDHP_DOCS_URI/"`)
	publish.RequiredEnv = []string{"JDHP_DOCS_URI"}

	for _, target := range []*domain.Target{
		newTarget("init", "Install the package in editable mode", nil, `"$PYTHON" -m pip install -e .`),
		newTarget("clean", "Remove generated files", nil, "rm -vf MANIFEST"),
		newTarget("doc", "Build the documentation", nil, "make -C docs html"),
		publish,
		dist,
		newTarget("test", "", nil, `"$PYTHON" -m pytest "$@"`),
	} {
		require.NoError(t, table.AddTarget(target))
	}
	require.NoError(t, table.Validate())
	return table
}

func TestApp_Run_DeclaredTarget(t *testing.T) {
	a, m := setupAppTest(t)
	root := t.TempDir()
	table := projectTable(t, root)

	env := domain.Environment{"PYTHON": "python3", "JDHP_DOCS_URI": "host:/var/www"}
	m.loader.EXPECT().Load(root).Return(table, nil)
	m.envFactory.EXPECT().GetEnvironment(root, table.Variables, map[string]string{"PYTHON": "python3.12"}).Return(env, nil)

	var invocations []*domain.Invocation
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inv *domain.Invocation, _, _ io.Writer) error {
			invocations = append(invocations, inv)
			return nil
		}).Times(2)

	err := a.Run(context.Background(), "doc-publish-jdhp", []string{"--delete"}, app.RunOptions{
		Dir:       root,
		Overrides: map[string]string{"PYTHON": "python3.12"},
		Progress:  "none",
	})
	require.NoError(t, err)

	require.Len(t, invocations, 2)
	assert.Equal(t, "doc", invocations[0].Target)
	assert.Empty(t, invocations[0].Args)
	assert.Equal(t, "doc-publish-jdhp", invocations[1].Target)
	assert.Equal(t, []string{"--delete"}, invocations[1].Args)
	assert.Equal(t, root, invocations[1].Dir)
	assert.Equal(t, env.List(), invocations[1].Env)
}

func TestApp_Run_Listing(t *testing.T) {
	for _, name := range []string{"", "help", "list"} {
		t.Run("target "+name, func(t *testing.T) {
			a, m := setupAppTest(t)
			root := t.TempDir()

			m.loader.EXPECT().Load(root).Return(projectListingTable(t, root), nil)

			var stdout bytes.Buffer
			err := a.Run(context.Background(), name, []string{"ignored"}, app.RunOptions{Dir: root, Stdout: &stdout})
			require.NoError(t, err)

			g := goldie.New(t)
			g.Assert(t, "listing", stdout.Bytes())
		})
	}
}

// projectListingTable mirrors the listing golden file.
func projectListingTable(t *testing.T, root string) *domain.Table {
	t.Helper()
	table := domain.NewTable(root)
	hidden := newTarget("_jdhp-dist", "Upload the distribution", nil, "true")
	hidden.Internal = true
	for _, target := range []*domain.Target{
		newTarget("init", "Install the package in editable mode", nil, "true"),
		newTarget("clean", "Remove generated files", nil, "true"),
		hidden,
		newTarget("test", "", nil, "true"),
	} {
		require.NoError(t, table.AddTarget(target))
	}
	return table
}

func TestApp_Run_Fallback(t *testing.T) {
	a, m := setupAppTest(t)
	root := t.TempDir()
	table := projectTable(t, root)

	m.loader.EXPECT().Load(root).Return(table, nil)
	m.envFactory.EXPECT().GetEnvironment(root, gomock.Any(), gomock.Any()).Return(domain.Environment{"PYTHON": "python3"}, nil)
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inv *domain.Invocation, _, _ io.Writer) error {
			assert.Equal(t, "bdist_wheel", inv.Target)
			assert.Equal(t, `"$PYTHON" setup.py "$@"`, inv.Script)
			assert.Equal(t, []string{"bdist_wheel", "--universal", "-d", "out dir"}, inv.Args)
			return nil
		})

	err := a.Run(context.Background(), "bdist_wheel", []string{"--universal", "-d", "out dir"}, app.RunOptions{
		Dir:      root,
		Progress: "none",
	})
	require.NoError(t, err)
}

func TestApp_Run_UnknownTargetWithoutFallback(t *testing.T) {
	a, m := setupAppTest(t)
	root := t.TempDir()
	table := projectTable(t, root)
	table.Fallback = ""

	m.loader.EXPECT().Load(root).Return(table, nil)
	m.envFactory.EXPECT().GetEnvironment(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.Environment{}, nil)
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	err := a.Run(context.Background(), "sdist", nil, app.RunOptions{Dir: root})
	require.ErrorIs(t, err, domain.ErrUnknownTarget)
	assert.Equal(t, domain.ExitUsage, domain.ExitCode(err))

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, "sdist", zErr.Metadata()["target"])
}

func TestApp_Run_MissingEnvironmentVariable(t *testing.T) {
	a, m := setupAppTest(t)
	root := t.TempDir()
	table := projectTable(t, root)

	m.loader.EXPECT().Load(root).Return(table, nil)
	m.envFactory.EXPECT().GetEnvironment(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.Environment{"PYTHON": "python3", "JDHP_DOCS_URI": ""}, nil)
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	err := a.Run(context.Background(), "doc-publish-jdhp", nil, app.RunOptions{Dir: root})
	require.ErrorIs(t, err, domain.ErrMissingEnvironmentVariable)
	assert.Equal(t, domain.ExitConfig, domain.ExitCode(err))

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, "JDHP_DOCS_URI", zErr.Metadata()["variable"])
	assert.Equal(t, "doc-publish-jdhp", zErr.Metadata()["target"])
}

func TestApp_Run_ChildFailure(t *testing.T) {
	a, m := setupAppTest(t)
	root := t.TempDir()

	m.loader.EXPECT().Load(root).Return(projectTable(t, root), nil)
	m.envFactory.EXPECT().GetEnvironment(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.Environment{}, nil)
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.CommandError{Code: 5})

	err := a.Run(context.Background(), "test", nil, app.RunOptions{Dir: root, Progress: "none"})
	require.Error(t, err)
	assert.Equal(t, 5, domain.ExitCode(err))
}

func TestApp_Run_LoadError(t *testing.T) {
	a, m := setupAppTest(t)
	root := t.TempDir()

	loadErr := zerr.Wrap(domain.ErrConfigParseFailed, "cannot load build description")
	m.loader.EXPECT().Load(root).Return(nil, loadErr)

	err := a.Run(context.Background(), "clean", nil, app.RunOptions{Dir: root})
	require.ErrorIs(t, err, domain.ErrConfigParseFailed)
	assert.Equal(t, domain.ExitConfig, domain.ExitCode(err))
}

func TestApp_Run_EnvironmentError(t *testing.T) {
	a, m := setupAppTest(t)
	root := t.TempDir()

	m.loader.EXPECT().Load(root).Return(projectTable(t, root), nil)
	m.envFactory.EXPECT().GetEnvironment(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, zerr.Wrap(domain.ErrEnvFileReadFailed, "cannot load environment"))

	err := a.Run(context.Background(), "clean", nil, app.RunOptions{Dir: root})
	require.ErrorIs(t, err, domain.ErrEnvFileReadFailed)
}

func TestApp_Run_ConfigPath(t *testing.T) {
	a, m := setupAppTest(t)
	root := t.TempDir()

	m.loader.EXPECT().LoadFile(filepath.Join(root, "ci", "pyrun.yaml")).Return(projectListingTable(t, root), nil)

	err := a.Run(context.Background(), "help", nil, app.RunOptions{
		Dir:        root,
		ConfigPath: filepath.Join("ci", "pyrun.yaml"),
		Stdout:     io.Discard,
	})
	require.NoError(t, err)
}

func TestApp_Run_ConfigPathAbsolute(t *testing.T) {
	a, m := setupAppTest(t)
	path := filepath.Join(t.TempDir(), "pyrun.yaml")

	m.loader.EXPECT().LoadFile(path).Return(projectListingTable(t, t.TempDir()), nil)

	err := a.Run(context.Background(), "list", nil, app.RunOptions{
		Dir:        t.TempDir(),
		ConfigPath: path,
		Stdout:     io.Discard,
	})
	require.NoError(t, err)
}

func TestApp_Run_LinearProgress(t *testing.T) {
	a, m := setupAppTest(t)
	root := t.TempDir()

	m.loader.EXPECT().Load(root).Return(projectTable(t, root), nil)
	m.envFactory.EXPECT().GetEnvironment(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.Environment{}, nil)
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	gomock.InOrder(
		m.renderer.EXPECT().OnPlanEmit([]string{"clean"}),
		m.renderer.EXPECT().OnTargetStart(gomock.Any(), "clean", gomock.Any()),
		m.renderer.EXPECT().OnTargetComplete(gomock.Any(), gomock.Any(), nil),
	)

	err := a.Run(context.Background(), "clean", nil, app.RunOptions{Dir: root, Progress: "linear"})
	require.NoError(t, err)
}

func TestApp_Run_InvalidProgress(t *testing.T) {
	a, m := setupAppTest(t)
	root := t.TempDir()

	m.loader.EXPECT().Load(root).Return(projectTable(t, root), nil)
	m.envFactory.EXPECT().GetEnvironment(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.Environment{}, nil)

	err := a.Run(context.Background(), "clean", nil, app.RunOptions{Dir: root, Progress: "tui"})
	require.ErrorIs(t, err, domain.ErrInvalidProgressMode)
	assert.Equal(t, domain.ExitUsage, domain.ExitCode(err))
}

func TestApp_Run_DryRun(t *testing.T) {
	a, m := setupAppTest(t)
	root := t.TempDir()

	m.loader.EXPECT().Load(root).Return(projectTable(t, root), nil)
	m.envFactory.EXPECT().GetEnvironment(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.Environment{}, nil)
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	err := a.Run(context.Background(), "sdist", nil, app.RunOptions{Dir: root, DryRun: true, Progress: "none"})
	require.NoError(t, err)
}

func TestApp_ListTargets(t *testing.T) {
	a, m := setupAppTest(t)
	root := t.TempDir()

	m.loader.EXPECT().Load(root).Return(projectTable(t, root), nil)

	names, err := a.ListTargets(context.Background(), app.RunOptions{Dir: root})
	require.NoError(t, err)
	assert.Equal(t, []string{"help", "list", "init", "clean", "doc", "doc-publish-jdhp", "test"}, names)
}

func TestApp_ListTargets_LoadError(t *testing.T) {
	a, m := setupAppTest(t)
	root := t.TempDir()

	m.loader.EXPECT().Load(root).Return(nil, errors.New("boom"))

	_, err := a.ListTargets(context.Background(), app.RunOptions{Dir: root})
	require.Error(t, err)
}
