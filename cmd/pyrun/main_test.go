package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pyrun/internal/app"
	"go.trai.ch/pyrun/internal/core/domain"
	"go.trai.ch/pyrun/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type testMocks struct {
	loader     *mocks.MockConfigLoader
	executor   *mocks.MockExecutor
	logger     *mocks.MockLogger
	envFactory *mocks.MockEnvironmentFactory
}

func newProvider(t *testing.T) (ComponentProvider, testMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := testMocks{
		loader:     mocks.NewMockConfigLoader(ctrl),
		executor:   mocks.NewMockExecutor(ctrl),
		logger:     mocks.NewMockLogger(ctrl),
		envFactory: mocks.NewMockEnvironmentFactory(ctrl),
	}

	application := app.New(m.loader, m.executor, m.logger, m.envFactory, mocks.NewMockRenderer(ctrl))
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{
			App:    application,
			Logger: m.logger,
		}, func() {}, nil
	}
	return provider, m
}

func singleTargetTable(t *testing.T, root string) *domain.Table {
	t.Helper()
	table := domain.NewTable(root)
	require.NoError(t, table.AddTarget(&domain.Target{
		Name:     domain.NewInternedString("test"),
		Commands: []domain.Command{{Script: "pytest"}},
	}))
	return table
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	provider, _ := newProvider(t)

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"--version"}, stderr, provider)
	assert.Equal(t, 0, exitCode)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"--version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, m testMocks, dir string)
		args  []string
		want  int
	}{
		{
			name: "Config Error",
			setup: func(_ *testing.T, m testMocks, dir string) {
				m.loader.EXPECT().Load(dir).Return(nil, zerr.Wrap(domain.ErrConfigParseFailed, "cannot load build description"))
			},
			args: []string{"test"},
			want: domain.ExitConfig,
		},
		{
			name: "Unknown Target",
			setup: func(t *testing.T, m testMocks, dir string) {
				m.loader.EXPECT().Load(dir).Return(singleTargetTable(t, dir), nil)
				m.envFactory.EXPECT().GetEnvironment(dir, gomock.Any(), gomock.Any()).Return(domain.Environment{}, nil)
			},
			args: []string{"sdist"},
			want: domain.ExitUsage,
		},
		{
			name: "Child Exit Status",
			setup: func(t *testing.T, m testMocks, dir string) {
				m.loader.EXPECT().Load(dir).Return(singleTargetTable(t, dir), nil)
				m.envFactory.EXPECT().GetEnvironment(dir, gomock.Any(), gomock.Any()).Return(domain.Environment{}, nil)
				m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(&domain.CommandError{Code: 4})
			},
			args: []string{"--progress", "none", "test"},
			want: 4,
		},
		{
			name:  "Invalid Log Format",
			setup: func(*testing.T, testMocks, string) {},
			args:  []string{"--log-format", "xml", "test"},
			want:  domain.ExitUsage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, m := newProvider(t)
			m.logger.EXPECT().Info(gomock.Any()).AnyTimes()
			m.logger.EXPECT().Error(gomock.Any()).Times(1)

			dir := t.TempDir()
			tt.setup(t, m, dir)

			args := append([]string{"-C", dir}, tt.args...)
			exitCode := run(context.Background(), args, io.Discard, provider)
			assert.Equal(t, tt.want, exitCode)
		})
	}
}

// TestRun_Signal verifies that cancelling the context interrupts a running target.
func TestRun_Signal(t *testing.T) {
	provider, m := newProvider(t)
	dir := t.TempDir()

	started := make(chan struct{})
	m.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	m.logger.EXPECT().Error(gomock.Any()).AnyTimes()
	m.loader.EXPECT().Load(dir).Return(singleTargetTable(t, dir), nil)
	m.envFactory.EXPECT().GetEnvironment(dir, gomock.Any(), gomock.Any()).Return(domain.Environment{}, nil)
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ *domain.Invocation, _, _ io.Writer) error {
			close(started)
			<-ctx.Done()
			return zerr.Wrap(ctx.Err(), "command interrupted")
		})

	ctx, cancel := context.WithCancel(context.Background())
	exitCh := make(chan int)

	go func() {
		exitCh <- run(ctx, []string{"-C", dir, "--progress", "none", "test"}, io.Discard, provider)
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("target never started")
	}
	cancel()

	select {
	case ret := <-exitCh:
		assert.Equal(t, domain.ExitInterrupted, ret)
	case <-time.After(2 * time.Second):
		t.Fatal("TestRun_Signal timed out waiting for run() to return")
	}
}
