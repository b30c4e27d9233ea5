package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pyrun/internal/adapters/config" //nolint:depguard // Wired in app layer
	"go.trai.ch/pyrun/internal/adapters/env"    //nolint:depguard // Wired in app layer
	"go.trai.ch/pyrun/internal/adapters/linear" //nolint:depguard // Wired in app layer
	"go.trai.ch/pyrun/internal/adapters/logger" //nolint:depguard // Wired in app layer
	"go.trai.ch/pyrun/internal/adapters/shell"  //nolint:depguard // Wired in app layer
	"go.trai.ch/pyrun/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			shell.NodeID,
			logger.NodeID,
			env.NodeID,
			linear.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	executor, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	envFactory, err := graft.Dep[ports.EnvironmentFactory](ctx)
	if err != nil {
		return nil, err
	}

	renderer, err := graft.Dep[ports.Renderer](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, executor, log, envFactory, renderer), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:    app,
		Logger: log,
	}, nil
}
