package common

import (
	"context"

	"github.com/crmarques/ddiconf/config"
	"github.com/crmarques/ddiconf/debugctx"
	"github.com/crmarques/ddiconf/descriptor"
	"github.com/crmarques/ddiconf/faults"
	"github.com/crmarques/ddiconf/orchestrator"
	"github.com/crmarques/ddiconf/server"
)

// ClientFactory builds the platform client of a resolved context.
type ClientFactory func(config.Context) (server.Client, error)

type CommandDependencies struct {
	Contexts  config.ContextService
	NewClient ClientFactory
}

// Session is a resolved context together with its platform client.
type Session struct {
	Context config.Context
	Client  server.Client
}

func RequireContexts(deps CommandDependencies) (config.ContextService, error) {
	if deps.Contexts == nil {
		return nil, faults.NewTypedError(faults.InternalError, "context service is not configured", nil)
	}
	return deps.Contexts, nil
}

// OpenSession resolves the selected context and connects to its platform.
func OpenSession(ctx context.Context, deps CommandDependencies, globalFlags *GlobalFlags) (Session, error) {
	contexts, err := RequireContexts(deps)
	if err != nil {
		return Session{}, err
	}
	if deps.NewClient == nil {
		return Session{}, faults.NewTypedError(faults.InternalError, "platform client factory is not configured", nil)
	}

	selection := config.ContextSelection{}
	if globalFlags != nil {
		selection.Name = globalFlags.Context
	}
	resolved, err := contexts.ResolveContext(ctx, selection)
	if err != nil {
		return Session{}, err
	}

	client, err := deps.NewClient(resolved)
	if err != nil {
		return Session{}, err
	}

	debugctx.Printf(ctx, "session context=%q base_url=%q", resolved.Name, resolved.Platform.BaseURL)
	return Session{Context: resolved, Client: client}, nil
}

// Orchestrator returns an orchestrator honoring the context defaults.
func (s Session) Orchestrator() *orchestrator.Orchestrator {
	return orchestrator.New(
		s.Client,
		orchestrator.WithDefaultAmbiguity(descriptor.AmbiguityPolicy(s.Context.Defaults.Ambiguity)),
	)
}
