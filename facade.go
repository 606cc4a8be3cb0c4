package guestboot

import (
	"fmt"

	guestcommand "github.com/goliatone/go-guestboot/command"
	guestquery "github.com/goliatone/go-guestboot/query"
)

// Runtime is the orchestrator surface the facade handlers need.
type Runtime interface {
	guestcommand.Starter
	guestquery.TransportProbeReader
	guestquery.IsolationPolicyReader
}

type Commands struct {
	StartBootstrap       *guestcommand.StartBootstrapCommand
	CheckIsolationPolicy *guestcommand.CheckIsolationPolicyCommand
}

type Queries struct {
	ProbeTransports   *guestquery.ProbeTransportsQuery
	IsolationManifest *guestquery.IsolationManifestQuery
	MatchIsolation    *guestquery.MatchIsolationQuery
}

type Facade struct {
	runtime  Runtime
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	policyLoader guestcommand.PolicyLoader
}

// WithPolicyLoader replaces the file loader used by the policy check command.
func WithPolicyLoader(loader guestcommand.PolicyLoader) FacadeOption {
	return func(options *facadeOptions) {
		options.policyLoader = loader
	}
}

func NewFacade(runtime Runtime, opts ...FacadeOption) (*Facade, error) {
	if runtime == nil {
		return nil, fmt.Errorf("guestboot: bootstrap runtime is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	facade := &Facade{runtime: runtime}
	facade.commands = Commands{
		StartBootstrap:       guestcommand.NewStartBootstrapCommand(runtime),
		CheckIsolationPolicy: guestcommand.NewCheckIsolationPolicyCommand(cfg.policyLoader),
	}
	facade.queries = Queries{
		ProbeTransports:   guestquery.NewProbeTransportsQuery(runtime),
		IsolationManifest: guestquery.NewIsolationManifestQuery(runtime),
		MatchIsolation:    guestquery.NewMatchIsolationQuery(runtime),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Runtime() Runtime {
	if f == nil {
		return nil
	}
	return f.runtime
}
