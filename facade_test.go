package guestboot

import (
	"context"
	"errors"
	"testing"

	gocmd "github.com/goliatone/go-command"

	guestcommand "github.com/goliatone/go-guestboot/command"
	"github.com/goliatone/go-guestboot/core"
	"github.com/goliatone/go-guestboot/isolation"
	guestquery "github.com/goliatone/go-guestboot/query"
)

type facadeCore struct{}

func (facadeCore) Shutdown(context.Context) error { return nil }

func newFacadeOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	orchestrator, err := NewOrchestrator(DefaultConfig(),
		WithPlatform(core.Platform{OS: "linux", Arch: "amd64"}),
		WithRunIDGenerator(func() string { return "run_facade" }),
	)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	return orchestrator
}

func TestNewFacade_RequiresRuntime(t *testing.T) {
	if _, err := NewFacade(nil); err == nil {
		t.Fatalf("expected nil runtime to fail")
	}
	var facade *Facade
	if facade.Runtime() != nil || facade.Commands().StartBootstrap != nil || facade.Queries().ProbeTransports != nil {
		t.Fatalf("expected nil facade accessors to be empty")
	}
}

func TestFacade_WiresCommandsAndQueries(t *testing.T) {
	orchestrator := newFacadeOrchestrator(t)
	facade, err := NewFacade(orchestrator)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	commands := facade.Commands()
	queries := facade.Queries()
	if commands.StartBootstrap == nil || commands.CheckIsolationPolicy == nil {
		t.Fatalf("expected all commands to be wired")
	}
	if queries.ProbeTransports == nil || queries.IsolationManifest == nil || queries.MatchIsolation == nil {
		t.Fatalf("expected all queries to be wired")
	}

	report, err := queries.ProbeTransports.Query(context.Background(), guestquery.ProbeTransportsMessage{})
	if err != nil {
		t.Fatalf("probe query: %v", err)
	}
	if report.Selected != core.TransportPortable {
		t.Fatalf("expected portable selection without native providers, got %q", report.Selected)
	}
	if orchestrator.Started() {
		t.Fatalf("probe query must not start the orchestrator")
	}

	collector := gocmd.NewResult[guestcommand.StartBootstrapResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	err = commands.StartBootstrap.Execute(ctx, guestcommand.StartBootstrapMessage{
		Factory: func(context.Context, core.SelectedTransport) (core.RunningCore, error) {
			return facadeCore{}, nil
		},
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if result, ok := collector.Load(); !ok || result.Core == nil {
		t.Fatalf("expected running core in result collector")
	}
}

func TestFacade_WithPolicyLoader(t *testing.T) {
	sentinel := errors.New("loader called")
	facade, err := NewFacade(newFacadeOrchestrator(t), WithPolicyLoader(func(string) (*isolation.Policy, error) {
		return nil, sentinel
	}))
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	err = facade.Commands().CheckIsolationPolicy.Execute(context.Background(), guestcommand.CheckIsolationPolicyMessage{
		Path: "policy.yaml",
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected custom loader error, got %v", err)
	}
}
