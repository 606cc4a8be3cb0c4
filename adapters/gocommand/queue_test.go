package gocommand

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gocmd "github.com/goliatone/go-command"
	job "github.com/goliatone/go-job"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"

	guestcommand "github.com/goliatone/go-guestboot/command"
	"github.com/goliatone/go-guestboot/core"
	"github.com/goliatone/go-guestboot/isolation"
)

func writeDefaultPolicy(t *testing.T) string {
	t.Helper()
	policy, err := isolation.DefaultPolicy()
	if err != nil {
		t.Fatalf("default policy: %v", err)
	}
	var buf bytes.Buffer
	if err := policy.WriteManifest(&buf); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	return path
}

func newQueuedBootstrap(t *testing.T, logger job.Logger) *QueueRunner {
	t.Helper()
	orchestrator, err := core.NewOrchestrator(core.DefaultConfig(),
		core.WithPlatform(core.Platform{OS: "linux", Arch: "amd64"}),
	)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	queueRegistry := jobqueuecommand.NewRegistry()
	adapter := NewRegistryAdapter(nil)
	if err := adapter.AddQueueResolver("queue", queueRegistry); err != nil {
		t.Fatalf("add queue resolver: %v", err)
	}
	subscriptions, err := RegisterBootstrapHandlers(adapter, orchestrator)
	if err != nil {
		t.Fatalf("register bootstrap handlers: %v", err)
	}
	t.Cleanup(subscriptions.Unsubscribe)
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize with queries and a queue resolver: %v", err)
	}
	if _, ok := queueRegistry.Get(guestcommand.TypeCheckIsolationPolicy); !ok {
		t.Fatalf("expected policy check to be queued")
	}
	return NewQueueRunner(queueRegistry, logger)
}

func TestQueueRunner_RunsCheckThroughQueueEncoding(t *testing.T) {
	runner := newQueuedBootstrap(t, nil)
	path := writeDefaultPolicy(t)

	collector := gocmd.NewResult[isolation.Document]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	err := runner.Run(ctx, guestcommand.CheckIsolationPolicyMessage{
		Path:     path,
		Bindings: core.DefaultCandidates(),
	})
	if err != nil {
		t.Fatalf("run queued check: %v", err)
	}
	doc, ok := collector.Load()
	if !ok || len(doc.Relocations) == 0 {
		t.Fatalf("expected manifest stored through the queued task, got %+v", doc)
	}
}

func TestQueueRunner_BindingsSurviveEncoding(t *testing.T) {
	var logs bytes.Buffer
	logger := job.NewStdLoggerProvider(
		job.WithStdLoggerWriter(&logs),
		job.WithStdLoggerMinLevel(job.LevelWarn),
	).GetLogger("guestboot")
	runner := newQueuedBootstrap(t, logger)

	err := runner.Run(context.Background(), guestcommand.CheckIsolationPolicyMessage{
		Path: writeDefaultPolicy(t),
		Bindings: []core.TransportCandidate{{
			ID:                    "yaml",
			Platforms:             []core.Platform{{OS: "linux", Arch: "amd64"}},
			RequiresNativeLibrary: true,
			Rank:                  1,
			BindingPackage:        "org.yaml.snakeyaml",
		}},
	})
	if !errors.Is(err, isolation.ErrNativeBindingRelocated) {
		t.Fatalf("expected relocated binding to be reported, got %v", err)
	}
	if !strings.Contains(logs.String(), "queued command failed") ||
		!strings.Contains(logs.String(), "command="+guestcommand.TypeCheckIsolationPolicy) {
		t.Fatalf("expected failure logged through go-job logger, got %q", logs.String())
	}
}

func TestQueueRunner_RejectsUnqueuedAndInvalid(t *testing.T) {
	runner := NewQueueRunner(jobqueuecommand.NewRegistry(), nil)
	if err := runner.Run(context.Background(), guestcommand.CheckIsolationPolicyMessage{Path: "x.yaml"}); err == nil ||
		!strings.Contains(err.Error(), "is not queued") {
		t.Fatalf("expected unqueued command to fail, got %v", err)
	}
	if err := runner.Run(context.Background(), guestcommand.CheckIsolationPolicyMessage{}); err == nil {
		t.Fatalf("expected invalid message to fail")
	}
	if err := (*QueueRunner)(nil).Run(context.Background(), okMessage{}); err == nil {
		t.Fatalf("expected nil runner to fail")
	}
}
