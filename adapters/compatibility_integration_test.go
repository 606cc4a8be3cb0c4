package adapters_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-command"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"

	"github.com/goliatone/go-guestboot/adapters/gocommand"
	"github.com/goliatone/go-guestboot/adapters/gologger"
	guestcommand "github.com/goliatone/go-guestboot/command"
	"github.com/goliatone/go-guestboot/core"
	"github.com/goliatone/go-guestboot/isolation"
)

type compatCore struct{}

func (compatCore) Shutdown(context.Context) error { return nil }

func TestRuntimeCompatibility_GoJobGoCommandGoLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := gologger.New(gologger.Config{Level: "info", Format: gologger.FormatJSON, Writer: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	_, jobLogger := gologger.ForJob("guestboot", logger, nil)

	orchestrator, err := core.NewOrchestrator(core.DefaultConfig(),
		core.WithLoggerProvider(logger),
		core.WithPlatform(core.Platform{OS: "linux", Arch: "amd64"}),
	)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}

	queueRegistry := jobqueuecommand.NewRegistry()
	adapter := gocommand.NewRegistryAdapter(command.NewRegistry())
	if err := adapter.AddQueueResolver("queue", queueRegistry); err != nil {
		t.Fatalf("add queue resolver: %v", err)
	}
	subscriptions, err := gocommand.RegisterBootstrapHandlers(adapter, orchestrator)
	if err != nil {
		t.Fatalf("register bootstrap handlers: %v", err)
	}
	defer subscriptions.Unsubscribe()
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize command registry: %v", err)
	}
	if _, ok := queueRegistry.Get(guestcommand.TypeCheckIsolationPolicy); !ok {
		t.Fatalf("expected policy check command to be mirrored into go-job queue registry")
	}

	policy, err := isolation.DefaultPolicy()
	if err != nil {
		t.Fatalf("default policy: %v", err)
	}
	var manifest bytes.Buffer
	if err := policy.WriteManifest(&manifest); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, manifest.Bytes(), 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	runner := gocommand.NewQueueRunner(queueRegistry, jobLogger)
	if err := runner.Run(context.Background(), guestcommand.CheckIsolationPolicyMessage{
		Path:     path,
		Bindings: core.DefaultCandidates(),
	}); err != nil {
		t.Fatalf("run queued policy check: %v", err)
	}

	err = gocommand.Dispatch(context.Background(), guestcommand.StartBootstrapMessage{
		Factory: func(context.Context, core.SelectedTransport) (core.RunningCore, error) {
			return compatCore{}, nil
		},
	})
	if err != nil {
		t.Fatalf("dispatch start: %v", err)
	}

	var selection map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.Contains(line, "bootstrap transport selected") {
			if err := json.Unmarshal([]byte(line), &selection); err != nil {
				t.Fatalf("decode selection record %q: %v", line, err)
			}
		}
	}
	if selection == nil || selection["logger"] != "guestboot" || selection["transport"] != core.TransportPortable {
		t.Fatalf("expected selection record through glog, got %q", buf.String())
	}
}
