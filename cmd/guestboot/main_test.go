package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-guestboot/core"
	"github.com/goliatone/go-guestboot/isolation"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestProbe_PortableOnForeignPlatform(t *testing.T) {
	out, _, err := execute(t, "probe", "--platform", "plan9/amd64", "-o", "json")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	var report core.BootstrapReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report %q: %v", out, err)
	}
	if report.Selected != core.TransportPortable {
		t.Fatalf("expected portable selection, got %q", report.Selected)
	}
	if report.Platform.OS != "plan9" {
		t.Fatalf("expected overridden platform, got %s", report.Platform)
	}
	for _, result := range report.Results {
		if result.Candidate.ID != core.TransportPortable && result.Available {
			t.Fatalf("expected native candidate %q to be unavailable", result.Candidate.ID)
		}
	}
}

func TestProbe_TextTable(t *testing.T) {
	out, _, err := execute(t, "probe", "--platform", "plan9/amd64", "--all")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	for _, want := range []string{"Platform:  plan9/amd64", "Selected:  none", "TRANSPORT", core.TransportEpoll, core.TransportPortable} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestProbe_IOUringListedUnlessDisabled(t *testing.T) {
	cases := []struct {
		extra []string
		want  string
	}{
		{want: "epoll,kqueue,io_uring,portable"},
		{extra: []string{"--disable", "io_uring"}, want: "epoll,kqueue,portable"},
	}
	for _, tc := range cases {
		args := append([]string{"probe", "--platform", "plan9/amd64", "--all", "-o", "json"}, tc.extra...)
		out, _, err := execute(t, args...)
		if err != nil {
			t.Fatalf("probe %v: %v", tc.extra, err)
		}
		var report core.BootstrapReport
		if err := json.Unmarshal([]byte(out), &report); err != nil {
			t.Fatalf("decode report %q: %v", out, err)
		}
		if got := strings.Join(report.ProbedIDs(), ","); got != tc.want {
			t.Fatalf("probe %v: expected %s, got %s", tc.extra, tc.want, got)
		}
	}
}

func TestProbe_RejectsBadPlatformAndOutput(t *testing.T) {
	if _, _, err := execute(t, "probe", "--platform", "plan9"); err == nil {
		t.Fatalf("expected malformed platform to fail")
	}
	if _, _, err := execute(t, "probe", "-o", "xml"); err == nil {
		t.Fatalf("expected unknown output format to fail")
	}
}

func TestPolicyExport_RebasesManifest(t *testing.T) {
	out, _, err := execute(t, "policy", "export", "--destination-root", "com.example.libs", "-o", "json")
	if err != nil {
		t.Fatalf("policy export: %v", err)
	}
	var doc isolation.Document
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if doc.DestinationRoot != "com.example.libs" {
		t.Fatalf("expected rebased root, got %q", doc.DestinationRoot)
	}

	yamlOut, _, err := execute(t, "policy", "export")
	if err != nil {
		t.Fatalf("policy export yaml: %v", err)
	}
	if _, err := isolation.Load(strings.NewReader(yamlOut)); err != nil {
		t.Fatalf("expected exported yaml to load back: %v", err)
	}
}

func TestPolicyCheck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	policy, err := isolation.DefaultPolicy()
	if err != nil {
		t.Fatalf("default policy: %v", err)
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := policy.WriteManifest(file); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	out, _, err := execute(t, "policy", "check", path)
	if err != nil {
		t.Fatalf("policy check: %v", err)
	}
	if !strings.Contains(out, "ok (7 relocations, 12 exclusions") {
		t.Fatalf("unexpected check output: %s", out)
	}

	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("destination_root: shaded\nrelocations:\n  - source: \"\"\n"), 0o644); err != nil {
		t.Fatalf("write broken policy: %v", err)
	}
	if _, _, err := execute(t, "policy", "check", broken); err == nil {
		t.Fatalf("expected invalid policy to fail")
	}
}

func TestPolicyMatch(t *testing.T) {
	out, _, err := execute(t, "policy", "match", "net.kyori.adventure.text")
	if err != nil {
		t.Fatalf("policy match: %v", err)
	}
	if !strings.Contains(out, "relocated") || !strings.Contains(out, ".shaded.net.kyori.adventure.text") {
		t.Fatalf("unexpected match output: %s", out)
	}

	out, _, err = execute(t, "policy", "match", "io.netty:netty-buffer:4.1.100.Final")
	if err != nil {
		t.Fatalf("policy match coordinate: %v", err)
	}
	if !strings.Contains(out, "excluded") || !strings.Contains(out, "io.netty:netty-buffer") {
		t.Fatalf("unexpected coordinate match output: %s", out)
	}
}

func TestConfigFileFeedsOrchestrator(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guestboot.yaml")
	config := "isolation:\n  destination_root: org.example.shaded\n"
	if err := os.WriteFile(path, []byte(config), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	out, _, err := execute(t, "--config", path, "policy", "match", "net.kyori.adventure")
	if err != nil {
		t.Fatalf("policy match: %v", err)
	}
	if !strings.Contains(out, "org.example.shaded.net.kyori.adventure") {
		t.Fatalf("expected configured destination root, got %s", out)
	}
}

func TestLogging_JSONRecordsOnStderr(t *testing.T) {
	out, stderr, err := execute(t, "--log-level", "info", "--log-format", "json",
		"probe", "--platform", "plan9/amd64", "-o", "json")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if strings.Contains(out, "bootstrap transport selected") {
		t.Fatalf("expected log records kept off stdout, got %s", out)
	}

	var record map[string]any
	for _, line := range strings.Split(strings.TrimSpace(stderr), "\n") {
		if !strings.Contains(line, "bootstrap transport selected") {
			continue
		}
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("decode log record %q: %v", line, err)
		}
		if n := strings.Count(line, `"transport":`); n != 1 {
			t.Fatalf("expected transport key once, got %d in %s", n, line)
		}
	}
	if record == nil {
		t.Fatalf("expected selection record on stderr, got %q", stderr)
	}
	if record["level"] != "info" || record["logger"] != "guestboot" || record["transport"] != core.TransportPortable {
		t.Fatalf("unexpected record %#v", record)
	}
}

func TestLogging_RejectsUnknownFormatAndLevel(t *testing.T) {
	if _, _, err := execute(t, "--log-format", "xml", "probe"); err == nil {
		t.Fatalf("expected unknown log format to fail")
	}
	if _, _, err := execute(t, "--log-level", "verbose", "probe"); err == nil {
		t.Fatalf("expected unknown log level to fail")
	}
}

func TestCheckPolicy_MissingManifestFails(t *testing.T) {
	silent := func(context.Context, gocmd.Message) error { return nil }
	if _, err := checkPolicy(context.Background(), silent, "policy.yaml"); err == nil ||
		!strings.Contains(err.Error(), "produced no manifest") {
		t.Fatalf("expected missing manifest to fail, got %v", err)
	}

	failing := func(context.Context, gocmd.Message) error { return errors.New("boom") }
	if _, err := checkPolicy(context.Background(), failing, "policy.yaml"); err == nil || err.Error() != "boom" {
		t.Fatalf("expected run error to pass through, got %v", err)
	}
}
