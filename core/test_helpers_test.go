package core

import (
	"context"
	"errors"
	"testing"
)

var testPlatform = Platform{OS: "linux", Arch: "amd64"}

// fakeProvider counts every call so tests can assert probe order, short
// circuiting and resource release.
type fakeProvider struct {
	id       string
	loadErr  error
	openErr  error
	checkErr error
	closeErr error
	panicAt  string

	loads  int
	opens  int
	checks int
	closes int
}

func (p *fakeProvider) ID() string { return p.id }

func (p *fakeProvider) Load() error {
	p.loads++
	if p.panicAt == "load" {
		panic("load exploded")
	}
	return p.loadErr
}

func (p *fakeProvider) OpenEventLoop() (EventLoopHandle, error) {
	if p.panicAt == "open" {
		panic("open exploded")
	}
	if p.openErr != nil {
		return nil, p.openErr
	}
	p.opens++
	return fakeLoop{provider: p}, nil
}

// live is the number of event loops opened and not yet closed.
func (p *fakeProvider) live() int { return p.opens - p.closes }

func (p *fakeProvider) probes() int { return p.loads }

type fakeLoop struct {
	provider *fakeProvider
}

func (l fakeLoop) Check() error {
	l.provider.checks++
	if l.provider.panicAt == "check" {
		panic("check exploded")
	}
	return l.provider.checkErr
}

func (l fakeLoop) Close() error {
	l.provider.closes++
	return l.provider.closeErr
}

func availableProvider(id string) *fakeProvider {
	return &fakeProvider{id: id}
}

func unavailableProvider(id string) *fakeProvider {
	return &fakeProvider{id: id, loadErr: errors.New("lib" + id + ".so: cannot open shared object file")}
}

func nativeCandidate(id string, rank int) TransportCandidate {
	return TransportCandidate{
		ID:                    id,
		Name:                  id,
		Platforms:             []Platform{testPlatform},
		RequiresNativeLibrary: true,
		Rank:                  rank,
	}
}

func portableCandidate() TransportCandidate {
	return TransportCandidate{
		ID:        TransportPortable,
		Name:      "portable",
		Platforms: []Platform{AnyPlatform()},
		Fallback:  true,
	}
}

func newTestRegistry(t *testing.T, providers ...NativeTransportProvider) *ProviderRegistry {
	t.Helper()
	registry := NewProviderRegistry()
	for _, provider := range providers {
		if err := registry.Register(provider); err != nil {
			t.Fatalf("register provider: %v", err)
		}
	}
	return registry
}

func newTestCatalog(t *testing.T, candidates ...TransportCandidate) *Catalog {
	t.Helper()
	catalog, err := NewCatalog(candidates...)
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	return catalog
}

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}

type fakeCore struct {
	transport SelectedTransport
	shutdowns int
}

func (c *fakeCore) Shutdown(context.Context) error {
	c.shutdowns++
	return nil
}
