package guestboot

import (
	"github.com/goliatone/go-guestboot/core"
	"github.com/goliatone/go-guestboot/transport"
)

type Config = core.Config

type TransportConfig = core.TransportConfig

type IsolationConfig = core.IsolationConfig

type Option = core.Option

type Orchestrator = core.Orchestrator

type OrchestratorDependencies = core.OrchestratorDependencies

type SelectedTransport = core.SelectedTransport
type BootstrapReport = core.BootstrapReport
type TransportCandidate = core.TransportCandidate
type NativeTransportProvider = core.NativeTransportProvider
type CoreFactory = core.CoreFactory
type RunningCore = core.RunningCore
type BootstrapHook = core.BootstrapHook

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder
	WithErrorFactory    = core.WithErrorFactory
	WithErrorMapper     = core.WithErrorMapper
	WithConfigProvider  = core.WithConfigProvider
	WithOptionsResolver = core.WithOptionsResolver
	WithRegistry        = core.WithRegistry
	WithCandidates      = core.WithCandidates
	WithCatalog         = core.WithCatalog
	WithIsolationPolicy = core.WithIsolationPolicy
	WithPlatform        = core.WithPlatform
	WithProber          = core.WithProber
	WithHooks           = core.WithHooks
	WithRunIDGenerator  = core.WithRunIDGenerator
	WithClock           = core.WithClock
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// NewOrchestrator builds an orchestrator that only knows the portable
// fallback unless a registry is supplied.
func NewOrchestrator(cfg Config, opts ...Option) (*Orchestrator, error) {
	return core.NewOrchestrator(cfg, opts...)
}

// Setup builds an orchestrator wired to the native providers of this
// platform, tuned by the resolved transport config. Options passed by the
// caller take precedence.
func Setup(cfg Config, opts ...Option) (*Orchestrator, error) {
	all := make([]Option, 0, len(opts)+1)
	all = append(all, core.WithRegistryBuilder(func(resolved core.Config) (core.Registry, error) {
		return transport.NewConfiguredRegistry(resolved)
	}))
	all = append(all, opts...)
	return core.NewOrchestrator(cfg, all...)
}
