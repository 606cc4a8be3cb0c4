package core

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/goliatone/go-guestboot/isolation"
)

// Orchestrator sequences catalog validation, isolation checks, probing and
// selection, then hands the selected transport to the external core. Start
// succeeds at most once per orchestrator.
type Orchestrator struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorFactory    ErrorFactory
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	registry        Registry
	catalog         *Catalog
	policy          *isolation.Policy
	platform        Platform
	prober          TransportProber
	hooks           *BootstrapHookCoordinator
	runID           RunIDGenerator
	now             func() time.Time
	started         atomic.Bool
}

type OrchestratorDependencies struct {
	Logger          Logger
	LoggerProvider  LoggerProvider
	MetricsRecorder MetricsRecorder
	ErrorFactory    ErrorFactory
	ErrorMapper     ErrorMapper
	ConfigProvider  ConfigProvider
	OptionsResolver OptionsResolver
	Registry        Registry
	Catalog         *Catalog
	IsolationPolicy *isolation.Policy
	Platform        Platform
	Prober          TransportProber
	Hooks           *BootstrapHookCoordinator
}

func NewOrchestrator(cfg Config, opts ...Option) (*Orchestrator, error) {
	builder := defaultOrchestratorBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("guestboot", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("guestboot"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.runID == nil {
		builder.runID = uuid.NewString
	}
	if builder.now == nil {
		builder.now = time.Now
	}
	if builder.hooks == nil {
		builder.hooks = NewBootstrapHookCoordinator()
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.registry == nil && builder.registryBuilder != nil {
		registry, registryErr := builder.registryBuilder(finalConfig)
		if registryErr != nil {
			return nil, StageError(StageConfig, registryErr)
		}
		builder.registry = registry
	}
	if builder.registry == nil {
		registry := NewProviderRegistry()
		if err := registry.Register(PortableProvider{}); err != nil {
			return nil, mapBuildError(builder.errorMapper, err)
		}
		builder.registry = registry
	}

	if builder.catalog == nil {
		candidates := builder.candidates
		if len(candidates) == 0 {
			candidates = DefaultCandidates()
		}
		catalog, catalogErr := BuildCatalog(candidates, finalConfig.Transport)
		if catalogErr != nil {
			return nil, StageError(StageCatalog, catalogErr)
		}
		builder.catalog = catalog
	}

	if builder.policy == nil {
		policy, policyErr := loadIsolationPolicy(finalConfig.Isolation)
		if policyErr != nil {
			return nil, StageError(StageIsolation, fmt.Errorf("%w: %w", ErrIsolationPolicyInvalid, policyErr))
		}
		builder.policy = policy
	}

	platform := Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
	if builder.platform != nil {
		platform = *builder.platform
	}
	if builder.prober == nil {
		builder.prober = NewProber(platform, builder.registry, logger)
	}

	return &Orchestrator{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorFactory:    builder.errorFactory,
		errorMapper:     builder.errorMapper,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		registry:        builder.registry,
		catalog:         builder.catalog,
		policy:          builder.policy,
		platform:        platform,
		prober:          builder.prober,
		hooks:           builder.hooks,
		runID:           builder.runID,
		now:             builder.now,
	}, nil
}

func loadIsolationPolicy(cfg IsolationConfig) (*isolation.Policy, error) {
	var (
		policy *isolation.Policy
		err    error
	)
	if path := strings.TrimSpace(cfg.PolicyFile); path != "" {
		policy, err = isolation.LoadFile(path)
	} else {
		policy, err = isolation.DefaultPolicy()
	}
	if err != nil {
		return nil, err
	}
	if root := strings.TrimSpace(cfg.DestinationRoot); root != "" {
		return policy.Rebase(root)
	}
	return policy, nil
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (o *Orchestrator) Config() Config {
	if o == nil {
		return Config{}
	}
	return o.config
}

func (o *Orchestrator) Dependencies() OrchestratorDependencies {
	if o == nil {
		return OrchestratorDependencies{}
	}
	return OrchestratorDependencies{
		Logger:          o.logger,
		LoggerProvider:  o.loggerProvider,
		MetricsRecorder: o.metricsRecorder,
		ErrorFactory:    o.errorFactory,
		ErrorMapper:     o.errorMapper,
		ConfigProvider:  o.configProvider,
		OptionsResolver: o.optionsResolver,
		Registry:        o.registry,
		Catalog:         o.catalog,
		IsolationPolicy: o.policy,
		Platform:        o.platform,
		Prober:          o.prober,
		Hooks:           o.hooks,
	}
}

func (o *Orchestrator) Catalog() *Catalog {
	if o == nil {
		return nil
	}
	return o.catalog
}

func (o *Orchestrator) IsolationPolicy() *isolation.Policy {
	if o == nil {
		return nil
	}
	return o.policy
}

func (o *Orchestrator) Hooks() *BootstrapHookCoordinator {
	if o == nil {
		return nil
	}
	return o.hooks
}

// Bootstrap selects a transport without starting the core. It can be called
// any number of times and does not count as a start.
func (o *Orchestrator) Bootstrap(ctx context.Context) (SelectedTransport, BootstrapReport, error) {
	if o == nil {
		return SelectedTransport{}, BootstrapReport{}, StageError(StageConfig, errors.New("orchestrator is required"))
	}
	ctx = contextOrBackground(ctx)
	selected, report, err := o.selectTransport(ctx)
	report.Duration = elapsedSince(o.now, report.StartedAt)
	o.observeBootstrap(ctx, "bootstrap", report, err)
	return selected, report, err
}

// Survey probes every candidate, past the first available one, and selects
// nothing. It is a diagnostic and never counts as a start.
func (o *Orchestrator) Survey(ctx context.Context) (BootstrapReport, error) {
	if o == nil {
		return BootstrapReport{}, StageError(StageConfig, errors.New("orchestrator is required"))
	}
	ctx = contextOrBackground(ctx)
	report := BootstrapReport{
		RunID:     o.runID(),
		Platform:  o.platform,
		StartedAt: o.now(),
	}
	var err error
	if validateErr := o.catalog.Validate(); validateErr != nil {
		err = StageError(StageCatalog, validateErr)
	} else if verifyErr := o.verifyIsolation(); verifyErr != nil {
		err = StageError(StageIsolation, verifyErr)
	} else {
		var probeErr error
		report.Results, probeErr = ProbeAll(ctx, o.prober, o.catalog.ListCandidates())
		if probeErr != nil {
			err = StageError(StageProbe, probeErr)
		}
	}
	report.Duration = elapsedSince(o.now, report.StartedAt)
	o.observeBootstrap(ctx, "survey", report, err)
	return report, err
}

// Start selects a transport, runs pre-start hooks and builds the core with the
// selection injected. A core factory failure is returned as is, wrapped in the
// fatal envelope; nothing is retried.
func (o *Orchestrator) Start(ctx context.Context, factory CoreFactory) (RunningCore, error) {
	if o == nil {
		return nil, StageError(StageConfig, errors.New("orchestrator is required"))
	}
	if factory == nil {
		return nil, StageError(StageConfig, errors.New("core factory is required"))
	}
	if !o.started.CompareAndSwap(false, true) {
		return nil, StageError(StageCore, ErrAlreadyStarted)
	}
	ctx = contextOrBackground(ctx)

	selected, report, err := o.selectTransport(ctx)
	if err != nil {
		report.Duration = elapsedSince(o.now, report.StartedAt)
		o.observeBootstrap(ctx, "start", report, err)
		return nil, err
	}

	event := BootstrapEvent{RunID: report.RunID, Transport: selected, Report: report}
	if err := o.hooks.ExecutePreStart(ctx, event); err != nil {
		report.Duration = elapsedSince(o.now, report.StartedAt)
		stageErr := StageError(StageHooks, err)
		o.observeBootstrap(ctx, "start", report, stageErr)
		return nil, stageErr
	}

	running, err := factory(ctx, selected)
	if err == nil && running == nil {
		err = errors.New("core factory returned no running core")
	}
	report.Duration = elapsedSince(o.now, report.StartedAt)
	if err != nil {
		stageErr := StageError(StageCore, fmt.Errorf("%w: %w", ErrCoreInitializationFailed, err))
		o.observeBootstrap(ctx, "start", report, stageErr)
		return nil, stageErr
	}
	o.observeBootstrap(ctx, "start", report, nil)

	event.Report = report
	event.Core = running
	if hookErr := o.hooks.ExecutePostStart(ctx, event); hookErr != nil {
		o.logWarn(ctx, "post-start hooks failed", map[string]any{
			"run_id": report.RunID,
			"error":  hookErr.Error(),
		})
	}
	return running, nil
}

// Started reports whether Start has been called.
func (o *Orchestrator) Started() bool {
	return o != nil && o.started.Load()
}

func (o *Orchestrator) selectTransport(ctx context.Context) (SelectedTransport, BootstrapReport, error) {
	report := BootstrapReport{
		RunID:     o.runID(),
		Platform:  o.platform,
		StartedAt: o.now(),
	}

	if err := o.catalog.Validate(); err != nil {
		return SelectedTransport{}, report, StageError(StageCatalog, err)
	}
	if err := o.verifyIsolation(); err != nil {
		return SelectedTransport{}, report, StageError(StageIsolation, err)
	}

	candidates := o.catalog.ListCandidates()
	results, err := ProbeUntilAvailable(ctx, o.prober, candidates)
	report.Results = results
	if err != nil {
		return SelectedTransport{}, report, StageError(StageProbe, err)
	}

	selected, err := Select(candidates, results)
	if err != nil {
		return SelectedTransport{}, report, StageError(StageSelect, err)
	}
	report.Selected = selected.ID()
	report.Reason = selected.Reason()

	provider, ok := o.registry.Get(selected.ID())
	if !ok || provider == nil {
		if !selected.IsFallback() {
			return SelectedTransport{}, report, StageError(StageSelect,
				fmt.Errorf("%w: %s has no provider to bind", ErrNoUsableTransport, selected.ID()))
		}
		provider = PortableProvider{}
	}
	return selected.withProvider(provider), report, nil
}

func (o *Orchestrator) verifyIsolation() error {
	if o.policy == nil {
		return fmt.Errorf("%w: no isolation policy", ErrIsolationPolicyInvalid)
	}
	if err := o.policy.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrIsolationPolicyInvalid, err)
	}
	bindings := make([]isolation.NativeBinding, 0, o.catalog.Len())
	for _, candidate := range o.catalog.ListCandidates() {
		if !candidate.RequiresNativeLibrary || strings.TrimSpace(candidate.BindingPackage) == "" {
			continue
		}
		bindings = append(bindings, isolation.NativeBinding{
			Transport: candidate.ID,
			Package:   candidate.BindingPackage,
		})
	}
	if err := o.policy.VerifyNativeBindings(bindings...); err != nil {
		return fmt.Errorf("%w: %w", ErrIsolationPolicyInvalid, err)
	}
	return nil
}
