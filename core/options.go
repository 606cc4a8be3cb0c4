package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"

	"github.com/goliatone/go-guestboot/isolation"
)

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

// RunIDGenerator returns the identifier attached to one bootstrap run.
type RunIDGenerator func() string

type orchestratorBuilder struct {
	runtimeConfig   Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorFactory    ErrorFactory
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	registry        Registry
	registryBuilder RegistryBuilder
	candidates      []TransportCandidate
	catalog         *Catalog
	policy          *isolation.Policy
	platform        *Platform
	prober          TransportProber
	hooks           *BootstrapHookCoordinator
	runID           RunIDGenerator
	now             func() time.Time
}

type Option func(*orchestratorBuilder)

func WithLogger(logger Logger) Option {
	return func(b *orchestratorBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *orchestratorBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *orchestratorBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorFactory(factory ErrorFactory) Option {
	return func(b *orchestratorBuilder) {
		b.errorFactory = factory
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *orchestratorBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *orchestratorBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *orchestratorBuilder) {
		b.optionsResolver = resolver
	}
}

// WithRegistry sets the provider registry consulted by the prober.
func WithRegistry(registry Registry) Option {
	return func(b *orchestratorBuilder) {
		b.registry = registry
	}
}

// RegistryBuilder builds the provider registry from the resolved config.
type RegistryBuilder func(cfg Config) (Registry, error)

// WithRegistryBuilder defers registry construction until config layering is
// done. WithRegistry takes precedence.
func WithRegistryBuilder(build RegistryBuilder) Option {
	return func(b *orchestratorBuilder) {
		b.registryBuilder = build
	}
}

// WithCandidates replaces the default candidate set. Configured transport
// policy is still applied on top.
func WithCandidates(candidates ...TransportCandidate) Option {
	return func(b *orchestratorBuilder) {
		b.candidates = append([]TransportCandidate(nil), candidates...)
	}
}

// WithCatalog uses a prebuilt catalog verbatim, bypassing configured policy.
func WithCatalog(catalog *Catalog) Option {
	return func(b *orchestratorBuilder) {
		b.catalog = catalog
	}
}

func WithIsolationPolicy(policy *isolation.Policy) Option {
	return func(b *orchestratorBuilder) {
		b.policy = policy
	}
}

func WithPlatform(platform Platform) Option {
	return func(b *orchestratorBuilder) {
		b.platform = &platform
	}
}

// WithProber replaces the registry-backed prober.
func WithProber(prober TransportProber) Option {
	return func(b *orchestratorBuilder) {
		b.prober = prober
	}
}

func WithHooks(hooks *BootstrapHookCoordinator) Option {
	return func(b *orchestratorBuilder) {
		b.hooks = hooks
	}
}

func WithRunIDGenerator(generator RunIDGenerator) Option {
	return func(b *orchestratorBuilder) {
		b.runID = generator
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *orchestratorBuilder) {
		b.now = now
	}
}

func defaultOrchestratorBuilder(runtime Config) orchestratorBuilder {
	loggerProvider, logger := glog.Resolve("guestboot", nil, nil)
	return orchestratorBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		errorFactory:    goerrors.New,
		errorMapper:     defaultErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
	}
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

// StaticRawConfigLoader serves a fixed raw config map.
func StaticRawConfigLoader(values map[string]any) RawConfigLoader {
	return staticRawConfigLoader{Values: values}
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ModuleName) != "" {
		layer["module_name"] = cfg.ModuleName
	}

	transport := map[string]any{}
	if includeZero || len(cfg.Transport.Priority) > 0 {
		transport["priority"] = append([]string(nil), cfg.Transport.Priority...)
	}
	if includeZero || len(cfg.Transport.Disabled) > 0 {
		transport["disabled"] = append([]string(nil), cfg.Transport.Disabled...)
	}
	if includeZero || !cfg.Transport.IOUring.IsZero() {
		transport["io_uring"] = map[string]any{
			"entries":    cfg.Transport.IOUring.Entries,
			"min_kernel": cfg.Transport.IOUring.MinKernel,
		}
	}
	if len(transport) > 0 {
		layer["transport"] = transport
	}

	isolationLayer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Isolation.PolicyFile) != "" {
		isolationLayer["policy_file"] = cfg.Isolation.PolicyFile
	}
	if includeZero || strings.TrimSpace(cfg.Isolation.DestinationRoot) != "" {
		isolationLayer["destination_root"] = cfg.Isolation.DestinationRoot
	}
	if len(isolationLayer) > 0 {
		layer["isolation"] = isolationLayer
	}
	return layer
}
