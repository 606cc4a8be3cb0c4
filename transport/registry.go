package transport

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-guestboot/core"
)

// ProviderFactory builds a provider from loosely typed settings.
type ProviderFactory func(config map[string]any) (core.NativeTransportProvider, error)

type Registry struct {
	mu        sync.RWMutex
	providers map[string]core.NativeTransportProvider
	factories map[string]ProviderFactory
}

func NewRegistry() *Registry {
	return &Registry{
		providers: map[string]core.NativeTransportProvider{},
		factories: map[string]ProviderFactory{},
	}
}

// NewDefaultRegistry registers every built-in provider and the portable
// fallback.
func NewDefaultRegistry() *Registry {
	registry := NewRegistry()
	_ = registry.Register(NewEpollProvider())
	_ = registry.Register(NewKqueueProvider())
	_ = registry.Register(NewIOUringProvider(IOUringOptions{}))
	_ = registry.Register(core.PortableProvider{})
	_ = registry.RegisterFactory(core.TransportIOUring, ioUringFactory)
	return registry
}

// NewConfiguredRegistry is NewDefaultRegistry with the io_uring provider
// rebuilt from cfg.Transport.IOUring when it is set.
func NewConfiguredRegistry(cfg core.Config) (*Registry, error) {
	registry := NewDefaultRegistry()
	settings := cfg.Transport.IOUring
	if settings.IsZero() {
		return registry, nil
	}
	config := map[string]any{"min_kernel": settings.MinKernel}
	if settings.Entries != 0 {
		config["entries"] = settings.Entries
	}
	provider, err := registry.Build(core.TransportIOUring, config)
	if err != nil {
		return nil, err
	}
	if err := registry.Replace(provider); err != nil {
		return nil, err
	}
	return registry, nil
}

func (r *Registry) Register(provider core.NativeTransportProvider) error {
	if r == nil {
		return fmt.Errorf("transport: registry is nil")
	}
	if provider == nil {
		return fmt.Errorf("transport: provider is nil")
	}
	id := normalizeID(provider.ID())
	if id == "" {
		return fmt.Errorf("transport: provider id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[id]; exists {
		return fmt.Errorf("transport: provider %q already registered", id)
	}
	r.providers[id] = provider
	return nil
}

// Replace swaps the provider registered under the same id.
func (r *Registry) Replace(provider core.NativeTransportProvider) error {
	if r == nil {
		return fmt.Errorf("transport: registry is nil")
	}
	if provider == nil {
		return fmt.Errorf("transport: provider is nil")
	}
	id := normalizeID(provider.ID())
	if id == "" {
		return fmt.Errorf("transport: provider id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[id] = provider
	return nil
}

func (r *Registry) RegisterFactory(id string, factory ProviderFactory) error {
	if r == nil {
		return fmt.Errorf("transport: registry is nil")
	}
	id = normalizeID(id)
	if id == "" {
		return fmt.Errorf("transport: provider id is required")
	}
	if factory == nil {
		return fmt.Errorf("transport: provider factory is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[id]; exists {
		return fmt.Errorf("transport: provider factory %q already registered", id)
	}
	r.factories[id] = factory
	return nil
}

// Build returns a provider configured from config when a factory exists for
// id, and the registered provider otherwise.
func (r *Registry) Build(id string, config map[string]any) (core.NativeTransportProvider, error) {
	if r == nil {
		return nil, fmt.Errorf("transport: registry is nil")
	}
	id = normalizeID(id)
	if id == "" {
		return nil, fmt.Errorf("transport: provider id is required")
	}

	r.mu.RLock()
	provider, ok := r.providers[id]
	factory := r.factories[id]
	r.mu.RUnlock()
	if factory == nil {
		if ok {
			return provider, nil
		}
		return nil, fmt.Errorf("transport: provider %q not registered", id)
	}
	built, err := factory(cloneMap(config))
	if err != nil {
		return nil, err
	}
	if built == nil {
		return nil, fmt.Errorf("transport: factory for %q returned nil provider", id)
	}
	return built, nil
}

func (r *Registry) Get(id string) (core.NativeTransportProvider, bool) {
	if r == nil {
		return nil, false
	}
	id = normalizeID(id)
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[id]
	return provider, ok
}

func (r *Registry) List() []core.NativeTransportProvider {
	if r == nil {
		return []core.NativeTransportProvider{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	result := make([]core.NativeTransportProvider, 0, len(ids))
	for _, id := range ids {
		result = append(result, r.providers[id])
	}
	return result
}

func normalizeID(id string) string {
	return strings.TrimSpace(strings.ToLower(id))
}

func ioUringFactory(config map[string]any) (core.NativeTransportProvider, error) {
	options := IOUringOptions{}
	if raw, ok := config["entries"]; ok && raw != nil {
		entries, err := ringEntries(raw)
		if err != nil {
			return nil, err
		}
		options.Entries = entries
	}
	if raw, ok := config["min_kernel"].(string); ok && strings.TrimSpace(raw) != "" {
		version, err := ParseKernelVersion(raw)
		if err != nil {
			return nil, err
		}
		options.MinKernel = version
	}
	return NewIOUringProvider(options), nil
}

// ringEntries accepts a submission queue depth in 1..MaxUint32.
func ringEntries(raw any) (uint32, error) {
	var entries float64
	switch value := raw.(type) {
	case int:
		entries = float64(value)
	case int64:
		entries = float64(value)
	case uint32:
		entries = float64(value)
	case float64:
		if value != math.Trunc(value) {
			return 0, fmt.Errorf("transport: io_uring entries must be a whole number, got %v", value)
		}
		entries = value
	default:
		return 0, fmt.Errorf("transport: io_uring entries has unsupported type %T", raw)
	}
	if entries < 1 || entries > math.MaxUint32 {
		return 0, fmt.Errorf("transport: io_uring entries must be between 1 and %d, got %v", uint32(math.MaxUint32), raw)
	}
	return uint32(entries), nil
}

func cloneMap(input map[string]any) map[string]any {
	if len(input) == 0 {
		return map[string]any{}
	}
	output := make(map[string]any, len(input))
	for key, value := range input {
		output[key] = value
	}
	return output
}
