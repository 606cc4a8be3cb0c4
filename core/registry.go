package core

import (
	"fmt"
	"sort"
	"sync"
)

type ProviderRegistry struct {
	mu        sync.RWMutex
	providers map[string]NativeTransportProvider
}

func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{providers: make(map[string]NativeTransportProvider)}
}

func (r *ProviderRegistry) Register(provider NativeTransportProvider) error {
	if provider == nil {
		return fmt.Errorf("core: transport provider is nil")
	}
	id := normalizeID(provider.ID())
	if id == "" {
		return fmt.Errorf("core: transport provider id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[id]; exists {
		return fmt.Errorf("core: transport provider already registered: %s", id)
	}
	r.providers[id] = provider
	return nil
}

func (r *ProviderRegistry) Get(id string) (NativeTransportProvider, bool) {
	id = normalizeID(id)
	if id == "" {
		return nil, false
	}
	r.mu.RLock()
	provider, ok := r.providers[id]
	r.mu.RUnlock()
	return provider, ok
}

func (r *ProviderRegistry) List() []NativeTransportProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.providers))
	for id := range r.providers {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	providers := make([]NativeTransportProvider, 0, len(keys))
	for _, id := range keys {
		providers = append(providers, r.providers[id])
	}
	return providers
}
