package guestboot

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-guestboot/core"
)

// ProviderPack contributes native transport providers to a registry.
type ProviderPack struct {
	Name      string
	Providers []core.NativeTransportProvider
}

// CandidatePack contributes catalog candidates, typically alongside the
// provider pack that backs them.
type CandidatePack struct {
	Name       string
	Candidates []core.TransportCandidate
}

type ExtensionHooks struct {
	mu sync.RWMutex

	providerPacks  map[string]ProviderPack
	candidatePacks map[string]CandidatePack
}

func NewExtensionHooks() *ExtensionHooks {
	return &ExtensionHooks{
		providerPacks:  map[string]ProviderPack{},
		candidatePacks: map[string]CandidatePack{},
	}
}

func (h *ExtensionHooks) RegisterProviderPack(pack ProviderPack) error {
	if h == nil {
		return fmt.Errorf("guestboot: extension hooks are nil")
	}
	name := strings.TrimSpace(pack.Name)
	if name == "" {
		return fmt.Errorf("guestboot: provider pack name is required")
	}
	if len(pack.Providers) == 0 {
		return fmt.Errorf("guestboot: provider pack %q has no providers", name)
	}

	normalized := ProviderPack{
		Name:      name,
		Providers: append([]core.NativeTransportProvider(nil), pack.Providers...),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.providerPacks[name]; exists {
		return fmt.Errorf("guestboot: provider pack %q already registered", name)
	}
	h.providerPacks[name] = normalized
	return nil
}

func (h *ExtensionHooks) RegisterCandidatePack(pack CandidatePack) error {
	if h == nil {
		return fmt.Errorf("guestboot: extension hooks are nil")
	}
	name := strings.TrimSpace(pack.Name)
	if name == "" {
		return fmt.Errorf("guestboot: candidate pack name is required")
	}
	if len(pack.Candidates) == 0 {
		return fmt.Errorf("guestboot: candidate pack %q has no candidates", name)
	}
	for _, candidate := range pack.Candidates {
		if strings.TrimSpace(candidate.ID) == "" {
			return fmt.Errorf("guestboot: candidate pack %q contains a candidate without id", name)
		}
		if candidate.Fallback {
			return fmt.Errorf("guestboot: candidate pack %q must not add a fallback", name)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.candidatePacks[name]; exists {
		return fmt.Errorf("guestboot: candidate pack %q already registered", name)
	}
	h.candidatePacks[name] = CandidatePack{
		Name:       name,
		Candidates: append([]core.TransportCandidate(nil), pack.Candidates...),
	}
	return nil
}

func (h *ExtensionHooks) ApplyProviderPacks(registry core.Registry) error {
	if h == nil {
		return nil
	}
	if registry == nil {
		return fmt.Errorf("guestboot: registry is required")
	}

	for _, pack := range h.ProviderPacks() {
		for _, provider := range pack.Providers {
			if provider == nil {
				return fmt.Errorf("guestboot: provider pack %q contains nil provider", pack.Name)
			}
			if err := registry.Register(provider); err != nil {
				return err
			}
		}
	}
	return nil
}

// ApplyCandidatePacks appends pack candidates to base in pack name order.
// Catalog ordering is applied later, so position here does not set priority.
func (h *ExtensionHooks) ApplyCandidatePacks(base []core.TransportCandidate) []core.TransportCandidate {
	out := append([]core.TransportCandidate(nil), base...)
	if h == nil {
		return out
	}
	for _, pack := range h.CandidatePacks() {
		out = append(out, pack.Candidates...)
	}
	return out
}

// Options returns orchestrator options that apply every registered pack on
// top of registry and the default candidates.
func (h *ExtensionHooks) Options(registry core.Registry) ([]core.Option, error) {
	if err := h.ApplyProviderPacks(registry); err != nil {
		return nil, err
	}
	return []core.Option{
		core.WithRegistry(registry),
		core.WithCandidates(h.ApplyCandidatePacks(core.DefaultCandidates())...),
	}, nil
}

func (h *ExtensionHooks) ProviderPacks() []ProviderPack {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]ProviderPack, 0, len(h.providerPacks))
	for _, name := range sortedKeys(h.providerPacks) {
		pack := h.providerPacks[name]
		out = append(out, ProviderPack{
			Name:      pack.Name,
			Providers: append([]core.NativeTransportProvider(nil), pack.Providers...),
		})
	}
	return out
}

func (h *ExtensionHooks) CandidatePacks() []CandidatePack {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]CandidatePack, 0, len(h.candidatePacks))
	for _, name := range sortedKeys(h.candidatePacks) {
		pack := h.candidatePacks[name]
		out = append(out, CandidatePack{
			Name:       pack.Name,
			Candidates: append([]core.TransportCandidate(nil), pack.Candidates...),
		})
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
