package core

import (
	"fmt"
	"sort"
)

// Catalog is the immutable, ordered set of transport candidates. Position
// encodes preference: probing and selection walk it front to back.
type Catalog struct {
	candidates []TransportCandidate
}

// NewCatalog keeps the given order. It rejects empty or duplicate ids, more
// than one fallback, a fallback that is not last, and a fallback that needs a
// native library. A catalog without a fallback is accepted here and reported
// by Validate.
func NewCatalog(candidates ...TransportCandidate) (*Catalog, error) {
	seen := make(map[string]struct{}, len(candidates))
	ordered := make([]TransportCandidate, 0, len(candidates))
	fallbacks := 0
	for idx, candidate := range candidates {
		candidate = candidate.clone()
		candidate.ID = normalizeID(candidate.ID)
		if candidate.ID == "" {
			return nil, fmt.Errorf("%w: candidate %d has no id", ErrCatalogInvalid, idx)
		}
		if _, exists := seen[candidate.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate candidate %q", ErrCatalogInvalid, candidate.ID)
		}
		seen[candidate.ID] = struct{}{}
		if candidate.Fallback {
			fallbacks++
			if fallbacks > 1 {
				return nil, fmt.Errorf("%w: more than one fallback candidate", ErrCatalogInvalid)
			}
			if idx != len(candidates)-1 {
				return nil, fmt.Errorf("%w: fallback %q must be the last candidate", ErrCatalogInvalid, candidate.ID)
			}
			if candidate.RequiresNativeLibrary {
				return nil, fmt.Errorf("%w: fallback %q must not require a native library", ErrCatalogInvalid, candidate.ID)
			}
		}
		ordered = append(ordered, candidate)
	}
	return &Catalog{candidates: ordered}, nil
}

// ListCandidates returns the candidates in preference order.
func (c *Catalog) ListCandidates() []TransportCandidate {
	if c == nil {
		return nil
	}
	out := make([]TransportCandidate, 0, len(c.candidates))
	for _, candidate := range c.candidates {
		out = append(out, candidate.clone())
	}
	return out
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.candidates)
}

func (c *Catalog) Fallback() (TransportCandidate, bool) {
	if c == nil || len(c.candidates) == 0 {
		return TransportCandidate{}, false
	}
	last := c.candidates[len(c.candidates)-1]
	if !last.Fallback {
		return TransportCandidate{}, false
	}
	return last.clone(), true
}

// Validate fails when selection could come up empty.
func (c *Catalog) Validate() error {
	if c.Len() == 0 {
		return fmt.Errorf("%w: catalog is empty", ErrNoUsableTransport)
	}
	if _, ok := c.Fallback(); !ok {
		return fmt.Errorf("%w: catalog has no portable fallback", ErrNoUsableTransport)
	}
	return nil
}

func DefaultCandidates() []TransportCandidate {
	return []TransportCandidate{
		{
			ID:   TransportEpoll,
			Name: "Linux epoll",
			Platforms: []Platform{
				{OS: "linux", Arch: "amd64"},
				{OS: "linux", Arch: "arm64"},
				{OS: "linux", Arch: "riscv64"},
			},
			RequiresNativeLibrary: true,
			Rank:                  100,
			BindingPackage:        "io.netty.channel.epoll",
		},
		{
			ID:   TransportKqueue,
			Name: "BSD kqueue",
			Platforms: []Platform{
				{OS: "darwin", Arch: "amd64"},
				{OS: "darwin", Arch: "arm64"},
				{OS: "freebsd", Arch: "amd64"},
				{OS: "freebsd", Arch: "arm64"},
			},
			RequiresNativeLibrary: true,
			Rank:                  90,
			BindingPackage:        "io.netty.channel.kqueue",
		},
		{
			ID:   TransportIOUring,
			Name: "Linux io_uring",
			Platforms: []Platform{
				{OS: "linux", Arch: "amd64"},
				{OS: "linux", Arch: "arm64"},
			},
			RequiresNativeLibrary: true,
			Rank:                  80,
			BindingPackage:        "io.netty.incubator.channel.uring",
		},
		{
			ID:        TransportPortable,
			Name:      "Portable (Go netpoller)",
			Platforms: []Platform{AnyPlatform()},
			Rank:      0,
			Fallback:  true,
		},
	}
}

// BuildCatalog orders candidates by configured priority, then by descending
// rank, with the fallback last. Disabled candidates are dropped.
func BuildCatalog(candidates []TransportCandidate, cfg TransportConfig) (*Catalog, error) {
	known := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		known[normalizeID(candidate.ID)] = struct{}{}
	}
	disabled := make(map[string]struct{}, len(cfg.Disabled))
	for _, id := range cfg.Disabled {
		disabled[normalizeID(id)] = struct{}{}
	}

	natives := make([]TransportCandidate, 0, len(candidates))
	var fallbacks []TransportCandidate
	for _, candidate := range candidates {
		id := normalizeID(candidate.ID)
		if candidate.Fallback {
			fallbacks = append(fallbacks, candidate)
			continue
		}
		if _, off := disabled[id]; off {
			continue
		}
		natives = append(natives, candidate)
	}
	sort.SliceStable(natives, func(i, j int) bool {
		return natives[i].Rank > natives[j].Rank
	})

	ordered := make([]TransportCandidate, 0, len(candidates))
	placed := map[string]struct{}{}
	for _, id := range cfg.Priority {
		id = normalizeID(id)
		if _, ok := known[id]; !ok {
			return nil, fmt.Errorf("%w: transport.priority references unknown transport %q", ErrCatalogInvalid, id)
		}
		for _, candidate := range natives {
			if normalizeID(candidate.ID) == id {
				ordered = append(ordered, candidate)
				placed[id] = struct{}{}
				break
			}
		}
	}
	for _, candidate := range natives {
		if _, done := placed[normalizeID(candidate.ID)]; done {
			continue
		}
		ordered = append(ordered, candidate)
	}
	ordered = append(ordered, fallbacks...)
	return NewCatalog(ordered...)
}
