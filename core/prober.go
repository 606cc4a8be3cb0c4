package core

import (
	"context"
	"errors"
	"fmt"

	glog "github.com/goliatone/go-logger/glog"
)

// TransportProber tests one candidate. Implementations must not panic and must
// release every native resource they acquire before returning.
type TransportProber interface {
	Probe(ctx context.Context, candidate TransportCandidate) ProbeResult
}

// Prober checks candidates against the registered native providers.
type Prober struct {
	platform Platform
	registry Registry
	logger   Logger
}

func NewProber(platform Platform, registry Registry, logger Logger) *Prober {
	if registry == nil {
		registry = NewProviderRegistry()
	}
	return &Prober{
		platform: platform,
		registry: registry,
		logger:   glog.Ensure(logger),
	}
}

// Probe never fails; problems are reported through ProbeResult. A fallback
// candidate is available without touching any provider.
func (p *Prober) Probe(ctx context.Context, candidate TransportCandidate) (result ProbeResult) {
	candidate = candidate.clone()
	if candidate.Fallback {
		return availableResult(candidate, "portable fallback, no native library required")
	}
	if !candidate.AppliesTo(p.platform) {
		return rejectCandidate(candidate, "", fmt.Errorf("not applicable to %s", p.platform))
	}
	provider, ok := p.registry.Get(candidate.ID)
	if !ok || provider == nil {
		return rejectCandidate(candidate, "", errors.New("no provider registered"))
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			result = rejectCandidate(candidate, "", fmt.Errorf("probe panicked: %v", recovered))
		}
	}()

	if err := provider.Load(); err != nil {
		return rejectCandidate(candidate, "", err)
	}
	handle, err := provider.OpenEventLoop()
	if err != nil {
		return rejectCandidate(candidate, "open event loop", err)
	}
	if handle == nil {
		return rejectCandidate(candidate, "", errors.New("open event loop returned no handle"))
	}
	defer func() {
		if closeErr := handle.Close(); closeErr != nil {
			p.logger.WithContext(contextOrBackground(ctx)).Warn("probe event loop close failed",
				"transport", candidate.ID, "error", closeErr.Error())
			if result.Available {
				result = rejectCandidate(candidate, "close event loop", closeErr)
			}
		}
	}()

	if err := handle.Check(); err != nil {
		return rejectCandidate(candidate, "event loop check", err)
	}
	return availableResult(candidate, "native event loop opened and checked")
}

// rejectCandidate reports candidate unavailable. step names the probe stage
// and prefixes both the reason and the error. Provider errors that already
// carry ErrNativeLibraryUnavailable are not wrapped again.
func rejectCandidate(candidate TransportCandidate, step string, err error) ProbeResult {
	reason := probeReason(candidate.ID, err)
	if step != "" {
		reason = step + ": " + reason
		err = fmt.Errorf("%s: %w", step, err)
	}
	if !errors.Is(err, ErrNativeLibraryUnavailable) {
		err = NativeUnavailable(candidate.ID, err)
	}
	return ProbeResult{Candidate: candidate, Available: false, Reason: reason, Err: err}
}

// ProbeUntilAvailable probes candidates in order and stops at the first
// available one. Candidates after it are never probed.
func ProbeUntilAvailable(ctx context.Context, prober TransportProber, candidates []TransportCandidate) ([]ProbeResult, error) {
	return probeCandidates(ctx, prober, candidates, true)
}

// ProbeAll probes every candidate, for diagnostics.
func ProbeAll(ctx context.Context, prober TransportProber, candidates []TransportCandidate) ([]ProbeResult, error) {
	return probeCandidates(ctx, prober, candidates, false)
}

func probeCandidates(ctx context.Context, prober TransportProber, candidates []TransportCandidate, stopAtFirst bool) ([]ProbeResult, error) {
	if prober == nil {
		return nil, fmt.Errorf("core: prober is required")
	}
	ctx = contextOrBackground(ctx)
	results := make([]ProbeResult, 0, len(candidates))
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result := prober.Probe(ctx, candidate)
		results = append(results, result)
		if stopAtFirst && result.Available {
			break
		}
	}
	return results, nil
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
