package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	TransportEpoll    = "epoll"
	TransportKqueue   = "kqueue"
	TransportIOUring  = "io_uring"
	TransportPortable = "portable"
)

const platformWildcard = "*"

// Platform is an OS/architecture pair using GOOS/GOARCH names. "*" matches
// anything in either position.
type Platform struct {
	OS   string `json:"os" yaml:"os"`
	Arch string `json:"arch" yaml:"arch"`
}

func AnyPlatform() Platform {
	return Platform{OS: platformWildcard, Arch: platformWildcard}
}

func (p Platform) String() string {
	return p.OS + "/" + p.Arch
}

// Matches reports whether p, used as an applicability tag, covers target.
func (p Platform) Matches(target Platform) bool {
	return platformPartMatches(p.OS, target.OS) && platformPartMatches(p.Arch, target.Arch)
}

func platformPartMatches(pattern string, value string) bool {
	pattern = strings.TrimSpace(strings.ToLower(pattern))
	if pattern == "" || pattern == platformWildcard {
		return true
	}
	return pattern == strings.TrimSpace(strings.ToLower(value))
}

func ParsePlatform(value string) (Platform, error) {
	osName, arch, ok := strings.Cut(strings.TrimSpace(value), "/")
	if !ok || strings.TrimSpace(osName) == "" || strings.TrimSpace(arch) == "" {
		return Platform{}, fmt.Errorf("core: platform %q must be <os>/<arch>", value)
	}
	return Platform{
		OS:   strings.TrimSpace(strings.ToLower(osName)),
		Arch: strings.TrimSpace(strings.ToLower(arch)),
	}, nil
}

type TransportCandidate struct {
	ID                    string     `json:"id" yaml:"id"`
	Name                  string     `json:"name,omitempty" yaml:"name,omitempty"`
	Platforms             []Platform `json:"platforms" yaml:"platforms"`
	RequiresNativeLibrary bool       `json:"requires_native_library" yaml:"requires_native_library"`
	Rank                  int        `json:"rank" yaml:"rank"`
	Fallback              bool       `json:"fallback,omitempty" yaml:"fallback,omitempty"`
	// BindingPackage is the namespace holding the candidate's native glue.
	BindingPackage string `json:"binding_package,omitempty" yaml:"binding_package,omitempty"`
}

// AppliesTo reports whether any applicability tag covers the platform. A
// candidate without tags applies everywhere.
func (c TransportCandidate) AppliesTo(platform Platform) bool {
	if len(c.Platforms) == 0 {
		return true
	}
	for _, tag := range c.Platforms {
		if tag.Matches(platform) {
			return true
		}
	}
	return false
}

func (c TransportCandidate) clone() TransportCandidate {
	out := c
	out.Platforms = append([]Platform(nil), c.Platforms...)
	return out
}

type ProbeResult struct {
	Candidate TransportCandidate `json:"candidate"`
	Available bool               `json:"available"`
	Reason    string             `json:"reason,omitempty"`
	Err       error              `json:"-"`
}

func availableResult(candidate TransportCandidate, reason string) ProbeResult {
	return ProbeResult{Candidate: candidate, Available: true, Reason: reason}
}

func unavailableResult(candidate TransportCandidate, err error) ProbeResult {
	reason := "unavailable"
	if err != nil {
		reason = probeReason(candidate.ID, err)
	}
	return ProbeResult{Candidate: candidate, Available: false, Reason: reason, Err: err}
}

// SelectedTransport is handed to the core by value. Its exported surface is
// read-only; the bound provider is only reachable through OpenEventLoop.
type SelectedTransport struct {
	candidate TransportCandidate
	reason    string
	rejected  []ProbeResult
	provider  NativeTransportProvider
}

func (s SelectedTransport) ID() string {
	return s.candidate.ID
}

func (s SelectedTransport) Candidate() TransportCandidate {
	return s.candidate.clone()
}

func (s SelectedTransport) Reason() string {
	return s.reason
}

// Rejected returns the probe failures of candidates preferred over this one.
func (s SelectedTransport) Rejected() []ProbeResult {
	return append([]ProbeResult(nil), s.rejected...)
}

func (s SelectedTransport) IsFallback() bool {
	return s.candidate.Fallback
}

func (s SelectedTransport) IsZero() bool {
	return strings.TrimSpace(s.candidate.ID) == ""
}

// OpenEventLoop creates an event loop backed by the selected transport. The
// caller owns the returned handle.
func (s SelectedTransport) OpenEventLoop() (EventLoopHandle, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("core: transport %q has no bound provider", s.candidate.ID)
	}
	return s.provider.OpenEventLoop()
}

func (s SelectedTransport) withProvider(provider NativeTransportProvider) SelectedTransport {
	s.provider = provider
	return s
}

type BootstrapReport struct {
	RunID     string        `json:"run_id"`
	Platform  Platform      `json:"platform"`
	Selected  string        `json:"selected"`
	Reason    string        `json:"reason"`
	Results   []ProbeResult `json:"results"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Rejected returns the unavailable results in probe order.
func (r BootstrapReport) Rejected() []ProbeResult {
	out := make([]ProbeResult, 0, len(r.Results))
	for _, result := range r.Results {
		if !result.Available {
			out = append(out, result)
		}
	}
	return out
}

// ProbedIDs returns candidate ids in the order they were probed.
func (r BootstrapReport) ProbedIDs() []string {
	out := make([]string, 0, len(r.Results))
	for _, result := range r.Results {
		out = append(out, result.Candidate.ID)
	}
	return out
}

func normalizeID(id string) string {
	return strings.TrimSpace(strings.ToLower(id))
}
