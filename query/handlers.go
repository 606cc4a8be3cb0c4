package query

import (
	"context"
	"strings"

	"github.com/goliatone/go-guestboot/core"
	"github.com/goliatone/go-guestboot/isolation"
)

type TransportProbeReader interface {
	Bootstrap(ctx context.Context) (core.SelectedTransport, core.BootstrapReport, error)
	Survey(ctx context.Context) (core.BootstrapReport, error)
}

type IsolationPolicyReader interface {
	IsolationPolicy() *isolation.Policy
}

type ProbeTransportsQuery struct {
	reader TransportProbeReader
}

func NewProbeTransportsQuery(reader TransportProbeReader) *ProbeTransportsQuery {
	return &ProbeTransportsQuery{reader: reader}
}

// Query runs a dry bootstrap. The report is returned even when selection
// fails so callers can show what was rejected.
func (q *ProbeTransportsQuery) Query(ctx context.Context, msg ProbeTransportsMessage) (core.BootstrapReport, error) {
	if q == nil || q.reader == nil {
		return core.BootstrapReport{}, queryDependencyError("query: transport probe reader is required")
	}
	if msg.All {
		return q.reader.Survey(ctx)
	}
	_, report, err := q.reader.Bootstrap(ctx)
	return report, err
}

type IsolationManifestQuery struct {
	reader IsolationPolicyReader
}

func NewIsolationManifestQuery(reader IsolationPolicyReader) *IsolationManifestQuery {
	return &IsolationManifestQuery{reader: reader}
}

func (q *IsolationManifestQuery) Query(_ context.Context, msg IsolationManifestMessage) (isolation.Document, error) {
	policy, err := q.policy()
	if err != nil {
		return isolation.Document{}, err
	}
	if err := msg.Validate(); err != nil {
		return isolation.Document{}, err
	}
	if root := strings.TrimSpace(msg.DestinationRoot); root != "" {
		rebased, err := policy.Rebase(root)
		if err != nil {
			return isolation.Document{}, queryValidationError("destination_root", err.Error())
		}
		policy = rebased
	}
	return policy.Manifest(), nil
}

func (q *IsolationManifestQuery) policy() (*isolation.Policy, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: isolation policy reader is required")
	}
	policy := q.reader.IsolationPolicy()
	if policy == nil {
		return nil, queryDependencyError("query: isolation policy is not loaded")
	}
	return policy, nil
}

// MatchResult reports what packaging does with a package or coordinate.
type MatchResult struct {
	Subject     string                    `json:"subject"`
	Relocation  *isolation.RelocationRule `json:"relocation,omitempty"`
	Destination string                    `json:"destination,omitempty"`
	Exclusion   *isolation.ExclusionRule  `json:"exclusion,omitempty"`
}

// Outcome is one of relocated, kept (named exception), excluded or bundled.
func (r MatchResult) Outcome() string {
	switch {
	case r.Exclusion != nil:
		return "excluded"
	case r.Relocation != nil && r.Relocation.Relocates():
		return "relocated"
	case r.Relocation != nil:
		return "kept"
	default:
		return "bundled"
	}
}

type MatchIsolationQuery struct {
	reader IsolationPolicyReader
}

func NewMatchIsolationQuery(reader IsolationPolicyReader) *MatchIsolationQuery {
	return &MatchIsolationQuery{reader: reader}
}

func (q *MatchIsolationQuery) Query(_ context.Context, msg MatchIsolationMessage) (MatchResult, error) {
	if q == nil || q.reader == nil {
		return MatchResult{}, queryDependencyError("query: isolation policy reader is required")
	}
	policy := q.reader.IsolationPolicy()
	if policy == nil {
		return MatchResult{}, queryDependencyError("query: isolation policy is not loaded")
	}
	if err := msg.Validate(); err != nil {
		return MatchResult{}, err
	}

	subject := strings.TrimSpace(msg.Subject)
	result := MatchResult{Subject: subject}
	if strings.Contains(subject, ":") {
		if rule, ok := policy.Excludes(subject); ok {
			result.Exclusion = &rule
		}
		return result, nil
	}
	if rule, ok := policy.Resolve(subject); ok {
		result.Relocation = &rule
		result.Destination = policy.Destination(subject)
	}
	if rule, ok := policy.ExcludesPackage(subject); ok {
		result.Exclusion = &rule
	}
	return result, nil
}
