package isolation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPolicy          = errors.New("isolation: invalid policy")
	ErrCoverageOverlap        = errors.New("isolation: package both relocated and excluded")
	ErrNativeBindingRelocated = errors.New("isolation: native binding package is relocated")
)

// Document is the serialized form of a policy.
type Document struct {
	DestinationRoot string           `json:"destination_root" yaml:"destination_root"`
	Relocations     []RelocationRule `json:"relocations" yaml:"relocations"`
	Exclusions      []ExclusionRule  `json:"exclusions" yaml:"exclusions"`
}

// Policy is immutable once built. Accessors return copies.
type Policy struct {
	destinationRoot string
	relocations     []RelocationRule
	exclusions      []ExclusionRule
}

// NewPolicy normalizes and validates a document. Relocation rules without a
// destination are placed under the destination root; named exceptions keep
// their source name.
func NewPolicy(doc Document) (*Policy, error) {
	root := normalizePackage(doc.DestinationRoot)
	policy := &Policy{
		destinationRoot: root,
		relocations:     make([]RelocationRule, 0, len(doc.Relocations)),
		exclusions:      make([]ExclusionRule, 0, len(doc.Exclusions)),
	}
	for _, rule := range doc.Relocations {
		rule.Source = normalizePackage(rule.Source)
		rule.Destination = normalizePackage(rule.Destination)
		rule.RequiredBy = normalizePackage(rule.RequiredBy)
		rule.Rationale = Rationale(strings.TrimSpace(strings.ToLower(string(rule.Rationale))))
		rule.Note = strings.TrimSpace(rule.Note)
		if rule.Rationale == "" {
			rule.Rationale = RationaleAvoidCollision
		}
		switch {
		case rule.IsException():
			if rule.Destination == "" {
				rule.Destination = rule.Source
			}
		case rule.Destination == "" && root != "" && rule.Source != "":
			rule.Destination = root + "." + rule.Source
		}
		policy.relocations = append(policy.relocations, rule)
	}
	for _, rule := range doc.Exclusions {
		normalized := ExclusionRule{
			Coordinate: strings.TrimSpace(rule.Coordinate),
			Reason:     ExclusionReason(strings.TrimSpace(strings.ToLower(string(rule.Reason)))),
		}
		if normalized.Reason == "" {
			normalized.Reason = ReasonProvidedByHost
		}
		for _, pattern := range rule.Packages {
			normalized.Packages = append(normalized.Packages, strings.TrimSpace(pattern))
		}
		policy.exclusions = append(policy.exclusions, normalized)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return policy, nil
}

func (p *Policy) DestinationRoot() string {
	if p == nil {
		return ""
	}
	return p.destinationRoot
}

// RelocationTargets returns every relocation rule, named exceptions included,
// in declaration order.
func (p *Policy) RelocationTargets() []RelocationRule {
	if p == nil {
		return nil
	}
	return append([]RelocationRule(nil), p.relocations...)
}

// HostProvidedExclusions returns the rules that keep host-provided
// dependencies out of the bundled artifact.
func (p *Policy) HostProvidedExclusions() []ExclusionRule {
	if p == nil {
		return nil
	}
	out := make([]ExclusionRule, 0, len(p.exclusions))
	for _, rule := range p.exclusions {
		out = append(out, rule.clone())
	}
	return out
}

// Exceptions returns the named do-not-relocate rules.
func (p *Policy) Exceptions() []RelocationRule {
	if p == nil {
		return nil
	}
	var out []RelocationRule
	for _, rule := range p.relocations {
		if rule.IsException() {
			out = append(out, rule)
		}
	}
	return out
}

// Resolve returns the most specific relocation rule covering pkg.
func (p *Policy) Resolve(pkg string) (RelocationRule, bool) {
	if p == nil {
		return RelocationRule{}, false
	}
	pkg = normalizePackage(pkg)
	var (
		best  RelocationRule
		found bool
	)
	for _, rule := range p.relocations {
		if !rule.Covers(pkg) {
			continue
		}
		if !found || len(rule.Source) > len(best.Source) {
			best = rule
			found = true
		}
	}
	return best, found
}

// Destination returns the name pkg carries inside the packaged artifact.
func (p *Policy) Destination(pkg string) string {
	pkg = normalizePackage(pkg)
	rule, ok := p.Resolve(pkg)
	if !ok || !rule.Relocates() {
		return pkg
	}
	return rule.Destination + strings.TrimPrefix(pkg, rule.Source)
}

// Excludes returns the exclusion matching a group:artifact[:version]
// coordinate. The version never affects the outcome.
func (p *Policy) Excludes(coordinate string) (ExclusionRule, bool) {
	if p == nil {
		return ExclusionRule{}, false
	}
	for _, rule := range p.exclusions {
		if rule.MatchesCoordinate(coordinate) {
			return rule.clone(), true
		}
	}
	return ExclusionRule{}, false
}

func (p *Policy) ExcludesPackage(pkg string) (ExclusionRule, bool) {
	if p == nil {
		return ExclusionRule{}, false
	}
	for _, rule := range p.exclusions {
		if rule.CoversPackage(pkg) {
			return rule.clone(), true
		}
	}
	return ExclusionRule{}, false
}

// VerifyNativeBinding fails when pkg, the namespace of a native transport's
// binding glue, would be renamed during packaging.
func (p *Policy) VerifyNativeBinding(pkg string) error {
	pkg = normalizePackage(pkg)
	if pkg == "" {
		return nil
	}
	rule, ok := p.Resolve(pkg)
	if !ok || !rule.Relocates() {
		return nil
	}
	return fmt.Errorf("%w: %s would move to %s under rule %q", ErrNativeBindingRelocated, pkg, p.Destination(pkg), rule.Source)
}

// NativeBinding ties a native transport to the package holding its binding
// glue.
type NativeBinding struct {
	Transport string
	Package   string
}

// VerifyNativeBindings checks every binding and joins the failures.
func (p *Policy) VerifyNativeBindings(bindings ...NativeBinding) error {
	var problems []error
	for _, binding := range bindings {
		if err := p.VerifyNativeBinding(binding.Package); err != nil {
			problems = append(problems, fmt.Errorf("transport %s: %w", binding.Transport, err))
		}
	}
	return errors.Join(problems...)
}

// Rebase moves every relocation under a new destination root.
func (p *Policy) Rebase(root string) (*Policy, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: policy is nil", ErrInvalidPolicy)
	}
	root = normalizePackage(root)
	if root == "" || root == p.destinationRoot {
		return p, nil
	}
	doc := p.Manifest()
	for idx, rule := range doc.Relocations {
		if !rule.Relocates() {
			continue
		}
		if suffix, ok := strings.CutPrefix(rule.Destination, p.destinationRoot+"."); ok && p.destinationRoot != "" {
			doc.Relocations[idx].Destination = root + "." + suffix
		}
	}
	doc.DestinationRoot = root
	return NewPolicy(doc)
}

// Manifest returns the document consumed by the packaging step.
func (p *Policy) Manifest() Document {
	if p == nil {
		return Document{}
	}
	return Document{
		DestinationRoot: p.destinationRoot,
		Relocations:     p.RelocationTargets(),
		Exclusions:      p.HostProvidedExclusions(),
	}
}

// Validate reports every problem found, joined.
func (p *Policy) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: policy is nil", ErrInvalidPolicy)
	}
	var problems []error
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf("%w: "+format, append([]any{ErrInvalidPolicy}, args...)...))
	}

	if p.destinationRoot != "" {
		if err := validatePackageName(p.destinationRoot); err != nil {
			fail("destination_root: %v", err)
		}
	}

	sources := map[string]struct{}{}
	for idx, rule := range p.relocations {
		if err := validatePackageName(rule.Source); err != nil {
			fail("relocations[%d]: %v", idx, err)
			continue
		}
		if _, exists := sources[rule.Source]; exists {
			fail("relocations[%d]: duplicate source %q", idx, rule.Source)
		}
		sources[rule.Source] = struct{}{}
		if !rule.Rationale.Valid() {
			fail("relocations[%d]: unknown rationale %q", idx, rule.Rationale)
			continue
		}
		if rule.IsException() {
			if rule.Destination != rule.Source {
				fail("relocations[%d]: %s is %s and must keep its name", idx, rule.Source, rule.Rationale)
			}
			continue
		}
		if rule.Destination == "" {
			fail("relocations[%d]: %s needs a destination or a destination_root", idx, rule.Source)
			continue
		}
		if err := validatePackageName(rule.Destination); err != nil {
			fail("relocations[%d]: %v", idx, err)
			continue
		}
		if rule.Destination == rule.Source {
			fail("relocations[%d]: %s relocates onto itself", idx, rule.Source)
		}
		if p.destinationRoot != "" && !within(rule.Destination, p.destinationRoot) {
			fail("relocations[%d]: destination %s is outside %s", idx, rule.Destination, p.destinationRoot)
		}
	}

	for idx, rule := range p.relocations {
		if rule.Rationale != RationaleRequiredByDependency {
			continue
		}
		if rule.RequiredBy == "" {
			fail("relocations[%d]: %s is %s but names no dependent", idx, rule.Source, rule.Rationale)
			continue
		}
		dependent, ok := p.Resolve(rule.RequiredBy)
		if !ok || !dependent.Relocates() {
			fail("relocations[%d]: %s is required by %s, which is not relocated", idx, rule.Source, rule.RequiredBy)
		}
	}

	for idx, rule := range p.exclusions {
		if err := validateCoordinatePattern(rule.Coordinate); err != nil {
			fail("exclusions[%d]: %v", idx, err)
		}
		if rule.Reason != ReasonProvidedByHost {
			fail("exclusions[%d]: unknown reason %q", idx, rule.Reason)
		}
		if len(rule.Packages) == 0 {
			fail("exclusions[%d]: %s covers no packages", idx, rule.Coordinate)
		}
		for _, pattern := range rule.Packages {
			base, _ := strings.CutSuffix(pattern, subtreeSuffix)
			if err := validatePackageName(base); err != nil {
				fail("exclusions[%d]: %v", idx, err)
			}
		}
	}

	for _, overlap := range p.overlaps() {
		problems = append(problems, overlap)
	}
	return errors.Join(problems...)
}

func (p *Policy) overlaps() []error {
	var out []error
	for _, relocation := range p.relocations {
		for _, exclusion := range p.exclusions {
			for _, pattern := range exclusion.Packages {
				if overlaps(relocation.Source, pattern) {
					out = append(out, fmt.Errorf("%w: %s (relocation) and %s from %s (exclusion)",
						ErrCoverageOverlap, relocation.Source, pattern, exclusion.Coordinate))
				}
			}
		}
	}
	return out
}
