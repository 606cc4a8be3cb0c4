package isolation

import (
	"fmt"
	"path"
	"strings"
)

type Rationale string

const (
	RationaleAvoidCollision       Rationale = "avoid-collision"
	RationaleRequiredByDependency Rationale = "required-by-dependency"
	// RationaleBrokenIfRelocated marks a named exception: the package is
	// bundled under its original name because its native glue resolves
	// symbols by exact class identity.
	RationaleBrokenIfRelocated Rationale = "broken-if-relocated"
)

func (r Rationale) Valid() bool {
	switch r {
	case RationaleAvoidCollision, RationaleRequiredByDependency, RationaleBrokenIfRelocated:
		return true
	default:
		return false
	}
}

type ExclusionReason string

const ReasonProvidedByHost ExclusionReason = "provided-by-host"

const subtreeSuffix = ".**"

type RelocationRule struct {
	Source      string    `json:"source" yaml:"source"`
	Destination string    `json:"destination" yaml:"destination,omitempty"`
	Rationale   Rationale `json:"rationale" yaml:"rationale"`
	// RequiredBy names the bundled package that pulls this one in.
	RequiredBy string `json:"required_by,omitempty" yaml:"required_by,omitempty"`
	Note       string `json:"note,omitempty" yaml:"note,omitempty"`
}

// Relocates reports whether packaging renames the source namespace.
func (r RelocationRule) Relocates() bool {
	return r.Rationale != RationaleBrokenIfRelocated && r.Destination != r.Source
}

func (r RelocationRule) Covers(pkg string) bool {
	return within(normalizePackage(pkg), r.Source)
}

// IsException reports whether the rule is a named do-not-relocate exception.
func (r RelocationRule) IsException() bool {
	return r.Rationale == RationaleBrokenIfRelocated
}

type ExclusionRule struct {
	// Coordinate is a group:artifact glob. A version part, if present, must be
	// a wildcard: exclusions never pin versions.
	Coordinate string          `json:"coordinate" yaml:"coordinate"`
	Packages   []string        `json:"packages" yaml:"packages"`
	Reason     ExclusionReason `json:"reason" yaml:"reason"`
}

// MatchesCoordinate checks group and artifact; the version is ignored.
func (r ExclusionRule) MatchesCoordinate(coordinate string) bool {
	patternGroup, patternArtifact, _ := splitCoordinate(r.Coordinate)
	group, artifact, _ := splitCoordinate(coordinate)
	if group == "" {
		return false
	}
	return globMatch(patternGroup, group) && globMatch(patternArtifact, artifact)
}

func (r ExclusionRule) CoversPackage(pkg string) bool {
	pkg = normalizePackage(pkg)
	for _, pattern := range r.Packages {
		if packagePatternMatches(pattern, pkg) {
			return true
		}
	}
	return false
}

func (r ExclusionRule) clone() ExclusionRule {
	out := r
	out.Packages = append([]string(nil), r.Packages...)
	return out
}

func splitCoordinate(coordinate string) (group string, artifact string, version string) {
	parts := strings.SplitN(strings.TrimSpace(coordinate), ":", 3)
	group = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		artifact = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		version = strings.TrimSpace(parts[2])
	}
	if artifact == "" {
		artifact = "*"
	}
	return group, artifact, version
}

func validateCoordinatePattern(coordinate string) error {
	group, artifact, version := splitCoordinate(coordinate)
	if group == "" {
		return fmt.Errorf("coordinate %q has no group", coordinate)
	}
	for _, part := range []string{group, artifact} {
		if _, err := path.Match(part, ""); err != nil {
			return fmt.Errorf("coordinate %q: %w", coordinate, err)
		}
	}
	switch version {
	case "", "*", ".*":
	default:
		return fmt.Errorf("coordinate %q pins version %q; exclusions are version-oblivious", coordinate, version)
	}
	return nil
}

func globMatch(pattern string, value string) bool {
	if pattern == "" || pattern == "*" || pattern == ".*" {
		return true
	}
	ok, err := path.Match(pattern, value)
	return err == nil && ok
}

func packagePatternMatches(pattern string, pkg string) bool {
	base, subtree := strings.CutSuffix(pattern, subtreeSuffix)
	if subtree {
		return within(pkg, base)
	}
	return pkg == base
}

// overlaps reports whether a relocation source and an exclusion package
// pattern can claim the same package.
func overlaps(source string, pattern string) bool {
	base, subtree := strings.CutSuffix(pattern, subtreeSuffix)
	if subtree {
		return within(source, base) || within(base, source)
	}
	return within(base, source)
}

func within(pkg string, prefix string) bool {
	if pkg == "" || prefix == "" {
		return false
	}
	return pkg == prefix || strings.HasPrefix(pkg, prefix+".")
}

func normalizePackage(pkg string) string {
	return strings.Trim(strings.TrimSpace(pkg), ".")
}

func validatePackageName(pkg string) error {
	if pkg == "" {
		return fmt.Errorf("package name is required")
	}
	for _, segment := range strings.Split(pkg, ".") {
		if segment == "" {
			return fmt.Errorf("package %q has an empty segment", pkg)
		}
		for _, r := range segment {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '$', r == '-':
			default:
				return fmt.Errorf("package %q contains %q", pkg, r)
			}
		}
	}
	return nil
}
