package query

import (
	"strings"
)

const (
	TypeProbeTransports   = "guestboot.query.transports.probe"
	TypeIsolationManifest = "guestboot.query.isolation.manifest"
	TypeMatchIsolation    = "guestboot.query.isolation.match"
)

type ProbeTransportsMessage struct {
	// All probes every candidate instead of stopping at the first available.
	All bool
}

func (ProbeTransportsMessage) Type() string { return TypeProbeTransports }

func (ProbeTransportsMessage) Validate() error { return nil }

type IsolationManifestMessage struct {
	// DestinationRoot rebases the manifest when set.
	DestinationRoot string
}

func (IsolationManifestMessage) Type() string { return TypeIsolationManifest }

func (m IsolationManifestMessage) Validate() error {
	if root := strings.TrimSpace(m.DestinationRoot); root != "" && strings.ContainsAny(root, " /:") {
		return queryValidationError("destination_root", "must be a dotted package name")
	}
	return nil
}

// MatchIsolationMessage asks which rule applies to a package name or a
// group:artifact[:version] coordinate.
type MatchIsolationMessage struct {
	Subject string
}

func (MatchIsolationMessage) Type() string { return TypeMatchIsolation }

func (m MatchIsolationMessage) Validate() error {
	if strings.TrimSpace(m.Subject) == "" {
		return queryValidationError("subject", "package or coordinate is required")
	}
	return nil
}
