package command

import (
	"strings"

	"github.com/goliatone/go-guestboot/core"
)

const (
	TypeStartBootstrap       = "guestboot.command.bootstrap.start"
	TypeCheckIsolationPolicy = "guestboot.command.isolation_policy.check"
)

type StartBootstrapMessage struct {
	Factory core.CoreFactory `json:"-"`
}

func (StartBootstrapMessage) Type() string { return TypeStartBootstrap }

func (m StartBootstrapMessage) Validate() error {
	if m.Factory == nil {
		return commandValidationError("factory", "core factory is required")
	}
	return nil
}

// CheckIsolationPolicyMessage validates a policy document on disk.
type CheckIsolationPolicyMessage struct {
	Path string `json:"path"`
	// Bindings are checked against the policy when set.
	Bindings []core.TransportCandidate `json:"bindings,omitempty"`
}

func (CheckIsolationPolicyMessage) Type() string { return TypeCheckIsolationPolicy }

func (m CheckIsolationPolicyMessage) Validate() error {
	if strings.TrimSpace(m.Path) == "" {
		return commandValidationError("path", "policy path is required")
	}
	return nil
}
