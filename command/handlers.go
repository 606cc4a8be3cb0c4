package command

import (
	"context"
	"errors"
	"strings"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-guestboot/core"
	"github.com/goliatone/go-guestboot/isolation"
)

type Starter interface {
	Start(ctx context.Context, factory core.CoreFactory) (core.RunningCore, error)
}

type StartBootstrapResult struct {
	Core core.RunningCore
}

type StartBootstrapCommand struct {
	starter Starter
}

func NewStartBootstrapCommand(starter Starter) *StartBootstrapCommand {
	return &StartBootstrapCommand{starter: starter}
}

func (c *StartBootstrapCommand) Execute(ctx context.Context, msg StartBootstrapMessage) error {
	if c == nil || c.starter == nil {
		return commandDependencyError("command: bootstrap starter is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	running, err := c.starter.Start(ctx, msg.Factory)
	if err != nil {
		return err
	}
	storeResult(ctx, StartBootstrapResult{Core: running})
	return nil
}

// PolicyLoader reads a policy document. isolation.LoadFile satisfies it.
type PolicyLoader func(path string) (*isolation.Policy, error)

type CheckIsolationPolicyCommand struct {
	load PolicyLoader
}

func NewCheckIsolationPolicyCommand(load PolicyLoader) *CheckIsolationPolicyCommand {
	if load == nil {
		load = isolation.LoadFile
	}
	return &CheckIsolationPolicyCommand{load: load}
}

// Execute loads and validates the policy and stores its normalized manifest.
func (c *CheckIsolationPolicyCommand) Execute(ctx context.Context, msg CheckIsolationPolicyMessage) error {
	if c == nil || c.load == nil {
		return commandDependencyError("command: policy loader is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	policy, err := c.load(strings.TrimSpace(msg.Path))
	if err != nil {
		return commandPolicyError(err)
	}

	bindings := make([]isolation.NativeBinding, 0, len(msg.Bindings))
	for _, candidate := range msg.Bindings {
		if !candidate.RequiresNativeLibrary || strings.TrimSpace(candidate.BindingPackage) == "" {
			continue
		}
		bindings = append(bindings, isolation.NativeBinding{Transport: candidate.ID, Package: candidate.BindingPackage})
	}
	if err := policy.VerifyNativeBindings(bindings...); err != nil {
		return commandPolicyError(errors.Join(core.ErrIsolationPolicyInvalid, err))
	}
	storeResult(ctx, policy.Manifest())
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
