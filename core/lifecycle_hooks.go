package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// BootstrapHookCoordinator runs extension hooks around core startup.
type BootstrapHookCoordinator struct {
	mu        sync.RWMutex
	preStart  []BootstrapHook
	postStart []BootstrapHook
}

func NewBootstrapHookCoordinator() *BootstrapHookCoordinator {
	return &BootstrapHookCoordinator{
		preStart:  make([]BootstrapHook, 0),
		postStart: make([]BootstrapHook, 0),
	}
}

func (c *BootstrapHookCoordinator) RegisterPreStart(hook BootstrapHook) {
	if c == nil || hook == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preStart = append(c.preStart, hook)
}

func (c *BootstrapHookCoordinator) RegisterPostStart(hook BootstrapHook) {
	if c == nil || hook == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.postStart = append(c.postStart, hook)
}

// ExecutePreStart runs hooks in registration order once a transport is
// selected. The first failure aborts startup before the core is built.
func (c *BootstrapHookCoordinator) ExecutePreStart(ctx context.Context, event BootstrapEvent) error {
	for _, hook := range c.preHooks() {
		if hook == nil {
			continue
		}
		if err := hook.OnEvent(ctx, event); err != nil {
			return fmt.Errorf("%w: pre-start hook %q: %w", ErrHookFailed, hookName(hook), err)
		}
	}
	return nil
}

// ExecutePostStart runs every hook after the core is running. Failures are
// joined and never stop the core.
func (c *BootstrapHookCoordinator) ExecutePostStart(ctx context.Context, event BootstrapEvent) error {
	var hookErr error
	for _, hook := range c.postHooks() {
		if hook == nil {
			continue
		}
		if err := hook.OnEvent(ctx, event); err != nil {
			hookErr = errors.Join(hookErr, fmt.Errorf("post-start hook %q failed: %w", hookName(hook), err))
		}
	}
	return hookErr
}

func (c *BootstrapHookCoordinator) Len() (pre int, post int) {
	if c == nil {
		return 0, 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.preStart), len(c.postStart)
}

func (c *BootstrapHookCoordinator) preHooks() []BootstrapHook {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]BootstrapHook, len(c.preStart))
	copy(out, c.preStart)
	return out
}

func (c *BootstrapHookCoordinator) postHooks() []BootstrapHook {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]BootstrapHook, len(c.postStart))
	copy(out, c.postStart)
	return out
}

// BootstrapHookFunc adapts a function to BootstrapHook.
type BootstrapHookFunc struct {
	HookName string
	Fn       func(ctx context.Context, event BootstrapEvent) error
}

func (h BootstrapHookFunc) Name() string { return h.HookName }

func (h BootstrapHookFunc) OnEvent(ctx context.Context, event BootstrapEvent) error {
	if h.Fn == nil {
		return nil
	}
	return h.Fn(ctx, event)
}

func hookName(hook BootstrapHook) string {
	if hook == nil {
		return "unknown"
	}
	name := strings.TrimSpace(hook.Name())
	if name == "" {
		return "unnamed"
	}
	return name
}
