package core

import (
	"context"
	"errors"
	"testing"
)

func TestBootstrapHookCoordinator_PreStartFailFast(t *testing.T) {
	coordinator := NewBootstrapHookCoordinator()
	calls := make([]string, 0, 3)

	for _, name := range []string{"first", "second", "third"} {
		name := name
		coordinator.RegisterPreStart(BootstrapHookFunc{
			HookName: name,
			Fn: func(context.Context, BootstrapEvent) error {
				calls = append(calls, name)
				if name == "second" {
					return errors.New("fail")
				}
				return nil
			},
		})
	}

	err := coordinator.ExecutePreStart(context.Background(), BootstrapEvent{RunID: "run_1"})
	if !errors.Is(err, ErrHookFailed) {
		t.Fatalf("expected hook failure, got %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("expected fail-fast behavior with 2 calls, got %d", len(calls))
	}
}

func TestBootstrapHookCoordinator_PostStartAggregatesErrors(t *testing.T) {
	coordinator := NewBootstrapHookCoordinator()
	calls := 0

	for _, fail := range []bool{true, false, true} {
		fail := fail
		coordinator.RegisterPostStart(BootstrapHookFunc{
			HookName: "post",
			Fn: func(context.Context, BootstrapEvent) error {
				calls++
				if fail {
					return errors.New("boom")
				}
				return nil
			},
		})
	}

	err := coordinator.ExecutePostStart(context.Background(), BootstrapEvent{RunID: "run_2"})
	if err == nil {
		t.Fatalf("expected aggregated post-start error")
	}
	if calls != 3 {
		t.Fatalf("expected all post-start hooks to execute, got %d", calls)
	}
}

func TestBootstrapHookCoordinator_NilSafe(t *testing.T) {
	var coordinator *BootstrapHookCoordinator
	coordinator.RegisterPreStart(BootstrapHookFunc{HookName: "ignored"})
	if err := coordinator.ExecutePreStart(context.Background(), BootstrapEvent{}); err != nil {
		t.Fatalf("expected nil coordinator to be a no-op: %v", err)
	}
	if pre, post := coordinator.Len(); pre != 0 || post != 0 {
		t.Fatalf("expected no hooks, got %d/%d", pre, post)
	}
}
