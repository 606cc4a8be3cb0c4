package gocommand

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"

	guestcommand "github.com/goliatone/go-guestboot/command"
	"github.com/goliatone/go-guestboot/core"
	"github.com/goliatone/go-guestboot/isolation"
	guestquery "github.com/goliatone/go-guestboot/query"
)

// ValidateMessageContract enforces Type() plus optional Validate() contract.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) Registry() *command.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) RegisterCommand(cmd any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(cmd)
}

func (a *RegistryAdapter) RegisterQuery(qry any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(qry)
}

func (a *RegistryAdapter) AddResolver(key string, resolver command.Resolver) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.AddResolver(strings.TrimSpace(key), resolver)
}

// AddQueueResolver mirrors registered commands into queueRegistry. Queries
// have no Execute method and stay dispatcher only.
func (a *RegistryAdapter) AddQueueResolver(key string, queueRegistry *jobqueuecommand.Registry) error {
	if queueRegistry == nil {
		return fmt.Errorf("gocommand: queue registry is required")
	}
	resolve := jobqueuecommand.QueueResolver(queueRegistry)
	return a.AddResolver(key, func(cmd any, meta command.CommandMeta, registry *command.Registry) error {
		if !reflect.ValueOf(cmd).MethodByName("Execute").IsValid() {
			return nil
		}
		return resolve(cmd, meta, registry)
	})
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	if a == nil || a.registry == nil {
		return false
	}
	return a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.Initialize()
}

func SubscribeCommand[T any](cmd command.Commander[T], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
}

func SubscribeQuery[T any, R any](qry command.Querier[T, R], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeQuery(qry, runnerOpts...)
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}

func RegisterAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if cmd == nil {
		return nil, fmt.Errorf("gocommand: command is required")
	}
	subscription := SubscribeCommand(cmd, runnerOpts...)
	if err := adapter.RegisterCommand(cmd); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

func RegisterAndSubscribeQuery[T any, R any](
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if qry == nil {
		return nil, fmt.Errorf("gocommand: query is required")
	}
	subscription := SubscribeQuery(qry, runnerOpts...)
	if err := adapter.RegisterQuery(qry); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

// BootstrapRuntime is the orchestrator surface the dispatcher handlers need.
type BootstrapRuntime interface {
	guestcommand.Starter
	guestquery.TransportProbeReader
	guestquery.IsolationPolicyReader
}

// Subscriptions tracks dispatcher subscriptions so they can be released together.
type Subscriptions []commanddispatcher.Subscription

func (s Subscriptions) Unsubscribe() {
	for _, subscription := range s {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
}

// RegisterBootstrapHandlers registers the bootstrap commands and queries
// against runtime and subscribes them to the dispatcher.
func RegisterBootstrapHandlers(
	adapter *RegistryAdapter,
	runtime BootstrapRuntime,
	runnerOpts ...runner.Option,
) (Subscriptions, error) {
	if runtime == nil {
		return nil, fmt.Errorf("gocommand: bootstrap runtime is required")
	}
	subscriptions := Subscriptions{}
	fail := func(err error) (Subscriptions, error) {
		subscriptions.Unsubscribe()
		return nil, err
	}

	start, err := RegisterAndSubscribe[guestcommand.StartBootstrapMessage](
		adapter, guestcommand.NewStartBootstrapCommand(runtime), runnerOpts...)
	if err != nil {
		return fail(err)
	}
	subscriptions = append(subscriptions, start)

	check, err := RegisterAndSubscribe[guestcommand.CheckIsolationPolicyMessage](
		adapter, guestcommand.NewCheckIsolationPolicyCommand(nil), runnerOpts...)
	if err != nil {
		return fail(err)
	}
	subscriptions = append(subscriptions, check)

	probe, err := RegisterAndSubscribeQuery[guestquery.ProbeTransportsMessage, core.BootstrapReport](
		adapter, guestquery.NewProbeTransportsQuery(runtime), runnerOpts...)
	if err != nil {
		return fail(err)
	}
	subscriptions = append(subscriptions, probe)

	manifest, err := RegisterAndSubscribeQuery[guestquery.IsolationManifestMessage, isolation.Document](
		adapter, guestquery.NewIsolationManifestQuery(runtime), runnerOpts...)
	if err != nil {
		return fail(err)
	}
	subscriptions = append(subscriptions, manifest)

	match, err := RegisterAndSubscribeQuery[guestquery.MatchIsolationMessage, guestquery.MatchResult](
		adapter, guestquery.NewMatchIsolationQuery(runtime), runnerOpts...)
	if err != nil {
		return fail(err)
	}
	return append(subscriptions, match), nil
}
