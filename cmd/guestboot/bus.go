package main

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-guestboot/adapters/gocommand"
	"github.com/goliatone/go-guestboot/adapters/gologger"
	"github.com/goliatone/go-guestboot/core"
)

// commandBus registers the bootstrap handlers with a go-command registry,
// mirrors its commands into a go-job queue registry and runs them through
// the queued task path.
type commandBus struct {
	queue         *gocommand.QueueRunner
	subscriptions gocommand.Subscriptions
}

func newCommandBus(cmd *cobra.Command, flags *globalFlags) (*commandBus, error) {
	logger, err := newLogger(cmd, flags)
	if err != nil {
		return nil, err
	}
	orchestrator, err := setupWithLogger(logger, flags, core.Config{})
	if err != nil {
		return nil, err
	}

	queueRegistry := jobqueuecommand.NewRegistry()
	adapter := gocommand.NewRegistryAdapter(nil)
	if err := adapter.AddQueueResolver("queue", queueRegistry); err != nil {
		return nil, err
	}
	subscriptions, err := gocommand.RegisterBootstrapHandlers(adapter, orchestrator)
	if err != nil {
		return nil, err
	}
	if err := adapter.Initialize(); err != nil {
		subscriptions.Unsubscribe()
		return nil, err
	}

	_, jobLogger := gologger.ForJob("guestboot", logger, nil)
	return &commandBus{
		queue:         gocommand.NewQueueRunner(queueRegistry, jobLogger),
		subscriptions: subscriptions,
	}, nil
}

func (b *commandBus) Run(ctx context.Context, msg gocmd.Message) error {
	return b.queue.Run(ctx, msg)
}

func (b *commandBus) Close() {
	b.subscriptions.Unsubscribe()
}
