package gocommand

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
	job "github.com/goliatone/go-job"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
)

// QueueRunner executes commands mirrored into a go-job queue registry in
// process. Messages go through the same parameter encoding a queue worker
// sees, so a command that runs here also runs when enqueued.
type QueueRunner struct {
	registry *jobqueuecommand.Registry
	logger   job.Logger
}

func NewQueueRunner(registry *jobqueuecommand.Registry, logger job.Logger) *QueueRunner {
	if logger == nil {
		logger = job.NewStdLoggerProvider().GetLogger("guestboot")
	}
	return &QueueRunner{registry: registry, logger: logger}
}

// Run encodes msg into execution parameters and executes the queued task
// registered under msg.Type(). ctx reaches the command unchanged, including
// any result collector attached to it.
func (r *QueueRunner) Run(ctx context.Context, msg command.Message) error {
	if r == nil || r.registry == nil {
		return fmt.Errorf("gocommand: queue registry is not configured")
	}
	if err := ValidateMessageContract(msg); err != nil {
		return err
	}
	id := strings.TrimSpace(msg.Type())
	if _, ok := r.registry.Get(id); !ok {
		return fmt.Errorf("gocommand: command %q is not queued", id)
	}

	params, err := jobqueuecommand.ParametersFromPayload(msg)
	if err != nil {
		return fmt.Errorf("gocommand: encode %q parameters: %w", id, err)
	}
	task := jobqueuecommand.NewTask(r.registry, id)
	execution, err := job.BuildExecutionMessageForTask(task, params)
	if err != nil {
		return fmt.Errorf("gocommand: build %q execution: %w", id, err)
	}

	logger := r.logger.WithContext(ctx)
	logger.Debug("running queued command", "command", id)
	if err := task.Execute(ctx, execution); err != nil {
		logger.Warn("queued command failed", "command", id, "error", err.Error())
		return err
	}
	return nil
}
