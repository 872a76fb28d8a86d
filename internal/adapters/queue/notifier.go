package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/vatelanka/waste-admin-api/internal/ports/out/notifier"
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Notifier enqueues credential messages for the Worker instead of sending them inline.
type Notifier struct {
	client enqueuer
	log    zerolog.Logger
}

var _ notifier.Notifier = (*Notifier)(nil)

func NewNotifier(client *asynq.Client, logger zerolog.Logger) *Notifier {
	return &Notifier{client: client, log: logger}
}

func (n *Notifier) SendCredentials(ctx context.Context, c notifier.Credentials) error {
	task, err := NewCredentialsTask(c)
	if err != nil {
		return fmt.Errorf("build credentials task: %w", err)
	}
	info, err := n.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue credentials task: %w", err)
	}
	n.log.Debug().
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Str("entity_id", string(c.EntityID)).
		Msg("credentials email queued")
	return nil
}
