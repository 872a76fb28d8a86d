package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/vatelanka/waste-admin-api/internal/ports/out/notifier"
)

// Worker consumes queued credential tasks and hands them to a delivering notifier.
type Worker struct {
	server   *asynq.Server
	delivery notifier.Notifier
	log      zerolog.Logger
}

func NewWorker(redis asynq.RedisConnOpt, concurrency int, delivery notifier.Notifier, logger zerolog.Logger) *Worker {
	server := asynq.NewServer(redis, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueCritical: 6,
			QueueDefault:  3,
		},
		Logger: asynqLogger{log: logger.With().Str("component", "asynq").Logger()},
	})
	return &Worker{server: server, delivery: delivery, log: logger}
}

// Run processes tasks until ctx is cancelled, then drains in-flight work.
func (w *Worker) Run(ctx context.Context) error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskSendCredentials, w.HandleCredentials)

	w.log.Info().Msg("starting notification worker")
	if err := w.server.Start(mux); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	<-ctx.Done()
	w.log.Info().Msg("stopping notification worker")
	w.server.Shutdown()
	return nil
}

// HandleCredentials decodes one task and delivers it. A returned error makes
// asynq schedule a retry.
func (w *Worker) HandleCredentials(ctx context.Context, t *asynq.Task) error {
	var p credentialsPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode credentials payload: %v: %w", err, asynq.SkipRetry)
	}

	log := w.log.With().Str("kind", p.Kind).Str("entity_id", p.EntityID).Logger()
	if err := w.delivery.SendCredentials(ctx, p.credentials()); err != nil {
		log.Error().Err(err).Msg("credentials email failed")
		return err
	}
	log.Info().Msg("credentials email delivered")
	return nil
}

// asynqLogger routes asynq's internal logging through zerolog.
type asynqLogger struct {
	log zerolog.Logger
}

func (l asynqLogger) Debug(args ...any) { l.log.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...any)  { l.log.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...any)  { l.log.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...any) { l.log.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...any) { l.log.Fatal().Msg(fmt.Sprint(args...)) }
