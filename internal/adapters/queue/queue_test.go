package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vatelanka/waste-admin-api/internal/domain"
	"github.com/vatelanka/waste-admin-api/internal/ports/out/notifier"
	"github.com/vatelanka/waste-admin-api/internal/ports/out/notifier/mocks"
)

func supervisorCredentials() notifier.Credentials {
	return notifier.Credentials{
		Kind:        domain.KindSupervisor,
		To:          "nimal@example.lk",
		Name:        "Nimal Perera",
		EntityID:    "SUPAB12CD",
		Password:    "5678abcd",
		Location:    domain.Location{Council: "colombo", District: "Colombo", Ward: "Ward 1"},
		PhoneNumber: "+94712345678",
	}
}

type recordingEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (r *recordingEnqueuer) EnqueueContext(_ context.Context, t *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.tasks = append(r.tasks, t)
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueCritical, Type: t.Type()}, nil
}

func TestNotifier_EnqueuesAndWorkerDelivers(t *testing.T) {
	t.Parallel()

	enq := &recordingEnqueuer{}
	n := &Notifier{client: enq, log: zerolog.Nop()}
	want := supervisorCredentials()

	require.NoError(t, n.SendCredentials(context.Background(), want))
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TaskSendCredentials, enq.tasks[0].Type())

	ctrl := gomock.NewController(t)
	delivery := mocks.NewMockNotifier(ctrl)
	delivery.EXPECT().SendCredentials(gomock.Any(), want).Return(nil)

	w := &Worker{delivery: delivery, log: zerolog.Nop()}
	require.NoError(t, w.HandleCredentials(context.Background(), enq.tasks[0]))
}

func TestNotifier_EnqueueFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("redis down")
	n := &Notifier{client: &recordingEnqueuer{err: boom}, log: zerolog.Nop()}
	err := n.SendCredentials(context.Background(), supervisorCredentials())
	require.ErrorIs(t, err, boom)
}

func TestWorker_DeliveryFailureIsRetried(t *testing.T) {
	t.Parallel()

	task, err := NewCredentialsTask(supervisorCredentials())
	require.NoError(t, err)

	boom := errors.New("smtp unavailable")
	ctrl := gomock.NewController(t)
	delivery := mocks.NewMockNotifier(ctrl)
	delivery.EXPECT().SendCredentials(gomock.Any(), gomock.Any()).Return(boom)

	w := &Worker{delivery: delivery, log: zerolog.Nop()}
	err = w.HandleCredentials(context.Background(), task)
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestWorker_BadPayloadSkipsRetry(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	w := &Worker{delivery: mocks.NewMockNotifier(ctrl), log: zerolog.Nop()}
	err := w.HandleCredentials(context.Background(), asynq.NewTask(TaskSendCredentials, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
