package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"debate-arena/internal/tasks"
)

// archiveMaxRetry caps attempts against an unreachable archive; the
// result row in the primary store stays authoritative either way.
const archiveMaxRetry = 5

// TaskEnqueuer is the part of *asynq.Client the archiver needs.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Archiver queues result archive jobs. One job per room is kept by task id,
// so repeated calls for the same room are absorbed.
type Archiver struct {
	client TaskEnqueuer
}

func NewArchiver(client TaskEnqueuer) *Archiver {
	if client == nil {
		panic("asynq client cannot be nil for Archiver")
	}
	return &Archiver{client: client}
}

// EnqueueArchive implements service.ResultArchiver.
func (a *Archiver) EnqueueArchive(ctx context.Context, roomID string) error {
	payload, err := tasks.NewResultArchiveTask(roomID)
	if err != nil {
		return err
	}
	task := asynq.NewTask(tasks.TypeResultArchive, payload)
	// The fixed task id dedupes while the task is pending or retained;
	// Retention keeps it around a day after completion.
	_, err = a.client.EnqueueContext(ctx, task,
		asynq.Queue("low"),
		asynq.MaxRetry(archiveMaxRetry),
		asynq.TaskID("archive:"+roomID),
		asynq.Retention(24*time.Hour),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		// Already queued or recently archived.
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue archive for room %s: %w", roomID, err)
	}
	return nil
}
