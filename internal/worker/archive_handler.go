package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"debate-arena/internal/domain"
	"debate-arena/internal/repository"
	"debate-arena/internal/service"
	"debate-arena/internal/tasks"
)

// ResultSource loads a finished debate together with its evaluations.
type ResultSource interface {
	StoredResult(ctx context.Context, roomID string) (*domain.DebateResult, []domain.Evaluation, error)
}

// ResultArchiveHandler copies stored results into the document archive.
type ResultArchiveHandler struct {
	results ResultSource             // authoritative store of finished debates
	archive repository.ResultArchive // secondary document store
}

func NewResultArchiveHandler(results ResultSource, archive repository.ResultArchive) *ResultArchiveHandler {
	if results == nil || archive == nil {
		panic("ResultSource and ResultArchive cannot be nil for ResultArchiveHandler")
	}
	return &ResultArchiveHandler{results: results, archive: archive}
}

// ProcessTask implements asynq.Handler.
func (h *ResultArchiveHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := taskLogger(ctx, t)

	// A payload that cannot be decoded never will be; skip retries.
	payload, err := tasks.ParseResultArchivePayload(t.Payload())
	if err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal task payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	logCtx = logCtx.WithField("room_id", payload.RoomID)

	result, evals, err := h.results.StoredResult(ctx, payload.RoomID)
	if err != nil {
		// Archives are only enqueued after End stored a result, so a missing
		// row means the room was reset; retrying cannot help.
		if errors.Is(err, service.ErrResultNotFound) {
			logCtx.Warn("No stored result to archive")
			return fmt.Errorf("room %s has no result: %w", payload.RoomID, asynq.SkipRetry)
		}
		logCtx.WithError(err).Error("Failed to load stored result")
		return err
	}

	// Archive upserts by room, so a retried task overwrites its own earlier
	// partial write instead of duplicating it.
	if err := h.archive.Archive(ctx, *result, evals); err != nil {
		logCtx.WithError(err).Error("Failed to archive result")
		return fmt.Errorf("archive room %s: %w", payload.RoomID, err)
	}
	logCtx.WithField("evaluations", len(evals)).Info("Debate result archived")
	return nil
}

// taskLogger tags log lines with the task id and retry position.
func taskLogger(ctx context.Context, t *asynq.Task) *logrus.Entry {
	taskID := ""
	if rw := t.ResultWriter(); rw != nil {
		taskID = rw.TaskID()
	}
	retry, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	return logrus.WithFields(logrus.Fields{
		"task_id":   taskID,
		"task_type": t.Type(),
		"retry":     retry,
		"max_retry": maxRetry,
	})
}
