package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"debate-arena/internal/domain"
	"debate-arena/internal/service"
	"debate-arena/internal/tasks"
)

type fakeResults struct {
	result *domain.DebateResult
	evals  []domain.Evaluation
	err    error
}

func (f fakeResults) StoredResult(context.Context, string) (*domain.DebateResult, []domain.Evaluation, error) {
	return f.result, f.evals, f.err
}

type mockArchive struct{ mock.Mock }

func (m *mockArchive) Archive(ctx context.Context, result domain.DebateResult, evals []domain.Evaluation) error {
	return m.Called(ctx, result, evals).Error(0)
}

func archiveTask(t *testing.T, roomID string) *asynq.Task {
	t.Helper()
	payload, err := tasks.NewResultArchiveTask(roomID)
	require.NoError(t, err)
	return asynq.NewTask(tasks.TypeResultArchive, payload)
}

func TestResultArchiveHandler(t *testing.T) {
	result := &domain.DebateResult{RoomID: "r1", WinningTeam: domain.WinnerTie}
	evals := []domain.Evaluation{{ID: 1, RoomID: "r1", TotalScore: 40}}

	t.Run("archives the stored result", func(t *testing.T) {
		archive := new(mockArchive)
		archive.On("Archive", mock.Anything, *result, evals).Return(nil).Once()

		h := NewResultArchiveHandler(fakeResults{result: result, evals: evals}, archive)
		require.NoError(t, h.ProcessTask(context.Background(), archiveTask(t, "r1")))
		archive.AssertExpectations(t)
	})

	t.Run("missing result is not retried", func(t *testing.T) {
		archive := new(mockArchive)
		h := NewResultArchiveHandler(fakeResults{err: service.ErrResultNotFound}, archive)
		err := h.ProcessTask(context.Background(), archiveTask(t, "r1"))
		assert.ErrorIs(t, err, asynq.SkipRetry)
		archive.AssertNotCalled(t, "Archive", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad payload is not retried", func(t *testing.T) {
		h := NewResultArchiveHandler(fakeResults{}, new(mockArchive))
		err := h.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeResultArchive, []byte("{")))
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("archive failure is retried", func(t *testing.T) {
		archive := new(mockArchive)
		archive.On("Archive", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("mongo down"))

		h := NewResultArchiveHandler(fakeResults{result: result, evals: evals}, archive)
		err := h.ProcessTask(context.Background(), archiveTask(t, "r1"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, asynq.SkipRetry)
	})
}

type staticRooms []string

func (r staticRooms) RoomIDs() []string { return r }

type fakeRebuilder struct {
	mu      sync.Mutex
	seen    []string
	drifted map[string]bool
	failing map[string]bool
}

func (f *fakeRebuilder) Rebuild(_ context.Context, roomID string) (domain.Standings, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, roomID)
	if f.failing[roomID] {
		return domain.Standings{}, false, errors.New("db down")
	}
	return domain.NewStandings(), f.drifted[roomID], nil
}

func TestStandingsAuditHandler(t *testing.T) {
	rebuilder := &fakeRebuilder{
		drifted: map[string]bool{"b": true},
		failing: map[string]bool{"c": true},
	}
	h := NewStandingsAuditHandler(staticRooms{"a", "b", "c"}, rebuilder)

	task := asynq.NewTask(tasks.TypeStandingsAudit, nil)
	require.NoError(t, h.ProcessTask(context.Background(), task), "per-room failures do not fail the task")
	assert.ElementsMatch(t, []string{"a", "b", "c"}, rebuilder.seen)

	empty := NewStandingsAuditHandler(staticRooms{}, rebuilder)
	require.NoError(t, empty.ProcessTask(context.Background(), task))
	assert.Len(t, rebuilder.seen, 3)
}

type recordingEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (r *recordingEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	r.tasks = append(r.tasks, task)
	if r.err != nil {
		return nil, r.err
	}
	return &asynq.TaskInfo{Type: task.Type(), Queue: "low", NextProcessAt: time.Now()}, nil
}

func TestArchiver_EnqueueArchive(t *testing.T) {
	q := &recordingEnqueuer{}
	a := NewArchiver(q)

	require.NoError(t, a.EnqueueArchive(context.Background(), "r1"))
	require.Len(t, q.tasks, 1)
	assert.Equal(t, tasks.TypeResultArchive, q.tasks[0].Type())
	p, err := tasks.ParseResultArchivePayload(q.tasks[0].Payload())
	require.NoError(t, err)
	assert.Equal(t, "r1", p.RoomID)

	q.err = asynq.ErrTaskIDConflict
	assert.NoError(t, a.EnqueueArchive(context.Background(), "r1"), "a queued archive for the room is enough")

	q.err = errors.New("redis down")
	assert.Error(t, a.EnqueueArchive(context.Background(), "r1"))

	assert.Error(t, a.EnqueueArchive(context.Background(), ""))
}

var _ service.ResultArchiver = (*Archiver)(nil)
