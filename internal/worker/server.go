// Package worker runs the background jobs on asynq.
package worker

import (
	"context"
	"errors"
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"debate-arena/internal/tasks"
)

// WorkerServer wraps the asynq server that processes archive and audit jobs.
type WorkerServer struct {
	server  *asynq.Server          // underlying asynq processor
	log     *logrus.Entry          // component-scoped logger
	archive *ResultArchiveHandler  // nil when archiving is disabled
	audit   *StandingsAuditHandler // always registered
}

// NewWorkerServer creates the server. archive is nil when no document
// archive is configured.
func NewWorkerServer(redisOpt asynq.RedisClientOpt, archive *ResultArchiveHandler, audit *StandingsAuditHandler, logger *logrus.Logger) *WorkerServer {
	if audit == nil {
		panic("StandingsAuditHandler cannot be nil for WorkerServer")
	}
	logEntry := logger.WithField("component", "worker_server")

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			// Jobs are short and mostly I/O bound.
			Concurrency: 10,
			// Weighted priorities. The audit runs on "default" and archives
			// on "low"; "critical" stays free for operator-enqueued repairs.
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			// Called for every failed attempt, including ones that will be
			// retried. Handlers log their own context; this adds retry counts.
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retryCount, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logEntry.WithFields(logrus.Fields{
					"task_type": task.Type(),
					"retries":   retryCount,
					"max_retry": maxRetry,
				}).Errorf("Task failed: %v", err)
			}),
		},
	)

	return &WorkerServer{server: server, log: logEntry, archive: archive, audit: audit}
}

// mux routes task types to handlers. Tasks of an unregistered type fail
// and are retried, so the archive route is only added when it can run.
func (ws *WorkerServer) mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeStandingsAudit, ws.audit.ProcessTask)
	if ws.archive != nil {
		mux.HandleFunc(tasks.TypeResultArchive, ws.archive.ProcessTask)
	}
	return mux
}

// Start runs the server; call it in its own goroutine.
func (ws *WorkerServer) Start() {
	ws.log.Info("Worker server starting...")
	// Run blocks until the process receives SIGTERM or SIGINT.
	if err := ws.server.Run(ws.mux()); err != nil {
		if !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, asynq.ErrServerClosed) {
			ws.log.Fatalf("Could not run worker server: %v", err)
		}
		ws.log.Info("Worker server stopped.")
	}
}

// Shutdown stops fetching new tasks and waits for in-flight ones; tasks
// still running at the deadline go back to the queue.
func (ws *WorkerServer) Shutdown() {
	ws.log.Info("Shutting down worker server...")
	ws.server.Shutdown()
	ws.log.Info("Worker server shut down complete.")
}
