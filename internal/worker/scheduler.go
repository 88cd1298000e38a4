package worker

import (
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"debate-arena/internal/tasks"
)

// Scheduler enqueues the periodic standings audit.
type Scheduler struct {
	scheduler *asynq.Scheduler // enqueues into the same Redis the server reads
	log       *logrus.Entry
}

// NewScheduler registers the audit under a cron expression such as "@every 5m".
func NewScheduler(redisOpt asynq.RedisClientOpt, schedule string, logger *logrus.Logger) (*Scheduler, error) {
	logEntry := logger.WithField("component", "scheduler")
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{})

	payload, err := tasks.NewStandingsAuditTask()
	if err != nil {
		return nil, err
	}
	// Every process that runs a scheduler enqueues its own copy of the
	// audit; the audit is read-mostly, so duplicates only cost a rebuild.
	entryID, err := scheduler.Register(schedule, asynq.NewTask(tasks.TypeStandingsAudit, payload), asynq.Queue("default"))
	if err != nil {
		return nil, err
	}
	logEntry.Infof("Standings audit registered with schedule '%s' (EntryID: %s)", schedule, entryID)
	return &Scheduler{scheduler: scheduler, log: logEntry}, nil
}

// Start launches the scheduler in the background.
func (s *Scheduler) Start() error {
	if err := s.scheduler.Start(); err != nil {
		return err
	}
	s.log.Info("Asynq scheduler started")
	return nil
}

// Shutdown stops enqueuing; tasks already queued still run.
func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
	s.log.Info("Asynq scheduler stopped.")
}
