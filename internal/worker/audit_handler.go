package worker

import (
	"context"
	"sync"
	"time"

	"github.com/hibiken/asynq"

	"debate-arena/internal/domain"
)

// auditRoomTimeout bounds one room's rebuild so a stuck room cannot hold
// the whole audit past the next tick.
const auditRoomTimeout = 30 * time.Second

// RoomLister reports rooms that currently have connected sessions.
type RoomLister interface {
	RoomIDs() []string
}

// StandingsRebuilder recomputes a room's standings from its evaluations.
type StandingsRebuilder interface {
	Rebuild(ctx context.Context, roomID string) (domain.Standings, bool, error)
}

// StandingsAuditHandler periodically checks the incremental standings of
// live rooms against a full recomputation.
type StandingsAuditHandler struct {
	rooms     RoomLister         // the hub; only rooms with sessions are audited
	standings StandingsRebuilder // takes the room lock while it compares
}

func NewStandingsAuditHandler(rooms RoomLister, standings StandingsRebuilder) *StandingsAuditHandler {
	if rooms == nil || standings == nil {
		panic("RoomLister and StandingsRebuilder cannot be nil for StandingsAuditHandler")
	}
	return &StandingsAuditHandler{rooms: rooms, standings: standings}
}

// ProcessTask implements asynq.Handler. Per-room failures are logged and do
// not fail the task; the next tick retries them.
func (h *StandingsAuditHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := taskLogger(ctx, t)

	// Idle rooms are rebuilt from storage on their next load anyway.
	roomIDs := h.rooms.RoomIDs()
	if len(roomIDs) == 0 {
		logCtx.Debug("No live rooms, skipping standings audit")
		return nil
	}

	var (
		wg               sync.WaitGroup
		mu               sync.Mutex
		failed, repaired int
	)
	// Rooms are independent and each rebuild holds only its own room lock,
	// so they run in parallel.
	for _, roomID := range roomIDs {
		wg.Add(1)
		go func(roomID string) {
			defer wg.Done()
			rctx, cancel := context.WithTimeout(ctx, auditRoomTimeout)
			defer cancel()

			_, drifted, err := h.standings.Rebuild(rctx, roomID)
			// mu guards the counters only.
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				failed++
				logCtx.WithField("room_id", roomID).WithError(err).Error("Standings audit failed for room")
			case drifted:
				repaired++
			}
		}(roomID)
	}
	wg.Wait()

	logCtx.WithField("rooms", len(roomIDs)).WithField("repaired", repaired).WithField("failed", failed).
		Info("Standings audit completed")
	return nil
}
