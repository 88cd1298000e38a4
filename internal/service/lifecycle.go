package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"debate-arena/internal/domain"
	"debate-arena/internal/dto"
	"debate-arena/internal/repository"
)

// ResultArchiver schedules the document copy of a finished debate.
type ResultArchiver interface {
	EnqueueArchive(ctx context.Context, roomID string) error
}

// DebateStatus answers the status endpoint.
type DebateStatus struct {
	RoomID       string              `json:"roomId"`
	Status       domain.DebateStatus `json:"status"`
	Winner       domain.Winner       `json:"winner"`
	IsActive     bool                `json:"isActive"`
	CanEnd       bool                `json:"canEnd"`
	Requirements domain.Eligibility  `json:"requirements"`
	Settings     domain.Settings     `json:"settings"`
}

// DebateResults answers the results endpoint.
type DebateResults struct {
	Winner          domain.Winner             `json:"winner"`
	MarginOfVictory float64                   `json:"marginOfVictory"`
	Scores          domain.Standings          `json:"scores"`
	Leaderboard     []domain.LeaderboardEntry `json:"leaderboard"`
	Awards          domain.Awards             `json:"awards"`
	CalculatedAt    time.Time                 `json:"calculatedAt"`
}

// LifecycleService is the active -> ended state machine of a room.
type LifecycleService struct {
	registry    *RoomRegistry
	roomRepo    repository.RoomRepository
	evalRepo    repository.EvaluationRepository
	resultRepo  repository.ResultRepository
	broadcaster Broadcaster
	archiver    ResultArchiver
}

// NewLifecycleService creates a LifecycleService. archiver may be nil.
func NewLifecycleService(
	registry *RoomRegistry,
	roomRepo repository.RoomRepository,
	evalRepo repository.EvaluationRepository,
	resultRepo repository.ResultRepository,
	broadcaster Broadcaster,
	archiver ResultArchiver,
) *LifecycleService {
	if registry == nil || roomRepo == nil || evalRepo == nil || resultRepo == nil {
		panic("repositories cannot be nil for LifecycleService")
	}
	if broadcaster == nil {
		panic("Broadcaster cannot be nil for LifecycleService")
	}
	return &LifecycleService{
		registry:    registry,
		roomRepo:    roomRepo,
		evalRepo:    evalRepo,
		resultRepo:  resultRepo,
		broadcaster: broadcaster,
		archiver:    archiver,
	}
}

// CanEnd evaluates the end-eligibility rule against the cached standings.
func (s *LifecycleService) CanEnd(ctx context.Context, roomID string) (domain.Eligibility, error) {
	var out domain.Eligibility
	err := s.registry.withRoom(ctx, roomID, func(st *roomState) error {
		out = domain.CheckEligibility(st.standings, st.room.Settings)
		if st.room.Ended() {
			out.CanEnd = false
			out.Reason = "debate already ended"
		}
		return nil
	})
	return out, err
}

// Status reports lifecycle state and the current requirements.
func (s *LifecycleService) Status(ctx context.Context, roomID string) (*DebateStatus, error) {
	var out DebateStatus
	err := s.registry.withRoom(ctx, roomID, func(st *roomState) error {
		elig := domain.CheckEligibility(st.standings, st.room.Settings)
		if st.room.Ended() {
			elig.CanEnd = false
			elig.Reason = "debate already ended"
		}
		out = DebateStatus{
			RoomID:       roomID,
			Status:       st.room.DebateStatus,
			Winner:       st.room.Winner,
			IsActive:     st.room.IsActive,
			CanEnd:       elig.CanEnd,
			Requirements: elig,
			Settings:     st.room.Settings,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// End transitions the room to ended exactly once. Callers arriving after the
// transition receive the stored result and no error.
func (s *LifecycleService) End(ctx context.Context, roomID, requesterID, reason string) (*domain.DebateResult, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": requesterID, "operation": "EndDebate"})
	if requesterID == "" {
		return nil, ErrRequesterRequired
	}

	var (
		result    domain.DebateResult
		performed bool
	)
	err := s.registry.withRoom(ctx, roomID, func(st *roomState) error {
		if st.result != nil {
			result = *st.result
			return nil
		}
		if st.room.Ended() {
			// Ended before this process saw it; the result row may still exist.
			stored, err := s.resultRepo.FindByRoom(ctx, roomID)
			if err != nil {
				if errors.Is(err, repository.ErrResultNotFound) {
					return ErrDebateEnded
				}
				logCtx.WithError(err).Error("Failed to load stored result")
				return ErrInternalServer
			}
			st.result = stored
			result = *stored
			return nil
		}

		elig := domain.CheckEligibility(st.standings, st.room.Settings)
		if !elig.CanEnd {
			logCtx.WithField("reason", elig.Reason).Warn("End requested before eligibility")
			return fmt.Errorf("%w: %s", ErrNotEligible, elig.Reason)
		}

		evals, err := s.evalRepo.ListByRoom(ctx, roomID)
		if err != nil {
			logCtx.WithError(err).Error("Failed to list evaluations")
			return ErrInternalServer
		}
		computed := domain.NewDebateResult(roomID, st.standings, st.leaderboard.Ranked(), st.room.Settings,
			evals, requesterID, reason, time.Now().UTC())

		if err := s.resultRepo.Save(ctx, &computed); err != nil {
			if !errors.Is(err, repository.ErrDuplicateEntry) {
				logCtx.WithError(err).Error("Failed to save debate result")
				return ErrInternalServer
			}
			// Another process ended this room first; adopt its result.
			stored, ferr := s.resultRepo.FindByRoom(ctx, roomID)
			if ferr != nil {
				logCtx.WithError(ferr).Error("Failed to load concurrently stored result")
				return ErrInternalServer
			}
			computed = *stored
		} else {
			performed = true
		}

		if err := s.roomRepo.UpdateStatus(ctx, roomID, domain.DebateEnded, computed.WinningTeam, false); err != nil {
			logCtx.WithError(err).Error("Failed to update room status")
			return ErrInternalServer
		}
		st.room.DebateStatus = domain.DebateEnded
		st.room.Winner = computed.WinningTeam
		st.room.IsActive = false
		st.result = &computed
		result = computed

		if performed {
			s.broadcaster.BroadcastToRoom(roomID, dto.Event{
				Event:  dto.EventDebateEnded,
				RoomID: roomID,
				Data:   dto.DebateEndedPayload{RoomID: roomID, Winner: computed.WinningTeam, Stats: computed},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if performed {
		logCtx.WithFields(logrus.Fields{"winner": result.WinningTeam, "margin": result.MarginOfVictory}).Info("Debate ended")
		s.PublishScoreboard(ctx, roomID)
		if s.archiver != nil {
			if err := s.archiver.EnqueueArchive(ctx, roomID); err != nil {
				logCtx.WithError(err).Warn("Failed to enqueue result archive")
			}
		}
	}
	return &result, nil
}

// UpdateSettings changes lifecycle settings while the debate is active. When
// the room has a known creator only that user may change them.
func (s *LifecycleService) UpdateSettings(ctx context.Context, roomID, requesterID string, settings domain.Settings) error {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": requesterID, "operation": "UpdateSettings"})
	if requesterID == "" {
		return ErrRequesterRequired
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	err := s.registry.withRoom(ctx, roomID, func(st *roomState) error {
		if st.room.Ended() {
			return ErrDebateEnded
		}
		if st.room.CreatorID != "" && st.room.CreatorID != requesterID {
			return ErrNotRoomCreator
		}
		if err := s.roomRepo.UpdateSettings(ctx, roomID, settings); err != nil {
			logCtx.WithError(err).Error("Failed to persist settings")
			return ErrInternalServer
		}
		st.room.Settings = settings
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrPermission) {
			logCtx.WithError(err).Warn("Settings update rejected")
		}
		return err
	}

	logCtx.WithFields(logrus.Fields{
		"min_arguments": settings.MinArgumentsPerTeam,
		"win_margin":    settings.WinMarginThreshold,
	}).Info("Debate settings updated")
	s.PublishScoreboard(ctx, roomID)
	return nil
}

// Scoreboard returns the leaderboard, standings and the projected winner,
// which is the final winner once the debate has ended.
func (s *LifecycleService) Scoreboard(ctx context.Context, roomID string) (*dto.ScoreboardPayload, error) {
	var out dto.ScoreboardPayload
	err := s.registry.withRoom(ctx, roomID, func(st *roomState) error {
		out.Leaderboard = st.leaderboard.Ranked()
		out.Standings = st.standings.Clone()
		out.Status = st.room.DebateStatus
		if st.room.Ended() {
			out.Winner = st.room.Winner
			out.Reason = "debate already ended"
			return nil
		}
		out.Winner, _ = domain.DecideWinner(st.standings, st.room.Settings)
		elig := domain.CheckEligibility(st.standings, st.room.Settings)
		out.CanEnd = elig.CanEnd
		out.Reason = elig.Reason
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// PublishScoreboard broadcasts scoreboard_updated. Failures are logged only.
func (s *LifecycleService) PublishScoreboard(ctx context.Context, roomID string) {
	board, err := s.Scoreboard(ctx, roomID)
	if err != nil {
		logrus.WithField("room_id", roomID).WithError(err).Warn("Failed to build scoreboard")
		return
	}
	s.broadcaster.BroadcastToRoom(roomID, dto.Event{Event: dto.EventScoreboardUpdated, RoomID: roomID, Data: board})
}

// Results returns the stored outcome of an ended debate.
func (s *LifecycleService) Results(ctx context.Context, roomID string) (*DebateResults, error) {
	var out *DebateResults
	err := s.registry.withRoom(ctx, roomID, func(st *roomState) error {
		if st.result == nil {
			return ErrResultNotFound
		}
		r := st.result
		out = &DebateResults{
			Winner:          r.WinningTeam,
			MarginOfVictory: r.MarginOfVictory,
			Scores:          r.Standings.Clone(),
			Leaderboard:     r.Leaderboard,
			Awards:          r.Awards,
			CalculatedAt:    r.CalculatedAt,
		}
		return nil
	})
	return out, err
}

// StoredResult returns the persisted result together with every evaluation,
// for archiving.
func (s *LifecycleService) StoredResult(ctx context.Context, roomID string) (*domain.DebateResult, []domain.Evaluation, error) {
	result, err := s.resultRepo.FindByRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrResultNotFound) {
			return nil, nil, ErrResultNotFound
		}
		return nil, nil, fmt.Errorf("load result: %w", err)
	}
	evals, err := s.evalRepo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, nil, fmt.Errorf("list evaluations: %w", err)
	}
	return result, evals, nil
}
