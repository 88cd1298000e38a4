package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"debate-arena/internal/detector"
	"debate-arena/internal/domain"
	"debate-arena/internal/dto"
	"debate-arena/internal/oracle"
	"debate-arena/internal/repository"
)

const (
	// WarnStrikes is the AI-detection count that triggers a warning.
	WarnStrikes = 3
	// RestrictStrikes is the count at which callers are told to restrict the user.
	RestrictStrikes = 5

	defaultCollaboratorTimeout = 10 * time.Second
)

// ScoreboardPublisher is notified after every accepted evaluation.
type ScoreboardPublisher interface {
	PublishScoreboard(ctx context.Context, roomID string)
}

// EvaluateRequest is one argument submission.
type EvaluateRequest struct {
	RoomID    string
	UserID    string
	Username  string
	Team      string
	Argument  string
	MessageID string
	// ConfirmedHuman is set when the caller accepted the AI-detection prompt.
	ConfirmedHuman bool
}

// EvaluateResult is returned for both scored and held-back submissions.
type EvaluateResult struct {
	Evaluation        *domain.Evaluation `json:"evaluation"`
	Standings         domain.Standings   `json:"currentStandings"`
	Detection         detector.Result    `json:"aiDetection"`
	NeedsConfirmation bool               `json:"needsConfirmation"`
	Strikes           int64              `json:"aiStrikes"`
	Warning           bool               `json:"warning"`
	Restricted        bool               `json:"restricted"`
}

// ArgumentService runs the detection and scoring pipeline and folds
// accepted evaluations into the room standings.
type ArgumentService struct {
	registry    *RoomRegistry
	stanceRepo  repository.StanceRepository
	evalRepo    repository.EvaluationRepository
	strikeRepo  repository.StrikeRepository
	detector    detector.Detector
	scorer      oracle.Scorer
	broadcaster Broadcaster
	scoreboard  ScoreboardPublisher
	timeout     time.Duration
}

// NewArgumentService creates an ArgumentService. timeout bounds each
// collaborator call; zero selects the default.
func NewArgumentService(
	registry *RoomRegistry,
	stanceRepo repository.StanceRepository,
	evalRepo repository.EvaluationRepository,
	strikeRepo repository.StrikeRepository,
	det detector.Detector,
	scorer oracle.Scorer,
	broadcaster Broadcaster,
	scoreboard ScoreboardPublisher,
	timeout time.Duration,
) *ArgumentService {
	if registry == nil || stanceRepo == nil || evalRepo == nil || strikeRepo == nil {
		panic("repositories cannot be nil for ArgumentService")
	}
	if det == nil || scorer == nil {
		panic("detector and scorer cannot be nil for ArgumentService")
	}
	if broadcaster == nil || scoreboard == nil {
		panic("Broadcaster and ScoreboardPublisher cannot be nil for ArgumentService")
	}
	if timeout <= 0 {
		timeout = defaultCollaboratorTimeout
	}
	return &ArgumentService{
		registry:    registry,
		stanceRepo:  stanceRepo,
		evalRepo:    evalRepo,
		strikeRepo:  strikeRepo,
		detector:    det,
		scorer:      scorer,
		broadcaster: broadcaster,
		scoreboard:  scoreboard,
		timeout:     timeout,
	}
}

// Evaluate scores an argument. Collaborators are called without holding the
// room lock; the lock is taken again only to persist and fold the result.
func (s *ArgumentService) Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResult, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": req.RoomID, "user_id": req.UserID, "operation": "Evaluate"})

	// 1. Validate input and the caller's stance.
	team, err := domain.ParseTeam(req.Team)
	if err != nil {
		return nil, ErrInvalidTeam
	}
	argument := strings.TrimSpace(req.Argument)
	if argument == "" {
		return nil, ErrEmptyMessage
	}
	if len(argument) > domain.MaxTextLength {
		return nil, ErrMessageTooLarge
	}

	stance, err := s.stanceRepo.Find(ctx, req.RoomID, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrStanceNotFound) {
			return nil, ErrStanceRequired
		}
		logCtx.WithError(err).Error("Failed to look up stance")
		return nil, ErrInternalServer
	}
	if stance.Team != team {
		logCtx.WithFields(logrus.Fields{"claimed": team, "registered": stance.Team}).Warn("Team claim does not match stance")
		return nil, ErrTeamMismatch
	}

	var topic string
	err = s.registry.withRoom(ctx, req.RoomID, func(st *roomState) error {
		if !st.room.CanSendMessages() {
			return ErrDebateEnded
		}
		if st.alreadyEvaluated(req.MessageID) {
			return ErrAlreadyEvaluated
		}
		topic = st.room.Topic
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 2. AI detection gate.
	var detection detector.Result
	if utf8.RuneCountInString(argument) >= detector.MinTextLength {
		dctx, cancel := context.WithTimeout(ctx, s.timeout)
		detection, err = s.detector.Detect(dctx, argument)
		cancel()
		if err != nil {
			logCtx.WithError(err).Warn("AI detector failed")
			return nil, fmt.Errorf("%w (%v)", ErrDetectorUnavailable, err)
		}
	}
	if detection.Reasons == nil {
		detection.Reasons = []string{}
	}

	if detection.IsAI && !req.ConfirmedHuman {
		return s.holdForConfirmation(ctx, req, detection, logCtx)
	}

	// 3. Scoring oracle.
	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	assessment, err := s.scorer.Score(sctx, oracle.Request{Topic: topic, Team: team, Argument: argument})
	cancel()
	if err != nil {
		logCtx.WithError(err).Warn("Scoring oracle failed")
		return nil, fmt.Errorf("%w (%v)", ErrScorerUnavailable, err)
	}
	if err := assessment.Criteria.Validate(); err != nil {
		logCtx.WithError(err).Warn("Scoring oracle returned out-of-range criteria")
		return nil, fmt.Errorf("%w (%v)", ErrScorerUnavailable, err)
	}

	// 4. Persist and fold under the room lock.
	eval := &domain.Evaluation{
		RoomID:       req.RoomID,
		UserID:       req.UserID,
		Username:     req.Username,
		Team:         team,
		MessageID:    req.MessageID,
		Argument:     argument,
		Criteria:     assessment.Criteria,
		TotalScore:   assessment.Criteria.Total(),
		Feedback:     assessment.Feedback,
		AIConfidence: detection.Confidence,
	}
	var standings domain.Standings
	err = s.registry.withRoom(ctx, req.RoomID, func(st *roomState) error {
		if !st.room.CanSendMessages() {
			return ErrDebateEnded
		}
		// A retry of the same message may have been scored while the
		// collaborators ran for this one.
		if st.alreadyEvaluated(eval.MessageID) {
			return ErrAlreadyEvaluated
		}
		eval.EvaluatedAt = time.Now().UTC()
		if err := s.evalRepo.Save(ctx, eval); err != nil {
			logCtx.WithError(err).Error("Failed to save evaluation")
			return ErrInternalServer
		}
		st.fold(*eval)
		standings = st.standings.Clone()
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyEvaluated) {
			logCtx.WithField("message_id", req.MessageID).Warn("Duplicate evaluation discarded")
		}
		return nil, err
	}

	// 5. Fan out.
	s.broadcaster.BroadcastToRoom(req.RoomID, dto.Event{
		Event:  dto.EventArgumentEvaluated,
		RoomID: req.RoomID,
		Data: dto.ArgumentEvaluatedPayload{
			UserID:     eval.UserID,
			Username:   eval.Username,
			Team:       eval.Team,
			TotalScore: eval.TotalScore,
			MessageID:  eval.MessageID,
		},
	})
	s.broadcaster.BroadcastToRoom(req.RoomID, dto.Event{Event: dto.EventScoreUpdated, RoomID: req.RoomID, Data: standings})
	s.scoreboard.PublishScoreboard(ctx, req.RoomID)

	// Strikes from earlier held submissions still count against the user.
	strikes, err := s.strikeRepo.Count(ctx, req.RoomID, req.UserID)
	if err != nil {
		logCtx.WithError(err).Warn("Failed to read AI strikes")
		strikes = 0
	}

	logCtx.WithFields(logrus.Fields{"total_score": eval.TotalScore, "team": team}).Info("Argument evaluated")
	return &EvaluateResult{
		Evaluation: eval,
		Standings:  standings,
		Detection:  detection,
		Strikes:    strikes,
		Warning:    strikes >= WarnStrikes,
		Restricted: strikes >= RestrictStrikes,
	}, nil
}

// holdForConfirmation counts a strike and returns without scoring.
func (s *ArgumentService) holdForConfirmation(ctx context.Context, req EvaluateRequest, detection detector.Result, logCtx *logrus.Entry) (*EvaluateResult, error) {
	strikes, err := s.strikeRepo.Increment(ctx, req.RoomID, req.UserID)
	if err != nil {
		// The counter is advisory; a failed increment must not block the user.
		logCtx.WithError(err).Warn("Failed to record AI strike")
	}
	result := &EvaluateResult{
		Detection:         detection,
		NeedsConfirmation: true,
		Strikes:           strikes,
		Warning:           strikes >= WarnStrikes,
		Restricted:        strikes >= RestrictStrikes,
	}

	_ = s.registry.withRoom(ctx, req.RoomID, func(st *roomState) error {
		result.Standings = st.standings.Clone()
		return nil
	})

	payload := dto.StrikePayload{RoomID: req.RoomID, Strikes: strikes}
	switch {
	case result.Restricted:
		s.broadcaster.SendToUser(req.RoomID, req.UserID, dto.Event{Event: dto.EventAIRestricted, RoomID: req.RoomID, Data: payload})
	case result.Warning:
		s.broadcaster.SendToUser(req.RoomID, req.UserID, dto.Event{Event: dto.EventAIWarning, RoomID: req.RoomID, Data: payload})
	}

	logCtx.WithFields(logrus.Fields{"confidence": detection.Confidence, "strikes": strikes}).Info("Argument held for AI confirmation")
	return result, nil
}

