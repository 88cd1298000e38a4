package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"debate-arena/internal/domain"
	"debate-arena/internal/dto"
	"debate-arena/internal/repository"
)

// SendMessageInput is a chat message from a session.
type SendMessageInput struct {
	RoomID string
	UserID string
	Sender string
	Text   string
	Image  *string
	Stance string
}

// MessageService is the room message log and its broadcaster.
type MessageService struct {
	registry    *RoomRegistry
	msgRepo     repository.MessageRepository
	broadcaster Broadcaster
	moderators  map[string]struct{}
}

// NewMessageService creates a MessageService. moderatorIDs may be empty.
func NewMessageService(registry *RoomRegistry, msgRepo repository.MessageRepository, broadcaster Broadcaster, moderatorIDs []string) *MessageService {
	if registry == nil {
		panic("RoomRegistry cannot be nil for MessageService")
	}
	if msgRepo == nil {
		panic("MessageRepository cannot be nil for MessageService")
	}
	if broadcaster == nil {
		panic("Broadcaster cannot be nil for MessageService")
	}
	mods := make(map[string]struct{}, len(moderatorIDs))
	for _, id := range moderatorIDs {
		if id = strings.TrimSpace(id); id != "" {
			mods[id] = struct{}{}
		}
	}
	return &MessageService{registry: registry, msgRepo: msgRepo, broadcaster: broadcaster, moderators: mods}
}

// IsModerator reports whether userID may use the privileged delete path.
func (s *MessageService) IsModerator(userID string) bool {
	_, ok := s.moderators[userID]
	return ok
}

// Send appends a user message and fans it out. The broadcast happens under
// the room lock so sessions see messages in log order.
func (s *MessageService) Send(ctx context.Context, in SendMessageInput) (*domain.Message, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": in.RoomID, "user_id": in.UserID, "operation": "SendMessage"})

	text := strings.TrimSpace(in.Text)
	if in.Image != nil && *in.Image == "" {
		in.Image = nil
	}
	if text == "" && in.Image == nil {
		return nil, ErrEmptyMessage
	}
	if len(text) > domain.MaxTextLength || (in.Image != nil && len(*in.Image) > domain.MaxImageBytes) {
		logCtx.Warn("Rejected oversized message")
		return nil, ErrMessageTooLarge
	}
	stance, _ := domain.ParseTeam(in.Stance)

	msg := &domain.Message{
		ID:     uuid.NewString(),
		RoomID: in.RoomID,
		Kind:   domain.KindUser,
		Sender: in.Sender,
		UserID: in.UserID,
		Stance: stance,
		Text:   text,
		Image:  in.Image,
	}
	err := s.registry.withRoom(ctx, in.RoomID, func(st *roomState) error {
		if !st.room.CanSendMessages() {
			return ErrDebateEnded
		}
		msg.Time = time.Now().UTC()
		if err := s.msgRepo.Append(ctx, msg); err != nil {
			logCtx.WithError(err).Error("Failed to append message")
			return ErrInternalServer
		}
		s.broadcaster.BroadcastToRoom(in.RoomID, dto.Event{Event: dto.EventReceiveMessage, RoomID: in.RoomID, Data: msg})
		return nil
	})
	if err != nil {
		return nil, err
	}
	logCtx.WithField("message_id", msg.ID).Debug("Message appended")
	return msg, nil
}

// Delete soft-deletes a message on behalf of its sender.
func (s *MessageService) Delete(ctx context.Context, roomID, messageID, requesterID string) (*domain.Message, error) {
	return s.softDelete(ctx, roomID, messageID, requesterID, false)
}

// ModeratorDelete soft-deletes any message; requester must be a moderator.
func (s *MessageService) ModeratorDelete(ctx context.Context, roomID, messageID, moderatorID string) (*domain.Message, error) {
	if !s.IsModerator(moderatorID) {
		logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": moderatorID}).Warn("Moderator delete by non-moderator")
		return nil, ErrNotModerator
	}
	return s.softDelete(ctx, roomID, messageID, moderatorID, true)
}

func (s *MessageService) softDelete(ctx context.Context, roomID, messageID, actorID string, privileged bool) (*domain.Message, error) {
	logCtx := logrus.WithFields(logrus.Fields{
		"room_id":    roomID,
		"message_id": messageID,
		"user_id":    actorID,
		"moderator":  privileged,
	})

	var deleted domain.Message
	err := s.registry.withRoom(ctx, roomID, func(st *roomState) error {
		msg, err := s.msgRepo.FindByID(ctx, roomID, messageID)
		if err != nil {
			if errors.Is(err, repository.ErrMessageNotFound) {
				return ErrMessageNotFound
			}
			logCtx.WithError(err).Error("Failed to load message")
			return ErrInternalServer
		}
		if msg.IsDeleted {
			return ErrAlreadyDeleted
		}
		if !privileged && (msg.IsSystem() || msg.UserID != actorID) {
			return ErrNotMessageOwner
		}

		now := time.Now().UTC()
		msg.SoftDelete(actorID, now)
		if err := s.msgRepo.SoftDelete(ctx, msg); err != nil {
			logCtx.WithError(err).Error("Failed to persist soft delete")
			return ErrInternalServer
		}

		noticeText := "A message was deleted"
		if privileged {
			noticeText = "A message was removed by a moderator"
		}
		notice := domain.NewSystemNotice(uuid.NewString(), roomID, noticeText, now)
		if err := s.msgRepo.Append(ctx, &notice); err != nil {
			// The delete itself is durable; only the announcement is lost.
			logCtx.WithError(err).Warn("Failed to persist deletion notice")
		}

		s.broadcaster.BroadcastToRoom(roomID, dto.Event{Event: dto.EventMessageDeleted, RoomID: roomID, Data: msg})
		s.broadcaster.BroadcastToRoom(roomID, dto.Event{Event: dto.EventReceiveMessage, RoomID: roomID, Data: notice})
		deleted = *msg
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrPermission) || errors.Is(err, ErrConflict) {
			logCtx.WithError(err).Warn("Delete rejected")
		}
		return nil, err
	}
	logCtx.Info("Message soft-deleted")
	return &deleted, nil
}

// History returns the replay batch for a joining session, oldest first.
func (s *MessageService) History(ctx context.Context, roomID string) ([]domain.Message, error) {
	if _, err := s.registry.Room(ctx, roomID); err != nil {
		return nil, err
	}
	return s.recent(ctx, roomID)
}

// Replay reads the replay batch and hands it to deliver while the room lock
// is held, so no message is appended between the read and the delivery.
// deliver must not call back into the services.
func (s *MessageService) Replay(ctx context.Context, roomID string, deliver func(history []domain.Message)) error {
	return s.registry.withRoom(ctx, roomID, func(st *roomState) error {
		msgs, err := s.recent(ctx, roomID)
		if err != nil {
			return err
		}
		deliver(msgs)
		return nil
	})
}

func (s *MessageService) recent(ctx context.Context, roomID string) ([]domain.Message, error) {
	msgs, err := s.msgRepo.ListRecent(ctx, roomID, domain.ReplayLimit)
	if err != nil {
		logrus.WithField("room_id", roomID).WithError(err).Error("Failed to list recent messages")
		return nil, ErrInternalServer
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}

// AnnounceJoin broadcasts an ephemeral notice; it is not persisted.
func (s *MessageService) AnnounceJoin(roomID, username string) {
	s.announce(roomID, fmt.Sprintf("%s joined the debate", displayName(username)))
}

// AnnounceLeave broadcasts an ephemeral notice; it is not persisted.
func (s *MessageService) AnnounceLeave(roomID, username string) {
	s.announce(roomID, fmt.Sprintf("%s left the debate", displayName(username)))
}

func (s *MessageService) announce(roomID, text string) {
	notice := domain.NewSystemNotice(uuid.NewString(), roomID, text, time.Now().UTC())
	s.broadcaster.BroadcastToRoom(roomID, dto.Event{Event: dto.EventReceiveMessage, RoomID: roomID, Data: notice})
}

func displayName(username string) string {
	if username == "" {
		return "Someone"
	}
	return username
}

// Report acknowledges a report about a message. No moderation queue exists;
// the report is logged for operators.
func (s *MessageService) Report(ctx context.Context, roomID, messageID, reporterID, reason string) error {
	if _, err := s.msgRepo.FindByID(ctx, roomID, messageID); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return ErrInternalServer
	}
	logrus.WithFields(logrus.Fields{
		"room_id":     roomID,
		"message_id":  messageID,
		"reporter_id": reporterID,
		"reason":      reason,
	}).Warn("Message reported")
	return nil
}
