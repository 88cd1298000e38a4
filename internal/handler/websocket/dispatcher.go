package websocket

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"

	"debate-arena/internal/domain"
	"debate-arena/internal/dto"
	"debate-arena/internal/hub"
	"debate-arena/internal/service"
)

// Dispatcher routes inbound session frames to the message log.
type Dispatcher struct {
	hub      *hub.Hub
	messages *service.MessageService
}

func NewDispatcher(h *hub.Hub, messages *service.MessageService) *Dispatcher {
	if h == nil {
		panic("Hub cannot be nil for Dispatcher")
	}
	if messages == nil {
		panic("MessageService cannot be nil for Dispatcher")
	}
	return &Dispatcher{hub: h, messages: messages}
}

// Dispatch implements hub.Dispatcher.
func (d *Dispatcher) Dispatch(ctx context.Context, c *hub.Client, env dto.Envelope) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": c.UserID(), "event": env.Event, "room_id": env.RoomID})
	switch env.Event {
	case dto.EventJoinRoom:
		d.joinRoom(ctx, c, env)
	case dto.EventLeaveRoom:
		d.leaveRoom(c, env)
	case dto.EventSendMessage:
		d.sendMessage(ctx, c, env)
	case dto.EventDeleteMessage:
		d.deleteMessage(ctx, c, env)
	default:
		logCtx.Warn("Unknown event from client")
		d.reject(c, env, "unknown event "+env.Event, "validation")
	}
}

// Disconnected implements hub.Dispatcher.
func (d *Dispatcher) Disconnected(c *hub.Client, roomIDs []string) {
	for _, roomID := range roomIDs {
		d.messages.AnnounceLeave(roomID, c.Username())
	}
}

func roomIDOf(env dto.Envelope, fromData string) string {
	if id := strings.TrimSpace(fromData); id != "" {
		return id
	}
	return strings.TrimSpace(env.RoomID)
}

func (d *Dispatcher) joinRoom(ctx context.Context, c *hub.Client, env dto.Envelope) {
	var req dto.JoinRoomRequest
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &req); err != nil {
			d.reject(c, env, "invalid join_room payload", "validation")
			return
		}
	}
	roomID := roomIDOf(env, req.RoomID)

	// The replay is queued before the session joins, and both happen under
	// the room lock, so previous_messages is always the first room frame
	// and no message falls between the replay and live delivery.
	var (
		joined   bool
		replayed int
	)
	err := d.messages.Replay(ctx, roomID, func(history []domain.Message) {
		c.Send(dto.Event{Event: dto.EventPreviousMessages, RoomID: roomID, Data: history})
		joined = d.hub.Join(c, roomID)
		replayed = len(history)
	})
	if err != nil {
		d.fail(c, env, err)
		return
	}
	if joined {
		d.messages.AnnounceJoin(roomID, c.Username())
	}
	d.ok(c, env, roomID, "")
	logrus.WithFields(logrus.Fields{"user_id": c.UserID(), "room_id": roomID, "replayed": replayed}).Info("Session joined room")
}

func (d *Dispatcher) leaveRoom(c *hub.Client, env dto.Envelope) {
	var req dto.JoinRoomRequest
	if len(env.Data) > 0 {
		_ = json.Unmarshal(env.Data, &req)
	}
	roomID := roomIDOf(env, req.RoomID)
	if d.hub.Leave(c, roomID) {
		d.messages.AnnounceLeave(roomID, c.Username())
	}
	d.ok(c, env, roomID, "")
}

func (d *Dispatcher) sendMessage(ctx context.Context, c *hub.Client, env dto.Envelope) {
	var req dto.SendMessageRequest
	if err := json.Unmarshal(env.Data, &req); err != nil {
		d.reject(c, env, "invalid send_message payload", "validation")
		return
	}
	if req.UserID != "" && req.UserID != c.UserID() {
		logrus.WithFields(logrus.Fields{"user_id": c.UserID(), "claimed": req.UserID}).Warn("Ignoring claimed userId on send_message")
	}
	sender := req.Sender
	if sender == "" {
		sender = c.Username()
	}
	msg, err := d.messages.Send(ctx, service.SendMessageInput{
		RoomID: roomIDOf(env, req.RoomID),
		UserID: c.UserID(),
		Sender: sender,
		Text:   req.Text,
		Image:  req.Image,
		Stance: req.UserStance,
	})
	if err != nil {
		d.fail(c, env, err)
		return
	}
	d.ok(c, env, msg.RoomID, msg.ID)
}

func (d *Dispatcher) deleteMessage(ctx context.Context, c *hub.Client, env dto.Envelope) {
	var req dto.DeleteMessageRequest
	if err := json.Unmarshal(env.Data, &req); err != nil || req.MessageID == "" {
		d.reject(c, env, "invalid delete_message payload", "validation")
		return
	}
	roomID := roomIDOf(env, req.RoomID)
	// The authenticated identity is the requester regardless of requesterId.
	if _, err := d.messages.Delete(ctx, roomID, req.MessageID, c.UserID()); err != nil {
		d.fail(c, env, err)
		return
	}
	d.ok(c, env, roomID, req.MessageID)
}

func (d *Dispatcher) ok(c *hub.Client, env dto.Envelope, roomID, id string) {
	if env.AckID == "" {
		return
	}
	c.Send(dto.Event{Event: dto.EventAck, AckID: env.AckID, RoomID: roomID, Data: dto.Ack{Status: "ok", Success: true, ID: id}})
}

func (d *Dispatcher) fail(c *hub.Client, env dto.Envelope, err error) {
	d.reject(c, env, err.Error(), service.Kind(err))
}

func (d *Dispatcher) reject(c *hub.Client, env dto.Envelope, message, code string) {
	if env.AckID == "" {
		c.Send(dto.Event{Event: dto.EventError, RoomID: env.RoomID, Data: dto.ErrorDTO{Message: message}})
		return
	}
	c.Send(dto.Event{Event: dto.EventAck, AckID: env.AckID, RoomID: env.RoomID, Data: dto.Ack{Status: "error", Error: message, Code: code}})
}
