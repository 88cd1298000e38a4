package dto

import (
	"encoding/json"

	"debate-arena/internal/domain"
)

// Event names used on the websocket channel.
const (
	EventJoinRoom          = "join_room"
	EventLeaveRoom         = "leave_room"
	EventSendMessage       = "send_message"
	EventDeleteMessage     = "delete_message"
	EventPreviousMessages  = "previous_messages"
	EventReceiveMessage    = "receive_message"
	EventMessageDeleted    = "message_deleted"
	EventStanceSelected    = "user_stance_selected"
	EventScoreUpdated      = "score_updated"
	EventArgumentEvaluated = "argument_evaluated"
	EventScoreboardUpdated = "scoreboard_updated"
	EventDebateEnded       = "debate_ended"
	EventAIWarning         = "ai_warning"
	EventAIRestricted      = "ai_restricted"
	EventAck               = "ack"
	EventError             = "error"
)

// Envelope is the frame shape in both directions.
type Envelope struct {
	Event  string          `json:"event"`
	AckID  string          `json:"ackId,omitempty"`
	RoomID string          `json:"roomId,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Event is an outgoing server frame.
type Event struct {
	Event  string      `json:"event"`
	AckID  string      `json:"ackId,omitempty"`
	RoomID string      `json:"roomId,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// JoinRoomRequest accepts either {"roomId": ".."} or a bare string.
type JoinRoomRequest struct {
	RoomID string `json:"roomId"`
}

// UnmarshalJSON allows the bare-string form clients commonly send.
func (r *JoinRoomRequest) UnmarshalJSON(b []byte) error {
	var id string
	if err := json.Unmarshal(b, &id); err == nil {
		r.RoomID = id
		return nil
	}
	type plain JoinRoomRequest
	return json.Unmarshal(b, (*plain)(r))
}

type SendMessageRequest struct {
	RoomID     string  `json:"roomId"`
	Text       string  `json:"text"`
	Image      *string `json:"image,omitempty"`
	Sender     string  `json:"sender"`
	UserID     string  `json:"userId"`
	UserStance string  `json:"userStance,omitempty"`
}

type DeleteMessageRequest struct {
	RoomID      string `json:"roomId"`
	MessageID   string `json:"messageId"`
	RequesterID string `json:"requesterId"`
}

// Ack answers a request frame that carried an ackId.
type Ack struct {
	Status  string `json:"status"`
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

type ErrorDTO struct {
	Message string `json:"message"`
}

type ArgumentEvaluatedPayload struct {
	UserID     string      `json:"userId"`
	Username   string      `json:"username"`
	Team       domain.Team `json:"team"`
	TotalScore int         `json:"totalScore"`
	MessageID  string      `json:"messageId,omitempty"`
}

type ScoreboardPayload struct {
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
	Standings   domain.Standings          `json:"standings"`
	Winner      domain.Winner             `json:"winner"`
	Status      domain.DebateStatus       `json:"status"`
	CanEnd      bool                      `json:"canEnd"`
	Reason      string                    `json:"reason,omitempty"`
}

type DebateEndedPayload struct {
	RoomID string              `json:"roomId"`
	Winner domain.Winner       `json:"winner"`
	Stats  domain.DebateResult `json:"stats"`
}

type StrikePayload struct {
	RoomID  string `json:"roomId"`
	Strikes int64  `json:"strikes"`
}
