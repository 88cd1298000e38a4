package domain

import (
	"sort"
	"time"
)

// MessageKind tags the two variants stored in one room log.
type MessageKind string

const (
	KindUser   MessageKind = "user"
	KindSystem MessageKind = "system"
)

const (
	// DeletedPlaceholder replaces the text of a soft-deleted message.
	DeletedPlaceholder = "This message was deleted"
	// SystemSender is the sender name stamped on system notices.
	SystemSender = "system"
	// MaxImageBytes bounds the encoded image reference carried by a message.
	MaxImageBytes = 2 << 20
	// MaxTextLength bounds message text in bytes.
	MaxTextLength = 4000
	// ReplayLimit is how many messages a joining session receives.
	ReplayLimit = 50
)

// Message is one entry of a room's append-only log. Seq is the insertion
// sequence used to break ties between equal timestamps.
type Message struct {
	Seq       uint64      `gorm:"primaryKey;autoIncrement" json:"seq"`
	ID        string      `gorm:"uniqueIndex;size:64;not null" json:"id"`
	RoomID    string      `gorm:"index:idx_message_room_time;size:64;not null" json:"roomId"`
	Kind      MessageKind `gorm:"size:16;not null" json:"kind"`
	Sender    string      `gorm:"size:191" json:"sender"`
	UserID    string      `gorm:"size:64;index" json:"userId,omitempty"`
	Stance    Team        `gorm:"size:16" json:"userStance,omitempty"`
	Text      string      `gorm:"type:text" json:"text"`
	Image     *string     `gorm:"type:mediumtext" json:"image"`
	Time      time.Time   `gorm:"index:idx_message_room_time;not null" json:"time"`
	IsDeleted bool        `gorm:"not null;default:false" json:"isDeleted"`
	DeletedAt *time.Time  `json:"deletedAt,omitempty"`
	DeletedBy string      `gorm:"size:64" json:"deletedBy,omitempty"`
}

// IsSystem reports whether the entry is a system notice.
func (m *Message) IsSystem() bool { return m.Kind == KindSystem }

// SoftDelete replaces the content in place; the row itself is kept.
func (m *Message) SoftDelete(by string, at time.Time) {
	m.Text = DeletedPlaceholder
	m.Image = nil
	m.IsDeleted = true
	m.DeletedAt = &at
	m.DeletedBy = by
}

// NewSystemNotice builds a system entry for a room.
func NewSystemNotice(id, roomID, text string, at time.Time) Message {
	return Message{
		ID:     id,
		RoomID: roomID,
		Kind:   KindSystem,
		Sender: SystemSender,
		Text:   text,
		Time:   at,
	}
}

// SortChronological orders by time, then insertion sequence.
func SortChronological(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].Time.Equal(msgs[j].Time) {
			return msgs[i].Time.Before(msgs[j].Time)
		}
		return msgs[i].Seq < msgs[j].Seq
	})
}
