package domain

import (
	"fmt"
	"time"
)

// DebateStatus is the lifecycle state. The only transition is active -> ended.
type DebateStatus string

const (
	DebateActive DebateStatus = "active"
	DebateEnded  DebateStatus = "ended"
)

// Winner is the outcome recorded on a room.
type Winner string

const (
	WinnerFavor     Winner = "favor"
	WinnerAgainst   Winner = "against"
	WinnerNeutral   Winner = "neutral"
	WinnerTie       Winner = "tie"
	WinnerUndecided Winner = "undecided"
)

// Settings are the per-room lifecycle knobs.
type Settings struct {
	MinArgumentsPerTeam int     `gorm:"not null;default:3" json:"minArgumentsPerTeam"`
	WinMarginThreshold  float64 `gorm:"not null;default:10" json:"winMarginThreshold"` // percent, [0,100]
}

// DefaultSettings is used for rooms created without explicit settings.
func DefaultSettings() Settings {
	return Settings{MinArgumentsPerTeam: 3, WinMarginThreshold: 10}
}

// Validate reports the first out-of-range field.
func (s Settings) Validate() error {
	if s.MinArgumentsPerTeam < 1 {
		return fmt.Errorf("minArgumentsPerTeam must be >= 1, got %d", s.MinArgumentsPerTeam)
	}
	if s.WinMarginThreshold < 0 || s.WinMarginThreshold > 100 {
		return fmt.Errorf("winMarginThreshold must be within [0,100], got %.2f", s.WinMarginThreshold)
	}
	return nil
}

// Room is created by the room CRUD collaborator; the engine only mutates
// IsActive, DebateStatus, Winner and Settings.
type Room struct {
	ID           string       `gorm:"primaryKey;size:64" json:"roomId"`
	Topic        string       `gorm:"type:text" json:"topic"`
	Title        string       `gorm:"size:255" json:"title"`
	CreatorID    string       `gorm:"index;size:64" json:"creatorId"`
	IsActive     bool         `gorm:"not null;default:true" json:"isActive"`
	DebateStatus DebateStatus `gorm:"size:16;not null;default:active;index" json:"debateStatus"`
	Winner       Winner       `gorm:"size:16;not null;default:undecided" json:"winner"`
	Settings     Settings     `gorm:"embedded;embeddedPrefix:setting_" json:"settings"`
	CreatedAt    time.Time    `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time    `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Ended reports whether the lifecycle reached its terminal state.
func (r *Room) Ended() bool { return r.DebateStatus == DebateEnded }

// CanSendMessages is false once the room is deactivated or the debate ended.
func (r *Room) CanSendMessages() bool {
	return r.IsActive && !r.Ended()
}

// Normalize fills zero-valued fields coming from the room collaborator.
func (r *Room) Normalize() {
	if r.DebateStatus == "" {
		r.DebateStatus = DebateActive
	}
	if r.Winner == "" {
		r.Winner = WinnerUndecided
	}
	if r.Settings.MinArgumentsPerTeam == 0 && r.Settings.WinMarginThreshold == 0 {
		r.Settings = DefaultSettings()
	}
}
