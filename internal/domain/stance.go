package domain

import (
	"fmt"
	"strings"
	"time"
)

// Team is the side a participant argues for.
type Team string

const (
	TeamFavor   Team = "favor"
	TeamAgainst Team = "against"
	TeamNeutral Team = "neutral"
)

// Teams lists every team in display order.
var Teams = []Team{TeamFavor, TeamAgainst, TeamNeutral}

// ParseTeam accepts the enum value case-insensitively.
func ParseTeam(raw string) (Team, error) {
	switch t := Team(strings.ToLower(strings.TrimSpace(raw))); t {
	case TeamFavor, TeamAgainst, TeamNeutral:
		return t, nil
	default:
		return "", fmt.Errorf("unknown team %q", raw)
	}
}

// Stance is written once per (room, user) and never updated.
type Stance struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	RoomID     string    `gorm:"size:64;not null;uniqueIndex:idx_stance_room_user" json:"roomId"`
	UserID     string    `gorm:"size:64;not null;uniqueIndex:idx_stance_room_user" json:"userId"`
	Username   string    `gorm:"size:191" json:"username"`
	Team       Team      `gorm:"size:16;not null" json:"stance"`
	SelectedAt time.Time `gorm:"not null" json:"selectedAt"`
}
