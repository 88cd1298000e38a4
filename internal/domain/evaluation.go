package domain

import (
	"fmt"
	"time"
)

const (
	MinCriterionScore = 1
	MaxCriterionScore = 10
)

// Criteria holds the six rubric scores, each in [1,10].
type Criteria struct {
	Clarity        int `gorm:"not null" json:"clarity"`
	Relevance      int `gorm:"not null" json:"relevance"`
	Logic          int `gorm:"not null" json:"logic"`
	Evidence       int `gorm:"not null" json:"evidence"`
	Persuasiveness int `gorm:"not null" json:"persuasiveness"`
	Rebuttal       int `gorm:"not null" json:"rebuttal"`
}

// Total is the sum of all criteria, 6..60 for valid criteria.
func (c Criteria) Total() int {
	return c.Clarity + c.Relevance + c.Logic + c.Evidence + c.Persuasiveness + c.Rebuttal
}

// Validate rejects any criterion outside [1,10].
func (c Criteria) Validate() error {
	named := []struct {
		name  string
		value int
	}{
		{"clarity", c.Clarity},
		{"relevance", c.Relevance},
		{"logic", c.Logic},
		{"evidence", c.Evidence},
		{"persuasiveness", c.Persuasiveness},
		{"rebuttal", c.Rebuttal},
	}
	for _, n := range named {
		if n.value < MinCriterionScore || n.value > MaxCriterionScore {
			return fmt.Errorf("criterion %s out of range: %d", n.name, n.value)
		}
	}
	return nil
}

// Evaluation is created once per accepted argument and never modified.
type Evaluation struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RoomID       string    `gorm:"index:idx_eval_room_time;size:64;not null" json:"roomId"`
	UserID       string    `gorm:"size:64;not null;index" json:"userId"`
	Username     string    `gorm:"size:191" json:"username"`
	Team         Team      `gorm:"size:16;not null" json:"team"`
	MessageID    string    `gorm:"size:64" json:"messageId,omitempty"`
	Argument     string    `gorm:"type:text;not null" json:"argument"`
	Criteria     Criteria  `gorm:"embedded" json:"criteria"`
	TotalScore   int       `gorm:"not null" json:"totalScore"`
	Feedback     string    `gorm:"type:text" json:"feedback"`
	AIConfidence float64   `gorm:"not null;default:0" json:"aiConfidence"`
	EvaluatedAt  time.Time `gorm:"index:idx_eval_room_time;not null" json:"evaluatedAt"`
}
