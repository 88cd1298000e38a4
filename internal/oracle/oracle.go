// Package oracle assigns rubric scores to debate arguments.
package oracle

import (
	"context"

	"debate-arena/internal/domain"
)

// Request is what the scorer sees of an argument.
type Request struct {
	Topic    string
	Team     domain.Team
	Argument string
}

// Assessment is the scorer's verdict. Criteria are validated by the caller.
type Assessment struct {
	Criteria domain.Criteria `json:"criteria"`
	Feedback string          `json:"feedback"`
}

// Scorer is the scoring collaborator. Implementations must honour ctx.
type Scorer interface {
	Score(ctx context.Context, req Request) (Assessment, error)
}
