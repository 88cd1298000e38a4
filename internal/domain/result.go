package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// TeamStat is the per-team view returned by the eligibility check.
type TeamStat struct {
	Team         Team    `json:"team"`
	Participants int     `json:"participants"`
	Arguments    int     `json:"arguments"`
	AverageScore float64 `json:"averageScore"`
	Required     int     `json:"required"`
	Shortfall    int     `json:"shortfall"`
	Contesting   bool    `json:"contesting"`
}

// Eligibility is the outcome of the end-eligibility rule.
type Eligibility struct {
	CanEnd         bool       `json:"canEnd"`
	Reason         string     `json:"reason"`
	TeamStats      []TeamStat `json:"teamStats"`
	TotalArguments int        `json:"totalArguments"`
}

// CheckEligibility requires at least two contesting teams and every
// contesting team to have reached MinArgumentsPerTeam. Teams nobody argued
// for are exempt.
func CheckEligibility(s Standings, settings Settings) Eligibility {
	out := Eligibility{TotalArguments: s.TotalArguments()}
	contesting := 0
	var shortfalls []string
	for _, ts := range s.All() {
		stat := TeamStat{
			Team:         ts.Team,
			Participants: ts.ParticipantCount(),
			Arguments:    ts.ArgumentCount,
			AverageScore: ts.AverageScore,
			Required:     settings.MinArgumentsPerTeam,
			Contesting:   ts.ParticipantCount() > 0,
		}
		if stat.Contesting {
			contesting++
			if ts.ArgumentCount < settings.MinArgumentsPerTeam {
				stat.Shortfall = settings.MinArgumentsPerTeam - ts.ArgumentCount
				shortfalls = append(shortfalls, fmt.Sprintf("%s needs %d more argument(s) (%d/%d)",
					ts.Team, stat.Shortfall, ts.ArgumentCount, settings.MinArgumentsPerTeam))
			}
		}
		out.TeamStats = append(out.TeamStats, stat)
	}

	switch {
	case contesting < 2:
		out.Reason = fmt.Sprintf("insufficient teams: at least 2 teams must participate (%d participating)", contesting)
	case len(shortfalls) > 0:
		out.Reason = strings.Join(shortfalls, "; ")
	default:
		out.CanEnd = true
		out.Reason = fmt.Sprintf("all participating teams reached %d argument(s)", settings.MinArgumentsPerTeam)
	}
	return out
}

// DecideWinner ranks teams with at least one argument by average score.
// The margin is the gap between the top two averages as a percentage of
// the runner-up's average; below the threshold the result is a tie.
func DecideWinner(s Standings, settings Settings) (Winner, float64) {
	var contenders []TeamStanding
	for _, ts := range s.All() {
		if ts.ArgumentCount > 0 {
			contenders = append(contenders, ts)
		}
	}
	sort.SliceStable(contenders, func(i, j int) bool {
		return contenders[i].AverageScore > contenders[j].AverageScore
	})

	switch len(contenders) {
	case 0:
		return WinnerUndecided, 0
	case 1:
		return Winner(contenders[0].Team), 100
	}

	top, second := contenders[0], contenders[1]
	if top.AverageScore == second.AverageScore {
		return WinnerTie, 0
	}
	// Compare the unrounded gap; rounding applies to the reported value only.
	raw := (top.AverageScore - second.AverageScore) / second.AverageScore * 100
	if raw < settings.WinMarginThreshold {
		return WinnerTie, roundPercent(raw)
	}
	return Winner(top.Team), roundPercent(raw)
}

func roundPercent(v float64) float64 {
	return math.Round(v*100) / 100
}

// Award names the user behind one of the end-of-debate distinctions.
type Award struct {
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	Team         Team   `json:"team"`
	Value        int    `json:"value"`
	EvaluationID uint   `json:"evaluationId,omitempty"`
	Argument     string `json:"argument,omitempty"`
}

// Awards are nil when no evaluations exist.
type Awards struct {
	BestArgument   *Award `json:"bestArgument"`
	MostPersuasive *Award `json:"mostPersuasive"`
	MostActive     *Award `json:"mostActive"`
}

func evaluatedBefore(a, b Evaluation) bool {
	if !a.EvaluatedAt.Equal(b.EvaluatedAt) {
		return a.EvaluatedAt.Before(b.EvaluatedAt)
	}
	return a.ID < b.ID
}

// ComputeAwards scans the full evaluation set. Ties go to the earliest
// evaluation; for mostActive, to the user whose first evaluation came first.
func ComputeAwards(evals []Evaluation) Awards {
	var awards Awards
	if len(evals) == 0 {
		return awards
	}

	var best, persuasive *Evaluation
	counts := make(map[string]int)
	first := make(map[string]Evaluation)
	for i := range evals {
		e := &evals[i]
		if best == nil || e.TotalScore > best.TotalScore ||
			(e.TotalScore == best.TotalScore && evaluatedBefore(*e, *best)) {
			best = e
		}
		if persuasive == nil || e.Criteria.Persuasiveness > persuasive.Criteria.Persuasiveness ||
			(e.Criteria.Persuasiveness == persuasive.Criteria.Persuasiveness && evaluatedBefore(*e, *persuasive)) {
			persuasive = e
		}
		counts[e.UserID]++
		if f, ok := first[e.UserID]; !ok || evaluatedBefore(*e, f) {
			first[e.UserID] = *e
		}
	}

	awards.BestArgument = &Award{
		UserID: best.UserID, Username: best.Username, Team: best.Team,
		Value: best.TotalScore, EvaluationID: best.ID, Argument: best.Argument,
	}
	awards.MostPersuasive = &Award{
		UserID: persuasive.UserID, Username: persuasive.Username, Team: persuasive.Team,
		Value: persuasive.Criteria.Persuasiveness, EvaluationID: persuasive.ID, Argument: persuasive.Argument,
	}

	var activeUser string
	for userID, n := range counts {
		if activeUser == "" || n > counts[activeUser] ||
			(n == counts[activeUser] && evaluatedBefore(first[userID], first[activeUser])) {
			activeUser = userID
		}
	}
	f := first[activeUser]
	awards.MostActive = &Award{UserID: activeUser, Username: f.Username, Team: f.Team, Value: counts[activeUser]}
	return awards
}

// DebateResult is stored once per room when the debate ends.
type DebateResult struct {
	ID              uint               `gorm:"primaryKey" json:"-"`
	RoomID          string             `gorm:"uniqueIndex;size:64;not null" json:"roomId"`
	WinningTeam     Winner             `gorm:"size:16;not null" json:"winner"`
	MarginOfVictory float64            `gorm:"not null" json:"marginOfVictory"`
	TotalArguments  int                `gorm:"not null" json:"totalArguments"`
	Standings       Standings          `gorm:"serializer:json;type:json" json:"standings"`
	Leaderboard     []LeaderboardEntry `gorm:"serializer:json;type:json" json:"leaderboard"`
	Awards          Awards             `gorm:"serializer:json;type:json" json:"awards"`
	EndedBy         string             `gorm:"size:64" json:"endedBy"`
	Reason          string             `gorm:"type:text" json:"reason,omitempty"`
	CalculatedAt    time.Time          `gorm:"not null" json:"calculatedAt"`
}

// NewDebateResult computes the winner, margin and awards for a room that
// is about to end.
func NewDebateResult(roomID string, s Standings, lb []LeaderboardEntry, settings Settings, evals []Evaluation, endedBy, reason string, at time.Time) DebateResult {
	winner, margin := DecideWinner(s, settings)
	return DebateResult{
		RoomID:          roomID,
		WinningTeam:     winner,
		MarginOfVictory: margin,
		TotalArguments:  s.TotalArguments(),
		Standings:       s.Clone(),
		Leaderboard:     lb,
		Awards:          ComputeAwards(evals),
		EndedBy:         endedBy,
		Reason:          reason,
		CalculatedAt:    at,
	}
}
