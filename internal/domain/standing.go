package domain

import "sort"

// TeamStanding is the running aggregate for one team in one room.
type TeamStanding struct {
	Team          Team     `json:"team"`
	TotalPoints   int      `json:"totalPoints"`
	ArgumentCount int      `json:"argumentCount"`
	AverageScore  float64  `json:"averageScore"`
	Participants  []string `json:"participants"`

	members map[string]struct{}
}

// ParticipantCount is the number of distinct users who argued for the team.
func (t *TeamStanding) ParticipantCount() int { return len(t.Participants) }

// Fold applies one evaluation in O(1).
func (t *TeamStanding) Fold(userID string, totalScore int) {
	t.TotalPoints += totalScore
	t.ArgumentCount++
	if t.members == nil {
		t.members = make(map[string]struct{}, len(t.Participants)+1)
		for _, p := range t.Participants {
			t.members[p] = struct{}{}
		}
	}
	if _, ok := t.members[userID]; !ok {
		t.members[userID] = struct{}{}
		t.Participants = append(t.Participants, userID)
	}
	t.AverageScore = float64(t.TotalPoints) / float64(t.ArgumentCount)
}

func (t TeamStanding) clone() TeamStanding {
	c := t
	c.Participants = append([]string(nil), t.Participants...)
	c.members = nil
	return c
}

// Standings groups the three team aggregates of a room.
type Standings struct {
	Favor   TeamStanding `json:"favor"`
	Against TeamStanding `json:"against"`
	Neutral TeamStanding `json:"neutral"`
}

// NewStandings returns zeroed standings with team labels set.
func NewStandings() Standings {
	return Standings{
		Favor:   TeamStanding{Team: TeamFavor, Participants: []string{}},
		Against: TeamStanding{Team: TeamAgainst, Participants: []string{}},
		Neutral: TeamStanding{Team: TeamNeutral, Participants: []string{}},
	}
}

// For returns the mutable standing of a team, nil for an unknown team.
func (s *Standings) For(team Team) *TeamStanding {
	switch team {
	case TeamFavor:
		return &s.Favor
	case TeamAgainst:
		return &s.Against
	case TeamNeutral:
		return &s.Neutral
	}
	return nil
}

// Apply folds an evaluation into its team.
func (s *Standings) Apply(e Evaluation) {
	if ts := s.For(e.Team); ts != nil {
		ts.Fold(e.UserID, e.TotalScore)
	}
}

// All returns the team standings in display order.
func (s Standings) All() []TeamStanding {
	return []TeamStanding{s.Favor, s.Against, s.Neutral}
}

// TotalArguments sums argument counts over every team.
func (s Standings) TotalArguments() int {
	return s.Favor.ArgumentCount + s.Against.ArgumentCount + s.Neutral.ArgumentCount
}

// Clone returns a copy that shares no memory with s.
func (s Standings) Clone() Standings {
	return Standings{
		Favor:   s.Favor.clone(),
		Against: s.Against.clone(),
		Neutral: s.Neutral.clone(),
	}
}

// RebuildStandings folds a full evaluation set from scratch.
func RebuildStandings(evals []Evaluation) Standings {
	s := NewStandings()
	for _, e := range evals {
		s.Apply(e)
	}
	return s
}

// LeaderboardEntry is the per-user aggregate shown on the scoreboard.
type LeaderboardEntry struct {
	UserID       string  `json:"userId"`
	Username     string  `json:"username"`
	Team         Team    `json:"team"`
	TotalScore   int     `json:"totalScore"`
	Arguments    int     `json:"arguments"`
	AverageScore float64 `json:"averageScore"`

	order int
}

// Leaderboard folds evaluations per user. The zero value is ready to use.
type Leaderboard struct {
	entries map[string]*LeaderboardEntry
}

// Apply folds one evaluation in O(1).
func (l *Leaderboard) Apply(e Evaluation) {
	if l.entries == nil {
		l.entries = make(map[string]*LeaderboardEntry)
	}
	entry, ok := l.entries[e.UserID]
	if !ok {
		entry = &LeaderboardEntry{UserID: e.UserID, Username: e.Username, Team: e.Team, order: len(l.entries)}
		l.entries[e.UserID] = entry
	}
	entry.TotalScore += e.TotalScore
	entry.Arguments++
	entry.AverageScore = float64(entry.TotalScore) / float64(entry.Arguments)
}

// Ranked returns entries by total score, ties by who scored first.
func (l *Leaderboard) Ranked() []LeaderboardEntry {
	out := make([]LeaderboardEntry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		return out[i].order < out[j].order
	})
	return out
}

// RebuildLeaderboard folds a full evaluation set, which must be in evaluation order.
func RebuildLeaderboard(evals []Evaluation) *Leaderboard {
	l := &Leaderboard{}
	for _, e := range evals {
		l.Apply(e)
	}
	return l
}
