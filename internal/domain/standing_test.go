package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandings_ApplyFoldsIncrementally(t *testing.T) {
	s := NewStandings()
	s.Apply(Evaluation{UserID: "u1", Team: TeamFavor, TotalScore: 30})
	s.Apply(Evaluation{UserID: "u2", Team: TeamFavor, TotalScore: 45})
	s.Apply(Evaluation{UserID: "u1", Team: TeamFavor, TotalScore: 15})
	s.Apply(Evaluation{UserID: "u9", Team: Team("bogus"), TotalScore: 60})

	assert.Equal(t, 90, s.Favor.TotalPoints)
	assert.Equal(t, 3, s.Favor.ArgumentCount)
	assert.InDelta(t, 30.0, s.Favor.AverageScore, 1e-9)
	assert.Equal(t, []string{"u1", "u2"}, s.Favor.Participants)
	assert.Equal(t, 3, s.TotalArguments())
}

func TestStandings_CloneIsIndependent(t *testing.T) {
	s := NewStandings()
	s.Apply(Evaluation{UserID: "u1", Team: TeamAgainst, TotalScore: 10})
	c := s.Clone()
	c.Apply(Evaluation{UserID: "u2", Team: TeamAgainst, TotalScore: 10})

	assert.Equal(t, 1, s.Against.ArgumentCount)
	assert.Equal(t, []string{"u1"}, s.Against.Participants)
	assert.Equal(t, 2, c.Against.ParticipantCount())
}

func TestRebuildStandingsEqualsIncremental(t *testing.T) {
	evals := []Evaluation{
		{UserID: "a", Team: TeamFavor, TotalScore: 12},
		{UserID: "b", Team: TeamNeutral, TotalScore: 33},
		{UserID: "a", Team: TeamFavor, TotalScore: 41},
	}
	inc := NewStandings()
	for _, e := range evals {
		inc.Apply(e)
	}
	rebuilt := RebuildStandings(evals)
	assert.Equal(t, inc.Clone(), rebuilt.Clone())
}

func TestLeaderboard_Ranked(t *testing.T) {
	lb := RebuildLeaderboard([]Evaluation{
		{UserID: "a", Username: "ann", Team: TeamFavor, TotalScore: 20},
		{UserID: "b", Username: "ben", Team: TeamAgainst, TotalScore: 30},
		{UserID: "c", Username: "cat", Team: TeamAgainst, TotalScore: 10},
		{UserID: "a", Username: "ann", Team: TeamFavor, TotalScore: 10},
	})
	ranked := lb.Ranked()
	if assert.Len(t, ranked, 3) {
		assert.Equal(t, "a", ranked[0].UserID, "ties go to the earlier scorer")
		assert.Equal(t, "b", ranked[1].UserID)
		assert.Equal(t, 2, ranked[0].Arguments)
		assert.InDelta(t, 15.0, ranked[0].AverageScore, 1e-9)
	}
	assert.Empty(t, (&Leaderboard{}).Ranked())
}
