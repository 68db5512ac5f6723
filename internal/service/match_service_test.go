package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/openmat/ringside/internal/bracket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fourCompetitorBracket generates a clean 4-competitor tree and hands back
// the two round-1 matches and the final.
func fourCompetitorBracket(t *testing.T, env *testEnv) (divisionID uuid.UUID, round1 []*bracket.Match, final *bracket.Match) {
	t.Helper()
	ctx := context.Background()

	divisionID = env.createDivision(t, "Middleweight", []string{"A", "B", "C", "D"})
	_, err := env.brackets.GenerateBracket(ctx, divisionID)
	require.NoError(t, err)

	stored, err := env.store.GetMatches(ctx, divisionID.String())
	require.NoError(t, err)
	require.Len(t, stored, 3)

	for i := range stored {
		if stored[i].RoundName == bracket.RoundFinal {
			final = &stored[i]
		} else {
			round1 = append(round1, &stored[i])
		}
	}
	require.Len(t, round1, 2)
	require.NotNil(t, final)
	return divisionID, round1, final
}

func TestRecordResultAdvancesWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, round1, final := fourCompetitorBracket(t, env)

	winner1 := *round1[0].Competitor1ID
	data, err := env.matches.RecordResult(ctx, round1[0].ID, bracket.MatchCompleted, &winner1)
	require.NoError(t, err)

	assert.Equal(t, bracket.MatchCompleted, data.Match.Status)
	require.NotNil(t, data.NextMatch)
	assert.Equal(t, final.ID, data.NextMatch.ID)

	// First winner lands in slot 1 of the final.
	updatedFinal, err := env.store.GetMatch(ctx, final.ID.String())
	require.NoError(t, err)
	require.NotNil(t, updatedFinal.Competitor1ID)
	assert.Equal(t, winner1, *updatedFinal.Competitor1ID)
	assert.Nil(t, updatedFinal.Competitor2ID)

	// Second winner fills slot 2.
	winner2 := *round1[1].Competitor2ID
	_, err = env.matches.RecordResult(ctx, round1[1].ID, bracket.MatchDisqualification, &winner2)
	require.NoError(t, err)

	updatedFinal, err = env.store.GetMatch(ctx, final.ID.String())
	require.NoError(t, err)
	require.NotNil(t, updatedFinal.Competitor2ID)
	assert.Equal(t, winner2, *updatedFinal.Competitor2ID)

	// Deciding the final advances nowhere but still records the champion.
	finalData, err := env.matches.RecordResult(ctx, final.ID, bracket.MatchCompleted, &winner1)
	require.NoError(t, err)
	assert.Nil(t, finalData.NextMatch)
	require.NotNil(t, finalData.Match.WinnerID)
	assert.Equal(t, winner1, *finalData.Match.WinnerID)
}

func TestRecordResultMissingWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, round1, _ := fourCompetitorBracket(t, env)

	_, err := env.matches.RecordResult(ctx, round1[0].ID, bracket.MatchCompleted, nil)
	assert.ErrorIs(t, err, bracket.ErrMissingWinner)

	// Failed result leaves the match untouched.
	unchanged, err := env.store.GetMatch(ctx, round1[0].ID.String())
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchPending, unchanged.Status)
	assert.Nil(t, unchanged.WinnerID)
}

func TestRecordResultWinnerNotInMatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, round1, _ := fourCompetitorBracket(t, env)

	// A competitor from the other round-1 match is not a valid winner here.
	outsider := *round1[1].Competitor1ID
	_, err := env.matches.RecordResult(ctx, round1[0].ID, bracket.MatchCompleted, &outsider)
	assert.ErrorIs(t, err, bracket.ErrWinnerNotInMatch)
}

func TestRecordResultDoubleSubmit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, round1, final := fourCompetitorBracket(t, env)

	winner := *round1[0].Competitor1ID
	_, err := env.matches.RecordResult(ctx, round1[0].ID, bracket.MatchCompleted, &winner)
	require.NoError(t, err)

	// Resubmitting, even with the same winner, is rejected; the next match
	// must not be double-filled.
	_, err = env.matches.RecordResult(ctx, round1[0].ID, bracket.MatchCompleted, &winner)
	assert.ErrorIs(t, err, bracket.ErrMatchAlreadyDecided)

	updatedFinal, err := env.store.GetMatch(ctx, final.ID.String())
	require.NoError(t, err)
	assert.Equal(t, winner, *updatedFinal.Competitor1ID)
	assert.Nil(t, updatedFinal.Competitor2ID)
}

func TestRecordResultInProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, round1, final := fourCompetitorBracket(t, env)

	data, err := env.matches.RecordResult(ctx, round1[0].ID, bracket.MatchInProgress, nil)
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchInProgress, data.Match.Status)
	assert.Nil(t, data.NextMatch, "starting a match must not advance anyone")

	untouched, err := env.store.GetMatch(ctx, final.ID.String())
	require.NoError(t, err)
	assert.Nil(t, untouched.Competitor1ID)
	assert.Nil(t, untouched.Competitor2ID)
}

func TestRecordResultUnknownMatch(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.matches.RecordResult(context.Background(), uuid.New(), bracket.MatchCompleted, nil)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestScheduleMatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, round1, _ := fourCompetitorBracket(t, env)

	ring, err := env.rings.CreateRing(ctx, "Ring 5")
	require.NoError(t, err)

	match, err := env.matches.ScheduleMatch(ctx, round1[0].ID, ring.ID, 25)
	require.NoError(t, err)

	require.NotNil(t, match.RingID)
	assert.Equal(t, ring.ID, *match.RingID)
	require.NotNil(t, match.MatchNumber)
	assert.Equal(t, ring.ID*100+25, *match.MatchNumber)
}

func TestScheduleMatchUnknownRing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, round1, _ := fourCompetitorBracket(t, env)

	_, err := env.matches.ScheduleMatch(ctx, round1[0].ID, 999, 1)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRingSchedule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, round1, final := fourCompetitorBracket(t, env)

	ring, err := env.rings.CreateRing(ctx, "Ring 1")
	require.NoError(t, err)

	// Schedule the final before the openers; ordering must follow the
	// match number, not insertion order.
	_, err = env.matches.ScheduleMatch(ctx, final.ID, ring.ID, 3)
	require.NoError(t, err)
	_, err = env.matches.ScheduleMatch(ctx, round1[0].ID, ring.ID, 1)
	require.NoError(t, err)
	_, err = env.matches.ScheduleMatch(ctx, round1[1].ID, ring.ID, 2)
	require.NoError(t, err)

	schedule, err := env.rings.GetRingSchedule(ctx, ring.ID)
	require.NoError(t, err)

	// The final has two TBD slots, so only the round-1 matches are playable.
	require.Len(t, schedule, 2)
	assert.Equal(t, round1[0].ID, schedule[0].Match.ID)
	assert.Equal(t, round1[1].ID, schedule[1].Match.ID)
	assert.NotEmpty(t, schedule[0].Competitor1.Name)
	assert.NotEmpty(t, schedule[0].Competitor2.Name)
}
