package service

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/openmat/ringside/internal/bracket"
	"github.com/openmat/ringside/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")

	// One connection, or the pool would hand tests a fresh empty memory DB
	database.SetMaxOpenConns(1)

	_, err = database.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"sqlite3",
		driver,
	)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}

	return database
}

type testEnv struct {
	db        *sqlx.DB
	store     *store.BracketStore
	brackets  *BracketService
	matches   *MatchService
	divisions *DivisionService
	rings     *RingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	t.Cleanup(func() { db.Close() })

	bracketStore := store.NewBracketStore(db)
	locks := NewDivisionLocks()

	brackets := NewBracketService(db, bracketStore, locks)
	brackets.newRand = func() *rand.Rand { return rand.New(rand.NewSource(7)) }

	return &testEnv{
		db:        db,
		store:     bracketStore,
		brackets:  brackets,
		matches:   NewMatchService(db, bracketStore, locks),
		divisions: NewDivisionService(db, bracketStore, locks),
		rings:     NewRingService(db, bracketStore),
	}
}

func (e *testEnv) createDivision(t *testing.T, name string, competitorNames []string) uuid.UUID {
	t.Helper()

	division, err := e.divisions.CreateDivision(context.Background(), name)
	require.NoError(t, err)

	if len(competitorNames) > 0 {
		_, err = e.divisions.AddCompetitors(context.Background(), division.ID, competitorNames)
		require.NoError(t, err)
	}
	return division.ID
}

func TestGenerateBracket(t *testing.T) {
	testCases := []struct {
		name               string
		competitorNames    []string
		expectedMatchCount int
		expectedByeCount   int
		expectedErr        error
	}{
		{
			name:               "4 competitors, no byes",
			competitorNames:    []string{"A", "B", "C", "D"},
			expectedMatchCount: 3,
			expectedByeCount:   0,
		},
		{
			name:               "5 competitors, 3 byes",
			competitorNames:    []string{"A", "B", "C", "D", "E"},
			expectedMatchCount: 7,
			expectedByeCount:   3,
		},
		{
			name:               "2 competitors, straight final",
			competitorNames:    []string{"A", "B"},
			expectedMatchCount: 1,
			expectedByeCount:   0,
		},
		{
			name:            "1 competitor fails",
			competitorNames: []string{"A"},
			expectedErr:     bracket.ErrInsufficientCompetitors,
		},
		{
			name:            "no competitors fails",
			competitorNames: nil,
			expectedErr:     bracket.ErrInsufficientCompetitors,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()

			divisionID := env.createDivision(t, "Test Division", tc.competitorNames)

			matches, err := env.brackets.GenerateBracket(ctx, divisionID)

			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)

				// Failed generation must leave no partial tree behind.
				count, err := env.store.CountMatches(ctx, divisionID.String())
				require.NoError(t, err)
				assert.Zero(t, count)
				return
			}
			require.NoError(t, err)
			assert.Len(t, matches, tc.expectedMatchCount)

			stored, err := env.store.GetMatches(ctx, divisionID.String())
			require.NoError(t, err)
			require.Len(t, stored, tc.expectedMatchCount)

			byes := 0
			for _, m := range stored {
				if m.Status == bracket.MatchCompletedBye {
					byes++
				}
			}
			assert.Equal(t, tc.expectedByeCount, byes)
		})
	}
}

func TestGenerateBracketTwiceFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	divisionID := env.createDivision(t, "Heavyweight", []string{"A", "B", "C", "D"})

	_, err := env.brackets.GenerateBracket(ctx, divisionID)
	require.NoError(t, err)

	_, err = env.brackets.GenerateBracket(ctx, divisionID)
	assert.ErrorIs(t, err, bracket.ErrBracketExists)

	count, err := env.store.CountMatches(ctx, divisionID.String())
	require.NoError(t, err)
	assert.Equal(t, 3, count, "second attempt must not add matches")
}

func TestGenerateBracketUnknownDivision(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.brackets.GenerateBracket(context.Background(), uuid.New())
	assert.Error(t, err)
}

// Three competitors: bracket size 4, one bye auto-completed. Recording the
// remaining round-1 result must produce a final with both slots occupied.
func TestThreeCompetitorScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	divisionID := env.createDivision(t, "Lightweight", []string{"A", "B", "C"})

	_, err := env.brackets.GenerateBracket(ctx, divisionID)
	require.NoError(t, err)

	stored, err := env.store.GetMatches(ctx, divisionID.String())
	require.NoError(t, err)
	require.Len(t, stored, 3)

	var bye, playable, final *bracket.Match
	for i := range stored {
		m := &stored[i]
		switch {
		case m.Status == bracket.MatchCompletedBye:
			bye = m
		case m.RoundName == bracket.RoundFinal:
			final = m
		default:
			playable = m
		}
	}
	require.NotNil(t, bye)
	require.NotNil(t, playable)
	require.NotNil(t, final)

	// The bye winner was pushed into the final at generation time.
	assert.True(t, final.HasCompetitor(*bye.WinnerID))

	winnerID := *playable.Competitor1ID
	data, err := env.matches.RecordResult(ctx, playable.ID, bracket.MatchCompleted, &winnerID)
	require.NoError(t, err)
	require.NotNil(t, data.NextMatch)
	assert.Equal(t, final.ID, data.NextMatch.ID)

	updatedFinal, err := env.store.GetMatch(ctx, final.ID.String())
	require.NoError(t, err)
	assert.NotNil(t, updatedFinal.Competitor1ID)
	assert.NotNil(t, updatedFinal.Competitor2ID)
	assert.True(t, updatedFinal.HasCompetitor(winnerID))
	assert.True(t, updatedFinal.HasCompetitor(*bye.WinnerID))
}

func TestGetBracketData(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	names := []string{"Ana", "Bogdan", "Chiara", "Dara"}
	divisionID := env.createDivision(t, "Featherweight", names)

	_, err := env.brackets.GenerateBracket(ctx, divisionID)
	require.NoError(t, err)

	views, err := env.brackets.GetBracketData(ctx, divisionID)
	require.NoError(t, err)
	require.Len(t, views, 3)

	// Leaves first, final last.
	assert.Equal(t, "Round 1", views[0].RoundName)
	assert.Equal(t, "Round 1", views[1].RoundName)
	assert.Equal(t, bracket.RoundFinal, views[2].RoundName)

	seen := make(map[string]bool)
	for _, v := range views[:2] {
		require.NotNil(t, v.Competitor1)
		require.NotNil(t, v.Competitor2)
		seen[v.Competitor1.Name] = true
		seen[v.Competitor2.Name] = true
		assert.Nil(t, v.Winner)
		assert.Nil(t, v.WinnerID)
		require.NotNil(t, v.NextMatchID)
		assert.Equal(t, views[2].MatchID, *v.NextMatchID)
	}
	for _, n := range names {
		assert.Truef(t, seen[n], "competitor %s missing from round 1", n)
	}

	assert.Nil(t, views[2].NextMatchID)
}

func TestDeleteDivisionCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	divisionID := env.createDivision(t, "Doomed", []string{"A", "B", "C"})
	_, err := env.brackets.GenerateBracket(ctx, divisionID)
	require.NoError(t, err)

	require.NoError(t, env.divisions.DeleteDivision(ctx, divisionID))

	for _, table := range []string{"divisions", "competitors", "matches"} {
		var count int
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ? OR division_id = ?", table)
		if table == "divisions" {
			query = "SELECT COUNT(*) FROM divisions WHERE id = ?"
			err = env.db.Get(&count, query, divisionID)
		} else {
			err = env.db.Get(&count, query, divisionID, divisionID)
		}
		require.NoError(t, err)
		assert.Zerof(t, count, "%s rows should be gone", table)
	}
}
