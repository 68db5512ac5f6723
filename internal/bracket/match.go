package bracket

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

// Status strings are stored and served verbatim, so printed schedules and the
// bracket view stay compatible.
const (
	MatchPending          MatchStatus = "Pending"
	MatchInProgress       MatchStatus = "In Progress"
	MatchCompleted        MatchStatus = "Completed"
	MatchDisqualification MatchStatus = "Disqualification"
	MatchCompletedBye     MatchStatus = "Completed (Bye)"
)

// Round names counted back from the final. Earlier rounds are labelled
// "Round k".
const (
	RoundFinal        = "Final"
	RoundSemiFinal    = "Semi-Final"
	RoundQuarterFinal = "Quarter-Final"
)

type Match struct {
	ID         uuid.UUID `db:"id"`
	DivisionID uuid.UUID `db:"division_id"`

	// Nullable until the match is scheduled onto a ring
	RingID      *int64 `db:"ring_id"`
	MatchNumber *int64 `db:"match_number"`

	Competitor1ID *uuid.UUID `db:"competitor_1_id"`
	Competitor2ID *uuid.UUID `db:"competitor_2_id"`
	WinnerID      *uuid.UUID `db:"winner_id"`

	// Forward link to the match one round ahead, nil for the final
	NextMatchID *uuid.UUID `db:"next_match_id"`

	RoundName string      `db:"round_name"`
	Status    MatchStatus `db:"status"`

	// Generation order, leaves first. Keeps the flat bracket listing stable
	// without leaning on insertion timestamps.
	Position int `db:"position"`

	CreatedAt time.Time `db:"created_at"`
}

// Decided reports whether the match has reached a terminal state.
// Terminal states never revert.
func (m *Match) Decided() bool {
	switch m.Status {
	case MatchCompleted, MatchDisqualification, MatchCompletedBye:
		return true
	}
	return false
}

// HasCompetitor reports whether id occupies one of the match's two slots.
func (m *Match) HasCompetitor(id uuid.UUID) bool {
	if m.Competitor1ID != nil && *m.Competitor1ID == id {
		return true
	}
	return m.Competitor2ID != nil && *m.Competitor2ID == id
}
