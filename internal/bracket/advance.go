package bracket

import "github.com/google/uuid"

// ApplyResult moves a match through its forward-only state machine:
// Pending -> In Progress -> {Completed, Disqualification}. A bye match is
// decided at construction and can never receive a result here.
//
// An In Progress transition needs no winner and touches nothing else.
// Completed and Disqualification require a winner who occupies one of the
// match's two slots. The match is left untouched on any error.
func ApplyResult(m *Match, status MatchStatus, winnerID *uuid.UUID) error {
	switch status {
	case MatchInProgress:
		if m.Decided() {
			return ErrMatchAlreadyDecided
		}
		m.Status = MatchInProgress
		return nil

	case MatchCompleted, MatchDisqualification:
		if m.Decided() {
			return ErrMatchAlreadyDecided
		}
		if winnerID == nil {
			return ErrMissingWinner
		}
		if !m.HasCompetitor(*winnerID) {
			return ErrWinnerNotInMatch
		}
		m.Status = status
		m.WinnerID = winnerID
		return nil
	}

	return ErrInvalidStatus
}

// PlaceWinner writes the winner into the next match's first empty slot,
// slot 1 before slot 2. Returns false when both slots are already occupied,
// which cannot happen for a well-formed tree as long as results are guarded
// by ApplyResult.
func PlaceWinner(next *Match, winnerID uuid.UUID) bool {
	if next.Competitor1ID == nil {
		next.Competitor1ID = &winnerID
		return true
	}
	if next.Competitor2ID == nil {
		next.Competitor2ID = &winnerID
		return true
	}
	return false
}
