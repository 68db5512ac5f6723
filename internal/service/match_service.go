package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/openmat/ringside/internal/bracket"
	"github.com/openmat/ringside/internal/store"
)

type MatchService struct {
	db    *sqlx.DB
	store *store.BracketStore
	locks *DivisionLocks
}

func NewMatchService(db *sqlx.DB, store *store.BracketStore, locks *DivisionLocks) *MatchService {
	return &MatchService{db: db, store: store, locks: locks}
}

// ResultData is what a recorded result hands back to the caller: the decided
// match and, when a winner advanced, the downstream match it was placed into.
type ResultData struct {
	Match     *bracket.Match
	NextMatch *bracket.Match
}

// RecordResult applies a status change to a match and, for a decided match
// with a downstream link, places the winner into the next match's first open
// slot. Both writes happen in one transaction under the division lock.
func (s *MatchService) RecordResult(ctx context.Context, matchID uuid.UUID, status bracket.MatchStatus, winnerID *uuid.UUID) (*ResultData, error) {
	// Read once outside the transaction to learn which division to lock.
	peek, err := s.store.GetMatch(ctx, matchID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	unlock := s.locks.Lock(peek.DivisionID)
	defer unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, err := s.store.GetMatchTx(ctx, tx, matchID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	if err := bracket.ApplyResult(match, status, winnerID); err != nil {
		return nil, err
	}

	if err := s.store.UpdateMatchTx(ctx, tx, match); err != nil {
		return nil, fmt.Errorf("failed to update match: %w", err)
	}

	data := &ResultData{Match: match}

	if match.WinnerID != nil && match.NextMatchID != nil {
		nextMatch, err := s.store.GetMatchTx(ctx, tx, match.NextMatchID.String())
		if err != nil {
			return nil, fmt.Errorf("failed to get next match: %w", err)
		}

		bracket.PlaceWinner(nextMatch, *match.WinnerID)

		if err := s.store.UpdateMatchTx(ctx, tx, nextMatch); err != nil {
			return nil, fmt.Errorf("failed to update next match: %w", err)
		}
		data.NextMatch = nextMatch
	}

	return data, tx.Commit()
}

// ScheduleMatch assigns a match to a ring and stamps its visible number,
// ringID*100 + sequence.
func (s *MatchService) ScheduleMatch(ctx context.Context, matchID uuid.UUID, ringID int64, sequence int64) (*bracket.Match, error) {
	if _, err := s.store.GetRing(ctx, ringID); err != nil {
		return nil, fmt.Errorf("failed to get ring: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, err := s.store.GetMatchTx(ctx, tx, matchID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	number := bracket.MatchNumberFor(ringID, sequence)
	match.RingID = &ringID
	match.MatchNumber = &number

	if err := s.store.UpdateMatchTx(ctx, tx, match); err != nil {
		return nil, fmt.Errorf("failed to update match: %w", err)
	}

	return match, tx.Commit()
}
