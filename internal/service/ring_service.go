package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/openmat/ringside/internal/bracket"
	"github.com/openmat/ringside/internal/store"
)

type RingService struct {
	db    *sqlx.DB
	store *store.BracketStore
}

func NewRingService(db *sqlx.DB, store *store.BracketStore) *RingService {
	return &RingService{db: db, store: store}
}

func (s *RingService) CreateRing(ctx context.Context, name string) (*bracket.Ring, error) {
	return s.store.CreateRing(ctx, name)
}

func (s *RingService) GetRings(ctx context.Context) ([]bracket.Ring, error) {
	return s.store.GetRings(ctx)
}

func (s *RingService) DeleteRing(ctx context.Context, id int64) error {
	if _, err := s.store.GetRing(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteRing(ctx, id)
}

// RingMatchData is one scorekeeper card: a playable match on this ring with
// both names resolved.
type RingMatchData struct {
	Match       *bracket.Match
	Competitor1 *bracket.Competitor
	Competitor2 *bracket.Competitor
}

// GetRingSchedule lists a ring's pending and in-progress matches with both
// competitors known, ordered by match number. Matches still waiting on an
// upstream result are left out; the scorekeeper can't call a bout against
// TBD.
func (s *RingService) GetRingSchedule(ctx context.Context, ringID int64) ([]RingMatchData, error) {
	if _, err := s.store.GetRing(ctx, ringID); err != nil {
		return nil, err
	}

	matches, err := s.store.GetRingSchedule(ctx, ringID)
	if err != nil {
		return nil, err
	}

	data := make([]RingMatchData, 0, len(matches))
	for i := range matches {
		m := &matches[i]

		c1, err := s.store.GetCompetitor(ctx, m.Competitor1ID.String())
		if err != nil {
			return nil, fmt.Errorf("failed to get competitor 1: %w", err)
		}
		c2, err := s.store.GetCompetitor(ctx, m.Competitor2ID.String())
		if err != nil {
			return nil, fmt.Errorf("failed to get competitor 2: %w", err)
		}

		data = append(data, RingMatchData{Match: m, Competitor1: c1, Competitor2: c2})
	}

	return data, nil
}
