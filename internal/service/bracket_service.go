package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/openmat/ringside/internal/bracket"
	"github.com/openmat/ringside/internal/store"
)

// BracketService generates and reads a division's bracket. Generation and
// result recording for the same division share the locks table, so the two
// mutations never interleave.
type BracketService struct {
	db      *sqlx.DB
	store   *store.BracketStore
	locks   *DivisionLocks
	newRand func() *rand.Rand
}

func NewBracketService(db *sqlx.DB, store *store.BracketStore, locks *DivisionLocks) *BracketService {
	return &BracketService{
		db:    db,
		store: store,
		locks: locks,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// CompetitorView is the resolved display form of a slot occupant.
type CompetitorView struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// MatchView is one entry of the flat bracket listing. Field names are the
// serialization contract rendering layers depend on; don't rename them.
type MatchView struct {
	MatchID     uuid.UUID           `json:"match_id"`
	RoundName   string              `json:"round_name"`
	Status      bracket.MatchStatus `json:"status"`
	RingID      *int64              `json:"ring_id"`
	MatchNumber *int64              `json:"match_number"`
	NextMatchID *uuid.UUID          `json:"next_match_id"`
	Competitor1 *CompetitorView     `json:"competitor1"`
	Competitor2 *CompetitorView     `json:"competitor2"`
	Winner      *CompetitorView     `json:"winner"`
	WinnerID    *uuid.UUID          `json:"winner_id"`
}

// GenerateBracket builds and commits the full match tree for a division as a
// single unit. Nothing is written when the division is missing, already has
// a bracket, or has fewer than 2 competitors.
func (s *BracketService) GenerateBracket(ctx context.Context, divisionID uuid.UUID) ([]bracket.Match, error) {
	unlock := s.locks.Lock(divisionID)
	defer unlock()

	if _, err := s.store.GetDivision(ctx, divisionID.String()); err != nil {
		return nil, err
	}

	existing, err := s.store.CountMatches(ctx, divisionID.String())
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, bracket.ErrBracketExists
	}

	competitors, err := s.store.GetCompetitors(ctx, divisionID.String())
	if err != nil {
		return nil, err
	}

	matches, err := bracket.BuildBracket(divisionID, competitors, s.newRand())
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.CreateMatches(ctx, tx, matches); err != nil {
		return nil, err
	}

	return matches, tx.Commit()
}

// GetBracketData returns the flat bracket listing with competitor names
// resolved, leaves first.
func (s *BracketService) GetBracketData(ctx context.Context, divisionID uuid.UUID) ([]MatchView, error) {
	matches, err := s.store.GetMatches(ctx, divisionID.String())
	if err != nil {
		return nil, err
	}

	competitors, err := s.store.GetCompetitors(ctx, divisionID.String())
	if err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string, len(competitors))
	for _, c := range competitors {
		names[c.ID] = c.Name
	}

	resolve := func(id *uuid.UUID) *CompetitorView {
		if id == nil {
			return nil
		}
		return &CompetitorView{ID: *id, Name: names[*id]}
	}

	views := make([]MatchView, 0, len(matches))
	for _, m := range matches {
		views = append(views, MatchView{
			MatchID:     m.ID,
			RoundName:   m.RoundName,
			Status:      m.Status,
			RingID:      m.RingID,
			MatchNumber: m.MatchNumber,
			NextMatchID: m.NextMatchID,
			Competitor1: resolve(m.Competitor1ID),
			Competitor2: resolve(m.Competitor2ID),
			Winner:      resolve(m.WinnerID),
			WinnerID:    m.WinnerID,
		})
	}

	return views, nil
}
