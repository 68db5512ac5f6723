package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/openmat/ringside/internal/bracket"
	"github.com/openmat/ringside/internal/store"
)

type DivisionService struct {
	db    *sqlx.DB
	store *store.BracketStore
	locks *DivisionLocks
}

func NewDivisionService(db *sqlx.DB, store *store.BracketStore, locks *DivisionLocks) *DivisionService {
	return &DivisionService{db: db, store: store, locks: locks}
}

func (s *DivisionService) CreateDivision(ctx context.Context, name string) (*bracket.Division, error) {
	division := &bracket.Division{
		ID:   uuid.New(),
		Name: name,
	}
	if err := s.store.CreateDivision(ctx, division); err != nil {
		return nil, err
	}
	return division, nil
}

func (s *DivisionService) GetDivisions(ctx context.Context) ([]bracket.Division, error) {
	return s.store.GetDivisions(ctx)
}

func (s *DivisionService) GetDivision(ctx context.Context, id uuid.UUID) (*bracket.Division, error) {
	return s.store.GetDivision(ctx, id.String())
}

func (s *DivisionService) RenameDivision(ctx context.Context, id uuid.UUID, name string) error {
	if _, err := s.store.GetDivision(ctx, id.String()); err != nil {
		return err
	}
	return s.store.RenameDivision(ctx, id.String(), name)
}

// DeleteDivision removes the division with its matches and competitors in a
// single transaction, so a failed delete leaves the bracket fully intact.
func (s *DivisionService) DeleteDivision(ctx context.Context, id uuid.UUID) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if _, err := s.store.GetDivision(ctx, id.String()); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.store.DeleteDivisionTx(ctx, tx, id.String()); err != nil {
		return err
	}

	return tx.Commit()
}

// AddCompetitors registers one competitor per non-blank name, in one batch.
func (s *DivisionService) AddCompetitors(ctx context.Context, divisionID uuid.UUID, names []string) ([]bracket.Competitor, error) {
	if _, err := s.store.GetDivision(ctx, divisionID.String()); err != nil {
		return nil, err
	}

	var competitors []bracket.Competitor
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		competitors = append(competitors, bracket.Competitor{
			ID:         uuid.New(),
			DivisionID: divisionID,
			Name:       name,
		})
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.CreateCompetitors(ctx, tx, competitors); err != nil {
		return nil, err
	}

	return competitors, tx.Commit()
}

func (s *DivisionService) GetCompetitors(ctx context.Context, divisionID uuid.UUID) ([]bracket.Competitor, error) {
	return s.store.GetCompetitors(ctx, divisionID.String())
}

func (s *DivisionService) DeleteCompetitor(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.GetCompetitor(ctx, id.String()); err != nil {
		return err
	}
	return s.store.DeleteCompetitor(ctx, id.String())
}
