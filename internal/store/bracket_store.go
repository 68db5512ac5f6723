package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/openmat/ringside/internal/bracket"
)

// BracketStore persists rings, divisions, competitors and matches. Mutations
// that belong to a larger unit of work take an explicit *sqlx.Tx; the caller
// owns the transaction boundary.
type BracketStore struct {
	db *sqlx.DB
}

func NewBracketStore(db *sqlx.DB) *BracketStore {
	return &BracketStore{db: db}
}

// --- rings ---

func (s *BracketStore) CreateRing(ctx context.Context, name string) (*bracket.Ring, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO rings (name) VALUES (?)", name)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	var ring bracket.Ring
	err = s.db.GetContext(ctx, &ring, "SELECT * FROM rings WHERE id = ?", id)
	return &ring, err
}

func (s *BracketStore) GetRing(ctx context.Context, id int64) (*bracket.Ring, error) {
	var ring bracket.Ring
	err := s.db.GetContext(ctx, &ring, "SELECT * FROM rings WHERE id = ?", id)
	return &ring, err
}

func (s *BracketStore) GetRings(ctx context.Context) ([]bracket.Ring, error) {
	var rings []bracket.Ring
	err := s.db.SelectContext(ctx, &rings, "SELECT * FROM rings ORDER BY id ASC")
	return rings, err
}

func (s *BracketStore) DeleteRing(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM rings WHERE id = ?", id)
	return err
}

// --- divisions ---

func (s *BracketStore) CreateDivision(ctx context.Context, division *bracket.Division) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO divisions (id, name) VALUES (:id, :name)`, division)
	return err
}

func (s *BracketStore) GetDivision(ctx context.Context, id string) (*bracket.Division, error) {
	var division bracket.Division
	err := s.db.GetContext(ctx, &division, "SELECT * FROM divisions WHERE id = ?", id)
	return &division, err
}

func (s *BracketStore) GetDivisions(ctx context.Context) ([]bracket.Division, error) {
	var divisions []bracket.Division
	err := s.db.SelectContext(ctx, &divisions, "SELECT * FROM divisions ORDER BY created_at ASC, name ASC")
	return divisions, err
}

func (s *BracketStore) RenameDivision(ctx context.Context, id string, name string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE divisions SET name = ? WHERE id = ?", name, id)
	return err
}

// DeleteDivisionTx removes a division's matches, then its competitors, then
// the division itself. Referential integrity is enforced here rather than
// left to cascade constraints; the caller's transaction makes the three
// deletes all-or-nothing.
func (s *BracketStore) DeleteDivisionTx(ctx context.Context, tx *sqlx.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM matches WHERE division_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM competitors WHERE division_id = ?", id); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, "DELETE FROM divisions WHERE id = ?", id)
	return err
}

// --- competitors ---

func (s *BracketStore) CreateCompetitors(ctx context.Context, tx *sqlx.Tx, competitors []bracket.Competitor) error {
	if len(competitors) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO competitors (id, division_id, name)
        VALUES (:id, :division_id, :name)`, competitors)
	return err
}

func (s *BracketStore) GetCompetitor(ctx context.Context, id string) (*bracket.Competitor, error) {
	var competitor bracket.Competitor
	err := s.db.GetContext(ctx, &competitor, "SELECT * FROM competitors WHERE id = ?", id)
	return &competitor, err
}

func (s *BracketStore) GetCompetitors(ctx context.Context, divisionID string) ([]bracket.Competitor, error) {
	var competitors []bracket.Competitor
	err := s.db.SelectContext(ctx, &competitors, "SELECT * FROM competitors WHERE division_id = ? ORDER BY created_at ASC, name ASC", divisionID)
	return competitors, err
}

func (s *BracketStore) DeleteCompetitor(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM competitors WHERE id = ?", id)
	return err
}

// --- matches ---

func (s *BracketStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	if len(matches) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO matches (id, division_id, ring_id, match_number, competitor_1_id, competitor_2_id, winner_id, next_match_id, round_name, status, position)
		VALUES (:id, :division_id, :ring_id, :match_number, :competitor_1_id, :competitor_2_id, :winner_id, :next_match_id, :round_name, :status, :position)`, matches)
	return err
}

func (s *BracketStore) GetMatch(ctx context.Context, id string) (*bracket.Match, error) {
	var match bracket.Match
	err := s.db.GetContext(ctx, &match, "SELECT * FROM matches WHERE id = ?", id)
	return &match, err
}

func (s *BracketStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, id string) (*bracket.Match, error) {
	var match bracket.Match
	err := tx.GetContext(ctx, &match, "SELECT * FROM matches WHERE id = ?", id)
	return &match, err
}

// GetMatches returns a division's matches leaves-first, the same order the
// builder generated them in.
func (s *BracketStore) GetMatches(ctx context.Context, divisionID string) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := s.db.SelectContext(ctx, &matches, "SELECT * FROM matches WHERE division_id = ? ORDER BY position ASC", divisionID)
	return matches, err
}

func (s *BracketStore) CountMatches(ctx context.Context, divisionID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM matches WHERE division_id = ?", divisionID)
	return count, err
}

func (s *BracketStore) UpdateMatchTx(ctx context.Context, tx *sqlx.Tx, match *bracket.Match) error {
	_, err := tx.NamedExecContext(ctx, `UPDATE matches SET
		ring_id = :ring_id,
		match_number = :match_number,
		competitor_1_id = :competitor_1_id,
		competitor_2_id = :competitor_2_id,
		winner_id = :winner_id,
		status = :status
		WHERE id = :id`, match)
	return err
}

// GetRingSchedule lists a ring's playable matches for the scorekeeper:
// pending or in progress, both competitors known, in match-number order.
func (s *BracketStore) GetRingSchedule(ctx context.Context, ringID int64) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := s.db.SelectContext(ctx, &matches, `SELECT * FROM matches
		WHERE ring_id = ?
		AND status IN (?, ?)
		AND competitor_1_id IS NOT NULL
		AND competitor_2_id IS NOT NULL
		ORDER BY match_number ASC`, ringID, bracket.MatchPending, bracket.MatchInProgress)
	return matches, err
}
