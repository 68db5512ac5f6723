package bracket

import (
	"time"

	"github.com/google/uuid"
)

// Division groups competitors that fight each other, e.g.
// "Male - Black Belt - Under 70kg". It owns its competitors and its matches.
type Division struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type Competitor struct {
	ID         uuid.UUID `db:"id"`
	DivisionID uuid.UUID `db:"division_id"`
	Name       string    `db:"name"`
	CreatedAt  time.Time `db:"created_at"`
}

// Ring is a physical mat matches get scheduled onto. Rings use small integer
// ids because the visible match number is ringID*100 + sequence.
type Ring struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// MatchNumberFor computes the scheduling label shown on printed schedules,
// e.g. ring 5 sequence 25 -> 525.
func MatchNumberFor(ringID int64, sequence int64) int64 {
	return ringID*100 + sequence
}
