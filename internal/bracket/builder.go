package bracket

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"
)

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func calcBracketSize(count int) int {
	if count <= 0 {
		return 0
	}

	// Log2 -> Ceil -> 2^^log2 to round up
	log2 := math.Ceil(math.Log2(float64(count)))
	return int(math.Pow(2, log2))
}

// roundNameFor names the round being built from the size of the round that
// feeds it.
func roundNameFor(previousRoundSize, roundNum int) string {
	switch previousRoundSize {
	case 2:
		return RoundFinal
	case 4:
		return RoundSemiFinal
	case 8:
		return RoundQuarterFinal
	}
	return numberedRound(roundNum)
}

func numberedRound(n int) string {
	return fmt.Sprintf("Round %d", n)
}

// BuildBracket constructs the complete single-elimination tree for a
// division: round 1 plus every round up to the final, linked through
// NextMatchID. Byes are resolved immediately and their winners pushed into
// the next round, so a short bracket needs no human input before real
// matches start.
//
// The rand source is injected so generation is reproducible in tests. The
// shuffle is the only seeding policy; competitors are then dealt into
// pairings like a deck of cards (first pass fills slot 1 of every pairing,
// second pass fills slot 2) which spreads byes across the bracket instead of
// clustering them.
//
// The returned slice is ordered round by round from the leaves to the final.
// Nothing is persisted here; the caller commits the whole tree in one
// transaction or not at all.
func BuildBracket(divisionID uuid.UUID, competitors []Competitor, rng *rand.Rand) ([]Match, error) {
	if len(competitors) < 2 {
		return nil, ErrInsufficientCompetitors
	}

	shuffled := make([]Competitor, len(competitors))
	copy(shuffled, competitors)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	bracketSize := calcBracketSize(len(shuffled))
	firstRoundMatches := bracketSize / 2

	// Deal competitors into the pairings like a deck of cards
	pairings := make([][2]*uuid.UUID, firstRoundMatches)
	for i := range shuffled {
		id := shuffled[i].ID
		slot := i / firstRoundMatches
		pairings[i%firstRoundMatches][slot] = &id
	}

	// A 2-competitor division goes straight to the final; there is no
	// "Round 1" label in that tree at all.
	round1Name := numberedRound(1)
	if firstRoundMatches == 1 {
		round1Name = RoundFinal
	}

	var all []*Match
	currentRound := make([]*Match, 0, firstRoundMatches)
	for _, pair := range pairings {
		m := &Match{
			ID:            uuid.New(),
			DivisionID:    divisionID,
			Competitor1ID: pair[0],
			Competitor2ID: pair[1],
			RoundName:     round1Name,
			Status:        MatchPending,
		}

		// Auto-advance byes at construction time. This is the only place
		// MatchCompletedBye is ever set.
		if pair[0] != nil && pair[1] == nil {
			m.WinnerID = pair[0]
			m.Status = MatchCompletedBye
		} else if pair[1] != nil && pair[0] == nil {
			m.WinnerID = pair[1]
			m.Status = MatchCompletedBye
		}

		all = append(all, m)
		currentRound = append(currentRound, m)
	}

	// Build subsequent rounds bottom-up, two predecessors per new match.
	roundNum := 2
	for len(currentRound) > 1 {
		name := roundNameFor(len(currentRound), roundNum)
		nextRound := make([]*Match, 0, len(currentRound)/2)

		for i := 0; i < len(currentRound); i += 2 {
			prev1, prev2 := currentRound[i], currentRound[i+1]

			m := &Match{
				ID:         uuid.New(),
				DivisionID: divisionID,
				RoundName:  name,
				Status:     MatchPending,
			}

			prev1.NextMatchID = &m.ID
			prev2.NextMatchID = &m.ID

			// Push bye winners forward immediately. Positional: the left
			// predecessor owns slot 1, the right one slot 2, so two byes
			// feeding the same match can never race for a slot.
			if prev1.WinnerID != nil {
				m.Competitor1ID = prev1.WinnerID
			}
			if prev2.WinnerID != nil {
				m.Competitor2ID = prev2.WinnerID
			}

			all = append(all, m)
			nextRound = append(nextRound, m)
		}

		currentRound = nextRound
		roundNum++
	}

	out := make([]Match, len(all))
	for i, m := range all {
		m.Position = i
		out[i] = *m
	}
	return out, nil
}
