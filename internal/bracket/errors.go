package bracket

import "errors"

// Core failure kinds. All of these surface synchronously to the caller;
// missing rows are reported as sql.ErrNoRows by the store layer.
var (
	ErrInsufficientCompetitors = errors.New("need at least 2 competitors to generate a bracket")
	ErrBracketExists           = errors.New("division already has a generated bracket")
	ErrMissingWinner           = errors.New("winner id required for completed or disqualification results")
	ErrWinnerNotInMatch        = errors.New("winner is not part of this match")
	ErrMatchAlreadyDecided     = errors.New("match result has already been recorded")
	ErrInvalidStatus           = errors.New("invalid match status")
)
