package planner

import (
	"errors"
	"fmt"

	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
)

var (
	ErrInvalidRequest = errors.New("invalid plan request")
	ErrDegenerateMove = errors.New("move targets the row's current location")
	ErrRoundingDrift  = errors.New("distributed quantities do not add up")
)

type DegenerateMoveError struct {
	RowID       int64
	Destination storage.DestinationKey
}

func (e *DegenerateMoveError) Error() string {
	return fmt.Sprintf("planner: row %d already at %s", e.RowID, e.Destination)
}

func (e *DegenerateMoveError) Is(target error) bool {
	return target == ErrDegenerateMove
}

type RoundingDriftError struct {
	RowID int64
	Want  int
	Got   int
}

func (e *RoundingDriftError) Error() string {
	return fmt.Sprintf("planner: row %d distributed %d of %d", e.RowID, e.Got, e.Want)
}

func (e *RoundingDriftError) Is(target error) bool {
	return target == ErrRoundingDrift
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// ensureNoDegenerate is the last check on every plan: nothing may be moved to
// where it already is.
func ensureNoDegenerate(moves []storage.MoveOperation, locationOf func(rowID int64) storage.DestinationKey) error {
	for _, m := range moves {
		if m.DestinationKey == storage.SelfKey || m.DestinationKey == locationOf(m.RowID) {
			return &DegenerateMoveError{RowID: m.RowID, Destination: m.DestinationKey}
		}
	}
	return nil
}
