// Package allocation distributes integer quantities from a pool of rows
// across two or three destinations without creating or losing any unit.
package allocation

import (
	"errors"
	"fmt"

	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
)

const (
	MinDestinations = 2
	MaxDestinations = 3
)

var (
	ErrInputImbalance   = errors.New("destination targets do not match the pool")
	ErrInvalidInput     = errors.New("invalid allocation input")
	ErrDestinationCount = fmt.Errorf("%w: need %d or %d destinations", ErrInvalidInput, MinDestinations, MaxDestinations)
)

// ImbalanceError reports pool and target totals that differ. Callers are
// expected to balance targets first, so this is a programming error.
type ImbalanceError struct {
	Available int
	Targeted  int
}

func (e *ImbalanceError) Error() string {
	return fmt.Sprintf("allocation: pool holds %d but destinations require %d", e.Available, e.Targeted)
}

func (e *ImbalanceError) Is(target error) bool {
	return target == ErrInputImbalance
}

// PoolRow is a row that can give away up to Available units.
type PoolRow struct {
	RowID     int64
	Available int
}

// Destination wants exactly Target units in total.
type Destination struct {
	Key    storage.DestinationKey
	Target int
}

type RowQuantity struct {
	RowID    int64 `json:"row_id"`
	Quantity int   `json:"quantity"`
}

type Assignment struct {
	Key  storage.DestinationKey `json:"key"`
	Rows []RowQuantity          `json:"rows"`
}

// Total is the number of units the destination received.
func (a Assignment) Total() int {
	total := 0
	for _, r := range a.Rows {
		total += r.Quantity
	}
	return total
}

// QuantityFor is how much of one row the destination received.
func (a Assignment) QuantityFor(rowID int64) int {
	qty := 0
	for _, r := range a.Rows {
		if r.RowID == rowID {
			qty += r.Quantity
		}
	}
	return qty
}

// Allocate walks the rows in pool order and, for each row, the destinations in
// the order given, handing each destination min(row left, destination need).
// Destinations come out in the same order they went in. Only positive
// quantities are listed.
func Allocate(pool []PoolRow, destinations []Destination) ([]Assignment, error) {
	const op = "allocation.Allocate"

	if err := validate(pool, destinations); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	need := make([]int, len(destinations))
	out := make([]Assignment, len(destinations))
	for i, d := range destinations {
		need[i] = d.Target
		out[i] = Assignment{Key: d.Key, Rows: []RowQuantity{}}
	}

	for _, row := range pool {
		left := row.Available
		for i := 0; i < len(destinations) && left > 0; i++ {
			if need[i] == 0 {
				continue
			}
			give := min(left, need[i])
			out[i].Rows = append(out[i].Rows, RowQuantity{RowID: row.RowID, Quantity: give})
			need[i] -= give
			left -= give
		}
	}

	return out, nil
}

func validate(pool []PoolRow, destinations []Destination) error {
	if len(destinations) < MinDestinations || len(destinations) > MaxDestinations {
		return fmt.Errorf("%w, got %d", ErrDestinationCount, len(destinations))
	}

	available := 0
	for _, row := range pool {
		if row.Available < 0 {
			return fmt.Errorf("%w: row %d has negative quantity %d", ErrInvalidInput, row.RowID, row.Available)
		}
		available += row.Available
	}

	seen := make(map[storage.DestinationKey]struct{}, len(destinations))
	targeted := 0
	for _, d := range destinations {
		if d.Target < 0 {
			return fmt.Errorf("%w: destination %s has negative target %d", ErrInvalidInput, d.Key, d.Target)
		}
		if _, dup := seen[d.Key]; dup {
			return fmt.Errorf("%w: destination %s listed twice", ErrInvalidInput, d.Key)
		}
		seen[d.Key] = struct{}{}
		targeted += d.Target
	}

	if available != targeted {
		return &ImbalanceError{Available: available, Targeted: targeted}
	}

	return nil
}
