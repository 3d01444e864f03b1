package planner

import (
	"fmt"

	"github.com/Sstrulea/ascutzit-crm-sub001/internal/service/allocation"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
)

// Selection picks a line item for a merge. Quantity 0 means the whole row.
type Selection struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity,omitempty"`
}

type MergeRequest struct {
	Target     storage.DestinationKey `json:"target"`
	Selections []Selection            `json:"selections"`
}

type MergePlan struct {
	Target  storage.DestinationKey  `json:"target"`
	Moves   []storage.MoveOperation `json:"moves"`
	Skipped []int64                 `json:"skipped"`
}

// PlanMerge moves the selected rows to the target, one move per row. Rows that
// already sit at the target are reported in Skipped and produce no move.
func PlanMerge(items []storage.LineItem, req MergeRequest) (MergePlan, error) {
	const op = "planner.PlanMerge"

	if req.Target == storage.SelfKey || !req.Target.Valid() {
		return MergePlan{}, fmt.Errorf("%s: %w", op, invalid("cannot merge into %q", req.Target))
	}

	byID := make(map[int64]storage.LineItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	plan := MergePlan{
		Target:  req.Target,
		Moves:   []storage.MoveOperation{},
		Skipped: []int64{},
	}
	seen := make(map[int64]bool, len(req.Selections))

	for _, sel := range req.Selections {
		item, ok := byID[sel.ItemID]
		if !ok {
			return MergePlan{}, fmt.Errorf("%s: %w", op, invalid("item %d is not on the tray", sel.ItemID))
		}
		if seen[sel.ItemID] {
			return MergePlan{}, fmt.Errorf("%s: %w", op, invalid("item %d selected twice", sel.ItemID))
		}
		seen[sel.ItemID] = true

		if sel.Quantity < 0 || sel.Quantity > item.Quantity {
			return MergePlan{}, fmt.Errorf("%s: %w", op, invalid("item %d: cannot move %d of %d", item.ID, sel.Quantity, item.Quantity))
		}

		if item.Location() == req.Target || item.Quantity <= 0 {
			plan.Skipped = append(plan.Skipped, item.ID)
			continue
		}

		qty := sel.Quantity
		if qty == 0 {
			qty = item.Quantity
		}

		assignments, err := allocation.Allocate(
			[]allocation.PoolRow{{RowID: item.ID, Available: item.Quantity}},
			[]allocation.Destination{
				{Key: req.Target, Target: qty},
				{Key: item.Location(), Target: item.Quantity - qty},
			},
		)
		if err != nil {
			return MergePlan{}, fmt.Errorf("%s: item %d: %w", op, item.ID, err)
		}

		plan.Moves = append(plan.Moves, storage.MoveOperation{
			RowID:          item.ID,
			SourceTrayID:   item.TrayID,
			DestinationKey: req.Target,
			Quantity:       assignments[0].QuantityFor(item.ID),
		})
	}

	locationOf := func(id int64) storage.DestinationKey { return byID[id].Location() }
	if err := ensureNoDegenerate(plan.Moves, locationOf); err != nil {
		return MergePlan{}, fmt.Errorf("%s: %w", op, err)
	}

	return plan, nil
}
