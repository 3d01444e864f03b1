// Package planner turns a tray's items plus the user's chosen distribution
// into an ordered list of moves. Planners hold no state; the caller re-runs
// them whenever the pending selection changes.
package planner

import (
	"fmt"

	"github.com/Sstrulea/ascutzit-crm-sub001/internal/service/allocation"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
)

// groupRowID stands in for an instrument group that has no instrument-only
// row; line item ids are always positive so it never collides.
const groupRowID int64 = 0

// SplitRequest distributes every instrument group of a tray across two or
// three destinations. Destinations[0] must be storage.SelfKey.
//
// Targets optionally fixes per-instrument quantities for the other
// destinations; self receives the rest. Groups without targets are split
// evenly.
type SplitRequest struct {
	Destinations []storage.DestinationKey                  `json:"destinations"`
	Targets      map[int64]map[storage.DestinationKey]int `json:"targets,omitempty"`
}

type Portion struct {
	Key      storage.DestinationKey `json:"key"`
	Quantity int                    `json:"quantity"`
}

type RowSplit struct {
	RowID    int64     `json:"row_id"`
	Portions []Portion `json:"portions"`
}

type GroupAllocation struct {
	InstrumentID int64                    `json:"instrument_id"`
	Base         int                      `json:"base"`
	Targets      []allocation.Destination `json:"targets"`
	Rows         []RowSplit               `json:"rows"`
}

type SplitPlan struct {
	Destinations []storage.DestinationKey `json:"destinations"`
	Groups       []GroupAllocation        `json:"groups"`
	Moves        []storage.MoveOperation  `json:"moves"`
}

// PlanSplit builds the moves for splitting items across the destinations.
//
// Per instrument group the base quantity is the instrument-only quantity, or
// the largest row quantity when the group has no instrument-only row. The base
// goes through the allocator; instrument-only rows take the allocator output
// as is and every other row is scaled by the same ratio with remainder
// carrying, so each row still adds up to its own quantity.
func PlanSplit(items []storage.LineItem, req SplitRequest) (SplitPlan, error) {
	const op = "planner.PlanSplit"

	if err := validateDestinations(req.Destinations); err != nil {
		return SplitPlan{}, fmt.Errorf("%s: %w", op, err)
	}

	plan := SplitPlan{
		Destinations: append([]storage.DestinationKey(nil), req.Destinations...),
		Groups:       []GroupAllocation{},
		Moves:        []storage.MoveOperation{},
	}
	locations := make(map[int64]storage.DestinationKey, len(items))

	for _, group := range groupByInstrument(items) {
		ga, err := splitGroup(group, req)
		if err != nil {
			return SplitPlan{}, fmt.Errorf("%s: instrument %d: %w", op, group.instrumentID, err)
		}
		plan.Groups = append(plan.Groups, ga)

		for i, row := range ga.Rows {
			item := group.items[i]
			locations[item.ID] = item.Location()
			for _, p := range row.Portions {
				if p.Quantity == 0 || p.Key == storage.SelfKey || p.Key == item.Location() {
					continue
				}
				plan.Moves = append(plan.Moves, storage.MoveOperation{
					RowID:          item.ID,
					SourceTrayID:   item.TrayID,
					DestinationKey: p.Key,
					Quantity:       p.Quantity,
				})
			}
		}
	}

	if err := ensureNoDegenerate(plan.Moves, func(id int64) storage.DestinationKey { return locations[id] }); err != nil {
		return SplitPlan{}, fmt.Errorf("%s: %w", op, err)
	}

	return plan, nil
}

func splitGroup(group instrumentGroup, req SplitRequest) (GroupAllocation, error) {
	var pool []allocation.PoolRow
	base := 0
	for _, item := range group.items {
		if item.Identity.IsInstrumentOnly() {
			qty := max(item.Quantity, 0)
			pool = append(pool, allocation.PoolRow{RowID: item.ID, Available: qty})
			base += qty
		}
	}
	if len(pool) == 0 {
		for _, item := range group.items {
			base = max(base, item.Quantity)
		}
		pool = []allocation.PoolRow{{RowID: groupRowID, Available: base}}
	}

	targets, err := groupTargets(group.instrumentID, base, req)
	if err != nil {
		return GroupAllocation{}, err
	}

	assignments, err := allocation.Allocate(pool, targets)
	if err != nil {
		return GroupAllocation{}, err
	}

	weights := make([]int, len(assignments))
	for i, a := range assignments {
		weights[i] = a.Total()
	}

	ga := GroupAllocation{
		InstrumentID: group.instrumentID,
		Base:         base,
		Targets:      targets,
		Rows:         make([]RowSplit, 0, len(group.items)),
	}

	for _, item := range group.items {
		qty := max(item.Quantity, 0)

		var parts []int
		if item.Identity.IsInstrumentOnly() {
			parts = make([]int, len(assignments))
			for i, a := range assignments {
				parts[i] = a.QuantityFor(item.ID)
			}
		} else {
			parts = allocation.Apportion(qty, weights)
		}

		sum := 0
		portions := make([]Portion, len(parts))
		for i, p := range parts {
			sum += p
			portions[i] = Portion{Key: assignments[i].Key, Quantity: p}
		}
		if sum != qty {
			return GroupAllocation{}, &RoundingDriftError{RowID: item.ID, Want: qty, Got: sum}
		}

		ga.Rows = append(ga.Rows, RowSplit{RowID: item.ID, Portions: portions})
	}

	return ga, nil
}

// groupTargets balances the per-destination targets before the allocator
// sees them: explicit quantities for the other destinations, self takes the
// remainder. Without explicit quantities the base is split evenly.
func groupTargets(instrumentID int64, base int, req SplitRequest) ([]allocation.Destination, error) {
	explicit, ok := req.Targets[instrumentID]
	if !ok {
		return allocation.EvenTargets(base, req.Destinations)
	}

	for key, qty := range explicit {
		if !contains(req.Destinations, key) {
			return nil, invalid("target for unknown destination %s", key)
		}
		if qty < 0 {
			return nil, invalid("negative target %d for %s", qty, key)
		}
	}

	targets := make([]allocation.Destination, len(req.Destinations))
	others := 0
	for i, key := range req.Destinations[1:] {
		qty := explicit[key]
		others += qty
		targets[i+1] = allocation.Destination{Key: key, Target: qty}
	}
	if others > base {
		return nil, invalid("targets ask for %d of %d", others, base)
	}

	self := base - others
	if want, set := explicit[storage.SelfKey]; set && want != self {
		return nil, invalid("targets ask for %d of %d", others+want, base)
	}
	targets[0] = allocation.Destination{Key: storage.SelfKey, Target: self}

	return targets, nil
}

func validateDestinations(keys []storage.DestinationKey) error {
	if len(keys) < allocation.MinDestinations || len(keys) > allocation.MaxDestinations {
		return invalid("need %d or %d destinations, got %d", allocation.MinDestinations, allocation.MaxDestinations, len(keys))
	}
	if keys[0] != storage.SelfKey {
		return invalid("first destination must be %s, got %s", storage.SelfKey, keys[0])
	}

	seen := map[storage.DestinationKey]bool{}
	for _, k := range keys {
		if !k.Valid() {
			return invalid("unknown destination %q", k)
		}
		if seen[k] {
			return invalid("destination %s listed twice", k)
		}
		seen[k] = true
	}
	return nil
}

type instrumentGroup struct {
	instrumentID int64
	items        []storage.LineItem
}

func groupByInstrument(items []storage.LineItem) []instrumentGroup {
	var groups []instrumentGroup
	index := map[int64]int{}

	for _, item := range items {
		id := item.Identity.InstrumentID
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, instrumentGroup{instrumentID: id})
		}
		groups[i].items = append(groups[i].items, item)
	}
	return groups
}

func contains(keys []storage.DestinationKey, key storage.DestinationKey) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
