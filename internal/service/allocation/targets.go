package allocation

import (
	"fmt"
	"sort"

	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
)

// EvenTargets splits total across the keys, first key being the current actor.
//
// Two ways: the first key gets floor(total/2), the other the rest.
// Three ways: the first key gets floor(total/3) plus one if anything is left
// over, the second gets the next left-over unit, the third whatever remains.
func EvenTargets(total int, keys []storage.DestinationKey) ([]Destination, error) {
	const op = "allocation.EvenTargets"

	if total < 0 {
		return nil, fmt.Errorf("%s: %w: negative total %d", op, ErrInvalidInput, total)
	}

	switch len(keys) {
	case 2:
		self := total / 2
		return []Destination{
			{Key: keys[0], Target: self},
			{Key: keys[1], Target: total - self},
		}, nil
	case 3:
		base, rem := total/3, total%3
		self := base
		if rem > 0 {
			self++
		}
		first := base
		if rem > 1 {
			first++
		}
		return []Destination{
			{Key: keys[0], Target: self},
			{Key: keys[1], Target: first},
			{Key: keys[2], Target: total - self - first},
		}, nil
	default:
		return nil, fmt.Errorf("%s: %w, got %d", op, ErrDestinationCount, len(keys))
	}
}

// Apportion splits total proportionally to weights using the largest
// remainder method, so the parts always add up to total. Ties go to the
// earlier weight. With no weight at all everything lands on the first slot.
func Apportion(total int, weights []int) []int {
	out := make([]int, len(weights))
	if len(weights) == 0 {
		return out
	}

	sum := 0
	for _, w := range weights {
		if w > 0 {
			sum += w
		}
	}
	if sum == 0 {
		out[0] = total
		return out
	}

	type remainder struct {
		idx  int
		frac int
	}
	rems := make([]remainder, 0, len(weights))
	assigned := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		// total*w/sum, kept in integers to avoid float drift
		out[i] = total * w / sum
		assigned += out[i]
		rems = append(rems, remainder{idx: i, frac: total * w % sum})
	}

	sort.SliceStable(rems, func(a, b int) bool {
		return rems[a].frac > rems[b].frac
	})
	for i := 0; assigned < total; i++ {
		out[rems[i%len(rems)].idx]++
		assigned++
	}

	return out
}
