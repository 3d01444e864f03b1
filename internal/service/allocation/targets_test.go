package allocation

import (
	"errors"
	"testing"

	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Priority order is self, then technician 1, then technician 2.
func TestEvenTargets_ScenarioD_TwoWays(t *testing.T) {
	got, err := EvenTargets(5, []storage.DestinationKey{self, tech1})
	require.NoError(t, err)

	assert.Equal(t, []Destination{{Key: self, Target: 2}, {Key: tech1, Target: 3}}, got)
}

func TestEvenTargets_ThreeWays(t *testing.T) {
	keys := []storage.DestinationKey{self, tech1, tech2}

	tests := []struct {
		total int
		want  []int
	}{
		{0, []int{0, 0, 0}},
		{1, []int{1, 0, 0}},
		{2, []int{1, 1, 0}},
		{3, []int{1, 1, 1}},
		{7, []int{3, 2, 2}},
		{8, []int{3, 3, 2}},
		{9, []int{3, 3, 3}},
	}

	for _, tt := range tests {
		got, err := EvenTargets(tt.total, keys)
		require.NoError(t, err)
		for i, d := range got {
			assert.Equal(t, keys[i], d.Key)
			assert.Equal(t, tt.want[i], d.Target, "total %d slot %d", tt.total, i)
		}
	}
}

func TestEvenTargets_SumAndSpread(t *testing.T) {
	for _, keys := range [][]storage.DestinationKey{{self, tech1}, {self, tech1, tech2}} {
		for total := 0; total <= 50; total++ {
			got, err := EvenTargets(total, keys)
			require.NoError(t, err)

			sum, lo, hi := 0, total, 0
			for _, d := range got {
				sum += d.Target
				lo = min(lo, d.Target)
				hi = max(hi, d.Target)
			}
			assert.Equal(t, total, sum)
			assert.LessOrEqual(t, hi-lo, 1)
		}
	}
}

func TestEvenTargets_RejectsBadInput(t *testing.T) {
	_, err := EvenTargets(4, []storage.DestinationKey{self})
	assert.True(t, errors.Is(err, ErrDestinationCount))

	_, err = EvenTargets(-1, []storage.DestinationKey{self, tech1})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestApportion(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		weights []int
		want    []int
	}{
		{"exact", 10, []int{2, 3}, []int{4, 6}},
		{"largest remainder", 2, []int{2, 3}, []int{1, 1}},
		{"tie goes first", 1, []int{1, 1}, []int{1, 0}},
		{"three ways", 10, []int{1, 1, 1}, []int{4, 3, 3}},
		{"zero weight slot", 4, []int{0, 1, 1}, []int{0, 2, 2}},
		{"no weight", 4, []int{0, 0}, []int{4, 0}},
		{"zero total", 0, []int{3, 2}, []int{0, 0}},
		{"no slots", 3, nil, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apportion(tt.total, tt.weights))
		})
	}
}

func TestApportion_NeverDrifts(t *testing.T) {
	for total := 0; total <= 40; total++ {
		for _, weights := range [][]int{{1, 2}, {2, 3}, {3, 3, 1}, {7, 0, 5}, {1, 1, 1}, {13, 2, 2}} {
			got := Apportion(total, weights)
			sum := 0
			for _, g := range got {
				assert.GreaterOrEqual(t, g, 0)
				sum += g
			}
			assert.Equal(t, total, sum, "total %d weights %v", total, weights)
		}
	}
}
