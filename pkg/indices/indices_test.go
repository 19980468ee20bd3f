package indices

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishanwen-byte/genevo-go/pkg/core"
)

func TestNIndices(t *testing.T) {
	r := core.NewSource(1)

	tests := []struct {
		name  string
		n     int
		limit int
	}{
		{"none", 0, 5},
		{"some", 3, 10},
		{"all", 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NIndices(r, tt.n, tt.limit)
			require.NoError(t, err)
			assert.Len(t, got, tt.n)
			assert.True(t, slices.IsSorted(got))
			assert.Len(t, slices.Compact(slices.Clone(got)), tt.n, "indices must be distinct")
			for _, i := range got {
				assert.GreaterOrEqual(t, i, 0)
				assert.Less(t, i, tt.limit)
			}
		})
	}

	_, err := NIndices(r, 6, 5)
	assert.True(t, errors.Is(err, core.ErrInvalidArgument))
	_, err = NIndices(r, -1, 5)
	assert.True(t, errors.Is(err, core.ErrInvalidArgument))
}

func TestPIndices(t *testing.T) {
	r := core.NewSource(2)

	assert.Empty(t, PIndices(r, 0, 10))
	assert.Empty(t, PIndices(r, 0.5, 0))
	assert.Equal(t, []int{0, 1, 2, 3}, PIndices(r, 1, 4))

	got := PIndices(r, 0.5, 100)
	assert.True(t, slices.IsSorted(got))
	assert.Greater(t, len(got), 20)
	assert.Less(t, len(got), 80)
}

func TestSubsets(t *testing.T) {
	r := core.NewSource(3)

	t.Run("exclusive groups partition the range", func(t *testing.T) {
		groups, err := Subsets(r, 10, 3, true)
		require.NoError(t, err)
		require.Len(t, groups, 3)
		seen := map[int]bool{}
		for _, g := range groups {
			assert.Len(t, g, 3)
			for _, i := range g {
				assert.False(t, seen[i], "index %d drawn twice", i)
				seen[i] = true
			}
		}
	})

	t.Run("shared groups are distinct inside", func(t *testing.T) {
		groups, err := Subsets(r, 4, 2, false)
		require.NoError(t, err)
		require.Len(t, groups, 2)
		for _, g := range groups {
			require.Len(t, g, 2)
			assert.NotEqual(t, g[0], g[1])
		}
	})

	t.Run("invalid sizes", func(t *testing.T) {
		_, err := Subsets(r, 3, 0, false)
		assert.True(t, errors.Is(err, core.ErrInvalidArgument))
		_, err = Subsets(r, 1, 2, true)
		assert.True(t, errors.Is(err, core.ErrInvalidArgument))
	})
}

func TestSeededDrawsRepeat(t *testing.T) {
	a, err := NIndices(core.NewSource(9), 4, 20)
	require.NoError(t, err)
	b, err := NIndices(core.NewSource(9), 4, 20)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
