// Package indices draws random index sets for the genetic operators.
package indices

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/ishanwen-byte/genevo-go/pkg/core"
)

// NIndices returns n distinct indices in [0, limit), sorted ascending.
func NIndices(r *rand.Rand, n, limit int) ([]int, error) {
	if n < 0 || limit < 0 || n > limit {
		return nil, fmt.Errorf("%w: cannot draw %d distinct indices below %d", core.ErrInvalidArgument, n, limit)
	}
	// Partial Fisher-Yates over the index range.
	pool := make([]int, limit)
	for i := range pool {
		pool[i] = i
	}
	for i := 0; i < n; i++ {
		j := i + r.IntN(limit-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	out := pool[:n:n]
	slices.Sort(out)
	return out, nil
}

// PIndices includes each index in [0, limit) independently with probability
// p and returns the included ones sorted ascending.
func PIndices(r *rand.Rand, p float64, limit int) []int {
	var out []int
	switch {
	case limit <= 0 || p <= 0:
		return out
	case p >= 1:
		out = make([]int, limit)
		for i := range out {
			out[i] = i
		}
		return out
	}
	for i := 0; i < limit; i++ {
		if r.Float64() < p {
			out = append(out, i)
		}
	}
	return out
}

// Subsets draws n/size groups of size indices from [0, n). Indices within a
// group are distinct. With exclusive set the groups are disjoint, otherwise
// every group is an independent draw and groups may share indices. Indices
// keep their draw order so the first index of a group is a random one.
func Subsets(r *rand.Rand, n, size int, exclusive bool) ([][]int, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: subset size must be at least 1, got %d", core.ErrInvalidArgument, size)
	}
	if n < size {
		return nil, fmt.Errorf("%w: cannot draw subsets of %d from %d indices", core.ErrInvalidArgument, size, n)
	}
	groups := make([][]int, n/size)
	if exclusive {
		perm := r.Perm(n)
		for i := range groups {
			groups[i] = perm[i*size : (i+1)*size : (i+1)*size]
		}
		return groups, nil
	}
	for i := range groups {
		groups[i] = r.Perm(n)[:size:size]
	}
	return groups, nil
}
