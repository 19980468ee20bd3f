package core

import (
	"math"
	"math/rand/v2"

	"github.com/ishanwen-byte/genevo-go/internal/constants"
)

// Domain carries the values every operator used to pick up implicitly: the
// random source and the floating-point equality threshold. One Domain is
// threaded through a whole run so a fixed seed reproduces it.
type Domain struct {
	Rand              *rand.Rand
	EqualityThreshold float64
}

// NewSource returns a PCG source seeded with seed, or a randomly seeded one
// when seed is zero.
func NewSource(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// NewDomain returns a Domain with a source seeded by seed and the default
// equality threshold.
func NewDomain(seed uint64) *Domain {
	return &Domain{
		Rand:              NewSource(seed),
		EqualityThreshold: constants.DefaultEqualityThreshold,
	}
}

// IsZero reports whether x is zero within the equality threshold.
func (d *Domain) IsZero(x float64) bool {
	return math.Abs(x) <= d.EqualityThreshold
}

// Equal reports whether a and b are equal within the equality threshold.
func (d *Domain) Equal(a, b float64) bool {
	return math.Abs(a-b) <= d.EqualityThreshold
}

// Snap returns the nearest integer to x when x is within the equality
// threshold of it, and x otherwise. It keeps products such as 0.7*10 from
// rounding up to the next integer under math.Ceil.
func (d *Domain) Snap(x float64) float64 {
	if r := math.Round(x); d.Equal(x, r) {
		return r
	}
	return x
}
