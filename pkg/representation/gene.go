package representation

import (
	"math/rand/v2"
)

// Gene is the atomic value holder of a candidate solution.
type Gene[T any] interface {
	Representation[T]
	// Value returns the held value.
	Value() T
	// Duplicate returns a gene of the same kind (and bounds) holding value.
	Duplicate(value T) Gene[T]
}

// Bounded is implemented by genes whose valid values lie in a closed range.
type Bounded[T any] interface {
	Min() T
	Max() T
}

// Number constrains the value types of range genes.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// BoolGene is a single bit.
type BoolGene bool

// RandomBoolGene returns a uniformly random bit.
func RandomBoolGene(r *rand.Rand) BoolGene {
	return BoolGene(r.IntN(2) == 1)
}

func (g BoolGene) Value() bool                     { return bool(g) }
func (g BoolGene) Duplicate(value bool) Gene[bool] { return BoolGene(value) }
func (g BoolGene) Size() int                       { return 1 }
func (g BoolGene) Verify() bool                    { return true }
func (g BoolGene) Flatten() []bool                 { return []bool{bool(g)} }

// Flip returns the negated bit.
func (g BoolGene) Flip() BoolGene { return !g }

// RangeGene holds a number constrained to [min, max].
type RangeGene[N Number] struct {
	value N
	min   N
	max   N
}

// IntGene is an integer gene with inclusive bounds.
type IntGene = RangeGene[int]

// FloatGene is a real-valued gene with inclusive bounds.
type FloatGene = RangeGene[float64]

// NewRangeGene returns a gene holding value within [min, max]. The value is
// not clamped; Verify reports whether it lies within the bounds.
func NewRangeGene[N Number](value, min, max N) RangeGene[N] {
	return RangeGene[N]{value: value, min: min, max: max}
}

// RandomIntGene returns an integer gene drawn uniformly from [min, max].
func RandomIntGene(r *rand.Rand, min, max int) IntGene {
	return NewRangeGene(min+r.IntN(max-min+1), min, max)
}

// RandomFloatGene returns a real gene drawn uniformly from [min, max).
func RandomFloatGene(r *rand.Rand, min, max float64) FloatGene {
	return NewRangeGene(min+r.Float64()*(max-min), min, max)
}

func (g RangeGene[N]) Value() N     { return g.value }
func (g RangeGene[N]) Min() N       { return g.min }
func (g RangeGene[N]) Max() N       { return g.max }
func (g RangeGene[N]) Size() int    { return 1 }
func (g RangeGene[N]) Flatten() []N { return []N{g.value} }

func (g RangeGene[N]) Duplicate(value N) Gene[N] {
	return RangeGene[N]{value: value, min: g.min, max: g.max}
}

// Verify reports whether the value lies within the bounds. NaN never does.
func (g RangeGene[N]) Verify() bool {
	return g.min <= g.value && g.value <= g.max
}

// Clamp returns a copy whose value is forced into the bounds.
func (g RangeGene[N]) Clamp() RangeGene[N] {
	switch {
	case g.value < g.min:
		g.value = g.min
	case g.value > g.max:
		g.value = g.max
	}
	return g
}
