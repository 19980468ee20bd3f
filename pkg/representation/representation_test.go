package representation

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoolGene(t *testing.T) {
	g := BoolGene(true)

	assert.True(t, g.Value())
	assert.True(t, g.Verify())
	assert.Equal(t, 1, g.Size())
	assert.Equal(t, []bool{true}, g.Flatten())
	assert.Equal(t, BoolGene(false), g.Flip())
	assert.Equal(t, BoolGene(false), g.Duplicate(false))
}

func TestRangeGeneVerify(t *testing.T) {
	assert.True(t, NewRangeGene(5, 0, 10).Verify())
	assert.True(t, NewRangeGene(0, 0, 10).Verify())
	assert.True(t, NewRangeGene(10, 0, 10).Verify())
	assert.False(t, NewRangeGene(11, 0, 10).Verify())
	assert.False(t, NewRangeGene(math.NaN(), 0.0, 1.0).Verify())

	dup := NewRangeGene(5, 0, 10).Duplicate(42)
	assert.Equal(t, 42, dup.Value())
	assert.False(t, dup.Verify())

	clamped := NewRangeGene(-3.5, -1.0, 1.0).Clamp()
	assert.Equal(t, -1.0, clamped.Value())
}

func TestRandomGenesStayInBounds(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 1))
	for range 1000 {
		assert.True(t, RandomIntGene(r, -3, 3).Verify())
		assert.True(t, RandomFloatGene(r, 0.5, 1.5).Verify())
	}
}

func TestChromosome(t *testing.T) {
	c := BoolChromosomeOf(true, false, true)

	assert.Equal(t, 3, c.Size())
	assert.True(t, c.Verify())
	assert.Equal(t, []bool{true, false, true}, c.Flatten())

	replaced := c.WithGene(1, BoolGene(true))
	assert.Equal(t, []bool{true, true, true}, replaced.Flatten())
	assert.Equal(t, []bool{true, false, true}, c.Flatten(), "receiver must not change")

	_, err := c.WithValues([]bool{true})
	assert.ErrorIs(t, err, ErrSizeMismatch)

	_, err = c.WithGenes([]Gene[bool]{BoolGene(true)})
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestChromosomeWithValuesKeepsBounds(t *testing.T) {
	c := NewChromosome[int](NewRangeGene(1, 0, 5), NewRangeGene(2, 0, 5))

	updated, err := c.WithValues([]int{4, 9})
	require.NoError(t, err)

	assert.Equal(t, []int{4, 9}, updated.Flatten())
	assert.False(t, updated.Verify())
	bounded, ok := updated.Gene(1).(Bounded[int])
	require.True(t, ok)
	assert.Equal(t, 5, bounded.Max())
}

func TestGenotype(t *testing.T) {
	g := NewGenotype(BoolChromosomeOf(true, false), BoolChromosomeOf(false, false, true))

	assert.Equal(t, 2, g.Size())
	assert.True(t, g.Verify())
	assert.Equal(t, []bool{true, false, false, false, true}, g.Flatten())
	assert.Equal(t, [][]bool{{true, false}, {false, false, true}}, g.Values())

	other := g.WithChromosome(0, BoolChromosomeOf(true, true))
	assert.False(t, g.Equal(other))
	assert.Equal(t, []bool{true, false}, g.Chromosome(0).Flatten())
	assert.True(t, g.SameShape(other))
	assert.False(t, g.SameShape(NewGenotype(BoolChromosomeOf(true))))
}

func TestGenotypeEqualityAndHash(t *testing.T) {
	a := NewGenotype(BoolChromosomeOf(true, false, true))
	b := NewGenotype(BoolChromosomeOf(true, false, true))
	c := NewGenotype(BoolChromosomeOf(true, true, true))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))

	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	hc, err := c.Hash()
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
	assert.NotEqual(t, ha, hc)
}

func TestGenotypeWithValues(t *testing.T) {
	template := NewGenotype(NewChromosome[float64](NewRangeGene(0.0, -1.0, 1.0), NewRangeGene(0.0, -1.0, 1.0)))

	g, err := template.WithValues([][]float64{{0.25, -0.5}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, -0.5}, g.Flatten())

	_, err = template.WithValues([][]float64{{0.25}, {0.5}})
	assert.ErrorIs(t, err, ErrSizeMismatch)

	_, err = template.WithValues([][]float64{{0.25}})
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestFold(t *testing.T) {
	g := NewGenotype(NewChromosome[int](NewRangeGene(1, 0, 9), NewRangeGene(2, 0, 9), NewRangeGene(3, 0, 9)))

	sum := FoldLeft(g, 0, func(acc, v int) int { return acc + v })
	assert.Equal(t, 6, sum)

	left := FoldLeft(g, "", func(acc string, v int) string { return acc + string(rune('0'+v)) })
	right := FoldRight(g, "", func(v int, acc string) string { return acc + string(rune('0'+v)) })
	assert.Equal(t, "123", left)
	assert.Equal(t, "321", right)
}

func TestBuilders(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))

	assert.Equal(t, 8, NewBoolChromosome(r, 8).Size())

	ints := NewIntChromosome(r, 10, 1, 6)
	assert.Equal(t, 10, ints.Size())
	assert.True(t, ints.Verify())

	floats := NewFloatChromosome(r, 4, -2, 2)
	assert.True(t, floats.Verify())
}
