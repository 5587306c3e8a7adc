package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightedIndex(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	assert.Equal(t, -1, weightedIndex(r, nil))
	assert.Equal(t, -1, weightedIndex(r, []float64{0, -1}))
	for i := 0; i < 50; i++ {
		assert.Equal(t, 2, weightedIndex(r, []float64{0, 0, 3}))
	}
}

func TestDrawDistinct(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	got := drawDistinct(r, []float64{1, 1, 0, 1}, 5)
	assert.Len(t, got, 3)
	assert.ElementsMatch(t, []int{0, 1, 3}, got)

	assert.Len(t, drawDistinct(r, []float64{1, 1, 1}, 2), 2)
}
