package engine

import "math/rand"

// weightedIndex draws an index proportionally to weights. Non-positive
// weights never win. It returns -1 when nothing can be drawn.
func weightedIndex(r *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	pick := r.Float64() * total
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		if pick < w {
			return i
		}
		pick -= w
	}
	return last
}

// drawDistinct draws up to n distinct indexes, weighted, without replacement.
func drawDistinct(r *rand.Rand, weights []float64, n int) []int {
	w := append([]float64(nil), weights...)
	var out []int
	for len(out) < n {
		i := weightedIndex(r, w)
		if i < 0 {
			break
		}
		out = append(out, i)
		w[i] = 0
	}
	return out
}
