package query

import (
	"golang.org/x/exp/constraints"

	"github.com/behrlich/postflop-query/pkg/cards"
)

// normalize returns the joint-consistent weight of every hand: the sum of
// w0[i]*w1[j] over opponent hands that share no card with it or the board.
// Both results sum to the same total mass
func normalize(hands [2][]cards.Hand, board cards.Mask, w [2][]float32) [2][]float64 {
	n := [2][]float64{
		make([]float64, len(w[0])),
		make([]float64, len(w[1])),
	}

	for i, h0 := range hands[0] {
		if w[0][i] <= 0 || h0.Mask().Overlaps(board) {
			continue
		}
		dead := board | h0.Mask()
		for j, h1 := range hands[1] {
			if w[1][j] <= 0 || h1.Mask().Overlaps(dead) {
				continue
			}
			joint := float64(w[0][i]) * float64(w[1][j])
			n[0][i] += joint
			n[1][j] += joint
		}
	}
	return n
}

// weightedAverage averages values over weights. With no weight the
// result is NaN
func weightedAverage[W constraints.Float](values []float32, weights []W) float64 {
	sum, weightSum := 0.0, 0.0
	for i, v := range values {
		sum += float64(v) * float64(weights[i])
		weightSum += float64(weights[i])
	}
	return sum / weightSum
}
