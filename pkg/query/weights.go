package query

import (
	"github.com/behrlich/postflop-query/pkg/solver"
)

// weightFloor is the smallest weight shown as nonzero
const weightFloor = 0.0005

// propagate folds the recorded steps from the deepest one back to the
// root. Strategy rows multiply the acting player's weights and swaps
// reorder both players' weights; the initial range weights are applied
// once at the end and hands blocked by the dealt cards are zeroed
func propagate(game solver.Game, st *state) [2][]float32 {
	var w [2][]float32
	for p := range w {
		w[p] = make([]float32, len(game.PrivateCards(p)))
		for i := range w[p] {
			w[p][i] = 1
		}
	}

	for k := len(st.steps) - 1; k >= 0; k-- {
		s := st.steps[k]
		switch s.kind {
		case playerStep:
			row := solver.StrategyRow(s.node.Strategy(), len(s.node.Actions()), len(w[s.player]), s.action)
			for i, p := range row {
				w[s.player][i] *= p
			}
		case swapStep:
			s.swap[0].Apply(w[0])
			s.swap[1].Apply(w[1])
		}
	}

	dealt := st.dealtMask()
	for p := range w {
		initial := game.InitialWeights(p)
		for i, h := range game.PrivateCards(p) {
			if h.Mask().Overlaps(dealt) {
				w[p][i] = 0
				continue
			}
			w[p][i] *= initial[i]
		}
	}
	return w
}

// truncate drops weights too small to display
func truncate(w []float32) []float32 {
	out := make([]float32, len(w))
	for i, v := range w {
		if v >= weightFloor {
			out[i] = v
		}
	}
	return out
}

// isEmpty reports whether every weight is zero
func isEmpty(w []float32) bool {
	for _, v := range w {
		if v != 0 {
			return false
		}
	}
	return true
}
