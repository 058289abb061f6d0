package solver

import (
	"fmt"
	"strings"
)

// AverageStrategy converts a cumulative strategy table into per-hand
// probabilities. The table is action-major with numHands entries per
// action. Hands whose cumulative sum is zero get a uniform distribution,
// and so does every hand when the table does not hold numActions rows
func AverageStrategy(cumulative Table, numActions, numHands int) []float32 {
	if numActions == 0 || numHands == 0 {
		return nil
	}

	var strategy []float32
	if cumulative.Len() == numActions*numHands {
		strategy = cumulative.Decode()
	} else {
		strategy = make([]float32, numActions*numHands)
	}

	for i := 0; i < numHands; i++ {
		// Sum all strategy values
		normalizingSum := float32(0)
		for a := 0; a < numActions; a++ {
			normalizingSum += strategy[a*numHands+i]
		}

		// Normalize
		if normalizingSum > 0 {
			for a := 0; a < numActions; a++ {
				strategy[a*numHands+i] /= normalizingSum
			}
		} else {
			// If no data, use uniform
			uniform := 1 / float32(numActions)
			for a := 0; a < numActions; a++ {
				strategy[a*numHands+i] = uniform
			}
		}
	}

	return strategy
}

// StrategyRow returns the probability of one action for every hand of the
// acting player
func StrategyRow(cumulative Table, numActions, numHands, action int) []float32 {
	if action < 0 || action >= numActions {
		return make([]float32, numHands)
	}
	strategy := AverageStrategy(cumulative, numActions, numHands)
	return strategy[action*numHands : (action+1)*numHands]
}

// FormatStrategy returns a human-readable summary of a node's average
// strategy, one line per action with the mean probability over hands
func FormatStrategy(n Node, numHands int) string {
	actions := n.Actions()
	if n.Kind() != Player || len(actions) == 0 || numHands == 0 {
		return ""
	}

	strategy := AverageStrategy(n.Strategy(), len(actions), numHands)
	var b strings.Builder
	fmt.Fprintf(&b, "Player %d:\n", n.Player())
	for a, action := range actions {
		sum := float32(0)
		for _, p := range strategy[a*numHands : (a+1)*numHands] {
			sum += p
		}
		fmt.Fprintf(&b, "  %s: %.1f%%\n", action.Label(), sum/float32(numHands)*100)
	}
	return b.String()
}
