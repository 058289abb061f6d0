package tree

import (
	"math"

	"github.com/behrlich/postflop-query/pkg/notation"
)

// ActionConfig specifies the bets of a player who is not facing a bet
type ActionConfig struct {
	// BetSizes are pot-relative bet sizes (e.g., 0.5 = half pot)
	BetSizes []float64

	// Geometric, when set, adds NumGeometricSizes sizes around the
	// geometric bet
	Geometric         *GeometricSizing
	NumGeometricSizes int

	// AllIn adds a shove unless a bet size already puts the stack in
	AllIn bool
}

// GenerateActions returns the actions of a player with pot in the middle
// and stack behind. Facing a bet the player folds or calls; otherwise the
// player checks or bets one of the configured sizes. A bet reaching the
// stack becomes an all-in
func GenerateActions(pot, stack int, facing bool, config ActionConfig) []notation.Action {
	if facing {
		return []notation.Action{notation.FoldAction, notation.CallAction}
	}

	actions := []notation.Action{notation.CheckAction}
	if stack <= 0 {
		return actions
	}

	fractions := append([]float64(nil), config.BetSizes...)
	if config.Geometric != nil {
		n := config.NumGeometricSizes
		if n < 1 {
			n = 1
		}
		fractions = append(fractions, config.Geometric.Fractions(pot, n)...)
	}

	seen := make(map[notation.Action]bool)
	add := func(a notation.Action) {
		if !seen[a] {
			seen[a] = true
			actions = append(actions, a)
		}
	}

	for _, f := range fractions {
		amount := int(math.Round(float64(pot) * f))
		switch {
		case amount < 1:
			continue
		case amount >= stack:
			add(notation.AllInAction(stack))
		default:
			add(notation.BetAction(amount))
		}
	}
	if config.AllIn {
		add(notation.AllInAction(stack))
	}
	return actions
}
