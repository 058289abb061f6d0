package query

import (
	"github.com/behrlich/postflop-query/pkg/cards"
	"github.com/behrlich/postflop-query/pkg/solver"
)

// Results summarizes the node at the cursor. Every value is rounded for
// display; per-hand arrays follow the order of the game's private cards
type Results struct {
	// "oop", "ip", "chance" or "terminal"
	CurrentPlayer string
	NumActions    int

	// Bit 0 is set when OOP has no weight left, bit 1 for IP
	IsEmpty int

	// Pot used as the EQR denominator for each player
	EqrBase [2]int

	Weights    [2][]float64
	Normalizer [2][]float64

	// Empty unless both players have weight
	Equity [2][]float64
	EV     [2][]float64
	EQR    [2][]float64

	// Action-major, one row per action of the acting player
	Strategy []float64
	ActionEV []float64
}

// unswap reorders values of a player from the solved branch order to the
// literal order: the river swap first, then the turn swap
func (st *state) unswap(player int, values []float32) {
	st.swaps[riverSwap][player].Apply(values)
	st.swaps[turnSwap][player].Apply(values)
}

// decodeHands decodes a per-hand table of a player in literal order. A
// missing table decodes as zeros
func (st *state) decodeHands(t solver.Table, player, numHands int) []float32 {
	if t.Len() != numHands {
		return make([]float32, numHands)
	}
	values := t.Decode()
	st.unswap(player, values)
	return values
}

// decodeRows decodes an action-major table of a player in literal order
func (st *state) decodeRows(t solver.Table, player, numHands, numActions int) []float32 {
	if t.Len() != numHands*numActions {
		return make([]float32, numHands*numActions)
	}
	values := make([]float32, 0, numHands*numActions)
	for a := 0; a < numActions; a++ {
		row := t.Row(a, numHands)
		st.unswap(player, row)
		values = append(values, row...)
	}
	return values
}

// strategy returns the average strategy of the acting player in literal
// order
func (st *state) strategy(numHands int) []float32 {
	values := solver.AverageStrategy(st.node.Strategy(), len(st.node.Actions()), numHands)
	for a := 0; a < len(st.node.Actions()); a++ {
		st.unswap(st.node.Player(), values[a*numHands:(a+1)*numHands])
	}
	return values
}

// perHand turns opponent-reach-weighted sums into per-hand values: raw *
// w / n, or zero where n is zero
func perHand(raw, w []float32, n []float64) []float32 {
	out := make([]float32, len(raw))
	for i, v := range raw {
		if n[i] > 0 {
			out[i] = float32(float64(v) * float64(w[i]) / n[i])
		}
	}
	return out
}

func playerLabel(n solver.Node) string {
	switch n.Kind() {
	case solver.Terminal:
		return "terminal"
	case solver.Chance:
		return "chance"
	}
	if n.Player() == 0 {
		return "oop"
	}
	return "ip"
}

// eqrBase returns starting pot + the smaller total bet + each player's bet
func eqrBase(game solver.Game, n solver.Node) [2]int {
	bets := n.TotalBet()
	potBase := game.Config().StartingPot + min(bets[0], bets[1])
	return [2]int{potBase + bets[0], potBase + bets[1]}
}

// hands returns the private cards of both players
func hands(game solver.Game) [2][]cards.Hand {
	return [2][]cards.Hand{game.PrivateCards(0), game.PrivateCards(1)}
}

// results decodes the node reached by st
func results(game solver.Game, st *state) *Results {
	node := st.node
	r := &Results{
		CurrentPlayer: playerLabel(node),
		EqrBase:       eqrBase(game, node),
	}
	if node.Kind() != solver.Chance {
		r.NumActions = len(node.Actions())
	}

	for p := range r.Weights {
		r.Weights[p] = truncateRound(st.weights[p])
		if isEmpty(truncate(st.weights[p])) {
			r.IsEmpty |= 1 << p
		}
	}

	var nw [2][]float64
	if r.IsEmpty > 0 {
		for p := range r.Normalizer {
			r.Normalizer[p] = append([]float64(nil), r.Weights[p]...)
		}
	} else {
		nw = normalize(hands(game), cards.MaskOf(st.board...), st.weights)
		for p := range r.Normalizer {
			numHands := len(st.weights[p])
			eq := perHand(st.decodeHands(node.Equity(p), p, numHands), st.weights[p], nw[p])
			ev := perHand(st.decodeHands(node.CFValues(p), p, numHands), st.weights[p], nw[p])

			r.Normalizer[p] = RoundAll(nw[p])
			r.Equity[p] = RoundAll(eq)
			r.EV[p] = RoundAll(ev)

			pot := float64(r.EqrBase[p])
			r.EQR[p] = make([]float64, numHands)
			for i := range eq {
				r.EQR[p][i] = eqr(float64(ev[i]), float64(eq[i]), pot)
			}
		}
	}

	if node.Kind() == solver.Player {
		player := node.Player()
		numHands := len(st.weights[player])
		r.Strategy = RoundAll(st.strategy(numHands))

		if r.IsEmpty == 0 {
			values := st.decodeRows(node.ActionValues(), player, numHands, r.NumActions)
			for a := 0; a < r.NumActions; a++ {
				row := values[a*numHands : (a+1)*numHands]
				r.ActionEV = append(r.ActionEV, RoundAll(perHand(row, st.weights[player], nw[player]))...)
			}
		}
	}

	return r
}
