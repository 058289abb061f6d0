package query

import (
	"github.com/rs/zerolog"

	"github.com/behrlich/postflop-query/pkg/cards"
	"github.com/behrlich/postflop-query/pkg/notation"
	"github.com/behrlich/postflop-query/pkg/solver"
)

// Status of a card in a chance report
const (
	NotPossible = iota
	Empty
	Normal
)

// ChanceReport aggregates, for every card a chance node can deal, what
// each player holds after the card and an optional suffix of actions
type ChanceReport struct {
	Status [52]int

	Combos [2][52]float64
	Equity [2][52]float64
	EV     [2][52]float64
	EQR    [2][52]float64

	// Action-major: Strategy[a*52+card] is the share of the first acting
	// player's weight that takes action a
	Strategy   []float64
	NumActions int
}

// chanceReport replays base's history followed by each possible card and
// suffix. A card whose line cannot be replayed is reported as not
// possible
func chanceReport(game solver.Game, base *state, suffix []notation.Action, log zerolog.Logger) (*ChanceReport, error) {
	if base.node.Kind() != solver.Chance {
		return nil, ErrNotChanceNode
	}

	report := &ChanceReport{}
	possible := base.possibleCards()
	hs := hands(game)

	for c := cards.Card(0); c < 52; c++ {
		if !possible.Has(c) {
			continue
		}

		line := make([]notation.Action, 0, len(base.history)+1+len(suffix))
		line = append(line, base.history...)
		line = append(line, notation.ChanceAction(c))
		line = append(line, suffix...)

		st, err := replay(game, line, log)
		if err != nil {
			log.Warn().Err(err).Stringer("card", c).Msg("card skipped in chance report")
			continue
		}
		report.add(c, st, hs, eqrBase(game, st.node))
	}

	return report, nil
}

// add fills the report entries of card c from the replayed state st
func (r *ChanceReport) add(c cards.Card, st *state, hs [2][]cards.Hand, base [2]int) {
	var w [2][]float32
	var empty [2]bool
	for p := range w {
		w[p] = truncate(st.weights[p])
		empty[p] = isEmpty(w[p])

		sum := 0.0
		for _, v := range w[p] {
			sum += float64(v)
		}
		r.Combos[p][c] = Round(sum)
	}

	nw := normalize(hs, cards.MaskOf(st.board...), st.weights)
	node := st.node

	if node.Kind() == solver.Player && !empty[node.Player()] {
		player := node.Player()
		numHands := len(st.weights[player])
		numActions := len(node.Actions())
		if r.Strategy == nil {
			r.NumActions = numActions
			r.Strategy = make([]float64, numActions*52)
		}

		strategy := st.strategy(numHands)
		for a := 0; a < min(numActions, r.NumActions); a++ {
			row := strategy[a*numHands : (a+1)*numHands]
			var share float64
			if empty[player^1] {
				share = weightedAverage(row, w[player])
			} else {
				share = weightedAverage(row, nw[player])
			}
			r.Strategy[a*52+int(c)] = Round(share)
		}
	}

	if empty[0] || empty[1] {
		r.Status[c] = Empty
		return
	}
	r.Status[c] = Normal

	for p := range nw {
		numHands := len(st.weights[p])
		eq := perHand(st.decodeHands(node.Equity(p), p, numHands), st.weights[p], nw[p])
		ev := perHand(st.decodeHands(node.CFValues(p), p, numHands), st.weights[p], nw[p])

		equity := weightedAverage(eq, nw[p])
		value := weightedAverage(ev, nw[p])
		r.Equity[p][c] = Round(equity)
		r.EV[p][c] = Round(value)
		r.EQR[p][c] = eqr(value, equity, float64(base[p]))
	}
}
