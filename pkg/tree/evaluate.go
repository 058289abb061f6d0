package tree

import (
	"math"

	"github.com/pkg/errors"

	"github.com/behrlich/postflop-query/pkg/cards"
	"github.com/behrlich/postflop-query/pkg/equity"
	"github.com/behrlich/postflop-query/pkg/solver"
)

// values holds per-hand counterfactual values and equities of both players,
// each summed over the opponent's hands weighted by the opponent's reach.
// Counterfactual values are chips received from the pot
type values struct {
	cfv [2][]float32
	eq  [2][]float32
}

func (b *Builder) newValues() values {
	var v values
	for p := range b.hands {
		v.cfv[p] = make([]float32, len(b.hands[p]))
		v.eq[p] = make([]float32, len(b.hands[p]))
	}
	return v
}

// add accumulates scale * other into v
func (v values) add(other values, scale float32) {
	for p := range v.cfv {
		for i := range v.cfv[p] {
			v.cfv[p][i] += other.cfv[p][i] * scale
			v.eq[p][i] += other.eq[p][i] * scale
		}
	}
}

// swapped returns a copy of v with every player's hands exchanged per swap
func (v values) swapped(swap [2]cards.SwapList) values {
	var out values
	for p := range v.cfv {
		out.cfv[p] = append([]float32(nil), v.cfv[p]...)
		out.eq[p] = append([]float32(nil), v.eq[p]...)
		swap[p].Apply(out.cfv[p])
		swap[p].Apply(out.eq[p])
	}
	return out
}

// evaluate computes and stores the statistics of n and its subtree. reach
// holds both players' reach probabilities at n and is never modified
func (b *Builder) evaluate(n *Node, board []cards.Card, reach [2][]float32) (values, error) {
	var v values
	var err error
	switch n.kind {
	case solver.Terminal:
		v, err = b.evaluateTerminal(n, board, reach)
	case solver.Chance:
		v, err = b.evaluateChance(n, board, reach)
	default:
		v, err = b.evaluateDecision(n, board, reach)
	}
	if err != nil {
		return values{}, err
	}

	for p := range v.cfv {
		n.cfValues[p] = b.signedTable(v.cfv[p])
		n.equity[p] = b.unsignedTable(v.eq[p])
	}
	return v, nil
}

func (b *Builder) evaluateTerminal(n *Node, board []cards.Card, reach [2][]float32) (values, error) {
	m, err := b.shareMatrix(board)
	if err != nil {
		return values{}, err
	}

	pot := float32(b.config.StartingPot + n.totalBet[0] + n.totalBet[1])
	v := b.newValues()
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			share, ok := m.At(i, j)
			if !ok {
				continue
			}
			v.eq[0][i] += reach[1][j] * share
			v.eq[1][j] += reach[0][i] * (1 - share)

			switch n.folder {
			case 0:
				v.cfv[1][j] += reach[0][i] * pot
			case 1:
				v.cfv[0][i] += reach[1][j] * pot
			}
		}
	}

	if n.IsShowdown() {
		for p := range v.cfv {
			for i, eq := range v.eq[p] {
				v.cfv[p][i] = eq * pot
			}
		}
	}
	return v, nil
}

func (b *Builder) evaluateDecision(n *Node, board []cards.Card, reach [2][]float32) (values, error) {
	player, opp := n.player, n.player^1
	numHands := len(b.hands[player])
	strategy := solver.AverageStrategy(n.strategy, len(n.actions), numHands)

	v := b.newValues()
	actionValues := make([]float32, len(n.actions)*numHands)
	for a, child := range n.children {
		row := strategy[a*numHands : (a+1)*numHands]

		var childReach [2][]float32
		childReach[opp] = reach[opp]
		childReach[player] = make([]float32, numHands)
		for i, p := range row {
			childReach[player][i] = reach[player][i] * p
		}

		cv, err := b.evaluate(child, board, childReach)
		if err != nil {
			return values{}, errors.Wrapf(err, "action %v", n.actions[a])
		}
		copy(actionValues[a*numHands:], cv.cfv[player])

		for i, p := range row {
			v.cfv[player][i] += p * cv.cfv[player][i]
			v.eq[player][i] += p * cv.eq[player][i]
		}
		for j := range cv.cfv[opp] {
			v.cfv[opp][j] += cv.cfv[opp][j]
			v.eq[opp][j] += cv.eq[opp][j]
		}
	}

	n.actionValues = b.signedTable(actionValues)
	return v, nil
}

func (b *Builder) evaluateChance(n *Node, board []cards.Card, reach [2][]float32) (values, error) {
	if len(board) >= 5 {
		return values{}, errors.Wrap(ErrInvalidTree, "chance node after the river")
	}

	// Every (hand, hand) pair sees the same number of possible next cards
	factor := 1 / float32(cards.NumCards-len(board)-4)
	boardMask := cards.MaskOf(board...)

	v := b.newValues()
	children := make([]values, len(n.children))
	for i, child := range n.children {
		card := n.actions[i].Card
		if boardMask.Has(card) {
			return values{}, errors.Wrapf(ErrInvalidTree, "card %v is already on the board", card)
		}

		childBoard := append(append([]cards.Card(nil), board...), card)
		cv, err := b.evaluate(child, childBoard, b.blockReach(reach, card))
		if err != nil {
			return values{}, errors.Wrapf(err, "card %v", card)
		}
		children[i] = cv
		v.add(cv, factor)
	}

	for _, iso := range n.isomorphisms {
		canonical := n.actions[iso.Branch].Card
		if boardMask.Has(iso.Card) {
			return values{}, errors.Wrapf(ErrInvalidTree, "card %v is already on the board", iso.Card)
		}
		if !b.symmetric(board, reach, iso.Card.Suit(), canonical.Suit(), iso.Swap) {
			return values{}, errors.Wrapf(ErrInvalidTree, "%v is not isomorphic to %v here", iso.Card, canonical)
		}
		v.add(children[iso.Branch].swapped(iso.Swap), factor)
	}

	return v, nil
}

// blockReach returns a copy of reach with hands holding card zeroed
func (b *Builder) blockReach(reach [2][]float32, card cards.Card) [2][]float32 {
	var out [2][]float32
	for p := range reach {
		out[p] = make([]float32, len(reach[p]))
		for i, h := range b.hands[p] {
			if !h.Mask().Has(card) {
				out[p][i] = reach[p][i]
			}
		}
	}
	return out
}

// symmetric reports whether exchanging suits s1 and s2 leaves the board,
// both hand lists and both reach vectors unchanged
func (b *Builder) symmetric(board []cards.Card, reach [2][]float32, s1, s2 cards.Suit, swap [2]cards.SwapList) bool {
	boardMask := cards.MaskOf(board...)
	for _, c := range board {
		if !boardMask.Has(cards.SwapSuits(c, s1, s2)) {
			return false
		}
	}

	for p, hands := range b.hands {
		moved := 0
		for _, h := range hands {
			if h.SwapSuits(s1, s2) != h {
				moved++
			}
		}
		if moved != 2*len(swap[p]) {
			return false
		}
		for _, pair := range swap[p] {
			if !approxEqual(reach[p][pair.I], reach[p][pair.J]) {
				return false
			}
		}
	}
	return true
}

func approxEqual(a, b float32) bool {
	diff := math.Abs(float64(a - b))
	return diff <= 1e-6*math.Max(math.Abs(float64(a)), math.Abs(float64(b)))+1e-12
}

func (b *Builder) shareMatrix(board []cards.Card) (*equity.Matrix, error) {
	key := cards.MaskOf(board...)
	if m, ok := b.matrices[key]; ok {
		return m, nil
	}
	m, err := b.calc.ShareMatrix(board, b.hands[0], b.hands[1])
	if err != nil {
		return nil, err
	}
	b.matrices[key] = m
	return m, nil
}
