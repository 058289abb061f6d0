package equity

import (
	"github.com/paulhankin/poker"
	"github.com/pkg/errors"

	"github.com/behrlich/postflop-query/pkg/cards"
)

// libCards maps our card encoding onto the evaluator's cards
var libCards [cards.NumCards]poker.Card

func init() {
	suits := [4]poker.Suit{poker.Club, poker.Diamond, poker.Heart, poker.Spade}
	for c := cards.Card(0); c < cards.NumCards; c++ {
		// The evaluator numbers ranks 1..13 with the ace low
		rank := poker.Rank(c.Rank() + 2)
		if c.Rank() == cards.Ace {
			rank = poker.Rank(1)
		}
		pc, err := poker.MakeCard(suits[c.Suit()], rank)
		if err != nil {
			panic(err)
		}
		libCards[c] = pc
	}
}

// Evaluate scores the best 5-card hand made from a hand and a full board.
// Higher scores beat lower scores
func Evaluate(hand cards.Hand, board []cards.Card) int16 {
	if len(board) != 5 {
		panic("Evaluate requires a 5-card board")
	}
	var seven [7]poker.Card
	seven[0] = libCards[hand.Card1]
	seven[1] = libCards[hand.Card2]
	for i, c := range board {
		seven[i+2] = libCards[c]
	}
	return poker.Eval7(&seven)
}

// Matrix holds the showdown pot share of every player-0 hand against every
// player-1 hand, averaged over all runouts of the board
type Matrix struct {
	rows  int
	cols  int
	share []float32
	valid []bool
}

// At returns the pot share of player-0 hand i against player-1 hand j and
// whether the two hands can be dealt together
func (m *Matrix) At(i, j int) (float32, bool) {
	k := i*m.cols + j
	return m.share[k], m.valid[k]
}

// Dims returns the number of player-0 and player-1 hands
func (m *Matrix) Dims() (int, int) {
	return m.rows, m.cols
}

// Calculator computes showdown shares between two hand lists
type Calculator struct {
	// Nothing needed for now (pure functions)
}

// NewCalculator creates a new equity calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// ShareMatrix enumerates every runout of board (3-5 cards) and records the
// average pot share (1 win, 0.5 tie, 0 loss) of each hand pair
func (c *Calculator) ShareMatrix(board []cards.Card, hands0, hands1 []cards.Hand) (*Matrix, error) {
	if err := cards.ValidateBoard(board); err != nil {
		return nil, errors.Wrap(err, "share matrix")
	}

	m := &Matrix{
		rows:  len(hands0),
		cols:  len(hands1),
		share: make([]float32, len(hands0)*len(hands1)),
		valid: make([]bool, len(hands0)*len(hands1)),
	}

	boardMask := cards.MaskOf(board...)
	for i, h0 := range hands0 {
		if h0.Mask().Overlaps(boardMask) {
			continue
		}
		for j, h1 := range hands1 {
			if h1.Mask().Overlaps(boardMask | h0.Mask()) {
				continue
			}
			k := i*m.cols + j
			m.share[k] = c.pairShare(board, h0, h1, boardMask|h0.Mask()|h1.Mask())
			m.valid[k] = true
		}
	}

	return m, nil
}

// pairShare averages player 0's share over every completion of board
func (c *Calculator) pairShare(board []cards.Card, h0, h1 cards.Hand, dead cards.Mask) float32 {
	full := make([]cards.Card, len(board), 5)
	copy(full, board)

	total := 0.0
	count := 0
	var enumerate func(from cards.Card)
	enumerate = func(from cards.Card) {
		if len(full) == 5 {
			s0 := Evaluate(h0, full)
			s1 := Evaluate(h1, full)
			if s0 > s1 {
				total++
			} else if s0 == s1 {
				total += 0.5
			}
			count++
			return
		}
		for card := from; card < cards.NumCards; card++ {
			if dead.Has(card) {
				continue
			}
			full = append(full, card)
			enumerate(card + 1)
			full = full[:len(full)-1]
		}
	}
	enumerate(0)

	if count == 0 {
		return 0.5
	}
	return float32(total / float64(count))
}
