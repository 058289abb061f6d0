package cards

import (
	"github.com/pkg/errors"
)

// Hand is a two-card private holding. Card1 is always the lower card
type Hand struct {
	Card1 Card
	Card2 Card
}

// NewHand returns the hand holding a and b in canonical order
func NewHand(a, b Card) Hand {
	if a > b {
		a, b = b, a
	}
	return Hand{Card1: a, Card2: b}
}

// Mask returns the set of the hand's two cards
func (h Hand) Mask() Mask {
	return h.Card1.Bit() | h.Card2.Bit()
}

// Pack encodes the hand as card1 | card2<<8
func (h Hand) Pack() uint16 {
	return uint16(h.Card1) | uint16(h.Card2)<<8
}

// String returns the hand in standard notation, higher card first (e.g., "AsKh")
func (h Hand) String() string {
	return h.Card2.String() + h.Card1.String()
}

// SwapSuits exchanges suits a and b on a single card
func SwapSuits(c Card, a, b Suit) Card {
	switch c.Suit() {
	case a:
		return NewCard(c.Rank(), b)
	case b:
		return NewCard(c.Rank(), a)
	default:
		return c
	}
}

// SwapSuits exchanges suits a and b on both cards of the hand
func (h Hand) SwapSuits(a, b Suit) Hand {
	return NewHand(SwapSuits(h.Card1, a, b), SwapSuits(h.Card2, a, b))
}

// SwapPair records two hand slots that exchange places under a suit swap
type SwapPair struct {
	I int
	J int
}

// SwapList is the set of slot exchanges turning a suit-swapped hand list
// back into itself
type SwapList []SwapPair

// Apply exchanges the listed slots of v in place. Applying the same list
// twice restores the original order
func (l SwapList) Apply(v []float32) {
	for _, p := range l {
		v[p.I], v[p.J] = v[p.J], v[p.I]
	}
}

// SuitSwapList returns the pairs of hand indices that map onto each other
// when suits a and b are exchanged. Hands that map onto themselves or onto
// hands outside the list are not included
func SuitSwapList(hands []Hand, a, b Suit) SwapList {
	if a == b {
		return nil
	}

	index := make(map[Hand]int, len(hands))
	for i, h := range hands {
		index[h] = i
	}

	var list SwapList
	for i, h := range hands {
		j, ok := index[h.SwapSuits(a, b)]
		if ok && i < j {
			list = append(list, SwapPair{I: i, J: j})
		}
	}
	return list
}

// ErrInvalidBoardLength is returned when a board does not hold 3, 4 or 5 cards
var ErrInvalidBoardLength = errors.New("invalid board length")

// ValidateBoard checks that the board has a postflop length and no duplicates
func ValidateBoard(board []Card) error {
	if len(board) < 3 || len(board) > 5 {
		return errors.Wrapf(ErrInvalidBoardLength, "got %d cards", len(board))
	}

	var seen Mask
	for _, c := range board {
		if !c.Valid() {
			return errors.Wrapf(ErrInvalidCard, "board card %d", c)
		}
		if seen.Has(c) {
			return errors.Wrapf(ErrInvalidCard, "duplicate card in board: %v", c)
		}
		seen |= c.Bit()
	}
	return nil
}
