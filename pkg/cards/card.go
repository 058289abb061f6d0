package cards

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Rank represents a card rank (2-A)
type Rank uint8

const (
	Two Rank = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Suit represents a card suit. The order matches the solver's card encoding
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// Card is a single playing card encoded as rank*4 + suit (0-51)
type Card uint8

const (
	// NumCards is the size of the deck
	NumCards = 52

	// NotDealt marks a board slot that has no card yet
	NotDealt Card = 0xff
)

// ErrInvalidCard is returned for card strings or numbers outside the deck
var ErrInvalidCard = errors.New("invalid card")

// NewCard creates a card from rank and suit
func NewCard(rank Rank, suit Suit) Card {
	return Card(uint8(rank)*4 + uint8(suit))
}

// Rank returns the rank of the card
func (c Card) Rank() Rank {
	return Rank(c >> 2)
}

// Suit returns the suit of the card
func (c Card) Suit() Suit {
	return Suit(c & 3)
}

// Valid reports whether c is one of the 52 cards
func (c Card) Valid() bool {
	return c < NumCards
}

// Bit returns the card's bit in a Mask
func (c Card) Bit() Mask {
	return Mask(1) << c
}

// ParseCard parses a card from string notation (e.g., "As", "Kh", "Td")
// or from its numeric encoding (e.g., "51")
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n >= NumCards {
			return NotDealt, errors.Wrapf(ErrInvalidCard, "card number %d out of range", n)
		}
		return Card(n), nil
	}

	if len(s) != 2 {
		return NotDealt, errors.Wrapf(ErrInvalidCard, "%q (must be 2 characters)", s)
	}

	rank, err := parseRank(s[0])
	if err != nil {
		return NotDealt, err
	}

	suit, err := parseSuit(s[1])
	if err != nil {
		return NotDealt, err
	}

	return NewCard(rank, suit), nil
}

// parseRank converts a character to a Rank
func parseRank(b byte) (Rank, error) {
	switch b {
	case '2':
		return Two, nil
	case '3':
		return Three, nil
	case '4':
		return Four, nil
	case '5':
		return Five, nil
	case '6':
		return Six, nil
	case '7':
		return Seven, nil
	case '8':
		return Eight, nil
	case '9':
		return Nine, nil
	case 'T', 't':
		return Ten, nil
	case 'J', 'j':
		return Jack, nil
	case 'Q', 'q':
		return Queen, nil
	case 'K', 'k':
		return King, nil
	case 'A', 'a':
		return Ace, nil
	default:
		return 0, errors.Wrapf(ErrInvalidCard, "invalid rank: %c", b)
	}
}

// parseSuit converts a character to a Suit
func parseSuit(b byte) (Suit, error) {
	switch b {
	case 'c', 'C':
		return Clubs, nil
	case 'd', 'D':
		return Diamonds, nil
	case 'h', 'H':
		return Hearts, nil
	case 's', 'S':
		return Spades, nil
	default:
		return 0, errors.Wrapf(ErrInvalidCard, "invalid suit: %c", b)
	}
}

// String returns the card in standard notation (e.g., "As", "Kh")
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return c.Rank().String() + c.Suit().String()
}

// String returns the rank as a single character
func (r Rank) String() string {
	const ranks = "23456789TJQKA"
	if int(r) >= len(ranks) {
		return "?"
	}
	return ranks[r : r+1]
}

// String returns the suit as a single character
func (s Suit) String() string {
	switch s {
	case Clubs:
		return "c"
	case Diamonds:
		return "d"
	case Hearts:
		return "h"
	case Spades:
		return "s"
	default:
		return "?"
	}
}

// ParseCards parses multiple cards from a string (e.g., "AsKhQd")
func ParseCards(s string) ([]Card, error) {
	s = strings.ReplaceAll(s, " ", "")
	if len(s)%2 != 0 {
		return nil, errors.Wrapf(ErrInvalidCard, "%q (must have even length)", s)
	}

	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		card, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, errors.Wrapf(err, "position %d", i)
		}
		cards = append(cards, card)
	}

	return cards, nil
}

// FormatCards joins the cards in standard notation (e.g., "AsKhQd")
func FormatCards(cs []Card) string {
	var b strings.Builder
	for _, c := range cs {
		b.WriteString(c.String())
	}
	return b.String()
}

// Mask is a set of cards, one bit per card
type Mask uint64

// MaskOf returns the set containing the given cards
func MaskOf(cs ...Card) Mask {
	var m Mask
	for _, c := range cs {
		if c.Valid() {
			m |= c.Bit()
		}
	}
	return m
}

// Has reports whether c is in the set
func (m Mask) Has(c Card) bool {
	return c.Valid() && m&c.Bit() != 0
}

// Overlaps reports whether the two sets share a card
func (m Mask) Overlaps(other Mask) bool {
	return m&other != 0
}
