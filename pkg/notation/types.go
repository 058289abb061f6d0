package notation

import (
	"fmt"
	"strconv"

	"github.com/behrlich/postflop-query/pkg/cards"
)

// ActionType represents a poker action
type ActionType uint8

const (
	None ActionType = iota
	Fold
	Check
	Call
	Bet
	Raise
	AllIn
	Chance
)

// String returns the action type as a string
func (a ActionType) String() string {
	switch a {
	case Fold:
		return "fold"
	case Check:
		return "check"
	case Call:
		return "call"
	case Bet:
		return "bet"
	case Raise:
		return "raise"
	case AllIn:
		return "allin"
	case Chance:
		return "chance"
	default:
		return "unknown"
	}
}

// Action is a player decision or a dealt card. Amount is the total chip
// amount for bets, raises and all-ins; Card is only set for Chance
type Action struct {
	Type   ActionType
	Amount int
	Card   cards.Card
}

// Convenience constructors matching the solver's action variants
var (
	FoldAction  = Action{Type: Fold}
	CheckAction = Action{Type: Check}
	CallAction  = Action{Type: Call}
)

// BetAction returns a bet of the given amount
func BetAction(amount int) Action { return Action{Type: Bet, Amount: amount} }

// RaiseAction returns a raise to the given amount
func RaiseAction(amount int) Action { return Action{Type: Raise, Amount: amount} }

// AllInAction returns an all-in of the given amount
func AllInAction(amount int) Action { return Action{Type: AllIn, Amount: amount} }

// ChanceAction returns the dealing of a card
func ChanceAction(card cards.Card) Action { return Action{Type: Chance, Card: card} }

// String returns the action as a compact token (e.g., "X", "B10", "R30", "37")
func (a Action) String() string {
	switch a.Type {
	case Fold:
		return "F"
	case Check:
		return "X"
	case Call:
		return "C"
	case Bet:
		return "B" + strconv.Itoa(a.Amount)
	case Raise:
		return "R" + strconv.Itoa(a.Amount)
	case AllIn:
		return "A" + strconv.Itoa(a.Amount)
	case Chance:
		return strconv.Itoa(int(a.Card))
	default:
		return "?"
	}
}

// Label returns the action in display form (e.g., "Check:0", "Bet:10", "Allin:100")
func (a Action) Label() string {
	switch a.Type {
	case Fold:
		return "Fold:0"
	case Check:
		return "Check:0"
	case Call:
		return "Call:0"
	case Bet:
		return fmt.Sprintf("Bet:%d", a.Amount)
	case Raise:
		return fmt.Sprintf("Raise:%d", a.Amount)
	case AllIn:
		return fmt.Sprintf("Allin:%d", a.Amount)
	case Chance:
		return fmt.Sprintf("Chance:%s", a.Card)
	default:
		return "Unknown:0"
	}
}

// IsChance reports whether the action deals a card
func (a Action) IsChance() bool {
	return a.Type == Chance
}

// Street represents which betting round we're on
type Street uint8

const (
	Preflop Street = iota
	Flop
	Turn
	River
)

// String returns the street name
func (s Street) String() string {
	switch s {
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	default:
		return "unknown"
	}
}

// GetStreet determines the street based on board cards
func GetStreet(boardSize int) Street {
	switch boardSize {
	case 3:
		return Flop
	case 4:
		return Turn
	case 5:
		return River
	default:
		return Preflop
	}
}
