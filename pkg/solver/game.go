package solver

import (
	"github.com/pkg/errors"

	"github.com/behrlich/postflop-query/pkg/cards"
	"github.com/behrlich/postflop-query/pkg/notation"
)

// NodeKind identifies what happens at a node of a solved game tree
type NodeKind uint8

const (
	// Terminal nodes end the hand (fold or showdown)
	Terminal NodeKind = iota
	// Chance nodes deal the next board card
	Chance
	// Player nodes are decision points for one of the two players
	Player
)

// String returns the node kind as a string
func (k NodeKind) String() string {
	switch k {
	case Terminal:
		return "terminal"
	case Chance:
		return "chance"
	case Player:
		return "player"
	default:
		return "unknown"
	}
}

// ErrInvalidConfig is returned for a starting pot or stack that cannot be played
var ErrInvalidConfig = errors.New("invalid game config")

// Config is the tree-level configuration of a solved game
type Config struct {
	Board          []cards.Card // Initial board, 3 to 5 cards
	StartingPot    int
	EffectiveStack int
}

// Validate checks the board and chip amounts
func (c Config) Validate() error {
	if err := cards.ValidateBoard(c.Board); err != nil {
		return err
	}
	if c.StartingPot <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "starting pot %d", c.StartingPot)
	}
	if c.EffectiveStack < 0 {
		return errors.Wrapf(ErrInvalidConfig, "effective stack %d", c.EffectiveStack)
	}
	return nil
}

// Isomorphism records a card that was not solved explicitly because it is
// suit-equivalent to the dealt card at Branch. Swap holds, per player, the
// hand index pairs that turn the canonical branch's tables into the ones
// for Card
type Isomorphism struct {
	Card   cards.Card
	Branch int
	Swap   [2]cards.SwapList
}

// Game is a read-only view of a solved two-player postflop game.
//
// Private hands are indexed per player in a fixed order for the whole game;
// every per-hand table of every node uses that order
type Game interface {
	Config() Config
	Root() Node
	PrivateCards(player int) []cards.Hand
	InitialWeights(player int) []float32
}

// Node is a read-only view of one node of a solved game tree.
//
// Per-hand tables are laid out action-major: entry a*numHands+i belongs to
// action a and hand i of the acting player. Counterfactual value and equity
// tables are sums weighted by the opponent's reach at the node
type Node interface {
	Kind() NodeKind

	// Player returns the acting player (0 = OOP, 1 = IP) of a player node
	Player() int

	Actions() []notation.Action
	Child(action int) Node

	// PossibleCards returns the cards a chance node can deal, including
	// cards that resolve through an isomorphism
	PossibleCards() cards.Mask
	Isomorphisms() []Isomorphism

	// TotalBet returns the chips each player has put in beyond the starting pot
	TotalBet() [2]int

	// Strategy returns the cumulative strategy of a player node
	Strategy() Table
	// ActionValues returns the counterfactual value of each action for the acting player
	ActionValues() Table
	CFValues(player int) Table
	Equity(player int) Table
}
