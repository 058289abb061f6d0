package tree

import (
	"fmt"

	"github.com/behrlich/postflop-query/pkg/cards"
	"github.com/behrlich/postflop-query/pkg/notation"
	"github.com/behrlich/postflop-query/pkg/solver"
)

// Node is a node of an in-memory solved game tree
type Node struct {
	kind solver.NodeKind

	// Player index (0 or 1) whose turn it is to act
	// Only meaningful for player nodes
	player int

	// Player who folded at a terminal node, -1 for a showdown
	folder int

	// Chips each player has put in beyond the starting pot
	totalBet [2]int

	actions  []notation.Action
	children []*Node

	// Chance node metadata
	possible     cards.Mask
	isomorphisms []solver.Isomorphism

	// Solved statistics
	strategy     solver.Table
	actionValues solver.Table
	cfValues     [2]solver.Table
	equity       [2]solver.Table
}

// Kind implements solver.Node
func (n *Node) Kind() solver.NodeKind { return n.kind }

// Player implements solver.Node
func (n *Node) Player() int { return n.player }

// Actions implements solver.Node
func (n *Node) Actions() []notation.Action { return n.actions }

// Child implements solver.Node
func (n *Node) Child(action int) solver.Node {
	if action < 0 || action >= len(n.children) {
		return nil
	}
	return n.children[action]
}

// PossibleCards implements solver.Node
func (n *Node) PossibleCards() cards.Mask { return n.possible }

// Isomorphisms implements solver.Node
func (n *Node) Isomorphisms() []solver.Isomorphism { return n.isomorphisms }

// TotalBet implements solver.Node
func (n *Node) TotalBet() [2]int { return n.totalBet }

// Strategy implements solver.Node
func (n *Node) Strategy() solver.Table { return n.strategy }

// ActionValues implements solver.Node
func (n *Node) ActionValues() solver.Table { return n.actionValues }

// CFValues implements solver.Node
func (n *Node) CFValues(player int) solver.Table { return n.cfValues[player] }

// Equity implements solver.Node
func (n *Node) Equity(player int) solver.Table { return n.equity[player] }

// IsShowdown returns true if this is a terminal showdown node
func (n *Node) IsShowdown() bool {
	return n.kind == solver.Terminal && n.folder < 0
}

// String returns a human-readable representation of the node
func (n *Node) String() string {
	switch n.kind {
	case solver.Terminal:
		if n.folder >= 0 {
			return fmt.Sprintf("Terminal{fold=%d, bets=%v}", n.folder, n.totalBet)
		}
		return fmt.Sprintf("Terminal{showdown, bets=%v}", n.totalBet)
	case solver.Chance:
		return fmt.Sprintf("Chance{cards=%d, isomorphic=%d, bets=%v}", len(n.actions), len(n.isomorphisms), n.totalBet)
	default:
		return fmt.Sprintf("Decision{player=%d, actions=%d, bets=%v}", n.player, len(n.actions), n.totalBet)
	}
}

// Game is an in-memory solved game
type Game struct {
	config  solver.Config
	root    *Node
	hands   [2][]cards.Hand
	weights [2][]float32
}

// Config implements solver.Game
func (g *Game) Config() solver.Config { return g.config }

// Root implements solver.Game
func (g *Game) Root() solver.Node { return g.root }

// PrivateCards implements solver.Game
func (g *Game) PrivateCards(player int) []cards.Hand { return g.hands[player] }

// InitialWeights implements solver.Game
func (g *Game) InitialWeights(player int) []float32 { return g.weights[player] }

// NumNodes returns the number of nodes in the tree
func (g *Game) NumNodes() int {
	count := 0
	var walk func(n *Node)
	walk = func(n *Node) {
		count++
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(g.root)
	return count
}
