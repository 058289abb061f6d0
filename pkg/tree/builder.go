package tree

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/behrlich/postflop-query/pkg/cards"
	"github.com/behrlich/postflop-query/pkg/equity"
	"github.com/behrlich/postflop-query/pkg/notation"
	"github.com/behrlich/postflop-query/pkg/solver"
)

// ErrInvalidTree is returned when nodes handed to the builder do not form a
// playable tree
var ErrInvalidTree = errors.New("invalid game tree")

// Builder assembles solved games from ranges, a board and an explicit tree
// of nodes with their cumulative strategies.
//
// Nodes are created bottom-up; Build then walks the finished tree from the
// root, propagating reach probabilities down and counterfactual values and
// equities back up, and stores them on every node
type Builder struct {
	config   solver.Config
	hands    [2][]cards.Hand
	weights  [2][]float32
	compress bool
	calc     *equity.Calculator
	matrices map[cards.Mask]*equity.Matrix
}

// Option configures a Builder
type Option func(*Builder)

// WithCompression stores every table as 16-bit fixed point
func WithCompression() Option {
	return func(b *Builder) { b.compress = true }
}

// NewBuilder creates a builder for the given configuration and ranges
// (index 0 is OOP, index 1 is IP)
func NewBuilder(config solver.Config, ranges [2]*notation.Range, opts ...Option) (*Builder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	b := &Builder{
		config:   config,
		calc:     equity.NewCalculator(),
		matrices: make(map[cards.Mask]*equity.Matrix),
	}
	for p, r := range ranges {
		if r == nil {
			return nil, errors.Errorf("missing range for player %d", p)
		}
		b.hands[p], b.weights[p] = notation.PrivateHands(r, config.Board)
		if len(b.hands[p]) == 0 {
			return nil, errors.Errorf("range for player %d has no hands on this board", p)
		}
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// PrivateCards returns the hands of a player in table order
func (b *Builder) PrivateCards(player int) []cards.Hand {
	return b.hands[player]
}

// Showdown creates a terminal node where the hands are compared
func (b *Builder) Showdown(totalBet [2]int) *Node {
	return &Node{kind: solver.Terminal, folder: -1, totalBet: totalBet}
}

// Fold creates a terminal node where folder gave up the pot
func (b *Builder) Fold(folder int, totalBet [2]int) *Node {
	return &Node{kind: solver.Terminal, folder: folder, totalBet: totalBet}
}

// Decision creates a player node. strategy holds one cumulative strategy
// row per action with an entry per hand of the acting player; nil means
// every action is played equally often
func (b *Builder) Decision(player int, totalBet [2]int, actions []notation.Action, strategy [][]float32, children ...*Node) (*Node, error) {
	if player != 0 && player != 1 {
		return nil, errors.Wrapf(ErrInvalidTree, "player %d", player)
	}
	if len(actions) == 0 {
		return nil, errors.Wrap(ErrInvalidTree, "decision node without actions")
	}
	if len(children) != len(actions) {
		return nil, errors.Wrapf(ErrInvalidTree, "%d actions but %d children", len(actions), len(children))
	}

	seen := make(map[notation.Action]bool, len(actions))
	for i, action := range actions {
		if action.IsChance() || action.Type == notation.None {
			return nil, errors.Wrapf(ErrInvalidTree, "action %v at a decision node", action)
		}
		if seen[action] {
			return nil, errors.Wrapf(ErrInvalidTree, "duplicate action %v", action)
		}
		if children[i] == nil {
			return nil, errors.Wrapf(ErrInvalidTree, "missing child for %v", action)
		}
		seen[action] = true
	}

	numHands := len(b.hands[player])
	cumulative := make([]float32, 0, len(actions)*numHands)
	if strategy == nil {
		for range actions {
			for i := 0; i < numHands; i++ {
				cumulative = append(cumulative, 1)
			}
		}
	} else {
		if len(strategy) != len(actions) {
			return nil, errors.Wrapf(ErrInvalidTree, "%d strategy rows for %d actions", len(strategy), len(actions))
		}
		for a, row := range strategy {
			if len(row) != numHands {
				return nil, errors.Wrapf(ErrInvalidTree, "strategy row %d has %d entries, want %d", a, len(row), numHands)
			}
			for _, v := range row {
				if v < 0 {
					return nil, errors.Wrapf(ErrInvalidTree, "negative cumulative strategy in row %d", a)
				}
			}
			cumulative = append(cumulative, row...)
		}
	}

	return &Node{
		kind:     solver.Player,
		player:   player,
		folder:   -1,
		totalBet: totalBet,
		actions:  actions,
		children: children,
		strategy: b.unsignedTable(cumulative),
	}, nil
}

// Deal is one explicitly solved branch of a chance node
type Deal struct {
	Card  cards.Card
	Child *Node
}

// Chance creates a chance node. isomorphic maps cards that are not dealt
// explicitly to the dealt card of the same rank whose subtree they share
func (b *Builder) Chance(totalBet [2]int, deals []Deal, isomorphic map[cards.Card]cards.Card) (*Node, error) {
	if len(deals) == 0 {
		return nil, errors.Wrap(ErrInvalidTree, "chance node without cards")
	}

	n := &Node{
		kind:     solver.Chance,
		folder:   -1,
		totalBet: totalBet,
		actions:  make([]notation.Action, len(deals)),
		children: make([]*Node, len(deals)),
	}

	branch := make(map[cards.Card]int, len(deals))
	for i, d := range deals {
		if !d.Card.Valid() {
			return nil, errors.Wrapf(cards.ErrInvalidCard, "chance card %d", d.Card)
		}
		if _, dup := branch[d.Card]; dup {
			return nil, errors.Wrapf(ErrInvalidTree, "card %v dealt twice", d.Card)
		}
		if d.Child == nil {
			return nil, errors.Wrapf(ErrInvalidTree, "missing child for %v", d.Card)
		}
		branch[d.Card] = i
		n.actions[i] = notation.ChanceAction(d.Card)
		n.children[i] = d.Child
		n.possible |= d.Card.Bit()
	}

	alternates := make([]cards.Card, 0, len(isomorphic))
	for card := range isomorphic {
		alternates = append(alternates, card)
	}
	sort.Slice(alternates, func(i, j int) bool { return alternates[i] < alternates[j] })

	for _, card := range alternates {
		canonical := isomorphic[card]
		idx, ok := branch[canonical]
		if !ok {
			return nil, errors.Wrapf(ErrInvalidTree, "%v maps to %v which is not dealt", card, canonical)
		}
		if _, dealt := branch[card]; dealt || !card.Valid() {
			return nil, errors.Wrapf(ErrInvalidTree, "%v cannot be isomorphic", card)
		}
		if card.Rank() != canonical.Rank() {
			return nil, errors.Wrapf(ErrInvalidTree, "%v and %v differ in rank", card, canonical)
		}

		iso := solver.Isomorphism{Card: card, Branch: idx}
		for p := range b.hands {
			iso.Swap[p] = cards.SuitSwapList(b.hands[p], card.Suit(), canonical.Suit())
		}
		n.isomorphisms = append(n.isomorphisms, iso)
		n.possible |= card.Bit()
	}

	return n, nil
}

// Build evaluates the tree below root and returns the solved game
func (b *Builder) Build(root *Node) (*Game, error) {
	if root == nil {
		return nil, errors.Wrap(ErrInvalidTree, "missing root")
	}

	reach := [2][]float32{
		append([]float32(nil), b.weights[0]...),
		append([]float32(nil), b.weights[1]...),
	}
	if _, err := b.evaluate(root, b.config.Board, reach); err != nil {
		return nil, err
	}

	return &Game{
		config:  b.config,
		root:    root,
		hands:   b.hands,
		weights: b.weights,
	}, nil
}

func (b *Builder) unsignedTable(values []float32) solver.Table {
	if b.compress {
		return solver.CompressUnsigned(values)
	}
	return solver.DenseTable(values)
}

func (b *Builder) signedTable(values []float32) solver.Table {
	if b.compress {
		return solver.CompressSigned(values)
	}
	return solver.DenseTable(values)
}
