package tree

import (
	"github.com/behrlich/postflop-query/pkg/cards"
	"github.com/behrlich/postflop-query/pkg/notation"
	"github.com/behrlich/postflop-query/pkg/solver"
)

// Demo ranges: OOP holds overpairs and an underpair, IP holds a set and a
// bluff catcher
const (
	DemoRangeOOP = "AA,QQ"
	DemoRangeIP  = "KK,JJ:0.5"
)

func demoBuilder(board string, opts []Option) (*Builder, error) {
	b, err := cards.ParseCards(board)
	if err != nil {
		return nil, err
	}
	oop, err := notation.ParseRange(DemoRangeOOP)
	if err != nil {
		return nil, err
	}
	ip, err := notation.ParseRange(DemoRangeIP)
	if err != nil {
		return nil, err
	}
	config := solver.Config{Board: b, StartingPot: 100, EffectiveStack: 200}
	return NewBuilder(config, [2]*notation.Range{oop, ip}, opts...)
}

// DemoRiver builds a solved river game on Kh9s4c7d2s. OOP bets aces more
// often than queens; IP plays every other spot uniformly
func DemoRiver(opts ...Option) (*Game, error) {
	b, err := demoBuilder("Kh9s4c7d2s", opts)
	if err != nil {
		return nil, err
	}

	rootStrategy := [][]float32{
		make([]float32, len(b.PrivateCards(0))),
		make([]float32, len(b.PrivateCards(0))),
	}
	for i, h := range b.PrivateCards(0) {
		if h.Card1.Rank() == cards.Ace {
			rootStrategy[0][i], rootStrategy[1][i] = 1, 3
		} else {
			rootStrategy[0][i], rootStrategy[1][i] = 3, 1
		}
	}

	sizing := [2]ActionConfig{{BetSizes: []float64{0.5}}, {BetSizes: []float64{1}}}
	root, err := b.streetNode([2]int{0, 0}, sizing, b.showdownNext)
	if err != nil {
		return nil, err
	}
	root.strategy = b.unsignedTable(flatten(rootStrategy))
	return b.Build(root)
}

// DemoTurn builds a solved game on the monotone flop Kh9h4h where every
// turn card is dealt. Clubs, diamonds and spades are interchangeable on
// this board, so only the club and heart turn cards are solved and the
// diamonds and spades resolve to the club of the same rank.
// Bets are sized geometrically to get the stacks in by the end of the turn
func DemoTurn(opts ...Option) (*Game, error) {
	b, err := demoBuilder("Kh9h4h", opts)
	if err != nil {
		return nil, err
	}

	config := b.config
	flop := NewGeometricSizing(config.StartingPot+2*config.EffectiveStack, 2, config.EffectiveStack)
	flopSizing := [2]ActionConfig{{Geometric: flop}, {Geometric: flop}}
	turnSizing := [2]ActionConfig{{Geometric: flop.NextStreet()}, {Geometric: flop.NextStreet()}}

	boardMask := cards.MaskOf(config.Board...)
	turn := func(totalBet [2]int) (*Node, error) {
		var deals []Deal
		isomorphic := make(map[cards.Card]cards.Card)
		for c := cards.Card(0); c < cards.NumCards; c++ {
			if boardMask.Has(c) {
				continue
			}
			switch c.Suit() {
			case cards.Clubs, cards.Hearts:
				child, err := b.streetNode(totalBet, turnSizing, b.showdownNext)
				if err != nil {
					return nil, err
				}
				deals = append(deals, Deal{Card: c, Child: child})
			default:
				isomorphic[c] = cards.NewCard(c.Rank(), cards.Clubs)
			}
		}
		return b.Chance(totalBet, deals, isomorphic)
	}

	root, err := b.streetNode([2]int{0, 0}, flopSizing, turn)
	if err != nil {
		return nil, err
	}
	return b.Build(root)
}

// streetNode builds one betting round from equal bets: OOP acts first, IP
// acts after a check and a bet is folded or called. sizing holds the bets
// of each player; next builds whatever follows a closed round
func (b *Builder) streetNode(bets [2]int, sizing [2]ActionConfig, next func(totalBet [2]int) (*Node, error)) (*Node, error) {
	ipNode, err := b.openNode(1, bets, sizing[1], next, func() (*Node, error) {
		return next(bets)
	})
	if err != nil {
		return nil, err
	}
	return b.openNode(0, bets, sizing[0], next, func() (*Node, error) {
		return ipNode, nil
	})
}

// openNode builds the node of a player who is not facing a bet. checked
// returns the node that follows a check
func (b *Builder) openNode(player int, bets [2]int, config ActionConfig, next func([2]int) (*Node, error), checked func() (*Node, error)) (*Node, error) {
	pot := b.config.StartingPot + bets[0] + bets[1]
	stack := b.config.EffectiveStack - bets[player]
	actions := GenerateActions(pot, stack, false, config)

	children := make([]*Node, len(actions))
	for i, action := range actions {
		var err error
		if action.Type == notation.Check {
			children[i], err = checked()
		} else {
			children[i], err = b.facingNode(player^1, bets, action.Amount, next)
		}
		if err != nil {
			return nil, err
		}
	}
	return b.Decision(player, bets, actions, nil, children...)
}

// facingNode builds the node of a player facing a bet of amount
func (b *Builder) facingNode(player int, bets [2]int, amount int, next func([2]int) (*Node, error)) (*Node, error) {
	after := bets
	after[player^1] += amount
	called := after
	called[player] = after[player^1]

	closed, err := next(called)
	if err != nil {
		return nil, err
	}
	return b.Decision(player, after, GenerateActions(0, 0, true, ActionConfig{}), nil,
		b.Fold(player, after), closed)
}

func (b *Builder) showdownNext(totalBet [2]int) (*Node, error) {
	return b.Showdown(totalBet), nil
}

func flatten(rows [][]float32) []float32 {
	var out []float32
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}
