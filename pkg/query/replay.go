package query

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/behrlich/postflop-query/pkg/cards"
	"github.com/behrlich/postflop-query/pkg/notation"
	"github.com/behrlich/postflop-query/pkg/solver"
)

// Streets that can carry a pending swap
const (
	turnSwap = iota
	riverSwap
)

type stepKind uint8

const (
	playerStep stepKind = iota
	swapStep
)

// step is an operation recorded on the way down and applied to the
// weights on the way back up
type step struct {
	kind   stepKind
	node   solver.Node
	player int
	action int
	swap   [2]cards.SwapList
}

// state is the outcome of replaying a history from the root
type state struct {
	cursor  Cursor
	node    solver.Node
	history []notation.Action

	// Initial board followed by the literally dealt cards
	board []cards.Card
	dealt int

	steps []step

	// Pending swap lists per street and player, in the order they were
	// resolved (turn, then river)
	swaps [2][2]cards.SwapList

	// Suits exchanged by an isomorphic turn: dealt suit, canonical suit
	turnSuits   [2]cards.Suit
	turnSwapped bool

	weights [2][]float32
}

// replay resolves line against game from the root and propagates the
// reach weights of both players
func replay(game solver.Game, line []notation.Action, log zerolog.Logger) (*state, error) {
	board := game.Config().Board
	st := &state{
		node:    game.Root(),
		history: append([]notation.Action(nil), line...),
		board:   append(make([]cards.Card, 0, 5), board...),
	}

	for i, action := range line {
		if err := st.advance(action, log); err != nil {
			return nil, errors.Wrapf(err, "action %d (%s)", i, action)
		}
	}

	st.weights = propagate(game, st)
	return st, nil
}

// advance applies one action to the state
func (st *state) advance(action notation.Action, log zerolog.Logger) error {
	node := st.node
	switch node.Kind() {
	case solver.Terminal:
		return errors.Wrap(ErrActionNotFound, "terminal node")

	case solver.Player:
		if action.IsChance() {
			return errors.Wrap(ErrActionNotFound, "card dealt at a player node")
		}
		idx := indexOf(node.Actions(), action)
		if idx < 0 {
			return errors.Wrapf(ErrActionNotFound, "player %d", node.Player())
		}
		if len(node.Actions()) > 1 {
			st.steps = append(st.steps, step{kind: playerStep, node: node, player: node.Player(), action: idx})
		}
		st.descend(idx)
		return nil

	default:
		if !action.IsChance() {
			return errors.Wrap(ErrActionNotFound, "player action at a chance node")
		}
		return st.deal(action.Card, notation.GetStreet(len(st.board)) == notation.Flop, log)
	}
}

// deal resolves a literal card at a chance node, through an isomorphism
// when the card was not solved explicitly
func (st *state) deal(literal cards.Card, isTurn bool, log zerolog.Logger) error {
	node := st.node
	card := literal
	if st.turnSwapped {
		card = cards.SwapSuits(card, st.turnSuits[0], st.turnSuits[1])
	}

	idx := indexOf(node.Actions(), notation.ChanceAction(card))
	if idx < 0 {
		iso, ok := findIsomorphism(node.Isomorphisms(), card)
		if !ok {
			return errors.Wrapf(ErrCardNotReachable, "%v", literal)
		}
		idx = iso.Branch
		canonical := node.Actions()[idx].Card

		street, name := riverSwap, notation.River
		if isTurn {
			street, name = turnSwap, notation.Turn
			st.turnSuits = [2]cards.Suit{card.Suit(), canonical.Suit()}
			st.turnSwapped = true
		}
		st.swaps[street] = iso.Swap
		st.steps = append(st.steps, step{kind: swapStep, node: node, swap: iso.Swap})

		log.Debug().
			Stringer("card", literal).
			Stringer("canonical", canonical).
			Stringer("street", name).
			Msg("resolved isomorphic chance")
	}

	st.board = append(st.board, literal)
	st.dealt++
	st.descend(idx)
	return nil
}

func (st *state) descend(idx int) {
	st.cursor = st.cursor.Child(idx)
	st.node = st.node.Child(idx)
}

// dealtMask returns the cards dealt after the initial board
func (st *state) dealtMask() cards.Mask {
	return cards.MaskOf(st.board[len(st.board)-st.dealt:]...)
}

// possibleCards returns the cards the current chance node can deal in the
// suits of the literal board. Below an isomorphic turn the node's own mask
// is in the suits of the solved turn
func (st *state) possibleCards() cards.Mask {
	mask := st.node.PossibleCards()
	if !st.turnSwapped {
		return mask
	}

	var literal cards.Mask
	for c := cards.Card(0); c < cards.NumCards; c++ {
		if mask.Has(c) {
			literal |= cards.SwapSuits(c, st.turnSuits[0], st.turnSuits[1]).Bit()
		}
	}
	return literal
}

// swapList returns the pending swap list of a player for a street
func (st *state) swapList(street notation.Street, player int) cards.SwapList {
	switch street {
	case notation.Turn:
		return st.swaps[turnSwap][player]
	case notation.River:
		return st.swaps[riverSwap][player]
	default:
		return nil
	}
}

func indexOf(actions []notation.Action, action notation.Action) int {
	for i, a := range actions {
		if a == action {
			return i
		}
	}
	return -1
}

func findIsomorphism(isos []solver.Isomorphism, card cards.Card) (solver.Isomorphism, bool) {
	for _, iso := range isos {
		if iso.Card == card {
			return iso, true
		}
	}
	return solver.Isomorphism{}, false
}
