// Package query navigates a solved postflop game and decodes what it
// stores at the node reached by an action history: reach weights, equity,
// expected values and strategies, with suit isomorphisms resolved back to
// the literal cards
package query

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/behrlich/postflop-query/pkg/cards"
	"github.com/behrlich/postflop-query/pkg/notation"
	"github.com/behrlich/postflop-query/pkg/solver"
)

// Session holds a solved game and a cursor into it. All methods are safe
// for concurrent use; each call holds the session lock until it returns
type Session struct {
	mu   sync.Mutex
	game solver.Game
	log  zerolog.Logger
	cur  *state
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the logger used for replay and report events
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// NewSession opens a session on game with the cursor at the root
func NewSession(game solver.Game, opts ...Option) (*Session, error) {
	if err := game.Config().Validate(); err != nil {
		return nil, errors.Wrap(err, "new session")
	}

	s := &Session{game: game, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	st, err := replay(game, nil, s.log)
	if err != nil {
		return nil, errors.Wrap(err, "new session")
	}
	s.cur = st
	return s, nil
}

// Game returns the game being queried
func (s *Session) Game() solver.Game {
	return s.game
}

// ApplyHistory replays line from the root. On error the session is left
// where it was
func (s *Session) ApplyHistory(line []notation.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug().Str("history", notation.EncodeLine(line)).Msg("replaying history")
	st, err := replay(s.game, line, s.log)
	if err != nil {
		return err
	}
	s.cur = st
	s.log.Debug().Int("depth", st.cursor.Depth()).Msg("history applied")
	return nil
}

// ApplyHistoryString parses a text line and replays it from the root
func (s *Session) ApplyHistoryString(line string) error {
	actions, err := notation.ParseLine(line)
	if err != nil {
		return err
	}
	return s.ApplyHistory(actions)
}

// BackToRoot moves the cursor to the root
func (s *Session) BackToRoot() {
	// The empty history always replays
	_ = s.ApplyHistory(nil)
}

// History returns the actions replayed to reach the cursor
func (s *Session) History() []notation.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notation.Action(nil), s.cur.history...)
}

// HistoryString returns the history as a text line
func (s *Session) HistoryString() string {
	return notation.EncodeLine(s.History())
}

// Cursor returns the current cursor
func (s *Session) Cursor() Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.cursor
}

// Board returns the initial board followed by the literally dealt cards
func (s *Session) Board() []cards.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]cards.Card(nil), s.cur.board...)
}

// Weights returns the raw reach weights of a player at the cursor
func (s *Session) Weights(player int) []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float32(nil), s.cur.weights[player]...)
}

// NormalizedWeights returns the joint-consistent weights of both players
// at the cursor
func (s *Session) NormalizedWeights() [2][]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return normalize(hands(s.game), cards.MaskOf(s.cur.board...), s.cur.weights)
}

// SwapList returns the pending swap list of a player for the turn or the
// river. It is empty when the card of that street was solved explicitly
func (s *Session) SwapList(street notation.Street, player int) cards.SwapList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(cards.SwapList(nil), s.cur.swapList(street, player)...)
}

// PrivateCards returns the hands of both players packed as c1 | c2<<8
func (s *Session) PrivateCards() [2][]uint16 {
	var packed [2][]uint16
	for p := range packed {
		for _, h := range s.game.PrivateCards(p) {
			packed[p] = append(packed[p], h.Pack())
		}
	}
	return packed
}

// Results decodes the node at the cursor
func (s *Session) Results() *Results {
	s.mu.Lock()
	defer s.mu.Unlock()
	return results(s.game, s.cur)
}

// ChanceReport aggregates every card the chance node at the cursor can
// deal, each followed by suffix
func (s *Session) ChanceReport(suffix []notation.Action) (*ChanceReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report *ChanceReport
	err := s.withTemporary(func() (err error) {
		report, err = chanceReport(s.game, s.cur, suffix, s.log)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// ActionsAfter returns the actions available after suffix: "terminal",
// "chance", or one label per action such as "Bet:10"
func (s *Session) ActionsAfter(suffix []notation.Action) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var labels []string
	err := s.withTemporary(func() error {
		node, err := s.descend(suffix)
		if err != nil {
			return err
		}
		switch node.Kind() {
		case solver.Terminal:
			labels = []string{"terminal"}
		case solver.Chance:
			labels = []string{"chance"}
		default:
			for _, a := range node.Actions() {
				labels = append(labels, a.Label())
			}
		}
		return nil
	})
	return labels, err
}

// PossibleCards returns the cards the chance node after suffix can deal,
// or an empty mask away from a chance node
func (s *Session) PossibleCards(suffix []notation.Action) (cards.Mask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var mask cards.Mask
	err := s.withTemporary(func() error {
		node, err := s.descend(suffix)
		if err != nil {
			return err
		}
		if node.Kind() == solver.Chance {
			mask = s.cur.possibleCards()
		}
		return nil
	})
	return mask, err
}

// TotalBetAmount returns each player's total bet after suffix
func (s *Session) TotalBetAmount(suffix []notation.Action) ([2]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var bets [2]int
	err := s.withTemporary(func() error {
		node, err := s.descend(suffix)
		if err != nil {
			return err
		}
		bets = node.TotalBet()
		return nil
	})
	return bets, err
}

// descend moves the cursor by suffix. Callers must hold the lock and run
// inside withTemporary
func (s *Session) descend(suffix []notation.Action) (solver.Node, error) {
	if len(suffix) == 0 {
		return s.cur.node, nil
	}
	line := append(append([]notation.Action(nil), s.cur.history...), suffix...)
	st, err := replay(s.game, line, s.log)
	if err != nil {
		return nil, err
	}
	s.cur = st
	return st.node, nil
}

// withTemporary runs fn and then restores the cursor by replaying the
// saved history, whatever fn returned. A restore that does not land on the
// saved cursor is reported as ErrCursorCorrupted
func (s *Session) withTemporary(fn func() error) (err error) {
	saved := s.cur
	defer func() {
		restored, rerr := replay(s.game, saved.history, s.log)
		if rerr != nil || !restored.cursor.Equal(saved.cursor) {
			s.cur = saved
			s.log.Error().AnErr("replay", rerr).Msg("cursor restore failed")
			err = errors.Wrapf(ErrCursorCorrupted, "restoring %s", notation.EncodeLine(saved.history))
			return
		}
		s.cur = restored
		s.log.Debug().Int("depth", restored.cursor.Depth()).Msg("cursor restored")
	}()
	return fn()
}
