package query

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/behrlich/postflop-query/pkg/cards"
	"github.com/behrlich/postflop-query/pkg/notation"
	"github.com/behrlich/postflop-query/pkg/solver"
	"github.com/behrlich/postflop-query/pkg/tree"
)

func riverSession(t *testing.T, opts ...tree.Option) *Session {
	t.Helper()
	game, err := tree.DemoRiver(opts...)
	require.NoError(t, err)
	s, err := NewSession(game)
	require.NoError(t, err)
	return s
}

func turnSession(t *testing.T) *Session {
	t.Helper()
	game, err := tree.DemoTurn()
	require.NoError(t, err)
	s, err := NewSession(game)
	require.NoError(t, err)
	return s
}

func mustLine(t *testing.T, line string) []notation.Action {
	t.Helper()
	actions, err := notation.ParseLine(line)
	require.NoError(t, err)
	return actions
}

// handIndex returns the position of hand s in the player's list
func handIndex(t *testing.T, game solver.Game, player int, s string) int {
	t.Helper()
	h := mustHand(t, s)
	for i, x := range game.PrivateCards(player) {
		if x == h {
			return i
		}
	}
	t.Fatalf("hand %s not in range of player %d", s, player)
	return -1
}

func TestSession_RootResults(t *testing.T) {
	s := riverSession(t)
	r := s.Results()

	require.Equal(t, "oop", r.CurrentPlayer)
	require.Equal(t, 2, r.NumActions)
	require.Equal(t, 0, r.IsEmpty)
	require.Equal(t, [2]int{100, 100}, r.EqrBase)

	require.Len(t, r.Weights[0], 12)
	for _, w := range r.Weights[0] {
		require.Equal(t, 1.0, w)
	}
	hands := s.Game().PrivateCards(1)
	for i, h := range hands {
		want := 1.0
		if h.Card1.Rank() == cards.Jack {
			want = 0.5
		}
		require.Equal(t, want, r.Weights[1][i], "weight of %v", h)
	}

	numHands := len(s.Game().PrivateCards(0))
	require.Len(t, r.Strategy, 2*numHands)
	require.Len(t, r.ActionEV, 2*numHands)
	for i, h := range s.Game().PrivateCards(0) {
		bet := 0.25
		if h.Card1.Rank() == cards.Ace {
			bet = 0.75
		}
		require.InDelta(t, 1-bet, r.Strategy[i], 1e-6, "check %v", h)
		require.InDelta(t, bet, r.Strategy[numHands+i], 1e-6, "bet %v", h)
	}
}

func TestSession_ShowdownResults(t *testing.T) {
	s := riverSession(t)
	require.NoError(t, s.ApplyHistoryString("X-X"))

	r := s.Results()
	require.Equal(t, "terminal", r.CurrentPlayer)
	require.Equal(t, 0, r.NumActions)
	require.Nil(t, r.Strategy)
	require.Nil(t, r.ActionEV)

	game := s.Game()
	aces := handIndex(t, game, 0, "AcAd")
	queens := handIndex(t, game, 0, "QcQd")
	require.InDelta(t, 0.25, r.Weights[0][aces], 1e-6)
	require.InDelta(t, 0.75, r.Weights[0][queens], 1e-6)

	// Both overpairs lose to the set of kings and beat the jacks
	require.InDelta(t, 0.5, r.Equity[0][aces], 1e-6)
	require.InDelta(t, 0.5, r.Equity[0][queens], 1e-6)
	require.InDelta(t, 50, r.EV[0][aces], 1e-3)
	require.InDelta(t, 50, r.EV[0][queens], 1e-3)

	// Checked down, every hand realizes exactly its equity
	for i := range r.EQR[0] {
		require.InDelta(t, 1, r.EQR[0][i], 1e-6)
	}

	kings := handIndex(t, game, 1, "KcKd")
	jacks := handIndex(t, game, 1, "JcJd")
	require.InDelta(t, 1, r.Equity[1][kings], 1e-6)
	require.InDelta(t, 1, r.EQR[1][kings], 1e-6)
	require.Equal(t, 0.0, r.Equity[1][jacks])
	require.True(t, math.IsNaN(r.EQR[1][jacks]), "zero ev over zero equity is undefined")
}

func TestSession_FoldResults(t *testing.T) {
	s := riverSession(t)
	require.NoError(t, s.ApplyHistoryString("B50-F"))

	r := s.Results()
	require.Equal(t, "terminal", r.CurrentPlayer)
	require.Equal(t, [2]int{150, 100}, r.EqrBase)

	for i := range r.EV[0] {
		require.InDelta(t, 150, r.EV[0][i], 1e-3, "OOP collects the pot")
	}
	for i := range r.EV[1] {
		require.Equal(t, 0.0, r.EV[1][i], "IP folded")
	}
}

func TestSession_CompressedResults(t *testing.T) {
	dense := riverSession(t)
	compressed := riverSession(t, tree.WithCompression())

	for _, s := range []*Session{dense, compressed} {
		require.NoError(t, s.ApplyHistoryString("X-B100"))
	}

	want, got := dense.Results(), compressed.Results()
	require.Equal(t, want.CurrentPlayer, got.CurrentPlayer)
	for p := range want.EV {
		require.InDeltaSlice(t, want.Weights[p], got.Weights[p], 1e-3)
		require.InDeltaSlice(t, want.EV[p], got.EV[p], 0.1)
		require.InDeltaSlice(t, want.Equity[p], got.Equity[p], 1e-3)
	}
	require.InDeltaSlice(t, want.Strategy, got.Strategy, 1e-3)
}

func TestSession_RootIdempotence(t *testing.T) {
	s := riverSession(t)
	line := mustLine(t, "X-B100-C")

	require.NoError(t, s.ApplyHistory(line))
	first := [2][]float32{s.Weights(0), s.Weights(1)}
	cursor := s.Cursor()

	s.BackToRoot()
	require.Equal(t, 0, s.Cursor().Depth())
	require.Equal(t, notation.RootLine, s.HistoryString())

	require.NoError(t, s.ApplyHistory(line))
	require.Equal(t, first, [2][]float32{s.Weights(0), s.Weights(1)})
	require.True(t, cursor.Equal(s.Cursor()))
	require.Equal(t, "X-B100-C", s.HistoryString())
}

func TestSession_ApplyHistoryErrors(t *testing.T) {
	tests := []struct {
		line string
		want error
	}{
		{"B75", ErrActionNotFound},
		{"X-X-X", ErrActionNotFound},
		{"Ah", ErrActionNotFound},
		{"X-Z", ErrMalformedActionToken},
		{"X-B", ErrMalformedActionToken},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			s := riverSession(t)
			require.NoError(t, s.ApplyHistoryString("X"))
			before := s.Weights(1)

			err := s.ApplyHistoryString(tt.line)
			require.Error(t, err)
			require.True(t, errors.Is(err, tt.want), "got %v", err)

			require.Equal(t, "X", s.HistoryString(), "failed replay leaves the session in place")
			require.Equal(t, before, s.Weights(1))
		})
	}
}

func TestSession_IsomorphicTurn(t *testing.T) {
	s := turnSession(t)

	require.NoError(t, s.ApplyHistoryString("X-X|2d"))
	require.Equal(t, "oop", s.Results().CurrentPlayer)
	require.NotEmpty(t, s.SwapList(notation.Turn, 0))
	require.NotEmpty(t, s.SwapList(notation.Turn, 1))
	require.Empty(t, s.SwapList(notation.River, 0))
	require.Equal(t, "Kh9h4h2d", cards.FormatCards(s.Board()))
	require.Equal(t, "X-X|1", s.HistoryString())

	require.NoError(t, s.ApplyHistoryString("X-X|2c"))
	require.Empty(t, s.SwapList(notation.Turn, 0), "explicitly solved card needs no swap")
}

func TestSession_IsomorphicTurnMatchesCanonical(t *testing.T) {
	s := turnSession(t)
	game := s.Game()

	require.NoError(t, s.ApplyHistoryString("X-X|2c-X"))
	canonical := s.Results()
	require.NoError(t, s.ApplyHistoryString("X-X|2d-X"))
	literal := s.Results()

	for p := range literal.Equity {
		for i, h := range game.PrivateCards(p) {
			j := handIndex(t, game, p, h.SwapSuits(cards.Diamonds, cards.Clubs).String())
			require.Equal(t, canonical.Weights[p][j], literal.Weights[p][i], "weight of %v", h)
			require.Equal(t, canonical.Equity[p][j], literal.Equity[p][i], "equity of %v", h)
			require.Equal(t, canonical.EV[p][j], literal.EV[p][i], "ev of %v", h)
		}
	}
}

func TestSession_UnreachableCards(t *testing.T) {
	s := turnSession(t)

	err := s.ApplyHistoryString("X-X|Kh")
	require.True(t, errors.Is(err, ErrCardNotReachable), "board card: %v", err)

	err = s.ApplyHistoryString("X-X|X")
	require.True(t, errors.Is(err, ErrActionNotFound), "check at a chance node: %v", err)
}

func TestSession_SwapInvolution(t *testing.T) {
	s := turnSession(t)
	require.NoError(t, s.ApplyHistoryString("X-X"))

	node, err := s.Cursor().Resolve(s.Game())
	require.NoError(t, err)
	require.Equal(t, solver.Chance, node.Kind())
	require.NotEmpty(t, node.Isomorphisms())

	for _, iso := range node.Isomorphisms() {
		for p, list := range iso.Swap {
			w := s.Weights(p)
			for i := range w {
				w[i] = float32(i)
			}
			original := append([]float32(nil), w...)
			list.Apply(w)
			list.Apply(w)
			require.Equal(t, original, w, "swap for %v, player %d", iso.Card, p)
		}
	}
}

func TestSession_NormalizationSymmetry(t *testing.T) {
	for _, line := range []string{"", "X", "X-B100", "B50-C"} {
		s := riverSession(t)
		require.NoError(t, s.ApplyHistoryString(line))
		n := s.NormalizedWeights()
		require.InDelta(t, sum64(n[0]), sum64(n[1]), 1e-9, "line %q", line)
	}

	s := turnSession(t)
	require.NoError(t, s.ApplyHistoryString("X-X|As-X"))
	n := s.NormalizedWeights()
	require.InDelta(t, sum64(n[0]), sum64(n[1]), 1e-9)
}

func TestSession_NormalizedEqualsRawWithoutBlocking(t *testing.T) {
	board, err := cards.ParseCards("Kh9s4c")
	require.NoError(t, err)
	oop, err := notation.ParseRange("AsAh:0.5,QsQh:0.5")
	require.NoError(t, err)
	ip, err := notation.ParseRange("JsJh:0.5,TsTh:0.5")
	require.NoError(t, err)

	b, err := tree.NewBuilder(solver.Config{Board: board, StartingPot: 100, EffectiveStack: 100}, [2]*notation.Range{oop, ip})
	require.NoError(t, err)
	game, err := b.Build(b.Showdown([2]int{}))
	require.NoError(t, err)

	s, err := NewSession(game)
	require.NoError(t, err)
	n := s.NormalizedWeights()
	for p := range n {
		w := s.Weights(p)
		require.Len(t, w, 2)
		for i := range w {
			require.InDelta(t, float64(w[i]), n[p][i], 1e-12)
		}
	}
}

func TestSession_ActionsAfter(t *testing.T) {
	s := riverSession(t)
	require.NoError(t, s.ApplyHistoryString("X"))

	tests := []struct {
		suffix string
		want   []string
	}{
		{"", []string{"Check:0", "Bet:100"}},
		{"B100", []string{"Fold:0", "Call:0"}},
		{"X", []string{"terminal"}},
	}
	for _, tt := range tests {
		got, err := s.ActionsAfter(mustLine(t, tt.suffix))
		require.NoError(t, err)
		require.Equal(t, tt.want, got, "suffix %q", tt.suffix)
		require.Equal(t, "X", s.HistoryString(), "cursor restored")
	}

	_, err := s.ActionsAfter(mustLine(t, "B50"))
	require.True(t, errors.Is(err, ErrActionNotFound))
	require.Equal(t, "X", s.HistoryString(), "cursor restored after an error")

	turn := turnSession(t)
	got, err := turn.ActionsAfter(mustLine(t, "X-X"))
	require.NoError(t, err)
	require.Equal(t, []string{"chance"}, got)
}

func TestSession_TotalBetAmount(t *testing.T) {
	s := riverSession(t)

	bets, err := s.TotalBetAmount(nil)
	require.NoError(t, err)
	require.Equal(t, [2]int{0, 0}, bets)

	bets, err = s.TotalBetAmount(mustLine(t, "X-B100"))
	require.NoError(t, err)
	require.Equal(t, [2]int{0, 100}, bets)

	bets, err = s.TotalBetAmount(mustLine(t, "B50-C"))
	require.NoError(t, err)
	require.Equal(t, [2]int{50, 50}, bets)
	require.Equal(t, 0, s.Cursor().Depth())
}

func TestSession_PossibleCards(t *testing.T) {
	s := turnSession(t)

	mask, err := s.PossibleCards(nil)
	require.NoError(t, err)
	require.Equal(t, cards.Mask(0), mask, "no chance node at the root")

	mask, err = s.PossibleCards(mustLine(t, "X-X"))
	require.NoError(t, err)
	board := cards.MaskOf(s.Board()...)
	for c := cards.Card(0); c < cards.NumCards; c++ {
		require.Equal(t, !board.Has(c), mask.Has(c), "card %v", c)
	}
}

func TestSession_PrivateCards(t *testing.T) {
	s := riverSession(t)
	packed := s.PrivateCards()
	for p := range packed {
		hands := s.Game().PrivateCards(p)
		require.Len(t, packed[p], len(hands))
		for i, h := range hands {
			require.Equal(t, uint16(h.Card1)|uint16(h.Card2)<<8, packed[p][i])
		}
	}
}

// flakyGame serves the real root a limited number of times and a
// terminal node afterwards
type flakyGame struct {
	solver.Game
	calls, limit int
	terminal     solver.Node
}

func (g *flakyGame) Root() solver.Node {
	g.calls++
	if g.calls > g.limit {
		return g.terminal
	}
	return g.Game.Root()
}

func TestSession_CursorCorrupted(t *testing.T) {
	game, err := tree.DemoRiver()
	require.NoError(t, err)
	terminal := game.Root().Child(0).Child(0)
	require.Equal(t, solver.Terminal, terminal.Kind())

	// New session, history, descent; the restore sees the terminal root
	flaky := &flakyGame{Game: game, limit: 3, terminal: terminal}
	s, err := NewSession(flaky)
	require.NoError(t, err)
	require.NoError(t, s.ApplyHistoryString("X"))

	_, err = s.TotalBetAmount(mustLine(t, "X"))
	require.True(t, errors.Is(err, ErrCursorCorrupted), "got %v", err)
	require.Equal(t, "X", s.HistoryString())
}

func TestNewSession_InvalidConfig(t *testing.T) {
	game, err := tree.DemoRiver()
	require.NoError(t, err)

	_, err = NewSession(&badConfigGame{Game: game})
	require.True(t, errors.Is(err, ErrInvalidBoardLength), "got %v", err)
}

type badConfigGame struct {
	solver.Game
}

func (g *badConfigGame) Config() solver.Config {
	config := g.Game.Config()
	config.Board = config.Board[:2]
	return config
}
