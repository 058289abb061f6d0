package tree

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/behrlich/postflop-query/pkg/cards"
	"github.com/behrlich/postflop-query/pkg/notation"
	"github.com/behrlich/postflop-query/pkg/solver"
)

func newTestBuilder(t *testing.T, board, oop, ip string, opts ...Option) *Builder {
	t.Helper()
	boardCards, err := cards.ParseCards(board)
	require.NoError(t, err)
	r0, err := notation.ParseRange(oop)
	require.NoError(t, err)
	r1, err := notation.ParseRange(ip)
	require.NoError(t, err)

	b, err := NewBuilder(solver.Config{Board: boardCards, StartingPot: 100, EffectiveStack: 200}, [2]*notation.Range{r0, r1}, opts...)
	require.NoError(t, err)
	return b
}

func TestNewBuilder_Errors(t *testing.T) {
	r, err := notation.ParseRange("AA")
	require.NoError(t, err)
	ranges := [2]*notation.Range{r, r}

	_, err = NewBuilder(solver.Config{Board: []cards.Card{1, 2}, StartingPot: 100}, ranges)
	require.True(t, errors.Is(err, cards.ErrInvalidBoardLength), "two-card board should be rejected")

	board, err := cards.ParseCards("Kh9s4c")
	require.NoError(t, err)
	_, err = NewBuilder(solver.Config{Board: board}, ranges)
	require.True(t, errors.Is(err, solver.ErrInvalidConfig), "zero pot should be rejected")

	_, err = NewBuilder(solver.Config{Board: board, StartingPot: 100}, [2]*notation.Range{r, nil})
	require.Error(t, err, "missing range should be rejected")

	aces, err := cards.ParseCards("AsAhAd")
	require.NoError(t, err)
	_, err = NewBuilder(solver.Config{Board: aces, StartingPot: 100}, ranges)
	require.Error(t, err, "a range with every hand blocked should be rejected")
}

func TestBuilder_PrivateCards(t *testing.T) {
	b := newTestBuilder(t, "Kh9s4c7d2s", "AA,QQ", "KK")
	require.Len(t, b.PrivateCards(0), 12)
	require.Len(t, b.PrivateCards(1), 3, "Kh on the board leaves three kings combos")
	for _, h := range b.PrivateCards(1) {
		require.Equal(t, cards.King, h.Card1.Rank())
	}
}

func TestBuilder_DecisionErrors(t *testing.T) {
	b := newTestBuilder(t, "Kh9s4c7d2s", "AA", "KK")
	sd := b.Showdown([2]int{})
	check := []notation.Action{notation.CheckAction}

	tests := []struct {
		name     string
		player   int
		actions  []notation.Action
		strategy [][]float32
		children []*Node
	}{
		{"bad player", 2, check, nil, []*Node{sd}},
		{"no actions", 0, nil, nil, nil},
		{"child count", 0, check, nil, nil},
		{"chance action", 0, []notation.Action{notation.ChanceAction(3)}, nil, []*Node{sd}},
		{"duplicate", 0, []notation.Action{notation.CheckAction, notation.CheckAction}, nil, []*Node{sd, sd}},
		{"nil child", 0, check, nil, []*Node{nil}},
		{"row count", 0, check, [][]float32{{1}, {1}}, []*Node{sd}},
		{"row length", 0, check, [][]float32{{1}}, []*Node{sd}},
		{"negative", 0, check, [][]float32{{-1, 1, 1, 1, 1, 1}}, []*Node{sd}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Decision(tt.player, [2]int{}, tt.actions, tt.strategy, tt.children...)
			require.True(t, errors.Is(err, ErrInvalidTree), "got %v", err)
		})
	}
}

func TestBuilder_ChanceErrors(t *testing.T) {
	b := newTestBuilder(t, "Kh9h4h", "AA", "QQ")
	twoClubs := cards.NewCard(cards.Two, cards.Clubs)
	twoDiamonds := cards.NewCard(cards.Two, cards.Diamonds)
	threeDiamonds := cards.NewCard(cards.Three, cards.Diamonds)
	deal := func() Deal { return Deal{Card: twoClubs, Child: b.Showdown([2]int{})} }

	_, err := b.Chance([2]int{}, nil, nil)
	require.True(t, errors.Is(err, ErrInvalidTree))

	_, err = b.Chance([2]int{}, []Deal{deal(), deal()}, nil)
	require.True(t, errors.Is(err, ErrInvalidTree), "duplicate deal")

	_, err = b.Chance([2]int{}, []Deal{deal()}, map[cards.Card]cards.Card{threeDiamonds: twoClubs})
	require.True(t, errors.Is(err, ErrInvalidTree), "rank mismatch")

	_, err = b.Chance([2]int{}, []Deal{deal()}, map[cards.Card]cards.Card{twoDiamonds: threeDiamonds})
	require.True(t, errors.Is(err, ErrInvalidTree), "canonical card not dealt")

	n, err := b.Chance([2]int{}, []Deal{deal()}, map[cards.Card]cards.Card{twoDiamonds: twoClubs})
	require.NoError(t, err)
	require.Equal(t, cards.MaskOf(twoClubs, twoDiamonds), n.PossibleCards())
	require.Len(t, n.Isomorphisms(), 1)
	require.Equal(t, twoDiamonds, n.Isomorphisms()[0].Card)
	require.Equal(t, 0, n.Isomorphisms()[0].Branch)
	require.NotEmpty(t, n.Isomorphisms()[0].Swap[0], "AcAh and AdAh trade places")
}

func TestBuilder_BuildRejectsAsymmetricIsomorphism(t *testing.T) {
	// 4c on the board breaks the symmetry between clubs and diamonds
	b := newTestBuilder(t, "Kh9s4c", "AA", "QQ")
	twoClubs := cards.NewCard(cards.Two, cards.Clubs)
	twoDiamonds := cards.NewCard(cards.Two, cards.Diamonds)

	n, err := b.Chance([2]int{}, []Deal{{Card: twoClubs, Child: b.Showdown([2]int{})}}, map[cards.Card]cards.Card{twoDiamonds: twoClubs})
	require.NoError(t, err)

	_, err = b.Build(n)
	require.True(t, errors.Is(err, ErrInvalidTree), "got %v", err)
}

func TestBuilder_BuildRejectsBoardCard(t *testing.T) {
	b := newTestBuilder(t, "Kh9h4h", "AA", "QQ")
	n, err := b.Chance([2]int{}, []Deal{{Card: cards.NewCard(cards.King, cards.Hearts), Child: b.Showdown([2]int{})}}, nil)
	require.NoError(t, err)

	_, err = b.Build(n)
	require.True(t, errors.Is(err, ErrInvalidTree), "got %v", err)
}

func TestBuilder_ShowdownValues(t *testing.T) {
	b := newTestBuilder(t, "Kh9s4c7d2s", "AA,QQ", "KK,JJ")
	game, err := b.Build(b.Showdown([2]int{25, 25}))
	require.NoError(t, err)

	root := game.root
	pot := float32(150)
	for p := 0; p < 2; p++ {
		cfv := root.CFValues(p).Decode()
		eq := root.Equity(p).Decode()
		require.Len(t, cfv, len(game.PrivateCards(p)))
		for i := range cfv {
			require.InDelta(t, eq[i]*pot, cfv[i], 1e-3, "player %d hand %d", p, i)
		}
	}

	// Aces and queens both lose to the three kings combos and beat the six jacks combos
	eq0 := root.Equity(0).Decode()
	for i, h := range game.PrivateCards(0) {
		require.InDelta(t, 6, eq0[i], 1e-5, "%v", h)
	}
	eq1 := root.Equity(1).Decode()
	for j, h := range game.PrivateCards(1) {
		want := float32(0)
		if h.Card1.Rank() == cards.King {
			want = 12
		}
		require.InDelta(t, want, eq1[j], 1e-5, "%v", h)
	}
}

func TestBuilder_FoldValues(t *testing.T) {
	b := newTestBuilder(t, "Kh9s4c7d2s", "AA", "JJ")
	game, err := b.Build(b.Fold(1, [2]int{50, 0}))
	require.NoError(t, err)

	root := game.root
	for _, v := range root.CFValues(1).Decode() {
		require.Zero(t, v, "folding player receives nothing")
	}

	// Each aces combo is compatible with all six jacks combos
	for _, v := range root.CFValues(0).Decode() {
		require.InDelta(t, 6*150, v, 1e-3)
	}
}

func TestBuilder_DecisionValues(t *testing.T) {
	b := newTestBuilder(t, "Kh9s4c7d2s", "AA,QQ", "KK,JJ")
	bets := [2]int{0, 50}

	fold := b.Fold(0, bets)
	call := b.Showdown([2]int{50, 50})
	strategy := make([][]float32, 2)
	for a := range strategy {
		strategy[a] = make([]float32, len(b.PrivateCards(0)))
		for i := range strategy[a] {
			strategy[a][i] = float32(a + 1) // fold 1/3, call 2/3
		}
	}

	root, err := b.Decision(0, bets, []notation.Action{notation.FoldAction, notation.CallAction}, strategy, fold, call)
	require.NoError(t, err)
	game, err := b.Build(root)
	require.NoError(t, err)

	numHands := len(game.PrivateCards(0))
	actionValues := root.ActionValues()
	require.Equal(t, 2*numHands, actionValues.Len())

	foldRow := actionValues.Row(0, numHands)
	callRow := actionValues.Row(1, numHands)
	require.Equal(t, fold.CFValues(0).Decode(), foldRow)
	require.Equal(t, call.CFValues(0).Decode(), callRow)

	cfv0 := root.CFValues(0).Decode()
	for i := range cfv0 {
		require.InDelta(t, foldRow[i]/3+2*callRow[i]/3, cfv0[i], 1e-3)
	}

	// The opponent's values add up over both branches
	cfv1 := root.CFValues(1).Decode()
	foldOpp, callOpp := fold.CFValues(1).Decode(), call.CFValues(1).Decode()
	for j := range cfv1 {
		require.InDelta(t, foldOpp[j]+callOpp[j], cfv1[j], 1e-3)
	}
}

func TestBuilder_Compression(t *testing.T) {
	dense, err := DemoRiver()
	require.NoError(t, err)
	compressed, err := DemoRiver(WithCompression())
	require.NoError(t, err)

	require.False(t, dense.root.Strategy().Compressed())
	require.True(t, compressed.root.Strategy().Compressed())
	require.Equal(t, solver.Signed16, compressed.root.CFValues(0).Encoding())
	require.Equal(t, solver.Unsigned16, compressed.root.Equity(0).Encoding())

	for p := 0; p < 2; p++ {
		want := dense.root.CFValues(p).Decode()
		table := compressed.root.CFValues(p)
		got := table.Decode()
		for i := range want {
			require.InDelta(t, want[i], got[i], float64(table.Scale())/32767+1e-3)
		}
	}
}
