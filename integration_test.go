package poker_test

import (
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/behrlich/postflop-query/pkg/cards"
	"github.com/behrlich/postflop-query/pkg/notation"
	"github.com/behrlich/postflop-query/pkg/query"
	"github.com/behrlich/postflop-query/pkg/tree"
)

// TestIntegration_EndToEnd tests the full pipeline: build → snapshot → query
func TestIntegration_EndToEnd(t *testing.T) {
	original, err := tree.DemoRiver(tree.WithCompression())
	if err != nil {
		t.Fatalf("Failed to build game: %v", err)
	}

	data, err := original.ToJSON()
	if err != nil {
		t.Fatalf("Failed to encode snapshot: %v", err)
	}
	loaded, err := tree.FromJSON(data)
	if err != nil {
		t.Fatalf("Failed to decode snapshot: %v", err)
	}

	sessions := make([]*query.Session, 2)
	for i, game := range []*tree.Game{original, loaded} {
		sessions[i], err = query.NewSession(game)
		if err != nil {
			t.Fatalf("Failed to open session: %v", err)
		}
	}

	for _, line := range []string{"", "X", "X-B100", "X-B100-C", "B50-F"} {
		var results [2]*query.Results
		for i, s := range sessions {
			if err := s.ApplyHistoryString(line); err != nil {
				t.Fatalf("Failed to apply %q: %v", line, err)
			}
			results[i] = s.Results()
		}

		want, got := results[0], results[1]
		if want.CurrentPlayer != got.CurrentPlayer || want.NumActions != got.NumActions {
			t.Errorf("%q: node %s/%d, snapshot gives %s/%d", line,
				want.CurrentPlayer, want.NumActions, got.CurrentPlayer, got.NumActions)
		}
		if !reflect.DeepEqual(want.Weights, got.Weights) {
			t.Errorf("%q: weights differ after the snapshot round trip", line)
		}
		if !reflect.DeepEqual(want.Equity, got.Equity) || !reflect.DeepEqual(want.EV, got.EV) {
			t.Errorf("%q: equity or EV differ after the snapshot round trip", line)
		}
		if !reflect.DeepEqual(want.Strategy, got.Strategy) {
			t.Errorf("%q: strategy differs after the snapshot round trip", line)
		}
	}
}

// TestIntegration_TurnReport loads a turn game from disk and reports on the
// turn card
func TestIntegration_TurnReport(t *testing.T) {
	game, err := tree.DemoTurn()
	if err != nil {
		t.Fatalf("Failed to build game: %v", err)
	}

	filename := filepath.Join(t.TempDir(), "turn.json")
	if err := game.SaveToFile(filename); err != nil {
		t.Fatalf("Failed to save snapshot: %v", err)
	}
	loaded, err := tree.LoadFromFile(filename)
	if err != nil {
		t.Fatalf("Failed to load snapshot: %v", err)
	}

	s, err := query.NewSession(loaded)
	if err != nil {
		t.Fatalf("Failed to open session: %v", err)
	}
	if err := s.ApplyHistoryString("X-X"); err != nil {
		t.Fatalf("Failed to reach the turn: %v", err)
	}

	report, err := s.ChanceReport(nil)
	if err != nil {
		t.Fatalf("Chance report failed: %v", err)
	}

	normal := 0
	for c := range report.Status {
		if report.Status[c] == query.Normal {
			normal++
		}
	}
	if normal != 49 {
		t.Errorf("expected 49 reportable turn cards, got %d", normal)
	}

	// Every turn card is isomorphic or solved, so any of them can be played
	if err := s.ApplyHistoryString("X-X|2s-X"); err != nil {
		t.Fatalf("Failed to play an isomorphic turn: %v", err)
	}
	if len(s.SwapList(notation.Turn, 0)) == 0 {
		t.Error("expected a turn swap for 2s")
	}
	if got := cards.FormatCards(s.Board()); got != "Kh9h4h2s" {
		t.Errorf("board = %s, want Kh9h4h2s", got)
	}
}

// TestIntegration_ConcurrentQueries runs queries against one session from
// several goroutines
func TestIntegration_ConcurrentQueries(t *testing.T) {
	game, err := tree.DemoRiver()
	if err != nil {
		t.Fatalf("Failed to build game: %v", err)
	}
	s, err := query.NewSession(game)
	if err != nil {
		t.Fatalf("Failed to open session: %v", err)
	}

	lines := []string{"X", "B50", "X-B100", "B50-C"}
	var wg sync.WaitGroup
	errs := make(chan error, 4*len(lines))
	for i := 0; i < 4; i++ {
		for _, line := range lines {
			wg.Add(1)
			go func(line string) {
				defer wg.Done()
				if err := s.ApplyHistoryString(line); err != nil {
					errs <- err
					return
				}
				if r := s.Results(); r.CurrentPlayer == "" {
					t.Errorf("empty results after %q", line)
				}
				if _, err := s.ActionsAfter(nil); err != nil {
					errs <- err
				}
			}(line)
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent query failed: %v", err)
	}
}
