package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/golang/glog"
	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/behrlich/postflop-query/pkg/cards"
	"github.com/behrlich/postflop-query/pkg/notation"
	"github.com/behrlich/postflop-query/pkg/query"
	"github.com/behrlich/postflop-query/pkg/solver"
	"github.com/behrlich/postflop-query/pkg/tree"
)

var playerNames = [2]string{"OOP", "IP"}

func main() {
	// Defaults may come from a .env file
	_ = godotenv.Load()

	snapshot := flag.String("snapshot", os.Getenv("POSTFLOP_SNAPSHOT"), "Solved game snapshot (JSON)")
	history := flag.String("history", os.Getenv("POSTFLOP_HISTORY"), "Action line to replay, e.g. \"X-B100|Ah\"")
	suffix := flag.String("suffix", "", "Actions applied after each card in a chance report")
	street := flag.String("street", "river", "Demo game to write: river or turn")
	compress := flag.Bool("compress", false, "Store demo tables as 16-bit fixed point")
	debug := flag.Bool("debug", false, "Log query steps to stderr")
	flag.Parse()
	defer glog.Flush()

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	switch args[0] {
	case "demo":
		if len(args) < 2 {
			glog.Exitf("demo needs an output file")
		}
		writeDemo(args[1], *street, *compress)
	case "results":
		s := openSession(*snapshot, *history, *debug)
		printResults(s)
	case "report":
		s := openSession(*snapshot, *history, *debug)
		printReport(s, *suffix)
	case "actions":
		s := openSession(*snapshot, *history, *debug)
		printActions(s)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: postflop-query [flags] <command>\n")
	fmt.Fprintf(os.Stderr, "\nCommands:\n")
	fmt.Fprintf(os.Stderr, "  demo <file>   write a small solved game snapshot\n")
	fmt.Fprintf(os.Stderr, "  results       per-hand weights, equity, EV and strategy at the history\n")
	fmt.Fprintf(os.Stderr, "  report        per-card summary of the chance node at the history\n")
	fmt.Fprintf(os.Stderr, "  actions       actions and average strategy at the history\n")
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  postflop-query -street=turn demo game.json\n")
	fmt.Fprintf(os.Stderr, "  postflop-query -snapshot=game.json -history=\"X-X\" report\n")
	fmt.Fprintf(os.Stderr, "  postflop-query -snapshot=game.json -history=\"X-X|2d\" results\n")
	fmt.Fprintf(os.Stderr, "\nFlags:\n")
	flag.PrintDefaults()
}

func writeDemo(filename, street string, compress bool) {
	var opts []tree.Option
	if compress {
		opts = append(opts, tree.WithCompression())
	}

	var game *tree.Game
	var err error
	switch street {
	case "river":
		game, err = tree.DemoRiver(opts...)
	case "turn":
		game, err = tree.DemoTurn(opts...)
	default:
		glog.Exitf("unknown demo street %q", street)
	}
	if err != nil {
		glog.Exitf("Error building demo game: %v", err)
	}

	if err := game.SaveToFile(filename); err != nil {
		glog.Exitf("Error saving snapshot: %v", err)
	}
	glog.Infof("Wrote %s demo game with %d nodes to %s", street, game.NumNodes(), filename)
}

func openSession(snapshot, history string, debug bool) *query.Session {
	if snapshot == "" {
		glog.Exitf("no snapshot given (use -snapshot or POSTFLOP_SNAPSHOT)")
	}

	game, err := tree.LoadFromFile(snapshot)
	if err != nil {
		glog.Exitf("Error loading snapshot: %v", err)
	}
	glog.V(1).Infof("Loaded %d nodes from %s", game.NumNodes(), snapshot)

	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	s, err := query.NewSession(game, query.WithLogger(logger))
	if err != nil {
		glog.Exitf("Error opening session: %v", err)
	}
	if history == "" {
		s.BackToRoot()
	} else if err := s.ApplyHistoryString(history); err != nil {
		glog.Exitf("Error applying history %q: %v", history, err)
	}
	glog.V(1).Infof("Cursor path %v", s.Cursor().Path())

	pterm.Info.Printfln("Board %s, history %s", cards.FormatCards(s.Board()), s.HistoryString())
	return s
}

func printResults(s *query.Session) {
	r := s.Results()
	fmt.Printf("Current player: %s (%d actions)\n", r.CurrentPlayer, r.NumActions)
	fmt.Printf("EQR pot: OOP %d, IP %d\n\n", r.EqrBase[0], r.EqrBase[1])

	game := s.Game()
	for p := 0; p < 2; p++ {
		data := pterm.TableData{{"Hand", "Weight", "Normalized", "Equity", "EV", "EQR"}}
		for i, h := range game.PrivateCards(p) {
			if r.Weights[p][i] == 0 {
				continue
			}
			row := []string{h.String(), format(r.Weights[p][i]), format(r.Normalizer[p][i])}
			if r.IsEmpty == 0 {
				row = append(row, format(r.Equity[p][i]), format(r.EV[p][i]), format(r.EQR[p][i]))
			} else {
				row = append(row, "-", "-", "-")
			}
			data = append(data, row)
		}

		pterm.DefaultSection.Println(playerNames[p])
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			glog.Exitf("Error rendering table: %v", err)
		}
	}

	if r.Strategy == nil {
		return
	}
	printStrategy(s, r)
}

func printStrategy(s *query.Session, r *query.Results) {
	node, err := s.Cursor().Resolve(s.Game())
	if err != nil {
		glog.Exitf("Error resolving cursor: %v", err)
	}

	player := node.Player()
	hands := s.Game().PrivateCards(player)
	glog.V(1).Infof("Strategy table: %v, compressed %v", node.Strategy().Encoding(), node.Strategy().Compressed())
	header := []string{"Hand"}
	for _, a := range node.Actions() {
		header = append(header, a.Label())
	}
	if r.ActionEV != nil {
		for _, a := range node.Actions() {
			header = append(header, "EV "+a.String())
		}
	}

	data := pterm.TableData{header}
	for i, h := range hands {
		if r.Weights[player][i] == 0 {
			continue
		}
		row := []string{h.String()}
		for a := 0; a < r.NumActions; a++ {
			row = append(row, format(r.Strategy[a*len(hands)+i]*100)+"%")
		}
		if r.ActionEV != nil {
			for a := 0; a < r.NumActions; a++ {
				row = append(row, format(r.ActionEV[a*len(hands)+i]))
			}
		}
		data = append(data, row)
	}

	pterm.DefaultSection.Printfln("%s strategy", playerNames[player])
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		glog.Exitf("Error rendering table: %v", err)
	}
}

func printReport(s *query.Session, suffix string) {
	actions, err := notation.ParseLine(suffix)
	if err != nil {
		glog.Exitf("Error parsing suffix %q: %v", suffix, err)
	}

	report, err := s.ChanceReport(actions)
	if err != nil {
		glog.Exitf("Error building chance report: %v", err)
	}

	header := []string{"Card", "Status", "OOP combos", "IP combos", "OOP equity", "OOP EV", "OOP EQR", "IP equity", "IP EV", "IP EQR"}
	for a := 0; a < report.NumActions; a++ {
		header = append(header, "Action "+strconv.Itoa(a))
	}

	data := pterm.TableData{header}
	for c := cards.Card(0); c < cards.NumCards; c++ {
		status := report.Status[c]
		if status == query.NotPossible {
			continue
		}

		row := []string{c.String(), statusLabel(status),
			format(report.Combos[0][c]), format(report.Combos[1][c])}
		for p := 0; p < 2; p++ {
			if status == query.Normal {
				row = append(row, format(report.Equity[p][c]), format(report.EV[p][c]), format(report.EQR[p][c]))
			} else {
				row = append(row, "-", "-", "-")
			}
		}
		for a := 0; a < report.NumActions; a++ {
			row = append(row, format(report.Strategy[a*52+int(c)]*100)+"%")
		}
		data = append(data, row)
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		glog.Exitf("Error rendering table: %v", err)
	}
}

func printActions(s *query.Session) {
	labels, err := s.ActionsAfter(nil)
	if err != nil {
		glog.Exitf("Error listing actions: %v", err)
	}
	for _, label := range labels {
		fmt.Println(label)
	}

	bets, err := s.TotalBetAmount(nil)
	if err != nil {
		glog.Exitf("Error reading bets: %v", err)
	}
	fmt.Printf("Total bets: OOP %d, IP %d\n", bets[0], bets[1])

	node, err := s.Cursor().Resolve(s.Game())
	if err != nil {
		glog.Exitf("Error resolving cursor: %v", err)
	}
	if node.Kind() == solver.Chance {
		mask, err := s.PossibleCards(nil)
		if err != nil {
			glog.Exitf("Error reading possible cards: %v", err)
		}
		var possible []cards.Card
		for c := cards.Card(0); c < cards.NumCards; c++ {
			if mask.Has(c) {
				possible = append(possible, c)
			}
		}
		fmt.Printf("Possible cards: %s\n", cards.FormatCards(possible))
		return
	}

	if text := solver.FormatStrategy(node, len(s.Game().PrivateCards(node.Player()))); text != "" {
		fmt.Print("\n" + text)
	}
}

func statusLabel(status int) string {
	if status == query.Empty {
		return "empty"
	}
	return "normal"
}

func format(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 0):
		return fmt.Sprintf("%+.0f", v)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
