package tree

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/behrlich/postflop-query/pkg/cards"
	"github.com/behrlich/postflop-query/pkg/notation"
	"github.com/behrlich/postflop-query/pkg/solver"
)

// SnapshotVersion is written to every snapshot
const SnapshotVersion = "1.0"

// SerializableGame is a JSON-friendly representation of a Game
type SerializableGame struct {
	Version        string            `json:"version"`
	Board          string            `json:"board"`
	StartingPot    int               `json:"starting_pot"`
	EffectiveStack int               `json:"effective_stack"`
	Hands          [2][]uint16       `json:"hands"`
	Weights        [2][]float32      `json:"weights"`
	Root           *SerializableNode `json:"root"`
}

// SerializableNode is a JSON-friendly representation of a Node
type SerializableNode struct {
	Kind         string                    `json:"kind"`
	Player       int                       `json:"player,omitempty"`
	Folder       int                       `json:"folder"`
	TotalBet     [2]int                    `json:"total_bet"`
	Actions      []string                  `json:"actions,omitempty"`
	Children     []*SerializableNode       `json:"children,omitempty"`
	Possible     uint64                    `json:"possible_cards,omitempty"`
	Isomorphisms []SerializableIsomorphism `json:"isomorphisms,omitempty"`
	Strategy     solver.Table              `json:"strategy"`
	ActionValues solver.Table              `json:"action_values"`
	CFValues     [2]solver.Table           `json:"cfvalues"`
	Equity       [2]solver.Table           `json:"equity"`
}

// SerializableIsomorphism is a JSON-friendly representation of a solver.Isomorphism
type SerializableIsomorphism struct {
	Card   int         `json:"card"`
	Branch int         `json:"branch"`
	Swap   [2][][2]int `json:"swap"`
}

// ToJSON serializes the Game to JSON bytes
func (g *Game) ToJSON() ([]byte, error) {
	sg := SerializableGame{
		Version:        SnapshotVersion,
		Board:          cards.FormatCards(g.config.Board),
		StartingPot:    g.config.StartingPot,
		EffectiveStack: g.config.EffectiveStack,
		Weights:        g.weights,
		Root:           toSerializableNode(g.root),
	}
	for p, hands := range g.hands {
		sg.Hands[p] = make([]uint16, len(hands))
		for i, h := range hands {
			sg.Hands[p][i] = h.Pack()
		}
	}
	return json.Marshal(sg)
}

func toSerializableNode(n *Node) *SerializableNode {
	sn := &SerializableNode{
		Kind:         n.kind.String(),
		Player:       n.player,
		Folder:       n.folder,
		TotalBet:     n.totalBet,
		Possible:     uint64(n.possible),
		Strategy:     n.strategy,
		ActionValues: n.actionValues,
		CFValues:     n.cfValues,
		Equity:       n.equity,
	}
	for i, action := range n.actions {
		sn.Actions = append(sn.Actions, action.String())
		sn.Children = append(sn.Children, toSerializableNode(n.children[i]))
	}
	for _, iso := range n.isomorphisms {
		si := SerializableIsomorphism{Card: int(iso.Card), Branch: iso.Branch}
		for p, list := range iso.Swap {
			si.Swap[p] = make([][2]int, len(list))
			for k, pair := range list {
				si.Swap[p][k] = [2]int{pair.I, pair.J}
			}
		}
		sn.Isomorphisms = append(sn.Isomorphisms, si)
	}
	return sn
}

// FromJSON deserializes JSON bytes into a Game
func FromJSON(data []byte) (*Game, error) {
	var sg SerializableGame
	if err := json.Unmarshal(data, &sg); err != nil {
		return nil, errors.Wrap(err, "decoding snapshot")
	}
	if sg.Version != SnapshotVersion {
		return nil, errors.Errorf("unsupported snapshot version %q", sg.Version)
	}

	board, err := cards.ParseCards(sg.Board)
	if err != nil {
		return nil, errors.Wrap(err, "snapshot board")
	}
	g := &Game{
		config: solver.Config{
			Board:          board,
			StartingPot:    sg.StartingPot,
			EffectiveStack: sg.EffectiveStack,
		},
		weights: sg.Weights,
	}
	if err := g.config.Validate(); err != nil {
		return nil, err
	}

	for p, packed := range sg.Hands {
		if len(packed) != len(sg.Weights[p]) {
			return nil, errors.Errorf("player %d has %d hands but %d weights", p, len(packed), len(sg.Weights[p]))
		}
		g.hands[p] = make([]cards.Hand, len(packed))
		for i, v := range packed {
			h := cards.Hand{Card1: cards.Card(v & 0xff), Card2: cards.Card(v >> 8)}
			if !h.Card1.Valid() || !h.Card2.Valid() || h.Card1 >= h.Card2 {
				return nil, errors.Wrapf(cards.ErrInvalidCard, "player %d hand %d", p, i)
			}
			g.hands[p][i] = h
		}
	}

	if sg.Root == nil {
		return nil, errors.Wrap(ErrInvalidTree, "snapshot without root")
	}
	if g.root, err = g.fromSerializableNode(sg.Root); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) fromSerializableNode(sn *SerializableNode) (*Node, error) {
	n := &Node{
		player:       sn.Player,
		folder:       sn.Folder,
		totalBet:     sn.TotalBet,
		possible:     cards.Mask(sn.Possible),
		strategy:     sn.Strategy,
		actionValues: sn.ActionValues,
		cfValues:     sn.CFValues,
		equity:       sn.Equity,
	}
	switch sn.Kind {
	case "terminal":
		n.kind = solver.Terminal
	case "chance":
		n.kind = solver.Chance
	case "player":
		n.kind = solver.Player
		if n.player != 0 && n.player != 1 {
			return nil, errors.Wrapf(ErrInvalidTree, "player %d", n.player)
		}
	default:
		return nil, errors.Wrapf(ErrInvalidTree, "unknown node kind %q", sn.Kind)
	}

	if len(sn.Actions) != len(sn.Children) {
		return nil, errors.Wrapf(ErrInvalidTree, "%d actions but %d children", len(sn.Actions), len(sn.Children))
	}
	for i, token := range sn.Actions {
		action, err := notation.ParseAction(token)
		if err != nil {
			return nil, err
		}
		if action.IsChance() != (n.kind == solver.Chance) {
			return nil, errors.Wrapf(ErrInvalidTree, "action %q at a %v node", token, n.kind)
		}
		child, err := g.fromSerializableNode(sn.Children[i])
		if err != nil {
			return nil, errors.Wrapf(err, "action %q", token)
		}
		n.actions = append(n.actions, action)
		n.children = append(n.children, child)
	}

	for _, si := range sn.Isomorphisms {
		if si.Branch < 0 || si.Branch >= len(n.actions) {
			return nil, errors.Wrapf(ErrInvalidTree, "isomorphism branch %d", si.Branch)
		}
		iso := solver.Isomorphism{Card: cards.Card(si.Card), Branch: si.Branch}
		for p, pairs := range si.Swap {
			for _, pair := range pairs {
				if pair[0] < 0 || pair[1] < 0 || pair[0] >= len(g.hands[p]) || pair[1] >= len(g.hands[p]) {
					return nil, errors.Wrapf(ErrInvalidTree, "swap pair %v out of range for player %d", pair, p)
				}
				iso.Swap[p] = append(iso.Swap[p], cards.SwapPair{I: pair[0], J: pair[1]})
			}
		}
		n.isomorphisms = append(n.isomorphisms, iso)
	}

	if err := g.checkTables(n); err != nil {
		return nil, err
	}
	return n, nil
}

// checkTables verifies that every table of n has one entry per hand (and
// per action for the acting player's tables). Value and equity tables may
// be absent
func (g *Game) checkTables(n *Node) error {
	check := func(name string, t solver.Table, want int, optional bool) error {
		if t.Len() == want || (optional && t.Len() == 0) {
			return nil
		}
		return errors.Wrapf(ErrInvalidTree, "%s table of %v has %d entries, want %d", name, n, t.Len(), want)
	}

	rows := 0
	if n.kind == solver.Player {
		rows = len(n.actions) * len(g.hands[n.player])
	}
	if err := check("strategy", n.strategy, rows, false); err != nil {
		return err
	}
	if err := check("action value", n.actionValues, rows, true); err != nil {
		return err
	}
	for p := range g.hands {
		if err := check("cfvalue", n.cfValues[p], len(g.hands[p]), true); err != nil {
			return err
		}
		if err := check("equity", n.equity[p], len(g.hands[p]), true); err != nil {
			return err
		}
	}
	return nil
}

// SaveToFile saves the Game to a JSON file
func (g *Game) SaveToFile(filename string) error {
	data, err := g.ToJSON()
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}

// LoadFromFile loads a Game from a JSON file
func LoadFromFile(filename string) (*Game, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	return FromJSON(data)
}
