package query

import (
	"github.com/pkg/errors"

	"github.com/behrlich/postflop-query/pkg/solver"
)

// Cursor identifies a node by the action indices taken from the root. It
// holds no reference into the tree and is resolved on every use
type Cursor struct {
	path []int
}

// Path returns a copy of the action indices
func (c Cursor) Path() []int {
	return append([]int(nil), c.path...)
}

// Depth returns the number of actions taken from the root
func (c Cursor) Depth() int {
	return len(c.path)
}

// Child returns the cursor one action further down
func (c Cursor) Child(action int) Cursor {
	path := make([]int, len(c.path)+1)
	copy(path, c.path)
	path[len(c.path)] = action
	return Cursor{path: path}
}

// Equal reports whether both cursors identify the same node
func (c Cursor) Equal(other Cursor) bool {
	if len(c.path) != len(other.path) {
		return false
	}
	for i, a := range c.path {
		if other.path[i] != a {
			return false
		}
	}
	return true
}

// Resolve walks the path from the root of game
func (c Cursor) Resolve(game solver.Game) (solver.Node, error) {
	node := game.Root()
	for depth, action := range c.path {
		if action < 0 || action >= len(node.Actions()) {
			return nil, errors.Wrapf(ErrActionNotFound, "index %d at depth %d", action, depth)
		}
		node = node.Child(action)
	}
	return node, nil
}
