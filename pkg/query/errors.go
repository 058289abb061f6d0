package query

import (
	"github.com/pkg/errors"

	"github.com/behrlich/postflop-query/pkg/cards"
	"github.com/behrlich/postflop-query/pkg/notation"
)

var (
	// ErrActionNotFound is returned when a history step matches no action
	// of the node it is applied to
	ErrActionNotFound = errors.New("action not found")

	// ErrCardNotReachable is returned when a dealt card is neither a chance
	// action of the node nor isomorphic to one
	ErrCardNotReachable = errors.New("card not reachable")

	// ErrNotChanceNode is returned by chance reports away from a chance node
	ErrNotChanceNode = errors.New("current node is not a chance node")

	// ErrCursorCorrupted is returned when the cursor cannot be restored
	// after a temporary descent
	ErrCursorCorrupted = errors.New("cursor corrupted")

	// ErrMalformedActionToken is returned when a text action cannot be decoded
	ErrMalformedActionToken = notation.ErrMalformedAction

	// ErrInvalidBoardLength is returned for boards without 3 to 5 cards
	ErrInvalidBoardLength = cards.ErrInvalidBoardLength
)
