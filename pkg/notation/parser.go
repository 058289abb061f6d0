package notation

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/behrlich/postflop-query/pkg/cards"
)

// ErrMalformedAction is returned when an action token cannot be decoded
var ErrMalformedAction = errors.New("malformed action token")

// RootLine is the encoding of an empty line
const RootLine = "(Root)"

// ParseAction decodes a single action token.
// Tokens: F (fold), X (check), C (call), B<n> (bet), R<n> (raise),
// A<n> (all-in), or a card ("37" or "Ah") for a chance action
func ParseAction(token string) (Action, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Action{}, errors.Wrap(ErrMalformedAction, "empty token")
	}

	switch token {
	case "F", "f":
		return FoldAction, nil
	case "X", "x":
		return CheckAction, nil
	case "C", "c":
		return CallAction, nil
	}

	switch token[0] {
	case 'B', 'b', 'R', 'r', 'A', 'a':
		// "Ah" and friends are cards, not all-ins
		if token[0] == 'A' || token[0] == 'a' {
			if card, err := cards.ParseCard(token); err == nil {
				return ChanceAction(card), nil
			}
		}
		amount, err := parseActionAmount(token[1:])
		if err != nil {
			return Action{}, errors.Wrapf(err, "token %q", token)
		}
		switch token[0] {
		case 'B', 'b':
			return BetAction(amount), nil
		case 'R', 'r':
			return RaiseAction(amount), nil
		default:
			return AllInAction(amount), nil
		}
	}

	card, err := cards.ParseCard(token)
	if err != nil {
		return Action{}, errors.Wrapf(ErrMalformedAction, "token %q: %v", token, err)
	}
	return ChanceAction(card), nil
}

// parseActionAmount parses the chip amount following a bet/raise/all-in
func parseActionAmount(s string) (int, error) {
	if len(s) == 0 {
		return 0, errors.Wrap(ErrMalformedAction, "missing amount")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, errors.Wrapf(ErrMalformedAction, "invalid amount %q", s)
		}
	}
	amount, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformedAction, "invalid amount %q", s)
	}
	return amount, nil
}

// ParseLine decodes a line of actions separated by '-', '|', ',' or spaces.
// An empty string and "(Root)" both decode to an empty line
func ParseLine(line string) ([]Action, error) {
	line = strings.TrimSpace(line)
	if line == "" || line == RootLine {
		return nil, nil
	}

	tokens := strings.FieldsFunc(line, func(r rune) bool {
		return r == '-' || r == '|' || r == ',' || r == ' ' || r == '\t'
	})

	actions := make([]Action, 0, len(tokens))
	for i, token := range tokens {
		action, err := ParseAction(token)
		if err != nil {
			return nil, errors.Wrapf(err, "action %d", i)
		}
		actions = append(actions, action)
	}
	return actions, nil
}

// EncodeLine encodes a line of actions. Actions within a street are joined
// with '-', and '|' follows an action that closes a street (a call, or the
// second of two checks)
func EncodeLine(line []Action) string {
	if len(line) == 0 {
		return RootLine
	}

	var b strings.Builder
	flag := 0
	for _, action := range line {
		if b.Len() > 0 {
			if flag == 2 {
				b.WriteByte('|')
				flag = 0
			} else {
				b.WriteByte('-')
			}
		}
		switch action.Type {
		case Check:
			flag++
		case Call:
			flag = 2
		default:
			flag = 0
		}
		b.WriteString(action.String())
	}
	return b.String()
}
