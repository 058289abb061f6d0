package notation

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/behrlich/postflop-query/pkg/cards"
)

// NumCombos is the number of distinct two-card holdings
const NumCombos = 52 * 51 / 2

// ComboIndex returns the position of a hand in a Range
func ComboIndex(h cards.Hand) int {
	c1, c2 := int(h.Card1), int(h.Card2)
	return c1*(101-c1)/2 + c2 - 1
}

// Range holds a weight in [0, 1] for every two-card holding
type Range [NumCombos]float32

// Weight returns the weight of a hand
func (r *Range) Weight(h cards.Hand) float32 {
	return r[ComboIndex(h)]
}

// SetWeight sets the weight of a hand
func (r *Range) SetWeight(h cards.Hand, w float32) {
	r[ComboIndex(h)] = w
}

// NumCombos returns the weighted number of combos in the range
func (r *Range) NumCombos() float64 {
	total := 0.0
	for _, w := range r {
		total += float64(w)
	}
	return total
}

// ParseRange parses a weighted range string
// Examples:
//   - "AA" → 6 combos (AsAh, AsAd, AsAc, AhAd, AhAc, AdAc)
//   - "AKs" → 4 combos, "AKo" → 12 combos, "AK" → 16 combos
//   - "KK-JJ" → 18 combos (KK, QQ, JJ)
//   - "TT+" → TT through AA, "ATs+" → ATs through AQs
//   - "AsKh" → one specific combo
//   - "AA,KK:0.5" → AA at full weight, KK at half weight
func ParseRange(rangeStr string) (*Range, error) {
	rangeStr = strings.TrimSpace(rangeStr)
	if rangeStr == "" {
		return nil, errors.New("empty range string")
	}

	r := &Range{}
	for _, part := range strings.Split(rangeStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		weight := float32(1)
		if i := strings.IndexByte(part, ':'); i >= 0 {
			w, err := strconv.ParseFloat(strings.TrimSpace(part[i+1:]), 32)
			if err != nil || w < 0 || w > 1 {
				return nil, errors.Errorf("invalid weight in %q", part)
			}
			weight = float32(w)
			part = strings.TrimSpace(part[:i])
		}

		var combos []cards.Hand
		var err error
		switch {
		case strings.Contains(part, "-"):
			combos, err = parseRangeWithDash(part)
		case strings.HasSuffix(part, "+"):
			combos, err = parseRangePlus(strings.TrimSuffix(part, "+"))
		case len(part) == 4:
			combos, err = parseSpecificCombo(part)
		default:
			combos, err = parseSingleHand(part)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "error parsing %q", part)
		}

		for _, h := range combos {
			r.SetWeight(h, weight)
		}
	}

	return r, nil
}

// parseSpecificCombo parses exact hole cards (e.g., "AsKh")
func parseSpecificCombo(s string) ([]cards.Hand, error) {
	cs, err := cards.ParseCards(s)
	if err != nil {
		return nil, err
	}
	if cs[0] == cs[1] {
		return nil, errors.Errorf("duplicate card in combo %q", s)
	}
	return []cards.Hand{cards.NewHand(cs[0], cs[1])}, nil
}

// parseSingleHand parses a single hand notation (e.g., "AA", "AKs", "AKo", "AK")
func parseSingleHand(hand string) ([]cards.Hand, error) {
	rank1, rank2, kind, err := parseHandComponents(hand)
	if err != nil {
		return nil, err
	}
	return generateCombos(rank1, rank2, kind), nil
}

// parseRangeWithDash parses a range with a dash (e.g., "KK-JJ", "AKs-ATs")
func parseRangeWithDash(rangeStr string) ([]cards.Hand, error) {
	parts := strings.Split(rangeStr, "-")
	if len(parts) != 2 {
		return nil, errors.Errorf("invalid range format: %q (expected format: AA-KK)", rangeStr)
	}

	startRank1, startRank2, startKind, err := parseHandComponents(parts[0])
	if err != nil {
		return nil, errors.Wrapf(err, "invalid start hand %q", parts[0])
	}

	endRank1, endRank2, endKind, err := parseHandComponents(parts[1])
	if err != nil {
		return nil, errors.Wrapf(err, "invalid end hand %q", parts[1])
	}

	if startKind != endKind {
		return nil, errors.Errorf("mismatched suited/offsuit in range %q", rangeStr)
	}

	var allCombos []cards.Hand

	// Pair ranges (e.g., "KK-JJ")
	if startRank1 == startRank2 && endRank1 == endRank2 {
		hi, lo := startRank1, endRank1
		if hi < lo {
			hi, lo = lo, hi
		}
		for r := int(hi); r >= int(lo); r-- {
			rank := cards.Rank(r)
			allCombos = append(allCombos, generateCombos(rank, rank, startKind)...)
		}
		return allCombos, nil
	}

	// Non-pair ranges (e.g., "AKs-ATs"): first rank must be the same for both
	if startRank1 != endRank1 {
		return nil, errors.Errorf("invalid range %q (first rank must match)", rangeStr)
	}

	hi, lo := startRank2, endRank2
	if hi < lo {
		hi, lo = lo, hi
	}
	for r := int(hi); r >= int(lo); r-- {
		allCombos = append(allCombos, generateCombos(startRank1, cards.Rank(r), startKind)...)
	}

	return allCombos, nil
}

// parseRangePlus expands "TT" to TT+ and "ATs" to ATs+ (kicker up to one below the top rank)
func parseRangePlus(hand string) ([]cards.Hand, error) {
	rank1, rank2, kind, err := parseHandComponents(hand)
	if err != nil {
		return nil, err
	}

	var allCombos []cards.Hand
	if rank1 == rank2 {
		for r := rank1; r <= cards.Ace; r++ {
			allCombos = append(allCombos, generateCombos(r, r, kind)...)
		}
		return allCombos, nil
	}

	for r := rank2; r < rank1; r++ {
		allCombos = append(allCombos, generateCombos(rank1, r, kind)...)
	}
	return allCombos, nil
}

// comboKind distinguishes pairs, suited, offsuit and unqualified hands
type comboKind uint8

const (
	kindAny comboKind = iota
	kindSuited
	kindOffsuit
)

// parseHandComponents parses hand notation and returns (high rank, low rank, kind, error)
func parseHandComponents(hand string) (cards.Rank, cards.Rank, comboKind, error) {
	hand = strings.TrimSpace(hand)

	if len(hand) < 2 || len(hand) > 3 {
		return 0, 0, kindAny, errors.Errorf("invalid hand notation: %q", hand)
	}

	rank1, err := parseRankChar(hand[0])
	if err != nil {
		return 0, 0, kindAny, err
	}

	rank2, err := parseRankChar(hand[1])
	if err != nil {
		return 0, 0, kindAny, err
	}

	if rank1 < rank2 {
		rank1, rank2 = rank2, rank1
	}

	kind := kindAny
	if len(hand) == 3 {
		// Pairs cannot have suited/offsuit indicator
		if rank1 == rank2 {
			return 0, 0, kindAny, errors.Errorf("pair %q cannot have suited/offsuit indicator", hand)
		}

		switch hand[2] {
		case 's', 'S':
			kind = kindSuited
		case 'o', 'O':
			kind = kindOffsuit
		default:
			return 0, 0, kindAny, errors.Errorf("invalid suited/offsuit indicator: %c", hand[2])
		}
	}

	return rank1, rank2, kind, nil
}

// parseRankChar converts a character to a Rank
func parseRankChar(b byte) (cards.Rank, error) {
	const ranks = "23456789TJQKA"
	i := strings.IndexByte(ranks, upper(b))
	if i < 0 {
		return 0, errors.Errorf("invalid rank: %c", b)
	}
	return cards.Rank(i), nil
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

// generateCombos generates all possible card combinations for a given hand
func generateCombos(rank1, rank2 cards.Rank, kind comboKind) []cards.Hand {
	var combos []cards.Hand

	if rank1 == rank2 {
		// Pair: generate all 6 combinations
		for s1 := cards.Clubs; s1 <= cards.Spades; s1++ {
			for s2 := s1 + 1; s2 <= cards.Spades; s2++ {
				combos = append(combos, cards.NewHand(cards.NewCard(rank1, s1), cards.NewCard(rank2, s2)))
			}
		}
		return combos
	}

	for s1 := cards.Clubs; s1 <= cards.Spades; s1++ {
		for s2 := cards.Clubs; s2 <= cards.Spades; s2++ {
			suited := s1 == s2
			if (kind == kindSuited && !suited) || (kind == kindOffsuit && suited) {
				continue
			}
			combos = append(combos, cards.NewHand(cards.NewCard(rank1, s1), cards.NewCard(rank2, s2)))
		}
	}

	return combos
}

// PrivateHands lists the hands of r that can be dealt given the board, in
// increasing card order, together with their weights. Zero-weight hands and
// hands sharing a card with the board are left out
func PrivateHands(r *Range, board []cards.Card) ([]cards.Hand, []float32) {
	dead := cards.MaskOf(board...)

	var hands []cards.Hand
	var weights []float32
	for c2 := cards.Card(1); c2 < cards.NumCards; c2++ {
		for c1 := cards.Card(0); c1 < c2; c1++ {
			h := cards.Hand{Card1: c1, Card2: c2}
			w := r.Weight(h)
			if w <= 0 || h.Mask().Overlaps(dead) {
				continue
			}
			hands = append(hands, h)
			weights = append(weights, w)
		}
	}
	return hands, weights
}
