package tree

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// GeometricSizing picks bet sizes that grow the pot geometrically to a
// target over the remaining streets, assuming every bet is called
type GeometricSizing struct {
	// TargetPot is the pot (in chips) to reach after the last street
	TargetPot int

	// NumStreets is the number of betting rounds remaining (1-3)
	NumStreets int

	// AllIn caps every bet (in chips)
	AllIn int
}

// NewGeometricSizing creates a geometric sizing calculator
func NewGeometricSizing(targetPot, numStreets, allIn int) *GeometricSizing {
	return &GeometricSizing{
		TargetPot:  targetPot,
		NumStreets: numStreets,
		AllIn:      allIn,
	}
}

// Fraction returns the pot fraction to bet now.
//
// After a bet of f*pot is called the pot is pot*(1+2f), so reaching the
// target in n streets takes f = ((target/pot)^(1/n) - 1) / 2
func (g *GeometricSizing) Fraction(pot int) float64 {
	if g.NumStreets <= 0 || pot <= 0 {
		return 0
	}

	growth := math.Pow(float64(g.TargetPot)/float64(pot), 1/float64(g.NumStreets))
	fraction := (growth - 1) / 2
	if fraction < 0 {
		return 0
	}
	if fraction*float64(pot) > float64(g.AllIn) {
		fraction = float64(g.AllIn) / float64(pot)
	}
	return fraction
}

// Fractions returns numSizes fractions around the geometric one: 0.75x and
// 1.25x for two sizes, 0.66x, 1x and 1.5x for three, and an even spread from
// 0.5x to 1.5x beyond that
func (g *GeometricSizing) Fractions(pot, numSizes int) []float64 {
	if numSizes <= 0 {
		return nil
	}

	geo := g.Fraction(pot)
	var sizes []float64
	switch numSizes {
	case 1:
		return []float64{geo}
	case 2:
		sizes = []float64{geo * 0.75, geo * 1.25}
	case 3:
		sizes = []float64{geo * 0.66, geo, geo * 1.5}
	default:
		sizes = make([]float64, numSizes)
		for i := range sizes {
			sizes[i] = geo * (0.5 + float64(i)/float64(numSizes-1))
		}
	}

	for i := range sizes {
		if sizes[i]*float64(pot) > float64(g.AllIn) {
			sizes[i] = float64(g.AllIn) / float64(pot)
		}
	}
	return sizes
}

// NextStreet returns the sizing for the following betting round
func (g *GeometricSizing) NextStreet() *GeometricSizing {
	next := *g
	next.NumStreets--
	return &next
}

// Validate checks the sizing parameters
func (g *GeometricSizing) Validate() error {
	if g.TargetPot <= 0 {
		return errors.Errorf("target pot must be positive, got %d", g.TargetPot)
	}
	if g.NumStreets < 1 || g.NumStreets > 3 {
		return errors.Errorf("numStreets must be 1-3, got %d", g.NumStreets)
	}
	if g.AllIn <= 0 {
		return errors.Errorf("allIn must be positive, got %d", g.AllIn)
	}
	return nil
}

func (g *GeometricSizing) String() string {
	return fmt.Sprintf("GeometricSizing{target=%d, streets=%d, allIn=%d}", g.TargetPot, g.NumStreets, g.AllIn)
}
