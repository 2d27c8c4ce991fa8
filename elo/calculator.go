// Package elo implements the rating engine: pure Elo math plus the
// store-backed processor that replays matches in chronological order.
package elo

import (
	"math"
)

// Defaults for the rating formula.
const (
	DefaultKFactor       = 32.0
	DefaultInitialRating = 1500.0
)

// Calculator holds the Elo formula parameters. K is the maximum rating
// swing per match; InitialRating seeds every new (player, surface) pair.
type Calculator struct {
	KFactor       float64
	InitialRating float64
}

// NewCalculator returns a calculator, falling back to the defaults for
// non-positive parameters.
func NewCalculator(kFactor, initialRating float64) *Calculator {
	if kFactor <= 0 {
		kFactor = DefaultKFactor
	}
	if initialRating <= 0 {
		initialRating = DefaultInitialRating
	}
	return &Calculator{KFactor: kFactor, InitialRating: initialRating}
}

// ExpectedScore is the logistic win probability of a rated ratingA player
// against a rated ratingB player. ExpectedScore(a,b) + ExpectedScore(b,a) == 1.
func (c *Calculator) ExpectedScore(ratingA, ratingB float64) float64 {
	return 1 / (1 + math.Pow(10, (ratingB-ratingA)/400))
}

// NewRatings applies one match result: the winner scores 1, the loser 0,
// with no margin-of-victory weighting. Returns the unrounded new ratings.
func (c *Calculator) NewRatings(winnerRating, loserRating float64) (float64, float64) {
	expectedWinner := c.ExpectedScore(winnerRating, loserRating)
	expectedLoser := c.ExpectedScore(loserRating, winnerRating)

	newWinner := winnerRating + c.KFactor*(1-expectedWinner)
	newLoser := loserRating + c.KFactor*(0-expectedLoser)
	return newWinner, newLoser
}
