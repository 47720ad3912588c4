// Package game holds the round outcome rules: a weighted-random
// rock-paper-scissors over the three elemental hands.
package game

import (
	"math/rand"

	"cardbattle-server/internal/deck"
)

// Result is one side's outcome for a single round.
type Result string

const (
	ResultWin  Result = "win"
	ResultLose Result = "lose"
	ResultDraw Result = "draw"
)

// Resolve maps a pair of played hands to a result for each side. Each side's
// result comes from its own independent random draw, so the two results are
// not guaranteed complementary: a non-draw matchup can come out both-win or
// both-lose. That is the intended game feel, not an oversight, and changing
// it would change every battle.
func Resolve(a, b deck.Hand) (Result, Result) {
	return resolveSide(a, b, rand.Float64()), resolveSide(b, a, rand.Float64())
}

// resolveSide evaluates one side's result given its own draw r in [0, 1).
//
// Equal hands:    45% win, 45% lose, 10% draw.
// Advantaged:     65% win,  5% draw, 30% lose.
// Disadvantaged:  30% win,  5% draw, 65% lose.
func resolveSide(mine, theirs deck.Hand, r float64) Result {
	if mine == theirs {
		switch {
		case r < 0.45:
			return ResultWin
		case r < 0.90:
			return ResultLose
		default:
			return ResultDraw
		}
	}

	if beats(mine, theirs) {
		switch {
		case r < 0.65:
			return ResultWin
		case r < 0.70:
			return ResultDraw
		default:
			return ResultLose
		}
	}

	switch {
	case r < 0.30:
		return ResultWin
	case r < 0.35:
		return ResultDraw
	default:
		return ResultLose
	}
}

// beats reports whether a holds the advantage over b in the element cycle.
func beats(a, b deck.Hand) bool {
	return (a == deck.HandFire && b == deck.HandGrass) ||
		(a == deck.HandWater && b == deck.HandFire) ||
		(a == deck.HandGrass && b == deck.HandWater)
}
