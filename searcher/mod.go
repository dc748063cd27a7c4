package searcher

import (
	"errors"
	"math"
)

// Hyperparameters for MCTS

const DefaultIterations = 80
const DefaultExploration = 1 / math.Sqrt2 // c in q/n + c*sqrt(2*ln(N)/n)

const Win = 1.0   // Reward for winning outcome
const Loss = -Win // Reward for loss outcome (negate from opponent perspective)
const Draw = 0.0

// ErrNoDecision is returned when a search ends before any action was tried.
var ErrNoDecision = errors.New("search produced no decision")

// ErrNoActions is returned when asked to move from a position without moves.
var ErrNoActions = errors.New("no legal actions")

// outcome maps a utility to Win, Loss or Draw.
func outcome(utility float64) float64 {
	switch {
	case utility > 0:
		return Win
	case utility < 0:
		return Loss
	}
	return Draw
}
