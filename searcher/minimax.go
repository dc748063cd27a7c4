package searcher

import (
	"context"
	"math"

	"aisearch/game"
)

// Minimax returns the best action for player by depth-limited minimax. Leaves
// at the horizon are scored with evaluate, finished games with their outcome.
func Minimax(ctx context.Context, state game.State, depth int, player int, evaluate game.Evaluate) (game.Action, float64, error) {
	return decide(ctx, state, depth, player, evaluate, false)
}

// AlphaBeta is Minimax with alpha-beta pruning. It returns the same value.
func AlphaBeta(ctx context.Context, state game.State, depth int, player int, evaluate game.Evaluate) (game.Action, float64, error) {
	return decide(ctx, state, depth, player, evaluate, true)
}

type minimax struct {
	ctx      context.Context
	player   int
	evaluate game.Evaluate
	prune    bool
}

func decide(ctx context.Context, state game.State, depth int, player int, evaluate game.Evaluate, prune bool) (game.Action, float64, error) {
	actions := state.Actions()
	if state.Terminal() || len(actions) == 0 {
		return nil, 0, ErrNoActions
	}
	s := minimax{ctx: ctx, player: player, evaluate: evaluate, prune: prune}

	var best game.Action
	alpha := math.Inf(-1)
	for _, action := range actions {
		value, err := s.value(state.Result(action), depth-1, alpha, math.Inf(1))
		if err != nil {
			return nil, 0, err
		}
		if best == nil || value > alpha {
			best, alpha = action, value
		}
	}
	return best, alpha, nil
}

func (s minimax) value(state game.State, depth int, alpha, beta float64) (float64, error) {
	if err := s.ctx.Err(); err != nil {
		return 0, err
	}
	actions := state.Actions()
	if state.Terminal() || len(actions) == 0 {
		return terminalValue(state, s.player), nil
	}
	if depth <= 0 {
		return s.evaluate(state, s.player), nil
	}

	maximizing := state.Player() == s.player
	v := math.Inf(1)
	if maximizing {
		v = math.Inf(-1)
	}
	for _, action := range actions {
		child, err := s.value(state.Result(action), depth-1, alpha, beta)
		if err != nil {
			return 0, err
		}
		if maximizing {
			v = math.Max(v, child)
			if s.prune && v >= beta {
				return v, nil
			}
			alpha = math.Max(alpha, v)
		} else {
			v = math.Min(v, child)
			if s.prune && v <= alpha {
				return v, nil
			}
			beta = math.Min(beta, v)
		}
	}
	return v, nil
}

// terminalValue ranks wins and losses beyond any evaluation.
func terminalValue(state game.State, player int) float64 {
	switch outcome(state.Utility(player)) {
	case Win:
		return math.Inf(1)
	case Loss:
		return math.Inf(-1)
	}
	return 0
}

// Greedy returns the action after which evaluate scores best for player.
func Greedy(state game.State, player int, evaluate game.Evaluate) (game.Action, error) {
	actions := state.Actions()
	if state.Terminal() || len(actions) == 0 {
		return nil, ErrNoActions
	}
	best := actions[0]
	bestScore := math.Inf(-1)
	for _, action := range actions {
		next := state.Result(action)
		score := evaluate(next, player)
		if next.Terminal() {
			score = terminalValue(next, player)
		}
		if score > bestScore {
			best, bestScore = action, score
		}
	}
	return best, nil
}
