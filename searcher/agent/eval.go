package agent

import (
	"context"
	"errors"

	"aisearch/experiments/metrics"
	"aisearch/game"
	"aisearch/searcher"
)

type evaluationAgent struct {
	mcts *searcher.MCTS
}

// NewEvaluationAgent returns an agent playing the MCTS action with the best
// mean reward.
func NewEvaluationAgent(mcts *searcher.MCTS) Agent {
	return evaluationAgent{mcts: mcts}
}

func (a evaluationAgent) Decide(ctx context.Context, state game.State, decisions Decisions) (metrics.SearchMetric, error) {
	action, metric, err := a.mcts.FindNextMove(ctx, state)
	if err != nil {
		return metric, deadline(ctx, err)
	}
	decisions.Put(action)
	return metric, nil
}

// deadline reports a search cut short by ctx as the context error.
func deadline(ctx context.Context, err error) error {
	if errors.Is(err, searcher.ErrNoDecision) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
