package agent

import (
	"context"
	"time"

	"aisearch/experiments/metrics"
	"aisearch/game"
	"aisearch/searcher"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type search func(ctx context.Context, state game.State, depth int, player int, evaluate game.Evaluate) (game.Action, float64, error)

type deepeningAgent struct {
	name     string
	search   search
	maxDepth int
	evaluate game.Evaluate
}

// NewAlphaBetaAgent searches one ply deeper at a time until maxDepth or the
// deadline, putting the action of every completed depth.
func NewAlphaBetaAgent(maxDepth int, evaluate game.Evaluate) Agent {
	return deepeningAgent{name: "alphabeta", search: searcher.AlphaBeta, maxDepth: maxDepth, evaluate: evaluate}
}

// NewMinimaxAgent is NewAlphaBetaAgent without pruning.
func NewMinimaxAgent(maxDepth int, evaluate game.Evaluate) Agent {
	return deepeningAgent{name: "minimax", search: searcher.Minimax, maxDepth: maxDepth, evaluate: evaluate}
}

func (a deepeningAgent) Decide(ctx context.Context, state game.State, decisions Decisions) (metrics.SearchMetric, error) {
	start := time.Now()
	metric := metrics.SearchMetric{Algorithm: a.name, Iterations: a.maxDepth}
	player := state.Player()

	for depth := 1; depth <= a.maxDepth; depth++ {
		action, value, err := a.search(ctx, state, depth, player, a.evaluate)
		if err != nil {
			metric.Duration = time.Since(start)
			metric.Cancelled = ctx.Err() != nil
			if metric.Cancelled && metric.Episodes > 0 {
				return metric, nil
			}
			return metric, err
		}
		decisions.Put(action)
		metric.Episodes = depth
		log.Debug().Str("agent", a.name).Int("depth", depth).Str("action", action.String()).Float64("value", value).Msg("completed depth")
	}
	metric.Duration = time.Since(start)
	return metric, nil
}

type greedyAgent struct {
	evaluate game.Evaluate
	rng      *rand.Rand
}

// NewGreedyAgent plays the action scoring best after one ply. Placements are
// random.
func NewGreedyAgent(evaluate game.Evaluate, seed uint64) Agent {
	return greedyAgent{evaluate: evaluate, rng: newRand(seed)}
}

func (a greedyAgent) Decide(ctx context.Context, state game.State, decisions Decisions) (metrics.SearchMetric, error) {
	start := time.Now()
	metric := metrics.SearchMetric{Algorithm: "greedy"}
	if p, ok := state.(game.Positional); ok && p.PlyCount() < 2 {
		action, err := randomAction(state, a.rng)
		if err != nil {
			return metric, err
		}
		decisions.Put(action)
		metric.Duration = time.Since(start)
		return metric, nil
	}

	action, err := searcher.Greedy(state, state.Player(), a.evaluate)
	if err != nil {
		return metric, err
	}
	decisions.Put(action)
	metric.Duration = time.Since(start)
	return metric, nil
}

type randomAgent struct {
	rng *rand.Rand
}

func NewRandomAgent(seed uint64) Agent {
	return randomAgent{rng: newRand(seed)}
}

func (a randomAgent) Decide(ctx context.Context, state game.State, decisions Decisions) (metrics.SearchMetric, error) {
	action, err := randomAction(state, a.rng)
	if err != nil {
		return metrics.SearchMetric{Algorithm: "random"}, err
	}
	decisions.Put(action)
	return metrics.SearchMetric{Algorithm: "random"}, nil
}

func randomAction(state game.State, rng *rand.Rand) (game.Action, error) {
	actions := state.Actions()
	if state.Terminal() || len(actions) == 0 {
		return nil, searcher.ErrNoActions
	}
	return actions[rng.Intn(len(actions))], nil
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewSource(seed))
}
