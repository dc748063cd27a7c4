package agent

import (
	"context"
	"math"
	"sort"

	"aisearch/experiments/metrics"
	"aisearch/game"
	"aisearch/searcher"

	"golang.org/x/exp/rand"
)

type trainingAgent struct {
	mcts        *searcher.MCTS
	temperature float64
	rng         *rand.Rand
}

// NewTrainingAgent returns an agent for self-play that samples its action
// from the root visit counts, so repeated games explore different lines.
func NewTrainingAgent(mcts *searcher.MCTS, temperature float64, seed uint64) Agent {
	if temperature <= 0 {
		temperature = 1.0
	}
	return trainingAgent{mcts: mcts, temperature: temperature, rng: newRand(seed)}
}

func (a trainingAgent) Decide(ctx context.Context, state game.State, decisions Decisions) (metrics.SearchMetric, error) {
	root, metric := a.mcts.Search(ctx, state)
	policy := root.Policy()
	if len(policy) == 0 {
		if root.Terminal() {
			return metric, searcher.ErrNoActions
		}
		return metric, deadline(ctx, searcher.ErrNoDecision)
	}
	decisions.Put(sample(adjustTemperature(policy, a.temperature), a.rng.Float64()))
	return metric, nil
}

type weighted struct {
	action game.Action
	prob   float64
}

func adjustTemperature(policy map[game.Action]int, temperature float64) []weighted {
	// Compute temperature-adjusted move probabilities
	exponent := 1.0 / temperature
	sum := 0.0
	adjusted := make([]weighted, 0, len(policy))
	for action, visits := range policy {
		prob := math.Pow(float64(visits), exponent)
		sum += prob
		adjusted = append(adjusted, weighted{action: action, prob: prob})
	}
	// Map iteration order is random, sampling must not be
	sort.Slice(adjusted, func(i, j int) bool {
		return adjusted[i].action.String() < adjusted[j].action.String()
	})
	// Normalize
	for i := range adjusted {
		adjusted[i].prob /= sum
	}
	return adjusted
}

func sample(policy []weighted, sampled float64) game.Action {
	cumulative := 0.0
	for _, w := range policy {
		cumulative += w.prob
		if sampled < cumulative {
			return w.action
		}
	}
	return policy[len(policy)-1].action // Fallback in case of rounding errors
}
