package experiments

import (
	"time"

	"aisearch/experiments/metrics"
)

// Throughput plays each iteration budget against itself without a move
// deadline. Mirror match ups give similar game lengths so the recorded
// search durations are comparable.
func Throughput() Experiment {
	const numGames = 2
	configs := []metrics.AgentConfig{
		{ID: 1, Kind: "mcts", Iterations: 50, Seed: 1},
		{ID: 2, Kind: "mcts", Iterations: 100, Seed: 1},
		{ID: 3, Kind: "mcts", Iterations: 200, Seed: 1},
		{ID: 4, Kind: "mcts", Iterations: 400, Seed: 1},
		{ID: 5, Kind: "mcts", Iterations: 800, Seed: 1},
	}

	matchUps := []MatchUp{}
	for _, config := range configs {
		matchUps = append(matchUps, MatchUp{Agent1: config, Agent2: config})
	}
	return Experiment{
		Name:     "throughput",
		Configs:  configs,
		MatchUps: matchUps,
		Games:    numGames,
	}
}

// Throughputs reports the mean search duration per iteration budget.
func (r Results) Throughputs() map[int]time.Duration {
	total := map[int]time.Duration{}
	count := map[int]int{}
	for _, move := range r.Moves {
		total[move.Iterations] += move.Duration
		count[move.Iterations]++
	}

	mean := map[int]time.Duration{}
	for iterations, duration := range total {
		mean[iterations] = duration / time.Duration(count[iterations])
	}
	return mean
}
