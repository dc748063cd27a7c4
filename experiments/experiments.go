// Package experiments runs agent match-ups on isolation and records the
// results.
package experiments

import (
	"context"
	"fmt"
	"time"

	"aisearch/engine"
	"aisearch/experiments/metrics"
	"aisearch/game"
	"aisearch/game/isolation"
	"aisearch/searcher/agent"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	NumGames   = 30 // Per match up
	TimeBudget = 100 * time.Millisecond
)

type MatchUp struct {
	Agent1 metrics.AgentConfig
	Agent2 metrics.AgentConfig
}

type Experiment struct {
	Name     string
	Configs  []metrics.AgentConfig
	MatchUps []MatchUp
	// Games per match up, the starting agent alternates between games.
	Games       int
	MoveTimeout time.Duration
	MaxMoves    int
	// Concurrency bounds the games played at once, zero means one.
	Concurrency int
	// NewState returns the opening position, the empty default board if nil.
	NewState  func() game.State
	Resources agent.Resources
}

type Results struct {
	Games []metrics.GameRecord
	Moves []metrics.MoveRecord
}

// Score counts the wins of each agent in a match up.
type Score struct {
	Agent1, Agent2 int // AgentConfig.ID
	Wins1, Wins2   int
	Draws          int
}

func (r Results) Scores() []Score {
	scores := []Score{}
	index := map[[2]int]int{}
	for _, record := range r.Games {
		pair := [2]int{record.Agent1, record.Agent2}
		i, ok := index[pair]
		if !ok {
			i = len(scores)
			index[pair] = i
			scores = append(scores, Score{Agent1: record.Agent1, Agent2: record.Agent2})
		}
		switch record.Winner {
		case 0:
			scores[i].Wins1++
		case 1:
			scores[i].Wins2++
		default:
			scores[i].Draws++
		}
	}
	return scores
}

type gameResult struct {
	record metrics.GameRecord
	moves  []metrics.MoveMetric
}

// Run plays every game of the experiment and writes the records with writer
// unless it is nil.
func Run(ctx context.Context, experiment Experiment, writer *metrics.Writer) (Results, error) {
	newState := experiment.NewState
	if newState == nil {
		newState = func() game.State { return isolation.NewDefault() }
	}
	games := max(experiment.Games, 1)

	log.Info().Msgf("starting %s experiment...", experiment.Name)

	results := make([]gameResult, len(experiment.MatchUps)*games)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(experiment.Concurrency, 1))

	for mi, matchUp := range experiment.MatchUps {
		mi, matchUp := mi, matchUp
		for i := 0; i < games; i++ {
			i := i
			id := mi*games + i
			g.Go(func() error {
				log.Debug().Msgf("starting match up %d of %d game %d of %d...", mi+1, len(experiment.MatchUps), i+1, games)

				result, err := runGame(gctx, experiment, matchUp, newState(), i)
				if err != nil {
					return fmt.Errorf("match up %d game %d: %w", mi+1, i+1, err)
				}
				result.record.ID = id + 1
				results[id] = result
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return Results{}, err
	}

	out := Results{}
	for _, result := range results {
		out.Games = append(out.Games, result.record)
		for _, mm := range result.moves {
			out.Moves = append(out.Moves, metrics.MoveRecord{
				Game:       result.record.ID,
				MoveMetric: mm,
			})
		}
	}
	for _, score := range out.Scores() {
		log.Info().Msgf("agent %d vs agent %d: %d-%d with %d draws", score.Agent1, score.Agent2, score.Wins1, score.Wins2, score.Draws)
	}
	log.Info().Msgf("completed %s experiment", experiment.Name)

	if writer == nil {
		return out, nil
	}
	if err := writer.WriteAgentConfigs(experiment.Configs); err != nil {
		return out, fmt.Errorf("failed to store agent configs: %w", err)
	}
	if err := writer.WriteGameRecords(out.Games); err != nil {
		return out, fmt.Errorf("failed to write game records: %w", err)
	}
	if err := writer.WriteMoveRecords(out.Moves); err != nil {
		return out, fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msgf("stored results in %s", writer.Dir())
	return out, nil
}

// runGame plays game number n of a match up between freshly built agents.
func runGame(ctx context.Context, experiment Experiment, matchUp MatchUp, state game.State, n int) (gameResult, error) {
	agent1, err := agent.New(reseed(matchUp.Agent1, n), experiment.Resources)
	if err != nil {
		return gameResult{}, err
	}
	agent2, err := agent.New(reseed(matchUp.Agent2, n), experiment.Resources)
	if err != nil {
		return gameResult{}, err
	}

	options := []engine.Option{engine.WithMoveTimeout(experiment.MoveTimeout)}
	if experiment.MaxMoves > 0 {
		options = append(options, engine.WithMaxMoves(experiment.MaxMoves))
	}
	gameMetric, moveMetrics, err := engine.NewMatch(agent1, agent2, options...).Run(ctx, state, n%2)
	if err != nil {
		return gameResult{}, err
	}

	return gameResult{
		record: metrics.GameRecord{
			Agent1:     matchUp.Agent1.ID,
			Agent2:     matchUp.Agent2.ID,
			GameMetric: gameMetric,
		},
		moves: moveMetrics,
	}, nil
}

// reseed gives every game of a seeded agent its own seed.
func reseed(config metrics.AgentConfig, n int) metrics.AgentConfig {
	if config.Seed != 0 {
		config.Seed += uint64(n)
	}
	return config
}

// Against pairs every config with the baseline.
func Against(baseline metrics.AgentConfig, configs []metrics.AgentConfig) []MatchUp {
	matchUps := []MatchUp{}
	for _, config := range configs {
		matchUps = append(matchUps, MatchUp{Agent1: baseline, Agent2: config})
	}
	return matchUps
}

// Baselines pits MCTS against the classical players.
func Baselines() Experiment {
	mcts := metrics.AgentConfig{ID: 0, Kind: "mcts", Iterations: 200}
	configs := []metrics.AgentConfig{
		{ID: 1, Kind: "random"},
		{ID: 2, Kind: "greedy"},
		{ID: 3, Kind: "alphabeta", Depth: 6, Evaluate: "liberties"},
		{ID: 4, Kind: "minimax", Depth: 4, Evaluate: "liberties"},
		{ID: 5, Kind: "book", Iterations: 200, Depth: 10},
	}
	return Experiment{
		Name:        "baselines",
		Configs:     append(configs, mcts),
		MatchUps:    Against(mcts, configs),
		Games:       NumGames,
		MoveTimeout: TimeBudget,
	}
}

// Exploration varies the UCB1 exploration weight against the default one.
func Exploration() Experiment {
	baseline := metrics.AgentConfig{ID: 0, Kind: "mcts", Iterations: 200}
	configs := []metrics.AgentConfig{
		{ID: 1, Kind: "mcts", Iterations: 200, Exploration: 0.25},
		{ID: 2, Kind: "mcts", Iterations: 200, Exploration: 1},
		{ID: 3, Kind: "mcts", Iterations: 200, Exploration: 1.41},
		{ID: 4, Kind: "mcts", Iterations: 200, Exploration: 2},
	}
	return Experiment{
		Name:        "exploration",
		Configs:     append(configs, baseline),
		MatchUps:    Against(baseline, configs),
		Games:       NumGames,
		MoveTimeout: TimeBudget,
	}
}

// Cutoff compares full playouts with rollouts cut short and evaluated.
func Cutoff() Experiment {
	baseline := metrics.AgentConfig{ID: 0, Kind: "mcts", Iterations: 200} // Full playout
	configs := []metrics.AgentConfig{
		{ID: 1, Kind: "mcts", Iterations: 200, Cutoff: 5},
		{ID: 2, Kind: "mcts", Iterations: 200, Cutoff: 10, Evaluate: "ratio"},
		{ID: 3, Kind: "mcts", Iterations: 200, Cutoff: 20},
	}
	return Experiment{
		Name:        "cutoff",
		Configs:     append(configs, baseline),
		MatchUps:    Against(baseline, configs),
		Games:       NumGames,
		MoveTimeout: TimeBudget,
	}
}

// ByName returns one of the predefined experiments.
func ByName(name string) (Experiment, error) {
	switch name {
	case "baselines":
		return Baselines(), nil
	case "exploration":
		return Exploration(), nil
	case "cutoff":
		return Cutoff(), nil
	case "throughput":
		return Throughput(), nil
	}
	return Experiment{}, fmt.Errorf("unknown experiment %q", name)
}
