package agent

import (
	"fmt"

	"aisearch/experiments/metrics"
	"aisearch/game"
	"aisearch/searcher"
)

// Resources are shared by the agents built from configuration.
type Resources struct {
	Book      *searcher.Book
	Persister Persister
	// Collector creates the metrics collector of each search agent, nil for none.
	Collector func() metrics.Collector
}

// New builds the agent described by config.
func New(config metrics.AgentConfig, resources Resources) (Agent, error) {
	evaluate, ok := game.EvaluateByName(config.Evaluate)
	if !ok {
		return nil, fmt.Errorf("unknown evaluation %q for agent %d", config.Evaluate, config.ID)
	}

	// Search agents keep the normalized default unless an evaluation is named
	options := []searcher.Option{}
	if config.Evaluate != "" {
		options = append(options, searcher.WithEvaluationFn(evaluate))
	}
	if config.Iterations > 0 {
		options = append(options, searcher.WithIterations(config.Iterations))
	}
	if config.Exploration > 0 {
		options = append(options, searcher.WithExploration(config.Exploration))
	}
	if config.Cutoff > 0 {
		options = append(options, searcher.WithCutoff(config.Cutoff))
	}
	if config.Seed != 0 {
		options = append(options, searcher.WithSeed(config.Seed))
	}
	if resources.Collector != nil {
		options = append(options, searcher.WithCollector(resources.Collector()))
	}

	switch config.Kind {
	case "mcts":
		return NewEvaluationAgent(searcher.NewMCTS(options...)), nil
	case "training":
		return NewTrainingAgent(searcher.NewMCTS(options...), 1.0, config.Seed), nil
	case "book":
		book := resources.Book
		if book == nil {
			book = searcher.NewBook()
		}
		return NewBookAgent(searcher.NewBookMCTS(book, options...), config.Depth, resources.Persister), nil
	case "alphabeta":
		return NewAlphaBetaAgent(max(config.Depth, 1), evaluate), nil
	case "minimax":
		return NewMinimaxAgent(max(config.Depth, 1), evaluate), nil
	case "greedy":
		return NewGreedyAgent(game.EvaluateOwnLiberties, config.Seed), nil
	case "random":
		return NewRandomAgent(config.Seed), nil
	}
	return nil, fmt.Errorf("unknown agent kind %q", config.Kind)
}
