package agent

import (
	"context"
	"fmt"

	"aisearch/experiments/metrics"
	"aisearch/game"
	"aisearch/searcher"

	"github.com/rs/zerolog/log"
)

// Persister saves book entries between decisions.
type Persister interface {
	Save(ctx context.Context, entries []*searcher.Entry) error
}

type bookAgent struct {
	mcts      *searcher.BookMCTS
	depth     int
	persister Persister
}

// NewBookAgent returns an agent that first plays the book's suggestion, then
// extends the book with a random line of depth moves and a book search, and
// finally saves what changed. persister may be nil.
func NewBookAgent(mcts *searcher.BookMCTS, depth int, persister Persister) Agent {
	return bookAgent{mcts: mcts, depth: depth, persister: persister}
}

func (a bookAgent) Decide(ctx context.Context, state game.State, decisions Decisions) (metrics.SearchMetric, error) {
	if action, ok := a.mcts.Suggest(state); ok {
		decisions.Put(action)
	}
	if a.depth > 0 && !state.Terminal() && ctx.Err() == nil {
		a.mcts.BuildBook(state, a.depth)
	}

	action, metric, err := a.mcts.FindNextMove(ctx, state)
	if err == nil {
		decisions.Put(action)
	}
	if saveErr := a.save(); saveErr != nil {
		return metric, saveErr
	}
	return metric, deadline(ctx, err)
}

func (a bookAgent) save() error {
	if a.persister == nil {
		return nil
	}
	entries := a.mcts.Book().Changed()
	if len(entries) == 0 {
		return nil
	}
	// The decision is already made; saving must not be cut short by its deadline
	if err := a.persister.Save(context.Background(), entries); err != nil {
		return fmt.Errorf("failed to save book: %w", err)
	}
	log.Debug().Int("entries", len(entries)).Msg("saved book entries")
	return nil
}
