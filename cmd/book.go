package cmd

import (
	"context"

	"aisearch/config"
	"aisearch/experiments/metrics"
	"aisearch/searcher"
	"aisearch/store"

	"github.com/rs/zerolog/log"
)

func needsBook(agents ...metrics.AgentConfig) bool {
	for _, a := range agents {
		if a.Kind == "book" {
			return true
		}
	}
	return false
}

// openBook opens the book store and loads every entry it holds.
func openBook(ctx context.Context, cfg config.BookConfig) (*store.BadgerStore, *searcher.Book, error) {
	s, err := store.Open(store.Config{Path: cfg.Path, InMemory: cfg.InMemory})
	if err != nil {
		return nil, nil, err
	}

	book := searcher.NewBook()
	n, err := s.Load(ctx, book)
	if err != nil {
		_ = s.Close()
		return nil, nil, err
	}
	log.Info().Msgf("loaded %d book entries", n)
	return s, book, nil
}
