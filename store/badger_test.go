package store

import (
	"context"
	"testing"

	"aisearch/game"
	"aisearch/game/isolation"
	"aisearch/searcher"

	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleEntries() []*searcher.Entry {
	first := searcher.NewEntry(isolation.NewDefault().Key())
	first.Actions["40"] = &searcher.Stat{N: 3, Q: 1.5}
	first.Actions["41"] = &searcher.Stat{N: 1, Q: -1}

	s := isolation.NewDefault()
	second := searcher.NewEntry(s.Result(isolation.Action(40)).(game.Keyed).Key())
	second.Actions["60"] = &searcher.Stat{N: 7, Q: 0.25}
	return []*searcher.Entry{first, second}
}

func TestBadgerStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save then get", func(t *testing.T) {
		s := openMemory(t)
		entries := sampleEntries()
		require.NoError(t, s.Save(ctx, entries))

		got, err := s.Get(ctx, entries[0].Key)
		require.NoError(t, err)
		require.Equal(t, entries[0].Key, got.Key)
		require.Equal(t, 4, got.Visits())
		require.Equal(t, 1.5, got.Actions["40"].Q)
	})

	t.Run("missing entry", func(t *testing.T) {
		s := openMemory(t)
		_, err := s.Get(ctx, game.Key{Board: "nowhere"})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("save replaces stored entries", func(t *testing.T) {
		s := openMemory(t)
		entries := sampleEntries()
		require.NoError(t, s.Save(ctx, entries))

		entries[1].Actions["60"] = &searcher.Stat{N: 8, Q: 1.25}
		require.NoError(t, s.Save(ctx, entries[1:]))

		got, err := s.Get(ctx, entries[1].Key)
		require.NoError(t, err)
		require.Equal(t, 8, got.Actions["60"].N)
	})

	t.Run("load fills a book", func(t *testing.T) {
		s := openMemory(t)
		require.NoError(t, s.Save(ctx, sampleEntries()))

		book := searcher.NewBook()
		n, err := s.Load(ctx, book)
		require.NoError(t, err)
		require.Equal(t, 2, n)
		require.Equal(t, 2, book.Len())

		best, ok := book.Best(isolation.NewDefault().Key())
		require.True(t, ok)
		require.Equal(t, "40", best)
		require.Empty(t, book.Changed(), "loaded entries are not pending")
	})

	t.Run("colliding positions are not overwritten", func(t *testing.T) {
		s := openMemory(t)
		s.hash = func(game.Key) (uint64, error) { return 42, nil }
		entries := sampleEntries()

		require.NoError(t, s.Save(ctx, entries[:1]))
		require.NoError(t, s.Save(ctx, entries[:1]), "the same position may be saved again")
		require.ErrorIs(t, s.Save(ctx, entries[1:]), ErrCollision)

		got, err := s.Get(ctx, entries[0].Key)
		require.NoError(t, err)
		require.Equal(t, 4, got.Visits())
		_, err = s.Get(ctx, entries[1].Key)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("colliding positions in one batch", func(t *testing.T) {
		s := openMemory(t)
		s.hash = func(game.Key) (uint64, error) { return 42, nil }
		require.ErrorIs(t, s.Save(ctx, sampleEntries()), ErrCollision)

		n, err := s.Load(ctx, searcher.NewBook())
		require.NoError(t, err)
		require.Zero(t, n, "nothing is written")
	})

	t.Run("cancelled save", func(t *testing.T) {
		s := openMemory(t)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		require.ErrorIs(t, s.Save(cancelled, sampleEntries()), context.Canceled)
	})
}

func TestBadgerStoreReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(Config{Path: dir, SyncWrites: true})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, sampleEntries()))
	require.NoError(t, s.Close())

	s, err = Open(Config{Path: dir})
	require.NoError(t, err)
	defer s.Close()

	book := searcher.NewBook()
	n, err := s.Load(ctx, book)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	entry, ok := book.Entry(isolation.NewDefault().Key())
	require.True(t, ok)
	require.Equal(t, 4, entry.Visits())
}

func TestOpen(t *testing.T) {
	_, err := Open(Config{})
	require.ErrorContains(t, err, "path is required")
}
