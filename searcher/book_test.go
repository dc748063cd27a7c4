package searcher

import (
	"context"
	"testing"

	"aisearch/game"

	"github.com/stretchr/testify/require"
)

func TestBook(t *testing.T) {
	key := nim{pile: 5}.Key()

	t.Run("update accumulates per action", func(t *testing.T) {
		book := NewBook()
		book.Update(key, "1", Win)
		book.Update(key, "1", Loss)
		book.Update(key, "2", Win)

		entry, ok := book.Entry(key)
		require.True(t, ok)
		require.Equal(t, Stat{N: 2, Q: 0}, *entry.Actions["1"])
		require.Equal(t, Stat{N: 1, Q: 1}, *entry.Actions["2"])
		require.Equal(t, 3, entry.Visits())
	})

	t.Run("entries are copies", func(t *testing.T) {
		book := NewBook()
		book.Update(key, "1", Win)
		entry, _ := book.Entry(key)
		entry.Actions["1"].Q = 100

		again, _ := book.Entry(key)
		require.Equal(t, Win, again.Actions["1"].Q)
	})

	t.Run("best is the highest accumulated reward", func(t *testing.T) {
		book := NewBook()
		_, ok := book.Best(key)
		require.False(t, ok)

		book.Update(key, "2", Win)
		book.Update(key, "1", Win)
		book.Update(key, "1", Win)
		best, ok := book.Best(key)
		require.True(t, ok)
		require.Equal(t, "1", best)
	})

	t.Run("changed drains updated entries", func(t *testing.T) {
		book := NewBook()
		book.Put(NewEntry(nim{pile: 9}.Key()))
		book.Update(key, "1", Win)

		changed := book.Changed()
		require.Len(t, changed, 1)
		require.Equal(t, key, changed[0].Key)
		require.Empty(t, book.Changed())
		require.Equal(t, 2, book.Len())
	})
}

func TestBookMCTS(t *testing.T) {
	t.Run("finds the winning move", func(t *testing.T) {
		m := NewBookMCTS(nil, WithSeed(9), WithIterations(2000))
		action, _, err := m.FindNextMove(context.Background(), nim{pile: 4})
		require.NoError(t, err)
		require.Equal(t, take(1), action)
	})

	t.Run("statistics carry over between searches", func(t *testing.T) {
		book := NewBook()
		m := NewBookMCTS(book, WithSeed(4), WithIterations(50))
		_, _, err := m.FindNextMove(context.Background(), nim{pile: 6})
		require.NoError(t, err)

		entry, ok := book.Entry(nim{pile: 6}.Key())
		require.True(t, ok)
		require.Equal(t, 50, entry.Visits(), "every iteration passes through the root")

		_, _, err = m.FindNextMove(context.Background(), nim{pile: 6})
		require.NoError(t, err)
		entry, _ = book.Entry(nim{pile: 6}.Key())
		require.Equal(t, 100, entry.Visits())
	})

	t.Run("negamax rewards along a line", func(t *testing.T) {
		m := NewBookMCTS(nil, WithSeed(1), WithIterations(20))
		_, _, err := m.FindNextMove(context.Background(), nim{pile: 2})
		require.NoError(t, err)

		entry, ok := m.Book().Entry(nim{pile: 2}.Key())
		require.True(t, ok)
		// Taking both stones always wins
		require.Equal(t, float64(entry.Actions["2"].N), entry.Actions["2"].Q)
	})

	t.Run("cancelled search makes no decision", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, metric, err := NewBookMCTS(nil, WithMetrics()).FindNextMove(ctx, nim{pile: 3})
		require.ErrorIs(t, err, ErrNoDecision)
		require.True(t, metric.Cancelled)
	})

	t.Run("states must be keyed", func(t *testing.T) {
		require.Panics(t, func() {
			NewBookMCTS(nil).FindNextMove(context.Background(), unkeyed{nim{pile: 3}})
		})
	})
}

func TestBuildBook(t *testing.T) {
	m := NewBookMCTS(nil, WithSeed(6))
	root := nim{pile: 10}
	m.BuildBook(root, 2)

	require.Equal(t, 2, m.Book().Len(), "a depth 2 line records the root and one reply")

	rootEntry, ok := m.Book().Entry(root.Key())
	require.True(t, ok)
	require.Len(t, rootEntry.Actions, 1)
	var rootAction string
	var rootStat *Stat
	for action, stat := range rootEntry.Actions {
		rootAction, rootStat = action, stat
	}

	a, err := parseTake(rootAction)
	require.NoError(t, err)
	reply, ok := m.Book().Entry(root.Result(a).(nim).Key())
	require.True(t, ok)
	for _, stat := range reply.Actions {
		require.Equal(t, -rootStat.Q, stat.Q, "rewards flip sign between plies")
	}

	suggested, ok := m.Suggest(root)
	require.True(t, ok)
	require.Equal(t, rootAction, suggested.String())
}

// unkeyed hides nim's Key method.
type unkeyed struct {
	s nim
}

func (u unkeyed) Player() int                { return u.s.Player() }
func (u unkeyed) Actions() []game.Action     { return u.s.Actions() }
func (u unkeyed) Terminal() bool             { return u.s.Terminal() }
func (u unkeyed) Utility(player int) float64 { return u.s.Utility(player) }

func (u unkeyed) Result(a game.Action) game.State {
	return unkeyed{u.s.Result(a).(nim)}
}

func parseTake(text string) (game.Action, error) {
	for _, a := range (nim{pile: 2}).Actions() {
		if a.String() == text {
			return a, nil
		}
	}
	return nil, ErrNoActions
}
