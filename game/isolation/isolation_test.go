package isolation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"aisearch/game"
)

func play(t *testing.T, s *State, cells ...int) *State {
	t.Helper()
	for _, cell := range cells {
		s = s.Result(Action(cell)).(*State)
	}
	return s
}

func TestNew(t *testing.T) {
	_, err := New(12, 11)
	require.Error(t, err, "132 cells do not fit the bitset")
	_, err = New(2, 5)
	require.Error(t, err)

	s := NewDefault()
	require.Equal(t, [2]int{-1, -1}, s.Locs())
	require.Equal(t, 0, s.Player())
	require.Len(t, s.Actions(), DefaultWidth*DefaultHeight, "any cell is open for placement")
	require.False(t, s.Terminal())
	require.Zero(t, s.Utility(0))
}

func TestResult(t *testing.T) {
	t.Run("placement then knight moves", func(t *testing.T) {
		s := NewDefault()
		center := s.Cell(5, 4)
		corner := s.Cell(0, 0)
		s = play(t, s, center, corner)

		require.Equal(t, [2]int{center, corner}, s.Locs())
		require.Equal(t, 2, s.PlyCount())
		require.Equal(t, 0, s.Player())
		require.Len(t, s.Actions(), 8)
		require.Len(t, s.Liberties(corner), 2)
	})

	t.Run("visited cells stay blocked", func(t *testing.T) {
		s := NewDefault()
		a, b := s.Cell(5, 4), s.Cell(0, 0)
		s = play(t, s, a, b, s.Cell(7, 5))

		require.True(t, s.Blocked(a))
		require.True(t, s.Blocked(b))
		require.Equal(t, DefaultWidth*DefaultHeight-3, s.OpenCells())
		require.NotContains(t, s.Liberties(s.Cell(7, 5)), a, "the square just left is not a liberty")
	})

	t.Run("result leaves the receiver untouched", func(t *testing.T) {
		s := NewDefault()
		next := play(t, s, 10)
		require.False(t, s.Blocked(10))
		require.True(t, next.Blocked(10))
	})

	t.Run("illegal moves panic", func(t *testing.T) {
		s := play(t, NewDefault(), 0, 50)
		require.Panics(t, func() { s.Result(Action(1)) })
		require.Panics(t, func() { s.Result(Action(0)) })
	})
}

func TestTerminal(t *testing.T) {
	// 3x3: from a corner a knight has two moves and the center has none
	s, err := New(3, 3)
	require.NoError(t, err)
	s = play(t, s, s.Cell(0, 0), s.Cell(1, 1))

	require.False(t, s.Terminal(), "player 0 can still jump")
	s = play(t, s, s.Cell(2, 1))

	require.Equal(t, 1, s.Player())
	require.True(t, s.Terminal(), "the center piece is stuck")
	require.Equal(t, -1.0, s.Utility(1))
	require.Equal(t, 1.0, s.Utility(0))
}

func TestKey(t *testing.T) {
	s := play(t, NewDefault(), 3, 40)
	same := play(t, NewDefault(), 3, 40)
	other := play(t, NewDefault(), 40, 3)

	require.Equal(t, s.Key(), same.Key())
	require.NotEqual(t, s.Key(), other.Key(), "locations belong to players")

	h1, err := s.Key().Hash()
	require.NoError(t, err)
	h2, err := same.Key().Hash()
	require.NoError(t, err)
	require.Equal(t, h1, h2)
	h3, err := other.Key().Hash()
	require.NoError(t, err)
	require.NotEqual(t, h1, h3)
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction(Action(42).String())
	require.NoError(t, err)
	require.Equal(t, game.Action(Action(42)), a)

	_, err = ParseAction("knight")
	require.Error(t, err)
	_, err = ParseAction("500")
	require.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	s := NewDefault()
	s = play(t, s, s.Cell(5, 4), s.Cell(0, 0))

	require.Equal(t, 6.0, game.EvaluateLiberties(s, 0))
	require.Equal(t, -6.0, game.EvaluateLiberties(s, 1))
	require.Equal(t, 8.0, game.EvaluateOwnLiberties(s, 0))
	require.InDelta(t, 0.6, game.EvaluateLibertyRatio(s, 0), 1e-9)
}
