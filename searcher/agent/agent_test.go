package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"aisearch/experiments/metrics"
	"aisearch/game"
	"aisearch/game/isolation"
	"aisearch/searcher"

	"github.com/stretchr/testify/require"
)

func opening(t *testing.T) game.State {
	t.Helper()
	s := isolation.NewDefault()
	return s.Result(isolation.Action(s.Cell(5, 4))).Result(isolation.Action(s.Cell(2, 2)))
}

func requireLegal(t *testing.T, state game.State, action game.Action) {
	t.Helper()
	require.Contains(t, state.Actions(), action)
}

func TestQueue(t *testing.T) {
	q := NewQueue()
	_, ok := q.Last()
	require.False(t, ok)

	q.Put(isolation.Action(3))
	q.Put(isolation.Action(7))
	last, ok := q.Last()
	require.True(t, ok)
	require.Equal(t, game.Action(isolation.Action(7)), last, "last decision wins")
	require.Equal(t, 2, q.Len())
}

func TestAgents(t *testing.T) {
	state := opening(t)
	agents := map[string]Agent{
		"mcts":      NewEvaluationAgent(searcher.NewMCTS(searcher.WithSeed(1), searcher.WithIterations(40))),
		"training":  NewTrainingAgent(searcher.NewMCTS(searcher.WithSeed(1), searcher.WithIterations(40)), 1.0, 5),
		"book":      NewBookAgent(searcher.NewBookMCTS(nil, searcher.WithSeed(1), searcher.WithIterations(40)), 2, nil),
		"alphabeta": NewAlphaBetaAgent(2, game.EvaluateLiberties),
		"minimax":   NewMinimaxAgent(2, game.EvaluateLiberties),
		"greedy":    NewGreedyAgent(game.EvaluateOwnLiberties, 1),
		"random":    NewRandomAgent(1),
	}
	for name, agent := range agents {
		t.Run(name, func(t *testing.T) {
			q := NewQueue()
			_, err := agent.Decide(context.Background(), state, q)
			require.NoError(t, err)

			action, ok := q.Last()
			require.True(t, ok, "agent should put a decision")
			requireLegal(t, state, action)
		})
	}
}

func TestDeepeningAgent(t *testing.T) {
	t.Run("puts one decision per completed depth", func(t *testing.T) {
		q := NewQueue()
		metric, err := NewAlphaBetaAgent(3, game.EvaluateLiberties).Decide(context.Background(), opening(t), q)
		require.NoError(t, err)
		require.Equal(t, 3, q.Len())
		require.Equal(t, 3, metric.Episodes)
		require.Equal(t, "alphabeta", metric.Algorithm)
	})

	t.Run("deadline before the first depth", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		q := NewQueue()
		metric, err := NewAlphaBetaAgent(3, game.EvaluateLiberties).Decide(ctx, opening(t), q)
		require.ErrorIs(t, err, context.Canceled)
		require.True(t, metric.Cancelled)
		require.Zero(t, q.Len())
	})
}

func TestGreedyAgentOpening(t *testing.T) {
	q := NewQueue()
	state := isolation.NewDefault()
	_, err := NewGreedyAgent(game.EvaluateOwnLiberties, 3).Decide(context.Background(), state, q)
	require.NoError(t, err)
	action, _ := q.Last()
	requireLegal(t, state, action)
}

func TestEvaluationAgentDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := NewEvaluationAgent(searcher.NewMCTS()).Decide(ctx, opening(t), NewQueue())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

type memoryPersister struct {
	saved []*searcher.Entry
	err   error
}

func (p *memoryPersister) Save(_ context.Context, entries []*searcher.Entry) error {
	p.saved = append(p.saved, entries...)
	return p.err
}

func TestBookAgent(t *testing.T) {
	t.Run("saves changed entries after deciding", func(t *testing.T) {
		persister := &memoryPersister{}
		book := searcher.NewBook()
		a := NewBookAgent(searcher.NewBookMCTS(book, searcher.WithSeed(2), searcher.WithIterations(20)), 2, persister)

		_, err := a.Decide(context.Background(), opening(t), NewQueue())
		require.NoError(t, err)
		require.NotEmpty(t, persister.saved)
		require.Empty(t, book.Changed(), "saved entries are no longer pending")
	})

	t.Run("suggests from the book first", func(t *testing.T) {
		state := opening(t)
		book := searcher.NewBook()
		suggested := state.Actions()[0]
		book.Update(state.(game.Keyed).Key(), suggested.String(), 50)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		q := NewQueue()
		_, err := NewBookAgent(searcher.NewBookMCTS(book), 0, nil).Decide(ctx, state, q)
		require.NoError(t, err, "the book search still decides from the recorded statistics")

		require.Equal(t, 2, q.Len())
		last, _ := q.Last()
		require.Equal(t, suggested, last)
	})

	t.Run("book is not extended after the deadline", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		book := searcher.NewBook()
		persister := &memoryPersister{}
		q := NewQueue()
		_, err := NewBookAgent(searcher.NewBookMCTS(book, searcher.WithSeed(2)), 4, persister).Decide(ctx, opening(t), q)
		require.ErrorIs(t, err, context.Canceled)
		require.Zero(t, book.Len())
		require.Empty(t, persister.saved)
		require.Zero(t, q.Len())
	})

	t.Run("save errors are returned", func(t *testing.T) {
		persister := &memoryPersister{err: errors.New("disk full")}
		a := NewBookAgent(searcher.NewBookMCTS(nil, searcher.WithSeed(2), searcher.WithIterations(5)), 0, persister)
		_, err := a.Decide(context.Background(), opening(t), NewQueue())
		require.ErrorContains(t, err, "disk full")
	})
}

func TestNew(t *testing.T) {
	for _, kind := range []string{"mcts", "training", "book", "alphabeta", "minimax", "greedy", "random"} {
		a, err := New(metrics.AgentConfig{Kind: kind, Iterations: 10, Depth: 1, Seed: 1}, Resources{})
		require.NoError(t, err, kind)
		require.NotNil(t, a)
	}

	_, err := New(metrics.AgentConfig{Kind: "oracle"}, Resources{})
	require.Error(t, err)
	_, err = New(metrics.AgentConfig{Kind: "mcts", Evaluate: "vibes"}, Resources{})
	require.Error(t, err)
}

func TestTrainingAgent(t *testing.T) {
	t.Run("samples a visited root action", func(t *testing.T) {
		state := opening(t)
		root, _ := searcher.NewMCTS(searcher.WithSeed(4), searcher.WithIterations(60)).Search(context.Background(), state)
		policy := root.Policy()

		for seed := uint64(1); seed <= 5; seed++ {
			q := NewQueue()
			mcts := searcher.NewMCTS(searcher.WithSeed(4), searcher.WithIterations(60))
			_, err := NewTrainingAgent(mcts, 1.0, seed).Decide(context.Background(), state, q)
			require.NoError(t, err)

			action, ok := q.Last()
			require.True(t, ok)
			require.Positive(t, policy[action], "sampled action %v was never visited", action)
		}
	})

	t.Run("temperature sharpens the visit distribution", func(t *testing.T) {
		policy := map[game.Action]int{isolation.Action(1): 1, isolation.Action(2): 3}

		flat := adjustTemperature(policy, 1.0)
		require.Equal(t, game.Action(isolation.Action(1)), flat[0].action)
		require.InDelta(t, 0.25, flat[0].prob, 1e-9)
		require.InDelta(t, 0.75, flat[1].prob, 1e-9)

		sharp := adjustTemperature(policy, 0.5)
		require.InDelta(t, 0.1, sharp[0].prob, 1e-9)
		require.InDelta(t, 0.9, sharp[1].prob, 1e-9)
	})

	t.Run("sampling walks the cumulative distribution", func(t *testing.T) {
		policy := adjustTemperature(map[game.Action]int{isolation.Action(1): 1, isolation.Action(2): 3}, 1.0)
		require.Equal(t, game.Action(isolation.Action(1)), sample(policy, 0.2))
		require.Equal(t, game.Action(isolation.Action(2)), sample(policy, 0.3))
		require.Equal(t, game.Action(isolation.Action(2)), sample(policy, 1.0), "rounding falls back to the last action")
	})

	t.Run("terminal state", func(t *testing.T) {
		s, err := isolation.New(3, 3)
		require.NoError(t, err)
		var state game.State = s
		for !state.Terminal() && len(state.Actions()) > 0 {
			state = state.Result(state.Actions()[0])
		}
		_, err = NewTrainingAgent(searcher.NewMCTS(searcher.WithSeed(1)), 1.0, 1).Decide(context.Background(), state, NewQueue())
		require.ErrorIs(t, err, searcher.ErrNoActions)
	})
}

func TestNewCutoffAgents(t *testing.T) {
	state := opening(t)
	for _, evaluate := range []string{"", "ratio", "liberties"} {
		t.Run("evaluation "+evaluate, func(t *testing.T) {
			a, err := New(metrics.AgentConfig{Kind: "mcts", Iterations: 30, Cutoff: 2, Seed: 3, Evaluate: evaluate}, Resources{})
			require.NoError(t, err)

			q := NewQueue()
			_, err = a.Decide(context.Background(), state, q)
			require.NoError(t, err)
			action, ok := q.Last()
			require.True(t, ok)
			requireLegal(t, state, action)
		})
	}
}
