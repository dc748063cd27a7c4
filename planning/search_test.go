package planning_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"aisearch/cargo"
	"aisearch/planning"
)

func replay(t *testing.T, p *cargo.Problem, plan planning.Plan) []bool {
	t.Helper()
	state := p.Initial()
	for _, action := range plan.Actions {
		require.True(t, action.Applicable(state), "%s is not applicable", action.Name)
		state = action.Apply(state)
	}
	return state
}

func requireGoal(t *testing.T, p *cargo.Problem, state []bool) {
	t.Helper()
	for _, goal := range p.Goal() {
		require.True(t, goal.Holds(state), "goal %s does not hold", p.Symbols().Name(goal))
	}
}

func TestSearch(t *testing.T) {
	p := cargo.Problem1()

	t.Run("uniform cost finds the optimal plan", func(t *testing.T) {
		plan, err := planning.Search(context.Background(), p, p.Initial(), planning.Zero, planning.AStar)
		require.NoError(t, err)
		require.Equal(t, 6, plan.Len())
		requireGoal(t, p, replay(t, p, plan))
	})

	t.Run("A* with max level stays optimal", func(t *testing.T) {
		plan, err := planning.Search(context.Background(), p, p.Initial(), planning.MaxLevelHeuristic(), planning.AStar)
		require.NoError(t, err)
		require.Equal(t, 6, plan.Len())
	})

	t.Run("greedy search with level sum reaches the goal", func(t *testing.T) {
		plan, err := planning.Search(context.Background(), p, p.Initial(), planning.LevelSumHeuristic(), planning.GreedyBestFirst)
		require.NoError(t, err)
		requireGoal(t, p, replay(t, p, plan))
	})

	t.Run("cancelled context stops the search", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := planning.Search(ctx, p, p.Initial(), planning.Zero, planning.AStar)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("dead end start", func(t *testing.T) {
		deadEnd := func(planning.Problem, []bool) int { return -1 }
		_, err := planning.Search(context.Background(), p, p.Initial(), deadEnd, planning.AStar)
		require.ErrorIs(t, err, planning.ErrNoPlan)
	})
}

func TestCargoHeuristics(t *testing.T) {
	for _, p := range []*cargo.Problem{cargo.Problem1(), cargo.Problem2()} {
		levelSum := planning.NewPlanningGraph(p, p.Initial()).LevelSum()
		maxLevel := planning.NewPlanningGraph(p, p.Initial()).MaxLevel()
		setLevel := planning.NewPlanningGraph(p, p.Initial()).SetLevel()

		require.GreaterOrEqual(t, levelSum, maxLevel)
		require.GreaterOrEqual(t, setLevel, maxLevel)
		require.Equal(t, 2, maxLevel, "every cargo needs a load then an unload")
	}
}

func TestHeuristicCache(t *testing.T) {
	p := cargo.Problem1()
	cache, err := planning.NewHeuristicCache(8)
	require.NoError(t, err)

	calls := 0
	counting := func(problem planning.Problem, state []bool) int {
		calls++
		return planning.UnmetGoals(problem, state)
	}
	h := cache.Wrap("unmet", counting)

	require.Equal(t, 2, h(p, p.Initial()))
	require.Equal(t, 2, h(p, p.Initial()))
	require.Equal(t, 1, calls, "second lookup should hit the cache")
	require.Equal(t, 1, cache.Len())

	other := cache.Wrap("other", counting)
	other(p, p.Initial())
	require.Equal(t, 2, calls, "names separate cache entries")
}

func TestHeuristicByName(t *testing.T) {
	for _, name := range []string{"levelsum", "max-level", "SetLevel", "unmet", "zero"} {
		h, err := planning.HeuristicByName(name)
		require.NoError(t, err, name)
		require.NotNil(t, h)
	}
	_, err := planning.HeuristicByName("manhattan")
	require.Error(t, err)
}
