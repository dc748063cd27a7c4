package planning

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Heuristic estimates the cost of reaching a problem's goal from a state.
// A negative value marks the state as a dead end.
type Heuristic func(problem Problem, state []bool) int

func LevelSumHeuristic(options ...Option) Heuristic {
	return func(problem Problem, state []bool) int {
		return NewPlanningGraph(problem, state, options...).LevelSum()
	}
}

func MaxLevelHeuristic(options ...Option) Heuristic {
	return func(problem Problem, state []bool) int {
		return NewPlanningGraph(problem, state, options...).MaxLevel()
	}
}

func SetLevelHeuristic(options ...Option) Heuristic {
	return func(problem Problem, state []bool) int {
		return NewPlanningGraph(problem, state, options...).SetLevel()
	}
}

// UnmetGoals counts goal literals that do not hold in the state.
func UnmetGoals(problem Problem, state []bool) int {
	unmet := 0
	for _, goal := range problem.Goal() {
		if !goal.Holds(state) {
			unmet++
		}
	}
	return unmet
}

// Zero turns best-first search into uniform cost search.
func Zero(Problem, []bool) int {
	return 0
}

// HeuristicByName resolves the heuristic names accepted in configuration.
func HeuristicByName(name string, options ...Option) (Heuristic, error) {
	switch strings.ToLower(name) {
	case "levelsum", "level-sum":
		return LevelSumHeuristic(options...), nil
	case "maxlevel", "max-level":
		return MaxLevelHeuristic(options...), nil
	case "setlevel", "set-level":
		return SetLevelHeuristic(options...), nil
	case "unmet", "unmet-goals":
		return UnmetGoals, nil
	case "zero", "none":
		return Zero, nil
	}
	return nil, fmt.Errorf("unknown heuristic %q", name)
}

// HeuristicCache memoizes heuristic values by state. A cache must only be
// shared between heuristics of the same problem.
type HeuristicCache struct {
	values *lru.Cache[string, int]
}

func NewHeuristicCache(size int) (*HeuristicCache, error) {
	values, err := lru.New[string, int](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create heuristic cache: %w", err)
	}
	return &HeuristicCache{values: values}, nil
}

// Wrap returns h backed by the cache. name separates entries of different
// heuristics.
func (c *HeuristicCache) Wrap(name string, h Heuristic) Heuristic {
	return func(problem Problem, state []bool) int {
		key := name + ":" + stateKey(state)
		if value, ok := c.values.Get(key); ok {
			return value
		}
		value := h(problem, state)
		c.values.Add(key, value)
		return value
	}
}

func (c *HeuristicCache) Len() int {
	return c.values.Len()
}

func stateKey(state []bool) string {
	var b strings.Builder
	b.Grow(len(state))
	for _, v := range state {
		if v {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
