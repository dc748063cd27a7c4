package planning

import (
	"container/heap"
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

var ErrNoPlan = errors.New("no plan found")

type Strategy int

const (
	// AStar orders the frontier by path cost plus heuristic.
	AStar Strategy = iota
	// GreedyBestFirst orders the frontier by heuristic only.
	GreedyBestFirst
)

type Plan struct {
	Actions    []Action
	Expansions int
}

func (p Plan) Len() int {
	return len(p.Actions)
}

type searchNode struct {
	state  []bool
	cost   int
	score  int
	order  int
	action int
	parent *searchNode
}

type frontier []*searchNode

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].score != f[j].score {
		return f[i].score < f[j].score
	}
	return f[i].order < f[j].order
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)   { *f = append(*f, x.(*searchNode)) }
func (f *frontier) Pop() any {
	old := *f
	n := old[len(old)-1]
	*f = old[:len(old)-1]
	return n
}

// Search runs a best-first forward search from initial to a state satisfying
// every goal literal. It returns ErrNoPlan when the reachable space is
// exhausted and the context error when cancelled.
func Search(ctx context.Context, problem Problem, initial []bool, h Heuristic, strategy Strategy) (Plan, error) {
	actions := problem.Actions()
	goal := problem.Goal()
	order := 0

	score := func(state []bool, cost int) (int, bool) {
		estimate := h(problem, state)
		if estimate < 0 {
			return 0, false
		}
		if strategy == GreedyBestFirst {
			return estimate, true
		}
		return cost + estimate, true
	}

	start, ok := score(initial, 0)
	if !ok {
		return Plan{}, ErrNoPlan
	}
	open := &frontier{{state: initial, score: start, action: -1}}
	best := map[string]int{stateKey(initial): 0}
	expansions := 0

	for open.Len() > 0 {
		select {
		case <-ctx.Done():
			return Plan{Expansions: expansions}, ctx.Err()
		default:
		}

		node := heap.Pop(open).(*searchNode)
		if cost, ok := best[stateKey(node.state)]; ok && cost < node.cost {
			continue
		}
		if satisfies(node.state, goal) {
			plan := Plan{Actions: extractPlan(node, actions), Expansions: expansions}
			log.Debug().Int("length", plan.Len()).Int("expansions", expansions).Msg("found plan")
			return plan, nil
		}

		expansions++
		for i, action := range actions {
			if !action.Applicable(node.state) {
				continue
			}
			next := action.Apply(node.state)
			cost := node.cost + 1
			key := stateKey(next)
			if known, ok := best[key]; ok && known <= cost {
				continue
			}
			s, ok := score(next, cost)
			if !ok {
				continue
			}
			best[key] = cost
			order++
			heap.Push(open, &searchNode{state: next, cost: cost, score: s, order: order, action: i, parent: node})
		}
	}
	return Plan{Expansions: expansions}, ErrNoPlan
}

func satisfies(state []bool, goal []Literal) bool {
	for _, g := range goal {
		if !g.Holds(state) {
			return false
		}
	}
	return true
}

func extractPlan(node *searchNode, actions []Action) []Action {
	var plan []Action
	for ; node.parent != nil; node = node.parent {
		plan = append(plan, actions[node.action])
	}
	for i, j := 0, len(plan)-1; i < j; i, j = i+1, j-1 {
		plan[i], plan[j] = plan[j], plan[i]
	}
	return plan
}
