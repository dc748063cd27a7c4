package agent

import (
	"context"
	"sync"

	"aisearch/experiments/metrics"
	"aisearch/game"
)

type Agent interface {
	// Decide searches from state and puts every action it settles on into
	// decisions, the last one being its final choice. It returns once the
	// search is over or ctx is done.
	Decide(ctx context.Context, state game.State, decisions Decisions) (metrics.SearchMetric, error)
}

type Decisions interface {
	Put(action game.Action)
}

// Queue keeps the latest decision of an agent.
type Queue struct {
	mu     sync.Mutex
	action game.Action
	count  int
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Put(action game.Action) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.action = action
	q.count++
}

// Last returns the most recent decision, if any.
func (q *Queue) Last() (game.Action, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.action, q.count > 0
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}
