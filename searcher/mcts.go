package searcher

import (
	"context"
	"time"

	"aisearch/experiments/metrics"
	"aisearch/game"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type Option func(mcts *MCTS)

// MCTS runs UCT with negamax backup. It is not safe for concurrent use.
type MCTS struct {
	iterations  int
	exploration float64
	cutoff      int
	evaluate    game.Evaluate
	rng         *rand.Rand
	metrics     metrics.Collector
}

func WithIterations(iterations int) Option {
	return func(m *MCTS) {
		if iterations > 0 {
			m.iterations = iterations
		}
	}
}

func WithExploration(exploration float64) Option {
	return func(m *MCTS) {
		if exploration >= 0 {
			m.exploration = exploration
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

// WithCutoff stops rollouts after depth moves and scores the position with
// the evaluation function instead of playing it out.
func WithCutoff(depth int) Option {
	return func(m *MCTS) {
		if depth > 0 {
			m.cutoff = depth
		}
	}
}

func WithEvaluationFn(evaluate game.Evaluate) Option {
	return func(m *MCTS) {
		if evaluate != nil {
			m.evaluate = evaluate
		}
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func WithCollector(collector metrics.Collector) Option {
	return func(m *MCTS) {
		if collector != nil {
			m.metrics = collector
		}
	}
}

func NewMCTS(options ...Option) *MCTS {
	m := &MCTS{ // Default values
		iterations:  DefaultIterations,
		exploration: DefaultExploration,
		evaluate:    game.EvaluateLibertyRatio,
		metrics:     metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	return m
}

// Search builds a fresh tree rooted at state. It stops early when ctx is
// done; the tree built so far is still returned.
func (m *MCTS) Search(ctx context.Context, state game.State) (*Node, metrics.SearchMetric) {
	root := newNode(state, nil, nil, m.rng)
	m.metrics.Start("mcts", m.iterations)

	for i := 0; i < m.iterations; i++ {
		if ctx.Err() != nil {
			m.metrics.SetCancelled(true)
			break
		}
		node := m.treePolicy(root)
		reward := m.defaultPolicy(node.state)
		backup(node, reward)
		m.metrics.AddEpisode()
	}

	return root, m.metrics.Complete()
}

// FindNextMove searches from state and returns the root action with the best
// mean reward.
func (m *MCTS) FindNextMove(ctx context.Context, state game.State) (game.Action, metrics.SearchMetric, error) {
	root, metric := m.Search(ctx, state)
	if root.Terminal() {
		return nil, metric, ErrNoActions
	}
	if len(root.children) == 0 {
		return nil, metric, ErrNoDecision
	}

	best := root.bestChild(0)
	log.Debug().
		Str("action", best.action.String()).
		Int("visits", best.visits).
		Float64("rewards", best.rewards).
		Int("episodes", metric.Episodes).
		Msg("mcts decision")
	return best.action, metric, nil
}

func (m *MCTS) treePolicy(node *Node) *Node {
	for !node.Terminal() {
		if !node.FullyExpanded() {
			m.metrics.AddNode()
			return node.expand(m.rng)
		}
		node = node.bestChild(m.exploration)
	}
	return node
}

// defaultPolicy plays random moves from state and returns the reward for the
// player who moved into state.
func (m *MCTS) defaultPolicy(state game.State) float64 {
	player := state.Player()
	mover := game.Opponent(player)
	for depth := 0; !state.Terminal(); depth++ {
		actions := state.Actions()
		if len(actions) == 0 {
			break
		}
		if m.cutoff > 0 && depth >= m.cutoff {
			return clampReward(m.evaluate(state, mover))
		}
		state = state.Result(actions[m.rng.Intn(len(actions))])
	}
	m.metrics.AddFullPlayout()
	return -outcome(state.Utility(player))
}

// clampReward keeps cutoff scores on the scale of playout outcomes.
func clampReward(reward float64) float64 {
	return max(Loss, min(Win, reward))
}

// backup adds reward to node and every ancestor, negating it at each level.
func backup(node *Node, reward float64) {
	for ; node != nil; node = node.parent {
		node.visits++
		node.rewards += reward
		reward = -reward
	}
}
