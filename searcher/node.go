package searcher

import (
	"aisearch/game"

	"golang.org/x/exp/rand"
)

// Node is a search tree node. Its rewards are from the perspective of the
// player who took action to reach it.
type Node struct {
	state    game.State
	action   game.Action
	actions  []game.Action
	untried  []game.Action
	parent   *Node
	children []*Node
	visits   int
	rewards  float64
}

func newNode(state game.State, action game.Action, parent *Node, rng *rand.Rand) *Node {
	var actions []game.Action
	if !state.Terminal() {
		actions = state.Actions()
	}
	untried := make([]game.Action, len(actions))
	copy(untried, actions)
	rng.Shuffle(len(untried), func(i, j int) {
		untried[i], untried[j] = untried[j], untried[i]
	})

	return &Node{
		state:    state,
		action:   action,
		actions:  actions,
		untried:  untried,
		parent:   parent,
		children: make([]*Node, 0, len(actions)),
	}
}

func (n *Node) State() game.State      { return n.state }
func (n *Node) Action() game.Action    { return n.action }
func (n *Node) Actions() []game.Action { return n.actions }
func (n *Node) Parent() *Node          { return n.parent }
func (n *Node) Children() []*Node      { return n.children }
func (n *Node) Visits() int            { return n.visits }
func (n *Node) Rewards() float64       { return n.rewards }

// Terminal also covers states that report no legal actions.
func (n *Node) Terminal() bool {
	return len(n.actions) == 0
}

func (n *Node) FullyExpanded() bool {
	return len(n.untried) == 0
}

// expand pops the next untried action and links its child into the tree.
func (n *Node) expand(rng *rand.Rand) *Node {
	last := len(n.untried) - 1
	action := n.untried[last]
	n.untried = n.untried[:last]

	child := newNode(n.state.Result(action), action, n, rng)
	n.children = append(n.children, child)
	return child
}

// bestChild returns the child with the highest UCT score, the first one on
// ties. With exploration 0 it is the child with the best mean reward.
func (n *Node) bestChild(exploration float64) *Node {
	if len(n.children) == 0 {
		panic("node has no children")
	}

	policy := newUCT(cSquared(exploration), float64(n.visits))
	best := n.children[0]
	bestScore := policy.evaluate(best.rewards, float64(best.visits))
	for _, child := range n.children[1:] {
		if score := policy.evaluate(child.rewards, float64(child.visits)); score > bestScore {
			best, bestScore = child, score
		}
	}
	return best
}

// Policy returns the visit count of every expanded root action.
func (n *Node) Policy() map[game.Action]int {
	policy := make(map[game.Action]int, len(n.children))
	for _, child := range n.children {
		policy[child.action] = child.visits
	}
	return policy
}
