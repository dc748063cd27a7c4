package searcher

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"aisearch/experiments/metrics"
	"aisearch/game"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Stat accumulates the rewards of one action, from the perspective of the
// player taking it.
type Stat struct {
	N int     `json:"n"`
	Q float64 `json:"q"`
}

// Entry holds the statistics of every action tried from one position, keyed
// by the action's String form.
type Entry struct {
	Key     game.Key         `json:"key"`
	Actions map[string]*Stat `json:"actions"`
}

func NewEntry(key game.Key) *Entry {
	return &Entry{Key: key, Actions: map[string]*Stat{}}
}

// Visits is the total number of visits over all actions.
func (e *Entry) Visits() int {
	visits := 0
	for _, stat := range e.Actions {
		visits += stat.N
	}
	return visits
}

func (e *Entry) update(action string, reward float64) {
	stat, ok := e.Actions[action]
	if !ok {
		stat = &Stat{}
		e.Actions[action] = stat
	}
	stat.N++
	stat.Q += reward
}

func (e *Entry) clone() *Entry {
	c := NewEntry(e.Key)
	for action, stat := range e.Actions {
		s := *stat
		c.Actions[action] = &s
	}
	return c
}

// Book memoizes action statistics by position across searches and games.
type Book struct {
	sync.RWMutex
	entries map[game.Key]*Entry
	changed map[game.Key]struct{}
}

func NewBook() *Book {
	return &Book{
		entries: map[game.Key]*Entry{},
		changed: map[game.Key]struct{}{},
	}
}

// Put replaces the entry for its key without marking it as changed.
func (b *Book) Put(entry *Entry) {
	b.Lock()
	defer b.Unlock()
	b.entries[entry.Key] = entry
}

// Entry returns a copy of the entry stored for key.
func (b *Book) Entry(key game.Key) (*Entry, bool) {
	b.RLock()
	defer b.RUnlock()
	entry, ok := b.entries[key]
	if !ok {
		return nil, false
	}
	return entry.clone(), true
}

func (b *Book) Len() int {
	b.RLock()
	defer b.RUnlock()
	return len(b.entries)
}

// Update adds reward to action's statistics at key, creating the entry if
// needed.
func (b *Book) Update(key game.Key, action string, reward float64) {
	b.Lock()
	defer b.Unlock()
	entry, ok := b.entries[key]
	if !ok {
		entry = NewEntry(key)
		b.entries[key] = entry
	}
	entry.update(action, reward)
	b.changed[key] = struct{}{}
}

// Changed returns copies of the entries updated since the last call.
func (b *Book) Changed() []*Entry {
	b.Lock()
	defer b.Unlock()
	entries := make([]*Entry, 0, len(b.changed))
	for key := range b.changed {
		entries = append(entries, b.entries[key].clone())
	}
	b.changed = map[game.Key]struct{}{}
	return entries
}

// Best returns the action with the highest accumulated reward at key, the
// lexically smallest one on ties.
func (b *Book) Best(key game.Key) (string, bool) {
	b.RLock()
	defer b.RUnlock()
	entry, ok := b.entries[key]
	if !ok || len(entry.Actions) == 0 {
		return "", false
	}
	actions := sortedActions(entry)
	best := actions[0]
	for _, action := range actions[1:] {
		if entry.Actions[action].Q > entry.Actions[best].Q {
			best = action
		}
	}
	return best, true
}

func sortedActions(entry *Entry) []string {
	actions := make([]string, 0, len(entry.Actions))
	for action := range entry.Actions {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	return actions
}

// BookMCTS runs UCT over a Book instead of a linked tree, so statistics
// survive between decisions.
type BookMCTS struct {
	book        *Book
	iterations  int
	exploration float64
	rng         *rand.Rand
	metrics     metrics.Collector
}

// NewBookMCTS accepts the MCTS options; cutoff and evaluation are ignored.
func NewBookMCTS(book *Book, options ...Option) *BookMCTS {
	m := NewMCTS(options...)
	if book == nil {
		book = NewBook()
	}
	return &BookMCTS{
		book:        book,
		iterations:  m.iterations,
		exploration: m.exploration,
		rng:         m.rng,
		metrics:     m.metrics,
	}
}

func (m *BookMCTS) Book() *Book {
	return m.book
}

// FindNextMove runs the book search from state and returns the action with
// the best mean reward. state and every state reachable from it must
// implement game.Keyed.
func (m *BookMCTS) FindNextMove(ctx context.Context, state game.State) (game.Action, metrics.SearchMetric, error) {
	m.metrics.Start("book", m.iterations)
	if isTerminal(state) {
		return nil, m.metrics.Complete(), ErrNoActions
	}

	for i := 0; i < m.iterations; i++ {
		if ctx.Err() != nil {
			m.metrics.SetCancelled(true)
			break
		}
		m.treePolicy(state)
		m.metrics.AddEpisode()
	}
	metric := m.metrics.Complete()

	action, ok := m.bestAction(state, 0)
	if !ok {
		return nil, metric, ErrNoDecision
	}
	return action, metric, nil
}

// treePolicy walks the book from state, expands one untried action, rolls
// out and backs up. It returns the reward for the player who moved into
// state.
func (m *BookMCTS) treePolicy(state game.State) float64 {
	if isTerminal(state) {
		return -outcome(state.Utility(state.Player()))
	}

	key := keyOf(state)
	var untried []game.Action
	entry, _ := m.book.Entry(key)
	for _, action := range state.Actions() {
		if entry == nil || entry.Actions[action.String()] == nil {
			untried = append(untried, action)
		}
	}

	var action game.Action
	var reward float64
	if len(untried) > 0 {
		action = untried[m.rng.Intn(len(untried))]
		m.metrics.AddNode()
		reward = m.rollout(state.Result(action))
	} else {
		action, _ = m.bestAction(state, m.exploration)
		reward = m.treePolicy(state.Result(action))
	}

	m.book.Update(key, action.String(), reward)
	return -reward
}

func (m *BookMCTS) rollout(state game.State) float64 {
	player := state.Player()
	for !isTerminal(state) {
		actions := state.Actions()
		state = state.Result(actions[m.rng.Intn(len(actions))])
	}
	m.metrics.AddFullPlayout()
	return -outcome(state.Utility(player))
}

// bestAction scores the legal actions of state recorded in the book.
func (m *BookMCTS) bestAction(state game.State, exploration float64) (game.Action, bool) {
	entry, ok := m.book.Entry(keyOf(state))
	if !ok {
		return nil, false
	}
	visits := 0
	for _, action := range state.Actions() {
		if stat, ok := entry.Actions[action.String()]; ok {
			visits += stat.N
		}
	}
	if visits == 0 {
		return nil, false
	}

	policy := newUCT(cSquared(exploration), float64(visits))
	var best game.Action
	bestScore := 0.0
	for _, action := range state.Actions() {
		stat, ok := entry.Actions[action.String()]
		if !ok {
			continue
		}
		if score := policy.evaluate(stat.Q, float64(stat.N)); best == nil || score > bestScore {
			best, bestScore = action, score
		}
	}
	return best, true
}

// BuildBook plays one random line of at most depth moves from state, scores
// its end with a random rollout and records the negamax rewards along the
// line. It returns the reward for the player who moved into state.
func (m *BookMCTS) BuildBook(state game.State, depth int) float64 {
	if depth <= 0 || isTerminal(state) {
		return m.rollout(state)
	}
	actions := state.Actions()
	action := actions[m.rng.Intn(len(actions))]
	reward := m.BuildBook(state.Result(action), depth-1)
	m.book.Update(keyOf(state), action.String(), reward)
	return -reward
}

// Suggest returns the book's highest rewarded legal action for state.
func (m *BookMCTS) Suggest(state game.State) (game.Action, bool) {
	best, ok := m.book.Best(keyOf(state))
	if !ok {
		return nil, false
	}
	for _, action := range state.Actions() {
		if action.String() == best {
			return action, true
		}
	}
	log.Warn().Msgf("book action %s is not legal in %v", best, keyOf(state))
	return nil, false
}

func isTerminal(state game.State) bool {
	return state.Terminal() || len(state.Actions()) == 0
}

func keyOf(state game.State) game.Key {
	keyed, ok := state.(game.Keyed)
	if !ok {
		panic(fmt.Sprintf("state %T cannot be used with a book", state))
	}
	return keyed.Key()
}
