// Package engine plays two agents against each other on one board.
package engine

import (
	"time"

	"aisearch/game"
	"aisearch/searcher/agent"
)

const (
	MaxMoves           = 500
	DefaultMoveTimeout = time.Second
)

// Update describes a move that has been played.
type Update struct {
	Step     int
	Player   int
	Action   game.Action
	State    game.State
	Fallback bool
}

type Option func(*Match)

// WithMoveTimeout bounds each decision, zero leaves decisions unbounded.
func WithMoveTimeout(timeout time.Duration) Option {
	return func(m *Match) {
		m.moveTimeout = timeout
	}
}

func WithMaxMoves(moves int) Option {
	return func(m *Match) {
		m.maxMoves = moves
	}
}

// WithObserver calls observe after every move.
func WithObserver(observe func(Update)) Option {
	return func(m *Match) {
		m.observe = observe
	}
}

type Match struct {
	agents      [2]agent.Agent
	moveTimeout time.Duration
	maxMoves    int
	observe     func(Update)
}

func NewMatch(agent1, agent2 agent.Agent, options ...Option) *Match {
	if agent1 == nil || agent2 == nil {
		panic("match needs two agents")
	}

	m := &Match{
		agents:      [2]agent.Agent{agent1, agent2},
		moveTimeout: DefaultMoveTimeout,
		maxMoves:    MaxMoves,
		observe:     func(Update) {},
	}
	for _, option := range options {
		option(m)
	}
	return m
}
