package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"aisearch/experiments/metrics"
	"aisearch/game"
	"aisearch/searcher/agent"

	"github.com/rs/zerolog/log"
)

// Run plays a game from state until it is over or the move limit is reached.
// The agent at index first plays the player to move in state. The winner of
// the returned metric is an agent index, -1 for a draw.
func (m *Match) Run(ctx context.Context, state game.State, first int) (metrics.GameMetric, []metrics.MoveMetric, error) {
	if first != 0 && first != 1 {
		panic(fmt.Sprintf("invalid starting agent %d", first))
	}
	// Agent index of player p is p ^ flip
	flip := state.Player() ^ first

	gameMetric := metrics.GameMetric{
		StartingPlayer: first,
		Winner:         -1,
		StartTime:      time.Now(),
	}
	moveMetrics := []metrics.MoveMetric{}

	log.Debug().Msgf("agent %d is starting", first)

	for step := 1; !over(state) && step <= m.maxMoves; step++ {
		if err := ctx.Err(); err != nil {
			return gameMetric, moveMetrics, err
		}

		player := state.Player()
		action, metric, fallback := m.decide(ctx, m.agents[player^flip], state)
		if fallback {
			gameMetric.Fallbacks++
		}
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       player ^ flip,
			SearchMetric: metric,
		})

		state = state.Result(action)
		gameMetric.TotalMoves++
		m.observe(Update{
			Step:     step,
			Player:   player,
			Action:   action,
			State:    state,
			Fallback: fallback,
		})
	}

	if over(state) {
		mover := state.Player()
		switch utility := state.Utility(mover); {
		case utility > 0:
			gameMetric.Winner = mover ^ flip
		case utility < 0:
			gameMetric.Winner = game.Opponent(mover) ^ flip
		}
	} else {
		log.Debug().Msgf("stopped after %d moves without a winner", gameMetric.TotalMoves)
	}

	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	return gameMetric, moveMetrics, nil
}

// decide asks a for a move within the move timeout. When a has no legal
// decision by then the first legal action is played instead.
func (m *Match) decide(ctx context.Context, a agent.Agent, state game.State) (game.Action, metrics.SearchMetric, bool) {
	moveCtx, cancel := ctx, context.CancelFunc(func() {})
	if m.moveTimeout > 0 {
		moveCtx, cancel = context.WithTimeout(ctx, m.moveTimeout)
	}
	defer cancel()

	decisions := agent.NewQueue()
	metric, err := a.Decide(moveCtx, state, untilDone{ctx: moveCtx, queue: decisions})
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Warn().Err(err).Msg("agent failed to decide")
	}

	legal := state.Actions()
	action, ok := decisions.Last()
	if ok && slices.Contains(legal, action) {
		return action, metric, false
	}
	if ok {
		log.Warn().Msgf("agent chose illegal action %v", action)
	} else {
		log.Warn().Msg("agent made no decision in time")
	}
	return legal[0], metric, true
}

// untilDone drops decisions put after ctx is done, so the last decision made
// before the move deadline is played.
type untilDone struct {
	ctx   context.Context
	queue *agent.Queue
}

func (d untilDone) Put(action game.Action) {
	if d.ctx.Err() != nil {
		log.Debug().Msgf("dropped late decision %v", action)
		return
	}
	d.queue.Put(action)
}

// over treats a state without legal actions as terminal.
func over(state game.State) bool {
	return state.Terminal() || len(state.Actions()) == 0
}
