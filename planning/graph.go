package planning

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

type Option func(pg *PlanningGraph)

// WithSerialize makes every pair of ground actions in a layer mutex. It should
// be on when the graph estimates a heuristic and off for regression search.
func WithSerialize(serialize bool) Option {
	return func(pg *PlanningGraph) {
		pg.opts.serialize = serialize
	}
}

func WithIgnoreMutexes(ignore bool) Option {
	return func(pg *PlanningGraph) {
		pg.opts.ignoreMutexes = ignore
	}
}

// PlanningGraph alternates literal and action layers, starting from the
// literal layer of one state, until no further level adds anything.
type PlanningGraph struct {
	symbols       *Symbols
	goal          []Literal
	arena         []Action
	literalLayers []*LiteralLayer
	actionLayers  []*ActionLayer
	opts          mutexOptions
	leveled       bool
}

// NewPlanningGraph builds level 0 from a truth assignment aligned with the
// problem's state map.
func NewPlanningGraph(problem Problem, state []bool, options ...Option) *PlanningGraph {
	stateMap := problem.StateMap()
	if len(state) != len(stateMap) {
		panic(fmt.Sprintf("state has %d values for %d fluents", len(state), len(stateMap)))
	}

	pg := &PlanningGraph{
		symbols: problem.Symbols(),
		goal:    uniqueLiterals(problem.Goal()),
		opts:    mutexOptions{serialize: true},
	}
	for _, option := range options {
		option(pg)
	}

	// No-ops first so persistence is always found before ground producers
	for _, fluent := range stateMap {
		pg.arena = append(pg.arena, NoOps(pg.symbols, fluent)...)
	}
	pg.arena = append(pg.arena, problem.Actions()...)

	layer := newLiteralLayer(0)
	for i, fluent := range stateMap {
		if state[i] {
			layer.add(fluent)
		} else {
			layer.add(fluent.Negate())
		}
	}
	updateLiteralMutexes(layer, nil, pg.opts)
	pg.literalLayers = []*LiteralLayer{layer}
	return pg
}

// Extend adds one action layer and one literal layer. It does nothing once
// the graph has leveled off.
func (pg *PlanningGraph) Extend() {
	if pg.leveled {
		return
	}

	parentLiterals := pg.literalLayers[len(pg.literalLayers)-1]
	var parentActions *ActionLayer
	if len(pg.actionLayers) > 0 {
		parentActions = pg.actionLayers[len(pg.actionLayers)-1]
	}

	actionLayer := carryActions(parentActions, parentLiterals.level)
	literalLayer := carryLiterals(parentLiterals)

	for i, action := range pg.arena {
		// Carried actions already have their effects in the new literal layer
		if parentActions.Contains(i) || !pg.applicable(action, parentLiterals) {
			continue
		}
		actionLayer.add(i)
		for _, eff := range action.Effects {
			literalLayer.addParent(eff, i)
		}
	}
	for _, i := range actionLayer.actions {
		for _, pre := range pg.arena[i].Preconditions {
			parentLiterals.addChild(pre, i)
		}
	}

	updateActionMutexes(actionLayer, parentLiterals, pg.arena, pg.opts)
	updateLiteralMutexes(literalLayer, actionLayer, pg.opts)

	pg.actionLayers = append(pg.actionLayers, actionLayer)
	pg.literalLayers = append(pg.literalLayers, literalLayer)
	pg.leveled = literalLayer.equal(parentLiterals)

	log.Debug().
		Int("level", literalLayer.level).
		Int("actions", actionLayer.Len()).
		Int("literals", literalLayer.Len()).
		Int("action_mutexes", actionLayer.MutexCount()).
		Int("literal_mutexes", literalLayer.MutexCount()).
		Bool("leveled", pg.leveled).
		Msg("extended planning graph")
}

// Fill extends the graph until it levels off or maxLevels extensions have
// been made. A negative maxLevels never interrupts the loop.
func (pg *PlanningGraph) Fill(maxLevels int) *PlanningGraph {
	for !pg.leveled {
		if maxLevels == 0 {
			break
		}
		pg.Extend()
		maxLevels--
	}
	return pg
}

func (pg *PlanningGraph) applicable(action Action, layer *LiteralLayer) bool {
	for _, pre := range action.Preconditions {
		if !layer.Contains(pre) {
			return false
		}
	}
	return true
}

// literalLayerAt returns the literal layer at level, extending the graph as
// needed. It reports false when the graph leveled off before reaching it.
func (pg *PlanningGraph) literalLayerAt(level int) (*LiteralLayer, bool) {
	for level >= len(pg.literalLayers) {
		if pg.leveled {
			return nil, false
		}
		pg.Extend()
	}
	return pg.literalLayers[level], true
}

func (pg *PlanningGraph) Leveled() bool {
	return pg.leveled
}

// Levels returns the number of literal layers built so far.
func (pg *PlanningGraph) Levels() int {
	return len(pg.literalLayers)
}

func (pg *PlanningGraph) LiteralLayer(level int) *LiteralLayer {
	return pg.literalLayers[level]
}

func (pg *PlanningGraph) ActionLayer(level int) *ActionLayer {
	return pg.actionLayers[level]
}

// Action returns the action stored at an arena index.
func (pg *PlanningGraph) Action(i int) Action {
	return pg.arena[i]
}

func (pg *PlanningGraph) Symbols() *Symbols {
	return pg.symbols
}

func uniqueLiterals(literals []Literal) []Literal {
	seen := make(map[Literal]struct{}, len(literals))
	unique := make([]Literal, 0, len(literals))
	for _, l := range literals {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		unique = append(unique, l)
	}
	return unique
}
