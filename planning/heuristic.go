package planning

// Unreachable is returned by SetLevel when the graph levels off before the
// goals can hold together.
const Unreachable = -1

// LevelSum sums the level at which each goal literal first appears. Goals the
// leveled-off graph never reaches contribute nothing.
func (pg *PlanningGraph) LevelSum() int {
	sum := 0
	pg.firstLevels(func(_ Literal, level int) {
		sum += level
	})
	return sum
}

// MaxLevel returns the largest first-appearance level over the goal literals
// the graph reaches.
func (pg *PlanningGraph) MaxLevel() int {
	maxLevel := 0
	pg.firstLevels(func(_ Literal, level int) {
		maxLevel = max(maxLevel, level)
	})
	return maxLevel
}

// SetLevel returns the first level at which every goal literal is present and
// no two goal literals are mutex, or Unreachable.
func (pg *PlanningGraph) SetLevel() int {
	for level := 0; ; level++ {
		layer, ok := pg.literalLayerAt(level)
		if !ok {
			return Unreachable
		}
		if pg.goalsHoldTogether(layer) {
			return level
		}
	}
}

// FirstLevels maps each goal literal to the level where it first appears.
// Goals never reached are absent.
func (pg *PlanningGraph) FirstLevels() map[Literal]int {
	levels := make(map[Literal]int, len(pg.goal))
	pg.firstLevels(func(goal Literal, level int) {
		levels[goal] = level
	})
	return levels
}

func (pg *PlanningGraph) firstLevels(found func(goal Literal, level int)) {
	reached := make(map[Literal]struct{}, len(pg.goal))
	for level := 0; len(reached) < len(pg.goal); level++ {
		layer, ok := pg.literalLayerAt(level)
		if !ok {
			return
		}
		for _, goal := range pg.goal {
			if _, ok := reached[goal]; ok || !layer.Contains(goal) {
				continue
			}
			reached[goal] = struct{}{}
			found(goal, level)
		}
	}
}

func (pg *PlanningGraph) goalsHoldTogether(layer *LiteralLayer) bool {
	for _, goal := range pg.goal {
		if !layer.Contains(goal) {
			return false
		}
	}
	for i, a := range pg.goal {
		for _, b := range pg.goal[i+1:] {
			if layer.IsMutex(a, b) {
				return false
			}
		}
	}
	return true
}
