package planning

type literalPair [2]Literal

func newLiteralPair(a, b Literal) literalPair {
	if b < a {
		a, b = b, a
	}
	return literalPair{a, b}
}

type actionPair [2]int

func newActionPair(a, b int) actionPair {
	if b < a {
		a, b = b, a
	}
	return actionPair{a, b}
}

// LiteralLayer holds the literals reachable at one level of the graph.
// Parents index the producing actions in the prior action layer and children
// index the consuming actions in the next one.
type LiteralLayer struct {
	level    int
	literals []Literal
	present  map[Literal]struct{}
	parents  map[Literal][]int
	children map[Literal][]int
	mutexes  map[literalPair]struct{}
}

func newLiteralLayer(level int) *LiteralLayer {
	return &LiteralLayer{
		level:    level,
		present:  make(map[Literal]struct{}),
		parents:  make(map[Literal][]int),
		children: make(map[Literal][]int),
		mutexes:  make(map[literalPair]struct{}),
	}
}

// carryLiterals starts a new literal layer holding every literal of prev
// together with its producers.
func carryLiterals(prev *LiteralLayer) *LiteralLayer {
	layer := newLiteralLayer(prev.level + 1)
	for _, l := range prev.literals {
		layer.add(l)
		layer.parents[l] = append([]int(nil), prev.parents[l]...)
	}
	return layer
}

func (l *LiteralLayer) add(literal Literal) {
	if _, ok := l.present[literal]; ok {
		return
	}
	l.present[literal] = struct{}{}
	l.literals = append(l.literals, literal)
}

func (l *LiteralLayer) addParent(literal Literal, action int) {
	l.add(literal)
	if !containsIndex(l.parents[literal], action) {
		l.parents[literal] = append(l.parents[literal], action)
	}
}

func (l *LiteralLayer) addChild(literal Literal, action int) {
	if !containsIndex(l.children[literal], action) {
		l.children[literal] = append(l.children[literal], action)
	}
}

func (l *LiteralLayer) Level() int {
	return l.level
}

func (l *LiteralLayer) Literals() []Literal {
	return append([]Literal(nil), l.literals...)
}

func (l *LiteralLayer) Len() int {
	return len(l.literals)
}

func (l *LiteralLayer) Contains(literal Literal) bool {
	_, ok := l.present[literal]
	return ok
}

// Parents returns the arena indices of the actions producing literal.
func (l *LiteralLayer) Parents(literal Literal) []int {
	return l.parents[literal]
}

// Children returns the arena indices of the actions consuming literal.
func (l *LiteralLayer) Children(literal Literal) []int {
	return l.children[literal]
}

func (l *LiteralLayer) IsMutex(a, b Literal) bool {
	_, ok := l.mutexes[newLiteralPair(a, b)]
	return ok
}

func (l *LiteralLayer) MutexCount() int {
	return len(l.mutexes)
}

func (l *LiteralLayer) setMutex(a, b Literal) {
	l.mutexes[newLiteralPair(a, b)] = struct{}{}
}

// equal compares literal sets and mutex relations.
func (l *LiteralLayer) equal(other *LiteralLayer) bool {
	if len(l.literals) != len(other.literals) || len(l.mutexes) != len(other.mutexes) {
		return false
	}
	for literal := range l.present {
		if !other.Contains(literal) {
			return false
		}
	}
	for pair := range l.mutexes {
		if _, ok := other.mutexes[pair]; !ok {
			return false
		}
	}
	return true
}

// ActionLayer holds the actions applicable at one level of the graph, by
// index into the graph's action arena.
type ActionLayer struct {
	level   int
	actions []int
	present map[int]struct{}
	mutexes map[actionPair]struct{}
}

func newActionLayer(level int) *ActionLayer {
	return &ActionLayer{
		level:   level,
		present: make(map[int]struct{}),
		mutexes: make(map[actionPair]struct{}),
	}
}

func carryActions(prev *ActionLayer, level int) *ActionLayer {
	layer := newActionLayer(level)
	if prev == nil {
		return layer
	}
	for _, a := range prev.actions {
		layer.add(a)
	}
	return layer
}

func (l *ActionLayer) add(action int) {
	if _, ok := l.present[action]; ok {
		return
	}
	l.present[action] = struct{}{}
	l.actions = append(l.actions, action)
}

func (l *ActionLayer) Level() int {
	return l.level
}

// Actions returns the arena indices of the actions in the layer.
func (l *ActionLayer) Actions() []int {
	return append([]int(nil), l.actions...)
}

func (l *ActionLayer) Len() int {
	return len(l.actions)
}

func (l *ActionLayer) Contains(action int) bool {
	if l == nil {
		return false
	}
	_, ok := l.present[action]
	return ok
}

func (l *ActionLayer) IsMutex(a, b int) bool {
	_, ok := l.mutexes[newActionPair(a, b)]
	return ok
}

func (l *ActionLayer) MutexCount() int {
	return len(l.mutexes)
}

func (l *ActionLayer) setMutex(a, b int) {
	l.mutexes[newActionPair(a, b)] = struct{}{}
}

func containsIndex(indices []int, i int) bool {
	for _, x := range indices {
		if x == i {
			return true
		}
	}
	return false
}
