package planning

// Kind tags an action as a ground domain action or a synthetic persistence action.
type Kind int

const (
	Ground Kind = iota
	NoOp
)

func (k Kind) String() string {
	if k == NoOp {
		return "noop"
	}
	return "ground"
}

// Action is a STRIPS action over literals. Negative preconditions and delete
// effects are expressed as negated literals.
type Action struct {
	Name          string
	Kind          Kind
	Preconditions []Literal
	Effects       []Literal
}

func NewAction(name string, preconditions, effects []Literal) Action {
	return Action{
		Name:          name,
		Kind:          Ground,
		Preconditions: preconditions,
		Effects:       effects,
	}
}

// NoOps returns the persistence actions for a fluent: one keeping it true
// and one keeping it false.
func NoOps(symbols *Symbols, fluent Literal) []Action {
	pos := fluent &^ 1
	neg := pos.Negate()
	return []Action{
		{Name: "Persist(" + symbols.Name(pos) + ")", Kind: NoOp, Preconditions: []Literal{pos}, Effects: []Literal{pos}},
		{Name: "Persist(" + symbols.Name(neg) + ")", Kind: NoOp, Preconditions: []Literal{neg}, Effects: []Literal{neg}},
	}
}

// Applicable reports whether every precondition holds under the assignment.
func (a Action) Applicable(state []bool) bool {
	for _, pre := range a.Preconditions {
		if !pre.Holds(state) {
			return false
		}
	}
	return true
}

// Apply returns a copy of the assignment with the action's effects applied.
func (a Action) Apply(state []bool) []bool {
	next := make([]bool, len(state))
	copy(next, state)
	for _, eff := range a.Effects {
		next[eff.Fluent()] = !eff.Negated()
	}
	return next
}

func (a Action) String() string {
	return a.Name
}

// Problem is the external definition of a classical planning problem.
type Problem interface {
	Symbols() *Symbols
	// StateMap lists the positive literal of every fluent in assignment order,
	// so StateMap()[i].Fluent() == i.
	StateMap() []Literal
	Goal() []Literal
	Actions() []Action
}
