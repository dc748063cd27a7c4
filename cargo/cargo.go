// Package cargo builds ground air cargo transport problems.
package cargo

import (
	"fmt"

	"aisearch/planning"
)

// Spec describes an air cargo instance: where every cargo and plane starts,
// and where every cargo must end up.
type Spec struct {
	Cargos   []string
	Planes   []string
	Airports []string
	CargoAt  map[string]string
	PlaneAt  map[string]string
	Goal     map[string]string
}

type Problem struct {
	symbols  *planning.Symbols
	stateMap []planning.Literal
	initial  []bool
	goal     []planning.Literal
	actions  []planning.Action
}

// New grounds every Load, Unload and Fly action of the instance.
func New(spec Spec) (*Problem, error) {
	p := &Problem{symbols: planning.NewSymbols()}
	at := func(thing, airport string) planning.Literal {
		return p.fluent(fmt.Sprintf("At(%s, %s)", thing, airport))
	}
	in := func(c, plane string) planning.Literal {
		return p.fluent(fmt.Sprintf("In(%s, %s)", c, plane))
	}

	// Intern every fluent up front so the state map follows symbol order
	for _, c := range spec.Cargos {
		for _, a := range spec.Airports {
			at(c, a)
		}
		for _, plane := range spec.Planes {
			in(c, plane)
		}
	}
	for _, plane := range spec.Planes {
		for _, a := range spec.Airports {
			at(plane, a)
		}
	}

	p.initial = make([]bool, len(p.stateMap))
	for c, a := range spec.CargoAt {
		if err := p.set(spec, c, a); err != nil {
			return nil, err
		}
		p.initial[at(c, a).Fluent()] = true
	}
	for plane, a := range spec.PlaneAt {
		if err := p.set(spec, plane, a); err != nil {
			return nil, err
		}
		p.initial[at(plane, a).Fluent()] = true
	}
	for _, c := range spec.Cargos {
		a, ok := spec.Goal[c]
		if !ok {
			continue
		}
		if err := p.set(spec, c, a); err != nil {
			return nil, err
		}
		p.goal = append(p.goal, at(c, a))
	}

	for _, c := range spec.Cargos {
		for _, plane := range spec.Planes {
			for _, a := range spec.Airports {
				p.actions = append(p.actions,
					planning.NewAction(
						fmt.Sprintf("Load(%s, %s, %s)", c, plane, a),
						[]planning.Literal{at(c, a), at(plane, a)},
						[]planning.Literal{in(c, plane), at(c, a).Negate()},
					),
					planning.NewAction(
						fmt.Sprintf("Unload(%s, %s, %s)", c, plane, a),
						[]planning.Literal{in(c, plane), at(plane, a)},
						[]planning.Literal{at(c, a), in(c, plane).Negate()},
					),
				)
			}
		}
	}
	for _, plane := range spec.Planes {
		for _, from := range spec.Airports {
			for _, to := range spec.Airports {
				if from == to {
					continue
				}
				p.actions = append(p.actions, planning.NewAction(
					fmt.Sprintf("Fly(%s, %s, %s)", plane, from, to),
					[]planning.Literal{at(plane, from)},
					[]planning.Literal{at(plane, to), at(plane, from).Negate()},
				))
			}
		}
	}
	return p, nil
}

func (p *Problem) fluent(name string) planning.Literal {
	l := p.symbols.Literal(planning.Fluent(name))
	if l.Fluent() == len(p.stateMap) {
		p.stateMap = append(p.stateMap, l)
	}
	return l
}

func (p *Problem) set(spec Spec, thing, airport string) error {
	if !known(spec.Airports, airport) {
		return fmt.Errorf("unknown airport %q for %s", airport, thing)
	}
	if !known(spec.Cargos, thing) && !known(spec.Planes, thing) {
		return fmt.Errorf("unknown cargo or plane %q", thing)
	}
	return nil
}

func known(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func (p *Problem) Symbols() *planning.Symbols   { return p.symbols }
func (p *Problem) StateMap() []planning.Literal { return p.stateMap }
func (p *Problem) Goal() []planning.Literal     { return p.goal }
func (p *Problem) Actions() []planning.Action   { return p.actions }

// Initial returns a copy of the initial truth assignment.
func (p *Problem) Initial() []bool {
	return append([]bool(nil), p.initial...)
}

// Problem1 is two cargos, two planes and two airports.
func Problem1() *Problem {
	return mustNew(Spec{
		Cargos:   []string{"C1", "C2"},
		Planes:   []string{"P1", "P2"},
		Airports: []string{"JFK", "SFO"},
		CargoAt:  map[string]string{"C1": "SFO", "C2": "JFK"},
		PlaneAt:  map[string]string{"P1": "SFO", "P2": "JFK"},
		Goal:     map[string]string{"C1": "JFK", "C2": "SFO"},
	})
}

// Problem2 is three cargos, three planes and three airports.
func Problem2() *Problem {
	return mustNew(Spec{
		Cargos:   []string{"C1", "C2", "C3"},
		Planes:   []string{"P1", "P2", "P3"},
		Airports: []string{"JFK", "SFO", "ATL"},
		CargoAt:  map[string]string{"C1": "SFO", "C2": "JFK", "C3": "ATL"},
		PlaneAt:  map[string]string{"P1": "SFO", "P2": "JFK", "P3": "ATL"},
		Goal:     map[string]string{"C1": "JFK", "C2": "SFO", "C3": "SFO"},
	})
}

// ByName returns one of the bundled problems.
func ByName(name string) (*Problem, error) {
	switch name {
	case "1", "p1", "problem1":
		return Problem1(), nil
	case "2", "p2", "problem2":
		return Problem2(), nil
	}
	return nil, fmt.Errorf("unknown air cargo problem %q", name)
}

func mustNew(spec Spec) *Problem {
	p, err := New(spec)
	if err != nil {
		panic(err)
	}
	return p
}
