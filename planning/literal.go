package planning

import (
	"fmt"
	"strings"
)

// Fluent names a proposition whose truth value can change between states.
type Fluent string

// Literal is a fluent or its negation, packed as 2*fluent | negated.
// A literal and its negation differ only in the low bit.
type Literal uint32

func Pos(fluent int) Literal {
	return Literal(fluent << 1)
}

func Neg(fluent int) Literal {
	return Pos(fluent) | 1
}

func (l Literal) Negate() Literal {
	return l ^ 1
}

func (l Literal) Negated() bool {
	return l&1 == 1
}

func (l Literal) Fluent() int {
	return int(l >> 1)
}

// IsNegationOf reports whether l and other are logical opposites.
func (l Literal) IsNegationOf(other Literal) bool {
	return l == other.Negate()
}

// Holds reports whether the literal is true under the assignment.
func (l Literal) Holds(state []bool) bool {
	return state[l.Fluent()] != l.Negated()
}

// Symbols interns fluent names so literals stay small comparable values.
type Symbols struct {
	names []Fluent
	index map[Fluent]int
}

func NewSymbols() *Symbols {
	return &Symbols{index: make(map[Fluent]int)}
}

// Literal returns the positive literal for name, interning it if needed.
func (s *Symbols) Literal(name Fluent) Literal {
	if i, ok := s.index[name]; ok {
		return Pos(i)
	}
	s.index[name] = len(s.names)
	s.names = append(s.names, name)
	return Pos(len(s.names) - 1)
}

// Lookup returns the positive literal for an already interned name.
func (s *Symbols) Lookup(name Fluent) (Literal, bool) {
	i, ok := s.index[name]
	return Pos(i), ok
}

func (s *Symbols) Len() int {
	return len(s.names)
}

func (s *Symbols) Name(l Literal) string {
	if l.Fluent() >= len(s.names) {
		return fmt.Sprintf("?%d", l)
	}
	if l.Negated() {
		return "~" + string(s.names[l.Fluent()])
	}
	return string(s.names[l.Fluent()])
}

func (s *Symbols) Format(literals []Literal) string {
	parts := make([]string, len(literals))
	for i, l := range literals {
		parts[i] = s.Name(l)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func contains(literals []Literal, l Literal) bool {
	for _, x := range literals {
		if x == l {
			return true
		}
	}
	return false
}
