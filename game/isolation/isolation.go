// Package isolation implements knight's isolation: each player places a piece
// on any open cell, then moves it like a chess knight. Every visited cell is
// blocked for the rest of the game and the player left without a move loses.
package isolation

import (
	"fmt"
	"math/bits"
	"strconv"

	"aisearch/game"
)

const (
	DefaultWidth  = 11
	DefaultHeight = 9
	MaxCells      = 128
)

var knightMoves = [8][2]int{
	{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2},
	{1, -2}, {1, 2}, {2, -1}, {2, 1},
}

// Action is the cell a piece is placed on or moved to.
type Action int

func (a Action) String() string {
	return strconv.Itoa(int(a))
}

// ParseAction reads an action back from its String form.
func ParseAction(text string) (game.Action, error) {
	cell, err := strconv.Atoi(text)
	if err != nil {
		return nil, fmt.Errorf("invalid isolation action %q: %w", text, err)
	}
	if cell < 0 || cell >= MaxCells {
		return nil, fmt.Errorf("isolation action %d out of range", cell)
	}
	return Action(cell), nil
}

// State is an immutable board position.
type State struct {
	width   int
	height  int
	blocked [2]uint64
	locs    [2]int
	ply     int
}

var (
	_ game.Keyed      = (*State)(nil)
	_ game.Positional = (*State)(nil)
)

func New(width, height int) (*State, error) {
	if width < 3 || height < 3 {
		return nil, fmt.Errorf("board %dx%d is too small", width, height)
	}
	if width*height > MaxCells {
		return nil, fmt.Errorf("board %dx%d exceeds %d cells", width, height, MaxCells)
	}
	return &State{width: width, height: height, locs: [2]int{-1, -1}}, nil
}

// NewDefault returns an empty board of the standard 11x9 size.
func NewDefault() *State {
	s, _ := New(DefaultWidth, DefaultHeight)
	return s
}

func (s *State) Width() int  { return s.width }
func (s *State) Height() int { return s.height }

// Cell returns the index of column x and row y.
func (s *State) Cell(x, y int) int {
	return y*s.width + x
}

// Coords is the inverse of Cell.
func (s *State) Coords(cell int) (x, y int) {
	return cell % s.width, cell / s.width
}

func (s *State) Blocked(cell int) bool {
	return s.blocked[cell/64]&(1<<(cell%64)) != 0
}

// OpenCells counts the cells no piece has visited.
func (s *State) OpenCells() int {
	return s.width*s.height - bits.OnesCount64(s.blocked[0]) - bits.OnesCount64(s.blocked[1])
}

func (s *State) Player() int {
	return s.ply % 2
}

func (s *State) PlyCount() int {
	return s.ply
}

func (s *State) Locs() [2]int {
	return s.locs
}

func (s *State) Actions() []game.Action {
	loc := s.locs[s.Player()]
	if loc < 0 {
		actions := make([]game.Action, 0, s.OpenCells())
		for cell := 0; cell < s.width*s.height; cell++ {
			if !s.Blocked(cell) {
				actions = append(actions, Action(cell))
			}
		}
		return actions
	}
	liberties := s.Liberties(loc)
	actions := make([]game.Action, len(liberties))
	for i, cell := range liberties {
		actions[i] = Action(cell)
	}
	return actions
}

func (s *State) Liberties(loc int) []int {
	x, y := s.Coords(loc)
	liberties := make([]int, 0, len(knightMoves))
	for _, move := range knightMoves {
		nx, ny := x+move[0], y+move[1]
		if nx < 0 || nx >= s.width || ny < 0 || ny >= s.height {
			continue
		}
		if cell := s.Cell(nx, ny); !s.Blocked(cell) {
			liberties = append(liberties, cell)
		}
	}
	return liberties
}

// Result panics on an illegal action.
func (s *State) Result(a game.Action) game.State {
	cell, ok := a.(Action)
	if !ok {
		panic(fmt.Sprintf("unexpected action type %T", a))
	}
	if !s.legal(int(cell)) {
		panic(fmt.Sprintf("illegal action %d for player %d at ply %d", cell, s.Player(), s.ply))
	}
	next := *s
	next.blocked[cell/64] |= 1 << (cell % 64)
	next.locs[s.Player()] = int(cell)
	next.ply++
	return &next
}

func (s *State) legal(cell int) bool {
	if cell < 0 || cell >= s.width*s.height || s.Blocked(cell) {
		return false
	}
	loc := s.locs[s.Player()]
	if loc < 0 {
		return true
	}
	for _, liberty := range s.Liberties(loc) {
		if liberty == cell {
			return true
		}
	}
	return false
}

func (s *State) Terminal() bool {
	return len(s.Actions()) == 0
}

// Utility is 1 if player won, -1 if player lost and 0 while the game is on.
func (s *State) Utility(player int) float64 {
	if !s.Terminal() {
		return 0
	}
	if player == s.Player() {
		return -1
	}
	return 1
}

func (s *State) Key() game.Key {
	return game.Key{
		Board:  fmt.Sprintf("%dx%d:%016x%016x", s.width, s.height, s.blocked[1], s.blocked[0]),
		Locs:   s.locs,
		Player: s.Player(),
	}
}

func (s *State) String() string {
	return s.Key().String()
}
