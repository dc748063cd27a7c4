package game

import (
	"fmt"

	"github.com/mitchellh/hashstructure"
)

// Action is a move in a two-player game. Implementations must have a
// comparable dynamic type so actions can key maps.
type Action interface {
	fmt.Stringer
}

// State should be immutable - Result always returns a new state. Players are
// numbered 0 and 1.
type State interface {
	Player() int
	Actions() []Action
	Result(Action) State
	Terminal() bool
	// Utility is positive when player has won, negative when player has lost
	// and zero otherwise.
	Utility(player int) float64
}

func Opponent(player int) int {
	return 1 - player
}

// Key identifies a position independently of how it was reached.
type Key struct {
	Board  string `json:"board"`
	Locs   [2]int `json:"locs"`
	Player int    `json:"player"`
}

// keyFields has the fields of Key without its methods, so hashstructure
// walks the fields instead of calling Key.Hash.
type keyFields Key

func (k Key) Hash() (uint64, error) {
	hash, err := hashstructure.Hash(keyFields(k), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to hash key %v: %w", k, err)
	}
	return hash, nil
}

func (k Key) String() string {
	return fmt.Sprintf("%s@%d,%d/%d", k.Board, k.Locs[0], k.Locs[1], k.Player)
}

// Keyed states can be looked up in an opening book.
type Keyed interface {
	State
	Key() Key
}

// Positional states place one piece per player on a board.
type Positional interface {
	State
	PlyCount() int
	// Locs holds each player's cell, -1 until the piece is placed.
	Locs() [2]int
	// Liberties lists the open cells a piece on loc can move to.
	Liberties(loc int) []int
}

// Evaluates the game state from player's perspective, higher is better.
type Evaluate func(state State, player int) float64

// ParseAction reads the textual form of an action back.
type ParseAction func(text string) (Action, error)
