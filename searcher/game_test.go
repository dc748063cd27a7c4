package searcher

import (
	"strconv"

	"aisearch/game"
)

// nim is a pile of stones; players alternately take one or two and whoever
// takes the last stone wins.
type nim struct {
	pile   int
	player int
}

type take int

func (t take) String() string {
	return strconv.Itoa(int(t))
}

func (s nim) Player() int {
	return s.player
}

func (s nim) Actions() []game.Action {
	var actions []game.Action
	for n := 1; n <= 2 && n <= s.pile; n++ {
		actions = append(actions, take(n))
	}
	return actions
}

func (s nim) Result(a game.Action) game.State {
	return nim{pile: s.pile - int(a.(take)), player: game.Opponent(s.player)}
}

func (s nim) Terminal() bool {
	return s.pile == 0
}

func (s nim) Utility(player int) float64 {
	if !s.Terminal() {
		return 0
	}
	if player == s.player {
		return -1
	}
	return 1
}

func (s nim) Key() game.Key {
	return game.Key{Board: strconv.Itoa(s.pile), Locs: [2]int{-1, -1}, Player: s.player}
}

// stuck is a non-terminal position that offers no moves.
type stuck struct{}

func (stuck) Player() int                   { return 0 }
func (stuck) Actions() []game.Action        { return nil }
func (stuck) Result(game.Action) game.State { panic("no moves") }
func (stuck) Terminal() bool                { return false }
func (stuck) Utility(int) float64           { return 0 }

func zeroEvaluate(game.State, int) float64 {
	return 0
}
