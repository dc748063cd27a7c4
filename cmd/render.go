package cmd

import (
	"strings"

	"aisearch/game/isolation"

	"github.com/muesli/termenv"
)

var pieceColors = [2]string{"#E06C75", "#61AFEF"}

// renderBoard draws the board with one character per cell. Player pieces are
// shown as 1 and 2, blocked cells as # and open cells as a dot.
func renderBoard(out *termenv.Output, s *isolation.State) string {
	locs := s.Locs()

	var b strings.Builder
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			cell := s.Cell(x, y)
			switch {
			case cell == locs[0]:
				b.WriteString(out.String("1").Foreground(out.Color(pieceColors[0])).Bold().String())
			case cell == locs[1]:
				b.WriteString(out.String("2").Foreground(out.Color(pieceColors[1])).Bold().String())
			case s.Blocked(cell):
				b.WriteString(out.String("#").Faint().String())
			default:
				b.WriteString(".")
			}
			if x < s.Width()-1 {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
