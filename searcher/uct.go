package searcher

import "math"

type uct struct {
	numerator float64
}

// newUCT scores children of a node visited N times. With cSquared = 2c^2 the
// score is q/n + c*sqrt(2*ln(N)/n).
func newUCT(cSquared float64, N float64) *uct {
	if N == 0 {
		panic("N cannot be 0")
	}
	return &uct{numerator: cSquared * math.Log(N)}
}

func (u uct) evaluate(q float64, n float64) float64 {
	if n == 0 {
		panic("n cannot be 0")
	}
	// UCT = q/n + sqrt(c^2*ln(N)/n)
	return q/n + math.Sqrt(u.numerator/n)
}

func cSquared(exploration float64) float64 {
	return 2 * exploration * exploration
}
