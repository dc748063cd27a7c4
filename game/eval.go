package game

// EvaluateLiberties scores the difference between the number of moves open to
// player and to the opponent. Non-positional states score 0.
func EvaluateLiberties(s State, player int) float64 {
	ps, ok := s.(Positional)
	if !ok {
		return 0
	}
	own, opp := liberties(ps, player), liberties(ps, Opponent(player))
	return float64(own - opp)
}

// EvaluateOwnLiberties counts the moves open to player.
func EvaluateOwnLiberties(s State, player int) float64 {
	ps, ok := s.(Positional)
	if !ok {
		return 0
	}
	return float64(liberties(ps, player))
}

// EvaluateLibertyRatio is EvaluateLiberties normalized to a score between -1
// and 1.
func EvaluateLibertyRatio(s State, player int) float64 {
	ps, ok := s.(Positional)
	if !ok {
		return 0
	}
	own, opp := liberties(ps, player), liberties(ps, Opponent(player))
	return normalize(float64(own), float64(opp))
}

// EvaluateByName resolves the evaluation names accepted in configuration.
func EvaluateByName(name string) (Evaluate, bool) {
	switch name {
	case "liberties", "":
		return EvaluateLiberties, true
	case "own", "own-liberties":
		return EvaluateOwnLiberties, true
	case "ratio", "liberty-ratio":
		return EvaluateLibertyRatio, true
	}
	return nil, false
}

func liberties(s Positional, player int) int {
	loc := s.Locs()[player]
	if loc < 0 {
		return 0
	}
	return len(s.Liberties(loc))
}

func normalize(own, opp float64) float64 {
	if own+opp == 0 {
		return 0
	}
	return (own - opp) / (own + opp)
}
