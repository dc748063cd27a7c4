package planning

// inconsistentEffects reports whether an effect of one action negates an
// effect of the other.
func inconsistentEffects(a, b Action) bool {
	for _, ea := range a.Effects {
		for _, eb := range b.Effects {
			if ea.IsNegationOf(eb) || eb.IsNegationOf(ea) {
				return true
			}
		}
	}
	return false
}

// interference reports whether an effect of either action negates a
// precondition of the other.
func interference(a, b Action) bool {
	for _, ea := range a.Effects {
		if contains(b.Preconditions, ea.Negate()) {
			return true
		}
	}
	for _, eb := range b.Effects {
		if contains(a.Preconditions, eb.Negate()) {
			return true
		}
	}
	return false
}

// competingNeeds reports whether some precondition of a and some precondition
// of b are mutex in the parent literal layer.
func competingNeeds(a, b Action, parent *LiteralLayer) bool {
	for _, pb := range b.Preconditions {
		for _, pa := range a.Preconditions {
			if parent.IsMutex(pa, pb) {
				return true
			}
		}
	}
	return false
}

func negation(a, b Literal) bool {
	return a.IsNegationOf(b) && b.IsNegationOf(a)
}

// inconsistentSupport reports whether every pair of producers of a and b is
// mutex in the producing action layer. Literals without producers are never
// inconsistently supported.
func inconsistentSupport(a, b Literal, layer *LiteralLayer, producers *ActionLayer) bool {
	pa, pb := layer.Parents(a), layer.Parents(b)
	if producers == nil || len(pa) == 0 || len(pb) == 0 {
		return false
	}
	for _, x := range pa {
		for _, y := range pb {
			if x == y || !producers.IsMutex(x, y) {
				return false
			}
		}
	}
	return true
}

type mutexOptions struct {
	serialize     bool
	ignoreMutexes bool
}

// updateActionMutexes annotates every pair of distinct actions in layer.
func updateActionMutexes(layer *ActionLayer, parent *LiteralLayer, arena []Action, opts mutexOptions) {
	if opts.ignoreMutexes {
		return
	}
	for i, ai := range layer.actions {
		for _, aj := range layer.actions[i+1:] {
			a, b := arena[ai], arena[aj]
			switch {
			case opts.serialize && a.Kind == Ground && b.Kind == Ground:
				layer.setMutex(ai, aj)
			case inconsistentEffects(a, b), interference(a, b), competingNeeds(a, b, parent):
				layer.setMutex(ai, aj)
			}
		}
	}
}

// updateLiteralMutexes annotates every pair of distinct literals in layer
// using the producing action layer, which is nil at level 0.
func updateLiteralMutexes(layer *LiteralLayer, producers *ActionLayer, opts mutexOptions) {
	if opts.ignoreMutexes {
		return
	}
	for i, a := range layer.literals {
		for _, b := range layer.literals[i+1:] {
			if negation(a, b) || inconsistentSupport(a, b, layer, producers) {
				layer.setMutex(a, b)
			}
		}
	}
}
