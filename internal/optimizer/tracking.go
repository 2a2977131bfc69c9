package optimizer

// joinInto merges source into target, joining states where both maps hold
// an entry for the same key.
func joinInto[K comparable](target, source map[K]UseState) {
	for k, v := range source {
		if cur, ok := target[k]; ok {
			target[k] = join(cur, v)
		} else {
			target[k] = v
		}
	}
}

func copyStates[K comparable](m map[K]UseState) map[K]UseState {
	out := make(map[K]UseState, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// forLoopInfo accumulates the dataflow snapshots taken at each break and
// continue inside the currently analyzed loop. The loop's own traversal
// consumes them: continues rejoin before the post-block, breaks after
// everything else.
type forLoopInfo[S any] struct {
	pendingBreak    []S
	pendingContinue []S
}
