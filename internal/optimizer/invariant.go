package optimizer

// InvariantError reports a violated internal precondition, such as a for
// loop reaching an analysis with a non-empty init block. It signals a bug
// in an earlier pipeline step, not a problem with the input program, and is
// kept distinct from parse errors for that reason.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "internal invariant violated: " + e.Msg
}

func assertInvariant(cond bool, msg string) {
	if !cond {
		panic(&InvariantError{Msg: msg})
	}
}

// recoverInvariant converts an InvariantError panic into an error return.
// Any other panic is re-raised.
func recoverInvariant(err *error) {
	if r := recover(); r != nil {
		if inv, ok := r.(*InvariantError); ok {
			*err = inv
			return
		}
		panic(r)
	}
}
