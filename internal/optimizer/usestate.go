// Package optimizer implements dead-code elimination for the IR.
//
// Two analyses share one structural dataflow skeleton:
//
//   - AssignEliminator removes assignments to local variables whose values
//     are never read before being overwritten or going out of scope.
//   - StoreEliminator removes storage and memory writes that are never read
//     before being overwritten or before the end of the program.
//
// Neither builds a control-flow graph. Control flow is handled by walking
// the tree: branches analyze a copy of the current state and join it back,
// loops run the body twice (the lattice has three levels, so a second pass
// reaches the fixed point), and break/continue snapshot the state for the
// enclosing loop to fold in later.
//
// Analysis never mutates the tree it walks; statements are identified by
// their ast.NodeID and deleted in a separate rewrite once analysis is done.
package optimizer

// UseState is what is known about one tracked write: Unused means it is
// provably overwritten or dropped before any read, Used means a read may
// observe it, Undecided means traversal has not yet resolved it.
//
// The three values are ordered Unused < Undecided < Used so that join is
// simply the maximum.
type UseState uint8

const (
	Unused UseState = iota
	Undecided
	Used
)

//go:generate go run golang.org/x/tools/cmd/stringer -type=UseState

// join returns the least upper bound of two states. It is commutative,
// associative and idempotent, so the order in which branches are merged
// cannot affect the result.
func join(a, b UseState) UseState {
	if a > b {
		return a
	}
	return b
}
