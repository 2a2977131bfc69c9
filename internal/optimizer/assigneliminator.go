package optimizer

import "github.com/Ahmed-Ali/solidity/internal/ast"

// trackedAssignments maps a variable name to its outstanding writes: for
// each not-yet-resolved assignment statement, what is currently known about
// it. A variable can carry several outstanding writes at once after control
// paths merge.
type trackedAssignments map[string]map[ast.NodeID]UseState

func (t trackedAssignments) clone() trackedAssignments {
	out := make(trackedAssignments, len(t))
	for name, writes := range t {
		out[name] = copyStates(writes)
	}
	return out
}

// mergeFrom joins source into t. The source must not be used afterwards;
// its inner maps may be adopted by t.
func (t trackedAssignments) mergeFrom(source trackedAssignments) {
	for name, theirs := range source {
		mine, ok := t[name]
		if !ok {
			t[name] = theirs
			continue
		}
		joinInto(mine, theirs)
	}
}

// AssignEliminator computes, for every single-target assignment, whether
// the assigned value can ever be read, and flags provably unread
// assignments for removal.
//
// For each variable the walk keeps the set of writes not yet known to be
// read or overwritten. A read raises all of the variable's Undecided writes
// to Used (after a branch merge a read cannot be attributed to one write in
// particular); a new write lowers them to Unused and registers itself as
// Undecided. When the variable goes out of scope, writes still Undecided
// take a default: Unused for locals and parameters, Used for return
// variables (the implicit function exit observes them).
//
// Multi-target assignments resolve the previous writes of all their targets
// but are never tracked for removal themselves.
type AssignEliminator struct {
	movability     *ast.MovabilityContext
	loopDepthLimit int

	assignments     trackedAssignments
	assignmentValue map[ast.NodeID]ast.Expr
	declaredStack   []map[string]bool
	returnVariables map[string]bool
	loop            forLoopInfo[trackedAssignments]
	loopDepth       int

	pendingRemovals map[ast.NodeID]bool
}

// NewAssignEliminator creates an analyzer. loopDepthLimit bounds the loop
// nesting depth up to which the exact two-pass loop analysis runs; deeper
// loops use a cheaper approximation.
func NewAssignEliminator(movability *ast.MovabilityContext, loopDepthLimit int) *AssignEliminator {
	return &AssignEliminator{
		movability:      movability,
		loopDepthLimit:  loopDepthLimit,
		assignments:     make(trackedAssignments),
		assignmentValue: make(map[ast.NodeID]ast.Expr),
		returnVariables: make(map[string]bool),
		pendingRemovals: make(map[ast.NodeID]bool),
	}
}

// Run analyzes the program and returns the IDs of the assignment statements
// that can be deleted. The tree is not modified.
func (r *AssignEliminator) Run(root *ast.Block) map[ast.NodeID]bool {
	r.visitBlock(root)
	return r.pendingRemovals
}

// ----------------------------------------------------------------------------
// Traversal
// ----------------------------------------------------------------------------

func (r *AssignEliminator) visitBlock(b *ast.Block) {
	r.declaredStack = append(r.declaredStack, make(map[string]bool))

	for _, st := range b.Stmts {
		r.visitStmt(st)
	}

	declared := r.declaredStack[len(r.declaredStack)-1]
	r.declaredStack = r.declaredStack[:len(r.declaredStack)-1]
	for name := range declared {
		r.finalize(name, Unused)
	}
}

func (r *AssignEliminator) visitStmt(st ast.Stmt) {
	switch s := st.(type) {
	case *ast.Block:
		r.visitBlock(s)

	case *ast.VariableDeclaration:
		if s.Value != nil {
			r.visitExpr(s.Value)
		}
		scope := r.declaredStack[len(r.declaredStack)-1]
		for _, name := range s.Vars {
			scope[name] = true
		}

	case *ast.Assignment:
		// The right-hand side is evaluated before the write takes
		// effect, so its reads resolve against the previous writes.
		r.visitExpr(s.Value)
		for _, name := range s.Vars {
			r.changeUndecidedTo(name, Unused)
		}
		if len(s.Vars) == 1 {
			name := s.Vars[0]
			writes := r.assignments[name]
			if writes == nil {
				writes = make(map[ast.NodeID]UseState)
				r.assignments[name] = writes
			}
			if _, ok := writes[s.ID]; !ok {
				writes[s.ID] = Undecided
			}
			r.assignmentValue[s.ID] = s.Value
		}

	case *ast.ExpressionStatement:
		r.visitExpr(s.Expr)

	case *ast.If:
		r.visitExpr(s.Cond)

		// The untaken path is the unchanged pre-branch state.
		skipBranch := r.assignments.clone()
		r.visitBlock(s.Body)
		r.assignments.mergeFrom(skipBranch)

	case *ast.Switch:
		r.visitSwitch(s)

	case *ast.ForLoop:
		r.visitForLoop(s)

	case *ast.Break:
		r.loop.pendingBreak = append(r.loop.pendingBreak, r.assignments)
		r.assignments = make(trackedAssignments)

	case *ast.Continue:
		r.loop.pendingContinue = append(r.loop.pendingContinue, r.assignments)
		r.assignments = make(trackedAssignments)

	case *ast.Leave:
		for name := range r.returnVariables {
			r.changeUndecidedTo(name, Used)
		}

	case *ast.FunctionDefinition:
		r.visitFunction(s)
	}
}

func (r *AssignEliminator) visitExpr(e ast.Expr) {
	switch x := e.(type) {
	case *ast.Identifier:
		r.changeUndecidedTo(x.Name, Used)
	case *ast.FunctionCall:
		for _, arg := range x.Args {
			r.visitExpr(arg)
		}
	}
}

func (r *AssignEliminator) visitSwitch(s *ast.Switch) {
	r.visitExpr(s.Expr)

	preState := r.assignments.clone()

	hasDefault := false
	var branches []trackedAssignments
	for i := range s.Cases {
		if s.Cases[i].Value == nil {
			hasDefault = true
		}
		r.visitBlock(s.Cases[i].Body)
		branches = append(branches, r.assignments)
		r.assignments = preState.clone()
	}

	// Without a default case, the pre-state itself is a possible outcome
	// ("no case taken") and serves as the merge base. With one, every
	// path runs some branch, so the last branch becomes the base instead.
	if hasDefault {
		r.assignments = branches[len(branches)-1]
		branches = branches[:len(branches)-1]
	}
	for _, branch := range branches {
		r.assignments.mergeFrom(branch)
	}
}

func (r *AssignEliminator) visitForLoop(s *ast.ForLoop) {
	outerLoop := r.loop
	r.loop = forLoopInfo[trackedAssignments]{}
	r.loopDepth++

	// The init block would extend this loop's scope into the enclosing
	// block; RewriteForLoopInit must have emptied it first.
	assertInvariant(len(s.Pre.Stmts) == 0, "for loop init block not empty")

	// Run the loop twice to account for the back edge. More runs are not
	// needed because the lattice has only three states.

	r.visitExpr(s.Cond)

	zeroRuns := r.assignments.clone()

	r.visitBlock(s.Body)
	r.mergeSnapshots(r.loop.pendingContinue)
	r.loop.pendingContinue = nil
	r.visitBlock(s.Post)

	r.visitExpr(s.Cond)

	if r.loopDepth < r.loopDepthLimit {
		oneRun := r.assignments.clone()

		r.visitBlock(s.Body)
		r.mergeSnapshots(r.loop.pendingContinue)
		r.loop.pendingContinue = nil
		r.visitBlock(s.Post)

		r.visitExpr(s.Cond)
		r.assignments.mergeFrom(oneRun)
	} else {
		// Cheap approximation for deep nesting: every write newly
		// introduced inside the loop might be read by a later
		// iteration, so force it to Used. Break and continue paths
		// are joined below as usual.
		for name, writes := range r.assignments {
			zero := zeroRuns[name]
			for id := range writes {
				if zero != nil {
					if _, ok := zero[id]; ok {
						continue
					}
				}
				writes[id] = Used
			}
		}
	}

	r.assignments.mergeFrom(zeroRuns)
	r.mergeSnapshots(r.loop.pendingBreak)
	r.loop.pendingBreak = nil

	r.loopDepth--
	r.loop = outerLoop
}

func (r *AssignEliminator) visitFunction(fn *ast.FunctionDefinition) {
	// A function body is a fully isolated scope: it sees neither the
	// outer variables nor the outer loop.
	outerAssignments := r.assignments
	outerReturns := r.returnVariables
	outerLoop := r.loop

	r.assignments = make(trackedAssignments)
	r.returnVariables = make(map[string]bool)
	r.loop = forLoopInfo[trackedAssignments]{}
	for _, name := range fn.Returns {
		r.returnVariables[name] = true
	}

	r.visitBlock(fn.Body)

	for _, name := range fn.Params {
		r.finalize(name, Unused)
	}
	for _, name := range fn.Returns {
		r.finalize(name, Used)
	}

	r.assignments = outerAssignments
	r.returnVariables = outerReturns
	r.loop = outerLoop
}

// ----------------------------------------------------------------------------
// State Updates
// ----------------------------------------------------------------------------

func (r *AssignEliminator) mergeSnapshots(snapshots []trackedAssignments) {
	for _, snap := range snapshots {
		r.assignments.mergeFrom(snap)
	}
}

func (r *AssignEliminator) changeUndecidedTo(name string, newState UseState) {
	for id, state := range r.assignments[name] {
		if state == Undecided {
			r.assignments[name][id] = newState
		}
	}
}

// finalize resolves every outstanding write to the variable, in the current
// state and in all pending break/continue snapshots (the variable may have
// left scope through such a jump and cannot be read afterwards). A write
// that ends up Unused is flagged for removal if skipping its right-hand
// side is unobservable.
func (r *AssignEliminator) finalize(name string, finalState UseState) {
	resolved := make(map[ast.NodeID]UseState)
	joinInto(resolved, r.assignments[name])
	delete(r.assignments, name)

	for _, snap := range r.loop.pendingBreak {
		joinInto(resolved, snap[name])
		delete(snap, name)
	}
	for _, snap := range r.loop.pendingContinue {
		joinInto(resolved, snap[name])
		delete(snap, name)
	}

	for id, state := range resolved {
		if state == Undecided {
			state = finalState
		}
		if state == Unused && r.movability.ExprMovable(r.assignmentValue[id]) {
			r.pendingRemovals[id] = true
		}
	}
}
