package optimizer

import (
	"math/big"
	"strings"

	"github.com/Ahmed-Ali/solidity/internal/ast"
	"github.com/Ahmed-Ali/solidity/internal/dialect"
)

// symbolicValue is an address or length as far as the analysis can pin it
// down: a canonical name usable for identity comparison and, when the value
// resolves to a constant, its numeric value. The zero value means unknown.
//
// Names come from the SSA value map: a tracked variable names the same
// value everywhere it appears, so two operations addressed through it hit
// the same location even when the value itself is not a constant. Number
// literals use their decimal rendering as the name, which also makes "32"
// and "0x20" the same symbol.
type symbolicValue struct {
	name string
	num  *big.Int
}

func (v symbolicValue) known() bool { return v.name != "" }

func numericSymbol(text string) symbolicValue {
	n, ok := parseNumber(text)
	if !ok {
		return symbolicValue{}
	}
	return symbolicValue{name: n.String(), num: n}
}

func parseNumber(text string) (*big.Int, bool) {
	n := new(big.Int)
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		_, ok := n.SetString(text[2:], 16)
		return n, ok
	}
	_, ok := n.SetString(text, 10)
	return n, ok
}

// equalValues reports whether two symbolic values are provably the same.
func equalValues(a, b symbolicValue) bool {
	if a.num != nil && b.num != nil {
		return a.num.Cmp(b.num) == 0
	}
	return a.name != "" && a.name == b.name
}

// operation is one storage or memory access performed by a call: what it
// touches, whether it observes or mutates it, and where. Length is only
// meaningful for memory.
type operation struct {
	location dialect.Location
	effect   dialect.Effect
	start    symbolicValue
	length   symbolicValue
}

// trackedStores maps a store statement's ID to what is known about it.
type trackedStores map[ast.NodeID]UseState

// StoreEliminator finds storage and memory writes whose stored value can
// never be observed: it is overwritten by a covering write, or the location
// is discarded (memory at the end of the program), before any potentially
// overlapping read.
//
// It shares the control-flow merge skeleton of AssignEliminator, tracking
// store statements instead of variables, and adds an overlap layer: every
// call is classified into abstract read/write operations with symbolic
// addresses, and each operation updates the still-undecided tracked writes.
// Everything unprovable stays conservative; uncertainty can only keep a
// store, never remove one.
type StoreEliminator struct {
	dialect         *dialect.Dialect
	movability      *ast.MovabilityContext
	functionEffects map[string]dialect.SideEffects
	ssaValues       map[string]ast.Expr
	ignoreMemory    bool
	loopDepthLimit  int

	stores          trackedStores
	storeOperations map[ast.NodeID]operation
	loop            forLoopInfo[trackedStores]
	loopDepth       int

	toDelete map[ast.NodeID]bool
}

// NewStoreEliminator creates an analyzer. With ignoreMemory set, memory
// operations are never produced, so memory writes are neither tracked nor
// removed (storage-only analysis).
func NewStoreEliminator(
	d *dialect.Dialect,
	movability *ast.MovabilityContext,
	functionEffects map[string]dialect.SideEffects,
	ssaValues map[string]ast.Expr,
	ignoreMemory bool,
	loopDepthLimit int,
) *StoreEliminator {
	return &StoreEliminator{
		dialect:         d,
		movability:      movability,
		functionEffects: functionEffects,
		ssaValues:       ssaValues,
		ignoreMemory:    ignoreMemory,
		loopDepthLimit:  loopDepthLimit,
		stores:          make(trackedStores),
		storeOperations: make(map[ast.NodeID]operation),
		toDelete:        make(map[ast.NodeID]bool),
	}
}

// Run analyzes the program and returns the IDs of the store statements that
// can be deleted. The tree is not modified.
func (r *StoreEliminator) Run(root *ast.Block) map[ast.NodeID]bool {
	r.visitBlock(root)

	// At the end of the program, memory is discarded while storage
	// persists and is observable.
	memory := dialect.Memory
	storage := dialect.Storage
	r.changeUndecidedTo(Unused, &memory)
	r.changeUndecidedTo(Used, &storage)
	r.scheduleForDeletion(Unused)

	return r.toDelete
}

// ----------------------------------------------------------------------------
// Traversal
// ----------------------------------------------------------------------------

func (r *StoreEliminator) visitBlock(b *ast.Block) {
	for _, st := range b.Stmts {
		r.visitStmt(st)
	}
}

func (r *StoreEliminator) visitStmt(st ast.Stmt) {
	switch s := st.(type) {
	case *ast.Block:
		r.visitBlock(s)

	case *ast.VariableDeclaration:
		if s.Value != nil {
			r.visitExpr(s.Value)
		}

	case *ast.Assignment:
		r.visitExpr(s.Value)

	case *ast.ExpressionStatement:
		r.visitExpr(s.Expr)
		r.registerCandidate(s)

	case *ast.If:
		r.visitExpr(s.Cond)

		skipBranch := copyStates(r.stores)
		r.visitBlock(s.Body)
		joinInto(r.stores, skipBranch)

	case *ast.Switch:
		r.visitSwitch(s)

	case *ast.ForLoop:
		r.visitForLoop(s)

	case *ast.Break:
		r.loop.pendingBreak = append(r.loop.pendingBreak, r.stores)
		r.stores = make(trackedStores)

	case *ast.Continue:
		r.loop.pendingContinue = append(r.loop.pendingContinue, r.stores)
		r.stores = make(trackedStores)

	case *ast.Leave:
		// The function returns here, so everything written so far is
		// observable by the caller.
		r.changeUndecidedTo(Used, nil)

	case *ast.FunctionDefinition:
		r.visitFunction(s)
	}
}

func (r *StoreEliminator) visitExpr(e ast.Expr) {
	call, ok := e.(*ast.FunctionCall)
	if !ok {
		return
	}
	for _, arg := range call.Args {
		r.visitExpr(arg)
	}
	for _, op := range r.operationsFromCall(call) {
		r.applyOperation(op)
	}
}

// registerCandidate tracks a bare store statement as removable: a call
// performing exactly one write, whose evaluation apart from that write is
// unobservable. Registration happens after the call's own operations have
// been applied, so the write resolves earlier stores but not itself.
func (r *StoreEliminator) registerCandidate(s *ast.ExpressionStatement) {
	call, ok := s.Expr.(*ast.FunctionCall)
	if !ok {
		return
	}
	ops := r.operationsFromCall(call)
	if len(ops) != 1 || ops[0].effect != dialect.Write {
		return
	}
	if !r.movability.CallEffectsApartFromOps(call).Movable {
		return
	}
	// A second loop pass revisits the statement; a Used earned in that
	// pass must survive re-registration.
	if _, tracked := r.stores[s.ID]; !tracked {
		r.stores[s.ID] = Undecided
	}
	r.storeOperations[s.ID] = ops[0]
}

func (r *StoreEliminator) visitSwitch(s *ast.Switch) {
	r.visitExpr(s.Expr)

	preState := copyStates(r.stores)

	hasDefault := false
	var branches []trackedStores
	for i := range s.Cases {
		if s.Cases[i].Value == nil {
			hasDefault = true
		}
		r.visitBlock(s.Cases[i].Body)
		branches = append(branches, r.stores)
		r.stores = copyStates(preState)
	}

	if hasDefault {
		r.stores = branches[len(branches)-1]
		branches = branches[:len(branches)-1]
	}
	for _, branch := range branches {
		joinInto(r.stores, branch)
	}
}

func (r *StoreEliminator) visitForLoop(s *ast.ForLoop) {
	outerLoop := r.loop
	r.loop = forLoopInfo[trackedStores]{}
	r.loopDepth++

	assertInvariant(len(s.Pre.Stmts) == 0, "for loop init block not empty")

	r.visitExpr(s.Cond)

	zeroRuns := copyStates(r.stores)

	r.visitBlock(s.Body)
	r.mergeSnapshots(r.loop.pendingContinue)
	r.loop.pendingContinue = nil
	r.visitBlock(s.Post)

	r.visitExpr(s.Cond)

	if r.loopDepth < r.loopDepthLimit {
		oneRun := copyStates(r.stores)

		r.visitBlock(s.Body)
		r.mergeSnapshots(r.loop.pendingContinue)
		r.loop.pendingContinue = nil
		r.visitBlock(s.Post)

		r.visitExpr(s.Cond)
		joinInto(r.stores, oneRun)
	} else {
		for id := range r.stores {
			if _, ok := zeroRuns[id]; !ok {
				r.stores[id] = Used
			}
		}
	}

	joinInto(r.stores, zeroRuns)
	r.mergeSnapshots(r.loop.pendingBreak)
	r.loop.pendingBreak = nil

	r.loopDepth--
	r.loop = outerLoop
}

func (r *StoreEliminator) visitFunction(fn *ast.FunctionDefinition) {
	// Stores of the caller are invisible to the function body: its
	// effects on them are captured at the call site through the
	// side-effect summary, not by walking into the definition.
	outerStores := r.stores
	outerLoop := r.loop
	r.stores = make(trackedStores)
	r.loop = forLoopInfo[trackedStores]{}

	r.visitBlock(fn.Body)

	// The implicit fall-through exit makes storage observable; memory
	// writes not overwritten within the function may be read by the
	// caller too.
	r.changeUndecidedTo(Used, nil)
	r.scheduleForDeletion(Unused)

	r.stores = outerStores
	r.loop = outerLoop
}

func (r *StoreEliminator) mergeSnapshots(snapshots []trackedStores) {
	for _, snap := range snapshots {
		joinInto(r.stores, snap)
	}
}

// ----------------------------------------------------------------------------
// Operations
// ----------------------------------------------------------------------------

// operationsFromCall classifies a call into the abstract operations it
// performs. Builtins come from the dialect table; user functions from their
// side-effect summary, with unknown addresses. A call without any summary
// is assumed to read and write everything.
func (r *StoreEliminator) operationsFromCall(call *ast.FunctionCall) []operation {
	if b := r.dialect.Builtin(call.Name); b != nil {
		var ops []operation
		for _, schema := range b.Ops {
			if r.ignoreMemory && schema.Location == dialect.Memory {
				continue
			}
			op := operation{location: schema.Location, effect: schema.Effect}
			if schema.StartArg != dialect.NoArg && schema.StartArg < len(call.Args) {
				op.start = r.symbolicAddress(call.Args[schema.StartArg])
			}
			if schema.Location == dialect.Memory {
				if schema.Length != "" {
					op.length = numericSymbol(schema.Length)
				} else if schema.LengthArg != dialect.NoArg && schema.LengthArg < len(call.Args) {
					op.length = r.symbolicAddress(call.Args[schema.LengthArg])
				}
			}
			ops = append(ops, op)
		}
		return ops
	}

	effects, ok := r.functionEffects[call.Name]
	if !ok {
		effects = dialect.WorstCase()
	}

	var ops []operation
	if effects.ReadsStorage {
		ops = append(ops, operation{location: dialect.Storage, effect: dialect.Read})
	}
	if effects.WritesStorage {
		ops = append(ops, operation{location: dialect.Storage, effect: dialect.Write})
	}
	if !r.ignoreMemory {
		if effects.ReadsMemory {
			ops = append(ops, operation{location: dialect.Memory, effect: dialect.Read})
		}
		if effects.WritesMemory {
			ops = append(ops, operation{location: dialect.Memory, effect: dialect.Write})
		}
	}
	return ops
}

// applyOperation updates every still-undecided tracked write against one
// observed operation: a possibly overlapping read makes the write
// observable; a covering write supersedes it; a write that overlaps without
// provably covering pins it as Used, since part of the stored value may
// survive and be read later.
func (r *StoreEliminator) applyOperation(op operation) {
	for id, state := range r.stores {
		if state != Undecided {
			continue
		}
		tracked := r.storeOperations[id]
		switch op.effect {
		case dialect.Read:
			if !r.knownUnrelated(tracked, op) {
				r.stores[id] = Used
			}
		case dialect.Write:
			if r.knownCovered(tracked, op) {
				r.stores[id] = Unused
			} else if !r.knownUnrelated(tracked, op) {
				r.stores[id] = Used
			}
		}
	}
}

// knownUnrelated reports whether two operations provably touch disjoint
// areas. Different location categories never overlap; within a category,
// disjointness requires fully resolved addresses.
func (r *StoreEliminator) knownUnrelated(a, b operation) bool {
	if a.location != b.location {
		return true
	}

	if a.location == dialect.Storage {
		return a.start.num != nil && b.start.num != nil && a.start.num.Cmp(b.start.num) != 0
	}

	if a.start.num == nil || a.length.num == nil || b.start.num == nil || b.length.num == nil {
		return false
	}
	aEnd := new(big.Int).Add(a.start.num, a.length.num)
	bEnd := new(big.Int).Add(b.start.num, b.length.num)
	return aEnd.Cmp(b.start.num) <= 0 || bEnd.Cmp(a.start.num) <= 0
}

// knownCovered reports whether covering writes at least the whole area of
// covered: the same storage key, the identical memory range, or a memory
// range numerically containing it.
func (r *StoreEliminator) knownCovered(covered, covering operation) bool {
	if covered.location != covering.location {
		return false
	}

	if covered.location == dialect.Storage {
		return equalValues(covered.start, covering.start)
	}

	if equalValues(covered.start, covering.start) && equalValues(covered.length, covering.length) {
		return true
	}

	if covered.start.num == nil || covered.length.num == nil ||
		covering.start.num == nil || covering.length.num == nil {
		return false
	}
	coveredEnd := new(big.Int).Add(covered.start.num, covered.length.num)
	coveringEnd := new(big.Int).Add(covering.start.num, covering.length.num)
	return covering.start.num.Cmp(covered.start.num) <= 0 && coveredEnd.Cmp(coveringEnd) <= 0
}

// ----------------------------------------------------------------------------
// Symbolic Addresses
// ----------------------------------------------------------------------------

// symbolicAddress turns an address expression into a symbolic value: a
// number literal resolves directly; an identifier is usable only when the
// SSA value map proves it holds one fixed value, in which case its name is
// the symbol and a constant is resolved through the map when possible.
func (r *StoreEliminator) symbolicAddress(e ast.Expr) symbolicValue {
	switch x := e.(type) {
	case *ast.Literal:
		if x.Kind == ast.NumberLit {
			return numericSymbol(x.Value)
		}
	case *ast.Identifier:
		if _, ok := r.ssaValues[x.Name]; ok {
			return symbolicValue{name: x.Name, num: r.resolveConstant(x.Name)}
		}
	}
	return symbolicValue{}
}

// resolveConstant follows SSA definitions from a variable to a number
// literal, if the chain ends in one. The chain length is bounded to stay
// robust against malformed (cyclic) input.
func (r *StoreEliminator) resolveConstant(name string) *big.Int {
	for range 64 {
		value, ok := r.ssaValues[name]
		if !ok {
			return nil
		}
		switch x := value.(type) {
		case *ast.Literal:
			if x.Kind != ast.NumberLit {
				return nil
			}
			if n, ok := parseNumber(x.Value); ok {
				return n
			}
			return nil
		case *ast.Identifier:
			name = x.Name
		default:
			return nil
		}
	}
	return nil
}

// ----------------------------------------------------------------------------
// State Updates
// ----------------------------------------------------------------------------

func (r *StoreEliminator) changeUndecidedTo(newState UseState, only *dialect.Location) {
	for id, state := range r.stores {
		if state != Undecided {
			continue
		}
		if only != nil && r.storeOperations[id].location != *only {
			continue
		}
		r.stores[id] = newState
	}
}

func (r *StoreEliminator) scheduleForDeletion(inState UseState) {
	for id, state := range r.stores {
		if state == inState {
			r.toDelete[id] = true
		}
	}
}
