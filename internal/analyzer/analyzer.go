// Package analyzer performs semantic validation of a parsed Yul program.
//
// The checks run before any optimization pass and cover what the grammar
// alone cannot: identifier scoping (variables are visible from declaration
// to the end of their block, and never across a function boundary),
// function and builtin call arity, value arity of assignments and
// declarations, duplicate switch cases, and the placement rules for
// break, continue and leave.
//
// Calls to function names that are neither builtins nor defined anywhere
// in the program are not errors: the optimizer treats them as opaque
// worst-case calls, so partial programs stay optimizable.
package analyzer

import (
	"math/big"
	"strings"

	"github.com/Ahmed-Ali/solidity/internal/ast"
	"github.com/Ahmed-Ali/solidity/internal/dialect"
	"github.com/Ahmed-Ali/solidity/internal/diagnostic"
)

// Analyze checks the program rooted at root and returns the collected
// diagnostics. The tree is not modified.
func Analyze(root *ast.Block, source string, d *dialect.Dialect) *diagnostic.List {
	a := &analyzer{
		dialect: d,
		diags:   diagnostic.NewList(source),
	}
	a.visitBlock(root)
	return a.diags
}

type analyzer struct {
	dialect *dialect.Dialect
	diags   *diagnostic.List

	// Variable scopes, innermost last. barriers marks the scope index at
	// which the current function's scopes start: lookups never cross it,
	// because functions cannot access variables of enclosing functions.
	scopes   []map[string]bool
	barriers []int

	// Function scopes, innermost last. Function definitions are hoisted
	// to the top of their block, so each block's functions are collected
	// before its statements are visited.
	functions []map[string]*ast.FunctionDefinition

	loopDepth     int
	functionDepth int
}

// ----------------------------------------------------------------------------
// Scopes
// ----------------------------------------------------------------------------

func (a *analyzer) pushScope() {
	a.scopes = append(a.scopes, make(map[string]bool))
}

func (a *analyzer) popScope() {
	a.scopes = a.scopes[:len(a.scopes)-1]
}

func (a *analyzer) declareVar(name string, offset int) {
	scope := a.scopes[len(a.scopes)-1]
	if scope[name] {
		a.diags.AddErrorf(offset, "variable %q already declared in this scope", name)
		return
	}
	scope[name] = true
}

// varVisible reports whether name is a visible variable. Scopes of
// enclosing functions are not consulted.
func (a *analyzer) varVisible(name string) bool {
	floor := 0
	if len(a.barriers) > 0 {
		floor = a.barriers[len(a.barriers)-1]
	}
	for i := len(a.scopes) - 1; i >= floor; i-- {
		if a.scopes[i][name] {
			return true
		}
	}
	return false
}

func (a *analyzer) lookupFunction(name string) *ast.FunctionDefinition {
	for i := len(a.functions) - 1; i >= 0; i-- {
		if fn, ok := a.functions[i][name]; ok {
			return fn
		}
	}
	return nil
}

// collectFunctions hoists the function definitions of one block into a
// fresh function scope, diagnosing duplicates and builtin shadowing.
func (a *analyzer) collectFunctions(stmts []ast.Stmt) {
	scope := make(map[string]*ast.FunctionDefinition)
	for _, st := range stmts {
		fn, ok := st.(*ast.FunctionDefinition)
		if !ok {
			continue
		}
		if a.dialect.IsBuiltin(fn.Name) {
			a.diags.AddErrorf(int(fn.Loc.Start), "function %q shadows a builtin", fn.Name)
			continue
		}
		if _, exists := scope[fn.Name]; exists {
			a.diags.AddErrorf(int(fn.Loc.Start), "function %q already defined in this block", fn.Name)
			continue
		}
		scope[fn.Name] = fn
	}
	a.functions = append(a.functions, scope)
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

func (a *analyzer) visitBlock(b *ast.Block) {
	a.pushScope()
	a.collectFunctions(b.Stmts)
	for _, st := range b.Stmts {
		a.visitStmt(st)
	}
	a.functions = a.functions[:len(a.functions)-1]
	a.popScope()
}

func (a *analyzer) visitStmt(st ast.Stmt) {
	switch s := st.(type) {
	case *ast.Block:
		a.visitBlock(s)

	case *ast.VariableDeclaration:
		// Uses in the initializer resolve before the names exist.
		if s.Value != nil {
			a.visitRHS(s.Value, len(s.Vars), int(s.Loc.Start))
		}
		for _, name := range s.Vars {
			a.declareVar(name, int(s.Loc.Start))
		}

	case *ast.Assignment:
		a.visitRHS(s.Value, len(s.Vars), int(s.Loc.Start))
		for _, name := range s.Vars {
			if !a.varVisible(name) {
				a.diags.AddErrorf(int(s.Loc.Start), "assignment to undeclared variable %q", name)
			}
		}

	case *ast.ExpressionStatement:
		call, ok := s.Expr.(*ast.FunctionCall)
		if !ok {
			a.diags.AddError(int(s.Loc.Start), "expression statement must be a function call")
			return
		}
		a.visitCall(call, 0)

	case *ast.If:
		a.visitValue(s.Cond)
		a.visitBlock(s.Body)

	case *ast.Switch:
		a.visitValue(s.Expr)
		a.checkCaseValues(s)
		for i := range s.Cases {
			a.visitBlock(s.Cases[i].Body)
		}

	case *ast.ForLoop:
		// Names declared in the init block stay visible in the
		// condition, post block and body.
		a.pushScope()
		a.collectFunctions(s.Pre.Stmts)
		for _, st := range s.Pre.Stmts {
			a.visitStmt(st)
		}
		a.visitValue(s.Cond)
		a.loopDepth++
		a.visitBlock(s.Body)
		a.loopDepth--
		a.visitBlock(s.Post)
		a.functions = a.functions[:len(a.functions)-1]
		a.popScope()

	case *ast.Break:
		if a.loopDepth == 0 {
			a.diags.AddError(int(s.Loc.Start), "break outside for loop body")
		}

	case *ast.Continue:
		if a.loopDepth == 0 {
			a.diags.AddError(int(s.Loc.Start), "continue outside for loop body")
		}

	case *ast.Leave:
		if a.functionDepth == 0 {
			a.diags.AddError(int(s.Loc.Start), "leave outside function")
		}

	case *ast.FunctionDefinition:
		a.visitFunction(s)
	}
}

func (a *analyzer) visitFunction(fn *ast.FunctionDefinition) {
	// A function body starts a fresh variable world: parameters and
	// return variables only, nothing from enclosing scopes. Loop context
	// does not carry across either.
	a.barriers = append(a.barriers, len(a.scopes))
	a.pushScope()
	outerLoopDepth := a.loopDepth
	a.loopDepth = 0
	a.functionDepth++

	for _, name := range fn.Params {
		a.declareVar(name, int(fn.Loc.Start))
	}
	for _, name := range fn.Returns {
		a.declareVar(name, int(fn.Loc.Start))
	}
	a.visitBlock(fn.Body)

	a.functionDepth--
	a.loopDepth = outerLoopDepth
	a.popScope()
	a.barriers = a.barriers[:len(a.barriers)-1]
}

// checkCaseValues diagnoses switch cases with equal values. Values
// compare numerically, so 0x20 and 32 collide.
func (a *analyzer) checkCaseValues(s *ast.Switch) {
	seen := make(map[string]bool)
	for i := range s.Cases {
		lit := s.Cases[i].Value
		if lit == nil {
			continue // default, the parser already checks duplicates
		}
		key := lit.Value
		if lit.Kind == ast.NumberLit {
			if n, ok := parseCaseNumber(lit.Value); ok {
				key = n.String()
			}
		}
		if seen[key] {
			a.diags.AddErrorf(int(lit.Loc.Start), "duplicate switch case %s", lit.Value)
			continue
		}
		seen[key] = true
	}
}

// parseCaseNumber reads a decimal or 0x-prefixed hex literal. Base is
// never inferred from a leading zero: 010 is ten, not eight.
func parseCaseNumber(text string) (*big.Int, bool) {
	n := new(big.Int)
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		_, ok := n.SetString(text[2:], 16)
		return n, ok
	}
	_, ok := n.SetString(text, 10)
	return n, ok
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

// visitRHS checks the right-hand side of a declaration or assignment
// against the number of target variables.
func (a *analyzer) visitRHS(value ast.Expr, targets int, offset int) {
	if call, ok := value.(*ast.FunctionCall); ok {
		a.visitCall(call, targets)
		return
	}
	a.visitValue(value)
	if targets != 1 {
		a.diags.AddErrorf(offset, "expected a call returning %d values", targets)
	}
}

// visitValue checks an expression that must produce exactly one value.
func (a *analyzer) visitValue(e ast.Expr) {
	switch x := e.(type) {
	case *ast.Literal:
		// Always a single value.
	case *ast.Identifier:
		if !a.varVisible(x.Name) {
			a.diags.AddErrorf(int(x.Loc.Start), "undeclared identifier %q", x.Name)
		}
	case *ast.FunctionCall:
		a.visitCall(x, 1)
	}
}

// visitCall checks argument arity and the number of produced values
// against what the surrounding context consumes. Calls to unknown
// functions are left alone apart from their arguments.
func (a *analyzer) visitCall(call *ast.FunctionCall, wantReturns int) {
	for _, arg := range call.Args {
		a.visitValue(arg)
	}

	var params, returns int
	if b := a.dialect.Builtin(call.Name); b != nil {
		params, returns = b.Params, b.Returns
	} else if fn := a.lookupFunction(call.Name); fn != nil {
		params, returns = len(fn.Params), len(fn.Returns)
	} else {
		return
	}

	if len(call.Args) != params {
		a.diags.AddErrorf(int(call.Loc.Start), "%s expects %d arguments, got %d",
			call.Name, params, len(call.Args))
	}
	if returns != wantReturns {
		switch {
		case wantReturns == 0:
			a.diags.AddErrorf(int(call.Loc.Start), "statement discards the %d value(s) returned by %s",
				returns, call.Name)
		case returns == 0:
			a.diags.AddErrorf(int(call.Loc.Start), "%s does not return a value", call.Name)
		default:
			a.diags.AddErrorf(int(call.Loc.Start), "%s returns %d values, expected %d",
				call.Name, returns, wantReturns)
		}
	}
}
