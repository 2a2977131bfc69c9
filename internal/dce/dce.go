// Package dce removes function definitions that can never execute.
//
// DCE works by:
// 1. Treating all code outside function definitions as the entry point
// 2. Building a call graph of function references
// 3. Marking all functions reachable from the entry point as "live"
// 4. Deleting the definitions of non-live functions
//
// A call to a function is a reference wherever it appears, including
// inside other dead functions; only reachability from the entry point
// keeps a definition alive. References that are not calls do not exist
// in this IR, so the call graph is the whole dependency graph.
package dce

import (
	"github.com/Ahmed-Ali/solidity/internal/ast"
)

// RemoveUnusedFunctions deletes unreachable function definitions from the
// program rooted at root. It returns the number of definitions removed.
func RemoveUnusedFunctions(root *ast.Block) int {
	// Call graph: function name -> names it calls.
	deps := make(map[string][]string)
	collectFunctionDeps(root, deps)

	// Entry point: every call outside any function definition.
	var entry []string
	collectCalledNames(root, func(name string) {
		entry = append(entry, name)
	})

	live := make(map[string]bool)
	var markLive func(name string)
	markLive = func(name string) {
		if live[name] {
			return
		}
		live[name] = true
		for _, callee := range deps[name] {
			markLive(callee)
		}
	}
	for _, name := range entry {
		markLive(name)
	}

	return pruneBlock(root, live)
}

// collectFunctionDeps records, for every function definition in the tree,
// the names called from its body.
func collectFunctionDeps(b *ast.Block, deps map[string][]string) {
	for _, st := range b.Stmts {
		switch s := st.(type) {
		case *ast.Block:
			collectFunctionDeps(s, deps)
		case *ast.If:
			collectFunctionDeps(s.Body, deps)
		case *ast.Switch:
			for i := range s.Cases {
				collectFunctionDeps(s.Cases[i].Body, deps)
			}
		case *ast.ForLoop:
			collectFunctionDeps(s.Pre, deps)
			collectFunctionDeps(s.Post, deps)
			collectFunctionDeps(s.Body, deps)
		case *ast.FunctionDefinition:
			var calls []string
			collectCalledNames(s.Body, func(name string) {
				calls = append(calls, name)
			})
			deps[s.Name] = calls
			collectFunctionDeps(s.Body, deps)
		}
	}
}

// collectCalledNames reports every called name in the block, skipping
// nested function definitions: their calls belong to their own dependency
// list, and a nested function becomes live through the call that names
// it, not through its body.
func collectCalledNames(b *ast.Block, report func(string)) {
	for _, st := range b.Stmts {
		collectStmtCalls(st, report)
	}
}

func collectStmtCalls(st ast.Stmt, report func(string)) {
	switch s := st.(type) {
	case *ast.Block:
		collectCalledNames(s, report)
	case *ast.VariableDeclaration:
		collectExprCalls(s.Value, report)
	case *ast.Assignment:
		collectExprCalls(s.Value, report)
	case *ast.ExpressionStatement:
		collectExprCalls(s.Expr, report)
	case *ast.If:
		collectExprCalls(s.Cond, report)
		collectCalledNames(s.Body, report)
	case *ast.Switch:
		collectExprCalls(s.Expr, report)
		for i := range s.Cases {
			collectCalledNames(s.Cases[i].Body, report)
		}
	case *ast.ForLoop:
		collectCalledNames(s.Pre, report)
		collectExprCalls(s.Cond, report)
		collectCalledNames(s.Post, report)
		collectCalledNames(s.Body, report)
	case *ast.FunctionDefinition:
		// The body's calls belong to this function, not to the
		// surrounding code.
	}
}

func collectExprCalls(e ast.Expr, report func(string)) {
	call, ok := e.(*ast.FunctionCall)
	if !ok {
		return
	}
	report(call.Name)
	for _, arg := range call.Args {
		collectExprCalls(arg, report)
	}
}

// pruneBlock removes dead function definitions in place and returns how
// many were deleted, including definitions nested inside deleted ones.
func pruneBlock(b *ast.Block, live map[string]bool) int {
	removed := 0
	kept := b.Stmts[:0]
	for _, st := range b.Stmts {
		if fn, ok := st.(*ast.FunctionDefinition); ok && !live[fn.Name] {
			removed += 1 + countFunctions(fn.Body)
			continue
		}
		kept = append(kept, st)
	}
	b.Stmts = kept

	for _, st := range b.Stmts {
		switch s := st.(type) {
		case *ast.Block:
			removed += pruneBlock(s, live)
		case *ast.If:
			removed += pruneBlock(s.Body, live)
		case *ast.Switch:
			for i := range s.Cases {
				removed += pruneBlock(s.Cases[i].Body, live)
			}
		case *ast.ForLoop:
			removed += pruneBlock(s.Pre, live)
			removed += pruneBlock(s.Post, live)
			removed += pruneBlock(s.Body, live)
		case *ast.FunctionDefinition:
			removed += pruneBlock(s.Body, live)
		}
	}
	return removed
}

func countFunctions(b *ast.Block) int {
	count := 0
	for _, st := range b.Stmts {
		switch s := st.(type) {
		case *ast.Block:
			count += countFunctions(s)
		case *ast.If:
			count += countFunctions(s.Body)
		case *ast.Switch:
			for i := range s.Cases {
				count += countFunctions(s.Cases[i].Body)
			}
		case *ast.ForLoop:
			count += countFunctions(s.Pre)
			count += countFunctions(s.Post)
			count += countFunctions(s.Body)
		case *ast.FunctionDefinition:
			count += 1 + countFunctions(s.Body)
		}
	}
	return count
}
