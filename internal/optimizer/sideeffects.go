package optimizer

import (
	"github.com/Ahmed-Ali/solidity/internal/ast"
	"github.com/Ahmed-Ali/solidity/internal/dialect"
)

// FunctionSideEffects computes a side-effect summary for every function
// defined in the program, by propagating the effects of builtin calls
// through the call graph until a fixed point is reached.
//
// A call to a name that is neither a builtin nor a defined function is
// assumed to do anything. A function containing a loop is not movable and
// not side-effect free, since it may fail to terminate.
func FunctionSideEffects(root *ast.Block, d *dialect.Dialect) map[string]dialect.SideEffects {
	c := &effectsCollector{dialect: d, functions: make(map[string]*functionInfo)}
	c.collectBlock(root, "")

	// Seed each function with the effects of its own body, then fold in
	// callee summaries until nothing changes. Union only ever weakens a
	// summary, so the iteration terminates.
	result := make(map[string]dialect.SideEffects, len(c.functions))
	for name, info := range c.functions {
		result[name] = info.direct
	}

	for changed := true; changed; {
		changed = false
		for name, info := range c.functions {
			effects := result[name]
			for callee := range info.calls {
				calleeEffects, ok := result[callee]
				if !ok {
					calleeEffects = dialect.WorstCase()
				}
				effects = effects.Union(calleeEffects)
			}
			if effects != result[name] {
				result[name] = effects
				changed = true
			}
		}
	}

	return result
}

type functionInfo struct {
	direct dialect.SideEffects
	calls  map[string]bool
}

type effectsCollector struct {
	dialect   *dialect.Dialect
	functions map[string]*functionInfo
}

func pureEffects() dialect.SideEffects {
	return dialect.SideEffects{Movable: true, SideEffectFree: true}
}

// collectBlock walks a block attributing call effects to the enclosing
// function, identified by name ("" for top-level code, whose effects are
// not summarized).
func (c *effectsCollector) collectBlock(b *ast.Block, fn string) {
	if b == nil {
		return
	}
	for _, st := range b.Stmts {
		c.collectStmt(st, fn)
	}
}

func (c *effectsCollector) collectStmt(st ast.Stmt, fn string) {
	switch s := st.(type) {
	case *ast.Block:
		c.collectBlock(s, fn)

	case *ast.VariableDeclaration:
		c.collectExpr(s.Value, fn)

	case *ast.Assignment:
		c.collectExpr(s.Value, fn)

	case *ast.ExpressionStatement:
		c.collectExpr(s.Expr, fn)

	case *ast.If:
		c.collectExpr(s.Cond, fn)
		c.collectBlock(s.Body, fn)

	case *ast.Switch:
		c.collectExpr(s.Expr, fn)
		for i := range s.Cases {
			c.collectBlock(s.Cases[i].Body, fn)
		}

	case *ast.ForLoop:
		// The loop may not terminate, so the function's evaluation can
		// no longer be skipped or reordered.
		if info := c.functions[fn]; info != nil {
			info.direct.Movable = false
			info.direct.SideEffectFree = false
		}
		c.collectExpr(s.Cond, fn)
		c.collectBlock(s.Pre, fn)
		c.collectBlock(s.Post, fn)
		c.collectBlock(s.Body, fn)

	case *ast.FunctionDefinition:
		if c.functions[s.Name] == nil {
			c.functions[s.Name] = &functionInfo{
				direct: pureEffects(),
				calls:  make(map[string]bool),
			}
		}
		c.collectBlock(s.Body, s.Name)
	}
}

func (c *effectsCollector) collectExpr(e ast.Expr, fn string) {
	call, ok := e.(*ast.FunctionCall)
	if !ok {
		return
	}
	for _, arg := range call.Args {
		c.collectExpr(arg, fn)
	}

	info := c.functions[fn]
	if info == nil {
		return
	}
	if b := c.dialect.Builtin(call.Name); b != nil {
		info.direct = info.direct.Union(b.Effects)
	} else {
		info.calls[call.Name] = true
	}
}
