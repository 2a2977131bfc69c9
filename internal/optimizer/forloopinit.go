package optimizer

import "github.com/Ahmed-Ali/solidity/internal/ast"

// RewriteForLoopInit hoists the statements of every for loop's init block
// into the enclosing block, directly before the loop, leaving the init
// block empty.
//
// In the IR, names declared in the init block stay visible in the
// condition, post-block and body, so hoisting them into the enclosing block
// preserves scoping. The liveness analyses require the init block to be
// empty and this rewrite establishes that.
//
// Statements are moved, never created, so node IDs stay valid.
func RewriteForLoopInit(root *ast.Block) {
	rewriteBlockInit(root)
}

func rewriteBlockInit(b *ast.Block) {
	if b == nil {
		return
	}

	var out []ast.Stmt
	for _, st := range b.Stmts {
		loop, ok := st.(*ast.ForLoop)
		if !ok {
			rewriteStmtInit(st)
			out = append(out, st)
			continue
		}

		rewriteBlockInit(loop.Pre)
		rewriteBlockInit(loop.Post)
		rewriteBlockInit(loop.Body)

		out = append(out, loop.Pre.Stmts...)
		loop.Pre = &ast.Block{Loc: loop.Pre.Loc, ID: loop.Pre.ID}
		out = append(out, loop)
	}
	b.Stmts = out
}

func rewriteStmtInit(st ast.Stmt) {
	switch s := st.(type) {
	case *ast.Block:
		rewriteBlockInit(s)
	case *ast.If:
		rewriteBlockInit(s.Body)
	case *ast.Switch:
		for i := range s.Cases {
			rewriteBlockInit(s.Cases[i].Body)
		}
	case *ast.FunctionDefinition:
		rewriteBlockInit(s.Body)
	}
}
