package optimizer

import "github.com/Ahmed-Ali/solidity/internal/ast"

// TrackSSAValues collects the variables whose value is fixed for their whole
// lifetime: declared exactly once with an initializer and never assigned to
// afterwards. The result maps each such variable to its defining expression.
//
// The store eliminator uses the map to resolve storage keys and memory
// addresses symbolically: two accesses through the same tracked variable are
// known to hit the same location even when the value itself is unknown.
//
// Variables declared anywhere inside a for loop are not tracked: the
// declaration re-executes per iteration, so the name does not denote one
// value and is not a stable symbol. Names are expected to be unique across
// scopes (upstream stages produce disambiguated programs); a name
// introduced more than once, including as a function parameter or return
// variable, is dropped rather than trusted.
func TrackSSAValues(root *ast.Block) map[string]ast.Expr {
	t := &ssaTracker{
		values:   make(map[string]ast.Expr),
		assigned: make(map[string]bool),
		declared: make(map[string]int),
	}
	t.collectBlock(root)

	for name := range t.values {
		if t.assigned[name] || t.declared[name] > 1 {
			delete(t.values, name)
		}
	}
	return t.values
}

type ssaTracker struct {
	values   map[string]ast.Expr
	assigned map[string]bool
	declared map[string]int
	loops    int // number of enclosing for loops
}

func (t *ssaTracker) collectBlock(b *ast.Block) {
	if b == nil {
		return
	}
	for _, st := range b.Stmts {
		t.collectStmt(st)
	}
}

func (t *ssaTracker) collectStmt(st ast.Stmt) {
	switch s := st.(type) {
	case *ast.Block:
		t.collectBlock(s)

	case *ast.VariableDeclaration:
		for _, name := range s.Vars {
			t.declared[name]++
		}
		if len(s.Vars) == 1 && s.Value != nil && t.loops == 0 {
			t.values[s.Vars[0]] = s.Value
		}

	case *ast.Assignment:
		for _, name := range s.Vars {
			t.assigned[name] = true
		}

	case *ast.If:
		t.collectBlock(s.Body)

	case *ast.Switch:
		for i := range s.Cases {
			t.collectBlock(s.Cases[i].Body)
		}

	case *ast.ForLoop:
		t.loops++
		t.collectBlock(s.Pre)
		t.collectBlock(s.Post)
		t.collectBlock(s.Body)
		t.loops--

	case *ast.FunctionDefinition:
		for _, name := range s.Params {
			t.declared[name]++
		}
		for _, name := range s.Returns {
			t.declared[name]++
		}
		t.collectBlock(s.Body)
	}
}
