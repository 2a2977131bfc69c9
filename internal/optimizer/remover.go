package optimizer

import "github.com/Ahmed-Ali/solidity/internal/ast"

// removeStatements deletes every statement whose ID is in the removal set,
// in place. It runs strictly after analysis: deleting earlier would
// invalidate the statement identities the analysis keys its maps by.
//
// Statements are dropped wholesale, not replaced by an
// evaluate-for-side-effects form; the analyses only flag statements whose
// evaluation is provably unobservable.
func removeStatements(root *ast.Block, remove map[ast.NodeID]bool) {
	if len(remove) == 0 {
		return
	}
	removeFromBlock(root, remove)
}

func removeFromBlock(b *ast.Block, remove map[ast.NodeID]bool) {
	if b == nil {
		return
	}

	kept := b.Stmts[:0]
	for _, st := range b.Stmts {
		if remove[st.StmtID()] {
			continue
		}
		kept = append(kept, st)
	}
	b.Stmts = kept

	for _, st := range b.Stmts {
		switch s := st.(type) {
		case *ast.Block:
			removeFromBlock(s, remove)
		case *ast.If:
			removeFromBlock(s.Body, remove)
		case *ast.Switch:
			for i := range s.Cases {
				removeFromBlock(s.Cases[i].Body, remove)
			}
		case *ast.ForLoop:
			removeFromBlock(s.Pre, remove)
			removeFromBlock(s.Post, remove)
			removeFromBlock(s.Body, remove)
		case *ast.FunctionDefinition:
			removeFromBlock(s.Body, remove)
		}
	}
}
