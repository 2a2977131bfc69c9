// Package ast defines the Abstract Syntax Tree types for the Yul-style IR.
//
// The AST is designed to be:
// - Complete: Represents all constructs of the IR
// - Stable: Statements carry integer IDs usable as map keys across analyses
// - Transformable: Supports in-place rewriting between analysis passes
//
// Statement and expression kinds are tagged sum types (interfaces with
// unexported marker methods); traversals dispatch with exhaustive type
// switches so that a new node kind surfaces as a compile error in every
// switch that returns a value, and is easy to grep for in those that don't.
package ast

// ----------------------------------------------------------------------------
// Source Location and Node Identity
// ----------------------------------------------------------------------------

// Loc represents a location in source code.
type Loc struct {
	Start int32 // Byte offset of start
}

// NodeID is the stable identity of a statement within an AST.
//
// IDs are assigned by Renumber (the parser calls it once after building the
// tree) and stay valid for as long as the tree is not rewritten. Analyses key
// their maps by NodeID instead of node pointers, so a fully analyzed result
// can outlive intermediate tree copies.
type NodeID uint32

// NoID marks a statement that has not been numbered yet.
const NoID NodeID = 0

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

// Expr represents an expression.
type Expr interface {
	isExpr()
}

// LiteralKind identifies the lexical form of a literal.
type LiteralKind uint8

const (
	NumberLit LiteralKind = iota // decimal or hex number
	StringLit                    // quoted string
	BoolLit                      // true / false
)

// Literal represents a literal value. For NumberLit, Value holds the source
// text (decimal or 0x-prefixed hex); for BoolLit it is "true" or "false".
type Literal struct {
	Loc   Loc
	Kind  LiteralKind
	Value string
}

func (*Literal) isExpr() {}

// Identifier represents a variable reference.
type Identifier struct {
	Loc  Loc
	Name string
}

func (*Identifier) isExpr() {}

// FunctionCall represents a call to a builtin or user-defined function.
type FunctionCall struct {
	Loc  Loc
	Name string
	Args []Expr
}

func (*FunctionCall) isExpr() {}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

// Stmt represents a statement.
type Stmt interface {
	isStmt()
	// StmtID returns the statement's stable identity (NoID before Renumber).
	StmtID() NodeID
}

// Block represents a braced sequence of statements opening a scope.
type Block struct {
	Loc   Loc
	ID    NodeID
	Stmts []Stmt
}

func (*Block) isStmt()          {}
func (b *Block) StmtID() NodeID { return b.ID }

// VariableDeclaration represents: let a, b := expr  (or "let a" without value).
type VariableDeclaration struct {
	Loc   Loc
	ID    NodeID
	Vars  []string
	Value Expr // nil when declared without a value
}

func (*VariableDeclaration) isStmt()          {}
func (d *VariableDeclaration) StmtID() NodeID { return d.ID }

// Assignment represents: a := expr  or  a, b := expr.
type Assignment struct {
	Loc   Loc
	ID    NodeID
	Vars  []string
	Value Expr
}

func (*Assignment) isStmt()          {}
func (a *Assignment) StmtID() NodeID { return a.ID }

// ExpressionStatement represents an expression evaluated for its effects
// (in well-formed IR, a call returning nothing).
type ExpressionStatement struct {
	Loc  Loc
	ID   NodeID
	Expr Expr
}

func (*ExpressionStatement) isStmt()          {}
func (s *ExpressionStatement) StmtID() NodeID { return s.ID }

// If represents: if cond { body }. The IR has no else branch.
type If struct {
	Loc  Loc
	ID   NodeID
	Cond Expr
	Body *Block
}

func (*If) isStmt()          {}
func (s *If) StmtID() NodeID { return s.ID }

// SwitchCase represents one case of a switch; a nil Value marks the default.
type SwitchCase struct {
	Loc   Loc
	Value *Literal // nil for default
	Body  *Block
}

// Switch represents: switch expr case v { } ... [default { }].
type Switch struct {
	Loc   Loc
	ID    NodeID
	Expr  Expr
	Cases []SwitchCase
}

func (*Switch) isStmt()          {}
func (s *Switch) StmtID() NodeID { return s.ID }

// ForLoop represents: for { pre } cond { post } { body }.
type ForLoop struct {
	Loc  Loc
	ID   NodeID
	Pre  *Block
	Cond Expr
	Post *Block
	Body *Block
}

func (*ForLoop) isStmt()          {}
func (s *ForLoop) StmtID() NodeID { return s.ID }

// Break represents: break.
type Break struct {
	Loc Loc
	ID  NodeID
}

func (*Break) isStmt()          {}
func (s *Break) StmtID() NodeID { return s.ID }

// Continue represents: continue.
type Continue struct {
	Loc Loc
	ID  NodeID
}

func (*Continue) isStmt()          {}
func (s *Continue) StmtID() NodeID { return s.ID }

// Leave represents: leave (return early from the enclosing function).
type Leave struct {
	Loc Loc
	ID  NodeID
}

func (*Leave) isStmt()          {}
func (s *Leave) StmtID() NodeID { return s.ID }

// FunctionDefinition represents: function f(a, b) -> r1, r2 { body }.
type FunctionDefinition struct {
	Loc     Loc
	ID      NodeID
	Name    string
	Params  []string
	Returns []string
	Body    *Block
}

func (*FunctionDefinition) isStmt()          {}
func (s *FunctionDefinition) StmtID() NodeID { return s.ID }

// ----------------------------------------------------------------------------
// Node Numbering
// ----------------------------------------------------------------------------

// Renumber assigns fresh, strictly increasing IDs to every statement in the
// tree, in pre-order, starting at 1. It returns the number of statements
// numbered. The parser renumbers each tree it produces; hand-built trees
// (tests, programmatic construction) must renumber before analysis.
func Renumber(root *Block) int {
	next := NodeID(1)
	renumberBlock(root, &next)
	return int(next - 1)
}

func renumberBlock(b *Block, next *NodeID) {
	if b == nil {
		return
	}
	b.ID = *next
	*next++
	for _, st := range b.Stmts {
		renumberStmt(st, next)
	}
}

func renumberStmt(st Stmt, next *NodeID) {
	switch s := st.(type) {
	case *Block:
		renumberBlock(s, next)
	case *VariableDeclaration:
		s.ID = *next
		*next++
	case *Assignment:
		s.ID = *next
		*next++
	case *ExpressionStatement:
		s.ID = *next
		*next++
	case *If:
		s.ID = *next
		*next++
		renumberBlock(s.Body, next)
	case *Switch:
		s.ID = *next
		*next++
		for i := range s.Cases {
			renumberBlock(s.Cases[i].Body, next)
		}
	case *ForLoop:
		s.ID = *next
		*next++
		renumberBlock(s.Pre, next)
		renumberBlock(s.Post, next)
		renumberBlock(s.Body, next)
	case *Break:
		s.ID = *next
		*next++
	case *Continue:
		s.ID = *next
		*next++
	case *Leave:
		s.ID = *next
		*next++
	case *FunctionDefinition:
		s.ID = *next
		*next++
		renumberBlock(s.Body, next)
	}
}
