// Package printer outputs IR source code from an AST.
//
// The printer can operate in two modes:
// - Pretty: Human-readable output with indentation
// - Minified: Minimal whitespace output
//
// Both modes produce source that parses back to the same tree, so a
// parse/print round trip is lossless up to whitespace and comments.
package printer

import (
	"strings"

	"github.com/Ahmed-Ali/solidity/internal/ast"
)

// Options controls printer output.
type Options struct {
	// MinifyWhitespace removes unnecessary whitespace
	MinifyWhitespace bool
}

// Printer outputs IR source code.
type Printer struct {
	options Options

	buf    strings.Builder
	indent int
}

// New creates a new printer.
func New(options Options) *Printer {
	return &Printer{options: options}
}

// Print outputs the program as a string. The root block's statements are
// printed at top level, without surrounding braces.
func (p *Printer) Print(root *ast.Block) string {
	p.buf.Reset()
	p.indent = 0

	for i, stmt := range root.Stmts {
		if i > 0 {
			p.newline()
		}
		p.printIndent()
		p.printStmt(stmt)
	}
	if !p.options.MinifyWhitespace && len(root.Stmts) > 0 {
		p.buf.WriteByte('\n')
	}

	return p.buf.String()
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

func (p *Printer) printStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Block:
		p.printBlock(s)

	case *ast.VariableDeclaration:
		p.keyword("let")
		p.printNames(s.Vars)
		if s.Value != nil {
			p.operator(":=")
			p.printExpr(s.Value)
		}

	case *ast.Assignment:
		p.printNames(s.Vars)
		p.operator(":=")
		p.printExpr(s.Value)

	case *ast.ExpressionStatement:
		p.printExpr(s.Expr)

	case *ast.If:
		p.keyword("if")
		p.printExpr(s.Cond)
		p.space()
		p.printBlock(s.Body)

	case *ast.Switch:
		p.keyword("switch")
		p.printExpr(s.Expr)
		for i := range s.Cases {
			c := &s.Cases[i]
			p.newline()
			p.printIndent()
			if c.Value != nil {
				p.keyword("case")
				p.printExpr(c.Value)
				p.space()
			} else {
				p.keyword("default")
			}
			p.printBlock(c.Body)
		}

	case *ast.ForLoop:
		p.keyword("for")
		p.printBlock(s.Pre)
		p.space()
		p.printExpr(s.Cond)
		p.space()
		p.printBlock(s.Post)
		p.space()
		p.printBlock(s.Body)

	case *ast.Break:
		p.buf.WriteString("break")

	case *ast.Continue:
		p.buf.WriteString("continue")

	case *ast.Leave:
		p.buf.WriteString("leave")

	case *ast.FunctionDefinition:
		p.keyword("function")
		p.buf.WriteString(s.Name)
		p.buf.WriteByte('(')
		for i, param := range s.Params {
			if i > 0 {
				p.comma()
			}
			p.buf.WriteString(param)
		}
		p.buf.WriteByte(')')
		if len(s.Returns) > 0 {
			p.operator("->")
			for i, ret := range s.Returns {
				if i > 0 {
					p.comma()
				}
				p.buf.WriteString(ret)
			}
		}
		p.space()
		p.printBlock(s.Body)
	}
}

func (p *Printer) printBlock(b *ast.Block) {
	if b == nil || len(b.Stmts) == 0 {
		p.buf.WriteString("{ }")
		return
	}

	if p.options.MinifyWhitespace {
		p.buf.WriteByte('{')
		for i, stmt := range b.Stmts {
			if i > 0 {
				p.buf.WriteByte(' ')
			}
			p.printStmt(stmt)
		}
		p.buf.WriteByte('}')
		return
	}

	p.buf.WriteString("{\n")
	p.indent++
	for _, stmt := range b.Stmts {
		p.printIndent()
		p.printStmt(stmt)
		p.buf.WriteByte('\n')
	}
	p.indent--
	p.printIndent()
	p.buf.WriteByte('}')
}

func (p *Printer) printNames(names []string) {
	for i, name := range names {
		if i > 0 {
			p.comma()
		}
		p.buf.WriteString(name)
	}
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

func (p *Printer) printExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Literal:
		switch e.Kind {
		case ast.StringLit:
			p.printStringLiteral(e.Value)
		default:
			p.buf.WriteString(e.Value)
		}

	case *ast.Identifier:
		p.buf.WriteString(e.Name)

	case *ast.FunctionCall:
		p.buf.WriteString(e.Name)
		p.buf.WriteByte('(')
		for i, arg := range e.Args {
			if i > 0 {
				p.comma()
			}
			p.printExpr(arg)
		}
		p.buf.WriteByte(')')
	}
}

func (p *Printer) printStringLiteral(value string) {
	p.buf.WriteByte('"')
	for i := 0; i < len(value); i++ {
		switch ch := value[i]; ch {
		case '"':
			p.buf.WriteString(`\"`)
		case '\\':
			p.buf.WriteString(`\\`)
		case '\n':
			p.buf.WriteString(`\n`)
		case '\t':
			p.buf.WriteString(`\t`)
		default:
			p.buf.WriteByte(ch)
		}
	}
	p.buf.WriteByte('"')
}

// ----------------------------------------------------------------------------
// Whitespace Helpers
// ----------------------------------------------------------------------------

func (p *Printer) keyword(kw string) {
	p.buf.WriteString(kw)
	p.buf.WriteByte(' ')
}

func (p *Printer) operator(op string) {
	if p.options.MinifyWhitespace {
		p.buf.WriteString(op)
		return
	}
	p.buf.WriteByte(' ')
	p.buf.WriteString(op)
	p.buf.WriteByte(' ')
}

func (p *Printer) comma() {
	p.buf.WriteByte(',')
	if !p.options.MinifyWhitespace {
		p.buf.WriteByte(' ')
	}
}

func (p *Printer) space() {
	p.buf.WriteByte(' ')
}

func (p *Printer) newline() {
	if p.options.MinifyWhitespace {
		p.buf.WriteByte(' ')
		return
	}
	p.buf.WriteByte('\n')
}

func (p *Printer) printIndent() {
	if p.options.MinifyWhitespace {
		return
	}
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}
