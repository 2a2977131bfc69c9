// Package parser provides parsing of Yul-style IR source into an AST.
//
// The grammar is block structured: a program is a statement list, and every
// control-flow construct carries explicit braced blocks. There is no operator
// precedence to deal with; expressions are literals, identifiers, and
// function calls. The parser is a single-pass recursive descent over the
// token stream, distinguishing assignments from expression statements with
// one token of lookahead.
package parser

import (
	"fmt"

	"github.com/Ahmed-Ali/solidity/internal/ast"
	"github.com/Ahmed-Ali/solidity/internal/lexer"
)

// Parser parses IR source into an AST.
type Parser struct {
	source    string
	tokens    []lexer.Token
	pos       int
	lineIndex *lexer.LineIndex // For converting byte offsets to line/column

	// Errors
	errors []ParseError
}

// ParseError represents a parsing error.
type ParseError struct {
	Message string
	Pos     int
	Line    int
	Column  int
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// New creates a new parser for the given source.
func New(source string) *Parser {
	lex := lexer.New(source)
	tokens := lex.Tokenize()

	return &Parser{
		source:    source,
		tokens:    tokens,
		lineIndex: lexer.NewLineIndex(source),
	}
}

// Parse parses the source and returns the root block.
//
// The root is an implicit block: top-level braces are optional, so both
// "{ let x := 1 }" and "let x := 1" parse to the same tree. Statement IDs
// are assigned before returning.
func (p *Parser) Parse() (*ast.Block, []ParseError) {
	root := &ast.Block{Loc: p.loc()}

	// A program wrapped in a single top-level block is unwrapped so that
	// the two spellings produce identical trees.
	if p.current().Kind == lexer.TokLBrace && p.matchingBraceEndsSource() {
		p.advance()
		for p.current().Kind != lexer.TokRBrace && p.current().Kind != lexer.TokEOF {
			if stmt := p.parseStatement(); stmt != nil {
				root.Stmts = append(root.Stmts, stmt)
			} else {
				p.advance() // Skip token to make progress after an error
			}
		}
		p.expect(lexer.TokRBrace)
	} else {
		for p.current().Kind != lexer.TokEOF {
			if p.current().Kind == lexer.TokError {
				p.error(p.current().Value)
				break
			}
			if stmt := p.parseStatement(); stmt != nil {
				root.Stmts = append(root.Stmts, stmt)
			} else {
				p.advance()
			}
		}
	}

	ast.Renumber(root)
	return root, p.errors
}

// matchingBraceEndsSource reports whether the brace at the current position
// closes at the very end of the token stream, i.e. the whole program is one
// braced block rather than a block statement followed by more statements.
func (p *Parser) matchingBraceEndsSource() bool {
	depth := 0
	for i := p.pos; i < len(p.tokens); i++ {
		switch p.tokens[i].Kind {
		case lexer.TokLBrace:
			depth++
		case lexer.TokRBrace:
			depth--
			if depth == 0 {
				return i == len(p.tokens)-2 && p.tokens[i+1].Kind == lexer.TokEOF
			}
		case lexer.TokEOF, lexer.TokError:
			return false
		}
	}
	return false
}

// ----------------------------------------------------------------------------
// Token Helpers
// ----------------------------------------------------------------------------

func (p *Parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Kind: lexer.TokEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek(offset int) lexer.Token {
	pos := p.pos + offset
	if pos >= len(p.tokens) {
		return lexer.Token{Kind: lexer.TokEOF}
	}
	return p.tokens[pos]
}

func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(kind lexer.TokenKind) (lexer.Token, bool) {
	tok := p.current()
	if tok.Kind != kind {
		p.error(fmt.Sprintf("expected %s, got %s", kind, tok.Kind))
		// Don't advance here - let caller decide how to recover
		return tok, false
	}
	p.advance()
	return tok, true
}

func (p *Parser) match(kind lexer.TokenKind) bool {
	if p.current().Kind == kind {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) error(msg string) {
	tok := p.current()
	line, col := p.lineIndex.ByteOffsetToLineColumn(tok.Start)
	p.errors = append(p.errors, ParseError{
		Message: msg,
		Pos:     tok.Start,
		Line:    line + 1, // Convert to 1-based
		Column:  col + 1,
	})
}

func (p *Parser) loc() ast.Loc {
	return ast.Loc{Start: int32(p.current().Start)}
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

func (p *Parser) parseStatement() ast.Stmt {
	tok := p.current()

	switch tok.Kind {
	case lexer.TokLBrace:
		return p.parseBlock()

	case lexer.TokLet:
		return p.parseVariableDeclaration()

	case lexer.TokIf:
		return p.parseIf()

	case lexer.TokSwitch:
		return p.parseSwitch()

	case lexer.TokFor:
		return p.parseForLoop()

	case lexer.TokFunction:
		return p.parseFunctionDefinition()

	case lexer.TokBreak:
		loc := p.loc()
		p.advance()
		return &ast.Break{Loc: loc}

	case lexer.TokContinue:
		loc := p.loc()
		p.advance()
		return &ast.Continue{Loc: loc}

	case lexer.TokLeave:
		loc := p.loc()
		p.advance()
		return &ast.Leave{Loc: loc}

	case lexer.TokIdent:
		// Assignment ("a := e", "a, b := e") or expression statement ("f(...)").
		if p.peek(1).Kind == lexer.TokAssign || p.peek(1).Kind == lexer.TokComma {
			return p.parseAssignment()
		}
		return p.parseExpressionStatement()

	case lexer.TokError:
		p.error(tok.Value)
		return nil

	default:
		p.error(fmt.Sprintf("unexpected token %s", tok.Kind))
		return nil
	}
}

func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{Loc: p.loc()}

	if _, ok := p.expect(lexer.TokLBrace); !ok {
		return block
	}

	for p.current().Kind != lexer.TokRBrace && p.current().Kind != lexer.TokEOF {
		if p.current().Kind == lexer.TokError {
			p.error(p.current().Value)
			break
		}
		if stmt := p.parseStatement(); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		} else {
			p.advance()
		}
	}

	p.expect(lexer.TokRBrace)
	return block
}

func (p *Parser) parseVariableDeclaration() ast.Stmt {
	loc := p.loc()
	p.advance() // let

	vars := p.parseIdentifierList()
	if len(vars) == 0 {
		return nil
	}

	decl := &ast.VariableDeclaration{Loc: loc, Vars: vars}
	if p.match(lexer.TokAssign) {
		decl.Value = p.parseExpression()
	}
	return decl
}

func (p *Parser) parseAssignment() ast.Stmt {
	loc := p.loc()

	vars := p.parseIdentifierList()
	if len(vars) == 0 {
		return nil
	}

	if _, ok := p.expect(lexer.TokAssign); !ok {
		return nil
	}

	value := p.parseExpression()
	if value == nil {
		return nil
	}

	return &ast.Assignment{Loc: loc, Vars: vars, Value: value}
}

func (p *Parser) parseIdentifierList() []string {
	var names []string
	for {
		tok, ok := p.expect(lexer.TokIdent)
		if !ok {
			return nil
		}
		names = append(names, tok.Value)
		if !p.match(lexer.TokComma) {
			return names
		}
	}
}

func (p *Parser) parseExpressionStatement() ast.Stmt {
	loc := p.loc()
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	return &ast.ExpressionStatement{Loc: loc, Expr: expr}
}

func (p *Parser) parseIf() ast.Stmt {
	loc := p.loc()
	p.advance() // if

	cond := p.parseExpression()
	if cond == nil {
		return nil
	}

	body := p.parseBlock()
	return &ast.If{Loc: loc, Cond: cond, Body: body}
}

func (p *Parser) parseSwitch() ast.Stmt {
	loc := p.loc()
	p.advance() // switch

	expr := p.parseExpression()
	if expr == nil {
		return nil
	}

	sw := &ast.Switch{Loc: loc, Expr: expr}

	seenDefault := false
	for {
		switch p.current().Kind {
		case lexer.TokCase:
			if seenDefault {
				p.error("case after default case")
			}
			p.advance()
			value := p.parseLiteral()
			if value == nil {
				return nil
			}
			body := p.parseBlock()
			sw.Cases = append(sw.Cases, ast.SwitchCase{Loc: value.Loc, Value: value, Body: body})

		case lexer.TokDefault:
			if seenDefault {
				p.error("duplicate default case")
			}
			seenDefault = true
			caseLoc := p.loc()
			p.advance()
			body := p.parseBlock()
			sw.Cases = append(sw.Cases, ast.SwitchCase{Loc: caseLoc, Body: body})

		default:
			if len(sw.Cases) == 0 {
				p.error("switch statement without cases")
			}
			return sw
		}
	}
}

func (p *Parser) parseForLoop() ast.Stmt {
	loc := p.loc()
	p.advance() // for

	pre := p.parseBlock()
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	post := p.parseBlock()
	body := p.parseBlock()

	return &ast.ForLoop{Loc: loc, Pre: pre, Cond: cond, Post: post, Body: body}
}

func (p *Parser) parseFunctionDefinition() ast.Stmt {
	loc := p.loc()
	p.advance() // function

	nameTok, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}

	fn := &ast.FunctionDefinition{Loc: loc, Name: nameTok.Value}

	if _, ok := p.expect(lexer.TokLParen); !ok {
		return nil
	}
	if p.current().Kind != lexer.TokRParen {
		fn.Params = p.parseIdentifierList()
		if fn.Params == nil {
			return nil
		}
	}
	if _, ok := p.expect(lexer.TokRParen); !ok {
		return nil
	}

	if p.match(lexer.TokArrow) {
		fn.Returns = p.parseIdentifierList()
		if fn.Returns == nil {
			return nil
		}
	}

	fn.Body = p.parseBlock()
	return fn
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

func (p *Parser) parseExpression() ast.Expr {
	tok := p.current()

	switch tok.Kind {
	case lexer.TokNumber, lexer.TokHexNumber, lexer.TokString, lexer.TokTrue, lexer.TokFalse:
		return p.parseLiteral()

	case lexer.TokIdent:
		if p.peek(1).Kind == lexer.TokLParen {
			return p.parseFunctionCall()
		}
		loc := p.loc()
		p.advance()
		return &ast.Identifier{Loc: loc, Name: tok.Value}

	case lexer.TokError:
		p.error(tok.Value)
		return nil

	default:
		p.error(fmt.Sprintf("expected expression, got %s", tok.Kind))
		return nil
	}
}

func (p *Parser) parseLiteral() *ast.Literal {
	tok := p.current()
	loc := p.loc()

	switch tok.Kind {
	case lexer.TokNumber, lexer.TokHexNumber:
		p.advance()
		return &ast.Literal{Loc: loc, Kind: ast.NumberLit, Value: tok.Value}
	case lexer.TokString:
		p.advance()
		return &ast.Literal{Loc: loc, Kind: ast.StringLit, Value: tok.Value}
	case lexer.TokTrue:
		p.advance()
		return &ast.Literal{Loc: loc, Kind: ast.BoolLit, Value: "true"}
	case lexer.TokFalse:
		p.advance()
		return &ast.Literal{Loc: loc, Kind: ast.BoolLit, Value: "false"}
	default:
		p.error(fmt.Sprintf("expected literal, got %s", tok.Kind))
		return nil
	}
}

func (p *Parser) parseFunctionCall() ast.Expr {
	loc := p.loc()

	nameTok, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}

	call := &ast.FunctionCall{Loc: loc, Name: nameTok.Value}

	if _, ok := p.expect(lexer.TokLParen); !ok {
		return nil
	}

	if p.current().Kind != lexer.TokRParen {
		for {
			arg := p.parseExpression()
			if arg == nil {
				return nil
			}
			call.Args = append(call.Args, arg)
			if !p.match(lexer.TokComma) {
				break
			}
		}
	}

	if _, ok := p.expect(lexer.TokRParen); !ok {
		return nil
	}

	return call
}
