// Package lexer provides tokenization for Yul-style IR source code.
//
// The lexer converts an IR source string into a sequence of tokens,
// handling:
// - Keywords and identifiers (identifiers may contain '$' and '.')
// - Numeric literals (decimal and hex)
// - String literals with escapes
// - Punctuation (":=", "->", braces, parentheses, comma)
// - Comments (line and block)
package lexer

// ----------------------------------------------------------------------------
// Token Types
// ----------------------------------------------------------------------------

// TokenKind represents the type of a token.
type TokenKind uint8

const (
	TokError TokenKind = iota
	TokEOF

	// Literals
	TokNumber
	TokHexNumber
	TokString
	TokTrue
	TokFalse

	// Identifiers
	TokIdent

	// Keywords
	TokBreak
	TokCase
	TokContinue
	TokDefault
	TokFor
	TokFunction
	TokIf
	TokLeave
	TokLet
	TokSwitch

	// Punctuation
	TokAssign // :=
	TokArrow  // ->
	TokLBrace // {
	TokRBrace // }
	TokLParen // (
	TokRParen // )
	TokComma  // ,
)

// String returns the string representation of a token kind.
func (k TokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return "unknown"
}

var tokenNames = [...]string{
	TokError:     "error",
	TokEOF:       "EOF",
	TokNumber:    "number",
	TokHexNumber: "hex number",
	TokString:    "string",
	TokTrue:      "true",
	TokFalse:     "false",
	TokIdent:     "identifier",
	TokBreak:     "break",
	TokCase:      "case",
	TokContinue:  "continue",
	TokDefault:   "default",
	TokFor:       "for",
	TokFunction:  "function",
	TokIf:        "if",
	TokLeave:     "leave",
	TokLet:       "let",
	TokSwitch:    "switch",
	TokAssign:    ":=",
	TokArrow:     "->",
	TokLBrace:    "{",
	TokRBrace:    "}",
	TokLParen:    "(",
	TokRParen:    ")",
	TokComma:     ",",
}

// ----------------------------------------------------------------------------
// Token
// ----------------------------------------------------------------------------

// Token represents a lexical token.
type Token struct {
	Kind  TokenKind
	Start int    // Byte offset in source
	End   int    // Byte offset of end (exclusive)
	Value string // For identifiers and literals
}

// Text returns the source text of the token.
func (t Token) Text(source string) string {
	if t.Start >= 0 && t.End <= len(source) {
		return source[t.Start:t.End]
	}
	return ""
}

// ----------------------------------------------------------------------------
// Keywords
// ----------------------------------------------------------------------------

// Keywords maps keyword strings to their token kinds.
var Keywords = map[string]TokenKind{
	"break":    TokBreak,
	"case":     TokCase,
	"continue": TokContinue,
	"default":  TokDefault,
	"false":    TokFalse,
	"for":      TokFor,
	"function": TokFunction,
	"if":       TokIf,
	"leave":    TokLeave,
	"let":      TokLet,
	"switch":   TokSwitch,
	"true":     TokTrue,
}

// ----------------------------------------------------------------------------
// Lexer
// ----------------------------------------------------------------------------

// Lexer tokenizes IR source code.
type Lexer struct {
	source string
	pos    int
	tokens []Token
}

// New creates a new lexer for the given source.
func New(source string) *Lexer {
	return &Lexer{
		source: source,
		tokens: make([]Token, 0, len(source)/4), // Estimate
	}
}

// Tokenize returns all tokens in the source.
func (l *Lexer) Tokenize() []Token {
	for {
		tok := l.Next()
		l.tokens = append(l.tokens, tok)
		if tok.Kind == TokEOF || tok.Kind == TokError {
			break
		}
	}
	return l.tokens
}

// Next returns the next token.
func (l *Lexer) Next() Token {
	l.skipWhitespaceAndComments()

	if l.pos >= len(l.source) {
		return Token{Kind: TokEOF, Start: l.pos, End: l.pos}
	}

	ch := l.source[l.pos]

	if isIdentStart(ch) {
		return l.scanIdentOrKeyword()
	}

	if isDigit(ch) {
		return l.scanNumber()
	}

	if ch == '"' {
		return l.scanString()
	}

	return l.scanPunctuation()
}

// ----------------------------------------------------------------------------
// Scanning Helpers
// ----------------------------------------------------------------------------

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.source) {
		ch := l.source[l.pos]

		if ch == ' ' || ch == '\n' || ch == '\t' || ch == '\r' {
			l.pos++
			continue
		}

		// Line comment
		if ch == '/' && l.pos+1 < len(l.source) && l.source[l.pos+1] == '/' {
			l.pos += 2
			for l.pos < len(l.source) && l.source[l.pos] != '\n' {
				l.pos++
			}
			continue
		}

		// Block comment
		if ch == '/' && l.pos+1 < len(l.source) && l.source[l.pos+1] == '*' {
			l.pos += 2
			for l.pos+1 < len(l.source) {
				if l.source[l.pos] == '*' && l.source[l.pos+1] == '/' {
					l.pos += 2
					break
				}
				l.pos++
			}
			continue
		}

		break
	}
}

func (l *Lexer) scanIdentOrKeyword() Token {
	start := l.pos
	for l.pos < len(l.source) && isIdentContinue(l.source[l.pos]) {
		l.pos++
	}

	text := l.source[start:l.pos]

	if kind, ok := Keywords[text]; ok {
		return Token{Kind: kind, Start: start, End: l.pos, Value: text}
	}

	return Token{Kind: TokIdent, Start: start, End: l.pos, Value: text}
}

func (l *Lexer) scanNumber() Token {
	start := l.pos
	kind := TokNumber

	if l.pos+1 < len(l.source) && l.source[l.pos] == '0' &&
		(l.source[l.pos+1] == 'x' || l.source[l.pos+1] == 'X') {
		kind = TokHexNumber
		l.pos += 2
		if l.pos >= len(l.source) || !isHexDigit(l.source[l.pos]) {
			return Token{Kind: TokError, Start: start, End: l.pos, Value: "incomplete hex number"}
		}
		for l.pos < len(l.source) && isHexDigit(l.source[l.pos]) {
			l.pos++
		}
	} else {
		for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
			l.pos++
		}
	}

	// A number must not run directly into an identifier: "1abc" is an error.
	if l.pos < len(l.source) && isIdentStart(l.source[l.pos]) {
		return Token{Kind: TokError, Start: start, End: l.pos, Value: "invalid number literal"}
	}

	return Token{Kind: kind, Start: start, End: l.pos, Value: l.source[start:l.pos]}
}

func (l *Lexer) scanString() Token {
	start := l.pos
	l.pos++ // opening quote

	var value []byte
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if ch == '"' {
			l.pos++
			return Token{Kind: TokString, Start: start, End: l.pos, Value: string(value)}
		}
		if ch == '\n' {
			break
		}
		if ch == '\\' && l.pos+1 < len(l.source) {
			l.pos++
			esc := l.source[l.pos]
			switch esc {
			case 'n':
				value = append(value, '\n')
			case 't':
				value = append(value, '\t')
			case '\\', '"', '\'':
				value = append(value, esc)
			default:
				value = append(value, '\\', esc)
			}
			l.pos++
			continue
		}
		value = append(value, ch)
		l.pos++
	}

	return Token{Kind: TokError, Start: start, End: l.pos, Value: "unterminated string literal"}
}

func (l *Lexer) scanPunctuation() Token {
	start := l.pos
	ch := l.source[l.pos]
	l.pos++

	var next byte
	if l.pos < len(l.source) {
		next = l.source[l.pos]
	}

	switch ch {
	case ':':
		if next == '=' {
			l.pos++
			return Token{Kind: TokAssign, Start: start, End: l.pos}
		}
		return Token{Kind: TokError, Start: start, End: l.pos, Value: "expected := after :"}
	case '-':
		if next == '>' {
			l.pos++
			return Token{Kind: TokArrow, Start: start, End: l.pos}
		}
		return Token{Kind: TokError, Start: start, End: l.pos, Value: "expected -> after -"}
	case '{':
		return Token{Kind: TokLBrace, Start: start, End: l.pos}
	case '}':
		return Token{Kind: TokRBrace, Start: start, End: l.pos}
	case '(':
		return Token{Kind: TokLParen, Start: start, End: l.pos}
	case ')':
		return Token{Kind: TokRParen, Start: start, End: l.pos}
	case ',':
		return Token{Kind: TokComma, Start: start, End: l.pos}
	}

	return Token{Kind: TokError, Start: start, End: l.pos, Value: "unexpected character"}
}

// ----------------------------------------------------------------------------
// Character Classification
// ----------------------------------------------------------------------------

// ASCII lookup tables for fast character classification.
var (
	// asciiIdentStart[c] is true if ASCII byte c can start an identifier
	asciiIdentStart [128]bool
	// asciiIdentContinue[c] is true if ASCII byte c can continue an identifier
	asciiIdentContinue [128]bool
)

func init() {
	for c := 'a'; c <= 'z'; c++ {
		asciiIdentStart[c] = true
		asciiIdentContinue[c] = true
	}
	for c := 'A'; c <= 'Z'; c++ {
		asciiIdentStart[c] = true
		asciiIdentContinue[c] = true
	}
	// Compiler-generated names use '$' and '.'.
	asciiIdentStart['_'] = true
	asciiIdentContinue['_'] = true
	asciiIdentStart['$'] = true
	asciiIdentContinue['$'] = true
	asciiIdentContinue['.'] = true

	for c := '0'; c <= '9'; c++ {
		asciiIdentContinue[c] = true
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(ch byte) bool {
	return ch < 128 && asciiIdentStart[ch]
}

func isIdentContinue(ch byte) bool {
	return ch < 128 && asciiIdentContinue[ch]
}
