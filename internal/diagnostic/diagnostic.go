// Package diagnostic provides error reporting for Yul semantic analysis.
//
// Diagnostics carry byte-accurate source positions and render with a
// source excerpt and caret, the format compilers conventionally use.
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/Ahmed-Ali/solidity/internal/lexer"
)

// Severity represents the severity level of a diagnostic.
type Severity uint8

const (
	// Error makes the input unsuitable for optimization.
	Error Severity = iota
	// Warning is a non-blocking issue.
	Warning
	// Note provides additional context for another diagnostic.
	Note
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// Position represents a position in source code.
type Position struct {
	Offset int // Byte offset (0-based)
	Line   int // Line number (1-based)
	Column int // Column number (1-based)
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	Severity Severity
	Message  string
	Pos      Position
}

// Error returns a formatted error string.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Pos.Line, d.Pos.Column, d.Severity, d.Message)
}

// List collects diagnostics during analysis.
type List struct {
	diagnostics []Diagnostic
	lineIndex   *lexer.LineIndex
	source      string
	hasErrors   bool
}

// NewList creates a new diagnostic list for the given source.
func NewList(source string) *List {
	return &List{
		lineIndex: lexer.NewLineIndex(source),
		source:    source,
	}
}

// Add adds a diagnostic to the list.
func (l *List) Add(d Diagnostic) {
	l.diagnostics = append(l.diagnostics, d)
	if d.Severity == Error {
		l.hasErrors = true
	}
}

// AddError adds an error diagnostic at the given byte offset.
func (l *List) AddError(offset int, message string) {
	l.Add(Diagnostic{
		Severity: Error,
		Message:  message,
		Pos:      l.MakePosition(offset),
	})
}

// AddErrorf adds a formatted error diagnostic at the given byte offset.
func (l *List) AddErrorf(offset int, format string, args ...any) {
	l.AddError(offset, fmt.Sprintf(format, args...))
}

// AddWarning adds a warning diagnostic at the given byte offset.
func (l *List) AddWarning(offset int, message string) {
	l.Add(Diagnostic{
		Severity: Warning,
		Message:  message,
		Pos:      l.MakePosition(offset),
	})
}

// MakePosition converts a byte offset to a Position.
func (l *List) MakePosition(offset int) Position {
	line, col := l.lineIndex.ByteOffsetToLineColumn(offset)
	return Position{
		Offset: offset,
		Line:   line + 1, // Convert to 1-based
		Column: col + 1,  // Convert to 1-based
	}
}

// HasErrors returns true if there are any error-level diagnostics.
func (l *List) HasErrors() bool {
	return l.hasErrors
}

// Diagnostics returns all collected diagnostics.
func (l *List) Diagnostics() []Diagnostic {
	return l.diagnostics
}

// Errors returns only error-level diagnostics.
func (l *List) Errors() []Diagnostic {
	var errors []Diagnostic
	for _, d := range l.diagnostics {
		if d.Severity == Error {
			errors = append(errors, d)
		}
	}
	return errors
}

// Count returns the total number of diagnostics.
func (l *List) Count() int {
	return len(l.diagnostics)
}

// Format formats all diagnostics as a human-readable string.
func (l *List) Format() string {
	if len(l.diagnostics) == 0 {
		return ""
	}

	var sb strings.Builder
	for i := range l.diagnostics {
		sb.WriteString(l.FormatDiagnostic(&l.diagnostics[i]))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatDiagnostic formats a single diagnostic with source context.
func (l *List) FormatDiagnostic(d *Diagnostic) string {
	var sb strings.Builder

	// Main error line
	sb.WriteString(fmt.Sprintf("%d:%d: %s: %s\n",
		d.Pos.Line, d.Pos.Column, d.Severity, d.Message))

	// Add source context with a caret indicator
	sourceLine := l.getSourceLine(d.Pos.Line)
	if sourceLine != "" {
		sb.WriteString(fmt.Sprintf("    %s\n", sourceLine))
		sb.WriteString(strings.Repeat(" ", d.Pos.Column-1+4))
		sb.WriteString("^\n")
	}

	return sb.String()
}

// getSourceLine returns the 1-based line of the source, without a
// trailing newline. Empty for out-of-range lines.
func (l *List) getSourceLine(line int) string {
	lines := strings.Split(l.source, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line-1], "\r")
}
