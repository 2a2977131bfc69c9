package optimizer

import (
	"github.com/Ahmed-Ali/solidity/internal/analyzer"
	"github.com/Ahmed-Ali/solidity/internal/ast"
	"github.com/Ahmed-Ali/solidity/internal/dce"
	"github.com/Ahmed-Ali/solidity/internal/dialect"
	"github.com/Ahmed-Ali/solidity/internal/parser"
	"github.com/Ahmed-Ali/solidity/internal/printer"
)

// DefaultLoopDepthLimit is the loop nesting depth at which the analyses
// switch from the exact two-pass loop treatment to the cheap
// approximation. Deeply nested loops would otherwise cost 2^depth body
// traversals.
const DefaultLoopDepthLimit = 6

// Options controls an optimization run.
type Options struct {
	// IgnoreMemory restricts the store eliminator to storage: memory
	// writes are neither tracked nor removed. Meant for pipelines where
	// a separate, more precise memory pass runs and must not be
	// double-optimized against.
	IgnoreMemory bool

	// LoopDepthLimit overrides DefaultLoopDepthLimit when positive.
	LoopDepthLimit int

	// RemoveUnusedFunctions also deletes function definitions that are
	// unreachable from the code outside any function.
	RemoveUnusedFunctions bool

	// MinifyWhitespace prints the result with minimal whitespace.
	MinifyWhitespace bool
}

// Result contains the optimization output.
type Result struct {
	// Optimized IR code
	Code string

	// Errors encountered while parsing or analyzing the input
	Errors []Error

	// Statistics about the run
	Stats Stats
}

// Error represents an input diagnostic.
type Error struct {
	Message string
	Line    int
	Column  int
}

// Stats provides optimization statistics.
type Stats struct {
	OriginalSize       int
	OptimizedSize      int
	AssignmentsRemoved int
	StoresRemoved      int
	FunctionsRemoved   int
}

// Optimizer runs the dead-code elimination pipeline.
type Optimizer struct {
	options Options
	dialect *dialect.Dialect
}

// New creates a new optimizer with the given options.
func New(options Options) *Optimizer {
	if options.LoopDepthLimit <= 0 {
		options.LoopDepthLimit = DefaultLoopDepthLimit
	}
	return &Optimizer{options: options, dialect: dialect.EVM()}
}

// Optimize parses, optimizes, and prints the given IR source.
//
// Parse and semantic errors are reported in Result.Errors together with the
// unmodified source. The returned error is non-nil only for an internal
// invariant failure, which indicates a bug rather than bad input.
func (o *Optimizer) Optimize(source string) (Result, error) {
	result := Result{
		Stats: Stats{OriginalSize: len(source)},
	}

	root, parseErrors := parser.New(source).Parse()
	if len(parseErrors) > 0 {
		for _, err := range parseErrors {
			result.Errors = append(result.Errors, Error{
				Message: err.Message,
				Line:    err.Line,
				Column:  err.Column,
			})
		}
		result.Code = source
		result.Stats.OptimizedSize = len(source)
		return result, nil
	}

	// Semantic checks run on the untouched tree; a program that does not
	// resolve is passed through like one that does not parse.
	if diags := analyzer.Analyze(root, source, o.dialect); diags.HasErrors() {
		for _, d := range diags.Errors() {
			result.Errors = append(result.Errors, Error{
				Message: d.Message,
				Line:    d.Pos.Line,
				Column:  d.Pos.Column,
			})
		}
		result.Code = source
		result.Stats.OptimizedSize = len(source)
		return result, nil
	}

	stats, err := o.OptimizeBlock(root)
	if err != nil {
		return Result{}, err
	}

	result.Code = printer.New(printer.Options{
		MinifyWhitespace: o.options.MinifyWhitespace,
	}).Print(root)
	result.Stats = stats
	result.Stats.OriginalSize = len(source)
	result.Stats.OptimizedSize = len(result.Code)

	return result, nil
}

// OptimizeBlock optimizes a pre-parsed program in place. The block must
// have been numbered (the parser does this; hand-built trees need
// ast.Renumber first).
func (o *Optimizer) OptimizeBlock(root *ast.Block) (stats Stats, err error) {
	defer recoverInvariant(&err)

	// 1. Empty every for loop's init block; the analyses require it.
	RewriteForLoopInit(root)

	// 2. Optionally drop functions nothing can reach, so the later
	// passes do not analyze them.
	if o.options.RemoveUnusedFunctions {
		stats.FunctionsRemoved = dce.RemoveUnusedFunctions(root)
	}

	// 3. Remove assignments whose values are never read.
	functionEffects := FunctionSideEffects(root, o.dialect)
	movability := ast.NewMovabilityContext(o.dialect)
	movability.Functions = functionEffects

	assignRemovals := NewAssignEliminator(movability, o.options.LoopDepthLimit).Run(root)
	removeStatements(root, assignRemovals)
	stats.AssignmentsRemoved = len(assignRemovals)

	// 4. Remove storage/memory writes that are never read. Summaries are
	// recomputed: the first step may have removed effects.
	functionEffects = FunctionSideEffects(root, o.dialect)
	movability.Functions = functionEffects

	store := NewStoreEliminator(
		o.dialect,
		movability,
		functionEffects,
		TrackSSAValues(root),
		o.options.IgnoreMemory,
		o.options.LoopDepthLimit,
	)
	storeRemovals := store.Run(root)
	removeStatements(root, storeRemovals)
	stats.StoresRemoved = len(storeRemovals)

	return stats, nil
}
