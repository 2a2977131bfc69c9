// Package api provides the public API for the Yul dead-code optimizer.
//
// This package is intended for programmatic use of the optimizer.
// For CLI usage, see cmd/yulopt.
package api

import (
	"github.com/Ahmed-Ali/solidity/internal/optimizer"
)

// OptimizeOptions controls optimization behavior.
type OptimizeOptions struct {
	// IgnoreMemory restricts store elimination to storage writes.
	// Memory writes are left untouched; use this when a separate
	// memory-aware pass runs elsewhere in the pipeline.
	IgnoreMemory bool

	// LoopDepthLimit bounds the exact loop analysis depth. Loops nested
	// deeper than the limit are analyzed with a cheaper, coarser
	// approximation. Zero selects the default limit.
	LoopDepthLimit int

	// RemoveUnusedFunctions also deletes function definitions that are
	// unreachable from the code outside any function.
	RemoveUnusedFunctions bool

	// MinifyWhitespace prints the result with minimal whitespace.
	MinifyWhitespace bool
}

// OptimizeResult contains the optimization output.
type OptimizeResult struct {
	// Code is the optimized Yul source code.
	Code string

	// Errors contains any parse errors encountered in the input.
	// If non-empty, Code is the unmodified input.
	Errors []string

	// OriginalSize is the size of the input in bytes.
	OriginalSize int

	// OptimizedSize is the size of the output in bytes.
	OptimizedSize int

	// AssignmentsRemoved counts removed redundant assignments.
	AssignmentsRemoved int

	// StoresRemoved counts removed redundant store calls.
	StoresRemoved int

	// FunctionsRemoved counts removed unreachable function definitions.
	FunctionsRemoved int
}

// Optimize runs dead-code elimination on Yul source code with default
// options: both storage and memory stores are candidates and the output
// keeps readable formatting.
func Optimize(source string) (OptimizeResult, error) {
	return OptimizeWithOptions(source, OptimizeOptions{})
}

// OptimizeWithOptions runs dead-code elimination with custom options.
//
// Malformed input is reported through OptimizeResult.Errors, not the
// error return. A non-nil error indicates an internal failure.
func OptimizeWithOptions(source string, opts OptimizeOptions) (OptimizeResult, error) {
	o := optimizer.New(optimizer.Options{
		IgnoreMemory:          opts.IgnoreMemory,
		LoopDepthLimit:        opts.LoopDepthLimit,
		RemoveUnusedFunctions: opts.RemoveUnusedFunctions,
		MinifyWhitespace:      opts.MinifyWhitespace,
	})

	result, err := o.Optimize(source)
	if err != nil {
		return OptimizeResult{}, err
	}

	// Convert errors
	errors := make([]string, len(result.Errors))
	for i, e := range result.Errors {
		errors[i] = e.Message
	}

	return OptimizeResult{
		Code:               result.Code,
		Errors:             errors,
		OriginalSize:       result.Stats.OriginalSize,
		OptimizedSize:      result.Stats.OptimizedSize,
		AssignmentsRemoved: result.Stats.AssignmentsRemoved,
		StoresRemoved:      result.Stats.StoresRemoved,
		FunctionsRemoved:   result.Stats.FunctionsRemoved,
	}, nil
}
