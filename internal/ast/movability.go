package ast

import "github.com/Ahmed-Ali/solidity/internal/dialect"

// ----------------------------------------------------------------------------
// Movability Analysis
// ----------------------------------------------------------------------------

// MovabilityContext answers whether evaluating an expression can be skipped,
// moved, or duplicated with no observable effect. It combines the dialect's
// per-builtin classification with optional per-function side-effect
// summaries for user-defined functions.
//
// The context is read-only for the duration of one pass invocation.
type MovabilityContext struct {
	Dialect *dialect.Dialect

	// Functions holds side-effect summaries for user-defined functions,
	// keyed by name. May be nil; calls to functions without a summary are
	// assumed to have arbitrary effects.
	Functions map[string]dialect.SideEffects
}

// NewMovabilityContext creates a context over the given dialect with no
// user-function summaries.
func NewMovabilityContext(d *dialect.Dialect) *MovabilityContext {
	return &MovabilityContext{Dialect: d}
}

// ExprMovable returns true if the expression is side-effect free and
// independent of mutable state: it can be removed, moved, or duplicated
// without changing observable behavior.
func (ctx *MovabilityContext) ExprMovable(expr Expr) bool {
	return ctx.ExprSideEffects(expr).Movable
}

// ExprSideEffectFree returns true if evaluating the expression performs no
// observable action, even though its result may depend on mutable state.
// Such an expression can be skipped when its result is unused.
func (ctx *MovabilityContext) ExprSideEffectFree(expr Expr) bool {
	return ctx.ExprSideEffects(expr).SideEffectFree
}

// ExprSideEffects computes the combined side effects of evaluating the
// expression, including all sub-expressions.
func (ctx *MovabilityContext) ExprSideEffects(expr Expr) dialect.SideEffects {
	if expr == nil {
		return dialect.SideEffects{Movable: true, SideEffectFree: true}
	}

	switch e := expr.(type) {
	case *Literal:
		return dialect.SideEffects{Movable: true, SideEffectFree: true}

	case *Identifier:
		// Reading a variable has no effects.
		return dialect.SideEffects{Movable: true, SideEffectFree: true}

	case *FunctionCall:
		effects := ctx.callEffects(e.Name)
		for _, arg := range e.Args {
			effects = effects.Union(ctx.ExprSideEffects(arg))
		}
		return effects

	default:
		return dialect.WorstCase()
	}
}

// CallEffectsApartFromOps computes the effects of a call ignoring the
// storage/memory operations the builtin itself performs. The store
// eliminator uses this to decide whether a store statement could be
// deleted wholesale: the store's own write is accounted for separately,
// but argument evaluation must still be movable.
func (ctx *MovabilityContext) CallEffectsApartFromOps(call *FunctionCall) dialect.SideEffects {
	effects := dialect.SideEffects{Movable: true, SideEffectFree: true}
	for _, arg := range call.Args {
		effects = effects.Union(ctx.ExprSideEffects(arg))
	}
	return effects
}

func (ctx *MovabilityContext) callEffects(name string) dialect.SideEffects {
	if b := ctx.Dialect.Builtin(name); b != nil {
		return b.Effects
	}
	if effects, ok := ctx.Functions[name]; ok {
		return effects
	}
	return dialect.WorstCase()
}
