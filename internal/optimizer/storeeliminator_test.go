package optimizer

import (
	"testing"

	"github.com/Ahmed-Ali/solidity/internal/ast"
	"github.com/Ahmed-Ali/solidity/internal/dialect"
	"github.com/Ahmed-Ali/solidity/internal/parser"
	"github.com/Ahmed-Ali/solidity/internal/printer"
)

func runStoreElimination(t *testing.T, source string, ignoreMemory bool) string {
	t.Helper()
	root, errors := parser.New(source).Parse()
	if len(errors) > 0 {
		t.Fatalf("unexpected parse errors: %v", errors)
	}
	RewriteForLoopInit(root)

	effects := FunctionSideEffects(root, dialect.EVM())
	movability := ast.NewMovabilityContext(dialect.EVM())
	movability.Functions = effects

	eliminator := NewStoreEliminator(
		dialect.EVM(), movability, effects, TrackSSAValues(root),
		ignoreMemory, DefaultLoopDepthLimit,
	)
	removeStatements(root, eliminator.Run(root))
	return printer.New(printer.Options{MinifyWhitespace: true}).Print(root)
}

func TestStoreEliminator_Storage(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"overwritten same key",
			"sstore(0, 1) sstore(0, 2)",
			"sstore(0,2)",
		},
		{
			"different keys both kept",
			"sstore(0, 1) sstore(1, 2)",
			"sstore(0,1) sstore(1,2)",
		},
		{
			"read between writes",
			"sstore(0, 1) mstore(0, sload(0)) sstore(0, 2)",
			"sstore(0,1) mstore(0,sload(0)) sstore(0,2)",
		},
		{
			"read of a different key does not interfere",
			"sstore(0, 1) mstore(0, sload(1)) sstore(0, 2)",
			"mstore(0,sload(1)) sstore(0,2)",
		},
		{
			"unknown call keeps the first write",
			"sstore(0, 1) unknown() sstore(0, 2)",
			"sstore(0,1) unknown() sstore(0,2)",
		},
		{
			"final storage write is observable",
			"sstore(0, 1)",
			"sstore(0,1)",
		},
		{
			"hex and decimal keys are the same slot",
			"sstore(0x20, 1) sstore(32, 2)",
			"sstore(32,2)",
		},
		{
			"unknown key covers nothing",
			"sstore(calldataload(0), 1) sstore(calldataload(0), 2)",
			"sstore(calldataload(0),1) sstore(calldataload(0),2)",
		},
		{
			"non-movable arguments keep the statement",
			"sstore(0, create(0, 0, 0)) sstore(0, 2)",
			"sstore(0,create(0,0,0)) sstore(0,2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runStoreElimination(t, tt.source, false)
			if got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestStoreEliminator_SSAKeys(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"same tracked variable covers",
			"let key := calldataload(7) sstore(key, 1) sstore(key, 2)",
			"let key:=calldataload(7) sstore(key,2)",
		},
		{
			"distinct tracked variables stay related",
			"let a := calldataload(0) let b := calldataload(32) sstore(a, 1) sstore(b, 2)",
			"let a:=calldataload(0) let b:=calldataload(32) sstore(a,1) sstore(b,2)",
		},
		{
			"loop-scoped variable is not a stable symbol",
			"for { } calldataload(0) { } { let k := calldataload(4) sstore(k, 1) } sstore(0, 2)",
			"for { } calldataload(0) { } {let k:=calldataload(4) sstore(k,1)} sstore(0,2)",
		},
		{
			"same constant variable covers",
			"let key := 42 sstore(key, 1) sstore(key, 2)",
			"let key:=42 sstore(key,2)",
		},
		{
			"variable resolves against literal key",
			"let key := 42 sstore(key, 1) sstore(42, 2)",
			"let key:=42 sstore(42,2)",
		},
		{
			"reassigned variable is not trusted",
			"let key key := 40 sstore(key, 1) key := 41 sstore(key, 2)",
			"let key key:=40 sstore(key,1) key:=41 sstore(key,2)",
		},
		{
			"chained definition resolves",
			"let a := 5 let b := a sstore(b, 1) sstore(5, 2)",
			"let a:=5 let b:=a sstore(5,2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runStoreElimination(t, tt.source, false)
			if got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestStoreEliminator_Memory(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"memory dead at end of program",
			"mstore(0, 1)",
			"",
		},
		{
			"returned memory is observable",
			"mstore(0, 1) return(0, 32)",
			"mstore(0,1) return(0,32)",
		},
		{
			"covered word write removed",
			"mstore(0, 1) mstore(0, 2) return(0, 32)",
			"mstore(0,2) return(0,32)",
		},
		{
			"partial overwrite keeps both",
			"mstore(0, 1) mstore8(0, 2) return(0, 32)",
			"mstore(0,1) mstore8(0,2) return(0,32)",
		},
		{
			"disjoint read does not observe the write",
			"mstore(0, 1) mstore(100, mload(64)) return(100, 32)",
			"mstore(100,mload(64)) return(100,32)",
		},
		{
			"hash reads its area",
			"mstore(0, 1) sstore(0, keccak256(0, 32))",
			"mstore(0,1) sstore(0,keccak256(0,32))",
		},
		{
			"copy covers word writes",
			"mstore(0, 1) calldatacopy(0, 0, 64) return(0, 64)",
			"calldatacopy(0,0,64) return(0,64)",
		},
		{
			"msize observes everything",
			"mstore(0, 1) sstore(0, msize())",
			"mstore(0,1) sstore(0,msize())",
		},
		{
			"log reads its area",
			"mstore(0, 1) log0(0, 32)",
			"mstore(0,1) log0(0,32)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runStoreElimination(t, tt.source, false)
			if got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestStoreEliminator_IgnoreMemory(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"trivially dead memory write survives",
			"mstore(0, 1)",
			"mstore(0,1)",
		},
		{
			"covered memory write survives",
			"mstore(0, 1) mstore(0, 2)",
			"mstore(0,1) mstore(0,2)",
		},
		{
			"storage analysis still runs",
			"mstore(0, 1) sstore(0, 1) sstore(0, 2)",
			"mstore(0,1) sstore(0,2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runStoreElimination(t, tt.source, true)
			if got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestStoreEliminator_ControlFlow(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"read in branch keeps the write",
			"sstore(0, 1) if calldataload(0) { mstore(0, sload(0)) } sstore(0, 2)",
			"sstore(0,1) if calldataload(0) {mstore(0,sload(0))} sstore(0,2)",
		},
		{
			"write in branch does not cover",
			"sstore(0, 1) if calldataload(0) { sstore(0, 2) }",
			"sstore(0,1) if calldataload(0) {sstore(0,2)}",
		},
		{
			"branch write covered by later write",
			"if calldataload(0) { sstore(0, 1) } sstore(0, 2)",
			"if calldataload(0) { } sstore(0,2)",
		},
		{
			"covering writes in every switch branch",
			"sstore(0, 1) switch calldataload(0) case 0 { sstore(0, 2) } default { sstore(0, 3) }",
			"switch calldataload(0) case 0 {sstore(0,2)} default {sstore(0,3)}",
		},
		{
			"switch without default keeps the earlier write",
			"sstore(0, 1) switch calldataload(0) case 0 { sstore(0, 2) }",
			"sstore(0,1) switch calldataload(0) case 0 {sstore(0,2)}",
		},
		{
			"loop body read keeps the write",
			"sstore(0, 1) for { } calldataload(0) { } { mstore(0, sload(0)) }",
			"sstore(0,1) for { } calldataload(0) { } {mstore(0,sload(0))}",
		},
		{
			"loop-carried read keeps the memory write",
			"for { } calldataload(0) { } { sstore(0, mload(0)) mstore(0, 1) }",
			"for { } calldataload(0) { } {sstore(0,mload(0)) mstore(0,1)}",
		},
		{
			"leave makes storage observable",
			"function f() { sstore(0, 1) if calldataload(0) { leave } sstore(0, 2) } f()",
			"function f() {sstore(0,1) if calldataload(0) {leave} sstore(0,2)} f()",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runStoreElimination(t, tt.source, false)
			if got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestStoreEliminator_Functions(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"store at function end is observable",
			"function f() { sstore(0, 1) } f()",
			"function f() {sstore(0,1)} f()",
		},
		{
			"covered store inside function removed",
			"function f() { sstore(0, 1) sstore(0, 2) } f()",
			"function f() {sstore(0,2)} f()",
		},
		{
			"writing callee keeps earlier stores",
			"sstore(0, 1) function f() { sstore(1, 2) } f() sstore(0, 3)",
			"sstore(0,1) function f() {sstore(1,2)} f() sstore(0,3)",
		},
		{
			"pure callee does not interfere",
			"sstore(0, 1) function g(a) -> r { r := add(a, 1) } pop(g(1)) sstore(0, 2)",
			"function g(a)->r {r:=add(a,1)} pop(g(1)) sstore(0,2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runStoreElimination(t, tt.source, false)
			if got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}
