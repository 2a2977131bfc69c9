package printer

import (
	"testing"

	"github.com/Ahmed-Ali/solidity/internal/parser"
)

func printSource(t *testing.T, source string, options Options) string {
	t.Helper()
	root, errors := parser.New(source).Parse()
	if len(errors) > 0 {
		t.Fatalf("unexpected parse errors: %v", errors)
	}
	return New(options).Print(root)
}

func TestPrint_Pretty(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"declaration",
			"let x := 1",
			"let x := 1\n",
		},
		{
			"declaration without value",
			"let x",
			"let x\n",
		},
		{
			"assignment",
			"let x := 1 x := add(x, 1)",
			"let x := 1\nx := add(x, 1)\n",
		},
		{
			"multi assignment",
			"let a, b := f() a, b := f()",
			"let a, b := f()\na, b := f()\n",
		},
		{
			"if",
			"if lt(x, 10) { x := 1 }",
			"if lt(x, 10) {\n    x := 1\n}\n",
		},
		{
			"empty block",
			"if x { }",
			"if x { }\n",
		},
		{
			"nested block",
			"{ let x := 1 }",
			"let x := 1\n",
		},
		{
			"for",
			"for { let i := 0 } lt(i, 10) { i := add(i, 1) } { }",
			"for {\n    let i := 0\n} lt(i, 10) {\n    i := add(i, 1)\n} { }\n",
		},
		{
			"function",
			"function f(a, b) -> r { r := add(a, b) }",
			"function f(a, b) -> r {\n    r := add(a, b)\n}\n",
		},
		{
			"switch",
			"switch x case 0 { y := 1 } default { y := 2 }",
			"switch x\ncase 0 {\n    y := 1\n}\ndefault {\n    y := 2\n}\n",
		},
		{
			"string literal",
			`let s := "a\"b"`,
			"let s := \"a\\\"b\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := printSource(t, tt.source, Options{})
			if got != tt.want {
				t.Errorf("got:\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestPrint_Minified(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"declaration",
			"let x := 1",
			"let x:=1",
		},
		{
			"two statements",
			"let x := 1 sstore(0, x)",
			"let x:=1 sstore(0,x)",
		},
		{
			"if",
			"if lt(x, 10) { x := 1 }",
			"if lt(x,10) {x:=1}",
		},
		{
			"function",
			"function f(a, b) -> r { r := a }",
			"function f(a,b)->r {r:=a}",
		},
		{
			"switch",
			"switch x case 0 { y := 1 } default { y := 2 }",
			"switch x case 0 {y:=1} default {y:=2}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := printSource(t, tt.source, Options{MinifyWhitespace: true})
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrint_RoundTrip(t *testing.T) {
	sources := []string{
		"let x := 1",
		"let a, b := f(1, 0x20, \"s\")",
		"if lt(x, 10) { x := add(x, 1) }",
		"switch calldataload(0) case 0 { sstore(0, 1) } case 1 { } default { revert(0, 0) }",
		"for { let i := 0 } lt(i, 10) { i := add(i, 1) } { mstore(i, i) break continue }",
		"function f(a) -> r { r := a leave }",
	}

	for _, source := range sources {
		for _, minify := range []bool{false, true} {
			printed := printSource(t, source, Options{MinifyWhitespace: minify})

			// Printing the reparsed output must reproduce it exactly.
			again := printSource(t, printed, Options{MinifyWhitespace: minify})
			if again != printed {
				t.Errorf("round trip not stable for %q (minify=%v):\nfirst:  %q\nsecond: %q",
					source, minify, printed, again)
			}
		}
	}
}
