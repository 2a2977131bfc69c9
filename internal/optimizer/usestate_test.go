package optimizer

import "testing"

func TestJoin_LatticeLaws(t *testing.T) {
	states := []UseState{Unused, Undecided, Used}

	for _, a := range states {
		if join(a, a) != a {
			t.Errorf("join(%v, %v) = %v, want %v (idempotence)", a, a, join(a, a), a)
		}
		for _, b := range states {
			if join(a, b) != join(b, a) {
				t.Errorf("join(%v, %v) != join(%v, %v) (commutativity)", a, b, b, a)
			}
			for _, c := range states {
				if join(join(a, b), c) != join(a, join(b, c)) {
					t.Errorf("associativity violated for %v, %v, %v", a, b, c)
				}
			}
		}
	}
}

func TestJoin_Order(t *testing.T) {
	tests := []struct {
		a, b, want UseState
	}{
		{Unused, Unused, Unused},
		{Unused, Undecided, Undecided},
		{Unused, Used, Used},
		{Undecided, Undecided, Undecided},
		{Undecided, Used, Used},
		{Used, Used, Used},
	}
	for _, tt := range tests {
		if got := join(tt.a, tt.b); got != tt.want {
			t.Errorf("join(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestUseState_String(t *testing.T) {
	if Unused.String() != "Unused" || Undecided.String() != "Undecided" || Used.String() != "Used" {
		t.Errorf("unexpected names: %v %v %v", Unused, Undecided, Used)
	}
	if UseState(9).String() != "UseState(9)" {
		t.Errorf("out-of-range formatting: %v", UseState(9))
	}
}

func TestJoinInto(t *testing.T) {
	target := map[string]UseState{"a": Unused, "b": Undecided}
	source := map[string]UseState{"b": Used, "c": Unused}

	joinInto(target, source)

	want := map[string]UseState{"a": Unused, "b": Used, "c": Unused}
	for k, v := range want {
		if target[k] != v {
			t.Errorf("target[%q] = %v, want %v", k, target[k], v)
		}
	}
	if len(target) != len(want) {
		t.Errorf("len = %d, want %d", len(target), len(want))
	}
}
