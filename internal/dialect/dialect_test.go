package dialect

import "testing"

func TestEVM_Lookup(t *testing.T) {
	d := EVM()

	if d.Builtin("nonsense") != nil {
		t.Error("unknown name should not resolve to a builtin")
	}
	if !d.IsBuiltin("add") {
		t.Error("add should be a builtin")
	}

	add := d.Builtin("add")
	if add.Params != 2 || add.Returns != 1 {
		t.Errorf("add: got %d params, %d returns", add.Params, add.Returns)
	}
	if !add.Effects.Movable || !add.Effects.SideEffectFree {
		t.Error("add should be movable and side-effect free")
	}
	if len(add.Ops) != 0 {
		t.Error("add should perform no storage/memory operations")
	}
}

func TestEVM_StoreSchemas(t *testing.T) {
	d := EVM()

	sstore := d.Builtin("sstore")
	if len(sstore.Ops) != 1 {
		t.Fatalf("sstore: got %d ops, want 1", len(sstore.Ops))
	}
	op := sstore.Ops[0]
	if op.Location != Storage || op.Effect != Write || op.StartArg != 0 {
		t.Errorf("sstore op: got %+v", op)
	}
	if sstore.Effects.Movable || sstore.Effects.SideEffectFree {
		t.Error("sstore must not be movable or side-effect free")
	}

	mstore := d.Builtin("mstore")
	op = mstore.Ops[0]
	if op.Location != Memory || op.Effect != Write || op.StartArg != 0 || op.Length != "32" {
		t.Errorf("mstore op: got %+v", op)
	}

	mstore8 := d.Builtin("mstore8")
	if mstore8.Ops[0].Length != "1" {
		t.Errorf("mstore8 length: got %q, want 1", mstore8.Ops[0].Length)
	}

	keccak := d.Builtin("keccak256")
	op = keccak.Ops[0]
	if op.Location != Memory || op.Effect != Read || op.StartArg != 0 || op.LengthArg != 1 {
		t.Errorf("keccak256 op: got %+v", op)
	}

	copyOp := d.Builtin("calldatacopy").Ops[0]
	if copyOp.Effect != Write || copyOp.StartArg != 0 || copyOp.LengthArg != 2 {
		t.Errorf("calldatacopy op: got %+v", copyOp)
	}
}

func TestEVM_CallSchemas(t *testing.T) {
	d := EVM()

	call := d.Builtin("call")
	if call.Params != 7 {
		t.Errorf("call params: got %d, want 7", call.Params)
	}
	var storageWrites, memoryWrites, reads int
	for _, op := range call.Ops {
		switch {
		case op.Location == Storage && op.Effect == Write:
			storageWrites++
		case op.Location == Memory && op.Effect == Write:
			memoryWrites++
		case op.Effect == Read:
			reads++
		}
	}
	if storageWrites != 1 || memoryWrites != 1 || reads != 2 {
		t.Errorf("call ops: %d storage writes, %d memory writes, %d reads", storageWrites, memoryWrites, reads)
	}

	static := d.Builtin("staticcall")
	for _, op := range static.Ops {
		if op.Location == Storage && op.Effect == Write {
			t.Error("staticcall must not write storage")
		}
	}
}

func TestSideEffects_Union(t *testing.T) {
	a := SideEffects{Movable: true, SideEffectFree: true}
	b := SideEffects{WritesStorage: true}

	u := a.Union(b)
	if u.Movable || u.SideEffectFree {
		t.Error("union with an impure set must not be movable or side-effect free")
	}
	if !u.WritesStorage {
		t.Error("union must keep the storage write")
	}

	if got := a.Union(a); got != a {
		t.Errorf("union should be idempotent: got %+v", got)
	}
}

func TestWorstCase(t *testing.T) {
	w := WorstCase()
	if !w.ReadsStorage || !w.WritesStorage || !w.ReadsMemory || !w.WritesMemory {
		t.Errorf("worst case must read and write everything: %+v", w)
	}
	if w.Movable || w.SideEffectFree || w.Pure() {
		t.Error("worst case must not be pure")
	}
}
