// Package dialect defines the EVM-flavoured builtin functions of the IR
// together with the metadata the optimizer needs about them:
//
// - side-effect classification (movability, storage/memory reads and writes)
// - the storage/memory operations a call performs, with symbolic addressing
//   (which argument holds the key/start/length)
//
// The table is data, not behavior: analyses interpret it.
package dialect

// Location identifies the abstract location space an operation affects.
type Location uint8

const (
	// Storage is the persistent key/value store (32-byte slots).
	Storage Location = iota
	// Memory is the transient, byte-addressed scratch space.
	Memory
)

func (l Location) String() string {
	switch l {
	case Storage:
		return "storage"
	case Memory:
		return "memory"
	default:
		return "unknown"
	}
}

// Effect identifies whether an operation observes or mutates its location.
type Effect uint8

const (
	Read Effect = iota
	Write
)

func (e Effect) String() string {
	switch e {
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return "unknown"
	}
}

// NoArg marks an OpSchema field whose address or length is not taken
// from any argument.
const NoArg = -1

// OpSchema describes one storage or memory operation performed by a builtin,
// in terms of its argument positions.
type OpSchema struct {
	Location Location
	Effect   Effect

	// StartArg is the index of the argument holding the storage key or
	// memory start address. NoArg if the affected area is unknown.
	StartArg int

	// LengthArg is the index of the argument holding the length of the
	// affected memory area. NoArg if not argument-driven.
	LengthArg int

	// Length is a fixed length in bytes as a decimal literal ("32" for
	// word-sized stores). Empty if the length is unknown or argument-driven.
	Length string
}

// SideEffects classifies what evaluating a builtin (or, propagated, a user
// function) can do besides computing its result.
type SideEffects struct {
	// Movable means the expression can be moved or duplicated freely:
	// no side effects and no dependence on mutable state.
	Movable bool

	// SideEffectFree means evaluation can be skipped if the result is
	// unused, even though the result may depend on mutable state.
	SideEffectFree bool

	ReadsStorage  bool
	WritesStorage bool
	ReadsMemory   bool
	WritesMemory  bool

	// Terminates means the builtin ends execution of the current context.
	Terminates bool
}

// Pure reports whether the effects amount to no observable action at all.
func (s SideEffects) Pure() bool {
	return !s.WritesStorage && !s.WritesMemory && !s.Terminates &&
		s.SideEffectFree
}

// Union combines two effect sets, keeping the weaker guarantees.
func (s SideEffects) Union(o SideEffects) SideEffects {
	return SideEffects{
		Movable:        s.Movable && o.Movable,
		SideEffectFree: s.SideEffectFree && o.SideEffectFree,
		ReadsStorage:   s.ReadsStorage || o.ReadsStorage,
		WritesStorage:  s.WritesStorage || o.WritesStorage,
		ReadsMemory:    s.ReadsMemory || o.ReadsMemory,
		WritesMemory:   s.WritesMemory || o.WritesMemory,
		Terminates:     s.Terminates || o.Terminates,
	}
}

// WorstCase returns the effect set assumed for a call with no usable
// summary: it may read and write everything.
func WorstCase() SideEffects {
	return SideEffects{
		ReadsStorage:  true,
		WritesStorage: true,
		ReadsMemory:   true,
		WritesMemory:  true,
	}
}

// Builtin describes one builtin function of the dialect.
type Builtin struct {
	Name    string
	Params  int
	Returns int
	Effects SideEffects
	Ops     []OpSchema
}

// Dialect is an immutable builtin table shared by all passes of one run.
type Dialect struct {
	builtins map[string]*Builtin
}

// Builtin returns the builtin with the given name, or nil.
func (d *Dialect) Builtin(name string) *Builtin {
	return d.builtins[name]
}

// IsBuiltin returns true if the name is a builtin function.
func (d *Dialect) IsBuiltin(name string) bool {
	return d.builtins[name] != nil
}

var evm = newEVM()

// EVM returns the shared EVM dialect table.
func EVM() *Dialect {
	return evm
}

// ----------------------------------------------------------------------------
// EVM Table
// ----------------------------------------------------------------------------

func newEVM() *Dialect {
	d := &Dialect{builtins: make(map[string]*Builtin)}
	d.registerArithmetic()
	d.registerEnvironment()
	d.registerStorage()
	d.registerMemory()
	d.registerCalls()
	d.registerControl()
	return d
}

func (d *Dialect) add(b *Builtin) {
	d.builtins[b.Name] = b
}

var (
	movableEffects = SideEffects{Movable: true, SideEffectFree: true}
	readOnlyState  = SideEffects{SideEffectFree: true}
)

// registerArithmetic adds the pure computational builtins. All of them are
// movable: results depend only on their arguments (EVM arithmetic does not
// trap, division by zero yields zero).
func (d *Dialect) registerArithmetic() {
	binary := []string{
		"add", "sub", "mul", "div", "sdiv", "mod", "smod", "exp",
		"signextend", "lt", "gt", "slt", "sgt", "eq", "and", "or",
		"xor", "byte", "shl", "shr", "sar",
	}
	for _, name := range binary {
		d.add(&Builtin{Name: name, Params: 2, Returns: 1, Effects: movableEffects})
	}

	for _, name := range []string{"iszero", "not"} {
		d.add(&Builtin{Name: name, Params: 1, Returns: 1, Effects: movableEffects})
	}

	for _, name := range []string{"addmod", "mulmod"} {
		d.add(&Builtin{Name: name, Params: 3, Returns: 1, Effects: movableEffects})
	}
}

// registerEnvironment adds builtins reading the execution environment.
// Values fixed for the whole execution are movable; values that can change
// between observation points (balances, gas, return data size) are only
// side-effect free.
func (d *Dialect) registerEnvironment() {
	fixed := []string{
		"address", "origin", "caller", "callvalue", "calldatasize",
		"codesize", "gasprice", "coinbase", "timestamp", "number",
		"difficulty", "gaslimit", "chainid", "basefee",
	}
	for _, name := range fixed {
		d.add(&Builtin{Name: name, Returns: 1, Effects: movableEffects})
	}

	// Calldata is immutable, so loading from it is movable too.
	d.add(&Builtin{Name: "calldataload", Params: 1, Returns: 1, Effects: movableEffects})

	for _, name := range []string{"gas", "returndatasize", "selfbalance"} {
		d.add(&Builtin{Name: name, Returns: 1, Effects: readOnlyState})
	}
	for _, name := range []string{"balance", "extcodesize", "extcodehash", "blockhash"} {
		d.add(&Builtin{Name: name, Params: 1, Returns: 1, Effects: readOnlyState})
	}
}

func (d *Dialect) registerStorage() {
	d.add(&Builtin{
		Name: "sload", Params: 1, Returns: 1,
		Effects: SideEffects{SideEffectFree: true, ReadsStorage: true},
		Ops:     []OpSchema{{Location: Storage, Effect: Read, StartArg: 0, LengthArg: NoArg}},
	})
	d.add(&Builtin{
		Name: "sstore", Params: 2,
		Effects: SideEffects{WritesStorage: true},
		Ops:     []OpSchema{{Location: Storage, Effect: Write, StartArg: 0, LengthArg: NoArg}},
	})
}

func (d *Dialect) registerMemory() {
	d.add(&Builtin{
		Name: "mload", Params: 1, Returns: 1,
		Effects: SideEffects{SideEffectFree: true, ReadsMemory: true},
		Ops:     []OpSchema{{Location: Memory, Effect: Read, StartArg: 0, LengthArg: NoArg, Length: "32"}},
	})
	d.add(&Builtin{
		Name: "mstore", Params: 2,
		Effects: SideEffects{WritesMemory: true},
		Ops:     []OpSchema{{Location: Memory, Effect: Write, StartArg: 0, LengthArg: NoArg, Length: "32"}},
	})
	d.add(&Builtin{
		Name: "mstore8", Params: 2,
		Effects: SideEffects{WritesMemory: true},
		Ops:     []OpSchema{{Location: Memory, Effect: Write, StartArg: 0, LengthArg: NoArg, Length: "1"}},
	})
	// msize observes the highest accessed address, so treat it as a read of
	// all of memory.
	d.add(&Builtin{
		Name: "msize", Returns: 1,
		Effects: SideEffects{SideEffectFree: true, ReadsMemory: true},
		Ops:     []OpSchema{{Location: Memory, Effect: Read, StartArg: NoArg, LengthArg: NoArg}},
	})
	d.add(&Builtin{
		Name: "keccak256", Params: 2, Returns: 1,
		Effects: SideEffects{SideEffectFree: true, ReadsMemory: true},
		Ops:     []OpSchema{{Location: Memory, Effect: Read, StartArg: 0, LengthArg: 1}},
	})

	copies := []struct {
		name            string
		params          int
		startArg, lenArg int
	}{
		{"calldatacopy", 3, 0, 2},
		{"codecopy", 3, 0, 2},
		{"returndatacopy", 3, 0, 2},
		{"extcodecopy", 4, 1, 3},
	}
	for _, c := range copies {
		d.add(&Builtin{
			Name: c.name, Params: c.params,
			Effects: SideEffects{WritesMemory: true},
			Ops:     []OpSchema{{Location: Memory, Effect: Write, StartArg: c.startArg, LengthArg: c.lenArg}},
		})
	}

	// Logs read the memory area they publish. The emitted event itself is a
	// side effect, so they are not side-effect free.
	for i := 0; i <= 4; i++ {
		name := "log" + string(rune('0'+i))
		d.add(&Builtin{
			Name: name, Params: 2 + i,
			Effects: SideEffects{ReadsMemory: true},
			Ops:     []OpSchema{{Location: Memory, Effect: Read, StartArg: 0, LengthArg: 1}},
		})
	}
}

// registerCalls adds the external-call builtins. The callee can run
// arbitrary code, so storage is read and written at unknown keys; the
// input and output memory areas come from the arguments.
func (d *Dialect) registerCalls() {
	storageRead := OpSchema{Location: Storage, Effect: Read, StartArg: NoArg, LengthArg: NoArg}
	storageWrite := OpSchema{Location: Storage, Effect: Write, StartArg: NoArg, LengthArg: NoArg}

	callEffects := SideEffects{
		ReadsStorage: true, WritesStorage: true,
		ReadsMemory: true, WritesMemory: true,
	}

	d.add(&Builtin{
		Name: "call", Params: 7, Returns: 1,
		Effects: callEffects,
		Ops: []OpSchema{
			{Location: Memory, Effect: Read, StartArg: 3, LengthArg: 4},
			storageRead,
			{Location: Memory, Effect: Write, StartArg: 5, LengthArg: 6},
			storageWrite,
		},
	})
	d.add(&Builtin{
		Name: "callcode", Params: 7, Returns: 1,
		Effects: callEffects,
		Ops: []OpSchema{
			{Location: Memory, Effect: Read, StartArg: 3, LengthArg: 4},
			storageRead,
			{Location: Memory, Effect: Write, StartArg: 5, LengthArg: 6},
			storageWrite,
		},
	})
	d.add(&Builtin{
		Name: "delegatecall", Params: 6, Returns: 1,
		Effects: callEffects,
		Ops: []OpSchema{
			{Location: Memory, Effect: Read, StartArg: 2, LengthArg: 3},
			storageRead,
			{Location: Memory, Effect: Write, StartArg: 4, LengthArg: 5},
			storageWrite,
		},
	})
	d.add(&Builtin{
		Name: "staticcall", Params: 6, Returns: 1,
		Effects: SideEffects{ReadsStorage: true, ReadsMemory: true, WritesMemory: true},
		Ops: []OpSchema{
			{Location: Memory, Effect: Read, StartArg: 2, LengthArg: 3},
			storageRead,
			{Location: Memory, Effect: Write, StartArg: 4, LengthArg: 5},
		},
	})

	createEffects := SideEffects{
		ReadsStorage: true, WritesStorage: true, ReadsMemory: true,
	}
	d.add(&Builtin{
		Name: "create", Params: 3, Returns: 1,
		Effects: createEffects,
		Ops: []OpSchema{
			{Location: Memory, Effect: Read, StartArg: 1, LengthArg: 2},
			storageRead,
			storageWrite,
		},
	})
	d.add(&Builtin{
		Name: "create2", Params: 4, Returns: 1,
		Effects: createEffects,
		Ops: []OpSchema{
			{Location: Memory, Effect: Read, StartArg: 1, LengthArg: 2},
			storageRead,
			storageWrite,
		},
	})
}

func (d *Dialect) registerControl() {
	d.add(&Builtin{
		Name: "return", Params: 2,
		Effects: SideEffects{ReadsMemory: true, Terminates: true},
		Ops:     []OpSchema{{Location: Memory, Effect: Read, StartArg: 0, LengthArg: 1}},
	})
	d.add(&Builtin{
		Name: "revert", Params: 2,
		Effects: SideEffects{ReadsMemory: true, Terminates: true},
		Ops:     []OpSchema{{Location: Memory, Effect: Read, StartArg: 0, LengthArg: 1}},
	})
	d.add(&Builtin{
		Name: "selfdestruct", Params: 1,
		Effects: SideEffects{ReadsStorage: true, WritesStorage: true, Terminates: true},
		Ops: []OpSchema{
			{Location: Storage, Effect: Read, StartArg: NoArg, LengthArg: NoArg},
			{Location: Storage, Effect: Write, StartArg: NoArg, LengthArg: NoArg},
		},
	})
	d.add(&Builtin{Name: "stop", Effects: SideEffects{Terminates: true}})
	d.add(&Builtin{Name: "invalid", Effects: SideEffects{Terminates: true}})
	d.add(&Builtin{Name: "pc", Returns: 1, Effects: readOnlyState})
	d.add(&Builtin{Name: "pop", Params: 1, Effects: movableEffects})
}
