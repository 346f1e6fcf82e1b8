package vm

// Opcode identifies a command variant.
type Opcode uint8

const (
	OpAdd    Opcode = 0x00 // R[i]++ for every listed i
	OpRemove Opcode = 0x01 // R[i]-- for every listed i with R[i] > 0
	OpTest   Opcode = 0x02 // ic+1 if every listed R[i] == 0, else ic+2
	OpJump   Opcode = 0x03 // ic = labels[target]
	OpSwap   Opcode = 0x04 // R[a], R[b] = R[b], R[a]
	OpDump   Opcode = 0x05 // R[dst] += R[src]; R[src] = 0 (dst optional)
	OpStop   Opcode = 0x06 // halt with success
)

// opcodeNames maps opcodes to their canonical (display) names.
var opcodeNames = map[Opcode]string{
	OpAdd:    "ADD",
	OpRemove: "REMOVE",
	OpTest:   "TEST",
	OpJump:   "JUMP",
	OpSwap:   "SWAP",
	OpDump:   "DUMP",
	OpStop:   "STOP",
}

// nameToOpcode is the reverse lookup of opcodeNames.
var nameToOpcode map[string]Opcode

func init() {
	nameToOpcode = make(map[string]Opcode, len(opcodeNames))
	for op, name := range opcodeNames {
		nameToOpcode[name] = op
	}
}

// String returns the canonical name of the opcode.
func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}

// OpcodeFromString looks up an opcode by its canonical (upper-case) name.
func OpcodeFromString(name string) (Opcode, bool) {
	op, ok := nameToOpcode[name]
	return op, ok
}

// Arity describes how many register arguments an opcode accepts.
// Max < 0 means unbounded.
type Arity struct {
	Min, Max int
}

// Accepts reports whether n arguments satisfy the arity.
func (a Arity) Accepts(n int) bool {
	return n >= a.Min && (a.Max < 0 || n <= a.Max)
}

// ArityOf returns the register-argument arity of op. Jump takes a label and
// no register arguments.
func ArityOf(op Opcode) Arity {
	switch op {
	case OpAdd, OpRemove, OpTest:
		return Arity{Min: 0, Max: -1}
	case OpSwap:
		return Arity{Min: 2, Max: 2}
	case OpDump:
		return Arity{Min: 1, Max: 2}
	default:
		return Arity{Min: 0, Max: 0}
	}
}
