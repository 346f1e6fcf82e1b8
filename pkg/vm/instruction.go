package vm

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownOpcode = errors.New("unknown opcode")
	ErrArity         = errors.New("wrong number of arguments")
	ErrMissingLabel  = errors.New("jump without target label")
)

// Command is one instruction of a Program.
//
// The set of variants is closed: exec is unexported, so only the types in
// this file satisfy Command, and each of them must provide every method the
// executor and the formatter rely on.
type Command interface {
	// Op returns the variant's opcode.
	Op() Opcode
	// Args returns the register arguments in source order. Jump has none.
	Args() []int
	// String returns the canonical text, e.g. "ADD(0,1)" or "JUMP(loop)".
	String() string

	// exec applies the command to s at instruction counter ic. It returns
	// the resulting state (not necessarily canonical, possibly aliasing s
	// when unchanged), the next instruction counter and whether the
	// machine halts.
	exec(s State, ic int, labels map[string]int) (State, int, bool)
}

// Add increments every listed register.
type Add struct{ Regs []int }

// Remove decrements every listed register that is above zero.
type Remove struct{ Regs []int }

// Test skips the next instruction unless every listed register is zero.
type Test struct{ Regs []int }

// Jump continues at the instruction carrying Label.
type Jump struct{ Label string }

// Swap exchanges registers A and B.
type Swap struct{ A, B int }

// Dump empties register Src. With HasDst set, the value of Src is first
// added to register Dst.
type Dump struct {
	Src    int
	Dst    int
	HasDst bool
}

// Stop halts the machine successfully.
type Stop struct{}

// NewCommand builds the command for op, enforcing its arity. target is used
// only by OpJump.
func NewCommand(op Opcode, args []int, target string) (Command, error) {
	if op == OpJump {
		if len(args) != 0 {
			return nil, fmt.Errorf("%w: %s takes a label", ErrArity, op)
		}
		if target == "" {
			return nil, ErrMissingLabel
		}
		return Jump{Label: target}, nil
	}
	if _, ok := opcodeNames[op]; !ok {
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownOpcode, uint8(op))
	}
	if !ArityOf(op).Accepts(len(args)) {
		return nil, fmt.Errorf("%w: %s with %d", ErrArity, op, len(args))
	}

	regs := append([]int(nil), args...)
	switch op {
	case OpAdd:
		return Add{Regs: regs}, nil
	case OpRemove:
		return Remove{Regs: regs}, nil
	case OpTest:
		return Test{Regs: regs}, nil
	case OpSwap:
		return Swap{A: regs[0], B: regs[1]}, nil
	case OpDump:
		if len(regs) == 2 {
			return Dump{Src: regs[0], Dst: regs[1], HasDst: true}, nil
		}
		return Dump{Src: regs[0]}, nil
	default:
		return Stop{}, nil
	}
}

func (Add) Op() Opcode    { return OpAdd }
func (Remove) Op() Opcode { return OpRemove }
func (Test) Op() Opcode   { return OpTest }
func (Jump) Op() Opcode   { return OpJump }
func (Swap) Op() Opcode   { return OpSwap }
func (Dump) Op() Opcode   { return OpDump }
func (Stop) Op() Opcode   { return OpStop }

func (c Add) Args() []int    { return append([]int(nil), c.Regs...) }
func (c Remove) Args() []int { return append([]int(nil), c.Regs...) }
func (c Test) Args() []int   { return append([]int(nil), c.Regs...) }
func (Jump) Args() []int     { return nil }
func (c Swap) Args() []int   { return []int{c.A, c.B} }
func (Stop) Args() []int     { return nil }

func (c Dump) Args() []int {
	if c.HasDst {
		return []int{c.Src, c.Dst}
	}
	return []int{c.Src}
}

func (c Add) String() string    { return formatRegs(OpAdd, c.Regs) }
func (c Remove) String() string { return formatRegs(OpRemove, c.Regs) }
func (c Test) String() string   { return formatRegs(OpTest, c.Regs) }
func (c Jump) String() string   { return OpJump.String() + "(" + c.Label + ")" }
func (c Swap) String() string   { return formatRegs(OpSwap, c.Args()) }
func (c Dump) String() string   { return formatRegs(OpDump, c.Args()) }
func (Stop) String() string     { return OpStop.String() + "()" }

func (c Add) exec(s State, ic int, _ map[string]int) (State, int, bool) {
	next := s.Pad(maxIndex(c.Regs))
	for _, r := range distinct(c.Regs) {
		next[r]++
	}
	return next, ic + 1, false
}

func (c Remove) exec(s State, ic int, _ map[string]int) (State, int, bool) {
	next := s.Pad(maxIndex(c.Regs))
	for _, r := range distinct(c.Regs) {
		if next[r] > 0 {
			next[r]--
		}
	}
	return next, ic + 1, false
}

func (c Test) exec(s State, ic int, _ map[string]int) (State, int, bool) {
	for _, r := range c.Regs {
		if s.Get(r) != 0 {
			return s, ic + 2, false
		}
	}
	return s, ic + 1, false
}

func (c Jump) exec(s State, _ int, labels map[string]int) (State, int, bool) {
	target, ok := labels[c.Label]
	if !ok {
		// Unreachable for parsed programs; the executor fails on -1.
		return s, -1, false
	}
	return s, target, false
}

func (c Swap) exec(s State, ic int, _ map[string]int) (State, int, bool) {
	next := s.Pad(max(c.A, c.B))
	next[c.A], next[c.B] = next[c.B], next[c.A]
	return next, ic + 1, false
}

func (c Dump) exec(s State, ic int, _ map[string]int) (State, int, bool) {
	if !c.HasDst {
		next := s.Pad(c.Src)
		next[c.Src] = 0
		return next, ic + 1, false
	}
	next := s.Pad(max(c.Src, c.Dst))
	next[c.Dst] += next[c.Src]
	next[c.Src] = 0
	return next, ic + 1, false
}

func (Stop) exec(s State, _ int, _ map[string]int) (State, int, bool) {
	return s, -1, true
}

// distinct returns regs without repeats, keeping first occurrences. A
// register listed twice in one Add or Remove changes only once.
func distinct(regs []int) []int {
	if len(regs) < 2 {
		return regs
	}
	seen := make(map[int]struct{}, len(regs))
	out := make([]int, 0, len(regs))
	for _, r := range regs {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
