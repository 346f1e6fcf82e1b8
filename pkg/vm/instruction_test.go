package vm

import (
	"errors"
	"math"
	"testing"
)

// run executes a single command against s and returns the canonical result.
func run(cmd Command, s State, ic int) (State, int, bool) {
	next, nextIC, halt := cmd.exec(s, ic, map[string]int{"loop": 7})
	return next.Canonical(), nextIC, halt
}

func TestCommand_Add(t *testing.T) {
	next, ic, halt := run(Add{Regs: []int{0, 3}}, NewState(1), 4)
	if !next.Equal(State{2, 0, 0, 1}) {
		t.Errorf("expected [2 0 0 1], got %v", next)
	}
	if ic != 5 || halt {
		t.Errorf("expected ic 5 without halt, got %d %v", ic, halt)
	}
}

func TestCommand_AddRepeatedRegister(t *testing.T) {
	next, _, _ := run(Add{Regs: []int{1, 1}}, nil, 0)
	if !next.Equal(State{0, 1}) {
		t.Errorf("expected a repeated register to change once, got %v", next)
	}
}

func TestCommand_AddEmpty(t *testing.T) {
	next, ic, _ := run(Add{}, NewState(2), 0)
	if !next.Equal(State{2}) || ic != 1 {
		t.Errorf("expected unchanged state and ic 1, got %v %d", next, ic)
	}
}

func TestCommand_RemoveNoUnderflow(t *testing.T) {
	next, ic, _ := run(Remove{Regs: []int{0, 1}}, NewState(0, 2), 0)
	if !next.Equal(State{0, 1}) {
		t.Errorf("expected [0 1], got %v", next)
	}
	if ic != 1 {
		t.Errorf("expected ic 1, got %d", ic)
	}
}

func TestCommand_RemoveThenAddAtZero(t *testing.T) {
	s, _, _ := run(Remove{Regs: []int{2}}, nil, 0)
	s, _, _ = run(Add{Regs: []int{2}}, s, 1)
	if s.Get(2) != 1 {
		t.Errorf("expected R2 = 1, got %d", s.Get(2))
	}
}

func TestCommand_Test(t *testing.T) {
	tests := []struct {
		name   string
		regs   []int
		state  State
		nextIC int
	}{
		{"EmptyIsVacuouslyTrue", nil, NewState(5, 5), 11},
		{"ZeroRegister", []int{1}, NewState(5), 11},
		{"NonZeroRegister", []int{0}, NewState(5), 12},
		{"UnaddressedRegister", []int{40}, NewState(5), 11},
		{"AnyNonZeroSkips", []int{0, 1}, NewState(0, 1), 12},
		{"AllZero", []int{0, 2}, NewState(0, 1), 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ic, halt := run(Test{Regs: tt.regs}, tt.state, 10)
			if ic != tt.nextIC {
				t.Errorf("expected ic %d, got %d", tt.nextIC, ic)
			}
			if halt {
				t.Error("TEST must not halt")
			}
			if !next.Equal(tt.state) {
				t.Errorf("TEST changed state: %v -> %v", tt.state, next)
			}
		})
	}
}

func TestCommand_Jump(t *testing.T) {
	_, ic, _ := run(Jump{Label: "loop"}, NewState(1), 0)
	if ic != 7 {
		t.Errorf("expected ic 7, got %d", ic)
	}

	_, ic, _ = run(Jump{Label: "missing"}, NewState(1), 0)
	if ic != -1 {
		t.Errorf("expected ic -1 for an unknown label, got %d", ic)
	}
}

func TestCommand_Swap(t *testing.T) {
	s := NewState(4, 0, 9)
	once, _, _ := run(Swap{A: 0, B: 2}, s, 0)
	if !once.Equal(State{9, 0, 4}) {
		t.Errorf("expected [9 0 4], got %v", once)
	}
	twice, _, _ := run(Swap{A: 0, B: 2}, once, 1)
	if !twice.Equal(s) {
		t.Errorf("expected swap twice to restore %v, got %v", s, twice)
	}

	grown, _, _ := run(Swap{A: 0, B: 5}, NewState(3), 0)
	if !grown.Equal(State{0, 0, 0, 0, 0, 3}) {
		t.Errorf("expected swap past the end to pad, got %v", grown)
	}
}

func TestCommand_Dump(t *testing.T) {
	transfer, _, _ := run(Dump{Src: 0, Dst: 1, HasDst: true}, NewState(5, 3), 0)
	if !transfer.Equal(State{0, 8}) {
		t.Errorf("expected [0 8], got %v", transfer)
	}

	cleared, _, _ := run(Dump{Src: 0}, NewState(5, 3), 0)
	if !cleared.Equal(State{0, 3}) {
		t.Errorf("expected [0 3], got %v", cleared)
	}

	self, _, _ := run(Dump{Src: 1, Dst: 1, HasDst: true}, NewState(5, 3), 0)
	if !self.Equal(State{5}) {
		t.Errorf("expected [5], got %v", self)
	}
}

func TestCommand_LargeValuesDoNotWrap(t *testing.T) {
	added, _, _ := run(Add{Regs: []int{0}}, NewState(math.MaxInt64), 0)
	if !added.Equal(State{math.MaxInt64 + 1}) {
		t.Errorf("expected [%d], got %v", uint64(math.MaxInt64)+1, added)
	}

	moved, _, _ := run(Dump{Src: 0, Dst: 1, HasDst: true}, NewState(1, math.MaxInt64), 0)
	if !moved.Equal(State{0, math.MaxInt64 + 1}) {
		t.Errorf("expected [0, %d], got %v", uint64(math.MaxInt64)+1, moved)
	}
}

func TestCommand_Stop(t *testing.T) {
	next, _, halt := run(Stop{}, NewState(1, 2), 3)
	if !halt {
		t.Error("expected STOP to halt")
	}
	if !next.Equal(State{1, 2}) {
		t.Errorf("STOP changed state: %v", next)
	}
}

func TestCommand_DoesNotMutateInput(t *testing.T) {
	s := State{1, 2, 3}
	cmds := []Command{
		Add{Regs: []int{0}},
		Remove{Regs: []int{1}},
		Swap{A: 0, B: 2},
		Dump{Src: 2, Dst: 0, HasDst: true},
	}
	for _, cmd := range cmds {
		run(cmd, s, 0)
		if s[0] != 1 || s[1] != 2 || s[2] != 3 {
			t.Fatalf("%s mutated its input: %v", cmd, s)
		}
	}
}

func TestNewCommand(t *testing.T) {
	tests := []struct {
		name    string
		op      Opcode
		args    []int
		target  string
		want    string
		wantErr error
	}{
		{"Add", OpAdd, []int{0, 1}, "", "ADD(0,1)", nil},
		{"AddEmpty", OpAdd, nil, "", "ADD()", nil},
		{"Remove", OpRemove, []int{2}, "", "REMOVE(2)", nil},
		{"Test", OpTest, nil, "", "TEST()", nil},
		{"Jump", OpJump, nil, "loop", "JUMP(loop)", nil},
		{"JumpWithArgs", OpJump, []int{1}, "loop", "", ErrArity},
		{"JumpWithoutLabel", OpJump, nil, "", "", ErrMissingLabel},
		{"Swap", OpSwap, []int{1, 2}, "", "SWAP(1,2)", nil},
		{"SwapOneArg", OpSwap, []int{1}, "", "", ErrArity},
		{"SwapThreeArgs", OpSwap, []int{1, 2, 3}, "", "", ErrArity},
		{"DumpOne", OpDump, []int{3}, "", "DUMP(3)", nil},
		{"DumpTwo", OpDump, []int{3, 4}, "", "DUMP(3,4)", nil},
		{"DumpNone", OpDump, nil, "", "", ErrArity},
		{"DumpThree", OpDump, []int{1, 2, 3}, "", "", ErrArity},
		{"Stop", OpStop, nil, "", "STOP()", nil},
		{"StopWithArgs", OpStop, []int{0}, "", "", ErrArity},
		{"Unknown", Opcode(0xEE), nil, "", "", ErrUnknownOpcode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := NewCommand(tt.op, tt.args, tt.target)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cmd.Op() != tt.op {
				t.Errorf("expected opcode %v, got %v", tt.op, cmd.Op())
			}
			if got := Format(cmd); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestOpcodeString(t *testing.T) {
	tests := []struct {
		opcode   Opcode
		expected string
	}{
		{OpAdd, "ADD"},
		{OpRemove, "REMOVE"},
		{OpTest, "TEST"},
		{OpJump, "JUMP"},
		{OpSwap, "SWAP"},
		{OpDump, "DUMP"},
		{OpStop, "STOP"},
		{Opcode(0xFF), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.opcode.String(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestOpcodeFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected Opcode
		ok       bool
	}{
		{"ADD", OpAdd, true},
		{"REMOVE", OpRemove, true},
		{"JUMP", OpJump, true},
		{"STOP", OpStop, true},
		{"add", 0, false},
		{"INVALID", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := OpcodeFromString(tt.input)
			if ok != tt.ok {
				t.Errorf("ok: expected %v, got %v", tt.ok, ok)
			}
			if ok && got != tt.expected {
				t.Errorf("opcode: expected %v, got %v", tt.expected, got)
			}
		})
	}
}
