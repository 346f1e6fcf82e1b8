package compiler

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/akhildatla/marbles/pkg/vm"
)

func TestCompile_AllCommands(t *testing.T) {
	source := `
		Begin: ADD(0, 1);
		remove(2);
		test();
		test(0,1,2);
		swap(0,1);
		dump(3);
		dump(3,4);
		jump(begin);
		stop();
	`
	program, err := Compile(source)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	want := []vm.Command{
		vm.Add{Regs: []int{0, 1}},
		vm.Remove{Regs: []int{2}},
		vm.Test{},
		vm.Test{Regs: []int{0, 1, 2}},
		vm.Swap{A: 0, B: 1},
		vm.Dump{Src: 3},
		vm.Dump{Src: 3, Dst: 4, HasDst: true},
		vm.Jump{Label: "begin"},
		vm.Stop{},
	}
	if !reflect.DeepEqual(program.Commands, want) {
		t.Errorf("unexpected commands:\n got  %v\n want %v", program.Commands, want)
	}
	if program.Labels["begin"] != 0 {
		t.Errorf("expected begin -> 0, got %v", program.Labels)
	}
}

func TestCompile_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"UnknownCommand", "inc(0);"},
		{"CommandPrefix", "adder(0);"},
		{"StopWithArgs", "stop(0);"},
		{"SwapOneArg", "swap(1);"},
		{"SwapThreeArgs", "swap(1,2,3);"},
		{"DumpNoArgs", "dump();"},
		{"DumpThreeArgs", "dump(1,2,3);"},
		{"UndefinedLabel", "jump(nowhere);"},
		{"RegisterTooLarge", "add(99999999999);"},
		{"RegisterPastLimit", "add(1048577);"},
		{"OneBadStatement", "add(0); add(0); oops; stop();"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, err := Compile(tt.input)
			if !errors.Is(err, ErrRejected) {
				t.Errorf("expected ErrRejected, got %v", err)
			}
			if program != nil {
				t.Error("expected no partial program")
			}
		})
	}
}

func TestCompile_LabelLaterInProgram(t *testing.T) {
	program, err := Compile("jump(end); add(0); end: stop();")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if program.Labels["end"] != 2 {
		t.Errorf("expected end -> 2, got %d", program.Labels["end"])
	}
}

func TestCompile_CaseFoldedLabels(t *testing.T) {
	program, err := Compile("LOOP: jump(Loop);")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if _, ok := program.Labels["loop"]; !ok {
		t.Errorf("expected folded label 'loop', got %v", program.Labels)
	}
}

func TestCompile_MaxRegister(t *testing.T) {
	if _, err := Compile("add(1048576); stop();"); err != nil {
		t.Errorf("expected MaxRegisterIndex to be accepted, got %v", err)
	}
}

func TestCompile_JumpTargetsExist(t *testing.T) {
	sources := []string{
		"a: jump(a);",
		"x1: add(0); jump(x1); 2: jump(2);",
		"jump(b); b: stop(); c: jump(b);",
	}
	for _, src := range sources {
		program, err := Compile(src)
		if err != nil {
			t.Fatalf("Compile(%q) failed: %v", src, err)
		}
		for _, cmd := range program.Commands {
			if j, ok := cmd.(vm.Jump); ok {
				if _, ok := program.Labels[j.Label]; !ok {
					t.Errorf("jump target %q missing from labels", j.Label)
				}
			}
		}
	}
}

func TestCompile_NeverPanics(t *testing.T) {
	inputs := []string{
		"", ";", ";;", ":", ":;", "(", ");", "add(", "jump(;", "a:b:c;",
		"\x00;", "стоп();", strings.Repeat("add(0);", 1000), "add(0)" + strings.Repeat(",1", 500) + ");",
	}
	for _, input := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Compile(%q) panicked: %v", input, r)
				}
			}()
			_, _ = Compile(input)
		}()
	}
}

func TestCompile_FormatRoundTrip(t *testing.T) {
	source := "start: test(0,1); stop(); remove(0); dump(1,2); swap(0,1); jump(start);"
	program, err := Compile(source)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	again, err := Compile(vm.FormatProgram(program))
	if err != nil {
		t.Fatalf("formatted program does not parse: %v", err)
	}
	if !reflect.DeepEqual(program.Commands, again.Commands) {
		t.Errorf("commands changed across format:\n%v\n%v", program.Commands, again.Commands)
	}
	if !reflect.DeepEqual(program.Labels, again.Labels) {
		t.Errorf("labels changed across format: %v vs %v", program.Labels, again.Labels)
	}
}

// ===== End-to-end: parse then simulate =====

func TestEndToEnd_Countdown(t *testing.T) {
	program, err := Compile("start: test(0); stop(); remove(0); jump(start);")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	sim := vm.Simulate(program, vm.State{3})
	if sim.Status != vm.StatusSuccess {
		t.Fatalf("expected success, got %v (%v)", sim.Status, sim.Err)
	}
	if len(sim.Final()) != 0 {
		t.Errorf("expected R0 cleared, got %v", sim.Final())
	}
	if len(sim.Steps) != 3*3+2 {
		t.Errorf("expected 11 steps, got %d", len(sim.Steps))
	}
}

func TestEndToEnd_SkipLoopHitsBudget(t *testing.T) {
	// R0 = 3 is never modified: TEST skips add(0) and lands on the jump
	// every time, so the stop() is never reached.
	program, err := Compile("start:test(0);add(0);jump(start);stop();")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	sim := vm.Simulate(program, vm.State{3})
	if sim.Status != vm.StatusFail {
		t.Fatalf("expected fail, got %v", sim.Status)
	}
	if !errors.Is(sim.Err, vm.ErrStepLimitExceeded) {
		t.Errorf("expected ErrStepLimitExceeded, got %v", sim.Err)
	}
	if len(sim.Steps) != vm.DefaultMaxSteps {
		t.Errorf("expected %d steps, got %d", vm.DefaultMaxSteps, len(sim.Steps))
	}
	for i, step := range sim.Steps {
		if step.IC != 0 && step.IC != 2 {
			t.Fatalf("step %d ran at ic %d; add(0) and stop() must never run", i, step.IC)
		}
		if !step.State.Equal(vm.State{3}) {
			t.Fatalf("step %d changed R0: %v", i, step.State)
		}
	}
}

func TestEndToEnd_SelfJump(t *testing.T) {
	program, err := Compile("label: jump(label);")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	sim := vm.Simulate(program, vm.State{0, 7})
	if sim.Status != vm.StatusFail || len(sim.Steps) != vm.DefaultMaxSteps {
		t.Errorf("expected fail after %d steps, got %v after %d", vm.DefaultMaxSteps, sim.Status, len(sim.Steps))
	}
}

func TestEndToEnd_Transfer(t *testing.T) {
	program, err := Compile("dump(0,1); stop();")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	sim := vm.Simulate(program, vm.State{5, 3})
	if !sim.Final().Equal(vm.State{0, 8}) {
		t.Errorf("expected [0 8], got %v", sim.Final())
	}
}
