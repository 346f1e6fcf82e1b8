package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/akhildatla/marbles/internal/testutil"
	"github.com/akhildatla/marbles/pkg/vm"
)

func session(t *testing.T, input string) (*REPL, string) {
	t.Helper()
	r := New()
	var out bytes.Buffer
	r.Start(strings.NewReader(input), &out)
	return r, out.String()
}

func TestREPL_New(t *testing.T) {
	r := New()
	if r == nil {
		t.Fatal("New returned nil")
	}
	if r.vm.MaxSteps() != vm.DefaultMaxSteps {
		t.Errorf("expected default budget, got %d", r.vm.MaxSteps())
	}
	if r.interactive {
		t.Error("expected non-interactive by default")
	}
}

func TestREPL_Help(t *testing.T) {
	for _, cmd := range []string{"help", "h", "?"} {
		_, out := session(t, cmd+"\n")
		if !strings.Contains(out, "Debugger Commands") {
			t.Errorf("expected help text for %q, got: %s", cmd, out)
		}
	}
}

func TestREPL_QuitStopsReading(t *testing.T) {
	r, out := session(t, "quit\nhistory\n")
	if !strings.Contains(out, "Goodbye") {
		t.Errorf("expected goodbye message, got: %s", out)
	}
	if !r.done {
		t.Error("expected session to be done")
	}
	if strings.Contains(out, "1: quit") {
		t.Errorf("history ran after quit: %s", out)
	}
}

func TestREPL_Prompts(t *testing.T) {
	r := New()
	r.SetInteractive(true)
	var out bytes.Buffer
	r.Start(strings.NewReader("code add(0); \\\nstop();\n\n"), &out)

	if !strings.Contains(out.String(), prompt) || !strings.Contains(out.String(), promptCont) {
		t.Errorf("expected both prompts, got: %s", out.String())
	}
	if r.program == nil || r.program.Len() != 2 {
		t.Errorf("expected multiline program with 2 instructions")
	}
}

func TestREPL_RunAndStep(t *testing.T) {
	script := strings.Join([]string{
		"code " + strings.ReplaceAll(strings.TrimSpace(testutil.CountdownProgram()), "\n", " "),
		"input 2",
		"run",
		"next",
		"regs",
		"next 2",
		"prev",
		"goto 100",
	}, "\n") + "\n"

	r, out := session(t, script)

	if r.sim == nil {
		t.Fatal("expected a simulation")
	}
	if r.sim.Status != vm.StatusSuccess {
		t.Errorf("expected success, got %v", r.sim.Status)
	}
	for _, want := range []string{
		"Input set to [2]",
		"Simulated 8 steps: success",
		"[0/8] ic 0: TEST(0)",
		"[1/8] ic 2: REMOVE(0)",
		"[3/8] ic 0: TEST(0)",
		"[2/8] ic 3: JUMP(start)",
		"[8/8] end (success)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if r.pos != 8 {
		t.Errorf("goto past the end should clamp to 8, got %d", r.pos)
	}
}

func TestREPL_StepRunsImplicitly(t *testing.T) {
	r, out := session(t, "code add(0); stop();\nnext\n")
	if r.sim == nil || r.pos != 1 {
		t.Fatalf("expected implicit run and position 1, got pos %d: %s", r.pos, out)
	}
}

func TestREPL_ListAndTrace(t *testing.T) {
	_, out := session(t, "code loop: add(0); jump(loop);\nlist\n")
	if !strings.Contains(out, "ADD(0)") || !strings.Contains(out, "loop") {
		t.Errorf("expected listing, got: %s", out)
	}

	r := New()
	r.SetMaxSteps(4)
	var buf bytes.Buffer
	r.Start(strings.NewReader("code loop: add(0); jump(loop);\ntrace\n"), &buf)
	if !strings.Contains(buf.String(), "step limit") {
		t.Errorf("expected step limit failure, got: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "[2]") {
		t.Errorf("expected register values in trace, got: %s", buf.String())
	}
}

func TestREPL_LoadFile(t *testing.T) {
	path := testutil.TempFile(t, testutil.AddProgram(), ".mrb")

	r, out := session(t, "load "+path+"\ninput 1,2\nrun\n")
	if !strings.Contains(out, "Loaded") {
		t.Errorf("expected load message, got: %s", out)
	}
	if !r.sim.Final().Equal(vm.State{3}) {
		t.Errorf("expected final [3], got %v", r.sim.Final())
	}
}

func TestREPL_Errors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"RunWithoutProgram", "run\n", "no program"},
		{"RegsWithoutProgram", "regs\n", "nothing simulated"},
		{"ListWithoutProgram", "list\n", "no program"},
		{"BadCode", "code add(0)\n", "Error"},
		{"BadInput", "input 1,-1\n", "non-negative"},
		{"BadStepCount", "code stop();\nnext x\n", "positive integer"},
		{"BadGoto", "code stop();\ngoto\n", "usage: goto"},
		{"LoadUsage", "load\n", "Usage: load"},
		{"MissingFile", "load /nonexistent/prog.mrb\n", "Error"},
		{"Unknown", "frobnicate\n", "Unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out := session(t, tt.script)
			if !strings.Contains(out, tt.want) {
				t.Errorf("expected %q in output, got: %s", tt.want, out)
			}
		})
	}
}

func TestREPL_History(t *testing.T) {
	_, out := session(t, "input 1\nhelp\nhistory\n")
	if !strings.Contains(out, "  1: input 1") || !strings.Contains(out, "  2: help") {
		t.Errorf("expected history, got: %s", out)
	}
}

func TestREPL_NewInputResetsTrace(t *testing.T) {
	r, _ := session(t, "code stop();\nrun\ninput 4\n")
	if r.sim != nil {
		t.Error("expected trace to be discarded after input change")
	}
	if !r.input.Equal(vm.State{4}) {
		t.Errorf("expected input [4], got %v", r.input)
	}
}

func TestREPL_LongCodeLine(t *testing.T) {
	code := strings.Repeat("add(0);", 20000) + "stop();"
	r, out := session(t, "code "+code+"\n")
	if !strings.Contains(out, "Program set (20001 instructions)") {
		t.Errorf("expected long line to load, got: %.200s", out)
	}
	if r.program == nil {
		t.Error("expected a program")
	}
}

func TestREPL_LineTooLong(t *testing.T) {
	_, out := session(t, "code "+strings.Repeat("a", maxLineSize+1)+"\n")
	if !strings.Contains(out, "Error: reading input") {
		t.Errorf("expected a read error, got: %.200s", out)
	}
}
