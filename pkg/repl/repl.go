// Package repl implements an interactive step debugger for marbles
// programs: load or type a program, set the input registers, run it and
// walk the trace forwards and backwards.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/akhildatla/marbles/pkg/compiler"
	"github.com/akhildatla/marbles/pkg/loader"
	"github.com/akhildatla/marbles/pkg/report"
	"github.com/akhildatla/marbles/pkg/vm"
)

const (
	prompt     = "marbles> "
	promptCont = "...> "

	// maxLineSize bounds a single input line.
	maxLineSize = 4 << 20
)

var (
	errNoProgram    = errors.New("no program: use 'load <file>' or 'code <text>'")
	errNoSimulation = errors.New("nothing simulated yet: use 'run'")
)

// REPL holds the debugger session.
type REPL struct {
	vm          *vm.VM
	interactive bool

	code    string
	program *vm.Program
	input   vm.State
	sim     *vm.Simulation
	pos     int // trace position: the state before step pos+1 runs

	history     []string
	multiline   strings.Builder
	inMultiline bool
	done        bool
}

// New creates a new REPL instance with the default step budget.
func New() *REPL {
	return &REPL{
		vm:      vm.NewVM(),
		input:   vm.State{},
		history: []string{},
	}
}

// Interactive reports whether f is a terminal.
func Interactive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// SetInteractive turns the banner and prompts on or off.
func (r *REPL) SetInteractive(on bool) {
	r.interactive = on
}

// SetMaxSteps sets the step budget for 'run'.
func (r *REPL) SetMaxSteps(n int) {
	r.vm.SetMaxSteps(n)
}

// SetCode parses code and makes it the current program.
func (r *REPL) SetCode(code string) error {
	program, err := compiler.Compile(code)
	if err != nil {
		return err
	}
	r.code, r.program = code, program
	r.sim, r.pos = nil, 0
	return nil
}

// SetInput sets the initial registers for the next run.
func (r *REPL) SetInput(input vm.State) {
	r.input = input.Canonical()
	r.sim, r.pos = nil, 0
}

// Start reads commands from in until EOF or 'quit'.
func (r *REPL) Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	if r.interactive {
		fmt.Fprintln(out, "marbles debugger")
		fmt.Fprintln(out, "Type 'help' for available commands, 'quit' to exit")
		fmt.Fprintln(out)
	}

	for !r.done {
		if r.interactive {
			if r.inMultiline {
				fmt.Fprint(out, promptCont)
			} else {
				fmt.Fprint(out, prompt)
			}
		}

		if !scanner.Scan() {
			break
		}
		line := scanner.Text()

		// Multiline code ends at the first empty line
		if r.inMultiline {
			if strings.TrimSpace(line) == "" {
				r.inMultiline = false
				code := r.multiline.String()
				r.multiline.Reset()
				r.loadCode(code, out)
			} else {
				r.multiline.WriteString(line)
				r.multiline.WriteString("\n")
			}
			continue
		}

		r.handleCommand(line, out)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(out, "Error: reading input: %v\n", err)
	}
}

func (r *REPL) handleCommand(line string, out io.Writer) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}
	name, rest, _ := strings.Cut(trimmed, " ")
	rest = strings.TrimSpace(rest)

	if name != "history" {
		r.history = append(r.history, trimmed)
	}

	var err error
	switch name {
	case "quit", "exit", "q":
		fmt.Fprintln(out, "Goodbye!")
		r.done = true

	case "help", "h", "?":
		r.printHelp(out)

	case "load":
		if rest == "" {
			fmt.Fprintln(out, "Usage: load <file>")
			return
		}
		err = r.loadFile(rest, out)

	case "code":
		if strings.HasSuffix(rest, "\\") {
			r.inMultiline = true
			r.multiline.WriteString(strings.TrimSuffix(rest, "\\"))
			r.multiline.WriteString("\n")
			return
		}
		r.loadCode(rest, out)

	case "input":
		var input vm.State
		input, err = loader.ParseState(rest)
		if err == nil {
			r.SetInput(input)
			fmt.Fprintf(out, "Input set to %v\n", r.input)
		}

	case "run", "r":
		err = r.run(out)

	case "next", "n":
		err = r.move(rest, 1, out)

	case "prev", "p":
		err = r.move(rest, -1, out)

	case "goto", "g":
		target, convErr := strconv.Atoi(rest)
		if convErr != nil {
			err = errors.New("usage: goto <step>")
			break
		}
		err = r.seek(target, out)

	case "regs":
		if err = r.ensureSimulation(out); err == nil {
			fmt.Fprintf(out, "%v\n", r.sim.StateAt(r.pos))
		}

	case "list", "l":
		if r.program == nil {
			err = errNoProgram
			break
		}
		report.WriteProgram(out, r.program, r.currentIC())

	case "trace", "t":
		if err = r.ensureSimulation(out); err == nil {
			err = report.WriteTable(out, r.program, r.sim, report.TableOptions{Highlight: r.pos})
		}

	case "history":
		for i, cmd := range r.history {
			fmt.Fprintf(out, "%3d: %s\n", i+1, cmd)
		}

	default:
		fmt.Fprintf(out, "Unknown command %q. Type 'help' for available commands\n", name)
	}

	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
	}
}

func (r *REPL) loadFile(path string, out io.Writer) error {
	code, err := loader.LoadProgram(path)
	if err != nil {
		return err
	}
	if err := r.SetCode(code); err != nil {
		return err
	}
	fmt.Fprintf(out, "Loaded %s (%d instructions)\n", path, r.program.Len())
	return nil
}

func (r *REPL) loadCode(code string, out io.Writer) {
	if err := r.SetCode(code); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Program set (%d instructions)\n", r.program.Len())
}

func (r *REPL) run(out io.Writer) error {
	if r.program == nil {
		return errNoProgram
	}
	r.sim = r.vm.Simulate(r.program, r.input)
	r.pos = 0

	fmt.Fprintf(out, "Simulated %d steps: %s", len(r.sim.Steps), r.sim.Status)
	if r.sim.Err != nil {
		fmt.Fprintf(out, " (%v)", r.sim.Err)
	}
	fmt.Fprintf(out, "\nFinal registers: %v\n", r.sim.Final())
	r.showPosition(out)
	return nil
}

// ensureSimulation runs the current program when it has not run yet.
func (r *REPL) ensureSimulation(out io.Writer) error {
	if r.sim != nil {
		return nil
	}
	if r.program == nil {
		return errNoSimulation
	}
	return r.run(out)
}

func (r *REPL) move(arg string, dir int, out io.Writer) error {
	n := 1
	if arg != "" {
		v, err := strconv.Atoi(arg)
		if err != nil || v < 1 {
			return fmt.Errorf("step count must be a positive integer, got %q", arg)
		}
		n = v
	}
	if err := r.ensureSimulation(out); err != nil {
		return err
	}
	return r.seek(r.pos+dir*n, out)
}

func (r *REPL) seek(target int, out io.Writer) error {
	if err := r.ensureSimulation(out); err != nil {
		return err
	}
	r.pos = min(max(target, 0), len(r.sim.Steps))
	r.showPosition(out)
	return nil
}

// currentIC is the instruction about to run at the current position, or -1
// at the end of the trace.
func (r *REPL) currentIC() int {
	if r.sim == nil {
		return 0
	}
	if r.pos < len(r.sim.Steps) {
		return r.sim.Steps[r.pos].IC
	}
	return -1
}

func (r *REPL) showPosition(out io.Writer) {
	total := len(r.sim.Steps)
	state := r.sim.StateAt(r.pos)
	if r.pos < total {
		step := r.sim.Steps[r.pos]
		fmt.Fprintf(out, "[%d/%d] ic %d: %s  registers %v\n", r.pos, total, step.IC, vm.Format(step.Command), state)
		return
	}
	fmt.Fprintf(out, "[%d/%d] end (%s)  registers %v\n", r.pos, total, r.sim.Status, state)
}

func (r *REPL) printHelp(out io.Writer) {
	help := `
Debugger Commands:
  help, h, ?        Show this help message
  quit, exit, q     Exit the debugger
  load <file>       Load a program file
  code <text>       Set the program; end with \ to continue on following
                    lines, an empty line finishes it
  input <a,b,...>   Set the initial registers
  run, r            Simulate from the input
  next, n [k]       Move k steps forward (default 1)
  prev, p [k]       Move k steps back (default 1)
  goto, g <step>    Move to a step
  regs              Show the registers at the current step
  list, l           List the program, marking the next instruction
  trace, t          Show the whole trace
  history           Show command history

Example:
  code start: test(0); stop(); remove(0); jump(start);
  input 3
  run
  next 2
`
	fmt.Fprint(out, help)
}
