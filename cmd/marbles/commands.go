package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/k0kubun/pp/v3"

	"github.com/akhildatla/marbles/pkg/analysis"
	"github.com/akhildatla/marbles/pkg/embed"
	"github.com/akhildatla/marbles/pkg/loader"
	"github.com/akhildatla/marbles/pkg/report"
	"github.com/akhildatla/marbles/pkg/repl"
	"github.com/akhildatla/marbles/pkg/vm"
)

// parseArgs parses fs from args, allowing flags after positional
// arguments, and returns the positional ones.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func (e *env) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

// simOptions are the flags shared by every command that simulates.
type simOptions struct {
	input  string
	inputs string
	steps  int
}

func (e *env) simFlags(fs *flag.FlagSet, batch bool) *simOptions {
	o := &simOptions{}
	fs.StringVar(&o.input, "input", "", "initial registers, e.g. 3,0,5")
	if batch {
		fs.StringVar(&o.inputs, "inputs", "", "file of input vectors (.csv, .json, .parquet, .txt)")
	}
	fs.IntVar(&o.steps, "steps", 0, "step budget (default from config)")
	return o
}

func (e *env) maxSteps(o *simOptions) int {
	if o.steps > 0 {
		return o.steps
	}
	return e.cfg.MaxSteps
}

// states returns the input vectors selected by -input and -inputs.
func (o *simOptions) states() ([]vm.State, error) {
	if o.inputs != "" {
		if o.input != "" {
			return nil, fmt.Errorf("use either -input or -inputs")
		}
		return loader.LoadInputs(o.inputs)
	}
	s, err := loader.ParseState(o.input)
	if err != nil {
		return nil, err
	}
	return []vm.State{s}, nil
}

func singleFile(cmd string, positional []string) (string, error) {
	if len(positional) != 1 {
		return "", fmt.Errorf("usage: marbles %s <file>", cmd)
	}
	return positional[0], nil
}

func (e *env) runCommand(args []string) error {
	fs := e.flagSet("run")
	opts := e.simFlags(fs, true)
	stats := fs.Bool("stats", false, "print execution statistics")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	path, err := singleFile("run", positional)
	if err != nil {
		return err
	}

	program, err := embed.ParseFile(path)
	if err != nil {
		return err
	}
	inputs, err := opts.states()
	if err != nil {
		return err
	}
	logger.Debugf("running %s on %d input(s)", path, len(inputs))

	failed := 0
	for _, input := range inputs {
		simOpts := []embed.Option{embed.WithMaxSteps(e.maxSteps(opts))}
		var st *vm.ExecutionStats
		if *stats {
			simOpts = append(simOpts, embed.WithStats(func(s *vm.ExecutionStats) { st = s }))
		}

		sim := embed.Simulate(program, input, simOpts...)
		fmt.Fprintf(e.stdout, "%v -> %v %s (%d steps)", sim.Input, sim.Final(), sim.Status, len(sim.Steps))
		if sim.Err != nil {
			fmt.Fprintf(e.stdout, ": %v", sim.Err)
			failed++
		}
		fmt.Fprintln(e.stdout)

		if st != nil {
			printStats(e.stdout, st)
		}
	}

	if failed > 0 {
		logger.Infof("%d of %d simulations failed", failed, len(inputs))
		return errFailed
	}
	return nil
}

func printStats(w io.Writer, st *vm.ExecutionStats) {
	fmt.Fprintf(w, "  steps: %d  time: %dns  peak registers: %d\n", st.StepsExecuted, st.ExecutionTimeNs, st.PeakRegisters)
	for _, op := range []vm.Opcode{vm.OpAdd, vm.OpRemove, vm.OpTest, vm.OpJump, vm.OpSwap, vm.OpDump, vm.OpStop} {
		if n := st.OpCounts[op.String()]; n > 0 {
			fmt.Fprintf(w, "  %-7s %d\n", op, n)
		}
	}
}

func (e *env) checkCommand(args []string) error {
	fs := e.flagSet("check")
	dump := fs.Bool("dump", false, "pretty-print the parsed program")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	path, err := singleFile("check", positional)
	if err != nil {
		return err
	}

	program, err := embed.ParseFile(path)
	if err != nil {
		return err
	}

	if *dump {
		printer := pp.New()
		printer.SetColoringEnabled(isTerminal(e.stdout))
		printer.Fprintln(e.stdout, program)
	}
	fmt.Fprintf(e.stdout, "ok: %d instructions, %d labels\n", program.Len(), len(program.Labels))
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && repl.Interactive(f)
}

func (e *env) fmtCommand(args []string) error {
	fs := e.flagSet("fmt")
	write := fs.Bool("w", false, "write result to the file instead of stdout")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	path, err := singleFile("fmt", positional)
	if err != nil {
		return err
	}

	program, err := embed.ParseFile(path)
	if err != nil {
		return err
	}
	out := vm.FormatProgram(program)

	if *write {
		if err := os.WriteFile(path, []byte(out), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		return nil
	}
	fmt.Fprint(e.stdout, out)
	return nil
}

func (e *env) vetCommand(args []string) error {
	fs := e.flagSet("vet")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	path, err := singleFile("vet", positional)
	if err != nil {
		return err
	}

	program, err := embed.ParseFile(path)
	if err != nil {
		return err
	}

	findings := analysis.New(analysis.WithAllChecks()).Analyze(program)
	for _, f := range findings {
		fmt.Fprintf(e.stdout, "%s: %s\n", path, f)
	}
	if len(findings) > 0 {
		fmt.Fprintf(e.stdout, "%d finding(s)\n", len(findings))
		return errFailed
	}
	return nil
}

func (e *env) simulateOne(path string, opts *simOptions) (*vm.Program, *vm.Simulation, error) {
	program, err := embed.ParseFile(path)
	if err != nil {
		return nil, nil, err
	}
	inputs, err := opts.states()
	if err != nil {
		return nil, nil, err
	}
	return program, embed.Simulate(program, inputs[0], embed.WithMaxSteps(e.maxSteps(opts))), nil
}

func (e *env) traceCommand(args []string) error {
	fs := e.flagSet("trace")
	opts := e.simFlags(fs, false)
	format := fs.String("format", "table", "table, csv, json or sim")
	output := fs.String("o", "", "output file (default: stdout)")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	path, err := singleFile("trace", positional)
	if err != nil {
		return err
	}

	program, sim, err := e.simulateOne(path, opts)
	if err != nil {
		return err
	}

	if *output == "" {
		return writeTrace(e.stdout, *format, program, sim)
	}

	f, err := os.Create(*output)
	if err != nil {
		return err
	}
	err = writeTrace(f, *format, program, sim)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Wrote %d steps to %s\n", len(sim.Steps), *output)
	return nil
}

func writeTrace(w io.Writer, format string, program *vm.Program, sim *vm.Simulation) error {
	switch strings.ToLower(format) {
	case "table":
		return report.WriteTable(w, program, sim, report.TableOptions{Highlight: -1})
	case "csv":
		return report.WriteCSV(context.Background(), w, sim)
	case "json":
		return report.WriteJSON(context.Background(), w, sim)
	case "sim":
		return report.WriteSimulationJSON(w, sim)
	default:
		return fmt.Errorf("unknown trace format %q", format)
	}
}

func (e *env) plotCommand(args []string) error {
	fs := e.flagSet("plot")
	opts := e.simFlags(fs, false)
	reg := fs.Int("reg", 0, "register to plot")
	height := fs.Int("height", report.DefaultPlotHeight, "plot height in lines")
	width := fs.Int("width", 0, "plot width in columns (default: one per state)")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	path, err := singleFile("plot", positional)
	if err != nil {
		return err
	}

	_, sim, err := e.simulateOne(path, opts)
	if err != nil {
		return err
	}

	graph, err := report.Plot(sim, *reg, report.PlotOptions{Height: *height, Width: *width})
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, graph)
	return nil
}

func (e *env) debugCommand(args []string) error {
	fs := e.flagSet("debug")
	opts := e.simFlags(fs, false)

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) > 1 {
		return fmt.Errorf("usage: marbles debug [file]")
	}

	r := repl.New()
	r.SetMaxSteps(e.maxSteps(opts))
	if f, ok := e.stdin.(*os.File); ok {
		r.SetInteractive(repl.Interactive(f))
	}

	if len(positional) == 1 {
		code, err := loader.LoadProgram(positional[0])
		if err != nil {
			return err
		}
		if err := r.SetCode(code); err != nil {
			return err
		}
	}
	if opts.input != "" {
		input, err := loader.ParseState(opts.input)
		if err != nil {
			return err
		}
		r.SetInput(input)
	}

	r.Start(e.stdin, e.stdout)
	return nil
}
