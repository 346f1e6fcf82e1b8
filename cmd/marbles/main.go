// Package main provides the CLI entry point for marbles.
//
// Usage:
//
//	marbles run prog.mrb -input 3,0,5     # Simulate and print the final registers
//	marbles run prog.mrb -inputs in.csv   # One simulation per row
//	marbles trace prog.mrb -format table  # Print every step
//	marbles vet prog.mrb                  # Report unreachable code and label problems
//	marbles test prog.mrb cases.yml       # Check against local test cases
//	marbles submit -task max prog.mrb     # Send to the grading service
//	marbles debug prog.mrb                # Interactive step debugger
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/juju/loggo"

	"github.com/akhildatla/marbles/internal/config"
)

// Version info set by GoReleaser via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var logger = loggo.GetLogger("marbles.cli")

// errFailed is returned when the command ran but its verdict is negative
// (a failed simulation, vet findings, failing cases). It carries no
// message of its own; the command already printed why.
var errFailed = errors.New("failed")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// env is what every subcommand gets: streams and the loaded config.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("marbles", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "YAML config file")
	logSpec := global.String("log", "", "log levels, e.g. DEBUG or marbles.grading=DEBUG")
	global.Usage = func() { printUsage(stderr) }

	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() < 1 {
		printUsage(stdout)
		return nil
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *logSpec != "" {
		cfg.LogLevel = *logSpec
	}
	if err := setupLogging(stderr, cfg.LogLevel); err != nil {
		return err
	}
	logger.Debugf("config: max_steps=%d endpoint=%s", cfg.MaxSteps, cfg.Grading.Endpoint)

	e := &env{stdin: stdin, stdout: stdout, stderr: stderr, cfg: cfg}
	cmd, rest := global.Arg(0), global.Args()[1:]

	switch cmd {
	case "run":
		return e.runCommand(rest)
	case "check":
		return e.checkCommand(rest)
	case "fmt":
		return e.fmtCommand(rest)
	case "vet":
		return e.vetCommand(rest)
	case "trace":
		return e.traceCommand(rest)
	case "plot":
		return e.plotCommand(rest)
	case "test":
		return e.testCommand(rest)
	case "submit":
		return e.submitCommand(rest)
	case "debug":
		return e.debugCommand(rest)
	case "version":
		fmt.Fprintf(stdout, "marbles version %s\n", version)
		if commit != "none" {
			fmt.Fprintf(stdout, "  commit: %s\n", commit)
		}
		if date != "unknown" {
			fmt.Fprintf(stdout, "  built:  %s\n", date)
		}
		return nil
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func setupLogging(w io.Writer, spec string) error {
	if _, err := loggo.ReplaceDefaultWriter(loggo.NewSimpleWriter(w, loggo.DefaultFormatter)); err != nil {
		return err
	}
	loggo.DefaultContext().ResetLoggerLevels()
	if err := loggo.ConfigureLoggers(spec); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `marbles - register machine simulator for the marbles computer

Usage:
  marbles [-config file] [-log levels] <command> [arguments]

Commands:
  run <file>            Simulate a program and print the final registers
  check <file>          Parse a program and report syntax errors
  fmt <file>            Print a program in canonical form
  vet <file>            Report unreachable code, unused labels and fallthrough
  trace <file>          Print or export every step of a simulation
  plot <file>           Plot one register over a simulation
  test <file> <cases>   Check a program against YAML test cases
  submit <file>         Submit a program to the grading service
  debug [file]          Start the interactive step debugger
  version               Print version information
  help                  Show this help message

Simulation Options (run, trace, plot, debug):
  -input <a,b,...>      Initial registers (default: all zero)
  -inputs <file>        Input vectors from .csv, .json, .parquet or .txt (run)
  -steps <n>            Step budget (default: 10000)

Check Options:
  -dump                 Pretty-print the parsed program

Fmt Options:
  -w                    Write the result back to the file

Trace Options:
  -format <f>           table, csv, json (one line per step) or sim (one document)
  -o <file>             Output file (default: stdout)

Plot Options:
  -reg <n>              Register to plot (default: 0)
  -height <n>           Plot height in lines
  -width <n>            Plot width in columns

Submit Options:
  -task <name>          max, nBit or sort

Examples:
  marbles run countdown.mrb -input 3
  marbles run max.mrb -inputs cases.csv
  marbles trace add.mrb -input 2,3 -format csv -o trace.csv
  marbles plot countdown.mrb -input 10 -reg 0
  marbles -log DEBUG submit -task sort sort.mrb`)
}
