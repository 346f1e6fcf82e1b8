// Package embed provides the Go embedding API for marbles programs.
//
// Pass the program text and an input vector, get the full trace back.
//
// Basic usage:
//
//	sim, err := embed.Run(`
//	    start: test(0);
//	    stop();
//	    remove(0);
//	    jump(start);
//	`, []uint64{3})
//
// With options:
//
//	sim, err := embed.Run(code, input,
//	    embed.WithMaxSteps(50000),
//	    embed.WithStats(func(s *vm.ExecutionStats) { ... }),
//	)
package embed

import (
	"errors"
	"fmt"

	"github.com/akhildatla/marbles/pkg/compiler"
	"github.com/akhildatla/marbles/pkg/loader"
	"github.com/akhildatla/marbles/pkg/vm"
)

// Common errors
var (
	ErrSyntax = errors.New("syntax invalid")
)

// Options configures execution behavior.
type Options struct {
	// MaxSteps is the step budget. Zero means vm.DefaultMaxSteps.
	MaxSteps int

	// Stats, when set, receives the execution statistics of the run.
	Stats func(*vm.ExecutionStats)
}

// Option is a functional option for configuring execution.
type Option func(*Options)

// WithMaxSteps sets the step budget.
func WithMaxSteps(n int) Option {
	return func(o *Options) {
		o.MaxSteps = n
	}
}

// WithStats collects execution statistics and hands them to fn after the
// run.
func WithStats(fn func(*vm.ExecutionStats)) Option {
	return func(o *Options) {
		o.Stats = fn
	}
}

// Parse validates program text. Every parse failure is reported as
// ErrSyntax; the wrapped message carries a human-readable hint.
func Parse(code string) (*vm.Program, error) {
	program, err := compiler.Compile(code)
	if err != nil {
		if errors.Is(err, compiler.ErrRejected) {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return nil, err
	}
	return program, nil
}

// ParseFile reads a program file and validates it.
func ParseFile(path string) (*vm.Program, error) {
	code, err := loader.LoadProgram(path)
	if err != nil {
		return nil, err
	}
	return Parse(code)
}

// Run parses code and simulates it from input. A program that fails at run
// time is not an error: inspect the returned Simulation's Status.
func Run(code string, input []uint64, opts ...Option) (*vm.Simulation, error) {
	program, err := Parse(code)
	if err != nil {
		return nil, err
	}
	return Simulate(program, input, opts...), nil
}

// RunFile reads a program file and runs it.
func RunFile(path string, input []uint64, opts ...Option) (*vm.Simulation, error) {
	program, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return Simulate(program, input, opts...), nil
}

// Simulate runs an already parsed program with the given options.
func Simulate(program *vm.Program, input []uint64, opts ...Option) *vm.Simulation {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	machine := vm.NewVM()
	machine.SetMaxSteps(options.MaxSteps)
	if options.Stats != nil {
		machine.EnableStats()
	}

	sim := machine.Simulate(program, vm.State(input))

	if options.Stats != nil {
		options.Stats(machine.Stats())
	}
	return sim
}
