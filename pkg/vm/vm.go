// Package vm implements the marbles register machine.
//
// The machine has an unbounded vector of non-negative integer registers
// (see State) and runs a Program of seven commands: ADD, REMOVE, TEST,
// JUMP, SWAP, DUMP and STOP. Running a program never returns an error;
// the outcome is a Simulation carrying the full trace.
//
// Basic usage:
//
//	program, err := compiler.Compile("start: test(0); stop(); remove(0); jump(start);")
//	sim := vm.Simulate(program, vm.NewState(3))
//
// With a custom step budget and statistics:
//
//	v := vm.NewVM()
//	v.SetMaxSteps(50000)
//	v.EnableStats()
//	sim := v.Simulate(program, input)
//	stats := v.Stats()
package vm

import (
	"errors"
	"fmt"
	"time"
)

// DefaultMaxSteps is the step budget used when none is configured. It is
// an approximate guard against programs that do not terminate, not a
// halting test: a program that legitimately needs more steps also fails.
const DefaultMaxSteps = 10000

// Error definitions
var (
	ErrStepLimitExceeded = errors.New("step limit exceeded")
	ErrICOutOfRange      = errors.New("instruction counter out of range")
	ErrInputTooLarge     = errors.New("input register total too large")
)

// Program is a parsed program: the commands in source order and the label
// table mapping label names to instruction indices. Every Jump target is
// a key of Labels. A Program is not modified after parsing.
type Program struct {
	Commands []Command
	Labels   map[string]int

	// Redefined lists label names that were defined more than once. The
	// last definition wins.
	Redefined []string
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.Commands)
}

// Status is the outcome of a simulation.
type Status uint8

const (
	StatusSuccess Status = iota
	StatusFail
)

// String returns "success" or "fail".
func (s Status) String() string {
	if s == StatusSuccess {
		return "success"
	}
	return "fail"
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "success":
		*s = StatusSuccess
	case "fail":
		*s = StatusFail
	default:
		return fmt.Errorf("unknown status %q", b)
	}
	return nil
}

// Step records one executed instruction: the command, the instruction
// counter it ran at and the canonical state after it.
type Step struct {
	Command Command
	IC      int
	State   State
}

// Simulation is the result of running a program.
type Simulation struct {
	Input  State // canonical initial state
	Status Status
	Steps  []Step

	// Err says why a failed simulation stopped: ErrStepLimitExceeded,
	// ErrICOutOfRange or ErrInputTooLarge. It is nil on success.
	Err error
}

// Final returns the state after the last recorded step, or the input when
// nothing ran.
func (s *Simulation) Final() State {
	if len(s.Steps) == 0 {
		return s.Input
	}
	return s.Steps[len(s.Steps)-1].State
}

// StateAt returns the state before step i runs (i == len(Steps) gives the
// final state).
func (s *Simulation) StateAt(i int) State {
	if i <= 0 {
		return s.Input
	}
	if i > len(s.Steps) {
		i = len(s.Steps)
	}
	return s.Steps[i-1].State
}

// ExecutionStats contains metrics about one simulation.
type ExecutionStats struct {
	StepsExecuted   int64          // Total instructions executed
	ExecutionTimeNs int64          // Wall time in nanoseconds
	PeakRegisters   int            // Widest canonical state seen
	OpCounts        map[string]int // Executions per opcode name
}

// VM holds execution settings. Simulate itself keeps no state between
// calls apart from statistics, so a VM without stats enabled may be shared
// between goroutines.
type VM struct {
	maxSteps int

	stats        ExecutionStats
	statsEnabled bool
}

// NewVM creates a VM with the default step budget.
func NewVM() *VM {
	return &VM{maxSteps: DefaultMaxSteps}
}

// SetMaxSteps sets the step budget. Values below 1 restore the default.
func (vm *VM) SetMaxSteps(n int) {
	if n < 1 {
		n = DefaultMaxSteps
	}
	vm.maxSteps = n
}

// MaxSteps returns the configured step budget.
func (vm *VM) MaxSteps() int {
	return vm.maxSteps
}

// EnableStats enables execution statistics collection.
func (vm *VM) EnableStats() {
	vm.statsEnabled = true
	vm.stats = ExecutionStats{OpCounts: make(map[string]int)}
}

// Stats returns the statistics of the last Simulate call, or nil if stats
// were not enabled via EnableStats.
func (vm *VM) Stats() *ExecutionStats {
	if !vm.statsEnabled {
		return nil
	}
	return &vm.stats
}

// Simulate runs program from the given initial state with the default
// settings.
func Simulate(program *Program, input State) *Simulation {
	return NewVM().Simulate(program, input)
}

// Simulate runs program from the given initial state. The result depends
// only on program, input and the step budget.
func (vm *VM) Simulate(program *Program, input State) *Simulation {
	var startTime time.Time
	if vm.statsEnabled {
		startTime = time.Now()
		vm.stats = ExecutionStats{OpCounts: make(map[string]int)}
	}

	sim := &Simulation{
		Input:  input.Canonical(),
		Status: StatusSuccess,
		Steps:  []Step{},
	}

	state := sim.Input
	ic := 0
	_, fits := state.Total()
	if !fits {
		sim.Status, sim.Err = StatusFail, ErrInputTooLarge
	}
	for fits {
		if len(sim.Steps) >= vm.maxSteps {
			sim.Status, sim.Err = StatusFail, ErrStepLimitExceeded
			break
		}
		if ic < 0 || ic >= len(program.Commands) {
			sim.Status, sim.Err = StatusFail, ErrICOutOfRange
			break
		}

		cmd := program.Commands[ic]
		next, nextIC, halt := cmd.exec(state, ic, program.Labels)
		next = next.Canonical()

		sim.Steps = append(sim.Steps, Step{Command: cmd, IC: ic, State: next})

		if vm.statsEnabled {
			vm.stats.StepsExecuted++
			vm.stats.OpCounts[cmd.Op().String()]++
			if len(next) > vm.stats.PeakRegisters {
				vm.stats.PeakRegisters = len(next)
			}
		}

		if halt {
			break
		}
		state, ic = next, nextIC
	}

	if vm.statsEnabled {
		vm.stats.ExecutionTimeNs = time.Since(startTime).Nanoseconds()
	}
	return sim
}
