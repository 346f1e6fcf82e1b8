package grading

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/akhildatla/marbles/pkg/vm"
)

// CheckOptions controls Check.
type CheckOptions struct {
	MaxSteps    int // 0 means vm.DefaultMaxSteps
	Concurrency int // 0 means one simulation at a time
}

// CaseResult is the outcome of one Case.
type CaseResult struct {
	Case   Case
	Passed bool
	Status vm.Status
	Steps  int
	Final  vm.State
	Reason string // empty when Passed
}

// Report collects the results of Check in case order.
type Report struct {
	Results  []CaseResult
	Passed   int
	Failed   int
	Duration time.Duration
}

// OK reports whether every case passed.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// Check runs program once per case. Simulations are independent and run
// concurrently up to opts.Concurrency. It only fails when ctx is done.
func Check(ctx context.Context, program *vm.Program, cases []Case, opts CheckOptions) (*Report, error) {
	start := time.Now()
	results := make([]CaseResult, len(cases))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Concurrency, 1))

	for i := range cases {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			machine := vm.NewVM()
			machine.SetMaxSteps(opts.MaxSteps)
			results[i] = judge(cases[i], machine.Simulate(program, vm.State(cases[i].Input)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Results: results, Duration: time.Since(start)}
	for _, r := range results {
		if r.Passed {
			report.Passed++
		} else {
			report.Failed++
			logger.Debugf("case %q failed: %s", r.Case.Name, r.Reason)
		}
	}
	logger.Infof("%d/%d cases passed in %s", report.Passed, len(cases), report.Duration)
	return report, nil
}

func judge(c Case, sim *vm.Simulation) CaseResult {
	res := CaseResult{
		Case:   c,
		Status: sim.Status,
		Steps:  len(sim.Steps),
		Final:  sim.Final(),
	}

	if sim.Status != vm.StatusSuccess {
		res.Reason = fmt.Sprintf("simulation failed after %d steps: %v", res.Steps, sim.Err)
		return res
	}

	want := vm.State(c.Expect)
	if len(c.Registers) == 0 {
		if !res.Final.Equal(want) {
			res.Reason = fmt.Sprintf("expected %v, got %v", want.Canonical(), res.Final)
			return res
		}
		res.Passed = true
		return res
	}

	for i, r := range c.Registers {
		expected := want.Get(i)
		if got := res.Final.Get(r); got != expected {
			res.Reason = fmt.Sprintf("R%d: expected %d, got %d", r, expected, got)
			return res
		}
	}
	res.Passed = true
	return res
}
