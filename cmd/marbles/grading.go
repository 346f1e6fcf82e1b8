package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/akhildatla/marbles/pkg/embed"
	"github.com/akhildatla/marbles/pkg/grading"
	"github.com/akhildatla/marbles/pkg/loader"
)

func (e *env) testCommand(args []string) error {
	fs := e.flagSet("test")
	steps := fs.Int("steps", 0, "step budget (default from config)")
	verbose := fs.Bool("v", false, "print passing cases too")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 2 {
		return fmt.Errorf("usage: marbles test <file> <cases.yml>")
	}

	program, err := embed.ParseFile(positional[0])
	if err != nil {
		return err
	}
	cases, err := grading.LoadCases(positional[1])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, err := grading.Check(ctx, program, cases, grading.CheckOptions{
		MaxSteps:    e.maxSteps(&simOptions{steps: *steps}),
		Concurrency: e.cfg.Grading.Concurrency,
	})
	if err != nil {
		return err
	}

	for _, r := range rep.Results {
		if r.Passed {
			if *verbose {
				fmt.Fprintf(e.stdout, "PASS  %s (%d steps)\n", r.Case.Name, r.Steps)
			}
			continue
		}
		fmt.Fprintf(e.stdout, "FAIL  %s: %s\n", r.Case.Name, r.Reason)
	}

	if !rep.OK() {
		fmt.Fprintf(e.stdout, "FAIL: %d of %d cases failed\n", rep.Failed, len(rep.Results))
		return errFailed
	}
	fmt.Fprintf(e.stdout, "ok: %d cases passed in %s\n", rep.Passed, rep.Duration)
	return nil
}

func (e *env) submitCommand(args []string) error {
	fs := e.flagSet("submit")
	taskName := fs.String("task", "", "task to submit for: max, nBit or sort")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	path, err := singleFile("submit", positional)
	if err != nil {
		return err
	}
	task, err := grading.ParseTask(*taskName)
	if err != nil {
		return err
	}

	code, err := loader.LoadProgram(path)
	if err != nil {
		return err
	}
	// The service grades the raw text; reject what would not parse here.
	if _, err := embed.Parse(code); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := grading.NewClient(e.cfg.Grading.Endpoint, grading.WithTimeout(e.cfg.Grading.Timeout))
	res, err := client.Submit(ctx, task, code)
	if err != nil {
		return err
	}

	switch res.Status {
	case grading.VerdictCorrect:
		fmt.Fprintf(e.stdout, "correct: the password part is %s\n", res.Message())
		return nil
	case grading.VerdictWrong:
		fmt.Fprintln(e.stdout, "wrong: the program is not correct")
	default:
		fmt.Fprintf(e.stdout, "error: the service could not evaluate the program, try again later")
		if msg := res.Message(); msg != "" {
			fmt.Fprintf(e.stdout, " (%s)", msg)
		}
		fmt.Fprintln(e.stdout)
	}
	return errFailed
}
