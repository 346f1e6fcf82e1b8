package analysis

import (
	"fmt"

	"github.com/akhildatla/marbles/pkg/vm"
)

// graph is the control-flow graph of a program: succ[i] lists the
// instruction counters that may run after instruction i.
type graph struct {
	succ    [][]int
	reached []bool
}

func buildGraph(program *vm.Program) *graph {
	n := len(program.Commands)
	g := &graph{succ: make([][]int, n), reached: make([]bool, n)}

	for i, cmd := range program.Commands {
		g.succ[i] = successors(cmd, i, program.Labels)
	}

	// Depth-first walk from ic 0.
	stack := []int{0}
	g.reached[0] = true
	for len(stack) > 0 {
		ic := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range g.succ[ic] {
			if next < 0 || next >= n || g.reached[next] {
				continue
			}
			g.reached[next] = true
			stack = append(stack, next)
		}
	}
	return g
}

func successors(cmd vm.Command, ic int, labels map[string]int) []int {
	switch c := cmd.(type) {
	case vm.Stop:
		return nil
	case vm.Jump:
		target, ok := labels[c.Label]
		if !ok {
			return []int{-1}
		}
		return []int{target}
	case vm.Test:
		// With no registers listed the test always falls through.
		if len(c.Regs) == 0 {
			return []int{ic + 1}
		}
		return []int{ic + 1, ic + 2}
	default:
		return []int{ic + 1}
	}
}

func (g *graph) unreachable(program *vm.Program) []Finding {
	var findings []Finding
	for i, ok := range g.reached {
		if ok {
			continue
		}
		findings = append(findings, Finding{
			Kind:    KindUnreachable,
			IC:      i,
			Message: fmt.Sprintf("%s is never executed", vm.Format(program.Commands[i])),
		})
	}
	return findings
}

func (g *graph) fallthroughs(program *vm.Program) []Finding {
	n := len(program.Commands)
	var findings []Finding
	for i, next := range g.succ {
		if !g.reached[i] {
			continue
		}
		for _, ic := range next {
			if ic >= 0 && ic < n {
				continue
			}
			findings = append(findings, Finding{
				Kind:    KindFallthrough,
				IC:      i,
				Message: fmt.Sprintf("%s can continue past the last instruction", vm.Format(program.Commands[i])),
			})
			break
		}
	}
	return findings
}
