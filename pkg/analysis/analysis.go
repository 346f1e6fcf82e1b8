// Package analysis reports static findings about a parsed program:
// unreachable instructions, labels nothing jumps to, labels defined more
// than once, and paths that run past the last instruction.
//
// It never rewrites the program.
package analysis

import (
	"fmt"
	"sort"

	"github.com/akhildatla/marbles/pkg/vm"
)

// Kind classifies a Finding.
type Kind uint8

const (
	KindUnreachable Kind = iota
	KindUnusedLabel
	KindRedefinedLabel
	KindFallthrough
)

var kindNames = map[Kind]string{
	KindUnreachable:    "unreachable",
	KindUnusedLabel:    "unused-label",
	KindRedefinedLabel: "redefined-label",
	KindFallthrough:    "fallthrough",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Finding is one diagnostic. IC is the instruction it refers to, or -1
// when it refers to a label with no single position.
type Finding struct {
	Kind    Kind
	IC      int
	Label   string
	Message string
}

func (f Finding) String() string {
	if f.IC < 0 {
		return fmt.Sprintf("%s: %s", f.Kind, f.Message)
	}
	return fmt.Sprintf("ic %d: %s: %s", f.IC, f.Kind, f.Message)
}

// Analyzer runs the enabled checks.
type Analyzer struct {
	unreachable bool
	unusedLabel bool
	redefined   bool
	fallThrough bool
}

// Option is a functional option for the Analyzer.
type Option func(*Analyzer)

// WithUnreachable reports instructions no execution can reach from ic 0.
func WithUnreachable() Option {
	return func(a *Analyzer) {
		a.unreachable = true
	}
}

// WithUnusedLabels reports labels that no jump targets.
func WithUnusedLabels() Option {
	return func(a *Analyzer) {
		a.unusedLabel = true
	}
}

// WithRedefinedLabels reports labels defined more than once.
func WithRedefinedLabels() Option {
	return func(a *Analyzer) {
		a.redefined = true
	}
}

// WithFallthrough reports reachable instructions whose successor lies past
// the end of the program. Such a run ends with status fail.
func WithFallthrough() Option {
	return func(a *Analyzer) {
		a.fallThrough = true
	}
}

// WithAllChecks enables every check.
func WithAllChecks() Option {
	return func(a *Analyzer) {
		a.unreachable = true
		a.unusedLabel = true
		a.redefined = true
		a.fallThrough = true
	}
}

// New creates a new Analyzer with the given options.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Analyze returns the findings for program ordered by instruction.
func (a *Analyzer) Analyze(program *vm.Program) []Finding {
	if program == nil || len(program.Commands) == 0 {
		return nil
	}

	var findings []Finding
	g := buildGraph(program)

	if a.unreachable {
		findings = append(findings, g.unreachable(program)...)
	}
	if a.fallThrough {
		findings = append(findings, g.fallthroughs(program)...)
	}
	if a.unusedLabel {
		findings = append(findings, unusedLabels(program)...)
	}
	if a.redefined {
		findings = append(findings, redefinedLabels(program)...)
	}

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].IC != findings[j].IC {
			return findings[i].IC < findings[j].IC
		}
		return findings[i].Kind < findings[j].Kind
	})
	return findings
}
