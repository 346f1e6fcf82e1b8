package analysis

import (
	"fmt"
	"sort"

	"github.com/akhildatla/marbles/pkg/vm"
)

func unusedLabels(program *vm.Program) []Finding {
	targeted := make(map[string]bool)
	for _, cmd := range program.Commands {
		if j, ok := cmd.(vm.Jump); ok {
			targeted[j.Label] = true
		}
	}

	names := make([]string, 0, len(program.Labels))
	for name := range program.Labels {
		if !targeted[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	findings := make([]Finding, 0, len(names))
	for _, name := range names {
		findings = append(findings, Finding{
			Kind:    KindUnusedLabel,
			IC:      program.Labels[name],
			Label:   name,
			Message: fmt.Sprintf("label %q is never jumped to", name),
		})
	}
	return findings
}

func redefinedLabels(program *vm.Program) []Finding {
	seen := make(map[string]bool, len(program.Redefined))
	findings := make([]Finding, 0, len(program.Redefined))
	for _, name := range program.Redefined {
		if seen[name] {
			continue
		}
		seen[name] = true
		findings = append(findings, Finding{
			Kind:    KindRedefinedLabel,
			IC:      program.Labels[name],
			Label:   name,
			Message: fmt.Sprintf("label %q is defined more than once; the last definition wins", name),
		})
	}
	return findings
}
