package vm

import (
	"sort"
	"strconv"
	"strings"
)

// Format returns the canonical display text of a command: the upper-case
// name followed by the comma-separated arguments in parentheses. Jump shows
// its target label instead of numbers.
func Format(cmd Command) string {
	if cmd == nil {
		return ""
	}
	return cmd.String()
}

func formatRegs(op Opcode, regs []int) string {
	var sb strings.Builder
	sb.WriteString(op.String())
	sb.WriteByte('(')
	for i, r := range regs {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(r))
	}
	sb.WriteByte(')')
	return sb.String()
}

// FormatProgram renders p one statement per line, with labels restored in
// front of the instructions they point at. The result parses back to an
// equivalent program, although the original spelling, casing and any
// overwritten duplicate labels are lost.
func FormatProgram(p *Program) string {
	byIndex := p.LabelsAt()

	var sb strings.Builder
	for i, cmd := range p.Commands {
		for _, name := range byIndex[i] {
			sb.WriteString(name)
			sb.WriteString(": ")
		}
		sb.WriteString(strings.ToLower(cmd.String()))
		sb.WriteString(";\n")
	}
	return sb.String()
}

// LabelsAt inverts the label table: instruction index -> label names,
// sorted for stable output.
func (p *Program) LabelsAt() map[int][]string {
	out := make(map[int][]string, len(p.Labels))
	for name, idx := range p.Labels {
		out[idx] = append(out[idx], name)
	}
	for idx := range out {
		sort.Strings(out[idx])
	}
	return out
}
