package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/akhildatla/marbles/pkg/vm"
)

const marker = ">"

// TableOptions controls WriteTable.
type TableOptions struct {
	// Highlight marks the row of this step (1-based, 0 is the input row).
	// Negative disables the marker.
	Highlight int

	// From and To bound the printed steps, inclusive. To <= 0 means the
	// last step.
	From, To int
}

// WriteTable renders the trace of sim as a text table. When program is
// non-nil the labels of each instruction are shown next to it.
func WriteTable(w io.Writer, program *vm.Program, sim *vm.Simulation, opts TableOptions) error {
	if sim == nil {
		return ErrNoSimulation
	}

	var labels map[int][]string
	if program != nil {
		labels = program.LabelsAt()
	}

	to := opts.To
	if to <= 0 || to > len(sim.Steps) {
		to = len(sim.Steps)
	}
	from := max(opts.From, 0)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"", "step", "ic", "label", "command", "registers"})
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)

	for i := from; i <= to; i++ {
		mark := ""
		if i == opts.Highlight {
			mark = marker
		}
		if i == 0 {
			table.Append([]string{mark, "0", "", "", "", sim.Input.String()})
			continue
		}
		step := sim.Steps[i-1]
		table.Append([]string{
			mark,
			strconv.Itoa(i),
			strconv.Itoa(step.IC),
			strings.Join(labels[step.IC], ","),
			vm.Format(step.Command),
			step.State.String(),
		})
	}

	table.Render()
	return nil
}

// WriteProgram lists program with one row per instruction, marking the
// instruction at ic. Pass a negative ic for no marker.
func WriteProgram(w io.Writer, program *vm.Program, ic int) {
	labels := program.LabelsAt()

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"", "ic", "label", "command"})
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)

	for i, cmd := range program.Commands {
		mark := ""
		if i == ic {
			mark = marker
		}
		table.Append([]string{mark, strconv.Itoa(i), strings.Join(labels[i], ","), vm.Format(cmd)})
	}
	table.Render()
}
