package report

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/akhildatla/marbles/pkg/vm"
)

// DefaultPlotHeight is used when PlotOptions.Height is not set.
const DefaultPlotHeight = 10

// PlotOptions controls Plot.
type PlotOptions struct {
	Height  int
	Width   int // 0 keeps one column per state
	Caption string
}

// Plot draws the value of register reg over the run, from the input state
// through every step.
func Plot(sim *vm.Simulation, reg int, opts PlotOptions) (string, error) {
	if sim == nil {
		return "", ErrNoSimulation
	}
	if reg < 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidRegister, reg)
	}

	data := make([]float64, 0, len(sim.Steps)+1)
	data = append(data, float64(sim.Input.Get(reg)))
	for _, step := range sim.Steps {
		data = append(data, float64(step.State.Get(reg)))
	}

	height := opts.Height
	if height <= 0 {
		height = DefaultPlotHeight
	}
	caption := opts.Caption
	if caption == "" {
		caption = fmt.Sprintf("R%d over %d steps (%s)", reg, len(sim.Steps), sim.Status)
	}

	options := []asciigraph.Option{asciigraph.Height(height), asciigraph.Caption(caption)}
	if opts.Width > 0 {
		options = append(options, asciigraph.Width(opts.Width))
	}
	return asciigraph.Plot(data, options...), nil
}
