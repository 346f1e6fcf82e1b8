package report

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/akhildatla/marbles/pkg/vm"
)

type simulationDoc struct {
	Status vm.Status `json:"status"`
	Error  string    `json:"error,omitempty"`
	Input  vm.State  `json:"input"`
	Final  vm.State  `json:"final"`
	Steps  []stepDoc `json:"steps"`
}

type stepDoc struct {
	Step    int      `json:"step"`
	IC      int      `json:"ic"`
	Command string   `json:"command"`
	State   vm.State `json:"state"`
}

// WriteSimulationJSON writes sim as a single indented JSON document with
// its status, input, final state and every step.
func WriteSimulationJSON(w io.Writer, sim *vm.Simulation) error {
	if sim == nil {
		return ErrNoSimulation
	}

	doc := simulationDoc{
		Status: sim.Status,
		Input:  nonNil(sim.Input),
		Final:  nonNil(sim.Final()),
		Steps:  make([]stepDoc, len(sim.Steps)),
	}
	if sim.Err != nil {
		doc.Error = sim.Err.Error()
	}
	for i, step := range sim.Steps {
		doc.Steps[i] = stepDoc{
			Step:    i + 1,
			IC:      step.IC,
			Command: vm.Format(step.Command),
			State:   nonNil(step.State),
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func nonNil(s vm.State) vm.State {
	if s == nil {
		return vm.State{}
	}
	return s
}
