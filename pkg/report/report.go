// Package report turns simulations into tables, plots and export files.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/exports"

	"github.com/akhildatla/marbles/pkg/vm"
)

// Errors
var (
	ErrNoSimulation    = errors.New("no simulation")
	ErrInvalidRegister = errors.New("invalid register index")
)

// Frame converts a simulation into a DataFrame with one row per state.
//
// Row 0 is the input state and has nil ic and command. Row i (i >= 1) is
// the state after step i. Register columns r0..rN cover the widest state
// of the run; registers beyond a row's canonical length read as 0.
func Frame(sim *vm.Simulation) *dataframe.DataFrame {
	width := len(sim.Input)
	for _, step := range sim.Steps {
		width = max(width, len(step.State))
	}

	rows := len(sim.Steps) + 1
	stepVals := make([]interface{}, 0, rows)
	icVals := make([]interface{}, 0, rows)
	cmdVals := make([]interface{}, 0, rows)

	stepVals = append(stepVals, int64(0))
	icVals = append(icVals, nil)
	cmdVals = append(cmdVals, nil)
	for i, step := range sim.Steps {
		stepVals = append(stepVals, int64(i+1))
		icVals = append(icVals, int64(step.IC))
		cmdVals = append(cmdVals, vm.Format(step.Command))
	}

	series := []dataframe.Series{
		dataframe.NewSeriesInt64("step", nil, stepVals...),
		dataframe.NewSeriesInt64("ic", nil, icVals...),
		dataframe.NewSeriesString("command", nil, cmdVals...),
	}
	for r := 0; r < width; r++ {
		series = append(series, registerSeries(sim, r))
	}

	return dataframe.NewDataFrame(series...)
}

// registerSeries holds register r across the run. Values that do not fit
// an int64 turn the column into strings.
func registerSeries(sim *vm.Simulation, r int) dataframe.Series {
	name := "r" + strconv.Itoa(r)
	values := make([]uint64, 0, len(sim.Steps)+1)
	values = append(values, sim.Input.Get(r))
	fits := sim.Input.Get(r) <= math.MaxInt64
	for _, step := range sim.Steps {
		v := step.State.Get(r)
		fits = fits && v <= math.MaxInt64
		values = append(values, v)
	}

	vals := make([]interface{}, len(values))
	for i, v := range values {
		if fits {
			vals[i] = int64(v)
		} else {
			vals[i] = strconv.FormatUint(v, 10)
		}
	}
	if fits {
		return dataframe.NewSeriesInt64(name, nil, vals...)
	}
	return dataframe.NewSeriesString(name, nil, vals...)
}

// WriteCSV writes the trace of sim as CSV. The input row has empty ic and
// command cells.
func WriteCSV(ctx context.Context, w io.Writer, sim *vm.Simulation) error {
	if sim == nil {
		return ErrNoSimulation
	}
	empty := ""
	err := exports.ExportToCSV(ctx, w, Frame(sim), exports.CSVExportOptions{
		Separator:  ',',
		NullString: &empty,
	})
	if err != nil {
		return fmt.Errorf("exporting csv: %w", err)
	}
	return nil
}

// WriteJSON writes the trace of sim as JSON lines, one object per row.
func WriteJSON(ctx context.Context, w io.Writer, sim *vm.Simulation) error {
	if sim == nil {
		return ErrNoSimulation
	}
	if err := exports.ExportToJSON(ctx, w, Frame(sim)); err != nil {
		return fmt.Errorf("exporting json: %w", err)
	}
	return nil
}
