// Package loader reads program text and register input vectors from disk.
//
// Input vectors can come from CSV, JSON or Parquet files (one vector per
// row, one register per column) or from a comma-separated string. Every
// value is checked to be a non-negative integer, and each vector's total to
// stay within vm.MaxTotal, before it reaches the VM.
package loader

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/akhildatla/marbles/pkg/compiler"
	"github.com/akhildatla/marbles/pkg/vm"
)

// Error definitions
var (
	ErrEmptyFile            = errors.New("empty input file")
	ErrNoInputs             = errors.New("no input vectors")
	ErrUnsupportedFormat    = errors.New("unsupported input format")
	ErrInvalidRegisterValue = errors.New("register values must be non-negative integers")
)

// LoadProgram reads program text from path.
func LoadProgram(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading program: %w", err)
	}
	return string(data), nil
}

// LoadFrame loads a CSV, JSON or Parquet file, chosen by extension.
func LoadFrame(path string) (*dataframe.DataFrame, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".json":
		return LoadJSON(path)
	case ".parquet":
		return LoadParquet(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadInputs loads every input vector stored in path. Besides the
// LoadFrame formats, a .txt file holds one comma-separated vector per line.
func LoadInputs(path string) ([]vm.State, error) {
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		states, err := ParseStates(string(data))
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		return states, nil
	}

	df, err := LoadFrame(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	states, err := FrameToStates(df)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return states, nil
}

// FrameToStates converts each row of df into a canonical State.
//
// When every column is named r<N> (case-insensitive) the column feeds
// register N, so column order does not matter and gaps read as zero.
// Otherwise columns map to registers in order. Nil cells are zero.
func FrameToStates(df *dataframe.DataFrame) ([]vm.State, error) {
	if df == nil || len(df.Series) == 0 {
		return nil, ErrNoInputs
	}

	regs := registerColumns(df)
	width := 0
	for _, r := range regs {
		if r+1 > width {
			width = r + 1
		}
	}

	rows := df.Series[0].NRows()
	if rows == 0 {
		return nil, ErrNoInputs
	}

	states := make([]vm.State, 0, rows)
	for row := 0; row < rows; row++ {
		state := make(vm.State, width)
		for col, series := range df.Series {
			v, err := cellValue(series.Value(row))
			if err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", row+1, series.Name(), err)
			}
			state[regs[col]] = v
		}
		if err := checkTotal(state); err != nil {
			return nil, fmt.Errorf("row %d: %w", row+1, err)
		}
		states = append(states, state.Canonical())
	}
	return states, nil
}

// registerColumns returns the register index for each column of df.
func registerColumns(df *dataframe.DataFrame) []int {
	regs := make([]int, len(df.Series))
	seen := make(map[int]bool, len(df.Series))
	for i, s := range df.Series {
		n, ok := registerName(s.Name())
		if !ok || seen[n] {
			for j := range regs {
				regs[j] = j
			}
			return regs
		}
		seen[n] = true
		regs[i] = n
	}
	return regs
}

func registerName(name string) (int, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) < 2 || name[0] != 'r' {
		return 0, false
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 0 || n > compiler.MaxRegisterIndex {
		return 0, false
	}
	return n, true
}

func cellValue(v any) (uint64, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case int64:
		if val < 0 {
			return 0, fmt.Errorf("%w: %d", ErrInvalidRegisterValue, val)
		}
		return uint64(val), nil
	case int32:
		return cellValue(int64(val))
	case int:
		return cellValue(int64(val))
	case uint64:
		return val, nil
	case uint32:
		return uint64(val), nil
	case float32:
		return cellValue(float64(val))
	case float64:
		if val < 0 || val != math.Trunc(val) || val > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %v", ErrInvalidRegisterValue, val)
		}
		return uint64(val), nil
	case string:
		return parseValue(val)
	default:
		return 0, fmt.Errorf("%w: %v (%T)", ErrInvalidRegisterValue, v, v)
	}
}
