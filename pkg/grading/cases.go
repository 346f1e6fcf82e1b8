package grading

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrNoCases is returned for a case file without cases.
var ErrNoCases = errors.New("no test cases")

// Case is one local test: run the program from Input and compare the
// final registers with Expect. When Registers is set only those
// registers are compared, and Expect[i] is the value of Registers[i].
type Case struct {
	Name      string   `yaml:"name"`
	Input     []uint64 `yaml:"input"`
	Expect    []uint64 `yaml:"expect"`
	Registers []int    `yaml:"registers,omitempty"`
}

type caseFile struct {
	Task  string `yaml:"task,omitempty"`
	Cases []Case `yaml:"cases"`
}

// LoadCases reads a YAML case file:
//
//	task: max
//	cases:
//	  - name: first is larger
//	    input: [5, 3]
//	    registers: [0]
//	    expect: [5]
func LoadCases(path string) ([]Case, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cases: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw caseFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("cases: %s: %w", path, ErrNoCases)
		}
		return nil, fmt.Errorf("cases: parse %s: %w", path, err)
	}
	if len(raw.Cases) == 0 {
		return nil, fmt.Errorf("cases: %s: %w", path, ErrNoCases)
	}

	for i := range raw.Cases {
		c := &raw.Cases[i]
		if c.Name == "" {
			c.Name = fmt.Sprintf("case %d", i+1)
		}
		if len(c.Registers) > 0 && len(c.Registers) != len(c.Expect) {
			return nil, fmt.Errorf("cases: %s: %s: %d registers but %d expected values", path, c.Name, len(c.Registers), len(c.Expect))
		}
		for _, r := range c.Registers {
			if r < 0 {
				return nil, fmt.Errorf("cases: %s: %s: negative register %d", path, c.Name, r)
			}
		}
	}
	return raw.Cases, nil
}
