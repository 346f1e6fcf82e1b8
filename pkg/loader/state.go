package loader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/akhildatla/marbles/pkg/vm"
)

// ParseState parses a register vector such as "3, 0, 5" or "[3 0 5]".
// Values may be separated by commas and/or whitespace; an empty string is
// the all-zero state.
func ParseState(text string) (vm.State, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "[")
	text = strings.TrimSuffix(text, "]")

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	state := make(vm.State, 0, len(fields))
	for i, f := range fields {
		v, err := parseValue(f)
		if err != nil {
			return nil, fmt.Errorf("register %d: %w", i, err)
		}
		state = append(state, v)
	}
	if err := checkTotal(state); err != nil {
		return nil, err
	}
	return state.Canonical(), nil
}

// ParseStates parses one register vector per line, skipping blank lines
// and lines starting with '#'.
func ParseStates(text string) ([]vm.State, error) {
	var states []vm.State
	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s, err := ParseState(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		states = append(states, s)
	}
	if len(states) == 0 {
		return nil, ErrNoInputs
	}
	return states, nil
}

// checkTotal rejects states whose registers sum past vm.MaxTotal.
func checkTotal(s vm.State) error {
	if _, ok := s.Total(); !ok {
		return fmt.Errorf("%w: register total exceeds %d", ErrInvalidRegisterValue, uint64(vm.MaxTotal))
	}
	return nil
}

func parseValue(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRegisterValue, s)
	}
	return v, nil
}
