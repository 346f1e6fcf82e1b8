// Package compiler turns marbles program text into a validated vm.Program.
//
// A program is a sequence of statements, each terminated by ';':
//
//	start: test(0);
//	stop();
//	remove(0);
//	jump(start);
//
// Case and whitespace are ignored. Parsing is all-or-nothing: every failure
// wraps ErrRejected and no partial program is returned.
//
// Register indices are limited to MaxRegisterIndex (1048576); a program
// naming a larger register is rejected.
package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/akhildatla/marbles/pkg/vm"
)

// MaxRegisterIndex is the largest register index a program may name.
const MaxRegisterIndex = 1 << 20

const jumpName = "jump"

// ErrRejected is returned for any syntactically or referentially invalid
// program.
var ErrRejected = errors.New("invalid program")

// Compile parses and validates program text.
func Compile(source string) (*vm.Program, error) {
	parser := NewParser(source)
	asmProgram, err := parser.Parse()
	if err != nil {
		return nil, err
	}

	compiler := &Compiler{
		commands: make([]vm.Command, 0, len(asmProgram.Statements)),
	}

	return compiler.compile(asmProgram)
}

// Compiler lowers parsed statements to vm commands.
type Compiler struct {
	commands []vm.Command
}

func (c *Compiler) compile(program *AsmProgram) (*vm.Program, error) {
	for _, stmt := range program.Statements {
		cmd, err := c.compileStatement(stmt)
		if err != nil {
			return nil, fmt.Errorf("%w: statement %d: %v", ErrRejected, stmt.Index, err)
		}
		c.commands = append(c.commands, cmd)
	}

	for i, cmd := range c.commands {
		jump, ok := cmd.(vm.Jump)
		if !ok {
			continue
		}
		if _, ok := program.Labels[jump.Label]; !ok {
			return nil, fmt.Errorf("%w: statement %d: undefined label %q", ErrRejected, i, jump.Label)
		}
	}

	return &vm.Program{
		Commands:  c.commands,
		Labels:    program.Labels,
		Redefined: program.Redefined,
	}, nil
}

func (c *Compiler) compileStatement(stmt AsmStatement) (vm.Command, error) {
	op, ok := vm.OpcodeFromString(strings.ToUpper(stmt.Name))
	if !ok {
		return nil, fmt.Errorf("unknown command %q", stmt.Name)
	}

	if op == vm.OpJump {
		return vm.NewCommand(op, nil, stmt.Operands[0].Value)
	}

	args := make([]int, 0, len(stmt.Operands))
	for _, tok := range stmt.Operands {
		reg, err := parseRegister(tok.Value)
		if err != nil {
			return nil, err
		}
		args = append(args, reg)
	}
	return vm.NewCommand(op, args, "")
}

func parseRegister(value string) (int, error) {
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil || n > MaxRegisterIndex {
		return 0, fmt.Errorf("register %s out of range (max %d)", value, MaxRegisterIndex)
	}
	return int(n), nil
}
