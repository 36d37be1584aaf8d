package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownGate is returned for a gate name outside the GCSE set.
var ErrUnknownGate = errors.New("unknown logic gate")

type gate struct {
	inputs      int
	eval        func(in []int) int
	explanation string
}

// gates holds the truth functions for every gate on the specification.
var gates = map[string]gate{
	"AND":  {2, func(in []int) int { return in[0] & in[1] }, "AND outputs 1 only when both inputs are 1."},
	"OR":   {2, func(in []int) int { return in[0] | in[1] }, "OR outputs 1 when at least one input is 1."},
	"NOT":  {1, func(in []int) int { return 1 - in[0] }, "NOT inverts the input: 0 becomes 1 and 1 becomes 0."},
	"XOR":  {2, func(in []int) int { return in[0] ^ in[1] }, "XOR outputs 1 only when the inputs are different."},
	"NAND": {2, func(in []int) int { return 1 - (in[0] & in[1]) }, "NAND is NOT AND: the opposite of an AND gate."},
	"NOR":  {2, func(in []int) int { return 1 - (in[0] | in[1]) }, "NOR is NOT OR: the opposite of an OR gate."},
}

// GateOutput evaluates the named gate for the given binary inputs.
func GateOutput(name string, inputs []int) (int, error) {
	g, ok := gates[strings.ToUpper(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownGate, name)
	}
	if len(inputs) != g.inputs {
		return 0, fmt.Errorf("gate %s takes %d inputs, got %d", name, g.inputs, len(inputs))
	}
	for _, v := range inputs {
		if v != 0 && v != 1 {
			return 0, fmt.Errorf("gate %s: input %d is not binary", name, v)
		}
	}
	return g.eval(inputs), nil
}

// gateQuestion turns one truth-table row into a two-option question whose
// answer key is the gate's own output.
func gateQuestion(id, name string, inputs []int) (Question, error) {
	out, err := GateOutput(name, inputs)
	if err != nil {
		return Question{}, err
	}
	labels := []string{"A", "B"}
	parts := make([]string, len(inputs))
	for i, v := range inputs {
		if len(inputs) == 1 {
			parts[i] = fmt.Sprintf("Input: %d", v)
			continue
		}
		parts[i] = fmt.Sprintf("%s=%d", labels[i], v)
	}
	name = strings.ToUpper(name)
	return Question{
		ID:          id,
		Prompt:      fmt.Sprintf("%s gate, %s. What is the output?", name, strings.Join(parts, ", ")),
		Options:     []string{"0", "1"},
		Correct:     out,
		Explanation: gates[name].explanation,
	}, nil
}
