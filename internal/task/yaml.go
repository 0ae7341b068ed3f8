package task

import (
	"os"

	"gopkg.in/yaml.v3"
)

// instructionFileName is the well-known name of a task's instruction file.
const instructionFileName = "instruction.yaml"

// LoadInstruction reads and parses a task's instruction.yaml file.
// An empty or null document parses to a zero-value Instruction (an
// empty mapping),.
func LoadInstruction(path string) (*Instruction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &InstructionMissingError{Path: path}
		}
		return nil, err
	}

	var instr Instruction
	if err := yaml.Unmarshal(data, &instr); err != nil {
		return nil, &MalformedInstructionError{Path: path, Err: err}
	}

	return &instr, nil
}
