package caps

import (
	"github.com/cockroachdb/errors"
	"github.com/vdbox/scalability/hwutils"
)

// Generation identifies a family of accelerators that share command sizes
type Generation uint32

const (
	GenerationUnknown Generation = iota
	Gen11
	Gen12
	XeHPM
)

var generationMapping = map[Generation]string{
	GenerationUnknown: "Unknown",
	Gen11:             "Gen11",
	Gen12:             "Gen12",
	XeHPM:             "XeHPM",
}

func (g Generation) String() string {
	str, ok := generationMapping[g]
	if !ok {
		return "Unknown"
	}
	return str
}

// ParseGeneration maps a generation name to its Generation, returning GenerationUnknown for unknown names
func ParseGeneration(name string) Generation {
	for gen, str := range generationMapping {
		if str == name {
			return gen
		}
	}
	return GenerationUnknown
}

// CommandCost is the worst-case footprint of a single command
type CommandCost struct {
	// Bytes is the size of the command in the command buffer
	Bytes int
	// References is the number of resource-reference (patch) list entries the command consumes
	References int
}

// CostTable provides the footprint of commands for one hardware generation
type CostTable interface {
	Cost(op Opcode) (CommandCost, error)
}

// CommandCosts is the CostTable of one generation
type CommandCosts map[Opcode]CommandCost

var _ CostTable = CommandCosts{}

// Cost returns the footprint of the provided command. Commands the generation does not describe
// produce an error marked with hwutils.ErrUnsupportedConfiguration.
func (c CommandCosts) Cost(op Opcode) (CommandCost, error) {
	cost, ok := c[op]
	if !ok {
		return CommandCost{}, errors.Mark(errors.Newf("command %s has no cost entry", op), hwutils.ErrUnsupportedConfiguration)
	}
	return cost, nil
}

func (c CommandCosts) clone() CommandCosts {
	out := make(CommandCosts, len(c))
	for op, cost := range c {
		out[op] = cost
	}
	return out
}
