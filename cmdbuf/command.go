package cmdbuf

import (
	"github.com/vdbox/scalability/caps"
)

// Address is a location inside one of the session's scratch buffers
type Address struct {
	Buffer caps.BufferKind
	Offset int
}

// AtomicOp is the operation an MiAtomic command performs on its target
type AtomicOp uint32

const (
	AtomicNone AtomicOp = iota
	AtomicIncrement
	AtomicDecrement
)

var atomicOpMapping = map[AtomicOp]string{
	AtomicNone:      "None",
	AtomicIncrement: "Increment",
	AtomicDecrement: "Decrement",
}

func (o AtomicOp) String() string {
	return atomicOpMapping[o]
}

// CompareOp is the comparison a semaphore wait or conditional end performs against its target
type CompareOp uint32

const (
	CompareNone CompareOp = iota
	// CompareEqual holds when the memory value equals Command.Value
	CompareEqual
	// CompareGreaterOrEqual holds when the memory value is at least Command.Value
	CompareGreaterOrEqual
)

var compareOpMapping = map[CompareOp]string{
	CompareNone:           "None",
	CompareEqual:          "Equal",
	CompareGreaterOrEqual: "GreaterOrEqual",
}

func (o CompareOp) String() string {
	return compareOpMapping[o]
}

// ControlOp is the request a VdControlState command carries
type ControlOp uint32

const (
	ControlNone ControlOp = iota
	ControlInit
	ControlPipeLock
	ControlPipeUnlock
)

var controlOpMapping = map[ControlOp]string{
	ControlNone:       "None",
	ControlInit:       "Init",
	ControlPipeLock:   "PipeLock",
	ControlPipeUnlock: "PipeUnlock",
}

func (o ControlOp) String() string {
	return controlOpMapping[o]
}

// Command is an abstract command record. The emission layer turns it into the accelerator's
// instruction encoding; the orchestration core only fills in the semantic fields.
type Command struct {
	Op      caps.Opcode
	Target  Address
	Value   uint32
	Atomic  AtomicOp
	Compare CompareOp
	Control ControlOp
	// Register is the MMIO register a load/store register command touches
	Register uint32
}
