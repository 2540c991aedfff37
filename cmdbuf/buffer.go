package cmdbuf

import (
	"github.com/cockroachdb/errors"
	"github.com/vdbox/scalability/caps"
	"github.com/vdbox/scalability/hwutils"
	"golang.org/x/exp/slices"
)

// SyncPoint names a software engine synchronization point shared by two buffers of one frame
type SyncPoint int

// Tags tell the submission layer how a phase's buffer must be scheduled
type Tags struct {
	// Pipe is the decode engine the buffer must execute on
	Pipe int
	// SeparateSubmission marks a buffer that is submitted on its own context rather than as part
	// of the frame's multi-pipe submission
	SeparateSubmission bool
	// Signals lists the sync points the submission layer must signal once the buffer completes
	Signals []SyncPoint
	// Waits lists the sync points the submission layer must wait on before executing the buffer
	Waits []SyncPoint
}

// Buffer records the abstract command stream of one phase. Every command is priced against the
// generation's cost table as it is added, and a command that would exceed the budget is refused.
type Buffer struct {
	costs    caps.CostTable
	limit    Budget
	used     Budget
	commands []Command
	tags     Tags
}

func NewBuffer(costs caps.CostTable, limit Budget) *Buffer {
	return &Buffer{
		costs: costs,
		limit: limit,
	}
}

// Add appends a command. It fails without recording anything when the command cannot be priced or
// would not fit in the remaining budget.
func (b *Buffer) Add(cmd Command) error {
	cost, err := b.costs.Cost(cmd.Op)
	if err != nil {
		return err
	}

	next := b.used.Add(Budget{Bytes: cost.Bytes, References: cost.References})
	if !b.limit.Covers(next) {
		return errors.Wrapf(hwutils.ErrBudgetExceeded, "adding %s would use %d bytes and %d references of a %d byte, %d reference budget",
			cmd.Op, next.Bytes, next.References, b.limit.Bytes, b.limit.References)
	}

	b.used = next
	b.commands = append(b.commands, cmd)
	return nil
}

// AddAll appends each command in order, stopping at the first failure
func (b *Buffer) AddAll(cmds ...Command) error {
	for _, cmd := range cmds {
		err := b.Add(cmd)
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *Buffer) Used() Budget {
	return b.used
}

func (b *Buffer) Limit() Budget {
	return b.limit
}

func (b *Buffer) Len() int {
	return len(b.commands)
}

// Commands returns a copy of the recorded commands in emission order
func (b *Buffer) Commands() []Command {
	return slices.Clone(b.commands)
}

// Count returns how many commands with the provided opcode have been recorded
func (b *Buffer) Count(op caps.Opcode) int {
	count := 0
	for _, cmd := range b.commands {
		if cmd.Op == op {
			count++
		}
	}
	return count
}

// Manifest summarizes the recorded commands
func (b *Buffer) Manifest() Manifest {
	manifest := Manifest{}
	for _, cmd := range b.commands {
		manifest.Add(cmd.Op, 1)
	}
	return manifest
}

func (b *Buffer) Tags() Tags {
	return Tags{
		Pipe:               b.tags.Pipe,
		SeparateSubmission: b.tags.SeparateSubmission,
		Signals:            slices.Clone(b.tags.Signals),
		Waits:              slices.Clone(b.tags.Waits),
	}
}

func (b *Buffer) SetPipe(pipe int) {
	b.tags.Pipe = pipe
}

func (b *Buffer) SetSeparateSubmission(separate bool) {
	b.tags.SeparateSubmission = separate
}

func (b *Buffer) AddSignal(point SyncPoint) {
	if !slices.Contains(b.tags.Signals, point) {
		b.tags.Signals = append(b.tags.Signals, point)
	}
}

func (b *Buffer) AddWait(point SyncPoint) {
	if !slices.Contains(b.tags.Waits, point) {
		b.tags.Waits = append(b.tags.Waits, point)
	}
}

// Reset discards every recorded command and tag while keeping the budget
func (b *Buffer) Reset() {
	b.used = Budget{}
	b.commands = b.commands[:0]
	b.tags = Tags{}
}
