package pipesync

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/vdbox/scalability/caps"
	"github.com/vdbox/scalability/cmdbuf"
	"github.com/vdbox/scalability/phase"
)

// countingCosts prices every command at one byte so a dry run can be recorded without a
// generation's cost table
type countingCosts struct{}

func (countingCosts) Cost(op caps.Opcode) (caps.CommandCost, error) {
	return caps.CommandCost{Bytes: 1}, nil
}

// WorstCaseManifest returns the synchronization commands one phase of a frame split across
// pipeCount pipes may contain, including one pipe lock and unlock. It covers every work mode the
// frame can hold, so it bounds any single phase's buffer.
func WorstCaseManifest(pipeCount int, frontEndSeparate bool) (cmdbuf.Manifest, error) {
	list, err := phase.Plan(phase.Option{
		PipeCount:   pipeCount,
		ShortFormat: true,
	})
	if err != nil {
		return nil, err
	}

	builder, err := NewBuilder(list, Options{FrontEndSeparateSubmission: frontEndSeparate})
	if err != nil {
		return nil, err
	}

	worst := cmdbuf.Manifest{}
	for _, p := range list {
		buf := cmdbuf.NewBuffer(countingCosts{}, cmdbuf.Budget{Bytes: math.MaxInt32, References: math.MaxInt32})
		err = buildPhase(builder, p, buf)
		if err != nil {
			return nil, errors.Wrapf(err, "dry run of phase %d failed", p.Index)
		}
		worst.Widen(buf.Manifest())
	}

	return worst, nil
}

func buildPhase(builder *Builder, p phase.Phase, buf *cmdbuf.Buffer) error {
	err := builder.Begin(p, buf)
	if err != nil {
		return err
	}
	err = builder.LockPipe(buf)
	if err != nil {
		return err
	}
	err = builder.UnlockPipe(buf)
	if err != nil {
		return err
	}
	return builder.End(p, buf)
}
