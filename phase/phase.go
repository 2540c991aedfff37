package phase

import (
	"github.com/cockroachdb/errors"
	"github.com/vdbox/scalability/cmdbuf"
)

// WorkMode is the role a phase plays in the frame
type WorkMode uint32

const (
	// WorkModeLegacy decodes the whole frame on one pipe
	WorkModeLegacy WorkMode = iota
	// WorkModeShortFormat converts short-format slice parameters to long format before decode
	WorkModeShortFormat
	// WorkModeFrontEnd parses the bitstream into the CABAC streamout buffer for the back ends
	WorkModeFrontEnd
	// WorkModeBackEnd reconstructs a share of the frame's columns from the streamout buffer
	WorkModeBackEnd
)

var workModeMapping = map[WorkMode]string{
	WorkModeLegacy:      "Legacy",
	WorkModeShortFormat: "ShortFormat",
	WorkModeFrontEnd:    "FrontEnd",
	WorkModeBackEnd:     "BackEnd",
}

func (m WorkMode) String() string {
	return workModeMapping[m]
}

// ColumnSpan is a contiguous run of columns a back-end phase reconstructs. Units are CTB columns
// for virtual tiling and tile columns for real tiling.
type ColumnSpan struct {
	Start int
	Count int
}

// Phase is one unit of hardware work, mapped to exactly one command buffer submission
type Phase struct {
	// Pipe is the decode engine the phase executes on
	Pipe int
	Mode WorkMode
	// Index is the phase's position in the frame's list
	Index int
	// Ordinal is the back-end ordinal. It is zero for every other work mode.
	Ordinal int
	IsFirst bool
	IsLast  bool
	// Columns lists the columns a back-end phase reconstructs. It is empty when the phase does not
	// split the frame, or when real tiling has more pipes than tile columns.
	Columns []ColumnSpan
	// Budget is the part of the frame's command budget allotted to the phase. The planner leaves
	// it zero; the orchestrator fills it in once the capacity estimate is known.
	Budget cmdbuf.Budget
}

// List is a frame's phases in submission order
type List []Phase

// Validate checks the structural invariants every planned list must hold: exactly one first
// phase, exactly one last phase, first at the head and last at the tail, consistent indices, and
// back-end ordinals that count up from zero with matching pipes.
func (l List) Validate() error {
	if len(l) == 0 {
		return errors.New("phase list is empty")
	}

	firstCount := 0
	lastCount := 0
	nextOrdinal := 0
	for i, p := range l {
		if p.Index != i {
			return errors.Newf("phase %d carries index %d", i, p.Index)
		}
		if p.IsFirst {
			firstCount++
		}
		if p.IsLast {
			lastCount++
		}

		switch p.Mode {
		case WorkModeLegacy:
			if len(l) > 2 {
				return errors.Newf("phase %d is a legacy phase in a %d phase list", i, len(l))
			}
		case WorkModeShortFormat:
			if i != 0 {
				return errors.Newf("short format conversion must be the first phase, but was phase %d", i)
			}
		case WorkModeFrontEnd:
			if nextOrdinal != 0 {
				return errors.Newf("front end phase %d follows a back end phase", i)
			}
		case WorkModeBackEnd:
			if p.Ordinal != nextOrdinal {
				return errors.Newf("back end phase %d has ordinal %d, expected %d", i, p.Ordinal, nextOrdinal)
			}
			if p.Pipe != p.Ordinal {
				return errors.Newf("back end phase %d runs on pipe %d, expected %d", i, p.Pipe, p.Ordinal)
			}
			nextOrdinal++
		default:
			return errors.Newf("phase %d has unknown work mode %d", i, p.Mode)
		}
	}

	if firstCount != 1 || lastCount != 1 {
		return errors.Newf("expected exactly one first and one last phase, found %d first and %d last", firstCount, lastCount)
	}
	if !l[0].IsFirst || !l[len(l)-1].IsLast {
		return errors.New("the first and last phases must be at the ends of the list")
	}
	if nextOrdinal == 1 {
		return errors.New("a scalable frame must have more than one back end phase")
	}

	return nil
}

// PipeCount is the number of back-end phases, or 1 for a single-pipe frame
func (l List) PipeCount() int {
	backEnds := 0
	for _, p := range l {
		if p.Mode == WorkModeBackEnd {
			backEnds++
		}
	}
	if backEnds == 0 {
		return 1
	}
	return backEnds
}

// Scalable reports whether the frame runs on more than one pipe
func (l List) Scalable() bool {
	return l.PipeCount() > 1
}

// FrontEnd returns the front-end phase of a scalable frame
func (l List) FrontEnd() (Phase, bool) {
	for _, p := range l {
		if p.Mode == WorkModeFrontEnd {
			return p, true
		}
	}
	return Phase{}, false
}

// BackEnds returns the back-end phases in ordinal order
func (l List) BackEnds() []Phase {
	var backEnds []Phase
	for _, p := range l {
		if p.Mode == WorkModeBackEnd {
			backEnds = append(backEnds, p)
		}
	}
	return backEnds
}
