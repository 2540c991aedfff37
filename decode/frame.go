package decode

import (
	"github.com/vdbox/scalability/budget"
	"github.com/vdbox/scalability/caps"
	"github.com/vdbox/scalability/cmdbuf"
	"github.com/vdbox/scalability/codec"
	"github.com/vdbox/scalability/mmc"
	"github.com/vdbox/scalability/phase"
	"github.com/vdbox/scalability/scratch"
)

// FrameInput is what the bitstream layer hands the session for one frame
type FrameInput struct {
	Geometry   codec.FrameGeometry
	Target     mmc.Target
	References mmc.ReferenceSet
	// Inter is set when the frame is inter predicted and References is in use
	Inter bool

	// PipeCount requests a pipe count. Zero lets the session decide from the platform and geometry.
	PipeCount   int
	Tiling      phase.Tiling
	TileColumns int
	// Tiles is the number of tiles or slices every phase emits. Zero is treated as one.
	Tiles         int
	TileReplay    bool
	ShortFormat   bool
	ScalingEngine bool
	SecureDecode  bool
}

// FramePlan is a prepared frame: its phases in submission order with one command buffer each,
// the scratch buffers the commands address, and the reconciled compression state. It is valid
// until the next call to PrepareFrame.
type FramePlan struct {
	// Number counts every frame handed to the session, dropped frames included, starting at 1
	Number      int
	Geometry    codec.FrameGeometry
	Phases      phase.List
	Capacity    budget.Capacity
	Compression mmc.Result
	// Buffers holds one command buffer per phase, in the same order as Phases
	Buffers []*cmdbuf.Buffer
	// Reallocations is the number of scratch buffers that grew for this frame
	Reallocations int

	scratch map[caps.BufferKind]*scratch.Buffer
}

// Scalable reports whether the frame is split across more than one pipe
func (f *FramePlan) Scalable() bool {
	return f.Phases.Scalable()
}

// Scratch returns the scratch buffer of the provided kind, if the frame uses one
func (f *FramePlan) Scratch(kind caps.BufferKind) (*scratch.Buffer, bool) {
	buffer, ok := f.scratch[kind]
	return buffer, ok
}

// Status is the completion state of a frame once its pipeline has drained
type Status uint32

const (
	// StatusComplete means every phase ran to the end
	StatusComplete Status = iota
	// StatusDegraded means the device reported a streamout overflow and the back ends skipped the
	// rest of their commands. The decoded picture is incomplete.
	StatusDegraded
)

var statusMapping = map[Status]string{
	StatusComplete: "Complete",
	StatusDegraded: "Degraded",
}

func (s Status) String() string {
	return statusMapping[s]
}
