package decode

//go:generate mockgen -source emitter.go -destination ./mocks/emitter.go -package mocks

import (
	"github.com/vdbox/scalability/cmdbuf"
	"github.com/vdbox/scalability/mmc"
	"github.com/vdbox/scalability/phase"
)

// Emitter is the command emission layer. It encodes the codec's state into a phase's command buffer
// after the session has opened the phase, and must stay within the buffer's budget.
type Emitter interface {
	// EmitPicture writes the picture level commands of a phase, before the pipe is locked
	EmitPicture(frame *FramePlan, p phase.Phase, buf *cmdbuf.Buffer) error
	// EmitTiles writes the tile or slice level commands of a phase while its pipe is locked
	EmitTiles(frame *FramePlan, p phase.Phase, buf *cmdbuf.Buffer) error
}

// Decompressor resolves a surface's compressed contents in place
type Decompressor interface {
	DecompressInPlace(surface mmc.SurfaceHandle)
}
