package budget

import (
	"github.com/vdbox/scalability/caps"
	"github.com/vdbox/scalability/cmdbuf"
	"github.com/vdbox/scalability/codec"
)

// modeManifests holds the worst-case picture and tile level command counts of one codec mode.
// Commands repeated a data-dependent number of times are listed at their maximum.
type modeManifests struct {
	picture cmdbuf.Manifest
	tile    cmdbuf.Manifest
	// qmStates is how many quantization matrix states the picture level emits. They are widened
	// for extended bit depth, so they are kept out of picture.
	qmStates int
	// highBitDepth reports whether the pipe can decode more than 8 bits per sample
	highBitDepth bool
}

// statusReport is appended to every picture: a flush and the stores that record the frame's
// decode status
var statusReport = cmdbuf.Manifest{
	caps.MiFlushDw:          1,
	caps.MiStoreDataImm:     1,
	caps.MiStoreRegisterMem: 2,
	caps.MiBatchBufferEnd:   1,
}

var manifests = map[codec.Mode]modeManifests{
	codec.ModeHEVC: {
		picture: cmdbuf.Manifest{
			caps.HcpPipeModeSelect:      1,
			caps.HcpSurfaceState:        2,
			caps.HcpPipeBufAddrState:    1,
			caps.HcpIndObjBaseAddrState: 1,
			caps.HcpPicState:            1,
			caps.HcpTileState:           1,
			caps.VdPipelineFlush:        1,
		},
		tile: cmdbuf.Manifest{
			caps.HcpTileCoding:        1,
			caps.HcpSliceState:        1,
			caps.HcpRefIdxState:       2,
			caps.HcpWeightOffsetState: 2,
			caps.HcpBsdObject:         1,
			caps.MiBatchBufferStart:   1,
		},
		qmStates:     4,
		highBitDepth: true,
	},
	codec.ModeVP9: {
		picture: cmdbuf.Manifest{
			caps.HcpPipeModeSelect:      1,
			caps.HcpSurfaceState:        4,
			caps.HcpPipeBufAddrState:    1,
			caps.HcpIndObjBaseAddrState: 1,
			// One per segment
			caps.HcpVp9SegmentState: 8,
			caps.HcpVp9PicState:     1,
			caps.VdPipelineFlush:    1,
		},
		tile: cmdbuf.Manifest{
			caps.HcpTileCoding:      1,
			caps.HcpBsdObject:       1,
			caps.MiBatchBufferStart: 1,
		},
		highBitDepth: true,
	},
	codec.ModeAV1: {
		picture: cmdbuf.Manifest{
			caps.AvpPipeModeSelect:      1,
			caps.AvpSurfaceState:        9,
			caps.AvpPipeBufAddrState:    1,
			caps.AvpIndObjBaseAddrState: 1,
			caps.AvpPicState:            1,
			caps.AvpInterPredState:      1,
			caps.AvpSegmentState:        8,
			caps.AvpInloopFilterState:   1,
			caps.VdPipelineFlush:        1,
		},
		tile: cmdbuf.Manifest{
			caps.AvpTileCoding:      1,
			caps.AvpBsdObject:       1,
			caps.MiBatchBufferStart: 1,
		},
		highBitDepth: true,
	},
	codec.ModeAVC: {
		picture: cmdbuf.Manifest{
			caps.MfxPipeModeSelect:      1,
			caps.MfxSurfaceState:        1,
			caps.MfxPipeBufAddrState:    1,
			caps.MfxIndObjBaseAddrState: 1,
			caps.MfxBspBufBaseAddrState: 1,
			caps.MfxAvcImgState:         1,
			caps.MfxQmState:             4,
			caps.MfxAvcDirectModeState:  1,
		},
		tile: cmdbuf.Manifest{
			caps.MfxAvcRefIdxState:       2,
			caps.MfxAvcWeightOffsetState: 2,
			caps.MfxAvcSliceState:        1,
			caps.MfdAvcBsdObject:         1,
			caps.MfxWait:                 1,
		},
	},
}

// scalingEngine is the state of the scaling engine chained after the decode pipe
var scalingEngine = cmdbuf.Manifest{
	caps.SfcLock:           1,
	caps.SfcState:          1,
	caps.SfcAvsState:       1,
	caps.SfcAvsLumaTable:   1,
	caps.SfcAvsChromaTable: 1,
	caps.SfcIefState:       1,
	caps.SfcFrameStart:     1,
}

// tileReplay is the per-pass bookkeeping of tile-based replay: jumping into the pass batch,
// skipping passes that already completed and saving the pass counter
var tileReplay = cmdbuf.Manifest{
	caps.MiBatchBufferStart:          1,
	caps.MiConditionalBatchBufferEnd: 1,
	caps.MiStoreDataImm:              2,
	caps.MiLoadRegisterMem:           1,
	caps.MiCopyMemMem:                1,
}
