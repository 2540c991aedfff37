package caps

// Opcode identifies one accelerator command type. The encoding of each command belongs to the emission
// layer; the orchestration core only needs to know its identity and, through a CostTable, its size.
type Opcode uint32

const (
	OpInvalid Opcode = iota

	// Memory interface commands
	MiFlushDw
	MiAtomic
	MiSemaphoreWait
	MiConditionalBatchBufferEnd
	MiStoreDataImm
	MiLoadRegisterImm
	MiLoadRegisterReg
	MiLoadRegisterMem
	MiMath
	MiStoreRegisterMem
	MiBatchBufferStart
	MiBatchBufferEnd
	MiCopyMemMem
	MiWatchdogStop

	// Video pipeline control
	VdPipelineFlush
	VdControlState

	// HEVC/VP9 pipe
	HcpPipeModeSelect
	HcpSurfaceState
	HcpPipeBufAddrState
	HcpIndObjBaseAddrState
	HcpQmState
	HcpQmStateWide
	HcpPicState
	HcpTileState
	HcpTileCoding
	HcpSliceState
	HcpRefIdxState
	HcpWeightOffsetState
	HcpBsdObject
	HcpVp9SegmentState
	HcpVp9PicState

	// AV1 pipe
	AvpPipeModeSelect
	AvpSurfaceState
	AvpPipeBufAddrState
	AvpIndObjBaseAddrState
	AvpPicState
	AvpInterPredState
	AvpSegmentState
	AvpInloopFilterState
	AvpTileCoding
	AvpBsdObject

	// AVC pipe
	MfxPipeModeSelect
	MfxSurfaceState
	MfxPipeBufAddrState
	MfxIndObjBaseAddrState
	MfxBspBufBaseAddrState
	MfxAvcImgState
	MfxQmState
	MfxAvcDirectModeState
	MfxAvcSliceState
	MfxAvcRefIdxState
	MfxAvcWeightOffsetState
	MfdAvcBsdObject
	MfxWait

	// Scaling engine chained after decode
	SfcLock
	SfcState
	SfcAvsState
	SfcAvsLumaTable
	SfcAvsChromaTable
	SfcIefState
	SfcFrameStart

	opcodeCount
)

var opcodeMapping = map[Opcode]string{
	OpInvalid:                   "Invalid",
	MiFlushDw:                   "MiFlushDw",
	MiAtomic:                    "MiAtomic",
	MiSemaphoreWait:             "MiSemaphoreWait",
	MiConditionalBatchBufferEnd: "MiConditionalBatchBufferEnd",
	MiStoreDataImm:              "MiStoreDataImm",
	MiLoadRegisterImm:           "MiLoadRegisterImm",
	MiLoadRegisterReg:           "MiLoadRegisterReg",
	MiLoadRegisterMem:           "MiLoadRegisterMem",
	MiMath:                      "MiMath",
	MiStoreRegisterMem:          "MiStoreRegisterMem",
	MiBatchBufferStart:          "MiBatchBufferStart",
	MiBatchBufferEnd:            "MiBatchBufferEnd",
	MiCopyMemMem:                "MiCopyMemMem",
	MiWatchdogStop:              "MiWatchdogStop",
	VdPipelineFlush:             "VdPipelineFlush",
	VdControlState:              "VdControlState",
	HcpPipeModeSelect:           "HcpPipeModeSelect",
	HcpSurfaceState:             "HcpSurfaceState",
	HcpPipeBufAddrState:         "HcpPipeBufAddrState",
	HcpIndObjBaseAddrState:      "HcpIndObjBaseAddrState",
	HcpQmState:                  "HcpQmState",
	HcpQmStateWide:              "HcpQmStateWide",
	HcpPicState:                 "HcpPicState",
	HcpTileState:                "HcpTileState",
	HcpTileCoding:               "HcpTileCoding",
	HcpSliceState:               "HcpSliceState",
	HcpRefIdxState:              "HcpRefIdxState",
	HcpWeightOffsetState:        "HcpWeightOffsetState",
	HcpBsdObject:                "HcpBsdObject",
	HcpVp9SegmentState:          "HcpVp9SegmentState",
	HcpVp9PicState:              "HcpVp9PicState",
	AvpPipeModeSelect:           "AvpPipeModeSelect",
	AvpSurfaceState:             "AvpSurfaceState",
	AvpPipeBufAddrState:         "AvpPipeBufAddrState",
	AvpIndObjBaseAddrState:      "AvpIndObjBaseAddrState",
	AvpPicState:                 "AvpPicState",
	AvpInterPredState:           "AvpInterPredState",
	AvpSegmentState:             "AvpSegmentState",
	AvpInloopFilterState:        "AvpInloopFilterState",
	AvpTileCoding:               "AvpTileCoding",
	AvpBsdObject:                "AvpBsdObject",
	MfxPipeModeSelect:           "MfxPipeModeSelect",
	MfxSurfaceState:             "MfxSurfaceState",
	MfxPipeBufAddrState:         "MfxPipeBufAddrState",
	MfxIndObjBaseAddrState:      "MfxIndObjBaseAddrState",
	MfxBspBufBaseAddrState:      "MfxBspBufBaseAddrState",
	MfxAvcImgState:              "MfxAvcImgState",
	MfxQmState:                  "MfxQmState",
	MfxAvcDirectModeState:       "MfxAvcDirectModeState",
	MfxAvcSliceState:            "MfxAvcSliceState",
	MfxAvcRefIdxState:           "MfxAvcRefIdxState",
	MfxAvcWeightOffsetState:     "MfxAvcWeightOffsetState",
	MfdAvcBsdObject:             "MfdAvcBsdObject",
	MfxWait:                     "MfxWait",
	SfcLock:                     "SfcLock",
	SfcState:                    "SfcState",
	SfcAvsState:                 "SfcAvsState",
	SfcAvsLumaTable:             "SfcAvsLumaTable",
	SfcAvsChromaTable:           "SfcAvsChromaTable",
	SfcIefState:                 "SfcIefState",
	SfcFrameStart:               "SfcFrameStart",
}

func (o Opcode) String() string {
	str, ok := opcodeMapping[o]
	if !ok {
		return "Invalid"
	}
	return str
}

var opcodeLookup = func() map[string]Opcode {
	lookup := make(map[string]Opcode, len(opcodeMapping))
	for op, name := range opcodeMapping {
		lookup[name] = op
	}
	return lookup
}()

// ParseOpcode maps a command name back to its Opcode, returning OpInvalid for unknown names
func ParseOpcode(name string) Opcode {
	return opcodeLookup[name]
}
