package caps

import "github.com/vdbox/scalability/codec"

var gen11Costs = CommandCosts{
	MiFlushDw:                   {Bytes: 20, References: 1},
	MiAtomic:                    {Bytes: 44, References: 1},
	MiSemaphoreWait:             {Bytes: 20, References: 1},
	MiConditionalBatchBufferEnd: {Bytes: 16, References: 1},
	MiStoreDataImm:              {Bytes: 20, References: 1},
	MiLoadRegisterImm:           {Bytes: 12},
	MiLoadRegisterReg:           {Bytes: 12},
	MiLoadRegisterMem:           {Bytes: 16, References: 1},
	MiMath:                      {Bytes: 84},
	MiStoreRegisterMem:          {Bytes: 16, References: 1},
	MiBatchBufferStart:          {Bytes: 12, References: 1},
	MiBatchBufferEnd:            {Bytes: 4},
	MiCopyMemMem:                {Bytes: 20, References: 2},
	MiWatchdogStop:              {Bytes: 12},

	VdPipelineFlush: {Bytes: 8},
	VdControlState:  {Bytes: 12},

	HcpPipeModeSelect:      {Bytes: 24},
	HcpSurfaceState:        {Bytes: 20, References: 1},
	HcpPipeBufAddrState:    {Bytes: 416, References: 45},
	HcpIndObjBaseAddrState: {Bytes: 116, References: 5},
	HcpQmState:             {Bytes: 72},
	HcpQmStateWide:         {Bytes: 264},
	HcpPicState:            {Bytes: 124},
	HcpTileState:           {Bytes: 80},
	HcpTileCoding:          {Bytes: 20},
	HcpSliceState:          {Bytes: 52},
	HcpRefIdxState:         {Bytes: 72},
	HcpWeightOffsetState:   {Bytes: 200},
	HcpBsdObject:           {Bytes: 12},
	HcpVp9SegmentState:     {Bytes: 28},
	HcpVp9PicState:         {Bytes: 48},

	MfxPipeModeSelect:       {Bytes: 20},
	MfxSurfaceState:         {Bytes: 24, References: 1},
	MfxPipeBufAddrState:     {Bytes: 260, References: 28},
	MfxIndObjBaseAddrState:  {Bytes: 104, References: 5},
	MfxBspBufBaseAddrState:  {Bytes: 40, References: 3},
	MfxAvcImgState:          {Bytes: 72},
	MfxQmState:              {Bytes: 72},
	MfxAvcDirectModeState:   {Bytes: 284, References: 34},
	MfxAvcSliceState:        {Bytes: 48},
	MfxAvcRefIdxState:       {Bytes: 40},
	MfxAvcWeightOffsetState: {Bytes: 388},
	MfdAvcBsdObject:         {Bytes: 24},
	MfxWait:                 {Bytes: 4},

	SfcLock:           {Bytes: 8},
	SfcState:          {Bytes: 132, References: 6},
	SfcAvsState:       {Bytes: 52},
	SfcAvsLumaTable:   {Bytes: 544},
	SfcAvsChromaTable: {Bytes: 288},
	SfcIefState:       {Bytes: 92},
	SfcFrameStart:     {Bytes: 8},
}

// Gen12 widens several HCP states and adds the AV1 pipe
var gen12Overrides = CommandCosts{
	HcpPipeModeSelect:      {Bytes: 28},
	HcpSurfaceState:        {Bytes: 24, References: 1},
	HcpPipeBufAddrState:    {Bytes: 488, References: 53},
	HcpIndObjBaseAddrState: {Bytes: 120, References: 5},
	HcpPicState:            {Bytes: 136},
	HcpSliceState:          {Bytes: 64},
	HcpWeightOffsetState:   {Bytes: 212},
	HcpVp9SegmentState:     {Bytes: 32},
	HcpVp9PicState:         {Bytes: 52},

	AvpPipeModeSelect:      {Bytes: 32},
	AvpSurfaceState:        {Bytes: 24, References: 1},
	AvpPipeBufAddrState:    {Bytes: 676, References: 64},
	AvpIndObjBaseAddrState: {Bytes: 36, References: 2},
	AvpPicState:            {Bytes: 256},
	AvpInterPredState:      {Bytes: 56},
	AvpSegmentState:        {Bytes: 64},
	AvpInloopFilterState:   {Bytes: 120},
	AvpTileCoding:          {Bytes: 24},
	AvpBsdObject:           {Bytes: 12},

	SfcState: {Bytes: 152, References: 8},
}

var xeHPMOverrides = CommandCosts{
	MiSemaphoreWait:     {Bytes: 24, References: 1},
	HcpPicState:         {Bytes: 160},
	HcpPipeBufAddrState: {Bytes: 512, References: 55},
	AvpPipeBufAddrState: {Bytes: 704, References: 66},
	AvpPicState:         {Bytes: 272},
}

func layerCosts(layers ...CommandCosts) CommandCosts {
	out := CommandCosts{}
	for _, layer := range layers {
		for op, cost := range layer {
			out[op] = cost
		}
	}
	return out
}

func wide(eightBit, highBitDepth int) [2]int {
	return [2]int{eightBit, highBitDepth}
}

var defaultSizing = map[BufferKind]SizingRule{
	BufferDeblockLine:        {Extent: ExtentRow, BytesPerUnit: wide(128, 256), BytesPerUnitWideChroma: wide(192, 384)},
	BufferDeblockTileLine:    {Extent: ExtentRow, BytesPerUnit: wide(128, 256), BytesPerUnitWideChroma: wide(192, 384)},
	BufferDeblockTileColumn:  {Extent: ExtentColumn, BytesPerUnit: wide(128, 256), BytesPerUnitWideChroma: wide(192, 384)},
	BufferMetadataLine:       {Extent: ExtentRow, BytesPerUnit: wide(64, 64)},
	BufferMetadataTileLine:   {Extent: ExtentRow, BytesPerUnit: wide(64, 64)},
	BufferMetadataTileColumn: {Extent: ExtentColumn, BytesPerUnit: wide(64, 64)},
	BufferSaoLine:            {Extent: ExtentRow, BytesPerUnit: wide(64, 128), BytesPerUnitWideChroma: wide(128, 192)},
	BufferSaoTileLine:        {Extent: ExtentRow, BytesPerUnit: wide(64, 128), BytesPerUnitWideChroma: wide(128, 192)},
	BufferSaoTileColumn:      {Extent: ExtentColumn, BytesPerUnit: wide(64, 128), BytesPerUnitWideChroma: wide(128, 192)},

	BufferMvUpRightColumn:          {Extent: ExtentColumn, BytesPerUnit: wide(64, 64)},
	BufferIntraPredUpRightColumn:   {Extent: ExtentColumn, BytesPerUnit: wide(64, 128)},
	BufferIntraPredLeftReconColumn: {Extent: ExtentColumn, BytesPerUnit: wide(64, 128)},

	BufferHvdLine:     {Extent: ExtentRow, Granularity: 64, BytesPerUnit: wide(64, 64)},
	BufferHvdTile:     {Extent: ExtentRow, Granularity: 64, BytesPerUnit: wide(64, 64)},
	BufferSegmentID:   {Extent: ExtentArea, Granularity: 64, BytesPerUnit: wide(32, 32)},
	BufferProbability: {Extent: ExtentFixed, BytesPerUnit: wide(2048, 2048)},
	BufferMvTemporal:  {Extent: ExtentArea, BytesPerUnit: wide(16, 16)},

	BufferCdefLine:            {Extent: ExtentRow, Granularity: 64, BytesPerUnit: wide(128, 256)},
	BufferCdefTileColumn:      {Extent: ExtentColumn, Granularity: 64, BytesPerUnit: wide(128, 256)},
	BufferLoopRestorationLine: {Extent: ExtentRow, Granularity: 64, BytesPerUnit: wide(64, 128)},

	BufferIntraRowStore:            {Extent: ExtentRow, BytesPerUnit: wide(64, 128)},
	BufferDeblockingFilterRowStore: {Extent: ExtentRow, BytesPerUnit: wide(256, 512)},
	BufferBsdMpcRowStore:           {Extent: ExtentRow, BytesPerUnit: wide(128, 128)},
	BufferMprRowStore:              {Extent: ExtentRow, BytesPerUnit: wide(64, 128)},

	BufferCabacStreamout: {Extent: ExtentArea, BytesPerUnit: wide(32, 48)},
	BufferFrontEndStatus: {Extent: ExtentFixed, BytesPerUnit: wide(64, 64), Lockable: true},
	BufferSyncCounters:   {Extent: ExtentFixed, BytesPerUnit: wide(1024, 1024), Lockable: true},
}

var multiPipeBuffers = []BufferKind{
	BufferCabacStreamout,
	BufferFrontEndStatus,
	BufferSyncCounters,
}

var defaultModes = map[codec.Mode]ModeCaps{
	codec.ModeHEVC: {
		Scalable:   true,
		TileReplay: true,
		Buffers: []BufferKind{
			BufferDeblockLine, BufferDeblockTileLine, BufferDeblockTileColumn,
			BufferMetadataLine, BufferMetadataTileLine, BufferMetadataTileColumn,
			BufferSaoLine, BufferSaoTileLine, BufferSaoTileColumn,
			BufferMvUpRightColumn, BufferIntraPredUpRightColumn, BufferIntraPredLeftReconColumn,
			BufferMvTemporal,
		},
		ScalableBuffers: multiPipeBuffers,
	},
	codec.ModeVP9: {
		Scalable:   true,
		TileReplay: true,
		Buffers: []BufferKind{
			BufferDeblockLine, BufferDeblockTileLine, BufferDeblockTileColumn,
			BufferMetadataLine, BufferMetadataTileLine, BufferMetadataTileColumn,
			BufferHvdLine, BufferHvdTile, BufferSegmentID, BufferProbability,
			BufferMvTemporal,
		},
		ScalableBuffers: multiPipeBuffers,
	},
	codec.ModeAV1: {
		Scalable: true,
		Buffers: []BufferKind{
			BufferDeblockLine, BufferDeblockTileLine, BufferDeblockTileColumn,
			BufferCdefLine, BufferCdefTileColumn, BufferLoopRestorationLine,
			BufferIntraPredLeftReconColumn, BufferSegmentID, BufferMvTemporal,
		},
		ScalableBuffers: multiPipeBuffers,
	},
	codec.ModeAVC: {
		Buffers: []BufferKind{
			BufferIntraRowStore, BufferDeblockingFilterRowStore, BufferBsdMpcRowStore,
			BufferMprRowStore, BufferMvTemporal,
		},
	},
}

// Default returns the built-in capability table covering Gen11, Gen12 and XeHPM. Gen11 has no AV1
// pipe, so AV1 frames on Gen11 fail closed when their command costs are looked up.
func Default() *Table {
	table, err := NewTable(TableCreateInfo{
		Generations: map[Generation]CommandCosts{
			Gen11: gen11Costs,
			Gen12: layerCosts(gen11Costs, gen12Overrides),
			XeHPM: layerCosts(gen11Costs, gen12Overrides, xeHPMOverrides),
		},
		Sizing: defaultSizing,
		Modes:  defaultModes,
	})
	if err != nil {
		panic(err)
	}
	return table
}
