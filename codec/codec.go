package codec

import (
	"github.com/cockroachdb/errors"
	"github.com/vdbox/scalability/hwutils"
)

// Mode identifies the codec standard a frame is decoded with
type Mode uint32

const (
	ModeUnknown Mode = iota
	ModeAVC
	ModeHEVC
	ModeVP9
	ModeAV1
)

var modeMapping = map[Mode]string{
	ModeUnknown: "Unknown",
	ModeAVC:     "AVC",
	ModeHEVC:    "HEVC",
	ModeVP9:     "VP9",
	ModeAV1:     "AV1",
}

func (m Mode) String() string {
	str, ok := modeMapping[m]
	if !ok {
		return "Unknown"
	}
	return str
}

// ParseMode maps a codec name to its Mode. Unrecognized names return ModeUnknown.
func ParseMode(name string) Mode {
	for mode, str := range modeMapping {
		if str == name {
			return mode
		}
	}
	return ModeUnknown
}

// ChromaFormat is the chroma subsampling of the decode target
type ChromaFormat uint32

const (
	ChromaMonochrome ChromaFormat = iota
	Chroma420
	Chroma422
	Chroma444
)

var chromaFormatMapping = map[ChromaFormat]string{
	ChromaMonochrome: "Monochrome",
	Chroma420:        "4:2:0",
	Chroma422:        "4:2:2",
	Chroma444:        "4:4:4",
}

func (f ChromaFormat) String() string {
	return chromaFormatMapping[f]
}

// FrameGeometry describes the frame currently being decoded. It is owned by the bitstream layer and
// may change between frames.
type FrameGeometry struct {
	Width    int
	Height   int
	BitDepth int
	Chroma   ChromaFormat
	Mode     Mode
	// CtbLog2Size is the log2 of the largest coding block size (4 for 16x16 up to 6 for 64x64).
	// Zero means the codec's maximum.
	CtbLog2Size int
}

// HighBitDepth reports whether the frame uses more than 8 bits per sample
func (g FrameGeometry) HighBitDepth() bool {
	return g.BitDepth > 8
}

// CtbLog2 returns CtbLog2Size, substituting 6 (64x64) when it was left empty
func (g FrameGeometry) CtbLog2() int {
	if g.CtbLog2Size == 0 {
		return 6
	}
	return g.CtbLog2Size
}

// WidthInBlocks returns the frame width in blocks of the provided granularity, rounding up
func (g FrameGeometry) WidthInBlocks(granularity int) int {
	return hwutils.DivideRoundUp(g.Width, granularity)
}

// HeightInBlocks returns the frame height in blocks of the provided granularity, rounding up
func (g FrameGeometry) HeightInBlocks(granularity int) int {
	return hwutils.DivideRoundUp(g.Height, granularity)
}

// WidthInCtb returns the frame width in largest coding blocks
func (g FrameGeometry) WidthInCtb() int {
	return g.WidthInBlocks(1 << g.CtbLog2())
}

func (g FrameGeometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return errors.Newf("frame geometry must have a positive extent, but was %dx%d", g.Width, g.Height)
	}

	if g.BitDepth != 8 && g.BitDepth != 10 && g.BitDepth != 12 {
		return errors.Newf("unsupported bit depth %d", g.BitDepth)
	}

	if _, ok := chromaFormatMapping[g.Chroma]; !ok {
		return errors.Newf("unknown chroma format %d", g.Chroma)
	}

	if g.CtbLog2Size != 0 && (g.CtbLog2Size < 4 || g.CtbLog2Size > 6) {
		return errors.Newf("coding block log2 size %d is outside of 4..6", g.CtbLog2Size)
	}

	return nil
}
