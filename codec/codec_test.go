package codec_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vdbox/scalability/codec"
)

func TestGeometryBlocks(t *testing.T) {
	geometry := codec.FrameGeometry{Width: 1920, Height: 1080, BitDepth: 8, Chroma: codec.Chroma420, Mode: codec.ModeHEVC}
	require.NoError(t, geometry.Validate())

	require.Equal(t, 120, geometry.WidthInBlocks(16))
	require.Equal(t, 68, geometry.HeightInBlocks(16))
	require.Equal(t, 30, geometry.WidthInCtb())
	require.False(t, geometry.HighBitDepth())

	geometry.CtbLog2Size = 4
	require.Equal(t, 120, geometry.WidthInCtb())
}

func TestGeometryValidate(t *testing.T) {
	valid := codec.FrameGeometry{Width: 64, Height: 64, BitDepth: 10, Chroma: codec.Chroma444, Mode: codec.ModeVP9}
	require.NoError(t, valid.Validate())

	zero := valid
	zero.Height = 0
	require.Error(t, zero.Validate())

	depth := valid
	depth.BitDepth = 9
	require.Error(t, depth.Validate())

	chroma := valid
	chroma.Chroma = codec.ChromaFormat(17)
	require.Error(t, chroma.Validate())

	ctb := valid
	ctb.CtbLog2Size = 7
	require.Error(t, ctb.Validate())
}

func TestModeStrings(t *testing.T) {
	require.Equal(t, "HEVC", codec.ModeHEVC.String())
	require.Equal(t, "Unknown", codec.Mode(99).String())
	require.Equal(t, codec.ModeAV1, codec.ParseMode("AV1"))
	require.Equal(t, codec.ModeUnknown, codec.ParseMode("MPEG2"))
}
