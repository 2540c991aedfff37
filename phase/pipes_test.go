package phase_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vdbox/scalability/caps"
	"github.com/vdbox/scalability/codec"
	"github.com/vdbox/scalability/phase"
)

func geometry(width, height, bitDepth int, chroma codec.ChromaFormat) codec.FrameGeometry {
	return codec.FrameGeometry{
		Width:    width,
		Height:   height,
		BitDepth: bitDepth,
		Chroma:   chroma,
		Mode:     codec.ModeHEVC,
	}
}

func TestDecidePipeCount_SinglePipePlatforms(t *testing.T) {
	uhd := geometry(7680, 4320, 8, codec.Chroma420)

	require.Equal(t, 1, phase.DecidePipeCount(uhd, caps.Platform{VdboxCount: 1}, phase.DecideHints{}))
	require.Equal(t, 1, phase.DecidePipeCount(uhd, caps.Platform{VdboxCount: 4}, phase.DecideHints{UsingScalingEngine: true}))
	require.Equal(t, 1, phase.DecidePipeCount(uhd, caps.Platform{VdboxCount: 2, EvenSplit: true}, phase.DecideHints{Unscalable: true}))
	require.Equal(t, 1, phase.DecidePipeCount(uhd, caps.Platform{VdboxCount: 4}, phase.DecideHints{Unscalable: true, TileColumns: 4}))
}

func TestDecidePipeCount_TwoVdbox(t *testing.T) {
	platform := caps.Platform{VdboxCount: 2}

	// 8-bit 4:2:0 only splits from 5K
	require.Equal(t, 1, phase.DecidePipeCount(geometry(3840, 2160, 8, codec.Chroma420), platform, phase.DecideHints{}))
	require.Equal(t, 2, phase.DecidePipeCount(geometry(5120, 2880, 8, codec.Chroma420), platform, phase.DecideHints{}))

	// Range extension formats split from 4K
	require.Equal(t, 2, phase.DecidePipeCount(geometry(3840, 2160, 8, codec.Chroma444), platform, phase.DecideHints{}))
	require.Equal(t, 2, phase.DecidePipeCount(geometry(3840, 2160, 12, codec.Chroma420), platform, phase.DecideHints{}))
	require.Equal(t, 1, phase.DecidePipeCount(geometry(1920, 1080, 12, codec.Chroma420), platform, phase.DecideHints{}))

	// Tile columns split small frames only when columns can be split unevenly
	hints := phase.DecideHints{TileColumns: 4}
	require.Equal(t, 1, phase.DecidePipeCount(geometry(1920, 1080, 8, codec.Chroma420), platform, hints))
	platform.EvenSplit = true
	require.Equal(t, 2, phase.DecidePipeCount(geometry(1920, 1080, 8, codec.Chroma420), platform, hints))
	require.Equal(t, 1, phase.DecidePipeCount(geometry(1920, 1080, 8, codec.Chroma420), platform, phase.DecideHints{TileColumns: 4, SecureDecode: true}))
	require.Equal(t, 1, phase.DecidePipeCount(geometry(1920, 1080, 8, codec.Chroma420), platform, phase.DecideHints{TileColumns: 21}))

	platform.ModeSwitchWidth1 = 1920
	require.Equal(t, 2, phase.DecidePipeCount(geometry(1920, 1080, 8, codec.Chroma420), platform, phase.DecideHints{}))
	require.Equal(t, 1, phase.DecidePipeCount(geometry(1280, 720, 8, codec.Chroma420), platform, phase.DecideHints{}))
}

func TestDecidePipeCount_ThreeOrMoreVdbox(t *testing.T) {
	platform := caps.Platform{VdboxCount: 3}

	require.Equal(t, 3, phase.DecidePipeCount(geometry(7680, 4320, 8, codec.Chroma420), platform, phase.DecideHints{}))
	require.Equal(t, 2, phase.DecidePipeCount(geometry(5120, 2880, 8, codec.Chroma420), platform, phase.DecideHints{}))
	require.Equal(t, 1, phase.DecidePipeCount(geometry(1920, 1080, 8, codec.Chroma420), platform, phase.DecideHints{}))

	platform.VdboxCount = 4
	require.Equal(t, 3, phase.DecidePipeCount(geometry(7680, 4320, 8, codec.Chroma420), platform, phase.DecideHints{}))

	platform.ModeSwitchWidth1 = 2000
	platform.ModeSwitchWidth2 = 4000
	require.Equal(t, 3, phase.DecidePipeCount(geometry(4096, 2160, 8, codec.Chroma420), platform, phase.DecideHints{}))
	require.Equal(t, 2, phase.DecidePipeCount(geometry(2048, 1080, 8, codec.Chroma420), platform, phase.DecideHints{}))
	require.Equal(t, 1, phase.DecidePipeCount(geometry(1920, 1080, 8, codec.Chroma420), platform, phase.DecideHints{}))
}
