package phase

import (
	"github.com/vdbox/scalability/caps"
	"github.com/vdbox/scalability/codec"
)

const (
	// Below this width, uneven column splits leave the second pipe too little work
	firstTileWidth = 2048
	// MaxTileColumns is the largest tile column count real tiling accepts
	MaxTileColumns = 20

	reservedPipeCount = 3
)

func atLeast4K(width, height int) bool {
	return width*height >= 3840*2160 || (width >= 3840 && height >= 1716)
}

func atLeast5K(width, height int) bool {
	return width*height >= 5120*2160 || (width >= 5120 && height >= 1440)
}

func atLeast8K(width, height int) bool {
	return width*height >= 7680*4320
}

// DecideHints carries the per-stream facts the pipe count decision depends on besides geometry
type DecideHints struct {
	// UsingScalingEngine is set when a scaling engine is chained after decode, which only works on one pipe
	UsingScalingEngine bool
	// Unscalable is set when the codec mode cannot be split across pipes at all
	Unscalable bool
	// TileColumns is the number of tile columns in the bitstream
	TileColumns int
	// SecureDecode disables the real-tile shortcut to splitting
	SecureDecode bool
}

// DecidePipeCount picks how many pipes a stream should be split across. Large frames are split
// in two; frames of 8K or more use three pipes when the platform has them. Range-extension
// formats (anything other than 8- or 10-bit 4:2:0) split from 4K upward, others from 5K upward.
// A bitstream with more than one tile column splits regardless of size. The platform's
// mode-switch widths, when set, replace the resolution rules. Unscalable codec modes always get
// one pipe.
func DecidePipeCount(geometry codec.FrameGeometry, platform caps.Platform, hints DecideHints) int {
	if hints.Unscalable || hints.UsingScalingEngine || platform.VdboxCount <= 1 {
		return 1
	}

	width := geometry.Width
	height := geometry.Height

	realTile := hints.TileColumns > 1 && hints.TileColumns <= MaxTileColumns && !hints.SecureDecode
	rangeExtension := geometry.Chroma != codec.Chroma420 || geometry.BitDepth > 10
	large := realTile ||
		(rangeExtension && atLeast4K(width, height)) ||
		(!rangeExtension && atLeast5K(width, height))

	pipes := 1
	if platform.VdboxCount == 2 {
		if platform.ModeSwitchWidth1 != 0 {
			if width >= platform.ModeSwitchWidth1 {
				pipes = 2
			}
		} else if large {
			pipes = 2
		}

		if !platform.EvenSplit && width <= firstTileWidth {
			pipes = 1
		}
		return pipes
	}

	if platform.ModeSwitchWidth1 != 0 && platform.ModeSwitchWidth2 != 0 {
		if width >= platform.ModeSwitchWidth2 {
			pipes = reservedPipeCount
		} else if width >= platform.ModeSwitchWidth1 {
			pipes = 2
		}
	} else if atLeast8K(width, height) {
		pipes = reservedPipeCount
	} else if large {
		pipes = 2
	}

	if pipes > platform.VdboxCount {
		pipes = platform.VdboxCount
	}
	return pipes
}
